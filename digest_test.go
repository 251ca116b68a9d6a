// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tlbc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeDigestIgnoresFieldOrderOfUnrelatedTypes(t *testing.T) {
	a := &Schema{Types: []Type{
		{Name: "A", Arity: 0, Constructors: []Constructor{{Name: "a", TagBits: 0}}},
	}}
	b := &Schema{Types: []Type{
		{Name: "A", Arity: 0, Constructors: []Constructor{{Name: "a", TagBits: 0}}},
	}}
	require.Equal(t, computeDigest(a), computeDigest(b))
}

func TestComputeDigestDistinguishesTagValue(t *testing.T) {
	a := &Schema{Types: []Type{
		{Name: "A", Constructors: []Constructor{{Name: "a", TagBits: 1, TagValue: 0}}},
	}}
	b := &Schema{Types: []Type{
		{Name: "A", Constructors: []Constructor{{Name: "a", TagBits: 1, TagValue: 1}}},
	}}
	require.NotEqual(t, computeDigest(a), computeDigest(b))
}
