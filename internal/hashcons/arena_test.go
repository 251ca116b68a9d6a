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

package hashcons

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArenaAllocReturnsStableIndices(t *testing.T) {
	a := NewArena[string](0)
	i0 := a.Alloc("zero")
	i1 := a.Alloc("one")
	require.Equal(t, 0, i0)
	require.Equal(t, 1, i1)
	require.Equal(t, "zero", *a.Get(i0))
	require.Equal(t, "one", *a.Get(i1))
	require.Equal(t, 2, a.Len())
}

func TestArenaGetIsMutable(t *testing.T) {
	type rec struct{ n int }
	a := NewArena[rec](0)
	idx := a.Alloc(rec{n: 1})
	a.Get(idx).n = 42
	require.Equal(t, 42, a.Get(idx).n)
}

func TestArenaAllReflectsAllocations(t *testing.T) {
	a := NewArena[int](0)
	a.Alloc(1)
	a.Alloc(2)
	a.Alloc(3)
	require.Equal(t, []int{1, 2, 3}, a.All())
}
