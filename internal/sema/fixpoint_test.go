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

package sema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bufbuild/tlbc/internal/sizeset"
)

func bindAndRunFixpoint(t *testing.T, src string) *Compiler {
	t.Helper()
	c := NewCompiler(nil, DefaultLimits())
	Bind(c, mustParse(t, src))
	require.Empty(t, c.Errors)
	DeriveTags(c)
	RunFixpoint(c)
	return c
}

func TestRunFixpointComputesExactSizeForFixedFields(t *testing.T) {
	c := bindAndRunFixpoint(t, `pair$_ a:int32 b:int32 = Pair;`)
	ty := c.TypeByName("Pair")
	require.Equal(t, sizeset.Exact(64, 0), ty.Size)
}

func TestRunFixpointUnionsAcrossConstructors(t *testing.T) {
	c := bindAndRunFixpoint(t, `
bool_false$0 = Bool;
bool_true$1 = Bool;
`)
	ty := c.TypeByName("Bool")
	require.Equal(t, sizeset.Exact(1, 0), ty.Size)
	require.False(t, ty.BeginsWith.IsAny())
	require.Len(t, ty.BeginsWith.Prefixes(), 2)
}

func TestRunFixpointPropagatesRefFromCellTag(t *testing.T) {
	c := bindAndRunFixpoint(t, `wrap$_ c:^Cell = Wrap;`)
	ty := c.TypeByName("Wrap")
	require.Equal(t, 1, ty.Size.MinRefs)
	require.Equal(t, 1, ty.Size.MaxRefs)
}

func TestRunFixpointTreatsUnboundedTupleAsUnknown(t *testing.T) {
	c := bindAndRunFixpoint(t, `rows n:# data:[ n * int8 ] = Rows n;`)
	ty := c.TypeByName("Rows")
	require.Equal(t, sizeset.Unbounded, ty.Size.MaxBits)
}

func TestRunFixpointConvergesForRecursiveListViaRef(t *testing.T) {
	// A cons-list guarded by a cell reference converges because the
	// recursive occurrence costs exactly one ref, not an unbounded chain
	// of inline bits.
	c := bindAndRunFixpoint(t, `
cons$_ head:int8 tail:^List = List;
nil$_ = List;
`)
	ty := c.TypeByName("List")
	require.Equal(t, 0, ty.Size.MinBits)
	require.NotEqual(t, sizeset.Unbounded, ty.Size.MaxRefs)
}
