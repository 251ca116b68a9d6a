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

	"github.com/bufbuild/tlbc/internal/diag"
	"github.com/bufbuild/tlbc/internal/syntax"
)

var zeroPos = diag.Position{File: "t.tlb", Line: 1, Column: 1}

func TestInternDedupesStructurallyEqualExpressions(t *testing.T) {
	p := New(0)
	a := syntax.NewIntConst(zeroPos, 42)
	b := syntax.NewIntConst(zeroPos, 42)

	ia, _ := p.Intern(a)
	ib, _ := p.Intern(b)
	require.Equal(t, ia, ib)
	require.Equal(t, 1, p.Len())
}

func TestInternDistinguishesDifferentValues(t *testing.T) {
	p := New(0)
	a := syntax.NewIntConst(zeroPos, 1)
	b := syntax.NewIntConst(zeroPos, 2)
	ia, _ := p.Intern(a)
	ib, _ := p.Intern(b)
	require.NotEqual(t, ia, ib)
	require.Equal(t, 2, p.Len())
}

func TestInternRecursesIntoArgs(t *testing.T) {
	p := New(0)
	mk := func() *syntax.TypeExpr {
		return syntax.NewApply(zeroPos, "Foo", []*syntax.TypeExpr{
			syntax.NewIntConst(zeroPos, 1),
			syntax.NewIntConst(zeroPos, 2),
		})
	}
	ia, _ := p.Intern(mk())
	ib, _ := p.Intern(mk())
	require.Equal(t, ia, ib)
	require.Equal(t, 1, p.Len())

	different := syntax.NewApply(zeroPos, "Foo", []*syntax.TypeExpr{
		syntax.NewIntConst(zeroPos, 1),
		syntax.NewIntConst(zeroPos, 3),
	})
	id, _ := p.Intern(different)
	require.NotEqual(t, ia, id)
}

func TestInternIgnoresSourcePosition(t *testing.T) {
	p := New(0)
	other := diag.Position{File: "other.tlb", Line: 99, Column: 7}
	a := syntax.NewIntConst(zeroPos, 5)
	b := syntax.NewIntConst(other, 5)
	ia, _ := p.Intern(a)
	ib, _ := p.Intern(b)
	require.Equal(t, ia, ib)
}

func TestInternCachesOnTheExpressionItself(t *testing.T) {
	p := New(0)
	a := syntax.NewIntConst(zeroPos, 5)
	first, _ := p.Intern(a)
	// A second call on the very same expression returns the cached
	// IsConstExpr field without consulting the hash table.
	again, _ := p.Intern(a)
	require.Equal(t, first, again)
	require.Equal(t, 1, p.Len())
}

func TestLookupRoundTrips(t *testing.T) {
	p := New(0)
	a := syntax.NewIntConst(zeroPos, 7)
	idx, _ := p.Intern(a)
	require.Same(t, a, p.Lookup(idx))
	require.Nil(t, p.Lookup(0))
	require.Nil(t, p.Lookup(idx+1))
}
