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

package sizeset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdmissibilityInfoMarkAndQuery(t *testing.T) {
	a := NewAdmissibilityInfo(3)
	require.False(t, a.AllAdmissible())

	a.MarkAdmissible(0)
	a.MarkAdmissible(2)
	require.True(t, a.IsAdmissible(0, 0))
	require.True(t, a.IsAdmissible(0, 3))
	// Marking one axis sets whole cells of the cube, so every other axis
	// now has occurring digits too.
	require.True(t, a.IsAdmissible(1, 0))
	require.True(t, a.AllAdmissible())

	a.MarkAdmissible(1)
	require.True(t, a.AllAdmissible())
}

func TestAdmissibilityInfoSetByPattern(t *testing.T) {
	a := NewAdmissibilityInfo(1)
	require.False(t, a.AllAdmissible())
	a.SetByPattern([][]int{{0, 1}})
	require.True(t, a.IsAdmissible(0, 0))
	require.True(t, a.IsAdmissible(0, 1))
	require.False(t, a.IsAdmissible(0, 2))
}

func TestAdmissibilityInfoConflictsAndDisjoint(t *testing.T) {
	a := NewAdmissibilityInfo(1)
	a.SetByPattern([][]int{{0, 1}})
	b := NewAdmissibilityInfo(1)
	b.SetByPattern([][]int{{2, 3}})
	require.False(t, a.Conflicts(b))
	require.True(t, a.Disjoint(b))

	b.SetByPattern([][]int{{1}})
	require.True(t, a.Conflicts(b))
	require.False(t, a.Disjoint(b))
}

func TestAdmissibilityInfoProject(t *testing.T) {
	a := NewAdmissibilityInfo(2)
	a.SetByPattern([][]int{{0}, {2}})
	p := a.Project([]int{1})
	require.True(t, p.IsAdmissible(0, 2))
	require.False(t, p.IsAdmissible(0, 0))
}

func TestAdmissibilityInfoLeq(t *testing.T) {
	a := NewAdmissibilityInfo(2)
	b := NewAdmissibilityInfo(2)
	require.True(t, a.Leq(b))

	a.MarkAdmissible(0)
	require.False(t, a.Leq(b))
	b.MarkAdmissible(0)
	require.True(t, a.Leq(b))
}

func TestAdmissibilityInfoOrAndExtend(t *testing.T) {
	a := NewAdmissibilityInfo(1)
	a.SetByPattern([][]int{{0}})
	b := NewAdmissibilityInfo(2)
	b.SetByPattern([][]int{{1}, {3}})

	u := a.Or(b)
	require.Equal(t, 2, u.Dim())
	require.True(t, u.IsAdmissible(1, 3))
}
