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

func TestConflictGraphAddAndQuery(t *testing.T) {
	g := NewConflictGraph(3)
	require.True(t, g.IsPrefixFree())

	g.AddConflict(0, 1)
	require.True(t, g.Conflicts(0, 1))
	require.True(t, g.Conflicts(1, 0))
	require.False(t, g.Conflicts(0, 2))
	require.False(t, g.IsPrefixFree())
	require.Equal(t, []int{1}, g.ConflictSet(0))
}

func TestConflictGraphSelfNeverConflicts(t *testing.T) {
	g := NewConflictGraph(2)
	g.AddConflict(0, 0)
	require.False(t, g.Conflicts(0, 0))
}

func TestBuildFromPrefixesDisjoint(t *testing.T) {
	a := Single(Prefix{Bits: 0b0 << 63, Len: 1})
	b := Single(Prefix{Bits: 0b1 << 63, Len: 1})
	g := BuildFromPrefixes([]BitPrefixCollection{a, b})
	require.True(t, g.IsPrefixFree())
}

func TestBuildFromPrefixesOverlapping(t *testing.T) {
	a := Single(Prefix{Bits: 0b10 << 62, Len: 2})
	b := Single(Prefix{Bits: 0b1 << 63, Len: 1})
	g := BuildFromPrefixes([]BitPrefixCollection{a, b})
	require.False(t, g.IsPrefixFree())
	require.True(t, g.Conflicts(0, 1))
}

func TestBuildFromPrefixesAnyConflictsWithEverything(t *testing.T) {
	a := Any()
	b := Single(Prefix{Bits: 0b1 << 63, Len: 1})
	c := Single(Prefix{Bits: 0b0 << 63, Len: 1})
	g := BuildFromPrefixes([]BitPrefixCollection{a, b, c})
	require.True(t, g.Conflicts(0, 1))
	require.True(t, g.Conflicts(0, 2))
	require.False(t, g.Conflicts(1, 2))
}
