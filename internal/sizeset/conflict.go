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

// ConflictGraph records, for a type's constructors (indexed 0..n-1), which
// pairs have overlapping begins_with prefix sets: such a pair cannot be
// told apart by bit-prefix alone, forcing the type's dispatch strategy away
// from pure "prefix" dispatch.
type ConflictGraph struct {
	n     int
	edges []bool // packed n*n, edges[i*n+j] true iff i and j conflict.
}

// NewConflictGraph allocates an empty (conflict-free) graph over n
// constructors.
func NewConflictGraph(n int) *ConflictGraph {
	return &ConflictGraph{n: n, edges: make([]bool, n*n)}
}

// AddConflict records that constructors i and j cannot be told apart by
// prefix alone.
func (g *ConflictGraph) AddConflict(i, j int) {
	if i == j {
		return
	}
	g.edges[i*g.n+j] = true
	g.edges[j*g.n+i] = true
}

// Conflicts reports whether i and j conflict.
func (g *ConflictGraph) Conflicts(i, j int) bool {
	if i == j {
		return false
	}
	return g.edges[i*g.n+j]
}

// IsPrefixFree reports whether the graph has no edges at all: every
// constructor's prefix set is disjoint from every other's, so a trie built
// from begins_with alone fully distinguishes them.
func (g *ConflictGraph) IsPrefixFree() bool {
	for _, e := range g.edges {
		if e {
			return false
		}
	}
	return true
}

// ConflictSet returns the indices of every constructor that conflicts with
// i, in increasing order.
func (g *ConflictGraph) ConflictSet(i int) []int {
	var out []int
	for j := 0; j < g.n; j++ {
		if g.Conflicts(i, j) {
			out = append(out, j)
		}
	}
	return out
}

// BuildFromPrefixes derives the conflict graph for a set of constructors
// directly from their begins_with collections: two constructors conflict
// whenever some pair of their tracked prefixes overlap, or whenever either
// side is Any() (no prefix information at all).
func BuildFromPrefixes(prefixes []BitPrefixCollection) *ConflictGraph {
	g := NewConflictGraph(len(prefixes))
	for i := 0; i < len(prefixes); i++ {
		for j := i + 1; j < len(prefixes); j++ {
			if collectionsOverlap(prefixes[i], prefixes[j]) {
				g.AddConflict(i, j)
			}
		}
	}
	return g
}

func collectionsOverlap(a, b BitPrefixCollection) bool {
	if a.any || b.any {
		return true
	}
	for _, p := range a.prefixes {
		for _, q := range b.prefixes {
			if p.Overlaps(q) {
				return true
			}
		}
	}
	return false
}
