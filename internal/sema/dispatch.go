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
	"github.com/bufbuild/tlbc/internal/dbg"
	"github.com/bufbuild/tlbc/internal/diag"
	"github.com/bufbuild/tlbc/internal/sizeset"
)

// DispatchStrategy names how a decoder picks which of a type's constructors
// it is looking at.
type DispatchStrategy int

const (
	// StrategyPrefix means the constructors' begins_with sets are pairwise
	// disjoint: reading Trie.UsefulDepth() bits of lookahead always
	// identifies the constructor before any field is parsed.
	StrategyPrefix DispatchStrategy = iota
	// StrategyConstParam means prefixes conflict, but every conflicting
	// pair of constructors is told apart by a single result-argument
	// position whose admissible digit classes are disjoint, read once the
	// (possibly ambiguous) prefix has been followed.
	StrategyConstParam
	// StrategyParamValue means dispatch additionally needs to inspect a
	// field's runtime value (not just compare it to a constant), as for a
	// constructor set distinguished only by an externally supplied
	// discriminant.
	StrategyParamValue
	// StrategyMixed means no single rule suffices: a decoder must combine
	// prefix lookahead with the admissibility cube on a case-by-case
	// basis, following the trie until it bottoms out into an ambiguous
	// leaf, and resolving that leaf's remaining candidates individually.
	StrategyMixed
)

func (d DispatchStrategy) String() string {
	switch d {
	case StrategyPrefix:
		return "prefix"
	case StrategyConstParam:
		return "const-param"
	case StrategyParamValue:
		return "param-value"
	case StrategyMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// BuildDispatch classifies t's dispatch strategy and, where applicable,
// constructs its lookahead trie. It must run after RunFixpoint: both the
// conflict graph and the trie are derived from each constructor's
// converged begins_with.
func BuildDispatch(c *Compiler, t *Type) {
	if len(t.Constructors) == 0 {
		t.Dispatch = StrategyPrefix
		return
	}

	prefixes := make([]sizeset.BitPrefixCollection, len(t.Constructors))
	for i, ctor := range t.Constructors {
		prefixes[i] = ctor.BeginsWith
	}
	t.Conflict = sizeset.BuildFromPrefixes(prefixes)

	defer func() {
		c.Log.Debugf("%v", dbg.Dict("dispatch",
			"type", t.Name,
			"strategy", t.Dispatch,
			"useful_depth", t.Trie.UsefulDepth(),
		))
	}()

	if t.Conflict.IsPrefixFree() {
		t.Dispatch = StrategyPrefix
		t.Trie = sizeset.BuildTrie(prefixes)
		t.Plan = buildPlan(t)
		return
	}

	t.Trie = sizeset.BuildTrie(prefixes)

	if idx, ok := constParamIndex(t); ok {
		t.Dispatch = StrategyConstParam
		t.DispatchParamIndex = idx
		t.Plan = buildPlan(t)
		return
	}

	if isParamDetermined(t) {
		t.Dispatch = StrategyParamValue
		t.Plan = buildPlan(t)
		return
	}

	t.Dispatch = StrategyMixed
	reportUnresolvedConflicts(c, t)
	t.Plan = buildPlan(t)
}

// DispatchNodeKind names one step of a "get-tag plan": the decision tree a
// decoder walks, reading one bit or one field at a time, to pick the
// constructor a value was built with.
type DispatchNodeKind int

const (
	// NodeReturnConstructor is a leaf: exactly one constructor remains.
	NodeReturnConstructor DispatchNodeKind = iota
	// NodeBitTest reads a single bit at BitOffset and descends into Zero
	// or One.
	NodeBitTest
	// NodePrefixTable reads UsefulDepth bits at once and looks the result
	// up in Table, for a flat lookahead too wide to profitably nest as nil
	// BitTest node.
	NodePrefixTable
	// NodeParamSwitch reads the admissible value of result-argument
	// ParamIndex and looks its abstract digit class (0..3) up in Cases.
	NodeParamSwitch
	// NodeParamMatrix is NodeParamSwitch's fallback for an ambiguous trie
	// leaf that no single parameter disambiguates: Candidates lists the
	// constructors still possible there, left for a decoder to resolve by
	// inspecting however many admissible parameters it needs.
	NodeParamMatrix
)

// DispatchNode is one node of a Type's dispatch plan, built by buildPlan
// once BuildDispatch has classified the type's strategy.
type DispatchNode struct {
	Kind DispatchNodeKind

	// Constructor is valid on NodeReturnConstructor: the index into
	// Type.Constructors this leaf identifies.
	Constructor int

	// BitOffset, Zero, One are valid on NodeBitTest.
	BitOffset int
	Zero, One *DispatchNode

	// Table, UsefulBits are valid on NodePrefixTable: Table maps a
	// UsefulBits-wide prefix, left-justified into the low UsefulBits bits
	// of the key, to the node that prefix resolves to.
	Table      map[uint64]*DispatchNode
	UsefulBits int

	// ParamIndex, Cases are valid on NodeParamSwitch: Cases maps an
	// abstract nat digit class (0..3) to the node that class resolves to.
	ParamIndex int
	Cases      map[int]*DispatchNode

	// Candidates is valid on NodeParamMatrix.
	Candidates []int
}

// prefixTableMaxBits bounds how wide a flattened NodePrefixTable may get:
// beyond this, 2^UsefulBits entries stop being cheaper than a nested
// BitTest chain, so buildPlan falls back to one.
const prefixTableMaxBits = 6

// buildPlan walks t.Trie, converting its binary prefix structure into a
// DispatchNode tree and resolving any ambiguous leaf per t.Dispatch: a
// const-param type's leaves become a NodeParamSwitch on t.DispatchParamIndex,
// a param-value type's leaves become a NodeParamMatrix over the leaf's
// remaining candidates, and a single-constructor type skips the trie
// entirely.
func buildPlan(t *Type) *DispatchNode {
	if len(t.Constructors) == 1 {
		return &DispatchNode{Kind: NodeReturnConstructor, Constructor: 0}
	}
	if t.Trie == nil {
		return &DispatchNode{Kind: NodeParamMatrix, Candidates: allConstructorIndices(t)}
	}
	if t.Dispatch == StrategyPrefix {
		if depth := t.Trie.UsefulDepth(); depth > 0 && depth <= prefixTableMaxBits {
			return prefixTableNode(t, t.Trie, depth)
		}
	}
	return trieToNode(t, t.Trie)
}

// prefixTableNode flattens every leaf reachable from root into a single
// table keyed by the first depth bits of the wire, completing any leaf
// whose own prefix is shorter than depth across every extension it admits.
func prefixTableNode(t *Type, root *sizeset.BinTrie, depth int) *DispatchNode {
	table := make(map[uint64]*DispatchNode)
	collectLeaves(root, func(leaf *sizeset.BinTrie) {
		node := resolveLeaf(t, leaf.Constructors)
		base := leaf.DownTag.Bits >> uint(64-depth)
		missing := depth - leaf.DownTag.Len
		for x := 0; x < (1 << uint(missing)); x++ {
			table[base|uint64(x)] = node
		}
	})
	return &DispatchNode{Kind: NodePrefixTable, Table: table, UsefulBits: depth}
}

func collectLeaves(n *sizeset.BinTrie, fn func(*sizeset.BinTrie)) {
	if n == nil {
		return
	}
	if n.IsLeaf() {
		fn(n)
		return
	}
	collectLeaves(n.Children[0], fn)
	collectLeaves(n.Children[1], fn)
}

func allConstructorIndices(t *Type) []int {
	out := make([]int, len(t.Constructors))
	for i := range out {
		out[i] = i
	}
	return out
}

func trieToNode(t *Type, n *sizeset.BinTrie) *DispatchNode {
	if n.IsLeaf() {
		return resolveLeaf(t, n.Constructors)
	}
	zero := trieToNode(t, n.Children[0])
	one := trieToNode(t, n.Children[1])
	return &DispatchNode{Kind: NodeBitTest, BitOffset: n.DownTag.Len, Zero: zero, One: one}
}

// resolveLeaf turns a trie leaf's remaining candidate set into a single
// node: a direct return if prefix lookahead alone settled it, otherwise a
// param-based disambiguation matching t.Dispatch.
func resolveLeaf(t *Type, candidates []int) *DispatchNode {
	if len(candidates) == 1 {
		return &DispatchNode{Kind: NodeReturnConstructor, Constructor: candidates[0]}
	}
	if len(candidates) == 0 {
		return &DispatchNode{Kind: NodeParamMatrix}
	}
	switch t.Dispatch {
	case StrategyConstParam:
		return paramSwitchNode(t, t.DispatchParamIndex, candidates)
	default:
		return &DispatchNode{Kind: NodeParamMatrix, Candidates: candidates}
	}
}

// paramSwitchNode builds a NodeParamSwitch over dim, mapping every digit
// class (0..3) that occurs among candidates to whichever single candidate
// claims it (constParamIndex already proved this map has no collisions). A
// digit class no candidate admits gets no entry in Cases, and the node has
// no default branch.
func paramSwitchNode(t *Type, dim int, candidates []int) *DispatchNode {
	cases := make(map[int]*DispatchNode, 4)
	for digit := 0; digit < 4; digit++ {
		owner := -1
		for _, idx := range candidates {
			if t.Constructors[idx].Admiss.IsAdmissible(dim, digit) {
				owner = idx
				break
			}
		}
		if owner >= 0 {
			cases[digit] = &DispatchNode{Kind: NodeReturnConstructor, Constructor: owner}
		}
	}
	return &DispatchNode{Kind: NodeParamSwitch, ParamIndex: dim, Cases: cases}
}

// constParamIndex looks for a single admissibility dimension (result
// argument position) whose projected digit set is pairwise disjoint across
// every conflicting pair of constructors -- the "const-param" strategy:
// reading just that one parameter's value is enough to resolve any prefix
// ambiguity.
func constParamIndex(t *Type) (int, bool) {
	maxDim := 0
	for _, ctor := range t.Constructors {
		if d := ctor.Admiss.Dim(); d > maxDim {
			maxDim = d
		}
	}
	for i := 0; i < maxDim; i++ {
		if allConflictsDistinguishedByDim(t, i) {
			return i, true
		}
	}
	return 0, false
}

func allConflictsDistinguishedByDim(t *Type, dim int) bool {
	for i := range t.Constructors {
		for _, j := range t.Conflict.ConflictSet(i) {
			if j < i {
				continue
			}
			pi := t.Constructors[i].Admiss.Project([]int{dim})
			pj := t.Constructors[j].Admiss.Project([]int{dim})
			if !pi.Disjoint(pj) {
				return false
			}
		}
	}
	return true
}

// isParamDetermined reports whether every conflicting pair of
// constructors has pairwise-disjoint admissibility maps -- spec's
// is_param_determ, the condition required for the "param-value" dispatch
// strategy. This is a genuinely pairwise check: a constructor being fully
// admissible on its own (AllAdmissible) says nothing about whether its
// range overlaps a conflicting sibling's.
func isParamDetermined(t *Type) bool {
	for i := range t.Constructors {
		for _, j := range t.Conflict.ConflictSet(i) {
			if j < i {
				continue
			}
			if t.Constructors[i].Admiss.Conflicts(t.Constructors[j].Admiss) {
				return false
			}
		}
	}
	return true
}

func reportUnresolvedConflicts(c *Compiler, t *Type) {
	for i := range t.Constructors {
		conflicts := t.Conflict.ConflictSet(i)
		if len(conflicts) == 0 {
			continue
		}
		for _, j := range conflicts {
			if j <= i {
				continue
			}
			c.errorf(diag.KindDispatch, t.Constructors[i].At,
				"constructors %q and %q of type %q cannot be distinguished by prefix, constant field, or admissible value",
				t.Constructors[i].Name, t.Constructors[j].Name, t.Name)
		}
	}
}
