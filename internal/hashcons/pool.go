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

// Package hashcons deduplicates closed type expressions during binding.
// Two expressions that mean the same thing -- same constructor, same
// resolved type indices, same literal values -- collapse to one pool slot,
// so later passes can compare const-expr identity by a small int instead of
// walking trees.
package hashcons

import (
	"github.com/mitchellh/hashstructure/v2"

	"github.com/bufbuild/tlbc/internal/syntax"
)

// key is the hashable shadow of a syntax.TypeExpr: a closed expression's
// identity never depends on its source position, so At is omitted, and
// Args is recursed into through nested keys rather than pointers (pointer
// identity would defeat the whole point of hash-consing).
type key struct {
	Kind         syntax.Kind
	Value        int
	TypeIndex    int
	Negated      bool
	IsNatSubtype bool
	Args         []key
}

func toKey(e *syntax.TypeExpr) key {
	k := key{
		Kind:         e.Kind,
		Value:        e.Value,
		TypeIndex:    e.TypeIndex,
		Negated:      e.Negated,
		IsNatSubtype: e.IsNatSubtype,
	}
	if len(e.Args) > 0 {
		k.Args = make([]key, len(e.Args))
		for i, a := range e.Args {
			k.Args[i] = toKey(a)
		}
	}
	return k
}

// defaultCapacity is used when New is called with capacity <= 0, matching
// the original compiler's fixed-size open-addressed const-expr table.
const defaultCapacity = 4096

// Pool hash-conses closed expressions, assigning each distinct one a
// 1-based index (0 means "not yet interned") matching
// syntax.TypeExpr.IsConstExpr. It is a fixed-size table: once capacity
// distinct expressions have been interned, further novel expressions
// overflow (see Intern).
type Pool struct {
	byHash   map[uint64][]entry
	exprs    []*syntax.TypeExpr // index i holds the expr for IsConstExpr == i+1.
	capacity int
}

type entry struct {
	k     key
	index int
}

// New returns an empty pool bounded to capacity distinct entries; capacity
// <= 0 uses defaultCapacity.
func New(capacity int) *Pool {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Pool{byHash: make(map[uint64][]entry), capacity: capacity}
}

// Cap reports the pool's entry capacity.
func (p *Pool) Cap() int { return p.capacity }

// Intern returns the canonical pool index for e, assigning a fresh one the
// first time an expression with this shape is seen. e.TypeIndex must
// already be resolved (Intern is only meaningful on bound expressions);
// e.IsConstExpr is set to the returned index as a side effect, mirroring
// the original compiler's in-place memoization. ok is false when e is a
// novel expression but the pool is already at capacity: the table is
// exhausted and the caller must raise an OverflowError.
func (p *Pool) Intern(e *syntax.TypeExpr) (index int, ok bool) {
	if e.IsConstExpr != 0 {
		return e.IsConstExpr, true
	}
	k := toKey(e)
	h, err := hashstructure.Hash(k, hashstructure.FormatV2, nil)
	if err != nil {
		// hashstructure only fails on unsupported field types, which key's
		// shape (plain value types and slices of itself) never exhibits.
		panic("hashcons: unexpected hashstructure failure: " + err.Error())
	}
	for _, cand := range p.byHash[h] {
		if structurallyEqual(cand.k, k) {
			e.IsConstExpr = cand.index
			return cand.index, true
		}
	}
	if len(p.exprs) >= p.capacity {
		return 0, false
	}
	p.exprs = append(p.exprs, e)
	idx := len(p.exprs)
	p.byHash[h] = append(p.byHash[h], entry{k: k, index: idx})
	e.IsConstExpr = idx
	return idx, true
}

// structurallyEqual compares two keys field by field; key embeds a slice of
// itself so it cannot use Go's built-in == operator.
func structurallyEqual(a, b key) bool {
	if a.Kind != b.Kind || a.Value != b.Value || a.TypeIndex != b.TypeIndex ||
		a.Negated != b.Negated || a.IsNatSubtype != b.IsNatSubtype {
		return false
	}
	if len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if !structurallyEqual(a.Args[i], b.Args[i]) {
			return false
		}
	}
	return true
}

// Lookup returns the interned expression for a pool index, or nil if out of
// range.
func (p *Pool) Lookup(index int) *syntax.TypeExpr {
	if index < 1 || index > len(p.exprs) {
		return nil
	}
	return p.exprs[index-1]
}

// Len returns the number of distinct expressions interned so far.
func (p *Pool) Len() int { return len(p.exprs) }
