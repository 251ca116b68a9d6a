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

// maxAdmissDim is the largest number of natural parameters the
// admissibility cube tracks; a constructor with more surviving positive nat
// parameters than this just leaves the rest untracked (an open dimension
// would blow the cube's cell count up well past what a dispatch decision
// needs).
const maxAdmissDim = 4

// AdmissibilityInfo is a boolean cube of dimension 0..4, one axis per
// tracked natural parameter, each axis indexed by a 2-bit digit: 0 (exactly
// zero), 1 (exactly one), 2 (even >= 2), 3 (odd >= 3) -- the same four
// classes internal/syntax's abstract nat interpreter produces. cells[x]
// records whether the digit-tuple x (packed base-4, dimension 0 least
// significant) has been shown to occur.
type AdmissibilityInfo struct {
	dim   int
	cells []bool
}

// NewAdmissibilityInfo returns the bottom element (nothing shown to occur)
// for a cube tracking dim natural parameters, clamped to maxAdmissDim.
func NewAdmissibilityInfo(dim int) AdmissibilityInfo {
	if dim > maxAdmissDim {
		dim = maxAdmissDim
	}
	if dim < 0 {
		dim = 0
	}
	return AdmissibilityInfo{dim: dim, cells: make([]bool, pow4(dim))}
}

func pow4(n int) int {
	p := 1
	for range n {
		p *= 4
	}
	return p
}

// Dim reports how many parameters this cube tracks.
func (a AdmissibilityInfo) Dim() int { return a.dim }

// index packs a digit tuple (one 2-bit digit per dimension, 0..3) into a
// cell index; digits beyond a.dim are ignored.
func (a AdmissibilityInfo) index(digits []int) int {
	idx := 0
	mul := 1
	for i := 0; i < a.dim; i++ {
		d := 0
		if i < len(digits) {
			d = digits[i]
		}
		idx += d * mul
		mul *= 4
	}
	return idx
}

func (a AdmissibilityInfo) digitAt(cell, dim int) int {
	for range dim {
		cell /= 4
	}
	return cell % 4
}

// SetByPattern marks every cell matching pattern as occurring, where
// pattern[i] is either a single digit (0..3) to fix dimension i, a handful
// of digits to allow any of them, or nil to mean "any digit" (a wildcard
// fanning out across all four values of that axis). stepConstructor drives
// this once per tracked parameter, fed by AbstractInterpretNat's per-value
// class mask via internal/syntax.NatClassDigits.
func (a *AdmissibilityInfo) SetByPattern(pattern [][]int) {
	if a.dim == 0 {
		if len(a.cells) == 0 {
			a.cells = []bool{true}
		} else {
			a.cells[0] = true
		}
		return
	}
	digits := make([]int, a.dim)
	a.walkPattern(pattern, digits, 0)
}

func (a *AdmissibilityInfo) walkPattern(pattern [][]int, digits []int, i int) {
	if i == a.dim {
		a.cells[a.index(digits)] = true
		return
	}
	choices := []int{0, 1, 2, 3}
	if i < len(pattern) && pattern[i] != nil {
		choices = pattern[i]
	}
	for _, d := range choices {
		digits[i] = d
		a.walkPattern(pattern, digits, i+1)
	}
}

// MarkAdmissible is a single-dimension convenience over SetByPattern: it
// marks parameter i as admissible for every digit value, the coarse fact
// recorded when a field's type is known to be exact-sized but its concrete
// value class hasn't been narrowed further.
func (a *AdmissibilityInfo) MarkAdmissible(i int) {
	if i >= a.dim {
		return
	}
	pattern := make([][]int, a.dim)
	pattern[i] = nil
	a.SetByPattern(pattern)
}

// IsAdmissible reports whether digit d of dimension i has been shown to
// occur in some cell -- "can parameter i ever take a value of this class".
func (a AdmissibilityInfo) IsAdmissible(i, d int) bool {
	if i >= a.dim {
		return false
	}
	for x := 0; x < len(a.cells); x++ {
		if a.cells[x] && a.digitAt(x, i) == d {
			return true
		}
	}
	return false
}

// AllAdmissible reports whether every tracked dimension has some occurring
// cell. Necessary, but -- unlike the pairwise Conflicts check dispatch
// classification needs across a type's constructors -- not sufficient on
// its own to prove a parameter value distinguishes them.
func (a AdmissibilityInfo) AllAdmissible() bool {
	for _, occurs := range a.cells {
		if occurs {
			return true
		}
	}
	return a.dim == 0
}

// Extend returns a's cube widened to n dimensions (n >= a.dim), with every
// new axis left as a free wildcard over the patterns already recorded:
// existing occurring cells fan out across all four digits of each new
// dimension.
func (a AdmissibilityInfo) Extend(n int) AdmissibilityInfo {
	if n <= a.dim {
		return a
	}
	if n > maxAdmissDim {
		n = maxAdmissDim
	}
	out := NewAdmissibilityInfo(n)
	for x, occurs := range a.cells {
		if !occurs {
			continue
		}
		pattern := make([][]int, n)
		for i := 0; i < a.dim; i++ {
			pattern[i] = []int{a.digitAt(x, i)}
		}
		out.SetByPattern(pattern)
	}
	return out
}

// Or returns the pointwise union of a and b, extending the narrower cube's
// dimension first so both operands share a shape.
func (a AdmissibilityInfo) Or(b AdmissibilityInfo) AdmissibilityInfo {
	dim := max(a.dim, b.dim)
	a, b = a.Extend(dim), b.Extend(dim)
	out := NewAdmissibilityInfo(dim)
	for i := range out.cells {
		out.cells[i] = a.cells[i] || b.cells[i]
	}
	return out
}

// Conflicts reports whether a and b share any occurring cell: the pairwise
// check is_param_determ requires across every pair of a type's
// constructors before "const-param"/"param-value" dispatch is sound --
// disjoint admissibility maps are what let a decoder tell two constructors
// apart purely from a parameter's value.
func (a AdmissibilityInfo) Conflicts(b AdmissibilityInfo) bool {
	dim := max(a.dim, b.dim)
	a, b = a.Extend(dim), b.Extend(dim)
	for i := range a.cells {
		if a.cells[i] && b.cells[i] {
			return true
		}
	}
	return false
}

// Disjoint is the negation of Conflicts, spelled out for call sites that
// read more naturally asking for the positive fact.
func (a AdmissibilityInfo) Disjoint(b AdmissibilityInfo) bool {
	return !a.Conflicts(b)
}

// Project collapses the cube onto the given subset of dimensions (1, 2, or
// 3 of them, per spec), OR-folding out every other axis -- the operation
// dispatch classification uses to ask "restricted to just these
// parameters, do these constructors still not conflict".
func (a AdmissibilityInfo) Project(keep []int) AdmissibilityInfo {
	out := NewAdmissibilityInfo(len(keep))
	for x, occurs := range a.cells {
		if !occurs {
			continue
		}
		digits := make([]int, len(keep))
		ok := true
		for i, dim := range keep {
			if dim >= a.dim {
				ok = false
				break
			}
			digits[i] = a.digitAt(x, dim)
		}
		if ok {
			out.cells[out.index(digits)] = true
		}
	}
	return out
}

// Leq reports whether a carries no more information than b, used by the
// fixpoint driver's convergence check.
func (a AdmissibilityInfo) Leq(b AdmissibilityInfo) bool {
	dim := max(a.dim, b.dim)
	ae, be := a.Extend(dim), b.Extend(dim)
	for i := range ae.cells {
		if ae.cells[i] && !be.cells[i] {
			return false
		}
	}
	return true
}
