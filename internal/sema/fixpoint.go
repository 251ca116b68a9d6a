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
	"github.com/bufbuild/tlbc/internal/diag"
	"github.com/bufbuild/tlbc/internal/sizeset"
	"github.com/bufbuild/tlbc/internal/syntax"
)

// RunFixpoint iterates size, begins_with and admissibility to a fixed
// point across every user-declared type, in the style of a classic
// worklist dataflow analysis: each round recomputes every constructor from
// its current field types, folds the results up into each type, and stops
// once a round changes nothing.
func RunFixpoint(c *Compiler) {
	limit := c.Limits.MaxFixpointIterations
	rounds := 0
	for {
		rounds++
		changed := false
		for _, t := range c.types {
			if t.IsBuiltin {
				continue
			}
			if stepType(c, t) {
				changed = true
			}
		}
		if !changed || rounds >= limit {
			break
		}
	}
	c.Stats().FixpointIterations.Record(float64(rounds))
	if rounds >= limit {
		c.errorf(diag.KindInternal, zeroPos,
			"size/prefix analysis did not converge after %d rounds; check for an unguarded recursive type", rounds)
	}
}

func stepType(c *Compiler, t *Type) bool {
	changed := false
	size := sizeset.Impossible
	begins := sizeset.Empty()
	anyBits := false
	simpleEnum := len(t.Constructors) > 0

	for _, ctor := range t.Constructors {
		if !ctor.IsSimpleEnum {
			simpleEnum = false
		}
		newSize, newBegins, newAdmiss, newAnyBits := stepConstructor(c, ctor)
		if !newSize.Leq(ctor.Size) || !ctor.Size.Leq(newSize) {
			ctor.Size = newSize
			changed = true
		}
		if !newBegins.Leq(ctor.BeginsWith) {
			ctor.BeginsWith = newBegins
			changed = true
		}
		// Admissibility depends only on ctor's own result arguments, so the
		// value computed here is final and never feeds another type's step.
		ctor.Admiss = newAdmiss
		if newAnyBits != ctor.AnyBits {
			ctor.AnyBits = newAnyBits
			changed = true
		}

		size = size.Union(ctor.Size)
		begins = begins.Union(ctor.BeginsWith)
		anyBits = anyBits || ctor.AnyBits
	}

	if !size.Leq(t.Size) || !t.Size.Leq(size) {
		t.Size = size
		changed = true
	}
	if !begins.Leq(t.BeginsWith) {
		t.BeginsWith = begins
		changed = true
	}
	if anyBits != t.AnyBits {
		t.AnyBits = anyBits
		changed = true
	}
	if simpleEnum != t.IsSimpleEnum {
		t.IsSimpleEnum = simpleEnum
		changed = true
	}
	return changed
}

// stepConstructor recomputes one constructor's size, begins_with,
// admissibility, and any_bits from its tag, current field types, and
// result arguments. Implicit "{...}" fields are not serialized and add
// nothing to size or begins_with.
func stepConstructor(c *Compiler, ctor *Constructor) (sizeset.MinMaxSize, sizeset.BitPrefixCollection, sizeset.AdmissibilityInfo, bool) {
	size := sizeset.Exact(ctor.TagBits, 0)
	var begins sizeset.BitPrefixCollection
	if ctor.TagBits > 0 {
		begins = sizeset.Single(sizeset.Prefix{Bits: ctor.TagValue << uint(64-ctor.TagBits), Len: ctor.TagBits})
	} else {
		begins = sizeset.Empty()
	}

	anyBits := len(ctor.Fields) == 0
	for _, f := range ctor.Fields {
		if f.IsImplicit {
			continue
		}
		fs, fb := evaluateFieldType(c, f.Type)
		size = size.Add(fs)
		begins = begins.Concat(fb)
		if !fs.IsExact() {
			anyBits = true
		}
	}

	admiss := admissibilityFromResultArgs(ctor)
	return size, begins, admiss, anyBits
}

// admissibilityFromResultArgs builds ctor's admissibility cube by
// abstract-interpreting up to four surviving positive nat parameters among
// its result arguments, per §3/§4.4: each tracked dimension's occurring
// digits come straight from internal/syntax.NatClassDigits applied to that
// argument's AbstractInterpretNat() mask.
func admissibilityFromResultArgs(ctor *Constructor) sizeset.AdmissibilityInfo {
	var tracked []*syntax.TypeExpr
	for _, a := range ctor.ResultArgs {
		if a == nil || a.Negated || !a.IsNat {
			continue
		}
		tracked = append(tracked, a)
		if len(tracked) == 4 {
			break
		}
	}
	admiss := sizeset.NewAdmissibilityInfo(len(tracked))
	if len(tracked) == 0 {
		admiss.SetByPattern(nil) // dim 0: the single trivial cell always occurs.
		return admiss
	}
	pattern := make([][]int, len(tracked))
	for i, a := range tracked {
		pattern[i] = syntax.NatClassDigits(a.AbstractInterpretNat())
	}
	admiss.SetByPattern(pattern)
	return admiss
}

// evaluateFieldType computes the size and begins_with contribution of one
// field's type expression, recursing into user types that are themselves
// mid-fixpoint (their current, possibly not-yet-final Size/BeginsWith is
// used, same as any other dataflow analysis reading a not-yet-converged
// predecessor).
func evaluateFieldType(c *Compiler, e *syntax.TypeExpr) (sizeset.MinMaxSize, sizeset.BitPrefixCollection) {
	switch e.Kind {
	case syntax.KindParam:
		return unknownSize(), sizeset.Any()

	case syntax.KindApply:
		if e.TypeIndex < 0 {
			return unknownSize(), sizeset.Any()
		}
		t := c.TypeByIndex(e.TypeIndex)
		if t == nil {
			return unknownSize(), sizeset.Any()
		}
		if t.IsBuiltin {
			return evaluateBuiltin(t.Name, e.Args), sizeset.Any()
		}
		return t.Size, t.BeginsWith

	case syntax.KindRef:
		return sizeset.Exact(0, 1), sizeset.Any()

	case syntax.KindTuple:
		elemSize, elemBegins := evaluateFieldType(c, e.Args[1])
		if e.Args[0].Kind == syntax.KindIntConst {
			n := e.Args[0].Value
			if n == 0 {
				return sizeset.Zero, sizeset.Empty()
			}
			return elemSize.Repeat(n), elemBegins
		}
		return elemSize.Repeat(-1), sizeset.Any()

	case syntax.KindCondType:
		elemSize, _ := evaluateFieldType(c, e.Args[1])
		return sizeset.Zero.Union(elemSize), sizeset.Any()

	default:
		return sizeset.Zero, sizeset.Empty()
	}
}

func unknownSize() sizeset.MinMaxSize {
	return sizeset.MinMaxSize{MinBits: 0, MaxBits: sizeset.Unbounded, MinRefs: 0, MaxRefs: sizeset.Unbounded}
}

func evaluateBuiltin(name string, args []*syntax.TypeExpr) sizeset.MinMaxSize {
	for _, b := range builtinTable {
		if b.name != name || b.size == nil {
			continue
		}
		vals := make([]int, 0, len(args))
		for _, a := range args {
			if a.Kind == syntax.KindIntConst {
				vals = append(vals, a.Value)
			} else {
				vals = append(vals, -1) // unresolved: the size function's fallback applies.
			}
		}
		return b.size(vals)
	}
	return unknownSize()
}
