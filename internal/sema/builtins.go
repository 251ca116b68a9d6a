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
	"fmt"
	"math/bits"

	"github.com/bufbuild/tlbc/internal/diag"
	"github.com/bufbuild/tlbc/internal/sizeset"
)

// zeroPos marks positions that have no meaningful source location, such as
// the builtin types registered before any file is parsed.
var zeroPos diag.Position

// builtinSpec describes one builtin type's fixed shape: its arity and,
// where known statically (independent of its arguments), its serialized
// size.
type builtinSpec struct {
	name  string
	arity int
	size  func(args []int) sizeset.MinMaxSize // args are the constant nat args, where applicable.
}

// builtinTable lists every pseudotype the lexer/parser can produce without
// a user declaration: the fixed-width integers, the width-parametrized nat
// family, and the two opaque leaves Any and Cell.
var builtinTable = buildBuiltinTable()

func buildBuiltinTable() []builtinSpec {
	specs := []builtinSpec{
		{name: "#", arity: 0, size: func([]int) sizeset.MinMaxSize { return sizeset.Exact(32, 0) }},
		{name: "##", arity: 1, size: func(args []int) sizeset.MinMaxSize {
			if len(args) == 1 && args[0] >= 0 {
				return sizeset.Exact(args[0], 0)
			}
			return sizeset.MinMaxSize{MinBits: 0, MaxBits: 32}
		}},
		// #< n / #<= n ("NatLess"/"NatLeq") are a nat strictly/non-strictly
		// bounded by n, serialized in the fewest bits that can hold every
		// admissible value: ceil(log2(n)) / ceil(log2(n+1)).
		{name: "#<", arity: 1, size: func(args []int) sizeset.MinMaxSize {
			if len(args) != 1 || args[0] < 0 {
				return sizeset.MinMaxSize{MinBits: 0, MaxBits: 32}
			}
			n := args[0]
			if n <= 1 {
				return sizeset.Exact(0, 0)
			}
			return sizeset.Exact(bits.Len(uint(n-1)), 0)
		}},
		{name: "#<=", arity: 1, size: func(args []int) sizeset.MinMaxSize {
			if len(args) != 1 || args[0] < 0 {
				return sizeset.MinMaxSize{MinBits: 0, MaxBits: 32}
			}
			return sizeset.Exact(bits.Len(uint(args[0])), 0)
		}},
		{name: "Any", arity: 0, size: func([]int) sizeset.MinMaxSize {
			return sizeset.MinMaxSize{MinBits: 0, MaxBits: sizeset.Unbounded, MinRefs: 0, MaxRefs: sizeset.Unbounded}
		}},
		{name: "Cell", arity: 0, size: func([]int) sizeset.MinMaxSize { return sizeset.Exact(0, 1) }},
	}
	for _, width := range []int{1, 7, 8, 15, 16, 31, 32, 63, 64, 127, 128, 255, 256, 257} {
		w := width
		specs = append(specs,
			builtinSpec{name: fmt.Sprintf("int%d", w), arity: 0, size: fixedBits(w)},
			builtinSpec{name: fmt.Sprintf("uint%d", w), arity: 0, size: fixedBits(w)},
			builtinSpec{name: fmt.Sprintf("bits%d", w), arity: 0, size: fixedBits(w)},
		)
	}
	specs = append(specs,
		builtinSpec{name: "int", arity: 1, size: widthParametrized(257)},
		builtinSpec{name: "uint", arity: 1, size: widthParametrized(256)},
		builtinSpec{name: "bits", arity: 1, size: widthParametrized(1023)},
	)
	return specs
}

// widthParametrized builds the size function for the generic-width spelling
// of int/uint/bits: "int 32" takes its width from the single argument,
// falling back to the type's widest fixed spelling (cap) when the argument
// isn't a resolved constant.
func widthParametrized(cap int) func([]int) sizeset.MinMaxSize {
	return func(args []int) sizeset.MinMaxSize {
		if len(args) == 1 && args[0] >= 0 {
			return sizeset.Exact(args[0], 0)
		}
		return sizeset.MinMaxSize{MinBits: 0, MaxBits: cap}
	}
}

func fixedBits(w int) func([]int) sizeset.MinMaxSize {
	return func([]int) sizeset.MinMaxSize { return sizeset.Exact(w, 0) }
}

func registerBuiltins(c *Compiler) {
	for _, b := range builtinTable {
		c.declareType(b.name, b.arity, true, zeroPos)
	}
}
