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

// Package syntax holds the parsed, not-yet-bound representation of a TL-B
// schema: type expression trees and the symbol table that names them.
//
// Expressions reference types by index into a flat table owned by whoever
// binds them (see internal/sema), never by pointer, so that this package has
// no dependency on the semantic analyzer and values here remain trivially
// comparable and serializable.
package syntax

import (
	"fmt"
	"strings"

	"github.com/bufbuild/tlbc/internal/diag"
)

// Kind discriminates the ten constructive forms a TypeExpr may take.
type Kind int

const (
	KindType Kind = iota
	KindParam
	KindApply
	KindAdd
	KindGetBit
	KindMulConst
	KindIntConst
	KindTuple
	KindRef
	KindCondType
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "Type"
	case KindParam:
		return "Param"
	case KindApply:
		return "Apply"
	case KindAdd:
		return "Add"
	case KindGetBit:
		return "GetBit"
	case KindMulConst:
		return "MulConst"
	case KindIntConst:
		return "IntConst"
	case KindTuple:
		return "Tuple"
	case KindRef:
		return "Ref"
	case KindCondType:
		return "CondType"
	default:
		return "Unknown"
	}
}

// TypeExpr is a node in a type expression tree.
//
// The meaning of Value and Args depends on Kind:
//
//	KindType      -- no payload; denotes the builtin "Type" sort.
//	KindParam     -- Value is the field index of the enclosing constructor.
//	KindApply     -- TypeName/TypeIndex name the applied type; Args are its arguments.
//	KindAdd       -- Args[0] + Args[1].
//	KindGetBit    -- Args[0] . Args[1] (bit Args[1] of Args[0]).
//	KindMulConst  -- Value * Args[0].
//	KindIntConst  -- Value is the literal.
//	KindTuple     -- Args[0] copies of Args[1] (count expr, element expr).
//	KindRef       -- ^Args[0].
//	KindCondType  -- Args[0] ? Args[1] (condition nat expr, element expr).
type TypeExpr struct {
	Kind Kind
	Value int

	// TypeName is the symbolic name of an applied type before it is
	// resolved; TypeIndex is -1 until resolution fills it in.
	TypeName  string
	TypeIndex int

	IsNat        bool
	IsNatSubtype bool
	Negated      bool
	TchkOnly     bool

	// IsConstExpr is 0 until hash-consing assigns a 1-based const-expr
	// pool index (see internal/hashcons).
	IsConstExpr int

	At   diag.Position
	Args []*TypeExpr
}

// NewIntConst builds a KindIntConst node.
func NewIntConst(at diag.Position, value int) *TypeExpr {
	return &TypeExpr{Kind: KindIntConst, Value: value, IsNat: true, TypeIndex: -1, At: at}
}

// NewParam builds a KindParam node referencing field idx.
func NewParam(at diag.Position, idx int, isNat bool) *TypeExpr {
	return &TypeExpr{Kind: KindParam, Value: idx, IsNat: isNat, TypeIndex: -1, At: at}
}

// NewApply builds an unresolved KindApply node.
func NewApply(at diag.Position, name string, args []*TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: KindApply, TypeName: name, TypeIndex: -1, Args: args, At: at}
}

// NewBinOp builds a KindAdd or KindGetBit node.
func NewBinOp(at diag.Position, kind Kind, a, b *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: kind, IsNat: true, TypeIndex: -1, Args: []*TypeExpr{a, b}, At: at}
}

// NewMulConst builds a KindMulConst node: k * a.
func NewMulConst(at diag.Position, k int, a *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: KindMulConst, Value: k, IsNat: true, TypeIndex: -1, Args: []*TypeExpr{a}, At: at}
}

// NewTuple builds a KindTuple node: count copies of elem.
func NewTuple(at diag.Position, count, elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: KindTuple, TypeIndex: -1, Args: []*TypeExpr{count, elem}, At: at}
}

// NewRef builds a KindRef node: ^inner.
func NewRef(at diag.Position, inner *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: KindRef, TypeIndex: -1, Args: []*TypeExpr{inner}, At: at}
}

// NewCondType builds a KindCondType node: cond ? elem.
func NewCondType(at diag.Position, cond, elem *TypeExpr) *TypeExpr {
	return &TypeExpr{Kind: KindCondType, TypeIndex: -1, Args: []*TypeExpr{cond, elem}, At: at}
}

// IsInteger reports whether e denotes an integer (nat-producing) expression;
// mirrors the original is_nat flag but also treats a bare reference to a nat
// builtin type as integer.
func (e *TypeExpr) IsInteger() bool {
	return e.IsNat
}

// IsAnon reports whether e applies an anonymous (autogenerated) type: the
// "_anonN" type the parser synthesizes for an inline "[ ... ]" record, or
// an Apply with an empty TypeName.
func (e *TypeExpr) IsAnon() bool {
	return e.Kind == KindApply && (e.TypeName == "" || strings.HasPrefix(e.TypeName, "_anon"))
}

// IsRefToAnon reports whether e is a Ref wrapping an anonymous Apply.
func (e *TypeExpr) IsRefToAnon() bool {
	return e.Kind == KindRef && len(e.Args) == 1 && e.Args[0].IsAnon()
}

// Equal reports whether two closed expressions are structurally identical:
// same Kind, same Value, same resolved TypeIndex, and recursively equal Args.
// Negation is part of identity because `-x` and `x` are different closed
// expressions.
func (e *TypeExpr) Equal(other *TypeExpr) bool {
	if e == other {
		return true
	}
	if e == nil || other == nil {
		return false
	}
	if e.Kind != other.Kind || e.Value != other.Value || e.TypeIndex != other.TypeIndex || e.Negated != other.Negated {
		return false
	}
	if len(e.Args) != len(other.Args) {
		return false
	}
	for i := range e.Args {
		if !e.Args[i].Equal(other.Args[i]) {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Abstract nat interpretation.
// ---------------------------------------------------------------------------

// Abstract nat classes, encoded as a 4-bit mask over a small lattice of
// "shapes" a natural number can have: exactly 0, exactly 1, some even number
// >= 2, or some odd number >= 3. classTop means "no information".
const (
	classZero   = 1 << 0
	classOne    = 1 << 1
	classEven2  = 1 << 2 // even, >= 2
	classOdd3   = 1 << 3 // odd, >= 3
	classTop    = classZero | classOne | classEven2 | classOdd3
	classBottom = 0
)

func classify(n int) int {
	switch {
	case n == 0:
		return classZero
	case n == 1:
		return classOne
	case n%2 == 0:
		return classEven2
	default:
		return classOdd3
	}
}

// addTable[a][b] is the set of classes reachable by adding any concrete
// value of class a to any concrete value of class b, for the four singleton
// classes; liftAdd unions this over the bits set in each operand.
var addTable = buildAddTable()

func buildAddTable() [4][4]int {
	var t [4][4]int
	reps := [4]int{0, 1, 2, 3} // representative value for each singleton class.
	for i, a := range reps {
		for j, b := range reps {
			t[i][j] = classify(a + b)
		}
	}
	return t
}

func liftAdd(a, b int) int {
	if a == classTop || b == classTop {
		// Still worth narrowing: 0 is absorbing-ish only for a subset, so
		// fall through to full union below rather than short-circuiting.
		_ = 0
	}
	result := classBottom
	for i := range 4 {
		if a&(1<<i) == 0 {
			continue
		}
		for j := range 4 {
			if b&(1<<j) == 0 {
				continue
			}
			result |= addTable[i][j]
		}
	}
	if result == classBottom {
		return classTop
	}
	return result
}

var mulTable = buildMulTable()

func buildMulTable() [4][4]int {
	var t [4][4]int
	reps := [4]int{0, 1, 2, 3}
	for i, a := range reps {
		for j, b := range reps {
			t[i][j] = classify(a * b)
		}
	}
	return t
}

func liftMul(k int, a int) int {
	kc := classify(k)
	result := classBottom
	for i := range 4 {
		if a&(1<<i) == 0 {
			continue
		}
		for j := range 4 {
			if kc&(1<<j) == 0 {
				continue
			}
			result |= mulTable[i][j]
		}
	}
	if result == classBottom {
		return classTop
	}
	return result
}

// AbstractInterpretNat classifies the shape of e's value using the
// {0, 1, even>=2, odd>=3} lattice. Expressions this cannot constrain (bare
// parameters, applied types) return classTop.
func (e *TypeExpr) AbstractInterpretNat() int {
	switch e.Kind {
	case KindIntConst:
		return classify(e.Value)
	case KindAdd:
		return liftAdd(e.Args[0].AbstractInterpretNat(), e.Args[1].AbstractInterpretNat())
	case KindMulConst:
		return liftMul(e.Value, e.Args[0].AbstractInterpretNat())
	case KindGetBit:
		// Testing one bit of an unconstrained quantity can yield either
		// parity; without further constant-folding we cannot narrow past
		// "produces 0 or 1", which in this lattice is simply classTop
		// unless the source is itself fully constant.
		if e.Args[0].Kind == KindIntConst && e.Args[1].Kind == KindIntConst {
			bit := (e.Args[0].Value >> uint(e.Args[1].Value)) & 1
			return classify(bit)
		}
		return classTop
	default:
		return classTop
	}
}

// NatClassDigits expands a mask returned by AbstractInterpretNat into the
// set of 2-bit admissibility-cube digits it represents: 0 (exactly zero), 1
// (exactly one), 2 (even >= 2), 3 (odd >= 3). classTop expands to all four,
// since the cube tracks "could this digit occur" per parameter.
func NatClassDigits(mask int) []int {
	var out []int
	if mask&classZero != 0 {
		out = append(out, 0)
	}
	if mask&classOne != 0 {
		out = append(out, 1)
	}
	if mask&classEven2 != 0 {
		out = append(out, 2)
	}
	if mask&classOdd3 != 0 {
		out = append(out, 3)
	}
	return out
}

// ---------------------------------------------------------------------------
// Pretty-printing.
// ---------------------------------------------------------------------------

// ShowMode controls how Show renders field references and type polarity,
// matching the two audiences a rendered expression serves: a human-readable
// diagnostic, and the canonical form hashed to derive an implicit tag.
type ShowMode int

const (
	// ShowDiagnostic renders field names when FieldName is provided and
	// omits polarity marks that would not help a human reader.
	ShowDiagnostic ShowMode = iota
	// ShowCanonical renders the fixed style used as CRC32 input for
	// auto-derived tags: no names, explicit polarity marks. An applied
	// inline-record type is rendered by its synthesized "_anonN" name, not
	// as "[ ... ]".
	ShowCanonical
)

// Priority levels, matching the grammar's precedence chain (lowest first).
const (
	prioCompare = 10
	prioAdd     = 20
	prioMul     = 30
	prioApply   = 90
	prioCond    = 95
	prioGetBit  = 97
	prioRef     = 100
	prioAtom    = 1000
)

// FieldNamer resolves a field index to its declared name, or "" if it has
// none; used only in ShowDiagnostic mode.
type FieldNamer func(idx int) string

// Show renders e to w at precedence context prio: if e's own priority is
// lower than prio, it is parenthesized.
func (e *TypeExpr) Show(w interface{ WriteString(string) (int, error) }, names FieldNamer, prio int, mode ShowMode) {
	switch e.Kind {
	case KindType:
		w.WriteString("Type")
	case KindParam:
		if mode == ShowDiagnostic && names != nil {
			if n := names(e.Value); n != "" {
				w.WriteString(n)
				return
			}
		}
		fmt.Fprintf(writerAdapter{w}, "#%d", e.Value)
	case KindIntConst:
		fmt.Fprintf(writerAdapter{w}, "%d", e.Value)
	case KindApply:
		open := prioApply < prio
		if open {
			w.WriteString("(")
		}
		name := e.TypeName
		if name == "" {
			name = "_"
		}
		w.WriteString(name)
		for _, a := range e.Args {
			w.WriteString(" ")
			if mode == ShowCanonical && a.Negated {
				w.WriteString("~")
			}
			a.Show(w, names, prioApply+1, mode)
		}
		if open {
			w.WriteString(")")
		}
	case KindAdd:
		open := prioAdd < prio
		if open {
			w.WriteString("(")
		}
		e.Args[0].Show(w, names, prioAdd, mode)
		w.WriteString(" + ")
		e.Args[1].Show(w, names, prioAdd+1, mode)
		if open {
			w.WriteString(")")
		}
	case KindMulConst:
		open := prioMul < prio
		if open {
			w.WriteString("(")
		}
		fmt.Fprintf(writerAdapter{w}, "%d", e.Value)
		w.WriteString(" * ")
		e.Args[0].Show(w, names, prioMul+1, mode)
		if open {
			w.WriteString(")")
		}
	case KindGetBit:
		open := prioGetBit < prio
		if open {
			w.WriteString("(")
		}
		e.Args[0].Show(w, names, prioGetBit, mode)
		w.WriteString(".")
		e.Args[1].Show(w, names, prioGetBit+1, mode)
		if open {
			w.WriteString(")")
		}
	case KindCondType:
		open := prioCond < prio
		if open {
			w.WriteString("(")
		}
		e.Args[0].Show(w, names, prioCond+1, mode)
		w.WriteString("?")
		e.Args[1].Show(w, names, prioCond, mode)
		if open {
			w.WriteString(")")
		}
	case KindTuple:
		w.WriteString("[")
		if mode == ShowCanonical {
			w.WriteString(" ")
		}
		e.Args[0].Show(w, names, 0, mode)
		w.WriteString(" * ")
		e.Args[1].Show(w, names, prioAtom, mode)
		if mode == ShowCanonical {
			w.WriteString(" ")
		}
		w.WriteString("]")
	case KindRef:
		w.WriteString("^")
		e.Args[0].Show(w, names, prioRef, mode)
	}
}

// writerAdapter lets fmt.Fprintf target the narrow WriteString interface
// Show accepts, so callers can pass a strings.Builder or any io.StringWriter
// without pulling in io as a hard dependency of this file's signatures.
type writerAdapter struct {
	w interface{ WriteString(string) (int, error) }
}

func (a writerAdapter) Write(p []byte) (int, error) {
	return a.w.WriteString(string(p))
}
