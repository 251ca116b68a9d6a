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

	"github.com/bufbuild/tlbc/internal/diag"
	"github.com/bufbuild/tlbc/internal/parser"
	"github.com/bufbuild/tlbc/internal/sizeset"
	"github.com/bufbuild/tlbc/internal/syntax"
)

// Bind walks prog's declarations, implicitly declaring a Type for every
// unrecognized uppercase name the first time it is applied (fixing that
// type's arity to the argument count of that first use), resolving every
// other Apply node to the Type it names, and attaching each constructor to
// its result type. It is the only pass that mutates the Compiler's type
// table; everything after it only ever reads Types and writes analysis
// results onto Constructor/Type values already in place.
func Bind(c *Compiler, prog *parser.Program) {
	for _, d := range prog.Declarations {
		resolveDeclExprs(c, d)
	}
	for _, d := range prog.Declarations {
		bindDeclaration(c, d)
	}
	for _, t := range c.types {
		if !t.IsBuiltin && len(t.Constructors) == 0 {
			c.warnf(diag.KindBinding, zeroPos, "type %q is declared but never constructed", t.Name)
		}
		if len(t.Constructors) > c.Limits.MaxConstructorsPerType {
			c.errorf(diag.KindOverflow, zeroPos, "type %q has %d constructors, exceeding the limit of %d",
				t.Name, len(t.Constructors), c.Limits.MaxConstructorsPerType)
		}
	}
}

// resolveDeclExprs resolves every Apply node reachable from d's fields and
// result arguments, implicitly declaring new types as needed. It also
// resolves d's result name itself so the type exists before
// bindDeclaration needs to attach the constructor to it.
func resolveDeclExprs(c *Compiler, d *parser.Declaration) {
	for i := range d.Fields {
		resolveExpr(c, d.Fields[i].Type, d.Fields[i].At)
	}
	for _, a := range d.ResultArgs {
		resolveExpr(c, a, d.At)
	}
	resolveTypeName(c, d.ResultName, len(d.ResultArgs), d.At)
}

// resolveExpr resolves every Apply node within e in place, setting
// TypeIndex and checking arity against any prior use of the same name.
func resolveExpr(c *Compiler, e *syntax.TypeExpr, fallback diag.Position) {
	if e == nil {
		return
	}
	at := e.At
	if at.IsZero() {
		at = fallback
	}
	if e.Kind == syntax.KindApply && e.TypeName != "" {
		t := resolveTypeName(c, e.TypeName, len(e.Args), at)
		if t != nil {
			e.TypeIndex = t.Index
			e.IsNat = isNatType(c, t)
			checkArgKindsAndPolarity(c, t, e.Args, at)
		}
	}
	for _, a := range e.Args {
		resolveExpr(c, a, at)
	}
}

// checkArgKindsAndPolarity records, the first time t is applied, each
// argument's nat-vs-type kind and negated/positive polarity, and checks
// every later application against it: per §4.4, an Apply's close operation
// "rejects negative arguments to a type whose corresponding parameter is
// positive" and "detects polarity or kind conflicts across constructors".
// A parameter's kind/polarity is fixed by its first use, the same rule
// resolveTypeName already applies to arity.
func checkArgKindsAndPolarity(c *Compiler, t *Type, args []*syntax.TypeExpr, at diag.Position) {
	if t.ArgIsNat == nil {
		t.ArgIsNat = make([]bool, len(args))
		t.ArgIsNatSet = make([]bool, len(args))
		t.ArgNegated = make([]bool, len(args))
		t.ArgPolaritySet = make([]bool, len(args))
	}
	for i, a := range args {
		if a == nil || i >= len(t.ArgIsNat) {
			continue
		}
		if !t.ArgIsNatSet[i] {
			t.ArgIsNat[i] = a.IsNat
			t.ArgIsNatSet[i] = true
		} else if t.ArgIsNat[i] != a.IsNat {
			c.errorf(diag.KindKind, at,
				"type %q argument %d is used as both a nat and a type-sorted expression across constructors",
				t.Name, i)
		}
		if !t.ArgPolaritySet[i] {
			t.ArgNegated[i] = a.Negated
			t.ArgPolaritySet[i] = true
		} else if t.ArgNegated[i] != a.Negated {
			c.errorf(diag.KindPolarity, at,
				"type %q argument %d has conflicting polarity across constructors: negative argument passed where an earlier use fixed it positive (or vice versa)",
				t.Name, i)
		}
	}
}

// resolveTypeName returns the Type bound to name, declaring it with the
// given arity if this is its first mention, or reporting an ArityError if a
// later mention disagrees with the arity already on record.
func resolveTypeName(c *Compiler, name string, arity int, at diag.Position) *Type {
	if name == "" {
		return nil
	}
	if t := c.TypeByName(name); t != nil {
		if t.Arity != arity {
			c.errorf(diag.KindArity, at, "%q is used with %d argument(s), but was first seen with %d",
				name, arity, t.Arity)
		}
		return t
	}
	return c.declareType(name, arity, false, at)
}

// isNatType reports whether t denotes a value the nat-expression grammar
// may use in an arithmetic position: the builtin "#" and "##" families, or
// a user type whose every constructor's result is itself nat-shaped (this
// compiler only needs the builtin case, since "Nat a" style indirection
// through a user type is not part of the grammar this binder accepts).
func isNatType(c *Compiler, t *Type) bool {
	switch t.Name {
	case "#", "##", "#<", "#<=":
		return true
	}
	return false
}

// bindDeclaration attaches one Constructor, built from d, to its result
// type.
func bindDeclaration(c *Compiler, d *parser.Declaration) {
	t := c.TypeByName(d.ResultName)
	if t == nil {
		return // resolveDeclExprs already reported why.
	}

	ctor := &Constructor{
		Name:       d.ConstructorName,
		IsSpecial:  d.IsSpecial,
		ResultArgs: d.ResultArgs,
		ParentType: t.Index,
		Index:      len(t.Constructors),
		At:         d.At,
		Size:       sizeset.Zero,
		BeginsWith: sizeset.Empty(),
	}
	if d.Tag != nil {
		ctor.TagBits = d.Tag.Bits
		ctor.TagValue = d.Tag.Value
	} else if d.ConstructorName == "_" {
		// An unnamed constructor without a tag gets the empty tag.
		ctor.TagBits = 0
	} else {
		ctor.TagIsAuto = true
	}
	for _, f := range d.Fields {
		ctor.Fields = append(ctor.Fields, Field{
			Name:       f.Name,
			Type:       f.Type,
			IsOutput:   f.IsOutput,
			IsImplicit: f.ImplicitBrace,
			At:         f.At,
		})
	}
	ctor.IsEnum = !hasExplicitField(ctor.Fields)
	ctor.IsSimpleEnum = ctor.IsEnum && !hasSurvivingPositiveTypeParam(ctor.ResultArgs)

	bindValues(c, ctor)
	internConstExprs(c, ctor)

	t.Constructors = append(t.Constructors, ctor)
}

// bindValues implements the two-pass forward/reverse value binder of
// §4.5. The forward pass marks every ordinary (non-output) field known,
// since its value is read directly off the wire; a field whose type is
// exactly a reference to an earlier field is known by aliasing. The
// reverse pass walks fields left to right marking every field referenced
// by a later expression as used, and checks that every output field's
// expression is invertible (Param trivially, MulConst by undoing the
// scale, Add by subtracting the known side when exactly one side is
// negated). A field left unbound after both passes is a BindingError.
func bindValues(c *Compiler, ctor *Constructor) {
	for i := range ctor.Fields {
		f := &ctor.Fields[i]
		if f.IsOutput || f.Type == nil {
			continue
		}
		if f.Type.Kind == syntax.KindParam {
			if j := f.Type.Value; j >= 0 && j < len(ctor.Fields) && j != i {
				ctor.Fields[j].IsUsed = true
			}
		}
		f.IsKnown = true
	}

	for i := range ctor.Fields {
		f := &ctor.Fields[i]
		if f.Type == nil {
			continue
		}
		walkParams(f.Type, func(j int) {
			if j >= 0 && j < len(ctor.Fields) {
				ctor.Fields[j].IsUsed = true
			}
		})
		if !f.IsOutput {
			continue
		}
		if !invertibleExpr(f.Type) {
			c.errorf(diag.KindBinding, f.At,
				"field %q is an output field but its expression is not invertible (need a field reference, a constant scaling, or a sum with exactly one negated side)",
				fieldLabel(f, i))
			continue
		}
		f.IsKnown = true
	}

	for i := range ctor.Fields {
		f := &ctor.Fields[i]
		if f.IsImplicit {
			// An implicit "{name:Expr}" field only ever introduces a
			// parameter binding; it carries no payload of its own to
			// leave unbound.
			continue
		}
		if !f.IsKnown {
			c.errorf(diag.KindBinding, f.At, "field %q is left unbound: its value is never determined", fieldLabel(f, i))
		}
	}
}

func fieldLabel(f *Field, i int) string {
	if f.Name != "" {
		return f.Name
	}
	return fmt.Sprintf("#%d", i)
}

// walkParams invokes fn for every KindParam leaf reachable from e.
func walkParams(e *syntax.TypeExpr, fn func(idx int)) {
	if e == nil {
		return
	}
	if e.Kind == syntax.KindParam {
		fn(e.Value)
	}
	for _, a := range e.Args {
		walkParams(a, fn)
	}
}

// invertibleExpr reports whether e is one of the forms §4.5 names as
// invertible: a bare field reference, a constant scaling of an invertible
// expression, or a sum with exactly one negated side (subtract the known
// side to recover the other).
func invertibleExpr(e *syntax.TypeExpr) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case syntax.KindParam:
		return true
	case syntax.KindMulConst:
		return len(e.Args) == 1 && invertibleExpr(e.Args[0])
	case syntax.KindAdd:
		if len(e.Args) != 2 {
			return false
		}
		a, b := e.Args[0], e.Args[1]
		if a.Negated == b.Negated {
			return false
		}
		return true
	default:
		return false
	}
}

// internConstExprs hash-conses every closed, non-negated subexpression
// reachable from ctor's fields and result arguments, per §4.4: field types
// and result arguments are already fully resolved by this point
// (resolveDeclExprs runs before bindDeclaration), so every node here is
// eligible.
func internConstExprs(c *Compiler, ctor *Constructor) {
	for _, f := range ctor.Fields {
		internTree(c, f.Type)
	}
	for _, a := range ctor.ResultArgs {
		internTree(c, a)
	}
}

func internTree(c *Compiler, e *syntax.TypeExpr) {
	if e == nil {
		return
	}
	for _, a := range e.Args {
		internTree(c, a)
	}
	if e.Negated {
		return
	}
	c.InternConst(e, e.At)
}

// hasExplicitField reports whether fields contains at least one
// non-implicit field -- the condition that disqualifies a constructor
// from being an enum variant.
func hasExplicitField(fields []Field) bool {
	for _, f := range fields {
		if !f.IsImplicit {
			return true
		}
	}
	return false
}

// hasSurvivingPositiveTypeParam reports whether any of a constructor's
// result arguments is a non-negated type-sorted expression: a positive
// type parameter a decoder would still need to thread through, which
// disqualifies the owning constructor from being a simple enum.
func hasSurvivingPositiveTypeParam(args []*syntax.TypeExpr) bool {
	for _, a := range args {
		if a == nil {
			continue
		}
		if !a.IsNat && !a.Negated {
			return true
		}
	}
	return false
}
