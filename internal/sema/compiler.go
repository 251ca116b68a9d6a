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

// Package sema turns a parsed, unbound internal/parser.Program into a fully
// analyzed schema: every applied type name resolved to an index, every
// constructor's serialized size and bit prefix known, and every type
// assigned a dispatch strategy a decoder can execute. Every pass here is a
// free function taking a *Compiler, rather than a method on
// internal/syntax.TypeExpr, so that package stays free of any dependency on
// Type or Constructor records.
package sema

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/bufbuild/tlbc/internal/diag"
	"github.com/bufbuild/tlbc/internal/hashcons"
	"github.com/bufbuild/tlbc/internal/parser"
	"github.com/bufbuild/tlbc/internal/sizeset"
	"github.com/bufbuild/tlbc/internal/syntax"
)

// Field is one bound constructor field.
type Field struct {
	Name       string
	Type       *syntax.TypeExpr
	IsOutput   bool
	IsImplicit bool
	At         diag.Position

	// IsKnown holds once the value binder has shown this field's value is
	// computable at the point it would be used: directly, for a field read
	// off the wire, or by inversion, for an output field whose expression
	// the reverse pass proved invertible. A field left !IsKnown after
	// binding is reported as a BindingError.
	IsKnown bool
	// IsUsed holds once some later field's type expression references this
	// field by Param index.
	IsUsed bool
}

// Constructor is one bound equation of a Type.
type Constructor struct {
	Name       string
	IsSpecial  bool
	TagBits    int
	TagValue   uint64
	TagIsAuto  bool
	Fields     []Field
	ResultArgs []*syntax.TypeExpr
	ParentType int
	Index      int
	At         diag.Position

	// IsEnum is set once binding sees a constructor with no explicit
	// fields (every field it has, if any, is implicit). IsSimpleEnum
	// narrows that further to constructors whose result arguments carry
	// no surviving positive (input) type parameter, the condition under
	// which a code generator can compile the whole type to a plain enum.
	IsEnum       bool
	IsSimpleEnum bool

	// IsUnit holds for a simple-enum constructor that is also the sole
	// constructor of its type: decoding it produces no information at all
	// (a true "unit" value, as opposed to one variant among several
	// enumerators).
	IsUnit bool

	Size       sizeset.MinMaxSize
	BeginsWith sizeset.BitPrefixCollection
	Admiss     sizeset.AdmissibilityInfo

	// AnyBits reports whether some field's serialized width varies across
	// admissible values, which forces the admissibility cube itself (not
	// just begins_with) into the dispatch decision. Tracked separately from
	// Admiss because it is a fact about field-width variance, not a
	// parameter-value digit the cube indexes.
	AnyBits bool
}

// Type is one bound TL-B type: a name, an arity, and the constructors that
// build it.
type Type struct {
	Name      string
	Index     int
	Arity     int
	IsBuiltin bool

	Constructors []*Constructor

	Size       sizeset.MinMaxSize
	BeginsWith sizeset.BitPrefixCollection
	Conflict   *sizeset.ConflictGraph
	Trie       *sizeset.BinTrie
	Dispatch   DispatchStrategy
	// DispatchParamIndex is the admissibility dimension (ResultArgs
	// position) StrategyConstParam resolved ambiguity with; meaningless
	// for any other strategy.
	DispatchParamIndex int
	// Plan is the decision tree a decoder walks to pick a constructor,
	// built by buildPlan once Dispatch and Trie are known.
	Plan *DispatchNode

	// AnyBits reports whether t's encoding is "full": every bit pattern
	// of its declared size is a valid instance of some constructor. It is
	// the union, across constructors, of each constructor's
	// Constructor.AnyBits -- set once RunFixpoint converges.
	AnyBits bool

	// IsSimpleEnum holds once every constructor of t is a simple enum
	// (see Constructor.IsSimpleEnum): t is compilable to a plain
	// enumeration with no payload.
	IsSimpleEnum bool

	// IsBool holds for a type with exactly two simple-enum constructors,
	// one tagged $0 and the other $1 -- the shape a code generator can
	// compile straight to a native bool instead of a general enum.
	IsBool bool

	// ArgIsNat/ArgIsNatSet and ArgNegated/ArgPolaritySet record, per
	// result-argument position, the nat-vs-type kind and polarity seen the
	// first time this type was applied with an argument in that position;
	// every later application is checked against it so a kind or polarity
	// conflict across two constructors' uses of the same type is caught
	// once, at the position where it first disagrees.
	ArgIsNat       []bool
	ArgIsNatSet    []bool
	ArgNegated     []bool
	ArgPolaritySet []bool
}

// Limits holds the per-compile caps that would otherwise be hardcoded
// constants: how many constructors a type may declare, how many rounds the
// size/prefix/admissibility fixpoint may take before failing closed, how
// many distinct closed expressions the hash-cons pool may hold, the
// largest constructor size still considered "fits into a cell", and
// whether a user-supplied tag that disagrees with its derived value is a
// Warning or a hard BindingError.
type Limits struct {
	MaxConstructorsPerType int
	MaxFixpointIterations  int
	HashconsCapacity       int
	MaxCellBits            int
	MaxCellRefs            int
	TagMismatchIsError     bool
}

// DefaultLimits returns the limits this compiler used as hardcoded
// constants before Config exposed them.
func DefaultLimits() Limits {
	return Limits{
		MaxConstructorsPerType: 64,
		MaxFixpointIterations:  256,
		HashconsCapacity:       4096,
		MaxCellBits:            1023,
		MaxCellRefs:            4,
	}
}

// Compiler is the shared context every analysis pass mutates, threaded
// through binding, the fixpoint passes, trie construction, and dispatch
// classification the same way a single compiler value threads through each
// stage of the teacher's own descriptor compilation pipeline.
type Compiler struct {
	Log    *logrus.Logger
	Limits Limits

	types     []*Type
	typeIndex map[string]int

	hashcons *hashcons.Pool

	Errors   []*diag.Error
	Warnings []*diag.Warning

	stats *Stats
}

// NewCompiler returns a Compiler with the builtin type table pre-populated,
// governed by limits (see Limits; pass DefaultLimits() for the compiler's
// historical defaults).
func NewCompiler(log *logrus.Logger, limits Limits) *Compiler {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.WarnLevel)
	}
	c := &Compiler{
		Log:       log,
		Limits:    limits,
		typeIndex: make(map[string]int),
		hashcons:  hashcons.New(limits.HashconsCapacity),
		stats:     newStats(),
	}
	registerBuiltins(c)
	return c
}

// InternConst hash-conses a closed, non-negated subexpression, returning
// its pool index. It raises a KindOverflow diagnostic and returns 0 if the
// pool is already at capacity.
func (c *Compiler) InternConst(e *syntax.TypeExpr, at diag.Position) int {
	idx, ok := c.hashcons.Intern(e)
	if !ok {
		c.errorf(diag.KindOverflow, at, "const-expression pool exhausted its %d-entry capacity", c.hashcons.Cap())
		return 0
	}
	return idx
}

// Types returns every bound type, builtin and user-declared, in declaration
// order.
func (c *Compiler) Types() []*Type { return c.types }

// TypeByName returns the type bound to name, or nil.
func (c *Compiler) TypeByName(name string) *Type {
	idx, ok := c.typeIndex[name]
	if !ok {
		return nil
	}
	return c.types[idx]
}

// TypeByIndex returns the type at idx.
func (c *Compiler) TypeByIndex(idx int) *Type {
	if idx < 0 || idx >= len(c.types) {
		return nil
	}
	return c.types[idx]
}

func (c *Compiler) declareType(name string, arity int, builtin bool, at diag.Position) *Type {
	t := &Type{Name: name, Index: len(c.types), Arity: arity, IsBuiltin: builtin}
	c.types = append(c.types, t)
	c.typeIndex[name] = t.Index
	c.Log.WithFields(logrus.Fields{"type": name, "arity": arity, "builtin": builtin}).Debug("declared type")
	return t
}

func (c *Compiler) errorf(kind diag.Kind, at diag.Position, format string, args ...any) {
	c.Errors = append(c.Errors, diag.New(kind, at, format, args...))
}

func (c *Compiler) warnf(kind diag.Kind, at diag.Position, format string, args ...any) {
	c.Warnings = append(c.Warnings, &diag.Warning{Kind: kind, At: at, Message: fmt.Sprintf(format, args...)})
}

// Compile runs the full pipeline -- bind, tag derivation, the fixpoint
// passes, the cell-fit check, then trie construction and dispatch
// classification -- over prog. Diagnostics accumulate on c.Errors and
// c.Warnings; nothing is returned. If binding reports any error the later
// passes are skipped; after a clean bind every pass runs, so cell-fit and
// dispatch errors from different types are all reported in one run.
func (c *Compiler) Compile(prog *parser.Program) {
	Bind(c, prog)
	if len(c.Errors) > 0 {
		return
	}
	DeriveTags(c)
	RunFixpoint(c)
	c.checkCellFit()
	c.classifyUnitBool()
	for _, t := range c.types {
		if t.IsBuiltin {
			continue
		}
		BuildDispatch(c, t)
	}
}

// checkCellFit rejects any constructor whose converged size cannot fit in
// a single cell (more bits than Limits.MaxCellBits, or more references
// than Limits.MaxCellRefs), per §4.6's "fits_into_cell" supplemental
// check: an oversize constructor is a SizeError, not a silently accepted
// type nothing can ever encode correctly. A maximum of sizeset.Unbounded
// means the size is not known (a type parameter, Any, or a tuple of
// unresolved length) and is not checked.
func (c *Compiler) checkCellFit() {
	for _, t := range c.types {
		if t.IsBuiltin {
			continue
		}
		for _, ctor := range t.Constructors {
			if ctor.Size.IsImpossible() {
				continue
			}
			bitsOver := ctor.Size.MaxBits < sizeset.Unbounded && ctor.Size.MaxBits > c.Limits.MaxCellBits
			refsOver := ctor.Size.MaxRefs < sizeset.Unbounded && ctor.Size.MaxRefs > c.Limits.MaxCellRefs
			if bitsOver || refsOver {
				c.errorf(diag.KindSize, ctor.At,
					"constructor %q of type %q has max size %d bits / %d refs, exceeding the %d-bit / %d-ref cell limit",
					ctor.Name, t.Name, ctor.Size.MaxBits, ctor.Size.MaxRefs, c.Limits.MaxCellBits, c.Limits.MaxCellRefs)
			}
		}
	}
}

// classifyUnitBool marks every constructor's IsUnit flag and every type's
// IsBool flag once size/admissibility analysis has converged: IsUnit holds
// for a simple-enum constructor that is also its type's only constructor,
// and IsBool holds for a type with exactly the two one-bit-tag simple-enum
// constructors $0 and $1.
func (c *Compiler) classifyUnitBool() {
	for _, t := range c.types {
		if t.IsBuiltin {
			continue
		}
		if len(t.Constructors) == 1 && t.Constructors[0].IsSimpleEnum {
			t.Constructors[0].IsUnit = true
		}
		if len(t.Constructors) == 2 &&
			t.Constructors[0].IsSimpleEnum && t.Constructors[1].IsSimpleEnum &&
			t.Constructors[0].TagBits == 1 && t.Constructors[1].TagBits == 1 &&
			t.Constructors[0].TagValue != t.Constructors[1].TagValue {
			t.IsBool = true
		}
	}
}
