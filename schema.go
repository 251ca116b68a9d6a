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

package tlbc

import (
	"context"
	"strings"

	"github.com/tiendc/go-deepcopy"

	"github.com/bufbuild/tlbc/internal/sema"
	"github.com/bufbuild/tlbc/internal/sizeset"
	"github.com/bufbuild/tlbc/internal/syntax"
)

// Size is the inclusive range of bits and cell references a value can
// occupy once serialized.
type Size struct {
	MinBits, MaxBits int
	MinRefs, MaxRefs int
}

// Prefix is a fixed number of known leading bits, left-justified into Bits
// (bit 63 first); Len is how many of those bits are meaningful.
type Prefix struct {
	Bits uint64
	Len  int
}

// Field is one field of a Constructor.
type Field struct {
	Name       string
	IsOutput   bool
	IsImplicit bool

	// IsKnown reports whether the value binder proved this field's value
	// computable -- directly, for a field read off the wire, or by
	// inversion, for an output field.
	IsKnown bool
	// IsUsed reports whether some later field's type expression reads
	// this field's value.
	IsUsed bool
}

// Constructor is one named, tagged equation of a Type.
type Constructor struct {
	Name         string
	IsSpecial    bool
	TagBits      int
	TagValue     uint64
	TagIsAuto    bool
	Fields       []Field
	ResultArgs   []string
	Size         Size
	BeginsWith   []Prefix
	IsEnum       bool
	IsSimpleEnum bool

	// HasFixedSize reports whether Size denotes a single exact size
	// (every instance of this constructor serializes to the same number
	// of bits and references).
	HasFixedSize bool
	// IsUnit holds for a simple-enum constructor that is also the sole
	// constructor of its type: decoding it produces no information.
	IsUnit bool
}

// DispatchNodeKind names one step of a Type's dispatch Plan.
type DispatchNodeKind int

const (
	NodeReturnConstructor DispatchNodeKind = iota
	NodeBitTest
	NodePrefixTable
	NodeParamSwitch
	NodeParamMatrix
)

// DispatchNode is one node of the decision tree a decoder walks to pick a
// constructor: see the sema.DispatchNode this mirrors for what each field
// means per Kind.
type DispatchNode struct {
	Kind        DispatchNodeKind
	Constructor int
	BitOffset   int
	Zero, One   *DispatchNode
	Table       map[uint64]*DispatchNode
	UsefulBits  int
	ParamIndex  int
	Cases       map[int]*DispatchNode
	Candidates  []int
}

// Type is one bound TL-B type together with the analysis this package
// performs over it.
type Type struct {
	Name         string
	Arity        int
	Constructors []Constructor
	Size         Size
	BeginsWith   []Prefix
	Dispatch     string

	// Plan is the decision tree a decoder walks to identify which
	// constructor a serialized value was built with, nil for a
	// zero-constructor type.
	Plan *DispatchNode

	// HasFixedSize reports whether Size denotes a single exact size.
	HasFixedSize bool
	// AnyBits reports whether every bit pattern of Size is a valid
	// instance of some constructor.
	AnyBits bool
	// IsSimpleEnum reports whether every constructor of this type is a
	// payload-free, parameter-free variant compilable to a plain enum.
	IsSimpleEnum bool
	// IsBool holds for a type with exactly two one-bit-tag simple-enum
	// constructors, the shape a code generator can compile to a native
	// bool.
	IsBool bool
}

// Schema is the fully analyzed result of compiling one TL-B source: every
// user-declared type, in declaration order, each with its constructors'
// tags, sizes, and chosen dispatch strategy resolved.
type Schema struct {
	Types []Type

	// digest is populated by Compile; see Schema.Digest.
	digest [32]byte
}

// TypeByName returns the type named name, or (Type{}, false) if s has none.
func (s *Schema) TypeByName(name string) (Type, bool) {
	for _, t := range s.Types {
		if t.Name == name {
			return t, true
		}
	}
	return Type{}, false
}

// Clone returns a deep copy of s, safe to mutate independently.
func (s *Schema) Clone(ctx context.Context) (*Schema, error) {
	var out Schema
	if err := deepcopy.Copy(ctx, &out, s); err != nil {
		return nil, err
	}
	return &out, nil
}

// buildSchema copies the compiler's internal analysis into the public,
// stable-shaped facade this package returns from Compile.
func buildSchema(c *sema.Compiler) *Schema {
	var s Schema
	for _, t := range c.UserTypes() {
		pt := Type{
			Name:         t.Name,
			Arity:        t.Arity,
			Size:         sizeFromSema(t.Size),
			BeginsWith:   prefixesFromSema(t.BeginsWith),
			Dispatch:     t.Dispatch.String(),
			Plan:         planFromSema(t.Plan),
			HasFixedSize: t.Size.IsExact(),
			AnyBits:      t.AnyBits,
			IsSimpleEnum: t.IsSimpleEnum,
			IsBool:       t.IsBool,
		}
		for _, ctor := range t.Constructors {
			pc := Constructor{
				Name:         ctor.Name,
				IsSpecial:    ctor.IsSpecial,
				TagBits:      ctor.TagBits,
				TagValue:     ctor.TagValue,
				TagIsAuto:    ctor.TagIsAuto,
				Size:         sizeFromSema(ctor.Size),
				BeginsWith:   prefixesFromSema(ctor.BeginsWith),
				IsEnum:       ctor.IsEnum,
				IsSimpleEnum: ctor.IsSimpleEnum,
				HasFixedSize: ctor.Size.IsExact(),
				IsUnit:       ctor.IsUnit,
			}
			for _, f := range ctor.Fields {
				pc.Fields = append(pc.Fields, Field{
					Name: f.Name, IsOutput: f.IsOutput, IsImplicit: f.IsImplicit,
					IsKnown: f.IsKnown, IsUsed: f.IsUsed,
				})
			}
			for _, a := range ctor.ResultArgs {
				if a == nil {
					continue
				}
				var b strings.Builder
				a.Show(&b, nil, 1000, syntax.ShowDiagnostic)
				pc.ResultArgs = append(pc.ResultArgs, b.String())
			}
			pt.Constructors = append(pt.Constructors, pc)
		}
		s.Types = append(s.Types, pt)
	}
	return &s
}

func sizeFromSema(sz sizeset.MinMaxSize) Size {
	return Size{MinBits: sz.MinBits, MaxBits: sz.MaxBits, MinRefs: sz.MinRefs, MaxRefs: sz.MaxRefs}
}

func prefixesFromSema(c sizeset.BitPrefixCollection) []Prefix {
	if c.IsAny() || c.IsEmpty() {
		return nil
	}
	out := make([]Prefix, 0, len(c.Prefixes()))
	for _, p := range c.Prefixes() {
		out = append(out, Prefix{Bits: p.Bits, Len: p.Len})
	}
	return out
}

// planFromSema copies a sema.DispatchNode tree into the public facade,
// preserving sharing of leaf nodes the way sema itself builds it (a
// NodePrefixTable's Table commonly maps many keys to the very same
// *DispatchNode).
func planFromSema(n *sema.DispatchNode) *DispatchNode {
	if n == nil {
		return nil
	}
	out := &DispatchNode{
		Kind:        DispatchNodeKind(n.Kind),
		Constructor: n.Constructor,
		BitOffset:   n.BitOffset,
		UsefulBits:  n.UsefulBits,
		ParamIndex:  n.ParamIndex,
		Candidates:  n.Candidates,
	}
	if n.Zero != nil {
		out.Zero = planFromSema(n.Zero)
	}
	if n.One != nil {
		out.One = planFromSema(n.One)
	}
	if n.Table != nil {
		seen := make(map[*sema.DispatchNode]*DispatchNode, len(n.Table))
		out.Table = make(map[uint64]*DispatchNode, len(n.Table))
		for k, v := range n.Table {
			if pv, ok := seen[v]; ok {
				out.Table[k] = pv
				continue
			}
			pv := planFromSema(v)
			seen[v] = pv
			out.Table[k] = pv
		}
	}
	if n.Cases != nil {
		out.Cases = make(map[int]*DispatchNode, len(n.Cases))
		for k, v := range n.Cases {
			out.Cases[k] = planFromSema(v)
		}
	}
	return out
}
