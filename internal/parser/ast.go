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

// Package parser turns a token stream into an unbound abstract syntax tree:
// one Declaration per constructor equation, with field and result
// expressions left as internal/syntax.TypeExpr trees referencing applied
// type names by string. Binding those names to Type records, and everything
// that depends on knowing a Type's arity or kind, is internal/sema's job.
package parser

import (
	"github.com/bufbuild/tlbc/internal/diag"
	"github.com/bufbuild/tlbc/internal/syntax"
)

// TagSpec is a constructor's declared tag, before the "auto" case (an absent
// TagSpec) is resolved by CRC32-deriving one from the canonical pretty-print.
type TagSpec struct {
	Bits  int // number of significant high bits; 0 is a valid, explicit "empty tag".
	Value uint64
	At    diag.Position
}

// FieldDecl is one field of a constructor: either a named field ("name:expr"),
// an implicit parameter introduced by "{ name : expr }" (ImplicitBrace),  or
// a bare unnamed field contributing only a constraint (Name == "").
type FieldDecl struct {
	Name          string
	Type          *syntax.TypeExpr
	ImplicitBrace bool
	IsOutput      bool // leading "~": this field's value is determined by the constructor, not consumed from it.
	At            diag.Position
}

// Declaration is one parsed constructor equation:
//
//	name#tag field1:Type1 field2:Type2 = ResultName Arg1 Arg2;
type Declaration struct {
	ConstructorName string
	IsSpecial       bool // true for "!name" constructors (tycheck-only).
	Tag             *TagSpec
	Fields          []FieldDecl
	ResultName      string
	ResultArgs      []*syntax.TypeExpr
	At              diag.Position
}

// Program is the full parse of one schema source: the declared equations in
// source order, followed by the declarations synthesized for inline
// "[ ... ]" records. Type names seen only as applications are not collected
// here; sema.Bind declares them implicitly with the observed arity.
type Program struct {
	Declarations []*Declaration
}
