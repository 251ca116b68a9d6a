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

package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bufbuild/tlbc/internal/syntax"
)

func TestParseUnitConstructor(t *testing.T) {
	prog, err := New("t.tlb", []byte(`unit$_ = Unit;`)).Parse()
	require.Nil(t, err)
	require.Len(t, prog.Declarations, 1)

	d := prog.Declarations[0]
	require.Equal(t, "unit", d.ConstructorName)
	require.NotNil(t, d.Tag)
	require.Equal(t, 0, d.Tag.Bits)
	require.Equal(t, "Unit", d.ResultName)
	require.Empty(t, d.Fields)
}

func TestParseBoolConstructors(t *testing.T) {
	src := `bool_false$0 = Bool;
bool_true$1 = Bool;`
	prog, err := New("t.tlb", []byte(src)).Parse()
	require.Nil(t, err)
	require.Len(t, prog.Declarations, 2)
	require.Equal(t, 1, prog.Declarations[0].Tag.Bits)
	require.Equal(t, uint64(0), prog.Declarations[0].Tag.Value)
	require.Equal(t, uint64(1), prog.Declarations[1].Tag.Value)
}

func TestParseFieldsAndResultArgs(t *testing.T) {
	src := `pair#_ {X:Type} {Y:Type} first:X second:Y = Pair X Y;`
	prog, err := New("t.tlb", []byte(src)).Parse()
	require.Nil(t, err)

	d := prog.Declarations[0]
	require.Equal(t, "pair", d.ConstructorName)
	require.Len(t, d.Fields, 4)
	require.True(t, d.Fields[0].ImplicitBrace)
	require.Equal(t, "X", d.Fields[0].Name)
	require.Equal(t, "first", d.Fields[2].Name)
	require.Equal(t, syntax.KindParam, d.Fields[2].Type.Kind)
	require.Len(t, d.ResultArgs, 2)
}

func TestParseConditionalField(t *testing.T) {
	src := `maybe_x flags:# x:flags.0?Int = M flags;`
	prog, err := New("t.tlb", []byte(src)).Parse()
	require.Nil(t, err)

	d := prog.Declarations[0]
	xField := d.Fields[1]
	require.Equal(t, syntax.KindCondType, xField.Type.Kind)
	require.Equal(t, syntax.KindGetBit, xField.Type.Args[0].Kind)
}

func TestParseNatTag(t *testing.T) {
	src := `vector {n:#} = Vector n;`
	prog, err := New("t.tlb", []byte(src)).Parse()
	require.Nil(t, err)
	require.Len(t, prog.Declarations[0].ResultArgs, 1)
	require.Equal(t, syntax.KindParam, prog.Declarations[0].ResultArgs[0].Kind)
}

// A bare "#"/"##"/"#<"/"#<=" field type is nat-valued on sight, before Bind
// ever resolves the applied name, because parseBuiltinHash is the only thing
// that produces those four names.
func TestParseNatTagMarksParamAsNatBeforeBinding(t *testing.T) {
	src := `vector {n:#} = Vector n;`
	prog, err := New("t.tlb", []byte(src)).Parse()
	require.Nil(t, err)
	require.True(t, prog.Declarations[0].ResultArgs[0].IsNat)
}

func TestParseInlineAnonymousRecordHoistsDeclaration(t *testing.T) {
	src := `wrap value:[ a:Int b:Int ] = Wrap;`
	prog, err := New("t.tlb", []byte(src)).Parse()
	require.Nil(t, err)
	// The wrap declaration plus one synthesized declaration for "[ ... ]".
	require.Len(t, prog.Declarations, 2)

	wrap := prog.Declarations[0]
	require.True(t, wrap.Fields[0].Type.IsAnon())

	anon := prog.Declarations[1]
	require.Len(t, anon.Fields, 2)
}

func TestParseTuple(t *testing.T) {
	src := `rows n:# data:[ n * Int ] = Rows n;`
	prog, err := New("t.tlb", []byte(src)).Parse()
	require.Nil(t, err)
	require.Equal(t, syntax.KindTuple, prog.Declarations[0].Fields[1].Type.Kind)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := New("t.tlb", []byte(`broken#_ field:Int`)).Parse()
	require.NotNil(t, err)
}

func TestParseDuplicateFieldNameFails(t *testing.T) {
	_, err := New("t.tlb", []byte(`dup a:Int a:Int = Dup;`)).Parse()
	require.NotNil(t, err)
	require.Equal(t, "BindingError", err.Kind.String())
}
