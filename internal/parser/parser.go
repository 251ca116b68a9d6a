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
	"fmt"

	"github.com/bufbuild/tlbc/internal/diag"
	"github.com/bufbuild/tlbc/internal/lexer"
	"github.com/bufbuild/tlbc/internal/syntax"
)

// Expression precedence levels, matching syntax.TypeExpr's Show priorities:
// juxtaposed application binds looser than a conditional field, which binds
// looser than bit selection, which binds looser than a reference mark.
const (
	precBase   = 0
	precAdd    = 20
	precMul    = 30
	precApply  = 90
	precCond   = 95
	precGetBit = 97
	precRef    = 100
)

// abort is panicked internally to unwind to Parse on the first syntax error;
// Parse recovers it into a normal error return.
type abort struct{ err *diag.Error }

// Parser consumes one token stream and builds a Program. It mutates a
// syntax.Table as it goes so that field names become Param lookups for the
// rest of their enclosing constructor, matching how the original compiler
// resolves identifiers during a single parsing pass rather than in a
// separate name-resolution phase.
type Parser struct {
	lex  *lexer.Lexer
	cur  lexer.Token
	next lexer.Token
	syms *syntax.Table

	anonCount int
	pending   []*Declaration // synthesized declarations for "[ ... ]" inline records.
}

// New returns a parser over src, named file for diagnostics.
func New(file string, src []byte) *Parser {
	p := &Parser{lex: lexer.New(file, src), syms: syntax.NewTable()}
	p.advance()
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur = p.next
	tok, err := p.lex.Next()
	if err != nil {
		panic(abort{err})
	}
	p.next = tok
}

func (p *Parser) fail(at diag.Position, format string, args ...any) {
	panic(abort{diag.New(diag.KindSyntax, at, format, args...)})
}

func (p *Parser) failKind(kind diag.Kind, at diag.Position, format string, args ...any) {
	panic(abort{diag.New(kind, at, format, args...)})
}

func (p *Parser) expectPunct(ch byte) {
	if p.cur.Kind != lexer.TokPunct || p.cur.Text != string(ch) {
		p.fail(p.cur.At, "expected %q, found %q", string(ch), p.cur.Text)
	}
	p.advance()
}

func (p *Parser) atPunct(ch byte) bool {
	return p.cur.Kind == lexer.TokPunct && p.cur.Text == string(ch)
}

// Parse consumes the whole token stream and returns the resulting Program.
func (p *Parser) Parse() (prog *Program, err *diag.Error) {
	defer func() {
		if r := recover(); r != nil {
			if a, ok := r.(abort); ok {
				err = a.err
				return
			}
			panic(r)
		}
	}()

	var decls []*Declaration
	for p.cur.Kind != lexer.TokEOF {
		decls = append(decls, p.parseDeclaration())
	}
	decls = append(decls, p.pending...)
	return &Program{Declarations: decls}, nil
}

// parseDeclaration parses one "name#tag field:Type ... = Result args;"
// equation.
func (p *Parser) parseDeclaration() *Declaration {
	at := p.cur.At
	d := &Declaration{At: at}

	switch p.cur.Kind {
	case lexer.TokSpecLCIdent:
		d.IsSpecial = true
		d.ConstructorName = p.cur.Text
		p.advance()
	case lexer.TokLCIdent:
		d.ConstructorName = p.cur.Text
		p.advance()
	case lexer.TokPunct:
		if p.cur.Text == "_" {
			d.ConstructorName = "_"
			p.advance()
		} else {
			p.fail(at, "expected constructor name, found %q", p.cur.Text)
		}
	default:
		p.fail(at, "expected constructor name, found %q", p.cur.Text)
	}

	if p.cur.Kind == lexer.TokHexTag || p.cur.Kind == lexer.TokBinTag {
		// A tag literal glued immediately after the constructor name.
		if p.cur.TagBits >= 0 {
			d.Tag = &TagSpec{Bits: p.cur.TagBits, Value: p.cur.TagValue, At: p.cur.At}
			p.advance()
		}
		// A bare "#"/"$" here is the (common) explicit marker for "derive the
		// tag automatically"; leaving d.Tag nil already means exactly that,
		// so we still need to consume the token.
		if d.Tag == nil && (p.cur.Kind == lexer.TokHexTag || p.cur.Kind == lexer.TokBinTag) {
			p.advance()
		}
	}

	p.syms.Open()
	fieldIdx := 0
	for !p.atPunct('=') {
		d.Fields = append(d.Fields, p.parseField(&fieldIdx))
	}
	p.expectPunct('=')

	d.ResultName, d.ResultArgs = p.parseResult()
	p.expectPunct(';')
	p.syms.Close()
	return d
}

// parseField parses one field: "{name:Expr}" (implicit), "~name:Expr"
// (output), "name:Expr" (ordinary), or a bare constraint expression.
func (p *Parser) parseField(fieldIdx *int) FieldDecl {
	at := p.cur.At
	fd := FieldDecl{At: at}

	if p.atPunct('{') {
		p.advance()
		fd.ImplicitBrace = true
		fd.Name, fd.Type = p.parseNamedField(fieldIdx)
		p.expectPunct('}')
		return fd
	}

	if p.atPunct('~') {
		p.advance()
		fd.IsOutput = true
	}

	name, typ := p.parseNamedField(fieldIdx)
	fd.Name, fd.Type = name, typ
	return fd
}

// parseNamedField parses "ident : Expr", registering ident as a Param symbol
// visible to the rest of the constructor's fields and its result.
func (p *Parser) parseNamedField(fieldIdx *int) (string, *syntax.TypeExpr) {
	at := p.cur.At
	var name string
	switch p.cur.Kind {
	case lexer.TokLCIdent, lexer.TokUCIdent:
		name = p.cur.Text
		p.advance()
	case lexer.TokPunct:
		if p.cur.Text == "_" {
			name = "_"
			p.advance()
		}
	}
	if name == "" {
		// An unnamed field: just a constraint expression, e.g. a bare "##".
		return "", p.parseExpr(precBase)
	}
	p.expectPunct(':')
	typ := p.parseExpr(precBase)

	// typ.IsInteger() only reflects Bind's later resolution; at parse time
	// a bare "#"/"##"/"#<"/"#<=" application is the one other shape known
	// to be nat-valued on sight, since parseBuiltinHash is the only thing
	// that ever produces those names.
	isNat := typ.IsInteger() || typ.Kind == syntax.KindParam || isNatApplyName(typ)
	idx := *fieldIdx
	*fieldIdx++
	if name != "_" {
		if !p.syms.Define(&syntax.Symbol{
			Name: name, Class: syntax.ClassParam, At: at,
			ParamIndex: idx, ParamIsNat: isNat,
		}) {
			p.failKind(diag.KindBinding, at, "field %q redeclares a name already bound in this constructor", name)
		}
	}
	return name, typ
}

// parseResult parses "UCIdent Arg1 Arg2 ...", the equation's right-hand
// side.
func (p *Parser) parseResult() (string, []*syntax.TypeExpr) {
	at := p.cur.At
	if p.cur.Kind != lexer.TokUCIdent {
		p.fail(at, "expected result type name, found %q", p.cur.Text)
	}
	name := p.cur.Text
	p.advance()

	var args []*syntax.TypeExpr
	for p.startsArgNotField() {
		args = append(args, p.parseExpr(precApply+1))
	}
	return name, args
}

// startsAtom reports whether the current token can begin a tight-binding
// expression atom, used both for juxtaposed application arguments and for
// the result's argument list.
func (p *Parser) startsAtom() bool {
	switch p.cur.Kind {
	case lexer.TokLCIdent, lexer.TokUCIdent, lexer.TokSpecLCIdent, lexer.TokNumber, lexer.TokHexTag, lexer.TokBinTag:
		return true
	case lexer.TokPunct:
		switch p.cur.Text {
		case "(", "[", "^", "~", "_":
			return true
		}
	}
	return false
}

// startsArgNotField is startsAtom, refined to stop juxtaposed-application
// consumption one token before the next field declaration: an identifier
// immediately followed by ':' always opens a new "name:Type" field, never
// continues the current expression as an argument, since no argument
// position in the grammar is itself followed by a bare ':'.
func (p *Parser) startsArgNotField() bool {
	if !p.startsAtom() {
		return false
	}
	isIdent := p.cur.Kind == lexer.TokLCIdent || p.cur.Kind == lexer.TokUCIdent
	if isIdent && p.next.Kind == lexer.TokPunct && p.next.Text == ":" {
		return false
	}
	return true
}

// parseExpr implements precedence climbing over syntax.TypeExpr's operator
// set: prefix atoms, then juxtaposed application, "." bit-select, "?"
// conditional, and "+"/"*" arithmetic, each gated by minPrec against the
// priority constants in internal/syntax.
func (p *Parser) parseExpr(minPrec int) *syntax.TypeExpr {
	left := p.parsePrefix()

	for {
		switch {
		case minPrec <= precApply && canTakeArgs(left) && p.startsArgNotField():
			arg := p.parseExpr(precApply + 1)
			left.Args = append(left.Args, arg)

		case minPrec <= precGetBit && p.atPunct('.'):
			at := p.cur.At
			p.advance()
			right := p.parseExpr(precGetBit + 1)
			left = syntax.NewBinOp(at, syntax.KindGetBit, left, right)

		case minPrec <= precCond && p.atPunct('?'):
			at := p.cur.At
			p.advance()
			right := p.parseExpr(precCond)
			left = syntax.NewCondType(at, left, right)

		case minPrec <= precAdd && p.atPunct('+'):
			at := p.cur.At
			p.advance()
			right := p.parseExpr(precAdd + 1)
			left = syntax.NewBinOp(at, syntax.KindAdd, left, right)

		case minPrec <= precMul && p.atPunct('*') && left.Kind == syntax.KindIntConst:
			p.advance()
			right := p.parseExpr(precMul + 1)
			left = syntax.NewMulConst(left.At, left.Value, right)

		default:
			return left
		}
	}
}

// canTakeArgs reports whether left is the head of a type/param application
// that may still absorb more juxtaposed arguments.
func canTakeArgs(left *syntax.TypeExpr) bool {
	return left.Kind == syntax.KindApply
}

// isNatApplyName reports whether e is an unresolved application of one of
// the four builtin nat pseudotypes.
func isNatApplyName(e *syntax.TypeExpr) bool {
	if e.Kind != syntax.KindApply {
		return false
	}
	switch e.TypeName {
	case "#", "##", "#<", "#<=":
		return true
	}
	return false
}

// parsePrefix parses one prefix position: a literal, an identifier (the
// start of an application), a parenthesized sub-expression, a tuple or
// inline record, a reference mark, or a negation mark.
func (p *Parser) parsePrefix() *syntax.TypeExpr {
	at := p.cur.At

	switch p.cur.Kind {
	case lexer.TokNumber:
		n := p.cur.Num
		p.advance()
		return syntax.NewIntConst(at, n)

	case lexer.TokKeywordType:
		p.advance()
		return &syntax.TypeExpr{Kind: syntax.KindType, TypeIndex: -1, At: at}

	case lexer.TokKeywordEmpty:
		p.advance()
		return syntax.NewApply(at, "Empty", nil)

	case lexer.TokHexTag, lexer.TokBinTag:
		return p.parseBuiltinHash()

	case lexer.TokLCIdent, lexer.TokUCIdent:
		name := p.cur.Text
		p.advance()
		if sym, ok := p.syms.Lookup(name); ok && sym.Class == syntax.ClassParam {
			return syntax.NewParam(at, sym.ParamIndex, sym.ParamIsNat)
		}
		return syntax.NewApply(at, name, nil)

	case lexer.TokSpecLCIdent:
		name := p.cur.Text
		p.advance()
		return syntax.NewApply(at, name, nil)

	case lexer.TokPunct:
		switch p.cur.Text {
		case "(":
			p.advance()
			e := p.parseExpr(precBase)
			p.expectPunct(')')
			return e
		case "[":
			return p.parseBracket()
		case "^":
			p.advance()
			inner := p.parseExpr(precRef)
			return syntax.NewRef(at, inner)
		case "~":
			p.advance()
			inner := p.parseExpr(precRef)
			inner.Negated = true
			return inner
		case "_":
			p.advance()
			return syntax.NewApply(at, "", nil)
		}
	}

	p.fail(at, "unexpected token %q in type expression", p.cur.Text)
	panic("unreachable")
}

// parseBuiltinHash disambiguates a "#"/"$" token seen in expression
// position: an explicit hex/bin tag literal never appears here (those only
// follow a constructor name), so a TokHexTag/TokBinTag here is always one of
// the builtin pseudotypes "#" (Nat32), "##" (Nat, parametrized by the
// following width), "#<"/"#<=" (bounded Nat).
func (p *Parser) parseBuiltinHash() *syntax.TypeExpr {
	at := p.cur.At
	if p.cur.TagBits >= 0 {
		p.fail(at, "bit/hex tag literal is not valid in a type expression")
	}
	p.advance()

	if p.cur.Kind == lexer.TokHexTag && p.cur.TagBits < 0 {
		// "##": parametrized Nat, argument is the bit width.
		p.advance()
		e := syntax.NewApply(at, "##", nil)
		return e
	}
	if p.atPunct('<') {
		p.advance()
		e := syntax.NewApply(at, "#<", []*syntax.TypeExpr{p.parseExpr(precApply + 1)})
		return e
	}
	if p.cur.Kind == lexer.TokLe {
		p.advance()
		e := syntax.NewApply(at, "#<=", []*syntax.TypeExpr{p.parseExpr(precApply + 1)})
		return e
	}
	return syntax.NewApply(at, "#", nil)
}

// parseBracket parses "[ n * Elem ]" (a fixed-length tuple) or
// "[ field1:Type1 field2:Type2 ]" (an inline anonymous record, hoisted out
// as a synthetic Declaration and replaced here by a reference to it).
func (p *Parser) parseBracket() *syntax.TypeExpr {
	at := p.cur.At
	p.advance() // consume '['

	// Distinguish the two forms by attempting the tuple form first: it
	// always starts with an expression immediately followed by '*'.
	save := p.snapshot()
	count := p.tryParseTupleCount()
	if count != nil {
		elem := p.parseExpr(precBase)
		p.expectPunct(']')
		return syntax.NewTuple(at, count, elem)
	}
	p.restore(save)

	name := fmt.Sprintf("_anon%d", p.anonCount)
	p.anonCount++
	decl := &Declaration{ConstructorName: name + "_", Tag: &TagSpec{At: at}, At: at}

	p.syms.Open()
	fieldIdx := 0
	for !p.atPunct(']') {
		decl.Fields = append(decl.Fields, p.parseField(&fieldIdx))
	}
	p.expectPunct(']')
	p.syms.Close()

	decl.ResultName = name
	p.pending = append(p.pending, decl)
	return syntax.NewApply(at, name, nil)
}

// tryParseTupleCount attempts to parse "Expr *" and returns the count
// expression on success, or nil (with the parser position unmoved by the
// caller's snapshot/restore) if the input doesn't match that shape.
func (p *Parser) tryParseTupleCount() (count *syntax.TypeExpr) {
	defer func() {
		if r := recover(); r != nil {
			count = nil
		}
	}()
	e := p.parseExpr(precMul + 1)
	if !p.atPunct('*') {
		return nil
	}
	p.advance()
	return e
}

// parserState is a cheap snapshot of cursor state for the tuple/record
// lookahead in parseBracket; it does not snapshot the symbol table, so
// tryParseTupleCount must not durably define symbols on a failed attempt
// (it cannot: a tuple count expression only ever looks up existing params).
type parserState struct {
	lex  lexer.Lexer
	cur  lexer.Token
	next lexer.Token
}

func (p *Parser) snapshot() parserState {
	return parserState{lex: *p.lex, cur: p.cur, next: p.next}
}

func (p *Parser) restore(s parserState) {
	*p.lex = s.lex
	p.cur = s.cur
	p.next = s.next
}
