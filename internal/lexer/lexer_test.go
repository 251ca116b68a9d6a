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

package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, src string) []Token {
	t.Helper()
	l := New("test.tlb", []byte(src))
	var out []Token
	for {
		tok, err := l.Next()
		require.Nil(t, err)
		out = append(out, tok)
		if tok.Kind == TokEOF {
			return out
		}
	}
}

func TestLexIdentifiers(t *testing.T) {
	toks := collect(t, "unit Unit")
	require.Len(t, toks, 3)
	require.Equal(t, TokLCIdent, toks[0].Kind)
	require.Equal(t, "unit", toks[0].Text)
	require.Equal(t, TokUCIdent, toks[1].Kind)
	require.Equal(t, "Unit", toks[1].Text)
}

func TestLexKeywords(t *testing.T) {
	toks := collect(t, "Type EMPTY")
	require.Equal(t, TokKeywordType, toks[0].Kind)
	require.Equal(t, TokKeywordEmpty, toks[1].Kind)
}

func TestLexNumberOverflow(t *testing.T) {
	l := New("t.tlb", []byte("4294967296"))
	_, err := l.Next()
	require.Error(t, err)
	require.Equal(t, "LexError", err.Kind.String())
}

func TestLexHexTag(t *testing.T) {
	toks := collect(t, "#_ #3_ #ab")
	require.Equal(t, TokHexTag, toks[0].Kind)
	require.Equal(t, 0, toks[0].TagBits)
	require.Equal(t, TokHexTag, toks[1].Kind)
	require.Equal(t, TokHexTag, toks[2].Kind)
	require.Equal(t, 8, toks[2].TagBits)
}

func TestLexBinTag(t *testing.T) {
	toks := collect(t, "$10")
	require.Equal(t, TokBinTag, toks[0].Kind)
	require.Equal(t, 2, toks[0].TagBits)
	require.Equal(t, uint64(2), toks[0].TagValue)
}

func TestLexLineComment(t *testing.T) {
	toks := collect(t, "unit // a trailing comment\nUnit")
	require.Equal(t, TokLCIdent, toks[0].Kind)
	require.Equal(t, TokUCIdent, toks[1].Kind)
}

func TestLexUnterminatedBlockComment(t *testing.T) {
	l := New("t.tlb", []byte("/* never closes"))
	_, err := l.Next()
	require.Error(t, err)
}

func TestLexBlockCommentDoesNotNest(t *testing.T) {
	// The first "*/" terminates, even though a "/*" appears inside.
	toks := collect(t, "/* outer /* inner */ Unit */")
	require.Equal(t, TokUCIdent, toks[0].Kind)
}

func TestLexSpecialConstructor(t *testing.T) {
	toks := collect(t, "!merge_proof")
	require.Equal(t, TokSpecLCIdent, toks[0].Kind)
	require.Equal(t, "merge_proof", toks[0].Text)
}

func TestLexCompositePunctuators(t *testing.T) {
	toks := collect(t, "<= >= == !=")
	require.Equal(t, TokLe, toks[0].Kind)
	require.Equal(t, TokGe, toks[1].Kind)
	require.Equal(t, TokEq, toks[2].Kind)
	require.Equal(t, TokNe, toks[3].Kind)
}
