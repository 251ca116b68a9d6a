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

// Package lexer tokenizes TL-B schema source.
package lexer

import "github.com/bufbuild/tlbc/internal/diag"

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokEOF         TokenKind = iota
	TokLCIdent               // lowercase-leading identifier: constructor or field name.
	TokUCIdent               // uppercase-leading identifier: type name.
	TokSpecLCIdent           // "!"-prefixed lowercase identifier: special constructor.
	TokNumber
	TokHexTag // "#" or "#<hex>[_]"
	TokBinTag // "$" or "$<bits>[_]"
	TokKeywordType
	TokKeywordEmpty
	TokPunct // single-char punctuator; Text holds the character.
	TokEq    // "=="
	TokLe    // "<="
	TokGe    // ">="
	TokNe    // "!="
)

// Token is one lexical unit together with its source position.
type Token struct {
	Kind TokenKind
	Text string
	// Num is populated for TokNumber.
	Num int
	// TagBits/TagValue are populated for TokHexTag/TokBinTag: TagBits is
	// -1 for a bare "#" or "$" with no digits and no "_" (0 is the explicit
	// empty tag, "#_" or "$_"), otherwise the number of
	// significant bits and TagValue their value left-justified is left to
	// the caller (see internal/sema/tag.go, which matches the original
	// MinMaxSize-style packed representation).
	TagBits  int
	TagValue uint64

	At diag.Position
}
