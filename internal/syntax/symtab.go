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

package syntax

import "github.com/bufbuild/tlbc/internal/diag"

// SymbolClass distinguishes the three kinds of name a Symbol can bind,
// flattening what the original compiler modeled as a small class hierarchy.
type SymbolClass int

const (
	ClassTypename SymbolClass = iota
	ClassParam
	ClassKeyword
)

// Symbol is a single name binding. Only the fields relevant to Class are
// meaningful; the others are zero.
type Symbol struct {
	Name  string
	Class SymbolClass
	At    diag.Position

	// Valid when Class == ClassTypename.
	TypeIndex int

	// Valid when Class == ClassParam: the field index within the
	// constructor currently being parsed, and whether it is a nat (as
	// opposed to type) parameter.
	ParamIndex int
	ParamIsNat bool

	// Valid when Class == ClassKeyword.
	Keyword string
}

// Table is a scope-stacked symbol table. Scopes nest lexically with
// constructor bodies; Open/Close bracket one constructor's local Param
// bindings, while Typename bindings are always registered at depth 0 (they
// are global for the whole compilation).
type Table struct {
	global map[string]*Symbol
	stack  [][]string // per-scope list of names introduced, for Close to unwind.
	scopes map[string]*Symbol
}

// NewTable returns an empty symbol table with the root scope open.
func NewTable() *Table {
	return &Table{
		global: make(map[string]*Symbol),
		scopes: make(map[string]*Symbol),
	}
}

// Open pushes a new scope, typically at the start of parsing one
// constructor's field list.
func (t *Table) Open() {
	t.stack = append(t.stack, nil)
}

// Close pops the innermost scope, removing every Param/Keyword binding
// introduced since the matching Open. Typename bindings are unaffected.
func (t *Table) Close() {
	if len(t.stack) == 0 {
		return
	}
	top := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	for _, name := range top {
		delete(t.scopes, name)
	}
}

// Define registers sym in the innermost open scope if it is a Param or
// Keyword, or globally if it is a Typename. Returns false if name is already
// bound in any open scope (so a field of an inline record nested in a
// constructor cannot reuse one of that constructor's field names);
// shadowing a global type name by a local param is allowed and shadows for
// lookup purposes.
func (t *Table) Define(sym *Symbol) bool {
	if sym.Class == ClassTypename {
		if _, exists := t.global[sym.Name]; exists {
			return false
		}
		t.global[sym.Name] = sym
		return true
	}
	if _, exists := t.scopes[sym.Name]; exists {
		return false
	}
	t.scopes[sym.Name] = sym
	if len(t.stack) > 0 {
		i := len(t.stack) - 1
		t.stack[i] = append(t.stack[i], sym.Name)
	}
	return true
}

// Lookup resolves name, preferring the innermost scope (Param/Keyword)
// before falling back to the global Typename table.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	if sym, ok := t.scopes[name]; ok {
		return sym, true
	}
	sym, ok := t.global[name]
	return sym, ok
}

// LookupType resolves a global type name only.
func (t *Table) LookupType(name string) (*Symbol, bool) {
	sym, ok := t.global[name]
	if !ok || sym.Class != ClassTypename {
		return nil, false
	}
	return sym, true
}
