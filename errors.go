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

import "github.com/bufbuild/tlbc/internal/diag"

// Error is a single diagnostic produced while compiling a schema. Kind
// distinguishes the stage and nature of the problem (lexical, syntactic,
// arity, dispatch, ...); Position names where in the source it occurred.
type Error = diag.Error

// Position is a location in schema source.
type Position = diag.Position

// Warning is a non-fatal diagnostic: compilation still produced a Schema,
// but something about it is worth a human's attention (an unused type
// declaration, for instance).
type Warning = diag.Warning

// Re-export diag's Kind constants under names that read naturally as
// tlbc.KindXxx at call sites, without requiring callers to import the
// internal package.
const (
	KindLex      = diag.KindLex
	KindSyntax   = diag.KindSyntax
	KindArity    = diag.KindArity
	KindKind     = diag.KindKind
	KindPolarity = diag.KindPolarity
	KindBinding  = diag.KindBinding
	KindDispatch = diag.KindDispatch
	KindSize     = diag.KindSize
	KindOverflow = diag.KindOverflow
	KindInternal = diag.KindInternal
)

// ErrorList aggregates every diagnostic from a failed Compile.
type ErrorList struct {
	Errors []*Error
}

func (e *ErrorList) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	s := e.Errors[0].Error()
	return s + " (and more)"
}

// Unwrap exposes the first error for errors.As/errors.Is chains, following
// the convention of treating the earliest diagnostic as the representative
// cause.
func (e *ErrorList) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[0]
}
