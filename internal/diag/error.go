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

package diag

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Note is a secondary annotation on an [Error], such as a "defined here"
// pointer at a prior declaration.
type Note struct {
	At      Position
	Message string
}

// Error is a single compiler diagnostic with severity "error". It always
// carries a source position and a [Kind].
type Error struct {
	Kind    Kind
	At      Position
	Message string
	Notes   []Note

	// cause is set when an Error wraps a lower-level Go error (typically a
	// recovered panic turned into KindInternal); it carries a stack trace
	// courtesy of github.com/pkg/errors.
	cause error
}

// New constructs an Error at the given position and kind.
func New(kind Kind, at Position, format string, args ...any) *Error {
	return &Error{Kind: kind, At: at, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps err as a KindInternal diagnostic, attaching a stack trace if
// err does not already carry one.
func Internal(at Position, err error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{
		Kind:    KindInternal,
		At:      at,
		Message: msg,
		cause:   errors.Wrap(err, msg),
	}
}

// WithNote appends a "defined here"-style note and returns e for chaining.
func (e *Error) WithNote(at Position, format string, args ...any) *Error {
	e.Notes = append(e.Notes, Note{At: at, Message: fmt.Sprintf(format, args...)})
	return e
}

// Error implements [error].
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: error: %s: %s", e.At, e.Kind, e.Message)
	for _, n := range e.Notes {
		fmt.Fprintf(&b, "\n%s: note: %s", n.At, n.Message)
	}
	return b.String()
}

// Unwrap exposes the wrapped cause, if any, for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.cause
}

// StackTrace returns the stack trace captured at the point Internal was
// called, or nil if this diagnostic does not wrap an internal cause.
func (e *Error) StackTrace() errors.StackTrace {
	type tracer interface{ StackTrace() errors.StackTrace }
	var t tracer
	if errors.As(e.cause, &t) {
		return t.StackTrace()
	}
	return nil
}

// Warning is a non-fatal diagnostic, such as a tag that differs from its
// auto-derived value.
type Warning struct {
	Kind    Kind
	At      Position
	Message string
}

// String implements [fmt.Stringer].
func (w Warning) String() string {
	return fmt.Sprintf("%s: warning: %s", w.At, w.Message)
}
