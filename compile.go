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
	"fmt"

	"github.com/bufbuild/tlbc/internal/diag"
	"github.com/bufbuild/tlbc/internal/parser"
	"github.com/bufbuild/tlbc/internal/sema"
)

// Compile lexes, parses, and analyzes a TL-B schema source, returning the
// fully bound Schema on success. ctx is checked only at this entry point,
// not threaded through the (CPU-bound, single-pass) analysis itself; a
// canceled ctx is honored before compilation starts and ignored once it is
// underway, since no phase here performs I/O or blocks.
func Compile(ctx context.Context, source string, opts ...CompileOption) (_ *Schema, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := newCompileOptions()
	for _, opt := range opts {
		opt(o)
	}

	// A panic from a violated internal invariant in any pass is returned as
	// a KindInternal error carrying a stack trace.
	defer func() {
		if r := recover(); r != nil {
			err = &ErrorList{Errors: []*Error{diag.Internal(diag.Position{File: o.fileName}, fmt.Errorf("%v", r), "internal compiler error")}}
		}
	}()

	p := parser.New(o.fileName, []byte(source))
	prog, perr := p.Parse()
	if perr != nil {
		return nil, &ErrorList{Errors: []*Error{perr}}
	}

	c := sema.NewCompiler(o.log, o.config.limits())
	c.Compile(prog)

	if o.config.WarningsAsErrors && len(c.Warnings) > 0 {
		for _, w := range c.Warnings {
			c.Errors = append(c.Errors, &Error{Kind: w.Kind, At: w.At, Message: w.Message})
		}
	}
	if len(c.Errors) > 0 {
		return nil, &ErrorList{Errors: c.Errors}
	}

	schema := buildSchema(c)
	schema.digest = computeDigest(schema)
	return schema, nil
}
