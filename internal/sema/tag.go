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

package sema

import (
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/bufbuild/tlbc/internal/diag"
	"github.com/bufbuild/tlbc/internal/syntax"
)

// autoTagMark is OR'd into every CRC32-derived tag so an automatically
// derived 32-bit tag can never collide with a hand-written one that happens
// to fill all 32 bits but leaves the top bit clear (the convention the
// schema format itself reserves for this purpose).
const autoTagMark = uint64(1) << 31

// DeriveTags assigns a 32-bit tag to every constructor whose declaration
// left its tag unspecified, by CRC32-hashing the constructor's canonical
// pretty-printed form. It must run after Bind (field types need to be
// resolved for the canonical form to be stable) and before RunFixpoint
// (begins_with needs every constructor's final tag).
func DeriveTags(c *Compiler) {
	for _, t := range c.types {
		for _, ctor := range t.Constructors {
			if !ctor.TagIsAuto {
				checkTagMismatch(c, t, ctor)
				continue
			}
			canon := canonicalForm(t, ctor)
			sum := crc32.ChecksumIEEE([]byte(canon))
			ctor.TagValue = (uint64(sum) & 0xffffffff) | autoTagMark
			ctor.TagBits = 32
			c.Log.WithFields(map[string]any{
				"constructor": ctor.Name, "tag": fmt.Sprintf("%#x", ctor.TagValue),
			}).Debug("derived automatic tag")
		}
	}
}

// checkTagMismatch recomputes the CRC32-derived tag an explicitly-tagged
// constructor would have gotten had its tag been left implicit, and flags a
// disagreement: a hand-written tag that collides with a different
// constructor's derived one (or simply looks like a typo of it) is exactly
// the kind of schema-evolution mistake a human editing by hand would want
// caught. c.Limits.TagMismatchIsError decides whether this is a Warning or
// a BindingError.
func checkTagMismatch(c *Compiler, t *Type, ctor *Constructor) {
	if ctor.TagBits != 32 {
		return // only the CRC32 convention's own width is comparable.
	}
	canon := canonicalForm(t, ctor)
	sum := crc32.ChecksumIEEE([]byte(canon))
	derived := (uint64(sum) & 0xffffffff) | autoTagMark
	if ctor.TagValue == derived {
		return
	}
	msg := fmt.Sprintf(
		"constructor %q of type %q declares tag %#x, but its canonical form derives to %#x",
		ctor.Name, t.Name, ctor.TagValue, derived)
	if c.Limits.TagMismatchIsError {
		c.errorf(diag.KindBinding, ctor.At, "%s", msg)
		return
	}
	c.warnf(diag.KindBinding, ctor.At, "%s", msg)
}

// canonicalForm renders ctor the way the auto-tag hash input is
// standardized: field names omitted, explicit "~" polarity marks, result
// type applied to its own arguments.
func canonicalForm(t *Type, ctor *Constructor) string {
	var b strings.Builder
	name := ctor.Name
	if name == "" || name == "_" {
		name = "_"
	}
	b.WriteString(name)
	b.WriteString(" ")
	for _, f := range ctor.Fields {
		if f.IsOutput {
			b.WriteString("~")
		}
		f.Type.Show(&b, nil, 1000, syntax.ShowCanonical)
		b.WriteString(" ")
	}
	b.WriteString("= ")
	b.WriteString(t.Name)
	for _, a := range ctor.ResultArgs {
		b.WriteString(" ")
		a.Show(&b, nil, 1000, syntax.ShowCanonical)
	}
	return b.String()
}
