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
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const fallbackWidth = 80

// Renderer writes errors and warnings to a stream in the line-oriented
// "file:line:col: severity: message" format, wrapping long supplemental
// dumps (admissibility cubes, trie shapes) to the width of the attached
// terminal.
type Renderer struct {
	W     io.Writer
	Width int // 0 means "detect, falling back to 80".
}

// NewRenderer returns a Renderer writing to w, detecting terminal width from
// w when possible.
func NewRenderer(w io.Writer) *Renderer {
	width := fallbackWidth
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			width = cols
		}
	}
	return &Renderer{W: w, Width: width}
}

func (r *Renderer) width() int {
	if r.Width > 0 {
		return r.Width
	}
	return fallbackWidth
}

// Error renders a single error, including its notes.
func (r *Renderer) Error(e *Error) {
	fmt.Fprintln(r.W, wrap(fmt.Sprintf("%s: error: %s: %s", e.At, e.Kind, e.Message), r.width()))
	for _, n := range e.Notes {
		fmt.Fprintln(r.W, wrap(fmt.Sprintf("%s: note: %s", n.At, n.Message), r.width()))
	}
}

// Warning renders a single warning.
func (r *Renderer) Warning(w Warning) {
	fmt.Fprintln(r.W, wrap(w.String(), r.width()))
}

// Dump renders an arbitrary supplemental block (e.g. an admissibility cube
// or trie shape), word-wrapped to the detected width with a fixed indent.
func (r *Renderer) Dump(label string, body string) {
	fmt.Fprintf(r.W, "  %s:\n", label)
	for _, line := range strings.Split(body, "\n") {
		fmt.Fprintln(r.W, wrap("    "+line, r.width()))
	}
}

// wrap performs simple greedy word wrap; it never breaks inside a word, so
// lines may exceed width when a single token is longer than it.
func wrap(s string, width int) string {
	if width <= 0 || len(s) <= width {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return s
	}
	var b strings.Builder
	lineLen := 0
	for i, w := range words {
		if i > 0 {
			if lineLen+1+len(w) > width {
				b.WriteString("\n  ")
				lineLen = 2
			} else {
				b.WriteByte(' ')
				lineLen++
			}
		}
		b.WriteString(w)
		lineLen += len(w)
	}
	return b.String()
}
