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

// Package diag carries source positions and renders diagnostics.
package diag

import "fmt"

// Position is a 1-based line/column pair within a named source file.
type Position struct {
	File   string
	Line   int
	Column int
}

// String implements [fmt.Stringer], rendering as "file:line:col".
func (p Position) String() string {
	file := p.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", file, p.Line, p.Column)
}

// IsZero reports whether p carries no position information.
func (p Position) IsZero() bool {
	return p == Position{}
}
