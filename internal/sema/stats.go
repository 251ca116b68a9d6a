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

import "github.com/bufbuild/tlbc/internal/diagstats"

// Stats instruments the fixpoint driver across many compiles in one
// process, the way a long-lived language server would run this package
// repeatedly as a user edits a schema.
type Stats struct {
	FixpointIterations *diagstats.Median
	TypesPerCompile    *diagstats.Mean
}

func newStats() *Stats {
	return &Stats{
		FixpointIterations: diagstats.NewMedian(256),
		TypesPerCompile:    &diagstats.Mean{},
	}
}

// Stats returns the compiler's running instrumentation, non-nil once
// NewCompiler has been called.
func (c *Compiler) Stats() *Stats { return c.stats }
