// Copyright 2025 Buf Technologies, Inc.
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

// Package diagstats provides instrumentation counters for compile-time
// behavior (fixpoint iteration counts, pass durations) that a long-running
// process compiling many schemas can aggregate across calls.
package diagstats

import (
	"math"
	"sync/atomic"
)

// Mean tracks a running average statistic.
//
// The zero value is ready to use. Safe for concurrent use by multiple
// [Mean.Record] callers, such as separate goroutines each compiling their
// own schema with their own *Compiler.
type Mean struct {
	total   atomic.Uint64 // math.Float64bits of the running total.
	samples atomic.Uint64
}

// Record records a sample.
func (m *Mean) Record(sample float64) {
	for {
		old := m.total.Load()
		next := math.Float64bits(math.Float64frombits(old) + sample)
		if m.total.CompareAndSwap(old, next) {
			break
		}
	}
	m.samples.Add(1)
}

// Get returns the mean value of this statistic.
func (m *Mean) Get() float64 {
	samples := m.samples.Load()
	if samples == 0 {
		return 0
	}
	return math.Float64frombits(m.total.Load()) / float64(samples)
}
