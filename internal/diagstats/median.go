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

package diagstats

import (
	"slices"
	"sync/atomic"
)

// Median tracks a median statistic over the last n samples, such as
// fixpoint-iteration counts across many compiles in one process.
//
// Must be constructed with [NewMedian]. [Median.Record] may be called
// concurrently, but not concurrently with [Median.Get].
type Median struct {
	samples []float64
	w       atomic.Int64 // Offset at which to write the next sample.
	n       atomic.Int64 // Total number of samples ever.
}

// NewMedian returns a new median statistic remembering the last n samples.
func NewMedian(n int) *Median {
	return &Median{samples: make([]float64, n)}
}

// Record records a sample.
func (m *Median) Record(sample float64) {
again:
	w := m.w.Load()
	next := w + 1
	if int(next) == len(m.samples) {
		next = 0
	}
	if !m.w.CompareAndSwap(w, next) {
		goto again
	}
	m.n.Add(1)
	m.samples[w] = sample
}

// Get returns the median value of this statistic.
func (m *Median) Get() float64 {
	samples := m.samples[:min(int(m.n.Load()), len(m.samples))]
	samples = slices.Clone(samples)
	slices.Sort(samples)

	switch {
	case len(samples) == 0:
		return 0
	case len(samples)%2 == 0:
		a := samples[len(samples)/2-1]
		b := samples[len(samples)/2]
		return (a + b) / 2
	default:
		return samples[len(samples)/2]
	}
}
