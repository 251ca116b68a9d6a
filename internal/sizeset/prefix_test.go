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

package sizeset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func bit(b uint64) Prefix { return Prefix{Bits: b << 63, Len: 1} }

func TestPrefixContains(t *testing.T) {
	p := Prefix{Bits: 0b10 << 62, Len: 2}
	q := Prefix{Bits: 0b101 << 61, Len: 3}
	require.True(t, p.Contains(q))
	require.False(t, q.Contains(p))
	require.True(t, (Prefix{}).Contains(q))
}

func TestPrefixOverlaps(t *testing.T) {
	a := Prefix{Bits: 0b10 << 62, Len: 2}
	b := Prefix{Bits: 0b101 << 61, Len: 3}
	c := Prefix{Bits: 0b11 << 62, Len: 2}
	require.True(t, a.Overlaps(b))
	require.False(t, a.Overlaps(c))
}

func TestBitPrefixCollectionUnionDedupesRedundant(t *testing.T) {
	short := Prefix{Bits: 0b0 << 63, Len: 1}
	long := Prefix{Bits: 0b00 << 62, Len: 2}
	c := Single(short).Union(Single(long))
	require.Len(t, c.Prefixes(), 1)
	require.Equal(t, short, c.Prefixes()[0])
}

func TestBitPrefixCollectionUnionWidensToAnyPastCap(t *testing.T) {
	c := Empty()
	for i := 0; i < maxPrefixSet+2; i++ {
		p := Prefix{Bits: uint64(i) << 32, Len: 40}
		c = c.Union(Single(p))
	}
	require.True(t, c.IsAny())
}

func TestBitPrefixCollectionConcat(t *testing.T) {
	one := bit(1)
	got := Single(one).Concat(Single(one))
	require.Len(t, got.Prefixes(), 1)
	want := Prefix{Bits: (uint64(1) << 63) | (uint64(1) << 62), Len: 2}
	require.Equal(t, want, got.Prefixes()[0])
}

func TestBitPrefixCollectionConcatWithAnyKeepsOwnPrefix(t *testing.T) {
	got := Single(bit(0)).Concat(Any())
	require.False(t, got.IsAny())
	require.Equal(t, bit(0), got.Prefixes()[0])
}

func TestBitPrefixCollectionConcatOfEmptyStaysEmpty(t *testing.T) {
	got := Empty().Concat(Single(bit(1)))
	require.True(t, got.IsEmpty())
}

func TestBitPrefixCollectionLeq(t *testing.T) {
	tight := Single(Prefix{Bits: 0b10 << 62, Len: 2})
	loose := Single(Prefix{Bits: 0b1 << 63, Len: 1})
	require.True(t, tight.Leq(loose))
	require.False(t, loose.Leq(tight))
	require.True(t, loose.Leq(Any()))
	require.False(t, Any().Leq(loose))
}
