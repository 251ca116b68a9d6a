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

func TestBuildTrieSplitsDisjointSingleBitPrefixes(t *testing.T) {
	zero := Single(Prefix{Bits: 0b0 << 63, Len: 1})
	one := Single(Prefix{Bits: 0b1 << 63, Len: 1})
	trie := BuildTrie([]BitPrefixCollection{zero, one})

	require.False(t, trie.IsLeaf())
	require.Equal(t, 1, trie.UsefulDepth())
	require.Equal(t, []int{0}, trie.Children[0].Constructors)
	require.Equal(t, []int{1}, trie.Children[1].Constructors)
	require.True(t, trie.Children[0].IsLeaf())
	require.True(t, trie.Children[1].IsLeaf())
}

func TestBuildTrieIdenticalPrefixesStayAmbiguousLeaf(t *testing.T) {
	one := Single(Prefix{Bits: 0b1 << 63, Len: 1})
	trie := BuildTrie([]BitPrefixCollection{one, one})

	require.True(t, trie.IsLeaf())
	require.ElementsMatch(t, []int{0, 1}, trie.Constructors)
}

func TestBuildTrieNilUsefulDepthIsZero(t *testing.T) {
	var nilTrie *BinTrie
	require.Equal(t, 0, nilTrie.UsefulDepth())
	require.True(t, nilTrie.IsLeaf())
}

func TestBuildTrieThreeWaySplit(t *testing.T) {
	// "00", "01", "1" -- the first bit splits {00,01} from {1}; a second
	// bit then splits 00 from 01.
	p00 := Single(Prefix{Bits: 0b00 << 62, Len: 2})
	p01 := Single(Prefix{Bits: 0b01 << 62, Len: 2})
	p1 := Single(Prefix{Bits: 0b1 << 63, Len: 1})
	trie := BuildTrie([]BitPrefixCollection{p00, p01, p1})

	require.Equal(t, 2, trie.UsefulDepth())
	require.False(t, trie.IsLeaf())
}
