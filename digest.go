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
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Digest returns a stable content hash of s's types, constructors and
// tags, hex-encoded; two schemas compiled from textually different but
// semantically identical source (differing only in whitespace or comments)
// produce the same digest, since it is computed from the bound Schema, not
// the source text.
func (s *Schema) Digest() string {
	return hex.EncodeToString(s.digest[:])
}

func computeDigest(s *Schema) [32]byte {
	var b strings.Builder
	for _, t := range s.Types {
		fmt.Fprintf(&b, "type %s/%d\n", t.Name, t.Arity)
		for _, c := range t.Constructors {
			fmt.Fprintf(&b, "  %s#%x(%d)\n", c.Name, c.TagValue, c.TagBits)
			for _, f := range c.Fields {
				fmt.Fprintf(&b, "    %s out=%v implicit=%v\n", f.Name, f.IsOutput, f.IsImplicit)
			}
		}
	}
	return blake2b.Sum256([]byte(b.String()))
}
