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

// Package tlbc compiles TL-B schema source into an analyzed Schema: every
// declared type bound, every constructor's serialized size and bit prefix
// computed, and every type assigned a dispatch strategy a decoder can
// execute without re-deriving any of it at runtime.
//
//	schema, err := tlbc.Compile(ctx, source, tlbc.WithLogger(log))
//	if err != nil {
//	    var diagErr *tlbc.Error
//	    if errors.As(err, &diagErr) {
//	        // diagErr.Kind, diagErr.At, ...
//	    }
//	}
package tlbc
