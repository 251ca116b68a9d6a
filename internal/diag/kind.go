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

// Kind classifies an [Error] by which part of the pipeline raised it.
type Kind int

const (
	// KindInternal marks an invariant violation; treat as a fatal bug.
	KindInternal Kind = iota
	KindLex
	KindSyntax
	KindArity
	KindKind
	KindPolarity
	KindBinding
	KindDispatch
	KindSize
	KindOverflow
)

func (k Kind) String() string {
	switch k {
	case KindLex:
		return "LexError"
	case KindSyntax:
		return "SyntaxError"
	case KindArity:
		return "ArityError"
	case KindKind:
		return "KindError"
	case KindPolarity:
		return "PolarityError"
	case KindBinding:
		return "BindingError"
	case KindDispatch:
		return "DispatchError"
	case KindSize:
		return "SizeError"
	case KindOverflow:
		return "OverflowError"
	case KindInternal:
		return "InternalError"
	default:
		return "UnknownError"
	}
}
