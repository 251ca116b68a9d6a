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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func fullyCompile(t *testing.T, src string) *Compiler {
	t.Helper()
	c := NewCompiler(nil, DefaultLimits())
	c.Compile(mustParse(t, src))
	return c
}

func TestBuildDispatchPrefixStrategyForDisjointTags(t *testing.T) {
	c := fullyCompile(t, `
bool_false$0 = Bool;
bool_true$1 = Bool;
`)
	require.Empty(t, c.Errors)
	ty := c.TypeByName("Bool")
	require.Equal(t, StrategyPrefix, ty.Dispatch)
	require.True(t, ty.Conflict.IsPrefixFree())
	require.Equal(t, 1, ty.Trie.UsefulDepth())
}

func TestBuildDispatchSingleConstructorIsPrefix(t *testing.T) {
	c := fullyCompile(t, `unit$_ = Unit;`)
	require.Empty(t, c.Errors)
	require.Equal(t, StrategyPrefix, c.TypeByName("Unit").Dispatch)
}

func TestBuildDispatchConstParamDistinguishesSameTagByResultArg(t *testing.T) {
	// Both constructors share the same one-bit tag, so their begins_with
	// sets overlap, but each applies a distinct literal nat constant as
	// Either's sole parameter, so that parameter's admissibility alone
	// tells them apart.
	c := fullyCompile(t, `
left$0 a:int32 = Either 0;
right$0 b:int32 = Either 1;
`)
	require.Empty(t, c.Errors)
	ty := c.TypeByName("Either")
	require.False(t, ty.Conflict.IsPrefixFree())
	require.Equal(t, StrategyConstParam, ty.Dispatch)
	require.Equal(t, 0, ty.DispatchParamIndex)
	require.NotNil(t, ty.Plan)
}

func TestBuildDispatchReportsUnresolvedConflicts(t *testing.T) {
	c := fullyCompile(t, `
left$0 a:Any = Either;
right$0 b:Any = Either;
`)
	require.NotEmpty(t, c.Errors)
	require.Equal(t, "DispatchError", c.Errors[0].Kind.String())
	require.Equal(t, StrategyMixed, c.TypeByName("Either").Dispatch)
}

func TestDispatchStrategyString(t *testing.T) {
	require.Equal(t, "prefix", StrategyPrefix.String())
	require.Equal(t, "const-param", StrategyConstParam.String())
	require.Equal(t, "param-value", StrategyParamValue.String())
	require.Equal(t, "mixed", StrategyMixed.String())
}
