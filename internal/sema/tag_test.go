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

func TestDeriveTagsLeavesExplicitTagsAlone(t *testing.T) {
	c := NewCompiler(nil, DefaultLimits())
	Bind(c, mustParse(t, `bool_true$1 = Bool;`))
	require.Empty(t, c.Errors)
	DeriveTags(c)

	ctor := c.TypeByName("Bool").Constructors[0]
	require.False(t, ctor.TagIsAuto)
	require.Equal(t, 1, ctor.TagBits)
	require.Equal(t, uint64(1), ctor.TagValue)
}

func TestDeriveTagsAssigns32BitAutoTagWithMarkBitSet(t *testing.T) {
	c := NewCompiler(nil, DefaultLimits())
	Bind(c, mustParse(t, `foo a:int32 = Foo;`))
	require.Empty(t, c.Errors)
	DeriveTags(c)

	ctor := c.TypeByName("Foo").Constructors[0]
	require.Equal(t, 32, ctor.TagBits)
	require.NotZero(t, ctor.TagValue&autoTagMark)
}

func TestDeriveTagsIsDeterministic(t *testing.T) {
	src := `foo a:int32 b:Cell = Foo;`
	c1 := NewCompiler(nil, DefaultLimits())
	Bind(c1, mustParse(t, src))
	DeriveTags(c1)

	c2 := NewCompiler(nil, DefaultLimits())
	Bind(c2, mustParse(t, src))
	DeriveTags(c2)

	require.Equal(t,
		c1.TypeByName("Foo").Constructors[0].TagValue,
		c2.TypeByName("Foo").Constructors[0].TagValue)
}

func TestDeriveTagsDiffersBetweenDistinctConstructors(t *testing.T) {
	c := NewCompiler(nil, DefaultLimits())
	Bind(c, mustParse(t, `
foo a:int32 = Many;
bar a:int32 = Many;
`))
	require.Empty(t, c.Errors)
	DeriveTags(c)

	ty := c.TypeByName("Many")
	require.NotEqual(t, ty.Constructors[0].TagValue, ty.Constructors[1].TagValue)
}
