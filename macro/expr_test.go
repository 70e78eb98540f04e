// Copyright 2026 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	for _, source := range []string{
		"",
		"plain text",
		"$(FOO)",
		"${FOO}/bar",
		"$FOO-suffix",
		"$(inherited) -DDEBUG=1",
		"$(FOO_$(BAR))",
		"$(PRODUCT_NAME:lower:identifier)",
		"$(VALUE:default=$(OTHER))",
		"$(UNTERMINATED",
		"cost $ 5",
	} {
		assert.Equal(t, source, Parse(source).String(), source)
	}
}

func TestParseStructure(t *testing.T) {
	expr := Parse("-I$(SRCROOT)/include $(FOO_$(BAR):upper)")
	parts := expr.Parts()
	require.Len(t, parts, 4)
	assert.Equal(t, Literal("-I"), parts[0])
	srcroot := parts[1].(*Reference)
	name, ok := srcroot.LiteralName()
	assert.True(t, ok)
	assert.Equal(t, "SRCROOT", name)
	assert.Equal(t, Literal("/include "), parts[2])

	compound := parts[3].(*Reference)
	_, ok = compound.LiteralName()
	assert.False(t, ok)
	assert.Equal(t, "FOO_$(BAR)", compound.Name.String())
	assert.Equal(t, []Operator{{Name: "upper"}}, compound.Operators)

	assert.Equal(t, []string{"SRCROOT", "BAR"}, expr.References())
}

func TestParseUnterminatedIsLiteral(t *testing.T) {
	lit, ok := Parse("$(FOO").AsLiteral()
	assert.True(t, ok)
	assert.Equal(t, "$(FOO", lit)

	expr := Parse("$(A $(B)")
	require.Len(t, expr.Parts(), 2)
	assert.Equal(t, Literal("$(A "), expr.Parts()[0])
}

func TestNamespaceParseIsCached(t *testing.T) {
	ns := NewNamespace("test", nil)
	assert.Same(t, ns.Parse("$(CACHED) value"), ns.Parse("$(CACHED) value"))
	assert.NotSame(t, ns.Parse("$(CACHED) value"), NewNamespace("other", nil).Parse("$(CACHED) value"))
	assert.True(t, ns.Parse("$(CACHED) value").Equal(Parse("$(CACHED) value")))
}

func TestLiteralExprDoesNotExpand(t *testing.T) {
	lit, ok := LiteralExpr("$(NOT_A_REF)").AsLiteral()
	assert.True(t, ok)
	assert.Equal(t, "$(NOT_A_REF)", lit)
}
