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

import "slices"

// Assignment is one value for a macro. Assignments form an immutable linked list from the
// highest precedence down; Next is what `$(inherited)` refers to.
type Assignment struct {
	Macro      *Declaration
	Expr       *Expr
	Conditions *ConditionSet
	next       *Assignment
}

func (a *Assignment) Next() *Assignment { return a.next }

// Table maps macros to their assignment chains. Chains are shared between tables, so
// Clone is cheap and pushing onto a clone never affects the original.
//
// A Table is not safe for concurrent mutation.
type Table struct {
	heads map[string]*Assignment
	// names in order of first assignment.
	names []string
}

func NewTable() *Table {
	return &Table{heads: make(map[string]*Assignment)}
}

// Push makes a new assignment the head of decl's chain.
func (t *Table) Push(decl *Declaration, expr *Expr, conditions *ConditionSet) *Assignment {
	prev, exists := t.heads[decl.Name]
	if !exists {
		t.names = append(t.names, decl.Name)
	}
	a := &Assignment{Macro: decl, Expr: expr, Conditions: conditions, next: prev}
	t.heads[decl.Name] = a
	return a
}

// PushLiteral assigns a value that is not parsed for references.
func (t *Table) PushLiteral(decl *Declaration, value string) *Assignment {
	return t.Push(decl, LiteralExpr(value), nil)
}

// PushTable pushes every assignment of other on top of t, preserving the relative order of
// other's chains. A `$(inherited)` at the bottom of one of other's chains continues into t.
func (t *Table) PushTable(other *Table) {
	if other == nil {
		return
	}
	for _, name := range other.names {
		chain := other.Chain(name)
		for _, a := range slices.Backward(chain) {
			t.Push(a.Macro, a.Expr, a.Conditions)
		}
	}
}

// Lookup returns the head of the chain for name, or nil.
func (t *Table) Lookup(name string) *Assignment { return t.heads[name] }

// Chain returns the assignments for name from highest to lowest precedence.
func (t *Table) Chain(name string) []*Assignment {
	var chain []*Assignment
	for a := t.heads[name]; a != nil; a = a.next {
		chain = append(chain, a)
	}
	return chain
}

// Names returns macro names in order of their first assignment.
func (t *Table) Names() []string { return slices.Clone(t.names) }

func (t *Table) Len() int { return len(t.names) }

func (t *Table) IsEmpty() bool { return len(t.names) == 0 }

// Clone returns a table sharing all chains with t.
func (t *Table) Clone() *Table {
	heads := make(map[string]*Assignment, len(t.heads))
	for name, a := range t.heads {
		heads[name] = a
	}
	return &Table{heads: heads, names: slices.Clip(slices.Clone(t.names))}
}

// Bind returns a table in which conditions on bound parameters are resolved: assignments
// whose bound conditions fail are dropped and satisfied conditions are removed. Conditions on
// unbound parameters are kept.
func (t *Table) Bind(bindings Bindings) *Table {
	out := NewTable()
	for _, name := range t.names {
		chain := t.Chain(name)
		for _, a := range slices.Backward(chain) {
			if remaining, ok := a.Conditions.Bind(bindings); ok {
				out.Push(a.Macro, a.Expr, remaining)
			}
		}
	}
	return out
}

// Filter returns a table holding only the chains whose names satisfy keep.
func (t *Table) Filter(keep func(name string) bool) *Table {
	out := NewTable()
	for _, name := range t.names {
		if keep(name) {
			out.heads[name] = t.heads[name]
			out.names = append(out.names, name)
		}
	}
	return out
}
