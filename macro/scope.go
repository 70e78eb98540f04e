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
	"fmt"
	"strings"
)

// CycleError reports a macro whose evaluation depends on itself without passing through
// `$(inherited)`.
type CycleError struct {
	// Chain lists the macros being evaluated, ending with the repeated one.
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("macro cycle detected: %s", strings.Join(e.Chain, " -> "))
}

// LookupFunc overrides the table for selected macros. Returning false defers to the table.
// An override expression's `$(inherited)` refers to the table's value.
type LookupFunc func(name string) (*Expr, bool)

// Scope evaluates macros of a table under a set of condition bindings. Scopes are immutable;
// Subscope and WithLookup derive new ones.
type Scope struct {
	table     *Table
	namespace *Namespace
	bindings  Bindings
	lookup    LookupFunc
}

func NewScope(table *Table, namespace *Namespace, bindings Bindings) *Scope {
	if table == nil {
		table = NewTable()
	}
	return &Scope{table: table, namespace: namespace, bindings: bindings}
}

func (s *Scope) Table() *Table { return s.table }

func (s *Scope) Namespace() *Namespace { return s.namespace }

func (s *Scope) Bindings() Bindings { return s.bindings }

// Subscope returns a scope with p additionally bound to values, e.g. a per-architecture scope.
func (s *Scope) Subscope(p Parameter, values ...string) *Scope {
	sub := *s
	sub.bindings = s.bindings.With(p, values...)
	return &sub
}

// WithLookup layers fn over any existing override.
func (s *Scope) WithLookup(fn LookupFunc) *Scope {
	sub := *s
	if prev := s.lookup; prev != nil {
		sub.lookup = func(name string) (*Expr, bool) {
			if expr, ok := fn(name); ok {
				return expr, true
			}
			return prev(name)
		}
	} else {
		sub.lookup = fn
	}
	return &sub
}

// Evaluate returns the fully expanded string value of the named macro. Unassigned macros
// evaluate to the empty string.
func (s *Scope) Evaluate(name string) (string, error) {
	e := evaluator{scope: s}
	return e.evalName(name)
}

// EvaluateExpr expands an expression that is not itself assigned to a macro. `$(inherited)`
// in it expands to the empty string.
func (s *Scope) EvaluateExpr(expr *Expr) (string, error) {
	e := evaluator{scope: s}
	return e.expand(expr, "", nil)
}

func (s *Scope) EvaluateList(name string) ([]string, error) {
	v, err := s.Evaluate(name)
	if err != nil {
		return nil, err
	}
	return SplitList(v), nil
}

func (s *Scope) EvaluateBool(name string) (bool, error) {
	v, err := s.Evaluate(name)
	if err != nil {
		return false, err
	}
	return ParseBool(v), nil
}

// Value evaluates name and discards evaluation errors. Callers that need to report cycles
// use Evaluate.
func (s *Scope) Value(name string) string {
	v, _ := s.Evaluate(name)
	return v
}

func (s *Scope) List(name string) []string {
	v, _ := s.EvaluateList(name)
	return v
}

func (s *Scope) Bool(name string) bool {
	v, _ := s.EvaluateBool(name)
	return v
}

// IsAssigned reports whether any assignment for name applies in this scope.
func (s *Scope) IsAssigned(name string) bool {
	if s.lookup != nil {
		if _, ok := s.lookup(name); ok {
			return true
		}
	}
	return s.firstMatch(s.table.Lookup(name)) != nil
}

func (s *Scope) firstMatch(a *Assignment) *Assignment {
	for ; a != nil; a = a.next {
		if a.Conditions.Matches(s.bindings) {
			return a
		}
	}
	return nil
}

type frame struct {
	name       string
	assignment *Assignment
	override   bool
}

type evaluator struct {
	scope  *Scope
	active []frame
}

func (e *evaluator) enter(f frame) error {
	for i, g := range e.active {
		if g == f {
			chain := make([]string, 0, len(e.active)-i+1)
			for _, h := range e.active[i:] {
				chain = append(chain, h.name)
			}
			return &CycleError{Chain: append(chain, f.name)}
		}
	}
	e.active = append(e.active, f)
	return nil
}

func (e *evaluator) leave() { e.active = e.active[:len(e.active)-1] }

func (e *evaluator) evalName(name string) (string, error) {
	head := e.scope.table.Lookup(name)
	if e.scope.lookup != nil {
		if expr, ok := e.scope.lookup(name); ok {
			if err := e.enter(frame{name: name, override: true}); err != nil {
				return "", err
			}
			defer e.leave()
			return e.expand(expr, name, head)
		}
	}
	return e.evalFrom(name, head)
}

func (e *evaluator) evalFrom(name string, start *Assignment) (string, error) {
	a := e.scope.firstMatch(start)
	if a == nil {
		return "", nil
	}
	if err := e.enter(frame{name: name, assignment: a}); err != nil {
		return "", err
	}
	defer e.leave()
	return e.expand(a.Expr, name, a.next)
}

// expand evaluates expr as (part of) the value of macro name; inherited is where
// `$(inherited)` continues.
func (e *evaluator) expand(expr *Expr, name string, inherited *Assignment) (string, error) {
	if lit, ok := expr.AsLiteral(); ok {
		return lit, nil
	}
	var sb strings.Builder
	for _, part := range expr.parts {
		switch part := part.(type) {
		case Literal:
			sb.WriteString(string(part))
		case *Reference:
			v, err := e.expandReference(part, name, inherited)
			if err != nil {
				return "", err
			}
			sb.WriteString(v)
		}
	}
	return sb.String(), nil
}

func (e *evaluator) expandReference(ref *Reference, name string, inherited *Assignment) (string, error) {
	refName, err := e.expand(ref.Name, name, inherited)
	if err != nil {
		return "", err
	}
	var value string
	switch {
	case refName == InheritedName && name != "":
		value, err = e.evalFrom(name, inherited)
	case refName == InheritedName:
		value = ""
	default:
		value, err = e.evalName(refName)
	}
	if err != nil {
		return "", err
	}
	for _, op := range ref.Operators {
		var arg string
		if op.Arg != nil {
			if arg, err = e.expand(op.Arg, name, inherited); err != nil {
				return "", err
			}
		}
		value = applyOperator(op.Name, arg, value)
	}
	return value, nil
}
