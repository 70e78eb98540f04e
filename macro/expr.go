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

import "strings"

// InheritedName is the reserved reference which continues the lookup with the next
// lower-precedence assignment of the macro being evaluated.
const InheritedName = "inherited"

type (
	// Expr is a parsed setting value: an ordered sequence of literal text and macro references.
	// Expressions are immutable.
	Expr struct {
		source string
		parts  []Part
	}

	// Part is one element of an expression, either a Literal or a *Reference.
	Part interface {
		isPart()
		String() string
	}

	// Literal is verbatim text.
	Literal string

	// Reference is `$(NAME)`, `${NAME}` or `$NAME`. The name is itself an expression so that
	// compound references such as `$(FOO_$(BAR))` resolve the inner reference first.
	Reference struct {
		Name      *Expr
		Operators []Operator
		form      referenceForm
	}

	// Operator is a retrieval operator applied to the referenced value, e.g. `:lower` or
	// `:default=value`. Arg is nil for operators without an argument.
	Operator struct {
		Name string
		Arg  *Expr
	}

	referenceForm int
)

const (
	parenForm referenceForm = iota
	braceForm
	bareForm
)

func (Literal) isPart()    {}
func (*Reference) isPart() {}

func (l Literal) String() string { return string(l) }

func (r *Reference) String() string {
	if r.form == bareForm {
		return "$" + r.Name.String()
	}
	open, close := "$(", ")"
	if r.form == braceForm {
		open, close = "${", "}"
	}
	var sb strings.Builder
	sb.WriteString(open)
	sb.WriteString(r.Name.String())
	for _, op := range r.Operators {
		sb.WriteString(":")
		sb.WriteString(op.Name)
		if op.Arg != nil {
			sb.WriteString("=")
			sb.WriteString(op.Arg.String())
		}
	}
	sb.WriteString(close)
	return sb.String()
}

// LiteralName returns the referenced name when it contains no nested references.
func (r *Reference) LiteralName() (string, bool) { return r.Name.AsLiteral() }

// String returns the source text the expression was parsed from.
func (e *Expr) String() string { return e.source }

// Parts returns the parsed parts. The returned slice must not be modified.
func (e *Expr) Parts() []Part { return e.parts }

// AsLiteral returns the expression text when the expression contains no references.
func (e *Expr) AsLiteral() (string, bool) {
	switch len(e.parts) {
	case 0:
		return "", true
	case 1:
		if lit, ok := e.parts[0].(Literal); ok {
			return string(lit), true
		}
	}
	return "", false
}

// References returns the literal names referenced anywhere in the expression, including names
// referenced by operator arguments. Compound names are skipped.
func (e *Expr) References() []string {
	var names []string
	var walk func(*Expr)
	walk = func(expr *Expr) {
		for _, part := range expr.parts {
			ref, ok := part.(*Reference)
			if !ok {
				continue
			}
			if name, ok := ref.LiteralName(); ok {
				names = append(names, name)
			} else {
				walk(ref.Name)
			}
			for _, op := range ref.Operators {
				if op.Arg != nil {
					walk(op.Arg)
				}
			}
		}
	}
	walk(e)
	return names
}

// Equal reports whether two expressions are structurally equal.
func (e *Expr) Equal(other *Expr) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.source == other.source
}

// Parse parses a setting value. Parsing never fails: malformed references such as an
// unterminated `$(FOO` are kept as literal text. Namespace.Parse caches the result.
func Parse(source string) *Expr {
	p := exprParser{source: source}
	return &Expr{source: source, parts: p.parseUntil(nil)}
}

// LiteralExpr returns an expression evaluating to exactly text, even if text contains `$`.
// It is used for computed values and environment variables.
func LiteralExpr(text string) *Expr {
	if text == "" {
		return &Expr{}
	}
	return &Expr{source: text, parts: []Part{Literal(text)}}
}

type exprParser struct {
	source string
	pos    int
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool { return isIdentStart(c) || (c >= '0' && c <= '9') }

// parseUntil consumes input until stop reports true for the current byte (which is not
// consumed) or the input ends.
func (p *exprParser) parseUntil(stop func(byte) bool) []Part {
	var parts []Part
	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			parts = append(parts, Literal(literal.String()))
			literal.Reset()
		}
	}

	for p.pos < len(p.source) {
		c := p.source[p.pos]
		if stop != nil && stop(c) {
			break
		}
		if c == '$' && p.pos+1 < len(p.source) {
			switch next := p.source[p.pos+1]; {
			case next == '(' || next == '{':
				start := p.pos
				if ref, ok := p.parseDelimitedReference(); ok {
					flush()
					parts = append(parts, ref)
					continue
				}
				// Unterminated reference: keep the dollar sign as text and rescan after it.
				p.pos = start
			case isIdentStart(next):
				flush()
				parts = append(parts, p.parseBareReference())
				continue
			}
		}
		literal.WriteByte(c)
		p.pos++
	}
	flush()
	return parts
}

func (p *exprParser) parseBareReference() *Reference {
	p.pos++ // '$'
	start := p.pos
	for p.pos < len(p.source) && isIdentChar(p.source[p.pos]) {
		p.pos++
	}
	name := p.source[start:p.pos]
	return &Reference{Name: &Expr{source: name, parts: []Part{Literal(name)}}, form: bareForm}
}

func (p *exprParser) parseDelimitedReference() (*Reference, bool) {
	form, closing := parenForm, byte(')')
	if p.source[p.pos+1] == '{' {
		form, closing = braceForm, '}'
	}
	p.pos += 2

	ref := &Reference{form: form}
	ref.Name = p.parseSubexpression(func(c byte) bool { return c == closing || c == ':' })
	for p.pos < len(p.source) && p.source[p.pos] == ':' {
		p.pos++
		nameExpr := p.parseSubexpression(func(c byte) bool { return c == closing || c == ':' || c == '=' })
		op := Operator{Name: nameExpr.String()}
		if p.pos < len(p.source) && p.source[p.pos] == '=' {
			p.pos++
			op.Arg = p.parseSubexpression(func(c byte) bool { return c == closing || c == ':' })
		}
		ref.Operators = append(ref.Operators, op)
	}
	if p.pos >= len(p.source) || p.source[p.pos] != closing {
		return nil, false
	}
	p.pos++
	return ref, true
}

func (p *exprParser) parseSubexpression(stop func(byte) bool) *Expr {
	start := p.pos
	parts := p.parseUntil(stop)
	return &Expr{source: p.source[start:p.pos], parts: parts}
}
