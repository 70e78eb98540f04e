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
	"maps"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ParameterKind distinguishes the well-known condition parameters from custom ones.
type ParameterKind int

const (
	CustomParameter ParameterKind = iota
	SDKParameter
	ArchParameter
	ConfigParameter
	VariantParameter
	PlatformFilterParameter
	SDKBuildVersionParameter
)

// Parameter is the left-hand side of a condition, e.g. `sdk` in `[sdk=macosx*]`.
type Parameter struct {
	Kind ParameterKind
	Name string
}

var (
	SDKCondition             = Parameter{SDKParameter, "sdk"}
	ArchCondition            = Parameter{ArchParameter, "arch"}
	ConfigCondition          = Parameter{ConfigParameter, "config"}
	VariantCondition         = Parameter{VariantParameter, "variant"}
	PlatformFilterCondition  = Parameter{PlatformFilterParameter, "__platform_filter"}
	SDKBuildVersionCondition = Parameter{SDKBuildVersionParameter, "_sdk_build_version"}

	wellKnownParameters = map[string]Parameter{
		SDKCondition.Name:             SDKCondition,
		ArchCondition.Name:            ArchCondition,
		ConfigCondition.Name:          ConfigCondition,
		VariantCondition.Name:         VariantCondition,
		PlatformFilterCondition.Name:  PlatformFilterCondition,
		SDKBuildVersionCondition.Name: SDKBuildVersionCondition,
	}
)

// ParameterNamed returns the well-known parameter with the given name or a custom one.
func ParameterNamed(name string) Parameter {
	if p, ok := wellKnownParameters[name]; ok {
		return p
	}
	return Parameter{CustomParameter, name}
}

func (p Parameter) String() string { return p.Name }

// Condition restricts an assignment to scopes where the parameter is bound to a value
// matching Pattern. Patterns use glob syntax; `*` matches everything.
type Condition struct {
	Parameter Parameter
	Pattern   string
}

func (c Condition) String() string { return fmt.Sprintf("[%s=%s]", c.Parameter.Name, c.Pattern) }

// Matches reports whether any of the bound values matches the pattern. Platform filter
// patterns may list alternatives separated by `;`.
func (c Condition) Matches(values []string) bool {
	patterns := []string{c.Pattern}
	if c.Parameter.Kind == PlatformFilterParameter {
		patterns = strings.Split(c.Pattern, ";")
	}
	for _, pattern := range patterns {
		for _, value := range values {
			if pattern == "*" || pattern == value {
				return true
			}
			if matched, err := doublestar.Match(pattern, value); err == nil && matched {
				return true
			}
		}
	}
	return false
}

// ConditionSet is an immutable conjunction of conditions with at most one condition per
// parameter. The nil set is unconditional.
type ConditionSet struct {
	conditions []Condition
}

// NewConditionSet builds a set sorted by parameter name. When a parameter occurs twice the
// later condition wins. It returns nil for an empty input.
func NewConditionSet(conditions ...Condition) *ConditionSet {
	if len(conditions) == 0 {
		return nil
	}
	byName := make(map[string]Condition, len(conditions))
	for _, c := range conditions {
		byName[c.Parameter.Name] = c
	}
	set := &ConditionSet{}
	for _, name := range slices.Sorted(maps.Keys(byName)) {
		set.conditions = append(set.conditions, byName[name])
	}
	return set
}

// ParseError reports a malformed condition suffix.
type ParseError struct {
	Input   string
	Message string
}

func (e *ParseError) Error() string { return fmt.Sprintf("%s in condition %q", e.Message, e.Input) }

// ParseConditions parses a condition suffix such as `[sdk=macosx*][arch=arm64]`. A bracket
// may also hold several comma-separated conditions. The empty string yields the nil set.
func ParseConditions(suffix string) (*ConditionSet, error) {
	var conditions []Condition
	rest := strings.TrimSpace(suffix)
	for rest != "" {
		if rest[0] != '[' {
			return nil, &ParseError{Input: suffix, Message: "expected '['"}
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, &ParseError{Input: suffix, Message: "missing ']'"}
		}
		for _, clause := range strings.Split(rest[1:end], ",") {
			name, pattern, ok := strings.Cut(clause, "=")
			name, pattern = strings.TrimSpace(name), strings.TrimSpace(pattern)
			if !ok || name == "" || pattern == "" {
				return nil, &ParseError{Input: suffix, Message: fmt.Sprintf("malformed clause %q", clause)}
			}
			if !doublestar.ValidatePattern(pattern) {
				return nil, &ParseError{Input: suffix, Message: fmt.Sprintf("invalid pattern %q", pattern)}
			}
			conditions = append(conditions, Condition{Parameter: ParameterNamed(name), Pattern: pattern})
		}
		rest = strings.TrimSpace(rest[end+1:])
	}
	return NewConditionSet(conditions...), nil
}

// Conditions returns the conditions sorted by parameter name.
func (cs *ConditionSet) Conditions() []Condition {
	if cs == nil {
		return nil
	}
	return slices.Clone(cs.conditions)
}

func (cs *ConditionSet) Len() int {
	if cs == nil {
		return 0
	}
	return len(cs.conditions)
}

// String returns the canonical suffix form, which is also a stable key for the set.
func (cs *ConditionSet) String() string {
	if cs == nil {
		return ""
	}
	var sb strings.Builder
	for _, c := range cs.conditions {
		sb.WriteString(c.String())
	}
	return sb.String()
}

func (cs *ConditionSet) Equal(other *ConditionSet) bool { return cs.String() == other.String() }

// Matches reports whether every condition is satisfied by the bindings. A condition on a
// parameter that is not bound never matches.
func (cs *ConditionSet) Matches(bindings Bindings) bool {
	if cs == nil {
		return true
	}
	for _, c := range cs.conditions {
		values, bound := bindings[c.Parameter]
		if !bound || !c.Matches(values) {
			return false
		}
	}
	return true
}

// Bind evaluates the conditions whose parameters are bound. It reports false if one of them
// fails and otherwise returns the set of conditions that remain open.
func (cs *ConditionSet) Bind(bindings Bindings) (*ConditionSet, bool) {
	if cs == nil {
		return nil, true
	}
	var remaining []Condition
	for _, c := range cs.conditions {
		values, bound := bindings[c.Parameter]
		switch {
		case !bound:
			remaining = append(remaining, c)
		case !c.Matches(values):
			return nil, false
		}
	}
	if len(remaining) == len(cs.conditions) {
		return cs, true
	}
	return NewConditionSet(remaining...), true
}

// Bindings maps condition parameters to the values they are bound to in a scope.
// Treat it as immutable and derive new bindings with With.
type Bindings map[Parameter][]string

// With returns a copy of b with p bound to values.
func (b Bindings) With(p Parameter, values ...string) Bindings {
	out := make(Bindings, len(b)+1)
	maps.Copy(out, b)
	out[p] = slices.Clone(values)
	return out
}
