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

package xcconfig

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

type (
	// Statement is a single meaningful line of a configuration file.
	Statement interface {
		fmt.Stringer
		// Line returns the 1-based line number of the statement.
		Line() int
	}
	// IncludeStatement is `#include "path"`, or `#include? "path"` when Optional.
	IncludeStatement struct {
		Path     string
		Optional bool
		line     int
	}
	// AssignmentStatement is `NAME[cond=pattern]... = value`. Conditions holds the raw bracket
	// suffix, parsed later against the macro namespace.
	AssignmentStatement struct {
		Name       string
		Conditions string
		Value      string
		line       int
	}
)

func (s IncludeStatement) Line() int    { return s.line }
func (s AssignmentStatement) Line() int { return s.line }

func (s IncludeStatement) String() string {
	if s.Optional {
		return fmt.Sprintf("#include? %q", s.Path)
	}
	return fmt.Sprintf("#include %q", s.Path)
}

func (s AssignmentStatement) String() string {
	return fmt.Sprintf("%s%s = %s", s.Name, s.Conditions, s.Value)
}

// SyntaxError identifies a line that is neither blank, a comment, an include nor an assignment.
type SyntaxError struct {
	Line    int
	Text    string
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Message, e.Text)
}

var (
	includeDirective = regexp.MustCompile(`^#include(\?)?[\t ]*"([^"]*)"[\t ]*;?[\t ]*(?://.*)?$`)
	assignmentLine   = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)[\t ]*((?:\[[^\]]*\][\t ]*)*)=[\t ]*(.*)$`)
)

// Parse splits configuration-file content into statements. Lines that cannot be parsed are
// reported as *SyntaxError and skipped; parsing continues with the next line.
func Parse(content []byte) ([]Statement, []error) {
	var (
		statements []Statement
		errs       []error
	)
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), len(content)+1)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "#") {
			m := includeDirective.FindStringSubmatch(line)
			if m == nil {
				errs = append(errs, &SyntaxError{Line: lineNo, Text: line, Message: "malformed include directive"})
				continue
			}
			statements = append(statements, IncludeStatement{Path: m[2], Optional: m[1] == "?", line: lineNo})
			continue
		}
		m := assignmentLine.FindStringSubmatch(line)
		if m == nil {
			errs = append(errs, &SyntaxError{Line: lineNo, Text: line, Message: "expected setting assignment"})
			continue
		}
		statements = append(statements, AssignmentStatement{
			Name:       m[1],
			Conditions: strings.ReplaceAll(strings.TrimSpace(m[2]), " ", ""),
			Value:      cleanValue(m[3]),
			line:       lineNo,
		})
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, err)
	}
	return statements, errs
}

// cleanValue drops a trailing `//` comment and a trailing semicolon.
func cleanValue(value string) string {
	if i := strings.Index(value, "//"); i >= 0 {
		value = value[:i]
	}
	value = strings.TrimSpace(value)
	value = strings.TrimSuffix(value, ";")
	return strings.TrimSpace(value)
}
