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

// Package diag defines the diagnostics produced while loading configuration
// files and constructing build settings. Diagnostics are values: producers
// accumulate them and consumers decide how to present them.
package diag

import (
	"fmt"
	"strings"
)

// Behavior is the severity of a diagnostic.
type Behavior int

const (
	Note Behavior = iota
	Warning
	Error
)

func (b Behavior) String() string {
	switch b {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Behavior(%d)", int(b))
	}
}

// Location identifies a line in a file. Line is 1-based; zero means the whole file.
type Location struct {
	Path string
	Line int
}

// Unknown is used for diagnostics which are not tied to a file.
var Unknown = Location{}

func (l Location) String() string {
	switch {
	case l.Path == "":
		return ""
	case l.Line <= 0:
		return l.Path
	default:
		return fmt.Sprintf("%s:%d", l.Path, l.Line)
	}
}

// Diagnostic is a single user-facing problem report.
type Diagnostic struct {
	Behavior Behavior
	Location Location
	Message  string
	// Details are supplementary lines, e.g. the edges of an include cycle.
	Details []string
}

func Errorf(loc Location, format string, args ...any) Diagnostic {
	return Diagnostic{Behavior: Error, Location: loc, Message: fmt.Sprintf(format, args...)}
}

func Warningf(loc Location, format string, args ...any) Diagnostic {
	return Diagnostic{Behavior: Warning, Location: loc, Message: fmt.Sprintf(format, args...)}
}

func Notef(loc Location, format string, args ...any) Diagnostic {
	return Diagnostic{Behavior: Note, Location: loc, Message: fmt.Sprintf(format, args...)}
}

// String renders the diagnostic in the conventional "file:line: severity: message" form,
// followed by one indented line per detail.
func (d Diagnostic) String() string {
	var sb strings.Builder
	if loc := d.Location.String(); loc != "" {
		sb.WriteString(loc)
		sb.WriteString(": ")
	}
	sb.WriteString(d.Behavior.String())
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	for _, detail := range d.Details {
		sb.WriteString("\n    ")
		sb.WriteString(detail)
	}
	return sb.String()
}

// List is an ordered collection of diagnostics.
type List []Diagnostic

func (l *List) Add(d Diagnostic) { *l = append(*l, d) }

func (l *List) Errorf(loc Location, format string, args ...any) { l.Add(Errorf(loc, format, args...)) }

func (l *List) Warningf(loc Location, format string, args ...any) {
	l.Add(Warningf(loc, format, args...))
}

func (l *List) Notef(loc Location, format string, args ...any) { l.Add(Notef(loc, format, args...)) }

// HasErrors reports whether any diagnostic in the list is an error.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Behavior == Error {
			return true
		}
	}
	return false
}

// Filter returns diagnostics of the given behavior, in order.
func (l List) Filter(b Behavior) List {
	var out List
	for _, d := range l {
		if d.Behavior == b {
			out = append(out, d)
		}
	}
	return out
}

// Messages returns the bare messages of the diagnostics with the given behavior.
func (l List) Messages(b Behavior) []string {
	var out []string
	for _, d := range l {
		if d.Behavior == b {
			out = append(out, d.Message)
		}
	}
	return out
}
