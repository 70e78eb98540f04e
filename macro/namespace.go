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

// Package macro implements the build-setting macro language: typed macro
// declarations grouped into namespaces, parsed value expressions such as
// `$(SRCROOT)/include $(inherited)`, condition sets like `[sdk=macosx*]`,
// layered assignment tables and evaluation scopes.
//
// A Table is composed by pushing assignments. Each push makes the new
// assignment the head of the macro's precedence chain while the previous head
// stays reachable through `$(inherited)`. A Scope binds a table to concrete
// condition-parameter values and evaluates macros against it.
package macro

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Kind is the semantic type of a macro.
type Kind int

const (
	String Kind = iota
	StringList
	Boolean
	Path
	PathList
	// UserDefined macros are created on first use by project and config-file
	// settings. They evaluate like String but may be consumed as lists.
	UserDefined
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case StringList:
		return "stringlist"
	case Boolean:
		return "boolean"
	case Path:
		return "path"
	case PathList:
		return "pathlist"
	case UserDefined:
		return "userdefined"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsList reports whether values of this kind are whitespace-separated lists.
func (k Kind) IsList() bool { return k == StringList || k == PathList }

// Declaration is the identity of a macro within a namespace. It is immutable.
type Declaration struct {
	Name string
	Kind Kind
}

func (d *Declaration) String() string { return d.Name }

// DuplicateDeclarationError is returned when a macro is declared again with a different kind.
// The message does not depend on which of the two declarations came first.
type DuplicateDeclarationError struct {
	Name  string
	Kinds [2]Kind
}

func (e *DuplicateDeclarationError) Error() string {
	kinds := e.Kinds
	slices.SortFunc(kinds[:], func(a, b Kind) int { return cmp.Compare(a.String(), b.String()) })
	return fmt.Sprintf("macro %q declared with conflicting types %s and %s", e.Name, kinds[0], kinds[1])
}

// Namespace owns a set of macro declarations. Lookups fall through to the parent namespace,
// which lets a per-workspace namespace extend the builtin one.
//
// Namespaces are append-only and safe for concurrent use.
type Namespace struct {
	name   string
	parent *Namespace

	mu    sync.RWMutex
	decls map[string]*Declaration

	// exprs caches parsed setting values by source string. It lives as long as the
	// namespace, which is owned by one builder or loader.
	exprs sync.Map // map[string]*Expr
}

func NewNamespace(name string, parent *Namespace) *Namespace {
	return &Namespace{name: name, parent: parent, decls: make(map[string]*Declaration)}
}

func (ns *Namespace) Name() string { return ns.name }

// Parse is like the package-level Parse but returns the same *Expr for repeated sources.
func (ns *Namespace) Parse(source string) *Expr {
	if cached, ok := ns.exprs.Load(source); ok {
		return cached.(*Expr)
	}
	actual, _ := ns.exprs.LoadOrStore(source, Parse(source))
	return actual.(*Expr)
}

func (ns *Namespace) Parent() *Namespace { return ns.parent }

// Lookup returns the declaration registered for name in this namespace or any of its parents,
// or nil. Names are case-sensitive.
func (ns *Namespace) Lookup(name string) *Declaration {
	for n := ns; n != nil; n = n.parent {
		n.mu.RLock()
		decl, exists := n.decls[name]
		n.mu.RUnlock()
		if exists {
			return decl
		}
	}
	return nil
}

// Declare registers name with the given kind. Declaring an existing macro with the same kind
// returns the existing declaration. A request for UserDefined is satisfied by any existing
// declaration.
func (ns *Namespace) Declare(name string, kind Kind) (*Declaration, error) {
	if name == "" {
		return nil, fmt.Errorf("cannot declare macro with empty name in namespace %q", ns.name)
	}
	if ns.parent != nil {
		if existing := ns.parent.Lookup(name); existing != nil {
			return resolveRedeclaration(existing, kind)
		}
	}

	ns.mu.Lock()
	defer ns.mu.Unlock()
	if existing, exists := ns.decls[name]; exists {
		return resolveRedeclaration(existing, kind)
	}
	decl := &Declaration{Name: name, Kind: kind}
	ns.decls[name] = decl
	return decl, nil
}

func resolveRedeclaration(existing *Declaration, kind Kind) (*Declaration, error) {
	if existing.Kind == kind || kind == UserDefined {
		return existing, nil
	}
	return nil, &DuplicateDeclarationError{Name: existing.Name, Kinds: [2]Kind{existing.Kind, kind}}
}

// LookupOrDeclare returns the existing declaration for name or declares it as UserDefined.
func (ns *Namespace) LookupOrDeclare(name string) *Declaration {
	if decl := ns.Lookup(name); decl != nil {
		return decl
	}
	decl, err := ns.Declare(name, UserDefined)
	if err != nil {
		// Unreachable: a UserDefined request never conflicts.
		panic(err)
	}
	return decl
}

// MustDeclare is like Declare but panics on conflicts. It is meant for static builtin tables.
func (ns *Namespace) MustDeclare(name string, kind Kind) *Declaration {
	decl, err := ns.Declare(name, kind)
	if err != nil {
		panic(err)
	}
	return decl
}

// Names returns the sorted names declared directly in this namespace.
func (ns *Namespace) Names() []string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return slices.Sorted(maps.Keys(ns.decls))
}

// Owns reports whether name is declared directly in this namespace (not in a parent).
func (ns *Namespace) Owns(name string) bool {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	_, exists := ns.decls[name]
	return exists
}
