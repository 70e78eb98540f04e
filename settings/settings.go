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

// Package settings computes the build settings of a project or target.
//
// A Builder composes one macro table from a fixed sequence of layers: tool defaults,
// platform and SDK defaults, toolchain settings, the environment, project and target
// configurations with their base configuration files, imparted properties, action
// settings, the override layers and finally computed run-destination and arena values.
// The resulting Settings object is immutable. Its global scope is the primary way to read
// values:
//
//	s, err := builder.Build(proj, target, params, settings.Build)
//	if err != nil {
//		return err
//	}
//	if errs := s.Errors(); len(errs) > 0 {
//		...
//	}
//	archs := s.GlobalScope().List("ARCHS")
//
// A Cache shares Settings between requests with identical inputs.
package settings

import (
	"encoding/hex"
	"slices"

	"github.com/EngFlow/buildsettings/diag"
	"github.com/EngFlow/buildsettings/internal/collections"
	"github.com/EngFlow/buildsettings/macro"
	"github.com/EngFlow/buildsettings/platform"
	"github.com/EngFlow/buildsettings/project"
	"github.com/EngFlow/buildsettings/xcconfig"
	"golang.org/x/crypto/blake2b"
)

// Signature identifies the configuration files a Settings object was built from and their
// contents.
type Signature [blake2b.Size256]byte

func (s Signature) String() string { return hex.EncodeToString(s[:]) }

func signatureOf(deps []xcconfig.Dependency) Signature {
	// New256 fails only for oversized keys.
	h, _ := blake2b.New256(nil)
	for _, dep := range deps {
		h.Write([]byte(dep.Path))
		h.Write([]byte{0})
		h.Write(dep.Digest[:])
	}
	var sig Signature
	h.Sum(sig[:0])
	return sig
}

// Settings are the computed build settings of a project or target.
type Settings struct {
	Project    *project.Project
	Target     *project.Target
	Parameters Parameters
	Purpose    Purpose

	Platform    *platform.Platform
	SDK         *platform.SDK
	SDKVariant  *platform.SDKVariant
	SparseSDKs  []*platform.SDK
	Toolchain   *platform.Toolchain
	ProductType *platform.ProductType

	table          *macro.Table
	scope          *macro.Scope
	diagnostics    diag.List
	exported       []string
	exportedNative []string
	dependencies   []xcconfig.Dependency
	signature      Signature
	loader         *xcconfig.Loader
	layers         *layerSnapshots
}

// Table exposes the composed table, mainly for tests and tooling.
func (s *Settings) Table() *macro.Table { return s.table }

// GlobalScope evaluates settings with the configuration and SDK bound.
func (s *Settings) GlobalScope() *macro.Scope { return s.scope }

// ArchScope evaluates settings for one architecture: arch conditions match it and
// CURRENT_ARCH expands to it.
func (s *Settings) ArchScope(arch string) *macro.Scope {
	return s.scope.Subscope(macro.ArchCondition, arch).WithLookup(literalOverride("CURRENT_ARCH", arch))
}

// VariantScope evaluates settings for one of BUILD_VARIANTS.
func (s *Settings) VariantScope(variant string) *macro.Scope {
	return s.scope.Subscope(macro.VariantCondition, variant).WithLookup(literalOverride("CURRENT_VARIANT", variant))
}

func literalOverride(name, value string) macro.LookupFunc {
	expr := macro.LiteralExpr(value)
	return func(n string) (*macro.Expr, bool) {
		if n == name {
			return expr, true
		}
		return nil, false
	}
}

func (s *Settings) Diagnostics() diag.List { return slices.Clone(s.diagnostics) }

// Errors returns error messages in the order they were found. Callers must not use the
// settings when it is non-empty.
func (s *Settings) Errors() []string { return messages(s.diagnostics, diag.Error) }

func (s *Settings) Warnings() []string { return messages(s.diagnostics, diag.Warning) }

func (s *Settings) Notes() []string { return messages(s.diagnostics, diag.Note) }

func messages(list diag.List, b diag.Behavior) []string {
	var out []string
	for _, d := range list.Filter(b) {
		msg := d.Message
		if loc := d.Location.String(); loc != "" {
			msg = loc + ": " + msg
		}
		out = append(out, msg)
	}
	return out
}

// ExportedMacroNames are the assigned settings passed on to tools, sorted. Arena settings
// are never exported.
func (s *Settings) ExportedMacroNames() []string { return slices.Clone(s.exported) }

// ExportedNativeMacroNames is the subset of ExportedMacroNames declared by the build system
// itself rather than by projects.
func (s *Settings) ExportedNativeMacroNames() []string { return slices.Clone(s.exportedNative) }

// Dependencies lists every configuration file read, with the digest of its contents.
func (s *Settings) Dependencies() []xcconfig.Dependency { return slices.Clone(s.dependencies) }

// MacroConfigSignature summarizes Dependencies.
func (s *Settings) MacroConfigSignature() Signature { return s.signature }

// Stale reports whether any configuration file changed since the settings were built.
func (s *Settings) Stale() bool {
	if len(s.dependencies) == 0 {
		return false
	}
	return signatureOf(s.loader.CurrentDigests(s.dependencies)) != s.signature
}

func exportedNames(table *macro.Table, core *macro.Namespace, excluded collections.Set[string]) (all, native []string) {
	for _, name := range table.Names() {
		if excluded.Contains(name) {
			continue
		}
		all = append(all, name)
		if core.Owns(name) {
			native = append(native, name)
		}
	}
	slices.Sort(all)
	slices.Sort(native)
	return all, native
}
