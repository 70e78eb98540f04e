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

package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/EngFlow/buildsettings/internal/collections"
	"github.com/EngFlow/buildsettings/macro"
	"gopkg.in/yaml.v3"
)

// Config is the serialized form of a Core.
type Config struct {
	DeveloperDir string         `yaml:"developerDir"`
	Platforms    []*Platform    `yaml:"platforms"`
	SDKs         []*SDK         `yaml:"sdks"`
	Toolchains   []*Toolchain   `yaml:"toolchains"`
	ProductTypes []*ProductType `yaml:"productTypes"`
	ToolSpecs    []*ToolSpec    `yaml:"toolSpecs"`
	// DefaultToolchain is used when no toolchain is requested.
	DefaultToolchain string `yaml:"defaultToolchain"`
}

// Core is the workspace context: the registries of platforms, SDKs, toolchains, product
// types and tool specs, and the namespace declaring built-in macros. It is immutable after
// construction and safe for concurrent use.
type Core struct {
	config    Config
	namespace *macro.Namespace

	platforms    map[string]*Platform
	sdksByName   map[string]*SDK
	sdksByPath   map[string]*SDK
	toolchains   map[string]*Toolchain
	productTypes map[string]*ProductType
}

// NewCore indexes cfg. Duplicate identifiers are reported as an error.
func NewCore(cfg Config) (*Core, error) {
	c := &Core{
		config:       cfg,
		namespace:    macro.NewNamespace("core", nil),
		platforms:    make(map[string]*Platform, len(cfg.Platforms)),
		sdksByName:   make(map[string]*SDK, len(cfg.SDKs)),
		sdksByPath:   make(map[string]*SDK, len(cfg.SDKs)),
		toolchains:   make(map[string]*Toolchain, len(cfg.Toolchains)),
		productTypes: make(map[string]*ProductType, len(cfg.ProductTypes)),
	}

	var errs []error
	checkUnique := func(kind string, ids []string) {
		for _, dup := range collections.FindDuplicates(ids) {
			errs = append(errs, fmt.Errorf("duplicate %s %q", kind, dup))
		}
	}
	checkUnique("platform", collections.MapSlice(cfg.Platforms, func(p *Platform) string { return p.Name }))
	checkUnique("sdk", collections.MapSlice(cfg.SDKs, func(s *SDK) string { return s.CanonicalName }))
	checkUnique("toolchain", collections.MapSlice(cfg.Toolchains, func(t *Toolchain) string { return t.Identifier }))
	checkUnique("product type", collections.MapSlice(cfg.ProductTypes, func(pt *ProductType) string { return pt.Identifier }))

	for _, p := range cfg.Platforms {
		c.platforms[p.Name] = p
	}
	for _, sdk := range cfg.SDKs {
		if _, exists := c.platforms[sdk.PlatformName]; !exists {
			errs = append(errs, fmt.Errorf("sdk %q refers to unknown platform %q", sdk.CanonicalName, sdk.PlatformName))
		}
		c.sdksByName[sdk.CanonicalName] = sdk
		if sdk.Path != "" {
			c.sdksByPath[filepath.Clean(sdk.Path)] = sdk
		}
	}
	for _, tc := range cfg.Toolchains {
		c.toolchains[tc.Identifier] = tc
		for _, alias := range tc.Aliases {
			if _, exists := c.toolchains[alias]; !exists {
				c.toolchains[alias] = tc
			}
		}
	}
	for _, pt := range cfg.ProductTypes {
		c.productTypes[pt.Identifier] = pt
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadCore parses a YAML workspace context description.
func LoadCore(data []byte) (*Core, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing core configuration: %w", err)
	}
	return NewCore(cfg)
}

func LoadCoreFile(path string) (*Core, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	core, err := LoadCore(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return core, nil
}

// Namespace holds declarations of built-in macros. Workspace namespaces use it as parent.
func (c *Core) Namespace() *macro.Namespace { return c.namespace }

func (c *Core) DeveloperDir() string { return c.config.DeveloperDir }

func (c *Core) Platform(name string) *Platform { return c.platforms[name] }

func (c *Core) Platforms() []*Platform { return slices.Clone(c.config.Platforms) }

// PlatformFor returns the platform an SDK belongs to.
func (c *Core) PlatformFor(sdk *SDK) *Platform {
	if sdk == nil {
		return nil
	}
	return c.platforms[sdk.PlatformName]
}

// SDK looks up an SDK by canonical name, by path, or by unversioned alias. An alias selects
// the newest matching SDK.
func (c *Core) SDK(nameOrPath string) *SDK {
	if sdk, exists := c.sdksByName[nameOrPath]; exists {
		return sdk
	}
	if strings.ContainsRune(nameOrPath, filepath.Separator) {
		if sdk, exists := c.sdksByPath[filepath.Clean(nameOrPath)]; exists {
			return sdk
		}
		return nil
	}
	var best *SDK
	for _, sdk := range c.config.SDKs {
		if sdk.matchesAlias(nameOrPath) && (best == nil || CompareVersions(sdk.Version, best.Version) > 0) {
			best = sdk
		}
	}
	return best
}

// SDKsForPlatform returns the SDKs of a platform, newest first.
func (c *Core) SDKsForPlatform(platformName string) []*SDK {
	sdks := collections.FilterSlice(c.config.SDKs, func(s *SDK) bool { return s.PlatformName == platformName })
	slices.SortStableFunc(sdks, func(a, b *SDK) int { return CompareVersions(b.Version, a.Version) })
	return sdks
}

// Toolchain looks up a toolchain by identifier or alias. The empty identifier selects the
// default toolchain.
func (c *Core) Toolchain(identifier string) *Toolchain {
	if identifier == "" {
		identifier = c.config.DefaultToolchain
	}
	return c.toolchains[identifier]
}

// ProductTypeError reports that a product type cannot be used on a platform.
type ProductTypeError struct {
	Identifier string
	Platform   string
	Deprecated string
}

func (e *ProductTypeError) Error() string {
	switch {
	case e.Deprecated != "":
		return fmt.Sprintf("product type %q is no longer supported: %s", e.Identifier, e.Deprecated)
	case e.Platform != "":
		return fmt.Sprintf("unable to resolve product type %q for platform %q", e.Identifier, e.Platform)
	default:
		return fmt.Sprintf("unable to resolve product type %q", e.Identifier)
	}
}

// ProductType resolves a product type for a platform.
func (c *Core) ProductType(identifier, platformName string) (*ProductType, error) {
	pt, exists := c.productTypes[identifier]
	switch {
	case !exists:
		return nil, &ProductTypeError{Identifier: identifier, Platform: platformName}
	case pt.DeprecationReason != "":
		return nil, &ProductTypeError{Identifier: identifier, Platform: platformName, Deprecated: pt.DeprecationReason}
	case platformName != "" && !pt.SupportsPlatform(platformName):
		return nil, &ProductTypeError{Identifier: identifier, Platform: platformName}
	}
	return pt, nil
}

// ToolDefaults returns the union of the defaults of all tool specs that apply to the
// platform, in registration order. The empty platform name selects every tool spec.
func (c *Core) ToolDefaults(platformName string) macro.Dict {
	var out macro.Dict
	for _, spec := range c.config.ToolSpecs {
		if spec.appliesTo(platformName) {
			out = append(out, spec.Defaults...)
		}
	}
	return out
}

// ToolDefaultConflictError reports two tool specs that default the same setting to
// different values on a common platform.
type ToolDefaultConflictError struct {
	Setting string
	Specs   [2]string
	Values  [2]string
}

func (e *ToolDefaultConflictError) Error() string {
	return fmt.Sprintf("conflicting defaults for %s: %q in %s and %q in %s",
		e.Setting, e.Values[0], e.Specs[0], e.Values[1], e.Specs[1])
}

// CheckToolDefaults reports every pair of tool specs with overlapping platforms that default
// the same setting to different values. It does not depend on any particular build.
func (c *Core) CheckToolDefaults() error {
	type origin struct {
		spec  *ToolSpec
		value string
	}
	seen := make(map[string][]origin)
	var errs []error
	for _, spec := range c.config.ToolSpecs {
		for _, entry := range spec.Defaults {
			for _, prev := range seen[entry.Key] {
				if prev.value != entry.Value && prev.spec != spec && platformsOverlap(prev.spec, spec) {
					errs = append(errs, &ToolDefaultConflictError{
						Setting: entry.Key,
						Specs:   [2]string{prev.spec.Identifier, spec.Identifier},
						Values:  [2]string{prev.value, entry.Value},
					})
				}
			}
			seen[entry.Key] = append(seen[entry.Key], origin{spec: spec, value: entry.Value})
		}
	}
	return errors.Join(errs...)
}

func platformsOverlap(a, b *ToolSpec) bool {
	if len(a.Platforms) == 0 || len(b.Platforms) == 0 {
		return true
	}
	return collections.SetOf(a.Platforms...).Intersects(collections.SetOf(b.Platforms...))
}
