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

// Package platform models the collaborators consulted while building settings: platforms,
// SDKs and their variants, toolchains, product types and tool specifications with their
// default settings.
//
// A Core groups them into one workspace context. It is created explicitly, usually from a
// YAML description, and passed to whoever needs it; there is no process-wide registry.
package platform

import (
	"slices"
	"strings"

	"github.com/EngFlow/buildsettings/macro"
)

// Platform is a build platform such as macosx or iphonesimulator.
type Platform struct {
	Name        string `yaml:"name"`
	Identifier  string `yaml:"identifier"`
	FamilyName  string `yaml:"familyName"`
	DisplayName string `yaml:"displayName"`
	Path        string `yaml:"path"`
	// PlatformFilter is the value bound to the __platform_filter condition, e.g. "ios".
	PlatformFilter string `yaml:"platformFilter"`
	IsSimulator    bool   `yaml:"simulator"`

	DefaultSettings  macro.Dict `yaml:"defaultSettings"`
	OverrideSettings macro.Dict `yaml:"overrideSettings"`

	SupportedArchs []string `yaml:"supportedArchs"`
	PreferredArch  string   `yaml:"preferredArch"`
	// CompatibilityArchMap replaces the built-in architecture compatibility table when set.
	CompatibilityArchMap map[string][]string `yaml:"compatibilityArchs"`

	DeploymentTargetMacro   string `yaml:"deploymentTargetMacro"`
	MinimumDeploymentTarget string `yaml:"minimumDeploymentTarget"`
	MaximumDeploymentTarget string `yaml:"maximumDeploymentTarget"`
}

// SDK is an installed SDK. Sparse SDKs listed in ADDITIONAL_SDKS use the same description.
type SDK struct {
	CanonicalName string   `yaml:"canonicalName"`
	Aliases       []string `yaml:"aliases"`
	DisplayName   string   `yaml:"displayName"`
	Path          string   `yaml:"path"`
	Version       string   `yaml:"version"`
	BuildVersion  string   `yaml:"buildVersion"`
	PlatformName  string   `yaml:"platform"`

	DefaultSettings  macro.Dict `yaml:"defaultSettings"`
	OverrideSettings macro.Dict `yaml:"overrideSettings"`
	// CustomProperties are merged above the defaults but below project settings.
	CustomProperties macro.Dict `yaml:"customProperties"`

	Variants       []SDKVariant `yaml:"variants"`
	DefaultVariant string       `yaml:"defaultVariant"`
	// VersionMaps translate versions between variants, keyed like "iOSMac_macOS".
	VersionMaps map[string]map[string]string `yaml:"versionMaps"`

	DefaultDeploymentTarget string `yaml:"defaultDeploymentTarget"`
	DisallowsAdHocSigning   bool   `yaml:"disallowsAdHocSigning"`
}

// SDKVariant is a flavor of an SDK selected by SDK_VARIANT, such as "iosmac" (Mac Catalyst).
type SDKVariant struct {
	Name             string     `yaml:"name"`
	DefaultSettings  macro.Dict `yaml:"defaultSettings"`
	OverrideSettings macro.Dict `yaml:"overrideSettings"`
	PlatformFilter   string     `yaml:"platformFilter"`

	DeploymentTargetMacro   string `yaml:"deploymentTargetMacro"`
	MinimumDeploymentTarget string `yaml:"minimumDeploymentTarget"`
	MaximumDeploymentTarget string `yaml:"maximumDeploymentTarget"`
}

// Variant returns the named variant or nil.
func (s *SDK) Variant(name string) *SDKVariant {
	i := slices.IndexFunc(s.Variants, func(v SDKVariant) bool { return v.Name == name })
	if i < 0 {
		return nil
	}
	return &s.Variants[i]
}

// MapVersion translates version through the named version map. Without an exact entry the
// mapping of the closest lower version is used.
func (s *SDK) MapVersion(mapName, version string) (string, bool) {
	table, exists := s.VersionMaps[mapName]
	if !exists || version == "" {
		return "", false
	}
	if mapped, exists := table[version]; exists {
		return mapped, true
	}
	var bestKey string
	for key := range table {
		if CompareVersions(key, version) <= 0 && (bestKey == "" || CompareVersions(key, bestKey) > 0) {
			bestKey = key
		}
	}
	if bestKey == "" {
		return "", false
	}
	return table[bestKey], true
}

// matchesAlias reports whether name selects this SDK without a version, e.g. "macosx" for
// "macosx14.2".
func (s *SDK) matchesAlias(name string) bool {
	if slices.Contains(s.Aliases, name) {
		return true
	}
	rest, ok := strings.CutPrefix(s.CanonicalName, name)
	return ok && rest != "" && (rest[0] >= '0' && rest[0] <= '9')
}

// Toolchain contributes settings. DefaultBuildSettings sit below project settings and
// OverrideBuildSettings above target settings.
type Toolchain struct {
	Identifier            string     `yaml:"identifier"`
	Aliases               []string   `yaml:"aliases"`
	Path                  string     `yaml:"path"`
	DefaultBuildSettings  macro.Dict `yaml:"defaultBuildSettings"`
	OverrideBuildSettings macro.Dict `yaml:"overrideBuildSettings"`
}

// ProductType describes what a target produces, e.g. com.apple.product-type.application.
type ProductType struct {
	Identifier string `yaml:"identifier"`
	// Platforms lists the platform names supporting the product type; empty means all.
	Platforms       []string   `yaml:"platforms"`
	DefaultSettings macro.Dict `yaml:"defaultSettings"`
	// DeprecationReason marks product types that can no longer be built.
	DeprecationReason string `yaml:"deprecationReason"`
	// EntitlementsRequiredPlatforms lists platforms where signing entitlements are mandatory.
	EntitlementsRequiredPlatforms []string `yaml:"entitlementsRequiredPlatforms"`
}

func (pt *ProductType) SupportsPlatform(name string) bool {
	return len(pt.Platforms) == 0 || slices.Contains(pt.Platforms, name)
}

func (pt *ProductType) RequiresEntitlements(platformName string) bool {
	return slices.Contains(pt.EntitlementsRequiredPlatforms, platformName)
}

// ToolSpec is a build tool description carrying default values for its settings.
type ToolSpec struct {
	Identifier string `yaml:"identifier"`
	// Platforms restricts the tool spec to the named platforms; empty means all.
	Platforms []string   `yaml:"platforms"`
	Defaults  macro.Dict `yaml:"defaults"`
}

func (ts *ToolSpec) appliesTo(platformName string) bool {
	return len(ts.Platforms) == 0 || platformName == "" || slices.Contains(ts.Platforms, platformName)
}
