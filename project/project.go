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

// Package project is the part of the project model consulted when building settings:
// projects, targets, their build configurations and the properties targets impart to
// their dependents.
package project

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/EngFlow/buildsettings/macro"
)

// TargetKind is the closed set of target flavors.
type TargetKind int

const (
	StandardTarget TargetKind = iota
	AggregateTarget
	ExternalTarget
	PackageProductTarget
)

var targetKindNames = map[TargetKind]string{
	StandardTarget:       "standard",
	AggregateTarget:      "aggregate",
	ExternalTarget:       "external",
	PackageProductTarget: "packageProduct",
}

func (k TargetKind) String() string {
	if name, ok := targetKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TargetKind(%d)", int(k))
}

func (k *TargetKind) UnmarshalText(text []byte) error {
	for kind, name := range targetKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown target kind %q", text)
}

// HasProductType reports whether targets of this kind produce something described by a
// product type.
func (k TargetKind) HasProductType() bool { return k == StandardTarget }

// BuildConfiguration is a named set of settings, optionally based on a configuration file.
type BuildConfiguration struct {
	Name     string     `yaml:"name"`
	Settings macro.Dict `yaml:"buildSettings"`
	// BaseConfigurationFile is loaded below Settings. Relative paths are relative to the
	// project directory.
	BaseConfigurationFile string `yaml:"baseConfigurationFile"`
	// ImpartedSettings are pushed onto the settings of targets depending on the owner.
	ImpartedSettings macro.Dict `yaml:"impartedBuildSettings"`
}

type configurations []*BuildConfiguration

// named returns the configuration called name, falling back to fallback and then to the
// first configuration. The boolean reports whether name itself was found.
func (cs configurations) named(name, fallback string) (*BuildConfiguration, bool) {
	for _, n := range []string{name, fallback} {
		if i := slices.IndexFunc(cs, func(c *BuildConfiguration) bool { return c.Name == n }); i >= 0 {
			return cs[i], n == name
		}
	}
	if len(cs) == 0 {
		return nil, false
	}
	return cs[0], false
}

// Project groups targets sharing a directory and project-level configurations.
type Project struct {
	GUID string `yaml:"guid"`
	Name string `yaml:"name"`
	// Dir is the project directory, exposed as SRCROOT.
	Dir string `yaml:"path"`
	// IsPackage marks projects generated from package manifests. Only their imparted
	// settings may carry platform-filter conditions.
	IsPackage            bool                  `yaml:"isPackage"`
	DefaultConfiguration string                `yaml:"defaultConfigurationName"`
	BuildConfigurations  []*BuildConfiguration `yaml:"buildConfigurations"`
	Targets              []*Target             `yaml:"targets"`
}

// Configuration returns the configuration called name, or the default configuration.
// The boolean reports whether name was found.
func (p *Project) Configuration(name string) (*BuildConfiguration, bool) {
	return configurations(p.BuildConfigurations).named(name, p.DefaultConfiguration)
}

// ResolvePath makes a project-relative path absolute.
func (p *Project) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Dir, path)
}

// Target is one product of a project.
type Target struct {
	GUID        string     `yaml:"guid"`
	Name        string     `yaml:"name"`
	Kind        TargetKind `yaml:"kind"`
	ProductType string     `yaml:"productType"`
	ProductName string     `yaml:"productName"`
	// Dependencies are target GUIDs, in declaration order.
	Dependencies        []string              `yaml:"dependencies"`
	BuildConfigurations []*BuildConfiguration `yaml:"buildConfigurations"`

	project *Project
}

// Project returns the owning project once the target is part of a Workspace.
func (t *Target) Project() *Project { return t.project }

// Configuration returns the target configuration called name, or the one matching the
// project's default configuration.
func (t *Target) Configuration(name string) (*BuildConfiguration, bool) {
	fallback := ""
	if t.project != nil {
		fallback = t.project.DefaultConfiguration
	}
	return configurations(t.BuildConfigurations).named(name, fallback)
}
