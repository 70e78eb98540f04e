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

package settings

import (
	"encoding/hex"
	"fmt"

	"github.com/EngFlow/buildsettings/macro"
	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"
)

// Action is the build action being performed, as exposed in ACTION.
type Action string

const (
	ActionBuild          Action = "build"
	ActionInstall        Action = "install"
	ActionInstallAPI     Action = "installapi"
	ActionInstallHeaders Action = "installhdrs"
	ActionInstallSource  Action = "installsrc"
	ActionInstallLoc     Action = "installloc"
	ActionArchive        Action = "archive"
	ActionAnalyze        Action = "analyze"
	ActionClean          Action = "clean"
)

// actionSettings are pushed for each action on top of the target settings.
var actionSettings = map[Action]macro.Dict{
	ActionBuild:          nil,
	ActionInstall:        macro.DictOf("DEPLOYMENT_LOCATION", "YES", "DEPLOYMENT_POSTPROCESSING", "YES"),
	ActionInstallAPI:     macro.DictOf("DEPLOYMENT_LOCATION", "YES", "INSTALLAPI_MODE_ENABLED", "YES"),
	ActionInstallHeaders: macro.DictOf("DEPLOYMENT_LOCATION", "YES"),
	ActionInstallSource:  nil,
	ActionInstallLoc:     macro.DictOf("DEPLOYMENT_LOCATION", "YES"),
	// Archiving installs into the archive.
	ActionArchive: macro.DictOf("ACTION", "install", "DEPLOYMENT_LOCATION", "YES", "DEPLOYMENT_POSTPROCESSING", "YES"),
	ActionAnalyze: macro.DictOf("RUN_CLANG_STATIC_ANALYZER", "YES"),
	ActionClean:   nil,
}

func (a Action) valid() bool {
	_, ok := actionSettings[a]
	return ok
}

// Purpose selects what a Settings object is built for.
type Purpose int

const (
	// Build settings apply override layers and bind SDK conditions up front.
	Build Purpose = iota
	// Editor settings show values as authored, without overrides.
	Editor
)

func (p Purpose) String() string {
	switch p {
	case Build:
		return "build"
	case Editor:
		return "editor"
	default:
		return fmt.Sprintf("Purpose(%d)", int(p))
	}
}

// RunDestination is the device or simulator the build is for.
type RunDestination struct {
	Platform   string `yaml:"platform"`
	SDK        string `yaml:"sdk"`
	SDKVariant string `yaml:"sdkVariant,omitempty"`
	// TargetArchitecture narrows ARCHS when ONLY_ACTIVE_ARCH is enabled.
	TargetArchitecture     string   `yaml:"targetArchitecture"`
	SupportedArchitectures []string `yaml:"supportedArchitectures"`
	DisableOnlyActiveArch  bool     `yaml:"disableOnlyActiveArch,omitempty"`
}

// Arena relocates build outputs, e.g. for background indexing.
type Arena struct {
	// DerivedDataPath is the root whose absolute paths are relocated.
	DerivedDataPath          string `yaml:"derivedDataPath"`
	BuildProductsPath        string `yaml:"buildProductsPath"`
	BuildIntermediatesPath   string `yaml:"buildIntermediatesPath"`
	IndexDataStoreFolderPath string `yaml:"indexDataStoreFolderPath,omitempty"`
	IndexEnableDataStore     bool   `yaml:"indexEnableDataStore,omitempty"`
}

// Provisioning carries the results of signing identity and profile selection.
type Provisioning struct {
	IdentityHash string `yaml:"identityHash"`
	IdentityName string `yaml:"identityName"`
	ProfileName  string `yaml:"profileName,omitempty"`
	ProfileUUID  string `yaml:"profileUUID,omitempty"`
	ProfilePath  string `yaml:"profilePath,omitempty"`
	// SignedEntitlements are the entitlement keys the product will be signed with.
	SignedEntitlements []string `yaml:"signedEntitlements,omitempty"`
}

// Parameters are the inputs of one settings computation besides the project model.
type Parameters struct {
	Action        Action          `yaml:"action"`
	Configuration string          `yaml:"configuration"`
	Destination   *RunDestination `yaml:"runDestination,omitempty"`

	// Overrides, CommandLineOverrides, the command-line config overrides and the
	// environment config overrides are applied in this increasing order of precedence.
	Overrides            macro.Dict `yaml:"overrides,omitempty"`
	CommandLineOverrides macro.Dict `yaml:"commandLineOverrides,omitempty"`
	// A config-overrides file is loaded only when the matching dictionary is nil.
	CommandLineConfigOverridesPath string     `yaml:"commandLineConfigOverridesPath,omitempty"`
	CommandLineConfigOverrides     macro.Dict `yaml:"commandLineConfigOverrides,omitempty"`
	EnvironmentConfigOverridesPath string     `yaml:"environmentConfigOverridesPath,omitempty"`
	EnvironmentConfigOverrides     macro.Dict `yaml:"environmentConfigOverrides,omitempty"`

	ToolchainOverride string            `yaml:"toolchainOverride,omitempty"`
	Arena             *Arena            `yaml:"arena,omitempty"`
	Environment       map[string]string `yaml:"environment,omitempty"`
	Provisioning      *Provisioning     `yaml:"provisioning,omitempty"`

	// Label names the request in log output only.
	Label string `yaml:"-"`
}

// key returns a digest of every field that influences the computed settings.
func (p Parameters) key() (string, error) {
	// yaml.v3 sorts map keys, which makes the encoding deterministic.
	data, err := yaml.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding build parameters: %w", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (p Parameters) action() Action {
	if p.Action == "" {
		return ActionBuild
	}
	return p.Action
}
