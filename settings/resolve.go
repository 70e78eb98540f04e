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
	"strings"
	"unicode"

	"github.com/EngFlow/buildsettings/internal/collections"
	"github.com/EngFlow/buildsettings/macro"
	"github.com/EngFlow/buildsettings/platform"
)

const (
	autoSDK = "auto"
	// macCatalystVariant is the SDK variant building iOS code for macOS.
	macCatalystVariant = "iosmac"
)

// resolveSDK selects the SDK named by SDKROOT along with its platform, variant and the
// sparse SDKs named by ADDITIONAL_SDKS.
func (c *construction) resolveSDK(scope *macro.Scope) {
	core := c.builder.core
	root := c.value(scope, "SDKROOT")
	if root == "" {
		return
	}
	name := root
	if root == autoSDK {
		name = c.autoSDKName(scope)
	}
	var sdk *platform.SDK
	if name != "" {
		sdk = core.SDK(name)
	}
	if sdk == nil {
		c.errorf("unable to find sdk '%s'", root)
		return
	}
	c.s.SDK = sdk
	c.s.Platform = core.PlatformFor(sdk)
	c.builder.logf("settings: %s uses sdk %s", c.subject(), sdk.CanonicalName)

	variant := c.value(scope, "SDK_VARIANT")
	if d := c.params.Destination; d != nil && d.SDKVariant != "" {
		variant = d.SDKVariant
	}
	if variant == "" {
		variant = sdk.DefaultVariant
	}
	if variant != "" {
		c.s.SDKVariant = sdk.Variant(variant)
		if c.s.SDKVariant == nil {
			c.warningf("sdk '%s' has no variant '%s'", sdk.CanonicalName, variant)
		}
	}

	for _, entry := range collections.Uniq(c.list(scope, "ADDITIONAL_SDKS")) {
		sparse := core.SDK(entry)
		if sparse == nil {
			c.warningf("unable to find additional sdk '%s'", entry)
			continue
		}
		if sparse != sdk {
			c.s.SparseSDKs = append(c.s.SparseSDKs, sparse)
		}
	}
}

// autoSDKName picks an SDK for SDKROOT=auto from the run destination, or from
// SUPPORTED_PLATFORMS when it names a single platform.
func (c *construction) autoSDKName(scope *macro.Scope) string {
	core := c.builder.core
	if d := c.params.Destination; d != nil {
		if d.SDK != "" {
			return d.SDK
		}
		if sdks := core.SDKsForPlatform(d.Platform); len(sdks) > 0 {
			return sdks[0].CanonicalName
		}
	}
	if supported := collections.Uniq(c.list(scope, "SUPPORTED_PLATFORMS")); len(supported) == 1 {
		if sdks := core.SDKsForPlatform(supported[0]); len(sdks) > 0 {
			return sdks[0].CanonicalName
		}
	}
	return ""
}

func (c *construction) sdkNames() []string {
	if c.s.SDK == nil {
		return nil
	}
	names := []string{c.s.SDK.CanonicalName}
	for _, sparse := range c.s.SparseSDKs {
		names = append(names, sparse.CanonicalName)
	}
	return names
}

// sdkDirMacro synthesizes the per-SDK macro naming an SDK's directory.
func sdkDirMacro(sdk *platform.SDK) string {
	return "SDK_DIR_" + strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return '_'
	}, sdk.CanonicalName)
}

// pushSDKDirs pushes SDK_DIR_<name> for the SDK and every sparse SDK. When two SDKs
// synthesize the same name the later one wins and each colliding pair is reported.
func (c *construction) pushSDKDirs(t *macro.Table) {
	definedBy := make(map[string][]*platform.SDK)
	var dirs []string
	for _, sdk := range append([]*platform.SDK{c.s.SDK}, c.s.SparseSDKs...) {
		name := sdkDirMacro(sdk)
		for _, prev := range definedBy[name] {
			c.warningf("%s is defined by both '%s' and '%s'; using '%s'", name, prev.Path, sdk.Path, sdk.Path)
		}
		definedBy[name] = append(definedBy[name], sdk)
		c.pushLiteral(t, name, sdk.Path)
		if sdk != c.s.SDK {
			dirs = append(dirs, sdk.Path)
		}
	}
	if len(dirs) > 0 {
		c.pushLiteral(t, "ADDITIONAL_SDK_DIRS", macro.JoinList(dirs))
	}
}

// resolveToolchain selects the global override, the first known entry of TOOLCHAINS or
// the default toolchain.
func (c *construction) resolveToolchain(scope *macro.Scope) {
	core := c.builder.core
	if override := c.params.ToolchainOverride; override != "" {
		if tc := core.Toolchain(override); tc != nil {
			c.s.Toolchain = tc
			c.notef("using global toolchain override '%s'", tc.Identifier)
			return
		}
		c.warningf("unable to find toolchain '%s'", override)
	}
	for _, id := range c.list(scope, "TOOLCHAINS") {
		if tc := core.Toolchain(id); tc != nil {
			c.s.Toolchain = tc
			return
		}
	}
	c.s.Toolchain = core.Toolchain("")
}

func (c *construction) resolveProductType() {
	target := c.s.Target
	if target == nil || !target.Kind.HasProductType() || target.ProductType == "" {
		return
	}
	platformName := ""
	if c.s.Platform != nil {
		platformName = c.s.Platform.Name
	}
	pt, err := c.builder.core.ProductType(target.ProductType, platformName)
	if err != nil {
		c.errorf("%v", err)
		return
	}
	c.s.ProductType = pt
}

func (c *construction) isMacCatalyst() bool {
	return c.s.SDKVariant != nil && c.s.SDKVariant.Name == macCatalystVariant
}

// deploymentTarget returns the deployment target macro of the selected platform or
// variant and its supported range.
func (c *construction) deploymentTarget() (name, minimum, maximum string) {
	if v := c.s.SDKVariant; v != nil && v.DeploymentTargetMacro != "" {
		return v.DeploymentTargetMacro, v.MinimumDeploymentTarget, v.MaximumDeploymentTarget
	}
	if p := c.s.Platform; p != nil {
		return p.DeploymentTargetMacro, p.MinimumDeploymentTarget, p.MaximumDeploymentTarget
	}
	return "", "", ""
}

func (c *construction) deploymentTargetMacro() string {
	name, _, _ := c.deploymentTarget()
	return name
}

// nativeArch is the architecture of the run destination, or the platform's preferred one.
func (c *construction) nativeArch() string {
	if d := c.params.Destination; d != nil && d.TargetArchitecture != "" {
		return platform.CanonicalArch(d.TargetArchitecture)
	}
	if p := c.s.Platform; p != nil {
		return p.PreferredArch
	}
	return ""
}
