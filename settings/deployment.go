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
	"fmt"

	"github.com/EngFlow/buildsettings/macro"
	"github.com/EngFlow/buildsettings/platform"
)

const (
	iOSDeploymentTarget = "IPHONEOS_DEPLOYMENT_TARGET"
	// Version maps between Mac Catalyst's iOS versions and macOS versions.
	iOSMacToMacOS = "iOSMac_macOS"
	macOSToIOSMac = "macOS_iOSMac"
)

// resolveDeploymentTargets returns the deployment target values that differ from what the
// scope currently yields.
func (c *construction) resolveDeploymentTargets(scope *macro.Scope) macro.Dict {
	if c.s.Platform == nil {
		return nil
	}
	if c.isMacCatalyst() {
		return c.resolveMacCatalystDeploymentTargets(scope)
	}

	name, minimum, maximum := c.deploymentTarget()
	if name == "" {
		return nil
	}
	var out macro.Dict
	value := c.value(scope, name)
	if value == "" {
		value = c.sdkDefaultDeploymentTarget()
		if value != "" {
			out.Set(name, value)
		}
	}
	c.checkDeploymentTarget(name, value, minimum, maximum)
	return out
}

// resolveMacCatalystDeploymentTargets clamps the iOS deployment target to the variant's
// range and derives the macOS deployment target from it. Zippered targets build for both
// platforms, so both values are kept as authored and only the iOS lower bound is enforced.
func (c *construction) resolveMacCatalystDeploymentTargets(scope *macro.Scope) macro.Dict {
	variant, sdk := c.s.SDKVariant, c.s.SDK
	iosName := variant.DeploymentTargetMacro
	if iosName == "" {
		iosName = iOSDeploymentTarget
	}
	macName := c.s.Platform.DeploymentTargetMacro
	minimum, maximum := variant.MinimumDeploymentTarget, variant.MaximumDeploymentTarget

	var out macro.Dict
	authored := c.value(scope, iosName)
	ios := authored
	if ios == "" {
		if mac := c.value(scope, macName); mac != "" {
			ios, _ = sdk.MapVersion(macOSToIOSMac, mac)
		}
		if ios == "" {
			ios = minimum
		}
	}

	if c.flag(scope, "IS_ZIPPERED") {
		if minimum != "" && platform.CompareVersions(ios, minimum) < 0 {
			c.warnDeploymentTarget(iosName, ios, minimum, maximum)
			ios = minimum
		}
		if ios != authored {
			out.Set(iosName, ios)
		}
		if macName != "" && c.value(scope, macName) == "" {
			if def := c.sdkDefaultDeploymentTarget(); def != "" {
				out.Set(macName, def)
			}
		}
		return out
	}

	if clamped := clampVersion(ios, minimum, maximum); clamped != ios {
		c.warnDeploymentTarget(iosName, ios, minimum, maximum)
		ios = clamped
	}
	if ios != authored {
		out.Set(iosName, ios)
	}
	if macName == "" {
		return out
	}
	if mac, ok := sdk.MapVersion(iOSMacToMacOS, ios); ok {
		out.Set(macName, mac)
	} else if ios != "" {
		c.warningf("unable to map %s %s to a macOS version", iosName, ios)
	}
	return out
}

func (c *construction) sdkDefaultDeploymentTarget() string {
	if c.s.SDK == nil {
		return ""
	}
	return c.s.SDK.DefaultDeploymentTarget
}

// checkDeploymentTarget warns about malformed or unsupported deployment targets of targets.
// Out-of-range values are kept.
func (c *construction) checkDeploymentTarget(name, value, minimum, maximum string) {
	if c.s.Target == nil || value == "" {
		return
	}
	if !platform.IsVersion(value) {
		c.warningf("%s is set to '%s', which is not a valid version", name, value)
		return
	}
	if !platform.VersionInRange(value, minimum, maximum) {
		c.warnDeploymentTarget(name, value, minimum, maximum)
	}
}

func (c *construction) warnDeploymentTarget(name, value, minimum, maximum string) {
	if c.s.Target == nil {
		return
	}
	c.warningf("%s is set to %s, but the range of supported deployment target versions is %s",
		name, value, describeRange(minimum, maximum))
}

func describeRange(minimum, maximum string) string {
	switch {
	case minimum != "" && maximum != "":
		return fmt.Sprintf("%s to %s", minimum, maximum)
	case minimum != "":
		return fmt.Sprintf("%s or later", minimum)
	case maximum != "":
		return fmt.Sprintf("up to %s", maximum)
	default:
		return "unrestricted"
	}
}

func clampVersion(version, minimum, maximum string) string {
	switch {
	case version == "":
		return version
	case minimum != "" && platform.CompareVersions(version, minimum) < 0:
		return minimum
	case maximum != "" && platform.CompareVersions(version, maximum) > 0:
		return maximum
	default:
		return version
	}
}
