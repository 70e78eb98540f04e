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
	"testing"

	"github.com/EngFlow/buildsettings/macro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coreYAML = `
developerDir: /Applications/Xcode.app/Contents/Developer
defaultToolchain: com.apple.dt.toolchain.XcodeDefault
platforms:
  - name: macosx
    familyName: macOS
    displayName: macOS
    platformFilter: macos
    supportedArchs: [arm64, arm64e, x86_64]
    preferredArch: arm64
    deploymentTargetMacro: MACOSX_DEPLOYMENT_TARGET
    minimumDeploymentTarget: "10.13"
    maximumDeploymentTarget: "14.2"
    defaultSettings:
      PLATFORM_PREFERRED_ARCH: arm64
  - name: iphoneos
    familyName: iOS
    platformFilter: ios
    supportedArchs: [arm64, arm64e]
    deploymentTargetMacro: IPHONEOS_DEPLOYMENT_TARGET
    minimumDeploymentTarget: "12.0"
    compatibilityArchs:
      arm64e: [arm64]
sdks:
  - canonicalName: macosx13.3
    path: /SDKs/MacOSX13.3.sdk
    version: "13.3"
    platform: macosx
  - canonicalName: macosx14.2
    path: /SDKs/MacOSX14.2.sdk
    version: "14.2"
    platform: macosx
    defaultDeploymentTarget: "14.2"
    defaultSettings:
      ENABLE_HARDENED_RUNTIME: true
      OTHER_LDFLAGS: [-framework, "Foundation Extras"]
    variants:
      - name: macos
      - name: iosmac
        platformFilter: ios-maccatalyst
        deploymentTargetMacro: IPHONEOS_DEPLOYMENT_TARGET
        minimumDeploymentTarget: "13.1"
    versionMaps:
      iOSMac_macOS:
        "13.0": "10.15"
        "14.0": "11.0"
  - canonicalName: iphoneos17.2
    aliases: [iphoneos]
    path: /SDKs/iPhoneOS17.2.sdk
    version: "17.2"
    platform: iphoneos
toolchains:
  - identifier: com.apple.dt.toolchain.XcodeDefault
    aliases: [default]
    defaultBuildSettings:
      SWIFT_VERSION: "5.0"
productTypes:
  - identifier: com.apple.product-type.application
    entitlementsRequiredPlatforms: [iphoneos]
  - identifier: com.apple.product-type.tool
    platforms: [macosx]
  - identifier: com.apple.product-type.bundle.ocunit-test
    deprecationReason: use XCTest bundles instead
toolSpecs:
  - identifier: com.apple.compilers.llvm.clang
    defaults:
      GCC_OPTIMIZATION_LEVEL: s
      CLANG_ENABLE_MODULES: "NO"
  - identifier: com.apple.compilers.swift
    platforms: [iphoneos]
    defaults:
      SWIFT_OPTIMIZATION_LEVEL: -O
`

func loadTestCore(t *testing.T) *Core {
	t.Helper()
	core, err := LoadCore([]byte(coreYAML))
	require.NoError(t, err)
	return core
}

func TestLoadCore(t *testing.T) {
	core := loadTestCore(t)
	assert.Equal(t, "/Applications/Xcode.app/Contents/Developer", core.DeveloperDir())

	mac := core.Platform("macosx")
	require.NotNil(t, mac)
	assert.Equal(t, "macOS", mac.FamilyName)
	assert.Equal(t, []string{"arm64", "arm64e", "x86_64"}, mac.SupportedArchs)

	sdk := core.SDK("macosx14.2")
	require.NotNil(t, sdk)
	assert.Equal(t, macro.DictOf(
		"ENABLE_HARDENED_RUNTIME", "YES",
		"OTHER_LDFLAGS", `-framework "Foundation Extras"`,
	), sdk.DefaultSettings)
	assert.NotNil(t, sdk.Variant("iosmac"))
	assert.Nil(t, sdk.Variant("driverkit"))
	assert.Same(t, mac, core.PlatformFor(sdk))
}

func TestSDKLookup(t *testing.T) {
	core := loadTestCore(t)
	testCases := []struct {
		query    string
		expected string
	}{
		{query: "macosx13.3", expected: "macosx13.3"},
		{query: "macosx", expected: "macosx14.2"},
		{query: "/SDKs/MacOSX13.3.sdk", expected: "macosx13.3"},
		{query: "/SDKs/MacOSX13.3.sdk/", expected: "macosx13.3"},
		{query: "iphoneos", expected: "iphoneos17.2"},
		{query: "watchos", expected: ""},
		{query: "/SDKs/Unknown.sdk", expected: ""},
	}
	for _, tc := range testCases {
		sdk := core.SDK(tc.query)
		if tc.expected == "" {
			assert.Nil(t, sdk, tc.query)
			continue
		}
		if assert.NotNil(t, sdk, tc.query) {
			assert.Equal(t, tc.expected, sdk.CanonicalName, tc.query)
		}
	}

	sdks := core.SDKsForPlatform("macosx")
	require.Len(t, sdks, 2)
	assert.Equal(t, "macosx14.2", sdks[0].CanonicalName)
}

func TestToolchainLookup(t *testing.T) {
	core := loadTestCore(t)
	def := core.Toolchain("")
	require.NotNil(t, def)
	assert.Same(t, def, core.Toolchain("default"))
	assert.Nil(t, core.Toolchain("org.swift.nightly"))
}

func TestProductTypeResolution(t *testing.T) {
	core := loadTestCore(t)

	app, err := core.ProductType("com.apple.product-type.application", "iphoneos")
	require.NoError(t, err)
	assert.True(t, app.RequiresEntitlements("iphoneos"))
	assert.False(t, app.RequiresEntitlements("macosx"))

	_, err = core.ProductType("com.apple.product-type.tool", "iphoneos")
	var ptErr *ProductTypeError
	require.ErrorAs(t, err, &ptErr)
	assert.Equal(t, `unable to resolve product type "com.apple.product-type.tool" for platform "iphoneos"`, err.Error())

	_, err = core.ProductType("com.apple.product-type.bundle.ocunit-test", "macosx")
	require.ErrorAs(t, err, &ptErr)
	assert.Contains(t, err.Error(), "no longer supported")

	_, err = core.ProductType("com.example.unknown", "macosx")
	assert.Error(t, err)
}

func TestToolDefaults(t *testing.T) {
	core := loadTestCore(t)
	assert.Equal(t, []string{"GCC_OPTIMIZATION_LEVEL", "CLANG_ENABLE_MODULES"}, core.ToolDefaults("macosx").Keys())
	assert.Equal(t, []string{"GCC_OPTIMIZATION_LEVEL", "CLANG_ENABLE_MODULES", "SWIFT_OPTIMIZATION_LEVEL"}, core.ToolDefaults("iphoneos").Keys())
	assert.NoError(t, core.CheckToolDefaults())
}

func TestCheckToolDefaultsConflicts(t *testing.T) {
	core, err := NewCore(Config{ToolSpecs: []*ToolSpec{
		{Identifier: "clang", Defaults: macro.DictOf("DEBUG_INFORMATION_FORMAT", "dwarf")},
		{Identifier: "swift", Platforms: []string{"iphoneos"}, Defaults: macro.DictOf("DEBUG_INFORMATION_FORMAT", "dwarf-with-dsym")},
		{Identifier: "metal", Platforms: []string{"macosx"}, Defaults: macro.DictOf("MTL_FAST_MATH", "YES")},
		{Identifier: "metal-ios", Platforms: []string{"iphoneos"}, Defaults: macro.DictOf("MTL_FAST_MATH", "NO")},
	}})
	require.NoError(t, err)

	err = core.CheckToolDefaults()
	var conflict *ToolDefaultConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "DEBUG_INFORMATION_FORMAT", conflict.Setting)
	assert.Equal(t, [2]string{"clang", "swift"}, conflict.Specs)
	assert.NotContains(t, err.Error(), "MTL_FAST_MATH")
}

func TestNewCoreRejectsDuplicates(t *testing.T) {
	_, err := NewCore(Config{
		Platforms: []*Platform{{Name: "macosx"}, {Name: "macosx"}},
		SDKs:      []*SDK{{CanonicalName: "watchos10.0", PlatformName: "watchos"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate platform "macosx"`)
	assert.Contains(t, err.Error(), `unknown platform "watchos"`)
}

func TestVersions(t *testing.T) {
	assert.Equal(t, 1, CompareVersions("10.15", "10.9"))
	assert.Equal(t, 0, CompareVersions("13", "13.0"))
	assert.Equal(t, -1, CompareVersions("garbage", "1.0"))
	assert.True(t, VersionInRange("11.0", "10.13", "14.2"))
	assert.False(t, VersionInRange("10.9", "10.13", "14.2"))
	assert.True(t, VersionInRange("99.0", "10.13", ""))
	assert.False(t, IsVersion("1.2.3.4"))
}

func TestMapVersion(t *testing.T) {
	sdk := loadTestCore(t).SDK("macosx14.2")
	testCases := []struct {
		version  string
		expected string
		ok       bool
	}{
		{version: "13.0", expected: "10.15", ok: true},
		{version: "13.4", expected: "10.15", ok: true},
		{version: "14.0", expected: "11.0", ok: true},
		{version: "12.0", ok: false},
		{version: "", ok: false},
	}
	for _, tc := range testCases {
		mapped, ok := sdk.MapVersion("iOSMac_macOS", tc.version)
		assert.Equal(t, tc.ok, ok, tc.version)
		assert.Equal(t, tc.expected, mapped, tc.version)
	}
}

func TestCompatibilityArchs(t *testing.T) {
	core := loadTestCore(t)
	assert.Equal(t, []string{"arm64"}, core.Platform("macosx").CompatibilityArchs("arm64e"))
	assert.Equal(t, []string{"x86_64"}, core.Platform("macosx").CompatibilityArchs("x86_64h"))
	assert.Nil(t, core.Platform("iphoneos").CompatibilityArchs("x86_64h"))
	assert.Equal(t, "arm64", CanonicalArch("aarch64"))
	assert.True(t, IsKnownArch("amd64"))
}
