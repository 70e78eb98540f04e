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
	"testing"

	"github.com/EngFlow/buildsettings/macro"
	"github.com/EngFlow/buildsettings/platform"
	"github.com/EngFlow/buildsettings/project"
	"github.com/EngFlow/buildsettings/xcconfig"
	"github.com/stretchr/testify/require"
)

const testCoreYAML = `
developerDir: /Xcode/Developer
defaultToolchain: com.apple.dt.toolchain.XcodeDefault
platforms:
  - name: macosx
    familyName: macOS
    displayName: macOS
    path: /Platforms/MacOSX.platform
    platformFilter: macos
    supportedArchs: [arm64, arm64e, x86_64]
    preferredArch: arm64
    compatibilityArchs:
      arm64e: [arm64]
    deploymentTargetMacro: MACOSX_DEPLOYMENT_TARGET
    minimumDeploymentTarget: "10.13"
    maximumDeploymentTarget: "14.2"
    defaultSettings:
      CODE_SIGN_IDENTITY: "-"
      AD_HOC_CODE_SIGNING_ALLOWED: true
  - name: iphoneos
    familyName: iOS
    displayName: iOS
    path: /Platforms/iPhoneOS.platform
    platformFilter: ios
    supportedArchs: [arm64]
    preferredArch: arm64
    deploymentTargetMacro: IPHONEOS_DEPLOYMENT_TARGET
    minimumDeploymentTarget: "12.0"
    maximumDeploymentTarget: "17.2"
  - name: iphonesimulator
    familyName: iOS
    displayName: iOS Simulator
    path: /Platforms/iPhoneSimulator.platform
    platformFilter: ios-simulator
    simulator: true
    supportedArchs: [arm64, x86_64]
    preferredArch: arm64
    deploymentTargetMacro: IPHONEOS_DEPLOYMENT_TARGET
    minimumDeploymentTarget: "12.0"
    maximumDeploymentTarget: "17.2"
sdks:
  - canonicalName: macosx14.2
    path: /SDKs/MacOSX14.2.sdk
    version: "14.2"
    buildVersion: 23C53
    platform: macosx
    defaultDeploymentTarget: "14.2"
    defaultVariant: macos
    variants:
      - name: macos
      - name: iosmac
        platformFilter: ios-maccatalyst
        deploymentTargetMacro: IPHONEOS_DEPLOYMENT_TARGET
        minimumDeploymentTarget: "13.1"
        maximumDeploymentTarget: "17.2"
        defaultSettings:
          SUPPORTS_MACCATALYST: true
    versionMaps:
      iOSMac_macOS:
        "13.0": "10.15"
        "14.0": "11.0"
        "17.0": "14.0"
      macOS_iOSMac:
        "10.15": "13.1"
        "11.0": "14.2"
  - canonicalName: extras1.0
    path: /SDKs/Extras1.0.sdk
    version: "1.0"
    platform: macosx
    defaultSettings:
      EXTRAS_ENABLED: true
  - canonicalName: extras1_0
    path: /SDKs/Other/Extras1_0.sdk
    version: "1.0"
    platform: macosx
  - canonicalName: iphoneos17.2
    path: /SDKs/iPhoneOS17.2.sdk
    version: "17.2"
    platform: iphoneos
    defaultDeploymentTarget: "17.2"
    disallowsAdHocSigning: true
  - canonicalName: iphonesimulator17.2
    path: /SDKs/iPhoneSimulator17.2.sdk
    version: "17.2"
    platform: iphonesimulator
    defaultDeploymentTarget: "17.2"
toolchains:
  - identifier: com.apple.dt.toolchain.XcodeDefault
    path: /Toolchains/XcodeDefault.xctoolchain
    defaultBuildSettings:
      SWIFT_VERSION: "5.0"
  - identifier: org.swift.nightly
    aliases: [swift]
    path: /Toolchains/nightly.xctoolchain
    overrideBuildSettings:
      SWIFT_VERSION: "6.0"
productTypes:
  - identifier: com.apple.product-type.application
    entitlementsRequiredPlatforms: [iphoneos]
    defaultSettings:
      WRAPPER_EXTENSION: app
  - identifier: com.apple.product-type.tool
    platforms: [macosx]
  - identifier: com.apple.product-type.bundle.ocunit-test
    deprecationReason: use XCTest bundles instead
toolSpecs:
  - identifier: com.apple.compilers.llvm.clang
    defaults:
      GCC_OPTIMIZATION_LEVEL: s
  - identifier: com.apple.compilers.swift
    platforms: [iphoneos, iphonesimulator]
    defaults:
      SWIFT_OPTIMIZATION_LEVEL: -O
`

type fixture struct {
	t         *testing.T
	files     map[string]string
	workspace *project.Workspace
	builder   *Builder
}

// newFixture builds a workspace from projects. Configuration files are served from files,
// which tests may modify afterwards.
func newFixture(t *testing.T, files map[string]string, projects ...*project.Project) *fixture {
	t.Helper()
	core, err := platform.LoadCore([]byte(testCoreYAML))
	require.NoError(t, err)
	ws, err := project.NewWorkspace("Test", projects...)
	require.NoError(t, err)
	if files == nil {
		files = make(map[string]string)
	}
	b, err := NewBuilder(core, ws, xcconfig.MapFS{Files: files})
	require.NoError(t, err)
	return &fixture{t: t, files: files, workspace: ws, builder: b}
}

func (f *fixture) build(proj *project.Project, target *project.Target, params Parameters, purpose Purpose) *Settings {
	f.t.Helper()
	s, err := f.builder.Build(proj, target, params, purpose)
	require.NoError(f.t, err)
	return s
}

// buildTarget builds the only target of the only project for the Debug configuration.
func (f *fixture) buildTarget(params Parameters) *Settings {
	f.t.Helper()
	proj := f.workspace.Projects()[0]
	return f.build(proj, proj.Targets[0], params, Build)
}

func (f *fixture) buildProject(params Parameters) *Settings {
	f.t.Helper()
	return f.build(f.workspace.Projects()[0], nil, params, Build)
}

func configs(settings macro.Dict) []*project.BuildConfiguration {
	return []*project.BuildConfiguration{{Name: "Debug", Settings: settings}, {Name: "Release"}}
}

func newProject(settings macro.Dict, targets ...*project.Target) *project.Project {
	return &project.Project{
		GUID:                 "P-Demo",
		Name:                 "Demo",
		Dir:                  "/src/Demo",
		DefaultConfiguration: "Debug",
		BuildConfigurations:  configs(settings),
		Targets:              targets,
	}
}

func newTarget(name, productType string, settings macro.Dict) *project.Target {
	return &project.Target{
		GUID:                "T-" + name,
		Name:                name,
		ProductType:         productType,
		BuildConfigurations: configs(settings),
	}
}
