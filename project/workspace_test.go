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

package project

import (
	"testing"

	"github.com/EngFlow/buildsettings/macro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workspaceYAML = `
name: Demo
projects:
  - guid: P1
    name: App
    path: /src/App
    defaultConfigurationName: Release
    buildConfigurations:
      - name: Debug
        baseConfigurationFile: Config/Debug.xcconfig
        buildSettings:
          ONLY_ACTIVE_ARCH: true
      - name: Release
    targets:
      - guid: T1
        name: App
        productType: com.apple.product-type.application
        dependencies: [T2]
        buildConfigurations:
          - name: Debug
            buildSettings:
              OTHER_CFLAGS[arch=arm64]: [-DARM, -O0]
          - name: Release
      - guid: T2
        name: Core
        kind: standard
        productType: com.apple.product-type.framework
        dependencies: [T3]
        buildConfigurations:
          - name: Debug
          - name: Release
  - guid: P2
    name: Package
    path: /src/Package
    isPackage: true
    buildConfigurations:
      - name: Debug
      - name: Release
    targets:
      - guid: T3
        name: Lib
        kind: packageProduct
        buildConfigurations:
          - name: Debug
            impartedBuildSettings:
              OTHER_LDFLAGS: -lLib
          - name: Release
`

func loadTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	w, err := LoadWorkspace([]byte(workspaceYAML))
	require.NoError(t, err)
	return w
}

func TestLoadWorkspace(t *testing.T) {
	w := loadTestWorkspace(t)
	assert.Equal(t, "Demo", w.Name)
	require.Len(t, w.Projects(), 2)

	app := w.Target("T1")
	require.NotNil(t, app)
	assert.Equal(t, StandardTarget, app.Kind)
	assert.Same(t, w.Project("P1"), app.Project())
	assert.Equal(t, PackageProductTarget, w.Target("T3").Kind)
	assert.True(t, w.Project("P2").IsPackage)
	assert.Nil(t, w.Target("P1"))
	assert.Nil(t, w.Project("T1"))
	assert.Same(t, app, w.TargetNamed("App", "App"))

	debug, found := app.Configuration("Debug")
	require.True(t, found)
	assert.Equal(t, macro.DictOf("OTHER_CFLAGS[arch=arm64]", "-DARM -O0"), debug.Settings)

	projectDebug, _ := w.Project("P1").Configuration("Debug")
	assert.Equal(t, macro.DictOf("ONLY_ACTIVE_ARCH", "YES"), projectDebug.Settings)
	assert.Equal(t, "/src/App/Config/Debug.xcconfig", w.Project("P1").ResolvePath(projectDebug.BaseConfigurationFile))
}

func TestConfigurationFallback(t *testing.T) {
	w := loadTestWorkspace(t)
	testCases := []struct {
		name     string
		expected string
		found    bool
	}{
		{name: "Debug", expected: "Debug", found: true},
		{name: "Profile", expected: "Release", found: false},
		{name: "", expected: "Release", found: false},
	}
	for _, tc := range testCases {
		cfg, found := w.Target("T1").Configuration(tc.name)
		require.NotNil(t, cfg, tc.name)
		assert.Equal(t, tc.expected, cfg.Name, tc.name)
		assert.Equal(t, tc.found, found, tc.name)
	}

	// Without a default configuration the first one is used.
	cfg, found := w.Project("P2").Configuration("Profile")
	assert.False(t, found)
	assert.Equal(t, "Debug", cfg.Name)
}

func TestTransitiveDependencies(t *testing.T) {
	w := loadTestWorkspace(t)
	deps := w.TransitiveDependencies(w.Target("T1"))
	names := make([]string, len(deps))
	for i, d := range deps {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"Lib", "Core"}, names)
	assert.Empty(t, w.TransitiveDependencies(w.Target("T3")))
}

func TestTransitiveDependenciesCycle(t *testing.T) {
	configs := func() []*BuildConfiguration { return []*BuildConfiguration{{Name: "Debug"}} }
	w, err := NewWorkspace("cycle", &Project{
		GUID:                "P",
		BuildConfigurations: configs(),
		Targets: []*Target{
			{GUID: "A", Name: "A", Dependencies: []string{"B"}, BuildConfigurations: configs()},
			{GUID: "B", Name: "B", Dependencies: []string{"A"}, BuildConfigurations: configs()},
		},
	})
	require.NoError(t, err)
	deps := w.TransitiveDependencies(w.Target("A"))
	require.Len(t, deps, 1)
	assert.Equal(t, "B", deps[0].Name)
}

func TestWorkspaceValidation(t *testing.T) {
	_, err := NewWorkspace("broken",
		&Project{
			GUID:                 "P1",
			Name:                 "One",
			DefaultConfiguration: "Profile",
			BuildConfigurations:  []*BuildConfiguration{{Name: "Debug"}, {Name: "Release"}},
			Targets: []*Target{
				{GUID: "T1", Name: "App", Dependencies: []string{"T9"}, BuildConfigurations: []*BuildConfiguration{{Name: "Debug"}}},
			},
		},
		&Project{GUID: "T1", Name: "Two"},
	)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	for _, expected := range []string{
		"T1: duplicate guid",
		`P1: default configuration "Profile" does not exist`,
		`T1: target "App" depends on unknown target "T9"`,
		`T1: target "App" is missing configuration "Release"`,
		`T1: project "Two" has no build configurations`,
	} {
		assert.Contains(t, err.Error(), expected)
	}
}

func TestUnknownTargetKind(t *testing.T) {
	_, err := LoadWorkspace([]byte(`
projects:
  - guid: P
    targets:
      - guid: T
        kind: legacy
`))
	assert.ErrorContains(t, err, `unknown target kind "legacy"`)
}
