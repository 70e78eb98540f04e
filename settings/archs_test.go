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
	"github.com/stretchr/testify/assert"
)

func TestResolveArchs(t *testing.T) {
	tests := []struct {
		name         string
		settings     macro.Dict
		destination  *RunDestination
		wantArchs    []string
		wantRemoved  []string
		wantWarnings []string
		wantErrors   []string
	}{
		{
			name:      "standard",
			wantArchs: []string{"arm64", "arm64e", "x86_64"},
		},
		{
			name:        "exclusion is exact",
			settings:    macro.DictOf("ARCHS", "arm64 arm64e", "EXCLUDED_ARCHS", "arm64"),
			wantArchs:   []string{"arm64e"},
			wantRemoved: []string{"arm64"},
		},
		{
			name:      "aliases",
			settings:  macro.DictOf("ARCHS", "aarch64 arm64 amd64"),
			wantArchs: []string{"arm64", "x86_64"},
		},
		{
			name:        "only active arch",
			settings:    macro.DictOf("ONLY_ACTIVE_ARCH", "YES"),
			destination: &RunDestination{Platform: "macosx", TargetArchitecture: "x86_64"},
			wantArchs:   []string{"x86_64"},
			wantRemoved: []string{"arm64", "arm64e"},
		},
		{
			name:        "only active arch falls back to compatible arch",
			settings:    macro.DictOf("ONLY_ACTIVE_ARCH", "YES", "ARCHS", "arm64 x86_64"),
			destination: &RunDestination{Platform: "macosx", TargetArchitecture: "arm64e"},
			wantArchs:   []string{"arm64"},
			wantRemoved: []string{"x86_64"},
		},
		{
			name:         "active arch not built",
			settings:     macro.DictOf("ONLY_ACTIVE_ARCH", "YES", "ARCHS", "x86_64"),
			destination:  &RunDestination{Platform: "macosx", TargetArchitecture: "arm64"},
			wantArchs:    []string{"x86_64"},
			wantWarnings: []string{"Demo: the active architecture arm64 is not built by this target; building x86_64 instead"},
		},
		{
			name:        "destination disables only active arch",
			settings:    macro.DictOf("ONLY_ACTIVE_ARCH", "YES"),
			destination: &RunDestination{Platform: "macosx", TargetArchitecture: "arm64", DisableOnlyActiveArch: true},
			wantArchs:   []string{"arm64", "arm64e", "x86_64"},
		},
		{
			name:      "only active arch without destination",
			settings:  macro.DictOf("ONLY_ACTIVE_ARCH", "YES"),
			wantArchs: []string{"arm64", "arm64e", "x86_64"},
		},
		{
			name: "compatibility arch satisfies valid archs",
			settings: macro.DictOf(
				"ARCHS", "arm64e x86_64",
				"VALID_ARCHS", "arm64",
				"__POPULATE_COMPATIBILITY_ARCH_MAP", "YES",
			),
			wantArchs:   []string{"arm64e"},
			wantRemoved: []string{"x86_64"},
		},
		{
			name:        "nothing to build",
			settings:    macro.DictOf("ARCHS", "arm64e x86_64", "VALID_ARCHS", "arm64"),
			wantRemoved: []string{"arm64e", "x86_64"},
			wantErrors: []string{
				"Demo: no architectures to compile for (ARCHS=arm64e x86_64, VALID_ARCHS=arm64, EXCLUDED_ARCHS=)",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			settings := append(macro.DictOf("SDKROOT", "macosx"), tc.settings...)
			f := newFixture(t, nil, newProject(settings))
			s := f.buildProject(Parameters{Destination: tc.destination})

			scope := s.GlobalScope()
			assert.Equal(t, tc.wantArchs, scope.List("ARCHS"))
			for _, arch := range tc.wantArchs {
				assert.True(t, scope.Bool(arch), arch)
			}
			for _, arch := range tc.wantRemoved {
				assert.Equal(t, "NO", scope.Value(arch), arch)
			}
			assert.Equal(t, tc.wantWarnings, s.Warnings())
			assert.Equal(t, tc.wantErrors, s.Errors())
		})
	}
}

func TestArchsWithoutSDK(t *testing.T) {
	f := newFixture(t, nil, newProject(nil))
	s := f.buildProject(Parameters{})
	assert.Empty(t, s.GlobalScope().List("ARCHS"))
	assert.Empty(t, s.Errors())
}

func TestNativeArch(t *testing.T) {
	f := newFixture(t, nil, newProject(macro.DictOf("SDKROOT", "macosx")))

	s := f.buildProject(Parameters{})
	assert.Equal(t, "arm64", s.GlobalScope().Value("NATIVE_ARCH"))

	s = f.buildProject(Parameters{Destination: &RunDestination{Platform: "macosx", TargetArchitecture: "amd64"}})
	assert.Equal(t, "x86_64", s.GlobalScope().Value("NATIVE_ARCH"))
}

func TestArchScope(t *testing.T) {
	f := newFixture(t, nil, newProject(macro.DictOf(
		"SDKROOT", "macosx",
		"ARCH_FLAG", "generic",
		"ARCH_FLAG[arch=x86_64]", "intel",
		"OBJECT_DIR", "objects-$(CURRENT_ARCH)-$(ARCH_FLAG)",
	)))
	s := f.buildProject(Parameters{})

	assert.Equal(t, "objects--generic", s.GlobalScope().Value("OBJECT_DIR"))
	assert.Equal(t, "objects-x86_64-intel", s.ArchScope("x86_64").Value("OBJECT_DIR"))
	assert.Equal(t, "objects-arm64-generic", s.ArchScope("arm64").Value("OBJECT_DIR"))
}

func TestVariantScope(t *testing.T) {
	f := newFixture(t, nil, newProject(macro.DictOf(
		"BUILD_VARIANTS", "normal profile",
		"OTHER_CFLAGS", "-g",
		"OTHER_CFLAGS[variant=profile]", "$(inherited) -pg",
	)))
	s := f.buildProject(Parameters{})

	assert.Equal(t, "normal", s.GlobalScope().Value("CURRENT_VARIANT"))
	assert.Equal(t, "-g", s.GlobalScope().Value("OTHER_CFLAGS"))
	profile := s.VariantScope("profile")
	assert.Equal(t, "profile", profile.Value("CURRENT_VARIANT"))
	assert.Equal(t, []string{"-g", "-pg"}, profile.List("OTHER_CFLAGS"))
}
