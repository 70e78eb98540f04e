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
	"slices"

	"github.com/EngFlow/buildsettings/internal/collections"
	"github.com/EngFlow/buildsettings/macro"
	"github.com/EngFlow/buildsettings/platform"
)

// resolveArchs computes the architectures to build: ARCHS restricted to VALID_ARCHS, minus
// EXCLUDED_ARCHS, then narrowed to the run destination's architecture when
// ONLY_ACTIVE_ARCH is set. It also returns the requested architectures that were dropped.
//
// Exclusion matches exact names only, so excluding arm64 keeps arm64e. Without a platform an
// empty ARCHS is not an error.
func (c *construction) resolveArchs(scope *macro.Scope) (archs, removed []string) {
	requested := collections.Uniq(collections.MapSlice(c.list(scope, "ARCHS"), platform.CanonicalArch))
	if len(requested) == 0 && c.s.Platform == nil {
		return nil, nil
	}
	valid := collections.MapSlice(c.list(scope, "VALID_ARCHS"), platform.CanonicalArch)
	excluded := collections.SetOf(collections.MapSlice(c.list(scope, "EXCLUDED_ARCHS"), platform.CanonicalArch)...)
	useCompatibility := c.flag(scope, "__POPULATE_COMPATIBILITY_ARCH_MAP")

	buildable := func(arch string) bool {
		if len(valid) == 0 || slices.Contains(valid, arch) {
			return true
		}
		if useCompatibility {
			for _, compat := range c.s.Platform.CompatibilityArchs(arch) {
				if slices.Contains(valid, compat) {
					return true
				}
			}
		}
		return false
	}
	archs = collections.FilterSlice(requested, func(arch string) bool {
		return buildable(arch) && !excluded.Contains(arch)
	})

	if d := c.params.Destination; d != nil && d.TargetArchitecture != "" && !d.DisableOnlyActiveArch &&
		c.flag(scope, "ONLY_ACTIVE_ARCH") && len(archs) > 0 {
		archs = c.activeArchs(archs, platform.CanonicalArch(d.TargetArchitecture))
	}

	if len(archs) == 0 {
		c.errorf("no architectures to compile for (ARCHS=%s, VALID_ARCHS=%s, EXCLUDED_ARCHS=%s)",
			macro.JoinList(requested), macro.JoinList(valid), macro.JoinList(collections.Sorted(excluded)))
	}
	removed = collections.FilterSlice(requested, func(arch string) bool { return !slices.Contains(archs, arch) })
	return archs, removed
}

// activeArchs narrows archs to the active architecture or, failing that, to the first of
// its compatibility architectures that is being built. If neither is built all of archs
// are kept.
func (c *construction) activeArchs(archs []string, active string) []string {
	if slices.Contains(archs, active) {
		return []string{active}
	}
	for _, compat := range c.s.Platform.CompatibilityArchs(active) {
		if slices.Contains(archs, compat) {
			return []string{compat}
		}
	}
	c.warningf("the active architecture %s is not built by this target; building %s instead",
		active, macro.JoinList(archs))
	return archs
}
