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
	"path"
	"path/filepath"

	"github.com/EngFlow/buildsettings/internal/collections"
	"github.com/EngFlow/buildsettings/macro"
	"github.com/bazelbuild/bazel-gazelle/pathtools"
)

// Locations below an arena's derived data directory.
const (
	derivedProductsDir      = "Build/Products"
	derivedIntermediatesDir = "Build/Intermediates.noindex"
)

// relocatedMacros are rewritten when they hold absolute paths below the derived data
// directory.
var relocatedMacros = []string{
	"CONFIGURATION_BUILD_DIR",
	"BUILT_PRODUCTS_DIR",
	"PROJECT_TEMP_DIR",
	"CONFIGURATION_TEMP_DIR",
	"TARGET_TEMP_DIR",
}

// pushArena redirects build outputs into the arena. The names it assigns are never
// exported to tools.
func (c *construction) pushArena(t *macro.Table, scope *macro.Scope) {
	c.arena = make(collections.Set[string])
	a := c.params.Arena
	if a == nil {
		return
	}
	var d macro.Dict
	if a.BuildProductsPath != "" {
		d.Set("SYMROOT", a.BuildProductsPath)
	}
	if a.BuildIntermediatesPath != "" {
		d.Set("OBJROOT", a.BuildIntermediatesPath)
		d.Set("SHARED_PRECOMPS_DIR", path.Join(a.BuildIntermediatesPath, "PrecompiledHeaders"))
	}
	if a.IndexDataStoreFolderPath != "" {
		d.Set("INDEX_DATA_STORE_DIR", a.IndexDataStoreFolderPath)
		d.Set("INDEX_ENABLE_DATA_STORE", macro.FormatBool(a.IndexEnableDataStore))
	}
	if a.DerivedDataPath != "" {
		for _, name := range relocatedMacros {
			if relocated, ok := a.relocate(c.value(scope, name)); ok {
				d.Set(name, relocated)
			}
		}
	}
	for _, e := range d {
		c.pushLiteral(t, e.Key, e.Value)
		c.arena.Add(e.Key)
	}
}

// relocate maps an absolute path below the derived data directory to the matching arena
// directory.
func (a *Arena) relocate(p string) (string, bool) {
	if !filepath.IsAbs(p) || !pathtools.HasPrefix(p, a.DerivedDataPath) {
		return "", false
	}
	rel := pathtools.TrimPrefix(p, a.DerivedDataPath)
	for _, m := range []struct{ from, to string }{
		{derivedProductsDir, a.BuildProductsPath},
		{derivedIntermediatesDir, a.BuildIntermediatesPath},
	} {
		if m.to != "" && pathtools.HasPrefix(rel, m.from) {
			return path.Join(m.to, pathtools.TrimPrefix(rel, m.from)), true
		}
	}
	return "", false
}
