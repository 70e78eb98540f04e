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

	"github.com/EngFlow/buildsettings/macro"
)

type editorLayer int

const (
	projectXCConfigLayer editorLayer = iota
	projectLayer
	targetXCConfigLayer
	targetLayer
	numEditorLayers
)

type layerSnapshot struct {
	recorded bool
	// own holds the assignments authored in the layer.
	own *macro.Table
	// cumulative is the composed table right after the layer was pushed.
	cumulative *macro.Table
}

// layerSnapshots capture the composed table at the layer boundaries shown by the editor.
// A nil receiver records nothing.
type layerSnapshots struct {
	defaults *macro.Table
	layers   [numEditorLayers]layerSnapshot
}

func (ls *layerSnapshots) recordDefaults(t *macro.Table) {
	if ls != nil {
		ls.defaults = t.Clone()
	}
}

func (ls *layerSnapshots) record(l editorLayer, own, cumulative *macro.Table) {
	if ls == nil {
		return
	}
	if own == nil {
		own = macro.NewTable()
	}
	ls.layers[l] = layerSnapshot{recorded: true, own: own, cumulative: cumulative.Clone()}
}

// EditorView presents the settings authored at each level next to the value each level
// resolves to when only it and the levels below it are considered. Settings are keyed
// by name plus condition suffix, e.g. "OTHER_CFLAGS[arch=arm64]", and values are the
// unexpanded expressions. Resolved maps are keyed by macro name.
//
// The target maps are nil for project settings.
type EditorView struct {
	Target          map[string]string
	TargetXCConfig  map[string]string
	Project         map[string]string
	ProjectXCConfig map[string]string

	ResolvedTarget          map[string]string
	ResolvedTargetXCConfig  map[string]string
	ResolvedProject         map[string]string
	ResolvedProjectXCConfig map[string]string
	ResolvedDefaults        map[string]string
}

// EditorView projects s without rebuilding it. It is meant for Settings built with the
// Editor purpose, whose values exclude the override layers.
func (s *Settings) EditorView() *EditorView {
	ls := s.layers
	v := &EditorView{}
	v.Project, v.ResolvedProject = s.layerMaps(ls.layers[projectLayer])
	v.ProjectXCConfig, v.ResolvedProjectXCConfig = s.layerMaps(ls.layers[projectXCConfigLayer])
	v.Target, v.ResolvedTarget = s.layerMaps(ls.layers[targetLayer])
	v.TargetXCConfig, v.ResolvedTargetXCConfig = s.layerMaps(ls.layers[targetXCConfigLayer])
	if ls.defaults != nil {
		v.ResolvedDefaults = s.resolveAll(ls.defaults, ls.defaults.Names())
	}
	return v
}

func (s *Settings) layerMaps(snap layerSnapshot) (authored, resolved map[string]string) {
	if !snap.recorded {
		return nil, nil
	}
	authored = make(map[string]string)
	for _, name := range snap.own.Names() {
		for _, a := range slices.Backward(snap.own.Chain(name)) {
			authored[name+a.Conditions.String()] = a.Expr.String()
		}
	}
	return authored, s.resolveAll(snap.cumulative, snap.own.Names())
}

func (s *Settings) resolveAll(t *macro.Table, names []string) map[string]string {
	scope := macro.NewScope(t, s.scope.Namespace(), s.scope.Bindings())
	out := make(map[string]string, len(names))
	for _, name := range names {
		out[name] = scope.Value(name)
	}
	return out
}
