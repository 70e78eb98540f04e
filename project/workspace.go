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
	"errors"
	"fmt"
	"os"

	"github.com/EngFlow/buildsettings/internal/collections"
	"gopkg.in/yaml.v3"
)

// ValidationError describes a structural problem in a workspace description.
type ValidationError struct {
	// GUID identifies the offending project or target, if any.
	GUID    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.GUID == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.GUID, e.Message)
}

// Workspace is a validated set of projects with their targets indexed by GUID.
type Workspace struct {
	Name     string
	projects []*Project
	byGUID   map[string]any
}

type workspaceFile struct {
	Name     string     `yaml:"name"`
	Projects []*Project `yaml:"projects"`
}

// NewWorkspace indexes and validates projects. All problems are reported, joined.
func NewWorkspace(name string, projects ...*Project) (*Workspace, error) {
	w := &Workspace{Name: name, projects: projects, byGUID: make(map[string]any)}
	var errs []error
	invalid := func(guid, format string, args ...any) {
		errs = append(errs, &ValidationError{GUID: guid, Message: fmt.Sprintf(format, args...)})
	}

	var guids []string
	for _, p := range projects {
		if p.GUID == "" {
			invalid("", "project %q has no guid", p.Name)
		}
		guids = append(guids, p.GUID)
		w.byGUID[p.GUID] = p
		for _, t := range p.Targets {
			t.project = p
			if t.GUID == "" {
				invalid(p.GUID, "target %q has no guid", t.Name)
			}
			guids = append(guids, t.GUID)
			w.byGUID[t.GUID] = t
		}
	}
	for _, dup := range collections.FindDuplicates(collections.FilterSlice(guids, func(g string) bool { return g != "" })) {
		invalid(dup, "duplicate guid")
	}

	for _, p := range projects {
		if len(p.BuildConfigurations) == 0 {
			invalid(p.GUID, "project %q has no build configurations", p.Name)
		} else if p.DefaultConfiguration != "" {
			if _, found := p.Configuration(p.DefaultConfiguration); !found {
				invalid(p.GUID, "default configuration %q does not exist", p.DefaultConfiguration)
			}
		}
		for _, t := range p.Targets {
			for _, dep := range t.Dependencies {
				if _, ok := w.byGUID[dep].(*Target); !ok {
					invalid(t.GUID, "target %q depends on unknown target %q", t.Name, dep)
				}
			}
			projectConfigs := collections.SetOf(collections.MapSlice(p.BuildConfigurations, configName)...)
			targetConfigs := collections.SetOf(collections.MapSlice(t.BuildConfigurations, configName)...)
			for _, missing := range collections.Sorted(projectConfigs.Diff(targetConfigs)) {
				invalid(t.GUID, "target %q is missing configuration %q", t.Name, missing)
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return w, nil
}

func configName(c *BuildConfiguration) string { return c.Name }

// LoadWorkspace parses a YAML workspace description.
func LoadWorkspace(data []byte) (*Workspace, error) {
	var f workspaceFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing workspace: %w", err)
	}
	return NewWorkspace(f.Name, f.Projects...)
}

func LoadWorkspaceFile(path string) (*Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	w, err := LoadWorkspace(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

func (w *Workspace) Projects() []*Project { return w.projects }

func (w *Workspace) Project(guid string) *Project {
	p, _ := w.byGUID[guid].(*Project)
	return p
}

func (w *Workspace) Target(guid string) *Target {
	t, _ := w.byGUID[guid].(*Target)
	return t
}

// TargetNamed finds a target by project and target name.
func (w *Workspace) TargetNamed(projectName, targetName string) *Target {
	for _, p := range w.projects {
		if p.Name != projectName {
			continue
		}
		for _, t := range p.Targets {
			if t.Name == targetName {
				return t
			}
		}
	}
	return nil
}

// TransitiveDependencies returns every target t depends on, directly or indirectly, in
// depth-first declaration order. Each target appears once, before its dependents and
// after its own dependencies. Dependency cycles are cut.
func (w *Workspace) TransitiveDependencies(t *Target) []*Target {
	var out []*Target
	visited := collections.SetOf(t.GUID)
	var visit func(*Target)
	visit = func(cur *Target) {
		for _, guid := range cur.Dependencies {
			dep := w.Target(guid)
			if dep == nil || visited.Contains(guid) {
				continue
			}
			visited.Add(guid)
			visit(dep)
			out = append(out, dep)
		}
	}
	visit(t)
	return out
}
