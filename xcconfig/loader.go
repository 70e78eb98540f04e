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

// Package xcconfig loads configuration files made of `NAME[condition] = value` assignments
// and `#include` directives into macro tables.
//
// Includes are resolved relative to the including file and then against the loader's search
// paths. Include cycles, including ones formed through symlinks, are reported once and cut;
// a file included from several places in an acyclic graph is simply merged again.
package xcconfig

import (
	"errors"
	"io/fs"
	"log"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/EngFlow/buildsettings/diag"
	"github.com/EngFlow/buildsettings/macro"
	"github.com/bazelbuild/bazel-gazelle/pathtools"
	"golang.org/x/crypto/blake2b"
)

// Extension is appended to include paths that have none.
const Extension = ".xcconfig"

const developerDirPrefix = "<DEVELOPER_DIR>"

// Digest is the content identity of a loaded file.
type Digest [blake2b.Size256]byte

func digestOf(content []byte) Digest { return blake2b.Sum256(content) }

// Dependency is a file that contributed to a load result.
type Dependency struct {
	Path   string
	Digest Digest
}

// Result of loading one root file and its includes.
type Result struct {
	Path  string
	Table *macro.Table
	// Dependencies starts with the root file and lists includes in traversal order. A file
	// merged more than once appears once per merge.
	Dependencies []Dependency
	Diagnostics  diag.List
}

// DependencyPaths returns the paths of Dependencies in order.
func (r *Result) DependencyPaths() []string {
	paths := make([]string, len(r.Dependencies))
	for i, d := range r.Dependencies {
		paths[i] = d.Path
	}
	return paths
}

// Loader loads configuration files into tables whose macros are declared in Namespace.
// Results are cached per path and revalidated against file contents on every Load.
// A Loader is safe for concurrent use.
type Loader struct {
	fs        FileSystem
	namespace *macro.Namespace

	// SearchPaths are consulted for includes not found next to the including file.
	SearchPaths []string
	// DeveloperDir replaces a leading `<DEVELOPER_DIR>` in include paths.
	DeveloperDir string
	// RootDir, when set, shortens diagnostic paths below it to relative form.
	RootDir string
	// Logger traces include resolution when non-nil.
	Logger *log.Logger

	mu    sync.Mutex
	cache map[string]*Result
}

func NewLoader(fsys FileSystem, namespace *macro.Namespace) *Loader {
	if fsys == nil {
		fsys = OSFileSystem{}
	}
	return &Loader{fs: fsys, namespace: namespace, cache: make(map[string]*Result)}
}

func (l *Loader) Namespace() *macro.Namespace { return l.namespace }

func (l *Loader) logf(format string, args ...any) {
	if l.Logger != nil {
		l.Logger.Printf(format, args...)
	}
}

// Load reads path and everything it includes. Problems are reported in the result's
// diagnostics; Load never fails outright. A missing root file yields an empty table and an
// error diagnostic.
func (l *Loader) Load(path string) *Result {
	key := filepath.Clean(path)
	l.mu.Lock()
	cached := l.cache[key]
	l.mu.Unlock()
	if cached != nil && l.isCurrent(cached) {
		return cached
	}

	result := l.load(key)
	l.mu.Lock()
	l.cache[key] = result
	l.mu.Unlock()
	return result
}

// isCurrent re-reads every dependency and reports whether all contents are unchanged.
func (l *Loader) isCurrent(r *Result) bool {
	if len(r.Dependencies) == 0 {
		return false
	}
	for _, dep := range r.Dependencies {
		content, err := l.fs.ReadFile(dep.Path)
		if err != nil || digestOf(content) != dep.Digest {
			l.logf("xcconfig: %s changed, reloading %s", dep.Path, r.Path)
			return false
		}
	}
	return true
}

// CurrentDigests re-hashes the given dependencies. Missing files get the zero digest.
func (l *Loader) CurrentDigests(deps []Dependency) []Dependency {
	out := make([]Dependency, len(deps))
	for i, dep := range deps {
		out[i] = Dependency{Path: dep.Path}
		if content, err := l.fs.ReadFile(dep.Path); err == nil {
			out[i].Digest = digestOf(content)
		}
	}
	return out
}

type loadState struct {
	loader *Loader
	result *Result
	// stack holds resolved paths of the files currently being loaded, outermost first.
	stack []string
	// completed maps files loaded without cutting an include cycle to their tables and the
	// dependencies they added.
	completed map[string]completedFile
	// cuts counts the include edges skipped because they closed a cycle.
	cuts int
	// parsed holds files whose statement errors were already reported.
	parsed map[string]bool
	// reportedCycles holds canonical keys of cycles already diagnosed.
	reportedCycles map[string]bool
}

type completedFile struct {
	table        *macro.Table
	dependencies []Dependency
}

func (l *Loader) load(path string) *Result {
	result := &Result{Path: path, Table: macro.NewTable()}
	resolved, err := l.fs.Resolve(path)
	if err != nil {
		result.Diagnostics.Errorf(diag.Unknown, "unable to open configuration file %q: %v", l.displayPath(path), err)
		return result
	}
	content, err := l.fs.ReadFile(resolved)
	if err != nil {
		result.Diagnostics.Errorf(diag.Unknown, "unable to read configuration file %q: %v", l.displayPath(path), err)
		return result
	}

	state := &loadState{
		loader:         l,
		result:         result,
		completed:      make(map[string]completedFile),
		parsed:         make(map[string]bool),
		reportedCycles: make(map[string]bool),
	}
	result.Dependencies = append(result.Dependencies, Dependency{Path: resolved, Digest: digestOf(content)})
	result.Table = state.loadFile(resolved, content)
	return result
}

func (s *loadState) loadFile(resolved string, content []byte) *macro.Table {
	s.stack = append(s.stack, resolved)
	defer func() { s.stack = s.stack[:len(s.stack)-1] }()

	// A file is parsed again when its earlier load was cut short by a cycle. Its errors are
	// reported the first time only.
	report := !s.parsed[resolved]
	s.parsed[resolved] = true

	table := macro.NewTable()
	statements, errs := Parse(content)
	if !report {
		errs = nil
	}
	for _, err := range errs {
		var syntaxErr *SyntaxError
		if errors.As(err, &syntaxErr) {
			s.result.Diagnostics.Errorf(s.loader.location(resolved, syntaxErr.Line), "%s: %q", syntaxErr.Message, syntaxErr.Text)
		} else {
			s.result.Diagnostics.Errorf(s.loader.location(resolved, 0), "%v", err)
		}
	}

	for _, statement := range statements {
		switch st := statement.(type) {
		case IncludeStatement:
			s.include(table, resolved, st)
		case AssignmentStatement:
			conditions, err := macro.ParseConditions(st.Conditions)
			if err != nil {
				if report {
					s.result.Diagnostics.Errorf(s.loader.location(resolved, st.Line()), "%v", err)
				}
				continue
			}
			decl := s.loader.namespace.LookupOrDeclare(st.Name)
			table.Push(decl, s.loader.namespace.Parse(st.Value), conditions)
		}
	}
	return table
}

func (s *loadState) include(table *macro.Table, including string, st IncludeStatement) {
	loc := s.loader.location(including, st.Line())
	target, content, err := s.loader.resolveInclude(filepath.Dir(including), st.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if !st.Optional {
			s.result.Diagnostics.Errorf(loc, "could not find included file %q in search paths", st.Path)
		}
		return
	case err != nil:
		s.result.Diagnostics.Errorf(loc, "unable to read included file %q: %v", st.Path, err)
		return
	}

	if start := slices.Index(s.stack, target); start >= 0 {
		s.cuts++
		s.reportCycle(loc, append(slices.Clone(s.stack[start:]), target))
		return
	}

	if done, ok := s.completed[target]; ok {
		s.loader.logf("xcconfig: merging %s again from %s", target, including)
		s.result.Dependencies = append(s.result.Dependencies, done.dependencies...)
		table.PushTable(done.table)
		return
	}

	s.loader.logf("xcconfig: including %s from %s", target, including)
	first := len(s.result.Dependencies)
	s.result.Dependencies = append(s.result.Dependencies, Dependency{Path: target, Digest: digestOf(content)})
	cuts := s.cuts
	nested := s.loadFile(target, content)
	// A load that skipped a cyclic include depends on the files above it on the stack, so
	// it is expanded again wherever it is included next.
	if s.cuts == cuts {
		s.completed[target] = completedFile{
			table:        nested,
			dependencies: slices.Clone(s.result.Dependencies[first:]),
		}
	}
	table.PushTable(nested)
}

// reportCycle emits one warning per distinct cycle. chain starts and ends with the same path.
func (s *loadState) reportCycle(loc diag.Location, chain []string) {
	key := cycleKey(chain[:len(chain)-1])
	if s.reportedCycles[key] {
		return
	}
	s.reportedCycles[key] = true

	names := make([]string, len(chain))
	for i, p := range chain {
		names[i] = filepath.Base(p)
	}
	d := diag.Warningf(loc, "skipping include cycle: %s", strings.Join(names, " -> "))
	for i := 0; i+1 < len(chain); i++ {
		d.Details = append(d.Details, s.loader.displayPath(chain[i])+" includes "+s.loader.displayPath(chain[i+1]))
	}
	s.result.Diagnostics.Add(d)
}

// cycleKey identifies a cycle independently of the node it was entered from.
func cycleKey(nodes []string) string {
	minIdx := 0
	for i, n := range nodes {
		if n < nodes[minIdx] {
			minIdx = i
		}
	}
	rotated := append(slices.Clone(nodes[minIdx:]), nodes[:minIdx]...)
	return strings.Join(rotated, "\x00")
}

// resolveInclude finds the file named by an include directive. It returns an error wrapping
// fs.ErrNotExist when no candidate exists.
func (l *Loader) resolveInclude(dir, name string) (string, []byte, error) {
	if rest, ok := strings.CutPrefix(name, developerDirPrefix); ok {
		name = l.DeveloperDir + rest
	}
	var bases []string
	if filepath.IsAbs(name) {
		bases = []string{name}
	} else {
		bases = append(bases, filepath.Join(dir, name))
		for _, sp := range l.SearchPaths {
			bases = append(bases, filepath.Join(sp, name))
		}
	}

	for _, base := range bases {
		candidates := []string{base}
		if filepath.Ext(base) == "" {
			candidates = append(candidates, base+Extension)
		}
		for _, candidate := range candidates {
			resolved, err := l.fs.Resolve(candidate)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return "", nil, err
			}
			content, err := l.fs.ReadFile(resolved)
			if err != nil {
				return "", nil, err
			}
			return resolved, content, nil
		}
	}
	return "", nil, &fs.PathError{Op: "include", Path: name, Err: fs.ErrNotExist}
}

func (l *Loader) location(path string, line int) diag.Location {
	return diag.Location{Path: l.displayPath(path), Line: line}
}

func (l *Loader) displayPath(path string) string {
	if l.RootDir == "" {
		return path
	}
	slashPath, root := filepath.ToSlash(path), filepath.ToSlash(l.RootDir)
	if slashPath != root && pathtools.HasPrefix(slashPath, root) {
		return pathtools.TrimPrefix(slashPath, root)
	}
	return path
}
