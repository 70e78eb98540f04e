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

package xcconfig

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem is the file access the loader needs. Resolve returns the absolute, symlink-free
// form of path and fails with an error wrapping fs.ErrNotExist if it does not exist.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Resolve(path string) (string, error)
}

// OSFileSystem reads from the local disk.
type OSFileSystem struct{}

func (OSFileSystem) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (OSFileSystem) Resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// MapFS is an in-memory FileSystem. Keys are absolute, slash-separated paths. Symlinks maps a
// link path to its target; relative targets are resolved against the link's directory.
type MapFS struct {
	Files    map[string]string
	Symlinks map[string]string
}

const maxSymlinkHops = 40

func (m MapFS) Resolve(path string) (string, error) {
	current := filepath.Clean(path)
	for range maxSymlinkHops {
		resolved, err := m.resolveDirs(current)
		if err != nil {
			return "", err
		}
		target, isLink := m.Symlinks[resolved]
		if !isLink {
			if _, exists := m.Files[resolved]; !exists {
				return "", &fs.PathError{Op: "resolve", Path: path, Err: fs.ErrNotExist}
			}
			return resolved, nil
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(resolved), target)
		}
		current = filepath.Clean(target)
	}
	return "", &fs.PathError{Op: "resolve", Path: path, Err: fmt.Errorf("too many levels of symbolic links")}
}

// resolveDirs replaces symlinked parent directories of path.
func (m MapFS) resolveDirs(path string) (string, error) {
	dir, base := filepath.Split(path)
	dir = filepath.Clean(dir)
	if dir == path || dir == "/" || dir == "." {
		return path, nil
	}
	for range maxSymlinkHops {
		target, isLink := m.Symlinks[dir]
		if !isLink {
			break
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(dir), target)
		}
		dir = filepath.Clean(target)
	}
	parent, err := m.resolveDirs(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(parent, base), nil
}

func (m MapFS) ReadFile(path string) ([]byte, error) {
	resolved, err := m.Resolve(path)
	if err != nil {
		return nil, err
	}
	return []byte(m.Files[resolved]), nil
}
