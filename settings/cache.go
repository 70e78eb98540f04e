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
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/EngFlow/buildsettings/project"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Cache shares Settings between identical requests for the lifetime of one build request.
// Entries are never invalidated; start a new Cache to observe changed files.
type Cache struct {
	builder *Builder
	group   singleflight.Group

	mu      sync.Mutex
	entries map[string]*Settings
}

func NewCache(b *Builder) *Cache {
	return &Cache{builder: b, entries: make(map[string]*Settings)}
}

// Request identifies one settings computation. Target may be nil for project settings.
type Request struct {
	Parameters Parameters
	Project    *project.Project
	Target     *project.Target
	Purpose    Purpose
}

func (r Request) key() (string, error) {
	params, err := r.Parameters.key()
	if err != nil {
		return "", err
	}
	owner := "project:" + r.Project.GUID
	if r.Target != nil {
		owner = "target:" + r.Target.GUID
	}
	return fmt.Sprintf("%s\x00%s\x00%s", params, owner, r.Purpose), nil
}

func (r Request) String() string {
	name := r.Project.Name
	if r.Target != nil {
		name = r.Target.Name
	}
	return fmt.Sprintf("%s (%s, %s)", name, r.Parameters.Configuration, r.Purpose)
}

// Get returns the cached Settings for the request or builds them. Concurrent requests with
// the same key share one computation.
func (c *Cache) Get(req Request) (*Settings, error) {
	if req.Project == nil {
		return nil, errors.New("settings cache: request without project")
	}
	key, err := req.key()
	if err != nil {
		return nil, err
	}
	if s := c.lookup(key); s != nil {
		return s, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if s := c.lookup(key); s != nil {
			return s, nil
		}
		s, err := c.builder.Build(req.Project, req.Target, req.Parameters, req.Purpose)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = s
		c.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Settings), nil
}

func (c *Cache) lookup(key string) *Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key]
}

// Len returns the number of cached Settings.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Prefetch computes the settings of many requests concurrently. The results are in request
// order. The first failure cancels the requests that have not started yet.
func (c *Cache) Prefetch(ctx context.Context, requests []Request) ([]*Settings, error) {
	results := make([]*Settings, len(requests))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, req := range requests {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := c.Get(req)
			if err != nil {
				return fmt.Errorf("%s: %w", req, err)
			}
			results[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
