// Copyright 2020-2021 Dolthub, Inc.
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

// Package stmtcache is the prepared-statement cache of spec.md §4.F,
// modeled after the teacher's engine.go PreparedDataCache: a mutex-guarded
// map from a lightweight descriptor to a compiled store.Stmt, generalized
// to a single driver rather than a per-session map, since the catalog and
// this cache are both driver-scoped (spec.md §5).
package stmtcache

import (
	"context"
	"sync"

	"github.com/mitchellh/hashstructure"

	"github.com/dolthub-cypher/cygraph/store"
)

// TemplateShape distinguishes the families of statement this cache holds,
// so that two descriptors with coincidentally equal label/property lists
// but different SQL shapes never collide.
type TemplateShape int

const (
	// ShapeAddElement is an INSERT into a label's own property table.
	ShapeAddElement TemplateShape = iota
	// ShapeAddIndexRow is the matching INSERT into the system nodes or
	// relationships index table that every addElement also performs.
	ShapeAddIndexRow
)

// Descriptor identifies a statement template: which label it targets,
// which properties it reads or writes, and which shape of statement it
// is. Two calls that produce the same Descriptor are guaranteed (by the
// planner's determinism, spec.md §4.E.3) to compile to the same SQL text.
type Descriptor struct {
	Label      string
	Properties []string
	Shape      TemplateShape
}

func (d Descriptor) hash() (uint64, error) {
	return hashstructure.Hash(d, nil)
}

// Cache maps a Descriptor to its compiled store.Stmt. All mutation is
// expected to happen on the single driver thread; the mutex here guards
// against accidental concurrent access rather than serializing an
// otherwise-parallel workload.
type Cache struct {
	mu    sync.Mutex
	store store.Store
	data  map[uint64]store.Stmt
}

// New returns an empty cache bound to st, the store that compiles
// statements on a miss.
func New(st store.Store) *Cache {
	return &Cache{store: st, data: make(map[uint64]store.Stmt)}
}

// Get returns the cached statement for d, if any.
func (c *Cache) Get(d Descriptor) (store.Stmt, bool) {
	key, err := d.hash()
	if err != nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	stmt, ok := c.data[key]
	return stmt, ok
}

// GetOrPrepare returns the cached statement for d if present, otherwise
// prepares sql against the underlying store and caches the result keyed
// by d.
func (c *Cache) GetOrPrepare(ctx context.Context, d Descriptor, sql string) (store.Stmt, error) {
	key, err := d.hash()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if stmt, ok := c.data[key]; ok {
		c.mu.Unlock()
		return stmt, nil
	}
	c.mu.Unlock()

	stmt, err := c.store.Prepare(ctx, sql)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.data[key]; ok {
		stmt.Close()
		return existing, nil
	}
	c.data[key] = stmt
	return stmt, nil
}

// Uncache evicts d's statement, closing it.
func (c *Cache) Uncache(d Descriptor) error {
	key, err := d.hash()
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	stmt, ok := c.data[key]
	if !ok {
		return nil
	}
	delete(c.data, key)
	return stmt.Close()
}

// Len reports how many templates are currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}
