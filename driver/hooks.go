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

package driver

import (
	"time"

	"github.com/dolthub-cypher/cygraph/value"
)

// Hooks are optional callbacks a caller installs to observe the SQL
// Driver issues directly (id allocation, endpoint verification, element
// inserts) and Dump's introspection queries. Unset fields are no-ops.
// This is a typed, opt-in counterpart to the unconditional logrus
// debug logging the store already does, not a replacement for it.
type Hooks struct {
	// OnQuery is called with the SQL text before it executes.
	OnQuery func(sql string)
	// OnQueryDuration is called with the SQL text and elapsed wall time
	// after it finishes, whether or not it errored.
	OnQueryDuration func(sql string, d time.Duration)
	// OnRow is called once per row Dump walks, named by the table it
	// came from.
	OnRow func(table string, row []value.Value)
}

// SetHooks installs h, replacing any previously set hooks.
func (d *Driver) SetHooks(h Hooks) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks = h
}

// instrumentExec runs fn (expected to issue sql via d.store or a cached
// Stmt) and reports it through d.hooks, if set.
func (d *Driver) instrumentExec(sql string, fn func() error) error {
	if d.hooks.OnQuery != nil {
		d.hooks.OnQuery(sql)
	}
	start := time.Now()
	err := fn()
	if d.hooks.OnQueryDuration != nil {
		d.hooks.OnQueryDuration(sql, time.Since(start))
	}
	return err
}
