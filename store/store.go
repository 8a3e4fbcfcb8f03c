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

// Package store defines the contract the planner, catalog and prepared
// statement cache expect of the relational persistence layer: CREATE/DROP
// table, prepared statements addressed by position, integer array
// binding, and row-callback query execution. Spec.md §1 treats the store
// itself as an external collaborator; this package is the boundary that
// collaborator must satisfy. The concrete adapter lives in store/pgx.
package store

import (
	"context"

	"github.com/dolthub-cypher/cygraph/value"
)

// Row is one row of a query result, addressed by ordinal position
// matching the SELECT list order.
type Row []any

// RowCallback is invoked once per result row. Returning cont=false stops
// the scan early without error (the cooperative cancellation contract of
// spec.md §5); returning an error aborts the scan and propagates.
type RowCallback func(row Row) (cont bool, err error)

// Stmt is a prepared statement bound to positional placeholders
// ($1, $2, … in the pgx adapter). It is reset between executions so the
// same compiled plan can be reused by stmtcache.Cache.
type Stmt interface {
	// Query executes the statement with the given positional arguments,
	// invoking cb once per result row in store-determined order.
	Query(ctx context.Context, cb RowCallback, args ...any) error
	// Exec executes a statement that returns no rows (DDL, INSERT).
	Exec(ctx context.Context, args ...any) error
	// Close releases the statement. Safe to call multiple times.
	Close() error
}

// Tx is a transaction bracket (spec.md §6.2's beginTransaction/
// endTransaction).
type Tx interface {
	Prepare(ctx context.Context, sql string) (Stmt, error)
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, cb RowCallback, args ...any) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Store is the relational persistence layer the driver, catalog and
// planner issue statements against.
type Store interface {
	// Prepare compiles sql once; repeated calls with the same text may
	// return a cached Stmt at the store's discretion.
	Prepare(ctx context.Context, sql string) (Stmt, error)
	// Exec runs a one-off, non-cached statement (DDL or a volatile query
	// whose shape depends on runtime data, per spec.md §4.F).
	Exec(ctx context.Context, sql string, args ...any) error
	// Query runs a one-off, non-cached query, streaming rows through cb.
	Query(ctx context.Context, sql string, cb RowCallback, args ...any) error
	// Begin opens a transaction bracket.
	Begin(ctx context.Context) (Tx, error)
	// BindIntArray wraps an int64 list so the driver passes it as a
	// native integer array parameter rather than a scalar.
	BindIntArray(ints []int64) any
	// BindList wraps a value.List the same way, dispatching on its Kind.
	BindList(l value.List) any
	// Close releases the store's resources (connection pool, …).
	Close() error
}
