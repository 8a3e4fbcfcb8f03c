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

// Package pgx implements store.Store against PostgreSQL using
// jackc/pgx/v5, satisfying the exact table shapes of spec.md §6.1 and the
// positional-placeholder, integer-array-binding, row-callback contract
// spec.md §1 assumes of an external relational store.
package pgx

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/dolthub-cypher/cygraph/store"
	"github.com/dolthub-cypher/cygraph/value"
)

// Pool is the subset of *pgxpool.Pool this adapter needs. It exists so
// tests can substitute pgxmock's mock pool (see store/pgx/pgxtest)
// without a live database, following the mocking style
// Lychee-Technology-forma uses for its own pgx-backed repository.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Store adapts a Pool to store.Store.
type Store struct {
	pool Pool
	log  logrus.FieldLogger
}

// Open connects to dsn and returns a ready Store.
func Open(ctx context.Context, dsn string, log logrus.FieldLogger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, store.ErrStore.New(err.Error())
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{pool: pool, log: log}, nil
}

// NewWithPool wraps an already-constructed Pool (a live *pgxpool.Pool or a
// pgxmock mock pool) in a Store, without dialing a new connection.
func NewWithPool(pool Pool, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{pool: pool, log: log}
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Exec(ctx context.Context, sql string, args ...any) error {
	s.log.WithField("sql", sql).Debug("store exec")
	_, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return store.ErrStore.New(err.Error())
	}
	return nil
}

func (s *Store) Query(ctx context.Context, sql string, cb store.RowCallback, args ...any) error {
	s.log.WithField("sql", sql).Debug("store query")
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return store.ErrStore.New(err.Error())
	}
	defer rows.Close()
	return scanRows(rows, cb)
}

func (s *Store) Prepare(ctx context.Context, sql string) (store.Stmt, error) {
	// pgx's connection pool already maintains a per-connection prepared
	// statement cache keyed by SQL text; stmtcache.Cache supplies the
	// higher-level template identity (label + property list), so this
	// adapter only needs to remember the text to replay it.
	return &preparedStmt{pool: s.pool, sql: sql, log: s.log}, nil
}

func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, store.ErrStore.New(err.Error())
	}
	return &pgxTx{tx: tx, log: s.log}, nil
}

// BindIntArray returns ints unchanged: pgx binds a Go []int64 directly to
// a Postgres int8[] parameter without an intermediate wrapper type.
func (s *Store) BindIntArray(ints []int64) any {
	return ints
}

// BindList dispatches on the list's variant to the matching native slice
// type pgx knows how to bind as an array parameter.
func (s *Store) BindList(l value.List) any {
	switch l.Kind() {
	case value.Int64:
		ints, _ := l.Ints()
		return ints
	case value.Float64:
		floats, _ := l.Floats()
		return floats
	case value.String:
		strs, _ := l.Strings()
		return strs
	case value.Bytes:
		bs, _ := l.ByteSlices()
		return bs
	default:
		return []any{}
	}
}

func scanRows(rows pgx.Rows, cb store.RowCallback) error {
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return store.ErrStore.New(err.Error())
		}
		cont, err := cb(store.Row(vals))
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return store.ErrStore.New(err.Error())
	}
	return nil
}

type preparedStmt struct {
	pool Pool
	sql  string
	log  logrus.FieldLogger
}

func (p *preparedStmt) Query(ctx context.Context, cb store.RowCallback, args ...any) error {
	rows, err := p.pool.Query(ctx, p.sql, args...)
	if err != nil {
		return store.ErrStore.New(err.Error())
	}
	defer rows.Close()
	return scanRows(rows, cb)
}

func (p *preparedStmt) Exec(ctx context.Context, args ...any) error {
	_, err := p.pool.Exec(ctx, p.sql, args...)
	if err != nil {
		return store.ErrStore.New(err.Error())
	}
	return nil
}

func (p *preparedStmt) Close() error { return nil }

type pgxTx struct {
	tx  pgx.Tx
	log logrus.FieldLogger
}

func (t *pgxTx) Prepare(ctx context.Context, sql string) (store.Stmt, error) {
	return &txStmt{tx: t.tx, sql: sql}, nil
}

func (t *pgxTx) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := t.tx.Exec(ctx, sql, args...)
	if err != nil {
		return store.ErrStore.New(err.Error())
	}
	return nil
}

func (t *pgxTx) Query(ctx context.Context, sql string, cb store.RowCallback, args ...any) error {
	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return store.ErrStore.New(err.Error())
	}
	defer rows.Close()
	return scanRows(rows, cb)
}

func (t *pgxTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return store.ErrStore.New(err.Error())
	}
	return nil
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil {
		return store.ErrStore.New(err.Error())
	}
	return nil
}

type txStmt struct {
	tx  pgx.Tx
	sql string
}

func (s *txStmt) Query(ctx context.Context, cb store.RowCallback, args ...any) error {
	rows, err := s.tx.Query(ctx, s.sql, args...)
	if err != nil {
		return store.ErrStore.New(err.Error())
	}
	defer rows.Close()
	return scanRows(rows, cb)
}

func (s *txStmt) Exec(ctx context.Context, args ...any) error {
	_, err := s.tx.Exec(ctx, s.sql, args...)
	if err != nil {
		return store.ErrStore.New(err.Error())
	}
	return nil
}

func (s *txStmt) Close() error { return nil }
