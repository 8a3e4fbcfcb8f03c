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

// Package pgxtest provides pgxmock-backed test doubles for store.Store,
// grounded in Lychee-Technology-forma's pgxmock usage, so planner and
// driver tests can assert on the exact SQL text and bindings a plan
// produces without a live PostgreSQL instance.
package pgxtest

import (
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	cygraphpgx "github.com/dolthub-cypher/cygraph/store/pgx"
)

// New returns a store.Store backed by a fresh pgxmock pool, plus the mock
// handle tests use to set expectations and assert they were all met.
func New(t *testing.T) (*cygraphpgx.Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	mock.MatchExpectationsInOrder(false)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return cygraphpgx.NewWithPool(mock, nil), mock
}
