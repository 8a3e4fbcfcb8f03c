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

package pgx

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/dolthub-cypher/cygraph/store"
	"github.com/dolthub-cypher/cygraph/value"
)

func TestStoreQueryStreamsRows(t *testing.T) {
	require := require.New(t)

	mock, err := pgxmock.NewPool()
	require.NoError(err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"id", "age"}).
		AddRow(int64(1), int64(5)).
		AddRow(int64(2), int64(10))
	mock.ExpectQuery(`SELECT "SYS__ID", "age" FROM "Person"`).WillReturnRows(rows)

	s := NewWithPool(mock, nil)
	var got []store.Row
	err = s.Query(context.Background(), `SELECT "SYS__ID", "age" FROM "Person"`, func(r store.Row) (bool, error) {
		got = append(got, r)
		return true, nil
	})
	require.NoError(err)
	require.Len(got, 2)
	require.NoError(mock.ExpectationsWereMet())
}

func TestStoreQueryHonorsAbort(t *testing.T) {
	require := require.New(t)

	mock, err := pgxmock.NewPool()
	require.NoError(err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2)).AddRow(int64(3))
	mock.ExpectQuery(`SELECT`).WillReturnRows(rows)

	s := NewWithPool(mock, nil)
	count := 0
	err = s.Query(context.Background(), `SELECT "SYS__ID" FROM "Person"`, func(r store.Row) (bool, error) {
		count++
		return count < 2, nil
	})
	require.NoError(err)
	require.Equal(2, count)
}

func TestBindListDispatchesOnKind(t *testing.T) {
	require := require.New(t)

	s := NewWithPool(nil, nil)
	got := s.BindIntArray([]int64{1, 2, 3})
	require.Equal([]int64{1, 2, 3}, got)
	require.Equal([]int64{1, 2, 3}, s.BindList(value.IntList(1, 2, 3)))
	require.Equal([]string{"a", "b"}, s.BindList(value.StringList("a", "b")))
}
