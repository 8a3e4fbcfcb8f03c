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

package planner

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/dolthub-cypher/cygraph/catalog"
	"github.com/dolthub-cypher/cygraph/config"
	"github.com/dolthub-cypher/cygraph/cypherast"
	"github.com/dolthub-cypher/cygraph/ident"
	"github.com/dolthub-cypher/cygraph/store"
	"github.com/dolthub-cypher/cygraph/store/pgx/pgxtest"
	"github.com/dolthub-cypher/cygraph/value"
)

// expectSystemTables primes the mock for the catalog bootstrap every test
// in this file pays once: the three system tables plus the empty
// namedTypes load, mirroring catalog_test.go's own fixture.
func expectSystemTables(mock pgxmock.PgxPoolIface) {
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "nodes"`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS "nodes_type_idx"`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "relationships"`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS "relationships_type_idx"`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS "relationships_origin_idx"`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS "relationships_dest_idx"`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "namedTypes"`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(`SELECT "TypeIdx", "Kind", "NamedType" FROM "namedTypes"`).
		WillReturnRows(pgxmock.NewRows([]string{"TypeIdx", "Kind", "NamedType"}))
}

func newTestCatalog(t *testing.T) (*catalog.Catalog, store.Store, pgxmock.PgxPoolIface) {
	t.Helper()
	st, mock := pgxtest.New(t)
	expectSystemTables(mock)
	cat, err := catalog.Open(context.Background(), st, nil)
	require.NoError(t, err)
	return cat, st, mock
}

func addPerson(t *testing.T, cat *catalog.Catalog, mock pgxmock.PgxPoolIface) {
	t.Helper()
	mock.ExpectExec(`CREATE TABLE "Person"`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`INSERT INTO "namedTypes"`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, cat.AddType(context.Background(), ident.Label("Person"), ident.Node, []catalog.PropertySchema{
		{Key: "age", Type: value.Int64, Nullable: true},
	}))
}

func propertyRead(v ident.Variable, prop ident.PropertyKeyName) *cypherast.NAE {
	p := prop
	return &cypherast.NAE{Atom: cypherast.VariableAtom(v), Property: &p}
}

func literal(v value.Value) *cypherast.NAE {
	return &cypherast.NAE{Atom: cypherast.LiteralAtom(v)}
}

func TestPlanScalarFiltersAndProjects(t *testing.T) {
	require := require.New(t)
	cat, st, mock := newTestCatalog(t)
	addPerson(t, cat, mock)

	p := ident.Variable("p")
	q := &cypherast.SinglePartQuery{
		Match: &cypherast.Match{
			Pattern: cypherast.PatternElement{First: cypherast.NodePattern{
				Variable: &p,
				Labels:   ident.NewLabels("Person"),
			}},
			Where: &cypherast.Where{Expr: &cypherast.Comparison{
				Left:  *propertyRead(p, "age"),
				Op:    cypherast.GT,
				Right: *literal(value.Int64Value(30)),
			}},
		},
		Return: cypherast.Return{Items: []cypherast.ProjectionItem{{Expr: propertyRead(p, "age")}}},
	}

	mock.ExpectQuery(`SELECT "age" FROM "Person" WHERE \("age" > \$1\)`).
		WithArgs(int64(30)).
		WillReturnRows(pgxmock.NewRows([]string{"age"}).AddRow(int64(42)))

	env := &Env{Catalog: cat, Store: st}
	h := &CollectingHandler{}
	require.NoError(Plan(context.Background(), env, "MATCH (p:Person) WHERE p.age > 30 RETURN p.age", q, h))

	require.Equal([]string{"p"}, h.Variables)
	require.Len(h.Rows, 1)
	age, ok := h.Rows[0][0][0].Int64()
	require.True(ok)
	require.EqualValues(42, age)
}

func TestPlanScalarNoFilterEnumeratesAllLabels(t *testing.T) {
	require := require.New(t)
	cat, st, mock := newTestCatalog(t)
	addPerson(t, cat, mock)

	p := ident.Variable("p")
	q := &cypherast.SinglePartQuery{
		Match: &cypherast.Match{
			Pattern: cypherast.PatternElement{First: cypherast.NodePattern{Variable: &p}},
		},
		Return: cypherast.Return{Items: []cypherast.ProjectionItem{{Expr: propertyRead(p, ident.IDProperty)}}},
	}

	mock.ExpectQuery(`SELECT "SYS__ID" FROM "Person"`).
		WillReturnRows(pgxmock.NewRows([]string{"SYS__ID"}).AddRow(int64(1)).AddRow(int64(2)))

	env := &Env{Catalog: cat, Store: st}
	h := &CollectingHandler{}
	require.NoError(Plan(context.Background(), env, "MATCH (p) RETURN id(p)", q, h))
	require.Len(h.Rows, 2)
}

// addCompany registers a second node label that shares no properties with
// Person, the minimal shape of the original's EntityA/EntityB pair used to
// exercise shouldSkipFilter against a real multi-label candidate set
// rather than in isolation.
func addCompany(t *testing.T, cat *catalog.Catalog, mock pgxmock.PgxPoolIface) {
	t.Helper()
	mock.ExpectExec(`CREATE TABLE "Company"`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`INSERT INTO "namedTypes"`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, cat.AddType(context.Background(), ident.Label("Company"), ident.Node, []catalog.PropertySchema{
		{Key: "revenue", Type: value.Int64, Nullable: true},
	}))
}

// TestPlanScalarSkipsLabelWhenFilterPropertyAbsent is grounded on
// Tests.cpp's WhereClausesOptimized scenario (MATCH (n) WHERE n.propA <=
// 2 return n.propA against two label families, only one of which declares
// propA): a no-label-specified pattern filtered on a property only one of
// two registered labels declares should drop the other label's leg from
// the UNION-ALL entirely rather than querying it with a vacuous WHERE.
func TestPlanScalarSkipsLabelWhenFilterPropertyAbsent(t *testing.T) {
	require := require.New(t)
	cat, st, mock := newTestCatalog(t)
	addPerson(t, cat, mock)
	addCompany(t, cat, mock)

	p := ident.Variable("n")
	q := &cypherast.SinglePartQuery{
		Match: &cypherast.Match{
			Pattern: cypherast.PatternElement{First: cypherast.NodePattern{Variable: &p}},
			Where: &cypherast.Where{Expr: &cypherast.Comparison{
				Left:  *propertyRead(p, "age"),
				Op:    cypherast.LE,
				Right: *literal(value.Int64Value(2)),
			}},
		},
		Return: cypherast.Return{Items: []cypherast.ProjectionItem{{Expr: propertyRead(p, "age")}}},
	}

	mock.ExpectQuery(`SELECT "age" FROM "Person" WHERE \("age" <= \$1\)`).
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"age"}).AddRow(int64(1)))

	env := &Env{Catalog: cat, Store: st}
	h := &CollectingHandler{}
	require.NoError(Plan(context.Background(), env, "MATCH (n) WHERE n.age <= 2 RETURN n.age", q, h))
	require.Len(h.Rows, 1)
}

func TestPlanScalarRejectsUnboundVariableInReturn(t *testing.T) {
	require := require.New(t)
	cat, st, mock := newTestCatalog(t)
	addPerson(t, cat, mock)

	p := ident.Variable("p")
	other := ident.Variable("q")
	q := &cypherast.SinglePartQuery{
		Match: &cypherast.Match{
			Pattern: cypherast.PatternElement{First: cypherast.NodePattern{Variable: &p, Labels: ident.NewLabels("Person")}},
		},
		Return: cypherast.Return{Items: []cypherast.ProjectionItem{{Expr: propertyRead(other, "age")}}},
	}

	env := &Env{Catalog: cat, Store: st}
	h := &CollectingHandler{}
	err := Plan(context.Background(), env, "MATCH (p:Person) RETURN q.age", q, h)
	require.Error(err)
	require.True(ErrUnsupported.Is(err))
}

func TestPlanScalarRespectsExplicitLimit(t *testing.T) {
	require := require.New(t)
	cat, st, mock := newTestCatalog(t)
	addPerson(t, cat, mock)

	p := ident.Variable("p")
	limit := int64(1)
	q := &cypherast.SinglePartQuery{
		Match: &cypherast.Match{
			Pattern: cypherast.PatternElement{First: cypherast.NodePattern{Variable: &p, Labels: ident.NewLabels("Person")}},
		},
		Return: cypherast.Return{
			Items: []cypherast.ProjectionItem{{Expr: propertyRead(p, "age")}},
			Limit: &limit,
		},
	}

	mock.ExpectQuery(`SELECT "age" FROM "Person" LIMIT 1`).
		WillReturnRows(pgxmock.NewRows([]string{"age"}).AddRow(int64(7)))

	env := &Env{Catalog: cat, Store: st, Limits: config.Planner{DefaultLimit: 100}}
	h := &CollectingHandler{}
	require.NoError(Plan(context.Background(), env, "MATCH (p:Person) RETURN p.age LIMIT 1", q, h))
	require.Len(h.Rows, 1)
}
