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
	"github.com/dolthub-cypher/cygraph/cypherast"
	"github.com/dolthub-cypher/cygraph/ident"
)

func addKnows(t *testing.T, cat *catalog.Catalog, mock pgxmock.PgxPoolIface) {
	t.Helper()
	mock.ExpectExec(`CREATE TABLE "KNOWS"`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`INSERT INTO "namedTypes"`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, cat.AddType(context.Background(), ident.Label("KNOWS"), ident.Relationship, nil))
}

// onePersonKnowsPerson builds `(a:Person)-[r:KNOWS]->(b:Person) RETURN
// a.age, b.age` against a catalog that registers exactly one label per
// kind — so every declared pattern label covers the full registered set
// and the label filters planPathCombo would otherwise emit are dropped as
// no-ops, keeping the generated SQL to the join/property shape alone.
func onePersonKnowsPerson(t *testing.T) (*cypherast.SinglePartQuery, *catalog.Catalog, pgxmock.PgxPoolIface, *Env) {
	t.Helper()
	cat, st, mock := newTestCatalog(t)
	addPerson(t, cat, mock)
	addKnows(t, cat, mock)

	a := ident.Variable("a")
	r := ident.Variable("r")
	b := ident.Variable("b")
	q := &cypherast.SinglePartQuery{
		Match: &cypherast.Match{
			Pattern: cypherast.PatternElement{
				First: cypherast.NodePattern{Variable: &a, Labels: ident.NewLabels("Person")},
				Links: []cypherast.Link{{
					Relationship: cypherast.RelationshipPattern{Direction: cypherast.Forward, Variable: &r, Labels: ident.NewLabels("KNOWS")},
					Node:         cypherast.NodePattern{Variable: &b, Labels: ident.NewLabels("Person")},
				}},
			},
		},
		Return: cypherast.Return{Items: []cypherast.ProjectionItem{
			{Expr: propertyRead(a, "age")},
			{Expr: propertyRead(b, "age")},
		}},
	}
	return q, cat, mock, &Env{Catalog: cat, Store: st}
}

func TestPlanPathSingleHopJoinsAndCollectsProperties(t *testing.T) {
	require := require.New(t)
	q, _, mock, env := onePersonKnowsPerson(t)

	mock.ExpectQuery(`SELECT r1\."OriginID", n0\."NodeType", r1\."DestinationID", n1\."NodeType" FROM "relationships" r1, "nodes" n0, "nodes" n1 WHERE n0\."SYS__ID" = r1\."OriginID" AND n1\."SYS__ID" = r1\."DestinationID"`).
		WillReturnRows(pgxmock.NewRows([]string{"OriginID", "NodeType", "DestinationID", "NodeType"}).AddRow(int64(1), int64(0), int64(2), int64(0)))

	mock.ExpectQuery(`SELECT "SYS__ID", "age" FROM "Person" WHERE \("SYS__ID" = ANY\(\$1\)\)`).
		WithArgs([]int64{1}).
		WillReturnRows(pgxmock.NewRows([]string{"SYS__ID", "age"}).AddRow(int64(1), int64(30)))
	mock.ExpectQuery(`SELECT "SYS__ID", "age" FROM "Person" WHERE \("SYS__ID" = ANY\(\$1\)\)`).
		WithArgs([]int64{2}).
		WillReturnRows(pgxmock.NewRows([]string{"SYS__ID", "age"}).AddRow(int64(2), int64(40)))

	h := &CollectingHandler{}
	require.NoError(Plan(context.Background(), env, "MATCH (a:Person)-[r:KNOWS]->(b:Person) RETURN a.age, b.age", q, h))

	require.Equal([]string{"a", "b"}, h.Variables)
	require.Len(h.Rows, 1)
	aAge, _ := h.Rows[0][0][0].Int64()
	bAge, _ := h.Rows[0][1][0].Int64()
	require.EqualValues(30, aAge)
	require.EqualValues(40, bAge)
}

func TestPlanPathEmptyScanProducesNoRows(t *testing.T) {
	require := require.New(t)
	q, _, mock, env := onePersonKnowsPerson(t)

	mock.ExpectQuery(`SELECT r1\."OriginID", n0\."NodeType", r1\."DestinationID", n1\."NodeType" FROM "relationships" r1, "nodes" n0, "nodes" n1 WHERE n0\."SYS__ID" = r1\."OriginID" AND n1\."SYS__ID" = r1\."DestinationID"`).
		WillReturnRows(pgxmock.NewRows([]string{"OriginID", "NodeType", "DestinationID", "NodeType"}))

	h := &CollectingHandler{}
	require.NoError(Plan(context.Background(), env, "MATCH (a:Person)-[r:KNOWS]->(b:Person) RETURN a.age, b.age", q, h))
	require.Empty(h.Rows)
}

func TestPlanPathRejectsRelationshipVariableReuse(t *testing.T) {
	require := require.New(t)
	cat, st, mock := newTestCatalog(t)
	addPerson(t, cat, mock)
	addKnows(t, cat, mock)

	a := ident.Variable("a")
	r := ident.Variable("r")
	b := ident.Variable("b")
	c := ident.Variable("c")
	q := &cypherast.SinglePartQuery{
		Match: &cypherast.Match{
			Pattern: cypherast.PatternElement{
				First: cypherast.NodePattern{Variable: &a, Labels: ident.NewLabels("Person")},
				Links: []cypherast.Link{
					{
						Relationship: cypherast.RelationshipPattern{Direction: cypherast.Forward, Variable: &r, Labels: ident.NewLabels("KNOWS")},
						Node:         cypherast.NodePattern{Variable: &b, Labels: ident.NewLabels("Person")},
					},
					{
						Relationship: cypherast.RelationshipPattern{Direction: cypherast.Forward, Variable: &r, Labels: ident.NewLabels("KNOWS")},
						Node:         cypherast.NodePattern{Variable: &c, Labels: ident.NewLabels("Person")},
					},
				},
			},
		},
		Return: cypherast.Return{Items: []cypherast.ProjectionItem{{Expr: propertyRead(a, "age")}}},
	}

	env := &Env{Catalog: cat, Store: st}
	h := &CollectingHandler{}
	err := Plan(context.Background(), env, "MATCH (a:Person)-[r:KNOWS]->(b:Person)-[r:KNOWS]->(c:Person) RETURN a.age", q, h)
	require.Error(err)
	require.True(ErrUnsupported.Is(err))
}

func TestPlanPathRejectsCrossVariableNonIDPredicate(t *testing.T) {
	require := require.New(t)
	q, _, _, env := onePersonKnowsPerson(t)
	q.Match.Where = &cypherast.Where{Expr: &cypherast.Comparison{
		Left:  *propertyRead(ident.Variable("a"), "age"),
		Op:    cypherast.EQ,
		Right: *propertyRead(ident.Variable("b"), "age"),
	}}

	h := &CollectingHandler{}
	err := Plan(context.Background(), env, "MATCH (a:Person)-[r:KNOWS]->(b:Person) WHERE a.age = b.age RETURN a.age, b.age", q, h)
	require.Error(err)
	require.True(ErrUnsupported.Is(err))
}

func TestPlanPathSimplificationForBareRelationshipPattern(t *testing.T) {
	require := require.New(t)
	cat, st, mock := newTestCatalog(t)
	addPerson(t, cat, mock)
	addKnows(t, cat, mock)

	r := ident.Variable("r")
	n0 := ident.Variable("n0")
	n1 := ident.Variable("n1")
	q := &cypherast.SinglePartQuery{
		Match: &cypherast.Match{
			Pattern: cypherast.PatternElement{
				First: cypherast.NodePattern{Variable: &n0},
				Links: []cypherast.Link{{
					Relationship: cypherast.RelationshipPattern{Direction: cypherast.Forward, Variable: &r},
					Node:         cypherast.NodePattern{Variable: &n1},
				}},
			},
		},
		Return: cypherast.Return{Items: []cypherast.ProjectionItem{{Expr: propertyRead(r, ident.IDProperty)}}},
	}

	mock.ExpectQuery(`SELECT r1\."SYS__ID" FROM "relationships" r1, "nodes" n0, "nodes" n1 WHERE n0\."SYS__ID" = r1\."OriginID" AND n1\."SYS__ID" = r1\."DestinationID"`).
		WillReturnRows(pgxmock.NewRows([]string{"SYS__ID"}).AddRow(int64(9)))

	env := &Env{Catalog: cat, Store: st}
	h := &CollectingHandler{}
	require.NoError(Plan(context.Background(), env, "MATCH (n0)-[r]->(n1) RETURN id(r)", q, h))
	require.Len(h.Rows, 1)
	id, _ := h.Rows[0][0][0].Int64()
	require.EqualValues(9, id)
}
