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

package cypherast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub-cypher/cygraph/ident"
	"github.com/dolthub-cypher/cygraph/relexpr"
	"github.com/dolthub-cypher/cygraph/value"
)

type fakeVarInfo struct {
	columns     map[ident.PropertyKeyName]string
	typeColumn  string
	hasType     bool
	known       ident.Labels
	hasKnown    bool
	catalog     *ident.IndexedLabels
}

func (f fakeVarInfo) Column(p ident.PropertyKeyName) (string, bool) {
	c, ok := f.columns[p]
	return c, ok
}
func (f fakeVarInfo) TypeColumn() (string, bool)        { return f.typeColumn, f.hasType }
func (f fakeVarInfo) KnownLabels() (ident.Labels, bool) { return f.known, f.hasKnown }
func (f fakeVarInfo) Catalog() *ident.IndexedLabels      { return f.catalog }

type fakeLookup map[ident.Variable]fakeVarInfo

func (l fakeLookup) Lookup(v ident.Variable) (VarInfo, bool) {
	info, ok := l[v]
	return info, ok
}

func TestToSQLTreePropertyReadKnownAndUnknown(t *testing.T) {
	require := require.New(t)

	known := KnownProperties{"a": {"age": {}}}
	lookup := fakeLookup{"a": {columns: map[ident.PropertyKeyName]string{"age": "c_age"}}}

	got, err := ToSQLTree(propertyRead("a", "age"), known, lookup)
	require.NoError(err)
	ref, ok := got.(*relexpr.ColumnRef)
	require.True(ok)
	require.Equal("c_age", ref.Column)

	got, err = ToSQLTree(propertyRead("a", "doesNotExist"), known, lookup)
	require.NoError(err)
	_, ok = got.(*relexpr.Null)
	require.True(ok)
}

func TestToSQLTreePropertyReadFallsBackToPropertyName(t *testing.T) {
	require := require.New(t)

	known := KnownProperties{"a": {"age": {}}}
	lookup := fakeLookup{"a": {columns: map[ident.PropertyKeyName]string{}}}

	got, err := ToSQLTree(propertyRead("a", "age"), known, lookup)
	require.NoError(err)
	ref, ok := got.(*relexpr.ColumnRef)
	require.True(ok)
	require.Equal("age", ref.Column)
}

func TestToSQLTreeLabelConstraintKnownLabels(t *testing.T) {
	require := require.New(t)

	lookup := fakeLookup{"a": {known: ident.NewLabels("Person", "Employee"), hasKnown: true}}

	got, err := ToSQLTree(labelConstraint("a", "Person"), nil, lookup)
	require.NoError(err)
	b, ok := got.(*relexpr.Bool)
	require.True(ok)
	require.True(b.Value)

	got, err = ToSQLTree(labelConstraint("a", "Manager"), nil, lookup)
	require.NoError(err)
	b, ok = got.(*relexpr.Bool)
	require.True(ok)
	require.False(b.Value)
}

func TestToSQLTreeLabelConstraintUnknownLabelsTranslatesToTypeIndices(t *testing.T) {
	require := require.New(t)

	il := ident.NewIndexedLabels()
	il.Add("Person")
	il.Add("Company")

	lookup := fakeLookup{"a": {typeColumn: "NodeType", hasType: true, catalog: il}}

	got, err := ToSQLTree(labelConstraint("a", "Person"), nil, lookup)
	require.NoError(err)
	ls, ok := got.(*relexpr.LabelSet)
	require.True(ok)
	require.Equal("NodeType", ls.TypeColumn)
	require.Equal([]ident.TypeIndex{0}, ls.Indices)

	got, err = ToSQLTree(labelConstraint("a", "DoesNotExist"), nil, lookup)
	require.NoError(err)
	b, ok := got.(*relexpr.Bool)
	require.True(ok)
	require.False(b.Value)
}

func TestToSQLTreeConstant(t *testing.T) {
	require := require.New(t)

	got, err := ToSQLTree(literal(value.Int64Value(5)), nil, fakeLookup{})
	require.NoError(err)
	lit, ok := got.(*relexpr.Literal)
	require.True(ok)
	i, _ := lit.Value.Int64()
	require.EqualValues(5, i)
}

func TestToSQLTreeComparisonAndInList(t *testing.T) {
	require := require.New(t)

	known := KnownProperties{"a": {"age": {}}}
	lookup := fakeLookup{"a": {columns: map[ident.PropertyKeyName]string{}}}

	cmp := &Comparison{Left: *propertyRead("a", "age"), Op: GT, Right: *literal(value.Int64Value(10))}
	got, err := ToSQLTree(cmp, known, lookup)
	require.NoError(err)
	_, ok := got.(*relexpr.Comparison)
	require.True(ok)

	inList := &StringListNullPredicate{Left: *propertyRead("a", "age"), List: value.IntList(1, 2, 3)}
	got, err = ToSQLTree(inList, known, lookup)
	require.NoError(err)
	_, ok = got.(*relexpr.InList)
	require.True(ok)
}
