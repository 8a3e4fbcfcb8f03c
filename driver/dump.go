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
	"context"
	"fmt"

	"github.com/dolthub-cypher/cygraph/catalog"
	"github.com/dolthub-cypher/cygraph/ident"
	"github.com/dolthub-cypher/cygraph/store"
	"github.com/dolthub-cypher/cygraph/value"
)

// Dump walks every system and property table known to the catalog,
// reporting its column schema and its rows through h.OnRow. It is a
// debugging/support entry point with no effect on query results.
func (d *Driver) Dump(ctx context.Context, h Hooks) error {
	tables := []string{catalog.NamedTypesTable, catalog.NodesTable, catalog.RelationshipsTable}
	for _, l := range d.cat.LabelsOfKind(ident.Node) {
		tables = append(tables, string(l))
	}
	for _, l := range d.cat.LabelsOfKind(ident.Relationship) {
		tables = append(tables, string(l))
	}
	for _, t := range tables {
		if err := d.dumpTableSchema(ctx, t, h); err != nil {
			return err
		}
		if err := d.dumpTableRows(ctx, t, h); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) dumpTableSchema(ctx context.Context, table string, h Hooks) error {
	q := `SELECT column_name, data_type FROM information_schema.columns WHERE table_name = $1 ORDER BY ordinal_position`
	return d.instrumentExec(q, func() error {
		return d.store.Query(ctx, q, func(r store.Row) (bool, error) {
			if h.OnRow != nil {
				row, err := toValues(r)
				if err != nil {
					return false, err
				}
				h.OnRow(table, row)
			}
			return true, nil
		}, table)
	})
}

func (d *Driver) dumpTableRows(ctx context.Context, table string, h Hooks) error {
	q := fmt.Sprintf(`SELECT * FROM %s`, quoteIdent(table))
	return d.instrumentExec(q, func() error {
		return d.store.Query(ctx, q, func(r store.Row) (bool, error) {
			if h.OnRow != nil {
				row, err := toValues(r)
				if err != nil {
					return false, err
				}
				h.OnRow(table, row)
			}
			return true, nil
		})
	})
}

func toValues(r store.Row) ([]value.Value, error) {
	out := make([]value.Value, len(r))
	for i, col := range r {
		v, err := value.FromDriverValue(col)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
