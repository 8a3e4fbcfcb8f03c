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
	"fmt"
	"strings"

	"github.com/dolthub-cypher/cygraph/catalog"
	"github.com/dolthub-cypher/cygraph/cypherast"
	"github.com/dolthub-cypher/cygraph/ident"
	"github.com/dolthub-cypher/cygraph/relexpr"
	"github.com/dolthub-cypher/cygraph/store"
)

// planScalar implements spec.md §4.E.1: one node variable, one candidate
// label per registered node label (or the single label the pattern
// fixes), UNION-ALL-joined.
func planScalar(ctx context.Context, env *Env, q *cypherast.SinglePartQuery, projection *projectionPlan, limit int, handler ResultHandler) error {
	pattern := q.Match.Pattern
	if pattern.First.Variable == nil {
		return ErrUnsupported.New("scalar pattern must bind a variable to be projectable")
	}
	v := *pattern.First.Variable
	for _, seg := range projection.Segments {
		if seg != v {
			return ErrUnsupported.New("reference to variable not bound by the pattern: " + string(seg))
		}
	}

	filterExpr, err := scalarFilter(q.Match.Where, v)
	if err != nil {
		return err
	}

	candidates := scalarCandidateLabels(env.Catalog, pattern.First.Labels)

	bindings := relexpr.NewBindings(1)
	var legs []string
	for _, label := range candidates {
		schema, ok := env.Catalog.LabelSchemaFor(label)
		if !ok {
			continue
		}
		known := cypherast.KnownProperties{v: propertyKeySet(schema)}
		vars := VarInfoMap{v: scalarVarInfo(schema, label)}

		var compiled relexpr.Expr
		if filterExpr != nil {
			compiled, err = cypherast.ToSQLTree(filterExpr, known, vars)
			if err != nil {
				return err
			}
			if shouldSkipFilter(compiled) {
				continue
			}
		}

		exprs := make([]relexpr.Expr, len(projection.Reads))
		for i, r := range projection.Reads {
			if known.Has(v, r.Property) {
				exprs[i] = relexpr.NewColumnRef(string(r.Property))
			} else {
				exprs[i] = relexpr.NewNull()
			}
		}
		cols, err := selectList(exprs, bindings)
		if err != nil {
			return err
		}

		leg := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), quoteTableIdent(string(label)))
		whereSQL, err := emitFilterSQL(compiled, bindings)
		if err != nil {
			return err
		}
		if whereSQL != "" {
			leg += " WHERE " + whereSQL
		}
		legs = append(legs, leg)
	}

	if len(legs) == 0 {
		return nil
	}

	sql := strings.Join(legs, " UNION ALL ")
	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	}

	emitted := 0
	args := bindings.Args(env.Store.BindList)
	return env.Store.Query(ctx, sql, func(row store.Row) (bool, error) {
		segs, err := assembleRow(row, projection.Order, projection.ColumnNames)
		if err != nil {
			return false, err
		}
		if err := handler.OnRow(segs); err != nil {
			return false, err
		}
		emitted++
		return limit <= 0 || emitted < limit, nil
	}, args...)
}

// scalarFilter collects the Where leaves that reference only v (or no
// variable at all — a vacuous literal comparison, legal but inert), per
// spec.md §4.E.1 step 2. Any leaf mentioning another variable is a
// reference to a name the pattern never bound.
func scalarFilter(where *cypherast.Where, v ident.Variable) (cypherast.Expression, error) {
	if where == nil {
		return nil, nil
	}
	decomposed, err := cypherast.MaximalAndDecomposition(where.Expr)
	if err != nil {
		return nil, err
	}
	var leaves []cypherast.Expression
	for _, g := range decomposed.Entries() {
		for other := range g.Usages {
			if other != v {
				return nil, ErrUnsupported.New("reference to variable not bound by the pattern: " + string(other))
			}
		}
		leaves = append(leaves, g.Exprs...)
	}
	return andAll(leaves)
}

// scalarCandidateLabels resolves the pattern's fixed label set to a
// concrete candidate list (spec.md §4.E.1 step 3). Two or more fixed
// labels can never be satisfied under the single-label-per-element model
// this engine targets, so that case yields no candidates at all rather
// than an error: the query is well-formed, it simply matches nothing.
func scalarCandidateLabels(cat *catalog.Catalog, fixed ident.Labels) []ident.Label {
	labels := fixed.Slice()
	switch len(labels) {
	case 0:
		return cat.LabelsOfKind(ident.Node)
	case 1:
		if _, ok := cat.LabelSchemaFor(labels[0]); !ok {
			return nil
		}
		return labels
	default:
		return nil
	}
}

func propertyKeySet(schema *catalog.LabelSchema) map[ident.PropertyKeyName]struct{} {
	out := make(map[ident.PropertyKeyName]struct{}, len(schema.Properties)+1)
	out[ident.IDProperty] = struct{}{}
	for _, p := range schema.Properties {
		out[p.Key] = struct{}{}
	}
	return out
}

func scalarVarInfo(schema *catalog.LabelSchema, label ident.Label) *VarQueryInfo {
	vi := NewVarQueryInfo(nil)
	vi.SetColumn(ident.IDProperty, string(ident.IDProperty))
	for _, p := range schema.Properties {
		vi.SetColumn(p.Key, string(p.Key))
	}
	vi.SetKnownLabels(ident.NewLabels(label))
	return vi
}
