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
	"strings"

	"github.com/dolthub-cypher/cygraph/cypherast"
	"github.com/dolthub-cypher/cygraph/relexpr"
	"github.com/dolthub-cypher/cygraph/store"
	"github.com/dolthub-cypher/cygraph/value"
)

// andAll folds leaves into a single Cypher expression: nil for no leaves,
// the leaf itself for one, an AND aggregate for two or more.
func andAll(leaves []cypherast.Expression) (cypherast.Expression, error) {
	switch len(leaves) {
	case 0:
		return nil, nil
	case 1:
		return leaves[0], nil
	default:
		return cypherast.NewAggregate(cypherast.And, leaves...)
	}
}

// containsColumnRef reports whether e reads any stored column. A filter
// built entirely out of Literal/Null/Bool/LabelSet leaves contains none.
func containsColumnRef(e relexpr.Expr) bool {
	switch n := e.(type) {
	case *relexpr.ColumnRef:
		return true
	case *relexpr.Not:
		return containsColumnRef(n.Operand)
	case *relexpr.Comparison:
		return containsColumnRef(n.Left) || containsColumnRef(n.Right)
	case *relexpr.InList:
		return containsColumnRef(n.Left)
	case *relexpr.And:
		for _, o := range n.Operands {
			if containsColumnRef(o) {
				return true
			}
		}
		return false
	case *relexpr.Or:
		for _, o := range n.Operands {
			if containsColumnRef(o) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// shouldSkipFilter decides whether a compiled filter eliminates every row
// of the table it was compiled against, per spec.md §4.E.1 step 4 and the
// open question of §9 ("preserve the behavior: skip on UNKNOWN or
// FALSE"). Taken completely literally that rule would also skip any
// filter touching a column that genuinely exists (TryEvaluate returns
// Unknown for every ColumnRef, live or not, since it never inspects row
// data), discarding real matches. containsColumnRef narrows "unknown" to
// the case the rule is actually meant for: every property the filter
// reached was absent from this table and got substituted with NULL, so
// the comparison is unknown for every row regardless of data and omitting
// the table changes nothing. A filter touching a live column instead
// falls through to a real WHERE clause, letting the store's own
// three-valued comparison semantics decide per row.
func shouldSkipFilter(compiled relexpr.Expr) bool {
	switch relexpr.TryEvaluate(compiled, relexpr.One) {
	case relexpr.False:
		return true
	case relexpr.True:
		return false
	default:
		return !containsColumnRef(compiled)
	}
}

// emitFilterSQL renders compiled as a WHERE clause body, or "" if the
// filter provably holds for every row (no clause needed).
func emitFilterSQL(compiled relexpr.Expr, b *relexpr.Bindings) (string, error) {
	if compiled == nil || relexpr.TryEvaluate(compiled, relexpr.One) == relexpr.True {
		return "", nil
	}
	return relexpr.EmitSQL(compiled, b)
}

// selectList renders one relational expression per read; callers pass a
// relexpr Null for properties the table does not declare.
func selectList(exprs []relexpr.Expr, b *relexpr.Bindings) ([]string, error) {
	out := make([]string, len(exprs))
	for i, e := range exprs {
		sql, err := relexpr.EmitSQL(e, b)
		if err != nil {
			return nil, err
		}
		out[i] = sql
	}
	return out, nil
}

// quoteTableIdent quotes a bare SQL identifier (a table or column name
// with no alias qualification), mirroring relexpr's own quoting so
// planner-built DDL-shaped fragments match the rest of the engine.
func quoteTableIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// assembleRow decodes one positional result row into the projection's
// per-segment value slices, using the Order vector to place each column.
func assembleRow(row store.Row, order []SegmentRef, columnNames [][]string) ([][]value.Value, error) {
	if len(row) != len(order) {
		return nil, ErrUnsupported.New("row width does not match the projection")
	}
	segs := make([][]value.Value, len(columnNames))
	for i, names := range columnNames {
		segs[i] = make([]value.Value, len(names))
	}
	for i, ref := range order {
		v, err := value.FromDriverValue(row[i])
		if err != nil {
			return nil, err
		}
		segs[ref.Segment][ref.Offset] = v
	}
	return segs, nil
}
