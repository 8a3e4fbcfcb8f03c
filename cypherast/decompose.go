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

import "github.com/dolthub-cypher/cygraph/ident"

// ExpressionsByVarsUsages groups leaf expressions by their VarsUsages key.
// Keys are not directly hashable (a map isn't comparable), so lookups walk
// the small entry list; decomposition results are expected to hold at most
// a handful of leaves per query.
type ExpressionsByVarsUsages struct {
	entries []expressionGroup
}

type expressionGroup struct {
	usages VarsUsages
	exprs  []Expression
}

// NewExpressionsByVarsUsages returns an empty grouping.
func NewExpressionsByVarsUsages() *ExpressionsByVarsUsages {
	return &ExpressionsByVarsUsages{}
}

func sameVarsUsages(a, b VarsUsages) bool {
	if len(a) != len(b) {
		return false
	}
	for v, ua := range a {
		ub, ok := b[v]
		if !ok || ua.UsedInLabelConstraint != ub.UsedInLabelConstraint {
			return false
		}
		if len(ua.Properties) != len(ub.Properties) {
			return false
		}
		for p := range ua.Properties {
			if _, ok := ub.Properties[p]; !ok {
				return false
			}
		}
	}
	return true
}

func (m *ExpressionsByVarsUsages) add(usages VarsUsages, e Expression) {
	for i := range m.entries {
		if sameVarsUsages(m.entries[i].usages, usages) {
			m.entries[i].exprs = append(m.entries[i].exprs, e)
			return
		}
	}
	m.entries = append(m.entries, expressionGroup{usages: usages, exprs: []Expression{e}})
}

// Entries returns every (VarsUsages, leaves) group, in insertion order.
func (m *ExpressionsByVarsUsages) Entries() []struct {
	Usages VarsUsages
	Exprs  []Expression
} {
	out := make([]struct {
		Usages VarsUsages
		Exprs  []Expression
	}, len(m.entries))
	for i, g := range m.entries {
		out[i].Usages = g.usages
		out[i].Exprs = g.exprs
	}
	return out
}

// Leaves returns every leaf expression across all groups, in insertion
// order, regardless of grouping key.
func (m *ExpressionsByVarsUsages) Leaves() []Expression {
	out := make([]Expression, 0, len(m.entries))
	for _, g := range m.entries {
		out = append(out, g.exprs...)
	}
	return out
}

// ForSingleVariable returns the leaves whose VarsUsages mentions exactly
// the given variable and no other — the equi-var leaves that may be
// pushed down as a per-variable filter (spec.md glossary: "equi-var
// expression").
func (m *ExpressionsByVarsUsages) ForSingleVariable(v ident.Variable) []Expression {
	var out []Expression
	for _, g := range m.entries {
		single, ok := g.usages.SingleVariable()
		if ok && single == v {
			out = append(out, g.exprs...)
		}
	}
	return out
}

// NonEquiVar returns every leaf whose VarsUsages does not reduce to a
// single variable: leaves mentioning zero variables (pure literal
// comparisons — legal but vacuous) or more than one (cross-variable
// predicates, which every planner path beyond ID-only filters rejects).
func (m *ExpressionsByVarsUsages) NonEquiVar() []Expression {
	var out []Expression
	for _, g := range m.entries {
		if _, ok := g.usages.SingleVariable(); !ok {
			out = append(out, g.exprs...)
		}
	}
	return out
}

// MaximalAndDecomposition walks down through contiguous AND-aggregations
// and places every non-AND node into the returned grouping, keyed by its
// own VarsUsages (spec.md §4.B.2). OR-aggregates are atomic leaves, never
// flattened. XOR is rejected with ErrUnsupported, anywhere in the tree
// (even nested inside an AND), since no leaf containing it can ever be
// compiled.
func MaximalAndDecomposition(e Expression) (*ExpressionsByVarsUsages, error) {
	out := NewExpressionsByVarsUsages()
	if err := decomposeInto(e, out); err != nil {
		return nil, err
	}
	return out, nil
}

func decomposeInto(e Expression, out *ExpressionsByVarsUsages) error {
	if agg, ok := e.(*Aggregate); ok {
		if agg.Op == Xor {
			return ErrUnsupported.New("XOR expression")
		}
		if agg.Op == And {
			for _, c := range agg.Children {
				if err := decomposeInto(c, out); err != nil {
					return err
				}
			}
			return nil
		}
	}
	if containsXor(e) {
		return ErrUnsupported.New("XOR expression")
	}
	out.add(VarsUsagesOf(e), e)
	return nil
}

func containsXor(e Expression) bool {
	switch n := e.(type) {
	case *Comparison:
		return containsXor(&n.Left) || containsXor(&n.Right)
	case *StringListNullPredicate:
		return containsXor(&n.Left)
	case *NAE:
		if agg, ok := n.Atom.Aggregate(); ok {
			return containsXor(agg)
		}
		return false
	}
	agg, ok := e.(*Aggregate)
	if !ok {
		return false
	}
	if agg.Op == Xor {
		return true
	}
	for _, c := range agg.Children {
		if containsXor(c) {
			return true
		}
	}
	return false
}
