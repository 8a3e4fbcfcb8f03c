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
	"github.com/dolthub-cypher/cygraph/ident"
	"github.com/dolthub-cypher/cygraph/relexpr"
)

// VarInfo is the per-variable projection information ToSQLTree consults:
// spec.md §3.7's VarQueryInfo, seen here through a narrow interface so
// that cypherast does not need to import the planner package that owns
// the concrete type.
type VarInfo interface {
	// Column returns the relational column a property should be addressed
	// by in the current query, falling back to the property name itself
	// when no explicit mapping exists.
	Column(prop ident.PropertyKeyName) (column string, ok bool)
	// TypeColumn returns the column holding this variable's type index,
	// if the current query projects one.
	TypeColumn() (column string, ok bool)
	// KnownLabels returns the pattern-fixed label set for this variable,
	// if the pattern fixes it.
	KnownLabels() (ident.Labels, bool)
	// Catalog returns the IndexedLabels bijection for this variable's
	// element kind, used to translate required labels into type indices.
	Catalog() *ident.IndexedLabels
}

// VarInfoLookup resolves a variable to its VarInfo.
type VarInfoLookup interface {
	Lookup(v ident.Variable) (VarInfo, bool)
}

// KnownProperties reports, per variable, which properties are declared on
// the table currently being compiled against. A property absent here
// compiles to a relational NULL literal rather than a column reference.
type KnownProperties map[ident.Variable]map[ident.PropertyKeyName]struct{}

// Has reports whether prop is declared for v.
func (kp KnownProperties) Has(v ident.Variable, prop ident.PropertyKeyName) bool {
	props, ok := kp[v]
	if !ok {
		return false
	}
	_, ok = props[prop]
	return ok
}

// ToSQLTree compiles a Cypher Expression into a relational expression
// tree per spec.md §4.B.3. known tells it which properties exist on the
// table currently being targeted; vars supplies per-variable column
// mapping, known labels and the catalog for label-to-type-index
// translation.
func ToSQLTree(e Expression, known KnownProperties, vars VarInfoLookup) (relexpr.Expr, error) {
	switch n := e.(type) {
	case *Aggregate:
		return aggregateToSQL(n, known, vars)
	case *Comparison:
		left, err := naeToSQL(&n.Left, known, vars)
		if err != nil {
			return nil, err
		}
		right, err := naeToSQL(&n.Right, known, vars)
		if err != nil {
			return nil, err
		}
		return relexpr.NewComparison(left, relexpr.CompareOp(n.Op), right), nil
	case *StringListNullPredicate:
		left, err := naeToSQL(&n.Left, known, vars)
		if err != nil {
			return nil, err
		}
		return relexpr.NewInList(left, n.List), nil
	case *NAE:
		return naeToSQL(n, known, vars)
	default:
		return nil, ErrUnsupported.New("expression type in ToSQLTree")
	}
}

func aggregateToSQL(a *Aggregate, known KnownProperties, vars VarInfoLookup) (relexpr.Expr, error) {
	if a.Op == Xor {
		return nil, ErrUnsupported.New("XOR expression")
	}
	children := make([]relexpr.Expr, len(a.Children))
	for i, c := range a.Children {
		compiled, err := ToSQLTree(c, known, vars)
		if err != nil {
			return nil, err
		}
		children[i] = compiled
	}
	if a.Op == And {
		return relexpr.NewAnd(children...), nil
	}
	return relexpr.NewOr(children...), nil
}

func naeToSQL(n *NAE, known KnownProperties, vars VarInfoLookup) (relexpr.Expr, error) {
	shape, err := n.Validate()
	if err != nil {
		return nil, err
	}
	switch shape {
	case ShapeNestedAggregate:
		agg, _ := n.Atom.Aggregate()
		return aggregateToSQL(agg, known, vars)
	case ShapeConstant:
		lit, _ := n.Atom.Literal()
		return relexpr.NewLiteral(lit), nil
	case ShapePropertyRead:
		v, _ := n.Atom.Variable()
		if !known.Has(v, *n.Property) {
			return relexpr.NewNull(), nil
		}
		info, ok := vars.Lookup(v)
		if !ok {
			return relexpr.NewNull(), nil
		}
		col, ok := info.Column(*n.Property)
		if !ok {
			col = string(*n.Property)
		}
		return relexpr.NewColumnRef(col), nil
	case ShapeLabelConstraint:
		v, _ := n.Atom.Variable()
		info, ok := vars.Lookup(v)
		if !ok {
			return nil, ErrUnsupported.New("label constraint on unknown variable " + string(v))
		}
		if known, ok := info.KnownLabels(); ok {
			if n.Labels.SubsetOf(known) {
				return relexpr.NewBool(true), nil
			}
			return relexpr.NewBool(false), nil
		}
		il := info.Catalog()
		indices := make([]ident.TypeIndex, 0, len(n.Labels))
		for _, l := range n.Labels.Slice() {
			idx, ok := il.Lookup(l)
			if !ok {
				return relexpr.NewBool(false), nil
			}
			indices = append(indices, idx)
		}
		typeCol, ok := info.TypeColumn()
		if !ok {
			return nil, ErrUnsupported.New("label constraint requires a type column for " + string(v))
		}
		return relexpr.NewLabelSet(typeCol, indices), nil
	default:
		return nil, ErrInvalidExpression.New(n.String())
	}
}
