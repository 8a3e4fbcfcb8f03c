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

// VarUsage is the per-variable usage summary: which properties of the
// variable are read, and whether the variable appears in a label
// constraint.
type VarUsage struct {
	Properties          map[ident.PropertyKeyName]struct{}
	UsedInLabelConstraint bool
}

func newVarUsage() VarUsage {
	return VarUsage{Properties: map[ident.PropertyKeyName]struct{}{}}
}

func (u VarUsage) clone() VarUsage {
	out := newVarUsage()
	for p := range u.Properties {
		out.Properties[p] = struct{}{}
	}
	out.UsedInLabelConstraint = u.UsedInLabelConstraint
	return out
}

// merge unions two usages: the property sets union, the flag ORs.
func (u VarUsage) merge(other VarUsage) VarUsage {
	out := u.clone()
	for p := range other.Properties {
		out.Properties[p] = struct{}{}
	}
	out.UsedInLabelConstraint = out.UsedInLabelConstraint || other.UsedInLabelConstraint
	return out
}

// VarsUsages maps every variable an expression touches to its VarUsage.
type VarsUsages map[ident.Variable]VarUsage

// Merge unions two VarsUsages per-variable.
func Merge(a, b VarsUsages) VarsUsages {
	out := make(VarsUsages, len(a)+len(b))
	for v, u := range a {
		out[v] = u.clone()
	}
	for v, u := range b {
		if existing, ok := out[v]; ok {
			out[v] = existing.merge(u)
		} else {
			out[v] = u.clone()
		}
	}
	return out
}

// SingleVariable returns the lone variable referenced, and true, iff
// exactly one variable is mentioned. This is the "equi-var" test used by
// MaximalAndDecomposition's leaf classification and by the scalar planner.
func (vu VarsUsages) SingleVariable() (ident.Variable, bool) {
	if len(vu) != 1 {
		return "", false
	}
	for v := range vu {
		return v, true
	}
	return "", false
}

// Vars returns the set of variables mentioned, in no particular order.
func (vu VarsUsages) Vars() []ident.Variable {
	out := make([]ident.Variable, 0, len(vu))
	for v := range vu {
		out = append(out, v)
	}
	return out
}

// VarsUsagesOf computes vars_usages(e) recursively per spec.md §4.B.1.
func VarsUsagesOf(e Expression) VarsUsages {
	switch n := e.(type) {
	case *NAE:
		return varsUsagesOfNAE(n)
	case *Comparison:
		return Merge(varsUsagesOfNAE(&n.Left), varsUsagesOfNAE(&n.Right))
	case *StringListNullPredicate:
		return varsUsagesOfNAE(&n.Left)
	case *Aggregate:
		out := VarsUsages{}
		for _, c := range n.Children {
			out = Merge(out, VarsUsagesOf(c))
		}
		return out
	default:
		return VarsUsages{}
	}
}

func varsUsagesOfNAE(n *NAE) VarsUsages {
	switch n.Atom.Kind() {
	case AtomVariable:
		v, _ := n.Atom.Variable()
		u := newVarUsage()
		if n.Property != nil {
			u.Properties[*n.Property] = struct{}{}
		}
		u.UsedInLabelConstraint = !n.Labels.Empty()
		return VarsUsages{v: u}
	case AtomLiteral:
		return VarsUsages{}
	case AtomAggregate:
		agg, _ := n.Atom.Aggregate()
		return VarsUsagesOf(agg)
	default:
		return VarsUsages{}
	}
}
