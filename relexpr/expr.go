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

package relexpr

import (
	"github.com/dolthub-cypher/cygraph/ident"
	"github.com/dolthub-cypher/cygraph/value"
)

// Expr is the relational expression tree. Like cypherast.Expression, it is
// a closed variant set switched over by TryEvaluate and EmitSQL rather
// than dispatched through interface methods per variant.
type Expr interface {
	isExpr()
}

// CompareOp mirrors cypherast.CompareOp; kept as a distinct type so this
// package has no dependency on cypherast (the dependency runs the other
// way: cypherast.ToSQLTree produces relexpr.Expr values).
type CompareOp int

const (
	EQ CompareOp = iota
	NE
	LT
	LE
	GT
	GE
)

func (op CompareOp) String() string {
	switch op {
	case EQ:
		return "="
	case NE:
		return "<>"
	case LT:
		return "<"
	case LE:
		return "<="
	case GT:
		return ">"
	case GE:
		return ">="
	default:
		return "?"
	}
}

// Literal is an inlined scalar constant.
type Literal struct{ Value value.Value }

func (*Literal) isExpr() {}
func NewLiteral(v value.Value) *Literal { return &Literal{Value: v} }

// ColumnRef names a stored column to read from the current table.
type ColumnRef struct{ Column string }

func (*ColumnRef) isExpr() {}
func NewColumnRef(col string) *ColumnRef { return &ColumnRef{Column: col} }

// Null is the three-valued-logic NULL constant (not the same as a literal
// null value.Value — Null here always means "this expression position is
// statically unknown", e.g. a reference to an undeclared property).
type Null struct{}

func (*Null) isExpr()    {}
func NewNull() *Null     { return &Null{} }

// Bool is a statically-known boolean constant (TRUE/FALSE), distinct from
// Null and from a boolean Literal so TryEvaluate can fold it without
// inspecting a value.Value payload.
type Bool struct{ Value bool }

func (*Bool) isExpr()             {}
func NewBool(v bool) *Bool        { return &Bool{Value: v} }

// Not negates its operand.
type Not struct{ Operand Expr }

func (*Not) isExpr()          {}
func NewNot(e Expr) *Not      { return &Not{Operand: e} }

// LabelSet is `<TypeColumn> IN (i1, i2, …)` — a type-index membership
// constraint compiled from a Cypher label requirement.
type LabelSet struct {
	TypeColumn string
	Indices    []ident.TypeIndex
}

func (*LabelSet) isExpr() {}
func NewLabelSet(typeColumn string, indices []ident.TypeIndex) *LabelSet {
	return &LabelSet{TypeColumn: typeColumn, Indices: indices}
}

// Comparison compares two compiled operands.
type Comparison struct {
	Left  Expr
	Op    CompareOp
	Right Expr
}

func (*Comparison) isExpr() {}
func NewComparison(left Expr, op CompareOp, right Expr) *Comparison {
	return &Comparison{Left: left, Op: op, Right: right}
}

// InList is `left IN (literal list)`, bound as a single positional array
// parameter at emission time.
type InList struct {
	Left Expr
	List value.List
}

func (*InList) isExpr() {}
func NewInList(left Expr, list value.List) *InList {
	return &InList{Left: left, List: list}
}

// And is a boolean AND of two or more operands.
type And struct{ Operands []Expr }

func (*And) isExpr()           {}
func NewAnd(operands ...Expr) *And { return &And{Operands: operands} }

// Or is a boolean OR of two or more operands.
type Or struct{ Operands []Expr }

func (*Or) isExpr()          {}
func NewOr(operands ...Expr) *Or { return &Or{Operands: operands} }
