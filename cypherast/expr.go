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
	"fmt"

	"github.com/dolthub-cypher/cygraph/ident"
	"github.com/dolthub-cypher/cygraph/value"
)

// Expression is the Cypher expression tree. It is a closed set of variants
// (Aggregate, Comparison, StringListNullPredicate, NAE); the capability
// functions VarsUsagesOf, MaximalAndDecomposition and ToSQLTree each switch
// over the concrete type rather than dispatching through interface
// methods, so that adding a new operation never requires touching every
// variant's type.
type Expression interface {
	fmt.Stringer
	isExpression()
}

// AggOp is the boolean operator of an Aggregate node.
type AggOp int

const (
	And AggOp = iota
	Or
	Xor
)

func (op AggOp) String() string {
	switch op {
	case And:
		return "AND"
	case Or:
		return "OR"
	case Xor:
		return "XOR"
	default:
		return "?"
	}
}

// Aggregate is a boolean combination of two or more children. XOR is
// accepted by this constructor (the parser may legally produce one) but
// every compiling operation (ToSQLTree, MaximalAndDecomposition) rejects
// it with ErrUnsupported.
type Aggregate struct {
	Op       AggOp
	Children []Expression
}

func (*Aggregate) isExpression() {}

func (a *Aggregate) String() string {
	s := "(" + a.Children[0].String()
	for _, c := range a.Children[1:] {
		s += " " + a.Op.String() + " " + c.String()
	}
	return s + ")"
}

// NewAggregate builds an Aggregate, requiring at least two children per
// spec.md §3.5.
func NewAggregate(op AggOp, children ...Expression) (*Aggregate, error) {
	if len(children) < 2 {
		return nil, fmt.Errorf("cypherast: aggregate requires at least 2 children, got %d", len(children))
	}
	return &Aggregate{Op: op, Children: children}, nil
}

// CompareOp is a comparison operator.
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

// Comparison compares two NonArithmeticOperatorExpressions.
type Comparison struct {
	Left  NAE
	Op    CompareOp
	Right NAE
}

func (*Comparison) isExpression() {}

func (c *Comparison) String() string {
	return fmt.Sprintf("(%s %s %s)", c.Left.String(), c.Op, c.Right.String())
}

// StringListNullPredicate is `left.prop IN [literal, …]`. Despite the name
// (carried from the source grammar's production) the list is not
// restricted to strings; it is any homogeneous value.List.
type StringListNullPredicate struct {
	Left NAE
	List value.List
}

func (*StringListNullPredicate) isExpression() {}

func (p *StringListNullPredicate) String() string {
	return fmt.Sprintf("(%s IN <%d items>)", p.Left.String(), p.List.Len())
}

// AtomKind tags the three shapes a NAE's atom may take.
type AtomKind int

const (
	AtomVariable AtomKind = iota
	AtomLiteral
	AtomAggregate
)

// Atom is the leaf carried by a NonArithmeticOperatorExpression.
type Atom struct {
	kind      AtomKind
	variable  ident.Variable
	literal   value.Value
	aggregate *Aggregate
}

func VariableAtom(v ident.Variable) Atom { return Atom{kind: AtomVariable, variable: v} }
func LiteralAtom(v value.Value) Atom     { return Atom{kind: AtomLiteral, literal: v} }
func AggregateAtom(a *Aggregate) Atom    { return Atom{kind: AtomAggregate, aggregate: a} }

func (a Atom) Kind() AtomKind { return a.kind }

func (a Atom) Variable() (ident.Variable, bool) {
	return a.variable, a.kind == AtomVariable
}

func (a Atom) Literal() (value.Value, bool) {
	return a.literal, a.kind == AtomLiteral
}

func (a Atom) Aggregate() (*Aggregate, bool) {
	return a.aggregate, a.kind == AtomAggregate
}

func (a Atom) String() string {
	switch a.kind {
	case AtomVariable:
		return string(a.variable)
	case AtomLiteral:
		return a.literal.GoString()
	case AtomAggregate:
		return a.aggregate.String()
	default:
		return "?"
	}
}

// NAE is a NonArithmeticOperatorExpression: an atom, an optional property
// key and an optional label set. Exactly one of the three shapes in
// spec.md §3.5 is valid; Validate reports which, or fails.
type NAE struct {
	Atom     Atom
	Property *ident.PropertyKeyName
	Labels   ident.Labels
}

func (*NAE) isExpression() {}

func (n *NAE) String() string {
	s := n.Atom.String()
	if n.Property != nil {
		s += "." + string(*n.Property)
	}
	for _, l := range n.Labels.Slice() {
		s += ":" + string(l)
	}
	return s
}

// Shape classifies a validated NAE.
type Shape int

const (
	// ShapeLabelConstraint: variable alone with non-empty labels.
	ShapeLabelConstraint Shape = iota
	// ShapePropertyRead: variable + property.
	ShapePropertyRead
	// ShapeConstant: literal with no property.
	ShapeConstant
	// ShapeNestedAggregate: atom is itself a nested Aggregate; recurse.
	ShapeNestedAggregate
)

// Validate classifies n per spec.md §3.5's three valid shapes, or returns
// ErrInvalidExpression for any other atom/property/labels combination
// (e.g. a literal with labels, or a nested-aggregate atom carrying a
// property).
func (n *NAE) Validate() (Shape, error) {
	switch n.Atom.Kind() {
	case AtomVariable:
		switch {
		case n.Property == nil && !n.Labels.Empty():
			return ShapeLabelConstraint, nil
		case n.Property != nil && n.Labels.Empty():
			return ShapePropertyRead, nil
		default:
			return 0, ErrInvalidExpression.New(n.String())
		}
	case AtomLiteral:
		if n.Property == nil && n.Labels.Empty() {
			return ShapeConstant, nil
		}
		return 0, ErrInvalidExpression.New(n.String())
	case AtomAggregate:
		if n.Property == nil && n.Labels.Empty() {
			// A nested aggregate atom recurses through the aggregate's own
			// shape; it carries neither a property nor labels itself.
			return ShapeNestedAggregate, nil
		}
		return 0, ErrInvalidExpression.New(n.String())
	default:
		return 0, ErrInvalidExpression.New(n.String())
	}
}
