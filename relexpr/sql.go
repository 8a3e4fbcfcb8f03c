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
	"fmt"
	"strconv"
	"strings"

	"github.com/dolthub-cypher/cygraph/value"
)

// Bindings accumulates the positional parameters EmitSQL produces while
// pretty-printing an expression tree. Every scalar literal is bound as its
// own positional parameter (none is inlined into the SQL text);
// homogeneous typed lists are bound as a single array parameter
// referenced by a synthetic placeholder, matching the store's
// "integer array binding" contract (spec.md §1).
type Bindings struct {
	Params     []value.Value
	ListParams []value.List
	next       int
	order      []bool // true if the Nth placeholder bound a list, false for a scalar
}

// NewBindings returns an empty binding table, numbering placeholders from
// startAt (Postgres-style $1, $2, … positional placeholders begin at 1).
func NewBindings(startAt int) *Bindings {
	return &Bindings{next: startAt}
}

func (b *Bindings) bindScalar(v value.Value) string {
	b.Params = append(b.Params, v)
	b.order = append(b.order, false)
	ph := fmt.Sprintf("$%d", b.next)
	b.next++
	return ph
}

func (b *Bindings) bindList(l value.List) string {
	b.ListParams = append(b.ListParams, l)
	b.order = append(b.order, true)
	ph := fmt.Sprintf("$%d", b.next)
	b.next++
	return ph
}

// Args zips Params and ListParams back into placeholder order, converting
// each scalar to its driver-native Go value and each list through
// bindList (a store's native array-binding contract, e.g.
// store.Store.BindList).
func (b *Bindings) Args(bindList func(value.List) any) []any {
	args := make([]any, 0, len(b.order))
	pi, li := 0, 0
	for _, isList := range b.order {
		if isList {
			args = append(args, bindList(b.ListParams[li]))
			li++
		} else {
			args = append(args, b.Params[pi].Native())
			pi++
		}
	}
	return args
}

// EmitSQL pretty-prints e into standard infix SQL text, wrapping every
// comparison, negation and boolean chain in its own parentheses, per
// spec.md §4.C.2.
func EmitSQL(e Expr, b *Bindings) (string, error) {
	switch n := e.(type) {
	case *Literal:
		return b.bindScalar(n.Value), nil
	case *ColumnRef:
		return quoteIdent(n.Column), nil
	case *Null:
		return "NULL", nil
	case *Bool:
		if n.Value {
			return "TRUE", nil
		}
		return "FALSE", nil
	case *Not:
		inner, err := EmitSQL(n.Operand, b)
		if err != nil {
			return "", err
		}
		return "(NOT " + inner + ")", nil
	case *LabelSet:
		return emitLabelSet(n), nil
	case *Comparison:
		return emitComparison(n, b)
	case *InList:
		return emitInList(n, b)
	case *And:
		return emitBoolChain(n.Operands, "AND", b)
	case *Or:
		return emitBoolChain(n.Operands, "OR", b)
	default:
		return "", ErrInvariant.New("unknown relational expression variant in EmitSQL")
	}
}

// quoteIdent quotes a column reference. A name containing a "." is
// treated as already alias-qualified (e.g. "n0.SYS__ID") and each part is
// quoted independently, so compiled expressions can address a specific
// table alias in a multi-join planner query without the planner having to
// pre-escape anything itself.
func quoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

func emitLabelSet(n *LabelSet) string {
	if len(n.Indices) == 0 {
		return "FALSE"
	}
	parts := make([]string, len(n.Indices))
	for i, idx := range n.Indices {
		parts[i] = strconv.FormatInt(int64(idx), 10)
	}
	return quoteIdent(n.TypeColumn) + " IN (" + strings.Join(parts, ", ") + ")"
}

func emitComparison(n *Comparison, b *Bindings) (string, error) {
	left, err := EmitSQL(n.Left, b)
	if err != nil {
		return "", err
	}
	right, err := EmitSQL(n.Right, b)
	if err != nil {
		return "", err
	}
	return "(" + left + " " + n.Op.String() + " " + right + ")", nil
}

func emitInList(n *InList, b *Bindings) (string, error) {
	left, err := EmitSQL(n.Left, b)
	if err != nil {
		return "", err
	}
	if n.List.Empty() {
		return "FALSE", nil
	}
	ph := b.bindList(n.List)
	return "(" + left + " = ANY(" + ph + "))", nil
}

func emitBoolChain(operands []Expr, op string, b *Bindings) (string, error) {
	if len(operands) == 0 {
		return "", ErrInvariant.New("boolean aggregate with no operands")
	}
	parts := make([]string, len(operands))
	for i, o := range operands {
		s, err := EmitSQL(o, b)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")", nil
}
