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
	"github.com/dolthub-cypher/cygraph/cypherast"
	"github.com/dolthub-cypher/cygraph/ident"
)

// projectionRead is one RETURN item resolved to the variable and property
// it reads; id(v) is represented with Property == ident.IDProperty, the
// same encoding the AST itself uses (spec.md §3.1).
type projectionRead struct {
	Variable ident.Variable
	Property ident.PropertyKeyName
}

// projectionPlan is the result-order vector of spec.md §3.8, generalized
// to any number of distinct projected variables: one segment per
// distinct variable, in first-seen order.
type projectionPlan struct {
	Reads       []projectionRead
	Segments    []ident.Variable
	SegmentOf   map[ident.Variable]int
	Order       []SegmentRef
	ColumnNames [][]string
}

// buildProjectionPlan resolves RETURN items into a projectionPlan. A bare
// variable (no property, no labels) fails per spec.md §6.4: "RETURN of
// projection items of the form v (rejected - not implemented)".
func buildProjectionPlan(items []cypherast.ProjectionItem) (*projectionPlan, error) {
	p := &projectionPlan{SegmentOf: make(map[ident.Variable]int)}
	for _, item := range items {
		nae, ok := item.Expr.(*cypherast.NAE)
		if !ok {
			return nil, ErrUnsupported.New("projection item is not a property read")
		}
		shape, err := nae.Validate()
		if err != nil {
			return nil, err
		}
		if shape != cypherast.ShapePropertyRead {
			return nil, ErrUnsupported.New("projection item must be v.prop or id(v)")
		}
		v, _ := nae.Atom.Variable()
		prop := *nae.Property

		segIdx, ok := p.SegmentOf[v]
		if !ok {
			segIdx = len(p.Segments)
			p.Segments = append(p.Segments, v)
			p.SegmentOf[v] = segIdx
			p.ColumnNames = append(p.ColumnNames, nil)
		}
		offset := len(p.ColumnNames[segIdx])
		p.ColumnNames[segIdx] = append(p.ColumnNames[segIdx], string(prop))
		p.Order = append(p.Order, SegmentRef{Segment: segIdx, Offset: offset})
		p.Reads = append(p.Reads, projectionRead{Variable: v, Property: prop})
	}
	return p, nil
}

// variableNames renders Segments as plain strings for ResultHandler.
func (p *projectionPlan) variableNames() []string {
	out := make([]string, len(p.Segments))
	for i, v := range p.Segments {
		out[i] = string(v)
	}
	return out
}
