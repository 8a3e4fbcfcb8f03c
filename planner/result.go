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

import "github.com/dolthub-cypher/cygraph/value"

// SegmentRef is one entry of the result-order vector of spec.md §3.8: the
// projection position at this index is found at Segment's Offset'th
// column. Segments group projection items by the pattern variable they
// read from — one segment per distinct projected variable, in first-seen
// order.
type SegmentRef struct {
	Segment int
	Offset  int
}

// ResultHandler receives a query's results. OnOrderAndColumnNames is
// always called before any OnRow, even when the query produces zero
// rows (spec.md §6.3).
type ResultHandler interface {
	OnQueryStart(text string) error
	OnOrderAndColumnNames(order []SegmentRef, variables []string, columnNames [][]string) error
	OnRow(segments [][]value.Value) error
	OnQueryEnd() error
}

// CollectingHandler is a ResultHandler that buffers everything it sees,
// for callers that want the whole result set rather than a streaming
// callback.
type CollectingHandler struct {
	QueryText   string
	Order       []SegmentRef
	Variables   []string
	ColumnNames [][]string
	Rows        [][][]value.Value
}

func (h *CollectingHandler) OnQueryStart(text string) error {
	h.QueryText = text
	return nil
}

func (h *CollectingHandler) OnOrderAndColumnNames(order []SegmentRef, variables []string, columnNames [][]string) error {
	h.Order = order
	h.Variables = variables
	h.ColumnNames = columnNames
	return nil
}

func (h *CollectingHandler) OnRow(segments [][]value.Value) error {
	h.Rows = append(h.Rows, segments)
	return nil
}

func (h *CollectingHandler) OnQueryEnd() error { return nil }
