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

package ident

// ElementKind distinguishes the two kinds of labeled elements in the graph
// model. Type indices are assigned independently per kind (a Node label and
// a Relationship label may share the same compact index).
type ElementKind int

const (
	// Node labels name table rows addressed from the node index table.
	Node ElementKind = iota
	// Relationship labels name table rows addressed from the relationship
	// index table.
	Relationship
)

// DBChar is the single-character encoding stored in the namedTypes.Kind
// column (spec §6.1): 'E' for node (entity), 'R' for relationship.
func (k ElementKind) DBChar() byte {
	if k == Node {
		return 'E'
	}
	return 'R'
}

func (k ElementKind) String() string {
	if k == Node {
		return "Node"
	}
	return "Relationship"
}

// TypeIndex is the compact non-negative integer a label is mapped to
// within one ElementKind's namespace.
type TypeIndex int32
