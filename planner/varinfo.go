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

// VarQueryInfo is the concrete spec.md §3.7 record: per-property column
// mapping, an optional type-index column, an optional pattern-fixed label
// set, and the catalog bijection for the variable's element kind. It
// satisfies cypherast.VarInfo structurally, without cypherast importing
// this package.
type VarQueryInfo struct {
	columns     map[ident.PropertyKeyName]string
	typeColumn  string
	hasType     bool
	knownLabels ident.Labels
	hasLabels   bool
	catalog     *ident.IndexedLabels
}

// NewVarQueryInfo returns an info record with no column mapping yet;
// callers add columns via SetColumn.
func NewVarQueryInfo(catalog *ident.IndexedLabels) *VarQueryInfo {
	return &VarQueryInfo{columns: make(map[ident.PropertyKeyName]string), catalog: catalog}
}

func (vi *VarQueryInfo) SetColumn(prop ident.PropertyKeyName, column string) {
	vi.columns[prop] = column
}

func (vi *VarQueryInfo) SetTypeColumn(column string) {
	vi.typeColumn = column
	vi.hasType = true
}

func (vi *VarQueryInfo) SetKnownLabels(labels ident.Labels) {
	vi.knownLabels = labels
	vi.hasLabels = true
}

func (vi *VarQueryInfo) Column(prop ident.PropertyKeyName) (string, bool) {
	col, ok := vi.columns[prop]
	return col, ok
}

func (vi *VarQueryInfo) TypeColumn() (string, bool) {
	return vi.typeColumn, vi.hasType
}

func (vi *VarQueryInfo) KnownLabels() (ident.Labels, bool) {
	return vi.knownLabels, vi.hasLabels
}

func (vi *VarQueryInfo) Catalog() *ident.IndexedLabels {
	return vi.catalog
}

// VarInfoMap resolves variables to their VarQueryInfo, implementing
// cypherast.VarInfoLookup.
type VarInfoMap map[ident.Variable]*VarQueryInfo

func (m VarInfoMap) Lookup(v ident.Variable) (cypherast.VarInfo, bool) {
	info, ok := m[v]
	if !ok {
		return nil, false
	}
	return info, true
}
