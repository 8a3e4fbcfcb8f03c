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

// IndexedLabels is a bijection between Label and TypeIndex for one
// ElementKind. Indices are assigned in call order to Add and are never
// reused, even if the repository later supported dropping a label.
type IndexedLabels struct {
	byLabel []labelEntry
	index   map[Label]TypeIndex
}

type labelEntry struct {
	label Label
}

// NewIndexedLabels returns an empty bijection.
func NewIndexedLabels() *IndexedLabels {
	return &IndexedLabels{index: make(map[Label]TypeIndex)}
}

// Add returns the existing index for label if already registered, otherwise
// assigns and returns max_index+1 (0 for the first label). The second
// return value reports whether the label was newly created.
func (il *IndexedLabels) Add(label Label) (TypeIndex, bool) {
	if idx, ok := il.index[label]; ok {
		return idx, false
	}
	idx := TypeIndex(len(il.byLabel))
	il.byLabel = append(il.byLabel, labelEntry{label: label})
	il.index[label] = idx
	return idx, true
}

// Lookup returns the index registered for label, if any.
func (il *IndexedLabels) Lookup(label Label) (TypeIndex, bool) {
	idx, ok := il.index[label]
	return idx, ok
}

// LabelAt returns the label registered at idx, if any.
func (il *IndexedLabels) LabelAt(idx TypeIndex) (Label, bool) {
	if idx < 0 || int(idx) >= len(il.byLabel) {
		return "", false
	}
	return il.byLabel[idx].label, true
}

// Len returns the number of registered labels — also the exclusive upper
// bound of the contiguous [0, Len()) index range the compactness invariant
// guarantees.
func (il *IndexedLabels) Len() int {
	return len(il.byLabel)
}

// All returns every registered label in assignment order.
func (il *IndexedLabels) All() []Label {
	out := make([]Label, len(il.byLabel))
	for i, e := range il.byLabel {
		out[i] = e.label
	}
	return out
}
