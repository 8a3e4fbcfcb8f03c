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

package value

import "fmt"

// List is a homogeneous, non-nullable typed list: empty, or one of
// list<int64>, list<float64>, list<string>, list<bytes>. It is the shape
// bound as a single positional array parameter for IN-list predicates and
// for batched ID lookups.
type List struct {
	kind    Kind
	ints    []int64
	floats  []float64
	strs    []string
	byteses [][]byte
}

// NewEmptyList returns a list with no declared variant yet; its variant is
// fixed by the first Append call.
func NewEmptyList() List { return List{kind: Null} }

func IntList(vs ...int64) List     { return List{kind: Int64, ints: vs} }
func FloatList(vs ...float64) List { return List{kind: Float64, floats: vs} }
func StringList(vs ...string) List { return List{kind: String, strs: vs} }
func BytesList(vs ...[]byte) List  { return List{kind: Bytes, byteses: vs} }

func (l List) Kind() Kind { return l.kind }
func (l List) Empty() bool {
	return l.Len() == 0
}

func (l List) Len() int {
	switch l.kind {
	case Int64:
		return len(l.ints)
	case Float64:
		return len(l.floats)
	case String:
		return len(l.strs)
	case Bytes:
		return len(l.byteses)
	default:
		return 0
	}
}

func (l List) Ints() ([]int64, bool)      { return l.ints, l.kind == Int64 }
func (l List) Floats() ([]float64, bool)  { return l.floats, l.kind == Float64 }
func (l List) Strings() ([]string, bool)  { return l.strs, l.kind == String }
func (l List) ByteSlices() ([][]byte, bool) {
	return l.byteses, l.kind == Bytes
}

// At returns the i-th element as a Value.
func (l List) At(i int) Value {
	switch l.kind {
	case Int64:
		return Int64Value(l.ints[i])
	case Float64:
		return Float64Value(l.floats[i])
	case String:
		return StringValue(l.strs[i])
	case Bytes:
		return BytesValue(l.byteses[i])
	default:
		panic("value: At called on an untyped list")
	}
}

// Append appends v to L, fixing L's variant from v if L was still empty and
// untyped. It fails if v is null, or if v's variant disagrees with a
// non-empty L's established variant.
func Append(v Value, l List) (List, error) {
	if v.IsNull() {
		return l, fmt.Errorf("value: cannot append null to a non-nullable list")
	}
	if l.kind == Null {
		l.kind = v.kind
	} else if l.kind != v.kind {
		return l, fmt.Errorf("value: cannot append %s to a list<%s>", v.kind, l.kind)
	}
	switch v.kind {
	case Int64:
		l.ints = append(l.ints, v.i)
	case Float64:
		l.floats = append(l.floats, v.f)
	case String:
		l.strs = append(l.strs, v.s)
	case Bytes:
		l.byteses = append(l.byteses, v.b)
	}
	return l, nil
}
