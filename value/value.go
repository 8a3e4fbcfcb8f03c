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

// Package value implements the tagged scalar value used throughout the
// planner and catalog: null, int64, float64, string and bytes, plus the
// homogeneous typed lists used for bulk parameter binding (IN-lists).
package value

import (
	"bytes"
	"fmt"

	"github.com/spf13/cast"
)

// Kind tags the variant a Value holds.
type Kind int

const (
	Null Kind = iota
	Int64
	Float64
	String
	Bytes
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	case String:
		return "string"
	case Bytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// variantRank gives the stable ordering used when comparing values of
// different variants: null < float < int < string < bytes.
func (k Kind) variantRank() int {
	switch k {
	case Null:
		return 0
	case Float64:
		return 1
	case Int64:
		return 2
	case String:
		return 3
	case Bytes:
		return 4
	default:
		return 5
	}
}

// Value is a tagged scalar. The zero Value is Null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    []byte
}

// NullValue returns the null value.
func NullValue() Value { return Value{kind: Null} }

// Int64Value wraps an int64.
func Int64Value(v int64) Value { return Value{kind: Int64, i: v} }

// Float64Value wraps a float64.
func Float64Value(v float64) Value { return Value{kind: Float64, f: v} }

// StringValue wraps a UTF-8 string.
func StringValue(v string) Value { return Value{kind: String, s: v} }

// BytesValue wraps a byte slice; the slice is not copied.
func BytesValue(v []byte) Value { return Value{kind: Bytes, b: v} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == Null }

func (v Value) Int64() (int64, bool) {
	if v.kind != Int64 {
		return 0, false
	}
	return v.i, true
}

func (v Value) Float64() (float64, bool) {
	if v.kind != Float64 {
		return 0, false
	}
	return v.f, true
}

func (v Value) String() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.s, true
}

func (v Value) Bytes() ([]byte, bool) {
	if v.kind != Bytes {
		return nil, false
	}
	return v.b, true
}

// Native unwraps v to the plain Go value a database driver expects as a
// positional argument: nil for Null, and the underlying int64/float64/
// string/[]byte otherwise.
func (v Value) Native() any {
	switch v.kind {
	case Int64:
		return v.i
	case Float64:
		return v.f
	case String:
		return v.s
	case Bytes:
		return v.b
	default:
		return nil
	}
}

// Equal is structural equality: same variant and same payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Int64:
		return v.i == other.i
	case Float64:
		return v.f == other.f
	case String:
		return v.s == other.s
	case Bytes:
		return bytes.Equal(v.b, other.b)
	default:
		return false
	}
}

// Compare returns -1, 0 or 1. Values of different variants are ordered by
// Kind.variantRank; within a variant, natural ordering applies. Two null
// values compare equal.
func (v Value) Compare(other Value) int {
	if v.kind != other.kind {
		return intCompare(v.kind.variantRank(), other.kind.variantRank())
	}
	switch v.kind {
	case Null:
		return 0
	case Int64:
		return intCompare(v.i, other.i)
	case Float64:
		return float64Compare(v.f, other.f)
	case String:
		return stringCompare(v.s, other.s)
	case Bytes:
		return bytes.Compare(v.b, other.b)
	default:
		return 0
	}
}

func intCompare[T int | int64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func float64Compare(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func stringCompare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// GoString renders the value for diagnostics.
func (v Value) GoString() string {
	switch v.kind {
	case Null:
		return "null"
	case Int64:
		return fmt.Sprintf("int64(%d)", v.i)
	case Float64:
		return fmt.Sprintf("float64(%v)", v.f)
	case String:
		return fmt.Sprintf("string(%q)", v.s)
	case Bytes:
		return fmt.Sprintf("bytes(%x)", v.b)
	default:
		return "invalid"
	}
}

// FromDriverValue infers a Value's Kind directly from the dynamic Go type
// a database driver returned a column as, for callers (the planner's row
// assembly) that address a column whose declared Kind may differ between
// the UNION-ALL legs it was read from.
func FromDriverValue(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return NullValue(), nil
	case int64:
		return Int64Value(t), nil
	case int32:
		return Int64Value(int64(t)), nil
	case int:
		return Int64Value(int64(t)), nil
	case float64:
		return Float64Value(t), nil
	case float32:
		return Float64Value(float64(t)), nil
	case string:
		return StringValue(t), nil
	case []byte:
		return BytesValue(t), nil
	default:
		return Value{}, fmt.Errorf("value: unsupported driver value type %T", v)
	}
}

// FromAny coerces a driver-returned or schema-default value of Go's
// dynamic `any` shape into a Value matching the declared scalar Kind.
// Numeric widening (e.g. a driver returning int32 for an Int64 column) is
// handled via spf13/cast rather than a second hand-written type switch.
func FromAny(want Kind, v any) (Value, error) {
	if v == nil {
		return NullValue(), nil
	}
	switch want {
	case Int64:
		i, err := cast.ToInt64E(v)
		if err != nil {
			return Value{}, fmt.Errorf("value: coerce %T to int64: %w", v, err)
		}
		return Int64Value(i), nil
	case Float64:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return Value{}, fmt.Errorf("value: coerce %T to float64: %w", v, err)
		}
		return Float64Value(f), nil
	case String:
		s, err := cast.ToStringE(v)
		if err != nil {
			return Value{}, fmt.Errorf("value: coerce %T to string: %w", v, err)
		}
		return StringValue(s), nil
	case Bytes:
		switch b := v.(type) {
		case []byte:
			return BytesValue(b), nil
		case string:
			return BytesValue([]byte(b)), nil
		default:
			return Value{}, fmt.Errorf("value: coerce %T to bytes: unsupported", v)
		}
	default:
		return Value{}, fmt.Errorf("value: unknown target kind %v", want)
	}
}
