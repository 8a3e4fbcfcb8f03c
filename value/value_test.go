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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueEqual(t *testing.T) {
	require := require.New(t)

	require.True(NullValue().Equal(NullValue()))
	require.True(Int64Value(5).Equal(Int64Value(5)))
	require.False(Int64Value(5).Equal(Int64Value(6)))
	require.False(Int64Value(5).Equal(Float64Value(5)))
	require.True(BytesValue([]byte("ab")).Equal(BytesValue([]byte("ab"))))
}

func TestValueCompareVariantRank(t *testing.T) {
	var testCases = []struct {
		name     string
		left     Value
		right    Value
		expected int
	}{
		{"null < float", NullValue(), Float64Value(1), -1},
		{"float < int", Float64Value(1), Int64Value(1), -1},
		{"int < string", Int64Value(1), StringValue("a"), -1},
		{"string < bytes", StringValue("a"), BytesValue([]byte("a")), -1},
		{"equal ints", Int64Value(3), Int64Value(3), 0},
		{"descending ints", Int64Value(4), Int64Value(3), 1},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.left.Compare(tt.right))
		})
	}
}

func TestFromAnyCoercion(t *testing.T) {
	require := require.New(t)

	v, err := FromAny(Int64, int32(7))
	require.NoError(err)
	i, ok := v.Int64()
	require.True(ok)
	require.EqualValues(7, i)

	v, err = FromAny(Float64, "3.5")
	require.NoError(err)
	f, ok := v.Float64()
	require.True(ok)
	require.InDelta(3.5, f, 0.0001)

	v, err = FromAny(String, nil)
	require.NoError(err)
	require.True(v.IsNull())
}
