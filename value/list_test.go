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

func TestAppendFixesVariant(t *testing.T) {
	require := require.New(t)

	l := NewEmptyList()
	require.True(l.Empty())

	l, err := Append(Int64Value(1), l)
	require.NoError(err)
	require.Equal(Int64, l.Kind())

	l, err = Append(Int64Value(2), l)
	require.NoError(err)
	ints, ok := l.Ints()
	require.True(ok)
	require.Equal([]int64{1, 2}, ints)
}

func TestAppendRejectsMismatchedVariant(t *testing.T) {
	require := require.New(t)

	l := IntList(1, 2)
	_, err := Append(StringValue("x"), l)
	require.Error(err)
}

func TestAppendRejectsNull(t *testing.T) {
	require := require.New(t)

	_, err := Append(NullValue(), NewEmptyList())
	require.Error(err)
}
