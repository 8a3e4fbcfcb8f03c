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

package cypherast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub-cypher/cygraph/value"
)

func TestMaximalAndDecompositionFlattensContiguousAnd(t *testing.T) {
	require := require.New(t)

	leaf1 := &Comparison{Left: *propertyRead("a", "age"), Op: GT, Right: *literal(value.Int64Value(10))}
	leaf2 := &Comparison{Left: *propertyRead("b", "age"), Op: LT, Right: *literal(value.Int64Value(20))}
	agg, err := NewAggregate(And, leaf1, leaf2)
	require.NoError(err)

	grouping, err := MaximalAndDecomposition(agg)
	require.NoError(err)
	require.Len(grouping.Leaves(), 2)
}

func TestMaximalAndDecompositionKeepsOrAtomic(t *testing.T) {
	require := require.New(t)

	leaf1 := &Comparison{Left: *propertyRead("a", "age"), Op: GT, Right: *literal(value.Int64Value(10))}
	leaf2 := &Comparison{Left: *propertyRead("a", "age"), Op: LT, Right: *literal(value.Int64Value(20))}
	orAgg, err := NewAggregate(Or, leaf1, leaf2)
	require.NoError(err)

	grouping, err := MaximalAndDecomposition(orAgg)
	require.NoError(err)
	// The OR node is itself the sole leaf; it is never flattened.
	require.Len(grouping.Leaves(), 1)
}

func TestMaximalAndDecompositionRejectsXor(t *testing.T) {
	require := require.New(t)

	leaf1 := &Comparison{Left: *propertyRead("a", "age"), Op: GT, Right: *literal(value.Int64Value(10))}
	leaf2 := &Comparison{Left: *propertyRead("a", "age"), Op: LT, Right: *literal(value.Int64Value(20))}
	xorAgg, err := NewAggregate(Xor, leaf1, leaf2)
	require.NoError(err)

	_, err = MaximalAndDecomposition(xorAgg)
	require.Error(err)
	require.True(ErrUnsupported.Is(err))
}

func TestForSingleVariableAndNonEquiVar(t *testing.T) {
	require := require.New(t)

	equi := &Comparison{Left: *propertyRead("a", "age"), Op: GT, Right: *literal(value.Int64Value(10))}
	crossVar := &Comparison{Left: *propertyRead("a", "since"), Op: EQ, Right: *propertyRead("b", "since")}
	agg, err := NewAggregate(And, equi, crossVar)
	require.NoError(err)

	grouping, err := MaximalAndDecomposition(agg)
	require.NoError(err)

	require.Len(grouping.ForSingleVariable("a"), 1)
	require.Len(grouping.NonEquiVar(), 1)
}
