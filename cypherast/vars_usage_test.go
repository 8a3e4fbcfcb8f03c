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

	"github.com/dolthub-cypher/cygraph/ident"
	"github.com/dolthub-cypher/cygraph/value"
)

func propertyRead(v ident.Variable, prop ident.PropertyKeyName) *NAE {
	p := prop
	return &NAE{Atom: VariableAtom(v), Property: &p}
}

func literal(v value.Value) *NAE {
	return &NAE{Atom: LiteralAtom(v)}
}

func labelConstraint(v ident.Variable, labels ...ident.Label) *NAE {
	return &NAE{Atom: VariableAtom(v), Labels: ident.NewLabels(labels...)}
}

func TestVarsUsagesOfComparison(t *testing.T) {
	require := require.New(t)

	cmp := &Comparison{
		Left:  *propertyRead("a", "age"),
		Op:    GT,
		Right: *literal(value.Int64Value(10)),
	}
	vu := VarsUsagesOf(cmp)
	require.Len(vu, 1)
	usage := vu["a"]
	_, ok := usage.Properties["age"]
	require.True(ok)
	require.False(usage.UsedInLabelConstraint)
}

func TestVarsUsagesOfLabelConstraint(t *testing.T) {
	require := require.New(t)

	vu := VarsUsagesOf(labelConstraint("a", "Person"))
	require.True(vu["a"].UsedInLabelConstraint)
	require.Empty(vu["a"].Properties)
}

func TestVarsUsagesMergeAcrossAggregate(t *testing.T) {
	require := require.New(t)

	agg, err := NewAggregate(And,
		propertyRead("a", "age"),
		labelConstraint("a", "Person"),
	)
	require.NoError(err)

	vu := VarsUsagesOf(agg)
	require.Len(vu, 1)
	require.True(vu["a"].UsedInLabelConstraint)
	_, ok := vu["a"].Properties["age"]
	require.True(ok)
}
