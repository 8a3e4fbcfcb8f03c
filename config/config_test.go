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

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFillsDefaultsForAbsentFields(t *testing.T) {
	require := require.New(t)

	c, err := Parse([]byte(`dsn: postgres://localhost/graph`))
	require.NoError(err)
	require.Equal("postgres://localhost/graph", c.DSN)
	require.Equal(OverwritePolicyKeep, c.Overwrite)
	require.Equal(256, c.Planner.MaxInListSize)
}

func TestParseOverridesDefaults(t *testing.T) {
	require := require.New(t)

	c, err := Parse([]byte(`
dsn: postgres://localhost/graph
overwrite: overwrite
planner:
  defaultLimit: 100
  maxInListSize: 10
`))
	require.NoError(err)
	require.Equal(OverwritePolicyOverwrite, c.Overwrite)
	require.Equal(100, c.Planner.DefaultLimit)
	require.Equal(10, c.Planner.MaxInListSize)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	require := require.New(t)

	_, err := Parse([]byte("not: [valid"))
	require.Error(err)
}
