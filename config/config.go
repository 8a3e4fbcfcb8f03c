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

// Package config unmarshals the YAML document that parameterizes a
// driver.Open call: the store DSN, the overwrite policy, and the
// planner's default limit and max IN-list size.
package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// OverwritePolicy governs what driver.Open does when the path it is given
// already holds a store (spec.md §6.2's open(path, overwrite-policy)).
type OverwritePolicy string

const (
	// OverwritePolicyKeep opens the existing store as-is, reloading its
	// catalog (the "Catalog round-trip" invariant of spec.md §8.1).
	OverwritePolicyKeep OverwritePolicy = "keep"
	// OverwritePolicyOverwrite drops every known table before recreating
	// the system tables, discarding any existing catalog and data.
	OverwritePolicyOverwrite OverwritePolicy = "overwrite"
)

// Planner holds the limits the planner applies when the query itself
// does not name one.
type Planner struct {
	// DefaultLimit bounds E.1/E.2 plans lacking an explicit LIMIT. Zero
	// means unbounded.
	DefaultLimit int `yaml:"defaultLimit"`
	// MaxInListSize is parsed and defaulted here, but no other package
	// reads it: ToSQLTree binds an IN-list whole, whatever its length.
	MaxInListSize int `yaml:"maxInListSize"`
}

// Config is the full document a driver.Open call consumes.
type Config struct {
	DSN       string          `yaml:"dsn"`
	Overwrite OverwritePolicy `yaml:"overwrite"`
	Planner   Planner         `yaml:"planner"`
}

// Default returns the configuration driver.Open falls back to when no
// config is supplied: keep existing data, no default limit, and a
// conservative IN-list cap.
func Default() Config {
	return Config{
		Overwrite: OverwritePolicyKeep,
		Planner: Planner{
			DefaultLimit:  0,
			MaxInListSize: 256,
		},
	}
}

// Load reads and parses a YAML config file, filling unset fields from
// Default().
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}

// Parse unmarshals a YAML document into a Config, filling unset fields
// from Default().
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
