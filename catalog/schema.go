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

package catalog

import (
	"github.com/dolthub-cypher/cygraph/ident"
	"github.com/dolthub-cypher/cygraph/value"
)

// PropertySchema describes one property: its key, scalar type, whether it
// may be null, and an optional default value.
type PropertySchema struct {
	Key        ident.PropertyKeyName
	Type       value.Kind
	Nullable   bool
	HasDefault bool
	Default    value.Value
}

// IDPropertySchema is the system ID property present on every label:
// int64, non-nullable, no default.
func IDPropertySchema() PropertySchema {
	return PropertySchema{Key: ident.IDProperty, Type: value.Int64, Nullable: false}
}

// LabelSchema is one registered label's full description.
type LabelSchema struct {
	Label      ident.Label
	Kind       ident.ElementKind
	Index      ident.TypeIndex
	Properties []PropertySchema
}

// PropertyByKey returns the schema for the named property, if declared.
func (s LabelSchema) PropertyByKey(key ident.PropertyKeyName) (PropertySchema, bool) {
	if key == ident.IDProperty {
		return IDPropertySchema(), true
	}
	for _, p := range s.Properties {
		if p.Key == key {
			return p, true
		}
	}
	return PropertySchema{}, false
}

// PropertyKeys returns just the keys, in declaration order, excluding the
// implicit system ID property.
func (s LabelSchema) PropertyKeys() []ident.PropertyKeyName {
	out := make([]ident.PropertyKeyName, len(s.Properties))
	for i, p := range s.Properties {
		out[i] = p.Key
	}
	return out
}

// validateProperties rejects a schema that repeats a property key, or
// that reuses the reserved ID property key.
func validateProperties(props []PropertySchema) error {
	seen := make(map[ident.PropertyKeyName]struct{}, len(props))
	for _, p := range props {
		if p.Key == ident.IDProperty {
			return ErrSchemaViolation.New("property key " + string(ident.IDProperty) + " is reserved")
		}
		if _, ok := seen[p.Key]; ok {
			return ErrSchemaViolation.New("duplicate property key " + string(p.Key))
		}
		seen[p.Key] = struct{}{}
	}
	return nil
}
