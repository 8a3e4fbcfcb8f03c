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

// Package catalog is the schema catalog: the indexed mapping between
// node/relationship label names and compact type indices, and each
// label's property schema (name, scalar type, nullability, default).
package catalog

import errors "gopkg.in/src-d/go-errors.v1"

// ErrSchemaViolation covers: adding a label that already exists, adding an
// element of an unknown label, a property absent from the label's schema,
// or a value whose type disagrees with the schema.
var ErrSchemaViolation = errors.NewKind("schema violation: %s")

// ErrMissingEndpoint covers a relationship insert whose origin or
// destination node does not exist, when endpoint verification is
// requested.
var ErrMissingEndpoint = errors.NewKind("referential violation: %s")
