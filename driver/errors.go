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

// Package driver is the top-level entry point of spec.md §6.2: it wires
// together the catalog, the prepared statement cache and a relational
// store into the open/close/addType/addNode/addRelationship/run surface
// the rest of the system is driven through.
package driver

import errors "gopkg.in/src-d/go-errors.v1"

// ErrParse wraps a failure from the external Cypher parser (spec.md §1
// treats the grammar itself as out of scope; this is the boundary its
// failures cross into this module).
var ErrParse = errors.NewKind("parse error: %s")
