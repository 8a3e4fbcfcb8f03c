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

// Package planner is the query planner and executor of spec.md §4.E: it
// turns a parsed single-part Cypher query into a sequence of relational
// queries against the catalog's system tables and per-label property
// tables, and streams assembled rows through a ResultHandler.
package planner

import errors "gopkg.in/src-d/go-errors.v1"

// ErrUnsupported covers every grammatically-recognized but intentionally
// unimplemented construct, and cross-variable predicates over non-ID
// properties (spec.md §4.E.4).
var ErrUnsupported = errors.NewKind("not supported: %s")
