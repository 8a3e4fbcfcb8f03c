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

// Package relexpr is the relational expression tree the planner compiles
// Cypher filters into: literals, column references, label-set
// constraints, comparisons, IN-lists and AND/OR aggregates, plus the two
// operations that matter once compiled — three-valued constant folding
// (TryEvaluate) and SQL text emission (EmitSQL).
package relexpr

import errors "gopkg.in/src-d/go-errors.v1"

// ErrInvariant signals a planner-internal contradiction: an expression
// shape the planner itself should never construct. It must never fire in
// practice; seeing it means a programming error upstream, not bad input.
var ErrInvariant = errors.NewKind("planner invariant violated: %s")
