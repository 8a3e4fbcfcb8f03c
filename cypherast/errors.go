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

// Package cypherast is the Cypher expression and pattern tree produced by
// the (external) grammar-driven parser: variables, properties, labels,
// literals, and the pattern/Match/Return shapes of a single-part query.
package cypherast

import errors "gopkg.in/src-d/go-errors.v1"

// ErrUnsupported is raised for grammatically valid but intentionally
// unimplemented constructs: XOR, malformed NonArithmeticOperatorExpression
// shapes, and anything else spec.md §1 lists as a Non-goal.
var ErrUnsupported = errors.NewKind("unsupported: %s")

// ErrInvalidExpression is raised when a NonArithmeticOperatorExpression's
// atom/property/labels combination does not match one of the three valid
// shapes spec.md §3.5 allows.
var ErrInvalidExpression = errors.NewKind("invalid expression: %s")
