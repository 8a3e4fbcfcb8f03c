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

package store

import errors "gopkg.in/src-d/go-errors.v1"

// ErrStore wraps a failure bubbled up from the relational store itself
// (prepare/bind/step failures), carrying the store's own message per
// spec.md §7's "Store error" kind.
var ErrStore = errors.NewKind("store error: %s")
