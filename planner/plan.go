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

package planner

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/dolthub-cypher/cygraph/catalog"
	"github.com/dolthub-cypher/cygraph/config"
	"github.com/dolthub-cypher/cygraph/cypherast"
	"github.com/dolthub-cypher/cygraph/stmtcache"
	"github.com/dolthub-cypher/cygraph/store"
)

// Env bundles the collaborators a plan needs: the catalog, the prepared
// statement cache, the store itself, and the planner's configured limits.
// It is owned by one driver, per spec.md §5.
type Env struct {
	Catalog *catalog.Catalog
	Cache   *stmtcache.Cache
	Store   store.Store
	Limits  config.Planner
	Log     logrus.FieldLogger
}

func (e *Env) logger() logrus.FieldLogger {
	if e.Log != nil {
		return e.Log
	}
	return logrus.StandardLogger()
}

// Plan dispatches a single-part query to the scalar-pattern planner
// (spec.md §4.E.1) or the path-pattern planner (§4.E.2), depending on
// whether the pattern binds any relationship. queryText is the original
// Cypher source, forwarded verbatim to ResultHandler.OnQueryStart.
func Plan(ctx context.Context, env *Env, queryText string, q *cypherast.SinglePartQuery, handler ResultHandler) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "planner.Plan")
	defer span.Finish()

	if q.Match == nil {
		return ErrUnsupported.New("RETURN without MATCH has no variable scope")
	}

	projection, err := buildProjectionPlan(q.Return.Items)
	if err != nil {
		return err
	}

	if err := handler.OnQueryStart(queryText); err != nil {
		return err
	}
	if err := handler.OnOrderAndColumnNames(projection.Order, projection.variableNames(), projection.ColumnNames); err != nil {
		return err
	}

	limit := env.Limits.DefaultLimit
	if q.Return.Limit != nil {
		limit = int(*q.Return.Limit)
	}

	if q.Match.Pattern.IsScalar() {
		err = planScalar(ctx, env, q, projection, limit, handler)
	} else {
		err = planPath(ctx, env, q, projection, limit, handler)
	}
	if err != nil {
		return err
	}
	return handler.OnQueryEnd()
}
