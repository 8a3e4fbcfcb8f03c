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

package driver

import (
	"context"
	"fmt"
	"strings"
	"sync"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/dolthub-cypher/cygraph/catalog"
	"github.com/dolthub-cypher/cygraph/config"
	"github.com/dolthub-cypher/cygraph/cypherast"
	"github.com/dolthub-cypher/cygraph/ident"
	"github.com/dolthub-cypher/cygraph/planner"
	"github.com/dolthub-cypher/cygraph/stmtcache"
	"github.com/dolthub-cypher/cygraph/store"
	pgxstore "github.com/dolthub-cypher/cygraph/store/pgx"
	"github.com/dolthub-cypher/cygraph/value"
)

// ResultHandler and CollectingHandler are the result-handler contract of
// spec.md §6.3, re-exported so callers of Run never need to import
// planner directly.
type ResultHandler = planner.ResultHandler
type CollectingHandler = planner.CollectingHandler

// Parser is the external collaborator that turns Cypher source text (plus
// its bound parameters) into the parsed tree planner.Plan consumes.
// Spec.md §1 treats the grammar-driven parser producing this tree as a
// black box outside this module's scope; Driver takes one as a
// constructor dependency the same way it takes a store.Store.
type Parser interface {
	Parse(cypherText string, params map[string]value.Value) (*cypherast.SinglePartQuery, error)
}

// Driver is the single owner of one open store: its catalog, its
// prepared-statement cache and its element id allocators. Spec.md §5
// confines all mutation (AddType, AddNode, AddRelationship) to one
// goroutine at a time; Driver's mutex guards the id allocators against
// accidental concurrent use rather than serializing an otherwise
// parallel read workload.
type Driver struct {
	mu     sync.Mutex
	cfg    config.Config
	store  store.Store
	cat    *catalog.Catalog
	cache  *stmtcache.Cache
	parser Parser
	log    logrus.FieldLogger
	hooks  Hooks

	nextNodeID int64
	nextRelID  int64
}

// Open dials cfg.DSN with the pgx adapter, applies cfg.Overwrite, and
// loads (or creates) the catalog — spec.md §6.2's open(path,
// overwrite-policy).
func Open(ctx context.Context, cfg config.Config, parser Parser, log logrus.FieldLogger) (*Driver, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	st, err := pgxstore.Open(ctx, cfg.DSN, log)
	if err != nil {
		return nil, err
	}
	return OpenWithStore(ctx, cfg, st, parser, log)
}

// OpenWithStore wires a pre-constructed store.Store — a live pgx-backed
// adapter or a pgxmock test double — bypassing DSN dialing.
func OpenWithStore(ctx context.Context, cfg config.Config, st store.Store, parser Parser, log logrus.FieldLogger) (*Driver, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	span, ctx := opentracing.StartSpanFromContext(ctx, "driver.Open")
	defer span.Finish()

	if cfg.Overwrite == config.OverwritePolicyOverwrite {
		if err := dropKnownTables(ctx, st); err != nil {
			return nil, err
		}
	}

	cat, err := catalog.Open(ctx, st, log)
	if err != nil {
		return nil, err
	}

	d := &Driver{
		cfg:    cfg,
		store:  st,
		cat:    cat,
		cache:  stmtcache.New(st),
		parser: parser,
		log:    log,
	}
	if err := d.seedIDAllocators(ctx); err != nil {
		return nil, err
	}
	log.WithField("overwrite", cfg.Overwrite).Info("driver: opened")
	return d, nil
}

// Close releases the underlying store's resources.
func (d *Driver) Close() error {
	return d.store.Close()
}

// IDProperty returns the system id property descriptor, spec.md §6.2's
// idProperty() accessor.
func (d *Driver) IDProperty() catalog.PropertySchema {
	return d.cat.IDProperty()
}

// AddType registers a new label, spec.md §6.2's addType(label, kind,
// property_schemas).
func (d *Driver) AddType(ctx context.Context, label ident.Label, kind ident.ElementKind, props []catalog.PropertySchema) error {
	return d.cat.AddType(ctx, label, kind, props)
}

// Tx is the transaction bracket named by spec.md §6.2's
// beginTransaction()/endTransaction(): a thin pass-through to the store's
// own Tx so statement preparation and row scans issued while one is open
// still route through the same store connection.
type Tx struct {
	tx store.Tx
}

// BeginTransaction opens a transaction bracket.
func (d *Driver) BeginTransaction(ctx context.Context) (*Tx, error) {
	tx, err := d.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

// Commit ends the bracket, persisting its statements.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback ends the bracket, discarding its statements.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// AddNode inserts a new node of label, spec.md §6.2's addNode(label,
// property_values) -> id. Omitted properties fall back to the label's
// schema defaults, or null when nullable; any other property absent from
// the schema is a schema violation.
func (d *Driver) AddNode(ctx context.Context, label ident.Label, propValues map[ident.PropertyKeyName]value.Value) (int64, error) {
	schema, ok := d.cat.LabelSchemaFor(label)
	if !ok {
		return 0, catalog.ErrSchemaViolation.New("unknown label: " + string(label))
	}
	if schema.Kind != ident.Node {
		return 0, catalog.ErrSchemaViolation.New("label is not a node label: " + string(label))
	}
	values, err := resolvePropertyValues(*schema, propValues)
	if err != nil {
		return 0, err
	}

	id := d.allocate(&d.nextNodeID)
	if err := d.insertElement(ctx, label, *schema, id, values); err != nil {
		return 0, err
	}

	desc := stmtcache.Descriptor{Label: catalog.NodesTable, Shape: stmtcache.ShapeAddIndexRow}
	sql := fmt.Sprintf(`INSERT INTO %s ("SYS__ID", "NodeType") VALUES ($1, $2)`, quoteIdent(catalog.NodesTable))
	stmt, err := d.cache.GetOrPrepare(ctx, desc, sql)
	if err != nil {
		return 0, err
	}
	if err := d.instrumentExec(sql, func() error { return stmt.Exec(ctx, id, int64(schema.Index)) }); err != nil {
		return 0, err
	}
	return id, nil
}

// AddRelationship inserts a new relationship of label between origin and
// destination, spec.md §6.2's addRelationship(label, origin, destination,
// property_values, verify_endpoints_flag) -> id. When verifyEndpoints is
// set, both endpoints must already exist in the node index or the insert
// is rejected as a referential violation.
func (d *Driver) AddRelationship(ctx context.Context, label ident.Label, origin, destination int64, propValues map[ident.PropertyKeyName]value.Value, verifyEndpoints bool) (int64, error) {
	schema, ok := d.cat.LabelSchemaFor(label)
	if !ok {
		return 0, catalog.ErrSchemaViolation.New("unknown label: " + string(label))
	}
	if schema.Kind != ident.Relationship {
		return 0, catalog.ErrSchemaViolation.New("label is not a relationship label: " + string(label))
	}
	if verifyEndpoints {
		if err := d.verifyEndpoint(ctx, origin); err != nil {
			return 0, err
		}
		if err := d.verifyEndpoint(ctx, destination); err != nil {
			return 0, err
		}
	}
	values, err := resolvePropertyValues(*schema, propValues)
	if err != nil {
		return 0, err
	}

	id := d.allocate(&d.nextRelID)
	if err := d.insertElement(ctx, label, *schema, id, values); err != nil {
		return 0, err
	}

	desc := stmtcache.Descriptor{Label: catalog.RelationshipsTable, Shape: stmtcache.ShapeAddIndexRow}
	sql := fmt.Sprintf(`INSERT INTO %s ("SYS__ID", "RelationshipType", "OriginID", "DestinationID") VALUES ($1, $2, $3, $4)`, quoteIdent(catalog.RelationshipsTable))
	stmt, err := d.cache.GetOrPrepare(ctx, desc, sql)
	if err != nil {
		return 0, err
	}
	if err := d.instrumentExec(sql, func() error { return stmt.Exec(ctx, id, int64(schema.Index), origin, destination) }); err != nil {
		return 0, err
	}
	return id, nil
}

func (d *Driver) allocate(counter *int64) int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := *counter
	*counter++
	return id
}

func (d *Driver) verifyEndpoint(ctx context.Context, id int64) error {
	found := false
	q := fmt.Sprintf(`SELECT 1 FROM %s WHERE "SYS__ID" = $1`, quoteIdent(catalog.NodesTable))
	err := d.instrumentExec(q, func() error {
		return d.store.Query(ctx, q, func(r store.Row) (bool, error) {
			found = true
			return false, nil
		}, id)
	})
	if err != nil {
		return err
	}
	if !found {
		return catalog.ErrMissingEndpoint.New(fmt.Sprintf("node %d does not exist", id))
	}
	return nil
}

func (d *Driver) insertElement(ctx context.Context, label ident.Label, schema catalog.LabelSchema, id int64, values map[ident.PropertyKeyName]value.Value) error {
	keys := schema.PropertyKeys()
	propNames := make([]string, len(keys))
	for i, k := range keys {
		propNames[i] = string(k)
	}
	desc := stmtcache.Descriptor{Label: string(label), Properties: propNames, Shape: stmtcache.ShapeAddElement}

	cols := []string{quoteIdent(string(ident.IDProperty))}
	phs := []string{"$1"}
	args := []any{id}
	for i, k := range keys {
		cols = append(cols, quoteIdent(string(k)))
		phs = append(phs, fmt.Sprintf("$%d", i+2))
		args = append(args, values[k].Native())
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(string(label)), strings.Join(cols, ", "), strings.Join(phs, ", "))
	stmt, err := d.cache.GetOrPrepare(ctx, desc, sql)
	if err != nil {
		return err
	}
	return d.instrumentExec(sql, func() error { return stmt.Exec(ctx, args...) })
}

// resolvePropertyValues checks given against schema, filling in defaults
// or null for properties the caller omitted and rejecting unknown keys,
// null-for-non-nullable, and type-mismatched values.
func resolvePropertyValues(schema catalog.LabelSchema, given map[ident.PropertyKeyName]value.Value) (map[ident.PropertyKeyName]value.Value, error) {
	for k := range given {
		if _, ok := schema.PropertyByKey(k); !ok {
			return nil, catalog.ErrSchemaViolation.New("unknown property: " + string(k))
		}
	}
	out := make(map[ident.PropertyKeyName]value.Value, len(schema.Properties))
	for _, p := range schema.Properties {
		v, provided := given[p.Key]
		switch {
		case provided && v.IsNull():
			if !p.Nullable {
				return nil, catalog.ErrSchemaViolation.New("property is not nullable: " + string(p.Key))
			}
			out[p.Key] = v
		case provided:
			if v.Kind() != p.Type {
				return nil, catalog.ErrSchemaViolation.New("type mismatch for property: " + string(p.Key))
			}
			out[p.Key] = v
		case p.HasDefault:
			out[p.Key] = p.Default
		case p.Nullable:
			out[p.Key] = value.NullValue()
		default:
			return nil, catalog.ErrSchemaViolation.New("missing required property: " + string(p.Key))
		}
	}
	return out, nil
}

// Run parses cypherText against params through the configured Parser and
// plans the result, streaming rows through handler — spec.md §6.2's
// run(cypher_text, parameter_map, result_handler).
func (d *Driver) Run(ctx context.Context, cypherText string, params map[string]value.Value, handler ResultHandler) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "driver.Run")
	defer span.Finish()

	q, err := d.parser.Parse(cypherText, params)
	if err != nil {
		return ErrParse.New(err.Error())
	}
	env := &planner.Env{Catalog: d.cat, Cache: d.cache, Store: d.store, Limits: d.cfg.Planner, Log: d.log}
	return planner.Plan(ctx, env, cypherText, q, handler)
}

func (d *Driver) seedIDAllocators(ctx context.Context) error {
	var n, r int64
	sqlN := fmt.Sprintf(`SELECT COALESCE(MAX("SYS__ID"), 0) FROM %s`, quoteIdent(catalog.NodesTable))
	if err := d.instrumentExec(sqlN, func() (err error) {
		n, err = maxID(ctx, d.store, catalog.NodesTable)
		return err
	}); err != nil {
		return err
	}
	sqlR := fmt.Sprintf(`SELECT COALESCE(MAX("SYS__ID"), 0) FROM %s`, quoteIdent(catalog.RelationshipsTable))
	if err := d.instrumentExec(sqlR, func() (err error) {
		r, err = maxID(ctx, d.store, catalog.RelationshipsTable)
		return err
	}); err != nil {
		return err
	}
	d.nextNodeID = n + 1
	d.nextRelID = r + 1
	return nil
}

func maxID(ctx context.Context, st store.Store, table string) (int64, error) {
	var max int64
	q := fmt.Sprintf(`SELECT COALESCE(MAX("SYS__ID"), 0) FROM %s`, quoteIdent(table))
	err := st.Query(ctx, q, func(r store.Row) (bool, error) {
		v, err := value.FromAny(value.Int64, r[0])
		if err != nil {
			return false, err
		}
		i, _ := v.Int64()
		max = i
		return false, nil
	})
	return max, err
}

// dropKnownTables implements config.OverwritePolicyOverwrite: every
// previously registered label's property table, then the three system
// tables, so catalog.Open starts from a clean slate.
func dropKnownTables(ctx context.Context, st store.Store) error {
	exists, err := tableExists(ctx, st, catalog.NamedTypesTable)
	if err != nil {
		return err
	}
	var labels []string
	if exists {
		q := fmt.Sprintf(`SELECT "NamedType" FROM %s`, quoteIdent(catalog.NamedTypesTable))
		err := st.Query(ctx, q, func(r store.Row) (bool, error) {
			v, err := value.FromAny(value.String, r[0])
			if err != nil {
				return false, err
			}
			s, _ := v.String()
			labels = append(labels, s)
			return true, nil
		})
		if err != nil {
			return err
		}
	}
	for _, l := range labels {
		if err := st.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, quoteIdent(l))); err != nil {
			return err
		}
	}
	for _, t := range []string{catalog.NamedTypesTable, catalog.RelationshipsTable, catalog.NodesTable} {
		if err := st.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, quoteIdent(t))); err != nil {
			return err
		}
	}
	return nil
}

func tableExists(ctx context.Context, st store.Store, name string) (bool, error) {
	found := false
	q := `SELECT 1 FROM information_schema.tables WHERE table_name = $1`
	err := st.Query(ctx, q, func(r store.Row) (bool, error) {
		found = true
		return false, nil
	}, name)
	return found, err
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
