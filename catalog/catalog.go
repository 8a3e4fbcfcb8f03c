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
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/dolthub-cypher/cygraph/ident"
	"github.com/dolthub-cypher/cygraph/store"
	"github.com/dolthub-cypher/cygraph/value"
)

// NodesTable, RelationshipsTable and NamedTypesTable are the three system
// tables of spec.md §6.1; distinct from per-label property tables.
const (
	NodesTable        = "nodes"
	RelationshipsTable = "relationships"
	NamedTypesTable   = "namedTypes"
)

// Catalog is the authoritative source for which labels exist, which
// properties exist per label, and their types and defaults. Mutation
// (AddType) happens only on the driver thread, per spec.md §5; reads may
// happen concurrently with other reads but never with a concurrent
// AddType.
type Catalog struct {
	mu       sync.Mutex
	store    store.Store
	nodes    *ident.IndexedLabels
	rels     *ident.IndexedLabels
	schemas  map[ident.Label]*LabelSchema
	log      logrus.FieldLogger
}

// Open creates the system tables if they do not yet exist and loads any
// previously registered labels from namedTypes, rebuilding IndexedLabels
// and each label's property schema by introspecting its backing table —
// the "Catalog round-trip" invariant of spec.md §8.1.
func Open(ctx context.Context, st store.Store, log logrus.FieldLogger) (*Catalog, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	span, ctx := opentracing.StartSpanFromContext(ctx, "catalog.Open")
	defer span.Finish()

	c := &Catalog{
		store:   st,
		nodes:   ident.NewIndexedLabels(),
		rels:    ident.NewIndexedLabels(),
		schemas: make(map[ident.Label]*LabelSchema),
		log:     log,
	}
	if err := c.createSystemTables(ctx); err != nil {
		return nil, err
	}
	if err := c.loadExisting(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) createSystemTables(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s ("SYS__ID" BIGINT PRIMARY KEY, "NodeType" INTEGER NOT NULL)`, quote(NodesTable)),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s ("NodeType")`, quote(NodesTable+"_type_idx"), quote(NodesTable)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s ("SYS__ID" BIGINT PRIMARY KEY, "RelationshipType" INTEGER NOT NULL, "OriginID" BIGINT NOT NULL, "DestinationID" BIGINT NOT NULL)`, quote(RelationshipsTable)),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s ("RelationshipType")`, quote(RelationshipsTable+"_type_idx"), quote(RelationshipsTable)),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s ("OriginID")`, quote(RelationshipsTable+"_origin_idx"), quote(RelationshipsTable)),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s ("DestinationID")`, quote(RelationshipsTable+"_dest_idx"), quote(RelationshipsTable)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s ("TypeIdx" INTEGER PRIMARY KEY, "Kind" CHAR(1) NOT NULL, "NamedType" TEXT NOT NULL)`, quote(NamedTypesTable)),
	}
	for _, s := range stmts {
		if err := c.store.Exec(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

type namedTypeRow struct {
	idx   ident.TypeIndex
	kind  ident.ElementKind
	label ident.Label
}

func (c *Catalog) loadExisting(ctx context.Context) error {
	var rows []namedTypeRow
	q := fmt.Sprintf(`SELECT "TypeIdx", "Kind", "NamedType" FROM %s ORDER BY "TypeIdx" ASC`, quote(NamedTypesTable))
	err := c.store.Query(ctx, q, func(r store.Row) (bool, error) {
		idx, kindCh, label, err := decodeNamedTypeRow(r)
		if err != nil {
			return false, err
		}
		rows = append(rows, namedTypeRow{idx: idx, kind: kindCh, label: label})
		return true, nil
	})
	if err != nil {
		return err
	}
	for _, row := range rows {
		il := c.indexedLabelsFor(row.kind)
		il.Add(row.label)
		schema, err := c.introspectLabelSchema(ctx, row.label, row.kind, row.idx)
		if err != nil {
			return err
		}
		c.schemas[row.label] = schema
	}
	return nil
}

func decodeNamedTypeRow(r store.Row) (ident.TypeIndex, ident.ElementKind, ident.Label, error) {
	if len(r) != 3 {
		return 0, 0, "", ErrSchemaViolation.New("malformed namedTypes row")
	}
	idxVal, err := value.FromAny(value.Int64, r[0])
	if err != nil {
		return 0, 0, "", err
	}
	i, _ := idxVal.Int64()
	kindStr, _ := value.FromAny(value.String, r[1])
	ks, _ := kindStr.String()
	labelStr, _ := value.FromAny(value.String, r[2])
	ls, _ := labelStr.String()
	kind := ident.Node
	if ks == "R" {
		kind = ident.Relationship
	}
	return ident.TypeIndex(i), kind, ident.Label(ls), nil
}

func (c *Catalog) indexedLabelsFor(kind ident.ElementKind) *ident.IndexedLabels {
	if kind == ident.Node {
		return c.nodes
	}
	return c.rels
}

// AddType registers a new label with the given property schemas, creating
// its backing property table and persisting the label-to-index mapping.
// Adding a label that already exists is a schema violation.
func (c *Catalog) AddType(ctx context.Context, label ident.Label, kind ident.ElementKind, props []PropertySchema) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "catalog.AddType")
	span.SetTag("label", string(label))
	defer span.Finish()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.schemas[label]; exists {
		return ErrSchemaViolation.New("label already exists: " + string(label))
	}
	if err := validateProperties(props); err != nil {
		return err
	}

	il := c.indexedLabelsFor(kind)
	idx, _ := il.Add(label)

	if err := c.createPropertyTable(ctx, label, props); err != nil {
		return err
	}
	insertSQL := fmt.Sprintf(`INSERT INTO %s ("TypeIdx", "Kind", "NamedType") VALUES ($1, $2, $3)`, quote(NamedTypesTable))
	if err := c.store.Exec(ctx, insertSQL, int64(idx), string(rune(kind.DBChar())), string(label)); err != nil {
		return err
	}

	c.schemas[label] = &LabelSchema{Label: label, Kind: kind, Index: idx, Properties: append([]PropertySchema(nil), props...)}
	c.log.WithFields(logrus.Fields{"label": label, "kind": kind, "index": idx}).Info("catalog: registered label")
	return nil
}

func (c *Catalog) createPropertyTable(ctx context.Context, label ident.Label, props []PropertySchema) error {
	var cols []string
	cols = append(cols, `"SYS__ID" BIGINT PRIMARY KEY`)
	for _, p := range props {
		col := quote(string(p.Key)) + " " + sqlType(p.Type)
		if !p.Nullable {
			col += " NOT NULL"
		}
		if p.HasDefault {
			lit, err := defaultLiteral(p)
			if err != nil {
				return err
			}
			col += " DEFAULT " + lit
		}
		cols = append(cols, col)
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", quote(string(label)), strings.Join(cols, ", "))
	return c.store.Exec(ctx, ddl)
}

func sqlType(k value.Kind) string {
	switch k {
	case value.Int64:
		return "BIGINT"
	case value.Float64:
		return "DOUBLE PRECISION"
	case value.String:
		return "TEXT"
	case value.Bytes:
		return "BYTEA"
	default:
		return "TEXT"
	}
}

func defaultLiteral(p PropertySchema) (string, error) {
	switch p.Type {
	case value.Int64:
		i, ok := p.Default.Int64()
		if !ok {
			return "", ErrSchemaViolation.New("default value kind mismatch for " + string(p.Key))
		}
		return fmt.Sprintf("%d", i), nil
	case value.Float64:
		f, ok := p.Default.Float64()
		if !ok {
			return "", ErrSchemaViolation.New("default value kind mismatch for " + string(p.Key))
		}
		return fmt.Sprintf("%v", f), nil
	case value.String:
		s, ok := p.Default.String()
		if !ok {
			return "", ErrSchemaViolation.New("default value kind mismatch for " + string(p.Key))
		}
		return "'" + strings.ReplaceAll(s, "'", "''") + "'", nil
	case value.Bytes:
		b, ok := p.Default.Bytes()
		if !ok {
			return "", ErrSchemaViolation.New("default value kind mismatch for " + string(p.Key))
		}
		return fmt.Sprintf("'\\x%x'", b), nil
	default:
		return "", ErrSchemaViolation.New("unsupported default for " + string(p.Key))
	}
}

// introspectLabelSchema rebuilds a LabelSchema by reading the backing
// table's own column definitions back out of Postgres's information
// schema, rather than keeping a second, divertible copy of the schema.
func (c *Catalog) introspectLabelSchema(ctx context.Context, label ident.Label, kind ident.ElementKind, idx ident.TypeIndex) (*LabelSchema, error) {
	q := `SELECT column_name, data_type, is_nullable, column_default
	      FROM information_schema.columns
	      WHERE table_name = $1 AND column_name <> 'SYS__ID'
	      ORDER BY ordinal_position ASC`
	var props []PropertySchema
	err := c.store.Query(ctx, q, func(r store.Row) (bool, error) {
		p, err := decodeColumnRow(r)
		if err != nil {
			return false, err
		}
		props = append(props, p)
		return true, nil
	}, string(label))
	if err != nil {
		return nil, err
	}
	return &LabelSchema{Label: label, Kind: kind, Index: idx, Properties: props}, nil
}

func decodeColumnRow(r store.Row) (PropertySchema, error) {
	if len(r) != 4 {
		return PropertySchema{}, ErrSchemaViolation.New("malformed information_schema row")
	}
	nameVal, _ := value.FromAny(value.String, r[0])
	name, _ := nameVal.String()
	typeVal, _ := value.FromAny(value.String, r[1])
	typ, _ := typeVal.String()
	nullableVal, _ := value.FromAny(value.String, r[2])
	nullable, _ := nullableVal.String()

	kind, err := kindFromPGType(typ)
	if err != nil {
		return PropertySchema{}, err
	}
	p := PropertySchema{
		Key:      ident.PropertyKeyName(name),
		Type:     kind,
		Nullable: nullable == "YES",
	}
	if r[3] != nil {
		p.HasDefault = true
		lit := fmt.Sprint(r[3])
		if i := strings.LastIndex(lit, "'::"); i > 0 && lit[0] == '\'' {
			lit = strings.ReplaceAll(lit[1:i], "''", "'")
		}
		var raw any = lit
		if kind == value.Bytes {
			if raw, err = hex.DecodeString(strings.TrimPrefix(lit, `\x`)); err != nil {
				return PropertySchema{}, err
			}
		}
		if p.Default, err = value.FromAny(kind, raw); err != nil {
			return PropertySchema{}, err
		}
	}
	return p, nil
}

func kindFromPGType(pgType string) (value.Kind, error) {
	switch pgType {
	case "bigint", "integer", "smallint":
		return value.Int64, nil
	case "double precision", "real", "numeric":
		return value.Float64, nil
	case "text", "character varying", "character":
		return value.String, nil
	case "bytea":
		return value.Bytes, nil
	default:
		return 0, ErrSchemaViolation.New("unmapped column type " + pgType)
	}
}

// LabelSchemaFor returns the registered schema for label.
func (c *Catalog) LabelSchemaFor(label ident.Label) (*LabelSchema, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.schemas[label]
	return s, ok
}

// IndexedLabelsFor exposes the bijection for one element kind, used by the
// planner to resolve labels to type indices.
func (c *Catalog) IndexedLabelsFor(kind ident.ElementKind) *ident.IndexedLabels {
	return c.indexedLabelsFor(kind)
}

// LabelsOfKind returns every registered label of the given kind, sorted
// for deterministic query planning (spec.md §4.E.1 step 3: "enumerate all
// labels of the element kind").
func (c *Catalog) LabelsOfKind(kind ident.ElementKind) []ident.Label {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []ident.Label
	for label, s := range c.schemas {
		if s.Kind == kind {
			out = append(out, label)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IDProperty returns the system ID property descriptor, spec.md §6.2's
// idProperty() accessor.
func (c *Catalog) IDProperty() PropertySchema {
	return IDPropertySchema()
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
