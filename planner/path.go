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
	"fmt"
	"strings"

	"github.com/dolthub-cypher/cygraph/catalog"
	"github.com/dolthub-cypher/cygraph/cypherast"
	"github.com/dolthub-cypher/cygraph/ident"
	"github.com/dolthub-cypher/cygraph/relexpr"
	"github.com/dolthub-cypher/cygraph/store"
	"github.com/dolthub-cypher/cygraph/value"
)

// chainNode is one node position of a path pattern, n0..nk in chain order.
type chainNode struct {
	pattern  cypherast.NodePattern
	alias    string
	variable ident.Variable
	hasVar   bool
}

// chainRel is one relationship position, r1..rk, sitting between node i-1
// and node i (1-indexed to match its alias).
type chainRel struct {
	pattern cypherast.RelationshipPattern
	alias   string
	variable ident.Variable
	hasVar   bool
	left     int // index of the node to its left in chain order
	right    int // index of the node to its right in chain order
}

// buildChain lays out a pattern's nodes and relationships as addressable,
// aliased positions.
func buildChain(pattern cypherast.PatternElement) ([]chainNode, []chainRel) {
	nodes := pattern.Nodes()
	rels := pattern.Relationships()
	cn := make([]chainNode, len(nodes))
	for i, np := range nodes {
		cn[i] = chainNode{pattern: np, alias: fmt.Sprintf("n%d", i)}
		if np.Variable != nil {
			cn[i].variable, cn[i].hasVar = *np.Variable, true
		}
	}
	cr := make([]chainRel, len(rels))
	for i, rp := range rels {
		cr[i] = chainRel{pattern: rp, alias: fmt.Sprintf("r%d", i+1), left: i, right: i + 1}
		if rp.Variable != nil {
			cr[i].variable, cr[i].hasVar = *rp.Variable, true
		}
	}
	return cn, cr
}

// scanLeaf is a Where leaf resolved to the scan-time stage: bound to zero
// variables (a vacuous literal), one variable whose filter touches only
// the system ID property (or a label constraint), or two or more
// variables all of whose touched properties are the system ID property
// (spec.md §9's conservative cross-variable interpretation).
type scanLeaf struct {
	expr  cypherast.Expression
	nodes []int // node positions this leaf resolves against
	rels  []int // relationship positions this leaf resolves against
}

// postFilter is a Where leaf bound to exactly one variable that touches a
// non-ID property; it can only be evaluated once that position's property
// table is queried.
type postFilter struct {
	isNode bool
	pos    int
	expr   cypherast.Expression
}

// chainResolution is the result of resolving every Where leaf and every
// projection item against the chain's positions.
type chainResolution struct {
	scanLeaves  []scanLeaf
	postFilters []postFilter
}

func enumerateDirections(rels []chainRel) [][]cypherast.Direction {
	base := make([]cypherast.Direction, len(rels))
	var anyIdx []int
	for i, r := range rels {
		base[i] = r.pattern.Direction
		if r.pattern.Direction == cypherast.Any {
			anyIdx = append(anyIdx, i)
		}
	}
	combos := [][]cypherast.Direction{append([]cypherast.Direction(nil), base...)}
	for _, idx := range anyIdx {
		var next [][]cypherast.Direction
		for _, c := range combos {
			f := append([]cypherast.Direction(nil), c...)
			f[idx] = cypherast.Forward
			b := append([]cypherast.Direction(nil), c...)
			b[idx] = cypherast.Backward
			next = append(next, f, b)
		}
		combos = next
	}
	return combos
}

func chainOriginCol(dir cypherast.Direction) string {
	if dir == cypherast.Backward {
		return "DestinationID"
	}
	return "OriginID"
}

func chainDestCol(dir cypherast.Direction) string {
	if dir == cypherast.Backward {
		return "OriginID"
	}
	return "DestinationID"
}

// planPath implements spec.md §4.E.2: the relationship-index scan plus
// per-position property collection for a pattern binding at least one
// relationship, generalized to chains of k>=1 relationships.
func planPath(ctx context.Context, env *Env, q *cypherast.SinglePartQuery, projection *projectionPlan, limit int, handler ResultHandler) error {
	pattern := q.Match.Pattern
	nodes, rels := buildChain(pattern)

	nodeVarPos := make(map[ident.Variable][]int)
	for i, n := range nodes {
		if n.hasVar {
			nodeVarPos[n.variable] = append(nodeVarPos[n.variable], i)
		}
	}
	relVarPos := make(map[ident.Variable]int)
	for i, r := range rels {
		if !r.hasVar {
			continue
		}
		if _, dup := relVarPos[r.variable]; dup {
			return ErrUnsupported.New("relationship variable bound to more than one position: " + string(r.variable))
		}
		relVarPos[r.variable] = i
	}

	resolveVar := func(v ident.Variable) (nodeIdx int, isNode bool, relIdx int, isRel bool) {
		if positions, ok := nodeVarPos[v]; ok {
			return positions[0], true, 0, false
		}
		if pos, ok := relVarPos[v]; ok {
			return 0, false, pos, true
		}
		return 0, false, 0, false
	}

	for _, seg := range projection.Segments {
		if _, isNode, _, isRel := resolveVar(seg); !isNode && !isRel {
			return ErrUnsupported.New("reference to variable not bound by the pattern: " + string(seg))
		}
	}

	res, err := resolveChainFilters(q.Match.Where, resolveVar)
	if err != nil {
		return err
	}

	nodeLabelIdx, nodeDropped, nodeImpossible := resolveLabelFilters(env.Catalog, ident.Node, nodesLabels(nodes))
	if nodeImpossible {
		return nil
	}
	relLabelIdx, relDropped, relImpossible := resolveLabelFilters(env.Catalog, ident.Relationship, relsLabels(rels))
	if relImpossible {
		return nil
	}

	projByNode := make(map[int][]projectionRead)
	projByRel := make(map[int][]projectionRead)
	for _, r := range projection.Reads {
		if i, isNode, j, isRel := resolveVar(r.Variable); isNode {
			projByNode[i] = append(projByNode[i], r)
		} else if isRel {
			projByRel[j] = append(projByRel[j], r)
		}
	}

	postFiltersByNode := make(map[int][]cypherast.Expression)
	postFiltersByRel := make(map[int][]cypherast.Expression)
	for _, pf := range res.postFilters {
		if pf.isNode {
			postFiltersByNode[pf.pos] = append(postFiltersByNode[pf.pos], pf.expr)
		} else {
			postFiltersByRel[pf.pos] = append(postFiltersByRel[pf.pos], pf.expr)
		}
	}
	nodePostFilter := make(map[int]cypherast.Expression)
	for i, leaves := range postFiltersByNode {
		e, err := andAll(leaves)
		if err != nil {
			return err
		}
		nodePostFilter[i] = e
	}
	relPostFilter := make(map[int]cypherast.Expression)
	for i, leaves := range postFiltersByRel {
		e, err := andAll(leaves)
		if err != nil {
			return err
		}
		relPostFilter[i] = e
	}

	needsNodeTypeInfo := make([]bool, len(nodes))
	relevantNode := make([]bool, len(nodes))
	for i := range nodes {
		nonID := false
		for _, r := range projByNode[i] {
			if r.Property != ident.IDProperty {
				nonID = true
			}
		}
		_, hasPF := nodePostFilter[i]
		needsNodeTypeInfo[i] = nonID || hasPF
		relevantNode[i] = len(projByNode[i]) > 0 || hasPF
	}
	needsRelTypeInfo := make([]bool, len(rels))
	relevantRel := make([]bool, len(rels))
	for i := range rels {
		nonID := false
		for _, r := range projByRel[i] {
			if r.Property != ident.IDProperty {
				nonID = true
			}
		}
		_, hasPF := relPostFilter[i]
		needsRelTypeInfo[i] = nonID || hasPF
		relevantRel[i] = len(projByRel[i]) > 0 || hasPF
	}

	emitted := 0
	for _, dirs := range enumerateDirections(rels) {
		if limit > 0 && emitted >= limit {
			break
		}
		n, err := planPathCombo(ctx, env, pathComboInput{
			nodes: nodes, rels: rels, dirs: dirs,
			nodeLabelIdx: nodeLabelIdx, nodeDropped: nodeDropped,
			relLabelIdx: relLabelIdx, relDropped: relDropped,
			resolveVar:    resolveVar,
			nodeVarPos:    nodeVarPos,
			scanLeaves:    res.scanLeaves,
			projByNode:    projByNode, projByRel: projByRel,
			nodePostFilter: nodePostFilter, relPostFilter: relPostFilter,
			needsNodeTypeInfo: needsNodeTypeInfo, relevantNode: relevantNode,
			needsRelTypeInfo: needsRelTypeInfo, relevantRel: relevantRel,
			projection: projection,
			limit:      limit,
			emitted:    &emitted,
		}, handler)
		if err != nil {
			return err
		}
		_ = n
	}
	return nil
}

func nodesLabels(nodes []chainNode) []ident.Labels {
	out := make([]ident.Labels, len(nodes))
	for i, n := range nodes {
		out[i] = n.pattern.Labels
	}
	return out
}

func relsLabels(rels []chainRel) []ident.Labels {
	out := make([]ident.Labels, len(rels))
	for i, r := range rels {
		out[i] = r.pattern.Labels
	}
	return out
}

// resolveLabelFilters resolves each position's declared labels to type
// indices, per spec.md §4.E.2 step 3. impossible is true if any position
// names a label the catalog has never registered (the pattern can match
// nothing). dropped[i] is true when a position's declared labels equal
// the full registered set for that kind, the filter is then a no-op.
func resolveLabelFilters(cat *catalog.Catalog, kind ident.ElementKind, labelsPerPos []ident.Labels) (indices [][]ident.TypeIndex, dropped []bool, impossible bool) {
	il := cat.IndexedLabelsFor(kind)
	indices = make([][]ident.TypeIndex, len(labelsPerPos))
	dropped = make([]bool, len(labelsPerPos))
	for i, labels := range labelsPerPos {
		if labels.Empty() {
			continue
		}
		var idxs []ident.TypeIndex
		for _, l := range labels.Slice() {
			idx, ok := il.Lookup(l)
			if !ok {
				return nil, nil, true
			}
			idxs = append(idxs, idx)
		}
		if len(idxs) == il.Len() {
			dropped[i] = true
			continue
		}
		indices[i] = idxs
	}
	return indices, dropped, false
}

// resolveChainFilters partitions the Where clause per spec.md §4.E.2 step
// 2: a vacuous zero-variable leaf, a single-variable leaf touching only
// the ID property (or a label constraint), or a leaf touching two or more
// variables whose every referenced property is the ID property; anything
// else fails with "not supported".
func resolveChainFilters(where *cypherast.Where, resolveVar func(ident.Variable) (int, bool, int, bool)) (chainResolution, error) {
	var res chainResolution
	if where == nil {
		return res, nil
	}
	decomposed, err := cypherast.MaximalAndDecomposition(where.Expr)
	if err != nil {
		return res, err
	}
	for _, g := range decomposed.Entries() {
		vars := g.Usages.Vars()
		switch len(vars) {
		case 0:
			for _, e := range g.Exprs {
				res.scanLeaves = append(res.scanLeaves, scanLeaf{expr: e})
			}
		case 1:
			v := vars[0]
			u := g.Usages[v]
			nonID := false
			for p := range u.Properties {
				if p != ident.IDProperty {
					nonID = true
				}
			}
			nodeIdx, isNode, relIdx, isRel := resolveVar(v)
			if !isNode && !isRel {
				return res, ErrUnsupported.New("reference to variable not bound by the pattern: " + string(v))
			}
			if nonID {
				for _, e := range g.Exprs {
					res.postFilters = append(res.postFilters, postFilter{isNode: isNode, pos: pickPos(isNode, nodeIdx, relIdx), expr: e})
				}
				continue
			}
			for _, e := range g.Exprs {
				leaf := scanLeaf{expr: e}
				if isNode {
					leaf.nodes = []int{nodeIdx}
				} else {
					leaf.rels = []int{relIdx}
				}
				res.scanLeaves = append(res.scanLeaves, leaf)
			}
		default:
			allID := true
			for _, v := range vars {
				for p := range g.Usages[v].Properties {
					if p != ident.IDProperty {
						allID = false
					}
				}
			}
			if !allID {
				return res, ErrUnsupported.New("cross-variable non-ID predicate")
			}
			var nodePositions, relPositions []int
			for _, v := range vars {
				nodeIdx, isNode, relIdx, isRel := resolveVar(v)
				if !isNode && !isRel {
					return res, ErrUnsupported.New("reference to variable not bound by the pattern: " + string(v))
				}
				if isNode {
					nodePositions = append(nodePositions, nodeIdx)
				} else {
					relPositions = append(relPositions, relIdx)
				}
			}
			for _, e := range g.Exprs {
				res.scanLeaves = append(res.scanLeaves, scanLeaf{expr: e, nodes: nodePositions, rels: relPositions})
			}
		}
	}
	return res, nil
}

func pickPos(isNode bool, nodeIdx, relIdx int) int {
	if isNode {
		return nodeIdx
	}
	return relIdx
}

// pathComboInput bundles everything one concrete direction assignment's
// scan needs; it is built once per pattern and reused across combos.
type pathComboInput struct {
	nodes []chainNode
	rels  []chainRel
	dirs  []cypherast.Direction

	nodeLabelIdx [][]ident.TypeIndex
	nodeDropped  []bool
	relLabelIdx  [][]ident.TypeIndex
	relDropped   []bool

	resolveVar func(ident.Variable) (int, bool, int, bool)
	nodeVarPos map[ident.Variable][]int

	scanLeaves []scanLeaf

	projByNode map[int][]projectionRead
	projByRel  map[int][]projectionRead

	nodePostFilter map[int]cypherast.Expression
	relPostFilter  map[int]cypherast.Expression

	needsNodeTypeInfo []bool
	relevantNode      []bool
	needsRelTypeInfo  []bool
	relevantRel       []bool

	projection *projectionPlan
	limit      int
	emitted    *int
}

type scanColumn struct {
	isNode  bool
	pos     int
	isType  bool
}

// quoteAliasCol renders alias.col as a raw, pre-quoted SQL fragment (the
// alias is a planner-chosen bare identifier and never needs quoting; the
// column name is quoted since the catalog creates columns case-sensitively).
func quoteAliasCol(alias, col string) string {
	return alias + `."` + col + `"`
}

// planPathCombo runs steps 5-8 of spec.md §4.E.2 for one concrete
// Forward/Backward assignment of every Any-direction relationship.
//
// Every alias-qualified column used here exists in two forms: a "Raw" form
// (alias.\"Column\", pre-quoted) pasted directly into hand-built SQL text,
// and a "Plain" form (alias.Column, unquoted) handed to relexpr, which
// quotes each dot-separated part itself — feeding it an already-quoted
// string would double-quote it.
func planPathCombo(ctx context.Context, env *Env, in pathComboInput, handler ResultHandler) (int, error) {
	nodeIDPlain := make([]string, len(in.nodes))
	nodeIDRaw := make([]string, len(in.nodes))
	for i := range in.nodes {
		var alias, col string
		if i == 0 {
			alias, col = in.rels[0].alias, chainOriginCol(in.dirs[0])
		} else {
			alias, col = in.rels[i-1].alias, chainDestCol(in.dirs[i-1])
		}
		nodeIDPlain[i] = alias + "." + col
		nodeIDRaw[i] = quoteAliasCol(alias, col)
	}
	nodeTypePlain := make([]string, len(in.nodes))
	nodeTypeRaw := make([]string, len(in.nodes))
	for i := range in.nodes {
		alias := "n" + fmt.Sprint(i)
		nodeTypePlain[i] = alias + ".NodeType"
		nodeTypeRaw[i] = quoteAliasCol(alias, "NodeType")
	}
	relIDPlain := make([]string, len(in.rels))
	relIDRaw := make([]string, len(in.rels))
	relTypePlain := make([]string, len(in.rels))
	relTypeRaw := make([]string, len(in.rels))
	for i, r := range in.rels {
		relIDPlain[i] = r.alias + ".SYS__ID"
		relIDRaw[i] = quoteAliasCol(r.alias, "SYS__ID")
		relTypePlain[i] = r.alias + ".RelationshipType"
		relTypeRaw[i] = quoteAliasCol(r.alias, "RelationshipType")
	}

	var from []string
	for _, r := range in.rels {
		from = append(from, fmt.Sprintf(`"relationships" %s`, r.alias))
	}
	for i := range in.nodes {
		from = append(from, fmt.Sprintf(`"nodes" n%d`, i))
	}

	var where []string
	for i := range in.nodes {
		where = append(where, fmt.Sprintf(`%s = %s`, quoteAliasCol("n"+fmt.Sprint(i), "SYS__ID"), nodeIDRaw[i]))
	}
	for i := 1; i < len(in.rels); i++ {
		where = append(where, fmt.Sprintf(`%s = %s`, quoteAliasCol(in.rels[i-1].alias, chainDestCol(in.dirs[i-1])), quoteAliasCol(in.rels[i].alias, chainOriginCol(in.dirs[i]))))
	}
	for _, positions := range in.nodeVarPos {
		for i := 1; i < len(positions); i++ {
			where = append(where, fmt.Sprintf(`%s = %s`, nodeIDRaw[positions[0]], nodeIDRaw[positions[i]]))
		}
	}
	for i := 0; i < len(in.rels); i++ {
		for j := i + 1; j < len(in.rels); j++ {
			where = append(where, fmt.Sprintf(`%s <> %s`, relIDRaw[i], relIDRaw[j]))
		}
	}

	bindings := relexpr.NewBindings(1)
	for i, idxs := range in.nodeLabelIdx {
		if in.nodeDropped[i] || len(idxs) == 0 {
			continue
		}
		sql, err := relexpr.EmitSQL(relexpr.NewLabelSet(nodeTypePlain[i], idxs), bindings)
		if err != nil {
			return 0, err
		}
		where = append(where, sql)
	}
	for i, idxs := range in.relLabelIdx {
		if in.relDropped[i] || len(idxs) == 0 {
			continue
		}
		sql, err := relexpr.EmitSQL(relexpr.NewLabelSet(relTypePlain[i], idxs), bindings)
		if err != nil {
			return 0, err
		}
		where = append(where, sql)
	}

	vars := make(VarInfoMap)
	for v, positions := range in.nodeVarPos {
		i := positions[0]
		vi := NewVarQueryInfo(env.Catalog.IndexedLabelsFor(ident.Node))
		vi.SetColumn(ident.IDProperty, nodeIDPlain[i])
		vi.SetTypeColumn(nodeTypePlain[i])
		if !in.nodes[i].pattern.Labels.Empty() {
			vi.SetKnownLabels(in.nodes[i].pattern.Labels)
		}
		vars[v] = vi
	}
	for i, r := range in.rels {
		if !r.hasVar {
			continue
		}
		vi := NewVarQueryInfo(env.Catalog.IndexedLabelsFor(ident.Relationship))
		vi.SetColumn(ident.IDProperty, relIDPlain[i])
		vi.SetTypeColumn(relTypePlain[i])
		if !r.pattern.Labels.Empty() {
			vi.SetKnownLabels(r.pattern.Labels)
		}
		vars[r.variable] = vi
	}

	known := make(cypherast.KnownProperties)
	for v := range in.nodeVarPos {
		known[v] = map[ident.PropertyKeyName]struct{}{ident.IDProperty: {}}
	}
	for v := range vars {
		if _, ok := known[v]; !ok {
			known[v] = map[ident.PropertyKeyName]struct{}{ident.IDProperty: {}}
		}
	}

	for _, leaf := range in.scanLeaves {
		compiled, err := cypherast.ToSQLTree(leaf.expr, known, vars)
		if err != nil {
			return 0, err
		}
		if shouldSkipFilter(compiled) {
			return 0, nil
		}
		sql, err := emitFilterSQL(compiled, bindings)
		if err != nil {
			return 0, err
		}
		if sql != "" {
			where = append(where, sql)
		}
	}

	var selectCols []string
	var layout []scanColumn
	for i := range in.nodes {
		if !in.relevantNode[i] {
			continue
		}
		selectCols = append(selectCols, nodeIDRaw[i])
		layout = append(layout, scanColumn{isNode: true, pos: i})
		if in.needsNodeTypeInfo[i] {
			selectCols = append(selectCols, nodeTypeRaw[i])
			layout = append(layout, scanColumn{isNode: true, pos: i, isType: true})
		}
	}
	for i := range in.rels {
		if !in.relevantRel[i] {
			continue
		}
		selectCols = append(selectCols, relIDRaw[i])
		layout = append(layout, scanColumn{isNode: false, pos: i})
		if in.needsRelTypeInfo[i] {
			selectCols = append(selectCols, relTypeRaw[i])
			layout = append(layout, scanColumn{isNode: false, pos: i, isType: true})
		}
	}
	if len(selectCols) == 0 {
		return 0, nil
	}

	sql := fmt.Sprintf("SELECT %s FROM %s", strings.Join(selectCols, ", "), strings.Join(from, ", "))
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}

	type candidateRow struct {
		nodeID   map[int]int64
		nodeType map[int]ident.TypeIndex
		relID    map[int]int64
		relType  map[int]ident.TypeIndex
	}
	var candidates []candidateRow
	args := bindings.Args(env.Store.BindList)
	err := env.Store.Query(ctx, sql, func(row store.Row) (bool, error) {
		if len(row) != len(layout) {
			return false, ErrUnsupported.New("scan row width mismatch")
		}
		c := candidateRow{nodeID: map[int]int64{}, nodeType: map[int]ident.TypeIndex{}, relID: map[int]int64{}, relType: map[int]ident.TypeIndex{}}
		for i, col := range layout {
			v, err := value.FromDriverValue(row[i])
			if err != nil {
				return false, err
			}
			n, _ := v.Int64()
			if col.isNode {
				if col.isType {
					c.nodeType[col.pos] = ident.TypeIndex(n)
				} else {
					c.nodeID[col.pos] = n
				}
			} else {
				if col.isType {
					c.relType[col.pos] = ident.TypeIndex(n)
				} else {
					c.relID[col.pos] = n
				}
			}
		}
		candidates = append(candidates, c)
		return true, nil
	}, args...)
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	nodeValues := make(map[int]map[int64]map[ident.PropertyKeyName]value.Value)
	for i := range in.nodes {
		if !in.needsNodeTypeInfo[i] {
			continue
		}
		byType := make(map[ident.TypeIndex][]int64)
		for _, c := range candidates {
			if id, ok := c.nodeID[i]; ok {
				byType[c.nodeType[i]] = append(byType[c.nodeType[i]], id)
			}
		}
		vals, err := collectPositionProperties(ctx, env, ident.Node, byType, projectionVariable(in, true, i), propsOf(in.projByNode[i]), in.nodePostFilter[i])
		if err != nil {
			return 0, err
		}
		nodeValues[i] = vals
	}
	relValues := make(map[int]map[int64]map[ident.PropertyKeyName]value.Value)
	for i := range in.rels {
		if !in.needsRelTypeInfo[i] {
			continue
		}
		byType := make(map[ident.TypeIndex][]int64)
		for _, c := range candidates {
			if id, ok := c.relID[i]; ok {
				byType[c.relType[i]] = append(byType[c.relType[i]], id)
			}
		}
		vals, err := collectPositionProperties(ctx, env, ident.Relationship, byType, projectionVariable(in, false, i), propsOf(in.projByRel[i]), in.relPostFilter[i])
		if err != nil {
			return 0, err
		}
		relValues[i] = vals
	}

	count := 0
	for _, c := range candidates {
		if in.limit > 0 && *in.emitted >= in.limit {
			break
		}
		segs := make([][]value.Value, len(in.projection.Segments))
		for i, names := range in.projection.ColumnNames {
			segs[i] = make([]value.Value, len(names))
		}
		dropped := false
		for idx, r := range in.projection.Reads {
			ref := in.projection.Order[idx]
			nodeIdx, isNode, relIdx, isRel := in.resolveVar(r.Variable)
			var v value.Value
			switch {
			case isNode:
				if r.Property == ident.IDProperty {
					id, ok := c.nodeID[nodeIdx]
					if !ok {
						dropped = true
						break
					}
					v = value.Int64Value(id)
				} else {
					id, ok := c.nodeID[nodeIdx]
					if !ok {
						dropped = true
						break
					}
					props, ok := nodeValues[nodeIdx][id]
					if !ok {
						dropped = true
						break
					}
					v = props[r.Property]
				}
			case isRel:
				if r.Property == ident.IDProperty {
					id, ok := c.relID[relIdx]
					if !ok {
						dropped = true
						break
					}
					v = value.Int64Value(id)
				} else {
					id, ok := c.relID[relIdx]
					if !ok {
						dropped = true
						break
					}
					props, ok := relValues[relIdx][id]
					if !ok {
						dropped = true
						break
					}
					v = props[r.Property]
				}
			}
			if dropped {
				break
			}
			segs[ref.Segment][ref.Offset] = v
		}
		if dropped {
			continue
		}
		if err := handler.OnRow(segs); err != nil {
			return count, err
		}
		count++
		*in.emitted++
	}
	return count, nil
}

func projectionVariable(in pathComboInput, isNode bool, pos int) ident.Variable {
	if isNode {
		return in.nodes[pos].variable
	}
	return in.rels[pos].variable
}

func propsOf(reads []projectionRead) []ident.PropertyKeyName {
	seen := make(map[ident.PropertyKeyName]struct{})
	var out []ident.PropertyKeyName
	for _, r := range reads {
		if r.Property == ident.IDProperty {
			continue
		}
		if _, ok := seen[r.Property]; ok {
			continue
		}
		seen[r.Property] = struct{}{}
		out = append(out, r.Property)
	}
	return out
}

// collectPositionProperties implements spec.md §4.E.2 step 6: for one
// chain position, bucket candidate IDs by resolved type and either
// synthesize NULL-filled rows in memory (no properties exist to read and
// no post-filter to apply) or query the label's property table, unioning
// across every type bucket that position's candidates touched.
func collectPositionProperties(ctx context.Context, env *Env, kind ident.ElementKind, idsByType map[ident.TypeIndex][]int64, v ident.Variable, props []ident.PropertyKeyName, postFilter cypherast.Expression) (map[int64]map[ident.PropertyKeyName]value.Value, error) {
	result := make(map[int64]map[ident.PropertyKeyName]value.Value)
	bindings := relexpr.NewBindings(1)
	var legs []string
	for typeIdx, ids := range idsByType {
		if len(ids) == 0 {
			continue
		}
		label, ok := env.Catalog.IndexedLabelsFor(kind).LabelAt(typeIdx)
		if !ok {
			continue
		}
		schema, ok := env.Catalog.LabelSchemaFor(label)
		if !ok {
			continue
		}
		leg, synth, skip, err := buildBucketLeg(label, schema, ids, props, postFilter, v, bindings)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		if synth != nil {
			for id, vals := range synth {
				result[id] = vals
			}
			continue
		}
		legs = append(legs, leg)
	}
	if len(legs) == 0 {
		return result, nil
	}
	sql := strings.Join(legs, " UNION ALL ")
	args := bindings.Args(env.Store.BindList)
	err := env.Store.Query(ctx, sql, func(row store.Row) (bool, error) {
		if len(row) != len(props)+1 {
			return false, ErrUnsupported.New("property row width mismatch")
		}
		idVal, err := value.FromDriverValue(row[0])
		if err != nil {
			return false, err
		}
		id, _ := idVal.Int64()
		vals := make(map[ident.PropertyKeyName]value.Value, len(props))
		for i, p := range props {
			pv, err := value.FromDriverValue(row[i+1])
			if err != nil {
				return false, err
			}
			vals[p] = pv
		}
		result[id] = vals
		return true, nil
	}, args...)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func buildBucketLeg(label ident.Label, schema *catalog.LabelSchema, ids []int64, props []ident.PropertyKeyName, postFilterAST cypherast.Expression, v ident.Variable, b *relexpr.Bindings) (leg string, synthesized map[int64]map[ident.PropertyKeyName]value.Value, skip bool, err error) {
	known := propertyKeySet(schema)
	vars := VarInfoMap{v: scalarVarInfo(schema, label)}

	var compiledFilter relexpr.Expr
	if postFilterAST != nil {
		compiledFilter, err = cypherast.ToSQLTree(postFilterAST, cypherast.KnownProperties{v: known}, vars)
		if err != nil {
			return "", nil, false, err
		}
		if shouldSkipFilter(compiledFilter) {
			return "", nil, true, nil
		}
	}

	allMissing := true
	for _, p := range props {
		if _, ok := known[p]; ok {
			allMissing = false
		}
	}
	if allMissing && postFilterAST == nil {
		out := make(map[int64]map[ident.PropertyKeyName]value.Value, len(ids))
		for _, id := range ids {
			row := make(map[ident.PropertyKeyName]value.Value, len(props))
			for _, p := range props {
				row[p] = value.NullValue()
			}
			out[id] = row
		}
		return "", out, false, nil
	}

	exprs := make([]relexpr.Expr, 0, len(props)+1)
	exprs = append(exprs, relexpr.NewColumnRef(string(ident.IDProperty)))
	for _, p := range props {
		if _, ok := known[p]; ok {
			exprs = append(exprs, relexpr.NewColumnRef(string(p)))
		} else {
			exprs = append(exprs, relexpr.NewNull())
		}
	}
	cols, err := selectList(exprs, b)
	if err != nil {
		return "", nil, false, err
	}

	var whereExpr relexpr.Expr = relexpr.NewInList(relexpr.NewColumnRef(string(ident.IDProperty)), value.IntList(ids...))
	if compiledFilter != nil && relexpr.TryEvaluate(compiledFilter, relexpr.One) != relexpr.True {
		whereExpr = relexpr.NewAnd(whereExpr, compiledFilter)
	}
	whereSQL, err := relexpr.EmitSQL(whereExpr, b)
	if err != nil {
		return "", nil, false, err
	}

	leg = fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(cols, ", "), quoteTableIdent(string(label)), whereSQL)
	return leg, nil, false, nil
}
