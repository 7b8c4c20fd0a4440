package plan

import (
	"path/filepath"

	dberror "relalg/pkg/error"
	"relalg/pkg/execution"
	"relalg/pkg/logging"
	"relalg/pkg/monoid"
	"relalg/pkg/primitives"
	"relalg/pkg/schema"
	"relalg/pkg/types"
)

// Plan is a compiled Document. Queries reference tables through Load
// placeholders until Bind replaces them with data leaves.
type Plan struct {
	Tables  map[string]*Table
	Queries []Query
}

// Table is a declared table and its compiled schema.
type Table struct {
	Def    TableDef
	Schema *schema.Schema
}

type Query struct {
	Name string
	Op   execution.TupleOp
}

// Compile turns doc into operator trees. opts apply to every merge
// operator. No data is read.
func Compile(doc *Document, opts ...execution.Option) (*Plan, error) {
	p := &Plan{Tables: make(map[string]*Table, len(doc.Tables))}

	for _, td := range doc.Tables {
		if td.Name == "" {
			return nil, invalidf("table without a name")
		}
		if _, dup := p.Tables[td.Name]; dup {
			return nil, invalidf("table %q declared twice", td.Name)
		}
		s, err := compileSchema(td.Keys, td.Vals)
		if err != nil {
			return nil, dberror.Wrap(err, dberror.CodeInvalidPlan, "Compile", "plan").WithDetail("table " + td.Name)
		}
		if td.Source != "" && len(td.Rows) > 0 {
			return nil, invalidf("table %q has both a source and inline rows", td.Name)
		}
		p.Tables[td.Name] = &Table{Def: td, Schema: s}
	}

	c := &compiler{tables: p.Tables, opts: opts}
	seen := make(map[string]bool, len(doc.Queries))
	for _, qd := range doc.Queries {
		if qd.Name == "" || seen[qd.Name] {
			return nil, invalidf("query name %q is empty or repeated", qd.Name)
		}
		seen[qd.Name] = true
		if qd.Query == nil {
			return nil, invalidf("query %q has no operator", qd.Name)
		}
		op, err := c.node(qd.Query)
		if err != nil {
			return nil, dberror.Wrap(err, dberror.CodeInvalidPlan, "Compile", "plan").WithDetail("query " + qd.Name)
		}
		p.Queries = append(p.Queries, Query{Name: qd.Name, Op: op})
	}

	logging.WithComponent("plan").Debug("plan compiled", "tables", len(p.Tables), "queries", len(p.Queries))
	return p, nil
}

// Query returns the named query.
func (p *Plan) Query(name string) (Query, bool) {
	for _, q := range p.Queries {
		if q.Name == name {
			return q, true
		}
	}
	return Query{}, false
}

// Sources resolves a data source for every table: an explicit path in
// overrides first, then the declared source relative to baseDir, then the
// inline rows. Tables with none of these are left out.
func (p *Plan) Sources(baseDir string, overrides map[string]string) (map[string]execution.Source, error) {
	for name := range overrides {
		if _, ok := p.Tables[name]; !ok {
			return nil, invalidf("source given for undeclared table %q", name)
		}
	}

	out := make(map[string]execution.Source, len(p.Tables))
	for name, t := range p.Tables {
		log := logging.WithTable(name)
		switch path, ok := overrides[name]; {
		case ok:
			out[name] = NewCSVSource(path, t.Schema)
			log.Debug("source bound", "path", path)
		case t.Def.Source != "":
			path := t.Def.Source
			if !filepath.IsAbs(path) {
				path = filepath.Join(baseDir, path)
			}
			out[name] = NewCSVSource(path, t.Schema)
			log.Debug("source bound", "path", path)
		case len(t.Def.Rows) > 0:
			rows, err := rowsSource(name, t.Schema, t.Def.Rows)
			if err != nil {
				return nil, err
			}
			out[name] = execution.SliceSource(rows)
			log.Debug("source bound", "rows", len(rows))
		}
	}
	return out, nil
}

// Bind replaces the Load placeholders of every query with LoadData leaves
// over sources. Sources of tables declared with presort are sorted by
// their keys as they are loaded. The receiver is left unchanged.
func (p *Plan) Bind(sources map[string]execution.Source) (*Plan, error) {
	bound := make(map[string]execution.Source, len(sources))
	for name, src := range sources {
		if t := p.Tables[name]; t != nil && t.Def.Presort {
			src = execution.SortedSource(src, t.Schema.KeyNames())
		}
		bound[name] = src
	}

	out := &Plan{Tables: p.Tables, Queries: make([]Query, len(p.Queries))}
	for i, q := range p.Queries {
		op, err := execution.BindLoads(q.Op, bound)
		if err != nil {
			return nil, err
		}
		out.Queries[i] = Query{Name: q.Name, Op: op}
	}
	return out, nil
}

// Unbound returns the tables still behind Load placeholders, per query.
func (p *Plan) Unbound() map[string][]string {
	out := make(map[string][]string)
	for _, q := range p.Queries {
		for _, l := range execution.Loads(q.Op) {
			out[q.Name] = append(out[q.Name], l.Table)
		}
	}
	return out
}

func compileSchema(keyDefs, valDefs []AttrDef) (*schema.Schema, error) {
	keys := make([]schema.Attribute, 0, len(keyDefs))
	for _, d := range keyDefs {
		t, err := types.ParseType(d.Type)
		if err != nil {
			return nil, invalidf("key %q: %v", d.Name, err)
		}
		if d.Default != nil {
			return nil, invalidf("key %q cannot have a default", d.Name)
		}
		keys = append(keys, schema.NewAttribute(d.Name, t))
	}

	vals := make([]schema.ValAttribute, 0, len(valDefs))
	for _, d := range valDefs {
		t, err := types.ParseType(d.Type)
		if err != nil {
			return nil, invalidf("value %q: %v", d.Name, err)
		}
		var def types.Field
		if d.Default != nil {
			def, err = types.ParseField(t, *d.Default)
			if err != nil {
				return nil, invalidf("value %q default: %v", d.Name, err)
			}
		}
		vals = append(vals, schema.NewValAttribute(d.Name, t, def))
	}
	return schema.New(keys, vals)
}

type compiler struct {
	tables map[string]*Table
	opts   []execution.Option
}

func (c *compiler) node(n *Node) (execution.TupleOp, error) {
	if n == nil {
		return nil, invalidf("missing input operator")
	}
	kind, err := n.kind()
	if err != nil {
		return nil, err
	}

	switch kind {
	case "load":
		t, ok := c.tables[n.Load]
		if !ok {
			return nil, invalidf("load of undeclared table %q", n.Load)
		}
		return execution.NewLoad(n.Load, t.Schema), nil

	case "empty":
		s, err := compileSchema(n.Empty.Keys, n.Empty.Vals)
		if err != nil {
			return nil, err
		}
		return execution.NewEmpty(s), nil

	case "filter":
		in, err := c.node(n.Filter.Input)
		if err != nil {
			return nil, err
		}
		return c.filter(in, n.Filter)

	case "project":
		in, err := c.node(n.Project.Input)
		if err != nil {
			return nil, err
		}
		fn, err := execution.NewProjectFun(in.ResultSchema(), n.Project.Vals...)
		if err != nil {
			return nil, err
		}
		return execution.NewExt(in, fn)

	case "rename":
		in, err := c.node(n.Rename.Input)
		if err != nil {
			return nil, err
		}
		return execution.NewRename(in, n.Rename.Mapping)

	case "sort":
		in, err := c.node(n.Sort.Input)
		if err != nil {
			return nil, err
		}
		return execution.NewSort(in, n.Sort.Order)

	case "union":
		left, right, err := c.pair(n.Union.Left, n.Union.Right)
		if err != nil {
			return nil, err
		}
		fns, err := plusFuns(n.Union.Plus, left.ResultSchema(), right.ResultSchema())
		if err != nil {
			return nil, err
		}
		return execution.Union(left, right, fns, c.opts...)

	case "agg":
		in, err := c.node(n.Agg.Input)
		if err != nil {
			return nil, err
		}
		fns, err := plusFuns(n.Agg.Plus, in.ResultSchema())
		if err != nil {
			return nil, err
		}
		return execution.Agg(in, n.Agg.Keys, fns, c.opts...)

	default: // join
		left, right, err := c.pair(n.Join.Left, n.Join.Right)
		if err != nil {
			return nil, err
		}
		fns, err := timesFuns(n.Join.Times, left.ResultSchema())
		if err != nil {
			return nil, err
		}
		return execution.Join(left, right, fns, c.opts...)
	}
}

func (c *compiler) pair(l, r *Node) (execution.TupleOp, execution.TupleOp, error) {
	left, err := c.node(l)
	if err != nil {
		return nil, nil, err
	}
	right, err := c.node(r)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func (c *compiler) filter(in execution.TupleOp, f *FilterNode) (execution.TupleOp, error) {
	s := in.ResultSchema()
	attr, ok := s.Get(f.Attr)
	if !ok {
		return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeUnknownAttribute,
			"filter attribute %q is not in %v", f.Attr, s)
	}
	op, err := primitives.ParsePredicate(f.Op)
	if err != nil {
		return nil, invalidf("filter on %q: %v", f.Attr, err)
	}
	operand, err := types.ParseField(attr.Type, f.Value)
	if err != nil {
		return nil, invalidf("filter on %q: %v", f.Attr, err)
	}
	fn, err := execution.NewFilterFun(s, f.Attr, op, operand)
	if err != nil {
		return nil, err
	}
	return execution.NewExt(in, fn)
}

// plusFuns resolves stock plus functions by name, typing each by the
// first schema that declares the value.
func plusFuns(names map[string]string, schemas ...*schema.Schema) (map[string]*monoid.PlusFun, error) {
	fns := make(map[string]*monoid.PlusFun, len(names))
	for attr, fn := range names {
		t, ok := valueType(attr, schemas)
		if !ok {
			return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeExtraFunction,
				"plus function %q given for %q, which is not a value of any input", fn, attr)
		}
		pf, err := monoid.PlusByName(fn, t)
		if err != nil {
			return nil, err
		}
		fns[attr] = pf
	}
	return fns, nil
}

func timesFuns(names map[string]string, left *schema.Schema) (map[string]*monoid.TimesFun, error) {
	fns := make(map[string]*monoid.TimesFun, len(names))
	for attr, fn := range names {
		t, ok := valueType(attr, []*schema.Schema{left})
		if !ok {
			return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeExtraFunction,
				"times function %q given for %q, which is not a value of the left input", fn, attr)
		}
		tf, err := monoid.TimesByName(fn, t)
		if err != nil {
			return nil, err
		}
		fns[attr] = tf
	}
	return fns, nil
}

func valueType(name string, schemas []*schema.Schema) (types.Type, bool) {
	for _, s := range schemas {
		if v, ok := s.GetValue(name); ok {
			return v.Type, true
		}
	}
	return 0, false
}
