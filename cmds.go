package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"relalg/pkg/execution"
	"relalg/pkg/logging"
	"relalg/pkg/output"
	"relalg/pkg/plan"
)

// Action holds the state used while processing a command.
type Action struct {
	cmd      *cobra.Command
	start    time.Time
	renderer *output.Renderer
}

func newAction(cmd *cobra.Command) *Action {
	return &Action{cmd: cmd, start: time.Now(), renderer: output.NewRenderer()}
}

func (a *Action) Context() context.Context {
	if ctx := a.cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (a *Action) getBool(name string) bool {
	result, _ := a.cmd.Flags().GetBool(name)
	return result
}

func (a *Action) getInt(name string) int {
	result, _ := a.cmd.Flags().GetInt(name)
	return result
}

func (a *Action) getString(name string) string {
	result, _ := a.cmd.Flags().GetString(name)
	return result
}

func (a *Action) getStringArray(name string) []string {
	result, _ := a.cmd.Flags().GetStringArray(name)
	return result
}

func (a *Action) println(s string) {
	fmt.Fprintln(a.cmd.OutOrStdout(), s)
}

func (a *Action) options() []execution.Option {
	if a.getBool("check-sorted") {
		return []execution.Option{execution.WithSortCheck()}
	}
	return nil
}

// compile reads, compiles and binds the plan at path. Tables are bound
// to --table files first, then to their declared sources.
func (a *Action) compile(path string) (*plan.Plan, error) {
	doc, err := plan.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading plan %s", path)
	}
	return a.compileDoc(doc, filepath.Dir(path))
}

func (a *Action) compileDoc(doc *plan.Document, baseDir string) (*plan.Plan, error) {
	p, err := plan.Compile(doc, a.options()...)
	if err != nil {
		return nil, errors.Wrap(err, "compiling plan")
	}
	overrides, err := parseTables(a.getStringArray("table"))
	if err != nil {
		return nil, err
	}
	sources, err := p.Sources(baseDir, overrides)
	if err != nil {
		return nil, errors.Wrap(err, "resolving table sources")
	}
	bound, err := p.Bind(sources)
	if err != nil {
		return nil, errors.Wrap(err, "binding table sources")
	}
	return bound, nil
}

// parseTables parses repeated name=path flags.
func parseTables(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		name, path, ok := strings.Cut(arg, "=")
		name, path = strings.TrimSpace(name), strings.TrimSpace(path)
		if !ok || name == "" || path == "" {
			return nil, errors.Errorf("invalid --table %q, want name=path", arg)
		}
		if _, dup := out[name]; dup {
			return nil, errors.Errorf("table %q bound twice", name)
		}
		out[name] = path
	}
	return out, nil
}

// selectQueries returns the named queries of p, or all of them.
func selectQueries(p *plan.Plan, names []string) ([]plan.Query, error) {
	if len(names) == 0 {
		return p.Queries, nil
	}
	out := make([]plan.Query, 0, len(names))
	for _, name := range names {
		q, ok := p.Query(name)
		if !ok {
			return nil, errors.Errorf("plan has no query %q", name)
		}
		out = append(out, q)
	}
	return out, nil
}

// execute runs queries with at most --parallel of them at a time and
// prints the results in query order.
func (a *Action) execute(queries []plan.Query) error {
	results := make([]*output.QueryResult, len(queries))
	limit := a.getInt("limit")

	g, ctx := errgroup.WithContext(a.Context())
	if n := a.getInt("parallel"); n > 0 {
		g.SetLimit(n)
	}
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			runID := uuid.NewString()
			log := logging.WithRun(runID).With("query", q.Name)
			log.Debug("query started")

			res, err := output.Collect(q.Name, q.Op, limit)
			if err != nil {
				log.Error("query failed", "error", err)
				return errors.Wrapf(err, "query %s", q.Name)
			}
			res.RunID = runID
			log.Info("query finished", "rows", res.Total, "duration", res.Duration)
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, res := range results {
		a.println(a.renderer.Result(res, queries[i].Op.ResultSchema().NumKeys()))
	}
	return nil
}

func (a *Action) fail(err error) error {
	logging.WithError(err).Debug("command failed", "command", a.cmd.Name(), "elapsed", time.Since(a.start))
	fmt.Fprintln(a.cmd.ErrOrStderr(), a.renderer.Error(err))
	return err
}

func runPlan(cmd *cobra.Command, args []string) error {
	action := newAction(cmd)
	p, err := action.compile(args[0])
	if err != nil {
		return action.fail(err)
	}
	queries, err := selectQueries(p, args[1:])
	if err != nil {
		return action.fail(err)
	}
	if err := action.execute(queries); err != nil {
		return action.fail(err)
	}
	return nil
}

func explainPlan(cmd *cobra.Command, args []string) error {
	action := newAction(cmd)
	p, err := action.compile(args[0])
	if err != nil {
		return action.fail(err)
	}
	queries, err := selectQueries(p, args[1:])
	if err != nil {
		return action.fail(err)
	}
	for _, q := range queries {
		action.println(action.renderer.Plan(q.Name, execution.Explain(q.Op)))
	}
	return nil
}

func checkPlan(cmd *cobra.Command, args []string) error {
	action := newAction(cmd)
	p, err := action.compile(args[0])
	if err != nil {
		return action.fail(err)
	}

	unbound := p.Unbound()
	if len(unbound) > 0 {
		names := make([]string, 0, len(unbound))
		for q, tables := range unbound {
			names = append(names, fmt.Sprintf("%s: %s", q, strings.Join(tables, ", ")))
		}
		sort.Strings(names)
		return action.fail(errors.Errorf("tables without a source: %s", strings.Join(names, "; ")))
	}

	ops := 0
	for _, q := range p.Queries {
		ops += execution.CountOps(q.Op)
	}
	action.println(fmt.Sprintf("plan OK: %d table(s), %d query(s), %d operator(s)", len(p.Tables), len(p.Queries), ops))
	return nil
}

func runDemo(cmd *cobra.Command, _ []string) error {
	action := newAction(cmd)
	doc, err := plan.Parse([]byte(demoPlan))
	if err != nil {
		return action.fail(errors.Wrap(err, "parsing demo plan"))
	}
	p, err := action.compileDoc(doc, ".")
	if err != nil {
		return action.fail(err)
	}
	if err := action.execute(p.Queries); err != nil {
		return action.fail(err)
	}
	return nil
}

func initLogging(cmd *cobra.Command, _ []string) error {
	a := newAction(cmd)
	level, err := logging.ParseLevel(a.getString("log-level"))
	if err != nil {
		return err
	}
	format := a.getString("log-format")
	if format != "text" && format != "json" {
		return errors.Errorf("invalid --log-format %q, want text or json", format)
	}
	// A failed command skips the post-run hook that closes the logger.
	logging.Close()
	return logging.Init(logging.Config{
		Level:      level,
		Format:     format,
		OutputPath: a.getString("log-file"),
	})
}

// demoPlan exercises each operator over small inline tables.
const demoPlan = `
tables:
  - name: sales
    keys: [{name: id, type: INT}]
    vals: [{name: amount, type: LONG, default: "0"}]
    rows:
      - {id: 1, amount: 5}
      - {id: 2, amount: 3}
  - name: returns
    keys: [{name: id, type: INT}]
    vals: [{name: amount, type: LONG, default: "0"}]
    rows:
      - {id: 1, amount: 10}
      - {id: 3, amount: 7}
  - name: lines
    keys: [{name: id, type: INT}, {name: line, type: INT}]
    vals: [{name: qty, type: LONG, default: "0"}, {name: sku, type: STRING}]
    rows:
      - {id: 1, line: 2, qty: 4, sku: B}
      - {id: 1, line: 1, qty: 2, sku: A}
      - {id: 2, line: 1, qty: 1, sku: A}
    presort: true
  - name: prices
    keys: [{name: id, type: INT}]
    vals: [{name: qty, type: LONG, default: "0"}]
    rows:
      - {id: 1, qty: 3}
      - {id: 2, qty: 5}
queries:
  - name: combined
    query:
      union:
        left: {load: sales}
        right: {load: returns}
        plus: {amount: sum}
  - name: per_order
    query:
      agg:
        input: {project: {input: {load: lines}, vals: [qty]}}
        keys: [id]
        plus: {qty: sum}
  - name: big_lines
    query:
      filter: {input: {load: lines}, attr: qty, op: ">=", value: "2"}
  - name: by_line
    query:
      sort:
        input: {rename: {input: {load: lines}, mapping: {sku: item}}}
        order: [line, id]
  - name: cost
    query:
      join:
        left: {project: {input: {load: lines}, vals: [qty]}}
        right: {load: prices}
        times: {qty: multiply}
`
