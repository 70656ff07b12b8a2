// Package translate turns a task model into a network of timed automata and
// a map of named queries over it.
package translate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/rtcheck/internal/errors"
	"github.com/felixgeelhaar/rtcheck/internal/log"
	"github.com/felixgeelhaar/rtcheck/internal/model"
	"github.com/felixgeelhaar/rtcheck/internal/nta"
	"github.com/felixgeelhaar/rtcheck/internal/property"
)

// Builder translates models. The zero value logs to the default logger and
// writes artifacts into a fresh temporary directory.
type Builder struct {
	Logger    *log.Logger
	OutputDir string
}

// NewBuilder creates a builder writing artifacts into outputDir.
func NewBuilder(logger *log.Logger, outputDir string) *Builder {
	return &Builder{Logger: logger, OutputDir: outputDir}
}

// Result is an in-memory translation.
type Result struct {
	Document *nta.Document
	// Queries maps resolved property names to query text.
	Queries map[string]string
	// Order lists declared property names followed by synthesized ones.
	Order      []string
	Classified []property.Classified
	// Unresolved lists declared properties left for the verifier's fallback.
	Unresolved []string
	Hash       string
}

// Query returns the resolved query of a property.
func (r *Result) Query(name string) (string, bool) {
	q, ok := r.Queries[name]
	return q, ok
}

// generation carries the state threaded through one translation. It is
// owned by a single Translate call.
type generation struct {
	logger   *log.Logger
	m        *model.Model
	doc      *nta.Document
	groups   []model.Group
	incoming map[string]bool
}

func (g *generation) add(f Fragment) error {
	if err := g.doc.Add(f.Template, f.Process); err != nil {
		return err
	}
	g.logger.Debug("template emitted", "template", f.Template.Name, "process", f.Process)
	return nil
}

// Translate builds the automaton document and resolves every property.
func (b *Builder) Translate(m *model.Model) (*Result, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	logger := log.OrDefault(b.Logger)

	hash, err := model.Hash(m)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeModelMarshal, "failed to hash model", err)
	}

	g := &generation{
		logger:   logger.With("model", shortHash(hash)),
		m:        m,
		doc:      nta.NewDocument(),
		groups:   model.Groups(m),
		incoming: m.Incoming(),
	}

	g.doc.Declare(ChannelDeclarations(m.Tasks)...)
	for _, grp := range g.groups {
		g.doc.Declare(GroupDeclarations(grp)...)
	}

	steps := []func() error{g.components, g.triggers, g.drivers, g.schedulers}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	res := &Result{
		Document: g.doc,
		Queries:  make(map[string]string),
		Hash:     hash,
	}
	if err := g.properties(res); err != nil {
		return nil, err
	}
	g.synthesizeDeadlineQuery(res)

	if err := g.doc.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

func (g *generation) components() error {
	for _, t := range g.m.Tasks {
		grp, _, ok := model.GroupOf(g.groups, t.Name)
		if !ok {
			return errors.New(errors.ErrCodeModelUnknownTask, fmt.Sprintf("task %q has no scheduling group", t.Name))
		}
		if err := g.add(ComponentAutomaton(t, grp.Prefix, g.incoming[t.Name])); err != nil {
			return err
		}
	}
	return nil
}

// triggers emits periodic timers first, then environment triggers.
func (g *generation) triggers() error {
	for _, t := range g.m.Tasks {
		if t.Period != nil && !g.incoming[t.Name] {
			if err := g.add(PeriodicTimer(t.Name, *t.Period)); err != nil {
				return err
			}
		}
	}
	for _, t := range g.m.Tasks {
		if t.Period == nil && !g.incoming[t.Name] {
			if err := g.add(EnvironmentTrigger(t.Name)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *generation) drivers() error {
	seen := make(map[[2]string]bool)
	for _, c := range g.m.Connections {
		src, dst := c.SrcTask(), c.DstTask()
		if !g.m.HasTask(src) || !g.m.HasTask(dst) {
			g.logger.Warn("connection references an undeclared component, skipped",
				"connection", c.Name, "src", c.Src, "dst", c.Dst)
			continue
		}
		key := [2]string{src, dst}
		if seen[key] {
			continue
		}
		seen[key] = true
		if err := g.add(ConnectionDriver(src, dst)); err != nil {
			return err
		}
	}
	return nil
}

func (g *generation) schedulers() error {
	for _, grp := range g.groups {
		if err := g.add(Scheduler(grp)); err != nil {
			return err
		}
	}
	return nil
}

// properties classifies every declared property and resolves it where
// possible. Pipeline clauses get an observer each.
func (g *generation) properties(res *Result) error {
	budgets := BudgetsOf(g.m.Connections)

	for _, p := range g.m.Properties {
		c := property.Classify(p.Name, p.Text)

		switch c.Kind {
		case property.RawFormula:
			res.Queries[p.Name] = c.Text

		case property.PipelinePattern:
			if missing := g.undeclared(c.Pipeline.Chain); len(missing) > 0 {
				c.Kind = property.Unresolved
				c.Reason = "unknown components in pipeline: " + strings.Join(missing, ", ")
				c.Pipeline = nil
				break
			}
			obs, err := g.observer(p.Name, c.Pipeline, budgets)
			if err != nil {
				return err
			}
			res.Queries[p.Name] = obs.Query()
		}

		if c.Kind == property.Unresolved {
			g.logger.Warn("property left unresolved", "property", p.Name, "reason", c.Reason)
			res.Unresolved = append(res.Unresolved, p.Name)
		}
		res.Classified = append(res.Classified, c)
		res.Order = append(res.Order, p.Name)
	}
	return nil
}

func (g *generation) observer(name string, p *property.Pipeline, budgets Budgets) (Observer, error) {
	pred, sources := FindPredecessor(p.First(), g.m.Connections)
	if len(sources) > 1 {
		g.logger.Warn("pipeline entry has several producers, treating it as externally started",
			"property", name, "component", p.First(), "producers", strings.Join(sources, ", "))
	}
	if pred != "" && !g.m.HasTask(pred) {
		pred = ""
	}

	obs := Observer{
		Template:    observerName(name, func(n string) bool { return g.doc.Template(n) != nil }),
		Chain:       p.Chain,
		BoundMS:     p.BoundMS,
		Predecessor: pred,
		Budgets:     budgets,
	}
	g.logger.Debug("pipeline budget",
		"property", name,
		"bound_ms", obs.BoundMS,
		"total_budget_ms", obs.TotalBudget(),
		"effective_bound_ms", obs.EffectiveBound())

	return obs, g.add(PipelineObserver(obs))
}

func (g *generation) undeclared(chain []string) []string {
	var missing []string
	for _, name := range chain {
		if !g.m.HasTask(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// synthesizeDeadlineQuery adds the "no deadline miss" query over every task
// declaring a deadline, unless the model already names one.
func (g *generation) synthesizeDeadlineQuery(res *Result) {
	if _, declared := g.m.Properties.Get(property.DeadlinePropertyName); declared {
		return
	}

	var locs []string
	for _, t := range g.m.Tasks {
		if t.Deadline != nil {
			locs = append(locs, TaskProcess(t.Name)+"."+DeadlineMissLocation)
		}
	}
	if len(locs) == 0 {
		return
	}

	expr := locs[0]
	if len(locs) > 1 {
		expr = "(" + strings.Join(locs, " || ") + ")"
	}
	res.Queries[property.DeadlinePropertyName] = "A[] not " + expr
	res.Order = append(res.Order, property.DeadlinePropertyName)
}

// Bundle references persisted translation artifacts.
type Bundle struct {
	ModelPath   string
	QueriesPath string
	Queries     map[string]string
	Order       []string
	Classified  []property.Classified
	Unresolved  []string
	Hash        string
	// Templates is the number of automaton templates in the network.
	Templates int

	tempDir string
}

// Query returns the resolved query of a property.
func (b *Bundle) Query(name string) (string, bool) {
	q, ok := b.Queries[name]
	return q, ok
}

// Remove deletes the persisted artifacts.
func (b *Bundle) Remove() error {
	if b.tempDir != "" {
		return os.RemoveAll(b.tempDir)
	}
	for _, p := range []string{b.ModelPath, b.QueriesPath} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Build translates m and persists "<hash>.xml" and "<hash>.queries.yaml".
func (b *Builder) Build(m *model.Model) (*Bundle, error) {
	res, err := b.Translate(m)
	if err != nil {
		return nil, err
	}

	dir := b.OutputDir
	bundle := &Bundle{
		Queries:    res.Queries,
		Order:      res.Order,
		Classified: res.Classified,
		Unresolved: res.Unresolved,
		Hash:       res.Hash,
		Templates:  len(res.Document.Templates),
	}
	if dir == "" {
		dir, err = os.MkdirTemp("", "rtcheck-")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeDirectoryFailed, "failed to create artifact directory", err)
		}
		bundle.tempDir = dir
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDirectoryFailed, fmt.Sprintf("failed to create %s", dir), err)
	}

	bundle.ModelPath = filepath.Join(dir, res.Hash+".xml")
	bundle.QueriesPath = filepath.Join(dir, res.Hash+".queries.yaml")

	doc, err := res.Document.Marshal()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(bundle.ModelPath, doc, 0644); err != nil {
		return nil, errors.NewFileWriteError(bundle.ModelPath, err)
	}

	queries, err := MarshalQueries(res.Order, res.Queries)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeModelMarshal, "failed to marshal queries", err)
	}
	if err := os.WriteFile(bundle.QueriesPath, queries, 0644); err != nil {
		return nil, errors.NewFileWriteError(bundle.QueriesPath, err)
	}

	log.OrDefault(b.Logger).Info("translation persisted",
		"model", bundle.ModelPath,
		"queries", len(res.Queries),
		"unresolved", len(res.Unresolved))
	return bundle, nil
}

// MarshalQueries renders resolved queries as a YAML mapping in order.
func MarshalQueries(order []string, queries map[string]string) ([]byte, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range order {
		q, ok := queries[name]
		if !ok {
			continue
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: q, Style: yaml.DoubleQuotedStyle},
		)
	}
	return yaml.Marshal(node)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
