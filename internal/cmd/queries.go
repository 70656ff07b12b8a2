package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rtcheck/internal/property"
	"github.com/felixgeelhaar/rtcheck/internal/translate"
	"github.com/felixgeelhaar/rtcheck/internal/ux"
)

// QueryRow describes how one property was resolved.
type QueryRow struct {
	Name   string `json:"name" yaml:"name"`
	Kind   string `json:"kind" yaml:"kind"`
	Query  string `json:"query,omitempty" yaml:"query,omitempty"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// QueriesOutput is the result of "rtcheck queries".
type QueriesOutput struct {
	Model      string     `json:"model" yaml:"model"`
	Hash       string     `json:"hash" yaml:"hash"`
	Properties []QueryRow `json:"properties" yaml:"properties"`
}

// RenderText implements ux.TextRenderer.
func (o *QueriesOutput) RenderText(w io.Writer, styles ux.Styles) error {
	_, err := fmt.Fprint(w, queryTable(o.Properties, styles))
	return err
}

func queryTable(rows []QueryRow, styles ux.Styles) string {
	table := &ux.Table{Headers: []string{"PROPERTY", "KIND", "QUERY"}}
	for _, r := range rows {
		q := r.Query
		if q == "" {
			q = styles.Muted.Render(r.Reason)
		}
		table.AddRow(r.Name, r.Kind, q)
	}
	return table.Render(styles)
}

// queryRows lists properties in verification order. Properties the model
// does not declare are reported as synthesized.
func queryRows(order []string, queries map[string]string, declared []property.Classified) []QueryRow {
	classified := make(map[string]property.Classified, len(declared))
	for _, c := range declared {
		classified[c.Name] = c
	}

	rows := make([]QueryRow, 0, len(order))
	for _, name := range order {
		row := QueryRow{Name: name, Kind: "synthesized"}
		if c, ok := classified[name]; ok {
			row.Kind = c.Kind.String()
			row.Reason = c.Reason
		}
		row.Query = queries[name]
		rows = append(rows, row)
	}
	return rows
}

func newQueriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "queries [model]",
		Short: "Show how each property of a model is resolved",
		Long: `Translate a task model without writing any files and print, for every
property, its classification (formula, pipeline or unresolved) and the
query that will be handed to the model checker.

Unresolved properties are checked as raw formulas under an always
quantifier; the reason they did not match the pipeline grammar is shown
instead of a query.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runQueries,
	}
}

func runQueries(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	path, m, err := cmdCtx.LoadModel(args)
	if err != nil {
		return ux.EnhanceError(err)
	}

	res, err := translate.NewBuilder(cmdCtx.Logger, "").Translate(m)
	if err != nil {
		return err
	}

	return cmdCtx.Print(&QueriesOutput{Model: path, Hash: res.Hash, Properties: queryRows(res.Order, res.Queries, res.Classified)})
}
