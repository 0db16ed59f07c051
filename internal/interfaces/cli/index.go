package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/chemidr/internal/app"
	"github.com/turtacn/chemidr/internal/application/synonym"
)

// NewIndexCmd creates the index command group.
func NewIndexCmd() *cobra.Command {
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Build and inspect the local FooDB synonym index",
	}

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Rebuild the index from the bulk tables and persist it to synonyms.store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndexBuild(cmd)
		},
	}

	lookupCmd := &cobra.Command{
		Use:   "lookup <name>...",
		Short: "Show which table answers each name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndexLookup(cmd, args)
		},
	}

	indexCmd.AddCommand(buildCmd, lookupCmd)
	return indexCmd
}

// indexStats lists entries per table in priority order.
type indexStats struct {
	Tables []tableStat `json:"tables"`
	Total  int         `json:"total"`
}

type tableStat struct {
	Name    string `json:"name"`
	Entries int    `json:"entries"`
}

func newIndexStats(ix *synonym.Index) indexStats {
	s := indexStats{Total: ix.Len()}
	for _, name := range ix.Names() {
		s.Tables = append(s.Tables, tableStat{Name: name, Entries: len(ix.Table(name))})
	}
	return s
}

func (s indexStats) TableHeaders() []string { return []string{"TABLE", "ENTRIES"} }

func (s indexStats) TableRows() [][]string {
	rows := make([][]string, 0, len(s.Tables)+1)
	for _, t := range s.Tables {
		rows = append(rows, []string{t.Name, strconv.Itoa(t.Entries)})
	}
	return append(rows, []string{"(distinct keys)", strconv.Itoa(s.Total)})
}

func runIndexBuild(cmd *cobra.Command) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := cliCtx.WithTimeout(cmd.Context())
	defer cancel()

	a, err := cliCtx.App(ctx, app.Options{SkipIndex: true, SkipDatabase: true})
	if err != nil {
		return err
	}
	defer a.Close()

	ix, err := a.OpenIndex(ctx, true)
	if err != nil {
		return err
	}
	if err := PrintResult(cmd, newIndexStats(ix)); err != nil {
		return err
	}
	PrintSuccess(cmd, fmt.Sprintf("index persisted to %s store", cliCtx.Config.Synonyms.Store))
	return nil
}

type lookupRows []lookupRow

type lookupRow struct {
	Name   string `json:"name"`
	Found  bool   `json:"found"`
	FooDB  int64  `json:"foodb_id,omitempty"`
	Source string `json:"table,omitempty"`
}

func (r lookupRows) TableHeaders() []string { return []string{"NAME", "FOODB_ID", "TABLE"} }

func (r lookupRows) TableRows() [][]string {
	rows := make([][]string, len(r))
	for i, l := range r {
		if !l.Found {
			rows[i] = []string{l.Name, "", ""}
			continue
		}
		rows[i] = []string{l.Name, strconv.FormatInt(l.FooDB, 10), l.Source}
	}
	return rows
}

func runIndexLookup(cmd *cobra.Command, names []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := cliCtx.WithTimeout(cmd.Context())
	defer cancel()

	a, err := cliCtx.App(ctx, app.Options{SkipDatabase: true})
	if err != nil {
		return err
	}
	defer a.Close()

	out := make(lookupRows, len(names))
	for i, name := range names {
		out[i] = lookupRow{Name: name}
		if hit, ok := a.Index.Find(name); ok {
			out[i].Found, out[i].FooDB, out[i].Source = true, hit.ID, hit.Source
		}
	}
	return PrintResult(cmd, out)
}

//Personal.AI order the ending
