package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/chemidr/internal/app"
	"github.com/turtacn/chemidr/internal/application/resolver"
	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemidr/pkg/errors"
)

type resolveOptions struct {
	input    string
	column   string
	outFile  string
	remote   bool
	local    bool
	inchikey bool
}

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve [name...]",
		Short: "Resolve chemical names to PubChem, FooDB and composite ids",
		Long: "Resolve names given as arguments, or every row of a CSV file with --input.\n" +
			"With --out the input rows are written back with the identifier columns\n" +
			"appended; otherwise results are printed.",
		Example: "  chemidr resolve caffeine \"garlic oil\"\n" +
			"  chemidr resolve --input chems.csv --column chemical --out labeled.csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "CSV file with a header row")
	f.StringVar(&opts.column, "column", "name", "CSV column holding the chemical name")
	f.StringVar(&opts.outFile, "out", "", "write the labeled CSV here (\"-\" for stdout)")
	f.BoolVar(&opts.remote, "remote", true, "query PubChem (default from resolver.use_remote)")
	f.BoolVar(&opts.local, "local", true, "query the FooDB synonym index (default from resolver.use_local)")
	f.BoolVar(&opts.inchikey, "inchikey", false, "enrich results with InChIKeys")
	return cmd
}

func runResolve(cmd *cobra.Command, args []string, opts *resolveOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if opts.input == "" && len(args) == 0 {
		return errors.InvalidParam("give chemical names as arguments or a CSV with --input")
	}
	if opts.input != "" && len(args) > 0 {
		return errors.InvalidParam("--input and name arguments are mutually exclusive")
	}

	useRemote, useLocal := cliCtx.Config.Resolver.UseRemote, cliCtx.Config.Resolver.UseLocal
	if cmd.Flags().Changed("remote") {
		useRemote = opts.remote
	}
	if cmd.Flags().Changed("local") {
		useLocal = opts.local
	}

	var (
		table  *nameTable
		names  = args
		source = "cli"
	)
	if opts.input != "" {
		fh, err := os.Open(opts.input)
		if err != nil {
			return errors.Wrap(err, errors.CodeInvalidParam, "failed to open input").WithDetail(opts.input)
		}
		table, err = readNameTable(fh, opts.column)
		fh.Close()
		if err != nil {
			return err
		}
		names, source = table.Names(), opts.input

		// A header-only file is an empty run, not an error.
		if len(names) == 0 {
			cliCtx.Logger.Warn("input has no rows", logging.String("input", opts.input))
			if opts.outFile == "" {
				return PrintResult(cmd, resolvedRows{})
			}
			return writeOutput(cmd, opts.outFile, func(w io.Writer) error {
				return writeResolvedTable(w, table, nil)
			})
		}
	}

	ctx, cancel := cliCtx.WithTimeout(cmd.Context())
	defer cancel()

	a, err := cliCtx.App(ctx, app.Options{SkipIndex: !useLocal})
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Resolver.ResolveBatch(ctx, &resolver.BatchInput{
		Names:        names,
		UseRemote:    useRemote,
		UseLocal:     useLocal,
		WithInChIKey: opts.inchikey,
		Source:       source,
	})
	if err != nil {
		return err
	}

	s := result.Run.Summary
	cliCtx.Logger.Info("resolution finished",
		logging.String("run_id", result.Run.ID),
		logging.Int("total", s.Total),
		logging.Int("unique_inputs", s.UniqueInputs),
		logging.Int("pubchem_resolved", s.PubChemResolved),
		logging.Int("foodb_resolved", s.FooDBResolved),
		logging.Float64("coverage", s.Coverage()),
		logging.Bool("persisted", result.Persisted))

	if opts.outFile == "" {
		if strings.EqualFold(cliCtx.OutputFormat, "json") {
			return PrintResult(cmd, result)
		}
		return PrintResult(cmd, resolvedRows(result.Results))
	}

	if table == nil {
		table = &nameTable{header: []string{"name"}}
		for _, n := range names {
			table.rows = append(table.rows, []string{n})
		}
	}
	return writeOutput(cmd, opts.outFile, func(w io.Writer) error {
		return writeResolvedTable(w, table, result.Results)
	})
}

// writeOutput writes to stdout for "-" and to a new file otherwise.
func writeOutput(cmd *cobra.Command, path string, fn func(io.Writer) error) error {
	if path == "-" {
		return fn(cmd.OutOrStdout())
	}
	fh, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to create output").WithDetail(path)
	}
	if err := fn(fh); err != nil {
		fh.Close()
		return err
	}
	if err := fh.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to write output").WithDetail(path)
	}
	PrintSuccess(cmd, fmt.Sprintf("wrote %s", path))
	return nil
}

//Personal.AI order the ending
