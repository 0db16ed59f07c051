package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/chemidr/internal/app"
	"github.com/turtacn/chemidr/internal/application/jobs"
	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemidr/pkg/errors"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if port > 0 {
				cliCtx.Config.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := cliCtx.App(ctx, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			a.Logger.Info("starting chemidr API server",
				logging.String("version", Version),
				logging.Int("port", cliCtx.Config.Server.Port))
			return a.Serve(ctx, Version)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	return cmd
}

// NewWorkerCmd creates the worker command.
func NewWorkerCmd() *cobra.Command {
	var (
		jobTimeout   time.Duration
		ensureTopics bool
	)

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume batch resolution jobs from Kafka",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if !cliCtx.Config.Kafka.Enabled {
				return errors.New(errors.ErrCodeValidation, "kafka.enabled is false")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := cliCtx.App(ctx, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			a.Logger.Info("starting chemidr worker",
				logging.String("version", Version),
				logging.String("topic", cliCtx.Config.Kafka.JobsTopic))
			return a.RunWorker(ctx, app.WorkerOptions{JobTimeout: jobTimeout, EnsureTopics: ensureTopics})
		},
	}
	cmd.Flags().DurationVar(&jobTimeout, "job-timeout", 30*time.Minute, "upper bound for one job (0 = none)")
	cmd.Flags().BoolVar(&ensureTopics, "ensure-topics", true, "create the job topics if missing")
	return cmd
}

// NewSubmitCmd creates the submit command.
func NewSubmitCmd() *cobra.Command {
	var (
		input    string
		column   string
		inchikey bool
	)

	cmd := &cobra.Command{
		Use:   "submit [name...]",
		Short: "Enqueue a batch resolution job on Kafka",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			if !cliCtx.Config.Kafka.Enabled {
				return errors.New(errors.ErrCodeValidation, "kafka.enabled is false")
			}

			names, source := args, "cli"
			if input != "" {
				fh, err := os.Open(input)
				if err != nil {
					return errors.Wrap(err, errors.CodeInvalidParam, "failed to open input").WithDetail(input)
				}
				table, err := readNameTable(fh, column)
				fh.Close()
				if err != nil {
					return err
				}
				names, source = table.Names(), input
			}

			ctx, cancel := cliCtx.WithTimeout(cmd.Context())
			defer cancel()

			a, err := cliCtx.App(ctx, app.Options{SkipIndex: true, SkipDatabase: true})
			if err != nil {
				return err
			}
			defer a.Close()

			producer, err := a.NewProducer()
			if err != nil {
				return err
			}
			defer producer.Close()

			id, err := jobs.NewSubmitter(producer, cliCtx.Config.Kafka.JobsTopic).Submit(ctx, jobs.ResolveJob{
				Names:        names,
				UseRemote:    cliCtx.Config.Resolver.UseRemote,
				UseLocal:     cliCtx.Config.Resolver.UseLocal,
				WithInChIKey: inchikey,
				Source:       source,
			})
			if err != nil {
				return err
			}
			return PrintResult(cmd, id)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "CSV file with a header row")
	cmd.Flags().StringVar(&column, "column", "name", "CSV column holding the chemical name")
	cmd.Flags().BoolVar(&inchikey, "inchikey", false, "enrich results with InChIKeys")
	return cmd
}

//Personal.AI order the ending
