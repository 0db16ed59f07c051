package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/chemidr/internal/app"
	"github.com/turtacn/chemidr/internal/infrastructure/database/postgres"
	"github.com/turtacn/chemidr/pkg/errors"
)

var migrateDownSteps int

// NewMigrateCmd creates the migrate command group for the result store schema.
func NewMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL result store schema",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *postgres.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				PrintSuccess(cmd, "migrations applied")
				return nil
			})
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if migrateDownSteps < 1 {
				return errors.InvalidParam("--steps must be at least 1")
			}
			return withMigrator(cmd, func(m *postgres.Migrator) error {
				if err := m.Down(migrateDownSteps); err != nil {
					return err
				}
				PrintSuccess(cmd, fmt.Sprintf("rolled back %d migration(s)", migrateDownSteps))
				return nil
			})
		},
	}
	downCmd.Flags().IntVar(&migrateDownSteps, "steps", 1, "number of migrations to roll back")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *postgres.Migrator) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				return PrintResult(cmd, fmt.Sprintf("version %d (dirty=%t)", v, dirty))
			})
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd, versionCmd)
	return migrateCmd
}

// withMigrator opens the database without auto-migration and runs fn.
func withMigrator(cmd *cobra.Command, fn func(*postgres.Migrator) error) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if !cliCtx.Config.Database.Enabled {
		return errors.New(errors.ErrCodeValidation, "database.enabled is false")
	}
	cfg := *cliCtx.Config
	cfg.Database.AutoMigrate = false

	ctx, cancel := cliCtx.WithTimeout(cmd.Context())
	defer cancel()

	a, err := app.New(ctx, &cfg, cliCtx.Logger, app.Options{SkipIndex: true})
	if err != nil {
		return err
	}
	defer a.Close()
	return a.Migrate(fn)
}

//Personal.AI order the ending
