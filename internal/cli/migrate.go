package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2caleb/gold-charp-investments-sub003/pkg/database"
)

func newMigrateCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return app.withMigrator(func(m *database.Migrator) error {
					if err := m.Up(); err != nil {
						return err
					}
					return app.printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return app.withMigrator(func(m *database.Migrator) error {
					if err := m.Steps(-1); err != nil {
						return err
					}
					return app.printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return app.withMigrator(func(m *database.Migrator) error {
					return app.printVersion(cmd, m)
				})
			},
		},
	)
	return cmd
}

func (a *App) withMigrator(fn func(m *database.Migrator) error) error {
	m, err := database.NewMigrator(a.cfg.Database.Path, a.logger.Named("migrate"))
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func (a *App) printVersion(cmd *cobra.Command, m *database.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", version, state)
	return nil
}
