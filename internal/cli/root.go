// Package cli implements the goldcharp command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/2caleb/gold-charp-investments-sub003/internal/config"
	"github.com/2caleb/gold-charp-investments-sub003/internal/container"
	"github.com/2caleb/gold-charp-investments-sub003/pkg/utils"
)

// DefaultConfigPath is read when --config is not given and the file exists.
const DefaultConfigPath = "configs/config.yaml"

// App holds state shared by all commands.
type App struct {
	ConfigPath string
	Out        io.Writer

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	if app.Out == nil {
		app.Out = os.Stdout
	}

	root := &cobra.Command{
		Use:           "goldcharp",
		Short:         "Loan application intake and approval workflow",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}
	root.SetOut(app.Out)
	root.PersistentFlags().StringVarP(&app.ConfigPath, "config", "c", "", "path to a YAML config file (default "+DefaultConfigPath+" when present)")

	root.AddCommand(
		newServeCommand(app),
		newMigrateCommand(app),
		newImportCommand(app),
		newExportCommand(app),
		newMatchCommand(app),
		newDecideCommand(app),
		newStaffCommand(app),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	root := NewRootCommand(&App{})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return ExitCode(err)
	}
	return 0
}

func (a *App) setup() error {
	path := a.ConfigPath
	if path == "" {
		if _, err := os.Stat(DefaultConfigPath); err == nil {
			path = DefaultConfigPath
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return NewExitError(2, err)
	}
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		return NewExitError(2, fmt.Errorf("failed to initialize logger: %w", err))
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// withContainer starts a container without background workers, runs fn and
// closes the container again.
func (a *App) withContainer(ctx context.Context, fn func(c *container.Container) error) (err error) {
	c, err := container.New(a.cfg, a.logger, container.WithoutWorkers())
	if err != nil {
		return err
	}
	if err := c.Start(ctx); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, c.Close())
	}()
	return fn(c)
}
