package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/2caleb/gold-charp-investments-sub003/internal/container"
	httpapi "github.com/2caleb/gold-charp-investments-sub003/internal/interfaces/http"
)

func newServeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and notification delivery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.serve(ctx)
		},
	}
}

func (a *App) serve(ctx context.Context) (err error) {
	a.logger.Info("Starting Gold Charp loan service",
		zap.String("address", a.cfg.Server.Addr()),
		zap.Bool("lark_enabled", a.cfg.Lark.Enabled()))

	c, err := container.New(a.cfg, a.logger)
	if err != nil {
		return err
	}
	if err := c.Start(ctx); err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}
	defer func() {
		if closeErr := c.Close(); closeErr != nil {
			a.logger.Error("Container close failed", zap.Error(closeErr))
			if err == nil {
				err = closeErr
			}
		}
	}()

	services := c.Services()
	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:            a.cfg.Server.Host,
		Port:            a.cfg.Server.Port,
		Mode:            a.cfg.Server.Mode,
		ReadTimeout:     a.cfg.Server.ReadTimeout,
		WriteTimeout:    a.cfg.Server.WriteTimeout,
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
		MaxUploadBytes:  a.cfg.Server.MaxUploadBytes,
	}, httpapi.Dependencies{
		Loans:         services.Loans,
		Workflow:      services.Workflow,
		Clients:       services.Clients,
		Matches:       services.Matches,
		Notifications: services.Notifications,
		Transfer:      services.Transfer,
		Staff:         c.Repositories().Staff,
		Health: func(ctx context.Context) (bool, interface{}) {
			status := c.Health(ctx)
			return status.Overall, status.Components
		},
	}, container.NewLoggerAdapter(a.logger.Named("http")))

	return server.Start(ctx)
}
