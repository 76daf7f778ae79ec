package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/service"
	"github.com/2caleb/gold-charp-investments-sub003/internal/container"
)

const (
	kindClients      = "clients"
	kindApplications = "applications"

	maxParallelImports = 4
)

func validKind(kind string) error {
	switch kind {
	case kindClients, kindApplications:
		return nil
	}
	return NewExitError(2, fmt.Errorf("unknown kind %q: want %s or %s", kind, kindClients, kindApplications))
}

func newImportCommand(app *App) *cobra.Command {
	var createdBy string
	cmd := &cobra.Command{
		Use:   "import <clients|applications> <file.xlsx>...",
		Short: "Import clients or loan applications from Excel workbooks",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validKind(args[0]); err != nil {
				return err
			}
			return app.withContainer(cmd.Context(), func(c *container.Container) error {
				return runImports(cmd.Context(), cmd.OutOrStdout(), c.Services().Transfer, args[0], args[1:], createdBy)
			})
		},
	}
	cmd.Flags().StringVar(&createdBy, "created-by", "", "staff id recorded as creator of imported applications")
	return cmd
}

type importResult struct {
	file   string
	report *service.ImportReport
}

// runImports imports files concurrently and prints one report per file in
// argument order. Any file that cannot be read at all fails the command.
func runImports(ctx context.Context, out io.Writer, transfer service.TransferService, kind string, files []string, createdBy string) error {
	results := make([]importResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelImports)
	for i, file := range files {
		g.Go(func() error {
			report, err := importFile(gctx, transfer, kind, file, createdBy)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			results[i] = importResult{file: file, report: report}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		fmt.Fprintln(out, renderImportReport(res.file, res.report))
		failed += len(res.report.Failed)
	}
	if failed > 0 {
		return NewExitError(3, fmt.Errorf("%d rows were not imported", failed))
	}
	return nil
}

func importFile(ctx context.Context, transfer service.TransferService, kind, path, createdBy string) (*service.ImportReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := filepath.Base(path)
	if kind == kindClients {
		return transfer.ImportClients(ctx, name, f)
	}
	return transfer.ImportApplications(ctx, name, f, createdBy)
}

func newExportCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export <clients|applications> <file.xlsx>",
		Short: "Export clients or loan applications to an Excel workbook",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validKind(args[0]); err != nil {
				return err
			}
			return app.withContainer(cmd.Context(), func(c *container.Container) error {
				n, err := exportFile(cmd.Context(), c.Services().Transfer, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d %s to %s\n", n, args[0], args[1])
				return nil
			})
		},
	}
}

func exportFile(ctx context.Context, transfer service.TransferService, kind, path string) (n int, err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	if kind == kindClients {
		return transfer.ExportClients(ctx, f)
	}
	return transfer.ExportApplications(ctx, f)
}
