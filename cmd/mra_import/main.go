// Command mra_import loads transaction CSV files from disk through the same pipeline
// as the upload endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/SscSPs/money_records_app/internal/app"
	"github.com/SscSPs/money_records_app/internal/apperrors"
	"github.com/SscSPs/money_records_app/internal/core/domain"
	portssvc "github.com/SscSPs/money_records_app/internal/core/ports/services"
	"github.com/SscSPs/money_records_app/internal/core/services"
	"github.com/SscSPs/money_records_app/internal/middleware"
	"github.com/SscSPs/money_records_app/internal/platform/config"
	"github.com/fatih/color"
)

const defaultTimeout = 5 * time.Minute

func main() {
	timeout := flag.Duration("timeout", defaultTimeout, "Overall time limit for the import")
	verbose := flag.Bool("v", false, "Log at debug level")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <file.csv> [file.csv...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(logger, *timeout, flag.Args()); err != nil {
		color.Red("import failed: %v", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, timeout time.Duration, paths []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(middleware.WithLogger(context.Background(), logger), timeout)
	defer cancel()

	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	importer := services.NewServiceContainer(cfg, store.Repos).Import

	failed := 0
	for _, path := range paths {
		if err := importFile(ctx, importer, path); err != nil {
			failed++
			color.Red("✗ %s: %v", path, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}

func importFile(ctx context.Context, importer portssvc.ImportSvc, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := importer.ImportTransactions(ctx, f)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoValidRows) {
			return errors.New("no valid transactions to save")
		}
		return err
	}
	printSummary(path, result)
	return nil
}

func printSummary(path string, result *domain.ImportResult) {
	color.Green("✓ %s: %d inserted", path, result.Inserted)
	for _, r := range result.Rejected {
		color.Yellow("  row %d rejected (%s) %q", r.Row, r.Reason, r.Value)
	}
	if len(result.Degraded) > 0 {
		color.Cyan("  rows stored without conversion: %v", result.Degraded)
	}
}
