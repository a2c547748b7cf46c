// Command batch processes every pending document once and exits. It
// is meant to run on a schedule next to the API service.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/emdili/docrag/internal/app"
	"github.com/emdili/docrag/internal/config"
	"github.com/emdili/docrag/internal/core/ingest"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg := config.LoadConfig()
	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	driver := ingest.NewBatchDriver(application.Registry, application.Pipeline, cfg.BatchWorkers, logger)
	processed, err := driver.RunPendingBatch(ctx, cfg.BatchPageLimit)
	if err != nil {
		logger.Error("batch run aborted", "processed", processed, "error", err)
		os.Exit(1)
	}
	logger.Info("batch run complete", "processed", processed)
}
