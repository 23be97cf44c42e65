package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"buste/internal/amqp"
	"buste/internal/cli"
	"buste/internal/log"
	"buste/internal/mirror"
	gmirror "buste/internal/mirror/google"
	"buste/internal/mirror/memory"
	"buste/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting buste-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// Balance snapshots go to Google Sheets when a spreadsheet is
	// configured; otherwise they are kept in memory, which at least keeps
	// the queue drained during local development.
	var writer mirror.BalanceWriter
	if cfg.GoogleSpreadsheetID != "" {
		sheetsWriter, err := gmirror.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets writer", "error", err)
			os.Exit(1)
		}
		logger.Info("Mirroring balances to Google Sheets", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		writer = sheetsWriter
	} else {
		logger.Info("Google Sheets disabled - keeping balance snapshots in memory")
		writer = memory.New()
	}

	mirrorWorker := worker.NewMirrorWorker(repo, writer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeEnvelopeEvents(ctx, mirrorWorker.HandleEnvelopeEvent)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
