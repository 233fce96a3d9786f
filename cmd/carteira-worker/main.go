// Command carteira-worker keeps the derived caches fresh: it consumes
// invalidation messages, refetches collections from the spreadsheet
// backend and persists authoritative snapshots to SQLite.
package main

import (
	"context"
	"time"

	"carteira/internal/amqp"
	"carteira/internal/backend"
	"carteira/internal/cache"
	"carteira/internal/cli"
	"carteira/internal/log"
	"carteira/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	logger.Info("Starting carteira-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	snapshots := cli.InitSnapshots(logger, cfg.SQLiteDBPath)
	defer snapshots.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result, err := backend.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err)
		return
	}
	defer result.Cleanup()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		return
	}
	defer amqpClient.Close()

	store := cache.NewStore()
	refresher := worker.NewRefreshWorker(result.Backend, store, snapshots)

	for _, year := range cfg.TrackedYears {
		if err := refresher.WarmFromSnapshots(ctx, year); err != nil {
			logger.Warn("No snapshot to warm from", log.FieldYear, year, log.FieldError, err)
		}
		if err := refresher.RefreshYear(ctx, year); err != nil {
			logger.Error("Startup refresh failed", log.FieldYear, year, log.FieldError, err)
		}
	}

	go func() {
		if err := amqpClient.ConsumeInvalidations(ctx, refresher.HandleInvalidation); err != nil {
			if err != context.Canceled {
				logger.Error("Message consumption failed", log.FieldError, err)
			}
			cancel()
		}
	}()

	go refresher.Run(ctx, cfg.RefreshInterval)

	shutdownCtx, done := cli.GracefulShutdown(logger, 10*time.Second, func() {
		cancel()
	})
	cli.WaitForShutdown(shutdownCtx, done)
}
