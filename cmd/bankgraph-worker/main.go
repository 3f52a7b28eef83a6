package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"bankgraph/internal/amqp"
	"bankgraph/internal/config"
	"bankgraph/internal/ledger"
	applog "bankgraph/internal/log"
	"bankgraph/internal/services"
	"bankgraph/internal/storage"
	"bankgraph/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: "bankgraph-worker",
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the ingest worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPIngestQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// The worker records directly; it never republishes what it consumed.
	ingest := services.NewIngestService(ledger.New(), repo, nil)
	defer ingest.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ingest.Replay(ctx); err != nil {
		logger.Error("Failed to replay ledger from storage", "error", err)
		os.Exit(1)
	}

	ingestWorker := worker.NewIngestWorker(ingest)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			err := amqpClient.ConsumeTransactions(ctx, func(msg *amqp.TransactionMessage) error {
				return ingestWorker.HandleTransactionMessage(ctx, msg)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			logger.Error("Message consumption failed, retrying",
				"error", err, "retry_in", cfg.ConsumeRetryInterval)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(cfg.ConsumeRetryInterval):
			}
		}
	})

	logger.Info("Ingest worker started",
		"queue", cfg.AMQPIngestQueue,
		"transactions", ingest.Ledger().TransactionCount())

	if err := g.Wait(); err != nil {
		logger.Error("Worker terminated with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
