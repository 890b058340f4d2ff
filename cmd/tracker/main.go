package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/edge-tracker/internal/adapters/clickhouse"
	"github.com/selivandex/edge-tracker/internal/adapters/config"
	"github.com/selivandex/edge-tracker/internal/adapters/database"
	redisAdapter "github.com/selivandex/edge-tracker/internal/adapters/redis"
	"github.com/selivandex/edge-tracker/internal/adapters/telegram"
	"github.com/selivandex/edge-tracker/internal/persistence"
	"github.com/selivandex/edge-tracker/internal/tracker"
	"github.com/selivandex/edge-tracker/internal/workers"
	"github.com/selivandex/edge-tracker/pkg/logger"
	"github.com/selivandex/edge-tracker/pkg/worker"
)

func main() {
	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("edge tracker starting",
		zap.Float64("starting_capital", cfg.Tracker.StartingCapital),
		zap.Float64("breakeven_win_rate", cfg.Tracker.BreakevenWinRate),
	)

	// PostgreSQL: tracker state + trade log
	db, err := initDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// ClickHouse: equity time series (optional)
	var equityStore *persistence.ClickHouseStore
	if cfg.ClickHouse.Enabled {
		ch, err := clickhouse.New(&cfg.ClickHouse)
		if err != nil {
			logger.Warn("ClickHouse not available, equity snapshots disabled", zap.Error(err))
		} else {
			defer ch.Close()
			equityStore = persistence.NewClickHouseStore(ch.DB())
		}
	}

	gateway := persistence.NewGateway(persistence.NewPostgresStore(db.DB()), equityStore)

	// Redis writer locks (optional, multi-pod deployments)
	var locks tracker.WriterLockFactory
	if cfg.Redis.Enabled {
		redisClient, err := redisAdapter.New(&cfg.Redis)
		if err != nil {
			logger.Warn("redis not available, writer locks disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			locks = redisClient.LockFactory()
		}
	}

	// Telegram verdict alerts (optional)
	var notifier tracker.Notifier
	if cfg.Telegram.BotToken != "" {
		tg, err := telegram.NewNotifier(&cfg.Telegram)
		if err != nil {
			logger.Error("failed to create telegram notifier", zap.Error(err))
		} else {
			notifier = tg
		}
	}

	registry := tracker.NewRegistry(tracker.Config{
		StartingCapital:  cfg.Tracker.StartingCapital,
		BreakevenWinRate: cfg.Tracker.BreakevenWinRate,
		PriorAlpha:       cfg.Tracker.PriorAlpha,
		PriorBeta:        cfg.Tracker.PriorBeta,
		RecentTradeCap:   cfg.Tracker.RecentTradeCap,
		Interval:         cfg.Tracker.Interval,
	}, gateway)

	service := tracker.NewService(registry, gateway, notifier, locks)
	defer service.ReleaseWriterLocks(context.Background())

	// Periodic equity snapshots
	snapshotWorker := worker.RunBackground(ctx,
		workers.NewEquitySnapshotWorker(service),
		cfg.Tracker.SnapshotInterval,
	)

	logger.Info("edge tracker ready")

	<-ctx.Done()
	logger.Info("shutting down gracefully...")
	snapshotWorker.Stop(10 * time.Second)

	return nil
}

// initDatabase initializes database connection and runs migrations
func initDatabase(cfg *config.Config) (*database.DB, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(db.Conn(), "./migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}
