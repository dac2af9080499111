package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lutefd/tasas-board/internal/cache"
	"github.com/Lutefd/tasas-board/internal/commons"
	"github.com/Lutefd/tasas-board/internal/logger"
	"github.com/Lutefd/tasas-board/internal/lookup"
	"github.com/Lutefd/tasas-board/internal/repository"
	"github.com/Lutefd/tasas-board/internal/service"
	"github.com/Lutefd/tasas-board/internal/worker"
	"github.com/joho/godotenv"
)

type dependencies struct {
	cache        cache.Cache
	logRepo      repository.LogRepository
	refresher    BoardRefresher
	partitionMgr PartitionManager
}

type BoardRefresher interface {
	Start(ctx context.Context)
}

type PartitionManager interface {
	Start(ctx context.Context) error
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Error loading .env file: %v", err)
	}

	config, err := commons.LoadConfig(false)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	deps, err := initDependencies(config)
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- runWorker(ctx, deps)
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("Worker failed: %v", err)
		}
	case <-signalChan:
		log.Println("Shutdown signal received, initiating graceful shutdown...")
		cancel()

		select {
		case <-errChan:
			log.Println("Worker shut down gracefully")
		case <-time.After(30 * time.Second):
			log.Println("Shutdown timed out")
		}
	}
}

// initDependencies wires a headless refresher. Without Redis nothing could
// read what it publishes, so REDIS_ADDR is required here.
func initDependencies(config commons.Config) (*dependencies, error) {
	if !config.UsesRedis() {
		return nil, fmt.Errorf("REDIS_ADDR is required to publish boards")
	}

	tables, err := lookup.LoadTables(config.LookupTablesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load lookup tables: %w", err)
	}

	source, err := worker.NewSheetSource(config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheet source: %w", err)
	}

	redisCache, err := cache.NewRedisCache(config.RedisAddr, config.RedisPass)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	deps := &dependencies{cache: redisCache}

	if config.UsesPostgres() {
		logRepo, err := repository.NewPostgresLogRepository(config.PostgresConn, nil)
		if err != nil {
			redisCache.Close()
			return nil, fmt.Errorf("failed to initialize log repository: %w", err)
		}
		deps.logRepo = logRepo
		deps.partitionMgr = logger.NewPartitionManager(logRepo)
	}

	boards := service.NewSpanishBoardService(tables, config.Location)
	deps.refresher = worker.NewBoardRefresher(source, boards, redisCache, config.RefreshInterval,
		worker.WithFetchTimeout(config.FetchTimeout),
		worker.WithBoardTTL(config.BoardTTL),
	)

	return deps, nil
}

func runWorker(ctx context.Context, deps *dependencies) error {
	defer func() {
		if err := deps.cache.Close(); err != nil {
			log.Printf("Error closing cache: %v", err)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), commons.LoggerShutdownTimeout)
		defer cancel()
		if err := logger.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down logger: %v", err)
		}
	}()

	if deps.logRepo != nil {
		logger.InitLogger(deps.logRepo)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if deps.partitionMgr != nil {
		if err := deps.partitionMgr.Start(ctx); err != nil {
			return fmt.Errorf("failed to start partition manager: %w", err)
		}
	}

	deps.refresher.Start(ctx)
	logger.Info("Worker shutting down...")
	return ctx.Err()
}
