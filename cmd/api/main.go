package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lutefd/tasas-board/internal/cache"
	"github.com/Lutefd/tasas-board/internal/commons"
	"github.com/Lutefd/tasas-board/internal/handler"
	"github.com/Lutefd/tasas-board/internal/logger"
	"github.com/Lutefd/tasas-board/internal/lookup"
	"github.com/Lutefd/tasas-board/internal/render"
	"github.com/Lutefd/tasas-board/internal/repository"
	"github.com/Lutefd/tasas-board/internal/server"
	"github.com/Lutefd/tasas-board/internal/service"
	"github.com/Lutefd/tasas-board/internal/worker"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

type dependencies struct {
	cache        cache.Cache
	logRepo      repository.LogRepository
	partitionMgr PartitionManager
	refresher    Refresher
	server       Server
}

type Refresher interface {
	Start(ctx context.Context)
}

type PartitionManager interface {
	Start(ctx context.Context) error
}

type Server interface {
	Start(ctx context.Context) error
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Error loading .env file: %v", err)
	}

	config, err := commons.LoadConfig(true)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	deps, err := initDependencies(config)
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, deps); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func initDependencies(config commons.Config) (*dependencies, error) {
	tables, err := lookup.LoadTables(config.LookupTablesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load lookup tables: %w", err)
	}
	boards := service.NewSpanishBoardService(tables, config.Location)

	renderer, err := render.NewRenderer(config.RefreshInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize renderer: %w", err)
	}

	deps := &dependencies{}

	if config.UsesRedis() {
		redisCache, err := cache.NewRedisCache(config.RedisAddr, config.RedisPass)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		deps.cache = redisCache
	} else {
		deps.cache = cache.NewMemoryCache()
	}

	if config.UsesPostgres() {
		logRepo, err := repository.NewPostgresLogRepository(config.PostgresConn, nil)
		if err != nil {
			deps.cache.Close()
			return nil, fmt.Errorf("failed to initialize log repository: %w", err)
		}
		deps.logRepo = logRepo
		deps.partitionMgr = logger.NewPartitionManager(logRepo)
	}

	var refresher handler.Refresher
	if config.RefresherEnabled {
		source, err := worker.NewSheetSource(config)
		if err != nil {
			deps.cache.Close()
			return nil, fmt.Errorf("failed to initialize sheet source: %w", err)
		}
		boardRefresher := worker.NewBoardRefresher(source, boards, deps.cache, config.RefreshInterval,
			worker.WithFetchTimeout(config.FetchTimeout),
			worker.WithBoardTTL(config.BoardTTL),
		)
		refresher = boardRefresher
		deps.refresher = boardRefresher
	}

	dashboard := handler.NewDashboardHandler(deps.cache, boards, renderer, refresher)
	deps.server = server.NewServer(config, dashboard)

	return deps, nil
}

// run serves until ctx is done. The refresher, when present, shares the
// server's lifetime.
func run(ctx context.Context, deps *dependencies) error {
	defer closeDependencies(deps)

	if deps.logRepo != nil {
		logger.InitLogger(deps.logRepo)
		if err := deps.partitionMgr.Start(ctx); err != nil {
			return fmt.Errorf("failed to start partition manager: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return deps.server.Start(gctx)
	})
	if deps.refresher != nil {
		g.Go(func() error {
			deps.refresher.Start(gctx)
			return nil
		})
	}

	return g.Wait()
}

func closeDependencies(deps *dependencies) {
	if err := deps.cache.Close(); err != nil {
		log.Printf("Error closing cache: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commons.LoggerShutdownTimeout)
	defer cancel()
	if err := logger.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down logger: %v", err)
	}
}
