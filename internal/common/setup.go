package common

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"txn-aggregation-go/internal/api"
	"txn-aggregation-go/internal/cache"
	"txn-aggregation-go/internal/config"
	"txn-aggregation-go/internal/database"
	"txn-aggregation-go/internal/models"
	"txn-aggregation-go/internal/source"
	"txn-aggregation-go/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	Cache        store.CacheStore
	Source       source.Client
	QueryService *api.AggregationService
}

// janitor is implemented by cache backends that sweep expired entries
type janitor interface {
	StartJanitor(ctx context.Context, interval time.Duration)
}

func InitializeLogger(level string) (*zap.Logger, func()) {
	zapCfg := zap.NewProductionConfig()
	if level != "" {
		atomicLevel, err := zap.ParseAtomicLevel(level)
		if err != nil {
			log.Printf("Unknown log level %q, using info\n", level)
		} else {
			zapCfg.Level = atomicLevel
		}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices wires the cache backend, the transaction source and the
// query service. Cache janitors run until ctx is cancelled or Close is called.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	cacheStore, err := InitializeCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	src, err := InitializeSource(cfg.Source)
	if err != nil {
		cacheStore.Close()
		return nil, err
	}

	return &Services{
		Cache:        cacheStore,
		Source:       src,
		QueryService: api.NewAggregationService(cacheStore, src),
	}, nil
}

func InitializeCache(ctx context.Context, cfg *models.Config) (store.CacheStore, error) {
	var cacheStore store.CacheStore
	switch cfg.Cache.Backend {
	case config.CacheBackendSqlite:
		zap.L().Info("Using SQLite cache", zap.String("path", cfg.Database.Path))
		dbService, err := database.NewService(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		cacheStore = dbService
	case config.CacheBackendMemory, "":
		zap.L().Info("Using in-memory cache")
		cacheStore = cache.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Cache.Backend)
	}

	if j, ok := cacheStore.(janitor); ok && cfg.Cache.CleanupInterval > 0 {
		j.StartJanitor(ctx, cfg.Cache.CleanupInterval)
	}
	return cacheStore, nil
}

func InitializeSource(cfg models.SourceConfig) (source.Client, error) {
	switch cfg.Backend {
	case config.SourceBackendHttp:
		zap.L().Info("Using HTTP transaction source", zap.String("base_url", cfg.BaseURL))
		httpClient, err := source.NewHTTPClient(cfg.BaseURL, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		return httpClient, nil
	case config.SourceBackendStub, "":
		records := source.DefaultFixtures()
		if cfg.FixturesFile != "" {
			loaded, err := source.LoadFixtures(cfg.FixturesFile)
			if err != nil {
				return nil, err
			}
			records = loaded
		}
		zap.L().Info("Using stub transaction source",
			zap.String("fixtures_file", cfg.FixturesFile),
			zap.Int("records", len(records)))
		return source.NewStubClient(records, cfg.PageSize), nil
	default:
		return nil, fmt.Errorf("unsupported source backend: %s", cfg.Backend)
	}
}

func (cs *Services) Close() {
	if cs.Cache != nil {
		cs.Cache.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
