package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davidbugayov/statement-importer/internal/domain/categorization"
	"github.com/davidbugayov/statement-importer/internal/domain/import/csvimport"
	"github.com/davidbugayov/statement-importer/internal/domain/import/normalizer"
	"github.com/davidbugayov/statement-importer/internal/domain/import/ozon"
	"github.com/davidbugayov/statement-importer/internal/domain/import/registry"
	importservice "github.com/davidbugayov/statement-importer/internal/domain/import/service"
	"github.com/davidbugayov/statement-importer/internal/domain/transaction"
	"github.com/davidbugayov/statement-importer/pkg/config"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config   *config.Config
	Logger   *slog.Logger
	Pool     *pgxpool.Pool
	Repo     transaction.Repository
	Registry *registry.Registry
	Importer *importservice.Service
}

// NewDependencies wires the application together from configuration.
func NewDependencies(ctx context.Context) (*Dependencies, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg.Logging.Level)
	slog.SetDefault(logger)

	deps := &Dependencies{Config: cfg, Logger: logger}

	if cfg.Database.Enabled {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		deps.Pool = pool
		deps.Repo = transaction.NewPostgresRepository(pool)
		logger.Info("using postgres repository", "host", cfg.Database.Host)
	} else {
		deps.Repo = transaction.NewMemoryRepository()
		logger.Info("using in-memory repository")
	}

	rules := categorization.DefaultRules()
	if deps.Pool != nil {
		overrides, err := normalizer.NewOverrideStore(deps.Pool).LoadRules(ctx)
		if err != nil {
			logger.Warn("failed to load category overrides", "error", err)
		} else if len(overrides) > 0 {
			logger.Info("loaded category overrides", "count", len(overrides))
			rules = append(overrides, rules...)
		}
	}

	detector := categorization.NewDetectorWithRules(rules, logger)
	deps.Registry = registry.New(logger,
		ozon.NewHandler(detector, logger),
		csvimport.NewHandler(csvimport.DefaultConfig(), detector, logger),
	)
	deps.Importer = importservice.New(deps.Registry, deps.Repo, logger, cfg.Import.BatchSize)

	return deps, nil
}

// Close releases held resources.
func (d *Dependencies) Close() {
	if d.Pool != nil {
		d.Pool.Close()
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
