package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/podiumreach/speaker-directory-go/internal/cache"
	"github.com/podiumreach/speaker-directory-go/internal/config"
	"github.com/podiumreach/speaker-directory-go/internal/directory"
	"github.com/podiumreach/speaker-directory-go/internal/domain"
	"github.com/podiumreach/speaker-directory-go/internal/enrich"
	"github.com/podiumreach/speaker-directory-go/internal/server"
	"github.com/podiumreach/speaker-directory-go/internal/sheets"
	"github.com/podiumreach/speaker-directory-go/internal/store"
	"github.com/podiumreach/speaker-directory-go/internal/suggest"
)

// Container bundles the assembled services. Everything except the directory
// itself is optional; a bare container still serves the fallback set.
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Directory *directory.Service
	Server    *server.Server

	closers []func()
}

// Build assembles the dependency graph. Unreachable optional infrastructure
// (Redis, Postgres, Sheets, AI) is logged and skipped rather than failing
// startup; the directory degrades accordingly.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	fallback, err := domain.LoadFallbackSpeakers()
	if err != nil {
		return nil, fmt.Errorf("failed to load fallback speakers: %w", err)
	}

	// Snapshot store, optional.
	var snapshots directory.SnapshotStore
	var cacheSvc *cache.Service
	if cfg.HasRedis() {
		cacheSvc, err = cache.NewService(cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			logger.Warn("Redis unavailable, snapshot rung disabled", zap.Error(err))
			err = nil
		} else {
			snapshots = cacheSvc
			closers = append(closers, func() {
				_ = cacheSvc.Close()
			})
		}
	}

	// Row source, optional.
	var source directory.RowSource
	sheetsClient, err := sheets.NewClient(ctx, sheets.Config{
		APIKey:          cfg.Sheets.APIKey,
		CredentialsFile: cfg.Sheets.CredentialsFile,
		SpreadsheetID:   cfg.Sheets.SpreadsheetID,
		ReadRange:       cfg.Sheets.ReadRange,
		FetchTimeout:    cfg.Sheets.FetchTimeout,
	}, logger)
	switch {
	case err == sheets.ErrNotConfigured:
		logger.Warn("Sheets source not configured, directory will serve degraded data")
		err = nil
	case err != nil:
		logger.Warn("Sheets source unavailable, directory will serve degraded data", zap.Error(err))
		err = nil
	default:
		source = sheetsClient
	}

	// Video enrichment, optional.
	var enricher directory.Enricher
	if cfg.Directory.EnrichVideos {
		enricher = enrich.NewEnricher(ctx, cfg.YouTube.APIKey, logger)
	}

	dir := directory.NewService(source, snapshots, enricher, fallback, directory.Config{
		TTL:           cfg.Directory.TTL,
		FeaturedLimit: cfg.Directory.FeaturedLimit,
	}, logger)

	// AI suggestion chain, optional.
	var suggester *suggest.Service
	if cfg.AI.GeminiAPIKey != "" {
		providers := make([]suggest.JSONProvider, 0, 2)

		gemini, gerr := suggest.NewGeminiProvider(ctx, cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel, logger)
		if gerr != nil {
			logger.Warn("Gemini provider unavailable", zap.Error(gerr))
		} else {
			providers = append(providers, gemini)
		}

		if cfg.AI.EnableFallback {
			if openaiProvider := suggest.NewOpenAIProvider(cfg.AI.OpenAIAPIKey, cfg.AI.OpenAIModel, logger); openaiProvider != nil {
				providers = append(providers, openaiProvider)
			}
		}

		if len(providers) > 0 {
			suggester = suggest.NewService(providers, dir, logger)
			logger.Info("AI suggestions enabled", zap.Int("providers", len(providers)))
		}
	}

	// Inquiry store, optional.
	var inquiries *store.InquiryStore
	if cfg.HasPostgres() {
		postgresSvc, perr := store.NewPostgresService(store.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if perr != nil {
			logger.Warn("Postgres unavailable, inquiry endpoints disabled", zap.Error(perr))
		} else {
			closers = append(closers, func() {
				_ = postgresSvc.Close()
			})
			inquiries = store.NewInquiryStore(postgresSvc, logger)
			if serr := inquiries.EnsureSchema(ctx); serr != nil {
				return nil, fmt.Errorf("failed to ensure inquiry schema: %w", serr)
			}
		}
	}

	srv := server.New(server.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}, dir, suggester, inquiries, logger)

	// Warm the collection so the first request is served hot. A degraded
	// warm-up is fine; the directory falls back on its own.
	if count := len(dir.GetAllSpeakers(ctx)); count > 0 {
		logger.Info("Directory warmed", zap.Int("speakers", count))
	}

	return &Container{
		Config:    cfg,
		Logger:    logger,
		Directory: dir,
		Server:    srv,
		closers:   closers,
	}, nil
}

// Close releases infrastructure connections in reverse build order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
