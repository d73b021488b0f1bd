// Package main is the entry point for the Parts Engine API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/torquepoint/parts-engine/internal/cache"
	"github.com/torquepoint/parts-engine/internal/config"
	"github.com/torquepoint/parts-engine/internal/diagnose"
	"github.com/torquepoint/parts-engine/internal/observability"
	"github.com/torquepoint/parts-engine/internal/search"
	"github.com/torquepoint/parts-engine/internal/storage"
	"github.com/torquepoint/parts-engine/pkg/engine"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// Missing .env is fine; environment may be set by the platform
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})

	provider, err := search.NewHTTPProvider(search.HTTPProviderConfig{
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Timeout: cfg.Provider.Timeout,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create search provider")
		os.Exit(1)
	}

	var cacheClient cache.Client
	switch cfg.Cache.Driver {
	case "redis":
		redisClient, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, falling back to memory cache")
			cacheClient = cache.NewMemoryClient(cfg.Cache.MaxEntries)
		} else {
			cacheClient = redisClient
		}
	default:
		cacheClient = cache.NewMemoryClient(cfg.Cache.MaxEntries)
	}
	defer cacheClient.Close()

	deps := engine.Deps{
		Logger:   logger,
		Provider: provider,
		Cache:    cacheClient,
	}

	// Pricing rules live in Postgres; without a DSN the engine falls back to
	// the built-in default markup and rule management routes are disabled.
	var ruleRepo *storage.RuleRepository
	if cfg.Database.Rules.DSN != "" {
		rulesDB, err := storage.OpenRulesDB(
			cfg.Database.Rules.DSN,
			cfg.Database.Rules.MaxOpenConns,
			cfg.Database.Rules.MaxIdleConns,
			cfg.Database.Rules.ConnMaxLifetime,
		)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to open rules database")
			os.Exit(1)
		}
		defer rulesDB.Close()

		ruleRepo = storage.NewRuleRepository(rulesDB)
		deps.Rules = ruleRepo
	} else {
		logger.Warn().Msg("No rules database configured, using default markup only")
	}

	if cfg.Database.History.Path != "" {
		historyDB, err := storage.OpenHistoryDB(cfg.Database.History.Path, cfg.Database.History.JournalMode)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to open history database, search history disabled")
		} else {
			defer historyDB.Close()
			deps.History = storage.NewHistoryStore(historyDB)
		}
	}

	if cfg.Diagnosis.BaseURL != "" {
		diagnoser, err := diagnose.NewClient(diagnose.Config{
			BaseURL: cfg.Diagnosis.BaseURL,
			APIKey:  cfg.Diagnosis.APIKey,
			Timeout: cfg.Diagnosis.Timeout,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to create diagnosis client, symptom search disabled")
		} else {
			deps.Diagnoser = diagnoser
		}
	}

	eng, err := engine.New(deps, engine.Config{
		Orchestrator: search.OrchestratorConfig{
			MaxWorkers:      cfg.Search.MaxWorkers,
			PerQueryTimeout: cfg.Search.PerQueryTimeout,
			Limit:           cfg.Provider.Limit,
			Condition:       cfg.Provider.Condition,
		},
		ResultCache: search.ResultCacheConfig{
			TTL:     cfg.Cache.TTL,
			Enabled: cfg.Search.CacheResults,
		},
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create engine")
		os.Exit(1)
	}

	router := NewRouter(logger, cfg, eng, ruleRepo)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}
