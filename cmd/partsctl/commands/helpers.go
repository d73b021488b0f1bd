package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/torquepoint/parts-engine/cmd/partsctl/ui"
	"github.com/torquepoint/parts-engine/internal/cache"
	"github.com/torquepoint/parts-engine/internal/config"
	"github.com/torquepoint/parts-engine/internal/diagnose"
	"github.com/torquepoint/parts-engine/internal/observability"
	"github.com/torquepoint/parts-engine/internal/search"
	"github.com/torquepoint/parts-engine/internal/storage"
	"github.com/torquepoint/parts-engine/pkg/engine"
)

// loadConfig reads configuration and initializes the UI for a command run.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	ui.Init(noColor, verbose)
	return cfg, nil
}

// cliLogger builds a console logger that stays quiet unless verbose is set.
func cliLogger(cfg *config.Config) *observability.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return observability.NewLogger(observability.LogConfig{
		Level:       level,
		Format:      "console",
		ServiceName: cfg.Observability.ServiceName,
	})
}

// buildEngine wires a full engine from config. The returned cleanup closes
// any database and cache handles that were opened.
func buildEngine(cfg *config.Config) (*engine.Engine, func(), error) {
	logger := cliLogger(cfg)

	provider, err := search.NewHTTPProvider(search.HTTPProviderConfig{
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Timeout: cfg.Provider.Timeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create provider: %w", err)
	}

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	deps := engine.Deps{
		Logger:   logger,
		Provider: provider,
	}

	cacheClient := cache.NewMemoryClient(cfg.Cache.MaxEntries)
	cleanups = append(cleanups, func() { cacheClient.Close() })
	deps.Cache = cacheClient

	if cfg.Database.Rules.DSN != "" {
		rulesDB, err := storage.OpenRulesDB(
			cfg.Database.Rules.DSN,
			cfg.Database.Rules.MaxOpenConns,
			cfg.Database.Rules.MaxIdleConns,
			cfg.Database.Rules.ConnMaxLifetime,
		)
		if err != nil {
			ui.Warning("rules database unavailable, using default markup: %v", err)
		} else {
			cleanups = append(cleanups, func() { rulesDB.Close() })
			deps.Rules = storage.NewRuleRepository(rulesDB)
		}
	}

	if cfg.Database.History.Path != "" {
		historyDB, err := storage.OpenHistoryDB(cfg.Database.History.Path, cfg.Database.History.JournalMode)
		if err != nil {
			ui.Verbose("history database unavailable: %v", err)
		} else {
			cleanups = append(cleanups, func() { historyDB.Close() })
			deps.History = storage.NewHistoryStore(historyDB)
		}
	}

	if cfg.Diagnosis.BaseURL != "" {
		if diagnoser, err := diagnose.NewClient(diagnose.Config{
			BaseURL: cfg.Diagnosis.BaseURL,
			APIKey:  cfg.Diagnosis.APIKey,
			Timeout: cfg.Diagnosis.Timeout,
		}); err == nil {
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
		cleanup()
		return nil, nil, fmt.Errorf("create engine: %w", err)
	}

	return eng, cleanup, nil
}
