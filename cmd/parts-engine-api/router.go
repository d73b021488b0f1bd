// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/torquepoint/parts-engine/cmd/parts-engine-api/handlers"
	"github.com/torquepoint/parts-engine/cmd/parts-engine-api/middleware"
	"github.com/torquepoint/parts-engine/internal/config"
	"github.com/torquepoint/parts-engine/internal/observability"
	"github.com/torquepoint/parts-engine/internal/storage"
	"github.com/torquepoint/parts-engine/pkg/engine"
)

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, eng *engine.Engine, ruleRepo *storage.RuleRepository) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(cfg.Server.WriteTimeout))

	// Health checks (unauthenticated)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"parts-engine"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ready"}`))
	})

	searchHandler := handlers.NewSearchHandler(logger, eng)
	filtersHandler := handlers.NewFiltersHandler(logger, eng)
	priceHandler := handlers.NewPriceHandler(logger, eng)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{
			Enabled: cfg.Auth.Enabled,
			Token:   cfg.Auth.Token,
		}))

		r.Route("/search", func(r chi.Router) {
			r.Post("/", searchHandler.Search)
			r.Post("/diagnose", searchHandler.Diagnose)
		})

		r.Post("/filters/parse", filtersHandler.Parse)
		r.Post("/price/preview", priceHandler.Preview)

		// Rule management requires the Postgres store
		if ruleRepo != nil {
			rulesHandler := handlers.NewRulesHandler(logger, ruleRepo)
			r.Route("/shops/{shopID}/rules", func(r chi.Router) {
				r.Get("/", rulesHandler.List)
				r.Post("/", rulesHandler.Create)
				r.Route("/{ruleID}", func(r chi.Router) {
					r.Get("/", rulesHandler.Get)
					r.Put("/", rulesHandler.Update)
					r.Delete("/", rulesHandler.Delete)
				})
			})
		}
	})

	return r
}
