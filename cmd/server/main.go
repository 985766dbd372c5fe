package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/case-import-api/internal/api"
	"github.com/case-import-api/internal/config"
	"github.com/case-import-api/internal/database"
	"github.com/case-import-api/internal/mapping"
	"github.com/case-import-api/internal/options"
	"github.com/case-import-api/internal/repository"
	"github.com/case-import-api/internal/service"
	"github.com/case-import-api/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "json")
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting Case Import API server...")

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Database.Migrations); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Dropdown option lookup
	lookup, closeLookup := options.FromConfig(context.Background(), repos.Option, cfg.Options, log)
	defer closeLookup()

	// Street to sector assignments
	sectors, err := mapping.LoadSectorMap(cfg.Import.SectorMapPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load sector map")
	}
	log.Info().Int("streets", len(sectors)).Msg("Sector map loaded")

	// Initialize services
	services := service.NewServices(repos, lookup, sectors, cfg, log)

	// Initialize router
	router := api.NewRouter(services, db, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	waitForShutdown(srv, cfg, log)
}

// waitForShutdown blocks until SIGINT or SIGTERM, then drains in-flight
// requests within the configured timeout.
func waitForShutdown(srv *http.Server, cfg *config.Config, log zerolog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	log.Info().Msg("Server exited gracefully")
}
