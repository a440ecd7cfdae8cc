package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/estrelalabs/telereport/internal/api"
	"github.com/estrelalabs/telereport/internal/auth"
	"github.com/estrelalabs/telereport/internal/config"
	"github.com/estrelalabs/telereport/internal/ingestion"
	"github.com/estrelalabs/telereport/internal/metrics"
	"github.com/estrelalabs/telereport/internal/storage"
	"github.com/estrelalabs/telereport/pkg/middleware"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Str("timezone", cfg.Timezone).
		Str("queue_target", cfg.QueueTarget).
		Msg("starting telereport server")

	// Create storage backend
	storeCfg := storage.LoadStoreConfig(cfg.DataDir)
	var store storage.Store
	if storeCfg.Mode == storage.ModeSQLite {
		sqlStore, err := storage.NewSQLiteStore(storeCfg, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open storage")
		}
		defer sqlStore.Close()
		store = sqlStore
	} else {
		log.Warn().Msg("persistence disabled, using noop store")
		store = storage.NewNoopStore()
	}

	// Create the ingestion pipeline
	queueMode, err := ingestion.ParseQueueMatchMode(cfg.QueueMatchMode)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid queue match mode")
	}
	vocab := ingestion.DefaultVocabulary()
	if cfg.QueueTarget != "" {
		vocab.QueueTarget = cfg.QueueTarget
	}
	heur := ingestion.DefaultHeuristics()
	heur.SnifferSampleRows = cfg.SnifferSampleRows
	heur.DayFirstSampleSize = cfg.DayFirstSampleSize
	heur.DayFirstRatio = cfg.DayFirstRatio
	heur.MinParsedFloor = cfg.MinParsedFloor
	heur.MinParsedFraction = cfg.MinParsedFraction

	pipeline, err := ingestion.NewPipeline(ingestion.Options{
		Vocabulary: vocab,
		Heuristics: heur,
		Timezone:   cfg.Timezone,
		QueueMode:  queueMode,
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pipeline")
	}

	// Create upload file storage
	files, err := api.NewCallFiles(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create calls directory")
	}

	// Create the authenticator
	authenticator, err := auth.NewAuthenticator(cfg.AdminPassword, cfg.JWTSecret, cfg.TokenTTL, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create authenticator")
	}

	// Create handlers
	loginHandler := api.NewLoginHandler(authenticator, log.Logger)
	reportHandler := api.NewReportHandler(store, pipeline, files, log.Logger)
	adminHandler := api.NewAdminHandler(store, pipeline, files, log.Logger)
	exportHandler := api.NewExportHandler(store, pipeline, files, log.Logger)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register public routes (no auth required)
	r.Get("/health", healthHandler)
	r.Post("/admin/login", loginHandler.HandleLogin)
	r.Get("/months", reportHandler.HandleListMonths)
	r.Get("/report/{ym}", reportHandler.HandleReport)
	r.Get("/report/{ym}/store/{storeSlug}", reportHandler.HandleStoreDetail)
	r.Get("/export/{ym}.xlsx", exportHandler.HandleExport)

	// Internal routes (operational, not exposed publicly)
	r.Route("/internal", func(r chi.Router) {
		r.Get("/metrics", metrics.Get().Handler())
	})

	// Admin routes behind token auth
	r.Group(func(r chi.Router) {
		r.Use(authenticator.Middleware)
		r.Post("/admin/upload", adminHandler.HandleUpload)
		r.Get("/admin/volumes/{ym}", adminHandler.HandleGetVolumes)
		r.Put("/admin/volumes/{ym}", adminHandler.HandlePutVolumes)
		r.Delete("/admin/months/{ym}", adminHandler.HandleDeleteMonth)
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"telereport"}`)
}
