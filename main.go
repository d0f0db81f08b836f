package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/clinique-espoir-be/internal/api"
	"github.com/isdelr/clinique-espoir-be/internal/assistant"
	"github.com/isdelr/clinique-espoir-be/internal/auth"
	"github.com/isdelr/clinique-espoir-be/internal/config"
	"github.com/isdelr/clinique-espoir-be/internal/database"
	"github.com/isdelr/clinique-espoir-be/internal/kv"
	"github.com/isdelr/clinique-espoir-be/internal/logger"
	"github.com/isdelr/clinique-espoir-be/internal/moderation"
	"github.com/isdelr/clinique-espoir-be/internal/monitoring"
	"github.com/isdelr/clinique-espoir-be/internal/services"
	"github.com/isdelr/clinique-espoir-be/internal/session"
	"github.com/isdelr/clinique-espoir-be/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// Set up the local key-value area
	area, closer, err := openKV(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.KVBackend).Msg("Failed to initialize key-value area")
	}
	defer closer.Close()

	st := store.Open(cfg.APIURL, cfg.APITimeout, area)
	if cfg.APIURL != "" {
		log.Info().Str("api_url", cfg.APIURL).Msg("Using remote record store")
	} else {
		log.Info().Str("backend", cfg.KVBackend).Msg("Using local record store")
	}

	// Set up services
	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(registry)
	eventService := services.NewEventService(area)
	accountService := services.NewAccountService(st, eventService)
	appointmentService := services.NewAppointmentService(st, eventService, metrics)
	catalogService := services.NewCatalogService()
	holder := session.New(ctx, accountService, session.NewKVSlot(area))
	board := moderation.NewBoard(appointmentService)

	gate, err := auth.NewAdminGate(cfg.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up admin access")
	}

	var generator assistant.Generator
	if cfg.GeminiAPIKey != "" {
		gemini, err := assistant.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Error().Err(err).Msg("Gemini unavailable, chat will answer with the fallback reply")
		} else {
			defer gemini.Close()
			generator = gemini
		}
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, chat is disabled")
	}
	chat := assistant.New(generator, catalogService, cfg.ChatTemperature, cfg.ChatTimeout)

	// Set up and run the background board refresher
	refresher, err := monitoring.NewRefresher(board, metrics, cfg.RefreshSchedule, cfg.APITimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up board refresher")
	}
	go refresher.Run()

	// Set up router
	router := api.NewRouter(api.Dependencies{
		Accounts:       accountService,
		Appointments:   appointmentService,
		Catalog:        catalogService,
		Events:         eventService,
		Session:        holder,
		Board:          board,
		Assistant:      chat,
		AdminGate:      gate,
		Tokens:         auth.NewTokens(cfg.JWTSecret),
		Gatherer:       registry,
		AllowedOrigins: cfg.CORSOrigins,
		SecureCookies:  cfg.IsProduction(),
		Limiter:        api.NewRateLimiter(2, 10),
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

// openKV opens the configured key-value backend. The returned closer
// releases it.
func openKV(ctx context.Context, cfg *config.Config) (kv.KV, io.Closer, error) {
	switch cfg.KVBackend {
	case "memory":
		log.Warn().Msg("Using in-memory key-value area, data is lost on restart")
		return kv.NewMemory(), io.NopCloser(nil), nil
	case "redis":
		r, err := kv.NewRedisFromURL(ctx, cfg.RedisURL, "clinique:")
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	default:
		db, err := database.New(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to apply database migrations: %w", err)
		}
		return kv.NewSQLite(db), db, nil
	}
}
