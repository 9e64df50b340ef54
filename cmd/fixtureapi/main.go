// Package main is the entry point for the fixture carpool API: an in-memory
// server speaking the same wire format as the production API, seeded from
// the embedded fixtures. State is lost on restart.
// Its sole responsibility is wiring dependencies together and starting the server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ecotrajet/carpool/internal/config"
	"github.com/ecotrajet/carpool/internal/handler"
	"github.com/ecotrajet/carpool/internal/middleware"
	"github.com/ecotrajet/carpool/internal/repo"
	"github.com/ecotrajet/carpool/internal/service"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Store ------------------------------------------------------------
	store, err := repo.NewSeededStore()
	if err != nil {
		slog.Error("failed to seed fixture store", "error", err)
		os.Exit(1)
	}

	trips := repo.NewTripRepo(store)
	reservations := repo.NewReservationRepo(store)
	communities := repo.NewCommunityRepo(store)

	api := handler.NewServer(
		service.NewTripService(trips, time.Now),
		service.NewReservationService(reservations, trips, time.Now),
		service.NewCommunityService(communities, time.Now),
		service.NewExportService(trips, reservations),
	).WithLogger(logger)

	// --- Router -----------------------------------------------------------
	// Order: RequestID, RealIP, Logger, Recoverer, CORS, rate limit, body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Handler)
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Mount("/", api.Routes())

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("fixture api starting", "addr", srv.Addr, "cors_origins", cfg.CORSOrigins)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
