// Package main is the entry point for the itinerary API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/foxtrail/planner/internal/clock"
	"github.com/foxtrail/planner/internal/config"
	"github.com/foxtrail/planner/internal/handler"
	natsclient "github.com/foxtrail/planner/internal/nats"
	"github.com/foxtrail/planner/internal/optimizer"
	"github.com/foxtrail/planner/internal/service"
	"github.com/foxtrail/planner/internal/store"
	"github.com/foxtrail/planner/internal/synthesizer"
	"github.com/foxtrail/planner/pkg/logger"
	"github.com/foxtrail/planner/pkg/tracing"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "planner: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.NewForEnv(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "foxtrail-planner", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	loc, _ := cfg.Location()
	tag, _ := cfg.LanguageTag()
	clk := clock.Real{}

	// A corrupt document aborts startup.
	st := store.New(cfg.DataFile,
		store.WithClock(clk),
		store.WithLocation(loc),
		store.WithLogger(log),
	)
	if err := st.Init(); err != nil {
		if errors.Is(err, store.ErrMalformedState) {
			log.Error("itinerary document is corrupt, refusing to start", zap.String("path", cfg.DataFile), zap.Error(err))
		}
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	checks := []handler.ReadinessCheck{
		func() (bool, string) {
			if !st.Loaded() {
				return false, "store not loaded"
			}
			return true, ""
		},
	}

	var events *service.EventNotifier
	if cfg.NATSEnabled {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		natsClient, err := natsclient.Connect(connectCtx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			cancel()
			return err
		}
		defer natsClient.Close()

		stream := natsclient.NewEventStream(natsClient)
		err = stream.EnsureStream(connectCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to ensure event stream: %w", err)
		}

		events = service.NewEventNotifier(stream, clk, log)
		checks = append(checks, func() (bool, string) {
			if !natsClient.IsConnected() {
				return false, "NATS not connected"
			}
			return true, ""
		})
	}

	itinerarySvc := service.NewItineraryService(
		st,
		optimizer.New(tag),
		synthesizer.New(clk, loc),
		events,
		clk,
		log,
	)

	router := handler.NewRouter(handler.RouterConfig{
		Logger:             log,
		Itineraries:        handler.NewItineraryHandler(itinerarySvc, log),
		Health:             handler.NewHealthHandler(checks...),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		JWTSecret:          authSecret(cfg),
		RateLimitRequests:  cfg.RateLimitRequests,
		RateLimitWindow:    cfg.RateLimitWindow,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort), zap.String("data_file", st.Path()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
	return nil
}

func authSecret(cfg *config.Config) string {
	if !cfg.AuthEnabled {
		return ""
	}
	return cfg.JWTSecret
}
