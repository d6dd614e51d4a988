package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/chris/wallet-payout-engine/pkg/api"
	"github.com/chris/wallet-payout-engine/pkg/bootstrap"
	"github.com/chris/wallet-payout-engine/pkg/handlers"
	"github.com/chris/wallet-payout-engine/pkg/metrics"
	"github.com/chris/wallet-payout-engine/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Init(ctx)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	defer app.Close()

	// Create our handler
	handler := handlers.NewApiHandler(app)
	probes := metrics.NewHandler(app.Registry, app.Logger)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.NewStructuredLogger(app.Logger))
	router.Use(chimiddleware.Recoverer)
	router.Get("/health", probes.HealthHandler)
	router.Handle("/metrics", probes.MetricsHandler())

	router.Group(func(r chi.Router) {
		r.Use(middleware.Actors)
		api.NewHandler(handler, r)
	})

	srv := &http.Server{
		Addr:              app.Config.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	app.Logger.Info("starting server", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.Logger.Fatal("failed to start server", zap.Error(err))
	}
	app.Logger.Info("server stopped")
}
