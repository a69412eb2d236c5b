// @title PartyConnect Backend API
// @version 1.0
// @description Party lifecycle and escrow payment coordination API

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/cors"

	_ "PARTYCONNECT_BACK-END/docs" // swagger generated docs
	"PARTYCONNECT_BACK-END/internal/config"
	"PARTYCONNECT_BACK-END/internal/gateway"
	"PARTYCONNECT_BACK-END/internal/handlers"
	"PARTYCONNECT_BACK-END/internal/middleware"
	"PARTYCONNECT_BACK-END/internal/routes"
	"PARTYCONNECT_BACK-END/internal/service"
	"PARTYCONNECT_BACK-END/internal/storage"
	"PARTYCONNECT_BACK-END/internal/storage/memory"
	"PARTYCONNECT_BACK-END/internal/storage/postgres"
	"PARTYCONNECT_BACK-END/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// STORAGE_BACKEND=memory runs without Postgres, for local development.
	var (
		store  storage.Store
		pinger handlers.Pinger
	)
	if os.Getenv("STORAGE_BACKEND") == "memory" {
		slog.Warn("using in-memory storage; data will not survive a restart")
		store = memory.New()
	} else {
		pg, err := postgres.New(ctx, cfg)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		store = pg
		pinger = pg
	}
	defer store.Close()

	gw := gateway.NewSandbox(cfg.Payment.WebhookSecret, cfg.Payment.RedirectURL)

	partySvc := service.NewPartyService(store)
	paymentSvc := service.NewPaymentService(store, gw, cfg.Payment)
	partySvc.BindPayments(paymentSvc)

	partyHandler := handlers.NewPartyHandler(partySvc)
	paymentsHandler := handlers.NewPaymentsHandler(paymentSvc)
	healthHandler := handlers.NewHealthHandler(pinger)

	routes.SetupRoutes(partyHandler, paymentsHandler, healthHandler, cfg)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
	})
	handler := c.Handler(middleware.Logging(middleware.Metrics(http.DefaultServeMux)))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	slog.Info("server stopped")
}
