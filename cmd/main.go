package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/office671/nawader/internal/api/v1/routes"
	"github.com/office671/nawader/internal/config"
	"github.com/office671/nawader/internal/services"
	"github.com/office671/nawader/pkg/logger"
	"github.com/office671/nawader/pkg/tracing"
)

func main() {
	// .env must be loaded before anything reads the environment
	config.LoadDotEnv()
	logger.Init()

	if err := config.RequireJWTSecret(); err != nil {
		log.Fatal().Err(err).Msg("Session signing key missing")
	}

	ctx := context.Background()
	shutdownTracing := tracing.Init(ctx)

	cfg, err := config.LoadAssistantConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid assistant configuration")
	}

	svc, err := services.InitializeServices(ctx, cfg, services.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}

	addr := ":" + config.GetEnvOrDefault("PORT", "8080")
	server := &http.Server{
		Addr:              addr,
		Handler:           setupRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Str("backend", svc.GetDispatcher().String()).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	svc.Close()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Tracer shutdown error")
	}
}

func setupRouter(svc *services.Services) *mux.Router {
	r := mux.NewRouter()
	routes.RegisterRoutes(r, svc)
	return r
}
