package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campusd/professor-trust/pkg/authz"
	"github.com/campusd/professor-trust/pkg/cache"
	"github.com/campusd/professor-trust/pkg/config"
	"github.com/campusd/professor-trust/pkg/httputil"
	"github.com/campusd/professor-trust/pkg/profapi"
	"github.com/campusd/professor-trust/pkg/store"
	"github.com/campusd/professor-trust/pkg/utils"
	"github.com/campusd/professor-trust/pkg/verifier"
	"github.com/campusd/professor-trust/pkg/version"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)

	versionInfo := version.Get()
	slog.Info("Starting professor service",
		slog.String("version", versionInfo.Version),
		slog.String("commit", versionInfo.Commit),
		slog.String("date", versionInfo.Date),
	)

	recordStore, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("Failed to open record store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := recordStore.Close(); err != nil {
			slog.Error("Failed to close record store", slog.String("error", err.Error()))
		}
	}()

	jwksCache, err := cache.NewCache(cfg)
	if err != nil {
		slog.Error("Failed to initialize cache", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Verification keys come from the auth service's JWKS endpoint; the
	// cache keeps per-request verification off the network.
	source := verifier.NewRemoteKeySource(cfg.JWKSURL, jwksCache,
		verifier.WithCacheTTL(cache.GetConfiguredTTL(cfg)))
	tokenVerifier := verifier.New(source)

	middleware := authz.NewMiddleware(tokenVerifier)
	handlers := profapi.NewHandlers(recordStore, middleware)

	router := mux.NewRouter()
	router.Use(httputil.RecoveryMiddleware, httputil.LoggingMiddleware)
	handlers.Routes(router)

	serve(cfg.ProfessorListenAddr, router)
}

func serve(addr string, handler http.Handler) {
	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		slog.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.Info("Professor server listening", slog.String("addr", addr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("Server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("Server stopped")
}

func setupLogging(level string) {
	var programLevel = new(slog.LevelVar)
	if parsed, err := utils.ParseLogLevel(level); err == nil {
		programLevel.Set(parsed)
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: programLevel,
	})
	slog.SetDefault(slog.New(handler))
}
