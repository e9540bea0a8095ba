package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campusd/professor-trust/pkg/authapi"
	"github.com/campusd/professor-trust/pkg/config"
	"github.com/campusd/professor-trust/pkg/httputil"
	"github.com/campusd/professor-trust/pkg/issuer"
	"github.com/campusd/professor-trust/pkg/jwks"
	"github.com/campusd/professor-trust/pkg/keys"
	"github.com/campusd/professor-trust/pkg/utils"
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
	slog.Info("Starting auth service",
		slog.String("version", versionInfo.Version),
		slog.String("commit", versionInfo.Commit),
		slog.String("date", versionInfo.Date),
	)

	// Key material is a startup requirement: without it the issuer cannot
	// sign and the JWKS document cannot be published.
	km, err := keys.Load(cfg.PrivateKeyPath, cfg.KeyID)
	if err != nil {
		slog.Error("Failed to load key material", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("Loaded signing key", slog.String("kid", km.Kid()))

	tokenIssuer := issuer.New(km, cfg.Issuer, issuer.WithTTL(cfg.TokenTTL))

	publisher, err := jwks.New(km)
	if err != nil {
		slog.Error("Failed to build JWKS document", slog.String("error", err.Error()))
		os.Exit(1)
	}

	directory := authapi.NewHTTPDirectory(cfg.ProfessorBaseURL, tokenIssuer)
	handlers := authapi.NewHandlers(tokenIssuer, publisher, directory)

	router := mux.NewRouter()
	router.Use(httputil.RecoveryMiddleware, httputil.LoggingMiddleware)
	handlers.Routes(router)

	serve(cfg.AuthListenAddr, router)
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

	slog.Info("Auth server listening", slog.String("addr", addr))
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
