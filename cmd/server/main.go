package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/I2Cprogramacion/SEI-sub000/internal/config"
	"github.com/I2Cprogramacion/SEI-sub000/internal/logging"
	"github.com/I2Cprogramacion/SEI-sub000/internal/metrics"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
	_ "github.com/I2Cprogramacion/SEI-sub000/internal/store/backends" // Register all backends
	"github.com/I2Cprogramacion/SEI-sub000/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	backend, err := cfg.Database.Backend()
	if err != nil {
		slog.Error("invalid database configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"backend", backend.Redacted(),
		"reuse_connection", cfg.Database.ReuseConnection,
		"rate_limit", cfg.Server.RateLimit,
		"api_key_required", cfg.Security.RequireAPIKey,
		"registered_backends", store.Kinds(),
	)

	// Resolve once up front so a bad DB_KIND fails at startup, not on the
	// first request.
	st, err := store.Open(backend)
	if err != nil {
		slog.Error("failed to resolve storage backend", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if cfg.Database.InitSchema {
		if err := st.InitializeSchema(ctx); err != nil {
			slog.Error("failed to initialize schema", "error", err)
			os.Exit(1)
		}
		slog.Info("schema initialized", "kind", st.Kind())
	}

	var source web.StoreSource
	if cfg.Database.ReuseConnection {
		shared := web.NewSharedSource(st)
		defer func() {
			if err := shared.Close(context.Background()); err != nil {
				slog.Warn("disconnect failed", "error", err)
			}
		}()
		source = shared
	} else {
		if err := st.Disconnect(ctx); err != nil {
			slog.Warn("disconnect failed", "error", err)
		}
		source = web.NewPerRequestSource(backend)
	}

	server := web.NewServer(cfg, source, metrics.Default)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
