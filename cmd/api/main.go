package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Riwi-io-Medellin/SQL/internal/config"
	"github.com/Riwi-io-Medellin/SQL/internal/db"
	"github.com/Riwi-io-Medellin/SQL/internal/logging"
	"github.com/Riwi-io-Medellin/SQL/internal/tracing"
)

// startTracing is swapped in tests.
var startTracing = tracing.Init

func main() {
	cfg := config.Load()

	log := logging.New(os.Stdout, cfg.LogFormat, config.ParseLevel(cfg.LogLevel))
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}

// run releases everything it opens before returning, errors included.
func run(cfg config.Config, log *slog.Logger) error {
	if cfg.OTelEndpoint != "" {
		shutdown, err := startTracing(context.Background(), cfg.ServiceName, cfg.OTelEndpoint)
		if err != nil {
			log.Error("tracing disabled", "err", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error("tracer shutdown failed", "err", err)
				}
			}()
			log.Info("tracing enabled", "endpoint", cfg.OTelEndpoint)
		}
	}

	database, err := db.Open(cfg)
	if err != nil {
		return fmt.Errorf("connect to database %s@%s: %w", cfg.DBName, cfg.DBHost, err)
	}
	defer database.Close()
	log.Info("connected to database", "host", cfg.DBHost, "db", cfg.DBName)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(database, cfg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", "http://"+cfg.Addr(), "public_dir", cfg.PublicDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case sig := <-stop:
		log.Info("server shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("shutdown complete")
	return nil
}
