package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestRun_FlushesTracerWhenDatabaseUnreachable(t *testing.T) {
	flushed := 0
	prev := startTracing
	startTracing = func(ctx context.Context, service, endpoint string) (func(context.Context) error, error) {
		return func(context.Context) error {
			flushed++
			return nil
		}, nil
	}
	defer func() { startTracing = prev }()

	cfg := testConfig(t)
	cfg.OTelEndpoint = "localhost:4317"
	cfg.ServiceName = "users-api"
	cfg.DBHost = "127.0.0.1"
	cfg.DBPort = "1"
	cfg.DBName = "users"
	cfg.DBUser = "postgres"
	cfg.DBSSLMode = "disable"
	cfg.DBMaxOpenConns = 1

	err := run(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err == nil {
		t.Fatal("expected run to fail without a database")
	}
	if flushed != 1 {
		t.Errorf("tracer shutdown calls: got %d, want 1", flushed)
	}
}
