package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Health(t *testing.T) {
	fixed := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	h := &HealthHandler{
		DB:  pingFunc(func(context.Context) error { t.Fatal("health must not touch storage"); return nil }),
		Now: func() time.Time { return fixed },
	}

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest("GET", "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status got %d", rr.Code)
	}
	var out struct {
		OK        bool   `json:"ok"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.OK || out.Timestamp != "2026-10-19T12:00:00Z" {
		t.Errorf("unexpected body: %+v", out)
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	ok := &HealthHandler{DB: pingFunc(func(context.Context) error { return nil })}
	rr := httptest.NewRecorder()
	ok.Ready(rr, httptest.NewRequest("GET", "/ready", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("ready status got %d, want 200", rr.Code)
	}

	down := &HealthHandler{DB: pingFunc(func(context.Context) error { return errors.New("refused") })}
	rr = httptest.NewRecorder()
	down.Ready(rr, httptest.NewRequest("GET", "/ready", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status got %d, want 503", rr.Code)
	}
}
