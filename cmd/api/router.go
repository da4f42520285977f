package main

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/Riwi-io-Medellin/SQL/internal/config"
	"github.com/Riwi-io-Medellin/SQL/internal/handlers"
	"github.com/Riwi-io-Medellin/SQL/internal/middleware"
	"github.com/Riwi-io-Medellin/SQL/internal/repo"
	"github.com/Riwi-io-Medellin/SQL/internal/static"
	"github.com/Riwi-io-Medellin/SQL/internal/tracing"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newRouter is the routing table keyed on (method, path pattern). Anything
// not claimed by the API and fetched with GET falls through to the public root.
func newRouter(db *sql.DB, cfg config.Config) http.Handler {
	userRepo := repo.NewUserRepo(db)
	users := &handlers.UserHandler{Repo: userRepo, DefaultRole: cfg.DefaultRole}
	health := &handlers.HealthHandler{DB: userRepo}

	root, err := static.NewRoot(cfg.PublicDir, cfg.IndexFile)
	if err != nil {
		slog.Warn("public dir unusable, static files disabled", "dir", cfg.PublicDir, "err", err)
	}
	files := &handlers.StaticHandler{Root: root}

	r := baseRouter(cfg)

	r.Get("/health", health.Health)
	r.Get("/ready", health.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	body := middleware.MaxBytes(cfg.MaxBodyBytes)
	r.Get("/users", users.ListUsers)
	r.With(body).Post("/users", users.CreateUser)
	r.With(body).Put("/users/{id}", users.UpdateUser)
	r.Delete("/users/{id}", users.DeleteUser)

	uploads := middleware.UploadRateLimiter(cfg.UploadRatePerMin)
	r.With(uploads.Middleware, middleware.MaxBytes(cfg.MaxUploadBytes)).
		Post("/users/upload", users.UploadUsers)

	if root != nil {
		r.Get("/*", files.ServeFile)
	}

	return r
}

// baseRouter carries the middleware chain shared by every route. Recoverer
// stays inside RequestLog and Prometheus: a recovered panic is a logged 500.
func baseRouter(cfg config.Config) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(tracing.Middleware)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.JSONError(w, "not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.JSONError(w, "method not allowed", http.StatusMethodNotAllowed)
	})
	return r
}
