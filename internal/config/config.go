package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Host string
	Port string

	DBHost    string
	DBPort    string
	DBName    string
	DBUser    string
	DBPass    string
	DBSSLMode string

	// DBMaxOpenConns caps concurrent connections (default 10).
	DBMaxOpenConns int
	// DBMaxIdleConns is 0 by default: each request dials its own connection and
	// releasing it closes it.
	DBMaxIdleConns int

	// PublicDir is the root for static frontend files; IndexFile is served for "/".
	PublicDir string
	IndexFile string

	// DefaultRole is applied to created users that arrive without a role.
	DefaultRole string

	// LogFormat is "text" (default) or "json". LogLevel is debug|info|warn|error.
	LogFormat string
	LogLevel  string

	// MaxBodyBytes limits JSON request bodies; MaxUploadBytes limits /users/upload.
	MaxBodyBytes   int64
	MaxUploadBytes int64

	// UploadRatePerMin is the per-IP request budget for bulk imports.
	UploadRatePerMin int
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP. Only
	// enable it when a proxy you control sets those headers.
	TrustProxy bool

	// OTelEndpoint enables OTLP/gRPC tracing when set (e.g. localhost:4317).
	OTelEndpoint string
	ServiceName  string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "err", err)
	}

	return Config{
		Host: getEnv("HOST", "localhost"),
		Port: getEnv("PORT", "3000"),

		DBHost:    getEnv("DB_HOST", "localhost"),
		DBPort:    getEnv("DB_PORT", "5432"),
		DBName:    getEnv("DB_NAME", "postgres"),
		DBUser:    getEnv("DB_USER", "postgres"),
		DBPass:    getEnv("DB_PASS", "postgres"),
		DBSSLMode: getEnv("DB_SSLMODE", "disable"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns: getEnvIntAllowZero("DB_MAX_IDLE_CONNS", 0),

		PublicDir: getEnv("PUBLIC_DIR", "public"),
		IndexFile: getEnv("INDEX_FILE", "index.html"),

		DefaultRole: getEnv("DEFAULT_ROLE", "member"),

		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		MaxBodyBytes:   int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),

		UploadRatePerMin: getEnvInt("UPLOAD_RATE_PER_MIN", 10),
		TrustProxy:       getEnvBool("TRUST_PROXY", false),

		OTelEndpoint: getEnv("OTEL_ENDPOINT", ""),
		ServiceName:  getEnv("SERVICE_NAME", "users-api"),
	}
}

// Addr is the listen address, host:port.
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

// ParseLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvIntAllowZero(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
