package db

import (
	"database/sql"
	"fmt"

	"github.com/Riwi-io-Medellin/SQL/internal/config"
	_ "github.com/lib/pq"
)

// DSN builds a lib/pq keyword/value connection string from cfg.
func DSN(cfg config.Config) string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, quote(cfg.DBPass), cfg.DBSSLMode,
	)
}

// Open returns a handle over the users database and verifies it is reachable.
// With DBMaxIdleConns at 0 no connection outlives the request that acquired it.
func Open(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// quote wraps a value in single quotes when it would otherwise break the
// keyword/value format (spaces, quotes, backslashes or empty).
func quote(v string) string {
	needs := v == ""
	out := make([]byte, 0, len(v)+2)
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch c {
		case ' ', '\t', '\n':
			needs = true
		case '\'', '\\':
			needs = true
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	if !needs {
		return v
	}
	return "'" + string(out) + "'"
}
