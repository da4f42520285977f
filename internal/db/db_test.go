package db

import (
	"testing"

	"github.com/Riwi-io-Medellin/SQL/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.Config{
		DBHost:    "db.local",
		DBPort:    "6543",
		DBName:    "postgres",
		DBUser:    "app",
		DBPass:    "s3cret",
		DBSSLMode: "require",
	}
	want := "host=db.local port=6543 dbname=postgres user=app password=s3cret sslmode=require"
	if got := DSN(cfg); got != want {
		t.Errorf("DSN:\n got %q\nwant %q", got, want)
	}
}

func TestDSN_QuotesPassword(t *testing.T) {
	cases := map[string]string{
		"":           "''",
		"a b":        "'a b'",
		`it's`:       `'it\'s'`,
		`}fG++f*s`:   `}fG++f*s`,
		`back\slash`: `'back\\slash'`,
	}
	for in, want := range cases {
		if got := quote(in); got != want {
			t.Errorf("quote(%q) = %q, want %q", in, got, want)
		}
	}
}
