package database

import (
	"testing"

	"pyggy/internal/config"
)

func TestConfig(t *testing.T) {
	cfg := NewConfig(&config.Config{
		DBHost: "db", DBPort: "5433", DBUser: "pyggy", DBPassword: "secret",
		DBName: "budget", DBSSLMode: "require", MigrationsPath: "/srv/migrations",
	})

	t.Run("dsn", func(t *testing.T) {
		want := "host=db port=5433 user=pyggy password=secret dbname=budget sslmode=require"
		if got := cfg.DSN(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("url", func(t *testing.T) {
		want := "postgres://pyggy:secret@db:5433/budget?sslmode=require"
		if got := cfg.URL(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("source url", func(t *testing.T) {
		if got := cfg.SourceURL(); got != "file:///srv/migrations" {
			t.Errorf("unexpected source url %q", got)
		}
		empty := &Config{}
		if got := empty.SourceURL(); got != "file://migrations" {
			t.Errorf("expected default source, got %q", got)
		}
	})
}
