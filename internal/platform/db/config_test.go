package db

import (
	"errors"
	"testing"
)

func TestLoadConfigRequiresPasswordInProduction(t *testing.T) {
	t.Setenv("SKEDCORE_ENV", "production")
	t.Setenv("POSTGRES_PASSWORD", "")

	_, err := LoadConfig()
	if !errors.Is(err, ErrMissingPassword) {
		t.Errorf("LoadConfig() err = %v, want ErrMissingPassword", err)
	}
}

func TestLoadConfigDefaultsPasswordInDevelopment(t *testing.T) {
	t.Setenv("SKEDCORE_ENV", "development")
	t.Setenv("POSTGRES_PASSWORD", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PostgresPassword != "dev_postgres_password" {
		t.Errorf("PostgresPassword = %q, want the development default", cfg.PostgresPassword)
	}
}

func TestLoadConfigUsesEnvOverrides(t *testing.T) {
	t.Setenv("SKEDCORE_ENV", "development")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "6543")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PostgresHost != "db.internal" || cfg.PostgresPort != "6543" {
		t.Errorf("cfg = %+v, want overridden host/port", cfg)
	}
	if cfg.PostgresPassword != "secret" {
		t.Errorf("PostgresPassword = %q, want secret", cfg.PostgresPassword)
	}
}

func TestPostgresDSNFormat(t *testing.T) {
	cfg := &Config{
		PostgresHost:     "localhost",
		PostgresPort:     "5432",
		PostgresUser:     "postgres",
		PostgresPassword: "pw",
		PostgresDB:       "skedcore",
		PostgresSSLMode:  "disable",
	}
	want := "host=localhost port=5432 user=postgres password=pw dbname=skedcore sslmode=disable"
	if got := cfg.PostgresDSN(); got != want {
		t.Errorf("PostgresDSN() = %q, want %q", got, want)
	}
}
