package db

import (
	"errors"
	"fmt"
	"os"
)

// ErrMissingPassword is returned when required password environment variables are not set.
var ErrMissingPassword = errors.New("required password environment variable not set")

// Config holds connection parameters for the relational store and the
// optional outbound notification transport.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	NATSURL string // empty disables the notification publisher
}

// isDevelopmentMode returns true if SKEDCORE_ENV is set to "development".
func isDevelopmentMode() bool {
	return os.Getenv("SKEDCORE_ENV") == "development"
}

// LoadConfig loads database configuration from environment variables.
// In production mode, POSTGRES_PASSWORD is required and will cause an
// error if not set. In development mode a default value is used.
func LoadConfig() (*Config, error) {
	isDev := isDevelopmentMode()

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")

	if !isDev {
		if postgresPassword == "" {
			return nil, fmt.Errorf("%w: POSTGRES_PASSWORD (set SKEDCORE_ENV=development to use a default)", ErrMissingPassword)
		}
	} else if postgresPassword == "" {
		postgresPassword = "dev_postgres_password"
		fmt.Println("[CONFIG] WARNING: Using default POSTGRES_PASSWORD for development")
	}

	cfg := &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: postgresPassword,
		PostgresDB:       getEnv("POSTGRES_DB", "skedcore"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		NATSURL: os.Getenv("NATS_URL"),
	}

	return cfg, nil
}

// PostgresDSN returns the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresDB,
		c.PostgresSSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
