// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration. Required values are enforced by
// must(); missing ones abort startup with a fatal log message.
type Config struct {
	Env       string        // application environment (dev/test/prod)
	Port      string        // HTTP port to listen on
	DBUser    string        // database username
	DBPass    string        // database password (optional)
	DBHost    string        // database host address
	DBPort    string        // database port number
	DBName    string        // database name
	Store     string        // booking store backend: "mysql" (default) or "memory"
	JWTSecret string        // secret verifying identity-provider tokens
	HoldTTL   time.Duration // seat hold lifetime, fixed per deployment
	AMQPURL   string        // RabbitMQ URL for seat events; empty disables publishing

	LockWaitTimeout time.Duration // cap on InnoDB row-lock waits
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables win over file values.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Env:       must("APP_ENV"),
		Port:      must("APP_PORT"),
		DBUser:    must("DB_USER"),
		DBPass:    os.Getenv("DB_PASS"),
		DBHost:    must("DB_HOST"),
		DBPort:    must("DB_PORT"),
		DBName:    must("DB_NAME"),
		Store:     getenv("STORE", "mysql"),
		JWTSecret: must("JWT_SECRET"),
		HoldTTL:   mustDur("HOLD_TTL", 5*time.Minute),
		AMQPURL:   os.Getenv("RABBITMQ_URL"),

		LockWaitTimeout: mustDur("DB_LOCK_WAIT_TIMEOUT", 5*time.Second),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustDur parses an optional duration variable, exiting on malformed
// input rather than silently running with a wrong hold lifetime.
func mustDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Fatalf("invalid duration for %s: %q", key, v)
	}
	return d
}

// Helpers shared by the redis, rate-limit and cache config files.

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}
