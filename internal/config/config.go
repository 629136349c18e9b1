package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL    string
	HTTPListenAddr string
	LogLevel       string
	ServiceName    string
	// SystemUsers are the identities allowed to push controller reports.
	SystemUsers            []string
	ReconcileInterval      time.Duration
	ReconcileStaleAfter    time.Duration
	ReconcileMaxConcurrent int
	DBStatementTimeout     time.Duration
	EventBufferSize        int
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		HTTPListenAddr: getEnv("HTTP_LISTEN_ADDR", ":8090"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ServiceName:    getEnv("SERVICE_NAME", "cluster-api"),
		SystemUsers:    splitList(getEnv("SYSTEM_USERS", "controller@system.local")),
	}

	var err error
	if cfg.ReconcileInterval, err = getDuration("RECONCILE_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ReconcileStaleAfter, err = getDuration("RECONCILE_STALE_AFTER", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.DBStatementTimeout, err = getDuration("DB_STATEMENT_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.ReconcileMaxConcurrent, err = getInt("RECONCILE_MAX_CONCURRENT", 4); err != nil {
		return nil, err
	}
	if cfg.EventBufferSize, err = getInt("EVENT_BUFFER_SIZE", 64); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration required by the given service is
// present. Defaults cover everything else.
func (c *Config) Validate(service string) error {
	var missing []string

	switch service {
	case "cluster-api":
		if c.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
		if c.HTTPListenAddr == "" {
			missing = append(missing, "HTTP_LISTEN_ADDR")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration for %s: %s", service, strings.Join(missing, ", "))
	}

	if c.ReconcileInterval <= 0 {
		return fmt.Errorf("RECONCILE_INTERVAL must be positive")
	}
	if c.ReconcileStaleAfter <= 0 {
		return fmt.Errorf("RECONCILE_STALE_AFTER must be positive")
	}
	if c.ReconcileMaxConcurrent < 1 {
		return fmt.Errorf("RECONCILE_MAX_CONCURRENT must be at least 1")
	}
	if c.EventBufferSize < 1 {
		return fmt.Errorf("EVENT_BUFFER_SIZE must be at least 1")
	}

	return nil
}

// IsSystemUser reports whether the identity is on the controller allowlist.
func (c *Config) IsSystemUser(email string) bool {
	for _, u := range c.SystemUsers {
		if strings.EqualFold(u, email) {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
