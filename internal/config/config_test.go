package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear any env vars that might interfere with defaults.
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("HTTP_LISTEN_ADDR")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("SERVICE_NAME")
	os.Unsetenv("SYSTEM_USERS")
	os.Unsetenv("RECONCILE_INTERVAL")
	os.Unsetenv("RECONCILE_STALE_AFTER")
	os.Unsetenv("RECONCILE_MAX_CONCURRENT")
	os.Unsetenv("DB_STATEMENT_TIMEOUT")
	os.Unsetenv("EVENT_BUFFER_SIZE")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "", cfg.DatabaseURL)
	assert.Equal(t, ":8090", cfg.HTTPListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "cluster-api", cfg.ServiceName)
	assert.Equal(t, []string{"controller@system.local"}, cfg.SystemUsers)
	assert.Equal(t, 30*time.Second, cfg.ReconcileInterval)
	assert.Equal(t, 5*time.Minute, cfg.ReconcileStaleAfter)
	assert.Equal(t, 4, cfg.ReconcileMaxConcurrent)
	assert.Equal(t, 5*time.Second, cfg.DBStatementTimeout)
	assert.Equal(t, 64, cfg.EventBufferSize)
}

func TestLoad_AllEnvVars(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://cluster:5432/clusterdb")
	t.Setenv("HTTP_LISTEN_ADDR", ":7071")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVICE_NAME", "cluster-api-staging")
	t.Setenv("SYSTEM_USERS", "controller@system.local, sweeper@system.local")
	t.Setenv("RECONCILE_INTERVAL", "10s")
	t.Setenv("RECONCILE_STALE_AFTER", "2m")
	t.Setenv("RECONCILE_MAX_CONCURRENT", "8")
	t.Setenv("DB_STATEMENT_TIMEOUT", "1s")
	t.Setenv("EVENT_BUFFER_SIZE", "128")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "postgres://cluster:5432/clusterdb", cfg.DatabaseURL)
	assert.Equal(t, ":7071", cfg.HTTPListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "cluster-api-staging", cfg.ServiceName)
	assert.Equal(t, []string{"controller@system.local", "sweeper@system.local"}, cfg.SystemUsers)
	assert.Equal(t, 10*time.Second, cfg.ReconcileInterval)
	assert.Equal(t, 2*time.Minute, cfg.ReconcileStaleAfter)
	assert.Equal(t, 8, cfg.ReconcileMaxConcurrent)
	assert.Equal(t, time.Second, cfg.DBStatementTimeout)
	assert.Equal(t, 128, cfg.EventBufferSize)
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("RECONCILE_INTERVAL", "not-a-duration")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "RECONCILE_INTERVAL")
}

func TestLoad_BadInt(t *testing.T) {
	t.Setenv("EVENT_BUFFER_SIZE", "lots")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "EVENT_BUFFER_SIZE")
}

func TestValidate_ClusterAPI_MissingFields(t *testing.T) {
	cfg := &Config{
		ReconcileInterval:      30 * time.Second,
		ReconcileStaleAfter:    5 * time.Minute,
		ReconcileMaxConcurrent: 4,
		EventBufferSize:        64,
	}
	err := cfg.Validate("cluster-api")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "HTTP_LISTEN_ADDR")
}

func TestValidate_BadSweeperSettings(t *testing.T) {
	cfg := &Config{
		DatabaseURL:            "postgres://localhost/db",
		HTTPListenAddr:         ":8090",
		ReconcileInterval:      30 * time.Second,
		ReconcileStaleAfter:    5 * time.Minute,
		ReconcileMaxConcurrent: 0,
		EventBufferSize:        64,
	}
	err := cfg.Validate("cluster-api")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RECONCILE_MAX_CONCURRENT")
}

func TestValidate_AllPresent(t *testing.T) {
	cfg := &Config{
		DatabaseURL:            "postgres://localhost/db",
		HTTPListenAddr:         ":8090",
		ReconcileInterval:      30 * time.Second,
		ReconcileStaleAfter:    5 * time.Minute,
		ReconcileMaxConcurrent: 4,
		EventBufferSize:        64,
	}

	assert.NoError(t, cfg.Validate("cluster-api"))
}

func TestIsSystemUser(t *testing.T) {
	cfg := &Config{SystemUsers: []string{"controller@system.local"}}

	assert.True(t, cfg.IsSystemUser("controller@system.local"))
	assert.True(t, cfg.IsSystemUser("Controller@System.Local"))
	assert.False(t, cfg.IsSystemUser("alice@example.com"))
	assert.False(t, cfg.IsSystemUser(""))
}
