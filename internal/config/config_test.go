package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaultsAuto(t *testing.T) {
	cfg := &Config{DBDriver: "auto"}
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, "sqlite", cfg.DBDriver)

	cfg = &Config{DBDriver: "auto", PostgresDSN: "postgres://localhost/nooklet"}
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, "postgres", cfg.DBDriver)
}

func TestResolveDefaultsRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{DBDriver: "spanner"}
	assert.Error(t, cfg.ResolveDefaults())
}

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("NOOKLET_HTTP_PORT", "9091")
	t.Setenv("NOOKLET_DB_DRIVER", "sqlite")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 9091, cfg.HTTPPort)
	assert.Equal(t, ":9091", cfg.GetHTTPAddr())
	assert.Equal(t, "sqlite", cfg.DBDriver)
}
