package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "http://localhost:5173", cfg.CORSAllowOrigin)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "consul", cfg.RegistryBackend)
	assert.Equal(t, "http://localhost:8500", cfg.ConsulAddr)
	assert.Equal(t, "default", cfg.KubeNamespace)
	assert.Empty(t, cfg.NamingRulesFile)
	assert.Equal(t, 8, cfg.GatewayConcurrency)
	assert.Zero(t, cfg.GatewayRateLimit)
	assert.Equal(t, 16, cfg.GatewayRateBurst)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("REGISTRY_BACKEND", "file")
	t.Setenv("REGISTRY_FILE", "/etc/meshscope/registry.yaml")
	t.Setenv("CONSUL_HTTP_TOKEN", "secret")
	t.Setenv("GATEWAY_CONCURRENCY", "3")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "file", cfg.RegistryBackend)
	assert.Equal(t, "/etc/meshscope/registry.yaml", cfg.RegistryFile)
	assert.Equal(t, "secret", cfg.ConsulToken)
	assert.Equal(t, 3, cfg.GatewayConcurrency)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\nSERVER_PORT=7000\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")

	require.NoError(t, LoadDotEnv())
	cfg := Load()

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "9999", cfg.ServerPort, "existing variables win over .env")
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	assert.Error(t, LoadDotEnv())
}

func TestEnvInt(t *testing.T) {
	assert.Equal(t, 42, EnvInt("NONEXISTENT_VAR", 42))

	t.Setenv("TEST_INT", "100")
	assert.Equal(t, 100, EnvInt("TEST_INT", 42))

	t.Setenv("TEST_BAD_INT", "notanumber")
	assert.Equal(t, 42, EnvInt("TEST_BAD_INT", 42))
}

func TestEnvFloat(t *testing.T) {
	assert.Equal(t, 1.5, EnvFloat("NONEXISTENT_VAR", 1.5))

	t.Setenv("TEST_FLOAT", "20.5")
	assert.Equal(t, 20.5, EnvFloat("TEST_FLOAT", 1.5))

	t.Setenv("TEST_BAD_FLOAT", "fast")
	assert.Equal(t, 1.5, EnvFloat("TEST_BAD_FLOAT", 1.5))
}
