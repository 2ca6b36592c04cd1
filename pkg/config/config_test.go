package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "data/derived", cfg.Artifacts.Dir)
	assert.False(t, cfg.Synthesis.Enabled)
	assert.Equal(t, 8, cfg.Synthesis.TimeoutSeconds)
}

func TestLoadEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("SCREENLORE_SERVER_PORT", "8080")
	t.Setenv("SCREENLORE_LOG_LEVEL", "debug")
	t.Setenv("SCREENLORE_ARTIFACTS_DIR", "/tmp/artifacts")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/artifacts", cfg.Artifacts.Dir)
}
