package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SimonDaKappa/go-spayd"
)

// clearEnv unsets every SPAYD_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvLogLevel, EnvOutput, EnvDuplicateKeys, EnvTrim, EnvSanitize, EnvVerifyCRC, EnvCacheTTL} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		assert.True(t, cfg.Trim)
		assert.False(t, cfg.ParserOpts().KeepWhitespace)
	})

	t.Run("FromEnvironment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvLogLevel, "debug")
		t.Setenv(EnvOutput, "YAML")
		t.Setenv(EnvDuplicateKeys, "last")
		t.Setenv(EnvTrim, "false")
		t.Setenv(EnvSanitize, "true")
		t.Setenv(EnvVerifyCRC, "1")
		t.Setenv(EnvCacheTTL, "5m")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, OutputYAML, cfg.Output)
		assert.Equal(t, spayd.LastWins, cfg.Duplicates)
		assert.False(t, cfg.Trim)
		assert.True(t, cfg.Sanitize)
		assert.True(t, cfg.VerifyCRC)
		assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	})

	t.Run("FromEnvFile", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("SPAYD_OUTPUT=yaml\nSPAYD_DUPLICATE_KEYS=first\n"), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, OutputYAML, cfg.Output)
		assert.Equal(t, spayd.FirstWins, cfg.Duplicates)
	})

	t.Run("ProcessEnvironmentWinsOverFile", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvOutput, "json")
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("SPAYD_OUTPUT=yaml\n"), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, OutputJSON, cfg.Output)
	})

	t.Run("MissingEnvFileIsIgnored", func(t *testing.T) {
		clearEnv(t)

		_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
		assert.NoError(t, err)
	})

	t.Run("InvalidValues", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvOutput, "xml")
		_, err := Load("")
		assert.ErrorIs(t, err, ErrInvalidOutput)

		clearEnv(t)
		t.Setenv(EnvDuplicateKeys, "merge")
		_, err = Load("")
		assert.ErrorContains(t, err, EnvDuplicateKeys)
	})

	t.Run("MalformedBoolAndDurationFallBack", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvSanitize, "maybe")
		t.Setenv(EnvCacheTTL, "soon")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.False(t, cfg.Sanitize)
		assert.Zero(t, cfg.CacheTTL)
	})
}

func TestConfig_ParserOpts(t *testing.T) {
	cfg := Config{Duplicates: spayd.FirstWins, Sanitize: true, VerifyCRC: true}

	opts := cfg.ParserOpts()
	assert.Equal(t, spayd.FirstWins, opts.Duplicates)
	assert.True(t, opts.KeepWhitespace)
	assert.True(t, opts.SanitizeText)
	assert.True(t, opts.VerifyChecksum)
	assert.Nil(t, opts.Logger)
}
