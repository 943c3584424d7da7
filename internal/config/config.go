// Package config loads the settings of the spaydcheck command from the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/SimonDaKappa/go-spayd"
)

const (
	EnvLogLevel      = "SPAYD_LOG_LEVEL"
	EnvOutput        = "SPAYD_OUTPUT"
	EnvDuplicateKeys = "SPAYD_DUPLICATE_KEYS"
	EnvTrim          = "SPAYD_TRIM"
	EnvSanitize      = "SPAYD_SANITIZE"
	EnvVerifyCRC     = "SPAYD_VERIFY_CRC"
	EnvCacheTTL      = "SPAYD_CACHE_TTL"
)

const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

var (
	ErrInvalidOutput = errors.New("output format must be json or yaml")
)

// Config holds the settings of one spaydcheck run.
type Config struct {
	LogLevel   string
	Output     string
	Duplicates spayd.DuplicatePolicy
	Trim       bool
	Sanitize   bool
	VerifyCRC  bool
	CacheTTL   time.Duration
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		LogLevel:   "warn",
		Output:     OutputJSON,
		Duplicates: spayd.RejectDuplicates,
		Trim:       true,
	}
}

// Load reads envFile into the environment when it exists, then builds a
// Config from the SPAYD_* variables. Variables already set in the process
// environment win over the file. A missing envFile is not an error.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("error loading %s: %w", envFile, err)
		}
	}

	cfg := Default()
	cfg.LogLevel = getEnv(EnvLogLevel, cfg.LogLevel)
	cfg.Output = strings.ToLower(getEnv(EnvOutput, cfg.Output))
	cfg.Trim = getEnvAsBool(EnvTrim, cfg.Trim)
	cfg.Sanitize = getEnvAsBool(EnvSanitize, cfg.Sanitize)
	cfg.VerifyCRC = getEnvAsBool(EnvVerifyCRC, cfg.VerifyCRC)
	cfg.CacheTTL = getEnvAsDuration(EnvCacheTTL, cfg.CacheTTL)

	if value, ok := os.LookupEnv(EnvDuplicateKeys); ok && value != "" {
		policy, err := spayd.ParseDuplicatePolicy(value)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvDuplicateKeys, err)
		}
		cfg.Duplicates = policy
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that have a closed set of values.
func (c Config) Validate() error {
	if c.Output != OutputJSON && c.Output != OutputYAML {
		return fmt.Errorf("%w, got %q", ErrInvalidOutput, c.Output)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache TTL must not be negative, got %s", c.CacheTTL)
	}
	return nil
}

// ParserOpts converts the settings into descriptor parser options.
func (c Config) ParserOpts() spayd.ParserOpts {
	return spayd.ParserOpts{
		Duplicates:     c.Duplicates,
		KeepWhitespace: !c.Trim,
		SanitizeText:   c.Sanitize,
		VerifyChecksum: c.VerifyCRC,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}
