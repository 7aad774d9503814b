// ABOUTME: Configuration loader for the insight client
// ABOUTME: Loads settings from an optional .env file and environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// APIPrefix is the fixed root under which every backend endpoint is mounted.
const APIPrefix = "/api"

// DefaultAPIURL is used when neither flag nor environment provide a backend URL.
const DefaultAPIURL = "http://localhost:5000"

type Config struct {
	// Backend
	APIURL                string        // scheme://host[:port] without the /api prefix
	Timeout               time.Duration // default per-request timeout
	BranchCreationTimeout time.Duration // timeout for branch creation across submodules
	AllProxy              string        // optional ssh+socks5://user@host:port?private-key=/path
	SkipSSLValidation     bool

	// Local state
	ConfigDir string // session file and debug log live here

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		APIURL:                strings.TrimRight(getEnv("INSIGHT_API_URL", DefaultAPIURL), "/"),
		Timeout:               time.Duration(getEnvInt("INSIGHT_TIMEOUT", 30)) * time.Second,
		BranchCreationTimeout: time.Duration(getEnvInt("INSIGHT_BRANCH_CREATE_TIMEOUT", 240)) * time.Second,
		AllProxy:              os.Getenv("INSIGHT_ALL_PROXY"),
		SkipSSLValidation:     getEnvBool("INSIGHT_SKIP_SSL_VALIDATION", false),
		ConfigDir:             getEnv("INSIGHT_CONFIG_DIR", DefaultConfigDir()),
		LogLevel:              getEnv("LOG_LEVEL", "warn"),
		LogFormat:             getEnv("LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("INSIGHT_API_URL must not be empty")
	}
	if !strings.Contains(c.APIURL, "://") {
		return fmt.Errorf("INSIGHT_API_URL must include a scheme, got %q", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("INSIGHT_TIMEOUT must be positive, got %s", c.Timeout)
	}
	if c.BranchCreationTimeout < c.Timeout {
		return fmt.Errorf("INSIGHT_BRANCH_CREATE_TIMEOUT (%s) must not be shorter than INSIGHT_TIMEOUT (%s)", c.BranchCreationTimeout, c.Timeout)
	}
	return nil
}

// BaseURL returns the API root every request is issued under.
func (c *Config) BaseURL() string {
	return c.APIURL + APIPrefix
}

// DefaultConfigDir returns the default config directory following the XDG base directory layout
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gitlab-insight")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gitlab-insight")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
