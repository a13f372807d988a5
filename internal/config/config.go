// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Storage   StorageConfig
	Server    ServerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig holds on-disk storage configuration.
// The Badger database lives in {DataPath}/db and the search index in {DataPath}/search.
type StorageConfig struct {
	DataPath string
}

// DatabasePath returns the Badger directory.
func (s StorageConfig) DatabasePath() string {
	return filepath.Join(s.DataPath, "db")
}

// SearchPath returns the Bleve directory.
func (s StorageConfig) SearchPath() string {
	return filepath.Join(s.DataPath, "search")
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           string        // Server port (default: 8080)
	ReadTimeout    time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout   time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout    time.Duration // HTTP idle timeout (default: 60s)
	AllowedOrigins []string      // CORS origins (default: *)
}

// RedisConfig holds the optional Redis connection. An empty URL disables the
// snapshot cache and event publishing.
type RedisConfig struct {
	URL         string        // e.g. redis://localhost:6379/0
	Channel     string        // Pub/sub channel for change events
	SnapshotTTL time.Duration // Lifetime of cached snapshots (default: 24h)
}

// Enabled reports whether Redis is configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

// RateLimitConfig limits write requests per client address.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// LoadConfig loads configuration from the process arguments and environment.
// See Load for the precedence rules.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fset := flag.NewFlagSet("lyricsplit", flag.ContinueOnError)

	env := fset.String("env", "", "Environment (development, staging, production)")
	logLevel := fset.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fset.String("data-path", "", "Directory for the database and search index")

	// Server flags
	serverPort := fset.String("port", "", "Server port (default: 8080)")
	readTimeout := fset.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fset.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fset.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	allowedOrigins := fset.String("allowed-origins", "", "Comma-separated CORS origins (default: *)")

	// Redis flags
	redisURL := fset.String("redis-url", "", "Redis URL; empty disables caching and events")
	redisChannel := fset.String("redis-channel", "", "Redis channel for change events")
	snapshotTTL := fset.String("snapshot-ttl", "", "Snapshot cache lifetime (default: 24h)")

	// Rate limit flags
	rateLimitRPS := fset.String("rate-limit-rps", "", "Write requests per second per client (default: 10)")
	rateLimitBurst := fset.String("rate-limit-burst", "", "Write request burst per client (default: 20)")

	envFile := fset.String("env-file", "", "Path to .env file (default: .env)")

	if err := fset.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	if err := loadEnvFile(getConfigValue(*envFile, "ENV_FILE", ".env")); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue(*allowedOrigins, "ALLOWED_ORIGINS", "*")),
		},
		Redis: RedisConfig{
			URL:     getConfigValue(*redisURL, "REDIS_URL", ""),
			Channel: getConfigValue(*redisChannel, "REDIS_CHANNEL", "lyricsplit:events"),
		},
	}

	var err error
	durations := []struct {
		target *time.Duration
		flag   string
		envKey string
		def    string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Redis.SnapshotTTL, *snapshotTTL, "SNAPSHOT_TTL", "24h"},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.envKey, d.def)
		if *d.target, err = time.ParseDuration(raw); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
	}

	rpsStr := getConfigValue(*rateLimitRPS, "RATE_LIMIT_RPS", "10")
	if cfg.RateLimit.RequestsPerSecond, err = strconv.ParseFloat(rpsStr, 64); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", rpsStr, err)
	}
	burstStr := getConfigValue(*rateLimitBurst, "RATE_LIMIT_BURST", "20")
	if cfg.RateLimit.Burst, err = strconv.Atoi(burstStr); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST %q: %w", burstStr, err)
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %q", c.Server.Port)
	}

	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit must be positive (rps=%v, burst=%d)", c.RateLimit.RequestsPerSecond, c.RateLimit.Burst)
	}

	if c.Redis.Enabled() && c.Redis.SnapshotTTL <= 0 {
		return errors.New("snapshot TTL must be positive when Redis is enabled")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
// Defaults to ~/LyricSplit/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "LyricSplit", "data")

	expanded, err := expandPath(c.Storage.DataPath, defaultPath)
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// loadEnvFile loads variables from a .env file without overriding variables
// already set in the environment. A missing file is not an error.
func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
