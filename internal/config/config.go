// Package config provides configuration for the migration tools with support
// for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the configuration shared by the migration tools.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Data    DataConfig
	Source  AccountConfig
	Target  AccountConfig
	Export  ExportConfig
	Migrate MigrateConfig
	Links   LinksConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds local dataset/report storage configuration.
type DataConfig struct {
	// Dir is where dataset files, the mapping file, and reports live.
	Dir string
}

// AccountConfig holds credentials and rate limits for one Stripe account.
type AccountConfig struct {
	APIKey string
	RPS    float64 // requests per second (default: 20)
	Burst  int     // token bucket burst (default: 5)
}

// ExportConfig holds exporter configuration.
type ExportConfig struct {
	// PageSize is the list page size requested from the source account
	// (default: 100, the API maximum).
	PageSize int
}

// MigrateConfig holds the migrator's two public contract parameters.
type MigrateConfig struct {
	// BatchSize is the checkpoint interval: the mapping file is flushed
	// after this many successfully migrated items (default: 10).
	BatchSize int
	// StatusFilter is the set of source subscription statuses eligible
	// for migration (default: active, trialing, past_due).
	StatusFilter []string
}

// LinksConfig holds re-authorization link configuration.
type LinksConfig struct {
	SuccessURL string
	CancelURL  string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataDir := flag.String("data-dir", "", "Directory for dataset, mapping, and report files")

	sourceKey := flag.String("source-key", "", "Source account secret API key")
	targetKey := flag.String("target-key", "", "Target account secret API key")

	pageSize := flag.String("page-size", "", "Export page size (default: 100)")
	batchSize := flag.String("batch-size", "", "Mapping checkpoint interval (default: 10)")
	statusFilter := flag.String("status-filter", "", "Comma-separated subscription statuses to migrate")

	successURL := flag.String("link-success-url", "", "Redirect after a completed payment setup")
	cancelURL := flag.String("link-cancel-url", "", "Redirect after an abandoned payment setup")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			Dir: getConfigValue(*dataDir, "DATA_DIR", "./data"),
		},
		Source: AccountConfig{
			APIKey: getConfigValue(*sourceKey, "SOURCE_STRIPE_KEY", ""),
			RPS:    getFloatConfigValue("", "SOURCE_RPS", 20),
			Burst:  getIntConfigValue("", "SOURCE_BURST", 5),
		},
		Target: AccountConfig{
			APIKey: getConfigValue(*targetKey, "TARGET_STRIPE_KEY", ""),
			RPS:    getFloatConfigValue("", "TARGET_RPS", 20),
			Burst:  getIntConfigValue("", "TARGET_BURST", 5),
		},
		Export: ExportConfig{
			PageSize: getIntConfigValue(*pageSize, "PAGE_SIZE", 100),
		},
		Migrate: MigrateConfig{
			BatchSize:    getIntConfigValue(*batchSize, "BATCH_SIZE", 10),
			StatusFilter: splitList(getConfigValue(*statusFilter, "STATUS_FILTER", "active,trialing,past_due")),
		},
		Links: LinksConfig{
			SuccessURL: getConfigValue(*successURL, "LINK_SUCCESS_URL", ""),
			CancelURL:  getConfigValue(*cancelURL, "LINK_CANCEL_URL", ""),
		},
	}

	if err := cfg.expandDataDir(); err != nil {
		return nil, fmt.Errorf("invalid data dir: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
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

	if c.Data.Dir == "" {
		return errors.New("data dir cannot be empty after expansion")
	}

	if c.Export.PageSize < 1 || c.Export.PageSize > 100 {
		return fmt.Errorf("invalid page size: %d (must be 1-100)", c.Export.PageSize)
	}

	if c.Migrate.BatchSize < 1 {
		return fmt.Errorf("invalid batch size: %d (must be >= 1)", c.Migrate.BatchSize)
	}

	if len(c.Migrate.StatusFilter) == 0 {
		return errors.New("status filter cannot be empty")
	}

	// API keys are validated by the tool that needs them: export only needs
	// the source key, monitor only the target key.

	return nil
}

// RequireSourceKey returns an error unless a source API key is configured.
func (c *Config) RequireSourceKey() error {
	if c.Source.APIKey == "" {
		return errors.New("SOURCE_STRIPE_KEY is required")
	}
	return nil
}

// RequireTargetKey returns an error unless a target API key is configured.
func (c *Config) RequireTargetKey() error {
	if c.Target.APIKey == "" {
		return errors.New("TARGET_STRIPE_KEY is required")
	}
	return nil
}

// expandDataDir expands ~ and makes the path absolute.
func (c *Config) expandDataDir() error {
	path := c.Data.Dir

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	c.Data.Dir = filepath.Clean(path)
	return nil
}

// splitList splits a comma-separated list, trimming whitespace and dropping
// empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
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

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
