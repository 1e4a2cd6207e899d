// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like AIRTABLE_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored if not found
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory or the project root so
// the binary and tests behave the same regardless of where they run.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig applies well-known environment variables when the
// config file left the value empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Airtable.APIKey == "" {
		if val := os.Getenv("AIRTABLE_API_KEY"); val != "" {
			cfg.Airtable.APIKey = val
		}
	}
	if cfg.Airtable.BaseID == "" {
		if val := os.Getenv("AIRTABLE_BASE_ID"); val != "" {
			cfg.Airtable.BaseID = val
		}
	}
	if cfg.Airtable.ProfilesTable == "" {
		if val := os.Getenv("AIRTABLE_PUBLIC_PROFILES_TABLE"); val != "" {
			cfg.Airtable.ProfilesTable = val
		}
	}
	if cfg.Airtable.RecordsTable == "" {
		if val := os.Getenv("AIRTABLE_PUBLIC_RECORDS_TABLE"); val != "" {
			cfg.Airtable.RecordsTable = val
		}
	}

	if cfg.Agent.Keys == "" {
		if val := os.Getenv("SEI_AGENT_KEYS"); val != "" {
			cfg.Agent.Keys = val
		}
	}

	if cfg.Revalidate.Secret == "" {
		if val := os.Getenv("REVALIDATE_SECRET"); val != "" {
			cfg.Revalidate.Secret = val
		}
	}

	if cfg.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Redis.Address = val
		}
	}

	if cfg.Site.BaseURL == "" {
		if val := os.Getenv("SITE_BASE_URL"); val != "" {
			cfg.Site.BaseURL = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields.
// Rate-limit and dedupe defaults follow the documented intake contract.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "sei-core"
	}

	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 30000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}

	if cfg.Airtable.BaseURL == "" {
		cfg.Airtable.BaseURL = "https://api.airtable.com/v0"
	}
	if cfg.Airtable.ProfilesTable == "" {
		cfg.Airtable.ProfilesTable = "Public Profiles"
	}
	if cfg.Airtable.RecordsTable == "" {
		cfg.Airtable.RecordsTable = "Public Records"
	}
	if cfg.Airtable.ScoresTable == "" {
		cfg.Airtable.ScoresTable = "Record Dimension Scores"
	}
	if cfg.Airtable.LeadsTable == "" {
		cfg.Airtable.LeadsTable = "Inbound Leads"
	}
	if cfg.Airtable.Timeout == 0 {
		cfg.Airtable.Timeout = 30000
	}

	if cfg.RateLimits.PublicLimit == 0 {
		cfg.RateLimits.PublicLimit = 5
	}
	if cfg.RateLimits.PublicWindowSec == 0 {
		cfg.RateLimits.PublicWindowSec = 60
	}
	if cfg.RateLimits.KeyLimit == 0 {
		cfg.RateLimits.KeyLimit = 30
	}
	if cfg.RateLimits.KeyWindowSec == 0 {
		cfg.RateLimits.KeyWindowSec = 60
	}
	if cfg.RateLimits.CompanyLimit == 0 {
		cfg.RateLimits.CompanyLimit = 10
	}
	if cfg.RateLimits.CompanyWindowSec == 0 {
		cfg.RateLimits.CompanyWindowSec = 3600
	}

	if cfg.Dedupe.WindowHours == 0 {
		cfg.Dedupe.WindowHours = 24
	}

	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 300
	}

	if cfg.Site.BaseURL == "" {
		cfg.Site.BaseURL = "https://serviceexperienceindex.com"
	}

	if cfg.Notifications.AWS.Region == "" {
		cfg.Notifications.AWS.Region = "eu-west-2"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required")
	}

	if cfg.RateLimits.PublicLimit < 1 || cfg.RateLimits.KeyLimit < 1 || cfg.RateLimits.CompanyLimit < 1 {
		return fmt.Errorf("rate_limits must be positive")
	}
	if cfg.RateLimits.PublicWindowSec < 1 || cfg.RateLimits.KeyWindowSec < 1 || cfg.RateLimits.CompanyWindowSec < 1 {
		return fmt.Errorf("rate_limit windows must be positive")
	}

	if cfg.Dedupe.WindowHours < 1 {
		return fmt.Errorf("dedupe.window_hours must be positive")
	}

	if cfg.Notifications.Email.Enabled {
		if cfg.Notifications.Email.FromEmail == "" || cfg.Notifications.Email.OpsEmail == "" {
			return fmt.Errorf("notifications.email.from_email and ops_email are required when email is enabled")
		}
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
