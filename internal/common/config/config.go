// internal/common/config/config.go
package config

import "strings"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Server        ServerConfig       `mapstructure:"server"`
	Airtable      AirtableConfig     `mapstructure:"airtable"`
	Agent         AgentConfig        `mapstructure:"agent"`
	RateLimits    RateLimitConfig    `mapstructure:"rate_limits"`
	Dedupe        DedupeConfig       `mapstructure:"dedupe"`
	Cache         CacheConfig        `mapstructure:"cache"`
	Redis         RedisConfig        `mapstructure:"redis"`
	Site          SiteConfig         `mapstructure:"site"`
	Revalidate    RevalidateConfig   `mapstructure:"revalidate"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	ListenAddr      string `mapstructure:"listen_addr"`
	RequestTimeout  int    `mapstructure:"request_timeout"`  // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// AirtableConfig holds the backing-store connection settings. APIKey and
// BaseID may be empty: list reads then degrade to empty results so the
// service can run locally without credentials.
type AirtableConfig struct {
	APIKey        string `mapstructure:"api_key"`
	BaseID        string `mapstructure:"base_id"`
	BaseURL       string `mapstructure:"base_url"`
	ProfilesTable string `mapstructure:"profiles_table"`
	RecordsTable  string `mapstructure:"records_table"`
	ScoresTable   string `mapstructure:"scores_table"`
	LeadsTable    string `mapstructure:"leads_table"`
	Timeout       int    `mapstructure:"timeout"` // milliseconds
}

// AgentConfig holds the pre-shared keys accepted on the agent intake
// endpoint. Keys is a comma-separated value; tokens are never issued here.
type AgentConfig struct {
	Keys string `mapstructure:"keys"`
}

// KeyList returns the parsed allow-list, dropping empty entries.
func (a AgentConfig) KeyList() []string {
	parts := strings.Split(a.Keys, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// RateLimitConfig holds the fixed-window limits for the three scopes.
type RateLimitConfig struct {
	PublicLimit      int `mapstructure:"public_limit"`
	PublicWindowSec  int `mapstructure:"public_window_sec"`
	KeyLimit         int `mapstructure:"key_limit"`
	KeyWindowSec     int `mapstructure:"key_window_sec"`
	CompanyLimit     int `mapstructure:"company_limit"`
	CompanyWindowSec int `mapstructure:"company_window_sec"`
}

type DedupeConfig struct {
	WindowHours int `mapstructure:"window_hours"`
}

type CacheConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

// RedisConfig is optional: when Address is empty the rate-limit and dedupe
// maps fall back to in-process stores (single-instance deployments only).
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SiteConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type RevalidateConfig struct {
	Secret string `mapstructure:"secret"`
}

// NotificationConfig holds settings for the lead notification email.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		OpsEmail  string `mapstructure:"ops_email"`
	} `mapstructure:"email"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
