package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Discord       DiscordConfig       `yaml:"discord"`
	Osu           OsuConfig           `yaml:"osu"`
	Storage       StorageConfig       `yaml:"storage"`
	TopPlays      TopPlaysConfig      `yaml:"top_plays"`
	Service       ServiceConfig       `yaml:"service"`
	Loki          LokiConfig          `yaml:"loki"`
	Tempo         TempoConfig         `yaml:"tempo"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// DiscordConfig holds Discord configuration.
type DiscordConfig struct {
	Token string `yaml:"token" validate:"required"`
}

// OsuConfig holds the osu! API v2 client settings.
type OsuConfig struct {
	ClientID     string        `yaml:"client_id" validate:"required"`
	ClientSecret string        `yaml:"client_secret" validate:"required"`
	BaseURL      string        `yaml:"base_url" validate:"required,url"`
	TokenURL     string        `yaml:"token_url" validate:"required,url"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   uint64        `yaml:"max_retries"`
}

// StorageConfig holds the paths of the flat files the bot owns.
type StorageConfig struct {
	LinkedAccountsPath string `yaml:"linked_accounts_path" validate:"required"`
	SettingsPath       string `yaml:"settings_path" validate:"required"`
	EmojisPath         string `yaml:"emojis_path"`
}

// TopPlaysConfig tunes the top plays command and its star rating memo.
type TopPlaysConfig struct {
	Limit                int           `yaml:"limit" validate:"min=1,max=100"`
	PageSize             int           `yaml:"page_size" validate:"min=1,max=10"`
	SessionIdle          time.Duration `yaml:"session_idle"`
	StarRatingTimeout    time.Duration `yaml:"star_rating_timeout"`
	StarRatingCacheTTL   time.Duration `yaml:"star_rating_cache_ttl"`
	StarRatingCacheMaxMB int           `yaml:"star_rating_cache_max_mb"`
}

// ServiceConfig holds general service configuration
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// LokiConfig holds Loki configuration.
type LokiConfig struct {
	URL      string `yaml:"url"`
	TenantID string `yaml:"tenant_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type TempoConfig struct {
	Endpoint   string  `yaml:"url"`
	Insecure   bool    `yaml:"insecure"`
	SampleRate float64 `yaml:"sample_rate"`
}

// ObservabilityConfig holds the health/metrics listener.
type ObservabilityConfig struct {
	HealthAddr string `yaml:"health_addr"`
	LogLevel   string `yaml:"log_level"`
}

// LoadConfig loads the configuration from a YAML file, then fills anything
// left empty from the environment (a .env file is honoured when present).
// A missing YAML file is not an error.
func LoadConfig(filename string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		slog.Info("Config file not found, using environment", slog.String("path", filename))
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	loadConfigFromEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fails when a required secret or setting is missing or out of range.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &ValidationError{Fields: fieldNames(verrs)}
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ValidationError lists the config fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %v", e.Fields)
}

func fieldNames(verrs validator.ValidationErrors) []string {
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Namespace())
	}
	return out
}

// loadConfigFromEnv only sets values that are not already set.
func loadConfigFromEnv(cfg *Config) {
	setFromEnv(&cfg.Discord.Token, "DISCORD_TOKEN")
	setFromEnv(&cfg.Osu.ClientID, "OSU_CLIENT_ID")
	setFromEnv(&cfg.Osu.ClientSecret, "OSU_CLIENT_SECRET")
	setFromEnv(&cfg.Osu.BaseURL, "OSU_API_URL")
	setFromEnv(&cfg.Storage.LinkedAccountsPath, "LINKED_ACCOUNTS_PATH")
	setFromEnv(&cfg.Storage.SettingsPath, "SETTINGS_PATH")
	setFromEnv(&cfg.Storage.EmojisPath, "EMOJIS_PATH")
	setFromEnv(&cfg.Service.Name, "SERVICE_NAME")
	setFromEnv(&cfg.Loki.URL, "LOKI_URL")
	setFromEnv(&cfg.Loki.TenantID, "LOKI_TENANT_ID")
	setFromEnv(&cfg.Tempo.Endpoint, "TEMPO_ENDPOINT")
	setFromEnv(&cfg.Observability.HealthAddr, "HEALTH_ADDR")
	setFromEnv(&cfg.Observability.LogLevel, "LOG_LEVEL")

	if cfg.TopPlays.Limit == 0 {
		if v, err := strconv.Atoi(os.Getenv("TOP_PLAYS_LIMIT")); err == nil {
			cfg.TopPlays.Limit = v
		}
	}
}

func setFromEnv(dst *string, key string) {
	if *dst == "" {
		*dst = os.Getenv(key)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Osu.BaseURL == "" {
		cfg.Osu.BaseURL = "https://osu.ppy.sh/api/v2"
	}
	if cfg.Osu.TokenURL == "" {
		cfg.Osu.TokenURL = "https://osu.ppy.sh/oauth/token"
	}
	if cfg.Osu.Timeout == 0 {
		cfg.Osu.Timeout = 10 * time.Second
	}
	if cfg.Osu.MaxRetries == 0 {
		cfg.Osu.MaxRetries = 3
	}
	if cfg.Storage.LinkedAccountsPath == "" {
		cfg.Storage.LinkedAccountsPath = "linkedAccounts.json"
	}
	if cfg.Storage.SettingsPath == "" {
		cfg.Storage.SettingsPath = "config.json"
	}
	if cfg.Storage.EmojisPath == "" {
		cfg.Storage.EmojisPath = "emojis.json"
	}
	if cfg.TopPlays.Limit == 0 {
		cfg.TopPlays.Limit = 100
	}
	if cfg.TopPlays.PageSize == 0 {
		cfg.TopPlays.PageSize = 5
	}
	if cfg.TopPlays.SessionIdle == 0 {
		cfg.TopPlays.SessionIdle = 120 * time.Second
	}
	if cfg.TopPlays.StarRatingTimeout == 0 {
		cfg.TopPlays.StarRatingTimeout = 8 * time.Second
	}
	if cfg.TopPlays.StarRatingCacheTTL == 0 {
		cfg.TopPlays.StarRatingCacheTTL = 24 * time.Hour
	}
	if cfg.TopPlays.StarRatingCacheMaxMB == 0 {
		cfg.TopPlays.StarRatingCacheMaxMB = 16
	}
	if cfg.Service.Name == "" {
		cfg.Service.Name = "discord-osu-bot"
	}
	if cfg.Observability.HealthAddr == "" {
		cfg.Observability.HealthAddr = ":8080"
	}
}

// SlogLevel maps the configured log level name onto slog, defaulting to info.
func (c ObservabilityConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
