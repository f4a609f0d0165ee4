package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	AI         AIConfig         `yaml:"ai"`
	Geocoding  GeocodingConfig  `yaml:"geocoding"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
	// GarageAPIKey protects the garage-side status/tracking/message endpoints.
	GarageAPIKey string `yaml:"garage_api_key"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	Issuer        string        `yaml:"issuer"`
	TokenTTLHours int           `yaml:"token_ttl_hours"`
	TokenTTL      time.Duration `yaml:"-"` // Ignored by YAML parser
}

// AIConfig holds the OpenRouter gateway settings for the pre-diagnosis chat.
type AIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	Models         []string      `yaml:"models"`
	MaxRetries     int           `yaml:"max_retries"`
	BackoffBaseMS  int           `yaml:"backoff_base_ms"`
	BackoffBase    time.Duration `yaml:"-"`
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"`
	// OllamaURL points at an experimental self-hosted endpoint. Unused by the
	// fallback chain; only reported by the debug surface.
	OllamaURL string `yaml:"ollama_url"`
}

// GeocodingConfig holds the OpenCage forward-geocoding settings.
type GeocodingConfig struct {
	BaseURL         string `yaml:"base_url"`
	APIKey          string `yaml:"api_key"`
	CacheTTLMinutes int    `yaml:"cache_ttl_minutes"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	if cfg.Auth.TokenTTLHours <= 0 {
		cfg.Auth.TokenTTLHours = 24
	}
	cfg.Auth.TokenTTL = time.Duration(cfg.Auth.TokenTTLHours) * time.Hour

	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://openrouter.ai/api/v1"
	}
	if len(cfg.AI.Models) == 0 {
		cfg.AI.Models = []string{
			"meta-llama/llama-3.3-70b-instruct:free",
			"google/gemma-3-27b-it:free",
			"mistralai/mistral-small-3.1-24b-instruct:free",
		}
	}
	if cfg.AI.MaxRetries <= 0 {
		cfg.AI.MaxRetries = 2
	}
	if cfg.AI.BackoffBaseMS <= 0 {
		cfg.AI.BackoffBaseMS = 500
	}
	cfg.AI.BackoffBase = time.Duration(cfg.AI.BackoffBaseMS) * time.Millisecond
	if cfg.AI.TimeoutSeconds <= 0 {
		cfg.AI.TimeoutSeconds = 30
	}
	cfg.AI.Timeout = time.Duration(cfg.AI.TimeoutSeconds) * time.Second

	if cfg.Geocoding.BaseURL == "" {
		cfg.Geocoding.BaseURL = "https://api.opencagedata.com/geocode/v1/json"
	}
	if cfg.Geocoding.CacheTTLMinutes <= 0 {
		cfg.Geocoding.CacheTTLMinutes = 60
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
