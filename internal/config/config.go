// Package config loads and validates application configuration from YAML files
// and environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Identity      IdentityConfig      `yaml:"identity"`
	Storage       StorageConfig       `yaml:"storage"`
	Editor        EditorConfig        `yaml:"editor"`
	Seeds         SeedsConfig         `yaml:"seeds"`
	Payment       PaymentConfig       `yaml:"payment"`
	Media         MediaConfig         `yaml:"media"`
	Jobs          JobsConfig          `yaml:"jobs"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig describes HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	HandlerTimeout  time.Duration `yaml:"handler_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORS            CORSConfig    `yaml:"cors"`
}

// CORSConfig describes Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// IdentityConfig describes admin JWT settings. Tokens are symmetric HS256;
// the secret is read from the environment variable named by SecretEnv so it
// never appears in config files.
type IdentityConfig struct {
	Issuer    string `yaml:"issuer"`
	Audience  string `yaml:"audience"`
	SecretEnv string `yaml:"secret_env"`
}

// StorageConfig selects and configures the persistence driver.
type StorageConfig struct {
	// Driver is one of "memory", "postgres", or "sqlite".
	Driver string `yaml:"driver"`

	// DSNEnv names the environment variable holding the postgres DSN.
	DSNEnv string `yaml:"dsn_env"`

	// Path is the sqlite database file.
	Path string `yaml:"path"`
}

// EditorConfig tunes the page-editor session layer.
type EditorConfig struct {
	HistoryLimit int           `yaml:"history_limit"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
}

// SeedsConfig describes where to find seed page YAML files.
type SeedsConfig struct {
	Directory string `yaml:"directory"`
	HotReload bool   `yaml:"hot_reload"`
}

// PaymentConfig describes the checkout provider. Keys are read from the
// environment variables named here.
type PaymentConfig struct {
	Enabled          bool   `yaml:"enabled"`
	APIBaseURL       string `yaml:"api_base_url"`
	SecretKeyEnv     string `yaml:"secret_key_env"`
	WebhookSecretEnv string `yaml:"webhook_secret_env"`
	SuccessURL       string `yaml:"success_url"`
	CancelURL        string `yaml:"cancel_url"`
	BookPriceCents   int64  `yaml:"book_price_cents"`
	Currency         string `yaml:"currency"`
}

// MediaConfig describes uploaded asset storage.
type MediaConfig struct {
	Directory  string `yaml:"directory"`
	PublicPath string `yaml:"public_path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
}

// JobsConfig holds cron specs for the background maintenance jobs.
type JobsConfig struct {
	Enabled            bool   `yaml:"enabled"`
	SessionSweepSpec   string `yaml:"session_sweep_spec"`
	DownloadExpirySpec string `yaml:"download_expiry_spec"`
}

// ObservabilityConfig describes logging, tracing, and metrics settings.
type ObservabilityConfig struct {
	LogLevel string        `yaml:"log_level"`
	Tracing  TracingConfig `yaml:"tracing"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// TracingConfig describes distributed tracing settings.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// MetricsConfig describes Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			HandlerTimeout:  25 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORS: CORSConfig{
				AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Authorization", "Content-Type", "X-Correlation-Id"},
				MaxAge:         86400,
			},
		},
		Identity: IdentityConfig{
			Issuer:    "studio",
			Audience:  "studio-admin",
			SecretEnv: "STUDIO_JWT_SECRET",
		},
		Storage: StorageConfig{
			Driver: "memory",
			DSNEnv: "STUDIO_DATABASE_URL",
			Path:   "studio.db",
		},
		Editor: EditorConfig{
			HistoryLimit: 50,
			SessionTTL:   2 * time.Hour,
		},
		Seeds: SeedsConfig{
			Directory: "seeds",
		},
		Payment: PaymentConfig{
			APIBaseURL:       "https://api.stripe.com",
			SecretKeyEnv:     "STUDIO_PAYMENT_SECRET_KEY",
			WebhookSecretEnv: "STUDIO_PAYMENT_WEBHOOK_SECRET",
			BookPriceCents:   1999,
			Currency:         "usd",
		},
		Media: MediaConfig{
			Directory:  "media",
			PublicPath: "/media",
			MaxSizeMB:  10,
		},
		Jobs: JobsConfig{
			Enabled:            true,
			SessionSweepSpec:   "*/10 * * * *",
			DownloadExpirySpec: "0 3 * * *",
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
			Tracing: TracingConfig{
				Exporter:     "otlp",
				SamplingRate: 0.1,
			},
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}

// Load reads a YAML config file, applies environment variable overrides,
// and validates required fields.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required fields are present and valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	switch c.Storage.Driver {
	case "memory", "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("storage.driver %q must be memory, postgres, or sqlite", c.Storage.Driver))
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSNEnv == "" {
		errs = append(errs, "storage.dsn_env is required for the postgres driver")
	}
	if c.Storage.Driver == "sqlite" && c.Storage.Path == "" {
		errs = append(errs, "storage.path is required for the sqlite driver")
	}
	if c.Identity.SecretEnv == "" {
		errs = append(errs, "identity.secret_env is required")
	}
	if c.Editor.HistoryLimit < 2 {
		errs = append(errs, "editor.history_limit must be at least 2")
	}
	if c.Editor.SessionTTL <= 0 {
		errs = append(errs, "editor.session_ttl must be positive")
	}
	if c.Payment.Enabled {
		if c.Payment.SecretKeyEnv == "" {
			errs = append(errs, "payment.secret_key_env is required when payment is enabled")
		}
		if c.Payment.WebhookSecretEnv == "" {
			errs = append(errs, "payment.webhook_secret_env is required when payment is enabled")
		}
		if c.Payment.SuccessURL == "" {
			errs = append(errs, "payment.success_url is required when payment is enabled")
		}
		if c.Payment.BookPriceCents <= 0 {
			errs = append(errs, "payment.book_price_cents must be positive")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// JWTSecret reads the admin signing secret from the configured environment
// variable.
func (c *Config) JWTSecret() ([]byte, error) {
	v := os.Getenv(c.Identity.SecretEnv)
	if v == "" {
		return nil, fmt.Errorf("config: %s is not set", c.Identity.SecretEnv)
	}
	return []byte(v), nil
}

// applyEnvOverrides reads STUDIO_* environment variables and overrides config
// values. Only the most commonly overridden fields are supported.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STUDIO_SERVER_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("STUDIO_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("STUDIO_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("STUDIO_SEEDS_DIRECTORY"); v != "" {
		cfg.Seeds.Directory = v
	}
	if v := os.Getenv("STUDIO_OBSERVABILITY_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("STUDIO_PAYMENT_SUCCESS_URL"); v != "" {
		cfg.Payment.SuccessURL = v
	}
	if v := os.Getenv("STUDIO_PAYMENT_CANCEL_URL"); v != "" {
		cfg.Payment.CancelURL = v
	}
}
