package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Sources     SourcesConfig     `yaml:"sources"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Storage     StorageConfig     `yaml:"storage"`
	Admin       AdminConfig       `yaml:"admin"`
	Beaches     BeachesConfig     `yaml:"beaches"`
	Overrides   OverridesConfig   `yaml:"overrides"`
	Analytics   AnalyticsConfig   `yaml:"analytics"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	RequestTimeout time.Duration   `yaml:"requestTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// SourcesConfig points the adapters at the upstream providers.
type SourcesConfig struct {
	OpenMeteoForecastURL string        `yaml:"openMeteoForecastUrl"`
	OpenMeteoMarineURL   string        `yaml:"openMeteoMarineUrl"`
	NDBCBaseURL          string        `yaml:"ndbcBaseUrl"`
	TidesURL             string        `yaml:"tidesUrl"`
	NWSBaseURL           string        `yaml:"nwsBaseUrl"`
	AlertZone            string        `yaml:"alertZone"`
	UserAgent            string        `yaml:"userAgent"`
	Timeout              time.Duration `yaml:"timeout"`
	Timezone             string        `yaml:"timezone"`
}

// AggregationConfig tunes the refresh cycle.
type AggregationConfig struct {
	CacheTTL       time.Duration `yaml:"cacheTtl"`
	MaxConcurrency int           `yaml:"maxConcurrency"`
	WarmOnStart    bool          `yaml:"warmOnStart"`
}

// StorageConfig selects where admin documents live. The first configured
// remote backend wins; otherwise JSON files under DataDir.
type StorageConfig struct {
	DataDir  string         `yaml:"dataDir"`
	Valkey   ValkeyConfig   `yaml:"valkey"`
	Postgres PostgresConfig `yaml:"postgres"`
	R2       R2Config       `yaml:"r2"`
}

// ValkeyConfig contains connection information for the KV backend.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// R2Config holds S3-compatible object storage credentials.
type R2Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
}

// Enabled reports whether enough is set to reach a bucket.
func (r R2Config) Enabled() bool {
	return strings.TrimSpace(r.Endpoint) != "" && strings.TrimSpace(r.Bucket) != "" &&
		r.AccessKey != "" && r.SecretKey != ""
}

// AdminConfig controls the admin session.
type AdminConfig struct {
	Password      string        `yaml:"password"`
	PasswordHash  string        `yaml:"passwordHash"`
	SessionSecret string        `yaml:"sessionSecret"`
	SessionTTL    time.Duration `yaml:"sessionTtl"`
	CookieName    string        `yaml:"cookieName"`
	SecureCookie  bool          `yaml:"secureCookie"`
}

// BeachesConfig locates the reference catalog. Empty uses the built-in one.
type BeachesConfig struct {
	CatalogPath string `yaml:"catalogPath"`
}

// OverridesConfig bounds the override log.
type OverridesConfig struct {
	MaxEntries int `yaml:"maxEntries"`
}

// AnalyticsConfig bounds the event log.
type AnalyticsConfig struct {
	MaxEvents int `yaml:"maxEvents"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.HTTP.Address, "HTTP_ADDRESS")
	setDuration(&cfg.HTTP.RequestTimeout, "HTTP_REQUEST_TIMEOUT")
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	setBool(&cfg.HTTP.RateLimit.Enabled, "HTTP_RATE_LIMIT_ENABLED")
	setInt(&cfg.HTTP.RateLimit.RequestsPerMinute, "HTTP_RATE_LIMIT_RPM")
	setInt(&cfg.HTTP.RateLimit.Burst, "HTTP_RATE_LIMIT_BURST")
	setBool(&cfg.HTTP.Retry.Enabled, "HTTP_RETRY_ENABLED")
	setInt(&cfg.HTTP.Retry.MaxAttempts, "HTTP_RETRY_MAX_ATTEMPTS")
	setDuration(&cfg.HTTP.Retry.BaseBackoff, "HTTP_RETRY_BASE_BACKOFF")

	setString(&cfg.Sources.NWSBaseURL, "NWS_BASE_URL")
	setString(&cfg.Sources.AlertZone, "NWS_ALERT_ZONE")
	setString(&cfg.Sources.UserAgent, "NWS_USER_AGENT")
	setDuration(&cfg.Sources.Timeout, "SOURCES_TIMEOUT")
	setString(&cfg.Sources.Timezone, "SOURCES_TIMEZONE")

	setDuration(&cfg.Aggregation.CacheTTL, "CACHE_TTL")
	setInt(&cfg.Aggregation.MaxConcurrency, "AGGREGATION_MAX_CONCURRENCY")
	setBool(&cfg.Aggregation.WarmOnStart, "AGGREGATION_WARM_ON_START")

	setString(&cfg.Storage.DataDir, "DATA_DIR")
	setBool(&cfg.Storage.Valkey.Enabled, "VALKEY_ENABLED")
	setString(&cfg.Storage.Valkey.Addr, "VALKEY_ADDR")
	setString(&cfg.Storage.Postgres.DSN, "POSTGRES_DSN")
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Postgres.MaxConns = int32(parsed)
		}
	}
	setString(&cfg.Storage.R2.Endpoint, "R2_ENDPOINT")
	setString(&cfg.Storage.R2.AccessKey, "R2_ACCESS_KEY_ID")
	setString(&cfg.Storage.R2.SecretKey, "R2_SECRET_ACCESS_KEY")
	setString(&cfg.Storage.R2.Bucket, "R2_BUCKET")

	setString(&cfg.Admin.Password, "ADMIN_PASSWORD")
	setString(&cfg.Admin.PasswordHash, "ADMIN_PASSWORD_HASH")
	setString(&cfg.Admin.SessionSecret, "ADMIN_SESSION_SECRET")
	setDuration(&cfg.Admin.SessionTTL, "ADMIN_SESSION_TTL")
	setBool(&cfg.Admin.SecureCookie, "ADMIN_SECURE_COOKIE")

	setString(&cfg.Beaches.CatalogPath, "BEACH_CATALOG_PATH")
	setInt(&cfg.Overrides.MaxEntries, "OVERRIDES_MAX_ENTRIES")
	setInt(&cfg.Analytics.MaxEvents, "ANALYTICS_MAX_EVENTS")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   20 * time.Second,
			RequestTimeout: 15 * time.Second,
			AllowedOrigins: []string{"http://localhost:3000"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/alerts",
				},
			},
		},
		Sources: SourcesConfig{
			OpenMeteoForecastURL: "https://api.open-meteo.com/v1/forecast",
			OpenMeteoMarineURL:   "https://marine-api.open-meteo.com/v1/marine",
			NDBCBaseURL:          "https://www.ndbc.noaa.gov/data/realtime2",
			TidesURL:             "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter",
			NWSBaseURL:           "https://api.weather.gov",
			AlertZone:            "CAZ509",
			UserAgent:            "(Beach Safety Dashboard, contact@beachsafety.local)",
			Timeout:              10 * time.Second,
			Timezone:             "America/Los_Angeles",
		},
		Aggregation: AggregationConfig{
			CacheTTL:       5 * time.Minute,
			MaxConcurrency: 8,
			WarmOnStart:    true,
		},
		Storage: StorageConfig{
			DataDir: "data",
			Valkey: ValkeyConfig{
				Prefix: "beachsafety",
			},
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
			R2: R2Config{
				Region: "auto",
				Prefix: "beachsafety",
			},
		},
		Admin: AdminConfig{
			SessionTTL: 8 * time.Hour,
			CookieName: "admin_session",
		},
		Overrides: OverridesConfig{MaxEntries: 100},
		Analytics: AnalyticsConfig{MaxEvents: 10000},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RequestTimeout <= 0 {
		return errors.New("http.requestTimeout must be positive")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if c.Sources.Timeout <= 0 {
		return errors.New("sources.timeout must be positive")
	}
	if _, err := time.LoadLocation(c.Sources.Timezone); err != nil {
		return fmt.Errorf("sources.timezone: %w", err)
	}
	if c.Aggregation.CacheTTL <= 0 {
		return errors.New("aggregation.cacheTtl must be positive")
	}
	if c.Aggregation.MaxConcurrency < 0 {
		return errors.New("aggregation.maxConcurrency cannot be negative")
	}
	if c.Storage.Valkey.Enabled && strings.TrimSpace(c.Storage.Valkey.Addr) == "" {
		return errors.New("storage.valkey.addr cannot be empty when valkey is enabled")
	}
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		return errors.New("storage.dataDir cannot be empty")
	}
	if c.Admin.SessionTTL <= 0 {
		return errors.New("admin.sessionTtl must be positive")
	}
	if strings.TrimSpace(c.Admin.CookieName) == "" {
		return errors.New("admin.cookieName cannot be empty")
	}
	if c.Overrides.MaxEntries <= 0 {
		return errors.New("overrides.maxEntries must be positive")
	}
	if c.Analytics.MaxEvents <= 0 {
		return errors.New("analytics.maxEvents must be positive")
	}
	return nil
}
