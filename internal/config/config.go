package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const envPrefix = "BINFINDER_"

type Config struct {
	Server      ServerConfig    `yaml:"server"`
	Data        DataConfig      `yaml:"data"`
	Origin      OriginConfig    `yaml:"origin"`
	Sort        SortConfig      `yaml:"sort"`
	Session     SessionConfig   `yaml:"session"`
	Geocoding   GeocodingConfig `yaml:"geocoding"`
	Jobs        JobsConfig      `yaml:"jobs"`
	RateLimit   RateLimitConfig `yaml:"rateLimit"`
	Logging     LoggingConfig   `yaml:"logging"`
	Environment string          `yaml:"environment" validate:"oneof=development test production"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" validate:"min=0"`
}

// DataConfig points at the bin dataset. An .xlsx path is read from Sheet
// (first sheet when empty); anything else is parsed as JSON.
type DataConfig struct {
	BinsPath string `yaml:"binsPath"`
	Sheet    string `yaml:"sheet"`
}

// OriginConfig is the fallback origin for sessions without a location.
type OriginConfig struct {
	Lat float64 `yaml:"lat" validate:"min=-90,max=90"`
	Lng float64 `yaml:"lng" validate:"min=-180,max=180"`
}

type SortConfig struct {
	Policy string `yaml:"policy" validate:"omitempty,oneof=passthrough strict"`
}

type SessionConfig struct {
	Secret      string `yaml:"secret"`
	CookieName  string `yaml:"cookieName" validate:"required"`
	MaxSessions int    `yaml:"maxSessions" validate:"min=1"`
}

type GeocodingConfig struct {
	Enabled     bool          `yaml:"enabled"`
	BaseURL     string        `yaml:"baseURL" validate:"omitempty,url"`
	Email       string        `yaml:"email" validate:"omitempty,email"`
	RateLimit   float64       `yaml:"rateLimit" validate:"gt=0"`
	CacheSize   int           `yaml:"cacheSize" validate:"min=1"`
	HistorySize int           `yaml:"historySize" validate:"min=1"`
	Retries     int           `yaml:"retries" validate:"min=0,max=10"`
	Backoff     time.Duration `yaml:"backoff" validate:"min=0"`
}

type JobsConfig struct {
	UploadDir string `yaml:"uploadDir" validate:"required"`
	OutputDir string `yaml:"outputDir" validate:"required"`
	Workers   int    `yaml:"workers" validate:"min=0"`
	MaxJobs   int    `yaml:"maxJobs" validate:"min=1"`
}

type RateLimitConfig struct {
	PerMinute int `yaml:"perMinute" validate:"min=0"`
	Burst     int `yaml:"burst" validate:"min=0"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"omitempty,oneof=json console"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080, ShutdownTimeout: 10 * time.Second},
		Data:   DataConfig{BinsPath: "data/clothing_bins.json"},
		Origin: OriginConfig{Lat: 37.5665, Lng: 126.9780},
		Sort:   SortConfig{Policy: "passthrough"},
		Session: SessionConfig{
			CookieName:  "binfinder_session",
			MaxSessions: 1000,
		},
		Geocoding: GeocodingConfig{
			BaseURL:     "https://nominatim.openstreetmap.org",
			RateLimit:   1,
			CacheSize:   100,
			HistorySize: 20,
			Retries:     2,
			Backoff:     time.Second,
		},
		Jobs:        JobsConfig{UploadDir: "uploads", OutputDir: "outputs", MaxJobs: 100},
		RateLimit:   RateLimitConfig{PerMinute: 120, Burst: 20},
		Logging:     LoggingConfig{Level: "info", Format: "json"},
		Environment: "development",
	}
}

// Load layers defaults, the YAML file at path (skipped when empty) and
// BINFINDER_* environment variables, then validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.ShutdownTimeout = getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)

	cfg.Data.BinsPath = getEnv("DATA_BINS_PATH", cfg.Data.BinsPath)
	cfg.Data.Sheet = getEnv("DATA_SHEET", cfg.Data.Sheet)

	cfg.Origin.Lat = getEnvFloat("ORIGIN_LAT", cfg.Origin.Lat)
	cfg.Origin.Lng = getEnvFloat("ORIGIN_LNG", cfg.Origin.Lng)

	cfg.Sort.Policy = getEnv("SORT_POLICY", cfg.Sort.Policy)

	cfg.Session.Secret = getEnv("SESSION_SECRET", cfg.Session.Secret)
	cfg.Session.CookieName = getEnv("SESSION_COOKIE_NAME", cfg.Session.CookieName)
	cfg.Session.MaxSessions = getEnvInt("SESSION_MAX", cfg.Session.MaxSessions)

	cfg.Geocoding.Enabled = getEnvBool("GEOCODING_ENABLED", cfg.Geocoding.Enabled)
	cfg.Geocoding.BaseURL = getEnv("GEOCODING_BASE_URL", cfg.Geocoding.BaseURL)
	cfg.Geocoding.Email = getEnv("GEOCODING_EMAIL", cfg.Geocoding.Email)
	cfg.Geocoding.RateLimit = getEnvFloat("GEOCODING_RATE_LIMIT", cfg.Geocoding.RateLimit)
	cfg.Geocoding.CacheSize = getEnvInt("GEOCODING_CACHE_SIZE", cfg.Geocoding.CacheSize)
	cfg.Geocoding.HistorySize = getEnvInt("GEOCODING_HISTORY_SIZE", cfg.Geocoding.HistorySize)
	cfg.Geocoding.Retries = getEnvInt("GEOCODING_RETRIES", cfg.Geocoding.Retries)
	cfg.Geocoding.Backoff = getEnvDuration("GEOCODING_BACKOFF", cfg.Geocoding.Backoff)

	cfg.Jobs.UploadDir = getEnv("JOBS_UPLOAD_DIR", cfg.Jobs.UploadDir)
	cfg.Jobs.OutputDir = getEnv("JOBS_OUTPUT_DIR", cfg.Jobs.OutputDir)
	cfg.Jobs.Workers = getEnvInt("JOBS_WORKERS", cfg.Jobs.Workers)
	cfg.Jobs.MaxJobs = getEnvInt("JOBS_MAX", cfg.Jobs.MaxJobs)

	cfg.RateLimit.PerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimit.PerMinute)
	cfg.RateLimit.Burst = getEnvInt("RATE_LIMIT_BURST", cfg.RateLimit.Burst)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
}

var validate = validator.New()

// Validate checks field constraints plus the rules that span fields.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Geocoding.Enabled && c.Geocoding.BaseURL == "" {
		return fmt.Errorf("invalid config: BINFINDER_GEOCODING_BASE_URL is required when geocoding is enabled")
	}
	if c.Environment == "production" && len(c.Session.Secret) < 32 {
		return fmt.Errorf("invalid config: BINFINDER_SESSION_SECRET must be at least 32 characters in production")
	}
	return nil
}

// Addr is host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(envPrefix + key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(envPrefix + key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(envPrefix + key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(envPrefix + key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
