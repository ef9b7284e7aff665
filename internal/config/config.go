package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultDatasetURL is the published Hartford restaurants export.
const DefaultDatasetURL = "https://raw.githubusercontent.com/acs14007/GEOG5518restaurantfinder/main/Food_full.csv"

// Config holds the foodmap service configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Dataset DatasetConfig `yaml:"dataset"`
	S3      S3Config      `yaml:"s3"`
	Cache   CacheConfig   `yaml:"cache"`
	Mapbox  MapboxConfig  `yaml:"mapbox"`
	Page    PageConfig    `yaml:"page"`
	CORS    CORSConfig    `yaml:"cors"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatasetConfig locates the restaurants feed.
type DatasetConfig struct {
	URL             string `yaml:"url"`    // http(s):// or s3://bucket/key
	Format          string `yaml:"format"` // csv, parquet; empty = by extension
	FetchTimeoutSec int    `yaml:"fetch_timeout_sec"`
	MaxBytes        int64  `yaml:"max_bytes"`
}

// S3Config holds object storage settings for s3:// dataset URLs.
type S3Config struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"` // R2 / MinIO; empty = AWS
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// CacheConfig holds the optional Valkey/Redis dataset cache settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// MapboxConfig holds base map settings.
type MapboxConfig struct {
	TokenFile string  `yaml:"token_file"`
	Style     string  `yaml:"style"`
	Zoom      float64 `yaml:"zoom"`
}

// PageConfig holds page texts.
type PageConfig struct {
	Title   string `yaml:"title"`
	Heading string `yaml:"heading"`
}

// CORSConfig lists origins allowed to call the JSON endpoints.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands ${VAR} references, decodes YAML, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Dataset.URL == "" {
		c.Dataset.URL = DefaultDatasetURL
	}
	if c.Dataset.FetchTimeoutSec <= 0 {
		c.Dataset.FetchTimeoutSec = 30
	}
	if c.Dataset.MaxBytes <= 0 {
		c.Dataset.MaxBytes = 64 << 20
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 3600
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Mapbox.TokenFile == "" {
		c.Mapbox.TokenFile = ".mapbox_token"
	}
	if c.Mapbox.Style == "" {
		c.Mapbox.Style = "dark"
	}
	if c.Mapbox.Zoom <= 0 {
		c.Mapbox.Zoom = 10
	}
	if c.Page.Title == "" {
		c.Page.Title = "Restaurant Finder"
	}
	if c.Page.Heading == "" {
		c.Page.Heading = "Restaurants in Hartford Connecticut"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if !strings.HasPrefix(c.Dataset.URL, "http://") &&
		!strings.HasPrefix(c.Dataset.URL, "https://") &&
		!strings.HasPrefix(c.Dataset.URL, "s3://") {
		return fmt.Errorf("dataset.url must be http(s):// or s3://, got %q", c.Dataset.URL)
	}
	switch strings.ToLower(c.Dataset.Format) {
	case "", "csv", "parquet":
		// ok
	default:
		return fmt.Errorf("dataset.format must be \"csv\" or \"parquet\", got %q", c.Dataset.Format)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache is enabled")
	}
	if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
		return fmt.Errorf("s3.access_key and s3.secret_key must be set together")
	}
	if c.Mapbox.Zoom > 22 {
		return fmt.Errorf("mapbox.zoom must be at most 22, got %g", c.Mapbox.Zoom)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
