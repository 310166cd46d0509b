package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the reportdex API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Cache    CacheConfig    `yaml:"cache"`
	Search   SearchConfig   `yaml:"search"`
	Auth     AuthConfig     `yaml:"auth"`
	Facets   FacetsConfig   `yaml:"facets"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"` // default: determined by env
}

// AuthConfig holds API authentication settings. Keys guard the revalidation route.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds document store settings.
type DatabaseConfig struct {
	DSN            string `yaml:"dsn" validate:"required"`
	QueryTimeoutMs int    `yaml:"query_timeout_ms" validate:"min=1,max=600000"`
	MaxOpenConns   int    `yaml:"max_open_conns" validate:"min=1,max=256"`
	AutoMigrate    bool   `yaml:"auto_migrate"`
}

// RedisConfig holds the shared cache tier connection. Disabled means edge-only caching.
type RedisConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db" validate:"min=0,max=15"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// CacheConfig holds result cache windows and the edge tier bounds.
type CacheConfig struct {
	Disabled        bool `yaml:"disabled"`
	DocumentsTTLSec int  `yaml:"documents_ttl_sec" validate:"min=1"`
	FacetsTTLSec    int  `yaml:"facets_ttl_sec" validate:"min=1"`
	EdgeTTLSec      int  `yaml:"edge_ttl_sec" validate:"min=1"`
	EdgeSize        int  `yaml:"edge_size" validate:"min=1,max=1000000"`
}

// SearchConfig holds pagination bounds.
type SearchConfig struct {
	DefaultPageSize int `yaml:"default_page_size" validate:"min=1"`
	MaxPageSize     int `yaml:"max_page_size" validate:"min=1,max=1000"`
}

// FacetsConfig holds the static code-to-label vocabularies.
type FacetsConfig struct {
	Industries []OptionConfig `yaml:"industries" validate:"dive"`
	Columns    []OptionConfig `yaml:"columns" validate:"dive"`
}

// OptionConfig is one configured vocabulary entry.
type OptionConfig struct {
	Value string `yaml:"value" validate:"required"`
	Label string `yaml:"label" validate:"required"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, seeds the environment first.
func Load(env string) (Config, error) {
	_ = godotenv.Load()

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands ${VAR} references in data and decodes, defaults and validates it.
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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.QueryTimeoutMs <= 0 {
		c.Database.QueryTimeoutMs = 5000
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 4
	}
	if c.Redis.ReadinessTimeout <= 0 {
		c.Redis.ReadinessTimeout = 10
	}
	if c.Cache.DocumentsTTLSec <= 0 {
		c.Cache.DocumentsTTLSec = 600
	}
	if c.Cache.FacetsTTLSec <= 0 {
		c.Cache.FacetsTTLSec = 86400
	}
	if c.Cache.EdgeTTLSec <= 0 {
		c.Cache.EdgeTTLSec = 30
	}
	if c.Cache.EdgeSize <= 0 {
		c.Cache.EdgeSize = 4096
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 20
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}
}

var validate = validator.New()

// Validate checks field ranges (struct tags) and cross-field invariants.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("validate: %w", err)
	}
	if c.Redis.Enabled && len(c.Redis.Addrs) == 0 {
		return fmt.Errorf("redis.addrs is required when redis is enabled")
	}
	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size (%d) exceeds search.max_page_size (%d)",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}
	return nil
}

// QueryTimeout is the per-call store deadline.
func (c *DatabaseConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutMs) * time.Millisecond
}

// DocumentsWindow is the freshness window of cached search results.
func (c *CacheConfig) DocumentsWindow() time.Duration {
	return time.Duration(c.DocumentsTTLSec) * time.Second
}

// FacetsWindow is the freshness window of the cached facet vocabulary.
func (c *CacheConfig) FacetsWindow() time.Duration {
	return time.Duration(c.FacetsTTLSec) * time.Second
}

// EdgeWindow caps how long the in-process tier serves an entry.
func (c *CacheConfig) EdgeWindow() time.Duration {
	return time.Duration(c.EdgeTTLSec) * time.Second
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
