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

// Config holds the richdex API configuration.
type Config struct {
	HTTP        HTTPConfig                  `yaml:"http"`
	Database    DatabaseConfig              `yaml:"database"`
	Chunk       ChunkConfig                 `yaml:"chunk"`
	Auth        AuthConfig                  `yaml:"auth"`
	Logging     LoggingConfig               `yaml:"logging"`
	Collections map[string]CollectionConfig `yaml:"collections"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds substrate connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ChunkConfig holds write-batching settings.
type ChunkConfig struct {
	MaxBatchSize int `yaml:"max_batch_size"`
}

// CollectionConfig declares one collection: its schema, its filter
// views, and whether ids come from the shared counter.
type CollectionConfig struct {
	AutoID  bool           `yaml:"auto_id"`
	Fields  []FieldConfig  `yaml:"fields"`
	Filters []FilterConfig `yaml:"filters"`
}

// FieldConfig declares one field.
type FieldConfig struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind"` // text, numeric, time
	Indexed bool   `yaml:"indexed"`
}

// FilterConfig declares one filter view. Match is a CEL expression over
// the record, bound as "doc". An empty order_by yields an unordered view.
type FilterConfig struct {
	Name    string `yaml:"name"`
	Match   string `yaml:"match"`
	OrderBy string `yaml:"order_by"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
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
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Chunk.MaxBatchSize <= 0 {
		c.Chunk.MaxBatchSize = 1000
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	for name, col := range c.Collections {
		if err := col.validate(name); err != nil {
			return err
		}
	}
	return nil
}

func (c CollectionConfig) validate(name string) error {
	for _, f := range c.Fields {
		if f.Name == "" {
			return fmt.Errorf("collections.%s: field name is required", name)
		}
		switch f.Kind {
		case "text", "numeric", "time":
		default:
			return fmt.Errorf(
				"collections.%s.fields.%s: kind must be text, numeric or time, got %q",
				name, f.Name, f.Kind)
		}
	}
	for _, flt := range c.Filters {
		if flt.Name == "" {
			return fmt.Errorf("collections.%s: filter name is required", name)
		}
		if flt.Match == "" {
			return fmt.Errorf("collections.%s.filters.%s: match expression is required", name, flt.Name)
		}
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
