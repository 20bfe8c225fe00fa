package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/poiesic/subseek/core"
	"gopkg.in/yaml.v3"
)

// Config holds the subseek configuration.
type Config struct {
	Corpus  CorpusConfig  `yaml:"corpus"`
	Search  SearchConfig  `yaml:"search"`
	Import  ImportConfig  `yaml:"import"`
	HTTP    HTTPConfig    `yaml:"http"`
	Logging LoggingConfig `yaml:"logging"`
}

// CorpusConfig selects where documents are read from.
// A non-empty Store takes precedence over Dir.
type CorpusConfig struct {
	Dir   string `yaml:"dir"`   // folder of JSON subtitle files (default: subtitle)
	Store string `yaml:"store"` // BadgerDB directory written by the import command
}

// SearchConfig holds search defaults and worker settings.
type SearchConfig struct {
	MinRatio      *float64 `yaml:"min_ratio"`      // default: 50
	MinSimilarity *float64 `yaml:"min_similarity"` // default: 0
	MaxResults    int      `yaml:"max_results"`    // 0 = unlimited
	PoolSize      int      `yaml:"pool_size"`      // 0 = number of CPUs
	ChunkSize     int      `yaml:"chunk_size"`
}

// ImportConfig holds import settings.
type ImportConfig struct {
	BatchSize      int  `yaml:"batch_size"`
	ReportInterval int  `yaml:"report_interval"`
	MaxRetries     int  `yaml:"max_retries"`
	RetryDelayMS   int  `yaml:"retry_delay_ms"`
	Prune          bool `yaml:"prune"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec"`
	ShutdownSec     int    `yaml:"shutdown_timeout_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: info)
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// Load reads configuration from a YAML file. An empty path returns DefaultConfig.
func Load(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
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

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Corpus.Dir == "" {
		c.Corpus.Dir = "subtitle"
	}
	if c.Search.MinRatio == nil {
		v := core.DefaultMinMatchRatio
		c.Search.MinRatio = &v
	}
	if c.Search.MinSimilarity == nil {
		v := core.DefaultMinOriginalSimilarity
		c.Search.MinSimilarity = &v
	}
	if c.Search.ChunkSize <= 0 {
		c.Search.ChunkSize = 256
	}
	if c.Import.BatchSize <= 0 {
		c.Import.BatchSize = 50
	}
	if c.Import.ReportInterval <= 0 {
		c.Import.ReportInterval = 100
	}
	if c.Import.MaxRetries <= 0 {
		c.Import.MaxRetries = 3
	}
	if c.Import.RetryDelayMS <= 0 {
		c.Import.RetryDelayMS = 100
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Search.MinRatio != nil {
		if v := *c.Search.MinRatio; !(v >= 0 && v <= 100) {
			return fmt.Errorf("search.min_ratio must be between 0 and 100, got %v", v)
		}
	}
	if c.Search.MinSimilarity != nil {
		if v := *c.Search.MinSimilarity; !(v >= 0 && v <= 1) {
			return fmt.Errorf("search.min_similarity must be between 0 and 1, got %v", v)
		}
	}
	if c.Search.MaxResults < 0 {
		return fmt.Errorf("search.max_results must not be negative, got %d", c.Search.MaxResults)
	}
	if c.Search.PoolSize < 0 {
		return fmt.Errorf("search.pool_size must not be negative, got %d", c.Search.PoolSize)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
		// ok
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}

// SearchParams returns the configured search defaults for query.
func (c *Config) SearchParams(query string) core.SearchParams {
	params := core.DefaultSearchParams(query)
	if c.Search.MinRatio != nil {
		params.MinMatchRatio = *c.Search.MinRatio
	}
	if c.Search.MinSimilarity != nil {
		params.MinOriginalSimilarity = *c.Search.MinSimilarity
	}
	if c.Search.MaxResults > 0 {
		params.MaxResults = core.Limit(c.Search.MaxResults)
	}
	return params
}

// RetryDelay returns the import retry base delay.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Import.RetryDelayMS) * time.Millisecond
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
