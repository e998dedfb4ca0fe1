package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/reviewsense"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendEmbedded = "embedded" // read-only reference corpus compiled into the binary
)

// Config holds all reviewsense configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Storage StorageConfig `yaml:"storage"`
	S3      S3Config      `yaml:"s3"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig configures corpus interpretation and scoring.
type EngineConfig struct {
	TopN             int    `yaml:"top_n"`
	AllowApostrophes bool   `yaml:"allow_apostrophes"`
	CountLabelTokens bool   `yaml:"count_label_tokens"`
	StrictLabels     bool   `yaml:"strict_labels"`
	Language         string `yaml:"language"` // ISO 639-1, empty disables the language stop-word list; numbers are never dropped by it
	SplitSentences   bool   `yaml:"split_sentences"`
}

// StorageConfig selects where the stopwords and the corpus live.
type StorageConfig struct {
	Backend       string `yaml:"backend"` // file, sqlite, embedded
	StopwordsPath string `yaml:"stopwords_path"`
	CorpusPath    string `yaml:"corpus_path"`
	DatabasePath  string `yaml:"database_path"`
}

// S3Config configures object storage and event handling.
type S3Config struct {
	Region            string `yaml:"region"`
	Endpoint          string `yaml:"endpoint"` // custom endpoint, e.g. a local S3-compatible server
	DestinationSuffix string `yaml:"destination_suffix"`
	OutputPrefix      string `yaml:"output_prefix"`
	AppendPrefix      string `yaml:"append_prefix"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr      string  `yaml:"addr"`
	RateLimit float64 `yaml:"rate_limit"` // requests per second, 0 disables limiting
	Burst     int     `yaml:"burst"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			TopN: reviewsense.DefaultTopN,
		},
		Storage: StorageConfig{
			Backend:       BackendFile,
			StopwordsPath: "data/stopWords.txt",
			CorpusPath:    "data/reviewsInput.txt",
			DatabasePath:  "data/reviewsense.db",
		},
		S3: S3Config{
			Region:            "us-east-1",
			DestinationSuffix: "-resized",
			OutputPrefix:      "sentimented-",
			AppendPrefix:      "append-",
		},
		Server: ServerConfig{
			Addr:  ":8080",
			Burst: 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("REVIEWSENSE_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("REVIEWSENSE_STOPWORDS"); v != "" {
		c.Storage.StopwordsPath = v
	}
	if v := os.Getenv("REVIEWSENSE_CORPUS"); v != "" {
		c.Storage.CorpusPath = v
	}
	if v := os.Getenv("REVIEWSENSE_DB"); v != "" {
		c.Storage.DatabasePath = v
	}
	if v := os.Getenv("REVIEWSENSE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("REVIEWSENSE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("REVIEWSENSE_TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.TopN = n
		}
	}

	// AWS_REGION is what the SDK and the Lambda runtime set.
	if v := os.Getenv("AWS_REGION"); v != "" {
		c.S3.Region = v
	}
	if v := os.Getenv("REVIEWSENSE_S3_ENDPOINT"); v != "" {
		c.S3.Endpoint = v
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Engine.TopN < 0 {
		return fmt.Errorf("engine.top_n must not be negative, got %d", c.Engine.TopN)
	}
	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.StopwordsPath == "" || c.Storage.CorpusPath == "" {
			return fmt.Errorf("storage.stopwords_path and storage.corpus_path are required for the file backend")
		}
	case BackendSQLite:
		if c.Storage.DatabasePath == "" {
			return fmt.Errorf("storage.database_path is required for the sqlite backend")
		}
	case BackendEmbedded:
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative")
	}
	if c.S3.DestinationSuffix == "" && c.S3.OutputPrefix == "" {
		return fmt.Errorf("s3.destination_suffix and s3.output_prefix cannot both be empty")
	}
	return nil
}

// Options converts the engine section into engine options.
func (e EngineConfig) Options() reviewsense.Config {
	return reviewsense.Config{
		TopN:             e.TopN,
		AllowApostrophes: e.AllowApostrophes,
		CountLabelTokens: e.CountLabelTokens,
		StrictLabels:     e.StrictLabels,
		Language:         e.Language,
		SplitSentences:   e.SplitSentences,
	}
}
