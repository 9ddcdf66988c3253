// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Host string `envconfig:"MOBIL_HOST" yaml:"host"`
	Port int    `envconfig:"MOBIL_PORT" yaml:"port"`

	// EnableML toggles the similarity retrieval path. When false the
	// recommender runs filter-only over the CSV catalog.
	EnableML bool `envconfig:"MOBIL_ENABLE_ML" yaml:"enable_ml"`

	// EnableNarrative toggles the conversational answer endpoint.
	EnableNarrative bool `envconfig:"MOBIL_ENABLE_NARRATIVE" yaml:"enable_narrative"`

	// Dataset configuration
	Dataset DatasetConfig `yaml:"dataset"`

	// Qdrant configuration
	Qdrant QdrantConfig `yaml:"qdrant"`

	// Ollama configuration
	Ollama OllamaConfig `yaml:"ollama"`

	// Recommend configuration
	Recommend RecommendConfig `yaml:"recommend"`

	// Session configuration
	Session SessionConfig `yaml:"session"`

	// Bus configuration
	Bus BusConfig `yaml:"bus"`

	// Logging configuration
	Log LogConfig `yaml:"log"`

	// Security configuration
	Security SecurityConfig `yaml:"security"`
}

// DatasetConfig holds catalog CSV settings.
type DatasetConfig struct {
	Path        string `envconfig:"MOBIL_DATASET_PATH" yaml:"path"`
	CurrentYear int    `envconfig:"MOBIL_CURRENT_YEAR" yaml:"current_year"`
}

// QdrantConfig holds Qdrant connection settings.
type QdrantConfig struct {
	Host       string `envconfig:"QDRANT_HOST" yaml:"host"`
	Port       int    `envconfig:"QDRANT_PORT" yaml:"port"`
	APIKey     string `envconfig:"QDRANT_API_KEY" yaml:"api_key"`
	UseTLS     bool   `envconfig:"QDRANT_USE_TLS" yaml:"use_tls"`
	Collection string `envconfig:"QDRANT_COLLECTION" yaml:"collection"`
}

// OllamaConfig holds Ollama settings for embeddings and generation.
type OllamaConfig struct {
	URL            string `envconfig:"MOBIL_OLLAMA_URL" yaml:"url"`
	EmbedModel     string `envconfig:"MOBIL_EMBED_MODEL" yaml:"embed_model"`
	EmbedDim       int    `envconfig:"MOBIL_EMBED_DIM" yaml:"embed_dim"`
	GenerateModel  string `envconfig:"MOBIL_GENERATE_MODEL" yaml:"generate_model"`
	EmbedCacheSize int    `envconfig:"MOBIL_EMBED_CACHE_SIZE" yaml:"embed_cache_size"`
}

// RecommendConfig holds recommendation pipeline settings.
type RecommendConfig struct {
	DefaultTopK   int `envconfig:"MOBIL_DEFAULT_TOP_K" yaml:"default_top_k"`
	PrefetchLimit int `envconfig:"MOBIL_PREFETCH_LIMIT" yaml:"prefetch_limit"`
	AgeThreshold  int `envconfig:"MOBIL_AGE_THRESHOLD" yaml:"age_threshold"`
	IndexWorkers  int `envconfig:"MOBIL_INDEX_WORKERS" yaml:"index_workers"`
}

// SessionConfig holds session store settings.
type SessionConfig struct {
	Type       string `envconfig:"MOBIL_SESSION_TYPE" yaml:"type"`
	RedisURL   string `envconfig:"MOBIL_REDIS_URL" yaml:"redis_url"`
	TTLMinutes int    `envconfig:"MOBIL_SESSION_TTL_MINUTES" yaml:"ttl_minutes"`
}

// BusConfig holds event bus settings.
type BusConfig struct {
	Type         string `envconfig:"MOBIL_BUS_TYPE" yaml:"type"`
	KafkaBrokers string `envconfig:"MOBIL_KAFKA_BROKERS" yaml:"kafka_brokers"`
	KafkaGroup   string `envconfig:"MOBIL_KAFKA_GROUP" yaml:"kafka_group"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"MOBIL_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"MOBIL_LOG_FORMAT" yaml:"format"`
}

// SecurityConfig holds security settings.
type SecurityConfig struct {
	RateLimit   int    `envconfig:"MOBIL_RATE_LIMIT" yaml:"rate_limit"` // requests/s, 0 = disabled
	RateBurst   int    `envconfig:"MOBIL_RATE_BURST" yaml:"rate_burst"`
	CORSOrigins string `envconfig:"MOBIL_CORS_ORIGINS" yaml:"cors_origins"`
}

// Load loads configuration from environment variables and optional config file.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	setDefaults(cfg)

	// YAML overrides defaults, environment overrides both.
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	cfg.Host = "0.0.0.0"
	cfg.Port = 8080
	cfg.EnableML = true
	cfg.EnableNarrative = true

	cfg.Dataset = DatasetConfig{
		Path: "data/mobil_bekas.csv",
	}

	cfg.Qdrant = QdrantConfig{
		Host:       "localhost",
		Port:       6334,
		Collection: "cars",
	}

	cfg.Ollama = OllamaConfig{
		URL:            "http://localhost:11434",
		EmbedModel:     "nomic-embed-text",
		EmbedDim:       768,
		GenerateModel:  "mistral",
		EmbedCacheSize: 10000,
	}

	cfg.Recommend = RecommendConfig{
		DefaultTopK:   5,
		PrefetchLimit: 30,
		AgeThreshold:  5,
		IndexWorkers:  4,
	}

	cfg.Session = SessionConfig{
		Type:       "memory",
		RedisURL:   "redis://localhost:6379",
		TTLMinutes: 30,
	}

	cfg.Bus = BusConfig{
		Type: "memory",
	}

	cfg.Log = LogConfig{
		Level:  "info",
		Format: "text",
	}

	cfg.Security = SecurityConfig{
		RateLimit:   0,
		RateBurst:   100,
		CORSOrigins: "*",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}

	if c.Dataset.Path == "" {
		errs = append(errs, "dataset path must be set")
	}

	if c.Ollama.EmbedDim < 1 {
		errs = append(errs, "embed_dim must be positive")
	}

	if c.Recommend.DefaultTopK < 1 || c.Recommend.DefaultTopK > 50 {
		errs = append(errs, "default_top_k must be between 1 and 50")
	}

	if c.Recommend.PrefetchLimit < 1 {
		errs = append(errs, "prefetch_limit must be positive")
	}

	if c.Recommend.AgeThreshold < 1 {
		errs = append(errs, "age_threshold must be positive")
	}

	validSessionTypes := map[string]bool{"memory": true, "redis": true}
	if !validSessionTypes[c.Session.Type] {
		errs = append(errs, fmt.Sprintf("invalid session type: %s (must be memory or redis)", c.Session.Type))
	}

	validBusTypes := map[string]bool{"memory": true, "kafka": true}
	if !validBusTypes[c.Bus.Type] {
		errs = append(errs, fmt.Sprintf("invalid bus type: %s (must be memory or kafka)", c.Bus.Type))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
