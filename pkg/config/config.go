package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Client    ClientConfig    `yaml:"client"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
	Catalog   CatalogConfig   `yaml:"catalog"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AdminAddr      string   `yaml:"admin_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	EmbedModel  string  `yaml:"embed_model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`

	// Disabled skips the model entirely; every LLM-backed answer uses its template.
	Disabled bool `yaml:"disabled"`
}

type DatabaseConfig struct {
	URL        string `yaml:"url"`
	TableName  string `yaml:"table_name"`
	AdminTable string `yaml:"admin_table"`
	VectorDim  int    `yaml:"vector_dim"`
	BatchSize  int    `yaml:"batch_size"`
}

type CacheConfig struct {
	Path string `yaml:"path"`

	// ClearOnStart empties the cache when the server starts.
	ClearOnStart bool `yaml:"clear_on_start"`
}

type ClientConfig struct {
	BaseURL      string        `yaml:"base_url"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type CatalogConfig struct {
	// Path overrides the embedded mock catalog.
	Path string `yaml:"path"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"museum.yaml",
			"museum.yml",
			filepath.Join(os.Getenv("HOME"), ".config/museum/config.yaml"),
			"/etc/museum/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Addr == "" {
		config.Server.Addr = ":5000"
	}
	if config.Server.AdminAddr == "" {
		config.Server.AdminAddr = ":5001"
	}
	if len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = []string{"*"}
	}

	if config.LLM.Model == "" {
		config.LLM.Model = "mistral"
	}
	if config.LLM.EmbedModel == "" {
		config.LLM.EmbedModel = "nomic-embed-text"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 500
	}
	if config.LLM.Temperature == 0 {
		config.LLM.Temperature = 0.7
	}
	if config.LLM.BaseURL == "" {
		config.LLM.BaseURL = "http://localhost:11434"
	}

	if config.Database.TableName == "" {
		config.Database.TableName = "artifacts"
	}
	if config.Database.AdminTable == "" {
		config.Database.AdminTable = "admin_artifacts"
	}
	if config.Database.VectorDim == 0 {
		config.Database.VectorDim = 768
	}
	if config.Database.BatchSize == 0 {
		config.Database.BatchSize = 100
	}

	if config.Cache.Path == "" {
		config.Cache.Path = "explanations_cache.db"
	}

	if config.Client.BaseURL == "" {
		config.Client.BaseURL = "http://localhost:5000"
	}
	if config.Client.ProbeTimeout == 0 {
		config.Client.ProbeTimeout = 2 * time.Second
	}

	if config.RateLimit.RPS == 0 {
		config.RateLimit.RPS = 2.0
	}
	if config.RateLimit.Burst == 0 {
		config.RateLimit.Burst = 5
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
}

func mergeWithEnv(config *Config) {
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if apiURL := os.Getenv("MUSEUM_API_URL"); apiURL != "" {
		config.Client.BaseURL = apiURL
	}
	if level := os.Getenv("MUSEUM_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}
