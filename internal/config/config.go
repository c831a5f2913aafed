package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port        int              `json:"port"`
	JWTSecret   string           `json:"jwt_secret"`
	JWTTTLHours int              `json:"jwt_ttl_hours"`
	LogConfig   logger.LogConfig `json:"log_config"`
	Database    DatabaseConfig   `json:"database"`
	Index       IndexConfig      `json:"index"`
	AI          AIConfig         `json:"ai"`
	FileStore   FileStoreConfig  `json:"file_store"`
	Limits      LimitsConfig     `json:"limits"`
	CORSOrigins []string         `json:"cors_origins"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

func (c DatabaseConfig) Enabled() bool {
	return c.DSN != "" || c.Host != ""
}

// IndexConfig selects where passages live: "pgvector" requires the
// database block, "memory" keeps everything in process.
type IndexConfig struct {
	Type string `json:"type"`
}

type ProviderConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"api_key"`
	BaseURL  string `json:"base_url"`
}

// AIConfig lists generation providers in preference order; the first one
// that constructs successfully serves all requests. Embedding names a
// single provider ("local" works without credentials).
type AIConfig struct {
	Generation []ProviderConfig `json:"generation"`
	Embedding  ProviderConfig   `json:"embedding"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type LimitsConfig struct {
	MaxUploadBytes    int64 `json:"max_upload_bytes"`
	MaxChunkTokens    int   `json:"max_chunk_tokens"`
	OverlapTokens     int   `json:"overlap_tokens"`
	TopK              int   `json:"top_k"`
	QueryRateWindowMS int   `json:"query_rate_window_ms"`
	CacheMaxAgeDays   int   `json:"cache_max_age_days"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 72
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Index.Type == "" {
		if cfg.Database.Enabled() {
			cfg.Index.Type = "pgvector"
		} else {
			cfg.Index.Type = "memory"
		}
	}
	switch cfg.Index.Type {
	case "pgvector":
		if !cfg.Database.Enabled() {
			return nil, fmt.Errorf("index.type pgvector requires a database config")
		}
	case "memory":
	default:
		return nil, fmt.Errorf("index.type must be pgvector or memory")
	}
	if cfg.AI.Embedding.Provider == "" {
		cfg.AI.Embedding.Provider = "local"
	}
	return &cfg, nil
}
