package configloader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeoutSeconds"`
	WriteTimeout int    `yaml:"writeTimeoutSeconds"`
	IdleTimeout  int    `yaml:"idleTimeoutSeconds"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// RPCConfig holds chain RPC endpoint settings.
type RPCConfig struct {
	URL                  string   `yaml:"url"`
	FallbackURLs         []string `yaml:"fallbackUrls"`
	RequestTimeoutMillis int64    `yaml:"requestTimeoutMillis"`
}

// IndexerConfig holds proposal indexer settings.
type IndexerConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	RequestsPerSecond    float64 `yaml:"requestsPerSecond"`
	CacheTTLSeconds      int     `yaml:"cacheTTLSeconds"`
	PollMaxAttempts      int     `yaml:"pollMaxAttempts"`
	PollBaseDelayMillis  int64   `yaml:"pollBaseDelayMillis"`
}

// TokenMetaConfig holds token metadata/price backend settings.
type TokenMetaConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	RequestsPerSecond    float64 `yaml:"requestsPerSecond"`
	CacheTTLMinutes      int     `yaml:"cacheTTLMinutes"`
	MaxIDsPerRequest     int     `yaml:"maxIdsPerRequest"`
}

// SocialConfig holds social profile service settings.
type SocialConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	CacheTTLMinutes      int    `yaml:"cacheTTLMinutes"`
}

// TreasuryConfig holds treasury-domain settings.
type TreasuryConfig struct {
	LockupSuffix       string `yaml:"lockupSuffix"`
	IntentsContractID  string `yaml:"intentsContractId"`
	StakingRegistryID  string `yaml:"stakingRegistryId"`
	SnapshotTTLSeconds int    `yaml:"snapshotTTLSeconds"`
}

// PerformanceConfig holds concurrency settings.
type PerformanceConfig struct {
	MaxConcurrentRoutines int `yaml:"max_concurrent_routines"`
	RPCCallTimeoutSeconds int `yaml:"rpc_call_timeout_seconds"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	RPC         RPCConfig         `yaml:"rpc"`
	Indexer     IndexerConfig     `yaml:"indexer"`
	TokenMeta   TokenMetaConfig   `yaml:"tokenMeta"`
	Social      SocialConfig      `yaml:"social"`
	Treasury    TreasuryConfig    `yaml:"treasury"`
	Performance PerformanceConfig `yaml:"performance"`
}

// Load reads the YAML configuration file from the given path and unmarshals it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 30
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.RPC.URL == "" {
		cfg.RPC.URL = "https://rpc.mainnet.near.org"
	}
	if cfg.RPC.RequestTimeoutMillis <= 0 {
		cfg.RPC.RequestTimeoutMillis = 10000
	}

	if cfg.Indexer.RequestTimeoutMillis <= 0 {
		cfg.Indexer.RequestTimeoutMillis = 10000
	}
	if cfg.Indexer.RequestsPerSecond <= 0 {
		cfg.Indexer.RequestsPerSecond = 5
	}
	if cfg.Indexer.CacheTTLSeconds <= 0 {
		cfg.Indexer.CacheTTLSeconds = 30
	}
	if cfg.Indexer.PollMaxAttempts <= 0 {
		cfg.Indexer.PollMaxAttempts = 6
	}
	if cfg.Indexer.PollBaseDelayMillis <= 0 {
		cfg.Indexer.PollBaseDelayMillis = 500
	}

	if cfg.TokenMeta.RequestTimeoutMillis <= 0 {
		cfg.TokenMeta.RequestTimeoutMillis = 10000
	}
	if cfg.TokenMeta.RequestsPerSecond <= 0 {
		cfg.TokenMeta.RequestsPerSecond = 5
	}
	if cfg.TokenMeta.CacheTTLMinutes <= 0 {
		cfg.TokenMeta.CacheTTLMinutes = 60
	}
	if cfg.TokenMeta.MaxIDsPerRequest <= 0 {
		cfg.TokenMeta.MaxIDsPerRequest = 30
	}

	if cfg.Social.RequestTimeoutMillis <= 0 {
		cfg.Social.RequestTimeoutMillis = 10000
	}
	if cfg.Social.CacheTTLMinutes <= 0 {
		cfg.Social.CacheTTLMinutes = 10
	}

	if cfg.Treasury.LockupSuffix == "" {
		cfg.Treasury.LockupSuffix = ".lockup.near"
	}
	if cfg.Treasury.IntentsContractID == "" {
		cfg.Treasury.IntentsContractID = "intents.near"
	}
	if cfg.Treasury.StakingRegistryID == "" {
		cfg.Treasury.StakingRegistryID = "pool.near"
	}
	if cfg.Treasury.SnapshotTTLSeconds <= 0 {
		cfg.Treasury.SnapshotTTLSeconds = 60
	}

	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 10
	}
	if cfg.Performance.RPCCallTimeoutSeconds <= 0 {
		cfg.Performance.RPCCallTimeoutSeconds = 10
	}
}
