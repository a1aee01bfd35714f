package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/btcsuite/btcd/chaincfg"
	"gopkg.in/yaml.v3"
)

var GlobalConfig *Config
var GlobalNetwork *chaincfg.Params

type LayoutConfig struct {
	Iterations int   `yaml:"iterations"`
	Seed       int64 `yaml:"seed"` // 0 = time-based seed per run
}

type Config struct {
	Network          string       `yaml:"network"`
	DataDir          string       `yaml:"data_dir"`
	BackupDir        string       `yaml:"backup_dir"`
	RestoreSnapshot  string       `yaml:"restore_snapshot"` // optional snapshot loaded at startup
	ShardCount       int          `yaml:"shard_count"`
	APIPort          string       `yaml:"api_port"`
	GraphCacheSize   int          `yaml:"graph_cache_size"`
	ValidateAddrs    bool         `yaml:"validate_addresses"`
	Layout           LayoutConfig `yaml:"layout"`
	LayoutDeadlineMS int          `yaml:"layout_deadline_ms"` // per-request layout budget
}

func (c *Config) GetChainParams() (*chaincfg.Params, error) {
	switch c.Network {
	case "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network: %s", c.Network)
	}
}

func LoadConfig(path string) (*Config, error) {
	configFlag := flag.String("config", "", "path to config file")
	flag.Parse()
	// Default config
	cfg := &Config{
		Network:          "mainnet",
		DataDir:          "data",
		BackupDir:        "data/backups",
		ShardCount:       4,
		APIPort:          "8080",
		GraphCacheSize:   64,
		ValidateAddrs:    true,
		Layout:           LayoutConfig{Iterations: 100},
		LayoutDeadlineMS: 5000,
	}

	// Try to load from config file
	configPath := *configFlag
	if configPath == "" {
		configPath = path
	}

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Override with environment variables if set
	if network := os.Getenv("NETWORK"); network != "" {
		cfg.Network = network
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if backupDir := os.Getenv("BACKUP_DIR"); backupDir != "" {
		cfg.BackupDir = backupDir
	}
	if port := os.Getenv("API_PORT"); port != "" {
		cfg.APIPort = port
	}
	if snapshot := os.Getenv("RESTORE_SNAPSHOT"); snapshot != "" {
		cfg.RestoreSnapshot = snapshot
	}
	if iters := os.Getenv("LAYOUT_ITERATIONS"); iters != "" {
		n, err := strconv.Atoi(iters)
		if err == nil && n > 0 {
			cfg.Layout.Iterations = n
		}
	}

	params, err := cfg.GetChainParams()
	if err != nil {
		return nil, fmt.Errorf("network configuration validation failed: %w", err)
	}

	fmt.Printf("Initialized for network: %s\n", cfg.Network)
	fmt.Printf("Data directory: %s\n", cfg.DataDir)

	// Ensure data dir exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	GlobalConfig = cfg
	GlobalNetwork = params
	return cfg, nil
}
