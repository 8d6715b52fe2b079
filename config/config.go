package config

import (
	"fmt"
	"os"

	"faucetd/logx"

	"gopkg.in/yaml.v3"
)

// LoadFaucetConfig reads and parses the faucetd.yml file
func LoadFaucetConfig(path string) (*FaucetConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		logx.Error("CONFIG", "Failed to open config file: ", err)
		return nil, err
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfgFile); err != nil {
		logx.Error("CONFIG", "Failed to decode YAML: ", err)
		return nil, err
	}

	cfg := &cfgFile.Config
	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}

	logx.Info("CONFIG", "Loaded config: data_dir=", cfg.DataDir, ", rpc=", cfg.RPC.ListenAddr, ", seed_admins=", len(cfg.Faucet.SeedAdmins))
	return cfg, nil
}

func applyDefaults(cfg *FaucetConfig) {
	if cfg.DataDir == "" {
		cfg.DataDir = "./data/faucet"
	}
	if cfg.SnapshotDir == "" {
		cfg.SnapshotDir = "./snapshots"
	}
	if cfg.RPC.ListenAddr == "" {
		cfg.RPC.ListenAddr = ":8899"
	}
	if cfg.Metrics.ListenAddr == "" {
		cfg.Metrics.ListenAddr = ":9090"
	}
}

func validate(cfg *FaucetConfig) error {
	if len(cfg.Faucet.SeedAdmins) == 0 {
		return fmt.Errorf("config: faucet.seed_admins must not be empty")
	}
	if cfg.SnapshotIntervalSeconds < 0 {
		return fmt.Errorf("config: snapshot_interval_seconds must not be negative")
	}
	return nil
}
