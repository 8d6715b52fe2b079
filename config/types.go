package config

// RPCConfig configures the JSON-RPC listener
type RPCConfig struct {
	ListenAddr     string   `yaml:"listen_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// MetricsConfig configures the prometheus listener
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Faucet holds the deploy-time faucet defaults. SeedAdmins are only
// used on first-ever start, before a snapshot exists.
type Faucet struct {
	SeedAdmins []string `yaml:"seed_admins"`
	Enabled    bool     `yaml:"enabled"`
	Amount     uint64   `yaml:"amount"`
	ClaimCode  string   `yaml:"claim_code"`
}

// FaucetConfig holds the configuration from faucetd.yml
type FaucetConfig struct {
	DataDir                 string        `yaml:"data_dir"`
	SnapshotDir             string        `yaml:"snapshot_dir"`
	SnapshotIntervalSeconds int           `yaml:"snapshot_interval_seconds"`
	RPC                     RPCConfig     `yaml:"rpc"`
	Metrics                 MetricsConfig `yaml:"metrics"`
	Faucet                  Faucet        `yaml:"faucet"`
}

// ConfigFile is the top-level structure for faucetd.yml
type ConfigFile struct {
	Config FaucetConfig `yaml:"config"`
}
