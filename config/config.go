package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	RPCURLs   []RPCUrl        `json:"rpc_urls"`
	Network   Network         `json:"network"`
	Contracts ContractsConfig `json:"contracts"`
	Keystore  KeystoreConfig  `json:"keystore"`
	Farms     []Farm          `json:"farms"`
	Theme     string          `json:"theme"`
	Logger    bool            `json:"logger"`
	// PollIntervalMS is the balance refresh period in milliseconds.
	PollIntervalMS int `json:"poll_interval_ms,omitempty"`
}

// RPCUrl represents an RPC endpoint
type RPCUrl struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// Network is the single chain the dApp accepts
type Network struct {
	ChainID int64  `json:"chain_id"`
	Name    string `json:"name"`
}

// ContractsConfig points at the deployment output of the contracts pipeline
type ContractsConfig struct {
	AddressFile  string `json:"address_file"`
	ArtifactsDir string `json:"artifacts_dir,omitempty"`
}

// KeystoreConfig locates an encrypted go-ethereum keystore directory
type KeystoreConfig struct {
	Dir string `json:"dir,omitempty"`
}

// Farm is a yield-farming pool shown as an APY card
type Farm struct {
	Name    string  `json:"name"`
	Pair    string  `json:"pair"`
	Icon    string  `json:"icon,omitempty"`
	APY     float64 `json:"apy"`
	Address string  `json:"address,omitempty"`
}

const (
	ThemeDark  = "dark"
	ThemeLight = "light"

	DefaultChainID     = 31337
	DefaultNetworkName = "Localhost:8545"
	DefaultPollMS      = 1000
)

// Environment overrides
const (
	EnvConfigPath = "DAPP_CONFIG"
	EnvRPCURL     = "ETH_RPC_URL"
	EnvKeys       = "DAPP_PRIVATE_KEYS"
	EnvPassphrase = "DAPP_KEYSTORE_PASSPHRASE"
)

// Path returns the config file location, honouring DAPP_CONFIG
func Path() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".rebase-dapp.json")
}

// Load reads the config from the specified path, falling back to the
// defaults when it is missing or malformed
func Load(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig()
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig()
	}

	return cfg.withDefaults()
}

// Save writes the config to the specified path
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns a new configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		RPCURLs: []RPCUrl{
			{
				Name:   "Hardhat",
				URL:    "http://127.0.0.1:8545",
				Active: true,
			},
		},
		Network: Network{
			ChainID: DefaultChainID,
			Name:    DefaultNetworkName,
		},
		Contracts: ContractsConfig{
			AddressFile: filepath.Join("contracts", "contract-address.json"),
		},
		Farms: []Farm{
			{Name: "Genesis Pool", Pair: "TOKEN/ETH", Icon: "🌾", APY: 120.5},
			{Name: "Stable Pool", Pair: "TOKEN/DAI", Icon: "🏦", APY: 42},
		},
		Theme:          ThemeDark,
		Logger:         false,
		PollIntervalMS: DefaultPollMS,
	}
}

// LoadOrCreate loads config from path, or creates a default one if not found
func LoadOrCreate(path string) Config {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		_ = Save(path, cfg)
		return cfg
	}
	return Load(path)
}

func (c Config) withDefaults() Config {
	if c.Network.ChainID == 0 {
		c.Network.ChainID = DefaultChainID
	}
	if c.Network.Name == "" {
		c.Network.Name = DefaultNetworkName
	}
	if c.Contracts.AddressFile == "" {
		c.Contracts.AddressFile = filepath.Join("contracts", "contract-address.json")
	}
	if c.Theme != ThemeLight {
		c.Theme = ThemeDark
	}
	if c.PollIntervalMS <= 0 {
		c.PollIntervalMS = DefaultPollMS
	}
	return c
}

// PollInterval returns the balance refresh period
func (c Config) PollInterval() time.Duration {
	if c.PollIntervalMS <= 0 {
		return DefaultPollMS * time.Millisecond
	}
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// ActiveRPC returns the RPC URL to dial. ETH_RPC_URL wins over the config.
func (c Config) ActiveRPC() string {
	if env := strings.TrimSpace(os.Getenv(EnvRPCURL)); env != "" {
		return env
	}
	for _, r := range c.RPCURLs {
		if r.Active {
			return r.URL
		}
	}
	return ""
}

// PrivateKeys returns the hex keys listed in DAPP_PRIVATE_KEYS
func PrivateKeys() []string {
	raw := os.Getenv(EnvKeys)
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
