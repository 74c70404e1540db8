package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the broker-platform server.
type Config struct {
	Storage    Storage      `yaml:"storage"`
	Server     Server       `yaml:"server"`
	Logging    Logging      `yaml:"logging"`
	Auth       Auth         `yaml:"auth"`
	MarketData MarketData   `yaml:"marketdata"`
	Feed       Feed         `yaml:"feed"`
	Alpaca     Alpaca       `yaml:"alpaca"`
	Execution  Execution    `yaml:"execution"`
	Brokers    []BrokerDesc `yaml:"brokers"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir        string `yaml:"data_dir"`
	SQLitePath     string `yaml:"sqlite_path"`
	SessionPath    string `yaml:"session_path"`
	SessionBackend string `yaml:"session_backend"` // "file" (default) or "sqlite"
}

// Server holds network listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Auth configures the external credential-validation service. An empty URL
// selects the always-accept placeholder service.
type Auth struct {
	URL string `yaml:"url"`
}

// MarketData selects and tunes the quote source.
type MarketData struct {
	Source       string       `yaml:"source"` // "static" (default) or "alpaca"
	DefaultPrice float64      `yaml:"default_price"`
	LatencyMS    int          `yaml:"latency_ms"` // simulated lookup delay for the static source
	RatePerMin   int          `yaml:"rate_per_min"`
	Symbols      []SymbolDesc `yaml:"symbols"`
}

// SymbolDesc names a tradeable instrument shown in the dashboard selectors.
type SymbolDesc struct {
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
}

// Feed tunes the simulated order-book tick feed.
type Feed struct {
	IntervalMS int  `yaml:"interval_ms"`
	Depth      int  `yaml:"depth"`
	Trades     int  `yaml:"trades"`
	Record     bool `yaml:"record"` // persist generated ticks to the tick store
}

// Alpaca holds credentials and endpoints for the Alpaca APIs.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
	DataURL   string `yaml:"data_url"`
}

// Execution selects the order-submission backend.
type Execution struct {
	Broker string `yaml:"broker"` // "simulator" (default) or "alpaca"
}

// BrokerDesc describes one selectable broker on the login screen.
type BrokerDesc struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, applies environment variable overrides, and fills defaults
// for unset tunables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("SESSION_PATH"); v != "" {
		cfg.Storage.SessionPath = v
	}

	if v := os.Getenv("AUTH_URL"); v != "" {
		cfg.Auth.URL = v
	}

	if v := os.Getenv("MARKETDATA_SOURCE"); v != "" {
		cfg.MarketData.Source = v
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}

	// Standard Alpaca env vars (highest priority, canonical names used by SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}

// applyDefaults fills zero-valued tunables with their documented defaults.
func applyDefaults(cfg *Config) {
	if cfg.Storage.SessionBackend == "" {
		cfg.Storage.SessionBackend = "file"
	}
	if cfg.MarketData.Source == "" {
		cfg.MarketData.Source = "static"
	}
	if cfg.MarketData.DefaultPrice == 0 {
		cfg.MarketData.DefaultPrice = 100.00
	}
	if cfg.MarketData.RatePerMin == 0 {
		cfg.MarketData.RatePerMin = 200
	}
	if cfg.Feed.IntervalMS == 0 {
		cfg.Feed.IntervalMS = 2000
	}
	if cfg.Feed.Depth == 0 {
		cfg.Feed.Depth = 15
	}
	if cfg.Feed.Trades == 0 {
		cfg.Feed.Trades = 20
	}
	if cfg.Execution.Broker == "" {
		cfg.Execution.Broker = "simulator"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
