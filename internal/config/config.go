package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the complete configuration
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Redis     RedisConfig     `toml:"redis"`
	Inventory InventoryConfig `toml:"inventory"`
	Alerts    AlertsConfig    `toml:"alerts"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Port string `toml:"port"`
}

// DatabaseConfig contains the Postgres connection settings
type DatabaseConfig struct {
	URL string `toml:"url"`
}

// RedisConfig contains the projection cache settings
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// InventoryConfig contains ledger and projector tunables
type InventoryConfig struct {
	// Threshold used when a product has no min_quantity of its own.
	DefaultReorderThreshold int `toml:"default_reorder_threshold"`
	// Upper bound on waiting for the per-item ledger lock.
	LockTimeoutMS int `toml:"lock_timeout_ms"`
}

// AlertsConfig contains background job settings
type AlertsConfig struct {
	CheckIntervalMinutes int `toml:"check_interval_minutes"`
}

// Load reads configuration from a TOML file. A missing file is not an
// error: defaults plus environment variables are enough to run.
func Load(filename string) (*Config, error) {
	config := defaults()
	if filename == "" {
		return config, nil
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return config, nil
	}
	if _, err := toml.DecodeFile(filename, config); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return config, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Inventory: InventoryConfig{
			DefaultReorderThreshold: 5,
			LockTimeoutMS:           3000,
		},
		Alerts: AlertsConfig{
			CheckIntervalMinutes: 30,
		},
	}
}
