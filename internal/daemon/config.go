// Package daemon holds the process configuration: a TOML file layered
// under the CLI flags.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the full process configuration.
type Config struct {
	Game   GameConfig   `toml:"game"`
	Search SearchConfig `toml:"search"`
	Cache  CacheConfig  `toml:"cache"`
	Status StatusConfig `toml:"status"`
}

// GameConfig names the game and the recorded trace.
type GameConfig struct {
	Name        string `toml:"name"`
	Movie       string `toml:"movie"`
	Fastforward int    `toml:"fastforward"`
	OutDir      string `toml:"out_dir"`
	GoalLength  int    `toml:"goal_length"`
}

// SearchConfig configures the distributed dispatcher.
type SearchConfig struct {
	Workers []string `toml:"workers"`
	Seed    string   `toml:"seed"`
}

// CacheConfig sizes the two step-cache tiers.
type CacheConfig struct {
	MemoryEntries int    `toml:"memory_entries"`
	DiskEntries   int    `toml:"disk_entries"`
	Dir           string `toml:"dir"`
}

// StatusConfig configures the status HTTP server.
type StatusConfig struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Game: GameConfig{
			OutDir: ".",
		},
		Search: SearchConfig{
			Seed: "tasbot",
		},
		Cache: CacheConfig{
			MemoryEntries: 100_000,
			DiskEntries:   1_000_000,
		},
		Status: StatusConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8710,
		},
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	if env := os.Getenv("TASBOT_HOME"); env != "" {
		return filepath.Join(env, "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".tasbot", "config.toml")
}

// Load reads path over the defaults. An empty path means the
// conventional location, where a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	conventional := path == ""
	if conventional {
		path = DefaultPath()
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if conventional && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// StatusAddr renders the status server's listen address.
func (c *Config) StatusAddr() string {
	return fmt.Sprintf("%s:%d", c.Status.Host, c.Status.Port)
}
