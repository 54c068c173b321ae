package daemon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Status.Host != "127.0.0.1" {
		t.Errorf("Status.Host = %q, want %q", cfg.Status.Host, "127.0.0.1")
	}
	if cfg.Status.Port != 8710 {
		t.Errorf("Status.Port = %d, want %d", cfg.Status.Port, 8710)
	}
	if cfg.Cache.MemoryEntries != 100_000 {
		t.Errorf("Cache.MemoryEntries = %d, want %d", cfg.Cache.MemoryEntries, 100_000)
	}
	if cfg.Cache.DiskEntries != 1_000_000 {
		t.Errorf("Cache.DiskEntries = %d, want %d", cfg.Cache.DiskEntries, 1_000_000)
	}
	if cfg.Game.OutDir != "." {
		t.Errorf("Game.OutDir = %q, want %q", cfg.Game.OutDir, ".")
	}
	if cfg.Search.Seed != "tasbot" {
		t.Errorf("Search.Seed = %q, want %q", cfg.Search.Seed, "tasbot")
	}
	if len(cfg.Search.Workers) != 0 {
		t.Errorf("Search.Workers = %v, want empty", cfg.Search.Workers)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[game]
name = "karate"
movie = "karate.fm2"
fastforward = 300

[search]
workers = ["host1:9001", "host2:9001"]

[cache]
memory_entries = 42
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Game.Name != "karate" || cfg.Game.Fastforward != 300 {
		t.Errorf("game section not applied: %+v", cfg.Game)
	}
	if len(cfg.Search.Workers) != 2 {
		t.Errorf("workers = %v, want 2 entries", cfg.Search.Workers)
	}
	if cfg.Cache.MemoryEntries != 42 {
		t.Errorf("Cache.MemoryEntries = %d, want 42", cfg.Cache.MemoryEntries)
	}
	// Untouched keys keep their defaults.
	if cfg.Cache.DiskEntries != 1_000_000 {
		t.Errorf("Cache.DiskEntries = %d, want default", cfg.Cache.DiskEntries)
	}
	if cfg.StatusAddr() != "127.0.0.1:8710" {
		t.Errorf("StatusAddr = %q", cfg.StatusAddr())
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load accepted a missing explicit config path")
	}
}
