package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOrCreate_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if cfg.Keys.Publish == "" || cfg.DataDir == "" {
		t.Errorf("defaults incomplete: %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not written: %v", err)
	}

	again, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if again.Keys != cfg.Keys {
		t.Errorf("reloaded keymap differs: %+v vs %+v", again.Keys, cfg.Keys)
	}
}

func TestLoadOrCreate_UserOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
data_dir = "/tmp/elsewhere"
model = "my-model"
api_base_url = "https://example.invalid/v1"

[keys]
quit = "Q"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/tmp/elsewhere" {
		t.Errorf("data dir = %q", cfg.DataDir)
	}
	if cfg.Model != "my-model" {
		t.Errorf("model = %q", cfg.Model)
	}
	if cfg.Keys.Quit != "Q" {
		t.Errorf("quit key = %q", cfg.Keys.Quit)
	}
}

func TestLoadOrCreate_EmptyDataDirFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`model = "m"`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir == "" {
		t.Error("data dir should fall back to the platform default")
	}
}
