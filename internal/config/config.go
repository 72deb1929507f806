// Package config loads the TOML config file and resolves the platform data
// directory the store lives in.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppName               = "DailyTask"
	DefaultConfigFileName = "config.toml"
)

type Keymap struct {
	Quit            string `toml:"quit"`
	Up              string `toml:"up"`
	Down            string `toml:"down"`
	Add             string `toml:"add"`
	Rename          string `toml:"rename"`
	Delete          string `toml:"delete"`
	Clear           string `toml:"clear"`
	ToggleDone      string `toml:"toggle_done"`
	TogglePin       string `toml:"toggle_pin"`
	MoveUp          string `toml:"move_up"`
	MoveDown        string `toml:"move_down"`
	Publish         string `toml:"publish"`
	Summarize       string `toml:"summarize"`
	APIKey          string `toml:"api_key"`
	Collapse        string `toml:"collapse"`
	CompleteCurrent string `toml:"complete_current"`
	Switch          string `toml:"switch"`
	CloseSurface    string `toml:"close_surface"`
	Confirm         string `toml:"confirm"`
	Cancel          string `toml:"cancel"`
}

type Config struct {
	DataDir      string `toml:"data_dir"`
	LegacyDir    string `toml:"legacy_dir"`
	APIBaseURL   string `toml:"api_base_url"`
	Model        string `toml:"model"`
	SystemPrompt string `toml:"system_prompt"`
	Keys         Keymap `toml:"keys"`
}

// LoadOrCreate reads the config at path, writing the defaults first when the
// file does not exist yet.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		DataDir: DefaultDataDir(),
		Keys: Keymap{
			Quit:            "q",
			Up:              "k",
			Down:            "j",
			Add:             "a",
			Rename:          "r",
			Delete:          "d",
			Clear:           "D",
			ToggleDone:      " ",
			TogglePin:       "p",
			MoveUp:          "K",
			MoveDown:        "J",
			Publish:         "P",
			Summarize:       "s",
			APIKey:          "A",
			Collapse:        "c",
			CompleteCurrent: "x",
			Switch:          "e",
			CloseSurface:    "w",
			Confirm:         "enter",
			Cancel:          "esc",
		},
	}
}

// ResolveConfigPath keeps the config next to the data so one directory holds
// everything the app writes.
func ResolveConfigPath() string {
	return filepath.Join(DefaultDataDir(), DefaultConfigFileName)
}

// DefaultDataDir resolves the platform application-data directory:
// %APPDATA% on Windows, ~/Library/Application Support on macOS and
// XDG_DATA_HOME (falling back to ~/.local/share) elsewhere.
func DefaultDataDir() string {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			base = os.Getenv("LOCALAPPDATA")
		}
		if base == "" {
			if home, err := os.UserHomeDir(); err == nil {
				base = filepath.Join(home, "AppData", "Roaming")
			}
		}
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			base = filepath.Join(home, "Library", "Application Support")
		}
	default:
		base = os.Getenv("XDG_DATA_HOME")
		if base == "" {
			if home, err := os.UserHomeDir(); err == nil {
				base = filepath.Join(home, ".local", "share")
			}
		}
	}
	if base == "" {
		// No home dir at all; stay in the working directory.
		return AppName
	}
	return filepath.Join(base, AppName)
}
