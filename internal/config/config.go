package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"checklist/internal/task"
)

const (
	AppName               = "checklist"
	DefaultConfigFileName = "config.toml"

	EnvConfigPath      = "TODO_CONFIG"
	EnvDBPath          = "TODO_DB_PATH"
	EnvLogPath         = "TODO_LOG_PATH"
	EnvDefaultPriority = "TODO_DEFAULT_PRIORITY"
)

type Keymap struct {
	Quit      string `toml:"quit" yaml:"quit"`
	Add       string `toml:"add" yaml:"add"`
	Up        string `toml:"up" yaml:"up"`
	Down      string `toml:"down" yaml:"down"`
	Toggle    string `toml:"toggle" yaml:"toggle"`
	Delete    string `toml:"delete" yaml:"delete"`
	Edit      string `toml:"edit" yaml:"edit"`
	Confirm   string `toml:"confirm" yaml:"confirm"`
	Cancel    string `toml:"cancel" yaml:"cancel"`
	NextField string `toml:"next_field" yaml:"next_field"`
	PrevField string `toml:"prev_field" yaml:"prev_field"`
	Priority  string `toml:"priority" yaml:"priority"`
	RemoveTag string `toml:"remove_tag" yaml:"remove_tag"`
}

type Config struct {
	// DBPath enables the SQLite journal. Empty keeps tasks in memory only.
	DBPath          string `toml:"db_path" yaml:"db_path"`
	LogPath         string `toml:"log_path" yaml:"log_path"`
	DefaultPriority string `toml:"default_priority" yaml:"default_priority"`
	Keys            Keymap `toml:"keys" yaml:"keys"`
}

// Priority returns the configured default priority, falling back to medium.
func (c Config) Priority() task.Priority {
	p, _ := task.ParsePriority(c.DefaultPriority)
	return p
}

// ResolveConfigPath returns $TODO_CONFIG when set, otherwise config.toml in
// the user config directory. The working directory is the last resort.
func ResolveConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, AppName, DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing the defaults there first if
// the file does not exist yet. Environment overrides are applied last.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, fmt.Errorf("config: write defaults: %w", err)
		}
		return applyEnv(cfg), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := unmarshal(path, data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg = applyEnv(cfg)
	if _, ok := task.ParsePriority(cfg.DefaultPriority); !ok {
		cfg.DefaultPriority = task.Medium.String()
	}
	return cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func unmarshal(path string, data []byte, cfg *Config) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, cfg)
	}
	return toml.Unmarshal(data, cfg)
}

func write(path string, cfg Config) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = toml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func applyEnv(cfg Config) Config {
	cfg.DBPath = getEnv(EnvDBPath, cfg.DBPath)
	cfg.LogPath = getEnv(EnvLogPath, cfg.LogPath)
	cfg.DefaultPriority = getEnv(EnvDefaultPriority, cfg.DefaultPriority)
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultConfig() Config {
	return Config{
		DefaultPriority: task.Medium.String(),
		Keys: Keymap{
			Quit:      "q",
			Add:       "a",
			Up:        "k",
			Down:      "j",
			Toggle:    " ",
			Delete:    "d",
			Edit:      "e",
			Confirm:   "enter",
			Cancel:    "esc",
			NextField: "tab",
			PrevField: "shift+tab",
			Priority:  "ctrl+p",
			RemoveTag: "ctrl+x",
		},
	}
}
