package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// HookConfig tunes the hook predicates.
type HookConfig struct {
	MainReadLimit     int      `json:"main_read_limit"`     // max lines the main agent may read
	SubagentReadLimit int      `json:"subagent_read_limit"` // max lines a sub-agent may read
	ExemptGlobs       []string `json:"exempt_globs"`        // file paths the read guard never blocks
	FlagFile          string   `json:"flag_file"`           // marker for sub-agent execution context
}

type Config struct {
	VaultDir      string     `json:"vault_dir"`
	ClaudeHome    string     `json:"claude_home"`
	ClaudeCmd     string     `json:"claude_cmd"`
	RemoteSession string     `json:"remote_session"`
	Hooks         HookConfig `json:"hooks"`

	// Internal paths
	configDir string
}

func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadFromDir(configDir)
}

func LoadFromDir(configDir string) (*Config, error) {
	cfg := &Config{
		VaultDir:      "~/.dotenv-vault",
		ClaudeHome:    "~/.claude",
		ClaudeCmd:     "claude",
		RemoteSession: "cct-remote",
		Hooks: HookConfig{
			MainReadLimit:     500,
			SubagentReadLimit: 10000,
			FlagFile:          ".claude_in_subtask.flag",
		},
		configDir: configDir,
	}

	// Ensure config directory exists
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, err
	}

	// Load config.json if it exists
	configPath := filepath.Join(configDir, "config.json")
	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) ConfigDir() string {
	return c.configDir
}

func (c *Config) ConfigPath() string {
	return filepath.Join(c.configDir, "config.json")
}

func (c *Config) EventsPath() string {
	return filepath.Join(c.configDir, "events.jsonl")
}

func (c *Config) IndexPath() string {
	return filepath.Join(c.configDir, "sessions.db")
}

// VaultPath returns the expanded vault directory.
func (c *Config) VaultPath() string {
	return expandPath(c.VaultDir)
}

// ClaudePath returns the expanded Claude home directory.
func (c *Config) ClaudePath() string {
	return expandPath(c.ClaudeHome)
}

// Save writes the config to disk
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.ConfigPath(), data, 0644)
}

// ConfigExists returns true if config.json exists
func (c *Config) ConfigExists() bool {
	_, err := os.Stat(c.ConfigPath())
	return err == nil
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cct"), nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
