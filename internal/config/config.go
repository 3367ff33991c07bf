package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the resolved application configuration. The TUI core receives
// this value object; it never touches the on-disk representation itself.
type Config struct {
	Claude  ClaudeConfig  `toml:"claude"`
	Display DisplayConfig `toml:"display"`
}

// ClaudeConfig covers everything about the claude installation.
type ClaudeConfig struct {
	// ClaudeDir is the claude home directory; session logs live under
	// <ClaudeDir>/projects.
	ClaudeDir string `toml:"claude_dir"`
	// DangerouslySkipPermissions adds the matching claude flag to every
	// resume/new-session command.
	DangerouslySkipPermissions bool `toml:"dangerously_skip_permissions"`
}

// DisplayConfig covers presentation knobs.
type DisplayConfig struct {
	PreviewLines      int    `toml:"preview_lines"`
	DateFormat        string `toml:"date_format"`
	ShowAgentSessions bool   `toml:"show_agent_sessions"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Claude: ClaudeConfig{
			ClaudeDir: filepath.Join(home, ".claude"),
		},
		Display: DisplayConfig{
			PreviewLines:      3,
			DateFormat:        "01/02 15:04",
			ShowAgentSessions: true,
		},
	}
}

// Load reads the config from the default location, falling back to
// defaults when the file does not exist.
func Load() (*Config, error) {
	path := DefaultPath()
	if _, err := os.Stat(path); err != nil {
		return Default(), nil
	}
	return FromFile(path)
}

// FromFile reads and parses a specific TOML config file. Missing keys keep
// their default values.
func FromFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(ExpandPath(path), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath returns ~/.config/total-recall/config.toml.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "total-recall", "config.toml")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "total-recall", "config.toml")
}

// DataDir returns the directory for logs and other app state.
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "total-recall")
}

// ProjectsDir returns the session root: <claude_dir>/projects.
func (c *Config) ProjectsDir() string {
	return filepath.Join(ExpandPath(c.Claude.ClaudeDir), "projects")
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
