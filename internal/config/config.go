package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full termmark configuration.
type Config struct {
	Terminal TerminalConfig `toml:"terminal"`
	Hooks    HooksConfig    `toml:"hooks"`
	Log      LogConfig      `toml:"log"`
}

// TerminalConfig controls the shell session.
type TerminalConfig struct {
	// Shell overrides $SHELL.
	Shell string `toml:"shell"`

	// Scrollback is the history line limit.
	Scrollback int `toml:"scrollback"`

	// CopyOnCommandFinish copies each finished command's output to the
	// system clipboard automatically.
	CopyOnCommandFinish bool `toml:"copy_on_command_finish"`
}

// HooksConfig controls the Lua hook runner.
type HooksConfig struct {
	// Enabled turns hook execution on.
	Enabled bool `toml:"enabled"`

	// Dir is the directory scanned for *.lua hook scripts.
	Dir string `toml:"dir"`
}

// LogConfig controls logging output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// File is the log destination; empty discards logs.
	File string `toml:"file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Terminal: TerminalConfig{
			Scrollback: 10000,
		},
		Hooks: HooksConfig{
			Enabled: true,
			Dir:     defaultDir("hooks"),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return defaultDir("config.toml")
}

func defaultDir(parts ...string) string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(append([]string{base, "termmark"}, parts...)...)
}

// Load reads the config file at path, applying defaults for absent
// fields. A missing file yields the defaults without error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.Terminal.Scrollback < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidScrollback, c.Terminal.Scrollback)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	return nil
}
