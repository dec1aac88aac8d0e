package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate for unusable settings.
var ErrInvalid = errors.New("invalid config")

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads defaults overridden by a single file, without flags.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings can drive an engine.
func (c *Config) Validate() error {
	switch {
	case c.Engine.AnimFrameRate <= 0:
		return fmt.Errorf("%w: engine.anim_frame_rate must be positive", ErrInvalid)
	case c.Engine.MaxActionLayers <= 0:
		return fmt.Errorf("%w: engine.max_action_layers must be positive", ErrInvalid)
	case c.Engine.TickRate <= 0:
		return fmt.Errorf("%w: engine.tick_rate must be positive", ErrInvalid)
	case c.Converter.Workers <= 0:
		return fmt.Errorf("%w: converter.workers must be positive", ErrInvalid)
	case c.Converter.QueueSize < 0:
		return fmt.Errorf("%w: converter.queue_size must not be negative", ErrInvalid)
	}
	return nil
}

// ResolveLibrary finds name in the library search paths. Absolute paths and
// paths that exist relative to the working directory are returned as is.
func (c *Config) ResolveLibrary(name string) (string, error) {
	name, err := homedir.Expand(name)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}
	for _, dir := range c.Data.LibraryPaths {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("library %q not found in %v", name, c.Data.LibraryPaths)
}

func (c *Config) expandPaths() error {
	for i, p := range c.Data.LibraryPaths {
		exp, err := homedir.Expand(p)
		if err != nil {
			return fmt.Errorf("expanding library path %q: %w", p, err)
		}
		c.Data.LibraryPaths[i] = exp
	}
	if c.Data.StartupLibrary != "" {
		exp, err := homedir.Expand(c.Data.StartupLibrary)
		if err != nil {
			return fmt.Errorf("expanding startup library: %w", err)
		}
		c.Data.StartupLibrary = exp
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./ketsji.yaml",
		"./ketsji.toml",
		filepath.Join(ConfigDir(), "config.yaml"),
		filepath.Join(ConfigDir(), "config.toml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	home, _ := homedir.Dir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Ketsji")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Ketsji")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "ketsji")
		}
		return filepath.Join(home, ".config", "ketsji")
	}
}

// loadFromFile merges a YAML or TOML file into cfg, chosen by extension.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}
