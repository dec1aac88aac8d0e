// Package config handles engine configuration loading and management.
package config

// Config holds all engine settings.
type Config struct {
	Engine    EngineConfig    `yaml:"engine" toml:"engine"`
	Converter ConverterConfig `yaml:"converter" toml:"converter"`
	Data      DataConfig      `yaml:"data" toml:"data"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// EngineConfig holds frame and animation settings.
type EngineConfig struct {
	AnimFrameRate   float64 `yaml:"anim_frame_rate" toml:"anim_frame_rate"`     // animation frames per second
	MaxActionLayers int     `yaml:"max_action_layers" toml:"max_action_layers"` // action slots per object
	StartupScene    string  `yaml:"startup_scene" toml:"startup_scene"`
	TickRate        float64 `yaml:"tick_rate" toml:"tick_rate"` // logic ticks per second for headless runs
}

// ConverterConfig holds library loading settings.
type ConverterConfig struct {
	Workers                int  `yaml:"workers" toml:"workers"`
	QueueSize              int  `yaml:"queue_size" toml:"queue_size"`
	HotReload              bool `yaml:"hot_reload" toml:"hot_reload"` // reload merged libraries when their file changes
	AlwaysUseExpandFraming bool `yaml:"always_use_expand_framing" toml:"always_use_expand_framing"`
}

// DataConfig holds library file locations.
type DataConfig struct {
	StartupLibrary string   `yaml:"startup_library" toml:"startup_library"`
	LibraryPaths   []string `yaml:"library_paths" toml:"library_paths"` // search paths, ~ is expanded
	TextEncoding   string   `yaml:"text_encoding" toml:"text_encoding"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			AnimFrameRate:   24,
			MaxActionLayers: 8,
			TickRate:        60,
		},
		Converter: ConverterConfig{
			Workers:   4,
			QueueSize: 16,
		},
		Data: DataConfig{
			LibraryPaths: []string{"."},
			TextEncoding: "utf-8",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
