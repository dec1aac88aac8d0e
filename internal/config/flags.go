package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagWorkers   = flag.Int("workers", 0, "Library loader worker count")
	flagFrameRate = flag.Float64("framerate", 0, "Animation frame rate")
	flagScene     = flag.String("scene", "", "Startup scene name")
	flagLibrary   = flag.String("library", "", "Startup library file")
	flagHotReload = flag.Bool("hot-reload", false, "Reload libraries when their files change")
	flagLogFile   = flag.String("log", "", "Log file path")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWorkers > 0 {
		cfg.Converter.Workers = *flagWorkers
	}
	if *flagFrameRate > 0 {
		cfg.Engine.AnimFrameRate = *flagFrameRate
	}
	if *flagScene != "" {
		cfg.Engine.StartupScene = *flagScene
	}
	if *flagLibrary != "" {
		cfg.Data.StartupLibrary = *flagLibrary
	}
	if *flagHotReload {
		cfg.Converter.HotReload = true
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
