package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Engine.AnimFrameRate != 24 {
		t.Errorf("expected frame rate 24, got %v", cfg.Engine.AnimFrameRate)
	}
	if cfg.Engine.MaxActionLayers != 8 {
		t.Errorf("expected 8 action layers, got %d", cfg.Engine.MaxActionLayers)
	}
	if cfg.Converter.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Converter.Workers)
	}
	if cfg.Converter.HotReload {
		t.Error("expected hot reload to be off by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
engine:
  anim_frame_rate: 30
  startup_scene: "Village"
converter:
  workers: 2
  hot_reload: true
data:
  startup_library: "village.yaml"
  library_paths: ["libs", "~/ketsji"]
logging:
  level: "debug"
  log_file: "ketsji.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Engine.AnimFrameRate != 30 {
		t.Errorf("expected frame rate 30, got %v", cfg.Engine.AnimFrameRate)
	}
	if cfg.Engine.MaxActionLayers != 8 {
		t.Errorf("unset values should keep defaults, got %d layers", cfg.Engine.MaxActionLayers)
	}
	if cfg.Converter.Workers != 2 || !cfg.Converter.HotReload {
		t.Errorf("converter section not loaded: %+v", cfg.Converter)
	}
	if cfg.Logging.LogFile != "ketsji.log" {
		t.Errorf("expected log file ketsji.log, got %s", cfg.Logging.LogFile)
	}
	if len(cfg.Data.LibraryPaths) != 2 || cfg.Data.LibraryPaths[1] == "~/ketsji" {
		t.Errorf("home directory should be expanded, got %v", cfg.Data.LibraryPaths)
	}
}

func TestLoadFromTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	tomlContent := `
[engine]
anim_frame_rate = 60.0
max_action_layers = 4

[converter]
workers = 8
queue_size = 32
`
	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Engine.AnimFrameRate != 60 || cfg.Engine.MaxActionLayers != 4 {
		t.Errorf("engine section not loaded: %+v", cfg.Engine)
	}
	if cfg.Converter.Workers != 8 || cfg.Converter.QueueSize != 32 {
		t.Errorf("converter section not loaded: %+v", cfg.Converter)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Converter.Workers = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}

	cfg = Default()
	cfg.Engine.AnimFrameRate = -1
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestResolveLibrary(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "village.yaml")
	if err := os.WriteFile(lib, []byte("name: village\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.Data.LibraryPaths = []string{filepath.Join(dir, "missing"), dir}

	got, err := cfg.ResolveLibrary("village.yaml")
	if err != nil {
		t.Fatalf("ResolveLibrary: %v", err)
	}
	if got != lib {
		t.Errorf("ResolveLibrary = %s, want %s", got, lib)
	}

	if _, err := cfg.ResolveLibrary("nowhere.yaml"); err == nil {
		t.Error("expected error for missing library")
	}
}

func TestSaveAndLoad(t *testing.T) {
	for _, name := range []string{"subdir/config.yaml", "subdir/config.toml"} {
		t.Run(filepath.Ext(name), func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), name)

			cfg := Default()
			cfg.Engine.AnimFrameRate = 50
			cfg.Converter.Workers = 3
			cfg.Data.StartupLibrary = "/data/village.yaml"

			if err := cfg.SaveTo(configPath); err != nil {
				t.Fatalf("failed to save config: %v", err)
			}

			loaded, err := LoadFile(configPath)
			if err != nil {
				t.Fatalf("failed to load saved config: %v", err)
			}
			if loaded.Engine.AnimFrameRate != 50 {
				t.Errorf("expected frame rate 50, got %v", loaded.Engine.AnimFrameRate)
			}
			if loaded.Converter.Workers != 3 {
				t.Errorf("expected 3 workers, got %d", loaded.Converter.Workers)
			}
			if loaded.Data.StartupLibrary != "/data/village.yaml" {
				t.Errorf("expected startup library, got %s", loaded.Data.StartupLibrary)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	if ConfigDir() == "" {
		t.Error("ConfigDir should not be empty")
	}
}
