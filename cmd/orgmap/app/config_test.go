package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

// TestLoadConfig verifies basic config loading.
func TestLoadConfig(t *testing.T) {
	resetViper(t)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config == nil {
		t.Fatal("LoadConfig() returned nil config")
	}
	if config.LogFormat != "auto" {
		t.Errorf("LogFormat = %q, want auto", config.LogFormat)
	}
	if config.LogOutput != "stderr" {
		t.Errorf("LogOutput = %q, want stderr", config.LogOutput)
	}
}

// TestConfig_EnvironmentVariables verifies ORGMAP_ environment variables.
func TestConfig_EnvironmentVariables(t *testing.T) {
	resetViper(t)
	t.Setenv("ORGMAP_VERBOSE", "true")
	t.Setenv("ORGMAP_FORMAT", "json")
	t.Setenv("ORGMAP_LOG_LEVEL", "debug")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if !config.Verbose {
		t.Error("ORGMAP_VERBOSE not loaded")
	}
	if config.Format != "json" {
		t.Errorf("Format = %s, want json", config.Format)
	}
	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", config.LogLevel)
	}
}

// TestConfig_ConfigFile verifies an explicit config file is recorded.
func TestConfig_ConfigFile(t *testing.T) {
	resetViper(t)
	path := filepath.Join(t.TempDir(), "orgmap.yaml")
	if err := os.WriteFile(path, []byte("format: yaml\nthreshold: 0.8\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ORGMAP_CONFIG", path)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", config.ConfigFile, path)
	}
	if config.Format != "yaml" {
		t.Errorf("Format = %q, want yaml", config.Format)
	}
}

// TestConfig_UpdateFromFlags verifies flag precedence.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{Format: "json", LogLevel: "warn", ConfigFile: "a.yaml"}

	config.UpdateFromFlags(true, false, true, "", "", "")
	if !config.Verbose || !config.NoColor {
		t.Error("boolean flags not applied")
	}
	if config.Format != "json" || config.LogLevel != "warn" || config.ConfigFile != "a.yaml" {
		t.Error("empty flag values must keep existing settings")
	}

	config.UpdateFromFlags(false, false, false, "tree", "trace", "b.yaml")
	if config.Format != "tree" {
		t.Errorf("Format = %q, want tree", config.Format)
	}
	if config.LogLevel != "trace" {
		t.Errorf("LogLevel = %q, want trace", config.LogLevel)
	}
	if config.ConfigFile != "b.yaml" {
		t.Errorf("ConfigFile = %q, want b.yaml", config.ConfigFile)
	}
	if !config.Verbose {
		t.Error("a false flag must not clear a value set by the environment")
	}
}
