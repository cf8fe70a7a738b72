// Package config loads dwhgen settings from defaults, a YAML file,
// DWHGEN_* environment variables and command line flags, in increasing order
// of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/tordrt/dwhgen/internal/transform"
)

// Defaults.
const (
	DefaultOutputDir = "generated"
	DefaultLogLevel  = "info"

	envPrefix = "DWHGEN_"
)

// configFileNames are looked up in the working directory when no file is given.
var configFileNames = []string{"dwhgen.yaml", "dwhgen.yml"}

// flagKeys maps flag names whose config key is not the snake_case flag
// name. An empty key marks a flag that is not a config setting.
var flagKeys = map[string]string{
	"exclude":   "exclude_tables",
	"config":    "",
	"format":    "",
	"layer":     "",
	"output":    "",
	"db-url":    "",
	"mysql-url": "",
	"sqlite":    "",
	"duckdb":    "",
}

// Config holds all dwhgen settings.
type Config struct {
	Model         string                          `koanf:"model"`
	Source        string                          `koanf:"source"`
	Schema        string                          `koanf:"schema"`
	Tables        []string                        `koanf:"tables"`
	ExcludeTables []string                        `koanf:"exclude_tables"`
	OutputDir     string                          `koanf:"output_dir"`
	TemplatesDir  string                          `koanf:"templates_dir"`
	LogLevel      string                          `koanf:"log_level"`
	Verbose       bool                            `koanf:"verbose"`
	Types         map[string]transform.ColumnType `koanf:"types"`

	// File is the configuration file that was loaded, if any.
	File string `koanf:"-"`
}

// Load builds the configuration. cfgFile may be empty, in which case
// dwhgen.yaml or dwhgen.yml in the working directory is used when present.
// Only flags that were explicitly set override lower layers. Relative paths
// read from the file are resolved against the file's directory.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"output_dir": DefaultOutputDir,
		"log_level":  DefaultLogLevel,
		"verbose":    false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	cfgFile = findConfigFile(cfgFile)
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// DWHGEN_OUTPUT_DIR -> output_dir
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	changed := make(map[string]bool)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key := flagKey(f.Name)
			if key == "" {
				return "", nil
			}
			changed[key] = true
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = cfgFile

	if cfgFile != "" {
		baseDir := filepath.Dir(cfgFile)
		if !changed["model"] {
			cfg.Model = resolvePathRelativeTo(cfg.Model, baseDir)
		}
		if !changed["output_dir"] {
			cfg.OutputDir = resolvePathRelativeTo(cfg.OutputDir, baseDir)
		}
		if !changed["templates_dir"] {
			cfg.TemplatesDir = resolvePathRelativeTo(cfg.TemplatesDir, baseDir)
		}
	}

	return &cfg, nil
}

// TypePolicy returns the default type policy extended by the configured types.
func (c *Config) TypePolicy() (*transform.TypePolicy, error) {
	policy, err := transform.DefaultTypePolicy().WithAll(c.Types)
	if err != nil {
		return nil, fmt.Errorf("invalid types configuration: %w", err)
	}
	return policy, nil
}

// findConfigFile returns the explicit path, or the first default file that
// exists, or "".
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// flagKey maps a flag name to its config key; "" means the flag is not a
// config setting.
func flagKey(name string) string {
	if key, ok := flagKeys[name]; ok {
		return key
	}
	return strings.ReplaceAll(name, "-", "_")
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
