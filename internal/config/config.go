// Package config loads gitlet settings from built-in defaults, the
// repository's config.toml and GITLET_* environment variables, in that
// order of increasing precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const (
	// FileName is the config file inside the .gitlet directory.
	FileName = "config.toml"
	// FormatVersion is written into every new repository's config.
	FormatVersion = 1

	envPrefix = "GITLET_"
)

// Config is the merged configuration.
type Config struct {
	Version int        `koanf:"version" toml:"version"`
	Core    CoreConfig `koanf:"core" toml:"core"`
	Log     LogConfig  `koanf:"log" toml:"log,omitempty"`
}

// CoreConfig holds repository behavior settings.
type CoreConfig struct {
	// Timezone names the zone log dates are rendered in. "Local" uses the
	// process's local zone.
	Timezone string `koanf:"timezone" toml:"timezone"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level int    `koanf:"level" toml:"level,omitempty"`
	File  string `koanf:"file" toml:"file,omitempty"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"version":       FormatVersion,
		"core.timezone": "Local",
		"log.level":     0,
		"log.file":      "",
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: FormatVersion,
		Core:    CoreConfig{Timezone: "Local"},
	}
}

// Load merges defaults, <gitletDir>/config.toml (if present) and the
// environment. gitletDir may be empty or may not exist.
func Load(gitletDir string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "load defaults")
	}

	if gitletDir != "" {
		path := filepath.Join(gitletDir, FileName)
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, "load config from %s", path)
			}
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "load environment")
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &cfg, nil
}

// Location resolves Core.Timezone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Core.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Core.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "core.timezone %q", c.Core.Timezone)
	}
	return loc, nil
}

// Write stores c as <gitletDir>/config.toml.
func (c *Config) Write(gitletDir string) error {
	data, err := gotoml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	if err := renameio.WriteFile(filepath.Join(gitletDir, FileName), data, 0644); err != nil {
		return errors.Wrap(err, "write config")
	}
	return nil
}
