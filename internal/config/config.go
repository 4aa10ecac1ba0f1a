// Package config loads the editor's YAML configuration file and keeps it
// current via a file-system watch, so an explicit reload command or an
// on-disk edit is picked up without restarting the editor.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fresh-editor/fresh/internal/debug"
	"github.com/fresh-editor/fresh/internal/errors"
)

// Config is the editor's full user-facing configuration.
type Config struct {
	TabSize       int               `yaml:"tab_size"`
	InsertSpaces  bool              `yaml:"insert_spaces"`
	AutoSave      bool              `yaml:"auto_save"`
	Theme         string            `yaml:"theme"`
	Keybindings   map[string]string `yaml:"keybindings"`
	RecoveryLimit int               `yaml:"recovery_age_days"`
}

// Default returns the editor's built-in configuration, used when no
// config file exists and as the base a loaded file's zero-valued fields
// fall back to.
func Default() Config {
	return Config{
		TabSize:       4,
		InsertSpaces:  true,
		AutoSave:      true,
		Theme:         "default",
		Keybindings:   map[string]string{},
		RecoveryLimit: 7,
	}
}

// Load reads and parses a YAML config file at path. A missing file is
// not an error: it returns Default(). A parse failure is returned as an
// error of kind errors.Fatal-adjacent — callers log it and fall back to
// Default() per this subsystem's error-handling design rather than
// aborting the editor over a bad config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.WithStack(err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: parsing %s", path)
	}
	return cfg, nil
}

// LoadOrDefault is Load, but on any error it logs via internal/debug and
// returns Default() instead of propagating the error - a malformed
// config file should never prevent the editor from starting.
func LoadOrDefault(path string) Config {
	cfg, err := Load(path)
	if err != nil {
		debug.Log("config: failed to load %s: %v, using defaults", path, err)
		return Default()
	}
	return cfg
}
