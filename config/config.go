// Package config loads processing defaults from a .autosig.yaml file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// DefaultFilename is the config file looked for in the working directory
// and the user's home directory.
const DefaultFilename = ".autosig.yaml"

// Config holds defaults applied before command-line flags. Pointer fields
// distinguish "not set" from a zero value.
type Config struct {
	OffsetPixels  *int     `yaml:"offset_pixels"`
	OffsetPercent *float64 `yaml:"offset_percent"`
	Suffix        *string  `yaml:"suffix"`
	Format        *string  `yaml:"format"`
	Quality       *int     `yaml:"quality"`
	MaxDimension  *int     `yaml:"max_dimension"`
	AspectRatio   *float64 `yaml:"aspect_ratio"`
	HideLayers    []string `yaml:"hide_layers"`
}

// Load reads a config file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault looks for DefaultFilename in the working directory, then the
// user's home directory. A missing file is not an error; an unreadable or
// malformed one is.
func LoadDefault() (*Config, error) {
	candidates := []string{DefaultFilename}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultFilename))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return Load(path)
	}
	return &Config{}, nil
}
