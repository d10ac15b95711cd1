// Package config reads the optional .cardlint.yaml file that supplies default
// values for the validate command.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/nrdb/cardlint/pkg/constants"
	"github.com/nrdb/cardlint/pkg/logger"
)

var log = logger.New("config:config")

// Config holds the values a config file may set. Pointer fields distinguish
// "not set" from the zero value.
type Config struct {
	BasePath      string `yaml:"base_path,omitempty"`
	PackPath      string `yaml:"pack_path,omitempty"`
	SchemaPath    string `yaml:"schema_path,omitempty"`
	FixFormatting *bool  `yaml:"fix_formatting,omitempty"`
	Verbose       *int   `yaml:"verbose,omitempty"`

	// path is the file the config was read from.
	path string
}

// Path returns the file the config was read from, or "" for an empty config.
func (c *Config) Path() string {
	return c.path
}

// Load reads and decodes a config file. Unknown keys are rejected.
// Relative paths in the file are resolved against the file's directory.
func Load(path string) (*Config, error) {
	log.Printf("Loading config: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("invalid config file %s:\n%s", path, yaml.FormatError(err, false, true))
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	cfg.path = path
	cfg.resolve(filepath.Dir(path))
	log.Printf("Loaded config: base=%q, packs=%q, schemas=%q", cfg.BasePath, cfg.PackPath, cfg.SchemaPath)
	return &cfg, nil
}

// LoadDefault reads <dir>/.cardlint.yaml when it exists. A missing file yields
// an empty config and no error.
func LoadDefault(dir string) (*Config, error) {
	path := filepath.Join(dir, constants.ConfigFileName.String())
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("No config file at %s", path)
			return &Config{}, nil
		}
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}
	return Load(path)
}

func (c *Config) validate() error {
	if c.Verbose != nil && (*c.Verbose < 0 || *c.Verbose > constants.MaxVerbosityLevel) {
		return fmt.Errorf("verbose must be between 0 and %d, got %d", constants.MaxVerbosityLevel, *c.Verbose)
	}
	return nil
}

func (c *Config) resolve(dir string) {
	for _, p := range []*string{&c.BasePath, &c.PackPath, &c.SchemaPath} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}
