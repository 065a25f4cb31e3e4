package config

import (
	"fmt"

	"github.com/gdsfactory/gf/internal/migrate"
)

// Config represents the complete gf configuration.
// It can be loaded from .gdsfactory/config.yml with environment variable overrides.
type Config struct {
	Paths      PathsConfig              `yaml:"paths" mapstructure:"paths"`
	Migrations map[string]MigrationRule `yaml:"migrations" mapstructure:"migrations"`
}

// PathsConfig defines which files to migrate and which to ignore.
type PathsConfig struct {
	Source []string `yaml:"source" mapstructure:"source"` // glob patterns for source files
	Ignore []string `yaml:"ignore" mapstructure:"ignore"` // glob patterns to ignore
}

// MigrationRule declares a user-defined migration: the legacy attribute
// names to rewrite and the marker prefixed to each occurrence.
type MigrationRule struct {
	Marker string   `yaml:"marker" mapstructure:"marker"`
	Names  []string `yaml:"names" mapstructure:"names"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Source: []string{
				"**/*.py",
			},
			Ignore: []string{
				".git/**",
				"__pycache__/**",
				".venv/**",
				"build/**",
				"dist/**",
			},
		},
		Migrations: map[string]MigrationRule{},
	}
}

// Catalogues converts the configured migration rules into catalogues keyed
// by migration name. migrate.Lookup merges them over the builtin registry,
// with configured rules winning on name clashes.
func (c *Config) Catalogues() (map[string]migrate.Catalogue, error) {
	extras := make(map[string]migrate.Catalogue, len(c.Migrations))
	for name, rule := range c.Migrations {
		cat, err := migrate.NewCatalogue(name, rule.Marker, rule.Names)
		if err != nil {
			return nil, fmt.Errorf("migration %q: %w", name, err)
		}
		extras[name] = cat
	}
	return extras, nil
}
