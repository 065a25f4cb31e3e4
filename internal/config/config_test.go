package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - LoadConfig() uses defaults when no config file exists
// - LoadConfig() loads from .gdsfactory/config.yml when present
// - LoadConfig() loads from .gdsfactory/config.yaml when present
// - LoadConfig() merges config file with defaults
// - Config file can define custom migration catalogues
// - Environment variables override config file values
// - Environment variables override defaults when no config file exists
// - LoadConfig() returns error for malformed YAML
// - LoadConfig() returns error for invalid configuration values
// - LoadConfigFromFile() loads an explicitly named file
// - LoadConfigFromFile() returns error when the file is missing
// - Validate() accepts valid configuration
// - Validate() rejects empty source pattern list
// - Validate() rejects malformed migration rules
// - Validate() returns multiple errors for multiple invalid migrations
// - Catalogues() converts rules and reports the offending migration

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	// Test: Default() returns valid configuration
	cfg := Default()

	require.NotNil(t, cfg)

	// Verify paths defaults
	assert.Equal(t, []string{"**/*.py"}, cfg.Paths.Source)
	assert.Contains(t, cfg.Paths.Ignore, ".git/**")
	assert.Contains(t, cfg.Paths.Ignore, "__pycache__/**")

	// No user-defined migrations by default
	assert.Empty(t, cfg.Migrations)

	// Verify default config passes validation
	err := Validate(cfg)
	assert.NoError(t, err)
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	// Test: Load from directory with no config file returns defaults
	tempDir := t.TempDir()

	loader := NewLoader(tempDir)
	cfg, err := loader.Load()

	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Should match defaults
	expected := Default()
	assert.Equal(t, expected.Paths.Source, cfg.Paths.Source)
	assert.Equal(t, expected.Paths.Ignore, cfg.Paths.Ignore)
}

func TestLoadConfig_LoadsFromConfigYml(t *testing.T) {
	// Test: Load from .gdsfactory/config.yml
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".gdsfactory")
	require.NoError(t, os.MkdirAll(configDir, 0755))

	configContent := `
paths:
  source:
    - "**/*.py"
    - "**/*.pyi"
  ignore:
    - "vendor/**"
`

	configPath := filepath.Join(configDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	loader := NewLoader(tempDir)
	cfg, err := loader.Load()

	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Verify loaded values
	assert.Equal(t, []string{"**/*.py", "**/*.pyi"}, cfg.Paths.Source)
	assert.Equal(t, []string{"vendor/**"}, cfg.Paths.Ignore)
}

func TestLoadConfig_LoadsFromConfigYaml(t *testing.T) {
	// Test: Load from .gdsfactory/config.yaml (alternative extension)
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".gdsfactory")
	require.NoError(t, os.MkdirAll(configDir, 0755))

	configContent := `
paths:
  source:
    - "**/*.pic.yml"
`

	configPath := filepath.Join(configDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	loader := NewLoader(tempDir)
	cfg, err := loader.Load()

	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, []string{"**/*.pic.yml"}, cfg.Paths.Source)
}

func TestLoadConfig_MergesConfigWithDefaults(t *testing.T) {
	// Test: Partial config file merges with defaults
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".gdsfactory")
	require.NoError(t, os.MkdirAll(configDir, 0755))

	// Only override source patterns, ignore list should come from defaults
	configContent := `
paths:
  source:
    - "**/*.pyi"
`

	configPath := filepath.Join(configDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	loader := NewLoader(tempDir)
	cfg, err := loader.Load()

	require.NoError(t, err)

	// Should have custom source patterns
	assert.Equal(t, []string{"**/*.pyi"}, cfg.Paths.Source)

	// Should have default ignore patterns
	assert.Equal(t, Default().Paths.Ignore, cfg.Paths.Ignore)
}

func TestLoadConfig_LoadsCustomMigrations(t *testing.T) {
	// Test: Config file can define custom migration catalogues
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".gdsfactory")
	require.NoError(t, os.MkdirAll(configDir, 0755))

	configContent := `
migrations:
  ports:
    marker: p_
    names:
      - port
      - ports
`

	configPath := filepath.Join(configDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	loader := NewLoader(tempDir)
	cfg, err := loader.Load()

	require.NoError(t, err)
	require.Contains(t, cfg.Migrations, "ports")
	assert.Equal(t, "p_", cfg.Migrations["ports"].Marker)
	assert.Equal(t, []string{"port", "ports"}, cfg.Migrations["ports"].Names)

	// And they convert into usable catalogues
	extras, err := cfg.Catalogues()
	require.NoError(t, err)
	require.Contains(t, extras, "ports")
	assert.Equal(t, "p_", extras["ports"].Marker())
}

func TestLoadConfig_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()

	// Test: Environment variables take precedence over config file
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".gdsfactory")
	require.NoError(t, os.MkdirAll(configDir, 0755))

	configContent := `
paths:
  source:
    - "**/*.py"
  ignore:
    - "vendor/**"
`

	configPath := filepath.Join(configDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	// Set environment variables
	t.Setenv("GDSFACTORY_PATHS_SOURCE", "**/*.pyi")

	loader := NewLoader(tempDir)
	cfg, err := loader.Load()

	require.NoError(t, err)

	// Environment variable should win
	assert.Equal(t, []string{"**/*.pyi"}, cfg.Paths.Source)

	// Ignore not overridden, should come from config file
	assert.Equal(t, []string{"vendor/**"}, cfg.Paths.Ignore)
}

func TestLoadConfig_EnvironmentVariablesOverrideDefaults(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()

	// Test: Environment variables override defaults when no config file
	tempDir := t.TempDir()

	// Comma-separated values decode into the slice fields
	t.Setenv("GDSFACTORY_PATHS_SOURCE", "**/*.py,**/*.pyi")

	loader := NewLoader(tempDir)
	cfg, err := loader.Load()

	require.NoError(t, err)

	assert.Equal(t, []string{"**/*.py", "**/*.pyi"}, cfg.Paths.Source)

	// Non-overridden values should be defaults
	assert.Equal(t, Default().Paths.Ignore, cfg.Paths.Ignore)
}

func TestLoadConfig_ReturnsErrorForMalformedYaml(t *testing.T) {
	// Test: Malformed YAML returns error
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".gdsfactory")
	require.NoError(t, os.MkdirAll(configDir, 0755))

	malformedContent := `
paths:
  source: [
    "unclosed
`

	configPath := filepath.Join(configDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(malformedContent), 0644))

	loader := NewLoader(tempDir)
	cfg, err := loader.Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadConfig_ReturnsErrorForInvalidValues(t *testing.T) {
	// Test: Invalid configuration values fail validation
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".gdsfactory")
	require.NoError(t, os.MkdirAll(configDir, 0755))

	invalidContent := `
migrations:
  broken:
    marker: "d."
    names:
      - center
`

	configPath := filepath.Join(configDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(invalidContent), 0644))

	loader := NewLoader(tempDir)
	cfg, err := loader.Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid")
}

func TestLoadConfigFromFile_LoadsExplicitFile(t *testing.T) {
	// Test: An explicitly named config file is loaded regardless of location
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "custom.yml")

	configContent := `
paths:
  source:
    - "**/*.pyi"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := LoadConfigFromFile(configPath)

	require.NoError(t, err)
	assert.Equal(t, []string{"**/*.pyi"}, cfg.Paths.Source)
}

func TestLoadConfigFromFile_ReturnsErrorWhenMissing(t *testing.T) {
	// Test: A missing explicit config file is an error, unlike the search path
	tempDir := t.TempDir()

	cfg, err := LoadConfigFromFile(filepath.Join(tempDir, "nope.yml"))

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate_AcceptsValidConfiguration(t *testing.T) {
	// Test: Valid configuration passes validation
	cfg := &Config{
		Paths: PathsConfig{
			Source: []string{"**/*.py"},
			Ignore: []string{".git/**"},
		},
		Migrations: map[string]MigrationRule{
			"ports": {Marker: "p_", Names: []string{"port"}},
		},
	}

	err := Validate(cfg)
	assert.NoError(t, err)
}

func TestValidate_RejectsEmptySourcePatterns(t *testing.T) {
	// Test: Empty source pattern list fails validation
	cfg := Default()
	cfg.Paths.Source = nil

	err := Validate(cfg)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSourcePatterns)
}

func TestValidate_RejectsMalformedMigration(t *testing.T) {
	// Test: Malformed migration rules fail validation
	tests := []struct {
		name string
		rule MigrationRule
	}{
		{name: "empty marker", rule: MigrationRule{Marker: "", Names: []string{"center"}}},
		{name: "marker with dot", rule: MigrationRule{Marker: "d.", Names: []string{"center"}}},
		{name: "no names", rule: MigrationRule{Marker: "d", Names: nil}},
		{name: "non-identifier name", rule: MigrationRule{Marker: "d", Names: []string{"size-info"}}},
		{name: "duplicate name", rule: MigrationRule{Marker: "d", Names: []string{"center", "center"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Migrations = map[string]MigrationRule{"custom": tt.rule}

			err := Validate(cfg)
			assert.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidMigration)
		})
	}
}

func TestValidate_ReturnsMultipleErrorsForMultipleInvalidMigrations(t *testing.T) {
	// Test: Multiple validation errors are all reported
	cfg := Default()
	cfg.Migrations = map[string]MigrationRule{
		"first":  {Marker: "", Names: []string{"center"}},
		"second": {Marker: "d", Names: nil},
	}

	err := Validate(cfg)
	assert.Error(t, err)

	// Error message should name both migrations
	errMsg := err.Error()
	assert.Contains(t, errMsg, "first")
	assert.Contains(t, errMsg, "second")
}

func TestCatalogues_ReportsOffendingMigration(t *testing.T) {
	// Test: Catalogue conversion errors name the migration
	cfg := Default()
	cfg.Migrations = map[string]MigrationRule{
		"broken": {Marker: "d.", Names: []string{"center"}},
	}

	_, err := cfg.Catalogues()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}
