package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gdsfactory/gf/internal/migrate"
)

var (
	// ErrNoSourcePatterns indicates an empty source pattern list
	ErrNoSourcePatterns = errors.New("no source patterns")

	// ErrInvalidMigration indicates a malformed user-defined migration
	ErrInvalidMigration = errors.New("invalid migration")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	// Validate paths configuration
	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	// Validate user-defined migrations
	if err := validateMigrations(cfg.Migrations); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePaths(cfg *PathsConfig) error {
	// Ignore patterns can be empty; the walker treats a malformed glob as
	// its own error.
	if len(cfg.Source) == 0 {
		return fmt.Errorf("%w: at least one paths.source pattern required", ErrNoSourcePatterns)
	}
	return nil
}

func validateMigrations(migrations map[string]MigrationRule) error {
	var errs []error

	// Sorted so repeated runs report the same error text
	names := make([]string, 0, len(migrations))
	for name := range migrations {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rule := migrations[name]
		if _, err := migrate.NewCatalogue(name, rule.Marker, rule.Names); err != nil {
			errs = append(errs, fmt.Errorf("%w %q: %v", ErrInvalidMigration, name, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
