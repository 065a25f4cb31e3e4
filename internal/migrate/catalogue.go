package migrate

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	// ErrUnknownMigration indicates a migration name with no registered catalogue.
	ErrUnknownMigration = errors.New("unknown migration")

	// ErrInvalidCatalogue indicates a catalogue that cannot be compiled into patterns.
	ErrInvalidCatalogue = errors.New("invalid catalogue")
)

// identRe matches a bare source identifier. Catalogue entries and markers
// must be identifiers so the compiled patterns stay anchored on word
// boundaries.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Catalogue is a named set of identifiers to rewrite plus the marker that
// gets prefixed to each occurrence.
type Catalogue struct {
	name   string
	marker string
	names  []string
}

// NewCatalogue validates and builds a catalogue. Names are sorted so the
// compiled patterns are deterministic.
func NewCatalogue(name, marker string, names []string) (Catalogue, error) {
	if strings.TrimSpace(name) == "" {
		return Catalogue{}, fmt.Errorf("%w: migration name is empty", ErrInvalidCatalogue)
	}
	if !identRe.MatchString(marker) {
		return Catalogue{}, fmt.Errorf("%w: marker %q is not an identifier", ErrInvalidCatalogue, marker)
	}
	if len(names) == 0 {
		return Catalogue{}, fmt.Errorf("%w: migration %q has no identifiers", ErrInvalidCatalogue, name)
	}

	seen := make(map[string]bool, len(names))
	sorted := make([]string, 0, len(names))
	for _, n := range names {
		if !identRe.MatchString(n) {
			return Catalogue{}, fmt.Errorf("%w: %q is not an identifier", ErrInvalidCatalogue, n)
		}
		if seen[n] {
			return Catalogue{}, fmt.Errorf("%w: duplicate identifier %q", ErrInvalidCatalogue, n)
		}
		seen[n] = true
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	return Catalogue{name: name, marker: marker, names: sorted}, nil
}

// Name returns the migration name the catalogue is registered under.
func (c Catalogue) Name() string { return c.name }

// Marker returns the prefix written in front of each rewritten identifier.
func (c Catalogue) Marker() string { return c.marker }

// Names returns the identifiers the catalogue rewrites, sorted.
func (c Catalogue) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// geometry7to8 lists the component attributes that moved behind the "d"
// accessor between gdsfactory v7 and v8.
var geometry7to8 = []string{
	"center",
	"mirror",
	"move",
	"movex",
	"movey",
	"rotate",
	"size_info",
	"x",
	"xmax",
	"xmin",
	"xsize",
	"y",
	"ymax",
	"ymin",
	"ysize",
}

// Builtins returns the catalogues that ship with the tool, keyed by
// migration name.
func Builtins() map[string]Catalogue {
	cat, err := NewCatalogue("7to8", "d", geometry7to8)
	if err != nil {
		panic(err) // static data, cannot fail
	}
	return map[string]Catalogue{cat.Name(): cat}
}

// Lookup resolves a migration name against the builtin catalogues merged
// with user-defined extras. Extras win on name clashes.
func Lookup(name string, extras map[string]Catalogue) (Catalogue, error) {
	cats := Builtins()
	for k, v := range extras {
		cats[k] = v
	}

	if cat, ok := cats[name]; ok {
		return cat, nil
	}

	known := make([]string, 0, len(cats))
	for k := range cats {
		known = append(known, k)
	}
	sort.Strings(known)
	return Catalogue{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownMigration, name, strings.Join(known, ", "))
}
