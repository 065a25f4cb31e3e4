package migrate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rewriter applies a catalogue to source text. Two compiled patterns run in
// sequence: the qualified pattern matches identifiers already behind the
// marker ("d.center"), the bare pattern matches plain identifiers. Both
// prefix the whole match with the marker. Matches are whole words, with
// word characters taken from all of Unicode, so "écenter" is one identifier
// and stays untouched.
type Rewriter struct {
	catalogue Catalogue
	qualified *regexp.Regexp
	bare      *regexp.Regexp
	marker    string
}

// NewRewriter compiles the catalogue into the qualified and bare patterns.
// Every name is escaped, so catalogue entries are matched literally.
func NewRewriter(cat Catalogue) (*Rewriter, error) {
	names := cat.Names()
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: migration %q has no identifiers", ErrInvalidCatalogue, cat.Name())
	}

	marker := regexp.QuoteMeta(cat.Marker())
	qualified := make([]string, len(names))
	bare := make([]string, len(names))
	for i, name := range names {
		quoted := regexp.QuoteMeta(name)
		qualified[i] = marker + `\.` + quoted
		bare[i] = quoted
	}

	qre, err := regexp.Compile(`\b(` + strings.Join(qualified, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("compile qualified pattern: %w", err)
	}
	bre, err := regexp.Compile(`\b(` + strings.Join(bare, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("compile bare pattern: %w", err)
	}

	return &Rewriter{
		catalogue: cat,
		qualified: qre,
		bare:      bre,
		marker:    cat.Marker(),
	}, nil
}

// Catalogue returns the catalogue the rewriter was compiled from.
func (rw *Rewriter) Catalogue() Catalogue {
	return rw.catalogue
}

// Result holds the outcome of rewriting one piece of text.
type Result struct {
	Original  string
	Rewritten string
	Changed   bool
}

// Rewrite runs both passes over text. The qualified pass goes first and the
// bare pass runs over its output, so an already-qualified occurrence like
// "d.center" gains the marker on both sides of the dot ("dd.dcenter").
func (rw *Rewriter) Rewrite(text string) Result {
	rewritten := rw.applyPass(rw.bare, rw.applyPass(rw.qualified, text))
	return Result{
		Original:  text,
		Rewritten: rewritten,
		Changed:   rewritten != text,
	}
}

// applyPass prefixes every match of re in text with the marker. The \b in
// the compiled patterns is ASCII-only; a candidate flanked by a letter or
// digit outside ASCII sits inside a longer identifier and is skipped.
func (rw *Rewriter) applyPass(re *regexp.Regexp, text string) string {
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + len(locs)*len(rw.marker))
	last := 0
	for _, loc := range locs {
		if wordRuneBefore(text, loc[0]) || wordRuneAfter(text, loc[1]) {
			continue
		}
		b.WriteString(text[last:loc[0]])
		b.WriteString(rw.marker)
		b.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// wordRuneBefore reports whether the rune ending at offset is a word
// character.
func wordRuneBefore(text string, offset int) bool {
	r, size := utf8.DecodeLastRuneInString(text[:offset])
	return size > 0 && isWordRune(r)
}

// wordRuneAfter reports whether the rune starting at offset is a word
// character.
func wordRuneAfter(text string, offset int) bool {
	r, size := utf8.DecodeRuneInString(text[offset:])
	return size > 0 && isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
