// Package klayout reads KLayout layer properties (.lyp) files and exports
// their layer views to YAML.
package klayout

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidFormat indicates a file that is not a readable layer
// properties document.
var ErrInvalidFormat = errors.New("layer properties file incorrectly formatted")

// layerRe matches a layer/datatype pair like "41/0" or "*/*" inside a
// source entry or a display name.
var layerRe = regexp.MustCompile(`(\d+|\*)/(\d+|\*)`)

// XML shapes of a .lyp document. Scalar entries stay strings here; empty
// elements are common and the defaults are applied during conversion.
type lypFile struct {
	XMLName        xml.Name           `xml:"layer-properties"`
	Properties     []lypProperties    `xml:"properties"`
	DitherPatterns []lypCustomPattern `xml:"custom-dither-pattern"`
	LineStyles     []lypCustomPattern `xml:"custom-line-style"`
}

type lypProperties struct {
	Name            string          `xml:"name"`
	Source          string          `xml:"source"`
	FrameColor      string          `xml:"frame-color"`
	FillColor       string          `xml:"fill-color"`
	FrameBrightness string          `xml:"frame-brightness"`
	FillBrightness  string          `xml:"fill-brightness"`
	DitherPattern   string          `xml:"dither-pattern"`
	LineStyle       string          `xml:"line-style"`
	Valid           string          `xml:"valid"`
	Visible         string          `xml:"visible"`
	Transparent     string          `xml:"transparent"`
	Width           string          `xml:"width"`
	Marked          string          `xml:"marked"`
	XFill           string          `xml:"xfill"`
	Animation       string          `xml:"animation"`
	GroupMembers    []lypProperties `xml:"group-members"`
}

type lypCustomPattern struct {
	Name    string     `xml:"name"`
	Order   string     `xml:"order"`
	Pattern lypPattern `xml:"pattern"`
}

// lypPattern reads both pattern forms: dither patterns nest one <line>
// element per bitmap row, line styles carry the bits as flat text.
type lypPattern struct {
	Text  string   `xml:",chardata"`
	Lines []string `xml:"line"`
}

func (p lypPattern) value() string {
	if len(p.Lines) > 0 {
		return strings.Join(p.Lines, "\n")
	}
	return strings.TrimSpace(p.Text)
}

// ReadLYP loads and parses a .lyp file from disk.
func ReadLYP(path string) (*LayerProperties, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layer properties: %w", err)
	}
	return ParseLYP(data)
}

// ParseLYP parses .lyp XML content. The root element must be
// <layer-properties>; unnamed properties blocks are skipped.
func ParseLYP(data []byte) (*LayerProperties, error) {
	var file lypFile
	if err := xml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	props := &LayerProperties{
		CustomDitherPatterns: make(map[string]CustomPattern),
		CustomLineStyles:     make(map[string]CustomPattern),
	}

	for _, block := range file.Properties {
		name, view, err := toLayerView(block)
		if err != nil {
			return nil, err
		}
		if view == nil {
			continue
		}
		if err := props.LayerViews.Add(name, view); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
	}

	for _, block := range file.DitherPatterns {
		if block.Name == "" {
			continue
		}
		props.CustomDitherPatterns[block.Name] = CustomPattern{
			Order:   atoiDefault(block.Order, 0),
			Pattern: block.Pattern.value(),
		}
	}

	for _, block := range file.LineStyles {
		if block.Name == "" {
			continue
		}
		props.CustomLineStyles[block.Name] = CustomPattern{
			Order:   atoiDefault(block.Order, 0),
			Pattern: block.Pattern.value(),
		}
	}

	return props, nil
}

// toLayerView converts one properties block, recursing into group members.
// A nil view with nil error means the block had no name and is skipped.
func toLayerView(block lypProperties) (string, *LayerView, error) {
	name, layerInName := splitLayerName(block.Name)
	if name == "" {
		return "", nil, nil
	}

	layer, err := parseSource(block.Source)
	if err != nil {
		return "", nil, err
	}

	view := &LayerView{
		Layer:           layer,
		LayerInName:     layerInName,
		FrameColor:      block.FrameColor,
		FillColor:       block.FillColor,
		FrameBrightness: atoiDefault(block.FrameBrightness, 0),
		FillBrightness:  atoiDefault(block.FillBrightness, 0),
		DitherPattern:   block.DitherPattern,
		LineStyle:       block.LineStyle,
		Valid:           boolDefault(block.Valid, true),
		Visible:         boolDefault(block.Visible, true),
		Transparent:     boolDefault(block.Transparent, false),
		Width:           intPtr(block.Width),
		Marked:          boolDefault(block.Marked, false),
		XFill:           boolDefault(block.XFill, false),
		Animation:       atoiDefault(block.Animation, 0),
	}

	for _, member := range block.GroupMembers {
		memberName, memberView, err := toLayerView(member)
		if err != nil {
			return "", nil, err
		}
		if memberView == nil {
			continue
		}
		if view.GroupMembers == nil {
			view.GroupMembers = &LayerViews{}
		}
		if err := view.GroupMembers.Add(memberName, memberView); err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
	}

	return name, view, nil
}

// splitLayerName strips a trailing layer pair from a display name
// ("M1 41/0" becomes "M1") and reports whether one was present.
func splitLayerName(name string) (string, bool) {
	loc := layerRe.FindStringIndex(name)
	if loc == nil {
		return strings.TrimSpace(name), false
	}
	return strings.TrimSpace(name[:loc[0]]), true
}

// parseSource converts a source entry like "41/0@1" into a layer pair.
// A wildcard on either side means the view is not bound to a layer.
func parseSource(source string) (*Layer, error) {
	m := layerRe.FindStringSubmatch(source)
	if m == nil {
		return nil, fmt.Errorf("%w: cannot read layer source %q", ErrInvalidFormat, source)
	}
	if m[1] == "*" || m[2] == "*" {
		return nil, nil
	}

	// The pattern only admits digits here
	layer, _ := strconv.Atoi(m[1])
	datatype, _ := strconv.Atoi(m[2])
	return &Layer{layer, datatype}, nil
}

func atoiDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func boolDefault(s string, def bool) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func intPtr(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
