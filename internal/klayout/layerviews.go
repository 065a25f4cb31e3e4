package klayout

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Layer is a GDSII (layer, datatype) pair.
type Layer [2]int

// MarshalYAML renders the pair in flow style, e.g. [41, 0].
func (l Layer) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{}
	if err := node.Encode([2]int(l)); err != nil {
		return nil, err
	}
	node.Style = yaml.FlowStyle
	return node, nil
}

// LayerView describes how one GDS layer is displayed in KLayout. Field
// meanings follow the .lyp documentation: https://www.klayout.de/lyp_format.html
type LayerView struct {
	Layer           *Layer      `yaml:"layer"`         // nil when the source is a wildcard
	LayerInName     bool        `yaml:"layer_in_name"` // display name carried a trailing layer pair
	FrameColor      string      `yaml:"frame_color,omitempty"`
	FillColor       string      `yaml:"fill_color,omitempty"`
	FrameBrightness int         `yaml:"frame_brightness"`
	FillBrightness  int         `yaml:"fill_brightness"`
	DitherPattern   string      `yaml:"dither_pattern,omitempty"`
	LineStyle       string      `yaml:"line_style,omitempty"`
	Valid           bool        `yaml:"valid"`
	Visible         bool        `yaml:"visible"`
	Transparent     bool        `yaml:"transparent"`
	Width           *int        `yaml:"width,omitempty"`
	Marked          bool        `yaml:"marked"`
	XFill           bool        `yaml:"xfill"`
	Animation       int         `yaml:"animation"`
	GroupMembers    *LayerViews `yaml:"group_members,omitempty"`
}

// LayerViews holds named layer views in file order. The YAML form is a
// mapping keyed by view name.
type LayerViews struct {
	names []string
	views map[string]*LayerView
}

// Add appends a named view. Duplicate names are an error.
func (lvs *LayerViews) Add(name string, view *LayerView) error {
	if _, ok := lvs.views[name]; ok {
		return fmt.Errorf("layer view %q already defined", name)
	}
	if lvs.views == nil {
		lvs.views = make(map[string]*LayerView)
	}
	lvs.names = append(lvs.names, name)
	lvs.views[name] = view
	return nil
}

// Get returns the view with the given name.
func (lvs *LayerViews) Get(name string) (*LayerView, bool) {
	view, ok := lvs.views[name]
	return view, ok
}

// Names returns the view names in file order.
func (lvs *LayerViews) Names() []string {
	return append([]string(nil), lvs.names...)
}

// Len returns the number of views.
func (lvs *LayerViews) Len() int {
	return len(lvs.names)
}

// MarshalYAML emits the views as a mapping in file order, not sorted.
func (lvs LayerViews) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range lvs.names {
		key := &yaml.Node{}
		key.SetString(name)

		value := &yaml.Node{}
		if err := value.Encode(lvs.views[name]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, key, value)
	}
	return node, nil
}

// CustomPattern is a user-defined dither pattern or line style. Dither
// patterns hold a multi-line bitmap; line styles a single line.
type CustomPattern struct {
	Order   int    `yaml:"order"`
	Pattern string `yaml:"pattern"`
}

// LayerProperties is the parsed content of a KLayout layer properties
// (.lyp) file.
type LayerProperties struct {
	LayerViews           LayerViews
	CustomDitherPatterns map[string]CustomPattern
	CustomLineStyles     map[string]CustomPattern
}

// ToYAML renders the layer views as a YAML document keyed by view name.
func (lp *LayerProperties) ToYAML() ([]byte, error) {
	return encodeYAML(lp.LayerViews)
}

// PatternsToYAML renders the custom dither patterns and line styles as
// their own YAML document.
func (lp *LayerProperties) PatternsToYAML() ([]byte, error) {
	doc := struct {
		DitherPatterns map[string]CustomPattern `yaml:"dither_patterns"`
		LineStyles     map[string]CustomPattern `yaml:"line_styles"`
	}{
		DitherPatterns: lp.CustomDitherPatterns,
		LineStyles:     lp.CustomLineStyles,
	}
	return encodeYAML(doc)
}

func encodeYAML(doc interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
