// Package theme maps theme names to popup color palettes.
package theme

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Name is one of the enumerated theme identifiers.
type Name string

const (
	Default Name = "default"
	Purple  Name = "purple"
	Ocean   Name = "ocean"
	Forest  Name = "forest"
)

// Names lists every theme in display order.
var Names = []Name{Default, Purple, Ocean, Forest}

// Palette holds the CSS gradients a theme applies.
type Palette struct {
	Background string `yaml:"background" json:"background_gradient"`
	Accent     string `yaml:"accent" json:"accent_gradient"`
}

//go:embed themes.yaml
var themesYAML []byte

var table = mustParse(themesYAML)

func mustParse(raw []byte) map[Name]Palette {
	t, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// Parse decodes a theme table and checks every enumerated name is present.
func Parse(raw []byte) (map[Name]Palette, error) {
	t := map[Name]Palette{}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("failed to decode theme table: %w", err)
	}
	for _, n := range Names {
		if _, ok := t[n]; !ok {
			return nil, fmt.Errorf("theme table missing %q", n)
		}
	}
	return t, nil
}

// Lookup returns the palette for name. Unknown names resolve to the default
// palette with ok=false.
func Lookup(name string) (Palette, bool) {
	p, ok := table[Name(name)]
	if !ok {
		return table[Default], false
	}
	return p, true
}

// Resolve normalizes name to a known theme.
func Resolve(name string) Name {
	if _, ok := table[Name(name)]; ok {
		return Name(name)
	}
	return Default
}

var hexColor = regexp.MustCompile(`#[0-9A-Fa-f]{6}`)

// AccentColor returns the first color stop of the accent gradient, for
// surfaces that cannot draw gradients.
func (p Palette) AccentColor() string {
	return hexColor.FindString(p.Accent)
}
