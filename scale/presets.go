package scale

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var builtinPresets []byte

// Preset is a named interval table.
type Preset struct {
	Name      string `yaml:"name"`
	Intervals []int  `yaml:"intervals"`
}

// Presets is an ordered preset list.
type Presets []Preset

var titler = cases.Title(language.English)

// Title is the display form of the name.
func (p Preset) Title() string {
	return titler.String(p.Name)
}

// Bytes converts the table to the byte offsets the engine uses.
func (p Preset) Bytes() ([]uint8, error) {
	out := make([]uint8, len(p.Intervals))
	for i, v := range p.Intervals {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("preset %q: interval %d out of byte range", p.Name, v)
		}
		out[i] = uint8(v)
	}
	return out, nil
}

// Config builds a scale config for this preset rooted at key.
func (p Preset) Config(key Key) (*Config, error) {
	b, err := p.Bytes()
	if err != nil {
		return nil, err
	}
	return New(key.Root, true, b), nil
}

// Builtin returns the presets shipped with the program.
func Builtin() Presets {
	p, err := LoadPresets(bytes.NewReader(builtinPresets))
	if err != nil {
		panic(fmt.Sprintf("builtin presets: %v", err))
	}
	return p
}

// LoadPresets decodes a YAML preset list.
func LoadPresets(r io.Reader) (Presets, error) {
	var list Presets
	if err := yaml.NewDecoder(r).Decode(&list); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode presets: %w", err)
	}
	for _, p := range list {
		if p.Name == "" {
			return nil, fmt.Errorf("preset without name")
		}
		if _, err := p.Bytes(); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// LoadPresetFile reads a YAML preset file.
func LoadPresetFile(path string) (Presets, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadPresets(f)
}

// Merge returns ps with extra added; an extra preset replaces one with the
// same name. The result is sorted by name.
func (ps Presets) Merge(extra Presets) Presets {
	byName := make(map[string]Preset, len(ps)+len(extra))
	for _, p := range ps {
		byName[strings.ToLower(p.Name)] = p
	}
	for _, p := range extra {
		byName[strings.ToLower(p.Name)] = p
	}
	out := make(Presets, 0, len(byName))
	for _, p := range byName {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Find looks a preset up by name, case-insensitively.
func (ps Presets) Find(name string) (Preset, bool) {
	for _, p := range ps {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}

// Index returns the position of the named preset, or -1.
func (ps Presets) Index(name string) int {
	for i, p := range ps {
		if strings.EqualFold(p.Name, name) {
			return i
		}
	}
	return -1
}
