package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// PortConfig selects a MIDI port
type PortConfig struct {
	Name      string   `json:"name,omitempty"`      // exact name or substring
	Preferred []string `json:"preferred,omitempty"` // tried when Name is empty
	Excluded  []string `json:"excluded,omitempty"`  // never auto-connected
}

// EngineConfig tunes the block clock and the remapper
type EngineConfig struct {
	BlockSize     int  `json:"blockSize"`
	SampleRate    int  `json:"sampleRate"`
	ReleaseOnStop bool `json:"releaseOnStop,omitempty"`
	FaultBuffer   int  `json:"faultBuffer,omitempty"`
	InputBuffer   int  `json:"inputBuffer,omitempty"`
}

// ControlConfig describes extra control surfaces
type ControlConfig struct {
	Serial string `json:"serial,omitempty"`
	Baud   int    `json:"baud,omitempty"`
}

// ScaleConfig is the selection restored at startup
type ScaleConfig struct {
	Key   string `json:"key,omitempty"` // e.g. "C", "F#/Gb"
	Scale string `json:"scale"`         // preset name; empty starts in bypass
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastKey   string `json:"lastKey,omitempty"`
	LastScale string `json:"lastScale,omitempty"`
	Palette   string `json:"palette,omitempty"` // GIMP .gpl file, empty uses the built-in one
}

// Config is the main configuration structure
type Config struct {
	Input      PortConfig    `json:"input"`
	Output     PortConfig    `json:"output"`
	Engine     EngineConfig  `json:"engine"`
	Control    ControlConfig `json:"control"`
	Scale      ScaleConfig   `json:"scale"`
	PresetFile string        `json:"presetFile,omitempty"`
	UI         UIConfig      `json:"ui"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Input: PortConfig{
			Preferred: []string{"Launchkey", "Keystation", "Keyboard"},
			Excluded:  []string{"Midi Through", "Through Port", "in-tune"},
		},
		Output: PortConfig{
			Excluded: []string{"Midi Through", "Through Port"},
		},
		Engine: EngineConfig{
			BlockSize:   256,
			SampleRate:  48000,
			FaultBuffer: 64,
			InputBuffer: 256,
		},
		Control: ControlConfig{
			Baud: 115200,
		},
	}
}

// Validate fills in zero values and clamps out-of-range ones
func (c *Config) Validate() {
	d := DefaultConfig()
	if c.Engine.BlockSize <= 0 {
		c.Engine.BlockSize = d.Engine.BlockSize
	}
	if c.Engine.BlockSize > 8192 {
		c.Engine.BlockSize = 8192
	}
	if c.Engine.SampleRate < 8000 || c.Engine.SampleRate > 384000 {
		c.Engine.SampleRate = d.Engine.SampleRate
	}
	if c.Engine.FaultBuffer <= 0 {
		c.Engine.FaultBuffer = d.Engine.FaultBuffer
	}
	if c.Engine.InputBuffer <= 0 {
		c.Engine.InputBuffer = d.Engine.InputBuffer
	}
	if c.Control.Baud <= 0 {
		c.Control.Baud = d.Control.Baud
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "in-tune"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path, or returns defaults if it does not exist
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Validate()

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
