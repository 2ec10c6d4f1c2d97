package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// MIDIConfig controls the optional MIDI keyboard input
type MIDIConfig struct {
	Enabled    bool   `json:"enabled"`
	PortFilter string `json:"portFilter,omitempty"` // substring match on port name, empty = any
}

// Config is the main configuration structure
type Config struct {
	AssetDir     string `json:"assetDir,omitempty"` // empty = directory of the executable
	ScaleFormat  string `json:"scaleFormat"`
	ChromaticDir string `json:"chromaticDir"`
	ChromaticExt string `json:"chromaticExt"`

	// Pitch asset preparation
	BaseSample string `json:"baseSample"`
	BaseNote   string `json:"baseNote"`

	KeymapFile   string `json:"keymapFile,omitempty"`
	NotationFile string `json:"notationFile,omitempty"`

	StepMillis   int `json:"stepMillis"` // auto-play time per symbol
	SampleRate   int `json:"sampleRate"`
	BufferMillis int `json:"bufferMillis"`

	Palette string     `json:"palette,omitempty"` // GIMP palette file, empty = built in
	MIDI    MIDIConfig `json:"midi"`
	Debug   bool       `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		ScaleFormat:  "XTLZ-%d.mp3",
		ChromaticDir: "piano",
		ChromaticExt: ".wav",
		BaseSample:   "XTLZ-1.mp3",
		BaseNote:     "C4",
		KeymapFile:   "keymap.txt",
		NotationFile: "score.txt",
		StepMillis:   300,
		SampleRate:   44100,
		BufferMillis: 50,
		MIDI: MIDIConfig{
			Enabled: true,
		},
	}
}

// Step returns the auto-play duration per symbol
func (c *Config) Step() time.Duration {
	if c.StepMillis <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(c.StepMillis) * time.Millisecond
}

// Buffer returns the output buffer length
func (c *Config) Buffer() time.Duration {
	if c.BufferMillis <= 0 {
		return 50 * time.Millisecond
	}
	return time.Duration(c.BufferMillis) * time.Millisecond
}

// Path joins a relative file name onto the asset directory
func (c *Config) Path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.AssetDir, name)
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "xtlz-piano"), nil
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

// LoadFrom reads the config at path. Keys missing from the file keep their defaults.
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
