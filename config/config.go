package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go-arp/sequencer"
)

// MIDIConfig names the ports to use; empty means the first available
type MIDIConfig struct {
	InputPort  string `json:"inputPort,omitempty"`
	OutputPort string `json:"outputPort,omitempty"`
}

// AudioConfig sets the block clock of the software host
type AudioConfig struct {
	SampleRate int `json:"sampleRate,omitempty"`
	BlockSize  int `json:"blockSize,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastTempo        int    `json:"lastTempo,omitempty"`
	LastFocusedVoice int    `json:"lastFocusedVoice,omitempty"`
	Palette          string `json:"palette,omitempty"` // .gpl file, empty for the built-in ramp
}

// HTTPConfig is the control API listener
type HTTPConfig struct {
	Addr string `json:"addr,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	MIDI    MIDIConfig        `json:"midi"`
	Audio   AudioConfig       `json:"audio"`
	UI      UIConfig          `json:"ui"`
	HTTP    HTTPConfig        `json:"http"`
	Session sequencer.Session `json:"session"`
}

const (
	DefaultBlockSize = 512
	DefaultAddr      = "localhost:8040"
)

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate: int(sequencer.DefaultSampleRate),
			BlockSize:  DefaultBlockSize,
		},
		UI: UIConfig{
			LastTempo: int(sequencer.DefaultTempo),
		},
		HTTP:    HTTPConfig{Addr: DefaultAddr},
		Session: sequencer.DefaultSession(),
	}
}

// fillDefaults patches zero values left by an older or hand-written file
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = def.Audio.SampleRate
	}
	if c.Audio.BlockSize <= 0 {
		c.Audio.BlockSize = def.Audio.BlockSize
	}
	if c.UI.LastTempo <= 0 {
		c.UI.LastTempo = def.UI.LastTempo
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = def.HTTP.Addr
	}
	if len(c.Session.Voices) == 0 {
		c.Session = def.Session
	}
}

var (
	dirMu       sync.RWMutex
	dirOverride string
)

// SetDir moves the config directory, "" restores the default
func SetDir(dir string) {
	dirMu.Lock()
	dirOverride = dir
	dirMu.Unlock()
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	dirMu.RLock()
	dir := dirOverride
	dirMu.RUnlock()
	if dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-arp"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads config.json. A missing file gives the defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return DefaultConfig(), nil
	case err != nil:
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.fillDefaults()
	return &cfg, nil
}

// Save writes config.json
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(dir, "config.json", data)
}

// writeAtomic creates dir if needed and replaces dir/name through a temp
// file, so readers see the old contents or the new, never half
func writeAtomic(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
