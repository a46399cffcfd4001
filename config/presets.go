package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"go-arp/sequencer"
)

const (
	presetExt    = ".yaml"
	presetLayout = "2006-01-02_15-04-05"
)

var ErrNoPresets = errors.New("no presets saved")

// now is swapped in tests
var now = time.Now

// PresetInfo represents a saved preset file (for listing)
type PresetInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
}

// Preset is the YAML document on disk
type Preset struct {
	Name    string            `yaml:"name,omitempty"`
	Tempo   int               `yaml:"tempo,omitempty"`
	Session sequencer.Session `yaml:"session"`
}

// PresetsDir returns the presets directory path
func PresetsDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "presets"), nil
}

// ListPresets returns timestamped presets, newest first
func ListPresets() ([]PresetInfo, error) {
	dir, err := PresetsDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []PresetInfo{}, nil
		}
		return nil, err
	}

	presets := []PresetInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, ok := parsePresetName(entry.Name())
		if ok {
			presets = append(presets, info)
		}
	}

	sort.Slice(presets, func(i, j int) bool {
		return presets[i].Timestamp.After(presets[j].Timestamp)
	})
	return presets, nil
}

// parsePresetName reads 2024-01-15_14-30-00.yaml or 2024-01-15_14-30-00_name.yaml
func parsePresetName(filename string) (PresetInfo, bool) {
	if !strings.HasSuffix(filename, presetExt) {
		return PresetInfo{}, false
	}
	base := strings.TrimSuffix(filename, presetExt)
	if len(base) < len(presetLayout) {
		return PresetInfo{}, false
	}
	ts, err := time.ParseInLocation(presetLayout, base[:len(presetLayout)], time.Local)
	if err != nil {
		return PresetInfo{}, false
	}
	name := ""
	if rest := base[len(presetLayout):]; len(rest) > 1 && rest[0] == '_' {
		name = rest[1:]
	}
	return PresetInfo{Filename: filename, Name: name, Timestamp: ts}, true
}

// SavePreset writes p under a timestamped file name and returns it
func SavePreset(p Preset) (string, error) {
	dir, err := PresetsDir()
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(&p)
	if err != nil {
		return "", fmt.Errorf("encode preset: %w", err)
	}

	filename := now().Format(presetLayout)
	if safe := sanitizeFilename(p.Name); safe != "" {
		filename += "_" + safe
	}
	filename += presetExt
	if err := writeAtomic(dir, filename, data); err != nil {
		return "", err
	}
	return filename, nil
}

// LoadPreset reads a preset, the newest one when filename is empty
func LoadPreset(filename string) (*Preset, error) {
	dir, err := PresetsDir()
	if err != nil {
		return nil, err
	}
	if filename == "" {
		presets, err := ListPresets()
		if err != nil {
			return nil, err
		}
		if len(presets) == 0 {
			return nil, ErrNoPresets
		}
		filename = presets[0].Filename
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(filename)))
	if err != nil {
		return nil, err
	}
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("preset %s: %w", filename, err)
	}
	return &p, nil
}

// DeletePreset deletes a preset file
func DeletePreset(filename string) error {
	dir, err := PresetsDir()
	if err != nil {
		return err
	}
	return os.Remove(filepath.Join(dir, filepath.Base(filename)))
}

// RenamePreset changes the name part of a preset file, keeping its timestamp
func RenamePreset(oldFilename, newName string) (string, error) {
	info, ok := parsePresetName(oldFilename)
	if !ok {
		return "", fmt.Errorf("invalid preset filename %q", oldFilename)
	}
	dir, err := PresetsDir()
	if err != nil {
		return "", err
	}

	newFilename := info.Timestamp.Format(presetLayout)
	if safe := sanitizeFilename(newName); safe != "" {
		newFilename += "_" + safe
	}
	newFilename += presetExt
	return newFilename, os.Rename(filepath.Join(dir, oldFilename), filepath.Join(dir, newFilename))
}

var filenameReplacer = strings.NewReplacer(
	" ", "-", "/", "-", "\\", "-", ":", "-",
	"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
)

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	return filenameReplacer.Replace(strings.TrimSpace(name))
}
