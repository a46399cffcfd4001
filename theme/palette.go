package theme

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go-arp/util"
)

type RGB [3]uint8

type Palette struct {
	Name   string
	Colors []RGB
}

// DefaultPalette is a plasma-like ramp used when no .gpl file is around
func DefaultPalette() *Palette {
	return &Palette{
		Name: "plasma",
		Colors: []RGB{
			{13, 8, 135},
			{84, 2, 163},
			{139, 10, 165},
			{185, 50, 137},
			{219, 92, 104},
			{244, 136, 73},
			{254, 188, 43},
			{240, 249, 33},
		},
	}
}

// LoadPalette reads a .gpl file. An empty path gives DefaultPalette, and
// so does a file that fails to load, with the error still returned.
func LoadPalette(path string) (*Palette, error) {
	if path == "" {
		return DefaultPalette(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return DefaultPalette(), err
	}
	defer f.Close()

	p, err := ParseGPL(f)
	if err != nil {
		return DefaultPalette(), fmt.Errorf("palette %s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// ParseGPL reads a GIMP palette: the "GIMP Palette" header, optional Name
// and Columns lines, # comments and "R G B [label]" rows
func ParseGPL(r io.Reader) (*Palette, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() || strings.TrimSpace(sc.Text()) != "GIMP Palette" {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("missing GIMP Palette header")
	}

	p := &Palette{}
	for line := 2; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		switch {
		case text == "", strings.HasPrefix(text, "#"), strings.HasPrefix(text, "Columns:"):
		case strings.HasPrefix(text, "Name:"):
			p.Name = strings.TrimSpace(strings.TrimPrefix(text, "Name:"))
		default:
			c, err := parseRGB(text)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			p.Colors = append(p.Colors, c)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(p.Colors) == 0 {
		return nil, errors.New("no colors found")
	}
	return p, nil
}

func parseRGB(text string) (RGB, error) {
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return RGB{}, fmt.Errorf("want R G B, got %q", text)
	}
	var c RGB
	for i := range c {
		v, err := strconv.ParseUint(fields[i], 10, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("channel %q: %w", fields[i], err)
		}
		c[i] = uint8(v)
	}
	return c, nil
}

// Lookup blends the two colours either side of norm (0-1) along the ramp
func (p *Palette) Lookup(norm float64) RGB {
	last := len(p.Colors) - 1
	pos := util.Clamp(norm, 0, 1) * float64(last)
	i := int(pos)
	if i >= last {
		return p.Colors[last]
	}

	a, b := p.Colors[i], p.Colors[i+1]
	frac := pos - float64(i)
	var out RGB
	for ch := range out {
		out[ch] = uint8(float64(a[ch]) + (float64(b[ch])-float64(a[ch]))*frac)
	}
	return out
}
