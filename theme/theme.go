package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
	Voices  [4]RGB
}

type Symbols struct {
	Solid rune // voice on
	Empty rune // voice off

	// scale keyboard
	InScale  rune
	OffScale rune
	Sounding rune // a voice plays this pitch class
	Held     rune // key down, nothing sounding on it

	Playhead rune // voice is stepping
	Parked   rune // released after a transport stop
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Solid:    '■',
			Empty:    '□',
			InScale:  '┃',
			OffScale: '│',
			Sounding: '●',
			Held:     '○',
			Playhead: '▶',
			Parked:   '‖',
		},
		// lime, cyan, magenta, yellow
		Voices: [4]RGB{
			{0, 255, 0},
			{0, 255, 255},
			{255, 0, 255},
			{255, 255, 0},
		},
	}
}

// Positions along the palette ramp for each UI role
const (
	RoleBG      = 0.0
	RoleMuted   = 0.2
	RoleFG      = 0.4
	RoleAccent  = 0.5
	RoleCursor  = 0.6
	RoleActive  = 0.7
	RoleWarning = 0.8
	RoleSuccess = 1.0
)

func (t *Theme) BG() lipgloss.Color      { return t.Color(RoleBG) }
func (t *Theme) FG() lipgloss.Color      { return t.Color(RoleFG) }
func (t *Theme) Accent() lipgloss.Color  { return t.Color(RoleAccent) }
func (t *Theme) Muted() lipgloss.Color   { return t.Color(RoleMuted) }
func (t *Theme) Active() lipgloss.Color  { return t.Color(RoleActive) }
func (t *Theme) Cursor() lipgloss.Color  { return t.Color(RoleCursor) }
func (t *Theme) Warning() lipgloss.Color { return t.Color(RoleWarning) }
func (t *Theme) Success() lipgloss.Color { return t.Color(RoleSuccess) }

// Color picks the palette colour at norm (0-1)
func (t *Theme) Color(norm float64) lipgloss.Color {
	return lipgloss.Color(t.Palette.Lookup(norm).Hex())
}

// Voice returns the highlight colour of voice i; unknown voices are green
func (t *Theme) Voice(i int) lipgloss.Color {
	if i < 0 || i >= len(t.Voices) {
		return lipgloss.Color(RGB{0, 128, 0}.Hex())
	}
	return lipgloss.Color(t.Voices[i].Hex())
}

// Hex formats c as #rrggbb
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
