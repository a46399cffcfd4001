package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-arp/sequencer"
	"go-arp/theme"
	"go-arp/theory"
	"go-arp/util"
)

const keyWidth = 4

// ScaleKeyboard is one octave of pitch classes with the scale, the held
// keys and whatever each voice is sounding marked on it
type ScaleKeyboard struct {
	Scale   theory.Scale
	Held    []uint8
	Current []sequencer.NoteInfo
}

// Render draws a marker row over a name row, twelve columns each
func (k ScaleKeyboard) Render(th *theme.Theme) string {
	var held [12]bool
	for _, n := range k.Held {
		held[n%12] = true
	}
	voice := [12]int{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1}
	for _, c := range k.Current {
		pc := util.Mod(c.Note, 12)
		if voice[pc] < 0 {
			voice[pc] = c.Voice
		}
	}

	muted := lipgloss.NewStyle().Foreground(th.Muted())
	fg := lipgloss.NewStyle().Foreground(th.FG())
	root := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)

	var marks, names strings.Builder
	for pc := 0; pc < 12; pc++ {
		in := k.Scale.Contains(pc - k.Scale.Root)

		var mark string
		switch {
		case voice[pc] >= 0:
			mark = lipgloss.NewStyle().Foreground(th.Voice(voice[pc])).Render(cell(th.Symbols.Sounding))
		case held[pc]:
			mark = fg.Render(cell(th.Symbols.Held))
		case in:
			mark = fg.Render(cell(th.Symbols.InScale))
		default:
			mark = muted.Render(cell(th.Symbols.OffScale))
		}
		marks.WriteString(mark)

		name := fmt.Sprintf("%-*s", keyWidth, theory.PitchName(pc))
		switch {
		case pc == util.Mod(k.Scale.Root, 12):
			names.WriteString(root.Render(name))
		case in:
			names.WriteString(fg.Render(name))
		default:
			names.WriteString(muted.Render(name))
		}
	}
	return marks.String() + "\n" + names.String()
}

func cell(r rune) string {
	return fmt.Sprintf("%-*s", keyWidth, string(r))
}
