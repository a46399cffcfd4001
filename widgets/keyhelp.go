package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// KeyBinding is one key and what it does
type KeyBinding struct {
	Key  string
	Desc string
}

// KeySection is a titled group of bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

const helpGap = "    "

// RenderKeyHelp lays the sections out as columns, each key padded to the
// widest key of its own section
func RenderKeyHelp(sections []KeySection, title, key lipgloss.Style) string {
	cols := make([]string, 0, 2*len(sections))
	for i, sec := range sections {
		width := 0
		for _, k := range sec.Keys {
			width = max(width, lipgloss.Width(k.Key))
		}

		lines := make([]string, 0, len(sec.Keys)+1)
		if sec.Title != "" {
			lines = append(lines, title.Render(sec.Title))
		}
		for _, k := range sec.Keys {
			lines = append(lines, key.Render(fmt.Sprintf("%-*s", width, k.Key))+"  "+k.Desc)
		}

		if i > 0 {
			cols = append(cols, helpGap)
		}
		cols = append(cols, strings.Join(lines, "\n"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}
