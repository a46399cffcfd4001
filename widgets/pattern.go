package widgets

import (
	"github.com/charmbracelet/lipgloss"

	"go-arp/pattern"
)

// RenderPattern shows pattern text with the step that fired last picked
// out in style hl. Out of range spans render the text unmarked.
func RenderPattern(text string, span pattern.Span, ok bool, base, hl lipgloss.Style) string {
	if text == "" {
		return base.Render("(empty)")
	}
	if !ok || span.Start < 0 || span.End > len(text) || span.Start >= span.End {
		return base.Render(text)
	}
	out := ""
	if span.Start > 0 {
		out += base.Render(text[:span.Start])
	}
	out += hl.Render(text[span.Start:span.End])
	if span.End < len(text) {
		out += base.Render(text[span.End:])
	}
	return out
}
