package components

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingobuddy/internal/ui/theme"
)

// ContentWidth returns the inner width used for cards and dialogs so they
// line up across screens.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Card wraps content in a rounded-border card at the given width. A
// highlighted card is drawn with the accent border.
func Card(content string, width int, accent color.Color, highlighted bool) string {
	border := theme.Border
	if highlighted {
		border = accent
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width).
		Padding(0, 2).
		Render(content)
}

// Center places content in the middle of a width x height area.
func Center(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
