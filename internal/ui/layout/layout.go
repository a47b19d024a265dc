// Package layout draws the frame around every screen: a header bar, the
// screen content and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingobuddy/internal/ui/theme"
)

const (
	MinWidth  = 60
	MinHeight = 20
)

const hintSeparator = "   "

// KeyHint is a key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsTooSmall reports whether the terminal is below the minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("Terminal too small.\n\nLingoBuddy needs at least %d x %d\n(currently %d x %d)",
		MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(msg))
}

var bar = lipgloss.NewStyle().
	Background(theme.BgCard).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(theme.Border)

// RenderHeader draws the app name on the left, title in the middle and
// status on the right. The title is dropped when the three do not fit.
func RenderHeader(title, status string, width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("  LingoBuddy")
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(status)
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(title)

	inner := max(width-bar.GetHorizontalFrameSize(), 0)
	side := max(lipgloss.Width(brand), lipgloss.Width(right))
	if lipgloss.Width(center)+2*side+2 > inner {
		center = ""
	}

	line := lipgloss.PlaceHorizontal(inner, lipgloss.Center, center)
	line = overlay(brand, line, right, inner)
	return bar.Width(width).Render(line)
}

// overlay puts left and right over the ends of a centered line of width w.
func overlay(left, centered, right string, w int) string {
	lw, rw := lipgloss.Width(left), lipgloss.Width(right)
	mid := strings.TrimSpace(centered)
	mw := lipgloss.Width(mid)

	gapL := max((w-mw)/2-lw, 1)
	gapR := max(w-lw-gapL-mw-rw, 1)
	if mid == "" {
		gapL, gapR = max(w-lw-rw, 1), 0
	}
	return left + strings.Repeat(" ", gapL) + mid + strings.Repeat(" ", gapR) + right
}

// RenderFooter lists key hints, dropping those that do not fit.
func RenderFooter(hints []KeyHint, width int) string {
	inner := max(width-bar.GetHorizontalFrameSize(), 0)
	keyStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	line := " "
	for i, h := range hints {
		part := keyStyle.Render(h.Key) + " " + descStyle.Render(h.Description)
		if i > 0 {
			part = hintSeparator + part
		}
		if lipgloss.Width(line+part) > inner {
			break
		}
		line += part
	}
	return bar.Width(width).Render(line)
}

// RenderFrame stacks header, content and footer into exactly height lines.
func RenderFrame(header, content, footer string, width, height int) string {
	contentHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().
		Width(width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
