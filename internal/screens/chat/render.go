package chat

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingobuddy/internal/tutor"
	"github.com/abhisek/lingobuddy/internal/ui/theme"
)

// renderTranscript draws the message log: learner bubbles on the right,
// tutor bubbles on the left.
func renderTranscript(msgs []tutor.Message, selected uint64, width int) string {
	bubbleWidth := width * 3 / 4
	if bubbleWidth < 20 {
		bubbleWidth = width
	}

	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(renderMessage(m, m.ID == selected && selected != 0, bubbleWidth, width))
	}
	return b.String()
}

func renderMessage(m tutor.Message, selected bool, bubbleWidth, width int) string {
	style := theme.TutorBubble
	if m.Role == tutor.RoleUser {
		style = theme.UserBubble
	}
	if w := lipgloss.Width(m.Text) + style.GetHorizontalFrameSize(); w < bubbleWidth {
		style = style.Width(w)
	} else {
		style = style.Width(bubbleWidth)
	}
	bubble := style.Render(m.Text)

	if m.Role == tutor.RoleModel {
		return bubble
	}

	if m.Correction != nil {
		mark := theme.CorrectionMark.Render("✎")
		if selected {
			mark = theme.CorrectionMark.Background(theme.Secondary).Render("✎ tip")
		}
		bubble = lipgloss.JoinHorizontal(lipgloss.Top, mark, " ", bubble)
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble)
}

// renderTip draws the "Grammar Tip" dialog for a corrected message. The
// learner's own text stands in when the tutor omitted the original.
func renderTip(m tutor.Message, width int) string {
	corr := m.Correction
	original := corr.Original
	if original == "" {
		original = m.Text
	}
	inner := width - 4

	section := func(label, text string, style lipgloss.Style) string {
		return theme.Label.Render(label) + "\n" + style.Width(inner).Render(text)
	}

	parts := []string{
		lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("Grammar Tip"),
		section("Your Sentence:", original, theme.Incorrect),
	}
	if corr.Corrected != "" {
		parts = append(parts, section("Suggestion:", corr.Corrected, theme.Correct))
	}
	if corr.Explanation != "" {
		parts = append(parts, section("Explanation:", corr.Explanation, theme.Body))
	}
	parts = append(parts, theme.Hint.Render("Press Esc to close"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Accent).
		Padding(1, 2).
		Width(width).
		Render(strings.Join(parts, "\n\n"))
}
