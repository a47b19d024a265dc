// Package mode implements the conversation mode picker.
package mode

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingobuddy/internal/screen"
	"github.com/abhisek/lingobuddy/internal/session"
	"github.com/abhisek/lingobuddy/internal/tutor"
	"github.com/abhisek/lingobuddy/internal/ui/components"
	"github.com/abhisek/lingobuddy/internal/ui/layout"
	"github.com/abhisek/lingobuddy/internal/ui/theme"
)

// Description returns the one-line explanation of mode for a learner of
// languageName.
func Description(m tutor.Mode, languageName string) string {
	switch m {
	case tutor.ModeImmersion:
		return fmt.Sprintf("You and the AI chat exclusively in %s. Perfect for practicing your skills.", languageName)
	case tutor.ModeCrosstalk:
		return fmt.Sprintf("You chat in English, and the AI responds in %s. Great for beginners.", languageName)
	case tutor.ModeMissions:
		return fmt.Sprintf("Complete real-world tasks through role-playing scenarios in %s.", languageName)
	}
	return ""
}

// ModeScreen shows one card per conversation mode.
type ModeScreen struct {
	ctx      context.Context
	ctrl     *session.Controller
	modes    []tutor.Mode
	selected int
	err      string
}

var _ screen.Screen = (*ModeScreen)(nil)
var _ screen.KeyHintProvider = (*ModeScreen)(nil)

// New creates the mode picker for ctrl.
func New(ctx context.Context, ctrl *session.Controller) *ModeScreen {
	return &ModeScreen{ctx: ctx, ctrl: ctrl, modes: tutor.Modes()}
}

func (s *ModeScreen) Init() tea.Cmd { return nil }

func (s *ModeScreen) Title() string { return "Choose a Mode" }

func (s *ModeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+R", Description: "Start over"},
	}
}

func (s *ModeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "up", "k", "left", "h":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j", "right", "l":
		if s.selected < len(s.modes)-1 {
			s.selected++
		}
	case "1", "2", "3":
		s.selected = int(kmsg.String()[0] - '1')
		return s, s.choose()
	case "enter":
		return s, s.choose()
	}
	return s, nil
}

func (s *ModeScreen) choose() tea.Cmd {
	call, err := s.ctrl.SelectMode(s.modes[s.selected])
	if err != nil {
		s.err = err.Error()
		return nil
	}
	return screen.RunCall(s.ctx, s.ctrl, call)
}

func (s *ModeScreen) View(width, height int) string {
	lang := s.ctrl.Language().Name
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Title.Render(fmt.Sprintf("Let's Learn %s!", lang)))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("Choose your practice mode:"))
	b.WriteString("\n\n")

	for i, m := range s.modes {
		accent := theme.ModeColor(string(m))
		name := lipgloss.NewStyle().Foreground(accent).Bold(true).
			Render(fmt.Sprintf("%d. %s", i+1, m.DisplayName()))
		desc := lipgloss.NewStyle().Foreground(theme.TextDim).Width(cw - 4).
			Render(Description(m, lang))
		b.WriteString(components.Card(name+"\n"+desc, cw, accent, i == s.selected))
		b.WriteString("\n")
	}
	if s.err != "" {
		b.WriteString(theme.Incorrect.Render(s.err))
	}
	return components.Center(b.String(), width, height)
}
