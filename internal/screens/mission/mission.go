// Package mission implements the roleplay scenario picker.
package mission

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lingobuddy/internal/screen"
	"github.com/abhisek/lingobuddy/internal/session"
	"github.com/abhisek/lingobuddy/internal/tutor"
	"github.com/abhisek/lingobuddy/internal/ui/components"
	"github.com/abhisek/lingobuddy/internal/ui/layout"
	"github.com/abhisek/lingobuddy/internal/ui/theme"
)

// MissionScreen lists the available missions.
type MissionScreen struct {
	ctx  context.Context
	ctrl *session.Controller
	menu components.Menu
	err  string
}

var _ screen.Screen = (*MissionScreen)(nil)
var _ screen.KeyHintProvider = (*MissionScreen)(nil)

// New creates the mission picker for ctrl.
func New(ctx context.Context, ctrl *session.Controller) *MissionScreen {
	s := &MissionScreen{ctx: ctx, ctrl: ctrl}

	missions := tutor.Missions()
	items := make([]components.MenuItem, len(missions))
	for i, m := range missions {
		items[i] = components.MenuItem{
			Label:       m.Title,
			Description: m.Description,
			Action:      s.choose(m),
		}
	}
	s.menu = components.NewMenu(items)
	return s
}

func (s *MissionScreen) choose(m tutor.Mission) func() tea.Cmd {
	return func() tea.Cmd {
		call, err := s.ctrl.SelectMission(m)
		if err != nil {
			s.err = err.Error()
			return nil
		}
		return screen.RunCall(s.ctx, s.ctrl, call)
	}
}

func (s *MissionScreen) Init() tea.Cmd { return nil }

func (s *MissionScreen) Title() string { return "Choose a Mission" }

func (s *MissionScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start mission"},
		{Key: "Ctrl+R", Description: "Start over"},
	}
}

func (s *MissionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *MissionScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Width(width).Render("Choose Your Mission"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render(
		fmt.Sprintf("Role-play a real-world task in %s.", s.ctrl.Language().Name)))
	b.WriteString("\n\n")
	b.WriteString(s.menu.View())
	if s.err != "" {
		b.WriteString("\n")
		b.WriteString(theme.Incorrect.Render("  " + s.err))
	}
	return components.Center(b.String(), width, height)
}
