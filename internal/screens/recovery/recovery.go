// Package recovery implements the error screen shown when a call fails.
package recovery

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lingobuddy/internal/screen"
	"github.com/abhisek/lingobuddy/internal/session"
	"github.com/abhisek/lingobuddy/internal/ui/components"
	"github.com/abhisek/lingobuddy/internal/ui/layout"
	"github.com/abhisek/lingobuddy/internal/ui/theme"
)

// RecoveryScreen shows the current error and the way out of it.
type RecoveryScreen struct {
	ctrl *session.Controller
}

var _ screen.Screen = (*RecoveryScreen)(nil)
var _ screen.KeyHintProvider = (*RecoveryScreen)(nil)

// New creates the recovery screen for ctrl.
func New(ctrl *session.Controller) *RecoveryScreen {
	return &RecoveryScreen{ctrl: ctrl}
}

// ActionLabel names what Enter does for the given failure.
func ActionLabel(f session.Failure) string {
	if f == session.FailureInit {
		return "Start Over"
	}
	return "Back to chat"
}

func (s *RecoveryScreen) Init() tea.Cmd { return nil }

func (s *RecoveryScreen) Title() string { return "Something went wrong" }

func (s *RecoveryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: ActionLabel(s.ctrl.Failure())},
		{Key: "Ctrl+R", Description: "Reset"},
	}
}

func (s *RecoveryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			s.ctrl.DismissError()
		}
	}
	return s, nil
}

func (s *RecoveryScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Title.Render("Oops!"))
	b.WriteString("\n\n")
	b.WriteString(theme.Incorrect.Width(cw - 4).Render(s.ctrl.Err()))
	b.WriteString("\n\n")
	b.WriteString(components.NewButton(ActionLabel(s.ctrl.Failure()), true).View())

	card := components.Card(b.String(), cw, theme.Error, true)
	return components.Center(card, width, height)
}
