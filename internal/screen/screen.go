package screen

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lingobuddy/internal/session"
	"github.com/abhisek/lingobuddy/internal/ui/layout"
)

// Screen is one page of the TUI. View renders only the area between the
// header and the footer.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// CallDoneMsg carries the outcome of a tutoring call back to the event
// loop, where the root model applies it to the controller.
type CallDoneMsg struct {
	Result session.Result
}

// RunCall performs call off the event loop. A nil call yields a nil
// command.
func RunCall(ctx context.Context, c *session.Controller, call *session.Call) tea.Cmd {
	if call == nil {
		return nil
	}
	return func() tea.Msg {
		return CallDoneMsg{Result: c.Run(ctx, call)}
	}
}
