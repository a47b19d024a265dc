package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingobuddy/internal/router"
	"github.com/abhisek/lingobuddy/internal/screen"
	"github.com/abhisek/lingobuddy/internal/screens/chat"
	"github.com/abhisek/lingobuddy/internal/screens/language"
	"github.com/abhisek/lingobuddy/internal/screens/mission"
	"github.com/abhisek/lingobuddy/internal/screens/mode"
	"github.com/abhisek/lingobuddy/internal/screens/recovery"
	"github.com/abhisek/lingobuddy/internal/session"
	"github.com/abhisek/lingobuddy/internal/ui/layout"
)

// AppModel is the root Bubble Tea model. It owns the session controller and
// keeps the active screen in step with the controller's view.
type AppModel struct {
	router *router.Router
	ctrl   *session.Controller
	ctx    context.Context
	view   session.View
	width  int
	height int
}

// New creates the root model for ctrl.
func New(ctx context.Context, ctrl *session.Controller) AppModel {
	m := AppModel{ctrl: ctrl, ctx: ctx, view: ctrl.View()}
	m.router = router.New(m.screenFor(m.view))
	return m
}

func (m AppModel) screenFor(v session.View) screen.Screen {
	switch v {
	case session.ViewModePicker:
		return mode.New(m.ctx, m.ctrl)
	case session.ViewMissionPicker:
		return mission.New(m.ctx, m.ctrl)
	case session.ViewConversation:
		return chat.New(m.ctx, m.ctrl)
	case session.ViewRecovery:
		return recovery.New(m.ctrl)
	default:
		return language.New(m.ctx, m.ctrl)
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.CallDoneMsg:
		m.ctrl.Apply(msg.Result)

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+r":
			m.ctrl.Reset()
		default:
			cmd = m.router.Update(msg)
		}

	default:
		cmd = m.router.Update(msg)
	}

	syncCmd := m.sync()
	return m, tea.Batch(cmd, syncCmd)
}

// sync replaces the active screen when the controller's view has changed.
func (m *AppModel) sync() tea.Cmd {
	v := m.ctrl.View()
	if v == m.view {
		return nil
	}
	m.view = v
	return m.router.Replace(m.screenFor(v))
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

// render draws the full frame: header, active screen and footer.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status(), m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	}
	footerHints = append(footerHints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) status() string {
	if m.ctrl.Loading() {
		return "● waiting  "
	}
	if lang := m.ctrl.Language(); !lang.IsZero() {
		return lang.Name + "  "
	}
	return ""
}

// Run starts the Bubble Tea program.
func Run(ctx context.Context, ctrl *session.Controller) error {
	p := tea.NewProgram(New(ctx, ctrl), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
