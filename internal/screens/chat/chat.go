// Package chat implements the conversation screen.
package chat

import (
	"context"
	"fmt"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingobuddy/internal/screen"
	"github.com/abhisek/lingobuddy/internal/session"
	"github.com/abhisek/lingobuddy/internal/tutor"
	"github.com/abhisek/lingobuddy/internal/ui/components"
	"github.com/abhisek/lingobuddy/internal/ui/layout"
	"github.com/abhisek/lingobuddy/internal/ui/theme"
)

const inputCharLimit = 500

// ChatScreen shows the message log and the prompt.
type ChatScreen struct {
	ctx  context.Context
	ctrl *session.Controller

	input    components.TextInput
	viewport viewport.Model
	spinner  spinner.Model
	spinning bool

	// follow keeps the viewport pinned to the newest message.
	follow   bool
	lastSeen int

	// selected is the ID of the highlighted corrected message, 0 for none.
	selected uint64
	tipOpen  bool
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)

// New creates the chat screen for ctrl.
func New(ctx context.Context, ctrl *session.Controller) *ChatScreen {
	vp := viewport.New()
	vp.SoftWrap = true

	return &ChatScreen{
		ctx:      ctx,
		ctrl:     ctrl,
		input:    components.NewTextInput("Type your message...", inputCharLimit),
		viewport: vp,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Secondary)),
		),
		follow: true,
	}
}

func (s *ChatScreen) Init() tea.Cmd {
	return tea.Batch(s.input.Init(), s.startSpinner())
}

// Header returns "<Language> - <Mode> Mode", followed by the mission title
// in Missions mode.
func Header(lang tutor.Language, mode tutor.Mode, mission *tutor.Mission) string {
	h := fmt.Sprintf("%s - %s Mode", lang.Name, mode.DisplayName())
	if mission != nil {
		h += " | " + mission.Title
	}
	return h
}

func (s *ChatScreen) Title() string {
	return Header(s.ctrl.Language(), s.ctrl.Mode(), s.ctrl.Mission())
}

func (s *ChatScreen) KeyHints() []layout.KeyHint {
	if s.tipOpen {
		return []layout.KeyHint{{Key: "Esc", Description: "Close tip"}}
	}
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Tab", Description: "Corrections"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
		{Key: "Ctrl+R", Description: "End Session"},
	}
	if s.selected != 0 && s.input.Blank() {
		hints[0] = layout.KeyHint{Key: "Enter", Description: "Grammar Tip"}
	}
	return hints
}

func (s *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !s.ctrl.Loading() {
			s.spinning = false
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		s.viewport, cmd = s.viewport.Update(msg)
		s.follow = s.viewport.AtBottom()
		return s, cmd

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *ChatScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if s.tipOpen {
		switch msg.String() {
		case "esc", "enter", "q":
			s.tipOpen = false
		}
		return s, nil
	}

	switch msg.String() {
	case "enter":
		if s.input.Blank() {
			if s.selected != 0 {
				s.tipOpen = true
			}
			return s, nil
		}
		return s, s.send()
	case "tab":
		s.selected = cycle(s.ctrl.Messages(), s.selected, 1)
		return s, nil
	case "shift+tab":
		s.selected = cycle(s.ctrl.Messages(), s.selected, -1)
		return s, nil
	case "esc":
		s.selected = 0
		return s, nil
	case "pgup":
		s.viewport.PageUp()
		s.follow = false
		return s, nil
	case "pgdown":
		s.viewport.PageDown()
		s.follow = s.viewport.AtBottom()
		return s, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// send submits the prompt. While a reply is pending the text stays in the
// prompt.
func (s *ChatScreen) send() tea.Cmd {
	call := s.ctrl.Send(s.input.Value())
	if call == nil {
		return nil
	}
	s.input.Reset()
	s.follow = true
	return tea.Batch(screen.RunCall(s.ctx, s.ctrl, call), s.startSpinner())
}

func (s *ChatScreen) startSpinner() tea.Cmd {
	if s.spinning || !s.ctrl.Loading() {
		return nil
	}
	s.spinning = true
	return s.spinner.Tick
}

// cycle returns the ID of the next corrected user message after current in
// direction dir, wrapping around. It returns 0 when there is none.
func cycle(msgs []tutor.Message, current uint64, dir int) uint64 {
	var ids []uint64
	for _, m := range msgs {
		if m.Role == tutor.RoleUser && m.Correction != nil {
			ids = append(ids, m.ID)
		}
	}
	if len(ids) == 0 {
		return 0
	}

	pos := -1
	for i, id := range ids {
		if id == current {
			pos = i
			break
		}
	}
	switch {
	case pos < 0 && dir > 0:
		return ids[0]
	case pos < 0:
		return ids[len(ids)-1]
	}
	return ids[(pos+dir+len(ids))%len(ids)]
}

func (s *ChatScreen) View(width, height int) string {
	msgs := s.ctrl.Messages()
	if s.selected != 0 && findMessage(msgs, s.selected) == nil {
		s.selected = 0
	}
	if s.tipOpen {
		if m := findMessage(msgs, s.selected); m != nil && m.Correction != nil {
			return components.Center(renderTip(*m, components.ContentWidth(width)), width, height)
		}
		s.tipOpen = false
	}

	s.input.SetWidth(width - 6)
	prompt := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(width - 2).
		Render(s.input.View())

	status := ""
	if s.ctrl.Loading() {
		status = s.spinner.View() + " " + theme.Hint.Render("LingoBuddy is typing...")
	}

	vpHeight := height - lipgloss.Height(prompt) - 1
	if vpHeight < 1 {
		vpHeight = 1
	}
	s.viewport.SetWidth(width)
	s.viewport.SetHeight(vpHeight)
	s.viewport.SetContent(renderTranscript(msgs, s.selected, width))
	if len(msgs) != s.lastSeen {
		s.lastSeen = len(msgs)
		s.follow = true
	}
	if s.follow {
		s.viewport.GotoBottom()
	}

	return lipgloss.JoinVertical(lipgloss.Left, s.viewport.View(), status, prompt)
}

func findMessage(msgs []tutor.Message, id uint64) *tutor.Message {
	for i := range msgs {
		if msgs[i].ID == id {
			return &msgs[i]
		}
	}
	return nil
}
