// Package language implements the target language picker.
package language

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lingobuddy/internal/screen"
	"github.com/abhisek/lingobuddy/internal/session"
	"github.com/abhisek/lingobuddy/internal/tutor"
	"github.com/abhisek/lingobuddy/internal/ui/components"
	"github.com/abhisek/lingobuddy/internal/ui/layout"
	"github.com/abhisek/lingobuddy/internal/ui/theme"
)

// LanguageScreen lists the supported languages.
type LanguageScreen struct {
	ctx  context.Context
	ctrl *session.Controller
	menu components.Menu
	err  string
}

var _ screen.Screen = (*LanguageScreen)(nil)
var _ screen.KeyHintProvider = (*LanguageScreen)(nil)

// New creates the language picker for ctrl.
func New(ctx context.Context, ctrl *session.Controller) *LanguageScreen {
	s := &LanguageScreen{ctx: ctx, ctrl: ctrl}

	langs := tutor.Languages()
	items := make([]components.MenuItem, len(langs))
	for i, lang := range langs {
		items[i] = components.MenuItem{
			Label:  lang.Name,
			Action: s.choose(lang),
		}
	}
	s.menu = components.NewMenu(items)
	return s
}

func (s *LanguageScreen) choose(lang tutor.Language) func() tea.Cmd {
	return func() tea.Cmd {
		call, err := s.ctrl.SelectLanguage(lang)
		if err != nil {
			s.err = err.Error()
			return nil
		}
		return screen.RunCall(s.ctx, s.ctrl, call)
	}
}

func (s *LanguageScreen) Init() tea.Cmd { return nil }

func (s *LanguageScreen) Title() string { return "Choose a Language" }

func (s *LanguageScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *LanguageScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *LanguageScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Width(width).Render("Welcome to LingoBuddy"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("Which language would you like to practice?"))
	b.WriteString("\n\n")
	b.WriteString(s.menu.View())
	if s.err != "" {
		b.WriteString("\n")
		b.WriteString(theme.Incorrect.Render("  " + s.err))
	}
	return components.Center(b.String(), width, height)
}
