package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// TextInput is a single-line prompt built on bubbles/textinput.
type TextInput struct {
	model textinput.Model
}

// NewTextInput returns a focused prompt. A limit of zero or less leaves the
// length unbounded.
func NewTextInput(placeholder string, limit int) TextInput {
	m := textinput.New()
	m.Placeholder = placeholder
	m.Prompt = "› "
	if limit > 0 {
		m.CharLimit = limit
	}
	m.Focus()
	return TextInput{model: m}
}

func (t TextInput) Init() tea.Cmd { return t.model.Focus() }

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.model, cmd = t.model.Update(msg)
	return t, cmd
}

func (t TextInput) View() string  { return t.model.View() }
func (t TextInput) Value() string { return t.model.Value() }

// Blank reports whether the prompt holds only whitespace.
func (t TextInput) Blank() bool { return strings.TrimSpace(t.model.Value()) == "" }

// SetWidth sizes the editable area, never below ten cells.
func (t *TextInput) SetWidth(w int) { t.model.SetWidth(max(w, 10)) }

func (t *TextInput) Reset() { t.model.Reset() }
