package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingobuddy/internal/ui/theme"
)

// MenuItem is one choice in a Menu. Action runs when the item is chosen.
type MenuItem struct {
	Label       string
	Description string
	Action      func() tea.Cmd
	Disabled    bool
}

// Menu is a vertical list of choices. Moving past either end wraps around
// and disabled items are skipped.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.Selected = m.next(-1, 1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// next returns the first enabled index after from in direction dir, or -1.
func (m Menu) next(from, dir int) int {
	n := len(m.Items)
	for step := 1; step <= n; step++ {
		i := ((from+dir*step)%n + n) % n
		if !m.Items[i].Disabled {
			return i
		}
	}
	return -1
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}

	move := func(from, dir int) {
		if i := m.next(from, dir); i >= 0 {
			m.Selected = i
		}
	}

	switch key.String() {
	case "up", "k":
		move(m.Selected, -1)
	case "down", "j":
		move(m.Selected, 1)
	case "home", "g":
		move(-1, 1)
	case "end", "G":
		move(len(m.Items), -1)
	case "enter":
		return m, m.choose()
	}
	return m, nil
}

func (m Menu) choose() tea.Cmd {
	if m.Selected < 0 || m.Selected >= len(m.Items) {
		return nil
	}
	item := m.Items[m.Selected]
	if item.Disabled || item.Action == nil {
		return nil
	}
	return item.Action()
}

func (m Menu) View() string {
	desc := lipgloss.NewStyle().Foreground(theme.TextDim).PaddingLeft(6)

	lines := make([]string, 0, 2*len(m.Items))
	for i, item := range m.Items {
		switch {
		case i == m.Selected:
			lines = append(lines, theme.Selected.Render("  ▸ "+item.Label))
		case item.Disabled:
			lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextDim).Render("    "+item.Label))
		default:
			lines = append(lines, theme.Unselected.Render("    "+item.Label))
		}
		if item.Description != "" {
			lines = append(lines, desc.Render(item.Description))
		}
	}
	return strings.Join(lines, "\n")
}
