// Package router holds the active screen. Navigation is driven by the
// session controller, so the router only ever swaps one screen for
// another.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lingobuddy/internal/screen"
)

// Router owns the active screen.
type Router struct {
	active screen.Screen
}

// New creates a Router showing initial.
func New(initial screen.Screen) *Router {
	return &Router{active: initial}
}

// Replace makes s the active screen and returns its Init command.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	r.active = s
	if s == nil {
		return nil
	}
	return s.Init()
}

// Active returns the active screen, nil when none.
func (r *Router) Active() screen.Screen {
	return r.active
}

// Update forwards msg to the active screen. A screen may return a
// different screen from Update to hand over control.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	if r.active == nil {
		return nil
	}
	updated, cmd := r.active.Update(msg)
	r.active = updated
	return cmd
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	if r.active == nil {
		return ""
	}
	return r.active.View(width, height)
}
