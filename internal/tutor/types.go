package tutor

import (
	"fmt"
	"strings"
)

// Language is a learnable target language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// IsZero reports whether no language is set.
func (l Language) IsZero() bool {
	return l.Code == ""
}

// Mission is a roleplay scenario used by Missions mode.
type Mission struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Mode is the conversation mode. The string values are the wire values.
type Mode string

const (
	ModeImmersion Mode = "IMMERSION" // target language only
	ModeCrosstalk Mode = "CROSSTALK" // English in, target language out
	ModeMissions  Mode = "MISSIONS"  // scenario roleplay
)

// Modes returns all modes in display order.
func Modes() []Mode {
	return []Mode{ModeImmersion, ModeCrosstalk, ModeMissions}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeImmersion, ModeCrosstalk, ModeMissions:
		return true
	}
	return false
}

// RequiresMission reports whether a session in this mode needs a mission.
func (m Mode) RequiresMission() bool {
	return m == ModeMissions
}

// Structured reports whether replies in this mode are JSON payloads.
// Crosstalk replies are always plain text.
func (m Mode) Structured() bool {
	return m == ModeImmersion || m == ModeMissions
}

// DisplayName returns the human-readable mode name.
func (m Mode) DisplayName() string {
	switch m {
	case ModeImmersion:
		return "Immersion"
	case ModeCrosstalk:
		return "Crosstalk"
	case ModeMissions:
		return "Missions"
	}
	return string(m)
}

// ParseMode accepts either the wire value or the display name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes() {
		if strings.EqualFold(s, string(m)) || strings.EqualFold(s, m.DisplayName()) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q: must be immersion, crosstalk or missions", s)
}

// Correction is a grammar annotation the tutor attaches to a user turn.
type Correction struct {
	Original    string `json:"original"`
	Corrected   string `json:"corrected"`
	Explanation string `json:"explanation"`
}


// Role identifies who authored a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one entry of the conversation log.
//
// ID is a per-session sequence number assigned when the message is appended.
// It is never sent over the wire; the controller uses it to find a pending
// user message again even when another message has identical text.
type Message struct {
	ID         uint64      `json:"-"`
	Role       Role        `json:"role"`
	Text       string      `json:"text"`
	Correction *Correction `json:"correction"`
}
