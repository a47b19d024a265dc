package session

import "fmt"

// Phase is the lifecycle stage of a tutoring session.
type Phase int

const (
	PhaseUnselected     Phase = iota // Nothing chosen yet
	PhaseLanguageChosen              // Language set, mode pending
	PhaseModeChosen                  // Missions mode set, mission pending
	PhaseMissionChosen               // Selection complete, init not yet issued
	PhaseInitializing                // Opening call in flight
	PhaseActive                      // Conversation open, ready for turns
	PhaseSendingTurn                 // Turn call in flight
	PhaseError                       // Opening call failed
)

func (p Phase) String() string {
	switch p {
	case PhaseUnselected:
		return "unselected"
	case PhaseLanguageChosen:
		return "language-chosen"
	case PhaseModeChosen:
		return "mode-chosen"
	case PhaseMissionChosen:
		return "mission-chosen"
	case PhaseInitializing:
		return "initializing"
	case PhaseActive:
		return "active"
	case PhaseSendingTurn:
		return "sending-turn"
	case PhaseError:
		return "error"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Failure records which operation produced the current error.
type Failure int

const (
	FailureNone     Failure = iota
	FailureInit             // opening call failed; the session is unusable
	FailureTurn             // a turn failed; the conversation is intact
	FailureNotReady         // a send was attempted with no open session
)

// View is what the presentation layer should show.
type View int

const (
	ViewLanguagePicker View = iota
	ViewModePicker
	ViewMissionPicker
	ViewConversation
	ViewRecovery
)

func (v View) String() string {
	switch v {
	case ViewLanguagePicker:
		return "language-picker"
	case ViewModePicker:
		return "mode-picker"
	case ViewMissionPicker:
		return "mission-picker"
	case ViewConversation:
		return "conversation"
	case ViewRecovery:
		return "recovery"
	}
	return fmt.Sprintf("View(%d)", int(v))
}

// DeriveView maps a snapshot to the view to render. An error always wins
// over the conversation.
func DeriveView(s Snapshot) View {
	switch {
	case s.Err != "":
		return ViewRecovery
	case s.Language.IsZero():
		return ViewLanguagePicker
	case s.Mode == "":
		return ViewModePicker
	case s.Mode.RequiresMission() && s.Mission == nil:
		return ViewMissionPicker
	default:
		return ViewConversation
	}
}
