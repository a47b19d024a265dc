package calllog

import "time"

// Kind distinguishes conversation openers from regular turns.
type Kind string

const (
	KindInit Kind = "init"
	KindTurn Kind = "turn"
)

// Call is one recorded round trip to the tutoring service.
type Call struct {
	ID           int64
	CallID       string
	Timestamp    time.Time
	Kind         Kind
	Mode         string
	Language     string
	Status       int // HTTP status, 0 when no response arrived
	Success      bool
	LatencyMs    int64
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// ModeStats summarizes the calls made in one mode.
type ModeStats struct {
	Mode         string
	Calls        int
	Succeeded    int
	AvgLatencyMs int64
}

// SuccessRate returns the fraction of successful calls in [0, 1].
func (s ModeStats) SuccessRate() float64 {
	if s.Calls == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Calls)
}
