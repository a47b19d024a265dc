package session

import (
	"context"

	"github.com/abhisek/lingobuddy/internal/api"
	"github.com/abhisek/lingobuddy/internal/tutor"
	"go.uber.org/zap"
)

// CallKind distinguishes the opening call from conversation turns.
type CallKind int

const (
	CallInit CallKind = iota
	CallTurn
)

func (k CallKind) String() string {
	if k == CallInit {
		return "init"
	}
	return "turn"
}

// Call is a service call issued by an event. It carries everything needed
// to perform it, so Run does not read controller state.
type Call struct {
	Kind       CallKind
	Generation uint64
	Request    api.Request
	// PendingID is the sequence id of the optimistic user message, for turns.
	PendingID uint64
}

// Result is the outcome of a Call.
type Result struct {
	Call  *Call
	Reply tutor.Reply
	Err   error
}

// Run performs call and parses the reply for the call's mode. It does not
// touch controller state and may run on any goroutine.
func (c *Controller) Run(ctx context.Context, call *Call) Result {
	payload, err := c.sender.Send(ctx, call.Request)
	if err != nil {
		return Result{Call: call, Err: err}
	}
	return Result{Call: call, Reply: c.parser.Parse(payload.Text, call.Request.Config.Mode)}
}

// Apply folds a result into the session. Results from an earlier generation,
// or that no longer match the phase, are dropped and Apply returns false.
func (c *Controller) Apply(res Result) bool {
	call := res.Call
	if call == nil {
		return false
	}
	if call.Generation != c.generation || !c.expects(call) {
		c.logger.Debug("discarding stale result",
			zap.Stringer("kind", call.Kind),
			zap.Uint64("call_generation", call.Generation),
			zap.Uint64("generation", c.generation),
		)
		return false
	}

	switch call.Kind {
	case CallInit:
		c.applyInit(res)
	case CallTurn:
		c.applyTurn(res)
	}
	c.notify()
	return true
}

// Do runs call and applies its result on the calling goroutine. A nil call
// is a no-op.
func (c *Controller) Do(ctx context.Context, call *Call) bool {
	if call == nil {
		return false
	}
	return c.Apply(c.Run(ctx, call))
}

func (c *Controller) expects(call *Call) bool {
	switch call.Kind {
	case CallInit:
		return c.phase == PhaseInitializing
	case CallTurn:
		return c.phase == PhaseSendingTurn
	}
	return false
}

func (c *Controller) applyInit(res Result) {
	c.loading = false
	if res.Err != nil {
		c.messages = nil
		c.err = prefixInitFailed + res.Err.Error()
		c.failure = FailureInit
		c.phase = PhaseError
		c.logger.Warn("session initialization failed",
			zap.String("mode", string(res.Call.Request.Config.Mode)),
			zap.Error(res.Err),
		)
		return
	}

	// A correction on the greeting has no user turn to attach to.
	c.messages = []tutor.Message{{
		ID:   c.nextID(),
		Role: tutor.RoleModel,
		Text: res.Reply.Text,
	}}
	c.phase = PhaseActive
}

func (c *Controller) applyTurn(res Result) {
	c.loading = false
	c.phase = PhaseActive
	pending := c.indexOf(res.Call.PendingID)

	if res.Err != nil {
		if pending >= 0 {
			c.messages = append(c.messages[:pending], c.messages[pending+1:]...)
		}
		c.err = prefixTurnFailed + res.Err.Error()
		c.failure = FailureTurn
		c.logger.Warn("turn failed",
			zap.String("mode", string(res.Call.Request.Config.Mode)),
			zap.Error(res.Err),
		)
		return
	}

	if res.Reply.Correction != nil && pending >= 0 {
		corr := *res.Reply.Correction
		c.messages[pending].Correction = &corr
	}
	c.messages = append(c.messages, tutor.Message{
		ID:   c.nextID(),
		Role: tutor.RoleModel,
		Text: res.Reply.Text,
	})
}

func (c *Controller) indexOf(id uint64) int {
	for i := range c.messages {
		if c.messages[i].ID == id {
			return i
		}
	}
	return -1
}
