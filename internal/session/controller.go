package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/lingobuddy/internal/api"
	"github.com/abhisek/lingobuddy/internal/tutor"
	"go.uber.org/zap"
)

var (
	ErrInvalidLanguage      = errors.New("language must have a code")
	ErrLanguageRequired     = errors.New("select a language first")
	ErrMissionNotApplicable = errors.New("missions can only be chosen in missions mode")
)

// User-facing error texts.
const (
	msgNotInitialized = "Chat is not initialized correctly."
	prefixInitFailed  = "Failed to initialize chat. "
	prefixTurnFailed  = "Sorry, something went wrong. "
)

// Snapshot is a value copy of the controller state.
type Snapshot struct {
	Phase      Phase
	Language   tutor.Language // zero when not chosen
	Mode       tutor.Mode     // empty when not chosen
	Mission    *tutor.Mission
	Messages   []tutor.Message
	Loading    bool
	Err        string
	Failure    Failure
	Generation uint64
}

// Controller owns one tutoring session: the selection, the message log and
// the in-flight call. Events mutate state synchronously and hand back a
// *Call for the caller to execute with Run, off the event loop. Results are
// fed back through Apply.
//
// A Controller is not safe for concurrent use. All methods except Run must
// be called from a single goroutine.
type Controller struct {
	sender   api.Sender
	parser   *tutor.Parser
	logger   *zap.Logger
	listener func(Snapshot)

	phase    Phase
	language tutor.Language
	mode     tutor.Mode
	mission  *tutor.Mission
	messages []tutor.Message
	loading  bool
	err      string
	failure  Failure

	generation uint64
	lastID     uint64
	// initKey is the selection key whose opening call was issued in this
	// generation. Empty when none was.
	initKey string
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithListener registers fn to receive a snapshot after every state change.
func WithListener(fn func(Snapshot)) Option {
	return func(c *Controller) { c.listener = fn }
}

// New creates a Controller that talks to the service through sender.
func New(sender api.Sender, opts ...Option) *Controller {
	c := &Controller{
		sender: sender,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = tutor.NewParser(c.logger)
	return c
}

// SelectLanguage sets the target language. It returns the opening call when
// the selection becomes complete.
func (c *Controller) SelectLanguage(lang tutor.Language) (*Call, error) {
	if lang.Code == "" {
		return nil, ErrInvalidLanguage
	}
	c.language = lang
	return c.selectionChanged(), nil
}

// SelectMode sets the conversation mode. Leaving Missions mode drops the
// chosen mission.
func (c *Controller) SelectMode(mode tutor.Mode) (*Call, error) {
	if c.language.IsZero() {
		return nil, ErrLanguageRequired
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("select mode: invalid mode %q", mode)
	}
	c.mode = mode
	if !mode.RequiresMission() {
		c.mission = nil
	}
	return c.selectionChanged(), nil
}

// SelectMission sets the roleplay scenario. Only valid in Missions mode.
func (c *Controller) SelectMission(m tutor.Mission) (*Call, error) {
	if !c.mode.RequiresMission() {
		return nil, ErrMissionNotApplicable
	}
	if m.ID == "" {
		return nil, fmt.Errorf("select mission: mission must have an id")
	}
	c.mission = &m
	return c.selectionChanged(), nil
}

// selectionChanged re-evaluates initialization after a selection mutation.
// The opening call fires once per distinct complete selection.
func (c *Controller) selectionChanged() *Call {
	cfg, ready := c.config()
	key := ""
	if ready {
		key = cfg.Key()
	}

	if ready && key == c.initKey {
		c.notify()
		return nil
	}

	// The selection moved away from the one that was opened. Anything in
	// flight or on screen belongs to the old selection.
	if c.initKey != "" {
		c.generation++
		c.messages = nil
		c.loading = false
		c.clearError()
		c.initKey = ""
	}

	if !ready {
		c.phase = c.selectionPhase()
		c.notify()
		return nil
	}

	c.initKey = key
	c.messages = nil
	c.loading = true
	c.clearError()
	c.phase = PhaseInitializing

	c.logger.Info("initializing session",
		zap.String("language", cfg.Language.Code),
		zap.String("mode", string(cfg.Mode)),
		zap.Uint64("generation", c.generation),
	)

	call := &Call{
		Kind:       CallInit,
		Generation: c.generation,
		Request:    api.Request{NewMessage: api.StartMessage, Config: cfg},
	}
	c.notify()
	return call
}

// Send submits a user turn. Blank text, sends while a call is in flight and
// sends after a failed opening call are ignored. Without an open session the
// error is set instead.
func (c *Controller) Send(text string) *Call {
	text = strings.TrimSpace(text)
	if text == "" || c.loading || c.failure == FailureInit {
		return nil
	}

	cfg, ready := c.config()
	if !ready || c.phase != PhaseActive {
		c.err = msgNotInitialized
		c.failure = FailureNotReady
		c.notify()
		return nil
	}

	history := c.Messages()
	id := c.nextID()
	c.messages = append(c.messages, tutor.Message{ID: id, Role: tutor.RoleUser, Text: text})
	c.loading = true
	c.clearError()
	c.phase = PhaseSendingTurn

	call := &Call{
		Kind:       CallTurn,
		Generation: c.generation,
		PendingID:  id,
		Request: api.Request{
			NewMessage: text,
			History:    history,
			Config:     cfg,
		},
	}
	c.notify()
	return call
}

// Reset discards the whole session. Results of calls already in flight
// will be ignored.
func (c *Controller) Reset() {
	c.generation++
	c.phase = PhaseUnselected
	c.language = tutor.Language{}
	c.mode = ""
	c.mission = nil
	c.messages = nil
	c.loading = false
	c.clearError()
	c.initKey = ""

	c.logger.Info("session reset", zap.Uint64("generation", c.generation))
	c.notify()
}

// DismissError clears the current error. After a failed opening call the
// session cannot continue, so this resets it.
func (c *Controller) DismissError() {
	switch c.failure {
	case FailureNone:
		return
	case FailureInit:
		c.Reset()
		return
	}
	c.clearError()
	c.notify()
}

func (c *Controller) clearError() {
	c.err = ""
	c.failure = FailureNone
}

// config returns the request config for the current selection and whether
// the selection is complete.
func (c *Controller) config() (tutor.RequestConfig, bool) {
	if c.language.IsZero() || c.mode == "" {
		return tutor.RequestConfig{}, false
	}
	cfg, err := tutor.NewRequestConfig(c.language, c.mode, c.mission)
	if err != nil {
		return tutor.RequestConfig{}, false
	}
	return cfg, true
}

func (c *Controller) selectionPhase() Phase {
	switch {
	case c.language.IsZero():
		return PhaseUnselected
	case c.mode == "":
		return PhaseLanguageChosen
	case c.mode.RequiresMission() && c.mission == nil:
		return PhaseModeChosen
	default:
		return PhaseMissionChosen
	}
}

func (c *Controller) nextID() uint64 {
	c.lastID++
	return c.lastID
}

func (c *Controller) notify() {
	if c.listener != nil {
		c.listener(c.Snapshot())
	}
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.phase }

// Language returns the chosen language, zero when none.
func (c *Controller) Language() tutor.Language { return c.language }

// Mode returns the chosen mode, empty when none.
func (c *Controller) Mode() tutor.Mode { return c.mode }

// Mission returns a copy of the chosen mission, nil when none.
func (c *Controller) Mission() *tutor.Mission {
	if c.mission == nil {
		return nil
	}
	m := *c.mission
	return &m
}

// Messages returns a copy of the message log.
func (c *Controller) Messages() []tutor.Message {
	return copyMessages(c.messages)
}

// Loading reports whether a call is in flight.
func (c *Controller) Loading() bool { return c.loading }

// Err returns the current error text, "" when none.
func (c *Controller) Err() string { return c.err }

// Failure returns which operation produced the current error.
func (c *Controller) Failure() Failure { return c.failure }

// Generation returns the current session generation.
func (c *Controller) Generation() uint64 { return c.generation }

// Snapshot returns a value copy of the state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Phase:      c.phase,
		Language:   c.language,
		Mode:       c.mode,
		Mission:    c.Mission(),
		Messages:   c.Messages(),
		Loading:    c.loading,
		Err:        c.err,
		Failure:    c.failure,
		Generation: c.generation,
	}
}

// View returns the view to render for the current state.
func (c *Controller) View() View {
	return DeriveView(c.Snapshot())
}

func copyMessages(msgs []tutor.Message) []tutor.Message {
	if msgs == nil {
		return nil
	}
	out := make([]tutor.Message, len(msgs))
	for i, m := range msgs {
		out[i] = m
		if m.Correction != nil {
			corr := *m.Correction
			out[i].Correction = &corr
		}
	}
	return out
}
