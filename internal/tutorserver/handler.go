// Package tutorserver is a local stand-in for the hosted LingoBuddy
// service. It answers POST /lingoBuddy with a reply generated by an
// llm.Provider.
package tutorserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/lingobuddy/internal/api"
	"github.com/abhisek/lingobuddy/internal/llm"
	"github.com/abhisek/lingobuddy/internal/tutor"
)

const (
	defaultTimeout   = 45 * time.Second
	defaultMaxTokens = 1024
	maxRequestBytes  = 1 << 20
)

var errEmptyMessage = errors.New("newMessage is required")

// Handler turns tutoring requests into model generations. It serves HTTP
// and also satisfies api.Sender for in-process use, so its failures are
// *api.ServiceError values of KindApplication carrying the HTTP status.
type Handler struct {
	provider  llm.Provider
	logger    *zap.Logger
	timeout   time.Duration
	maxTokens int
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler's logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithTimeout bounds one generation.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithMaxTokens caps the reply length.
func WithMaxTokens(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxTokens = n
		}
	}
}

// NewHandler creates a Handler backed by provider.
func NewHandler(provider llm.Provider, opts ...Option) *Handler {
	h := &Handler{
		provider:  provider,
		logger:    zap.NewNop(),
		timeout:   defaultTimeout,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP handles POST /lingoBuddy.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var wire api.WireRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&wire); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req, err := wire.Request()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := h.Send(r.Context(), req)
	if err != nil {
		status := http.StatusBadGateway
		var se *api.ServiceError
		if errors.As(err, &se) && se.Status != 0 {
			status = se.Status
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// Send generates the tutor's reply to req.
func (h *Handler) Send(ctx context.Context, req api.Request) (*api.Payload, error) {
	if strings.TrimSpace(req.NewMessage) == "" {
		return nil, serviceError(http.StatusBadRequest, errEmptyMessage)
	}

	purpose := llm.PurposeTurn
	if req.IsStart() {
		purpose = llm.PurposeGreeting
	}
	ctx, cancel := context.WithTimeout(llm.WithPurpose(ctx, purpose), h.timeout)
	defer cancel()

	resp, err := h.provider.Generate(ctx, h.buildRequest(req))
	if err != nil {
		h.logger.Warn("tutor reply failed",
			zap.String("mode", string(req.Config.Mode)),
			zap.String("language", req.Config.Language.Code),
			zap.Error(err),
		)
		return nil, serviceError(http.StatusBadGateway, fmt.Errorf("tutor model request failed: %w", err))
	}
	return &api.Payload{Text: resp.Text}, nil
}

func serviceError(status int, err error) *api.ServiceError {
	return &api.ServiceError{
		Kind:    api.KindApplication,
		Message: err.Error(),
		Status:  status,
		Err:     err,
	}
}

func (h *Handler) buildRequest(req api.Request) llm.Request {
	out := llm.Request{
		System:    SystemPrompt(req.Config),
		Messages:  buildMessages(req),
		MaxTokens: h.maxTokens,
	}
	if req.Config.Mode.Structured() {
		out.JSON = true
		out.Schema = &llm.Schema{Name: "tutor_reply", Definition: tutor.ReplySchema}
		out.Validate = tutor.ValidateReply
	}
	return out
}

// buildMessages maps the history to model messages and appends the new
// message. Providers expect the first turn to come from the user, so a
// history opening with the tutor's greeting is preceded by the start
// message that produced it.
func buildMessages(req api.Request) []llm.Message {
	msgs := make([]llm.Message, 0, len(req.History)+2)
	if len(req.History) > 0 && req.History[0].Role == tutor.RoleModel {
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: api.StartMessage})
	}
	for _, m := range req.History {
		role := llm.RoleUser
		if m.Role == tutor.RoleModel {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: m.Text})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: req.NewMessage})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.ErrorBody{Error: message})
}
