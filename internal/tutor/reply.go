package tutor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Reply is a tutor response normalized for the active mode.
type Reply struct {
	Text       string
	Correction *Correction
}

var (
	// ErrEmptyReply is the decode fault for blank structured replies.
	ErrEmptyReply = errors.New("empty reply")

	// ErrNotText is the decode fault for replies that are not valid UTF-8.
	ErrNotText = errors.New("reply is not valid UTF-8 text")
)

// DecodeError describes why a structured reply could not be decoded.
type DecodeError struct {
	Raw string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode tutor reply: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Parser decodes raw tutor text. The zero value is not usable; use NewParser.
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a Parser that reports absorbed decode faults to logger.
// A nil logger discards them.
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// Parse never fails. Crosstalk text is returned verbatim. For structured
// modes, text that cannot be decoded becomes the reply as-is, with no
// correction, and a warning is logged. A malformed correction alone does
// not discard the reply.
func (p *Parser) Parse(raw string, mode Mode) Reply {
	if !mode.Structured() {
		return Reply{Text: raw}
	}
	reply, problem, err := decodeStructured(raw)
	if err != nil {
		p.logger.Warn("tutor reply was not structured, using plain text",
			zap.String("mode", string(mode)),
			zap.Int("length", len(raw)),
			zap.Error(err),
		)
		return Reply{Text: raw}
	}
	if problem != nil {
		p.logger.Warn("tutor reply has a malformed correction",
			zap.String("mode", string(mode)),
			zap.Bool("kept", reply.Correction != nil),
			zap.Error(problem),
		)
	}
	return reply
}

var defaultParser = NewParser(nil)

// Parse decodes raw with a parser that does not log.
func Parse(raw string, mode Mode) Reply {
	return defaultParser.Parse(raw, mode)
}

// ParseStrict is Parse without the plain-text fallback. It returns a
// *DecodeError for replies a structured mode cannot decode.
func ParseStrict(raw string, mode Mode) (Reply, error) {
	if !mode.Structured() {
		return Reply{Text: raw}, nil
	}
	reply, _, err := decodeStructured(raw)
	if err != nil {
		return Reply{}, &DecodeError{Raw: raw, Err: err}
	}
	return reply, nil
}

// ValidateReply checks raw against ReplySchema, correction included.
func ValidateReply(raw string) error {
	_, problem, err := decodeStructured(raw)
	if err != nil {
		return err
	}
	return problem
}

// decodeStructured returns err only when there is no usable response
// string. problem reports a correction that does not match ReplySchema; the
// correction is kept when its fields are still strings or null.
func decodeStructured(raw string) (reply Reply, problem, err error) {
	if !utf8.ValidString(raw) {
		return Reply{}, nil, ErrNotText
	}
	body := stripCodeFence(raw)
	if strings.TrimSpace(body) == "" {
		return Reply{}, nil, ErrEmptyReply
	}

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return Reply{}, nil, fmt.Errorf("invalid JSON: %w", err)
	}

	schema, err := replySchema()
	if err != nil {
		return Reply{}, nil, err
	}
	invalid := schema.Validate(doc)

	obj, _ := doc.(map[string]any)
	text, ok := obj["response"].(string)
	if !ok {
		if invalid == nil {
			invalid = errors.New("missing string response field")
		}
		return Reply{}, nil, fmt.Errorf("schema validation failed: %w", invalid)
	}
	if invalid != nil {
		problem = fmt.Errorf("schema validation failed: %w", invalid)
	}

	reply = Reply{Text: text}
	c, cerr := decodeCorrection(obj["correction"])
	if cerr != nil {
		return reply, cerr, nil
	}
	reply.Correction = c
	return reply, problem, nil
}

// decodeCorrection reads the correction value of a decoded reply. Null or
// missing means no correction. Null fields are left empty.
func decodeCorrection(v any) (*Correction, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("correction is %s, want object", jsonKind(v))
	}

	var c Correction
	fields := []struct {
		key string
		dst *string
	}{
		{"original", &c.Original},
		{"corrected", &c.Corrected},
		{"explanation", &c.Explanation},
	}
	for _, f := range fields {
		switch s := m[f.key].(type) {
		case string:
			*f.dst = s
		case nil:
		default:
			return nil, fmt.Errorf("correction %s is %s, want string", f.key, jsonKind(s))
		}
	}
	return &c, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return "null"
}

// stripCodeFence removes a surrounding markdown code fence such as
// ```json ... ```. Text without a fence is returned unchanged.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") || !strings.HasSuffix(t, "```") || len(t) < 6 {
		return s
	}
	t = strings.TrimSuffix(strings.TrimPrefix(t, "```"), "```")
	// Drop the info string ("json") on the opening line.
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		if info := strings.TrimSpace(t[:i]); info == "" || !strings.ContainsAny(info, "{[") {
			t = t[i+1:]
		}
	}
	return t
}
