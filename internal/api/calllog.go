package api

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/abhisek/lingobuddy/internal/calllog"
	"go.uber.org/zap"
)

// Recorder stores call records. *calllog.Store implements it.
type Recorder interface {
	Record(ctx context.Context, c calllog.Call) error
}

type callLogSender struct {
	inner    Sender
	recorder Recorder
	logger   *zap.Logger
}

// WithCallLog wraps a Sender so every call is written to recorder. Results
// pass through unchanged; recording failures are logged and dropped.
func WithCallLog(s Sender, recorder Recorder, logger *zap.Logger) Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &callLogSender{inner: s, recorder: recorder, logger: logger}
}

func (c *callLogSender) Send(ctx context.Context, req Request) (*Payload, error) {
	start := time.Now()
	payload, err := c.inner.Send(ctx, req)

	rec := calllog.Call{
		Kind:      calllog.KindTurn,
		Mode:      string(req.Config.Mode),
		Language:  req.Config.Language.Code,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if req.IsStart() {
		rec.Kind = calllog.KindInit
	}
	if body, mErr := json.Marshal(req.Wire()); mErr == nil {
		rec.RequestBody = string(body)
	}
	if payload != nil {
		rec.Status = 200
		if body, mErr := json.Marshal(payload); mErr == nil {
			rec.ResponseBody = string(body)
		}
	}
	if err != nil {
		rec.ErrorMessage = err.Error()
		var se *ServiceError
		if errors.As(err, &se) {
			rec.Status = se.Status
		}
	}

	// Record even if the caller's context was cancelled.
	if rErr := c.recorder.Record(context.WithoutCancel(ctx), rec); rErr != nil {
		c.logger.Warn("failed to record tutor call", zap.Error(rErr))
	}

	return payload, err
}
