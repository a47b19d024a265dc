package api

import (
	"context"

	"github.com/abhisek/lingobuddy/internal/tutor"
)

// DefaultEndpoint is the hosted LingoBuddy tutoring service.
const DefaultEndpoint = "https://5133u1gex0.execute-api.ap-southeast-2.amazonaws.com/lingoBuddy"

// StartMessage is the newMessage value that opens a conversation.
const StartMessage = "Start conversation"

// Sender performs one round trip against the tutoring service.
type Sender interface {
	// Send posts req and returns the raw payload. Failures are *ServiceError.
	Send(ctx context.Context, req Request) (*Payload, error)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, req Request) (*Payload, error)

func (f SenderFunc) Send(ctx context.Context, req Request) (*Payload, error) {
	return f(ctx, req)
}

// Request is one call to the tutoring service. History must be the log as
// it stood before NewMessage was added.
type Request struct {
	NewMessage string
	History    []tutor.Message
	Config     tutor.RequestConfig
}

// IsStart reports whether req opens a conversation.
func (r Request) IsStart() bool {
	return r.NewMessage == StartMessage && len(r.History) == 0
}

// WireRequest is the JSON body of a call.
type WireRequest struct {
	NewMessage string          `json:"newMessage"`
	History    []tutor.Message `json:"history"`
	Language   tutor.Language  `json:"language"`
	Mode       tutor.Mode      `json:"mode"`
	Mission    *tutor.Mission  `json:"mission"`
}

// Wire converts r to its JSON body form.
func (r Request) Wire() WireRequest {
	history := r.History
	if history == nil {
		history = []tutor.Message{}
	}
	return WireRequest{
		NewMessage: r.NewMessage,
		History:    history,
		Language:   r.Config.Language,
		Mode:       r.Config.Mode,
		Mission:    r.Config.Mission,
	}
}

// Request validates w and converts it back to a Request.
func (w WireRequest) Request() (Request, error) {
	cfg, err := tutor.NewRequestConfig(w.Language, w.Mode, w.Mission)
	if err != nil {
		return Request{}, err
	}
	return Request{NewMessage: w.NewMessage, History: w.History, Config: cfg}, nil
}

// Payload is a successful response body.
type Payload struct {
	Text string `json:"text"`
}

// ErrorBody is the response body of a failed call.
type ErrorBody struct {
	Error string `json:"error"`
}
