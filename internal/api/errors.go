package api

import (
	"encoding/json"
	"fmt"
)

// ErrorKind classifies a ServiceError. Callers display Message and do not
// need to branch on it.
type ErrorKind int

const (
	// KindTransport means no usable response was obtained.
	KindTransport ErrorKind = iota
	// KindApplication means the service answered with a failure status.
	KindApplication
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindApplication:
		return "application"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

const unknownAPIError = "An unknown API error occurred."

// ServiceError is the single user-facing failure of a tutoring call.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Status  int // HTTP status for KindApplication, 0 otherwise
	Err     error
}

func (e *ServiceError) Error() string { return e.Message }

func (e *ServiceError) Unwrap() error { return e.Err }

func newTransportError(err error) *ServiceError {
	return &ServiceError{
		Kind: KindTransport,
		Message: fmt.Sprintf(
			"Could not connect to the LingoBuddy service. Please check your network connection and API configuration. (%v)",
			err),
		Err: err,
	}
}

// newApplicationError builds the error for a non-success status from the
// response body.
func newApplicationError(status int, body []byte) *ServiceError {
	var eb ErrorBody
	msg := unknownAPIError
	if err := json.Unmarshal(body, &eb); err == nil {
		msg = eb.Error
		if msg == "" {
			msg = fmt.Sprintf("API request failed with status: %d", status)
		}
	}
	return &ServiceError{
		Kind:    KindApplication,
		Message: msg,
		Status:  status,
	}
}
