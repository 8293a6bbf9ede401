package client

import (
	"github.com/DeniskaUa/ai-web-kruchko/pkg/errors"
)

var (
	// ErrRequestInFlight is returned when an operation needs the session to
	// be out of the Loading state. The session is left untouched.
	ErrRequestInFlight = errors.New("client: request in flight")
	// ErrNoNewInput is returned by Submit after a success until the input
	// changes or the session is reset.
	ErrNoNewInput = errors.New("client: result already shown, change the input or reset")
)

// ErrorKind classifies a failure surfaced to the user.
type ErrorKind int

const (
	// KindValidation covers rejected input; no request was sent.
	KindValidation ErrorKind = iota
	// KindTransport covers network failures and unreadable responses.
	KindTransport
	// KindProvider covers error bodies and unusable results from the proxy.
	KindProvider
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindProvider:
		return "provider"
	}
	return "unknown"
}

// Error carries the message shown to the user and the underlying cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
