package v1

import (
	"encoding/json"
	"fmt"
)

// Kind classifies a failed request.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindValidation
	KindServerError
	KindNetwork
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindValidation:
		return "validation"
	case KindServerError:
		return "server_error"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Outcome is the normalized result of one logical API call. It is either a
// success carrying the raw response body, or a failure with a kind and message.
type Outcome struct {
	Status  int
	Payload json.RawMessage
	Kind    Kind
	Message string
	ok      bool
}

func Success(status int, payload json.RawMessage) Outcome {
	return Outcome{Status: status, Payload: payload, ok: true}
}

func Fail(kind Kind, message string) Outcome {
	return Outcome{Kind: kind, Message: message}
}

func (o Outcome) OK() bool {
	return o.ok
}

func (o Outcome) withStatus(status int) Outcome {
	o.Status = status
	return o
}

// Err returns nil for a success, otherwise a *Failure.
func (o Outcome) Err() error {
	if o.ok {
		return nil
	}
	return &Failure{Kind: o.Kind, Message: o.Message, Status: o.Status}
}

func (o Outcome) String() string {
	if o.ok {
		return fmt.Sprintf("success(%d)", o.Status)
	}
	return fmt.Sprintf("failure(%s): %s", o.Kind, o.Message)
}

// Failure is the error form of a failed Outcome.
type Failure struct {
	Kind    Kind
	Message string
	Status  int
}

func (f *Failure) Error() string {
	if f.Message == "" {
		return f.Kind.String()
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Is matches any *Failure of the same kind, so errors.Is(err, ErrUnauthenticated) works.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return t.Kind == f.Kind && t.Message == ""
}

var (
	ErrUnauthenticated = &Failure{Kind: KindUnauthenticated}
	ErrValidation      = &Failure{Kind: KindValidation}
	ErrServer          = &Failure{Kind: KindServerError}
	ErrNetwork         = &Failure{Kind: KindNetwork}
	ErrTimeout         = &Failure{Kind: KindTimeout}
	ErrUnknown         = &Failure{Kind: KindUnknown}
)

// Decode parses a successful payload into T. A payload that does not fit T
// turns the outcome into an Unknown failure.
func Decode[T any](o Outcome) (T, Outcome) {
	var v T
	if !o.OK() {
		return v, o
	}
	if err := json.Unmarshal(o.Payload, &v); err != nil {
		return v, Fail(KindUnknown, fmt.Sprintf("unexpected response shape: %v", err)).withStatus(o.Status)
	}
	return v, o
}

// UserMessage renders a failure for display.
func UserMessage(o Outcome) string {
	if o.OK() {
		return ""
	}
	switch o.Kind {
	case KindUnauthenticated:
		return "Session expired, please log in again"
	case KindServerError:
		return "Server error, please try again later"
	case KindNetwork:
		return "No connection, check your network"
	case KindTimeout:
		return "Request timed out, please try again"
	default:
		if o.Message == "" {
			return "Something went wrong"
		}
		return o.Message
	}
}
