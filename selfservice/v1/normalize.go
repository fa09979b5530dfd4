package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
)

type envelope struct {
	Success *bool           `json:"success"`
	Message json.RawMessage `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

// message is the envelope message when it is a plain string. Any other shape
// is metadata the client does not read.
func (e envelope) message() string {
	var s string
	if err := json.Unmarshal(e.Message, &s); err != nil {
		return ""
	}
	return s
}

// Normalize maps an HTTP status and raw body to exactly one Outcome.
func Normalize(status int, body []byte) Outcome {
	var env envelope
	parseErr := json.Unmarshal(body, &env)

	switch {
	case status >= 200 && status < 300:
		if status == http.StatusNoContent && len(bytes.TrimSpace(body)) == 0 {
			return Success(status, nil)
		}
		if parseErr != nil {
			return Fail(KindUnknown, fmt.Sprintf("invalid response body: %v", parseErr)).withStatus(status)
		}
		if env.Success == nil {
			return Fail(KindUnknown, "unexpected response shape: missing success flag").withStatus(status)
		}
		if !*env.Success {
			return Fail(KindUnknown, messageOr(env.message(), "Request failed")).withStatus(status)
		}
		return Success(status, json.RawMessage(body))

	case status == http.StatusUnprocessableEntity:
		if msg, ok := firstFieldError(env.Errors); ok {
			return Fail(KindValidation, msg).withStatus(status)
		}
		return Fail(KindUnknown, messageOr(env.message(), serverError(status))).withStatus(status)

	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return Fail(KindUnauthenticated, messageOr(env.message(), serverError(status))).withStatus(status)

	case status >= 400 && status < 500:
		return Fail(KindUnknown, messageOr(env.message(), serverError(status))).withStatus(status)

	case status >= 500 && status < 600:
		return Fail(KindServerError, messageOr(env.message(), serverError(status))).withStatus(status)
	}

	return Fail(KindUnknown, fmt.Sprintf("Unexpected status: %d", status)).withStatus(status)
}

// NormalizeError maps a transport error to Timeout or Network.
func NormalizeError(err error) Outcome {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Fail(KindTimeout, "Request timed out")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Fail(KindTimeout, "Request timed out")
	}
	return Fail(KindNetwork, fmt.Sprintf("Network error: %v", err))
}

func serverError(status int) string {
	return fmt.Sprintf("Server Error: %d", status)
}

func messageOr(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}

// firstFieldError returns the first message of the first field in a Laravel
// style errors object. Fields are read in server order, not map order.
func firstFieldError(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return "", false
	}
	for dec.More() {
		// field name
		if _, err := dec.Token(); err != nil {
			return "", false
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return "", false
		}
		switch v := value.(type) {
		case []any:
			if len(v) > 0 {
				if s, ok := v[0].(string); ok && s != "" {
					return s, true
				}
			}
		case string:
			if v != "" {
				return v, true
			}
		}
	}
	return "", false
}
