package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed call so callers can pick the right user-facing text.
type Kind int

const (
	// KindTransport covers unreachable servers, transport errors, cancelled
	// contexts and bodies that cannot be read or parsed.
	KindTransport Kind = iota + 1
	// KindServer means the server answered but reported a failure.
	KindServer
	// KindMalformed means the body parsed but lacked the expected field.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is returned by every Client method that fails after building a request.
type Error struct {
	Op     string
	Kind   Kind
	Status int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindServer:
		if e.Status > 0 && e.Detail != "" {
			return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.Status, e.Detail)
		}
		if e.Detail != "" {
			return fmt.Sprintf("%s: server reported failure: %s", e.Op, e.Detail)
		}
		return fmt.Sprintf("%s: server returned %d", e.Op, e.Status)
	case KindMalformed:
		return fmt.Sprintf("%s: malformed response: %s", e.Op, e.Detail)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Op, e.Err)
		}
		return e.Op + ": transport failure"
	}
}

func (e *Error) Unwrap() error { return e.Err }

func kindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsTransport reports whether err is a transport-level failure.
func IsTransport(err error) bool { return kindOf(err) == KindTransport }

// IsServer reports whether err is a failure reported by the server.
func IsServer(err error) bool { return kindOf(err) == KindServer }

// IsMalformed reports whether err is a response missing its expected field.
func IsMalformed(err error) bool { return kindOf(err) == KindMalformed }

// DetailOf returns the server-provided detail carried by err, if any.
func DetailOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// extractDetail pulls a readable message out of the common JSON error
// envelopes: {"detail":...}, {"message":...} and {"error":...}. It returns ""
// when the body carries none of them.
func extractDetail(body []byte) string {
	var env struct {
		Detail    any    `json:"detail"`
		Message   string `json:"message"`
		Error     string `json:"error"`
		RequestID string `json:"request_id"`
	}
	if json.Unmarshal(body, &env) != nil {
		return ""
	}
	detail := ""
	switch v := env.Detail.(type) {
	case string:
		detail = v
	case map[string]any:
		detail = firstString(v, "message", "detail", "msg")
	case []any:
		// FastAPI validation errors arrive as a list of {"msg": ...} objects.
		if len(v) > 0 {
			if m, ok := v[0].(map[string]any); ok {
				detail = firstString(m, "message", "detail", "msg")
			}
		}
	}
	if detail == "" {
		detail = env.Message
	}
	if detail == "" {
		detail = env.Error
	}
	detail = strings.TrimSpace(detail)
	if detail != "" && env.RequestID != "" {
		detail += " (request_id=" + env.RequestID + ")"
	}
	return detail
}

// failureSummary describes a non-2xx response for the log: the extracted
// detail, else a short non-HTML body, else the status text.
func failureSummary(status int, body []byte) string {
	if d := extractDetail(body); d != "" {
		return d
	}
	s := strings.TrimSpace(string(body))
	if s != "" && !strings.HasPrefix(s, "<") && len(s) <= 200 {
		return s
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", status)
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
