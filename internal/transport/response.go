package transport

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yndnr/sessionkit-go/internal/core/domain"
)

// CheckResponse maps a non-2xx response to a domain error carrying the status
// and the server's message.
func CheckResponse(resp *Response) error {
	if resp.OK() {
		return nil
	}

	var base *domain.DomainError
	switch s := resp.StatusCode; {
	case s == http.StatusUnauthorized:
		base = domain.ErrNotAuthenticated
	case s == http.StatusBadRequest, s == http.StatusConflict, s == http.StatusUnprocessableEntity:
		base = domain.ErrValidation
	case s == http.StatusNotFound:
		base = domain.ErrNotFound
	case s >= 400 && s < 500:
		base = domain.ErrRequestRejected
	default:
		base = domain.ErrServer
	}
	return base.WithStatus(resp.StatusCode).WithDetails(ServerMessage(resp.Body))
}

// ServerMessage extracts the human-readable message from an error body.
// It looks at "message", then "error", then "msg"; a short plain-text body is
// returned as is.
func ServerMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err == nil {
		for _, key := range []string{"message", "error", "msg"} {
			if s, ok := fields[key].(string); ok && s != "" {
				return s
			}
		}
		return ""
	}

	text := strings.TrimSpace(string(body))
	if len(text) > 200 || strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}
