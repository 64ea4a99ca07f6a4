package vressdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is an error reported by the backend or synthesized from an HTTP
// status. Message carries the backend's own wording when one was provided.
type APIError struct {
	StatusCode int
	Message    string
}

// Error returns the user-facing message for the error, resolved in priority
// order: a friendlier rewording of a recognized backend business message,
// then the raw backend message, then an HTTP-status-derived generic, then a
// fully generic fallback.
func (e *APIError) Error() string {
	if friendly, ok := friendlyMessage(e.Message); ok {
		return friendly
	}
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("request failed: HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return "request failed"
}

// IsAuthError reports whether err is a backend authentication failure
// (expired or rejected credentials). Callers clear the session and route to
// login when this is true.
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Backend business messages worth rewording for end users. First match
// wins; matching is substring-based because the backend embeds dates and
// ids in some messages.
var friendlyRewordings = []struct {
	contains string
	friendly string
}{
	{
		contains: "validity end date cannot be before the validity start date",
		friendly: "Voucher creation failed: The validity end date cannot be before the start date.",
	},
	{
		contains: "registration period ends on",
		friendly: "Voucher creation failed: The beneficiary registration period has not ended yet.",
	},
	{
		contains: "already redeemed",
		friendly: "This voucher has already been redeemed.",
	},
}

func friendlyMessage(msg string) (string, bool) {
	for _, r := range friendlyRewordings {
		if strings.Contains(msg, r.contains) {
			return r.friendly, true
		}
	}
	return "", false
}

// parseErrorResponse turns a non-2xx response body into an *APIError. The
// backend usually answers {"message": ...}; some handlers return a bare
// string body.
func parseErrorResponse(statusCode int, body []byte) error {
	var msgResp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &msgResp); err == nil && msgResp.Message != "" {
		return &APIError{StatusCode: statusCode, Message: msgResp.Message}
	}

	if trimmed := strings.TrimSpace(string(body)); trimmed != "" && !strings.HasPrefix(trimmed, "{") {
		return &APIError{StatusCode: statusCode, Message: trimmed}
	}

	return &APIError{StatusCode: statusCode}
}
