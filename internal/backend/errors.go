package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is returned when a 2xx body does not have the
// expected shape.
var ErrMalformedResponse = errors.New("backend: malformed response")

// APIError is a non-2xx reply from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// StatusCode extracts the HTTP status from err, or 0 when err is not an
// *APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Message returns the text to show a user for err: the backend's own
// message for failed replies, otherwise the error string.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// newAPIError builds the user-facing message for a failed response. JSON
// bodies carrying a "detail" field use it; otherwise the raw text is used.
func newAPIError(status int, body []byte) *APIError {
	text := strings.TrimSpace(string(body))
	msg := detailMessage(body)
	if msg == "" {
		msg = text
	}
	if msg == "" {
		msg = fmt.Sprintf("server error (%d)", status)
	}
	return &APIError{Status: status, Message: msg}
}

func detailMessage(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}

	// Validation failures arrive as a list of {loc, msg} objects.
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil && len(items) > 0 {
		return items[0].Msg
	}
	return string(payload.Detail)
}
