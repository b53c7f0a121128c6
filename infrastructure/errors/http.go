package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// minErrorStatus is the lowest status code treated as a failure.
const minErrorStatus = 400

// HTTPError describes a failed HTTP exchange with a remote page or API.
type HTTPError struct {
	StatusCode int
	Body       string
	Message    string
}

func (e *HTTPError) Error() string {
	status := http.StatusText(e.StatusCode)
	if e.Message != "" {
		return fmt.Sprintf("HTTP error (%d %s): %s", e.StatusCode, status, e.Message)
	}
	return fmt.Sprintf("HTTP error: %d %s", e.StatusCode, status)
}

// FromResponse builds an HTTPError from a status code and raw body. It returns
// nil for non-error statuses. A JSON body with an "error" or "message" field
// supplies the message; otherwise the trimmed body does.
func FromResponse(statusCode int, body []byte) error {
	if statusCode < minErrorStatus {
		return nil
	}

	bodyStr := strings.TrimSpace(string(body))

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := bodyStr
	if json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Error != "":
			msg = payload.Error
		case payload.Message != "":
			msg = payload.Message
		}
	}

	return &HTTPError{StatusCode: statusCode, Body: bodyStr, Message: msg}
}
