package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	lmserrors "github.com/jrsteele09/go-lms-client/internal/errors"
)

var (
	// ErrSessionExpired is returned when a 401 could not be recovered by a
	// token refresh. The session has been cleared by the time it is returned.
	ErrSessionExpired = lmserrors.ErrSessionExpired

	ErrNoRefreshToken           = errors.New("no refresh token")
	ErrMalformedRefreshResponse = errors.New("malformed refresh response")
	ErrDecodeResponse           = errors.New("failed to decode response")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if detail := e.Detail(); detail != "" {
		msg += ": " + detail
	}
	return msg
}

// Detail extracts the server's message from {"error": ...} or {"detail": ...}
// bodies, falling back to the raw body when it is short plain text.
func (e *APIError) Detail() string {
	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(e.Body, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Detail != "" {
			return body.Detail
		}
		return ""
	}
	text := strings.TrimSpace(string(e.Body))
	if len(text) > 200 {
		return ""
	}
	return text
}

func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}
