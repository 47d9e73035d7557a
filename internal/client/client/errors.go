package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnavailable    = errors.New("server unavailable")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not found")
	ErrSessionExpired = errors.New("session expired")
	ErrNoRefreshToken = errors.New("no refresh token")
)

// NetworkError is a transport failure with no HTTP response.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrUnavailable }

// HTTPError is a non-2xx answer. Detail and Message come from the
// {detail, message} error envelope when the server sent one.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
	Message    string
}

func (e *HTTPError) Error() string {
	s := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if reason := e.ServerMessage(); reason != "" {
		s += ": " + reason
	}
	return s
}

// ServerMessage prefers detail over message.
func (e *HTTPError) ServerMessage() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}

func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// RefreshError means the session could not be renewed and has been cleared.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string { return "session expired: " + e.Err.Error() }

func (e *RefreshError) Unwrap() error { return e.Err }

func (e *RefreshError) Is(target error) bool { return target == ErrSessionExpired }

// DecodeError is a 2xx body that could not be parsed or failed validation.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode %s: %v", e.Path, e.Err) }

func (e *DecodeError) Unwrap() error { return e.Err }

func newHTTPError(method, path string, status int, body []byte) *HTTPError {
	e := &HTTPError{Method: method, Path: path, StatusCode: status}
	var env struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(body, &env) == nil {
		e.Detail = flattenDetail(env.Detail)
		e.Message = env.Message
	}
	return e
}

// flattenDetail accepts a plain string or a list of {msg} objects, the
// shape used for request validation failures.
func flattenDetail(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(raw, &items) == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
