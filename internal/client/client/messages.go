package client

import (
	"errors"
	"time"
)

const (
	ErrorToastTitle    = "Request failed"
	ErrorToastDuration = 6 * time.Second

	FallbackToastTitle    = "Local mode"
	FallbackToastMessage  = "The cloud server is unavailable. Connected to the local server."
	FallbackToastDuration = 5 * time.Second

	MsgNetworkError = "Unable to reach the server. Check your connection and try again."
	MsgServerError  = "The server failed to process the request."
	MsgRequestError = "The request could not be processed."
	MsgUnknownError = "An unexpected error occurred."
)

var statusMessages = map[int]string{
	400: "The request is invalid.",
	401: "Your session has expired. Please log in again.",
	403: "You do not have permission to perform this action.",
	404: "The requested resource was not found.",
	409: "The request conflicts with existing data.",
	413: "The uploaded file is too large.",
	422: "The submitted data did not pass validation.",
	429: "Too many requests. Please wait and try again.",
	500: "Internal server error.",
	502: "Bad gateway.",
	503: "The service is temporarily unavailable.",
	504: "The server did not respond in time.",
}

// StatusMessage is the user-facing text for an HTTP status with no server
// supplied reason.
func StatusMessage(status int) string {
	if m, ok := statusMessages[status]; ok {
		return m
	}
	switch {
	case status >= 500:
		return MsgServerError
	case status >= 400:
		return MsgRequestError
	}
	return MsgUnknownError
}

// MessageFor picks the text shown to the user for err.
func MessageFor(err error) string {
	var (
		httpErr    *HTTPError
		refreshErr *RefreshError
		netErr     *NetworkError
	)
	switch {
	case errors.As(err, &refreshErr):
		return StatusMessage(401)
	case errors.As(err, &httpErr):
		if m := httpErr.ServerMessage(); m != "" {
			return m
		}
		return StatusMessage(httpErr.StatusCode)
	case errors.As(err, &netErr):
		return MsgNetworkError
	case err == nil:
		return ""
	}
	return err.Error()
}
