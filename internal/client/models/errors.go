package models

import (
	"errors"
	"fmt"
)

// ErrInvalidPayload is wrapped by every Validate failure.
var ErrInvalidPayload = errors.New("invalid payload")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPayload, fmt.Sprintf(format, args...))
}
