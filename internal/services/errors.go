package services

import (
	"errors"
	"fmt"
)

// ErrDeviceUnavailable is returned when a stream is requested for a device
// with no stored record or no known address. No upstream connection is
// attempted in that case.
var ErrDeviceUnavailable = errors.New("device offline or IP unknown")

// ValidationError reports a bad or missing required input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// UpstreamUnreachableError wraps a failure to connect to a device's stream
// endpoint, or to read its response headers within the connect timeout.
type UpstreamUnreachableError struct {
	Cause error
}

func (e *UpstreamUnreachableError) Error() string {
	return fmt.Sprintf("stream unavailable: %v", e.Cause)
}

func (e *UpstreamUnreachableError) Unwrap() error {
	return e.Cause
}
