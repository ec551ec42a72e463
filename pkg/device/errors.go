package device

import (
	"context"
	"errors"
	"net"
)

var (
	// ErrTimeout indicates a device request did not complete within its timeout
	ErrTimeout = errors.New("device request timed out")

	// ErrUnreachable indicates the device could not be reached at all
	ErrUnreachable = errors.New("device unreachable")

	// ErrMalformedResponse indicates a response body that is not the expected JSON shape
	ErrMalformedResponse = errors.New("malformed device response")

	// ErrNormalization indicates a telemetry payload matched none of the known shapes
	ErrNormalization = errors.New("reading normalization failed")

	// ErrNotConnected indicates no device address is configured
	ErrNotConnected = errors.New("device not connected")

	// ErrHTTPStatus indicates the device answered with a non-2xx status
	ErrHTTPStatus = errors.New("unexpected device status")

	// ErrValidation indicates a command payload failed schema validation
	ErrValidation = errors.New("validation error")

	// ErrNoNewReading indicates a streaming source has nothing newer than what it last returned
	ErrNoNewReading = errors.New("no new reading")
)

// classify maps transport errors onto the device error taxonomy.
// Cancellation by the caller is passed through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrUnreachable
}
