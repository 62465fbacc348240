package upstream

import (
	"errors"
	"fmt"
)

// Causes wrapped by FetchError.
var (
	ErrRequest     = errors.New("request failed")
	ErrStatus      = errors.New("unexpected status")
	ErrDecode      = errors.New("decode failed")
	ErrCircuitOpen = errors.New("circuit open")
)

// FetchError reports which endpoint failed and why.
type FetchError struct {
	Endpoint string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// outcome is the metrics label of a fetch result.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, ErrStatus):
		return "status_error"
	case errors.Is(err, ErrDecode):
		return "decode_error"
	default:
		return "request_error"
	}
}
