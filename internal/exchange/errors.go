package exchange

import (
	"errors"
	"fmt"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a call
// without attempting the network round trip.
var ErrCircuitOpen = errors.New("exchange circuit breaker open")

// TransientError marks a failure worth retrying: network outages,
// timeouts, rate limits and server-side errors.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a transient transport failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te) || errors.Is(err, ErrCircuitOpen)
}

// APIError is a definitive rejection from the exchange (bad symbol,
// malformed request). Retrying won't help, but per-symbol degradation
// still applies.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("exchange http %d: %s", e.Status, e.Body)
}
