package breaker

import "errors"

// ErrCircuitOpen is returned when the circuit breaker is open and rejecting calls.
var ErrCircuitOpen = errors.New("breaker: circuit is open")
