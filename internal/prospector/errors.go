package prospector

import (
	"errors"
	"fmt"
)

// Sentinel errors for the search job lifecycle. Poll failures and the
// attempt ceiling surface as orchestrator state rather than errors, so
// only submission and cancellation have sentinels.
var (
	ErrSubmission  = errors.New("job submission failed")
	ErrNoActiveJob = errors.New("no active job")
)

// ValidationError describes a malformed search request. It never reaches
// the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid search request: %s %s", e.Field, e.Reason)
}
