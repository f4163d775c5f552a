package appointments

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the referenced appointment does not exist.
var ErrNotFound = errors.New("appointments: appointment not found")

// ValidationError reports malformed or missing booking input. It is a
// deterministic business-rule failure and is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("appointments: invalid %s: %s", e.Field, e.Reason)
}

// InvalidStateError reports a transition not permitted from the current
// status.
type InvalidStateError struct {
	Op     string
	Status Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("appointments: cannot %s appointment in status %q", e.Op, e.Status)
}

// UnavailableError reports a booking conflict detected at creation time.
type UnavailableError struct {
	PractitionerID string
	Reason         string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("appointments: practitioner %s is not available: %s", e.PractitionerID, e.Reason)
}

// TransientError wraps store or infrastructure failures. Callers should
// surface a generic retry prompt; retry policy belongs to the client.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("appointments: %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermissionError reports an actor attempting an operation reserved for
// the other participant.
type PermissionError struct {
	Op     string
	UserID string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("appointments: user %s is not permitted to %s this appointment", e.UserID, e.Op)
}
