package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/telecare-platform/pkg/logging"
)

const (
	// DefaultPollInterval is how often a waiting client re-checks the gate.
	DefaultPollInterval = 500 * time.Millisecond
	// DefaultPollTimeout bounds the whole wait; after it the client must
	// fail visibly instead of spinning forever.
	DefaultPollTimeout = 10 * time.Second
)

// ErrHandoffTimeout indicates the practitioner did not start the session
// within the polling ceiling.
var ErrHandoffTimeout = errors.New("session: hand-off not granted before timeout")

// Awaiter implements the waiting client's side of the hand-off: poll the
// gate at a fixed interval until it opens, the appointment reaches a
// terminal state, or the ceiling is hit.
type Awaiter struct {
	gate     *Gate
	interval time.Duration
	timeout  time.Duration
	logger   *logging.Logger
}

// NewAwaiter builds an awaiter with the given cadence; zero values fall
// back to the defaults.
func NewAwaiter(gate *Gate, interval, timeout time.Duration, logger *logging.Logger) *Awaiter {
	if gate == nil {
		panic("session: gate required")
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Awaiter{gate: gate, interval: interval, timeout: timeout, logger: logger}
}

// Await blocks until the gate opens for the appointment, returning nil
// once a session may be established. Returns ErrHandoffTimeout when the
// ceiling elapses and the context's error when it is cancelled first.
func (w *Awaiter) Await(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		allowed, err := w.gate.CanEstablishSession(ctx, id)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				w.logger.Info("hand-off wait timed out", "appointment_id", id, "timeout", w.timeout)
				return ErrHandoffTimeout
			}
			return ctx.Err()
		}
	}
}
