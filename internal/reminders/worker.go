package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/telecare-platform/internal/events"
	"github.com/wolfman30/telecare-platform/pkg/logging"
)

// ReminderNotifier delivers the reminder to the patient, best-effort.
type ReminderNotifier interface {
	AppointmentReminder(ctx context.Context, evt events.AppointmentReminderV1)
}

// Worker processes due reminders.
type Worker struct {
	store    *Store
	notifier ReminderNotifier
	logger   *logging.Logger
}

// NewWorker creates a reminder worker.
func NewWorker(store *Store, notifier ReminderNotifier, logger *logging.Logger) *Worker {
	if store == nil {
		panic("reminders: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{store: store, notifier: notifier, logger: logger}
}

// ProcessDue sends every due reminder and marks it sent. Returns the
// number processed.
func (w *Worker) ProcessDue(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	due, err := w.store.ListDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("reminders worker: list due: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	w.logger.Info("reminders worker: processing due reminders", "count", len(due))

	processed := 0
	for i := range due {
		r := &due[i]
		if err := w.store.MarkSent(ctx, r.ID); err != nil {
			// Another worker instance beat us to it.
			w.logger.Warn("reminders worker: skipping reminder", "id", r.ID, "error", err)
			continue
		}
		if w.notifier != nil {
			w.notifier.AppointmentReminder(ctx, events.AppointmentReminderV1{
				EventID:       uuid.NewString(),
				AppointmentID: r.AppointmentID.String(),
				PatientID:     r.PatientID,
				ScheduledAt:   r.ScheduledAt,
				Channel:       r.Channel,
				RemindAt:      r.RemindAt,
			})
		}
		processed++
	}
	return processed, nil
}

// Run polls for due reminders at the given interval until the context
// ends.
func (w *Worker) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.ProcessDue(ctx); err != nil {
				w.logger.Error("reminders worker: process due failed", "error", err)
			}
		}
	}
}
