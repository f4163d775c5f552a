package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/telecare-platform/internal/events"
)

type recordingReminderNotifier struct {
	events []events.AppointmentReminderV1
}

func (n *recordingReminderNotifier) AppointmentReminder(ctx context.Context, evt events.AppointmentReminderV1) {
	n.events = append(n.events, evt)
}

func dueRows(reminders ...Reminder) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{
		"id", "appointment_id", "patient_id", "scheduled_at", "channel", "remind_at",
		"status", "sent_at", "dismissed_at", "created_at", "updated_at",
	})
	for _, r := range reminders {
		rows.AddRow(r.ID, r.AppointmentID, r.PatientID, r.ScheduledAt, r.Channel, r.RemindAt,
			string(StatusPending), (*time.Time)(nil), (*time.Time)(nil), r.CreatedAt, r.UpdatedAt)
	}
	return rows
}

func TestProcessDueSendsAndMarks(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	notifier := &recordingReminderNotifier{}
	worker := NewWorker(NewStore(mock), notifier, nil)

	now := time.Now().UTC()
	r := Reminder{
		ID:            uuid.New(),
		AppointmentID: uuid.New(),
		PatientID:     "pat-1",
		ScheduledAt:   now.Add(time.Hour),
		Channel:       "video",
		RemindAt:      now.Add(-time.Minute),
	}

	mock.ExpectQuery("SELECT (.+) FROM appointment_reminders").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(dueRows(r))
	mock.ExpectExec("UPDATE appointment_reminders SET status = 'sent'").
		WithArgs(pgxmock.AnyArg(), r.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	processed, err := worker.ProcessDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, "pat-1", notifier.events[0].PatientID)
	assert.Equal(t, r.AppointmentID.String(), notifier.events[0].AppointmentID)
}

func TestProcessDueSkipsAlreadyClaimed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	notifier := &recordingReminderNotifier{}
	worker := NewWorker(NewStore(mock), notifier, nil)

	now := time.Now().UTC()
	r := Reminder{ID: uuid.New(), AppointmentID: uuid.New(), PatientID: "pat-1", ScheduledAt: now, Channel: "video", RemindAt: now}

	mock.ExpectQuery("SELECT (.+) FROM appointment_reminders").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(dueRows(r))
	// A competing worker already marked it sent.
	mock.ExpectExec("UPDATE appointment_reminders SET status = 'sent'").
		WithArgs(pgxmock.AnyArg(), r.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	processed, err := worker.ProcessDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
	assert.Empty(t, notifier.events, "no duplicate notification")
}

func TestProcessDueNothingDue(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	worker := NewWorker(NewStore(mock), nil, nil)

	mock.ExpectQuery("SELECT (.+) FROM appointment_reminders").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(dueRows())

	processed, err := worker.ProcessDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
}
