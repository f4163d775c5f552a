package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides CRUD operations for appointment_reminders.
type Store struct {
	db DB
}

// NewStore creates a reminder store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Create inserts a new pending reminder.
func (s *Store) Create(ctx context.Context, r *Reminder) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.Status == "" {
		r.Status = StatusPending
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO appointment_reminders (id, appointment_id, patient_id, scheduled_at, channel, remind_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.AppointmentID, r.PatientID, r.ScheduledAt, r.Channel, r.RemindAt,
		string(r.Status), r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("reminders: create: %w", err)
	}
	return nil
}

// ListDue returns pending reminders whose remind_at is on or before asOf.
func (s *Store) ListDue(ctx context.Context, asOf time.Time) ([]Reminder, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, appointment_id, patient_id, scheduled_at, channel, remind_at, status, sent_at, dismissed_at, created_at, updated_at
		FROM appointment_reminders
		WHERE status = 'pending' AND remind_at <= $1
		ORDER BY remind_at ASC`, asOf)
	if err != nil {
		return nil, fmt.Errorf("reminders: list due: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

// MarkSent transitions a reminder from pending to sent.
func (s *Store) MarkSent(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	tag, err := s.db.Exec(ctx, `
		UPDATE appointment_reminders SET status = 'sent', sent_at = $1, updated_at = $1
		WHERE id = $2 AND status = 'pending'`, now, id)
	if err != nil {
		return fmt.Errorf("reminders: mark sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reminders: mark sent: no pending reminder with id %s", id)
	}
	return nil
}

// DismissForAppointment drops any still-pending reminder for a booking
// that was cancelled or already handled.
func (s *Store) DismissForAppointment(ctx context.Context, appointmentID uuid.UUID) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(ctx, `
		UPDATE appointment_reminders SET status = 'dismissed', dismissed_at = $1, updated_at = $1
		WHERE appointment_id = $2 AND status = 'pending'`, now, appointmentID)
	if err != nil {
		return fmt.Errorf("reminders: dismiss for appointment: %w", err)
	}
	return nil
}

func scanReminders(rows pgx.Rows) ([]Reminder, error) {
	var out []Reminder
	for rows.Next() {
		var (
			r      Reminder
			status string
		)
		if err := rows.Scan(&r.ID, &r.AppointmentID, &r.PatientID, &r.ScheduledAt, &r.Channel,
			&r.RemindAt, &status, &r.SentAt, &r.DismissedAt, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("reminders: scan: %w", err)
		}
		r.Status = Status(status)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reminders: iterate: %w", err)
	}
	return out, nil
}
