package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
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
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore persists appointments in Postgres.
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates an appointment store over a pgx pool or
// compatible handle.
func NewPostgresStore(db DB) *PostgresStore {
	if db == nil {
		panic("appointments: db required")
	}
	return &PostgresStore{db: db}
}

var _ Store = (*PostgresStore)(nil)

const appointmentColumns = `id, patient_id, practitioner_id, scheduled_at, channel, status, notes, intake, prescription_id, payment_settled, waiting_room_joined_at, waiting_room_left_at, created_at, updated_at`

// Get returns the appointment or ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments WHERE id = $1`, id)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &TransientError{Op: "get appointment", Err: err}
	}
	return a, nil
}

// List returns appointments matching the filter.
func (s *PostgresStore) List(ctx context.Context, f Filter) ([]Appointment, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.PractitionerID != "" {
		where = append(where, "practitioner_id = "+arg(f.PractitionerID))
	}
	if f.PatientID != "" {
		where = append(where, "patient_id = "+arg(f.PatientID))
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			statuses[i] = string(st)
		}
		where = append(where, "status = ANY("+arg(statuses)+")")
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	switch f.OrderBy {
	case OrderByJoinedAt:
		query += " ORDER BY waiting_room_joined_at ASC"
	default:
		query += " ORDER BY scheduled_at ASC"
	}
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, &TransientError{Op: "list appointments", Err: err}
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// CreateExclusive inserts the appointment inside a transaction holding a
// per-practitioner advisory lock, so two concurrent bookings for the same
// practitioner serialize and the conflict re-check is authoritative.
func (s *PostgresStore) CreateExclusive(ctx context.Context, a *Appointment, window time.Duration) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return &TransientError{Op: "begin booking tx", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, a.PractitionerID); err != nil {
		return &TransientError{Op: "acquire practitioner lock", Err: err}
	}

	var conflicts int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE practitioner_id = $1
		  AND status = ANY($2)
		  AND ABS(EXTRACT(EPOCH FROM (scheduled_at - $3::timestamptz))) < $4`,
		a.PractitionerID, []string{string(StatusScheduled), string(StatusInProgress)},
		a.ScheduledAt, window.Seconds(),
	).Scan(&conflicts)
	if err != nil {
		return &TransientError{Op: "check booking conflicts", Err: err}
	}
	if conflicts > 0 {
		return &UnavailableError{PractitionerID: a.PractitionerID, Reason: "conflicting booking within the separation window"}
	}

	intake, err := marshalIntake(a.Intake)
	if err != nil {
		return &TransientError{Op: "encode intake", Err: err}
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO appointments (id, patient_id, practitioner_id, scheduled_at, channel, status, notes, intake, prescription_id, payment_settled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.PatientID, a.PractitionerID, a.ScheduledAt, string(a.Channel), string(a.Status),
		a.Notes, intake, a.PrescriptionID, a.PaymentSettled, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return &TransientError{Op: "insert appointment", Err: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return &TransientError{Op: "commit booking tx", Err: err}
	}
	return nil
}

// UpdateStatus performs a status-guarded transition.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id uuid.UUID, allowed []Status, to Status, at time.Time) (*Appointment, error) {
	allowedStrs := make([]string, len(allowed))
	for i, st := range allowed {
		allowedStrs[i] = string(st)
	}
	row := s.db.QueryRow(ctx, `
		UPDATE appointments SET status = $1, updated_at = $2
		WHERE id = $3 AND status = ANY($4)
		RETURNING `+appointmentColumns,
		string(to), at, id, allowedStrs)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// The guard rejected the update: either the id is unknown or the
		// current status forbids the transition.
		current, getErr := s.Get(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, &InvalidStateError{Op: string(to), Status: current.Status}
	}
	if err != nil {
		return nil, &TransientError{Op: "update status", Err: err}
	}
	return a, nil
}

// JoinWaitingRoom records presence. A join while already waiting keeps
// the original timestamp; a join after leaving starts a fresh wait.
func (s *PostgresStore) JoinWaitingRoom(ctx context.Context, id uuid.UUID, at time.Time) (*Appointment, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE appointments SET
			waiting_room_joined_at = CASE
				WHEN waiting_room_joined_at IS NULL OR waiting_room_left_at IS NOT NULL THEN $1
				ELSE waiting_room_joined_at
			END,
			waiting_room_left_at = NULL,
			updated_at = $1
		WHERE id = $2
		RETURNING `+appointmentColumns, at, id)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &TransientError{Op: "join waiting room", Err: err}
	}
	return a, nil
}

// LeaveWaitingRoom stamps the departure. No status guard: leaving is
// always safe, even after the appointment moved on.
func (s *PostgresStore) LeaveWaitingRoom(ctx context.Context, id uuid.UUID, at time.Time) (*Appointment, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE appointments SET waiting_room_left_at = $1, updated_at = $1
		WHERE id = $2
		RETURNING `+appointmentColumns, at, id)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &TransientError{Op: "leave waiting room", Err: err}
	}
	return a, nil
}

func marshalIntake(in *Intake) ([]byte, error) {
	if in == nil {
		return nil, nil
	}
	return json.Marshal(in)
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a       Appointment
		channel string
		status  string
		intake  []byte
	)
	err := row.Scan(
		&a.ID, &a.PatientID, &a.PractitionerID, &a.ScheduledAt, &channel, &status,
		&a.Notes, &intake, &a.PrescriptionID, &a.PaymentSettled,
		&a.WaitingRoomJoinedAt, &a.WaitingRoomLeftAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Channel = Channel(channel)
	a.Status = Status(status)
	if len(intake) > 0 {
		var in Intake
		if err := json.Unmarshal(intake, &in); err != nil {
			return nil, fmt.Errorf("decode intake: %w", err)
		}
		a.Intake = &in
	}
	return &a, nil
}

func scanAppointments(rows pgx.Rows) ([]Appointment, error) {
	var out []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, &TransientError{Op: "scan appointment", Err: err}
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, &TransientError{Op: "iterate appointments", Err: err}
	}
	return out, nil
}
