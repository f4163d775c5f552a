package appointments

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderBy selects the sort column for filtered queries.
type OrderBy string

const (
	OrderByScheduledAt OrderBy = "scheduled_at"
	OrderByJoinedAt    OrderBy = "waiting_room_joined_at"
)

// Filter narrows a List query. Zero-value fields are ignored.
type Filter struct {
	PractitionerID string
	PatientID      string
	Statuses       []Status
	OrderBy        OrderBy
	Limit          int
}

// Store is the access contract to the appointment record store. The
// coordinator does not own the store; it owns only this contract.
//
// Mutations are single-document field updates. Status and UpdatedAt are
// always written together.
type Store interface {
	// Get returns the appointment or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// List returns appointments matching the filter.
	List(ctx context.Context, f Filter) ([]Appointment, error)

	// CreateExclusive inserts a new scheduled appointment after
	// re-checking, under a per-practitioner lock, that no active
	// appointment falls within the conflict window of the requested
	// time. Returns *UnavailableError on conflict.
	CreateExclusive(ctx context.Context, a *Appointment, window time.Duration) error

	// UpdateStatus transitions the appointment to the target status iff
	// the current status is in allowed, updating UpdatedAt atomically.
	// Returns ErrNotFound for unknown ids and *InvalidStateError when
	// the current status does not permit the transition.
	UpdateStatus(ctx context.Context, id uuid.UUID, allowed []Status, to Status, at time.Time) (*Appointment, error)

	// JoinWaitingRoom marks the patient present. A join while already
	// waiting keeps the original timestamp; a join after a leave starts
	// a fresh waiting period.
	JoinWaitingRoom(ctx context.Context, id uuid.UUID, at time.Time) (*Appointment, error)

	// LeaveWaitingRoom records the departure timestamp. It succeeds
	// regardless of the current status.
	LeaveWaitingRoom(ctx context.Context, id uuid.UUID, at time.Time) (*Appointment, error)
}
