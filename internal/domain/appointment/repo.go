package appointment

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists appointments. Missing rows surface as
// apperr.KindNotFound.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// UpdateStatus moves the row from one status to another, rewriting the
	// symptoms in the same transaction when non-nil. It returns
	// apperr.KindConflict when the row is no longer in the expected status,
	// which happens when two updates race; a conflict leaves the symptoms
	// untouched.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, symptoms *string) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
}
