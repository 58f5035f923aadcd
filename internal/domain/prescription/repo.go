package prescription

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists prescriptions and their lines. Missing rows surface as
// apperr.KindNotFound; a second prescription for the same appointment
// surfaces as apperr.KindConflict from the unique index on appointment_id.
type Repository interface {
	// CreateWithLines inserts the prescription and its lines atomically.
	CreateWithLines(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Prescription, error)
	// Route assigns the pharmacy and moves ISSUED -> SENT in one statement.
	Route(ctx context.Context, id, pharmacyID uuid.UUID) error
	// UpdateStatus moves the row from one status to another, failing with
	// apperr.KindConflict when the row already left the expected status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
	ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
}
