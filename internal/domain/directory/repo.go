package directory

import (
	"context"

	"github.com/google/uuid"
)

// DoctorRepository reads doctor profiles. Missing rows surface as
// apperr.KindNotFound.
type DoctorRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	// ListWithFees returns all doctors with their active fee schedules
	// attached, in profile creation order.
	ListWithFees(ctx context.Context) ([]*Doctor, error)
}

// DepartmentRepository manages the departments table.
type DepartmentRepository interface {
	Create(ctx context.Context, d *Department) error
	GetByID(ctx context.Context, id uuid.UUID) (*Department, error)
	List(ctx context.Context) ([]*Department, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FeeScheduleRepository manages a doctor's configured price list.
type FeeScheduleRepository interface {
	Create(ctx context.Context, f *FeeSchedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*FeeSchedule, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]FeeSchedule, error)
	Update(ctx context.Context, f *FeeSchedule) error
	Delete(ctx context.Context, id uuid.UUID) error
}
