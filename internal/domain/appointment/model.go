package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/NaByeonggil/obesity1-sub001/internal/domain/directory"
)

// Status is the appointment lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PersonalInfo is the identity payload a patient submits when booking an
// online consultation. It is stored as a JSON blob on the appointment and
// never kept for in-person bookings.
type PersonalInfo struct {
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
	Phone     string `json:"phone"`
	Address   string `json:"address,omitempty"`
}

// Appointment maps to the appointments table.
type Appointment struct {
	ID           uuid.UUID          `db:"id" json:"id"`
	PatientID    uuid.UUID          `db:"patient_id" json:"patient_id"`
	DoctorID     uuid.UUID          `db:"doctor_id" json:"doctor_id"`
	DepartmentID uuid.UUID          `db:"department_id" json:"department_id"`
	Modality     directory.Modality `db:"modality" json:"modality"`
	Status       Status             `db:"status" json:"status"`
	ScheduledAt  time.Time          `db:"scheduled_at" json:"scheduled_at"`
	Symptoms     string             `db:"symptoms" json:"symptoms,omitempty"`
	PersonalInfo *PersonalInfo      `db:"personal_info" json:"personal_info,omitempty"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `db:"updated_at" json:"updated_at"`
}
