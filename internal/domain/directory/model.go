package directory

import (
	"time"

	"github.com/google/uuid"
)

// Modality is whether a consultation is remote or in-person.
type Modality string

const (
	ModalityOnline  Modality = "ONLINE"
	ModalityOffline Modality = "OFFLINE"
)

// Valid reports whether m is a known modality.
func (m Modality) Valid() bool {
	return m == ModalityOnline || m == ModalityOffline
}

// Department maps to the departments table.
type Department struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Capability string    `db:"capability" json:"capability"` // ONLINE, OFFLINE or BOTH
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

var validCapabilities = map[string]bool{
	"ONLINE": true, "OFFLINE": true, "BOTH": true,
}

// Doctor maps to the doctors table. The clinic name and address are free
// text; fee schedules are loaded alongside for listing and resolution.
type Doctor struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	Name           string        `db:"name" json:"name"`
	Specialization string        `db:"specialization" json:"specialization"`
	ClinicName     string        `db:"clinic_name" json:"clinic_name"`
	Address        string        `db:"address" json:"address"`
	FeeSchedules   []FeeSchedule `db:"-" json:"fee_schedules,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// FeeSchedule is one row of a doctor's configured price list. DepartmentName
// is denormalized from the departments table because fee resolution matches
// on name substrings, not ids. A doctor should keep at most one active entry
// per (department, modality) pair; the store does not enforce it, so
// resolution always takes the first active match in insertion order.
type FeeSchedule struct {
	ID             uuid.UUID `db:"id" json:"id"`
	DoctorID       uuid.UUID `db:"doctor_id" json:"doctor_id"`
	DepartmentID   uuid.UUID `db:"department_id" json:"department_id"`
	DepartmentName string    `db:"department_name" json:"department_name"`
	Modality       Modality  `db:"modality" json:"modality"`
	BasePrice      int       `db:"base_price" json:"base_price"`
	EmergencyPrice *int      `db:"emergency_price" json:"emergency_price,omitempty"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
