package prescription

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Status is the prescription lifecycle state. A prescription is ISSUED by
// the doctor, SENT once the patient routes it to a pharmacy, DISPENSED when
// the pharmacy prepares it, and COMPLETED on handover.
type Status string

const (
	StatusIssued    Status = "ISSUED"
	StatusSent      Status = "SENT"
	StatusDispensed Status = "DISPENSED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	StatusIssued:    {StatusSent, StatusCancelled},
	StatusSent:      {StatusDispensed, StatusCancelled},
	StatusDispensed: {StatusCompleted},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusIssued, StatusSent, StatusDispensed, StatusCompleted, StatusCancelled:
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

// ValidityWindow is how long a prescription stays fillable after issuance.
const ValidityWindow = 7 * 24 * time.Hour

// Line is a single medication entry on a prescription.
type Line struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	PrescriptionID      uuid.UUID `db:"prescription_id" json:"prescription_id"`
	MedicationCode      string    `db:"medication_code" json:"medication_code"`
	MedicationName      string    `db:"medication_name" json:"medication_name"`
	Dosage              string    `db:"dosage" json:"dosage"`
	Frequency           string    `db:"frequency" json:"frequency"`
	DurationDays        int       `db:"duration_days" json:"duration_days"`
	Quantity            int       `db:"quantity" json:"quantity"`
	SubstitutionAllowed bool      `db:"substitution_allowed" json:"substitution_allowed"`
	Price               int       `db:"price" json:"price"`
}

// Prescription maps to the prescriptions table. PharmacyID is nil until the
// prescription is routed.
type Prescription struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Number        string     `db:"number" json:"number"`
	AppointmentID uuid.UUID  `db:"appointment_id" json:"appointment_id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	PharmacyID    *uuid.UUID `db:"pharmacy_id" json:"pharmacy_id,omitempty"`
	Status        Status     `db:"status" json:"status"`
	Diagnosis     string     `db:"diagnosis" json:"diagnosis"`
	Lines         []Line     `db:"-" json:"lines"`
	TotalPrice    int        `db:"total_price" json:"total_price"`
	IssuedAt      time.Time  `db:"issued_at" json:"issued_at"`
	ValidUntil    time.Time  `db:"valid_until" json:"valid_until"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// NewNumber builds a human-readable prescription number from the issuance
// time plus a random suffix to keep same-second issuances apart.
func NewNumber(now time.Time, rng *rand.Rand) string {
	return fmt.Sprintf("RX%s-%04d", now.Format("20060102150405"), rng.Intn(10000))
}
