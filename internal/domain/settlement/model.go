package settlement

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// PatientShareRate is the fraction of a prescription total the patient pays;
// the insurer covers the remainder.
const PatientShareRate = 0.30

// Split divides a prescription total into the patient and insurer shares.
// Each share is rounded on its own, so the two shares of one prescription
// may drift from its total by a unit of currency. Aggregates sum the
// per-prescription shares rather than re-deriving them from the sum.
func Split(total int) (patient, insurer int) {
	patient = int(math.Round(float64(total) * PatientShareRate))
	insurer = int(math.Round(float64(total) * (1 - PatientShareRate)))
	return patient, insurer
}

// Record is the settlement view of one routed prescription.
type Record struct {
	PrescriptionID uuid.UUID `db:"prescription_id" json:"prescription_id"`
	Number         string    `db:"number" json:"number"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	Status         string    `db:"status" json:"status"`
	TotalPrice     int       `db:"total_price" json:"total_price"`
	IssuedAt       time.Time `db:"issued_at" json:"issued_at"`
}

// Item is one prescription with its computed shares.
type Item struct {
	Record
	PatientShare int `json:"patient_share"`
	InsurerShare int `json:"insurer_share"`
}

// Daily is the settlement report a pharmacy sees for one day. The monthly
// statistics for the month containing the report date ride along so the
// settlement screen needs a single query.
type Daily struct {
	Date              string    `json:"date"`
	PharmacyID        uuid.UUID `json:"pharmacy_id"`
	PrescriptionCount int       `json:"prescription_count"`
	DispensedCount    int       `json:"dispensed_count"`
	UniquePatients    int       `json:"unique_patients"`
	TotalAmount       int       `json:"total_amount"`
	PatientPayment    int       `json:"patient_payment"`
	InsurerPayment    int       `json:"insurer_payment"`
	Items             []Item    `json:"items"`
	MonthlyStats      *Monthly  `json:"monthly_stats,omitempty"`
}

// Monthly summarizes the month containing the report date, up to that date.
type Monthly struct {
	Month             string `json:"month"`
	TotalRevenue      int    `json:"total_revenue"`
	PrescriptionCount int    `json:"prescription_count"`
	AverageDaily      int    `json:"average_daily"`
	PeakDay           string `json:"peak_day,omitempty"`
	PeakDayRevenue    int    `json:"peak_day_revenue"`
}
