package directory

import (
	"sort"

	"github.com/google/uuid"

	"github.com/NaByeonggil/obesity1-sub001/internal/platform/geo"
)

// SortMode selects the ordering of a clinic listing.
type SortMode string

const (
	SortAuto     SortMode = "auto"
	SortPrice    SortMode = "price"
	SortDistance SortMode = "distance"
)

// Clinic is the listing view of a doctor after fee resolution and
// geolocation. ConsultationType is "online" or "offline".
type Clinic struct {
	DoctorID         uuid.UUID `json:"doctor_id"`
	DoctorName       string    `json:"doctor_name"`
	ClinicName       string    `json:"clinic_name"`
	Specialization   string    `json:"specialization"`
	Address          string    `json:"address"`
	District         string    `json:"district"`
	ConsultationFee  int       `json:"consultation_fee"`
	ConsultationType string    `json:"consultation_type"`
	Location         geo.Point `json:"location"`
	DistanceKm       float64   `json:"distance_km"`
}

// Rank orders a clinic listing and applies the optional district filter,
// matching on the district derived from each address rather than the raw
// address text.
// Mode "auto" picks the policy from the first clinic of the incoming list:
// an online first clinic sorts the whole listing by price, otherwise by
// distance. Sorting runs before filtering, so the auto policy is decided by
// whatever clinic the repository happened to return first.
func Rank(clinics []Clinic, mode SortMode, district string) []Clinic {
	if len(clinics) == 0 {
		return clinics
	}

	effective := mode
	if effective == SortAuto || effective == "" {
		if clinics[0].ConsultationType == "online" {
			effective = SortPrice
		} else {
			effective = SortDistance
		}
	}

	switch effective {
	case SortPrice:
		sort.SliceStable(clinics, func(i, j int) bool {
			return clinics[i].ConsultationFee < clinics[j].ConsultationFee
		})
	case SortDistance:
		sort.SliceStable(clinics, func(i, j int) bool {
			return clinics[i].DistanceKm < clinics[j].DistanceKm
		})
	}

	if district == "" {
		return clinics
	}
	filtered := make([]Clinic, 0, len(clinics))
	for _, c := range clinics {
		if c.District == district {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
