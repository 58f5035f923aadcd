package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/NaByeonggil/obesity1-sub001/internal/platform/apperr"
	"github.com/NaByeonggil/obesity1-sub001/internal/platform/auth"
)

// Service aggregates routed prescriptions into settlement reports. It only
// reads; the settlement figures are derived fresh on every request.
type Service struct {
	records RecordRepository
}

func NewService(records RecordRepository) *Service {
	return &Service{records: records}
}

func dispensed(status string) bool {
	return status == "DISPENSED" || status == "COMPLETED"
}

// Daily builds the settlement report for one calendar day. A repository
// failure fails the whole report; there are no partial aggregates.
func (s *Service) Daily(ctx context.Context, p auth.Principal, pharmacyID uuid.UUID, date time.Time) (*Daily, error) {
	if !auth.Allowed(p, auth.ActionSettlementRead, auth.Ownership{PharmacyID: pharmacyID}) {
		return nil, apperr.Unauthorized("settlements are visible to their pharmacy only")
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	records, err := s.records.ListByPharmacyBetween(ctx, pharmacyID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	report := &Daily{
		Date:       dayStart.Format("2006-01-02"),
		PharmacyID: pharmacyID,
		Items:      make([]Item, 0, len(records)),
	}
	patients := make(map[uuid.UUID]bool)
	for _, rec := range records {
		patient, insurer := Split(rec.TotalPrice)
		report.Items = append(report.Items, Item{Record: rec, PatientShare: patient, InsurerShare: insurer})
		report.PrescriptionCount++
		report.TotalAmount += rec.TotalPrice
		report.PatientPayment += patient
		report.InsurerPayment += insurer
		if dispensed(rec.Status) {
			report.DispensedCount++
		}
		patients[rec.PatientID] = true
	}
	report.UniquePatients = len(patients)
	return report, nil
}

// MonthlyStats summarizes the calendar month of the report date, counting
// only days up to and including it. The daily average divides by the
// day-of-month of the report date, so early-month averages reflect the days
// elapsed rather than the full month.
func (s *Service) MonthlyStats(ctx context.Context, p auth.Principal, pharmacyID uuid.UUID, date time.Time) (*Monthly, error) {
	if !auth.Allowed(p, auth.ActionSettlementRead, auth.Ownership{PharmacyID: pharmacyID}) {
		return nil, apperr.Unauthorized("settlements are visible to their pharmacy only")
	}

	monthStart := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	dayEnd := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()).AddDate(0, 0, 1)
	records, err := s.records.ListByPharmacyBetween(ctx, pharmacyID, monthStart, dayEnd)
	if err != nil {
		return nil, err
	}

	stats := &Monthly{Month: monthStart.Format("2006-01")}
	byDay := make(map[string]int)
	for _, rec := range records {
		stats.TotalRevenue += rec.TotalPrice
		stats.PrescriptionCount++
		byDay[rec.IssuedAt.Format("2006-01-02")] += rec.TotalPrice
	}
	stats.AverageDaily = stats.TotalRevenue / date.Day()
	for day, revenue := range byDay {
		if revenue > stats.PeakDayRevenue || (revenue == stats.PeakDayRevenue && (stats.PeakDay == "" || day < stats.PeakDay)) {
			stats.PeakDay = day
			stats.PeakDayRevenue = revenue
		}
	}
	return stats, nil
}
