package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/NaByeonggil/obesity1-sub001/internal/platform/apperr"
	"github.com/NaByeonggil/obesity1-sub001/internal/platform/auth"
)

type mockRecordRepo struct {
	records []Record
	err     error
}

func (m *mockRecordRepo) ListByPharmacyBetween(_ context.Context, _ uuid.UUID, from, to time.Time) ([]Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []Record
	for _, r := range m.records {
		if !r.IssuedAt.Before(from) && r.IssuedAt.Before(to) {
			result = append(result, r)
		}
	}
	return result, nil
}

func rec(price int, status string, issued time.Time, patient uuid.UUID) Record {
	return Record{
		PrescriptionID: uuid.New(),
		PatientID:      patient,
		Status:         status,
		TotalPrice:     price,
		IssuedAt:       issued,
	}
}

func TestSplit_RoundsEachShare(t *testing.T) {
	patient, insurer := Split(85000)
	if patient != 25500 || insurer != 59500 {
		t.Errorf("Split(85000) = %d, %d; want 25500, 59500", patient, insurer)
	}
}

func TestSplit_SharesMayDriftFromTotal(t *testing.T) {
	// 45445 * 0.3 = 13633.5 rounds to 13634; 45445 * 0.7 = 31811.5 rounds
	// to 31812. The shares exceed the total by one won, which is accepted.
	patient, insurer := Split(45445)
	if patient+insurer != 45446 {
		t.Errorf("shares sum to %d, want the drifted 45446", patient+insurer)
	}
}

func TestDaily_AggregatesPerPrescriptionShares(t *testing.T) {
	pharmacy := auth.Principal{ID: uuid.New(), Role: auth.RolePharmacy}
	day := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	p1, p2 := uuid.New(), uuid.New()
	repo := &mockRecordRepo{records: []Record{
		rec(85000, "COMPLETED", day, p1),
		rec(45000, "DISPENSED", day.Add(time.Hour), p2),
		rec(32000, "SENT", day.Add(2*time.Hour), p1),
	}}
	svc := NewService(repo)

	report, err := svc.Daily(context.Background(), pharmacy, pharmacy.ID, day)
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	if report.PrescriptionCount != 3 {
		t.Errorf("count = %d, want 3", report.PrescriptionCount)
	}
	if report.TotalAmount != 162000 {
		t.Errorf("total = %d, want 162000", report.TotalAmount)
	}
	// 25500 + 13500 + 9600
	if report.PatientPayment != 48600 {
		t.Errorf("patient payment = %d, want 48600", report.PatientPayment)
	}
	// 59500 + 31500 + 22400
	if report.InsurerPayment != 113400 {
		t.Errorf("insurer payment = %d, want 113400", report.InsurerPayment)
	}
	if report.DispensedCount != 2 {
		t.Errorf("dispensed = %d, want 2 (DISPENSED and COMPLETED)", report.DispensedCount)
	}
	if report.UniquePatients != 2 {
		t.Errorf("unique patients = %d, want 2", report.UniquePatients)
	}
}

func TestDaily_ExcludesOtherDays(t *testing.T) {
	pharmacy := auth.Principal{ID: uuid.New(), Role: auth.RolePharmacy}
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	repo := &mockRecordRepo{records: []Record{
		rec(10000, "SENT", day.Add(-time.Minute), uuid.New()),
		rec(20000, "SENT", day.Add(12*time.Hour), uuid.New()),
		rec(30000, "SENT", day.AddDate(0, 0, 1), uuid.New()),
	}}
	svc := NewService(repo)

	report, err := svc.Daily(context.Background(), pharmacy, pharmacy.ID, day)
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	if report.PrescriptionCount != 1 || report.TotalAmount != 20000 {
		t.Errorf("count = %d total = %d, want 1 and 20000", report.PrescriptionCount, report.TotalAmount)
	}
}

func TestDaily_OtherPharmacyForbidden(t *testing.T) {
	pharmacy := auth.Principal{ID: uuid.New(), Role: auth.RolePharmacy}
	svc := NewService(&mockRecordRepo{})
	_, err := svc.Daily(context.Background(), pharmacy, uuid.New(), time.Now())
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Errorf("kind = %v, want unauthorized", apperr.KindOf(err))
	}
}

func TestDaily_RepositoryFailureFailsReport(t *testing.T) {
	pharmacy := auth.Principal{ID: uuid.New(), Role: auth.RolePharmacy}
	svc := NewService(&mockRecordRepo{err: context.DeadlineExceeded})
	if _, err := svc.Daily(context.Background(), pharmacy, pharmacy.ID, time.Now()); err == nil {
		t.Error("expected the aggregate to fail with the repository")
	}
}

func TestMonthlyStats_AverageDividesByDayOfMonth(t *testing.T) {
	pharmacy := auth.Principal{ID: uuid.New(), Role: auth.RolePharmacy}
	repo := &mockRecordRepo{records: []Record{
		rec(100000, "COMPLETED", time.Date(2026, 8, 2, 9, 0, 0, 0, time.UTC), uuid.New()),
		rec(50000, "COMPLETED", time.Date(2026, 8, 5, 9, 0, 0, 0, time.UTC), uuid.New()),
	}}
	svc := NewService(repo)

	// Report on the 10th: the average divides by 10, not by days with sales.
	stats, err := svc.MonthlyStats(context.Background(), pharmacy, pharmacy.ID, time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("MonthlyStats: %v", err)
	}
	if stats.TotalRevenue != 150000 {
		t.Errorf("revenue = %d, want 150000", stats.TotalRevenue)
	}
	if stats.AverageDaily != 15000 {
		t.Errorf("average = %d, want 15000", stats.AverageDaily)
	}
	if stats.PeakDay != "2026-08-02" || stats.PeakDayRevenue != 100000 {
		t.Errorf("peak = %s/%d, want 2026-08-02/100000", stats.PeakDay, stats.PeakDayRevenue)
	}
	if stats.Month != "2026-08" {
		t.Errorf("month = %s, want 2026-08", stats.Month)
	}
}

func TestMonthlyStats_ExcludesDaysAfterReportDate(t *testing.T) {
	pharmacy := auth.Principal{ID: uuid.New(), Role: auth.RolePharmacy}
	repo := &mockRecordRepo{records: []Record{
		rec(10000, "COMPLETED", time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC), uuid.New()),
		rec(90000, "COMPLETED", time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC), uuid.New()),
	}}
	svc := NewService(repo)

	stats, err := svc.MonthlyStats(context.Background(), pharmacy, pharmacy.ID, time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("MonthlyStats: %v", err)
	}
	if stats.TotalRevenue != 10000 || stats.PrescriptionCount != 1 {
		t.Errorf("revenue = %d count = %d, want 10000 and 1", stats.TotalRevenue, stats.PrescriptionCount)
	}
}

func TestMonthlyStats_PeakTieTakesEarlierDay(t *testing.T) {
	pharmacy := auth.Principal{ID: uuid.New(), Role: auth.RolePharmacy}
	repo := &mockRecordRepo{records: []Record{
		rec(50000, "COMPLETED", time.Date(2026, 8, 4, 9, 0, 0, 0, time.UTC), uuid.New()),
		rec(50000, "COMPLETED", time.Date(2026, 8, 8, 9, 0, 0, 0, time.UTC), uuid.New()),
	}}
	svc := NewService(repo)

	stats, err := svc.MonthlyStats(context.Background(), pharmacy, pharmacy.ID, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("MonthlyStats: %v", err)
	}
	if stats.PeakDay != "2026-08-04" {
		t.Errorf("peak day = %s, want 2026-08-04", stats.PeakDay)
	}
}
