package directory

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/NaByeonggil/obesity1-sub001/internal/platform/apperr"
	"github.com/NaByeonggil/obesity1-sub001/internal/platform/auth"
)

// -- Mock Repositories --

type mockDoctorRepo struct {
	doctors map[uuid.UUID]*Doctor
	order   []uuid.UUID
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[uuid.UUID]*Doctor)}
}

func (m *mockDoctorRepo) add(d *Doctor) *Doctor {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	m.doctors[d.ID] = d
	m.order = append(m.order, d.ID)
	return d
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, apperr.NotFound("doctor not found")
	}
	return d, nil
}

func (m *mockDoctorRepo) ListWithFees(_ context.Context) ([]*Doctor, error) {
	result := make([]*Doctor, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.doctors[id])
	}
	return result, nil
}

type mockDepartmentRepo struct {
	deps map[uuid.UUID]*Department
}

func newMockDepartmentRepo() *mockDepartmentRepo {
	return &mockDepartmentRepo{deps: make(map[uuid.UUID]*Department)}
}

func (m *mockDepartmentRepo) Create(_ context.Context, d *Department) error {
	d.ID = uuid.New()
	m.deps[d.ID] = d
	return nil
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, id uuid.UUID) (*Department, error) {
	d, ok := m.deps[id]
	if !ok {
		return nil, apperr.NotFound("department not found")
	}
	return d, nil
}

func (m *mockDepartmentRepo) List(_ context.Context) ([]*Department, error) {
	var result []*Department
	for _, d := range m.deps {
		result = append(result, d)
	}
	return result, nil
}

func (m *mockDepartmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.deps[id]; !ok {
		return apperr.NotFound("department not found")
	}
	delete(m.deps, id)
	return nil
}

type mockFeeRepo struct {
	fees map[uuid.UUID]*FeeSchedule
}

func newMockFeeRepo() *mockFeeRepo {
	return &mockFeeRepo{fees: make(map[uuid.UUID]*FeeSchedule)}
}

func (m *mockFeeRepo) Create(_ context.Context, f *FeeSchedule) error {
	f.ID = uuid.New()
	m.fees[f.ID] = f
	return nil
}

func (m *mockFeeRepo) GetByID(_ context.Context, id uuid.UUID) (*FeeSchedule, error) {
	f, ok := m.fees[id]
	if !ok {
		return nil, apperr.NotFound("fee schedule not found")
	}
	return f, nil
}

func (m *mockFeeRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]FeeSchedule, error) {
	var result []FeeSchedule
	for _, f := range m.fees {
		if f.DoctorID == doctorID {
			result = append(result, *f)
		}
	}
	return result, nil
}

func (m *mockFeeRepo) Update(_ context.Context, f *FeeSchedule) error {
	if _, ok := m.fees[f.ID]; !ok {
		return apperr.NotFound("fee schedule not found")
	}
	m.fees[f.ID] = f
	return nil
}

func (m *mockFeeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.fees[id]; !ok {
		return apperr.NotFound("fee schedule not found")
	}
	delete(m.fees, id)
	return nil
}

func newTestService(doctors *mockDoctorRepo, deps *mockDepartmentRepo, fees *mockFeeRepo) *Service {
	return NewService(doctors, deps, fees, NewResolver(DefaultResolverConfig()), nil)
}

// -- Tests --

func TestListClinics_ResolvesFeesAndDistances(t *testing.T) {
	doctors := newMockDoctorRepo()
	doctors.add(&Doctor{
		Name: "김원장", ClinicName: "강남내과", Specialization: "내과",
		Address: "서울시 강남구 역삼동 123",
		FeeSchedules: []FeeSchedule{
			{DepartmentName: "내과", Modality: ModalityOnline, BasePrice: 12000, Active: true},
		},
	})
	doctors.add(&Doctor{
		Name: "이원장", ClinicName: "마포가정의학과", Specialization: "가정의학과",
		Address: "서울시 마포구 합정동 45",
	})
	svc := newTestService(doctors, newMockDepartmentRepo(), newMockFeeRepo())

	clinics, err := svc.ListClinics(context.Background(), ListClinicsQuery{Category: "internal", Sort: SortPrice})
	if err != nil {
		t.Fatalf("ListClinics: %v", err)
	}
	if len(clinics) != 2 {
		t.Fatalf("len = %d, want 2", len(clinics))
	}
	// Schedule price 12000 sorts before the 15000 specialty fallback.
	if clinics[0].ConsultationFee != 12000 || clinics[1].ConsultationFee != 15000 {
		t.Errorf("fees = %d, %d; want 12000, 15000", clinics[0].ConsultationFee, clinics[1].ConsultationFee)
	}
	for _, c := range clinics {
		if c.DistanceKm < 0 {
			t.Errorf("clinic %s has negative distance", c.ClinicName)
		}
		if c.ConsultationType != "online" {
			t.Errorf("clinic %s type = %s, want online", c.ClinicName, c.ConsultationType)
		}
	}
	if clinics[0].District != "강남구" {
		t.Errorf("district = %q, want 강남구", clinics[0].District)
	}
}

func TestListClinics_StableCoordinates(t *testing.T) {
	doctors := newMockDoctorRepo()
	doctors.add(&Doctor{Name: "김원장", Address: "서울시 서초구 서초동 1", Specialization: "내과"})
	svc := newTestService(doctors, newMockDepartmentRepo(), newMockFeeRepo())

	first, err := svc.ListClinics(context.Background(), ListClinicsQuery{})
	if err != nil {
		t.Fatalf("ListClinics: %v", err)
	}
	second, _ := svc.ListClinics(context.Background(), ListClinicsQuery{})
	if first[0].Location != second[0].Location {
		t.Errorf("coordinates changed between listings: %v vs %v", first[0].Location, second[0].Location)
	}
}

func TestListClinics_RejectsUnknownModality(t *testing.T) {
	svc := newTestService(newMockDoctorRepo(), newMockDepartmentRepo(), newMockFeeRepo())
	_, err := svc.ListClinics(context.Background(), ListClinicsQuery{Modality: "HYBRID"})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("kind = %v, want validation", apperr.KindOf(err))
	}
}

func TestCreateDepartment_AdminOnly(t *testing.T) {
	svc := newTestService(newMockDoctorRepo(), newMockDepartmentRepo(), newMockFeeRepo())
	patient := auth.Principal{ID: uuid.New(), Role: auth.RolePatient}

	_, err := svc.CreateDepartment(context.Background(), patient, DepartmentInput{Name: "내과", Capability: "BOTH"})
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Errorf("kind = %v, want unauthorized", apperr.KindOf(err))
	}

	admin := auth.Principal{ID: uuid.New(), Role: auth.RoleAdmin}
	dep, err := svc.CreateDepartment(context.Background(), admin, DepartmentInput{Name: "내과", Capability: "BOTH"})
	if err != nil {
		t.Fatalf("CreateDepartment: %v", err)
	}
	if dep.ID == uuid.Nil {
		t.Error("department id not assigned")
	}
}

func TestCreateDepartment_RejectsBadCapability(t *testing.T) {
	svc := newTestService(newMockDoctorRepo(), newMockDepartmentRepo(), newMockFeeRepo())
	admin := auth.Principal{ID: uuid.New(), Role: auth.RoleAdmin}
	_, err := svc.CreateDepartment(context.Background(), admin, DepartmentInput{Name: "내과", Capability: "REMOTE"})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("kind = %v, want validation", apperr.KindOf(err))
	}
}

func TestCreateFeeSchedule_OwnDoctorOnly(t *testing.T) {
	doctors := newMockDoctorRepo()
	deps := newMockDepartmentRepo()
	fees := newMockFeeRepo()
	svc := newTestService(doctors, deps, fees)

	doc := doctors.add(&Doctor{Name: "김원장", Specialization: "내과"})
	dep := &Department{Name: "내과", Capability: "BOTH"}
	deps.Create(context.Background(), dep)

	other := auth.Principal{ID: uuid.New(), Role: auth.RoleDoctor}
	in := FeeScheduleInput{DoctorID: doc.ID, DepartmentID: dep.ID, Modality: ModalityOnline, BasePrice: 12000, Active: true}
	if _, err := svc.CreateFeeSchedule(context.Background(), other, in); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Errorf("kind = %v, want unauthorized", apperr.KindOf(err))
	}

	owner := auth.Principal{ID: doc.ID, Role: auth.RoleDoctor}
	f, err := svc.CreateFeeSchedule(context.Background(), owner, in)
	if err != nil {
		t.Fatalf("CreateFeeSchedule: %v", err)
	}
	if f.DepartmentName != "내과" {
		t.Errorf("department name = %q, want 내과", f.DepartmentName)
	}
}

func TestCreateFeeSchedule_CapabilityMismatch(t *testing.T) {
	doctors := newMockDoctorRepo()
	deps := newMockDepartmentRepo()
	svc := newTestService(doctors, deps, newMockFeeRepo())

	doc := doctors.add(&Doctor{Name: "김원장", Specialization: "정형외과"})
	dep := &Department{Name: "정형외과", Capability: "OFFLINE"}
	deps.Create(context.Background(), dep)

	owner := auth.Principal{ID: doc.ID, Role: auth.RoleDoctor}
	in := FeeScheduleInput{DoctorID: doc.ID, DepartmentID: dep.ID, Modality: ModalityOnline, BasePrice: 25000, Active: true}
	if _, err := svc.CreateFeeSchedule(context.Background(), owner, in); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("kind = %v, want validation", apperr.KindOf(err))
	}
}
