package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/NaByeonggil/obesity1-sub001/internal/domain/directory"
	"github.com/NaByeonggil/obesity1-sub001/internal/platform/apperr"
	"github.com/NaByeonggil/obesity1-sub001/internal/platform/auth"
)

// -- Mock Repository --

type mockRepo struct {
	appts map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	m.appts[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, apperr.NotFound("appointment not found")
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status, symptoms *string) error {
	a, ok := m.appts[id]
	if !ok {
		return apperr.NotFound("appointment not found")
	}
	if a.Status != from {
		return apperr.Conflict("appointment left status %s concurrently", from)
	}
	a.Status = to
	if symptoms != nil {
		a.Symptoms = *symptoms
	}
	return nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, _, _ int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, a := range m.appts {
		if a.PatientID == patientID {
			result = append(result, a)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, _, _ int) ([]*Appointment, int, error) {
	var result []*Appointment
	for _, a := range m.appts {
		if a.DoctorID == doctorID {
			result = append(result, a)
		}
	}
	return result, len(result), nil
}

func futureInput() CreateInput {
	return CreateInput{
		DoctorID:     uuid.New(),
		DepartmentID: uuid.New(),
		Modality:     directory.ModalityOffline,
		ScheduledAt:  time.Now().Add(24 * time.Hour),
		Symptoms:     "체중 증가",
	}
}

// -- Tests --

func TestCreate_PatientOnly(t *testing.T) {
	svc := NewService(newMockRepo())
	doctor := auth.Principal{ID: uuid.New(), Role: auth.RoleDoctor}
	if _, err := svc.Create(context.Background(), doctor, futureInput()); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Errorf("kind = %v, want unauthorized", apperr.KindOf(err))
	}
}

func TestCreate_StartsPending(t *testing.T) {
	svc := NewService(newMockRepo())
	patient := auth.Principal{ID: uuid.New(), Role: auth.RolePatient}
	a, err := svc.Create(context.Background(), patient, futureInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Status != StatusPending {
		t.Errorf("status = %s, want PENDING", a.Status)
	}
	if a.PatientID != patient.ID {
		t.Error("patient id not taken from the session principal")
	}
}

func TestCreate_RejectsPastTimestamp(t *testing.T) {
	svc := NewService(newMockRepo())
	patient := auth.Principal{ID: uuid.New(), Role: auth.RolePatient}
	in := futureInput()
	in.ScheduledAt = time.Now().Add(-time.Hour)
	if _, err := svc.Create(context.Background(), patient, in); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("kind = %v, want validation", apperr.KindOf(err))
	}
}

func TestCreate_OnlineRequiresPersonalInfo(t *testing.T) {
	svc := NewService(newMockRepo())
	patient := auth.Principal{ID: uuid.New(), Role: auth.RolePatient}
	in := futureInput()
	in.Modality = directory.ModalityOnline
	if _, err := svc.Create(context.Background(), patient, in); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("kind = %v, want validation", apperr.KindOf(err))
	}

	in.PersonalInfo = &PersonalInfo{Name: "홍길동", Phone: "010-1234-5678"}
	a, err := svc.Create(context.Background(), patient, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.PersonalInfo == nil {
		t.Error("personal info dropped for an online booking")
	}
}

func TestCreate_OfflineDiscardsPersonalInfo(t *testing.T) {
	svc := NewService(newMockRepo())
	patient := auth.Principal{ID: uuid.New(), Role: auth.RolePatient}
	in := futureInput()
	in.PersonalInfo = &PersonalInfo{Name: "홍길동", Phone: "010-1234-5678"}
	a, err := svc.Create(context.Background(), patient, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.PersonalInfo != nil {
		t.Error("personal info should not be stored for in-person bookings")
	}
}

func bookPending(t *testing.T, svc *Service, patient auth.Principal, doctorID uuid.UUID) *Appointment {
	t.Helper()
	in := futureInput()
	in.DoctorID = doctorID
	a, err := svc.Create(context.Background(), patient, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return a
}

func TestUpdateStatus_DoctorConfirmsAndCompletes(t *testing.T) {
	svc := NewService(newMockRepo())
	patient := auth.Principal{ID: uuid.New(), Role: auth.RolePatient}
	doctor := auth.Principal{ID: uuid.New(), Role: auth.RoleDoctor}
	a := bookPending(t, svc, patient, doctor.ID)

	a, err := svc.UpdateStatus(context.Background(), doctor, a.ID, UpdateInput{Status: StatusConfirmed})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if a.Status != StatusConfirmed {
		t.Fatalf("status = %s, want CONFIRMED", a.Status)
	}
	note := "진료 완료"
	a, err = svc.UpdateStatus(context.Background(), doctor, a.ID, UpdateInput{Status: StatusCompleted, Symptoms: &note})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if a.Status != StatusCompleted || a.Symptoms != note {
		t.Errorf("got status %s symptoms %q", a.Status, a.Symptoms)
	}
}

// conflictingRepo refuses the status write the way the database does when a
// concurrent update wins the race.
type conflictingRepo struct {
	*mockRepo
	calls int
}

func (r *conflictingRepo) UpdateStatus(context.Context, uuid.UUID, Status, Status, *string) error {
	r.calls++
	return apperr.Conflict("appointment left status PENDING concurrently")
}

func TestUpdateStatus_SymptomsRideTheStatusWrite(t *testing.T) {
	repo := &conflictingRepo{mockRepo: newMockRepo()}
	svc := NewService(repo)
	patient := auth.Principal{ID: uuid.New(), Role: auth.RolePatient}
	doctor := auth.Principal{ID: uuid.New(), Role: auth.RoleDoctor}
	a := bookPending(t, svc, patient, doctor.ID)
	before := a.Symptoms

	note := "경과 기록"
	_, err := svc.UpdateStatus(context.Background(), doctor, a.ID, UpdateInput{Status: StatusConfirmed, Symptoms: &note})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("kind = %v, want conflict", apperr.KindOf(err))
	}
	// The transition and the symptoms rewrite are one repository write, so a
	// lost race leaves both fields alone.
	if repo.calls != 1 {
		t.Errorf("writes = %d, want a single combined write", repo.calls)
	}
	stored, err := svc.Get(context.Background(), doctor, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Status != StatusPending || stored.Symptoms != before {
		t.Errorf("got status %s symptoms %q after conflict, want PENDING %q", stored.Status, stored.Symptoms, before)
	}
}

func TestUpdateStatus_PatientCannotConfirm(t *testing.T) {
	svc := NewService(newMockRepo())
	patient := auth.Principal{ID: uuid.New(), Role: auth.RolePatient}
	a := bookPending(t, svc, patient, uuid.New())

	_, err := svc.UpdateStatus(context.Background(), patient, a.ID, UpdateInput{Status: StatusConfirmed})
	if apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Errorf("kind = %v, want unauthorized", apperr.KindOf(err))
	}
}

func TestUpdateStatus_PatientCancelsOwn(t *testing.T) {
	svc := NewService(newMockRepo())
	patient := auth.Principal{ID: uuid.New(), Role: auth.RolePatient}
	a := bookPending(t, svc, patient, uuid.New())

	a, err := svc.UpdateStatus(context.Background(), patient, a.ID, UpdateInput{Status: StatusCancelled})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if a.Status != StatusCancelled {
		t.Errorf("status = %s, want CANCELLED", a.Status)
	}
}

func TestUpdateStatus_SkippingConfirmationIsInvalid(t *testing.T) {
	svc := NewService(newMockRepo())
	patient := auth.Principal{ID: uuid.New(), Role: auth.RolePatient}
	doctor := auth.Principal{ID: uuid.New(), Role: auth.RoleDoctor}
	a := bookPending(t, svc, patient, doctor.ID)

	_, err := svc.UpdateStatus(context.Background(), doctor, a.ID, UpdateInput{Status: StatusCompleted})
	if apperr.KindOf(err) != apperr.KindInvalidState {
		t.Errorf("kind = %v, want invalid state", apperr.KindOf(err))
	}
}

func TestUpdateStatus_TerminalIsImmutable(t *testing.T) {
	svc := NewService(newMockRepo())
	patient := auth.Principal{ID: uuid.New(), Role: auth.RolePatient}
	doctor := auth.Principal{ID: uuid.New(), Role: auth.RoleDoctor}
	a := bookPending(t, svc, patient, doctor.ID)

	if _, err := svc.UpdateStatus(context.Background(), patient, a.ID, UpdateInput{Status: StatusCancelled}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err := svc.UpdateStatus(context.Background(), doctor, a.ID, UpdateInput{Status: StatusConfirmed})
	if apperr.KindOf(err) != apperr.KindInvalidState {
		t.Errorf("kind = %v, want invalid state", apperr.KindOf(err))
	}
}

func TestGet_OtherPatientForbidden(t *testing.T) {
	svc := NewService(newMockRepo())
	patient := auth.Principal{ID: uuid.New(), Role: auth.RolePatient}
	a := bookPending(t, svc, patient, uuid.New())

	other := auth.Principal{ID: uuid.New(), Role: auth.RolePatient}
	if _, err := svc.Get(context.Background(), other, a.ID); apperr.KindOf(err) != apperr.KindUnauthorized {
		t.Errorf("kind = %v, want unauthorized", apperr.KindOf(err))
	}
}

func TestGet_AdminSeesEverything(t *testing.T) {
	svc := NewService(newMockRepo())
	patient := auth.Principal{ID: uuid.New(), Role: auth.RolePatient}
	a := bookPending(t, svc, patient, uuid.New())

	admin := auth.Principal{ID: uuid.New(), Role: auth.RoleAdmin}
	if _, err := svc.Get(context.Background(), admin, a.ID); err != nil {
		t.Errorf("Get as admin: %v", err)
	}
}
