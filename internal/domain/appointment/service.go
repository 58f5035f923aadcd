package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/NaByeonggil/obesity1-sub001/internal/domain/directory"
	"github.com/NaByeonggil/obesity1-sub001/internal/platform/apperr"
	"github.com/NaByeonggil/obesity1-sub001/internal/platform/auth"
)

// Service owns the appointment lifecycle. All operations check the caller
// against the central authorization policy before touching state.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateInput is the booking request.
type CreateInput struct {
	DoctorID     uuid.UUID          `json:"doctor_id" validate:"required"`
	DepartmentID uuid.UUID          `json:"department_id" validate:"required"`
	Modality     directory.Modality `json:"modality" validate:"required,oneof=ONLINE OFFLINE"`
	ScheduledAt  time.Time          `json:"scheduled_at" validate:"required"`
	Symptoms     string             `json:"symptoms"`
	PersonalInfo *PersonalInfo      `json:"personal_info,omitempty"`
}

// Create books a new appointment in PENDING. Only patients book; an online
// booking must carry the personal-info payload, and the identity payload of
// an in-person booking is discarded rather than stored.
func (s *Service) Create(ctx context.Context, p auth.Principal, in CreateInput) (*Appointment, error) {
	if !auth.Allowed(p, auth.ActionAppointmentCreate, auth.Ownership{}) {
		return nil, apperr.Unauthorized("only patients book appointments")
	}
	if in.DoctorID == uuid.Nil {
		return nil, apperr.Validation("doctor_id is required")
	}
	if in.DepartmentID == uuid.Nil {
		return nil, apperr.Validation("department_id is required")
	}
	if !in.Modality.Valid() {
		return nil, apperr.Validation("unknown modality %q", in.Modality)
	}
	if !in.ScheduledAt.After(s.now()) {
		return nil, apperr.Validation("scheduled_at must be in the future")
	}
	if in.Modality == directory.ModalityOnline {
		if in.PersonalInfo == nil || in.PersonalInfo.Name == "" || in.PersonalInfo.Phone == "" {
			return nil, apperr.Validation("online appointments require name and phone in personal_info")
		}
	} else {
		in.PersonalInfo = nil
	}

	a := &Appointment{
		PatientID:    p.ID,
		DoctorID:     in.DoctorID,
		DepartmentID: in.DepartmentID,
		Modality:     in.Modality,
		Status:       StatusPending,
		ScheduledAt:  in.ScheduledAt,
		Symptoms:     in.Symptoms,
		PersonalInfo: in.PersonalInfo,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	log.Info().
		Str("appointment_id", a.ID.String()).
		Str("modality", string(a.Modality)).
		Msg("appointment booked")
	return a, nil
}

// Get returns an appointment visible to the caller.
func (s *Service) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.Allowed(p, auth.ActionAppointmentRead, auth.Ownership{PatientID: a.PatientID, DoctorID: a.DoctorID}) {
		return nil, apperr.Unauthorized("appointment belongs to another patient")
	}
	return a, nil
}

// UpdateInput carries a status change and an optional symptoms rewrite.
type UpdateInput struct {
	Status   Status  `json:"status" validate:"required"`
	Symptoms *string `json:"symptoms,omitempty"`
}

// UpdateStatus applies a lifecycle transition. Terminal appointments reject
// every change; illegal transitions are invalid-state errors so callers can
// tell them apart from permission failures. Patients may only cancel, the
// assigned doctor drives the rest.
func (s *Service) UpdateStatus(ctx context.Context, p auth.Principal, id uuid.UUID, in UpdateInput) (*Appointment, error) {
	if !in.Status.Valid() {
		return nil, apperr.Validation("unknown status %q", in.Status)
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	own := auth.Ownership{PatientID: a.PatientID, DoctorID: a.DoctorID}
	action := auth.ActionAppointmentUpdate
	if in.Status == StatusCancelled {
		action = auth.ActionAppointmentCancel
	}
	if !auth.Allowed(p, action, own) {
		return nil, apperr.Unauthorized("not allowed to change this appointment")
	}

	if a.Status.Terminal() {
		return nil, apperr.InvalidState("appointment is already %s", a.Status)
	}
	if !CanTransition(a.Status, in.Status) {
		return nil, apperr.InvalidState("cannot move appointment from %s to %s", a.Status, in.Status)
	}

	if err := s.repo.UpdateStatus(ctx, id, a.Status, in.Status, in.Symptoms); err != nil {
		return nil, err
	}
	log.Info().
		Str("appointment_id", id.String()).
		Str("from", string(a.Status)).
		Str("to", string(in.Status)).
		Msg("appointment status changed")
	return s.repo.GetByID(ctx, id)
}

// ListByPatient returns the caller's own bookings; doctors and admins may
// list any patient.
func (s *Service) ListByPatient(ctx context.Context, p auth.Principal, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	if !auth.Allowed(p, auth.ActionAppointmentRead, auth.Ownership{PatientID: patientID}) {
		return nil, 0, apperr.Unauthorized("cannot list another patient's appointments")
	}
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// ListByDoctor returns the schedule of the assigned doctor.
func (s *Service) ListByDoctor(ctx context.Context, p auth.Principal, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	if !auth.Allowed(p, auth.ActionAppointmentRead, auth.Ownership{DoctorID: doctorID}) {
		return nil, 0, apperr.Unauthorized("cannot list another doctor's appointments")
	}
	return s.repo.ListByDoctor(ctx, doctorID, limit, offset)
}
