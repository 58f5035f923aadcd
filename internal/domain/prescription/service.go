package prescription

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/NaByeonggil/obesity1-sub001/internal/domain/appointment"
	"github.com/NaByeonggil/obesity1-sub001/internal/domain/directory"
	"github.com/NaByeonggil/obesity1-sub001/internal/platform/apperr"
	"github.com/NaByeonggil/obesity1-sub001/internal/platform/auth"
)

// PharmacyDirectory answers whether a pharmacy exists. Implemented by the
// account repository; prescriptions only need the existence check.
type PharmacyDirectory interface {
	PharmacyExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service issues prescriptions and drives them through routing and
// dispensing.
type Service struct {
	repo         Repository
	appointments appointment.Repository
	pharmacies   PharmacyDirectory
	now          func() time.Time
	rng          *rand.Rand
}

func NewService(repo Repository, appointments appointment.Repository, pharmacies PharmacyDirectory) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		pharmacies:   pharmacies,
		now:          time.Now,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// LineInput is one requested medication entry. Entries without a medication
// reference are dropped silently rather than rejected.
type LineInput struct {
	MedicationCode      string `json:"medication_code"`
	MedicationName      string `json:"medication_name"`
	Dosage              string `json:"dosage"`
	Frequency           string `json:"frequency"`
	DurationDays        int    `json:"duration_days"`
	Quantity            int    `json:"quantity"`
	SubstitutionAllowed bool   `json:"substitution_allowed"`
	Price               int    `json:"price"`
}

// IssueInput is the issuance request.
type IssueInput struct {
	AppointmentID uuid.UUID   `json:"appointment_id" validate:"required"`
	Diagnosis     string      `json:"diagnosis"`
	Lines         []LineInput `json:"lines"`
}

// Issue creates a prescription for a confirmed online appointment. The
// preconditions are checked in order so each failure mode keeps its own
// error kind: missing appointment, wrong doctor, wrong modality, wrong
// status, then duplicate issuance.
func (s *Service) Issue(ctx context.Context, p auth.Principal, in IssueInput) (*Prescription, error) {
	appt, err := s.appointments.GetByID(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	if !auth.Allowed(p, auth.ActionPrescriptionIssue, auth.Ownership{DoctorID: appt.DoctorID}) {
		return nil, apperr.Unauthorized("only the assigned doctor issues prescriptions")
	}
	if appt.Modality != directory.ModalityOnline {
		return nil, apperr.InvalidState("prescriptions are issued for online consultations only")
	}
	if appt.Status != appointment.StatusConfirmed {
		return nil, apperr.InvalidState("appointment is %s, not CONFIRMED", appt.Status)
	}
	if _, err := s.repo.GetByAppointment(ctx, in.AppointmentID); err == nil {
		return nil, apperr.Conflict("a prescription already exists for this appointment")
	} else if apperr.KindOf(err) != apperr.KindNotFound {
		return nil, err
	}

	lines := make([]Line, 0, len(in.Lines))
	total := 0
	for _, l := range in.Lines {
		if strings.TrimSpace(l.MedicationCode) == "" && strings.TrimSpace(l.MedicationName) == "" {
			continue
		}
		lines = append(lines, Line{
			MedicationCode:      l.MedicationCode,
			MedicationName:      l.MedicationName,
			Dosage:              l.Dosage,
			Frequency:           l.Frequency,
			DurationDays:        l.DurationDays,
			Quantity:            l.Quantity,
			SubstitutionAllowed: l.SubstitutionAllowed,
			Price:               l.Price,
		})
		total += l.Price
	}

	now := s.now()
	rx := &Prescription{
		Number:        NewNumber(now, s.rng),
		AppointmentID: appt.ID,
		PatientID:     appt.PatientID,
		DoctorID:      appt.DoctorID,
		Status:        StatusIssued,
		Diagnosis:     in.Diagnosis,
		Lines:         lines,
		TotalPrice:    total,
		IssuedAt:      now,
		ValidUntil:    now.Add(ValidityWindow),
	}
	if err := s.repo.CreateWithLines(ctx, rx); err != nil {
		return nil, err
	}
	log.Info().
		Str("prescription", rx.Number).
		Str("appointment_id", appt.ID.String()).
		Int("total_price", rx.TotalPrice).
		Msg("prescription issued")
	return rx, nil
}

// Get returns a prescription visible to the caller.
func (s *Service) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*Prescription, error) {
	rx, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.Allowed(p, auth.ActionPrescriptionRead, ownership(rx)) {
		return nil, apperr.Unauthorized("prescription belongs to another party")
	}
	return rx, nil
}

// Route sends an issued prescription to the chosen pharmacy. The patient
// picks the pharmacy; expired prescriptions cannot be routed.
func (s *Service) Route(ctx context.Context, p auth.Principal, id, pharmacyID uuid.UUID) (*Prescription, error) {
	rx, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.Allowed(p, auth.ActionPrescriptionRoute, ownership(rx)) {
		return nil, apperr.Unauthorized("prescription belongs to another patient")
	}
	if rx.Status != StatusIssued {
		return nil, apperr.InvalidState("prescription is %s, not ISSUED", rx.Status)
	}
	if s.now().After(rx.ValidUntil) {
		return nil, apperr.InvalidState("prescription expired on %s", rx.ValidUntil.Format("2006-01-02"))
	}
	ok, err := s.pharmacies.PharmacyExists(ctx, pharmacyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("pharmacy not found")
	}

	if err := s.repo.Route(ctx, id, pharmacyID); err != nil {
		return nil, err
	}
	log.Info().
		Str("prescription", rx.Number).
		Str("pharmacy_id", pharmacyID.String()).
		Msg("prescription routed")
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus drives the dispensing flow. The routed pharmacy moves the
// prescription SENT -> DISPENSED -> COMPLETED; a cancel before dispensing is
// open to the patient and doctor.
func (s *Service) UpdateStatus(ctx context.Context, p auth.Principal, id uuid.UUID, to Status) (*Prescription, error) {
	if !to.Valid() {
		return nil, apperr.Validation("unknown status %q", to)
	}

	rx, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	action := auth.ActionPrescriptionUpdate
	if to == StatusCancelled {
		action = auth.ActionPrescriptionRoute
	}
	if !auth.Allowed(p, action, ownership(rx)) {
		return nil, apperr.Unauthorized("not allowed to change this prescription")
	}

	if rx.Status.Terminal() {
		return nil, apperr.InvalidState("prescription is already %s", rx.Status)
	}
	if !CanTransition(rx.Status, to) {
		return nil, apperr.InvalidState("cannot move prescription from %s to %s", rx.Status, to)
	}

	if err := s.repo.UpdateStatus(ctx, id, rx.Status, to); err != nil {
		return nil, err
	}
	log.Info().
		Str("prescription", rx.Number).
		Str("from", string(rx.Status)).
		Str("to", string(to)).
		Msg("prescription status changed")
	return s.repo.GetByID(ctx, id)
}

// ListByPatient returns the caller's own prescriptions.
func (s *Service) ListByPatient(ctx context.Context, p auth.Principal, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	if !auth.Allowed(p, auth.ActionPrescriptionRead, auth.Ownership{PatientID: patientID}) {
		return nil, 0, apperr.Unauthorized("cannot list another patient's prescriptions")
	}
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// ListByPharmacy returns the work queue of the routed pharmacy.
func (s *Service) ListByPharmacy(ctx context.Context, p auth.Principal, pharmacyID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	if !auth.Allowed(p, auth.ActionPrescriptionRead, auth.Ownership{PharmacyID: pharmacyID}) {
		return nil, 0, apperr.Unauthorized("cannot list another pharmacy's prescriptions")
	}
	return s.repo.ListByPharmacy(ctx, pharmacyID, limit, offset)
}

func ownership(rx *Prescription) auth.Ownership {
	own := auth.Ownership{PatientID: rx.PatientID, DoctorID: rx.DoctorID}
	if rx.PharmacyID != nil {
		own.PharmacyID = *rx.PharmacyID
	}
	return own
}
