package directory

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/NaByeonggil/obesity1-sub001/internal/platform/apperr"
	"github.com/NaByeonggil/obesity1-sub001/internal/platform/auth"
	"github.com/NaByeonggil/obesity1-sub001/internal/platform/cache"
	"github.com/NaByeonggil/obesity1-sub001/internal/platform/geo"
)

const listingTTL = 60 * time.Second

// Service implements clinic discovery plus department and fee schedule
// administration.
type Service struct {
	doctors     DoctorRepository
	departments DepartmentRepository
	fees        FeeScheduleRepository
	resolver    *Resolver
	cache       *cache.Cache
}

func NewService(doctors DoctorRepository, departments DepartmentRepository, fees FeeScheduleRepository, resolver *Resolver, c *cache.Cache) *Service {
	return &Service{doctors: doctors, departments: departments, fees: fees, resolver: resolver, cache: c}
}

// ListClinicsQuery are the listing parameters. Modality defaults to ONLINE;
// Origin defaults to the city center when the caller sent no location.
type ListClinicsQuery struct {
	Category string
	Modality Modality
	District string
	Sort     SortMode
	Origin   *geo.Point
}

// ListClinics resolves a fee and a map position for every doctor and returns
// the ranked listing. Fee resolution cannot fail, so a listing only errors on
// repository failure.
func (s *Service) ListClinics(ctx context.Context, q ListClinicsQuery) ([]Clinic, error) {
	if q.Modality == "" {
		q.Modality = ModalityOnline
	}
	if !q.Modality.Valid() {
		return nil, apperr.Validation("unknown modality %q", q.Modality)
	}

	key := fmt.Sprintf("clinics:%s:%s:%s:%s", q.Category, q.Modality, q.District, q.Sort)
	cacheable := q.Origin == nil
	if cacheable {
		var cached []Clinic
		if s.cache.Get(ctx, key, &cached) {
			return cached, nil
		}
	}

	doctors, err := s.doctors.ListWithFees(ctx)
	if err != nil {
		return nil, err
	}

	origin := geo.CityCenter
	if q.Origin != nil {
		origin = *q.Origin
	}

	clinics := make([]Clinic, 0, len(doctors))
	for _, d := range doctors {
		res := s.resolver.Resolve(d.FeeSchedules, d.Specialization, q.Category, q.Modality)
		ctype := "online"
		if res.Offline {
			ctype = "offline"
		}
		loc := geo.Locate(d.Address, jitterRand(d.ID))
		clinics = append(clinics, Clinic{
			DoctorID:         d.ID,
			DoctorName:       d.Name,
			ClinicName:       d.ClinicName,
			Specialization:   d.Specialization,
			Address:          d.Address,
			District:         geo.District(d.Address),
			ConsultationFee:  res.Price,
			ConsultationType: ctype,
			Location:         loc,
			DistanceKm:       geo.Distance(origin, loc),
		})
	}

	clinics = Rank(clinics, q.Sort, q.District)
	if cacheable {
		s.cache.Set(ctx, key, clinics, listingTTL)
	}
	return clinics, nil
}

// jitterRand seeds the map jitter from the doctor id so a clinic keeps the
// same coordinates across requests.
func jitterRand(id uuid.UUID) *rand.Rand {
	seed := int64(binary.BigEndian.Uint64(id[:8]))
	return rand.New(rand.NewSource(seed))
}

// =========== Department administration ===========

type DepartmentInput struct {
	Name       string `json:"name" validate:"required"`
	Capability string `json:"capability" validate:"required,oneof=ONLINE OFFLINE BOTH"`
}

func (s *Service) CreateDepartment(ctx context.Context, p auth.Principal, in DepartmentInput) (*Department, error) {
	if !auth.Allowed(p, auth.ActionDepartmentManage, auth.Ownership{}) {
		return nil, apperr.Unauthorized("only administrators manage departments")
	}
	if in.Name == "" {
		return nil, apperr.Validation("department name is required")
	}
	if !validCapabilities[in.Capability] {
		return nil, apperr.Validation("unknown capability %q", in.Capability)
	}
	d := &Department{Name: in.Name, Capability: in.Capability}
	if err := s.departments.Create(ctx, d); err != nil {
		return nil, err
	}
	log.Info().Str("department", d.Name).Msg("department created")
	return d, nil
}

func (s *Service) ListDepartments(ctx context.Context) ([]*Department, error) {
	return s.departments.List(ctx)
}

func (s *Service) DeleteDepartment(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if !auth.Allowed(p, auth.ActionDepartmentManage, auth.Ownership{}) {
		return apperr.Unauthorized("only administrators manage departments")
	}
	return s.departments.Delete(ctx, id)
}

// =========== Fee schedule administration ===========

type FeeScheduleInput struct {
	DoctorID       uuid.UUID `json:"doctor_id" validate:"required"`
	DepartmentID   uuid.UUID `json:"department_id" validate:"required"`
	Modality       Modality  `json:"modality" validate:"required,oneof=ONLINE OFFLINE"`
	BasePrice      int       `json:"base_price" validate:"required,gt=0"`
	EmergencyPrice *int      `json:"emergency_price,omitempty"`
	Active         bool      `json:"active"`
}

func (s *Service) CreateFeeSchedule(ctx context.Context, p auth.Principal, in FeeScheduleInput) (*FeeSchedule, error) {
	if !auth.Allowed(p, auth.ActionFeeScheduleManage, auth.Ownership{DoctorID: in.DoctorID}) {
		return nil, apperr.Unauthorized("fee schedules can only be managed by their doctor")
	}
	if !in.Modality.Valid() {
		return nil, apperr.Validation("unknown modality %q", in.Modality)
	}
	if in.BasePrice <= 0 {
		return nil, apperr.Validation("base price must be positive")
	}
	dep, err := s.departments.GetByID(ctx, in.DepartmentID)
	if err != nil {
		return nil, err
	}
	if dep.Capability != "BOTH" && dep.Capability != string(in.Modality) {
		return nil, apperr.Validation("department %s does not offer %s consultations", dep.Name, in.Modality)
	}
	if _, err := s.doctors.GetByID(ctx, in.DoctorID); err != nil {
		return nil, err
	}

	f := &FeeSchedule{
		DoctorID:       in.DoctorID,
		DepartmentID:   in.DepartmentID,
		DepartmentName: dep.Name,
		Modality:       in.Modality,
		BasePrice:      in.BasePrice,
		EmergencyPrice: in.EmergencyPrice,
		Active:         in.Active,
	}
	if err := s.fees.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) ListFeeSchedules(ctx context.Context, p auth.Principal, doctorID uuid.UUID) ([]FeeSchedule, error) {
	if !auth.Allowed(p, auth.ActionFeeScheduleManage, auth.Ownership{DoctorID: doctorID}) {
		return nil, apperr.Unauthorized("fee schedules can only be read by their doctor")
	}
	return s.fees.ListByDoctor(ctx, doctorID)
}

func (s *Service) UpdateFeeSchedule(ctx context.Context, p auth.Principal, id uuid.UUID, in FeeScheduleInput) (*FeeSchedule, error) {
	f, err := s.fees.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.Allowed(p, auth.ActionFeeScheduleManage, auth.Ownership{DoctorID: f.DoctorID}) {
		return nil, apperr.Unauthorized("fee schedules can only be managed by their doctor")
	}
	if !in.Modality.Valid() {
		return nil, apperr.Validation("unknown modality %q", in.Modality)
	}
	if in.BasePrice <= 0 {
		return nil, apperr.Validation("base price must be positive")
	}
	f.Modality = in.Modality
	f.BasePrice = in.BasePrice
	f.EmergencyPrice = in.EmergencyPrice
	f.Active = in.Active
	if err := s.fees.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) DeleteFeeSchedule(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	f, err := s.fees.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.Allowed(p, auth.ActionFeeScheduleManage, auth.Ownership{DoctorID: f.DoctorID}) {
		return apperr.Unauthorized("fee schedules can only be managed by their doctor")
	}
	return s.fees.Delete(ctx, id)
}
