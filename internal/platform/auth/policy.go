package auth

import "github.com/google/uuid"

// Action names an operation subject to authorization.
type Action string

const (
	ActionAppointmentCreate  Action = "appointment.create"
	ActionAppointmentRead    Action = "appointment.read"
	ActionAppointmentUpdate  Action = "appointment.update"
	ActionAppointmentCancel  Action = "appointment.cancel"
	ActionPrescriptionIssue  Action = "prescription.issue"
	ActionPrescriptionRead   Action = "prescription.read"
	ActionPrescriptionRoute  Action = "prescription.route"
	ActionPrescriptionUpdate Action = "prescription.update"
	ActionSettlementRead     Action = "settlement.read"
	ActionFeeScheduleManage  Action = "feeschedule.manage"
	ActionDepartmentManage   Action = "department.manage"
)

// Ownership carries the owner references of the resource under access.
// Fields left as uuid.Nil are not applicable to the resource.
type Ownership struct {
	PatientID  uuid.UUID
	DoctorID   uuid.UUID
	PharmacyID uuid.UUID
}

// Allowed is the single authorization predicate: it decides whether the
// principal may perform the action on a resource with the given ownership.
func Allowed(p Principal, action Action, own Ownership) bool {
	if p.Role == RoleAdmin {
		return true
	}

	switch action {
	case ActionAppointmentCreate:
		return p.Role == RolePatient
	case ActionAppointmentRead:
		return (p.Role == RolePatient && p.ID == own.PatientID) ||
			(p.Role == RoleDoctor && p.ID == own.DoctorID)
	case ActionAppointmentUpdate:
		return p.Role == RoleDoctor && p.ID == own.DoctorID
	case ActionAppointmentCancel:
		return (p.Role == RolePatient && p.ID == own.PatientID) ||
			(p.Role == RoleDoctor && p.ID == own.DoctorID)
	case ActionPrescriptionIssue:
		return p.Role == RoleDoctor && p.ID == own.DoctorID
	case ActionPrescriptionRead:
		return (p.Role == RolePatient && p.ID == own.PatientID) ||
			(p.Role == RoleDoctor && p.ID == own.DoctorID) ||
			(p.Role == RolePharmacy && p.ID == own.PharmacyID)
	case ActionPrescriptionRoute:
		return (p.Role == RolePatient && p.ID == own.PatientID) ||
			(p.Role == RoleDoctor && p.ID == own.DoctorID)
	case ActionPrescriptionUpdate:
		return p.Role == RolePharmacy && p.ID == own.PharmacyID
	case ActionSettlementRead:
		return p.Role == RolePharmacy && p.ID == own.PharmacyID
	case ActionFeeScheduleManage:
		return p.Role == RoleDoctor && p.ID == own.DoctorID
	case ActionDepartmentManage:
		return false // admin only, handled above
	default:
		return false
	}
}
