package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	createAppointment "github.com/m04kA/SMC-SalonService/internal/usecase/create_appointment"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	BranchID     int64     `json:"branchId" validate:"required,gt=0"`
	SpecialistID int64     `json:"specialistId" validate:"required,gt=0"`
	ClientID     int64     `json:"clientId" validate:"required,gt=0"`
	ServiceID    int64     `json:"serviceId" validate:"required,gt=0"`
	StartTime    time.Time `json:"startTime" validate:"required"`
	EndTime      time.Time `json:"endTime" validate:"required,gtfield=StartTime"`
	Notes        *string   `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(actor domain.Actor) *createAppointment.Request {
	return &createAppointment.Request{
		Actor:        actor,
		BranchID:     r.BranchID,
		SpecialistID: r.SpecialistID,
		ClientID:     r.ClientID,
		ServiceID:    r.ServiceID,
		StartTime:    r.StartTime.UTC(),
		EndTime:      r.EndTime.UTC(),
		Notes:        r.Notes,
	}
}
