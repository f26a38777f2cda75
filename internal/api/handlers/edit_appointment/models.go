package edit_appointment

import (
	"time"

	"github.com/m04kA/SMC-SalonService/internal/service/appointments/models"
)

// EditAppointmentRequest HTTP request model, все поля опциональны
type EditAppointmentRequest struct {
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Notes     *string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// IsEmpty true, если не передано ни одного поля
func (r *EditAppointmentRequest) IsEmpty() bool {
	return r.StartTime == nil && r.EndTime == nil && r.Notes == nil
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *EditAppointmentRequest) ToServiceRequest() *models.EditRequest {
	return &models.EditRequest{
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Notes:     r.Notes,
	}
}
