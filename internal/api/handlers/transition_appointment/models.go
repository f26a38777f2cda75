package transition_appointment

import (
	"github.com/m04kA/SMC-SalonService/internal/service/appointments/models"
)

// TransitionRequest HTTP request model
type TransitionRequest struct {
	Status string  `json:"status" validate:"required"`
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *TransitionRequest) ToServiceRequest() *models.TransitionRequest {
	return &models.TransitionRequest{
		Status: r.Status,
		Reason: r.Reason,
	}
}
