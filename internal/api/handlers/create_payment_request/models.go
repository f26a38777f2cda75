package create_payment_request

import (
	"github.com/m04kA/SMC-SalonService/internal/service/commissions/models"
)

// CreatePaymentRequestRequest HTTP request model.
// Пустой список комиссий проверяет сервис, чтобы вернуть ошибку выбора в общем формате.
type CreatePaymentRequestRequest struct {
	SpecialistID  int64   `json:"specialistId" validate:"required,gt=0"`
	CommissionIDs []int64 `json:"commissionIds" validate:"dive,gt=0"`
	Notes         *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CreatePaymentRequestRequest) ToServiceRequest() *models.CreatePaymentRequest {
	return &models.CreatePaymentRequest{
		SpecialistID:  r.SpecialistID,
		CommissionIDs: r.CommissionIDs,
		Notes:         r.Notes,
	}
}
