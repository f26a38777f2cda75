package create_payment_request

import (
	"context"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/service/commissions/models"
)

type CommissionService interface {
	CreatePaymentRequest(ctx context.Context, actor domain.Actor, req *models.CreatePaymentRequest) (*models.PaymentRequestResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
