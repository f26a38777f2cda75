package get_payment_requests

import (
	"context"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/service/commissions/models"
)

type CommissionService interface {
	ListRequests(ctx context.Context, actor domain.Actor, specialistID int64) ([]*models.PaymentRequestResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
