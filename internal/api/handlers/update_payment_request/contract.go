package update_payment_request

import (
	"context"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/service/commissions/models"
)

type CommissionService interface {
	Approve(ctx context.Context, actor domain.Actor, requestID int64) (*models.PaymentRequestResponse, error)
	Reject(ctx context.Context, actor domain.Actor, requestID int64) (*models.PaymentRequestResponse, error)
	MarkPaid(ctx context.Context, actor domain.Actor, requestID int64) (*models.PaymentRequestResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
