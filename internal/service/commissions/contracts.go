package commissions

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonService/internal/domain"
)

// CommissionRepository интерфейс репозитория комиссий
type CommissionRepository interface {
	ListBySpecialist(ctx context.Context, businessID, specialistID int64, status *domain.CommissionStatus) ([]*domain.CommissionRecord, error)
	GetByIDsForUpdate(ctx context.Context, ids []int64) ([]*domain.CommissionRecord, error)
	UpdateStatusByIDs(ctx context.Context, ids []int64, status domain.CommissionStatus, paymentRequestID *int64) error
}

// PaymentRequestRepository интерфейс репозитория заявок на выплату
type PaymentRequestRepository interface {
	Create(ctx context.Context, req *domain.PaymentRequest) (*domain.PaymentRequest, error)
	GetByID(ctx context.Context, id int64) (*domain.PaymentRequest, error)
	ListBySpecialist(ctx context.Context, businessID, specialistID int64) ([]*domain.PaymentRequest, error)
	UpdateStatus(ctx context.Context, id int64, status domain.PaymentRequestStatus, paidDate *time.Time) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время в UTC
func (p *RealTimeProvider) Now() time.Time {
	return time.Now().UTC()
}
