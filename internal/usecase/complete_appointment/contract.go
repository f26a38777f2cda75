package complete_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	Complete(ctx context.Context, appt *domain.Appointment, expectedVersion int64) (*domain.Appointment, error)
}

// PaymentRepository интерфейс репозитория платежей
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
}

// PaymentMethodRepository интерфейс справочника способов оплаты
type PaymentMethodRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.PaymentMethod, error)
}

// ServiceRepository интерфейс каталога услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ServiceInfo, error)
}

// SpecialistRateRepository интерфейс ставок комиссий специалистов
type SpecialistRateRepository interface {
	GetRate(ctx context.Context, businessID, specialistID int64) (domain.SpecialistRate, error)
}

// CommissionRepository интерфейс репозитория комиссий
type CommissionRepository interface {
	Create(ctx context.Context, record *domain.CommissionRecord) (*domain.CommissionRecord, error)
	GetByAppointmentID(ctx context.Context, appointmentID int64) (*domain.CommissionRecord, error)
}

// RuleProvider источник правил бизнеса
type RuleProvider interface {
	GetRuleSet(ctx context.Context, businessID int64) (domain.RuleSet, error)
}

// EvidenceStorage хранилище фото-доказательств, возвращает URL загруженного файла
type EvidenceStorage interface {
	Upload(ctx context.Context, appointmentID int64, photo EvidencePhoto) (string, error)
}

// ConfirmationPrompt подтверждение действия пользователем перед записью в БД
type ConfirmationPrompt interface {
	Confirm(ctx context.Context, summary Summary) (bool, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Metrics доменные метрики завершения
type Metrics interface {
	ObserveTransition(from, to, result string)
	ObserveGuardDenial(guard string)
	ObserveCommissionGenerated()
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

// AutoConfirm подтверждает любое действие
type AutoConfirm struct{}

// Confirm всегда возвращает true
func (AutoConfirm) Confirm(context.Context, Summary) (bool, error) {
	return true, nil
}

// ConfirmedFlag подтверждение, переданное клиентом заранее (поле confirmed в запросе)
type ConfirmedFlag bool

// Confirm возвращает значение флага
func (f ConfirmedFlag) Confirm(context.Context, Summary) (bool, error) {
	return bool(f), nil
}
