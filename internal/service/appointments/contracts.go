package appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, appt *domain.Appointment, expectedVersion int64) (*domain.Appointment, error)
	Update(ctx context.Context, appt *domain.Appointment, expectedVersion int64) (*domain.Appointment, error)
}

// RuleProvider источник правил бизнеса
type RuleProvider interface {
	GetRuleSet(ctx context.Context, businessID int64) (domain.RuleSet, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Metrics доменные метрики записей
type Metrics interface {
	ObserveTransition(from, to, result string)
	ObserveGuardDenial(guard string)
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
