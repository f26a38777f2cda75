package schedules

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonService/internal/domain"
)

// ScheduleRepository интерфейс репозитория расписаний специалистов
type ScheduleRepository interface {
	GetByBranch(ctx context.Context, specialistID, branchID int64) ([]*domain.DaySchedule, error)
	GetOtherBranches(ctx context.Context, specialistID, excludeBranchID int64) ([]domain.BranchSchedules, error)
	ReplaceWeek(ctx context.Context, specialistID, branchID int64, days []*domain.DaySchedule) error
	LockSpecialistWeekday(ctx context.Context, specialistID int64, weekday time.Weekday) error
}

// BranchRepository интерфейс репозитория филиалов
type BranchRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Branch, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics доменные метрики расписаний
type Metrics interface {
	ObserveScheduleErrors(codes []string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
