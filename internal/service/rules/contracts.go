package rules

import (
	"context"

	"github.com/m04kA/SMC-SalonService/internal/domain"
)

// RuleRepository интерфейс репозитория правил бизнеса
type RuleRepository interface {
	GetByBusiness(ctx context.Context, businessID int64) ([]domain.BusinessRule, error)
	Upsert(ctx context.Context, businessID int64, rules []domain.BusinessRule) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
