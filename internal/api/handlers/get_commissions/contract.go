package get_commissions

import (
	"context"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/service/commissions/models"
)

type CommissionService interface {
	ListForSpecialist(ctx context.Context, actor domain.Actor, specialistID int64, status *string) (*models.CommissionListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
