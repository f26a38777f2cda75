package get_schedule

import (
	"context"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/service/schedules/models"
)

type ScheduleService interface {
	GetWeek(ctx context.Context, actor domain.Actor, specialistID, branchID int64) (*models.SaveWeekResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
