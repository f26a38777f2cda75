package save_schedule

import (
	"context"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/service/schedules/models"
)

type ScheduleService interface {
	Check(ctx context.Context, actor domain.Actor, req *models.SaveWeekRequest) (*models.SaveWeekResponse, error)
	SaveWeek(ctx context.Context, actor domain.Actor, req *models.SaveWeekRequest) (*models.SaveWeekResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
