package save_schedule

import (
	"github.com/m04kA/SMC-SalonService/internal/service/schedules/models"
)

// ShiftRequest HTTP модель смены, формат HH:MM проверяет валидатор расписания
type ShiftRequest struct {
	Start      string  `json:"start" validate:"required"`
	End        string  `json:"end" validate:"required"`
	BreakStart *string `json:"breakStart,omitempty"`
	BreakEnd   *string `json:"breakEnd,omitempty"`
}

// DayRequest HTTP модель дня недели
type DayRequest struct {
	Weekday string         `json:"weekday" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	Enabled bool           `json:"enabled"`
	Shifts  []ShiftRequest `json:"shifts" validate:"dive"`
}

// SaveScheduleRequest HTTP request model
type SaveScheduleRequest struct {
	SpecialistID int64        `json:"specialistId" validate:"required,gt=0"`
	BranchID     int64        `json:"branchId" validate:"required,gt=0"`
	Days         []DayRequest `json:"days" validate:"required,min=1,max=7,dive"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *SaveScheduleRequest) ToServiceRequest() *models.SaveWeekRequest {
	days := make([]models.DayRequest, 0, len(r.Days))
	for _, d := range r.Days {
		shifts := make([]models.ShiftRequest, 0, len(d.Shifts))
		for _, s := range d.Shifts {
			shifts = append(shifts, models.ShiftRequest{
				Start:      s.Start,
				End:        s.End,
				BreakStart: s.BreakStart,
				BreakEnd:   s.BreakEnd,
			})
		}
		days = append(days, models.DayRequest{
			Weekday: d.Weekday,
			Enabled: d.Enabled,
			Shifts:  shifts,
		})
	}

	return &models.SaveWeekRequest{
		SpecialistID: r.SpecialistID,
		BranchID:     r.BranchID,
		Days:         days,
	}
}
