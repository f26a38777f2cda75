package models

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/pkg/types"
)

var (
	// ErrInvalidWeekday возвращается при неизвестном дне недели
	ErrInvalidWeekday = errors.New("invalid weekday")

	// ErrDuplicateWeekday возвращается, если день недели указан дважды
	ErrDuplicateWeekday = errors.New("duplicate weekday")
)

// Request модели

// ShiftRequest смена в запросе
type ShiftRequest struct {
	Start      string  `json:"start"`
	End        string  `json:"end"`
	BreakStart *string `json:"breakStart,omitempty"`
	BreakEnd   *string `json:"breakEnd,omitempty"`
}

// DayRequest расписание на день недели
type DayRequest struct {
	Weekday string         `json:"weekday"` // "monday"
	Enabled bool           `json:"enabled"`
	Shifts  []ShiftRequest `json:"shifts"`
}

// SaveWeekRequest запрос на сохранение недельного расписания специалиста в филиале
type SaveWeekRequest struct {
	SpecialistID int64        `json:"specialistId"`
	BranchID     int64        `json:"branchId"`
	Days         []DayRequest `json:"days"`
}

// ToDomain конвертирует запрос в недельную карту расписаний.
// Формат времени не проверяется здесь: ошибки формата возвращает валидатор.
func (r *SaveWeekRequest) ToDomain() (domain.WeekMap[domain.DaySchedule], error) {
	week := make(domain.WeekMap[domain.DaySchedule], len(r.Days))
	for _, d := range r.Days {
		weekday, ok := domain.ParseWeekday(d.Weekday)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWeekday, d.Weekday)
		}
		if _, exists := week[weekday]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateWeekday, d.Weekday)
		}

		shifts := make([]domain.ShiftInterval, 0, len(d.Shifts))
		for _, s := range d.Shifts {
			shift := domain.ShiftInterval{
				Start: types.TimeString(s.Start),
				End:   types.TimeString(s.End),
			}
			if s.BreakStart != nil {
				bs := types.TimeString(*s.BreakStart)
				shift.BreakStart = &bs
			}
			if s.BreakEnd != nil {
				be := types.TimeString(*s.BreakEnd)
				shift.BreakEnd = &be
			}
			shifts = append(shifts, shift)
		}

		week[weekday] = domain.DaySchedule{
			SpecialistID: r.SpecialistID,
			BranchID:     r.BranchID,
			Weekday:      weekday,
			Enabled:      d.Enabled,
			Shifts:       shifts,
		}
	}
	return week, nil
}

// Response модели

// DayResponse расписание на день
type DayResponse struct {
	Weekday string                 `json:"weekday"`
	Enabled bool                   `json:"enabled"`
	Shifts  []domain.ShiftInterval `json:"shifts"`
}

// SaveWeekResponse результат сохранения
// Saved=false означает, что расписание не прошло проверку и Errors содержит все найденные проблемы
type SaveWeekResponse struct {
	SpecialistID int64                    `json:"specialistId"`
	BranchID     int64                    `json:"branchId"`
	Saved        bool                     `json:"saved"`
	Errors       []domain.ValidationError `json:"errors"`
	Days         []DayResponse            `json:"days,omitempty"`
}

// FromDomainWeek конвертирует недельную карту в упорядоченный список дней
func FromDomainWeek(week domain.WeekMap[domain.DaySchedule]) []DayResponse {
	days := make([]DayResponse, 0, len(week))
	for _, weekday := range domain.Weekdays {
		d, ok := week[weekday]
		if !ok {
			continue
		}
		days = append(days, DayResponse{
			Weekday: domain.WeekdayName(weekday),
			Enabled: d.Enabled,
			Shifts:  d.Shifts,
		})
	}
	return days
}

// WeekToList упорядоченный список дней для сохранения
func WeekToList(week domain.WeekMap[domain.DaySchedule]) []*domain.DaySchedule {
	list := make([]*domain.DaySchedule, 0, len(week))
	for _, weekday := range domain.Weekdays {
		if d, ok := week[weekday]; ok {
			list = append(list, &d)
		}
	}
	return list
}
