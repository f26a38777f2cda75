package schedules

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/pkg/ptr"
	"github.com/m04kA/SMC-SalonService/pkg/types"
)

// interval полуоткрытый интервал [start, end) в минутах от полуночи
type interval struct {
	start int
	end   int
}

// overlaps два интервала пересекаются, если s1 < e2 и s2 < e1.
// Касание границ (09:00-12:00 и 12:00-15:00) конфликтом не считается.
func (i interval) overlaps(o interval) bool {
	return i.start < o.end && o.start < i.end
}

// intersection окно пересечения двух интервалов
func (i interval) intersection(o interval) interval {
	return interval{start: max(i.start, o.start), end: min(i.end, o.end)}
}

func (i interval) String() string {
	return fmt.Sprintf("%s-%s", types.MustFromMinutes(i.start), types.MustFromMinutes(i.end))
}

// toInterval переводит смену в минуты; ok=false, если время некорректно или start >= end
func toInterval(s domain.ShiftInterval) (interval, bool) {
	start, err := s.Start.Minutes()
	if err != nil {
		return interval{}, false
	}
	end, err := s.End.Minutes()
	if err != nil {
		return interval{}, false
	}
	if start >= end {
		return interval{}, false
	}
	return interval{start: start, end: end}, true
}

// Validate проверяет недельное расписание специалиста в одном филиале.
//
// candidate      - редактируемое расписание по дням недели
// businessHours  - часы работы филиала по дням недели
// otherBranches  - включенные смены того же специалиста в других филиалах
//
// Ошибки накапливаются, проверка не прерывается на первой ошибке.
// Результат не зависит от порядка otherBranches.
func Validate(
	candidate domain.WeekMap[domain.DaySchedule],
	businessHours domain.WeekMap[domain.BusinessOperatingHours],
	otherBranches []domain.BranchSchedules,
) []domain.ValidationError {
	others := sortedBranches(otherBranches)

	var errs []domain.ValidationError
	for _, weekday := range domain.Weekdays {
		day, ok := candidate[weekday]
		if !ok || !day.Enabled || len(day.Shifts) == 0 {
			continue
		}
		errs = append(errs, validateDay(day, weekday, businessHours, others)...)
	}
	return errs
}

func validateDay(
	day domain.DaySchedule,
	weekday time.Weekday,
	businessHours domain.WeekMap[domain.BusinessOperatingHours],
	others []domain.BranchSchedules,
) []domain.ValidationError {
	var errs []domain.ValidationError
	dayName := domain.WeekdayName(weekday)

	// 1. Филиал закрыт в этот день
	hours, configured := businessHours[weekday]
	closed := configured && !hours.IsOpen()
	if closed {
		errs = append(errs, domain.ValidationError{
			Code:     domain.CodeBusinessClosed,
			Message:  fmt.Sprintf("%s: business closed this day", weekday),
			Weekday:  ptr.Ptr(dayName),
			BranchID: ptr.Ptr(day.BranchID),
		})
	}

	// Границы рабочего дня: самое раннее начало и самый поздний конец окон филиала
	bound, hasBound := businessBound(hours)
	checkBound := configured && !closed && hasBound

	valid := make([]interval, len(day.Shifts))
	isValid := make([]bool, len(day.Shifts))

	for idx, shift := range day.Shifts {
		loc := func(code domain.ValidationCode, msg string) domain.ValidationError {
			return domain.ValidationError{
				Code:       code,
				Message:    fmt.Sprintf("%s, shift %d: %s", weekday, idx+1, msg),
				Weekday:    ptr.Ptr(dayName),
				ShiftIndex: ptr.Ptr(idx),
				BranchID:   ptr.Ptr(day.BranchID),
			}
		}

		if shift.Start.Validate() != nil || shift.End.Validate() != nil {
			errs = append(errs, loc(domain.CodeInvalidTimeFormat,
				fmt.Sprintf("invalid time %q-%q, expected HH:MM", shift.Start, shift.End)))
			continue
		}
		iv, ok := toInterval(shift)
		if !ok {
			errs = append(errs, loc(domain.CodeInvalidShift,
				fmt.Sprintf("start %s must be before end %s", shift.Start, shift.End)))
			continue
		}
		valid[idx] = iv
		isValid[idx] = true

		// 2. Смена внутри часов работы
		if checkBound {
			if iv.start < bound.start {
				errs = append(errs, loc(domain.CodeStartsOutsideHours,
					fmt.Sprintf("starts outside business hours (%s)", bound)))
			}
			if iv.end > bound.end {
				errs = append(errs, loc(domain.CodeEndsOutsideHours,
					fmt.Sprintf("ends outside business hours (%s)", bound)))
			}
		}

		// 3. Перерыв
		if shift.HasBreak() {
			if e, bad := validateBreak(shift, iv); bad {
				errs = append(errs, loc(e.Code, e.Message))
			}
		}
	}

	// 4. Пересечения с другими филиалами
	for idx, iv := range valid {
		if !isValid[idx] {
			continue
		}
		for _, other := range others {
			for _, otherShift := range other.Schedules[weekday] {
				oiv, ok := toInterval(otherShift)
				if !ok || !iv.overlaps(oiv) {
					continue
				}
				errs = append(errs, domain.ValidationError{
					Code: domain.CodeBranchOverlap,
					Message: fmt.Sprintf("%s, shift %d: %s at branch %d overlaps %s at %s, overlap %s",
						weekday, idx+1, iv, day.BranchID, oiv, branchLabel(other), iv.intersection(oiv)),
					Weekday:    ptr.Ptr(dayName),
					ShiftIndex: ptr.Ptr(idx),
					BranchID:   ptr.Ptr(other.BranchID),
				})
			}
		}
	}

	// 5. Пересечения смен внутри одного филиала и дня
	for i := 0; i < len(valid); i++ {
		if !isValid[i] {
			continue
		}
		for j := i + 1; j < len(valid); j++ {
			if !isValid[j] || !valid[i].overlaps(valid[j]) {
				continue
			}
			errs = append(errs, domain.ValidationError{
				Code: domain.CodeSameBranchOverlap,
				Message: fmt.Sprintf("%s: shift %d (%s) overlaps shift %d (%s), overlap %s",
					weekday, i+1, valid[i], j+1, valid[j], valid[i].intersection(valid[j])),
				Weekday:    ptr.Ptr(dayName),
				ShiftIndex: ptr.Ptr(j),
				BranchID:   ptr.Ptr(day.BranchID),
			})
		}
	}

	return errs
}

// validateBreak проверяет инварианты перерыва; возвращает первую найденную проблему
func validateBreak(shift domain.ShiftInterval, iv interval) (domain.ValidationError, bool) {
	if shift.BreakStart == nil || shift.BreakEnd == nil {
		return domain.ValidationError{
			Code:    domain.CodeInvalidBreak,
			Message: "break must have both start and end",
		}, true
	}

	bs, errS := shift.BreakStart.Minutes()
	be, errE := shift.BreakEnd.Minutes()
	if errS != nil || errE != nil {
		return domain.ValidationError{
			Code:    domain.CodeInvalidTimeFormat,
			Message: fmt.Sprintf("invalid break time %q-%q, expected HH:MM", *shift.BreakStart, *shift.BreakEnd),
		}, true
	}

	if bs >= be {
		return domain.ValidationError{
			Code:    domain.CodeInvalidBreak,
			Message: fmt.Sprintf("break start %s must be before break end %s", *shift.BreakStart, *shift.BreakEnd),
		}, true
	}

	if bs < iv.start || be > iv.end {
		return domain.ValidationError{
			Code:    domain.CodeBreakOutsideShift,
			Message: fmt.Sprintf("break %s-%s must be inside shift %s", *shift.BreakStart, *shift.BreakEnd, iv),
		}, true
	}

	if d := be - bs; d < domain.MinBreakMinutes || d > domain.MaxBreakMinutes {
		return domain.ValidationError{
			Code: domain.CodeBreakDuration,
			Message: fmt.Sprintf("break duration %d min must be between %d and %d minutes",
				d, domain.MinBreakMinutes, domain.MaxBreakMinutes),
		}, true
	}

	return domain.ValidationError{}, false
}

// businessBound объединенная граница окон филиала за день
func businessBound(hours domain.BusinessOperatingHours) (interval, bool) {
	var bound interval
	found := false
	for _, window := range hours.Shifts {
		iv, ok := toInterval(window)
		if !ok {
			continue
		}
		if !found {
			bound = iv
			found = true
			continue
		}
		bound.start = min(bound.start, iv.start)
		bound.end = max(bound.end, iv.end)
	}
	return bound, found
}

// sortedBranches копия списка филиалов, упорядоченная по ID
func sortedBranches(branches []domain.BranchSchedules) []domain.BranchSchedules {
	sorted := make([]domain.BranchSchedules, len(branches))
	copy(sorted, branches)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BranchID != sorted[j].BranchID {
			return sorted[i].BranchID < sorted[j].BranchID
		}
		return sorted[i].BranchName < sorted[j].BranchName
	})
	return sorted
}

func branchLabel(b domain.BranchSchedules) string {
	if b.BranchName != "" {
		return fmt.Sprintf("branch %d (%s)", b.BranchID, b.BranchName)
	}
	return fmt.Sprintf("branch %d", b.BranchID)
}
