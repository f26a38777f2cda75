package domain

import (
	"strings"
	"time"

	"github.com/m04kA/SMC-SalonService/pkg/types"
)

// WeekMap maps a weekday to a per-day value
type WeekMap[T any] map[time.Weekday]T

// Weekdays lists weekdays in a stable Monday-first order.
// Iterating a WeekMap through Weekdays keeps validation output deterministic.
var Weekdays = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// ShiftInterval is a contiguous working interval within one day with an optional break
type ShiftInterval struct {
	Start      types.TimeString  `json:"start"`
	End        types.TimeString  `json:"end"`
	BreakStart *types.TimeString `json:"breakStart,omitempty"`
	BreakEnd   *types.TimeString `json:"breakEnd,omitempty"`
}

// HasBreak returns true if either break bound is set
func (s ShiftInterval) HasBreak() bool {
	return s.BreakStart != nil || s.BreakEnd != nil
}

// DaySchedule is the schedule of one specialist at one branch on one weekday
type DaySchedule struct {
	ID           int64
	SpecialistID int64
	BranchID     int64
	Weekday      time.Weekday
	Enabled      bool
	Shifts       []ShiftInterval
	UpdatedAt    time.Time
}

// BusinessOperatingHours defines the allowed staffing windows of a branch on one weekday
type BusinessOperatingHours struct {
	Closed bool            `json:"closed"`
	Shifts []ShiftInterval `json:"shifts,omitempty"`
}

// IsOpen returns true if the branch has at least one window that day
func (h BusinessOperatingHours) IsOpen() bool {
	return !h.Closed && len(h.Shifts) > 0
}

// BranchSchedules holds the enabled shifts of a specialist at another branch
type BranchSchedules struct {
	BranchID   int64
	BranchName string
	Schedules  WeekMap[[]ShiftInterval]
}

// ToWeekMap groups day schedules of a single branch by weekday
func ToWeekMap(days []*DaySchedule) WeekMap[DaySchedule] {
	week := make(WeekMap[DaySchedule], len(days))
	for _, d := range days {
		if d == nil {
			continue
		}
		week[d.Weekday] = *d
	}
	return week
}

// EnabledShifts converts day schedules into a weekday → shifts map, skipping disabled days
func EnabledShifts(days []*DaySchedule) WeekMap[[]ShiftInterval] {
	week := make(WeekMap[[]ShiftInterval])
	for _, d := range days {
		if d == nil || !d.Enabled || len(d.Shifts) == 0 {
			continue
		}
		week[d.Weekday] = append(week[d.Weekday], d.Shifts...)
	}
	return week
}

// Branch is a physical location of a business with its own operating hours
type Branch struct {
	ID             int64
	BusinessID     int64
	Name           string
	OperatingHours WeekMap[BusinessOperatingHours]
}

// WeekdayName returns the lowercase English name of a weekday ("monday")
func WeekdayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// ParseWeekday parses a lowercase or capitalized English weekday name
func ParseWeekday(s string) (time.Weekday, bool) {
	for _, d := range Weekdays {
		if strings.EqualFold(d.String(), strings.TrimSpace(s)) {
			return d, true
		}
	}
	return 0, false
}
