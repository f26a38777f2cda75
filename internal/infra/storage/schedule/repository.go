package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonService/pkg/psqlbuilder"
)

const table = "specialist_schedules"

// Repository репозиторий недельных расписаний специалистов по филиалам
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByBranch получает расписание специалиста в филиале, по строке на день недели
func (r *Repository) GetByBranch(ctx context.Context, specialistID, branchID int64) ([]*domain.DaySchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"specialist_id",
		"branch_id",
		"weekday",
		"enabled",
		"shifts",
		"updated_at",
	).
		From(table).
		Where(squirrel.Eq{"specialist_id": specialistID, "branch_id": branchID}).
		OrderBy("weekday ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByBranch - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBranch - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var result []*domain.DaySchedule
	for rows.Next() {
		var (
			day     domain.DaySchedule
			weekday int
			shifts  []byte
		)
		if err := rows.Scan(&day.ID, &day.SpecialistID, &day.BranchID, &weekday, &day.Enabled, &shifts, &day.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: GetByBranch - scan schedule: %v", ErrScanRow, err)
		}
		day.Weekday = time.Weekday(weekday)
		if day.Shifts, err = decodeShifts(shifts); err != nil {
			return nil, fmt.Errorf("%w: GetByBranch - decode shifts: %v", ErrScanRow, err)
		}
		result = append(result, &day)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByBranch - rows iteration: %v", ErrScanRow, err)
	}

	return result, nil
}

// GetOtherBranches получает включенные смены специалиста во всех филиалах, кроме excludeBranchID
func (r *Repository) GetOtherBranches(ctx context.Context, specialistID, excludeBranchID int64) ([]domain.BranchSchedules, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"s.branch_id",
		"b.name",
		"s.weekday",
		"s.shifts",
	).
		From(table + " s").
		Join("branches b ON b.id = s.branch_id").
		Where(squirrel.Eq{"s.specialist_id": specialistID, "s.enabled": true}).
		Where(squirrel.NotEq{"s.branch_id": excludeBranchID}).
		OrderBy("s.branch_id ASC", "s.weekday ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetOtherBranches - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetOtherBranches - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var (
		result []domain.BranchSchedules
		index  = make(map[int64]int)
	)
	for rows.Next() {
		var (
			branchID int64
			name     string
			weekday  int
			raw      []byte
		)
		if err := rows.Scan(&branchID, &name, &weekday, &raw); err != nil {
			return nil, fmt.Errorf("%w: GetOtherBranches - scan schedule: %v", ErrScanRow, err)
		}
		shifts, err := decodeShifts(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: GetOtherBranches - decode shifts: %v", ErrScanRow, err)
		}
		if len(shifts) == 0 {
			continue
		}

		i, ok := index[branchID]
		if !ok {
			result = append(result, domain.BranchSchedules{
				BranchID:   branchID,
				BranchName: name,
				Schedules:  make(domain.WeekMap[[]domain.ShiftInterval]),
			})
			i = len(result) - 1
			index[branchID] = i
		}
		day := time.Weekday(weekday)
		result[i].Schedules[day] = append(result[i].Schedules[day], shifts...)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetOtherBranches - rows iteration: %v", ErrScanRow, err)
	}

	return result, nil
}

// ReplaceWeek заменяет расписание специалиста в филиале целиком.
// Должен вызываться в транзакции, иначе между удалением и вставкой расписание будет пустым.
func (r *Repository) ReplaceWeek(ctx context.Context, specialistID, branchID int64, days []*domain.DaySchedule) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(table).
		Where(squirrel.Eq{"specialist_id": specialistID, "branch_id": branchID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceWeek - build delete query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceWeek - execute delete: %v", ErrExecQuery, err)
	}

	if len(days) == 0 {
		return nil
	}

	insert := psqlbuilder.Insert(table).
		Columns("specialist_id", "branch_id", "weekday", "enabled", "shifts")
	for _, day := range days {
		shifts, err := encodeShifts(day.Shifts)
		if err != nil {
			return fmt.Errorf("%w: ReplaceWeek - encode shifts: %v", ErrBuildQuery, err)
		}
		insert = insert.Values(specialistID, branchID, int(day.Weekday), day.Enabled, shifts)
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceWeek - build insert query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceWeek - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// LockSpecialistWeekday берет транзакционную advisory-блокировку на пару (специалист, день недели).
// Параллельные сохранения расписаний одного специалиста на один день выполняются по очереди.
func (r *Repository) LockSpecialistWeekday(ctx context.Context, specialistID int64, weekday time.Weekday) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey(specialistID, weekday)); err != nil {
		return fmt.Errorf("%w: LockSpecialistWeekday - execute lock: %v", ErrExecQuery, err)
	}

	return nil
}

// lockKey младшие 3 бита - день недели, остальные - ID специалиста
func lockKey(specialistID int64, weekday time.Weekday) int64 {
	return specialistID<<3 | int64(weekday)
}

func decodeShifts(raw []byte) ([]domain.ShiftInterval, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var shifts []domain.ShiftInterval
	if err := json.Unmarshal(raw, &shifts); err != nil {
		return nil, err
	}
	return shifts, nil
}

func encodeShifts(shifts []domain.ShiftInterval) ([]byte, error) {
	if shifts == nil {
		shifts = []domain.ShiftInterval{}
	}
	return json.Marshal(shifts)
}
