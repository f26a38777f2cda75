package branch

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonService/pkg/psqlbuilder"
)

// Repository репозиторий филиалов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория филиалов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает филиал вместе с часами работы.
// Часы работы хранятся в jsonb вида {"monday": {"closed": false, "shifts": [...]}}.
// Отсутствующий день означает, что часы на этот день не настроены.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Branch, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"business_id",
		"name",
		"operating_hours",
	).
		From("branches").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var (
		branch domain.Branch
		hours  []byte
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&branch.ID,
		&branch.BusinessID,
		&branch.Name,
		&hours,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBranchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan branch: %v", ErrScanRow, err)
	}

	branch.OperatingHours, err = decodeOperatingHours(hours)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - decode operating hours of branch %d: %v", ErrScanRow, id, err)
	}

	return &branch, nil
}

func decodeOperatingHours(raw []byte) (domain.WeekMap[domain.BusinessOperatingHours], error) {
	week := make(domain.WeekMap[domain.BusinessOperatingHours])
	if len(raw) == 0 {
		return week, nil
	}

	var byName map[string]domain.BusinessOperatingHours
	if err := json.Unmarshal(raw, &byName); err != nil {
		return nil, err
	}

	for name, hours := range byName {
		day, ok := domain.ParseWeekday(name)
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		week[day] = hours
	}
	return week, nil
}
