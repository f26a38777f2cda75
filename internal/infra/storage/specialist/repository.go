package specialist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonService/pkg/psqlbuilder"
)

// Repository репозиторий ставок комиссий специалистов
type Repository struct {
	db          DBExecutor
	defaultRate decimal.Decimal
}

// NewRepository создает репозиторий; defaultRate используется, когда у бизнеса нет своей ставки по умолчанию
func NewRepository(db DBExecutor, defaultRate decimal.Decimal) *Repository {
	return &Repository{db: db, defaultRate: defaultRate}
}

// GetRate получает персональную ставку специалиста и ставку бизнеса по умолчанию
func (r *Repository) GetRate(ctx context.Context, businessID, specialistID int64) (domain.SpecialistRate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"s.id",
		"s.commission_rate",
		"b.default_commission_rate",
	).
		From("specialists s").
		Join("businesses b ON b.id = s.business_id").
		Where(squirrel.Eq{"s.id": specialistID, "s.business_id": businessID}).
		ToSql()

	if err != nil {
		return domain.SpecialistRate{}, fmt.Errorf("%w: GetRate - build select query: %v", ErrBuildQuery, err)
	}

	var (
		rate            domain.SpecialistRate
		override        decimal.NullDecimal
		businessDefault decimal.NullDecimal
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(&rate.SpecialistID, &override, &businessDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SpecialistRate{}, ErrSpecialistNotFound
	}
	if err != nil {
		return domain.SpecialistRate{}, fmt.Errorf("%w: GetRate - scan rate: %v", ErrScanRow, err)
	}

	if override.Valid {
		rate.Override = &override.Decimal
	}
	rate.BusinessDefault = r.defaultRate
	if businessDefault.Valid {
		rate.BusinessDefault = businessDefault.Decimal
	}

	return rate, nil
}
