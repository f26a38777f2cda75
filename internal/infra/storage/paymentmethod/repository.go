package paymentmethod

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonService/pkg/psqlbuilder"
)

// Repository справочник способов оплаты
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория способов оплаты
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает способ оплаты по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.PaymentMethod, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"business_id",
		"name",
		"requires_proof",
		"active",
	).
		From("payment_methods").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var method domain.PaymentMethod
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&method.ID,
		&method.BusinessID,
		&method.Name,
		&method.RequiresProof,
		&method.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentMethodNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan payment method: %v", ErrScanRow, err)
	}

	return &method, nil
}
