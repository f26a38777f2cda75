package paymentrequest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonService/pkg/psqlbuilder"
)

const table = "payment_requests"

var columns = []string{
	"id",
	"business_id",
	"specialist_id",
	"commission_ids",
	"total_amount",
	"status",
	"request_date",
	"paid_date",
	"notes",
	"created_at",
	"updated_at",
}

// Repository репозиторий заявок на выплату комиссий
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория заявок на выплату
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает заявку на выплату
func (r *Repository) Create(ctx context.Context, req *domain.PaymentRequest) (*domain.PaymentRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"business_id",
			"specialist_id",
			"commission_ids",
			"total_amount",
			"status",
			"request_date",
			"notes",
		).
		Values(
			req.BusinessID,
			req.SpecialistID,
			pq.Array(req.CommissionIDs),
			req.TotalAmount,
			req.Status,
			req.RequestDate,
			req.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return req, nil
}

// GetByID получает заявку по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.PaymentRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	req, err := scanRequest(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan payment request: %v", ErrScanRow, err)
	}

	return req, nil
}

// ListBySpecialist получает заявки специалиста, новые первыми
func (r *Repository) ListBySpecialist(ctx context.Context, businessID, specialistID int64) ([]*domain.PaymentRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"business_id": businessID, "specialist_id": specialistID}).
		OrderBy("request_date DESC", "id DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListBySpecialist - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBySpecialist - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var result []*domain.PaymentRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListBySpecialist - scan payment request: %v", ErrScanRow, err)
		}
		result = append(result, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListBySpecialist - rows iteration: %v", ErrScanRow, err)
	}

	return result, nil
}

// UpdateStatus меняет статус заявки; paidDate задается только при выплате
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.PaymentRequestStatus, paidDate *time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update(table).
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})
	if paidDate != nil {
		builder = builder.Set("paid_date", *paidDate)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - rows affected: %v", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrPaymentRequestNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*domain.PaymentRequest, error) {
	var (
		req      domain.PaymentRequest
		ids      pq.Int64Array
		paidDate sql.NullTime
		notes    sql.NullString
	)

	err := row.Scan(
		&req.ID,
		&req.BusinessID,
		&req.SpecialistID,
		&ids,
		&req.TotalAmount,
		&req.Status,
		&req.RequestDate,
		&paidDate,
		&notes,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.CommissionIDs = []int64(ids)
	if paidDate.Valid {
		req.PaidDate = &paidDate.Time
	}
	if notes.Valid {
		req.Notes = &notes.String
	}

	return &req, nil
}
