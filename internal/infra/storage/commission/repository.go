package commission

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

const table = "commissions"

var columns = []string{
	"id",
	"business_id",
	"specialist_id",
	"appointment_id",
	"service_id",
	"commission_amount",
	"commission_percentage",
	"status",
	"payment_request_id",
	"appointment_date",
	"created_at",
	"updated_at",
}

// Repository репозиторий комиссий специалистов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория комиссий
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает комиссию по завершенной записи.
// На appointment_id стоит уникальный индекс: повторная вставка не создает дубликат и возвращает ErrCommissionExists.
func (r *Repository) Create(ctx context.Context, record *domain.CommissionRecord) (*domain.CommissionRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"business_id",
			"specialist_id",
			"appointment_id",
			"service_id",
			"commission_amount",
			"commission_percentage",
			"status",
			"appointment_date",
		).
		Values(
			record.BusinessID,
			record.SpecialistID,
			record.AppointmentID,
			record.ServiceID,
			record.CommissionAmount,
			record.CommissionPercentage,
			record.Status,
			record.AppointmentDate,
		).
		Suffix("ON CONFLICT (appointment_id) DO NOTHING RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCommissionExists
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return record, nil
}

// ListBySpecialist получает комиссии специалиста, опционально по статусу
func (r *Repository) ListBySpecialist(ctx context.Context, businessID, specialistID int64, status *domain.CommissionStatus) ([]*domain.CommissionRecord, error) {
	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"business_id": businessID, "specialist_id": specialistID}).
		OrderBy("appointment_date DESC", "id DESC")

	if status != nil {
		builder = builder.Where(squirrel.Eq{"status": *status})
	}

	return r.list(ctx, "ListBySpecialist", builder)
}

// GetByAppointmentID получает комиссию, начисленную за запись
func (r *Repository) GetByAppointmentID(ctx context.Context, appointmentID int64) (*domain.CommissionRecord, error) {
	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"appointment_id": appointmentID}).
		Limit(1)

	records, err := r.list(ctx, "GetByAppointmentID", builder)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrCommissionNotFound
	}
	return records[0], nil
}

// GetByIDsForUpdate получает комиссии по набору ID и блокирует строки до конца транзакции
func (r *Repository) GetByIDsForUpdate(ctx context.Context, ids []int64) ([]*domain.CommissionRecord, error) {
	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id ASC").
		Suffix("FOR UPDATE")

	return r.list(ctx, "GetByIDsForUpdate", builder)
}

// UpdateStatusByIDs переводит комиссии в статус и привязывает (или отвязывает при nil) заявку на выплату
func (r *Repository) UpdateStatusByIDs(ctx context.Context, ids []int64, status domain.CommissionStatus, paymentRequestID *int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("status", status).
		Set("payment_request_id", paymentRequestID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatusByIDs - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpdateStatusByIDs - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

func (r *Repository) list(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]*domain.CommissionRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute select: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	var result []*domain.CommissionRecord
	for rows.Next() {
		var (
			record    domain.CommissionRecord
			requestID sql.NullInt64
		)
		err := rows.Scan(
			&record.ID,
			&record.BusinessID,
			&record.SpecialistID,
			&record.AppointmentID,
			&record.ServiceID,
			&record.CommissionAmount,
			&record.CommissionPercentage,
			&record.Status,
			&requestID,
			&record.AppointmentDate,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan commission: %v", ErrScanRow, op, err)
		}
		if requestID.Valid {
			record.PaymentRequestID = &requestID.Int64
		}
		result = append(result, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows iteration: %v", ErrScanRow, op, err)
	}

	return result, nil
}
