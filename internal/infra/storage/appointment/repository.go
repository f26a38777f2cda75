package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonService/pkg/psqlbuilder"
)

const table = "appointments"

var columns = []string{
	"id",
	"business_id",
	"branch_id",
	"specialist_id",
	"client_id",
	"service_id",
	"start_time",
	"end_time",
	"status",
	"total_amount",
	"paid_amount",
	"has_consent",
	"evidence_photos",
	"requires_consent",
	"requires_evidence",
	"requires_payment",
	"notes",
	"cancellation_reason",
	"canceled_at",
	"completed_at",
	"version",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с записями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись
// Если в контексте передана активная транзакция, использует её
func (r *Repository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"business_id",
			"branch_id",
			"specialist_id",
			"client_id",
			"service_id",
			"start_time",
			"end_time",
			"status",
			"total_amount",
			"paid_amount",
			"has_consent",
			"evidence_photos",
			"requires_consent",
			"requires_evidence",
			"requires_payment",
			"notes",
		).
		Values(
			appt.BusinessID,
			appt.BranchID,
			appt.SpecialistID,
			appt.ClientID,
			appt.ServiceID,
			appt.StartTime,
			appt.EndTime,
			appt.Status,
			appt.TotalAmount,
			appt.PaidAmount,
			appt.HasConsent,
			pq.Array(photos(appt.EvidencePhotos)),
			appt.RequiresConsent,
			appt.RequiresEvidence,
			appt.RequiresPayment,
			appt.Notes,
		).
		Suffix("RETURNING id, version, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&appt.ID,
		&appt.Version,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return appt, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	appt, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}

	return appt, nil
}

// List получает записи бизнеса по фильтру, отсортированные по времени начала
func (r *Repository) List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"business_id": filter.BusinessID}).
		OrderBy("start_time ASC", "id ASC")

	if filter.BranchID != nil {
		builder = builder.Where(squirrel.Eq{"branch_id": *filter.BranchID})
	}
	if filter.SpecialistID != nil {
		builder = builder.Where(squirrel.Eq{"specialist_id": *filter.SpecialistID})
	}
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.From != nil {
		builder = builder.Where(squirrel.GtOrEq{"start_time": *filter.From})
	}
	if filter.To != nil {
		builder = builder.Where(squirrel.Lt{"start_time": *filter.To})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var result []*domain.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan appointment: %v", ErrScanRow, err)
		}
		result = append(result, appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows iteration: %v", ErrScanRow, err)
	}

	return result, nil
}

// HasOverlap проверяет, есть ли у специалиста незавершенная или завершенная запись,
// пересекающаяся с интервалом [start, end). Отмененные записи не учитываются.
func (r *Repository) HasOverlap(ctx context.Context, specialistID int64, start, end time.Time) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From(table).
		Where(squirrel.Eq{"specialist_id": specialistID}).
		Where(squirrel.NotEq{"status": domain.StatusCanceled}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start}).
		Limit(1).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: HasOverlap - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: HasOverlap - execute select: %v", ErrExecQuery, err)
	}

	return true, nil
}

// UpdateStatus сохраняет статус записи и поля отмены.
// Обновление проходит только при совпадении версии, версия увеличивается на 1.
func (r *Repository) UpdateStatus(ctx context.Context, appt *domain.Appointment, expectedVersion int64) (*domain.Appointment, error) {
	return r.update(ctx, "UpdateStatus", appt.ID, expectedVersion, map[string]interface{}{
		"status":              appt.Status,
		"cancellation_reason": appt.CancellationReason,
		"canceled_at":         appt.CanceledAt,
	})
}

// Update сохраняет редактируемые поля записи (время, заметки, согласие) с проверкой версии
func (r *Repository) Update(ctx context.Context, appt *domain.Appointment, expectedVersion int64) (*domain.Appointment, error) {
	return r.update(ctx, "Update", appt.ID, expectedVersion, map[string]interface{}{
		"start_time":  appt.StartTime,
		"end_time":    appt.EndTime,
		"notes":       appt.Notes,
		"has_consent": appt.HasConsent,
	})
}

// Complete переводит запись в COMPLETED вместе с оплаченной суммой и фото с проверкой версии
func (r *Repository) Complete(ctx context.Context, appt *domain.Appointment, expectedVersion int64) (*domain.Appointment, error) {
	return r.update(ctx, "Complete", appt.ID, expectedVersion, map[string]interface{}{
		"status":          appt.Status,
		"paid_amount":     appt.PaidAmount,
		"evidence_photos": pq.Array(photos(appt.EvidencePhotos)),
		"completed_at":    appt.CompletedAt,
	})
}

func (r *Repository) update(ctx context.Context, op string, id, expectedVersion int64, fields map[string]interface{}) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		SetMap(fields).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "version": expectedVersion}).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	appt, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		// Строка не обновлена: либо записи нет, либо версия устарела
		if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, ErrAppointmentNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, ErrVersionConflict
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	return appt, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var (
		appt       domain.Appointment
		evidence   pq.StringArray
		notes      sql.NullString
		reason     sql.NullString
		canceledAt sql.NullTime
		completed  sql.NullTime
	)

	err := row.Scan(
		&appt.ID,
		&appt.BusinessID,
		&appt.BranchID,
		&appt.SpecialistID,
		&appt.ClientID,
		&appt.ServiceID,
		&appt.StartTime,
		&appt.EndTime,
		&appt.Status,
		&appt.TotalAmount,
		&appt.PaidAmount,
		&appt.HasConsent,
		&evidence,
		&appt.RequiresConsent,
		&appt.RequiresEvidence,
		&appt.RequiresPayment,
		&notes,
		&reason,
		&canceledAt,
		&completed,
		&appt.Version,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	appt.StartTime = appt.StartTime.UTC()
	appt.EndTime = appt.EndTime.UTC()
	appt.EvidencePhotos = []string(evidence)
	if notes.Valid {
		appt.Notes = &notes.String
	}
	if reason.Valid {
		appt.CancellationReason = &reason.String
	}
	if canceledAt.Valid {
		appt.CanceledAt = &canceledAt.Time
	}
	if completed.Valid {
		appt.CompletedAt = &completed.Time
	}

	return &appt, nil
}

// photos нормализует nil в пустой массив, чтобы колонка text[] не получала NULL
func photos(p []string) []string {
	if p == nil {
		return []string{}
	}
	return p
}
