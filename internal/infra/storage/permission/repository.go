package permission

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonService/pkg/psqlbuilder"
)

// Repository репозиторий прав ролей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория прав
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetRolePermissions получает права роли в бизнесе
func (r *Repository) GetRolePermissions(ctx context.Context, businessID int64, role domain.Role) ([]domain.Permission, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("permission").
		From("role_permissions").
		Where(squirrel.Eq{"business_id": businessID, "role": role}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetRolePermissions - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetRolePermissions - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var result []domain.Permission
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("%w: GetRolePermissions - scan permission: %v", ErrScanRow, err)
		}
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetRolePermissions - rows iteration: %v", ErrScanRow, err)
	}

	return result, nil
}
