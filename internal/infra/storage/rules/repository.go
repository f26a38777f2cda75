package rules

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonService/pkg/psqlbuilder"
)

const table = "business_rules"

// Repository репозиторий правил бизнеса
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория правил
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByBusiness получает все сохраненные правила бизнеса, включая неизвестные ключи
func (r *Repository) GetByBusiness(ctx context.Context, businessID int64) ([]domain.BusinessRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("rule_key", "enabled", "value").
		From(table).
		Where(squirrel.Eq{"business_id": businessID}).
		OrderBy("rule_key ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByBusiness - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBusiness - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	var result []domain.BusinessRule
	for rows.Next() {
		var (
			rule  domain.BusinessRule
			value []byte
		)
		if err := rows.Scan(&rule.Key, &rule.Enabled, &value); err != nil {
			return nil, fmt.Errorf("%w: GetByBusiness - scan rule: %v", ErrScanRow, err)
		}
		rule.Exists = true
		if len(value) > 0 {
			rule.Value = json.RawMessage(value)
		}
		result = append(result, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByBusiness - rows iteration: %v", ErrScanRow, err)
	}

	return result, nil
}

// Upsert создает или обновляет правила бизнеса одним запросом
func (r *Repository) Upsert(ctx context.Context, businessID int64, rules []domain.BusinessRule) error {
	if len(rules) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insert := psqlbuilder.Insert(table).
		Columns("business_id", "rule_key", "enabled", "value")
	for _, rule := range rules {
		var value interface{}
		if len(rule.Value) > 0 {
			value = string(rule.Value)
		}
		insert = insert.Values(businessID, rule.Key, rule.Enabled, value)
	}

	query, args, err := insert.
		Suffix("ON CONFLICT (business_id, rule_key) DO UPDATE SET enabled = EXCLUDED.enabled, value = EXCLUDED.value, updated_at = NOW()").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}
