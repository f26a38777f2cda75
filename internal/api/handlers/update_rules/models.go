package update_rules

import (
	"encoding/json"

	"github.com/m04kA/SMC-SalonService/internal/service/rules/models"
)

// RuleRequest новое состояние правила
type RuleRequest struct {
	Key     string          `json:"key" validate:"required"`
	Enabled bool            `json:"enabled"`
	Value   json.RawMessage `json:"value,omitempty"`
}

// UpdateRulesRequest HTTP request model
type UpdateRulesRequest struct {
	Rules []RuleRequest `json:"rules" validate:"required,min=1,dive"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateRulesRequest) ToServiceRequest() *models.UpdateRulesRequest {
	updates := make([]models.RuleUpdate, 0, len(r.Rules))
	for _, rule := range r.Rules {
		updates = append(updates, models.RuleUpdate{
			Key:     rule.Key,
			Enabled: rule.Enabled,
			Value:   rule.Value,
		})
	}
	return &models.UpdateRulesRequest{Rules: updates}
}
