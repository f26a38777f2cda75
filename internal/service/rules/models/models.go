package models

import (
	"encoding/json"

	"github.com/m04kA/SMC-SalonService/internal/domain"
)

// Request модели

// RuleUpdate новое состояние одного правила
type RuleUpdate struct {
	Key     string          `json:"key"`
	Enabled bool            `json:"enabled"`
	Value   json.RawMessage `json:"value,omitempty"`
}

// UpdateRulesRequest запрос на изменение правил бизнеса
type UpdateRulesRequest struct {
	Rules []RuleUpdate `json:"rules"`
}

// Response модели

// RuleResponse правило бизнеса
type RuleResponse struct {
	Key     string          `json:"key"`
	Exists  bool            `json:"exists"`
	Enabled bool            `json:"enabled"`
	Value   json.RawMessage `json:"value,omitempty"`
}

// RulesResponse все правила реестра для бизнеса
type RulesResponse struct {
	BusinessID     int64          `json:"businessId"`
	CommissionMode string         `json:"commissionMode"`
	Rules          []RuleResponse `json:"rules"`
}

// FromRuleSet формирует ответ по всем известным ключам, включая незаданные
func FromRuleSet(businessID int64, set domain.RuleSet) *RulesResponse {
	resp := &RulesResponse{
		BusinessID:     businessID,
		CommissionMode: string(set.CommissionMode()),
		Rules:          make([]RuleResponse, 0, len(domain.KnownRuleKeys)),
	}
	for _, key := range domain.KnownRuleKeys {
		r := set.Check(key)
		resp.Rules = append(resp.Rules, RuleResponse{
			Key:     string(key),
			Exists:  r.Exists,
			Enabled: r.Enabled,
			Value:   r.Value,
		})
	}
	return resp
}
