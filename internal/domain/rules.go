package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RuleKey identifies a business-configurable rule
type RuleKey string

const (
	RuleSpecialistCanCreate          RuleKey = "canSpecialistCreateAppointments"
	RuleEnableCancellation           RuleKey = "enableCancellation"
	RuleRequiresConsentForCompletion RuleKey = "requiresConsentForCompletion"
	RuleRequiresEvidencePhotos       RuleKey = "requiresEvidencePhotos"
	RuleRequiresFullPayment          RuleKey = "requiresFullPayment"
	RuleCommissionMode               RuleKey = "commissionMode"
)

// KnownRuleKeys registry of rule keys understood by the service
var KnownRuleKeys = []RuleKey{
	RuleSpecialistCanCreate,
	RuleEnableCancellation,
	RuleRequiresConsentForCompletion,
	RuleRequiresEvidencePhotos,
	RuleRequiresFullPayment,
	RuleCommissionMode,
}

// IsKnown returns true if the key is part of the registry
func (k RuleKey) IsKnown() bool {
	for _, known := range KnownRuleKeys {
		if k == known {
			return true
		}
	}
	return false
}

// BusinessRule is a named flag/value pair configured by a business
type BusinessRule struct {
	Key     RuleKey         `json:"key"`
	Exists  bool            `json:"exists"`
	Enabled bool            `json:"enabled"`
	Value   json.RawMessage `json:"value,omitempty"`
}

// IsActive returns true if the rule exists and is enabled
func (r BusinessRule) IsActive() bool {
	return r.Exists && r.Enabled
}

// IntValue parses the value as an integer (JSON number or numeric string)
func (r BusinessRule) IntValue() (int, bool) {
	if len(r.Value) == 0 {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(r.Value, &n); err == nil {
		return int(n), true
	}
	var s string
	if err := json.Unmarshal(r.Value, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v, true
		}
	}
	return 0, false
}

// StringValue parses the value as a JSON string
func (r BusinessRule) StringValue() (string, bool) {
	if len(r.Value) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(r.Value, &s); err != nil {
		return "", false
	}
	return s, true
}

// RuleSet is an immutable snapshot of a business's rules
type RuleSet map[RuleKey]BusinessRule

// NewRuleSet builds a snapshot from a rule list; later duplicates win
func NewRuleSet(rules []BusinessRule) RuleSet {
	set := make(RuleSet, len(rules))
	for _, r := range rules {
		r.Exists = true
		set[r.Key] = r
	}
	return set
}

// Clone returns an independent copy of the snapshot
func (s RuleSet) Clone() RuleSet {
	if s == nil {
		return nil
	}
	c := make(RuleSet, len(s))
	for k, r := range s {
		if r.Value != nil {
			r.Value = append(json.RawMessage(nil), r.Value...)
		}
		c[k] = r
	}
	return c
}

// Check returns the rule for key; unknown or missing keys yield a rule that does not exist
func (s RuleSet) Check(key RuleKey) BusinessRule {
	if r, ok := s[key]; ok {
		return r
	}
	return BusinessRule{Key: key}
}

// IsActive shortcut for Check(key).IsActive()
func (s RuleSet) IsActive(key RuleKey) bool {
	return s.Check(key).IsActive()
}

// CommissionMode returns the configured mode, GENERAL when unset or invalid
func (s RuleSet) CommissionMode() CommissionMode {
	rule := s.Check(RuleCommissionMode)
	if !rule.IsActive() {
		return CommissionModeGeneral
	}
	v, ok := rule.StringValue()
	if !ok {
		return CommissionModeGeneral
	}
	mode := CommissionMode(strings.ToUpper(strings.TrimSpace(v)))
	if !mode.IsValid() {
		return CommissionModeGeneral
	}
	return mode
}
