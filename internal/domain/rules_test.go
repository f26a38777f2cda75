package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRuleSet_Check(t *testing.T) {
	set := NewRuleSet([]BusinessRule{
		{Key: RuleEnableCancellation, Enabled: true},
		{Key: RuleRequiresEvidencePhotos, Enabled: false},
	})

	assert.True(t, set.IsActive(RuleEnableCancellation))
	assert.False(t, set.IsActive(RuleRequiresEvidencePhotos))
	assert.True(t, set.Check(RuleRequiresEvidencePhotos).Exists)

	missing := set.Check(RuleRequiresFullPayment)
	assert.False(t, missing.Exists)
	assert.False(t, missing.IsActive())
	assert.Equal(t, RuleRequiresFullPayment, missing.Key)
}

func TestRuleSet_CommissionMode(t *testing.T) {
	tests := []struct {
		name  string
		rules []BusinessRule
		want  CommissionMode
	}{
		{name: "unset", want: CommissionModeGeneral},
		{
			name:  "per service",
			rules: []BusinessRule{{Key: RuleCommissionMode, Enabled: true, Value: json.RawMessage(`"POR_SERVICIO"`)}},
			want:  CommissionModePerService,
		},
		{
			name:  "lower case mixed",
			rules: []BusinessRule{{Key: RuleCommissionMode, Enabled: true, Value: json.RawMessage(`" mixto "`)}},
			want:  CommissionModeMixed,
		},
		{
			name:  "disabled rule",
			rules: []BusinessRule{{Key: RuleCommissionMode, Enabled: false, Value: json.RawMessage(`"MIXTO"`)}},
			want:  CommissionModeGeneral,
		},
		{
			name:  "unknown value",
			rules: []BusinessRule{{Key: RuleCommissionMode, Enabled: true, Value: json.RawMessage(`"TIERED"`)}},
			want:  CommissionModeGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewRuleSet(tt.rules).CommissionMode())
		})
	}
}

func TestBusinessRule_IntValue(t *testing.T) {
	v, ok := BusinessRule{Value: json.RawMessage(`3`)}.IntValue()
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	v, ok = BusinessRule{Value: json.RawMessage(`" 5 "`)}.IntValue()
	assert.True(t, ok)
	assert.Equal(t, 5, v)

	_, ok = BusinessRule{Value: json.RawMessage(`"x"`)}.IntValue()
	assert.False(t, ok)

	_, ok = BusinessRule{}.IntValue()
	assert.False(t, ok)
}

func TestRuleKey_IsKnown(t *testing.T) {
	assert.True(t, RuleCommissionMode.IsKnown())
	assert.False(t, RuleKey("allowOverbooking").IsKnown())
}

func TestAppointment_Amounts(t *testing.T) {
	appt := &Appointment{
		TotalAmount:    decimal.RequireFromString("100"),
		PaidAmount:     decimal.RequireFromString("40"),
		EvidencePhotos: []string{"a.jpg"},
	}

	assert.False(t, appt.IsFullyPaid())
	assert.True(t, appt.OutstandingAmount().Equal(decimal.RequireFromString("60")))

	clone := appt.Clone()
	clone.EvidencePhotos[0] = "b.jpg"
	assert.Equal(t, "a.jpg", appt.EvidencePhotos[0])

	appt.PaidAmount = decimal.RequireFromString("120")
	assert.True(t, appt.IsFullyPaid())
	assert.True(t, appt.OutstandingAmount().IsZero())
}

func TestRuleSet_Clone(t *testing.T) {
	set := NewRuleSet([]BusinessRule{{Key: RuleCommissionMode, Enabled: true, Value: json.RawMessage(`"MIXTO"`)}})

	clone := set.Clone()
	clone[RuleCommissionMode].Value[1] = 'X'
	delete(clone, RuleCommissionMode)

	assert.Equal(t, CommissionModeMixed, set.CommissionMode())
	assert.Nil(t, RuleSet(nil).Clone())
}
