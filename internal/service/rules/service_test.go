package rules

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/service/rules/models"
)

type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) GetByBusiness(ctx context.Context, businessID int64) ([]domain.BusinessRule, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BusinessRule), args.Error(1)
}

func (m *MockRuleRepository) Upsert(ctx context.Context, businessID int64, rules []domain.BusinessRule) error {
	args := m.Called(ctx, businessID, rules)
	return args.Error(0)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func admin() domain.Actor {
	return domain.Actor{ID: 1, BusinessID: 10, Role: domain.RoleBusinessAdmin, Permissions: domain.NewPermissionSet(domain.RoleBusinessAdmin)}
}

func TestGetRuleSet_CachesSnapshot(t *testing.T) {
	repo := new(MockRuleRepository)
	svc := NewService(repo, time.Minute, nopLogger{})
	ctx := context.Background()

	repo.On("GetByBusiness", ctx, int64(10)).Return([]domain.BusinessRule{
		{Key: domain.RuleRequiresFullPayment, Enabled: true},
	}, nil).Once()

	first, err := svc.GetRuleSet(ctx, 10)
	require.NoError(t, err)
	second, err := svc.GetRuleSet(ctx, 10)
	require.NoError(t, err)

	assert.True(t, first.IsActive(domain.RuleRequiresFullPayment))
	assert.True(t, second.IsActive(domain.RuleRequiresFullPayment))
	assert.False(t, second.Check(domain.RuleRequiresEvidencePhotos).Exists)
	assert.False(t, second.Check("someUnknownKey").Exists)
	repo.AssertNumberOfCalls(t, "GetByBusiness", 1)
}

func TestGetRuleSet_CallersGetIndependentCopies(t *testing.T) {
	repo := new(MockRuleRepository)
	svc := NewService(repo, time.Minute, nopLogger{})
	ctx := context.Background()

	repo.On("GetByBusiness", ctx, int64(10)).Return([]domain.BusinessRule{
		{Key: domain.RuleEnableCancellation, Enabled: true, Value: json.RawMessage(`24`)},
	}, nil).Once()

	first, err := svc.GetRuleSet(ctx, 10)
	require.NoError(t, err)

	delete(first, domain.RuleEnableCancellation)
	first[domain.RuleRequiresFullPayment] = domain.BusinessRule{Key: domain.RuleRequiresFullPayment, Exists: true, Enabled: true}

	second, err := svc.GetRuleSet(ctx, 10)
	require.NoError(t, err)

	assert.True(t, second.IsActive(domain.RuleEnableCancellation))
	assert.False(t, second.Check(domain.RuleRequiresFullPayment).Exists)

	second[domain.RuleEnableCancellation].Value[0] = '9'
	third, err := svc.GetRuleSet(ctx, 10)
	require.NoError(t, err)
	hours, ok := third.Check(domain.RuleEnableCancellation).IntValue()
	assert.True(t, ok)
	assert.Equal(t, 24, hours)
	repo.AssertNumberOfCalls(t, "GetByBusiness", 1)
}

func TestGetRuleSet_RepositoryError(t *testing.T) {
	repo := new(MockRuleRepository)
	svc := NewService(repo, time.Minute, nopLogger{})
	repo.On("GetByBusiness", mock.Anything, int64(10)).Return(nil, errors.New("timeout"))

	_, err := svc.GetRuleSet(context.Background(), 10)

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestUpdateRules_InvalidatesCache(t *testing.T) {
	repo := new(MockRuleRepository)
	svc := NewService(repo, time.Minute, nopLogger{})
	ctx := context.Background()

	repo.On("GetByBusiness", ctx, int64(10)).Return([]domain.BusinessRule{}, nil).Once()
	_, err := svc.GetRuleSet(ctx, 10)
	require.NoError(t, err)

	repo.On("Upsert", ctx, int64(10), mock.MatchedBy(func(rules []domain.BusinessRule) bool {
		return len(rules) == 2 && rules[0].Key == domain.RuleEnableCancellation && rules[0].Exists
	})).Return(nil).Once()
	repo.On("GetByBusiness", ctx, int64(10)).Return([]domain.BusinessRule{
		{Key: domain.RuleEnableCancellation, Enabled: true, Value: json.RawMessage(`48`)},
		{Key: domain.RuleCommissionMode, Enabled: true, Value: json.RawMessage(`"MIXTO"`)},
	}, nil).Once()

	resp, err := svc.UpdateRules(ctx, admin(), 10, &models.UpdateRulesRequest{Rules: []models.RuleUpdate{
		{Key: "enableCancellation", Enabled: true, Value: json.RawMessage(`48`)},
		{Key: "commissionMode", Enabled: true, Value: json.RawMessage(`"MIXTO"`)},
	}})

	require.NoError(t, err)
	assert.Equal(t, "MIXTO", resp.CommissionMode)
	assert.Len(t, resp.Rules, len(domain.KnownRuleKeys))
	repo.AssertExpectations(t)
}

func TestUpdateRules_Validation(t *testing.T) {
	tests := []struct {
		name   string
		update models.RuleUpdate
		err    error
	}{
		{"unknown key", models.RuleUpdate{Key: "allowTips", Enabled: true}, ErrUnknownRule},
		{"negative hours", models.RuleUpdate{Key: "enableCancellation", Enabled: true, Value: json.RawMessage(`-1`)}, ErrInvalidValue},
		{"bad mode", models.RuleUpdate{Key: "commissionMode", Enabled: true, Value: json.RawMessage(`"HALF"`)}, ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRuleRepository)
			svc := NewService(repo, time.Minute, nopLogger{})

			_, err := svc.UpdateRules(context.Background(), admin(), 10, &models.UpdateRulesRequest{Rules: []models.RuleUpdate{tt.update}})

			assert.ErrorIs(t, err, tt.err)
			repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateRules_AccessDenied(t *testing.T) {
	repo := new(MockRuleRepository)
	svc := NewService(repo, time.Minute, nopLogger{})
	receptionist := domain.Actor{ID: 2, BusinessID: 10, Role: domain.RoleReceptionist, Permissions: domain.NewPermissionSet(domain.RoleReceptionist)}

	_, err := svc.UpdateRules(context.Background(), receptionist, 10, &models.UpdateRulesRequest{
		Rules: []models.RuleUpdate{{Key: "enableCancellation", Enabled: false}},
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.UpdateRules(context.Background(), admin(), 11, &models.UpdateRulesRequest{
		Rules: []models.RuleUpdate{{Key: "enableCancellation", Enabled: false}},
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}
