package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/service/rules/models"
)

// Service типизированный реестр правил бизнеса с кэшем снимков
type Service struct {
	ruleRepo RuleRepository
	cache    *cache.Cache
	logger   Logger
}

// NewService создает сервис правил; ttl - время жизни снимка правил в кэше
func NewService(ruleRepo RuleRepository, ttl time.Duration, logger Logger) *Service {
	cleanup := ttl * 2
	if ttl <= 0 {
		ttl = cache.NoExpiration
		cleanup = 0
	}
	return &Service{
		ruleRepo: ruleRepo,
		cache:    cache.New(ttl, cleanup),
		logger:   logger,
	}
}

func cacheKey(businessID int64) string {
	return strconv.FormatInt(businessID, 10)
}

// GetRuleSet возвращает снимок правил бизнеса.
// Каждый вызов получает собственную копию, кэшированный снимок наружу не отдается.
// Неизвестные и незаданные ключи трактуются как несуществующие правила.
func (s *Service) GetRuleSet(ctx context.Context, businessID int64) (domain.RuleSet, error) {
	if cached, found := s.cache.Get(cacheKey(businessID)); found {
		return cached.(domain.RuleSet).Clone(), nil
	}

	rules, err := s.ruleRepo.GetByBusiness(ctx, businessID)
	if err != nil {
		s.logger.Error("GetRuleSet: failed to load rules for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: %w: GetRuleSet - repository error: %v", ErrInternal, domain.ErrPersistence, err)
	}

	set := domain.NewRuleSet(rules)
	s.cache.Set(cacheKey(businessID), set, cache.DefaultExpiration)
	return set.Clone(), nil
}

// Invalidate удаляет снимок правил бизнеса из кэша
func (s *Service) Invalidate(businessID int64) {
	s.cache.Delete(cacheKey(businessID))
}

// GetRules возвращает все правила реестра для бизнеса
func (s *Service) GetRules(ctx context.Context, actor domain.Actor, businessID int64) (*models.RulesResponse, error) {
	s.logger.Info("GetRules: business=%d, actor=%d", businessID, actor.ID)

	if actor.BusinessID != businessID {
		s.logger.Warn("GetRules: actor=%d does not belong to business=%d", actor.ID, businessID)
		return nil, ErrAccessDenied
	}

	set, err := s.GetRuleSet(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return models.FromRuleSet(businessID, set), nil
}

// UpdateRules записывает правила бизнеса и сбрасывает кэш
// Запись неизвестного ключа - ошибка, в отличие от чтения
func (s *Service) UpdateRules(ctx context.Context, actor domain.Actor, businessID int64, req *models.UpdateRulesRequest) (*models.RulesResponse, error) {
	s.logger.Info("UpdateRules: business=%d, rules=%d, actor=%d", businessID, len(req.Rules), actor.ID)

	// 1. Права
	if actor.BusinessID != businessID || !actor.Permissions.HasPermission(domain.PermRulesManage) {
		s.logger.Warn("UpdateRules: actor=%d cannot manage rules of business=%d", actor.ID, businessID)
		return nil, ErrAccessDenied
	}
	if len(req.Rules) == 0 {
		return nil, fmt.Errorf("%w: no rules provided", ErrInvalidInput)
	}

	// 2. Валидация ключей и значений
	rules := make([]domain.BusinessRule, 0, len(req.Rules))
	seen := make(map[domain.RuleKey]struct{}, len(req.Rules))
	for _, u := range req.Rules {
		key := domain.RuleKey(u.Key)
		if !key.IsKnown() {
			s.logger.Warn("UpdateRules: unknown rule key=%s", u.Key)
			return nil, fmt.Errorf("%w: %q", ErrUnknownRule, u.Key)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate rule %q", ErrInvalidInput, u.Key)
		}
		seen[key] = struct{}{}

		rule := domain.BusinessRule{Key: key, Exists: true, Enabled: u.Enabled, Value: normalizeValue(u.Value)}
		if err := validateValue(rule); err != nil {
			s.logger.Warn("UpdateRules: invalid value for key=%s: %v", u.Key, err)
			return nil, err
		}
		rules = append(rules, rule)
	}

	// 3. Сохраняем и сбрасываем кэш
	if err := s.ruleRepo.Upsert(ctx, businessID, rules); err != nil {
		s.logger.Error("UpdateRules: failed to save rules for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: %w: UpdateRules - repository error: %v", ErrInternal, domain.ErrPersistence, err)
	}
	s.Invalidate(businessID)

	set, err := s.GetRuleSet(ctx, businessID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("UpdateRules: saved %d rules for business=%d", len(rules), businessID)
	return models.FromRuleSet(businessID, set), nil
}

func normalizeValue(v json.RawMessage) json.RawMessage {
	if len(v) == 0 || string(v) == "null" {
		return nil
	}
	return v
}

// validateValue проверяет значение для ключей, у которых оно имеет смысл
func validateValue(rule domain.BusinessRule) error {
	if len(rule.Value) == 0 {
		return nil
	}
	switch rule.Key {
	case domain.RuleEnableCancellation:
		hours, ok := rule.IntValue()
		if !ok || hours <= 0 {
			return fmt.Errorf("%w: %s expects a positive number of hours", ErrInvalidValue, rule.Key)
		}
	case domain.RuleCommissionMode:
		mode, ok := rule.StringValue()
		if !ok || !domain.CommissionMode(mode).IsValid() {
			return fmt.Errorf("%w: %s expects one of GENERAL, POR_SERVICIO, MIXTO", ErrInvalidValue, rule.Key)
		}
	default:
		if !json.Valid(rule.Value) {
			return fmt.Errorf("%w: %s value is not valid JSON", ErrInvalidValue, rule.Key)
		}
	}
	return nil
}
