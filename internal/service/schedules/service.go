package schedules

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	branchRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/branch"
	"github.com/m04kA/SMC-SalonService/internal/service/schedules/models"
)

// Service сервис для работы с расписаниями специалистов
type Service struct {
	scheduleRepo ScheduleRepository
	branchRepo   BranchRepository
	txManager    TransactionManager
	metrics      Metrics
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	scheduleRepo ScheduleRepository,
	branchRepo BranchRepository,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		branchRepo:   branchRepo,
		txManager:    txManager,
		metrics:      metrics,
		logger:       logger,
	}
}

// GetWeek возвращает недельное расписание специалиста в филиале
func (s *Service) GetWeek(ctx context.Context, actor domain.Actor, specialistID, branchID int64) (*models.SaveWeekResponse, error) {
	s.logger.Info("GetWeek: specialist=%d, branch=%d, actor=%d", specialistID, branchID, actor.ID)

	if _, err := s.getBranch(ctx, actor, branchID); err != nil {
		return nil, err
	}
	// Свое расписание видно всегда, чужое только с правом управления расписаниями
	if actor.ID != specialistID && !actor.Permissions.HasPermission(domain.PermSchedulesManage) {
		s.logger.Warn("GetWeek: actor=%d cannot view schedule of specialist=%d", actor.ID, specialistID)
		return nil, ErrAccessDenied
	}

	days, err := s.scheduleRepo.GetByBranch(ctx, specialistID, branchID)
	if err != nil {
		s.logger.Error("GetWeek: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetWeek - repository error: %v", ErrInternal, err)
	}

	return &models.SaveWeekResponse{
		SpecialistID: specialistID,
		BranchID:     branchID,
		Saved:        true,
		Errors:       []domain.ValidationError{},
		Days:         models.FromDomainWeek(domain.ToWeekMap(days)),
	}, nil
}

// Check проверяет расписание без сохранения
// Используется UI для показа всех проблем до отправки
func (s *Service) Check(ctx context.Context, actor domain.Actor, req *models.SaveWeekRequest) (*models.SaveWeekResponse, error) {
	s.logger.Info("CheckWeek: specialist=%d, branch=%d", req.SpecialistID, req.BranchID)

	candidate, err := s.prepare(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	var errs []domain.ValidationError
	err = s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		errs, err = s.validateAgainstPersisted(txCtx, req, candidate)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.response(req, candidate, errs, false), nil
}

// SaveWeek проверяет и сохраняет недельное расписание специалиста в филиале.
// Проверка повторяется внутри сериализуемой транзакции против актуального состояния БД,
// записи по одной паре (специалист, день недели) сериализуются advisory-блокировкой.
func (s *Service) SaveWeek(ctx context.Context, actor domain.Actor, req *models.SaveWeekRequest) (*models.SaveWeekResponse, error) {
	s.logger.Info("SaveWeek: specialist=%d, branch=%d, days=%d, actor=%d",
		req.SpecialistID, req.BranchID, len(req.Days), actor.ID)

	// 1. Права и конвертация запроса
	candidate, err := s.prepare(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	var errs []domain.ValidationError

	// 2. Блокировки, повторная проверка и сохранение в одной транзакции
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Блокируем (специалист, день) в порядке дней недели
		for _, weekday := range domain.Weekdays {
			if _, ok := candidate[weekday]; !ok {
				continue
			}
			if err := s.scheduleRepo.LockSpecialistWeekday(txCtx, req.SpecialistID, weekday); err != nil {
				s.logger.Error("SaveWeek: failed to lock specialist=%d weekday=%s: %v", req.SpecialistID, weekday, err)
				return fmt.Errorf("%w: SaveWeek - lock: %v", ErrInternal, err)
			}
		}

		// 2.2. Проверяем против текущего состояния
		var err error
		errs, err = s.validateAgainstPersisted(txCtx, req, candidate)
		if err != nil {
			return err
		}
		if len(errs) > 0 {
			return nil
		}

		// 2.3. Сохраняем
		if err := s.scheduleRepo.ReplaceWeek(txCtx, req.SpecialistID, req.BranchID, models.WeekToList(candidate)); err != nil {
			s.logger.Error("SaveWeek: failed to save schedule: %v", err)
			return fmt.Errorf("%w: %w: SaveWeek - save: %v", ErrInternal, domain.ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(errs) > 0 {
		s.logger.Warn("SaveWeek: schedule rejected, specialist=%d, branch=%d, errors=%d",
			req.SpecialistID, req.BranchID, len(errs))
		return s.response(req, candidate, errs, false), nil
	}

	s.logger.Info("SaveWeek: schedule saved, specialist=%d, branch=%d", req.SpecialistID, req.BranchID)
	return s.response(req, candidate, nil, true), nil
}

// prepare проверяет права и конвертирует запрос
func (s *Service) prepare(ctx context.Context, actor domain.Actor, req *models.SaveWeekRequest) (domain.WeekMap[domain.DaySchedule], error) {
	if !actor.Permissions.HasPermission(domain.PermSchedulesManage) {
		s.logger.Warn("SaveWeek: actor=%d has no %s permission", actor.ID, domain.PermSchedulesManage)
		return nil, ErrAccessDenied
	}
	if req.SpecialistID <= 0 || req.BranchID <= 0 {
		return nil, fmt.Errorf("%w: specialistId and branchId are required", ErrInvalidInput)
	}
	if _, err := s.getBranch(ctx, actor, req.BranchID); err != nil {
		return nil, err
	}

	candidate, err := req.ToDomain()
	if err != nil {
		s.logger.Warn("SaveWeek: invalid request: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return candidate, nil
}

// validateAgainstPersisted перечитывает часы работы и расписания других филиалов и запускает валидатор
func (s *Service) validateAgainstPersisted(
	ctx context.Context,
	req *models.SaveWeekRequest,
	candidate domain.WeekMap[domain.DaySchedule],
) ([]domain.ValidationError, error) {
	branch, err := s.branchRepo.GetByID(ctx, req.BranchID)
	if err != nil {
		if errors.Is(err, branchRepo.ErrBranchNotFound) {
			return nil, ErrBranchNotFound
		}
		s.logger.Error("SaveWeek: failed to get branch id=%d: %v", req.BranchID, err)
		return nil, fmt.Errorf("%w: failed to get branch: %v", ErrInternal, err)
	}

	others, err := s.scheduleRepo.GetOtherBranches(ctx, req.SpecialistID, req.BranchID)
	if err != nil {
		s.logger.Error("SaveWeek: failed to get other branches for specialist=%d: %v", req.SpecialistID, err)
		return nil, fmt.Errorf("%w: failed to get other branches: %v", ErrInternal, err)
	}

	errs := Validate(candidate, branch.OperatingHours, others)
	if len(errs) > 0 {
		s.metrics.ObserveScheduleErrors(domain.ValidationErrors(errs).Codes())
	}
	return errs, nil
}

func (s *Service) getBranch(ctx context.Context, actor domain.Actor, branchID int64) (*domain.Branch, error) {
	branch, err := s.branchRepo.GetByID(ctx, branchID)
	if err != nil {
		if errors.Is(err, branchRepo.ErrBranchNotFound) {
			s.logger.Warn("SaveWeek: branch id=%d not found", branchID)
			return nil, ErrBranchNotFound
		}
		s.logger.Error("SaveWeek: failed to get branch id=%d: %v", branchID, err)
		return nil, fmt.Errorf("%w: failed to get branch: %v", ErrInternal, err)
	}
	if branch.BusinessID != actor.BusinessID {
		s.logger.Warn("SaveWeek: branch id=%d belongs to business=%d, actor business=%d",
			branchID, branch.BusinessID, actor.BusinessID)
		return nil, ErrAccessDenied
	}
	return branch, nil
}

func (s *Service) response(
	req *models.SaveWeekRequest,
	candidate domain.WeekMap[domain.DaySchedule],
	errs []domain.ValidationError,
	saved bool,
) *models.SaveWeekResponse {
	if errs == nil {
		errs = []domain.ValidationError{}
	}
	return &models.SaveWeekResponse{
		SpecialistID: req.SpecialistID,
		BranchID:     req.BranchID,
		Saved:        saved,
		Errors:       errs,
		Days:         models.FromDomainWeek(candidate),
	}
}
