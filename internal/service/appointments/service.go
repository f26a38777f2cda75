package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SalonService/internal/service/appointments/models"
)

// Service сервис переходов статусов и изменения записей
type Service struct {
	appointmentRepo AppointmentRepository
	rules           RuleProvider
	guards          Guards
	timeProvider    TimeProvider
	metrics         Metrics
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	rules RuleProvider,
	guards Guards,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		rules:           rules,
		guards:          guards,
		timeProvider:    &RealTimeProvider{},
		metrics:         metrics,
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByID получает запись по ID в рамках бизнеса пользователя
// Специалист без права просмотра видит только свои записи
func (s *Service) GetByID(ctx context.Context, actor domain.Actor, id int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for actor=%d", id, actor.ID)

	appt, err := s.loadScoped(ctx, "GetByID", actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.Permissions.HasPermission(domain.PermAppointmentsView) && appt.SpecialistID != actor.ID {
		s.logger.Warn("GetByID: actor=%d cannot view appointment id=%d", actor.ID, id)
		return nil, deny(GuardEdit, "you can only view your own appointments").Err()
	}

	return models.FromDomainAppointment(appt, NextStatuses(appt.Status)), nil
}

// List получает записи бизнеса пользователя
// Специалист без права просмотра получает только свои записи
func (s *Service) List(ctx context.Context, actor domain.Actor, req *models.ListRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("List: fetching appointments for business=%d, actor=%d", actor.BusinessID, actor.ID)

	filter, err := req.ToDomainFilter(actor.BusinessID)
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !actor.Permissions.HasPermission(domain.PermAppointmentsView) {
		own := actor.ID
		filter.SpecialistID = &own
	}

	list, err := s.appointmentRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error for business=%d: %v", actor.BusinessID, err)
		return nil, fmt.Errorf("%w: %w: List - repository error: %v", ErrInternal, domain.ErrPersistence, err)
	}

	resp := &models.AppointmentListResponse{
		Appointments: make([]models.AppointmentResponse, 0, len(list)),
		Total:        len(list),
	}
	for _, a := range list {
		resp.Appointments = append(resp.Appointments, *models.FromDomainAppointment(a, NextStatuses(a.Status)))
	}

	s.logger.Info("List: fetched %d appointments for business=%d", len(list), actor.BusinessID)
	return resp, nil
}

// Transition переводит запись в новый статус.
// Завершение возможно только через сценарий завершения записи (ErrUseCompletionWorkflow).
func (s *Service) Transition(ctx context.Context, actor domain.Actor, id int64, req *models.TransitionRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Transition: appointment id=%d to status=%s by actor=%d", id, req.Status, actor.ID)

	// 1. Валидация целевого статуса
	target, err := models.ToDomainStatus(req.Status)
	if err != nil {
		s.logger.Warn("Transition: unknown status=%s", req.Status)
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, req.Status)
	}
	if target == domain.StatusCompleted {
		return nil, ErrUseCompletionWorkflow
	}

	// 2. Получаем запись; чужая запись неотличима от несуществующей
	appt, err := s.loadScoped(ctx, "Transition", actor, id)
	if err != nil {
		return nil, err
	}
	from := appt.Status

	// 3. Проверяем граф переходов
	if err := CheckTransition(from, target); err != nil {
		s.logger.Warn("Transition: appointment id=%d: %v", id, err)
		s.metrics.ObserveTransition(string(from), string(target), "invalid")
		return nil, err
	}

	// 4. Guard и подготовка изменений
	now := s.timeProvider.Now()
	next := appt.Clone()
	next.Status = target

	var result GuardResult
	switch target {
	case domain.StatusCanceled:
		reason := ""
		if req.Reason != nil {
			reason = strings.TrimSpace(*req.Reason)
		}
		if reason == "" {
			return nil, fmt.Errorf("%w: cancellation reason is required", ErrInvalidInput)
		}
		if len(reason) > domain.MaxCancellationReasonLength {
			return nil, fmt.Errorf("%w: cancellation reason is too long", ErrInvalidInput)
		}

		rules, err := s.ruleSet(ctx, "Transition", appt.BusinessID)
		if err != nil {
			return nil, err
		}
		result = s.guards.CanCancel(actor, appt, rules, now)
		next.CancellationReason = &reason
		next.CanceledAt = &now
	default:
		result = s.guards.CanEdit(actor, appt)
	}

	if !result.Allowed {
		s.logger.Warn("Transition: %s denied for appointment id=%d: %s", result.Guard, id, result.Reason)
		s.metrics.ObserveGuardDenial(result.Guard)
		s.metrics.ObserveTransition(string(from), string(target), "denied")
		return nil, result.Err()
	}

	// 5. Сохраняем с проверкой версии
	updated, err := s.appointmentRepo.UpdateStatus(ctx, next, appt.Version)
	if err != nil {
		s.metrics.ObserveTransition(string(from), string(target), "error")
		return nil, s.mapWriteError("Transition", id, err)
	}

	s.metrics.ObserveTransition(string(from), string(target), "ok")
	s.logger.Info("Transition: appointment id=%d moved %s -> %s", id, from, target)
	return models.FromDomainAppointment(updated, NextStatuses(updated.Status)), nil
}

// Edit изменяет время или заметки записи
func (s *Service) Edit(ctx context.Context, actor domain.Actor, id int64, req *models.EditRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Edit: appointment id=%d by actor=%d", id, actor.ID)

	appt, err := s.loadScoped(ctx, "Edit", actor, id)
	if err != nil {
		return nil, err
	}

	if result := s.guards.CanEdit(actor, appt); !result.Allowed {
		s.logger.Warn("Edit: denied for appointment id=%d: %s", id, result.Reason)
		s.metrics.ObserveGuardDenial(result.Guard)
		return nil, result.Err()
	}

	next := appt.Clone()
	if req.StartTime != nil {
		next.StartTime = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		next.EndTime = req.EndTime.UTC()
	}
	if !next.EndTime.After(next.StartTime) {
		s.logger.Warn("Edit: end time must be after start time for appointment id=%d", id)
		return nil, fmt.Errorf("%w: endTime must be after startTime", ErrInvalidInput)
	}
	if req.Notes != nil {
		if len(*req.Notes) > domain.MaxNotesLength {
			return nil, fmt.Errorf("%w: notes are too long", ErrInvalidInput)
		}
		next.Notes = req.Notes
	}

	updated, err := s.appointmentRepo.Update(ctx, next, appt.Version)
	if err != nil {
		return nil, s.mapWriteError("Edit", id, err)
	}

	s.logger.Info("Edit: appointment id=%d updated", id)
	return models.FromDomainAppointment(updated, NextStatuses(updated.Status)), nil
}

func (s *Service) load(ctx context.Context, op string, id int64) (*domain.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%d not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %w: %s - repository error: %v", ErrInternal, domain.ErrPersistence, op, err)
	}
	return appt, nil
}

// loadScoped загружает запись и скрывает записи других бизнесов за ErrAppointmentNotFound
func (s *Service) loadScoped(ctx context.Context, op string, actor domain.Actor, id int64) (*domain.Appointment, error) {
	appt, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if appt.BusinessID != actor.BusinessID {
		s.logger.Warn("%s: appointment id=%d belongs to another business", op, id)
		return nil, ErrAppointmentNotFound
	}
	return appt, nil
}

func (s *Service) ruleSet(ctx context.Context, op string, businessID int64) (domain.RuleSet, error) {
	rules, err := s.rules.GetRuleSet(ctx, businessID)
	if err != nil {
		s.logger.Error("%s: failed to load rules for business=%d: %v", op, businessID, err)
		return nil, fmt.Errorf("%w: %s - load rules: %v", ErrInternal, op, err)
	}
	return rules, nil
}

func (s *Service) mapWriteError(op string, id int64, err error) error {
	if errors.Is(err, appointmentRepo.ErrVersionConflict) {
		s.logger.Warn("%s: version conflict for appointment id=%d", op, id)
		return ErrVersionConflict
	}
	s.logger.Error("%s: failed to update appointment id=%d: %v", op, id, err)
	return fmt.Errorf("%w: %w: %s - update: %v", ErrInternal, domain.ErrPersistence, op, err)
}
