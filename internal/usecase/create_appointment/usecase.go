package create_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	branchRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/branch"
	catalogRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-SalonService/internal/service/appointments"
)

// UseCase use case для создания записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	serviceRepo     ServiceRepository
	branchRepo      BranchRepository
	rules           RuleProvider
	guards          appointments.Guards
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	serviceRepo ServiceRepository,
	branchRepo BranchRepository,
	rules RuleProvider,
	guards appointments.Guards,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		serviceRepo:     serviceRepo,
		branchRepo:      branchRepo,
		rules:           rules,
		guards:          guards,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания записи
// Запись создается в статусе PENDING, пересечения у специалиста проверяются в сериализуемой транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: actor=%d, business=%d, branch=%d, specialist=%d, service=%d, start=%s",
		req.Actor.ID, req.Actor.BusinessID, req.BranchID, req.SpecialistID, req.ServiceID, req.StartTime.Format("2006-01-02T15:04Z07:00"))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()
	if err := validateNotInPast(req.StartTime, now); err != nil {
		uc.logger.Warn("CreateAppointment: %v", err)
		return nil, err
	}

	// 3. Правила бизнеса и guard создания
	rules, err := uc.rules.GetRuleSet(ctx, req.Actor.BusinessID)
	if err != nil {
		uc.logger.Error("CreateAppointment: failed to load rules: %v", err)
		return nil, fmt.Errorf("%w: failed to load rules: %v", ErrInternal, err)
	}
	if result := uc.guards.CanCreate(req.Actor, rules); !result.Allowed {
		uc.logger.Warn("CreateAppointment: denied: %s", result.Reason)
		return nil, fmt.Errorf("%w: %w", ErrDenied, domain.ValidationError{Code: domain.CodeGuardDenied, Message: result.Reason})
	}

	// 4. Специалист создает записи только себе
	if req.Actor.IsSpecialist() && req.SpecialistID != req.Actor.ID {
		uc.logger.Warn("CreateAppointment: specialist=%d tried to book specialist=%d", req.Actor.ID, req.SpecialistID)
		return nil, fmt.Errorf("%w: %w", ErrDenied, domain.ValidationError{
			Code:    domain.CodeGuardDenied,
			Message: "specialists can only create appointments for themselves",
		})
	}

	// 5. Филиал
	branch, err := uc.branchRepo.GetByID(ctx, req.BranchID)
	if err != nil {
		if errors.Is(err, branchRepo.ErrBranchNotFound) {
			uc.logger.Warn("CreateAppointment: branch id=%d not found", req.BranchID)
			return nil, ErrBranchNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get branch id=%d: %v", req.BranchID, err)
		return nil, fmt.Errorf("%w: failed to get branch: %v", ErrInternal, err)
	}
	if branch.BusinessID != req.Actor.BusinessID {
		uc.logger.Warn("CreateAppointment: branch id=%d belongs to another business", req.BranchID)
		return nil, ErrBranchNotFound
	}

	// 6. Услуга
	service, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateAppointment: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if service.BusinessID != req.Actor.BusinessID {
		uc.logger.Warn("CreateAppointment: service id=%d belongs to another business", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	var result *domain.Appointment

	// 7. Проверяем занятость специалиста и создаем запись в одной транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		busy, err := uc.appointmentRepo.HasOverlap(txCtx, req.SpecialistID, req.StartTime.UTC(), req.EndTime.UTC())
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to check overlap: %v", err)
			return fmt.Errorf("%w: %w: failed to check overlap: %v", ErrInternal, domain.ErrPersistence, err)
		}
		if busy {
			uc.logger.Warn("CreateAppointment: specialist=%d is busy at %s", req.SpecialistID, req.StartTime)
			return ErrSpecialistBusy
		}

		appt := &domain.Appointment{
			BusinessID:   req.Actor.BusinessID,
			BranchID:     req.BranchID,
			SpecialistID: req.SpecialistID,
			ClientID:     req.ClientID,
			ServiceID:    req.ServiceID,
			StartTime:    req.StartTime.UTC(),
			EndTime:      req.EndTime.UTC(),
			Status:       domain.StatusPending,
			TotalAmount:  service.Price,
			// Флаги услуги копируются в запись
			RequiresConsent:  service.RequiresConsent,
			RequiresEvidence: service.RequiresEvidence,
			RequiresPayment:  service.RequiresPayment,
			Notes:            req.Notes,
		}

		created, err := uc.appointmentRepo.Create(txCtx, appt)
		if err != nil {
			uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: %w: failed to create appointment: %v", ErrInternal, domain.ErrPersistence, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateAppointment: successfully created appointment id=%d", result.ID)
	return &Response{Appointment: result}, nil
}
