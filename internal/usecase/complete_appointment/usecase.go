package complete_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/appointment"
	commissionRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/commission"
	paymentMethodRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/paymentmethod"
	"github.com/m04kA/SMC-SalonService/internal/service/appointments"
	"github.com/m04kA/SMC-SalonService/internal/service/commissions"
)

// pendingEvidence метка фото, которое еще не загружено; используется только для проверки guard-а
const pendingEvidence = "pending://evidence"

// Результаты перехода для метрик
const (
	resultOK     = "ok"
	resultDenied = "denied"
	resultError  = "error"
)

// UseCase оркестратор завершения записи
type UseCase struct {
	appointmentRepo   AppointmentRepository
	paymentRepo       PaymentRepository
	paymentMethodRepo PaymentMethodRepository
	serviceRepo       ServiceRepository
	rateRepo          SpecialistRateRepository
	commissionRepo    CommissionRepository
	rules             RuleProvider
	evidence          EvidenceStorage
	guards            appointments.Guards
	calculator        commissions.Calculator
	txManager         TransactionManager
	timeProvider      TimeProvider
	metrics           Metrics
	logger            Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	paymentRepo PaymentRepository,
	paymentMethodRepo PaymentMethodRepository,
	serviceRepo ServiceRepository,
	rateRepo SpecialistRateRepository,
	commissionRepo CommissionRepository,
	rules RuleProvider,
	evidence EvidenceStorage,
	guards appointments.Guards,
	calculator commissions.Calculator,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo:   appointmentRepo,
		paymentRepo:       paymentRepo,
		paymentMethodRepo: paymentMethodRepo,
		serviceRepo:       serviceRepo,
		rateRepo:          rateRepo,
		commissionRepo:    commissionRepo,
		rules:             rules,
		evidence:          evidence,
		guards:            guards,
		calculator:        calculator,
		txManager:         txManager,
		timeProvider:      &RealTimeProvider{},
		metrics:           metrics,
		logger:            logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute завершает запись.
//
// Шаги выполняются строго последовательно:
//  1. guard canComplete (и canCloseWithPayment при оплате) над снимком с учетом переданных фото и оплаты
//  2. загрузка фото, ошибки загрузки - только предупреждения; guard повторяется по реально загруженным фото
//  3. валидация оплаты
//  4. подтверждение пользователем
//  5. платеж и статус COMPLETED в одной транзакции с проверкой версии
//  6. расчет и сохранение комиссии после коммита
//
// Повторный вызов для уже завершенной записи без комиссии выполняет только шаг 6.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CompleteAppointment: appointment=%d, actor=%d, evidence=%d, withPayment=%t",
		req.AppointmentID, req.Actor.ID, len(req.Evidence), req.Payment != nil)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CompleteAppointment: validation failed: %v", err)
		return nil, err
	}

	appt, err := uc.appointmentRepo.GetByID(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("CompleteAppointment: appointment id=%d not found", req.AppointmentID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("CompleteAppointment: failed to get appointment id=%d: %v", req.AppointmentID, err)
		return nil, fmt.Errorf("%w: %w: failed to get appointment: %v", ErrInternal, domain.ErrPersistence, err)
	}

	rules, err := uc.rules.GetRuleSet(ctx, appt.BusinessID)
	if err != nil {
		uc.logger.Error("CompleteAppointment: failed to load rules: %v", err)
		return nil, fmt.Errorf("%w: failed to load rules: %v", ErrInternal, err)
	}

	if appt.Status == domain.StatusCompleted {
		return uc.resumeCommission(ctx, req, appt, rules)
	}

	// 1. Guard над проекцией записи после завершения
	placeholders := make([]string, len(req.Evidence))
	for i := range placeholders {
		placeholders[i] = pendingEvidence
	}
	if err := uc.checkGuards(req, appt, rules, placeholders); err != nil {
		return nil, err
	}

	// 2. Фото (best effort)
	urls, warnings := uc.uploadEvidence(ctx, appt.ID, req.Evidence)
	if len(warnings) > 0 {
		// Незагруженные фото не засчитываются в правило о фото
		if err := uc.checkGuards(req, appt, rules, urls); err != nil {
			return nil, err
		}
	}

	// 3. Оплата
	if req.Payment != nil {
		if err := uc.validatePayment(ctx, appt, req.Payment); err != nil {
			uc.logger.Warn("CompleteAppointment: invalid payment for appointment id=%d: %v", appt.ID, err)
			return nil, err
		}
	}

	// 4. Подтверждение
	summary := buildSummary(appt, req.Payment, len(urls), warnings)
	if req.Confirmation != nil {
		confirmed, err := req.Confirmation.Confirm(ctx, summary)
		if err != nil {
			uc.logger.Error("CompleteAppointment: confirmation failed: %v", err)
			return nil, fmt.Errorf("%w: confirmation failed: %v", ErrInternal, err)
		}
		if !confirmed {
			uc.logger.Info("CompleteAppointment: appointment id=%d not confirmed, nothing saved", appt.ID)
			return &Response{Confirmed: false, Summary: summary, Warnings: warnings}, nil
		}
	}

	// 5. Платеж и COMPLETED атомарно
	now := uc.timeProvider.Now()
	saved, payment, err := uc.persist(ctx, req, appt, urls, now)
	if err != nil {
		uc.metrics.ObserveTransition(string(appt.Status), string(domain.StatusCompleted), resultError)
		return nil, err
	}
	uc.metrics.ObserveTransition(string(appt.Status), string(domain.StatusCompleted), resultOK)

	// 6. Комиссия только после зафиксированного COMPLETED
	commission, err := uc.generateCommission(ctx, saved, rules)
	if err != nil {
		uc.logger.Error("CompleteAppointment: appointment id=%d completed, commission failed: %v", saved.ID, err)
		return nil, fmt.Errorf("%w: %w: %v", ErrCommissionNotGenerated, domain.ErrPersistence, err)
	}
	uc.metrics.ObserveCommissionGenerated()

	uc.logger.Info("CompleteAppointment: appointment id=%d completed, commission=%s",
		saved.ID, commission.CommissionAmount.StringFixed(domain.DefaultCurrencyPlaces))

	return &Response{
		Confirmed:   true,
		Summary:     summary,
		Appointment: saved,
		Payment:     payment,
		Commission:  commission,
		Warnings:    warnings,
	}, nil
}

// checkGuards проверяет guard-ы над снимком, в котором фото evidence и переданная оплата уже учтены
func (uc *UseCase) checkGuards(req *Request, appt *domain.Appointment, rules domain.RuleSet, evidence []string) error {
	projected := appt.Clone()
	projected.EvidencePhotos = append(projected.EvidencePhotos, evidence...)

	if req.Payment != nil {
		if result := uc.guards.CanCloseWithPayment(req.Actor); !result.Allowed {
			return uc.denied(appt, result)
		}
		projected.PaidAmount = projected.PaidAmount.Add(req.Payment.Amount)
	}

	if result := uc.guards.CanComplete(req.Actor, projected, rules); !result.Allowed {
		return uc.denied(appt, result)
	}
	return nil
}

// resumeCommission начисляет комиссию для записи, завершенной ранее без комиссии.
// Оплата и фото к этому моменту уже сохранены, поэтому повтор принимается только без них.
func (uc *UseCase) resumeCommission(ctx context.Context, req *Request, appt *domain.Appointment, rules domain.RuleSet) (*Response, error) {
	if result := uc.guards.CanResumeCompletion(req.Actor, appt); !result.Allowed {
		return nil, uc.denied(appt, result)
	}

	_, err := uc.commissionRepo.GetByAppointmentID(ctx, appt.ID)
	switch {
	case err == nil:
		return nil, uc.denied(appt, appointments.GuardResult{
			Guard:  appointments.GuardComplete,
			Reason: "appointment is already completed and its commission exists",
		})
	case !errors.Is(err, commissionRepo.ErrCommissionNotFound):
		uc.logger.Error("CompleteAppointment: failed to get commission for appointment id=%d: %v", appt.ID, err)
		return nil, fmt.Errorf("%w: %w: failed to get commission: %v", ErrInternal, domain.ErrPersistence, err)
	}

	if req.Payment != nil || len(req.Evidence) > 0 {
		return nil, uc.denied(appt, appointments.GuardResult{
			Guard:  appointments.GuardComplete,
			Reason: "appointment is already completed, retry without payment or evidence to generate the commission",
		})
	}

	uc.logger.Warn("CompleteAppointment: appointment id=%d completed without commission, generating", appt.ID)
	commission, err := uc.generateCommission(ctx, appt, rules)
	if err != nil {
		uc.logger.Error("CompleteAppointment: commission retry failed for appointment id=%d: %v", appt.ID, err)
		return nil, fmt.Errorf("%w: %w: %v", ErrCommissionNotGenerated, domain.ErrPersistence, err)
	}
	uc.metrics.ObserveCommissionGenerated()

	return &Response{
		Confirmed:   true,
		Summary:     buildSummary(appt, nil, 0, nil),
		Appointment: appt,
		Commission:  commission,
	}, nil
}

func (uc *UseCase) denied(appt *domain.Appointment, result appointments.GuardResult) error {
	uc.logger.Warn("CompleteAppointment: appointment id=%d denied by %s: %s", appt.ID, result.Guard, result.Reason)
	uc.metrics.ObserveGuardDenial(result.Guard)
	uc.metrics.ObserveTransition(string(appt.Status), string(domain.StatusCompleted), resultDenied)
	return fmt.Errorf("%w: %w", ErrDenied, domain.ValidationError{Code: domain.CodeGuardDenied, Message: result.Reason})
}

// uploadEvidence загружает фото по одному; ошибки превращаются в предупреждения
func (uc *UseCase) uploadEvidence(ctx context.Context, appointmentID int64, photos []EvidencePhoto) ([]string, []string) {
	if len(photos) == 0 {
		return nil, nil
	}

	urls := make([]string, 0, len(photos))
	var warnings []string
	for i, photo := range photos {
		url, err := uc.evidence.Upload(ctx, appointmentID, photo)
		if err != nil {
			uc.logger.Warn("CompleteAppointment: failed to upload evidence %d (%s) for appointment id=%d: %v",
				i, photo.FileName, appointmentID, err)
			warnings = append(warnings, fmt.Sprintf("evidence photo %q was not uploaded", photo.FileName))
			continue
		}
		urls = append(urls, url)
	}
	return urls, warnings
}

func (uc *UseCase) validatePayment(ctx context.Context, appt *domain.Appointment, payment *PaymentInput) error {
	if err := validatePaymentPayload(payment, appt.OutstandingAmount()); err != nil {
		return err
	}

	method, err := uc.paymentMethodRepo.GetByID(ctx, payment.MethodID)
	if err != nil {
		if errors.Is(err, paymentMethodRepo.ErrPaymentMethodNotFound) {
			return ErrPaymentMethodNotFound
		}
		uc.logger.Error("CompleteAppointment: failed to get payment method id=%d: %v", payment.MethodID, err)
		return fmt.Errorf("%w: %w: failed to get payment method: %v", ErrInternal, domain.ErrPersistence, err)
	}
	if method.BusinessID != appt.BusinessID {
		return ErrPaymentMethodNotFound
	}

	return validatePaymentMethod(payment, method)
}

// persist сохраняет платеж и переводит запись в COMPLETED в одной транзакции.
// Версия записи проверяется при обновлении, поэтому guard из шага 1 остается актуальным.
func (uc *UseCase) persist(
	ctx context.Context,
	req *Request,
	appt *domain.Appointment,
	urls []string,
	now time.Time,
) (*domain.Appointment, *domain.Payment, error) {
	var (
		saved   *domain.Appointment
		payment *domain.Payment
	)

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		completed := appt.Clone()
		completed.Status = domain.StatusCompleted
		completed.CompletedAt = &now
		completed.EvidencePhotos = append(completed.EvidencePhotos, urls...)

		if req.Payment != nil {
			created, err := uc.paymentRepo.Create(txCtx, &domain.Payment{
				AppointmentID: appt.ID,
				MethodID:      req.Payment.MethodID,
				Amount:        req.Payment.Amount,
				ProofImageURL: req.Payment.ProofImageURL,
				Reference:     req.Payment.Reference,
				RegisteredBy:  req.Actor.ID,
			})
			if err != nil {
				uc.logger.Error("CompleteAppointment: failed to create payment: %v", err)
				return fmt.Errorf("%w: %w: failed to create payment: %v", ErrInternal, domain.ErrPersistence, err)
			}
			payment = created
			completed.PaidAmount = completed.PaidAmount.Add(created.Amount)
		}

		updated, err := uc.appointmentRepo.Complete(txCtx, completed, appt.Version)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrVersionConflict) {
				uc.logger.Warn("CompleteAppointment: appointment id=%d was modified concurrently", appt.ID)
				return ErrVersionConflict
			}
			uc.logger.Error("CompleteAppointment: failed to complete appointment id=%d: %v", appt.ID, err)
			return fmt.Errorf("%w: %w: failed to complete appointment: %v", ErrInternal, domain.ErrPersistence, err)
		}
		saved = updated
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return saved, payment, nil
}

func (uc *UseCase) generateCommission(ctx context.Context, appt *domain.Appointment, rules domain.RuleSet) (*domain.CommissionRecord, error) {
	service, err := uc.serviceRepo.GetByID(ctx, appt.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get service id=%d: %w", appt.ServiceID, err)
	}

	rate, err := uc.rateRepo.GetRate(ctx, appt.BusinessID, appt.SpecialistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate for specialist id=%d: %w", appt.SpecialistID, err)
	}

	mode := rules.CommissionMode()
	result := uc.calculator.Compute(appt, service, rate, mode)
	uc.logger.Info("CompleteAppointment: commission for appointment id=%d: mode=%s, rate=%s (%s), amount=%s",
		appt.ID, mode, result.Percentage.String(), result.RateSource, result.Amount.String())

	record, err := uc.commissionRepo.Create(ctx, &domain.CommissionRecord{
		BusinessID:           appt.BusinessID,
		SpecialistID:         appt.SpecialistID,
		AppointmentID:        appt.ID,
		ServiceID:            appt.ServiceID,
		CommissionAmount:     result.Amount,
		CommissionPercentage: result.Percentage,
		Status:               domain.CommissionPending,
		AppointmentDate:      appt.StartTime,
	})
	if errors.Is(err, commissionRepo.ErrCommissionExists) {
		// Комиссию уже начислил параллельный вызов
		existing, getErr := uc.commissionRepo.GetByAppointmentID(ctx, appt.ID)
		if getErr != nil {
			return nil, fmt.Errorf("failed to get existing commission: %w", getErr)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create commission: %w", err)
	}
	return record, nil
}

func buildSummary(appt *domain.Appointment, payment *PaymentInput, evidenceCount int, warnings []string) Summary {
	amount := decimal.Zero
	if payment != nil {
		amount = payment.Amount
	}
	outstanding := appt.TotalAmount.Sub(appt.PaidAmount).Sub(amount)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	return Summary{
		AppointmentID: appt.ID,
		TotalAmount:   appt.TotalAmount,
		PaidAmount:    appt.PaidAmount,
		PaymentAmount: amount,
		Outstanding:   outstanding,
		EvidenceCount: evidenceCount,
		Warnings:      warnings,
	}
}
