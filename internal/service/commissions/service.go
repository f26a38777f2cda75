package commissions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	paymentRequestRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/paymentrequest"
	"github.com/m04kA/SMC-SalonService/internal/service/commissions/models"
)

// requestTransitions допустимые переходы статусов заявки на выплату
var requestTransitions = map[domain.PaymentRequestStatus][]domain.PaymentRequestStatus{
	domain.PaymentRequestPending:  {domain.PaymentRequestApproved, domain.PaymentRequestPaid, domain.PaymentRequestRejected},
	domain.PaymentRequestApproved: {domain.PaymentRequestPaid, domain.PaymentRequestRejected},
}

// Service сервис комиссий и заявок на выплату
type Service struct {
	commissionRepo CommissionRepository
	requestRepo    PaymentRequestRepository
	txManager      TransactionManager
	timeProvider   TimeProvider
	logger         Logger
}

// NewService создает новый экземпляр сервиса комиссий
func NewService(
	commissionRepo CommissionRepository,
	requestRepo PaymentRequestRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		commissionRepo: commissionRepo,
		requestRepo:    requestRepo,
		txManager:      txManager,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// ListForSpecialist возвращает комиссии специалиста и сводку по статусам
func (s *Service) ListForSpecialist(ctx context.Context, actor domain.Actor, specialistID int64, status *string) (*models.CommissionListResponse, error) {
	s.logger.Info("ListForSpecialist: specialist=%d, business=%d, actor=%d", specialistID, actor.BusinessID, actor.ID)

	if !s.canSeeSpecialist(actor, specialistID) {
		s.logger.Warn("ListForSpecialist: actor=%d cannot view commissions of specialist=%d", actor.ID, specialistID)
		return nil, ErrAccessDenied
	}

	var domainStatus *domain.CommissionStatus
	if status != nil {
		st := domain.CommissionStatus(*status)
		switch st {
		case domain.CommissionPending, domain.CommissionPaymentRequested, domain.CommissionPaid:
			domainStatus = &st
		default:
			return nil, fmt.Errorf("%w: unknown commission status %q", ErrInvalidInput, *status)
		}
	}

	records, err := s.commissionRepo.ListBySpecialist(ctx, actor.BusinessID, specialistID, domainStatus)
	if err != nil {
		s.logger.Error("ListForSpecialist: repository error for specialist=%d: %v", specialistID, err)
		return nil, fmt.Errorf("%w: %w: ListForSpecialist - repository error: %v", ErrInternal, domain.ErrPersistence, err)
	}

	summary := Summarize(records)
	resp := &models.CommissionListResponse{
		SpecialistID: specialistID,
		Commissions:  make([]models.CommissionResponse, 0, len(records)),
		Summary: models.SummaryResponse{
			Pending:        summary.Pending,
			TotalPending:   summary.TotalPending,
			Requested:      summary.Requested,
			TotalRequested: summary.TotalRequested,
			Paid:           summary.Paid,
			TotalPaid:      summary.TotalPaid,
		},
	}
	for _, r := range records {
		resp.Commissions = append(resp.Commissions, models.FromDomainCommission(r))
	}

	s.logger.Info("ListForSpecialist: fetched %d commissions for specialist=%d", len(records), specialistID)
	return resp, nil
}

// CreatePaymentRequest создает заявку на выплату из выбранных комиссий в статусе pending.
// Пустой выбор - ошибка валидации. Комиссии переходят в payment_requested в той же транзакции.
func (s *Service) CreatePaymentRequest(ctx context.Context, actor domain.Actor, req *models.CreatePaymentRequest) (*models.PaymentRequestResponse, error) {
	s.logger.Info("CreatePaymentRequest: specialist=%d, commissions=%v, actor=%d", req.SpecialistID, req.CommissionIDs, actor.ID)

	// 1. Валидация выбора
	ids := uniqueIDs(req.CommissionIDs)
	if len(ids) == 0 {
		s.logger.Warn("CreatePaymentRequest: empty selection for specialist=%d", req.SpecialistID)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, domain.ValidationError{
			Code:    domain.CodeEmptySelection,
			Message: "select at least one pending commission",
		})
	}

	// 2. Права
	if !s.canSeeSpecialist(actor, req.SpecialistID) {
		s.logger.Warn("CreatePaymentRequest: actor=%d cannot request payout for specialist=%d", actor.ID, req.SpecialistID)
		return nil, ErrAccessDenied
	}

	now := s.timeProvider.Now()
	var created *domain.PaymentRequest

	// 3. Блокируем комиссии, проверяем и создаем заявку
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		records, err := s.commissionRepo.GetByIDsForUpdate(txCtx, ids)
		if err != nil {
			s.logger.Error("CreatePaymentRequest: failed to load commissions: %v", err)
			return fmt.Errorf("%w: %w: load commissions: %v", ErrInternal, domain.ErrPersistence, err)
		}
		if len(records) != len(ids) {
			s.logger.Warn("CreatePaymentRequest: found %d of %d commissions", len(records), len(ids))
			return ErrCommissionNotFound
		}
		for _, r := range records {
			if r.BusinessID != actor.BusinessID || r.SpecialistID != req.SpecialistID {
				s.logger.Warn("CreatePaymentRequest: commission id=%d does not belong to specialist=%d", r.ID, req.SpecialistID)
				return ErrCommissionNotFound
			}
			if r.Status != domain.CommissionPending {
				s.logger.Warn("CreatePaymentRequest: commission id=%d has status=%s", r.ID, r.Status)
				return fmt.Errorf("%w: commission %d is %s", ErrCommissionNotPending, r.ID, r.Status)
			}
		}

		request := &domain.PaymentRequest{
			BusinessID:    actor.BusinessID,
			SpecialistID:  req.SpecialistID,
			CommissionIDs: ids,
			TotalAmount:   SelectedTotal(records, ids),
			Status:        domain.PaymentRequestPending,
			RequestDate:   now,
			Notes:         req.Notes,
		}
		created, err = s.requestRepo.Create(txCtx, request)
		if err != nil {
			s.logger.Error("CreatePaymentRequest: failed to create request: %v", err)
			return fmt.Errorf("%w: %w: create request: %v", ErrInternal, domain.ErrPersistence, err)
		}

		if err := s.commissionRepo.UpdateStatusByIDs(txCtx, ids, domain.CommissionPaymentRequested, &created.ID); err != nil {
			s.logger.Error("CreatePaymentRequest: failed to mark commissions requested: %v", err)
			return fmt.Errorf("%w: %w: mark commissions: %v", ErrInternal, domain.ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("CreatePaymentRequest: created request id=%d, total=%s", created.ID, created.TotalAmount.String())
	return models.FromDomainPaymentRequest(created), nil
}

// Approve одобряет заявку на выплату
func (s *Service) Approve(ctx context.Context, actor domain.Actor, requestID int64) (*models.PaymentRequestResponse, error) {
	return s.changeRequestStatus(ctx, actor, requestID, domain.PaymentRequestApproved, "")
}

// Reject отклоняет заявку; комиссии возвращаются в pending
func (s *Service) Reject(ctx context.Context, actor domain.Actor, requestID int64) (*models.PaymentRequestResponse, error) {
	return s.changeRequestStatus(ctx, actor, requestID, domain.PaymentRequestRejected, domain.CommissionPending)
}

// MarkPaid отмечает заявку выплаченной; комиссии переходят в paid
func (s *Service) MarkPaid(ctx context.Context, actor domain.Actor, requestID int64) (*models.PaymentRequestResponse, error) {
	return s.changeRequestStatus(ctx, actor, requestID, domain.PaymentRequestPaid, domain.CommissionPaid)
}

// changeRequestStatus меняет статус заявки и, если указан commissionStatus, статус ее комиссий
func (s *Service) changeRequestStatus(
	ctx context.Context,
	actor domain.Actor,
	requestID int64,
	target domain.PaymentRequestStatus,
	commissionStatus domain.CommissionStatus,
) (*models.PaymentRequestResponse, error) {
	s.logger.Info("PaymentRequest: request id=%d to status=%s by actor=%d", requestID, target, actor.ID)

	if !actor.Permissions.HasPermission(domain.PermCommissionsManage) {
		s.logger.Warn("PaymentRequest: actor=%d has no %s permission", actor.ID, domain.PermCommissionsManage)
		return nil, ErrAccessDenied
	}

	now := s.timeProvider.Now()
	var result *domain.PaymentRequest

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		request, err := s.requestRepo.GetByID(txCtx, requestID)
		if err != nil {
			if errors.Is(err, paymentRequestRepo.ErrPaymentRequestNotFound) {
				s.logger.Warn("PaymentRequest: request id=%d not found", requestID)
				return ErrPaymentRequestNotFound
			}
			s.logger.Error("PaymentRequest: repository error for request id=%d: %v", requestID, err)
			return fmt.Errorf("%w: %w: get request: %v", ErrInternal, domain.ErrPersistence, err)
		}
		if request.BusinessID != actor.BusinessID {
			s.logger.Warn("PaymentRequest: request id=%d belongs to another business", requestID)
			return ErrPaymentRequestNotFound
		}

		if !canMoveRequest(request.Status, target) {
			s.logger.Warn("PaymentRequest: request id=%d cannot move %s -> %s", requestID, request.Status, target)
			return fmt.Errorf("%w: %s -> %s", ErrInvalidRequestStatus, request.Status, target)
		}

		var paidDate *time.Time
		if target == domain.PaymentRequestPaid {
			paidDate = &now
		}
		if err := s.requestRepo.UpdateStatus(txCtx, requestID, target, paidDate); err != nil {
			s.logger.Error("PaymentRequest: failed to update request id=%d: %v", requestID, err)
			return fmt.Errorf("%w: %w: update request: %v", ErrInternal, domain.ErrPersistence, err)
		}

		if commissionStatus != "" && len(request.CommissionIDs) > 0 {
			// При отклонении комиссии отвязываются от заявки
			linkID := &request.ID
			if commissionStatus == domain.CommissionPending {
				linkID = nil
			}
			if err := s.commissionRepo.UpdateStatusByIDs(txCtx, request.CommissionIDs, commissionStatus, linkID); err != nil {
				s.logger.Error("PaymentRequest: failed to update commissions of request id=%d: %v", requestID, err)
				return fmt.Errorf("%w: %w: update commissions: %v", ErrInternal, domain.ErrPersistence, err)
			}
		}

		request.Status = target
		request.PaidDate = paidDate
		result = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("PaymentRequest: request id=%d is now %s", requestID, target)
	return models.FromDomainPaymentRequest(result), nil
}

// ListRequests возвращает заявки на выплату специалиста
func (s *Service) ListRequests(ctx context.Context, actor domain.Actor, specialistID int64) ([]*models.PaymentRequestResponse, error) {
	s.logger.Info("ListRequests: specialist=%d, actor=%d", specialistID, actor.ID)

	if !s.canSeeSpecialist(actor, specialistID) {
		return nil, ErrAccessDenied
	}

	requests, err := s.requestRepo.ListBySpecialist(ctx, actor.BusinessID, specialistID)
	if err != nil {
		s.logger.Error("ListRequests: repository error for specialist=%d: %v", specialistID, err)
		return nil, fmt.Errorf("%w: %w: ListRequests - repository error: %v", ErrInternal, domain.ErrPersistence, err)
	}

	resp := make([]*models.PaymentRequestResponse, 0, len(requests))
	for _, r := range requests {
		resp = append(resp, models.FromDomainPaymentRequest(r))
	}
	return resp, nil
}

// canSeeSpecialist специалист работает только со своими комиссиями, остальным нужно право просмотра
func (s *Service) canSeeSpecialist(actor domain.Actor, specialistID int64) bool {
	if actor.IsSpecialist() && actor.ID == specialistID {
		return true
	}
	return actor.Permissions.HasAnyPermission(domain.PermCommissionsView, domain.PermCommissionsManage)
}

func canMoveRequest(from, to domain.PaymentRequestStatus) bool {
	for _, next := range requestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// uniqueIDs убирает повторы и неположительные ID, сохраняя порядок
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
