package create_payment_request

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SalonService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/service/commissions"
)

const (
	msgUnauthorized         = "требуется аутентификация"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgEmptySelection       = "выберите хотя бы одну комиссию"
	msgForbidden            = "доступ запрещен"
	msgCommissionNotFound   = "комиссия не найдена"
	msgCommissionNotPending = "комиссия уже включена в заявку или выплачена"
)

type Handler struct {
	service CommissionService
	logger  Logger
}

func NewHandler(service CommissionService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/payment-requests
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req CreatePaymentRequestRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /payment-requests - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.service.CreatePaymentRequest(r.Context(), actor, req.ToServiceRequest())
	if err != nil {
		switch {
		case errors.Is(err, commissions.ErrInvalidInput):
			h.logger.Warn("POST /payment-requests - Invalid selection: specialist_id=%d: %v", req.SpecialistID, err)
			var verr domain.ValidationError
			if errors.As(err, &verr) {
				handlers.RespondValidation(w, msgEmptySelection, []domain.ValidationError{verr})
				return
			}
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		case errors.Is(err, commissions.ErrAccessDenied):
			h.logger.Warn("POST /payment-requests - Access denied: actor=%d, specialist_id=%d", actor.ID, req.SpecialistID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, commissions.ErrCommissionNotFound):
			h.logger.Warn("POST /payment-requests - Commission not found: ids=%v", req.CommissionIDs)
			handlers.RespondNotFound(w, msgCommissionNotFound)

		case errors.Is(err, commissions.ErrCommissionNotPending):
			h.logger.Warn("POST /payment-requests - Commission not pending: %v", err)
			handlers.RespondConflict(w, msgCommissionNotPending)

		default:
			h.logger.Error("POST /payment-requests - Failed to create payment request: specialist_id=%d, error=%v",
				req.SpecialistID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /payment-requests - Payment request created: request_id=%d, specialist_id=%d, total=%s",
		resp.ID, resp.SpecialistID, resp.TotalAmount.String())
	handlers.RespondJSON(w, http.StatusCreated, resp)
}
