package update_payment_request

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/service/commissions"
	"github.com/m04kA/SMC-SalonService/internal/service/commissions/models"
)

const (
	msgUnauthorized     = "требуется аутентификация"
	msgInvalidRequestID = "некорректный ID заявки"
	msgNotFound         = "заявка не найдена"
	msgForbidden        = "доступ запрещен"
	msgInvalidStatus    = "заявку нельзя перевести в этот статус"
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

// HandleApprove PATCH /api/v1/payment-requests/{requestId}/approve
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "approve", h.service.Approve)
}

// HandleReject PATCH /api/v1/payment-requests/{requestId}/reject
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "reject", h.service.Reject)
}

// HandlePaid PATCH /api/v1/payment-requests/{requestId}/paid
func (h *Handler) HandlePaid(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "paid", h.service.MarkPaid)
}

type statusOp func(ctx context.Context, actor domain.Actor, requestID int64) (*models.PaymentRequestResponse, error)

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, action string, op statusOp) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	requestID, err := strconv.ParseInt(mux.Vars(r)["requestId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /payment-requests/{id}/%s - Invalid request ID: %v", action, err)
		handlers.RespondBadRequest(w, msgInvalidRequestID)
		return
	}

	resp, err := op(r.Context(), actor, requestID)
	if err != nil {
		switch {
		case errors.Is(err, commissions.ErrPaymentRequestNotFound):
			h.logger.Warn("PATCH /payment-requests/{id}/%s - Request not found: request_id=%d", action, requestID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, commissions.ErrAccessDenied):
			h.logger.Warn("PATCH /payment-requests/{id}/%s - Access denied: actor=%d", action, actor.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, commissions.ErrInvalidRequestStatus):
			h.logger.Warn("PATCH /payment-requests/{id}/%s - Invalid status change: %v", action, err)
			handlers.RespondConflict(w, msgInvalidStatus)

		default:
			h.logger.Error("PATCH /payment-requests/{id}/%s - Failed to update request: request_id=%d, error=%v",
				action, requestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /payment-requests/{id}/%s - Request updated: request_id=%d, status=%s", action, requestID, resp.Status)
	handlers.RespondJSON(w, http.StatusOK, resp)
}
