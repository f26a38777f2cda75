package get_payment_requests

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonService/internal/service/commissions"
)

const (
	msgUnauthorized        = "требуется аутентификация"
	msgInvalidSpecialistID = "некорректный ID специалиста"
	msgForbidden           = "доступ запрещен"
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

// Handle GET /api/v1/specialists/{specialistId}/payment-requests
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	specialistID, err := strconv.ParseInt(mux.Vars(r)["specialistId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /specialists/{id}/payment-requests - Invalid specialist ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSpecialistID)
		return
	}

	requests, err := h.service.ListRequests(r.Context(), actor, specialistID)
	if err != nil {
		if errors.Is(err, commissions.ErrAccessDenied) {
			h.logger.Warn("GET /specialists/{id}/payment-requests - Access denied: actor=%d, specialist_id=%d", actor.ID, specialistID)
			handlers.RespondForbidden(w, msgForbidden)
			return
		}
		h.logger.Error("GET /specialists/{id}/payment-requests - Failed to list requests: specialist_id=%d, error=%v",
			specialistID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /specialists/{id}/payment-requests - Requests retrieved: specialist_id=%d, count=%d",
		specialistID, len(requests))
	handlers.RespondJSON(w, http.StatusOK, requests)
}
