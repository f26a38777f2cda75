package get_commissions

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
	msgInvalidStatus       = "некорректный статус комиссии"
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

// Handle GET /api/v1/specialists/{specialistId}/commissions?status=pending
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	specialistID, err := strconv.ParseInt(mux.Vars(r)["specialistId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /specialists/{id}/commissions - Invalid specialist ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSpecialistID)
		return
	}

	var status *string
	if s := r.URL.Query().Get("status"); s != "" {
		status = &s
	}

	resp, err := h.service.ListForSpecialist(r.Context(), actor, specialistID, status)
	if err != nil {
		switch {
		case errors.Is(err, commissions.ErrAccessDenied):
			h.logger.Warn("GET /specialists/{id}/commissions - Access denied: actor=%d, specialist_id=%d", actor.ID, specialistID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, commissions.ErrInvalidInput):
			h.logger.Warn("GET /specialists/{id}/commissions - Invalid status: %v", err)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /specialists/{id}/commissions - Failed to list commissions: specialist_id=%d, error=%v",
				specialistID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /specialists/{id}/commissions - Commissions retrieved: specialist_id=%d, count=%d",
		specialistID, len(resp.Commissions))
	handlers.RespondJSON(w, http.StatusOK, resp)
}
