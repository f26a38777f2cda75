package list_appointments

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SalonService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonService/internal/service/appointments"
)

const (
	msgUnauthorized   = "требуется аутентификация"
	msgInvalidFilters = "некорректные параметры фильтра"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	req, err := ParseListRequest(r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /appointments - Invalid filters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFilters)
		return
	}

	resp, err := h.service.List(r.Context(), actor, req)
	if err != nil {
		if errors.Is(err, appointments.ErrInvalidInput) {
			h.logger.Warn("GET /appointments - Invalid filters: %v", err)
			handlers.RespondBadRequest(w, msgInvalidFilters)
			return
		}
		h.logger.Error("GET /appointments - Failed to list appointments: business_id=%d, error=%v", actor.BusinessID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /appointments - Appointments retrieved: business_id=%d, count=%d", actor.BusinessID, resp.Total)
	handlers.RespondJSON(w, http.StatusOK, resp)
}
