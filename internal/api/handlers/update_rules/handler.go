package update_rules

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonService/internal/service/rules"
)

const (
	msgUnauthorized       = "требуется аутентификация"
	msgInvalidBusinessID  = "некорректный ID бизнеса"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgForbidden          = "доступ запрещен"
	msgUnknownRule        = "неизвестное правило"
	msgInvalidValue       = "некорректное значение правила"
)

type Handler struct {
	service RuleService
	logger  Logger
}

func NewHandler(service RuleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/businesses/{businessId}/rules
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	businessID, err := strconv.ParseInt(mux.Vars(r)["businessId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /businesses/{id}/rules - Invalid business ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBusinessID)
		return
	}

	var req UpdateRulesRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /businesses/{id}/rules - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.service.UpdateRules(r.Context(), actor, businessID, req.ToServiceRequest())
	if err != nil {
		switch {
		case errors.Is(err, rules.ErrAccessDenied):
			h.logger.Warn("PUT /businesses/{id}/rules - Access denied: actor=%d, business_id=%d", actor.ID, businessID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, rules.ErrUnknownRule):
			h.logger.Warn("PUT /businesses/{id}/rules - Unknown rule: %v", err)
			handlers.RespondBadRequest(w, msgUnknownRule)

		case errors.Is(err, rules.ErrInvalidValue), errors.Is(err, rules.ErrInvalidInput):
			h.logger.Warn("PUT /businesses/{id}/rules - Invalid value: %v", err)
			handlers.RespondBadRequest(w, msgInvalidValue)

		default:
			h.logger.Error("PUT /businesses/{id}/rules - Failed to update rules: business_id=%d, error=%v", businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /businesses/{id}/rules - Rules updated: business_id=%d, count=%d", businessID, len(req.Rules))
	handlers.RespondJSON(w, http.StatusOK, resp)
}
