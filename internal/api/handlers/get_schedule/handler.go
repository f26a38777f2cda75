package get_schedule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonService/internal/service/schedules"
)

const (
	msgUnauthorized        = "требуется аутентификация"
	msgInvalidSpecialistID = "некорректный ID специалиста"
	msgInvalidBranchID     = "некорректный ID филиала"
	msgBranchNotFound      = "филиал не найден"
	msgForbidden           = "доступ запрещен"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/specialists/{specialistId}/branches/{branchId}/schedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	vars := mux.Vars(r)
	specialistID, err := strconv.ParseInt(vars["specialistId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /specialists/{id}/branches/{id}/schedule - Invalid specialist ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSpecialistID)
		return
	}
	branchID, err := strconv.ParseInt(vars["branchId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /specialists/{id}/branches/{id}/schedule - Invalid branch ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBranchID)
		return
	}

	week, err := h.service.GetWeek(r.Context(), actor, specialistID, branchID)
	if err != nil {
		switch {
		case errors.Is(err, schedules.ErrBranchNotFound):
			h.logger.Warn("GET /specialists/{id}/branches/{id}/schedule - Branch not found: branch_id=%d", branchID)
			handlers.RespondNotFound(w, msgBranchNotFound)

		case errors.Is(err, schedules.ErrAccessDenied):
			h.logger.Warn("GET /specialists/{id}/branches/{id}/schedule - Access denied: actor=%d, specialist_id=%d",
				actor.ID, specialistID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /specialists/{id}/branches/{id}/schedule - Failed to get schedule: specialist_id=%d, branch_id=%d, error=%v",
				specialistID, branchID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /specialists/{id}/branches/{id}/schedule - Schedule retrieved: specialist_id=%d, branch_id=%d, days=%d",
		specialistID, branchID, len(week.Days))
	handlers.RespondJSON(w, http.StatusOK, week)
}
