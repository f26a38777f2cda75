package save_schedule

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SalonService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/service/schedules"
	"github.com/m04kA/SMC-SalonService/internal/service/schedules/models"
)

const (
	msgUnauthorized       = "требуется аутентификация"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgBranchNotFound     = "филиал не найден"
	msgForbidden          = "доступ запрещен"
	msgInvalidInput       = "некорректные данные расписания"
	msgScheduleRejected   = "расписание не прошло проверку"
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

// Handle PUT /api/v1/schedules
// Ошибки проверки расписания возвращаются целиком с кодом 422
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	resp, ok := h.run(w, r, "PUT /schedules", h.service.SaveWeek)
	if !ok {
		return
	}

	if !resp.Saved {
		h.logger.Warn("PUT /schedules - Schedule rejected: specialist_id=%d, branch_id=%d, errors=%d",
			resp.SpecialistID, resp.BranchID, len(resp.Errors))
		handlers.RespondValidation(w, msgScheduleRejected, resp.Errors)
		return
	}

	h.logger.Info("PUT /schedules - Schedule saved: specialist_id=%d, branch_id=%d", resp.SpecialistID, resp.BranchID)
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// HandleCheck POST /api/v1/schedules/check
// Только проверка, ничего не сохраняет; список ошибок всегда в теле ответа
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	resp, ok := h.run(w, r, "POST /schedules/check", h.service.Check)
	if !ok {
		return
	}

	h.logger.Info("POST /schedules/check - Schedule checked: specialist_id=%d, branch_id=%d, errors=%d",
		resp.SpecialistID, resp.BranchID, len(resp.Errors))
	handlers.RespondJSON(w, http.StatusOK, resp)
}

type scheduleOp func(ctx context.Context, actor domain.Actor, req *models.SaveWeekRequest) (*models.SaveWeekResponse, error)

func (h *Handler) run(w http.ResponseWriter, r *http.Request, route string, op scheduleOp) (*models.SaveWeekResponse, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return nil, false
	}

	var req SaveScheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return nil, false
	}

	resp, err := op(r.Context(), actor, req.ToServiceRequest())
	if err != nil {
		switch {
		case errors.Is(err, schedules.ErrBranchNotFound):
			h.logger.Warn("%s - Branch not found: branch_id=%d", route, req.BranchID)
			handlers.RespondNotFound(w, msgBranchNotFound)

		case errors.Is(err, schedules.ErrAccessDenied):
			h.logger.Warn("%s - Access denied: actor=%d, branch_id=%d", route, actor.ID, req.BranchID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, schedules.ErrInvalidInput):
			h.logger.Warn("%s - Invalid input: %v", route, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("%s - Failed to process schedule: specialist_id=%d, branch_id=%d, error=%v",
				route, req.SpecialistID, req.BranchID, err)
			handlers.RespondInternalError(w)
		}
		return nil, false
	}

	return resp, true
}
