package complete_appointment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SalonService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonService/internal/api/middleware"
	completeAppointment "github.com/m04kA/SMC-SalonService/internal/usecase/complete_appointment"
)

const (
	msgUnauthorized          = "требуется аутентификация"
	msgInvalidAppointmentID  = "некорректный ID записи"
	msgInvalidRequestBody    = "некорректное тело запроса"
	msgInvalidEvidence       = "некорректное содержимое фото"
	msgNotFound              = "запись не найдена"
	msgDenied                = "завершение записи запрещено"
	msgInvalidPayment        = "некорректные данные оплаты"
	msgPaymentMethodNotFound = "способ оплаты не найден"
	msgVersionConflict       = "запись была изменена, обновите данные"
	msgCommissionFailed      = "запись завершена, но комиссия не сформирована"
	msgInvalidInput          = "некорректные данные"
)

type Handler struct {
	useCase CompleteAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CompleteAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/{appointmentId}/complete
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	appointmentID, err := strconv.ParseInt(mux.Vars(r)["appointmentId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/complete - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req CompleteAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments/{id}/complete - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(actor, appointmentID)
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/complete - Invalid evidence: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEvidence)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, completeAppointment.ErrAppointmentNotFound):
			h.logger.Warn("POST /appointments/{id}/complete - Appointment not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, completeAppointment.ErrDenied):
			h.logger.Warn("POST /appointments/{id}/complete - Denied: appointment_id=%d, actor=%d: %v", appointmentID, actor.ID, err)
			handlers.RespondDenied(w, msgDenied, err)

		case errors.Is(err, completeAppointment.ErrInvalidPayment):
			h.logger.Warn("POST /appointments/{id}/complete - Invalid payment: appointment_id=%d: %v", appointmentID, err)
			handlers.RespondDenied(w, msgInvalidPayment, err)

		case errors.Is(err, completeAppointment.ErrPaymentMethodNotFound):
			h.logger.Warn("POST /appointments/{id}/complete - Payment method not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgPaymentMethodNotFound)

		case errors.Is(err, completeAppointment.ErrVersionConflict):
			h.logger.Warn("POST /appointments/{id}/complete - Version conflict: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgVersionConflict)

		case errors.Is(err, completeAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments/{id}/complete - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, completeAppointment.ErrCommissionNotGenerated):
			h.logger.Error("POST /appointments/{id}/complete - Commission not generated: appointment_id=%d, error=%v",
				appointmentID, err)
			handlers.RespondError(w, http.StatusInternalServerError, msgCommissionFailed)

		default:
			h.logger.Error("POST /appointments/{id}/complete - Failed to complete appointment: appointment_id=%d, error=%v",
				appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	if !result.Confirmed {
		h.logger.Info("POST /appointments/{id}/complete - Not confirmed, summary returned: appointment_id=%d", appointmentID)
		handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
		return
	}

	h.logger.Info("POST /appointments/{id}/complete - Appointment completed: appointment_id=%d, warnings=%d",
		appointmentID, len(result.Warnings))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
