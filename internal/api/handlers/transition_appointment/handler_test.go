package transition_appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/service/appointments"
	"github.com/m04kA/SMC-SalonService/internal/service/appointments/models"
)

type MockAppointmentService struct {
	mock.Mock
}

func (m *MockAppointmentService) Transition(ctx context.Context, actor domain.Actor, id int64, req *models.TransitionRequest) (*models.AppointmentResponse, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AppointmentResponse), args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var actor = domain.Actor{ID: 1, BusinessID: 10, Role: domain.RoleOwner,
	Permissions: domain.NewPermissionSet(domain.RoleOwner)}

func do(t *testing.T, svc AppointmentService, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := mux.NewRouter()
	router.HandleFunc("/appointments/{appointmentId}/status", NewHandler(svc, nopLogger{}).Handle)

	req := httptest.NewRequest(http.MethodPost, "/appointments/42/status", strings.NewReader(body))
	req = req.WithContext(middleware.WithActor(req.Context(), actor))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandle_Success(t *testing.T) {
	svc := new(MockAppointmentService)
	svc.On("Transition", mock.Anything, actor, int64(42), &models.TransitionRequest{Status: "confirmed"}).
		Return(&models.AppointmentResponse{ID: 42, Status: "confirmed"}, nil)

	w := do(t, svc, `{"status":"confirmed"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.AppointmentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "confirmed", resp.Status)
}

func TestHandle_ErrorMapping(t *testing.T) {
	denied := fmt.Errorf("%w: %w", appointments.ErrDenied, domain.ValidationError{
		Code: domain.CodeGuardDenied, Message: "cancellation is disabled for this business",
	})

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", appointments.ErrAppointmentNotFound, http.StatusNotFound},
		{"invalid transition", appointments.ErrInvalidTransition, http.StatusConflict},
		{"version conflict", appointments.ErrVersionConflict, http.StatusConflict},
		{"use completion workflow", appointments.ErrUseCompletionWorkflow, http.StatusBadRequest},
		{"denied", denied, http.StatusUnprocessableEntity},
		{"internal", appointments.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAppointmentService)
			svc.On("Transition", mock.Anything, mock.Anything, int64(42), mock.Anything).Return(nil, tt.err)

			w := do(t, svc, `{"status":"canceled","reason":"client asked"}`)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestHandle_DeniedCarriesReason(t *testing.T) {
	svc := new(MockAppointmentService)
	svc.On("Transition", mock.Anything, mock.Anything, int64(42), mock.Anything).
		Return(nil, fmt.Errorf("%w: %w", appointments.ErrDenied, domain.ValidationError{
			Code: domain.CodeGuardDenied, Message: "too late to cancel",
		}))

	w := do(t, svc, `{"status":"canceled","reason":"x"}`)

	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "too late to cancel", resp.Details[0].Message)
}

func TestHandle_BadBody(t *testing.T) {
	svc := new(MockAppointmentService)

	w := do(t, svc, `{"reason":"no status"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
