package complete_appointment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonService/internal/domain"
	completeAppointment "github.com/m04kA/SMC-SalonService/internal/usecase/complete_appointment"
)

type MockCompleteUseCase struct {
	mock.Mock
}

func (m *MockCompleteUseCase) Execute(ctx context.Context, req *completeAppointment.Request) (*completeAppointment.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*completeAppointment.Response), args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var actor = domain.Actor{ID: 3, BusinessID: 10, Role: domain.RoleReceptionist,
	Permissions: domain.NewPermissionSet(domain.RoleReceptionist, domain.PermAppointmentsComplete)}

func do(uc CompleteAppointmentUseCase, body string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/appointments/{appointmentId}/complete", NewHandler(uc, nopLogger{}).Handle)

	req := httptest.NewRequest(http.MethodPost, "/appointments/42/complete", strings.NewReader(body))
	req = req.WithContext(middleware.WithActor(req.Context(), actor))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandle_ConvertsRequest(t *testing.T) {
	uc := new(MockCompleteUseCase)
	photo := base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))

	uc.On("Execute", mock.Anything, mock.MatchedBy(func(r *completeAppointment.Request) bool {
		confirmed, err := r.Confirmation.Confirm(context.Background(), completeAppointment.Summary{})
		return r.AppointmentID == 42 &&
			r.Actor.ID == actor.ID &&
			len(r.Evidence) == 1 && string(r.Evidence[0].Content) == "jpeg-bytes" &&
			r.Payment != nil && r.Payment.Amount.Equal(decimal.NewFromInt(500)) &&
			err == nil && confirmed
	})).Return(&completeAppointment.Response{
		Confirmed:   true,
		Appointment: &domain.Appointment{ID: 42, Status: domain.StatusCompleted},
		Warnings:    []string{"evidence upload failed"},
	}, nil)

	body := `{"confirmed":true,"evidence":[{"fileName":"a.jpg","contentType":"image/jpeg","content":"` + photo +
		`"}],"payment":{"methodId":2,"amount":"500"}}`
	w := do(uc, body)

	require.Equal(t, http.StatusOK, w.Code)
	var resp CompleteAppointmentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Confirmed)
	require.NotNil(t, resp.Appointment)
	assert.Equal(t, "completed", resp.Appointment.Status)
	assert.Equal(t, []string{"evidence upload failed"}, resp.Warnings)
}

func TestHandle_NoConfirmationFlag(t *testing.T) {
	uc := new(MockCompleteUseCase)
	uc.On("Execute", mock.Anything, mock.MatchedBy(func(r *completeAppointment.Request) bool {
		return r.Confirmation == nil && r.Payment == nil
	})).Return(&completeAppointment.Response{Confirmed: true}, nil)

	w := do(uc, `{}`)

	assert.Equal(t, http.StatusOK, w.Code)
	uc.AssertExpectations(t)
}

func TestHandle_RejectsBadEvidence(t *testing.T) {
	uc := new(MockCompleteUseCase)

	w := do(uc, `{"evidence":[{"fileName":"a.gif","contentType":"image/gif","content":"AAAA"}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", completeAppointment.ErrAppointmentNotFound, http.StatusNotFound},
		{"denied", completeAppointment.ErrDenied, http.StatusUnprocessableEntity},
		{"invalid payment", completeAppointment.ErrInvalidPayment, http.StatusUnprocessableEntity},
		{"method not found", completeAppointment.ErrPaymentMethodNotFound, http.StatusNotFound},
		{"version conflict", completeAppointment.ErrVersionConflict, http.StatusConflict},
		{"commission", completeAppointment.ErrCommissionNotGenerated, http.StatusInternalServerError},
		{"internal", completeAppointment.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockCompleteUseCase)
			uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := do(uc, `{}`)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
