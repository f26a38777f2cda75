package update_payment_request

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-SalonService/internal/api/middleware"
	"github.com/m04kA/SMC-SalonService/internal/domain"
	"github.com/m04kA/SMC-SalonService/internal/service/commissions"
	"github.com/m04kA/SMC-SalonService/internal/service/commissions/models"
)

type MockCommissionService struct {
	mock.Mock
}

func (m *MockCommissionService) Approve(ctx context.Context, actor domain.Actor, id int64) (*models.PaymentRequestResponse, error) {
	args := m.Called(ctx, actor, id)
	return result(args)
}

func (m *MockCommissionService) Reject(ctx context.Context, actor domain.Actor, id int64) (*models.PaymentRequestResponse, error) {
	args := m.Called(ctx, actor, id)
	return result(args)
}

func (m *MockCommissionService) MarkPaid(ctx context.Context, actor domain.Actor, id int64) (*models.PaymentRequestResponse, error) {
	args := m.Called(ctx, actor, id)
	return result(args)
}

func result(args mock.Arguments) (*models.PaymentRequestResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentRequestResponse), args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func serve(svc CommissionService, path string) *httptest.ResponseRecorder {
	h := NewHandler(svc, nopLogger{})
	router := mux.NewRouter()
	router.HandleFunc("/payment-requests/{requestId}/approve", h.HandleApprove)
	router.HandleFunc("/payment-requests/{requestId}/reject", h.HandleReject)
	router.HandleFunc("/payment-requests/{requestId}/paid", h.HandlePaid)

	req := httptest.NewRequest(http.MethodPatch, path, nil)
	actor := domain.Actor{ID: 1, BusinessID: 10, Role: domain.RoleOwner, Permissions: domain.NewPermissionSet(domain.RoleOwner)}
	req = req.WithContext(middleware.WithActor(req.Context(), actor))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandlers_RouteToServiceMethods(t *testing.T) {
	tests := []struct {
		path   string
		method string
		status string
	}{
		{"/payment-requests/5/approve", "Approve", "approved"},
		{"/payment-requests/5/reject", "Reject", "rejected"},
		{"/payment-requests/5/paid", "MarkPaid", "paid"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			svc := new(MockCommissionService)
			svc.On(tt.method, mock.Anything, mock.Anything, int64(5)).
				Return(&models.PaymentRequestResponse{ID: 5, Status: tt.status}, nil)

			w := serve(svc, tt.path)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.status)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandlers_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", commissions.ErrPaymentRequestNotFound, http.StatusNotFound},
		{"forbidden", commissions.ErrAccessDenied, http.StatusForbidden},
		{"bad transition", commissions.ErrInvalidRequestStatus, http.StatusConflict},
		{"internal", commissions.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCommissionService)
			svc.On("MarkPaid", mock.Anything, mock.Anything, int64(5)).Return(nil, tt.err)

			w := serve(svc, "/payment-requests/5/paid")
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestHandlers_InvalidID(t *testing.T) {
	w := serve(new(MockCommissionService), "/payment-requests/abc/approve")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
