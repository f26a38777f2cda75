package schedules

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	branchRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/branch"
	"github.com/m04kA/SMC-SalonService/internal/service/schedules/models"
)

type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) GetByBranch(ctx context.Context, specialistID, branchID int64) ([]*domain.DaySchedule, error) {
	args := m.Called(ctx, specialistID, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DaySchedule), args.Error(1)
}

func (m *MockScheduleRepository) GetOtherBranches(ctx context.Context, specialistID, excludeBranchID int64) ([]domain.BranchSchedules, error) {
	args := m.Called(ctx, specialistID, excludeBranchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BranchSchedules), args.Error(1)
}

func (m *MockScheduleRepository) ReplaceWeek(ctx context.Context, specialistID, branchID int64, days []*domain.DaySchedule) error {
	args := m.Called(ctx, specialistID, branchID, days)
	return args.Error(0)
}

func (m *MockScheduleRepository) LockSpecialistWeekday(ctx context.Context, specialistID int64, weekday time.Weekday) error {
	args := m.Called(ctx, specialistID, weekday)
	return args.Error(0)
}

type MockBranchRepository struct {
	mock.Mock
}

func (m *MockBranchRepository) GetByID(ctx context.Context, id int64) (*domain.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Branch), args.Error(1)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) ObserveScheduleErrors(codes []string) {
	m.Called(codes)
}

// inlineTx выполняет функцию без реальной транзакции
type inlineTx struct {
	serializable int
	readOnly     int
}

func (tx *inlineTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.serializable++
	return fn(ctx)
}

func (tx *inlineTx) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.readOnly++
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func adminActor() domain.Actor {
	return domain.Actor{
		ID:          1,
		BusinessID:  10,
		Role:        domain.RoleBusinessAdmin,
		Permissions: domain.NewPermissionSet(domain.RoleBusinessAdmin),
	}
}

func testBranch() *domain.Branch {
	return &domain.Branch{
		ID:         5,
		BusinessID: 10,
		Name:       "Centro",
		OperatingHours: domain.WeekMap[domain.BusinessOperatingHours]{
			time.Monday: {Shifts: []domain.ShiftInterval{shift("09:00", "18:00")}},
			time.Sunday: {Closed: true},
		},
	}
}

func mondayRequest(start, end string) *models.SaveWeekRequest {
	return &models.SaveWeekRequest{
		SpecialistID: 7,
		BranchID:     5,
		Days: []models.DayRequest{
			{Weekday: "monday", Enabled: true, Shifts: []models.ShiftRequest{{Start: start, End: end}}},
		},
	}
}

func newTestService() (*Service, *MockScheduleRepository, *MockBranchRepository, *MockMetrics, *inlineTx) {
	schedules := new(MockScheduleRepository)
	branches := new(MockBranchRepository)
	metrics := new(MockMetrics)
	tx := &inlineTx{}
	return NewService(schedules, branches, tx, metrics, nopLogger{}), schedules, branches, metrics, tx
}

func TestSaveWeek_Success(t *testing.T) {
	svc, schedules, branches, metrics, tx := newTestService()
	ctx := context.Background()

	branches.On("GetByID", mock.Anything, int64(5)).Return(testBranch(), nil)
	schedules.On("LockSpecialistWeekday", mock.Anything, int64(7), time.Monday).Return(nil).Once()
	schedules.On("GetOtherBranches", mock.Anything, int64(7), int64(5)).
		Return([]domain.BranchSchedules{other(6, "Norte", time.Monday, shift("18:00", "21:00"))}, nil)
	schedules.On("ReplaceWeek", mock.Anything, int64(7), int64(5), mock.MatchedBy(func(days []*domain.DaySchedule) bool {
		return len(days) == 1 && days[0].Weekday == time.Monday && days[0].Enabled && len(days[0].Shifts) == 1
	})).Return(nil).Once()

	resp, err := svc.SaveWeek(ctx, adminActor(), mondayRequest("09:00", "18:00"))

	require.NoError(t, err)
	assert.True(t, resp.Saved)
	assert.Empty(t, resp.Errors)
	require.Len(t, resp.Days, 1)
	assert.Equal(t, "monday", resp.Days[0].Weekday)
	assert.Equal(t, 1, tx.serializable)
	schedules.AssertExpectations(t)
	metrics.AssertNotCalled(t, "ObserveScheduleErrors", mock.Anything)
}

func TestSaveWeek_ConflictIsNotPersisted(t *testing.T) {
	svc, schedules, branches, metrics, _ := newTestService()
	ctx := context.Background()

	branches.On("GetByID", mock.Anything, int64(5)).Return(testBranch(), nil)
	schedules.On("LockSpecialistWeekday", mock.Anything, int64(7), time.Monday).Return(nil)
	schedules.On("GetOtherBranches", mock.Anything, int64(7), int64(5)).
		Return([]domain.BranchSchedules{other(6, "Norte", time.Monday, shift("17:00", "20:00"))}, nil)
	metrics.On("ObserveScheduleErrors", []string{string(domain.CodeBranchOverlap)}).Return().Once()

	resp, err := svc.SaveWeek(ctx, adminActor(), mondayRequest("09:00", "18:00"))

	require.NoError(t, err)
	assert.False(t, resp.Saved)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Message, "overlap 17:00-18:00")
	schedules.AssertNotCalled(t, "ReplaceWeek", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	metrics.AssertExpectations(t)
}

func TestSaveWeek_AccessDenied(t *testing.T) {
	tests := []struct {
		name  string
		actor domain.Actor
	}{
		{
			name: "no permission",
			actor: domain.Actor{ID: 2, BusinessID: 10, Role: domain.RoleReceptionist,
				Permissions: domain.NewPermissionSet(domain.RoleReceptionist, domain.PermAppointmentsCreate)},
		},
		{
			name: "other business",
			actor: domain.Actor{ID: 3, BusinessID: 99, Role: domain.RoleOwner,
				Permissions: domain.NewPermissionSet(domain.RoleOwner)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, schedules, branches, _, _ := newTestService()
			branches.On("GetByID", mock.Anything, int64(5)).Return(testBranch(), nil)

			_, err := svc.SaveWeek(context.Background(), tt.actor, mondayRequest("09:00", "18:00"))

			assert.ErrorIs(t, err, ErrAccessDenied)
			schedules.AssertNotCalled(t, "ReplaceWeek", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSaveWeek_BranchNotFound(t *testing.T) {
	svc, _, branches, _, _ := newTestService()
	branches.On("GetByID", mock.Anything, int64(5)).Return(nil, branchRepo.ErrBranchNotFound)

	_, err := svc.SaveWeek(context.Background(), adminActor(), mondayRequest("09:00", "18:00"))

	assert.ErrorIs(t, err, ErrBranchNotFound)
}

func TestSaveWeek_InvalidWeekday(t *testing.T) {
	svc, _, branches, _, _ := newTestService()
	branches.On("GetByID", mock.Anything, int64(5)).Return(testBranch(), nil)

	req := mondayRequest("09:00", "18:00")
	req.Days[0].Weekday = "funday"

	_, err := svc.SaveWeek(context.Background(), adminActor(), req)

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSaveWeek_PersistenceError(t *testing.T) {
	svc, schedules, branches, _, _ := newTestService()

	branches.On("GetByID", mock.Anything, int64(5)).Return(testBranch(), nil)
	schedules.On("LockSpecialistWeekday", mock.Anything, int64(7), time.Monday).Return(nil)
	schedules.On("GetOtherBranches", mock.Anything, int64(7), int64(5)).Return([]domain.BranchSchedules{}, nil)
	schedules.On("ReplaceWeek", mock.Anything, int64(7), int64(5), mock.Anything).Return(errors.New("connection reset"))

	_, err := svc.SaveWeek(context.Background(), adminActor(), mondayRequest("09:00", "18:00"))

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestCheck_ReturnsErrorsWithoutSaving(t *testing.T) {
	svc, schedules, branches, metrics, tx := newTestService()

	branches.On("GetByID", mock.Anything, int64(5)).Return(testBranch(), nil)
	schedules.On("GetOtherBranches", mock.Anything, int64(7), int64(5)).Return([]domain.BranchSchedules{}, nil)
	metrics.On("ObserveScheduleErrors", mock.Anything).Return()

	resp, err := svc.Check(context.Background(), adminActor(), mondayRequest("08:00", "12:00"))

	require.NoError(t, err)
	assert.False(t, resp.Saved)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, domain.CodeStartsOutsideHours, resp.Errors[0].Code)
	assert.Equal(t, 1, tx.readOnly)
	assert.Equal(t, 0, tx.serializable)
	schedules.AssertNotCalled(t, "LockSpecialistWeekday", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetWeek_SpecialistSeesOwnSchedule(t *testing.T) {
	svc, schedules, branches, _, _ := newTestService()
	actor := domain.Actor{ID: 7, BusinessID: 10, Role: domain.RoleSpecialist,
		Permissions: domain.NewPermissionSet(domain.RoleSpecialist)}

	branches.On("GetByID", mock.Anything, int64(5)).Return(testBranch(), nil)
	schedules.On("GetByBranch", mock.Anything, int64(7), int64(5)).Return([]*domain.DaySchedule{
		{SpecialistID: 7, BranchID: 5, Weekday: time.Tuesday, Enabled: true, Shifts: []domain.ShiftInterval{shift("10:00", "14:00")}},
		{SpecialistID: 7, BranchID: 5, Weekday: time.Monday, Enabled: false},
	}, nil)

	resp, err := svc.GetWeek(context.Background(), actor, 7, 5)

	require.NoError(t, err)
	require.Len(t, resp.Days, 2)
	assert.Equal(t, "monday", resp.Days[0].Weekday)
	assert.Equal(t, "tuesday", resp.Days[1].Weekday)

	_, err = svc.GetWeek(context.Background(), actor, 8, 5)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetWeek_OtherSpecialistRequiresManagePermission(t *testing.T) {
	tests := []struct {
		name    string
		actor   domain.Actor
		allowed bool
	}{
		{
			name: "receptionist without permission",
			actor: domain.Actor{ID: 2, BusinessID: 10, Role: domain.RoleReceptionist,
				Permissions: domain.NewPermissionSet(domain.RoleReceptionist, domain.PermAppointmentsCreate)},
			allowed: false,
		},
		{
			name: "receptionist with schedules.manage",
			actor: domain.Actor{ID: 2, BusinessID: 10, Role: domain.RoleReceptionist,
				Permissions: domain.NewPermissionSet(domain.RoleReceptionist, domain.PermSchedulesManage)},
			allowed: true,
		},
		{
			name:    "owner",
			actor:   domain.Actor{ID: 3, BusinessID: 10, Role: domain.RoleOwner, Permissions: domain.NewPermissionSet(domain.RoleOwner)},
			allowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, schedules, branches, _, _ := newTestService()
			branches.On("GetByID", mock.Anything, int64(5)).Return(testBranch(), nil)
			schedules.On("GetByBranch", mock.Anything, int64(7), int64(5)).Return([]*domain.DaySchedule{}, nil)

			_, err := svc.GetWeek(context.Background(), tt.actor, 7, 5)

			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrAccessDenied)
			schedules.AssertNotCalled(t, "GetByBranch", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
