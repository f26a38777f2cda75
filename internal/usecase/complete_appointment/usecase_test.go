package complete_appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/appointment"
	commissionRepo "github.com/m04kA/SMC-SalonService/internal/infra/storage/commission"
	"github.com/m04kA/SMC-SalonService/internal/service/appointments"
	"github.com/m04kA/SMC-SalonService/internal/service/commissions"
	"github.com/m04kA/SMC-SalonService/pkg/ptr"
)

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) Complete(ctx context.Context, appt *domain.Appointment, expectedVersion int64) (*domain.Appointment, error) {
	args := m.Called(ctx, appt, expectedVersion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	args := m.Called(ctx, payment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

type MockPaymentMethodRepository struct {
	mock.Mock
}

func (m *MockPaymentMethodRepository) GetByID(ctx context.Context, id int64) (*domain.PaymentMethod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentMethod), args.Error(1)
}

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceInfo), args.Error(1)
}

type MockSpecialistRateRepository struct {
	mock.Mock
}

func (m *MockSpecialistRateRepository) GetRate(ctx context.Context, businessID, specialistID int64) (domain.SpecialistRate, error) {
	args := m.Called(ctx, businessID, specialistID)
	return args.Get(0).(domain.SpecialistRate), args.Error(1)
}

type MockCommissionRepository struct {
	mock.Mock
}

func (m *MockCommissionRepository) Create(ctx context.Context, record *domain.CommissionRecord) (*domain.CommissionRecord, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionRecord), args.Error(1)
}

func (m *MockCommissionRepository) GetByAppointmentID(ctx context.Context, appointmentID int64) (*domain.CommissionRecord, error) {
	args := m.Called(ctx, appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionRecord), args.Error(1)
}

type MockEvidenceStorage struct {
	mock.Mock
}

func (m *MockEvidenceStorage) Upload(ctx context.Context, appointmentID int64, photo EvidencePhoto) (string, error) {
	args := m.Called(ctx, appointmentID, photo)
	return args.String(0), args.Error(1)
}

type staticRules domain.RuleSet

func (r staticRules) GetRuleSet(context.Context, int64) (domain.RuleSet, error) {
	return domain.RuleSet(r), nil
}

// inlineTx выполняет функцию без транзакции, committed отмечает успешный вызов
type inlineTx struct {
	committed bool
}

func (tx *inlineTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	tx.committed = true
	return nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type recordingMetrics struct {
	transitions []string
	denials     []string
	commissions int
}

func (m *recordingMetrics) ObserveTransition(from, to, result string) {
	m.transitions = append(m.transitions, from+">"+to+":"+result)
}

func (m *recordingMetrics) ObserveGuardDenial(guard string) {
	m.denials = append(m.denials, guard)
}

func (m *recordingMetrics) ObserveCommissionGenerated() {
	m.commissions++
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var now = time.Date(2025, 5, 5, 18, 0, 0, 0, time.UTC)

type fixture struct {
	uc          *UseCase
	tx          *inlineTx
	metrics     *recordingMetrics
	appts       *MockAppointmentRepository
	payments    *MockPaymentRepository
	methods     *MockPaymentMethodRepository
	services    *MockServiceRepository
	rates       *MockSpecialistRateRepository
	commissions *MockCommissionRepository
	evidence    *MockEvidenceStorage
}

func newFixture(rules domain.RuleSet) *fixture {
	f := &fixture{
		tx:          &inlineTx{},
		metrics:     &recordingMetrics{},
		appts:       new(MockAppointmentRepository),
		payments:    new(MockPaymentRepository),
		methods:     new(MockPaymentMethodRepository),
		services:    new(MockServiceRepository),
		rates:       new(MockSpecialistRateRepository),
		commissions: new(MockCommissionRepository),
		evidence:    new(MockEvidenceStorage),
	}
	f.uc = NewUseCase(
		f.appts, f.payments, f.methods, f.services, f.rates, f.commissions,
		staticRules(rules), f.evidence,
		appointments.NewGuards(24), commissions.NewCalculator(2),
		f.tx, f.metrics, nopLogger{},
	).WithTimeProvider(fixedClock{now: now})
	return f
}

func inProgress() *domain.Appointment {
	return &domain.Appointment{
		ID:           1,
		BusinessID:   10,
		BranchID:     2,
		SpecialistID: 7,
		ServiceID:    3,
		StartTime:    now.Add(-time.Hour),
		EndTime:      now,
		Status:       domain.StatusInProgress,
		TotalAmount:  decimal.NewFromInt(50000),
		PaidAmount:   decimal.Zero,
		Version:      4,
	}
}

func receptionist() domain.Actor {
	return domain.Actor{ID: 100, BusinessID: 10, Role: domain.RoleReceptionist,
		Permissions: domain.NewPermissionSet(domain.RoleReceptionist,
			domain.PermAppointmentsComplete, domain.PermAppointmentsCloseWithPayment)}
}

func rulesOf(keys ...domain.RuleKey) domain.RuleSet {
	rules := make([]domain.BusinessRule, 0, len(keys))
	for _, k := range keys {
		rules = append(rules, domain.BusinessRule{Key: k, Enabled: true})
	}
	return domain.NewRuleSet(rules)
}

// expectCommission настраивает расчет комиссии по ставке услуги 40%
func (f *fixture) expectCommission() {
	f.services.On("GetByID", mock.Anything, int64(3)).Return(&domain.ServiceInfo{
		ID: 3, BusinessID: 10, CommissionPercentage: ptr.Ptr(decimal.NewFromInt(40)),
	}, nil)
	f.rates.On("GetRate", mock.Anything, int64(10), int64(7)).Return(domain.SpecialistRate{
		SpecialistID: 7, BusinessDefault: decimal.NewFromInt(30),
	}, nil)
	f.commissions.On("Create", mock.Anything, mock.Anything).Return(
		&domain.CommissionRecord{ID: 55, CommissionAmount: decimal.NewFromInt(20000)}, nil)
}

func (f *fixture) expectComplete() {
	f.appts.On("Complete", mock.Anything, mock.Anything, int64(4)).Return(
		&domain.Appointment{ID: 1, BusinessID: 10, SpecialistID: 7, ServiceID: 3,
			StartTime: now.Add(-time.Hour), Status: domain.StatusCompleted,
			TotalAmount: decimal.NewFromInt(50000), PaidAmount: decimal.NewFromInt(50000), Version: 5}, nil)
}

func TestExecute_CloseAndCharge(t *testing.T) {
	rules := domain.NewRuleSet([]domain.BusinessRule{
		{Key: domain.RuleRequiresFullPayment, Enabled: true},
		{Key: domain.RuleCommissionMode, Enabled: true, Value: []byte(`"POR_SERVICIO"`)},
	})
	f := newFixture(rules)
	f.appts.On("GetByID", mock.Anything, int64(1)).Return(inProgress(), nil)
	f.methods.On("GetByID", mock.Anything, int64(9)).Return(&domain.PaymentMethod{ID: 9, BusinessID: 10, Name: "cash", Active: true}, nil)
	f.payments.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
		return p.AppointmentID == 1 && p.Amount.Equal(decimal.NewFromInt(50000)) && p.RegisteredBy == 100
	})).Return(&domain.Payment{ID: 77, AppointmentID: 1, MethodID: 9, Amount: decimal.NewFromInt(50000)}, nil)
	f.appts.On("Complete", mock.Anything, mock.MatchedBy(func(a *domain.Appointment) bool {
		return a.Status == domain.StatusCompleted &&
			a.PaidAmount.Equal(decimal.NewFromInt(50000)) &&
			a.CompletedAt != nil && a.CompletedAt.Equal(now)
	}), int64(4)).Return(&domain.Appointment{ID: 1, BusinessID: 10, SpecialistID: 7, ServiceID: 3,
		Status: domain.StatusCompleted, TotalAmount: decimal.NewFromInt(50000), PaidAmount: decimal.NewFromInt(50000)}, nil)
	f.services.On("GetByID", mock.Anything, int64(3)).Return(&domain.ServiceInfo{
		ID: 3, BusinessID: 10, CommissionPercentage: ptr.Ptr(decimal.NewFromInt(40)),
	}, nil)
	f.rates.On("GetRate", mock.Anything, int64(10), int64(7)).Return(domain.SpecialistRate{BusinessDefault: decimal.NewFromInt(30)}, nil)
	f.commissions.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.CommissionRecord) bool {
		return r.AppointmentID == 1 &&
			r.CommissionAmount.Equal(decimal.NewFromInt(20000)) &&
			r.CommissionPercentage.Equal(decimal.NewFromInt(40)) &&
			r.Status == domain.CommissionPending
	})).Return(&domain.CommissionRecord{ID: 55, CommissionAmount: decimal.NewFromInt(20000)}, nil)

	resp, err := f.uc.Execute(context.Background(), &Request{
		Actor:         receptionist(),
		AppointmentID: 1,
		Payment:       &PaymentInput{MethodID: 9, Amount: decimal.NewFromInt(50000)},
		Confirmation:  AutoConfirm{},
	})

	require.NoError(t, err)
	assert.True(t, resp.Confirmed)
	assert.Equal(t, domain.StatusCompleted, resp.Appointment.Status)
	assert.Equal(t, int64(77), resp.Payment.ID)
	assert.Equal(t, int64(55), resp.Commission.ID)
	assert.True(t, resp.Summary.Outstanding.IsZero())
	assert.Equal(t, []string{"in_progress>completed:ok"}, f.metrics.transitions)
	assert.Equal(t, 1, f.metrics.commissions)
	f.appts.AssertExpectations(t)
	f.payments.AssertExpectations(t)
	f.commissions.AssertExpectations(t)
}

func TestExecute_GuardDeniedPersistsNothing(t *testing.T) {
	f := newFixture(rulesOf(domain.RuleRequiresConsentForCompletion))
	f.appts.On("GetByID", mock.Anything, int64(1)).Return(inProgress(), nil)

	_, err := f.uc.Execute(context.Background(), &Request{Actor: receptionist(), AppointmentID: 1})

	require.ErrorIs(t, err, ErrDenied)
	var verr domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Message, "consent")
	assert.Equal(t, []string{appointments.GuardComplete}, f.metrics.denials)
	f.evidence.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	f.appts.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	f.commissions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExecute_FullPaymentRuleCountsSuppliedPayment(t *testing.T) {
	f := newFixture(rulesOf(domain.RuleRequiresFullPayment))
	f.appts.On("GetByID", mock.Anything, int64(1)).Return(inProgress(), nil)

	// без оплаты guard запрещает завершение
	_, err := f.uc.Execute(context.Background(), &Request{Actor: receptionist(), AppointmentID: 1})
	require.ErrorIs(t, err, ErrDenied)

	// частичная оплата тоже не покрывает остаток
	_, err = f.uc.Execute(context.Background(), &Request{
		Actor:         receptionist(),
		AppointmentID: 1,
		Payment:       &PaymentInput{MethodID: 9, Amount: decimal.NewFromInt(20000)},
	})
	require.ErrorIs(t, err, ErrDenied)
	f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExecute_PaymentRequiresClosePermission(t *testing.T) {
	f := newFixture(domain.NewRuleSet(nil))
	f.appts.On("GetByID", mock.Anything, int64(1)).Return(inProgress(), nil)
	actor := domain.Actor{ID: 7, BusinessID: 10, Role: domain.RoleSpecialist,
		Permissions: domain.NewPermissionSet(domain.RoleSpecialist, domain.PermAppointmentsComplete)}

	_, err := f.uc.Execute(context.Background(), &Request{
		Actor:         actor,
		AppointmentID: 1,
		Payment:       &PaymentInput{MethodID: 9, Amount: decimal.NewFromInt(50000)},
	})

	assert.ErrorIs(t, err, ErrDenied)
}

func TestExecute_EvidenceFailureIsWarning(t *testing.T) {
	f := newFixture(rulesOf(domain.RuleRequiresEvidencePhotos))
	f.appts.On("GetByID", mock.Anything, int64(1)).Return(inProgress(), nil)
	good := EvidencePhoto{FileName: "after.jpg", ContentType: "image/jpeg", Content: []byte{1}}
	bad := EvidencePhoto{FileName: "closeup.jpg", ContentType: "image/jpeg", Content: []byte{2}}
	f.evidence.On("Upload", mock.Anything, int64(1), good).Return("https://files/after.jpg", nil)
	f.evidence.On("Upload", mock.Anything, int64(1), bad).Return("", errors.New("storage unavailable"))
	f.appts.On("Complete", mock.Anything, mock.MatchedBy(func(a *domain.Appointment) bool {
		return len(a.EvidencePhotos) == 1 && a.EvidencePhotos[0] == "https://files/after.jpg"
	}), int64(4)).Return(&domain.Appointment{ID: 1, BusinessID: 10, SpecialistID: 7, ServiceID: 3,
		Status: domain.StatusCompleted, TotalAmount: decimal.NewFromInt(50000)}, nil)
	f.expectCommission()

	resp, err := f.uc.Execute(context.Background(), &Request{
		Actor:         receptionist(),
		AppointmentID: 1,
		Evidence:      []EvidencePhoto{good, bad},
	})

	require.NoError(t, err)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "closeup.jpg")
	assert.Equal(t, 1, resp.Summary.EvidenceCount)
	f.appts.AssertExpectations(t)
}

func TestExecute_FailedUploadsDoNotSatisfyEvidenceRule(t *testing.T) {
	f := newFixture(rulesOf(domain.RuleRequiresEvidencePhotos))
	f.appts.On("GetByID", mock.Anything, int64(1)).Return(inProgress(), nil)
	photo := EvidencePhoto{FileName: "after.jpg", ContentType: "image/jpeg", Content: []byte{1}}
	f.evidence.On("Upload", mock.Anything, int64(1), photo).Return("", errors.New("storage unavailable"))

	_, err := f.uc.Execute(context.Background(), &Request{
		Actor:         receptionist(),
		AppointmentID: 1,
		Evidence:      []EvidencePhoto{photo},
	})

	require.ErrorIs(t, err, ErrDenied)
	var verr domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Message, "evidence photo")
	assert.False(t, f.tx.committed)
	f.evidence.AssertExpectations(t)
	f.appts.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	f.commissions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExecute_FailedUploadsWithoutEvidenceRule(t *testing.T) {
	f := newFixture(domain.NewRuleSet(nil))
	f.appts.On("GetByID", mock.Anything, int64(1)).Return(inProgress(), nil)
	photo := EvidencePhoto{FileName: "after.jpg", ContentType: "image/jpeg", Content: []byte{1}}
	f.evidence.On("Upload", mock.Anything, int64(1), photo).Return("", errors.New("storage unavailable"))
	f.expectComplete()
	f.expectCommission()

	resp, err := f.uc.Execute(context.Background(), &Request{
		Actor:         receptionist(),
		AppointmentID: 1,
		Evidence:      []EvidencePhoto{photo},
	})

	require.NoError(t, err)
	require.Len(t, resp.Warnings, 1)
	assert.Zero(t, resp.Summary.EvidenceCount)
	assert.True(t, f.tx.committed)
}

func TestExecute_PaymentValidation(t *testing.T) {
	tests := []struct {
		name    string
		payment PaymentInput
		method  *domain.PaymentMethod
		err     error
	}{
		{
			name:    "missing method",
			payment: PaymentInput{Amount: decimal.NewFromInt(100)},
			err:     ErrInvalidPayment,
		},
		{
			name:    "zero amount",
			payment: PaymentInput{MethodID: 9, Amount: decimal.Zero},
			err:     ErrInvalidPayment,
		},
		{
			name:    "above outstanding",
			payment: PaymentInput{MethodID: 9, Amount: decimal.NewFromInt(60000)},
			err:     ErrInvalidPayment,
		},
		{
			name:    "proof required",
			payment: PaymentInput{MethodID: 9, Amount: decimal.NewFromInt(100)},
			method:  &domain.PaymentMethod{ID: 9, BusinessID: 10, Name: "transfer", RequiresProof: true, Active: true},
			err:     ErrInvalidPayment,
		},
		{
			name:    "method of another business",
			payment: PaymentInput{MethodID: 9, Amount: decimal.NewFromInt(100)},
			method:  &domain.PaymentMethod{ID: 9, BusinessID: 11, Name: "cash", Active: true},
			err:     ErrPaymentMethodNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(domain.NewRuleSet(nil))
			f.appts.On("GetByID", mock.Anything, int64(1)).Return(inProgress(), nil)
			if tt.method != nil {
				f.methods.On("GetByID", mock.Anything, int64(9)).Return(tt.method, nil)
			}

			payment := tt.payment
			_, err := f.uc.Execute(context.Background(), &Request{Actor: receptionist(), AppointmentID: 1, Payment: &payment})

			assert.ErrorIs(t, err, tt.err)
			f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			f.appts.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestExecute_ProofSatisfiesMethod(t *testing.T) {
	f := newFixture(domain.NewRuleSet(nil))
	f.appts.On("GetByID", mock.Anything, int64(1)).Return(inProgress(), nil)
	f.methods.On("GetByID", mock.Anything, int64(9)).Return(
		&domain.PaymentMethod{ID: 9, BusinessID: 10, Name: "transfer", RequiresProof: true, Active: true}, nil)
	f.payments.On("Create", mock.Anything, mock.Anything).Return(&domain.Payment{ID: 1, Amount: decimal.NewFromInt(100)}, nil)
	f.expectComplete()
	f.expectCommission()

	_, err := f.uc.Execute(context.Background(), &Request{
		Actor:         receptionist(),
		AppointmentID: 1,
		Payment:       &PaymentInput{MethodID: 9, Amount: decimal.NewFromInt(100), ProofImageURL: ptr.Ptr("https://files/receipt.png")},
	})

	require.NoError(t, err)
}

func TestExecute_NotConfirmed(t *testing.T) {
	f := newFixture(domain.NewRuleSet(nil))
	f.appts.On("GetByID", mock.Anything, int64(1)).Return(inProgress(), nil)

	resp, err := f.uc.Execute(context.Background(), &Request{
		Actor:         receptionist(),
		AppointmentID: 1,
		Confirmation:  ConfirmedFlag(false),
	})

	require.NoError(t, err)
	assert.False(t, resp.Confirmed)
	assert.True(t, resp.Summary.Outstanding.Equal(decimal.NewFromInt(50000)))
	assert.False(t, f.tx.committed)
	f.appts.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_PersistenceFailureKeepsInProgress(t *testing.T) {
	f := newFixture(domain.NewRuleSet(nil))
	f.appts.On("GetByID", mock.Anything, int64(1)).Return(inProgress(), nil)
	f.appts.On("Complete", mock.Anything, mock.Anything, int64(4)).Return(nil, errors.New("connection reset"))

	_, err := f.uc.Execute(context.Background(), &Request{Actor: receptionist(), AppointmentID: 1})

	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.False(t, f.tx.committed)
	assert.Equal(t, []string{"in_progress>completed:error"}, f.metrics.transitions)
	f.commissions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExecute_VersionConflict(t *testing.T) {
	f := newFixture(domain.NewRuleSet(nil))
	f.appts.On("GetByID", mock.Anything, int64(1)).Return(inProgress(), nil)
	f.appts.On("Complete", mock.Anything, mock.Anything, int64(4)).Return(nil, appointmentRepo.ErrVersionConflict)

	_, err := f.uc.Execute(context.Background(), &Request{Actor: receptionist(), AppointmentID: 1})

	assert.ErrorIs(t, err, ErrVersionConflict)
	f.commissions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExecute_CommissionFailureAfterCommit(t *testing.T) {
	f := newFixture(domain.NewRuleSet(nil))
	f.appts.On("GetByID", mock.Anything, int64(1)).Return(inProgress(), nil)
	f.expectComplete()
	f.services.On("GetByID", mock.Anything, int64(3)).Return(&domain.ServiceInfo{ID: 3, BusinessID: 10}, nil)
	f.rates.On("GetRate", mock.Anything, int64(10), int64(7)).Return(domain.SpecialistRate{BusinessDefault: decimal.NewFromInt(30)}, nil)
	f.commissions.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("disk full"))

	_, err := f.uc.Execute(context.Background(), &Request{Actor: receptionist(), AppointmentID: 1})

	require.ErrorIs(t, err, ErrCommissionNotGenerated)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.True(t, f.tx.committed)
	assert.Zero(t, f.metrics.commissions)
}

func completedWithoutCommission() *domain.Appointment {
	appt := inProgress()
	appt.Status = domain.StatusCompleted
	appt.PaidAmount = decimal.NewFromInt(50000)
	appt.CompletedAt = ptr.Ptr(now)
	appt.Version = 5
	return appt
}

func TestExecute_RetryGeneratesMissingCommission(t *testing.T) {
	f := newFixture(domain.NewRuleSet(nil))
	f.appts.On("GetByID", mock.Anything, int64(1)).Return(completedWithoutCommission(), nil)
	f.commissions.On("GetByAppointmentID", mock.Anything, int64(1)).Return(nil, commissionRepo.ErrCommissionNotFound)
	f.expectCommission()

	resp, err := f.uc.Execute(context.Background(), &Request{Actor: receptionist(), AppointmentID: 1})

	require.NoError(t, err)
	assert.True(t, resp.Confirmed)
	assert.Equal(t, int64(55), resp.Commission.ID)
	assert.Equal(t, domain.StatusCompleted, resp.Appointment.Status)
	assert.Nil(t, resp.Payment)
	assert.Equal(t, 1, f.metrics.commissions)
	assert.False(t, f.tx.committed)
	f.appts.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	f.commissions.AssertExpectations(t)
}

func TestExecute_RetryWithExistingCommissionIsDenied(t *testing.T) {
	f := newFixture(domain.NewRuleSet(nil))
	f.appts.On("GetByID", mock.Anything, int64(1)).Return(completedWithoutCommission(), nil)
	f.commissions.On("GetByAppointmentID", mock.Anything, int64(1)).Return(&domain.CommissionRecord{ID: 55, AppointmentID: 1}, nil)

	_, err := f.uc.Execute(context.Background(), &Request{Actor: receptionist(), AppointmentID: 1})

	require.ErrorIs(t, err, ErrDenied)
	assert.Contains(t, err.Error(), "commission exists")
	f.commissions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExecute_RetryRejectsPaymentAndEvidence(t *testing.T) {
	f := newFixture(domain.NewRuleSet(nil))
	f.appts.On("GetByID", mock.Anything, int64(1)).Return(completedWithoutCommission(), nil)
	f.commissions.On("GetByAppointmentID", mock.Anything, int64(1)).Return(nil, commissionRepo.ErrCommissionNotFound)

	_, err := f.uc.Execute(context.Background(), &Request{
		Actor:         receptionist(),
		AppointmentID: 1,
		Payment:       &PaymentInput{MethodID: 9, Amount: decimal.NewFromInt(100)},
	})

	require.ErrorIs(t, err, ErrDenied)
	f.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.commissions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExecute_RetryRequiresCompletePermission(t *testing.T) {
	f := newFixture(domain.NewRuleSet(nil))
	f.appts.On("GetByID", mock.Anything, int64(1)).Return(completedWithoutCommission(), nil)
	actor := domain.Actor{ID: 100, BusinessID: 10, Role: domain.RoleReceptionist,
		Permissions: domain.NewPermissionSet(domain.RoleReceptionist, domain.PermAppointmentsEdit)}

	_, err := f.uc.Execute(context.Background(), &Request{Actor: actor, AppointmentID: 1})

	require.ErrorIs(t, err, ErrDenied)
	f.commissions.AssertNotCalled(t, "GetByAppointmentID", mock.Anything, mock.Anything)
}

func TestExecute_CommissionAlreadyCreatedConcurrently(t *testing.T) {
	f := newFixture(domain.NewRuleSet(nil))
	f.appts.On("GetByID", mock.Anything, int64(1)).Return(inProgress(), nil)
	f.expectComplete()
	f.services.On("GetByID", mock.Anything, int64(3)).Return(&domain.ServiceInfo{ID: 3, BusinessID: 10}, nil)
	f.rates.On("GetRate", mock.Anything, int64(10), int64(7)).Return(domain.SpecialistRate{BusinessDefault: decimal.NewFromInt(30)}, nil)
	f.commissions.On("Create", mock.Anything, mock.Anything).Return(nil, commissionRepo.ErrCommissionExists)
	f.commissions.On("GetByAppointmentID", mock.Anything, int64(1)).Return(
		&domain.CommissionRecord{ID: 56, AppointmentID: 1, CommissionAmount: decimal.NewFromInt(15000)}, nil)

	resp, err := f.uc.Execute(context.Background(), &Request{Actor: receptionist(), AppointmentID: 1})

	require.NoError(t, err)
	assert.Equal(t, int64(56), resp.Commission.ID)
}

func TestExecute_NotFound(t *testing.T) {
	f := newFixture(domain.NewRuleSet(nil))
	f.appts.On("GetByID", mock.Anything, int64(1)).Return(nil, appointmentRepo.ErrAppointmentNotFound)

	_, err := f.uc.Execute(context.Background(), &Request{Actor: receptionist(), AppointmentID: 1})

	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}
