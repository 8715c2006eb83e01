package finance

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lounaagency/agri-admin-dashboard/internal/projects"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) WithTx(ctx context.Context, fn func(Repository) error) error {
	return fn(m)
}

func (m *MockRepository) GetProject(ctx context.Context, projectID int) (*projects.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*projects.Project), args.Error(1)
}

func (m *MockRepository) ListCostsByProject(ctx context.Context, projectID int) ([]Cost, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]Cost), args.Error(1)
}

func (m *MockRepository) GetCostByID(ctx context.Context, id int) (*Cost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Cost), args.Error(1)
}

func (m *MockRepository) CreateCost(ctx context.Context, cost *Cost) error {
	args := m.Called(ctx, cost)
	return args.Error(0)
}

func (m *MockRepository) UpdateCostStatus(ctx context.Context, id int, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockRepository) ListCostPaymentTotals(ctx context.Context) ([]CostPaymentTotal, error) {
	args := m.Called(ctx)
	return args.Get(0).([]CostPaymentTotal), args.Error(1)
}

func (m *MockRepository) ListPayments(ctx context.Context, costID int) ([]Payment, error) {
	args := m.Called(ctx, costID)
	return args.Get(0).([]Payment), args.Error(1)
}

func (m *MockRepository) CreatePayment(ctx context.Context, payment *Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockRepository) SumPayments(ctx context.Context, costID int) (decimal.Decimal, error) {
	args := m.Called(ctx, costID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRepository) SumCommitted(ctx context.Context, projectID int) (decimal.Decimal, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRepository) SumPaid(ctx context.Context, projectID int) (decimal.Decimal, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRepository) ListInvestments(ctx context.Context, projectID *int) ([]Investment, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]Investment), args.Error(1)
}

func (m *MockRepository) CreateInvestment(ctx context.Context, inv *Investment) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func ar(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func TestPaymentStatusFor(t *testing.T) {
	tests := []struct {
		name        string
		paid, total decimal.Decimal
		want        string
	}{
		{"nothing paid", ar(0), ar(1000), StatusUnengaged},
		{"partially paid", ar(400), ar(1000), StatusInProgress},
		{"exactly paid", ar(1000), ar(1000), StatusPaid},
		{"overpaid", ar(1200), ar(1000), StatusPaid},
		{"zero cost nothing paid", ar(0), ar(0), StatusPaid},
		{"sub-ariary remainder", decimal.RequireFromString("999.99"), ar(1000), StatusInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PaymentStatusFor(tt.paid, tt.total))
			// derivation is a pure function of its inputs
			assert.Equal(t, PaymentStatusFor(tt.paid, tt.total), PaymentStatusFor(tt.paid, tt.total))
		})
	}
}

func TestCreatePayment_RecomputesStatus(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	cost := &Cost{ID: 7, TotalAmount: ar(500000), PaymentStatus: StatusUnengaged}
	mockRepo.On("GetCostByID", ctx, 7).Return(cost, nil)
	mockRepo.On("CreatePayment", ctx, mock.AnythingOfType("*finance.Payment")).Return(nil)
	mockRepo.On("SumPayments", ctx, 7).Return(ar(200000), nil)
	mockRepo.On("UpdateCostStatus", ctx, 7, StatusInProgress).Return(nil)

	payment, err := service.CreatePayment(ctx, CreatePaymentRequest{CostID: 7, Amount: ar(200000), Method: "Mvola"})

	require.NoError(t, err)
	assert.Equal(t, "Mvola", payment.Method)
	assert.False(t, payment.PaidAt.IsZero())
	assert.Equal(t, StatusInProgress, cost.PaymentStatus)
	mockRepo.AssertExpectations(t)
}

func TestCreatePayment_StatusWriteFailureFailsPayment(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("GetCostByID", ctx, 7).Return(&Cost{ID: 7, TotalAmount: ar(100), PaymentStatus: StatusUnengaged}, nil)
	mockRepo.On("CreatePayment", ctx, mock.Anything).Return(nil)
	mockRepo.On("SumPayments", ctx, 7).Return(ar(100), nil)
	mockRepo.On("UpdateCostStatus", ctx, 7, StatusPaid).Return(errors.New("deadlock"))

	_, err := service.CreatePayment(ctx, CreatePaymentRequest{CostID: 7, Amount: ar(100)})

	assert.Error(t, err)
}

func TestCreatePayment_Rejections(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	_, err := service.CreatePayment(ctx, CreatePaymentRequest{CostID: 1, Amount: ar(0)})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	mockRepo.On("GetCostByID", ctx, 2).Return(nil, nil)
	_, err = service.CreatePayment(ctx, CreatePaymentRequest{CostID: 2, Amount: ar(10)})
	assert.ErrorIs(t, err, ErrCostNotFound)

	mockRepo.On("GetCostByID", ctx, 3).Return(&Cost{ID: 3, PaymentStatus: StatusCancelled}, nil)
	_, err = service.CreatePayment(ctx, CreatePaymentRequest{CostID: 3, Amount: ar(10)})
	assert.ErrorIs(t, err, ErrCostCancelled)

	mockRepo.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
}

func TestUpdateCostPaymentStatus_Idempotent(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("GetCostByID", ctx, 4).Return(&Cost{ID: 4, TotalAmount: ar(1000), PaymentStatus: StatusPaid}, nil)
	mockRepo.On("SumPayments", ctx, 4).Return(ar(1000), nil)

	status, err := service.UpdateCostPaymentStatus(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, status)

	status, err = service.UpdateCostPaymentStatus(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, status)

	mockRepo.AssertNotCalled(t, "UpdateCostStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateCostPaymentStatus_CancelledAndLegacy(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("GetCostByID", ctx, 8).Return(&Cost{ID: 8, TotalAmount: ar(1000), PaymentStatus: StatusCancelled}, nil)
	status, err := service.UpdateCostPaymentStatus(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, status)
	mockRepo.AssertNotCalled(t, "SumPayments", ctx, 8)

	// an unknown stored value is replaced by the derived status
	mockRepo.On("GetCostByID", ctx, 9).Return(&Cost{ID: 9, TotalAmount: ar(1000), PaymentStatus: "Pending"}, nil)
	mockRepo.On("SumPayments", ctx, 9).Return(ar(250), nil)
	mockRepo.On("UpdateCostStatus", ctx, 9, StatusInProgress).Return(nil)
	status, err = service.UpdateCostPaymentStatus(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, status)
	mockRepo.AssertExpectations(t)
}

func TestCreateCost_TotalFromSurface(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("GetProject", ctx, 5).Return(&projects.Project{ID: 5, SurfaceHa: 2.5}, nil)
	mockRepo.On("CreateCost", ctx, mock.AnythingOfType("*finance.Cost")).Return(nil)

	cost, err := service.CreateCost(ctx, CreateCostRequest{
		ProjectID:        5,
		ExpenseType:      "Semences",
		AmountPerHectare: ar(120000),
	})

	require.NoError(t, err)
	assert.True(t, cost.TotalAmount.Equal(ar(300000)), cost.TotalAmount.String())
	assert.Equal(t, StatusUnengaged, cost.PaymentStatus)
}

func TestGetFinancialSummary(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("GetProject", ctx, 9).Return(&projects.Project{ID: 9, Budget: ar(5000000)}, nil)
	mockRepo.On("SumCommitted", ctx, 9).Return(ar(3000000), nil)
	mockRepo.On("SumPaid", ctx, 9).Return(ar(1250000), nil)

	summary, err := service.GetFinancialSummary(ctx, 9)

	require.NoError(t, err)
	assert.True(t, summary.TotalBudget.Equal(ar(5000000)))
	assert.True(t, summary.TotalCommitted.Equal(ar(3000000)))
	assert.True(t, summary.TotalPaid.Equal(ar(1250000)))
	assert.True(t, summary.Remaining.Equal(ar(3750000)))
}

func TestFindStatusDrift(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("ListCostPaymentTotals", ctx).Return([]CostPaymentTotal{
		{CostID: 1, TotalAmount: ar(100), PaymentStatus: StatusPaid, Paid: ar(100)},
		{CostID: 2, TotalAmount: ar(100), PaymentStatus: StatusUnengaged, Paid: ar(40)},
		{CostID: 3, TotalAmount: ar(100), PaymentStatus: StatusCancelled, Paid: ar(40)},
	}, nil)

	drift, err := service.FindStatusDrift(ctx)

	require.NoError(t, err)
	require.Len(t, drift, 1)
	assert.Equal(t, 2, drift[0].CostID)
	assert.Equal(t, StatusInProgress, drift[0].ExpectedStatus)
}

func TestFindStatusDrift_ZeroTotalLegacyRows(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("ListCostPaymentTotals", ctx).Return([]CostPaymentTotal{
		{CostID: 4, TotalAmount: ar(0), PaymentStatus: StatusPaid, Paid: ar(0)},
		{CostID: 5, TotalAmount: ar(0), PaymentStatus: StatusUnengaged, Paid: ar(0)},
	}, nil)

	drift, err := service.FindStatusDrift(ctx)

	require.NoError(t, err)
	// a zero-total cost stays paid and is never rewritten to unengaged
	require.Len(t, drift, 1)
	assert.Equal(t, 5, drift[0].CostID)
	assert.Equal(t, StatusPaid, drift[0].ExpectedStatus)
}

func TestCancelCost(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("GetCostByID", ctx, 6).Return(&Cost{ID: 6, PaymentStatus: StatusInProgress}, nil)
	mockRepo.On("UpdateCostStatus", ctx, 6, StatusCancelled).Return(nil)

	cost, err := service.CancelCost(ctx, 6)

	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cost.PaymentStatus)
}
