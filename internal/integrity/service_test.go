package integrity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lounaagency/agri-admin-dashboard/internal/finance"
	"github.com/lounaagency/agri-admin-dashboard/internal/users"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListOrphanCultures(ctx context.Context) ([]OrphanCulture, error) {
	args := m.Called(ctx)
	return args.Get(0).([]OrphanCulture), args.Error(1)
}

func (m *MockRepository) DeleteOrphanCultures(ctx context.Context, ids []int) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserService struct {
	users.Service
	mock.Mock
}

func (m *MockUserService) ListUsersWithoutRole(ctx context.Context) ([]users.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]users.User), args.Error(1)
}

func (m *MockUserService) AssignRole(ctx context.Context, id uuid.UUID, role string) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

type MockFinanceService struct {
	finance.Service
	mock.Mock
}

func (m *MockFinanceService) FindStatusDrift(ctx context.Context) ([]finance.CostDrift, error) {
	args := m.Called(ctx)
	return args.Get(0).([]finance.CostDrift), args.Error(1)
}

func (m *MockFinanceService) UpdateCostPaymentStatus(ctx context.Context, costID int) (string, error) {
	args := m.Called(ctx, costID)
	return args.String(0), args.Error(1)
}

var fixedNow = time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

func newTestService(repo Repository, us users.Service, fs finance.Service) *sweeper {
	s := NewService(repo, us, fs, zap.NewNop()).(*sweeper)
	s.now = func() time.Time { return fixedNow }
	return s
}

var roleLess = users.User{ID: uuid.MustParse("7d3c3a2e-1f4b-4c8e-9a51-2b6f0d9e8a11"), Email: "rakoto@example.mg", CreatedAt: fixedNow}

var drift = finance.CostDrift{
	CostID:         5,
	ProjectID:      2,
	StoredStatus:   finance.StatusUnengaged,
	ExpectedStatus: finance.StatusInProgress,
	Paid:           decimal.NewFromInt(50000),
	Total:          decimal.NewFromInt(300000),
}

func TestScan(t *testing.T) {
	repo := new(MockRepository)
	us := new(MockUserService)
	fs := new(MockFinanceService)
	us.On("ListUsersWithoutRole", mock.Anything).Return([]users.User{roleLess}, nil)
	repo.On("ListOrphanCultures", mock.Anything).Return([]OrphanCulture{{ID: 9, ProjectID: 42, CultureID: 1}}, nil)
	fs.On("FindStatusDrift", mock.Anything).Return([]finance.CostDrift{drift}, nil)

	report, err := newTestService(repo, us, fs).Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Total())
	assert.Equal(t, map[string]int{KindUserWithoutRole: 1, KindOrphanCulture: 1, KindCostStatusDrift: 1}, report.Counts())
	assert.Equal(t, "rakoto@example.mg", report.UsersWithoutRole[0].Email)
	assert.Equal(t, fixedNow, report.ScannedAt)
}

func TestScan_CleanDatabase(t *testing.T) {
	repo := new(MockRepository)
	us := new(MockUserService)
	fs := new(MockFinanceService)
	us.On("ListUsersWithoutRole", mock.Anything).Return([]users.User(nil), nil)
	repo.On("ListOrphanCultures", mock.Anything).Return([]OrphanCulture(nil), nil)
	fs.On("FindStatusDrift", mock.Anything).Return([]finance.CostDrift(nil), nil)

	report, err := newTestService(repo, us, fs).Scan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Total())

	// empty lists, not null, in the JSON body
	body, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"orphanCultures":[]`)
	assert.Contains(t, string(body), `"costDrift":[]`)
}

func TestScan_QueryFailure(t *testing.T) {
	repo := new(MockRepository)
	us := new(MockUserService)
	us.On("ListUsersWithoutRole", mock.Anything).Return([]users.User(nil), errors.New("db down"))

	_, err := newTestService(repo, us, new(MockFinanceService)).Scan(context.Background())
	assert.Error(t, err)
	repo.AssertNotCalled(t, "ListOrphanCultures", mock.Anything)
}

func TestRepair(t *testing.T) {
	repo := new(MockRepository)
	us := new(MockUserService)
	fs := new(MockFinanceService)
	us.On("ListUsersWithoutRole", mock.Anything).Return([]users.User{roleLess}, nil).Once()
	us.On("ListUsersWithoutRole", mock.Anything).Return([]users.User(nil), nil)
	repo.On("ListOrphanCultures", mock.Anything).Return([]OrphanCulture{{ID: 9, ProjectID: 42}, {ID: 10, ProjectID: 42}}, nil).Once()
	repo.On("ListOrphanCultures", mock.Anything).Return([]OrphanCulture(nil), nil)
	fs.On("FindStatusDrift", mock.Anything).Return([]finance.CostDrift{drift}, nil).Once()
	fs.On("FindStatusDrift", mock.Anything).Return([]finance.CostDrift(nil), nil)

	us.On("AssignRole", mock.Anything, roleLess.ID, users.RoleTechnician).Return(nil)
	repo.On("DeleteOrphanCultures", mock.Anything, []int{9, 10}).Return(int64(2), nil)
	fs.On("UpdateCostPaymentStatus", mock.Anything, 5).Return(finance.StatusInProgress, nil)

	result, err := newTestService(repo, us, fs).Repair(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.RolesAssigned)
	assert.Equal(t, int64(2), result.CulturesDeleted)
	assert.Equal(t, 1, result.StatusesRepaired)
	assert.Empty(t, result.Failures)
	repo.AssertExpectations(t)
	us.AssertExpectations(t)
	fs.AssertExpectations(t)
}

func TestRepair_ContinuesAfterItemFailure(t *testing.T) {
	other := drift
	other.CostID = 6

	repo := new(MockRepository)
	us := new(MockUserService)
	fs := new(MockFinanceService)
	us.On("ListUsersWithoutRole", mock.Anything).Return([]users.User{roleLess}, nil)
	repo.On("ListOrphanCultures", mock.Anything).Return([]OrphanCulture(nil), nil)
	fs.On("FindStatusDrift", mock.Anything).Return([]finance.CostDrift{drift, other}, nil)

	us.On("AssignRole", mock.Anything, roleLess.ID, users.RoleTechnician).Return(users.ErrRoleNotFound)
	fs.On("UpdateCostPaymentStatus", mock.Anything, 5).Return("", errors.New("timeout"))
	fs.On("UpdateCostPaymentStatus", mock.Anything, 6).Return(finance.StatusPaid, nil)

	result, err := newTestService(repo, us, fs).Repair(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.RolesAssigned)
	assert.Equal(t, 1, result.StatusesRepaired)
	assert.Len(t, result.Failures, 2)
	repo.AssertNotCalled(t, "DeleteOrphanCultures", mock.Anything, mock.Anything)
}

func TestHandler_Scan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := new(MockRepository)
	us := new(MockUserService)
	fs := new(MockFinanceService)
	us.On("ListUsersWithoutRole", mock.Anything).Return([]users.User(nil), nil)
	repo.On("ListOrphanCultures", mock.Anything).Return([]OrphanCulture{{ID: 9, ProjectID: 42}}, nil)
	fs.On("FindStatusDrift", mock.Anything).Return([]finance.CostDrift(nil), nil)

	router := gin.New()
	NewHandler(newTestService(repo, us, fs)).RegisterRoutes(router.Group("/api/v1"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/integrity", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body["orphanCultures"], 1)
}
