package cultures

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListCultures(ctx context.Context) ([]Culture, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Culture), args.Error(1)
}

func (m *MockRepository) GetCultureByID(ctx context.Context, id int) (*Culture, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Culture), args.Error(1)
}

func (m *MockRepository) CreateCulture(ctx context.Context, culture *Culture) error {
	args := m.Called(ctx, culture)
	return args.Error(0)
}

func (m *MockRepository) UpdateCulture(ctx context.Context, culture *Culture) error {
	args := m.Called(ctx, culture)
	return args.Error(0)
}

func (m *MockRepository) DeleteCulture(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestCreateCulture(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("CreateCulture", ctx, mock.AnythingOfType("*cultures.Culture")).
		Run(func(args mock.Arguments) { args.Get(1).(*Culture).ID = 7 }).
		Return(nil)

	culture, err := service.CreateCulture(ctx, CreateCultureRequest{Name: "  Riz  "})

	assert.NoError(t, err)
	assert.Equal(t, 7, culture.ID)
	assert.Equal(t, "Riz", culture.Name)
	mockRepo.AssertExpectations(t)
}

func TestCreateCulture_NameRequired(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())

	_, err := service.CreateCulture(context.Background(), CreateCultureRequest{Name: " "})

	assert.ErrorIs(t, err, ErrNameRequired)
	mockRepo.AssertNotCalled(t, "CreateCulture", mock.Anything, mock.Anything)
}

func TestUpdateCulture_Partial(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	price := decimal.NewFromInt(1200000)
	existing := &Culture{ID: 3, Name: "Maïs", TechnicalSheet: "semis en ligne"}
	mockRepo.On("GetCultureByID", ctx, 3).Return(existing, nil)
	mockRepo.On("UpdateCulture", ctx, existing).Return(nil)

	updated, err := service.UpdateCulture(ctx, 3, UpdateCultureRequest{PricePerTonne: &price})

	assert.NoError(t, err)
	assert.Equal(t, "Maïs", updated.Name)
	assert.Equal(t, "semis en ligne", updated.TechnicalSheet)
	assert.True(t, updated.PricePerTonne.Equal(price))
	mockRepo.AssertExpectations(t)
}

func TestUpdateCulture_NotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("GetCultureByID", ctx, 99).Return(nil, nil)

	culture, err := service.UpdateCulture(ctx, 99, UpdateCultureRequest{})

	assert.NoError(t, err)
	assert.Nil(t, culture)
	mockRepo.AssertNotCalled(t, "UpdateCulture", mock.Anything, mock.Anything)
}

func TestDeleteCulture_PropagatesError(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("DeleteCulture", ctx, 5).Return(errors.New("still referenced"))

	assert.Error(t, service.DeleteCulture(ctx, 5))
}

func TestExpectedMarginPerHa(t *testing.T) {
	yield := 4.5
	price := decimal.NewFromInt(1000000)
	cost := decimal.NewFromInt(2500000)
	c := &Culture{YieldPerHectare: &yield, PricePerTonne: &price, OperatingCostPerHa: &cost}

	margin, ok := c.ExpectedMarginPerHa()
	assert.True(t, ok)
	assert.True(t, margin.Equal(decimal.NewFromInt(2000000)))

	_, ok = (&Culture{}).ExpectedMarginPerHa()
	assert.False(t, ok)
}

func TestHandler_GetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockRepo := new(MockRepository)
	router := gin.New()
	NewHandler(NewService(mockRepo, zap.NewNop())).RegisterRoutes(router.Group("/api/v1"))

	mockRepo.On("GetCultureByID", mock.Anything, 12).Return(nil, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cultures/12", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cultures/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_CreateValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockRepo := new(MockRepository)
	router := gin.New()
	NewHandler(NewService(mockRepo, zap.NewNop())).RegisterRoutes(router.Group("/api/v1"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cultures", strings.NewReader(`{"rendement_ha": 3}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockRepo.AssertNotCalled(t, "CreateCulture", mock.Anything, mock.Anything)
}
