package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) WithTx(ctx context.Context, fn func(Repository) error) error {
	return fn(m)
}

func (m *MockRepository) ListUsers(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) CreateUser(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) UpdateUser(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) ListUsersWithoutRole(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]User), args.Error(1)
}

func (m *MockRepository) ListRoles(ctx context.Context) ([]Role, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Role), args.Error(1)
}

func (m *MockRepository) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Role), args.Error(1)
}

func (m *MockRepository) EnsureRoles(ctx context.Context, names []string) error {
	args := m.Called(ctx, names)
	return args.Error(0)
}

func (m *MockRepository) GetUserRole(ctx context.Context, userID uuid.UUID) (*UserRole, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UserRole), args.Error(1)
}

func (m *MockRepository) CreateUserRole(ctx context.Context, ur *UserRole) error {
	args := m.Called(ctx, ur)
	return args.Error(0)
}

func (m *MockRepository) UpdateUserRole(ctx context.Context, ur *UserRole) error {
	args := m.Called(ctx, ur)
	return args.Error(0)
}

func (m *MockRepository) DeleteUserRoles(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func TestCreateUser_AssignsRole(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("CreateUser", ctx, mock.AnythingOfType("*users.User")).Return(nil)
	mockRepo.On("GetRoleByName", ctx, RoleSupervisor).Return(&Role{ID: 2, Name: RoleSupervisor}, nil)
	mockRepo.On("GetUserRole", ctx, mock.AnythingOfType("uuid.UUID")).Return(nil, nil)
	mockRepo.On("CreateUserRole", ctx, mock.MatchedBy(func(ur *UserRole) bool { return ur.RoleID == 2 })).Return(nil)

	user, err := service.CreateUser(ctx, CreateUserRequest{
		LastName:   "Rakoto",
		FirstNames: "Jean",
		Email:      " Jean.Rakoto@Example.MG ",
		Role:       RoleSupervisor,
	})

	require.NoError(t, err)
	assert.Equal(t, "jean.rakoto@example.mg", user.Email)
	assert.Equal(t, StatusPending, user.Status)
	assert.Equal(t, RoleSupervisor, user.RoleName())
	mockRepo.AssertExpectations(t)
}

func TestCreateUser_RoleLookupFailsAbortsAssociation(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("CreateUser", ctx, mock.Anything).Return(nil)
	mockRepo.On("GetRoleByName", ctx, RoleTechnician).Return(nil, nil)

	user, err := service.CreateUser(ctx, CreateUserRequest{Email: "a@b.mg"})

	assert.ErrorIs(t, err, ErrRoleNotFound)
	assert.Nil(t, user)
	mockRepo.AssertNotCalled(t, "GetUserRole", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "CreateUserRole", mock.Anything, mock.Anything)
}

func TestCreateUser_Validation(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	_, err := service.CreateUser(ctx, CreateUserRequest{Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = service.CreateUser(ctx, CreateUserRequest{Email: "a@b.mg", Role: "root"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = service.CreateUser(ctx, CreateUserRequest{Email: "a@b.mg", Status: "banni"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	mockRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestUpdateUser_UpdatesExistingAssociation(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()
	id := uuid.New()

	existing := &User{ID: id, LastName: "Rabe", Email: "rabe@vola.mg", Status: StatusPending}
	link := &UserRole{ID: 9, UserID: id, RoleID: 3}
	mockRepo.On("GetUserByID", ctx, id).Return(existing, nil)
	mockRepo.On("UpdateUser", ctx, existing).Return(nil)
	mockRepo.On("GetRoleByName", ctx, RoleAdmin).Return(&Role{ID: 1, Name: RoleAdmin}, nil)
	mockRepo.On("GetUserRole", ctx, id).Return(link, nil)
	mockRepo.On("UpdateUserRole", ctx, link).Return(nil)

	role, status := RoleAdmin, StatusActive
	user, err := service.UpdateUser(ctx, id, UpdateUserRequest{Role: &role, Status: &status})

	require.NoError(t, err)
	assert.Equal(t, 1, link.RoleID)
	assert.Equal(t, StatusActive, user.Status)
	assert.Equal(t, RoleAdmin, user.RoleName())
	mockRepo.AssertNotCalled(t, "CreateUserRole", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestUpdateUser_WithoutRoleLeavesAssociation(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()
	id := uuid.New()

	existing := &User{ID: id, Email: "x@vola.mg"}
	mockRepo.On("GetUserByID", ctx, id).Return(existing, nil)
	mockRepo.On("UpdateUser", ctx, existing).Return(nil)

	name := "Andry"
	_, err := service.UpdateUser(ctx, id, UpdateUserRequest{FirstNames: &name})

	require.NoError(t, err)
	mockRepo.AssertNotCalled(t, "GetRoleByName", mock.Anything, mock.Anything)
}

func TestUpdateUser_NotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()
	id := uuid.New()

	mockRepo.On("GetUserByID", ctx, id).Return(nil, nil)

	user, err := service.UpdateUser(ctx, id, UpdateUserRequest{})
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestDeleteUser_RoleUnlinkFails(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()
	id := uuid.New()

	mockRepo.On("DeleteUserRoles", ctx, id).Return(errors.New("timeout"))

	assert.Error(t, service.DeleteUser(ctx, id))
	mockRepo.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
}

func TestListUsers_Defaults(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, zap.NewNop())
	ctx := context.Background()

	created := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	mockRepo.On("ListUsers", ctx).Return([]User{
		{ID: uuid.New(), Email: "anon@vola.mg", CreatedAt: created},
		{ID: uuid.New(), LastName: "Rasoa", FirstNames: "Marie", Status: StatusActive,
			Roles: []UserRole{{Role: &Role{Name: RoleInvestor}}}},
	}, nil)

	views, err := service.ListUsers(ctx)

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, DefaultName, views[0].Name)
	assert.Equal(t, RoleTechnician, views[0].Role)
	assert.Equal(t, StatusPending, views[0].Status)
	assert.Equal(t, "Rasoa Marie", views[1].Name)
	assert.Equal(t, RoleInvestor, views[1].Role)
}
