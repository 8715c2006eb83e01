package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrRoleNotFound  = errors.New("role not found")
	ErrInvalidRole   = errors.New("invalid role")
	ErrInvalidStatus = errors.New("invalid user status")
	ErrInvalidEmail  = errors.New("invalid email")
)

type Service interface {
	ListUsers(ctx context.Context) ([]UserView, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListRoles(ctx context.Context) ([]Role, error)
	AssignRole(ctx context.Context, id uuid.UUID, role string) error
	ListUsersWithoutRole(ctx context.Context) ([]User, error)
}

type userService struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) ListUsers(ctx context.Context) ([]UserView, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, err
	}

	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, users[i].View())
	}
	return views, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get user", zap.String("user_id", id.String()), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// CreateUser inserts the user and its role association in one transaction
func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = DefaultRole
	}
	if !IsValidRole(role) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	status := req.Status
	if status == "" {
		status = DefaultStatus
	}
	if !IsValidStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	user := &User{
		ID:         uuid.New(),
		LastName:   strings.TrimSpace(req.LastName),
		FirstNames: strings.TrimSpace(req.FirstNames),
		Email:      email,
		Phone:      req.Phone,
		Status:     status,
	}
	if req.ID != nil {
		user.ID = *req.ID
	}

	err = s.repo.WithTx(ctx, func(tx Repository) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		ur, err := assignRole(ctx, tx, user.ID, role)
		if err != nil {
			return err
		}
		user.Roles = []UserRole{*ur}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create user", zap.String("email", email), zap.String("role", role), zap.Error(err))
		return nil, err
	}

	s.logger.Info("User created", zap.String("user_id", user.ID.String()), zap.String("role", role))
	return user, nil
}

// UpdateUser returns nil, nil when the user does not exist.
// The user row and its role association change together or not at all.
func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*User, error) {
	if req.Role != nil && !IsValidRole(*req.Role) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, *req.Role)
	}
	if req.Status != nil && !IsValidStatus(*req.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *req.Status)
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}

	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.FirstNames != nil {
		user.FirstNames = strings.TrimSpace(*req.FirstNames)
	}
	if req.Email != nil {
		email, err := normalizeEmail(*req.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Status != nil {
		user.Status = *req.Status
	}

	err = s.repo.WithTx(ctx, func(tx Repository) error {
		if err := tx.UpdateUser(ctx, user); err != nil {
			return err
		}
		if req.Role == nil {
			return nil
		}
		ur, err := assignRole(ctx, tx, user.ID, *req.Role)
		if err != nil {
			return err
		}
		user.Roles = []UserRole{*ur}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to update user", zap.String("user_id", id.String()), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// AssignRole sets the single role of an existing user
func (s *userService) AssignRole(ctx context.Context, id uuid.UUID, role string) error {
	if !IsValidRole(role) {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		_, err := assignRole(ctx, tx, id, role)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to assign role", zap.String("user_id", id.String()), zap.String("role", role), zap.Error(err))
		return err
	}
	return nil
}

// DeleteUser removes the role associations, then the user, in one transaction
func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		if err := tx.DeleteUserRoles(ctx, id); err != nil {
			return err
		}
		return tx.DeleteUser(ctx, id)
	})
	if err != nil {
		s.logger.Error("Failed to delete user", zap.String("user_id", id.String()), zap.Error(err))
		return err
	}

	s.logger.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

func (s *userService) ListRoles(ctx context.Context) ([]Role, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		s.logger.Error("Failed to list roles", zap.Error(err))
		return nil, err
	}
	return roles, nil
}

func (s *userService) ListUsersWithoutRole(ctx context.Context) ([]User, error) {
	users, err := s.repo.ListUsersWithoutRole(ctx)
	if err != nil {
		s.logger.Error("Failed to list users without role", zap.Error(err))
		return nil, err
	}
	return users, nil
}

// assignRole resolves the role by name and updates the existing association or inserts one
func assignRole(ctx context.Context, repo Repository, userID uuid.UUID, roleName string) (*UserRole, error) {
	role, err := repo.GetRoleByName(ctx, roleName)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("%w: %q", ErrRoleNotFound, roleName)
	}

	ur, err := repo.GetUserRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ur != nil {
		ur.RoleID = role.ID
		if err := repo.UpdateUserRole(ctx, ur); err != nil {
			return nil, err
		}
	} else {
		ur = &UserRole{UserID: userID, RoleID: role.ID}
		if err := repo.CreateUserRole(ctx, ur); err != nil {
			return nil, err
		}
	}
	ur.Role = role
	return ur, nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, raw)
	}
	return strings.ToLower(addr.Address), nil
}
