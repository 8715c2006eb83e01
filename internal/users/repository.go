package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// WithTx runs fn against a repository bound to a single transaction
	WithTx(ctx context.Context, fn func(Repository) error) error

	ListUsers(ctx context.Context) ([]User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListUsersWithoutRole(ctx context.Context) ([]User, error)

	ListRoles(ctx context.Context) ([]Role, error)
	GetRoleByName(ctx context.Context, name string) (*Role, error)
	EnsureRoles(ctx context.Context, names []string) error

	GetUserRole(ctx context.Context, userID uuid.UUID) (*UserRole, error)
	CreateUserRole(ctx context.Context, ur *UserRole) error
	UpdateUserRole(ctx context.Context, ur *UserRole) error
	DeleteUserRoles(ctx context.Context, userID uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) WithTx(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).Preload("Roles.Role").Order("created_at DESC").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *gormRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Preload("Roles.Role").First(&user, "id_utilisateur = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return &user, nil
}

func (r *gormRepository) CreateUser(ctx context.Context, user *User) error {
	if err := r.db.WithContext(ctx).Omit("Roles").Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *gormRepository) UpdateUser(ctx context.Context, user *User) error {
	if err := r.db.WithContext(ctx).Omit("Roles").Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}
	return nil
}

func (r *gormRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&User{}, "id_utilisateur = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	return nil
}

func (r *gormRepository) ListUsersWithoutRole(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM utilisateurs_par_role upr WHERE upr.id_utilisateur = utilisateur.id_utilisateur)").
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users without role: %w", err)
	}
	return users, nil
}

func (r *gormRepository) ListRoles(ctx context.Context) ([]Role, error) {
	var roles []Role
	if err := r.db.WithContext(ctx).Order("id_role").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

func (r *gormRepository) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	var role Role
	err := r.db.WithContext(ctx).First(&role, "nom_role = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role %q: %w", name, err)
	}
	return &role, nil
}

func (r *gormRepository) EnsureRoles(ctx context.Context, names []string) error {
	roles := make([]Role, 0, len(names))
	for _, name := range names {
		roles = append(roles, Role{Name: name})
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "nom_role"}}, DoNothing: true}).
		Create(&roles).Error
	if err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}
	return nil
}

func (r *gormRepository) GetUserRole(ctx context.Context, userID uuid.UUID) (*UserRole, error) {
	var ur UserRole
	err := r.db.WithContext(ctx).First(&ur, "id_utilisateur = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role of user %s: %w", userID, err)
	}
	return &ur, nil
}

func (r *gormRepository) CreateUserRole(ctx context.Context, ur *UserRole) error {
	if err := r.db.WithContext(ctx).Omit("Role").Create(ur).Error; err != nil {
		return fmt.Errorf("failed to assign role to user %s: %w", ur.UserID, err)
	}
	return nil
}

func (r *gormRepository) UpdateUserRole(ctx context.Context, ur *UserRole) error {
	err := r.db.WithContext(ctx).Model(&UserRole{}).
		Where("id_utilisateur_role = ?", ur.ID).
		Update("id_role", ur.RoleID).Error
	if err != nil {
		return fmt.Errorf("failed to change role of user %s: %w", ur.UserID, err)
	}
	return nil
}

func (r *gormRepository) DeleteUserRoles(ctx context.Context, userID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&UserRole{}, "id_utilisateur = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to remove roles of user %s: %w", userID, err)
	}
	return nil
}
