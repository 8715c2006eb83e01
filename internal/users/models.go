package users

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role names
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "superviseur"
	RoleTechnician = "technicien"
	RoleInvestor   = "investisseur"
)

// Roles lists the seeded roles
var Roles = []string{RoleAdmin, RoleSupervisor, RoleTechnician, RoleInvestor}

// Account statuses
const (
	StatusActive   = "actif"
	StatusPending  = "en_attente"
	StatusInactive = "inactif"
)

var Statuses = []string{StatusActive, StatusPending, StatusInactive}

// Display defaults for incomplete rows
const (
	DefaultName   = "Sans nom"
	DefaultRole   = RoleTechnician
	DefaultStatus = StatusPending
)

func IsValidRole(role string) bool { return contains(Roles, role) }

func IsValidStatus(status string) bool { return contains(Statuses, status) }

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// User is a platform account
type User struct {
	ID         uuid.UUID  `gorm:"column:id_utilisateur;type:uuid;primaryKey" json:"id_utilisateur"`
	LastName   string     `gorm:"column:nom" json:"nom"`
	FirstNames string     `gorm:"column:prenoms" json:"prenoms"`
	Email      string     `gorm:"column:email;uniqueIndex" json:"email"`
	Phone      string     `gorm:"column:telephone" json:"telephone"`
	Status     string     `gorm:"column:statut;default:'en_attente'" json:"statut"`
	PhotoURL   string     `gorm:"column:photo_profil" json:"photo_profil"`
	CreatedAt  time.Time  `gorm:"column:created_at;index" json:"created_at"`
	ModifiedAt time.Time  `gorm:"column:modified_at;autoUpdateTime" json:"modified_at"`
	Roles      []UserRole `gorm:"foreignKey:UserID;references:ID" json:"roles,omitempty"`
}

func (User) TableName() string { return "utilisateur" }

// DisplayName joins last and first names, falling back to DefaultName
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.LastName + " " + u.FirstNames)
	if name == "" {
		return DefaultName
	}
	return name
}

// RoleName is the name of the first associated role, or DefaultRole
func (u *User) RoleName() string {
	for _, ur := range u.Roles {
		if ur.Role != nil && ur.Role.Name != "" {
			return ur.Role.Name
		}
	}
	return DefaultRole
}

// Role is a named permission set
type Role struct {
	ID          int    `gorm:"column:id_role;primaryKey;autoIncrement" json:"id_role"`
	Name        string `gorm:"column:nom_role;uniqueIndex;not null" json:"nom_role"`
	Description string `gorm:"column:description_role" json:"description_role"`
}

func (Role) TableName() string { return "role" }

// UserRole associates a user with a role
type UserRole struct {
	ID     int       `gorm:"column:id_utilisateur_role;primaryKey;autoIncrement" json:"id_utilisateur_role"`
	UserID uuid.UUID `gorm:"column:id_utilisateur;type:uuid;not null;uniqueIndex" json:"id_utilisateur"`
	RoleID int       `gorm:"column:id_role;not null" json:"id_role"`
	Role   *Role     `gorm:"foreignKey:RoleID;references:ID" json:"role,omitempty"`
}

func (UserRole) TableName() string { return "utilisateurs_par_role" }

// UserView is the flattened row shown in the users table
type UserView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// View flattens a user for display
func (u *User) View() UserView {
	status := u.Status
	if status == "" {
		status = DefaultStatus
	}
	return UserView{
		ID:        u.ID,
		Name:      u.DisplayName(),
		Email:     u.Email,
		Role:      u.RoleName(),
		Status:    status,
		CreatedAt: u.CreatedAt,
	}
}

// CreateUserRequest creates an account with its role
type CreateUserRequest struct {
	ID         *uuid.UUID `json:"id_utilisateur"`
	LastName   string     `json:"nom"`
	FirstNames string     `json:"prenoms"`
	Email      string     `json:"email" binding:"required"`
	Phone      string     `json:"telephone"`
	Role       string     `json:"role"`
	Status     string     `json:"statut"`
}

// UpdateUserRequest carries only the fields to change
type UpdateUserRequest struct {
	LastName   *string `json:"nom"`
	FirstNames *string `json:"prenoms"`
	Email      *string `json:"email"`
	Phone      *string `json:"telephone"`
	Role       *string `json:"role"`
	Status     *string `json:"statut"`
}
