package integrity

import (
	"time"

	"github.com/google/uuid"

	"github.com/lounaagency/agri-admin-dashboard/internal/finance"
)

// Issue kinds, also used as the metrics label
const (
	KindUserWithoutRole = "user_without_role"
	KindOrphanCulture   = "orphan_project_culture"
	KindCostStatusDrift = "cost_status_drift"
)

// Kinds lists every issue kind in report order
var Kinds = []string{KindUserWithoutRole, KindOrphanCulture, KindCostStatusDrift}

// RoleLessUser is an account left without a role association
type RoleLessUser struct {
	ID        uuid.UUID `json:"id_utilisateur"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// OrphanCulture is a project-culture link whose project no longer exists
type OrphanCulture struct {
	ID        int `gorm:"column:id_projet_culture" json:"id_projet_culture"`
	ProjectID int `gorm:"column:id_projet" json:"id_projet"`
	CultureID int `gorm:"column:id_culture" json:"id_culture"`
}

// Report lists the inconsistencies found by a scan
type Report struct {
	UsersWithoutRole []RoleLessUser      `json:"usersWithoutRole"`
	OrphanCultures   []OrphanCulture     `json:"orphanCultures"`
	CostDrift        []finance.CostDrift `json:"costDrift"`
	ScannedAt        time.Time           `json:"scannedAt"`
}

// Counts returns the number of issues per kind
func (r *Report) Counts() map[string]int {
	return map[string]int{
		KindUserWithoutRole: len(r.UsersWithoutRole),
		KindOrphanCulture:   len(r.OrphanCultures),
		KindCostStatusDrift: len(r.CostDrift),
	}
}

// Total is the number of issues of every kind
func (r *Report) Total() int {
	return len(r.UsersWithoutRole) + len(r.OrphanCultures) + len(r.CostDrift)
}

// RepairResult counts what a repair pass fixed and what it could not
type RepairResult struct {
	RolesAssigned    int       `json:"rolesAssigned"`
	CulturesDeleted  int64     `json:"culturesDeleted"`
	StatusesRepaired int       `json:"statusesRepaired"`
	Failures         []string  `json:"failures,omitempty"`
	RepairedAt       time.Time `json:"repairedAt"`
}
