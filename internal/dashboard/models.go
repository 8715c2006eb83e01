package dashboard

import (
	"time"

	"github.com/shopspring/decimal"
)

// Activity feed icons, matched by the front end
const (
	IconProject   = "FolderKanban"
	IconUser      = "Users"
	IconMilestone = "Leaf"
)

const (
	// OthersLabel collects culture types beyond the top K
	OthersLabel = "Autres"
	// UnknownCulture names links whose culture row is missing
	UnknownCulture = "Autre"
)

// Stats are the headline counters of the admin dashboard
type Stats struct {
	UserCount       int64           `json:"userCount"`
	NewUserCount    int64           `json:"newUserCount"`
	ActiveProjects  int64           `json:"activeProjects"`
	PendingProjects int64           `json:"pendingProjects"`
	CultureCount    int64           `json:"cultureCount"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	// RevenueIncrease has no agreed definition yet and is always null
	RevenueIncrease *float64 `json:"revenueIncrease"`
}

// RevenuePoint is one month of the revenue series
type RevenuePoint struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// TypeCount is one slice of the projects-by-culture chart
type TypeCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Activity is one entry of the recent activity feed
type Activity struct {
	Title      string    `json:"title"`
	Desc       string    `json:"desc"`
	Time       string    `json:"time"`
	Icon       string    `json:"icon"`
	OccurredAt time.Time `json:"occurredAt"`
}

// UpcomingMilestone is a planned project milestone with a display countdown
type UpcomingMilestone struct {
	Project   string    `json:"project"`
	Milestone string    `json:"milestone"`
	Date      string    `json:"date"`
	Progress  int       `json:"progress"`
	DaysUntil int       `json:"daysUntil"`
	PlannedAt time.Time `json:"plannedAt"`
}

// Overview bundles every dashboard feed computed in one pass
type Overview struct {
	Stats          Stats               `json:"stats"`
	Revenue        []RevenuePoint      `json:"revenue"`
	ProjectsByType []TypeCount         `json:"projectsByType"`
	Activities     []Activity          `json:"activities"`
	Milestones     []UpcomingMilestone `json:"milestones"`
	ComputedAt     time.Time           `json:"computedAt"`
}

// InvestmentRow is the slice of an investment the revenue series needs
type InvestmentRow struct {
	Amount decimal.Decimal
	PaidAt *time.Time
}

// RecentProjectRow feeds the "new project" activities
type RecentProjectRow struct {
	ID        int
	Title     string
	CreatedAt time.Time
}

// RecentUserRow feeds the "user registered" activities
type RecentUserRow struct {
	LastName   string
	FirstNames string
	CreatedAt  time.Time
}

// MilestoneRow is a project milestone joined with its template and project names
type MilestoneRow struct {
	ProjectID     int
	ProjectTitle  *string
	MilestoneName *string
	PlannedAt     *time.Time
	ExecutedAt    *time.Time
}
