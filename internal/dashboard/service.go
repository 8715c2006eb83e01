package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lounaagency/agri-admin-dashboard/internal/config"
	"github.com/lounaagency/agri-admin-dashboard/internal/metrics"
	"github.com/lounaagency/agri-admin-dashboard/internal/projects"
)

// perSourceActivities is how many rows each activity source contributes before merging
const perSourceActivities = 2

// newUserWindow is the trailing window counted as new registrations
const newUserWindow = 7 * day

// Service computes the dashboard feeds. Every method is best effort:
// a failed query is logged and replaced by an empty or zero value.
type Service interface {
	GetStats(ctx context.Context) Stats
	GetMonthlyRevenue(ctx context.Context) []RevenuePoint
	GetProjectsByType(ctx context.Context) []TypeCount
	GetRecentActivities(ctx context.Context) []Activity
	GetUpcomingMilestones(ctx context.Context) []UpcomingMilestone
	GetOverview(ctx context.Context) *Overview
}

// Aggregator recomputes every feed from current data on each call
type Aggregator struct {
	repo   Repository
	logger *zap.Logger
	config config.DashboardConfig
	now    func() time.Time
}

// NewAggregator creates a new aggregator
func NewAggregator(repo Repository, logger *zap.Logger, cfg config.DashboardConfig) *Aggregator {
	if cfg.ActivityLimit <= 0 {
		cfg.ActivityLimit = 4
	}
	if cfg.MilestoneLimit <= 0 {
		cfg.MilestoneLimit = 4
	}
	if cfg.TopCultures <= 0 {
		cfg.TopCultures = 4
	}
	return &Aggregator{repo: repo, logger: logger, config: cfg, now: time.Now}
}

// guard times a query, records it and reports whether it succeeded
func (a *Aggregator) guard(query string, fn func() error) bool {
	start := time.Now()
	err := fn()
	metrics.RecordDashboardQuery(query, time.Since(start), err)
	if err != nil {
		a.logger.Warn("Dashboard query failed, using default", zap.String("query", query), zap.Error(err))
		return false
	}
	return true
}

// GetStats runs each counter independently; a failed counter reads zero
func (a *Aggregator) GetStats(ctx context.Context) Stats {
	var (
		stats Stats
		wg    sync.WaitGroup
	)
	now := a.now()

	run := func(query string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.guard(query, fn)
		}()
	}

	run("user_count", func() (err error) {
		stats.UserCount, err = a.repo.CountUsers(ctx)
		return
	})
	run("new_user_count", func() (err error) {
		stats.NewUserCount, err = a.repo.CountUsersSince(ctx, now.Add(-newUserWindow))
		return
	})
	run("active_projects", func() (err error) {
		stats.ActiveProjects, err = a.repo.CountProjectsWithStatus(ctx, projects.StatusActive)
		return
	})
	run("pending_projects", func() (err error) {
		stats.PendingProjects, err = a.repo.CountProjectsWithStatus(ctx, projects.StatusPending)
		return
	})
	run("culture_count", func() (err error) {
		stats.CultureCount, err = a.repo.CountCultures(ctx)
		return
	})
	run("total_revenue", func() (err error) {
		stats.TotalRevenue, err = a.repo.SumInvestments(ctx)
		return
	})

	wg.Wait()
	return stats
}

// GetMonthlyRevenue always returns twelve months, all zero when the query fails
func (a *Aggregator) GetMonthlyRevenue(ctx context.Context) []RevenuePoint {
	now := a.now()
	from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(1, 0, 0)

	var rows []InvestmentRow
	ok := a.guard("monthly_revenue", func() (err error) {
		rows, err = a.repo.ListInvestmentsPaidBetween(ctx, from, to)
		return
	})
	if !ok {
		return ZeroRevenue()
	}
	return MonthlyRevenue(rows, now.Year())
}

func (a *Aggregator) GetProjectsByType(ctx context.Context) []TypeCount {
	var names []string
	ok := a.guard("projects_by_type", func() (err error) {
		names, err = a.repo.ListProjectCultureNames(ctx)
		return
	})
	if !ok {
		return []TypeCount{}
	}
	return TopWithOverflow(names, a.config.TopCultures)
}

// GetRecentActivities merges the latest projects, users and completed milestones, newest first
func (a *Aggregator) GetRecentActivities(ctx context.Context) []Activity {
	now := a.now()
	var (
		recentProjects []RecentProjectRow
		recentUsers    []RecentUserRow
		completed      []MilestoneRow
		wg             sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		a.guard("recent_projects", func() (err error) {
			recentProjects, err = a.repo.ListRecentProjects(ctx, perSourceActivities)
			return
		})
	}()
	go func() {
		defer wg.Done()
		a.guard("recent_users", func() (err error) {
			recentUsers, err = a.repo.ListRecentUsers(ctx, perSourceActivities)
			return
		})
	}()
	go func() {
		defer wg.Done()
		a.guard("completed_milestones", func() (err error) {
			completed, err = a.repo.ListCompletedMilestones(ctx, perSourceActivities)
			return
		})
	}()
	wg.Wait()

	activities := make([]Activity, 0, len(recentProjects)+len(recentUsers)+len(completed))
	for _, p := range recentProjects {
		title := p.Title
		if title == "" {
			title = "Sans titre"
		}
		activities = append(activities, Activity{
			Title:      "Nouveau projet soumis",
			Desc:       fmt.Sprintf("Le projet %s a été soumis pour validation", title),
			Icon:       IconProject,
			OccurredAt: p.CreatedAt,
		})
	}
	for _, u := range recentUsers {
		name := strings.TrimSpace(u.LastName + " " + u.FirstNames)
		activities = append(activities, Activity{
			Title:      "Utilisateur inscrit",
			Desc:       fmt.Sprintf("%s s'est inscrit", name),
			Icon:       IconUser,
			OccurredAt: u.CreatedAt,
		})
	}
	for _, m := range completed {
		if m.ExecutedAt == nil {
			continue
		}
		phase := "inconnue"
		if m.MilestoneName != nil && *m.MilestoneName != "" {
			phase = *m.MilestoneName
		}
		activities = append(activities, Activity{
			Title:      "Jalon complété",
			Desc:       fmt.Sprintf("La phase \"%s\" a été complétée pour le projet %s", phase, projectLabel(m)),
			Icon:       IconMilestone,
			OccurredAt: *m.ExecutedAt,
		})
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].OccurredAt.After(activities[j].OccurredAt)
	})
	if len(activities) > a.config.ActivityLimit {
		activities = activities[:a.config.ActivityLimit]
	}
	for i := range activities {
		activities[i].Time = FormatTimeAgo(activities[i].OccurredAt, now)
	}
	return activities
}

// GetUpcomingMilestones lists planned milestones soonest first with a countdown and a progress ramp
func (a *Aggregator) GetUpcomingMilestones(ctx context.Context) []UpcomingMilestone {
	now := a.now()
	var rows []MilestoneRow
	ok := a.guard("upcoming_milestones", func() (err error) {
		rows, err = a.repo.ListPlannedMilestones(ctx, a.config.MilestoneLimit)
		return
	})
	if !ok {
		return []UpcomingMilestone{}
	}

	upcoming := make([]UpcomingMilestone, 0, len(rows))
	for _, row := range rows {
		if row.PlannedAt == nil {
			continue
		}
		name := "Jalon"
		if row.MilestoneName != nil && *row.MilestoneName != "" {
			name = *row.MilestoneName
		}
		days := DaysUntil(*row.PlannedAt, now)
		upcoming = append(upcoming, UpcomingMilestone{
			Project:   projectLabel(row),
			Milestone: name,
			Date:      FormatDaysUntil(days),
			Progress:  MilestoneProgress(days),
			DaysUntil: days,
			PlannedAt: *row.PlannedAt,
		})
	}
	return upcoming
}

// GetOverview computes every feed concurrently
func (a *Aggregator) GetOverview(ctx context.Context) *Overview {
	overview := &Overview{ComputedAt: a.now()}

	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		overview.Stats = a.GetStats(ctx)
	}()
	go func() {
		defer wg.Done()
		overview.Revenue = a.GetMonthlyRevenue(ctx)
	}()
	go func() {
		defer wg.Done()
		overview.ProjectsByType = a.GetProjectsByType(ctx)
	}()
	go func() {
		defer wg.Done()
		overview.Activities = a.GetRecentActivities(ctx)
	}()
	go func() {
		defer wg.Done()
		overview.Milestones = a.GetUpcomingMilestones(ctx)
	}()
	wg.Wait()

	return overview
}

func projectLabel(row MilestoneRow) string {
	if row.ProjectTitle != nil && *row.ProjectTitle != "" {
		return *row.ProjectTitle
	}
	return fmt.Sprintf("Projet %d", row.ProjectID)
}
