// Package integrity detects and repairs rows left inconsistent by partial writes:
// users without a role, culture links of deleted projects and cost statuses that
// no longer match their payments. A project stripped of its culture links cannot
// be told apart from one that never had any, so that state is out of reach.
package integrity

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lounaagency/agri-admin-dashboard/internal/finance"
	"github.com/lounaagency/agri-admin-dashboard/internal/metrics"
	"github.com/lounaagency/agri-admin-dashboard/internal/users"
)

// Service finds and repairs the states left behind by interrupted multi-step writes
type Service interface {
	Scan(ctx context.Context) (*Report, error)
	Repair(ctx context.Context) (*RepairResult, error)
}

type sweeper struct {
	repo    Repository
	users   users.Service
	finance finance.Service
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(repo Repository, userService users.Service, financeService finance.Service, logger *zap.Logger) Service {
	return &sweeper{
		repo:    repo,
		users:   userService,
		finance: financeService,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *sweeper) Scan(ctx context.Context) (*Report, error) {
	report := &Report{
		UsersWithoutRole: []RoleLessUser{},
		ScannedAt:        s.now(),
	}

	roleLess, err := s.users.ListUsersWithoutRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}
	for _, u := range roleLess {
		report.UsersWithoutRole = append(report.UsersWithoutRole, RoleLessUser{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt})
	}

	report.OrphanCultures, err = s.repo.ListOrphanCultures(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan project cultures: %w", err)
	}
	if report.OrphanCultures == nil {
		report.OrphanCultures = []OrphanCulture{}
	}

	report.CostDrift, err = s.finance.FindStatusDrift(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan cost statuses: %w", err)
	}
	if report.CostDrift == nil {
		report.CostDrift = []finance.CostDrift{}
	}

	for kind, n := range report.Counts() {
		metrics.SetIntegrityIssues(kind, n)
	}
	if total := report.Total(); total > 0 {
		s.logger.Warn("Integrity issues found",
			zap.Int("users_without_role", len(report.UsersWithoutRole)),
			zap.Int("orphan_project_cultures", len(report.OrphanCultures)),
			zap.Int("cost_status_drift", len(report.CostDrift)))
	}
	return report, nil
}

// Repair fixes every issue a fresh scan reports. A failing item is recorded and
// the pass continues with the next one.
func (s *sweeper) Repair(ctx context.Context) (*RepairResult, error) {
	report, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}
	result := &RepairResult{}

	for _, u := range report.UsersWithoutRole {
		if err := s.users.AssignRole(ctx, u.ID, users.DefaultRole); err != nil {
			s.logger.Error("Failed to assign default role", zap.String("user_id", u.ID.String()), zap.Error(err))
			result.Failures = append(result.Failures, fmt.Sprintf("%s %s: %v", KindUserWithoutRole, u.ID, err))
			continue
		}
		result.RolesAssigned++
	}

	if len(report.OrphanCultures) > 0 {
		ids := make([]int, len(report.OrphanCultures))
		for i, o := range report.OrphanCultures {
			ids[i] = o.ID
		}
		n, err := s.repo.DeleteOrphanCultures(ctx, ids)
		if err != nil {
			s.logger.Error("Failed to delete orphan project cultures", zap.Ints("ids", ids), zap.Error(err))
			result.Failures = append(result.Failures, fmt.Sprintf("%s: %v", KindOrphanCulture, err))
		}
		result.CulturesDeleted = n
	}

	for _, d := range report.CostDrift {
		if _, err := s.finance.UpdateCostPaymentStatus(ctx, d.CostID); err != nil {
			s.logger.Error("Failed to recompute cost status", zap.Int("cost_id", d.CostID), zap.Error(err))
			result.Failures = append(result.Failures, fmt.Sprintf("%s %d: %v", KindCostStatusDrift, d.CostID, err))
			continue
		}
		result.StatusesRepaired++
	}

	result.RepairedAt = s.now()
	s.logger.Info("Integrity repair finished",
		zap.Int("roles_assigned", result.RolesAssigned),
		zap.Int64("cultures_deleted", result.CulturesDeleted),
		zap.Int("statuses_repaired", result.StatusesRepaired),
		zap.Int("failures", len(result.Failures)))

	// refresh the gauges
	if _, err := s.Scan(ctx); err != nil {
		s.logger.Warn("Failed to rescan after repair", zap.Error(err))
	}
	return result, nil
}
