package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lounaagency/agri-admin-dashboard/internal/cultures"
	"github.com/lounaagency/agri-admin-dashboard/internal/finance"
	"github.com/lounaagency/agri-admin-dashboard/internal/projects"
	"github.com/lounaagency/agri-admin-dashboard/internal/users"
)

// Repository holds one method per independent dashboard query
type Repository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountUsersSince(ctx context.Context, since time.Time) (int64, error)
	CountProjectsWithStatus(ctx context.Context, status string) (int64, error)
	CountCultures(ctx context.Context) (int64, error)
	SumInvestments(ctx context.Context) (decimal.Decimal, error)
	ListInvestmentsPaidBetween(ctx context.Context, from, to time.Time) ([]InvestmentRow, error)
	// ListProjectCultureNames returns one entry per project-culture link, "" when the culture is missing
	ListProjectCultureNames(ctx context.Context) ([]string, error)
	ListRecentProjects(ctx context.Context, limit int) ([]RecentProjectRow, error)
	ListRecentUsers(ctx context.Context, limit int) ([]RecentUserRow, error)
	ListCompletedMilestones(ctx context.Context, limit int) ([]MilestoneRow, error)
	ListPlannedMilestones(ctx context.Context, limit int) ([]MilestoneRow, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&users.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (r *gormRepository) CountUsersSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&users.User{}).Where("created_at >= ?", since).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count new users: %w", err)
	}
	return n, nil
}

func (r *gormRepository) CountProjectsWithStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&projects.Project{}).Where("statut = ?", status).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count %q projects: %w", status, err)
	}
	return n, nil
}

func (r *gormRepository) CountCultures(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&cultures.Culture{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count cultures: %w", err)
	}
	return n, nil
}

func (r *gormRepository) SumInvestments(ctx context.Context) (decimal.Decimal, error) {
	var row struct{ Total decimal.Decimal }
	err := r.db.WithContext(ctx).Model(&finance.Investment{}).
		Select("COALESCE(SUM(montant), 0) AS total").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum investments: %w", err)
	}
	return row.Total, nil
}

func (r *gormRepository) ListInvestmentsPaidBetween(ctx context.Context, from, to time.Time) ([]InvestmentRow, error) {
	var rows []InvestmentRow
	err := r.db.WithContext(ctx).Model(&finance.Investment{}).
		Select("montant AS amount, date_paiement AS paid_at").
		Where("date_paiement >= ? AND date_paiement < ?", from, to).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	return rows, nil
}

func (r *gormRepository) ListProjectCultureNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("projet_culture pc").
		Joins("LEFT JOIN culture c ON c.id_culture = pc.id_culture").
		Order("pc.id_projet_culture").
		Pluck("COALESCE(c.nom_culture, '')", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list project cultures: %w", err)
	}
	return names, nil
}

func (r *gormRepository) ListRecentProjects(ctx context.Context, limit int) ([]RecentProjectRow, error) {
	var rows []RecentProjectRow
	err := r.db.WithContext(ctx).Model(&projects.Project{}).
		Select("id_projet AS id, titre AS title, created_at").
		Order("created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent projects: %w", err)
	}
	return rows, nil
}

func (r *gormRepository) ListRecentUsers(ctx context.Context, limit int) ([]RecentUserRow, error) {
	var rows []RecentUserRow
	err := r.db.WithContext(ctx).Model(&users.User{}).
		Select("nom AS last_name, prenoms AS first_names, created_at").
		Order("created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent users: %w", err)
	}
	return rows, nil
}

func (r *gormRepository) milestoneQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("jalon_projet jp").
		Select(`jp.id_projet AS project_id, p.titre AS project_title, ja.nom_jalon AS milestone_name,
			jp.date_prev_planifiee AS planned_at, jp.date_reelle_execution AS executed_at`).
		Joins("LEFT JOIN projet p ON p.id_projet = jp.id_projet").
		Joins("LEFT JOIN jalon_agricole ja ON ja.id_jalon = jp.id_jalon")
}

func (r *gormRepository) ListCompletedMilestones(ctx context.Context, limit int) ([]MilestoneRow, error) {
	var rows []MilestoneRow
	err := r.milestoneQuery(ctx).
		Where("jp.statut = ?", projects.MilestoneDone).
		Order("jp.date_reelle_execution DESC NULLS LAST").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list completed milestones: %w", err)
	}
	return rows, nil
}

func (r *gormRepository) ListPlannedMilestones(ctx context.Context, limit int) ([]MilestoneRow, error) {
	var rows []MilestoneRow
	err := r.milestoneQuery(ctx).
		Where("jp.statut = ? AND jp.date_prev_planifiee IS NOT NULL", projects.MilestonePlanned).
		Order("jp.date_prev_planifiee ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list planned milestones: %w", err)
	}
	return rows, nil
}
