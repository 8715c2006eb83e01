package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lounaagency/agri-admin-dashboard/internal/projects"
)

type Repository interface {
	// WithTx runs fn against a repository bound to a single transaction
	WithTx(ctx context.Context, fn func(Repository) error) error

	GetProject(ctx context.Context, projectID int) (*projects.Project, error)

	ListCostsByProject(ctx context.Context, projectID int) ([]Cost, error)
	GetCostByID(ctx context.Context, id int) (*Cost, error)
	CreateCost(ctx context.Context, cost *Cost) error
	UpdateCostStatus(ctx context.Context, id int, status string) error
	ListCostPaymentTotals(ctx context.Context) ([]CostPaymentTotal, error)

	ListPayments(ctx context.Context, costID int) ([]Payment, error)
	CreatePayment(ctx context.Context, payment *Payment) error
	SumPayments(ctx context.Context, costID int) (decimal.Decimal, error)

	SumCommitted(ctx context.Context, projectID int) (decimal.Decimal, error)
	SumPaid(ctx context.Context, projectID int) (decimal.Decimal, error)

	ListInvestments(ctx context.Context, projectID *int) ([]Investment, error)
	CreateInvestment(ctx context.Context, inv *Investment) error
}

type sumRow struct {
	Total decimal.Decimal
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

func (r *gormRepository) GetProject(ctx context.Context, projectID int) (*projects.Project, error) {
	var project projects.Project
	err := r.db.WithContext(ctx).First(&project, "id_projet = ?", projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project %d: %w", projectID, err)
	}
	return &project, nil
}

func (r *gormRepository) ListCostsByProject(ctx context.Context, projectID int) ([]Cost, error) {
	var costs []Cost
	err := r.db.WithContext(ctx).Where("id_projet = ?", projectID).Order("created_at").Find(&costs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list costs of project %d: %w", projectID, err)
	}
	return costs, nil
}

func (r *gormRepository) GetCostByID(ctx context.Context, id int) (*Cost, error) {
	var cost Cost
	err := r.db.WithContext(ctx).First(&cost, "id_cout_jalon_projet = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cost %d: %w", id, err)
	}
	return &cost, nil
}

func (r *gormRepository) CreateCost(ctx context.Context, cost *Cost) error {
	if err := r.db.WithContext(ctx).Create(cost).Error; err != nil {
		return fmt.Errorf("failed to create cost: %w", err)
	}
	return nil
}

func (r *gormRepository) UpdateCostStatus(ctx context.Context, id int, status string) error {
	err := r.db.WithContext(ctx).Model(&Cost{}).
		Where("id_cout_jalon_projet = ?", id).
		Update("statut_paiement", status).Error
	if err != nil {
		return fmt.Errorf("failed to update status of cost %d: %w", id, err)
	}
	return nil
}

func (r *gormRepository) ListCostPaymentTotals(ctx context.Context) ([]CostPaymentTotal, error) {
	var rows []CostPaymentTotal
	err := r.db.WithContext(ctx).
		Table("cout_jalon_projet c").
		Select(`c.id_cout_jalon_projet AS cost_id, c.id_projet AS project_id,
			c.montant_total AS total_amount, c.statut_paiement AS payment_status,
			COALESCE(SUM(h.montant), 0) AS paid`).
		Joins("LEFT JOIN historique_paiement h ON h.id_cout_projet = c.id_cout_jalon_projet").
		Group("c.id_cout_jalon_projet, c.id_projet, c.montant_total, c.statut_paiement").
		Order("c.id_cout_jalon_projet").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to total payments per cost: %w", err)
	}
	return rows, nil
}

func (r *gormRepository) ListPayments(ctx context.Context, costID int) ([]Payment, error) {
	var payments []Payment
	err := r.db.WithContext(ctx).Where("id_cout_projet = ?", costID).Order("date_paiement DESC").Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments of cost %d: %w", costID, err)
	}
	return payments, nil
}

func (r *gormRepository) CreatePayment(ctx context.Context, payment *Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return nil
}

func (r *gormRepository) SumPayments(ctx context.Context, costID int) (decimal.Decimal, error) {
	var row sumRow
	err := r.db.WithContext(ctx).Model(&Payment{}).
		Select("COALESCE(SUM(montant), 0) AS total").
		Where("id_cout_projet = ?", costID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments of cost %d: %w", costID, err)
	}
	return row.Total, nil
}

// SumCommitted totals the non-cancelled costs of a project
func (r *gormRepository) SumCommitted(ctx context.Context, projectID int) (decimal.Decimal, error) {
	var row sumRow
	err := r.db.WithContext(ctx).Model(&Cost{}).
		Select("COALESCE(SUM(montant_total), 0) AS total").
		Where("id_projet = ? AND statut_paiement <> ?", projectID, StatusCancelled).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum costs of project %d: %w", projectID, err)
	}
	return row.Total, nil
}

func (r *gormRepository) SumPaid(ctx context.Context, projectID int) (decimal.Decimal, error) {
	var row sumRow
	err := r.db.WithContext(ctx).
		Table("historique_paiement h").
		Select("COALESCE(SUM(h.montant), 0) AS total").
		Joins("JOIN cout_jalon_projet c ON c.id_cout_jalon_projet = h.id_cout_projet").
		Where("c.id_projet = ?", projectID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments of project %d: %w", projectID, err)
	}
	return row.Total, nil
}

func (r *gormRepository) ListInvestments(ctx context.Context, projectID *int) ([]Investment, error) {
	var investments []Investment
	q := r.db.WithContext(ctx).Order("date_paiement DESC NULLS LAST")
	if projectID != nil {
		q = q.Where("id_projet = ?", *projectID)
	}
	if err := q.Find(&investments).Error; err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	return investments, nil
}

func (r *gormRepository) CreateInvestment(ctx context.Context, inv *Investment) error {
	if err := r.db.WithContext(ctx).Create(inv).Error; err != nil {
		return fmt.Errorf("failed to record investment: %w", err)
	}
	return nil
}
