package finance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lounaagency/agri-admin-dashboard/internal/metrics"
)

var (
	ErrCostNotFound    = errors.New("cost not found")
	ErrCostCancelled   = errors.New("cost is cancelled")
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrExpenseType     = errors.New("expense type is required")
)

type Service interface {
	ListProjectCosts(ctx context.Context, projectID int) ([]Cost, error)
	CreateCost(ctx context.Context, req CreateCostRequest) (*Cost, error)
	CancelCost(ctx context.Context, id int) (*Cost, error)
	ListPayments(ctx context.Context, costID int) ([]Payment, error)
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error)
	UpdateCostPaymentStatus(ctx context.Context, costID int) (string, error)
	GetFinancialSummary(ctx context.Context, projectID int) (*FinancialSummary, error)
	ListInvestments(ctx context.Context, projectID *int) ([]Investment, error)
	CreateInvestment(ctx context.Context, req CreateInvestmentRequest) (*Investment, error)
	FindStatusDrift(ctx context.Context) ([]CostDrift, error)
}

type financeService struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &financeService{repo: repo, logger: logger, now: time.Now}
}

func (s *financeService) ListProjectCosts(ctx context.Context, projectID int) ([]Cost, error) {
	costs, err := s.repo.ListCostsByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("Failed to list project costs", zap.Int("project_id", projectID), zap.Error(err))
		return nil, err
	}
	return costs, nil
}

func (s *financeService) CreateCost(ctx context.Context, req CreateCostRequest) (*Cost, error) {
	expenseType := strings.TrimSpace(req.ExpenseType)
	if expenseType == "" {
		return nil, ErrExpenseType
	}

	total := req.TotalAmount
	if total.IsZero() && req.AmountPerHectare.IsPositive() {
		project, err := s.repo.GetProject(ctx, req.ProjectID)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, ErrProjectNotFound
		}
		total = req.AmountPerHectare.Mul(decimal.NewFromFloat(project.SurfaceHa)).Round(2)
	}
	if !total.IsPositive() {
		return nil, ErrInvalidAmount
	}

	cost := &Cost{
		ProjectID:          req.ProjectID,
		ProjectMilestoneID: req.ProjectMilestoneID,
		ExpenseType:        expenseType,
		AmountPerHectare:   req.AmountPerHectare,
		TotalAmount:        total,
		PaymentStatus:      StatusUnengaged,
	}
	if err := s.repo.CreateCost(ctx, cost); err != nil {
		s.logger.Error("Failed to create cost", zap.Int("project_id", req.ProjectID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Cost created",
		zap.Int("cost_id", cost.ID),
		zap.Int("project_id", cost.ProjectID),
		zap.String("total", cost.TotalAmount.String()),
	)
	return cost, nil
}

// CancelCost marks a cost cancelled. Cancelled costs accept no payments and keep their status.
func (s *financeService) CancelCost(ctx context.Context, id int) (*Cost, error) {
	cost, err := s.repo.GetCostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cost == nil {
		return nil, ErrCostNotFound
	}
	if costStatusFlow.IsTerminal(cost.PaymentStatus) {
		return cost, nil
	}

	if err := s.repo.UpdateCostStatus(ctx, id, StatusCancelled); err != nil {
		s.logger.Error("Failed to cancel cost", zap.Int("cost_id", id), zap.Error(err))
		return nil, err
	}
	cost.PaymentStatus = StatusCancelled
	return cost, nil
}

func (s *financeService) ListPayments(ctx context.Context, costID int) ([]Payment, error) {
	payments, err := s.repo.ListPayments(ctx, costID)
	if err != nil {
		s.logger.Error("Failed to list payments", zap.Int("cost_id", costID), zap.Error(err))
		return nil, err
	}
	return payments, nil
}

// CreatePayment records the payment and recomputes the cost status in one transaction
func (s *financeService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	paidAt := s.now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	payment := &Payment{
		CostID:    req.CostID,
		PaidAt:    paidAt,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
	}

	var status string
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		cost, err := tx.GetCostByID(ctx, req.CostID)
		if err != nil {
			return err
		}
		if cost == nil {
			return ErrCostNotFound
		}
		if costStatusFlow.IsTerminal(cost.PaymentStatus) {
			return ErrCostCancelled
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			return err
		}
		status, err = recomputeStatus(ctx, tx, cost)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to record payment", zap.Int("cost_id", req.CostID), zap.Error(err))
		return nil, err
	}

	metrics.RecordPaymentStatus(status)
	s.logger.Info("Payment recorded",
		zap.Int("payment_id", payment.ID),
		zap.Int("cost_id", payment.CostID),
		zap.String("amount", payment.Amount.String()),
		zap.String("status", status),
	)
	return payment, nil
}

// UpdateCostPaymentStatus rewrites the status of a cost from its payment history
func (s *financeService) UpdateCostPaymentStatus(ctx context.Context, costID int) (string, error) {
	cost, err := s.repo.GetCostByID(ctx, costID)
	if err != nil {
		return "", err
	}
	if cost == nil {
		return "", ErrCostNotFound
	}

	status, err := recomputeStatus(ctx, s.repo, cost)
	if err != nil {
		s.logger.Error("Failed to update cost payment status", zap.Int("cost_id", costID), zap.Error(err))
		return "", err
	}
	metrics.RecordPaymentStatus(status)
	return status, nil
}

// GetFinancialSummary returns nil, nil when the project does not exist
func (s *financeService) GetFinancialSummary(ctx context.Context, projectID int) (*FinancialSummary, error) {
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil || project == nil {
		return nil, err
	}

	committed, err := s.repo.SumCommitted(ctx, projectID)
	if err != nil {
		s.logger.Error("Failed to sum committed costs", zap.Int("project_id", projectID), zap.Error(err))
		return nil, err
	}
	paid, err := s.repo.SumPaid(ctx, projectID)
	if err != nil {
		s.logger.Error("Failed to sum payments", zap.Int("project_id", projectID), zap.Error(err))
		return nil, err
	}

	return &FinancialSummary{
		ProjectID:      projectID,
		TotalBudget:    project.Budget,
		TotalCommitted: committed,
		TotalPaid:      paid,
		Remaining:      project.Budget.Sub(paid),
	}, nil
}

func (s *financeService) ListInvestments(ctx context.Context, projectID *int) ([]Investment, error) {
	investments, err := s.repo.ListInvestments(ctx, projectID)
	if err != nil {
		s.logger.Error("Failed to list investments", zap.Error(err))
		return nil, err
	}
	return investments, nil
}

func (s *financeService) CreateInvestment(ctx context.Context, req CreateInvestmentRequest) (*Investment, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	project, err := s.repo.GetProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	inv := &Investment{
		ProjectID:        req.ProjectID,
		InvestorID:       req.InvestorID,
		Amount:           req.Amount,
		PaidAt:           req.PaidAt,
		DecidedAt:        req.DecidedAt,
		PaymentReference: req.PaymentReference,
	}
	if err := s.repo.CreateInvestment(ctx, inv); err != nil {
		s.logger.Error("Failed to record investment", zap.Int("project_id", req.ProjectID), zap.Error(err))
		return nil, err
	}
	return inv, nil
}

// FindStatusDrift lists non-cancelled costs whose stored status differs from the derived one
func (s *financeService) FindStatusDrift(ctx context.Context) ([]CostDrift, error) {
	totals, err := s.repo.ListCostPaymentTotals(ctx)
	if err != nil {
		s.logger.Error("Failed to total payments per cost", zap.Error(err))
		return nil, err
	}

	var drift []CostDrift
	for _, t := range totals {
		if costStatusFlow.IsTerminal(t.PaymentStatus) {
			continue
		}
		expected := PaymentStatusFor(t.Paid, t.TotalAmount)
		if expected != t.PaymentStatus {
			drift = append(drift, CostDrift{
				CostID:         t.CostID,
				ProjectID:      t.ProjectID,
				StoredStatus:   t.PaymentStatus,
				ExpectedStatus: expected,
				Paid:           t.Paid,
				Total:          t.TotalAmount,
			})
		}
	}
	return drift, nil
}

func recomputeStatus(ctx context.Context, repo Repository, cost *Cost) (string, error) {
	if costStatusFlow.IsTerminal(cost.PaymentStatus) {
		return cost.PaymentStatus, nil
	}
	paid, err := repo.SumPayments(ctx, cost.ID)
	if err != nil {
		return "", err
	}
	status := PaymentStatusFor(paid, cost.TotalAmount)
	if status == cost.PaymentStatus {
		return status, nil
	}
	// rows written before the status set was fixed carry unknown values and are overwritten
	if costStatusFlow.Knows(cost.PaymentStatus) {
		if _, err := costStatusFlow.Transition(cost.PaymentStatus, status); err != nil {
			return "", err
		}
	}
	if err := repo.UpdateCostStatus(ctx, cost.ID, status); err != nil {
		return "", fmt.Errorf("failed to store status %q: %w", status, err)
	}
	cost.PaymentStatus = status
	return status, nil
}
