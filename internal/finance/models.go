package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lounaagency/agri-admin-dashboard/pkg/workflows"
)

// Cost payment statuses
const (
	StatusUnengaged  = "Non engagé"
	StatusInProgress = "En cours"
	StatusPaid       = "Payé"
	StatusCancelled  = "Annulé"
)

// costStatusFlow lets payment-derived statuses move freely while a cancelled cost stays cancelled
var costStatusFlow = workflows.NewStateMachine(map[string][]string{
	StatusUnengaged:  {StatusInProgress, StatusPaid, StatusCancelled},
	StatusInProgress: {StatusUnengaged, StatusPaid, StatusCancelled},
	StatusPaid:       {StatusUnengaged, StatusInProgress, StatusCancelled},
	StatusCancelled:  {},
})

// Cost is a project expense line item
type Cost struct {
	ID                 int             `gorm:"column:id_cout_jalon_projet;primaryKey;autoIncrement" json:"id_cout_jalon_projet"`
	ProjectID          int             `gorm:"column:id_projet;not null;index" json:"id_projet"`
	ProjectMilestoneID *int            `gorm:"column:id_jalon_projet" json:"id_jalon_projet"`
	ExpenseType        string          `gorm:"column:type_depense;not null" json:"type_depense"`
	AmountPerHectare   decimal.Decimal `gorm:"column:montant_par_hectare;type:decimal(20,2);default:0" json:"montant_par_hectare"`
	TotalAmount        decimal.Decimal `gorm:"column:montant_total;type:decimal(20,2);not null" json:"montant_total"`
	PaymentStatus      string          `gorm:"column:statut_paiement;not null;default:'Non engagé'" json:"statut_paiement"`
	CreatedAt          time.Time       `gorm:"column:created_at" json:"created_at"`
	ModifiedAt         time.Time       `gorm:"column:modified_at;autoUpdateTime" json:"modified_at"`
}

func (Cost) TableName() string { return "cout_jalon_projet" }

// Payment is one settlement against a cost
type Payment struct {
	ID        int             `gorm:"column:id_historique_paiement;primaryKey;autoIncrement" json:"id_historique_paiement"`
	CostID    int             `gorm:"column:id_cout_projet;not null;index" json:"id_cout_projet"`
	PaidAt    time.Time       `gorm:"column:date_paiement;not null" json:"date_paiement"`
	Amount    decimal.Decimal `gorm:"column:montant;type:decimal(20,2);not null" json:"montant"`
	Method    string          `gorm:"column:methode_paiement" json:"methode_paiement"`
	Reference string          `gorm:"column:reference_transaction" json:"reference_transaction"`
	CreatedAt time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (Payment) TableName() string { return "historique_paiement" }

// Investment is a monetary contribution to a project
type Investment struct {
	ID               int             `gorm:"column:id_investissement;primaryKey;autoIncrement" json:"id_investissement"`
	ProjectID        int             `gorm:"column:id_projet;not null;index" json:"id_projet"`
	InvestorID       *uuid.UUID      `gorm:"column:id_investisseur;type:uuid" json:"id_investisseur"`
	Amount           decimal.Decimal `gorm:"column:montant;type:decimal(20,2);not null" json:"montant"`
	PaidAt           *time.Time      `gorm:"column:date_paiement;index" json:"date_paiement"`
	DecidedAt        *time.Time      `gorm:"column:date_decision_investir" json:"date_decision_investir"`
	PaymentReference string          `gorm:"column:reference_paiement" json:"reference_paiement"`
	CreatedAt        time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (Investment) TableName() string { return "investissement" }

// FinancialSummary is the budget position of one project
type FinancialSummary struct {
	ProjectID      int             `json:"id_projet"`
	TotalBudget    decimal.Decimal `json:"totalBudget"`
	TotalCommitted decimal.Decimal `json:"totalCommitted"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	Remaining      decimal.Decimal `json:"remaining"`
}

// CostPaymentTotal pairs a cost with the sum of its payments
type CostPaymentTotal struct {
	CostID        int
	ProjectID     int
	TotalAmount   decimal.Decimal
	PaymentStatus string
	Paid          decimal.Decimal
}

// CostDrift is a cost whose stored status disagrees with its payment history
type CostDrift struct {
	CostID         int             `json:"id_cout_jalon_projet"`
	ProjectID      int             `json:"id_projet"`
	StoredStatus   string          `json:"stored_status"`
	ExpectedStatus string          `json:"expected_status"`
	Paid           decimal.Decimal `json:"paid"`
	Total          decimal.Decimal `json:"total"`
}

// CreateCostRequest adds an expense line to a project.
// TotalAmount defaults to AmountPerHectare times the project surface.
type CreateCostRequest struct {
	ProjectID          int             `json:"id_projet" binding:"required"`
	ProjectMilestoneID *int            `json:"id_jalon_projet"`
	ExpenseType        string          `json:"type_depense" binding:"required"`
	AmountPerHectare   decimal.Decimal `json:"montant_par_hectare"`
	TotalAmount        decimal.Decimal `json:"montant_total"`
}

// CreatePaymentRequest records a settlement
type CreatePaymentRequest struct {
	CostID    int             `json:"id_cout_projet" binding:"required"`
	PaidAt    *time.Time      `json:"date_paiement"`
	Amount    decimal.Decimal `json:"montant"`
	Method    string          `json:"methode_paiement"`
	Reference string          `json:"reference_transaction"`
}

// CreateInvestmentRequest records a contribution
type CreateInvestmentRequest struct {
	ProjectID        int             `json:"id_projet" binding:"required"`
	InvestorID       *uuid.UUID      `json:"id_investisseur"`
	Amount           decimal.Decimal `json:"montant"`
	PaidAt           *time.Time      `json:"date_paiement"`
	DecidedAt        *time.Time      `json:"date_decision_investir"`
	PaymentReference string          `json:"reference_paiement"`
}

// PaymentStatusFor derives a cost status from its payment history.
// Reaching the total is paid, a positive partial amount is in progress,
// anything else is unengaged. A zero total with no payment counts as paid.
func PaymentStatusFor(paid, total decimal.Decimal) string {
	switch {
	case paid.GreaterThanOrEqual(total):
		return StatusPaid
	case paid.IsPositive():
		return StatusInProgress
	default:
		return StatusUnengaged
	}
}
