package cultures

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Culture is a crop type in the catalog, with reference yield and cost figures
type Culture struct {
	ID                 int              `gorm:"column:id_culture;primaryKey;autoIncrement" json:"id_culture"`
	Name               string           `gorm:"column:nom_culture;not null" json:"nom_culture"`
	YieldPerHectare    *float64         `gorm:"column:rendement_ha" json:"rendement_ha"`
	PricePerTonne      *decimal.Decimal `gorm:"column:prix_tonne;type:decimal(20,2)" json:"prix_tonne"`
	OperatingCostPerHa *decimal.Decimal `gorm:"column:cout_exploitation_ha;type:decimal(20,2)" json:"cout_exploitation_ha"`
	TechnicalSheet     string           `gorm:"column:fiche_technique" json:"fiche_technique"`
	CreatedBy          *uuid.UUID       `gorm:"column:created_by;type:uuid" json:"created_by"`
	CreatedAt          time.Time        `gorm:"column:created_at" json:"created_at"`
	ModifiedAt         time.Time        `gorm:"column:modified_at;autoUpdateTime" json:"modified_at"`
}

func (Culture) TableName() string { return "culture" }

// CreateCultureRequest is the payload for a new catalog entry
type CreateCultureRequest struct {
	Name               string           `json:"nom_culture" binding:"required"`
	YieldPerHectare    *float64         `json:"rendement_ha"`
	PricePerTonne      *decimal.Decimal `json:"prix_tonne"`
	OperatingCostPerHa *decimal.Decimal `json:"cout_exploitation_ha"`
	TechnicalSheet     string           `json:"fiche_technique"`
	CreatedBy          *uuid.UUID       `json:"created_by"`
}

// UpdateCultureRequest carries only the fields to change
type UpdateCultureRequest struct {
	Name               *string          `json:"nom_culture"`
	YieldPerHectare    *float64         `json:"rendement_ha"`
	PricePerTonne      *decimal.Decimal `json:"prix_tonne"`
	OperatingCostPerHa *decimal.Decimal `json:"cout_exploitation_ha"`
	TechnicalSheet     *string          `json:"fiche_technique"`
}

// ExpectedMarginPerHa is the reference revenue per hectare minus operating cost.
// It returns false when the catalog entry lacks one of the figures.
func (c *Culture) ExpectedMarginPerHa() (decimal.Decimal, bool) {
	if c.YieldPerHectare == nil || c.PricePerTonne == nil || c.OperatingCostPerHa == nil {
		return decimal.Zero, false
	}
	revenue := decimal.NewFromFloat(*c.YieldPerHectare).Mul(*c.PricePerTonne)
	return revenue.Sub(*c.OperatingCostPerHa), true
}
