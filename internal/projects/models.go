package projects

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/lounaagency/agri-admin-dashboard/internal/cultures"
)

// Project statuses
const (
	StatusPending   = "en attente"
	StatusActive    = "actif"
	StatusCompleted = "terminé"
	StatusCancelled = "annulé"
)

// Statuses lists every project status in display order
var Statuses = []string{StatusPending, StatusActive, StatusCompleted, StatusCancelled}

// IsValidStatus reports whether s is a known project status
func IsValidStatus(s string) bool {
	for _, status := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Milestone statuses
const (
	MilestonePlanned = "Prévu"
	MilestoneDone    = "Terminé"
)

// Project is a funded agricultural effort on a plot
type Project struct {
	ID             int             `gorm:"column:id_projet;primaryKey;autoIncrement" json:"id_projet"`
	Title          string          `gorm:"column:titre;not null" json:"titre"`
	Description    string          `gorm:"column:description" json:"description"`
	Status         string          `gorm:"column:statut;not null;default:'en attente';index" json:"statut"`
	SurfaceHa      float64         `gorm:"column:surface_ha" json:"surface_ha"`
	Geometry       datatypes.JSON  `gorm:"column:geom_geojson" json:"geom,omitempty"` // GeoJSON
	Location       string          `gorm:"column:localisation" json:"localisation"`
	LaunchDate     *time.Time      `gorm:"column:date_lancement" json:"date_lancement"`
	PlannedEndDate *time.Time      `gorm:"column:date_fin_prevue" json:"date_fin_prevue"`
	Budget         decimal.Decimal `gorm:"column:budget_total;type:decimal(20,2);default:0" json:"budget_total"`
	CommuneID      *int            `gorm:"column:id_commune" json:"id_commune"`
	DistrictID     *int            `gorm:"column:id_district" json:"id_district"`
	RegionID       *int            `gorm:"column:id_region" json:"id_region"`
	TerrainID      *int            `gorm:"column:id_terrain" json:"id_terrain"`
	SupervisorID   *uuid.UUID      `gorm:"column:id_superviseur;type:uuid" json:"id_superviseur"`
	TechnicianID   *uuid.UUID      `gorm:"column:id_technicien;type:uuid" json:"id_technicien"`
	FarmerID       *uuid.UUID      `gorm:"column:id_tantsaha;type:uuid" json:"id_tantsaha"`
	CreatedBy      *uuid.UUID      `gorm:"column:created_by;type:uuid" json:"created_by"`
	CreatedAt      time.Time       `gorm:"column:created_at;index" json:"created_at"`
	ModifiedAt     time.Time       `gorm:"column:modified_at;autoUpdateTime" json:"modified_at"`
}

func (Project) TableName() string { return "projet" }

// ProjectCulture links a project to one culture with planned and actual figures
type ProjectCulture struct {
	ID               int               `gorm:"column:id_projet_culture;primaryKey;autoIncrement" json:"id_projet_culture"`
	ProjectID        int               `gorm:"column:id_projet;not null;index" json:"id_projet"`
	CultureID        int               `gorm:"column:id_culture;not null;index" json:"id_culture"`
	PlannedYield     *float64          `gorm:"column:rendement_previsionnel" json:"rendement_previsionnel"`
	ActualYield      *float64          `gorm:"column:rendement_reel" json:"rendement_reel"`
	PlannedCost      *decimal.Decimal  `gorm:"column:cout_exploitation_previsionnel;type:decimal(20,2)" json:"cout_exploitation_previsionnel"`
	ActualCost       *decimal.Decimal  `gorm:"column:cout_exploitation_reel;type:decimal(20,2)" json:"cout_exploitation_reel"`
	PlannedStartDate *time.Time        `gorm:"column:date_debut_previsionnelle" json:"date_debut_previsionnelle"`
	ActualStartDate  *time.Time        `gorm:"column:date_debut_reelle" json:"date_debut_reelle"`
	CreatedAt        time.Time         `gorm:"column:created_at" json:"created_at"`
	Culture          *cultures.Culture `gorm:"foreignKey:CultureID;references:ID" json:"culture,omitempty"`
}

func (ProjectCulture) TableName() string { return "projet_culture" }

// Milestone is a phase template in a culture's lifecycle
type Milestone struct {
	ID              int    `gorm:"column:id_jalon;primaryKey;autoIncrement" json:"id_jalon"`
	CultureID       int    `gorm:"column:id_culture;not null;index" json:"id_culture"`
	Name            string `gorm:"column:nom_jalon;not null" json:"nom_jalon"`
	Action          string `gorm:"column:action_a_faire" json:"action_a_faire"`
	DaysAfterLaunch int    `gorm:"column:jours_apres_lancement" json:"jours_apres_lancement"`
}

func (Milestone) TableName() string { return "jalon_agricole" }

// ProjectMilestone is the scheduled and actual occurrence of a milestone on a project
type ProjectMilestone struct {
	ID          int        `gorm:"column:id_jalon_projet;primaryKey;autoIncrement" json:"id_jalon_projet"`
	ProjectID   int        `gorm:"column:id_projet;not null;index" json:"id_projet"`
	MilestoneID int        `gorm:"column:id_jalon;not null" json:"id_jalon"`
	Status      string     `gorm:"column:statut;not null;default:'Prévu';index" json:"statut"`
	PlannedDate *time.Time `gorm:"column:date_prev_planifiee" json:"date_prev_planifiee"`
	ActualDate  *time.Time `gorm:"column:date_reelle_execution" json:"date_reelle_execution"`
	FieldReport string     `gorm:"column:rapport_terrain" json:"rapport_terrain"`
	Photos      string     `gorm:"column:photos_sur_terrain" json:"photos_sur_terrain"`
	Milestone   *Milestone `gorm:"foreignKey:MilestoneID;references:ID" json:"jalon,omitempty"`
}

func (ProjectMilestone) TableName() string { return "jalon_projet" }

// CreateProjectRequest creates a project and its culture links
type CreateProjectRequest struct {
	Title          string          `json:"titre" binding:"required"`
	Description    string          `json:"description"`
	Status         string          `json:"statut"`
	SurfaceHa      float64         `json:"surface_ha"`
	Geometry       datatypes.JSON  `json:"geom"`
	Location       string          `json:"localisation"`
	LaunchDate     *time.Time      `json:"date_lancement"`
	PlannedEndDate *time.Time      `json:"date_fin_prevue"`
	Budget         decimal.Decimal `json:"budget_total"`
	CommuneID      *int            `json:"id_commune"`
	DistrictID     *int            `json:"id_district"`
	RegionID       *int            `json:"id_region"`
	TerrainID      *int            `json:"id_terrain"`
	SupervisorID   *uuid.UUID      `json:"id_superviseur"`
	TechnicianID   *uuid.UUID      `json:"id_technicien"`
	FarmerID       *uuid.UUID      `json:"id_tantsaha"`
	CreatedBy      *uuid.UUID      `json:"created_by"`
	CultureIDs     []int           `json:"culture_ids"`
}

// UpdateProjectRequest carries only the fields to change
type UpdateProjectRequest struct {
	Title          *string          `json:"titre"`
	Description    *string          `json:"description"`
	Status         *string          `json:"statut"`
	SurfaceHa      *float64         `json:"surface_ha"`
	Geometry       datatypes.JSON   `json:"geom"`
	Location       *string          `json:"localisation"`
	LaunchDate     *time.Time       `json:"date_lancement"`
	PlannedEndDate *time.Time       `json:"date_fin_prevue"`
	Budget         *decimal.Decimal `json:"budget_total"`
	SupervisorID   *uuid.UUID       `json:"id_superviseur"`
	TechnicianID   *uuid.UUID       `json:"id_technicien"`
	FarmerID       *uuid.UUID       `json:"id_tantsaha"`
}

// CreateMilestoneRequest adds a phase template to a culture
type CreateMilestoneRequest struct {
	CultureID       int    `json:"id_culture" binding:"required"`
	Name            string `json:"nom_jalon" binding:"required"`
	Action          string `json:"action_a_faire"`
	DaysAfterLaunch int    `json:"jours_apres_lancement"`
}

// ScheduleMilestoneRequest plans a milestone on a project.
// PlannedDate defaults to the project launch date plus the template offset.
type ScheduleMilestoneRequest struct {
	MilestoneID int        `json:"id_jalon" binding:"required"`
	PlannedDate *time.Time `json:"date_prev_planifiee"`
}

// CompleteMilestoneRequest records the execution of a planned milestone
type CompleteMilestoneRequest struct {
	ActualDate  *time.Time `json:"date_reelle_execution"`
	FieldReport string     `json:"rapport_terrain"`
	Photos      string     `json:"photos_sur_terrain"`
}
