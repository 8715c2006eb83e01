package projects

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type Repository interface {
	// WithTx runs fn against a repository bound to a single transaction.
	// Any error returned by fn rolls back every write made through it.
	WithTx(ctx context.Context, fn func(Repository) error) error

	ListProjects(ctx context.Context) ([]Project, error)
	GetProjectByID(ctx context.Context, id int) (*Project, error)
	CreateProject(ctx context.Context, project *Project) error
	UpdateProject(ctx context.Context, project *Project) error
	DeleteProject(ctx context.Context, id int) error
	CountProjectsByStatus(ctx context.Context) (map[string]int64, error)

	ListProjectCultures(ctx context.Context, projectID int) ([]ProjectCulture, error)
	CreateProjectCultures(ctx context.Context, links []ProjectCulture) error
	DeleteProjectCultures(ctx context.Context, projectID int) error

	ListMilestones(ctx context.Context, cultureID *int) ([]Milestone, error)
	GetMilestoneByID(ctx context.Context, id int) (*Milestone, error)
	CreateMilestone(ctx context.Context, milestone *Milestone) error

	ListProjectMilestones(ctx context.Context, projectID int) ([]ProjectMilestone, error)
	GetProjectMilestoneByID(ctx context.Context, id int) (*ProjectMilestone, error)
	CreateProjectMilestone(ctx context.Context, pm *ProjectMilestone) error
	UpdateProjectMilestone(ctx context.Context, pm *ProjectMilestone) error
	DeleteProjectMilestones(ctx context.Context, projectID int) error
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

func (r *gormRepository) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (r *gormRepository) GetProjectByID(ctx context.Context, id int) (*Project, error) {
	var project Project
	err := r.db.WithContext(ctx).First(&project, "id_projet = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project %d: %w", id, err)
	}
	return &project, nil
}

func (r *gormRepository) CreateProject(ctx context.Context, project *Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (r *gormRepository) UpdateProject(ctx context.Context, project *Project) error {
	if err := r.db.WithContext(ctx).Save(project).Error; err != nil {
		return fmt.Errorf("failed to update project %d: %w", project.ID, err)
	}
	return nil
}

func (r *gormRepository) DeleteProject(ctx context.Context, id int) error {
	if err := r.db.WithContext(ctx).Delete(&Project{}, "id_projet = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete project %d: %w", id, err)
	}
	return nil
}

func (r *gormRepository) CountProjectsByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&Project{}).
		Select("statut AS status, COUNT(*) AS count").
		Group("statut").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count projects by status: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *gormRepository) ListProjectCultures(ctx context.Context, projectID int) ([]ProjectCulture, error) {
	var links []ProjectCulture
	err := r.db.WithContext(ctx).
		Preload("Culture").
		Where("id_projet = ?", projectID).
		Order("id_projet_culture").
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cultures of project %d: %w", projectID, err)
	}
	return links, nil
}

func (r *gormRepository) CreateProjectCultures(ctx context.Context, links []ProjectCulture) error {
	if len(links) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Omit("Culture").Create(&links).Error; err != nil {
		return fmt.Errorf("failed to link cultures: %w", err)
	}
	return nil
}

func (r *gormRepository) DeleteProjectCultures(ctx context.Context, projectID int) error {
	if err := r.db.WithContext(ctx).Delete(&ProjectCulture{}, "id_projet = ?", projectID).Error; err != nil {
		return fmt.Errorf("failed to unlink cultures of project %d: %w", projectID, err)
	}
	return nil
}

func (r *gormRepository) ListMilestones(ctx context.Context, cultureID *int) ([]Milestone, error) {
	var milestones []Milestone
	q := r.db.WithContext(ctx).Order("id_culture, jours_apres_lancement")
	if cultureID != nil {
		q = q.Where("id_culture = ?", *cultureID)
	}
	if err := q.Find(&milestones).Error; err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	return milestones, nil
}

func (r *gormRepository) GetMilestoneByID(ctx context.Context, id int) (*Milestone, error) {
	var milestone Milestone
	err := r.db.WithContext(ctx).First(&milestone, "id_jalon = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get milestone %d: %w", id, err)
	}
	return &milestone, nil
}

func (r *gormRepository) CreateMilestone(ctx context.Context, milestone *Milestone) error {
	if err := r.db.WithContext(ctx).Create(milestone).Error; err != nil {
		return fmt.Errorf("failed to create milestone: %w", err)
	}
	return nil
}

func (r *gormRepository) ListProjectMilestones(ctx context.Context, projectID int) ([]ProjectMilestone, error) {
	var pms []ProjectMilestone
	err := r.db.WithContext(ctx).
		Preload("Milestone").
		Where("id_projet = ?", projectID).
		Order("date_prev_planifiee ASC NULLS LAST").
		Find(&pms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones of project %d: %w", projectID, err)
	}
	return pms, nil
}

func (r *gormRepository) GetProjectMilestoneByID(ctx context.Context, id int) (*ProjectMilestone, error) {
	var pm ProjectMilestone
	err := r.db.WithContext(ctx).Preload("Milestone").First(&pm, "id_jalon_projet = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project milestone %d: %w", id, err)
	}
	return &pm, nil
}

func (r *gormRepository) CreateProjectMilestone(ctx context.Context, pm *ProjectMilestone) error {
	if err := r.db.WithContext(ctx).Omit("Milestone").Create(pm).Error; err != nil {
		return fmt.Errorf("failed to schedule milestone: %w", err)
	}
	return nil
}

func (r *gormRepository) UpdateProjectMilestone(ctx context.Context, pm *ProjectMilestone) error {
	if err := r.db.WithContext(ctx).Omit("Milestone").Save(pm).Error; err != nil {
		return fmt.Errorf("failed to update project milestone %d: %w", pm.ID, err)
	}
	return nil
}

func (r *gormRepository) DeleteProjectMilestones(ctx context.Context, projectID int) error {
	if err := r.db.WithContext(ctx).Delete(&ProjectMilestone{}, "id_projet = ?", projectID).Error; err != nil {
		return fmt.Errorf("failed to delete milestones of project %d: %w", projectID, err)
	}
	return nil
}
