package projects

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lounaagency/agri-admin-dashboard/pkg/geospatial"
)

var (
	ErrTitleRequired      = errors.New("project title is required")
	ErrInvalidStatus      = errors.New("invalid project status")
	ErrProjectNotFound    = errors.New("project not found")
	ErrMilestoneNotFound  = errors.New("milestone not found")
	ErrNoLaunchDate       = errors.New("project has no launch date to schedule from")
	ErrMilestoneCompleted = errors.New("milestone already completed")
	ErrMilestoneName      = errors.New("milestone name is required")
)

type Service interface {
	ListProjects(ctx context.Context) ([]Project, error)
	GetProject(ctx context.Context, id int) (*Project, error)
	ListProjectCultures(ctx context.Context, projectID int) ([]ProjectCulture, error)
	CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error)
	UpdateProject(ctx context.Context, id int, req UpdateProjectRequest) (*Project, error)
	UpdateProjectCultures(ctx context.Context, projectID int, cultureIDs []int) error
	DeleteProject(ctx context.Context, id int) error
	GetProjectStatsByStatus(ctx context.Context) (map[string]int64, error)

	ListMilestones(ctx context.Context, cultureID *int) ([]Milestone, error)
	CreateMilestone(ctx context.Context, req CreateMilestoneRequest) (*Milestone, error)
	ListProjectMilestones(ctx context.Context, projectID int) ([]ProjectMilestone, error)
	ScheduleMilestone(ctx context.Context, projectID int, req ScheduleMilestoneRequest) (*ProjectMilestone, error)
	CompleteMilestone(ctx context.Context, id int, req CompleteMilestoneRequest) (*ProjectMilestone, error)
}

type projectService struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &projectService{repo: repo, logger: logger, now: time.Now}
}

func (s *projectService) ListProjects(ctx context.Context) ([]Project, error) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		s.logger.Error("Failed to list projects", zap.Error(err))
		return nil, err
	}
	return projects, nil
}

func (s *projectService) GetProject(ctx context.Context, id int) (*Project, error) {
	project, err := s.repo.GetProjectByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get project", zap.Int("project_id", id), zap.Error(err))
		return nil, err
	}
	return project, nil
}

func (s *projectService) ListProjectCultures(ctx context.Context, projectID int) ([]ProjectCulture, error) {
	links, err := s.repo.ListProjectCultures(ctx, projectID)
	if err != nil {
		s.logger.Error("Failed to list project cultures", zap.Int("project_id", projectID), zap.Error(err))
		return nil, err
	}
	return links, nil
}

// CreateProject inserts the project and its culture links in one transaction
func (s *projectService) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	status := req.Status
	if status == "" {
		status = StatusPending
	}
	if !IsValidStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	project := &Project{
		Title:          title,
		Description:    req.Description,
		Status:         status,
		SurfaceHa:      req.SurfaceHa,
		Location:       req.Location,
		LaunchDate:     req.LaunchDate,
		PlannedEndDate: req.PlannedEndDate,
		Budget:         req.Budget,
		CommuneID:      req.CommuneID,
		DistrictID:     req.DistrictID,
		RegionID:       req.RegionID,
		TerrainID:      req.TerrainID,
		SupervisorID:   req.SupervisorID,
		TechnicianID:   req.TechnicianID,
		FarmerID:       req.FarmerID,
		CreatedBy:      req.CreatedBy,
	}
	if hasGeometry(req.Geometry) {
		if err := applyGeometry(project, req.Geometry); err != nil {
			return nil, err
		}
	}

	err := s.repo.WithTx(ctx, func(tx Repository) error {
		if err := tx.CreateProject(ctx, project); err != nil {
			return err
		}
		return tx.CreateProjectCultures(ctx, cultureLinks(project.ID, req.CultureIDs))
	})
	if err != nil {
		s.logger.Error("Failed to create project", zap.String("title", title), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Project created",
		zap.Int("project_id", project.ID),
		zap.String("title", project.Title),
		zap.Int("cultures", len(req.CultureIDs)),
	)
	return project, nil
}

// UpdateProject returns nil, nil when the project does not exist
func (s *projectService) UpdateProject(ctx context.Context, id int, req UpdateProjectRequest) (*Project, error) {
	project, err := s.repo.GetProjectByID(ctx, id)
	if err != nil || project == nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		project.Title = title
	}
	if req.Status != nil {
		if !IsValidStatus(*req.Status) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *req.Status)
		}
		project.Status = *req.Status
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.SurfaceHa != nil {
		project.SurfaceHa = *req.SurfaceHa
	}
	if req.Location != nil {
		project.Location = *req.Location
	}
	if req.LaunchDate != nil {
		project.LaunchDate = req.LaunchDate
	}
	if req.PlannedEndDate != nil {
		project.PlannedEndDate = req.PlannedEndDate
	}
	if req.Budget != nil {
		project.Budget = *req.Budget
	}
	if req.SupervisorID != nil {
		project.SupervisorID = req.SupervisorID
	}
	if req.TechnicianID != nil {
		project.TechnicianID = req.TechnicianID
	}
	if req.FarmerID != nil {
		project.FarmerID = req.FarmerID
	}
	if hasGeometry(req.Geometry) {
		if req.SurfaceHa == nil {
			project.SurfaceHa = 0
		}
		if err := applyGeometry(project, req.Geometry); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateProject(ctx, project); err != nil {
		s.logger.Error("Failed to update project", zap.Int("project_id", id), zap.Error(err))
		return nil, err
	}
	return project, nil
}

// UpdateProjectCultures replaces the culture links of a project in one transaction
func (s *projectService) UpdateProjectCultures(ctx context.Context, projectID int, cultureIDs []int) error {
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		if err := tx.DeleteProjectCultures(ctx, projectID); err != nil {
			return err
		}
		return tx.CreateProjectCultures(ctx, cultureLinks(projectID, cultureIDs))
	})
	if err != nil {
		s.logger.Error("Failed to update project cultures", zap.Int("project_id", projectID), zap.Error(err))
		return err
	}
	return nil
}

// DeleteProject removes culture links, then scheduled milestones, then the project.
// A failing step aborts the rest and rolls back the earlier ones.
func (s *projectService) DeleteProject(ctx context.Context, id int) error {
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		if err := tx.DeleteProjectCultures(ctx, id); err != nil {
			return err
		}
		if err := tx.DeleteProjectMilestones(ctx, id); err != nil {
			return err
		}
		return tx.DeleteProject(ctx, id)
	})
	if err != nil {
		s.logger.Error("Failed to delete project", zap.Int("project_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("Project deleted", zap.Int("project_id", id))
	return nil
}

// GetProjectStatsByStatus counts projects per status, with every known status present
func (s *projectService) GetProjectStatsByStatus(ctx context.Context) (map[string]int64, error) {
	counts, err := s.repo.CountProjectsByStatus(ctx)
	if err != nil {
		s.logger.Error("Failed to count projects by status", zap.Error(err))
		return nil, err
	}

	stats := make(map[string]int64, len(Statuses))
	for _, status := range Statuses {
		stats[status] = counts[status]
	}
	for status, n := range counts {
		if !IsValidStatus(status) {
			s.logger.Warn("Projects with unknown status", zap.String("status", status), zap.Int64("count", n))
		}
	}
	return stats, nil
}

func (s *projectService) ListMilestones(ctx context.Context, cultureID *int) ([]Milestone, error) {
	milestones, err := s.repo.ListMilestones(ctx, cultureID)
	if err != nil {
		s.logger.Error("Failed to list milestones", zap.Error(err))
		return nil, err
	}
	return milestones, nil
}

func (s *projectService) CreateMilestone(ctx context.Context, req CreateMilestoneRequest) (*Milestone, error) {
	milestone := &Milestone{
		CultureID:       req.CultureID,
		Name:            strings.TrimSpace(req.Name),
		Action:          req.Action,
		DaysAfterLaunch: req.DaysAfterLaunch,
	}
	if milestone.Name == "" {
		return nil, ErrMilestoneName
	}
	if err := s.repo.CreateMilestone(ctx, milestone); err != nil {
		s.logger.Error("Failed to create milestone", zap.Int("culture_id", req.CultureID), zap.Error(err))
		return nil, err
	}
	return milestone, nil
}

func (s *projectService) ListProjectMilestones(ctx context.Context, projectID int) ([]ProjectMilestone, error) {
	pms, err := s.repo.ListProjectMilestones(ctx, projectID)
	if err != nil {
		s.logger.Error("Failed to list project milestones", zap.Int("project_id", projectID), zap.Error(err))
		return nil, err
	}
	return pms, nil
}

func (s *projectService) ScheduleMilestone(ctx context.Context, projectID int, req ScheduleMilestoneRequest) (*ProjectMilestone, error) {
	project, err := s.repo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	milestone, err := s.repo.GetMilestoneByID(ctx, req.MilestoneID)
	if err != nil {
		return nil, err
	}
	if milestone == nil {
		return nil, ErrMilestoneNotFound
	}

	planned := req.PlannedDate
	if planned == nil {
		if project.LaunchDate == nil {
			return nil, ErrNoLaunchDate
		}
		d := project.LaunchDate.AddDate(0, 0, milestone.DaysAfterLaunch)
		planned = &d
	}

	pm := &ProjectMilestone{
		ProjectID:   projectID,
		MilestoneID: milestone.ID,
		Status:      MilestonePlanned,
		PlannedDate: planned,
	}
	if err := s.repo.CreateProjectMilestone(ctx, pm); err != nil {
		s.logger.Error("Failed to schedule milestone",
			zap.Int("project_id", projectID), zap.Int("milestone_id", milestone.ID), zap.Error(err))
		return nil, err
	}
	pm.Milestone = milestone
	return pm, nil
}

// CompleteMilestone returns nil, nil when the scheduled milestone does not exist
func (s *projectService) CompleteMilestone(ctx context.Context, id int, req CompleteMilestoneRequest) (*ProjectMilestone, error) {
	pm, err := s.repo.GetProjectMilestoneByID(ctx, id)
	if err != nil || pm == nil {
		return nil, err
	}
	if pm.Status == MilestoneDone {
		return nil, ErrMilestoneCompleted
	}

	actual := req.ActualDate
	if actual == nil {
		now := s.now()
		actual = &now
	}
	pm.Status = MilestoneDone
	pm.ActualDate = actual
	pm.FieldReport = req.FieldReport
	pm.Photos = req.Photos

	if err := s.repo.UpdateProjectMilestone(ctx, pm); err != nil {
		s.logger.Error("Failed to complete milestone", zap.Int("project_milestone_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Milestone completed", zap.Int("project_milestone_id", id), zap.Int("project_id", pm.ProjectID))
	return pm, nil
}

func cultureLinks(projectID int, cultureIDs []int) []ProjectCulture {
	seen := make(map[int]bool, len(cultureIDs))
	links := make([]ProjectCulture, 0, len(cultureIDs))
	for _, id := range cultureIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		links = append(links, ProjectCulture{ProjectID: projectID, CultureID: id})
	}
	return links
}

func hasGeometry(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// applyGeometry validates the plot and derives the surface when none was given
func applyGeometry(project *Project, raw []byte) error {
	ha, err := geospatial.AreaHectares(raw)
	if err != nil {
		return err
	}
	project.Geometry = append(project.Geometry[:0], raw...)
	if project.SurfaceHa == 0 {
		project.SurfaceHa = ha
	}
	return nil
}
