package cultures

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

var ErrNameRequired = errors.New("culture name is required")

type Service interface {
	ListCultures(ctx context.Context) ([]Culture, error)
	GetCulture(ctx context.Context, id int) (*Culture, error)
	CreateCulture(ctx context.Context, req CreateCultureRequest) (*Culture, error)
	UpdateCulture(ctx context.Context, id int, req UpdateCultureRequest) (*Culture, error)
	DeleteCulture(ctx context.Context, id int) error
}

type cultureService struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &cultureService{repo: repo, logger: logger}
}

func (s *cultureService) ListCultures(ctx context.Context) ([]Culture, error) {
	cultures, err := s.repo.ListCultures(ctx)
	if err != nil {
		s.logger.Error("Failed to list cultures", zap.Error(err))
		return nil, err
	}
	return cultures, nil
}

func (s *cultureService) GetCulture(ctx context.Context, id int) (*Culture, error) {
	culture, err := s.repo.GetCultureByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get culture", zap.Int("culture_id", id), zap.Error(err))
		return nil, err
	}
	return culture, nil
}

func (s *cultureService) CreateCulture(ctx context.Context, req CreateCultureRequest) (*Culture, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	culture := &Culture{
		Name:               name,
		YieldPerHectare:    req.YieldPerHectare,
		PricePerTonne:      req.PricePerTonne,
		OperatingCostPerHa: req.OperatingCostPerHa,
		TechnicalSheet:     req.TechnicalSheet,
		CreatedBy:          req.CreatedBy,
	}
	if err := s.repo.CreateCulture(ctx, culture); err != nil {
		s.logger.Error("Failed to create culture", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Culture created", zap.Int("culture_id", culture.ID), zap.String("name", culture.Name))
	return culture, nil
}

// UpdateCulture returns nil, nil when the culture does not exist
func (s *cultureService) UpdateCulture(ctx context.Context, id int, req UpdateCultureRequest) (*Culture, error) {
	culture, err := s.repo.GetCultureByID(ctx, id)
	if err != nil || culture == nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		culture.Name = name
	}
	if req.YieldPerHectare != nil {
		culture.YieldPerHectare = req.YieldPerHectare
	}
	if req.PricePerTonne != nil {
		culture.PricePerTonne = req.PricePerTonne
	}
	if req.OperatingCostPerHa != nil {
		culture.OperatingCostPerHa = req.OperatingCostPerHa
	}
	if req.TechnicalSheet != nil {
		culture.TechnicalSheet = *req.TechnicalSheet
	}

	if err := s.repo.UpdateCulture(ctx, culture); err != nil {
		s.logger.Error("Failed to update culture", zap.Int("culture_id", id), zap.Error(err))
		return nil, err
	}
	return culture, nil
}

func (s *cultureService) DeleteCulture(ctx context.Context, id int) error {
	if err := s.repo.DeleteCulture(ctx, id); err != nil {
		s.logger.Error("Failed to delete culture", zap.Int("culture_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("Culture deleted", zap.Int("culture_id", id))
	return nil
}
