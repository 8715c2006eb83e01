package cultures

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type Repository interface {
	ListCultures(ctx context.Context) ([]Culture, error)
	GetCultureByID(ctx context.Context, id int) (*Culture, error)
	CreateCulture(ctx context.Context, culture *Culture) error
	UpdateCulture(ctx context.Context, culture *Culture) error
	DeleteCulture(ctx context.Context, id int) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) ListCultures(ctx context.Context) ([]Culture, error) {
	var cultures []Culture
	err := r.db.WithContext(ctx).Order("nom_culture").Find(&cultures).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cultures: %w", err)
	}
	return cultures, nil
}

func (r *gormRepository) GetCultureByID(ctx context.Context, id int) (*Culture, error) {
	var culture Culture
	err := r.db.WithContext(ctx).First(&culture, "id_culture = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get culture %d: %w", id, err)
	}
	return &culture, nil
}

func (r *gormRepository) CreateCulture(ctx context.Context, culture *Culture) error {
	if err := r.db.WithContext(ctx).Create(culture).Error; err != nil {
		return fmt.Errorf("failed to create culture: %w", err)
	}
	return nil
}

func (r *gormRepository) UpdateCulture(ctx context.Context, culture *Culture) error {
	if err := r.db.WithContext(ctx).Save(culture).Error; err != nil {
		return fmt.Errorf("failed to update culture %d: %w", culture.ID, err)
	}
	return nil
}

func (r *gormRepository) DeleteCulture(ctx context.Context, id int) error {
	if err := r.db.WithContext(ctx).Delete(&Culture{}, "id_culture = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete culture %d: %w", id, err)
	}
	return nil
}
