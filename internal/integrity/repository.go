package integrity

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/lounaagency/agri-admin-dashboard/internal/projects"
)

// Repository reads the rows no entity service owns once their parent is gone
type Repository interface {
	ListOrphanCultures(ctx context.Context) ([]OrphanCulture, error)
	DeleteOrphanCultures(ctx context.Context, ids []int) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

const orphanCondition = "NOT EXISTS (SELECT 1 FROM projet p WHERE p.id_projet = projet_culture.id_projet)"

// ListOrphanCultures finds links whose project is gone. The reverse state, a
// project whose links were stripped by an interrupted cascade, looks the same
// as a project that never had cultures and is not reported.
func (r *gormRepository) ListOrphanCultures(ctx context.Context) ([]OrphanCulture, error) {
	var rows []OrphanCulture
	err := r.db.WithContext(ctx).
		Table("projet_culture").
		Select("id_projet_culture, id_projet, id_culture").
		Where(orphanCondition).
		Order("id_projet_culture").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orphan project cultures: %w", err)
	}
	return rows, nil
}

// DeleteOrphanCultures re-checks the orphan condition so a link whose project
// was recreated in the meantime survives.
func (r *gormRepository) DeleteOrphanCultures(ctx context.Context, ids []int) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("id_projet_culture IN ?", ids).
		Where(orphanCondition).
		Delete(&projects.ProjectCulture{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete orphan project cultures: %w", res.Error)
	}
	return res.RowsAffected, nil
}
