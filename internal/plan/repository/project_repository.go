package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/iRoman8614/timelinesWorks-sub000/internal/plan/entity"
)

// ProjectRepository persists the serialized structural-model blob. The blob is
// opaque at this layer: nothing queries inside it.
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a project row.
func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// FindByID fetches one project.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*entity.Project, error) {
	var p entity.Project
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all projects, newest first, without the blob column.
func (r *ProjectRepository) List(ctx context.Context) ([]entity.Project, error) {
	var projects []entity.Project
	err := r.db.WithContext(ctx).
		Select("id", "name", "history_updated_at", "created_at", "updated_at").
		Order("updated_at DESC").
		Find(&projects).Error
	return projects, err
}

// Save upserts the whole row.
func (r *ProjectRepository) Save(ctx context.Context, p *entity.Project) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// Delete removes a project.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.Project{}, "id = ?", id).Error
}
