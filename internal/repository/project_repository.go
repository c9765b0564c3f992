package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/projexhq/projex-server/internal/domain"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	NameTaken(ctx context.Context, workspaceID uuid.UUID, name string) (bool, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Project, error)
}

type GormProjectRepository struct{ db *gorm.DB }

func NewProjectRepository(db *gorm.DB) ProjectRepository { return &GormProjectRepository{db: db} }

func (r *GormProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return finish(ctx, "project", "create", r.db.WithContext(ctx).Create(project).Error)
}

func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var p domain.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err := finish(ctx, "project", "find_by_id", err); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProjectRepository) NameTaken(ctx context.Context, workspaceID uuid.UUID, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Project{}).
		Where("workspace_id = ? AND name = ?", workspaceID, name).
		Count(&count).Error
	return count > 0, finish(ctx, "project", "name_taken", err)
}

func (r *GormProjectRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Project, error) {
	var out []domain.Project
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&out).Error
	return out, finish(ctx, "project", "list_by_workspace", err)
}
