package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/projexhq/projex-server/internal/domain"
)

type WorkspaceRepository interface {
	// Create inserts the workspace and records its owner as an admin member.
	Create(ctx context.Context, ws *domain.Workspace) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error)
	SlugTaken(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	NameTakenForUser(ctx context.Context, userID uuid.UUID, name string, excludeID uuid.UUID) (bool, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Workspace, error)
	IsMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error)
	Update(ctx context.Context, ws *domain.Workspace) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormWorkspaceRepository struct{ db *gorm.DB }

func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &GormWorkspaceRepository{db: db}
}

func (r *GormWorkspaceRepository) Create(ctx context.Context, ws *domain.Workspace) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Members", "Projects").Create(ws).Error; err != nil {
			return err
		}
		member := domain.WorkspaceMember{
			WorkspaceID: ws.ID,
			UserID:      ws.OwnerID,
			Role:        domain.WorkspaceRoleAdmin,
			JoinedAt:    time.Now().UTC(),
		}
		return tx.Create(&member).Error
	})
	return finish(ctx, "workspace", "create", err)
}

func (r *GormWorkspaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	var ws domain.Workspace
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ws).Error
	if err := finish(ctx, "workspace", "find_by_id", err); err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *GormWorkspaceRepository) SlugTaken(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&domain.Workspace{}).Where("slug = ?", slug)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	err := finish(ctx, "workspace", "slug_taken", q.Count(&count).Error)
	return count > 0, err
}

func (r *GormWorkspaceRepository) NameTakenForUser(ctx context.Context, userID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&domain.Workspace{}).
		Where("name = ?", name).
		Where("owner_id = ? OR id IN (?)", userID,
			r.db.Model(&domain.WorkspaceMember{}).Select("workspace_id").Where("user_id = ?", userID))
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	err := finish(ctx, "workspace", "name_taken_for_user", q.Count(&count).Error)
	return count > 0, err
}

func (r *GormWorkspaceRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Workspace, error) {
	var out []domain.Workspace
	err := r.db.WithContext(ctx).
		Where("owner_id = ? OR id IN (?)", userID,
			r.db.Model(&domain.WorkspaceMember{}).Select("workspace_id").Where("user_id = ?", userID)).
		Order("created_at ASC").
		Find(&out).Error
	return out, finish(ctx, "workspace", "list_for_user", err)
}

func (r *GormWorkspaceRepository) IsMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Count(&count).Error
	return count > 0, finish(ctx, "workspace", "is_member", err)
}

func (r *GormWorkspaceRepository) Update(ctx context.Context, ws *domain.Workspace) error {
	ws.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&domain.Workspace{}).
		Where("id = ?", ws.ID).
		Updates(map[string]any{
			"name":        ws.Name,
			"slug":        ws.Slug,
			"description": ws.Description,
			"updated_at":  ws.UpdatedAt,
		})
	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = ErrNotFound
	}
	return finish(ctx, "workspace", "update", err)
}

// Delete removes the workspace with its memberships and projects. The
// explicit deletes mirror the OnDelete constraints for drivers that do not
// enforce foreign keys (sqlite without the pragma).
func (r *GormWorkspaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		projectIDs := tx.Model(&domain.Project{}).Select("id").Where("workspace_id = ?", id)
		if err := tx.Where("project_id IN (?)", projectIDs).Delete(&domain.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&domain.Project{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&domain.WorkspaceMember{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Workspace{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return finish(ctx, "workspace", "delete", err)
}
