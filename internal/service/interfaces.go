package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/projexhq/projex-server/internal/domain"
	"github.com/projexhq/projex-server/internal/repository"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	CurrentUser(ctx context.Context, accessToken string) (*domain.User, error)
}

type WorkspaceServiceInterface interface {
	Create(ctx context.Context, ownerID uuid.UUID, in WorkspaceInput) (*domain.Workspace, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Workspace, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Workspace, error)
	Update(ctx context.Context, userID, id uuid.UUID, in WorkspaceUpdate) (*domain.Workspace, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type TagServiceInterface interface {
	Create(ctx context.Context, name, colorHex string) (*domain.Tag, error)
	Search(ctx context.Context, query string, page repository.PageRequest) (repository.PageResult[domain.Tag], error)
}

type ProjectServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, in ProjectInput) (*domain.Project, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*domain.Project, error)
	ListForWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) ([]domain.Project, error)
}

var (
	_ AuthServiceInterface      = (*AuthService)(nil)
	_ WorkspaceServiceInterface = (*WorkspaceService)(nil)
	_ TagServiceInterface       = (*TagService)(nil)
	_ ProjectServiceInterface   = (*ProjectService)(nil)
)
