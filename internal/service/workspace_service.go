package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/projexhq/projex-server/internal/apperr"
	"github.com/projexhq/projex-server/internal/domain"
	"github.com/projexhq/projex-server/internal/observability"
	"github.com/projexhq/projex-server/internal/repository"
)

const (
	slugPersistRetries = 3
	slugPersistBackoff = 5 * time.Millisecond
)

type WorkspaceInput struct {
	Name        string
	Description *string
}

type WorkspaceUpdate struct {
	Name        *string
	Description *string
}

type WorkspaceService struct {
	repo   repository.WorkspaceRepository
	logger *slog.Logger
}

func NewWorkspaceService(repo repository.WorkspaceRepository, logger *slog.Logger) *WorkspaceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkspaceService{repo: repo, logger: logger}
}

// CreateDefault creates the personal workspace every new user starts with.
func (s *WorkspaceService) CreateDefault(ctx context.Context, user *domain.User) (*domain.Workspace, error) {
	desc := fmt.Sprintf("%s's Personal Workspace", user.FullName)
	return s.Create(ctx, user.ID, WorkspaceInput{
		Name:        fmt.Sprintf("%s's Workspace", user.FullName),
		Description: &desc,
	})
}

// Create rejects names the user already sees in an owned or joined
// workspace. The slug is regenerated and the insert retried when a concurrent
// writer claims the same slug first.
func (s *WorkspaceService) Create(ctx context.Context, ownerID uuid.UUID, in WorkspaceInput) (*domain.Workspace, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.New(apperr.KindValidation, "workspace name is required")
	}
	taken, err := s.repo.NameTakenForUser(ctx, ownerID, name, uuid.Nil)
	if err != nil {
		return nil, apperr.Internal("check workspace name", err)
	}
	if taken {
		return nil, apperr.ErrWorkspaceAlreadyExists
	}

	var ws *domain.Workspace
	err = s.withSlugRetry(ctx, func(ctx context.Context) error {
		slug, err := GenerateUniqueSlug(ctx, s.repo, name, uuid.Nil)
		if err != nil {
			return err
		}
		candidate := &domain.Workspace{
			Name:        name,
			Slug:        slug,
			Description: in.Description,
			OwnerID:     ownerID,
		}
		if err := s.repo.Create(ctx, candidate); err != nil {
			return err
		}
		ws = candidate
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.ErrWorkspaceAlreadyExists
		}
		return nil, apperr.Internal("create workspace", err)
	}
	observability.RecordWorkspaceMutation(ctx, "create")
	s.logger.InfoContext(ctx, "workspace created",
		"workspace_id", ws.ID.String(), "slug", ws.Slug, "owner_id", ownerID.String())
	return ws, nil
}

func (s *WorkspaceService) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Workspace, error) {
	list, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("list workspaces", err)
	}
	if list == nil {
		list = []domain.Workspace{}
	}
	return list, nil
}

// Get returns the workspace when userID owns or belongs to it. Workspaces the
// user cannot see are reported as not found.
func (s *WorkspaceService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Workspace, error) {
	ws, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if ws.OwnerID == userID {
		return ws, nil
	}
	member, err := s.repo.IsMember(ctx, id, userID)
	if err != nil {
		return nil, apperr.Internal("check membership", err)
	}
	if !member {
		return nil, apperr.ErrNotFound
	}
	return ws, nil
}

func (s *WorkspaceService) Update(ctx context.Context, userID, id uuid.UUID, in WorkspaceUpdate) (*domain.Workspace, error) {
	ws, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Description != nil {
		ws.Description = in.Description
	}

	renamed := false
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.New(apperr.KindValidation, "workspace name is required")
		}
		if name != ws.Name {
			taken, err := s.repo.NameTakenForUser(ctx, userID, name, ws.ID)
			if err != nil {
				return nil, apperr.Internal("check workspace name", err)
			}
			if taken {
				return nil, apperr.ErrWorkspaceAlreadyExists
			}
			ws.Name = name
			renamed = true
		}
	}

	err = s.withSlugRetry(ctx, func(ctx context.Context) error {
		if renamed {
			slug, err := GenerateUniqueSlug(ctx, s.repo, ws.Name, ws.ID)
			if err != nil {
				return err
			}
			ws.Slug = slug
		}
		return s.repo.Update(ctx, ws)
	})
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrDuplicate):
		return nil, apperr.ErrWorkspaceAlreadyExists
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperr.ErrNotFound
	default:
		return nil, apperr.Internal("update workspace", err)
	}
	observability.RecordWorkspaceMutation(ctx, "update")
	return ws, nil
}

func (s *WorkspaceService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.Internal("delete workspace", err)
	}
	observability.RecordWorkspaceMutation(ctx, "delete")
	s.logger.InfoContext(ctx, "workspace deleted", "workspace_id", id.String(), "owner_id", userID.String())
	return nil
}

func (s *WorkspaceService) find(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	ws, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Internal("load workspace", err)
	}
	return ws, nil
}

func (s *WorkspaceService) owned(ctx context.Context, userID, id uuid.UUID) (*domain.Workspace, error) {
	ws, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if ws.OwnerID != userID {
		return nil, apperr.ErrNotFound
	}
	return ws, nil
}

// withSlugRetry reruns fn while it fails on a unique index. Other errors end
// the loop immediately.
func (s *WorkspaceService) withSlugRetry(ctx context.Context, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(slugPersistRetries, retry.NewConstant(slugPersistBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, repository.ErrDuplicate) {
			observability.RecordSlugCollision(ctx, "insert")
			return retry.RetryableError(err)
		}
		return err
	})
}
