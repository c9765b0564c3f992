package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/projexhq/projex-server/internal/apperr"
	"github.com/projexhq/projex-server/internal/domain"
	"github.com/projexhq/projex-server/internal/repository"
)

type ProjectInput struct {
	WorkspaceID uuid.UUID
	Name        string
	Description *string
	Status      domain.ProjectStatus
	StartDate   *time.Time
	EndDate     *time.Time
}

// ProjectService scopes every project operation to workspaces the caller can
// see.
type ProjectService struct {
	repo       repository.ProjectRepository
	workspaces *WorkspaceService
}

func NewProjectService(repo repository.ProjectRepository, workspaces *WorkspaceService) *ProjectService {
	return &ProjectService{repo: repo, workspaces: workspaces}
}

func (s *ProjectService) Create(ctx context.Context, userID uuid.UUID, in ProjectInput) (*domain.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.New(apperr.KindValidation, "project name is required")
	}
	status := in.Status
	if status == "" {
		status = domain.ProjectPlanning
	}
	if !status.Valid() {
		return nil, apperr.New(apperr.KindValidation, "unknown project status")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, apperr.New(apperr.KindValidation, "end date precedes start date")
	}
	if _, err := s.workspaces.Get(ctx, userID, in.WorkspaceID); err != nil {
		return nil, err
	}

	taken, err := s.repo.NameTaken(ctx, in.WorkspaceID, name)
	if err != nil {
		return nil, apperr.Internal("check project name", err)
	}
	if taken {
		return nil, apperr.ErrProjectAlreadyExists
	}
	project := &domain.Project{
		Name:        name,
		Description: in.Description,
		Status:      status,
		WorkspaceID: in.WorkspaceID,
		OwnerID:     userID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.ErrProjectAlreadyExists
		}
		return nil, apperr.Internal("create project", err)
	}
	return project, nil
}

func (s *ProjectService) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Project, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Internal("load project", err)
	}
	if _, err := s.workspaces.Get(ctx, userID, project.WorkspaceID); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) ListForWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) ([]domain.Project, error) {
	if _, err := s.workspaces.Get(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, apperr.Internal("list projects", err)
	}
	if list == nil {
		list = []domain.Project{}
	}
	return list, nil
}
