package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/projexhq/projex-server/internal/apperr"
	"github.com/projexhq/projex-server/internal/domain"
	"github.com/projexhq/projex-server/internal/repository"
)

func TestTagServiceCreateAndSearch(t *testing.T) {
	ctx := context.Background()
	svc := NewTagService(repository.NewTagRepository(newDBForTest(t)))

	tag, err := svc.Create(ctx, " Bug ", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tag.Name != "Bug" || tag.ColorHex != domain.DefaultTagColor {
		t.Fatalf("unexpected tag %+v", tag)
	}
	if _, err := svc.Create(ctx, "Bug", "#ffffff"); !errors.Is(err, apperr.ErrTagAlreadyExists) {
		t.Fatalf("expected TagAlreadyExists, got %v", err)
	}

	created, err := svc.EnsureDefaults(ctx, "Bug", "Review", "Research")
	if err != nil {
		t.Fatalf("ensure defaults: %v", err)
	}
	if created != 2 {
		t.Fatalf("created=%d want 2", created)
	}
	res, err := svc.Search(ctx, "RE", repository.PageRequest{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if res.Total != 2 {
		t.Fatalf("total=%d want 2", res.Total)
	}
}

func TestProjectServiceScopesToWorkspace(t *testing.T) {
	ctx := context.Background()
	db := newDBForTest(t)
	users := createUsersForTest(t, db, "a@x.io", "b@x.io")
	owner, stranger := users[0], users[1]
	workspaces := NewWorkspaceService(repository.NewWorkspaceRepository(db), nil)
	svc := NewProjectService(repository.NewProjectRepository(db), workspaces)

	ws, err := workspaces.Create(ctx, owner.ID, WorkspaceInput{Name: "Home"})
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	p, err := svc.Create(ctx, owner.ID, ProjectInput{WorkspaceID: ws.ID, Name: "Launch"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if p.Status != domain.ProjectPlanning || p.OwnerID != owner.ID {
		t.Fatalf("unexpected project %+v", p)
	}

	if _, err := svc.Create(ctx, owner.ID, ProjectInput{WorkspaceID: ws.ID, Name: "Launch"}); !errors.Is(err, apperr.ErrProjectAlreadyExists) {
		t.Fatalf("expected ProjectAlreadyExists, got %v", err)
	}
	if _, err := svc.Create(ctx, stranger.ID, ProjectInput{WorkspaceID: ws.ID, Name: "Sneaky"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound for stranger, got %v", err)
	}
	if _, err := svc.Create(ctx, owner.ID, ProjectInput{WorkspaceID: ws.ID, Name: "Odd", Status: "unknown"}); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for status, got %v", err)
	}
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	if _, err := svc.Create(ctx, owner.ID, ProjectInput{WorkspaceID: ws.ID, Name: "Back", StartDate: &start, EndDate: &end}); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for date order, got %v", err)
	}

	if _, err := svc.Get(ctx, stranger.ID, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound for stranger get, got %v", err)
	}
	if _, err := svc.Get(ctx, owner.ID, uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound for missing project, got %v", err)
	}
	list, err := svc.ListForWorkspace(ctx, owner.ID, ws.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: len=%d err=%v", len(list), err)
	}
}

func TestWorkspaceDeleteTakesProjectsWithIt(t *testing.T) {
	ctx := context.Background()
	db := newDBForTest(t)
	owner := createUsersForTest(t, db, "del@x.io")[0]
	workspaces := NewWorkspaceService(repository.NewWorkspaceRepository(db), nil)
	svc := NewProjectService(repository.NewProjectRepository(db), workspaces)

	ws, err := workspaces.Create(ctx, owner.ID, WorkspaceInput{Name: "Short Lived"})
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	if _, err := svc.Create(ctx, owner.ID, ProjectInput{WorkspaceID: ws.ID, Name: "Orphan"}); err != nil {
		t.Fatalf("create project: %v", err)
	}
	if err := workspaces.Delete(ctx, owner.ID, ws.ID); err != nil {
		t.Fatalf("delete workspace: %v", err)
	}

	var left int64
	if err := db.Model(&domain.Project{}).Where("workspace_id = ?", ws.ID).Count(&left).Error; err != nil {
		t.Fatalf("count projects: %v", err)
	}
	if left != 0 {
		t.Fatalf("projects left pointing at deleted workspace=%d", left)
	}
}
