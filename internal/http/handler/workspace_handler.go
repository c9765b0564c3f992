package handler

import (
	"net/http"

	"github.com/projexhq/projex-server/internal/http/middleware"
	"github.com/projexhq/projex-server/internal/http/response"
	"github.com/projexhq/projex-server/internal/observability"
	"github.com/projexhq/projex-server/internal/service"
)

type WorkspaceHandler struct {
	workspaces service.WorkspaceServiceInterface
	projects   service.ProjectServiceInterface
}

func NewWorkspaceHandler(workspaces service.WorkspaceServiceInterface, projects service.ProjectServiceInterface) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces, projects: projects}
}

type createWorkspaceRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

type updateWorkspaceRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	var req createWorkspaceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ws, err := h.workspaces.Create(r.Context(), user.ID, service.WorkspaceInput{Name: req.Name, Description: req.Description})
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	observability.Audit(r, "workspace.create", "workspace_id", ws.ID.String(), "user_id", user.ID.String())
	response.JSON(w, r, http.StatusCreated, ws)
}

func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	list, err := h.workspaces.ListForUser(r.Context(), user.ID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, list)
}

func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	ws, err := h.workspaces.Get(r.Context(), user.ID, id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, ws)
}

func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req updateWorkspaceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ws, err := h.workspaces.Update(r.Context(), user.ID, id, service.WorkspaceUpdate{Name: req.Name, Description: req.Description})
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	observability.Audit(r, "workspace.update", "workspace_id", ws.ID.String(), "user_id", user.ID.String())
	response.JSON(w, r, http.StatusOK, ws)
}

func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.workspaces.Delete(r.Context(), user.ID, id); err != nil {
		response.FromError(w, r, err)
		return
	}
	observability.Audit(r, "workspace.delete", "workspace_id", id.String(), "user_id", user.ID.String())
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "workspace deleted"})
}

func (h *WorkspaceHandler) Projects(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	list, err := h.projects.ListForWorkspace(r.Context(), user.ID, id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, list)
}
