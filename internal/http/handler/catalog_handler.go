package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/projexhq/projex-server/internal/domain"
	"github.com/projexhq/projex-server/internal/http/middleware"
	"github.com/projexhq/projex-server/internal/http/response"
	"github.com/projexhq/projex-server/internal/repository"
	"github.com/projexhq/projex-server/internal/service"
)

type TagHandler struct {
	tags service.TagServiceInterface
}

func NewTagHandler(tags service.TagServiceInterface) *TagHandler {
	return &TagHandler{tags: tags}
}

type createTagRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	ColorHex string `json:"color_hex" validate:"omitempty,hexcolor,len=7"`
}

func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tag, err := h.tags.Create(r.Context(), req.Name, req.ColorHex)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, tag)
}

func (h *TagHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	res, err := h.tags.Search(r.Context(), q.Get("q"), repository.PageRequest{Page: page, PageSize: size})
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, res)
}

type ProjectHandler struct {
	projects service.ProjectServiceInterface
}

func NewProjectHandler(projects service.ProjectServiceInterface) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type createProjectRequest struct {
	WorkspaceID uuid.UUID  `json:"workspace_id" validate:"required"`
	Name        string     `json:"name" validate:"required,max=255"`
	Description *string    `json:"description"`
	Status      string     `json:"status" validate:"omitempty,oneof=planning active on_hold completed archived"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	var req createProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	project, err := h.projects.Create(r.Context(), user.ID, service.ProjectInput{
		WorkspaceID: req.WorkspaceID,
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.ProjectStatus(req.Status),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, project)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	project, err := h.projects.Get(r.Context(), user.ID, id)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, project)
}
