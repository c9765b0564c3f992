package handler

import (
	"net/http"
	"strings"

	"github.com/projexhq/projex-server/internal/http/middleware"
	"github.com/projexhq/projex-server/internal/http/response"
	"github.com/projexhq/projex-server/internal/observability"
	"github.com/projexhq/projex-server/internal/service"
)

type AuthHandler struct {
	auth service.AuthServiceInterface
}

func NewAuthHandler(auth service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	FullName string `json:"full_name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		observability.AuditFailure(r, "auth.register", err)
		response.FromError(w, r, err)
		return
	}
	observability.Audit(r, "auth.register", "user_id", user.ID.String())
	response.JSON(w, r, http.StatusCreated, user.Public())
}

// Login accepts a JSON body or an OAuth2 password-grant style form where the
// email is sent as username.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			response.Error(w, r, http.StatusUnprocessableEntity, "VALIDATION", "invalid form body", nil)
			return
		}
		req.Email = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
		if !validateRequest(w, r, &req) {
			return
		}
	} else if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		observability.AuditFailure(r, "auth.login", err)
		response.FromError(w, r, err)
		return
	}
	observability.Audit(r, "auth.login", "user_id", res.User.ID.String())
	response.JSON(w, r, http.StatusOK, res)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	pair, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		observability.AuditFailure(r, "auth.refresh", err)
		response.FromError(w, r, err)
		return
	}
	observability.Audit(r, "auth.refresh")
	response.JSON(w, r, http.StatusOK, pair)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		response.FromError(w, r, err)
		return
	}
	observability.Audit(r, "auth.logout")
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, user.Public())
}
