package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/agilebooks/agilebooks/internal/auth"
	"github.com/agilebooks/agilebooks/internal/http/middleware"
	"github.com/agilebooks/agilebooks/internal/http/respond"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

// PublicRoutes mounts the endpoints reachable without a bearer token.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/login", h.login)
}

// Routes mounts the endpoints that require an authenticated caller.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/me", h.me)
	r.With(middleware.RequireRoles(auth.RoleAdmin)).Post("/register", h.register)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     auth.Role `json:"role"`
	IsActive bool      `json:"is_active"`
	Created  time.Time `json:"created_at"`
}

func toUserResponse(u *auth.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		IsActive: u.IsActive,
		Created:  u.CreatedAt,
	}
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	token, u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		respond.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	respond.JSON(w, http.StatusOK, loginResponse{Token: token, User: toUserResponse(u)})
}

type registerRequest struct {
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role,omitempty"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.svc.Register(r.Context(), auth.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			respond.Error(w, http.StatusConflict, "username or email already in use")
			return
		}

		respond.Error(w, http.StatusBadRequest, err.Error())

		return
	}

	respond.JSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	u, err := h.svc.Get(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "user not found")
			return
		}

		respond.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	respond.JSON(w, http.StatusOK, toUserResponse(u))
}
