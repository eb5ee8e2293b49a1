package account

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/agilebooks/agilebooks/internal/account"
	"github.com/agilebooks/agilebooks/internal/auth"
	"github.com/agilebooks/agilebooks/internal/http/middleware"
	"github.com/agilebooks/agilebooks/internal/http/respond"
)

type Handler struct {
	svc *account.Service
}

func NewHandler(svc *account.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)

	r.With(middleware.RequireRoles(auth.RoleAdmin, auth.RoleAccountant)).Group(func(r chi.Router) {
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
	})

	r.With(middleware.RequireRoles(auth.RoleAdmin)).Delete("/{id}", h.deactivate)
}

func writeError(w http.ResponseWriter, err error) {
	var verr *account.ValidationError

	switch {
	case errors.Is(err, account.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "account not found")
	case errors.Is(err, account.ErrCodeExists):
		respond.Error(w, http.StatusConflict, "account code already exists")
	case errors.Is(err, account.ErrParentCycle):
		respond.Error(w, http.StatusBadRequest, "parent account would create a cycle")
	case errors.Is(err, account.ErrInUse):
		respond.Error(w, http.StatusConflict, "account is referenced by posted transactions")
	case errors.As(err, &verr):
		respond.Error(w, http.StatusBadRequest, verr.Error())
	default:
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}

type createAccountRequest struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Type        account.Type    `json:"type"`
	Subtype     account.Subtype `json:"subtype"`
	ParentID    *uuid.UUID      `json:"parent_id,omitempty"`
	Description string          `json:"description"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := h.svc.Create(r.Context(), account.CreateParams{
		Code:        req.Code,
		Name:        req.Name,
		Type:        req.Type,
		Subtype:     req.Subtype,
		ParentID:    req.ParentID,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(a))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := account.ListFilter{}

	if s := r.URL.Query().Get("type"); s != "" {
		t := account.Type(s)
		filter.Type = &t
	}

	if s := r.URL.Query().Get("active"); s != "" {
		active := s == "true"
		filter.Active = &active
	}

	filter.Search = r.URL.Query().Get("search")

	accounts, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(accounts))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	a, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(a))
}

type updateAccountRequest struct {
	Name        *string          `json:"name,omitempty"`
	Subtype     *account.Subtype `json:"subtype,omitempty"`
	ParentID    *uuid.UUID       `json:"parent_id,omitempty"`
	ClearParent bool             `json:"clear_parent,omitempty"`
	Description *string          `json:"description,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := h.svc.Update(r.Context(), id, account.UpdateParams{
		Name:        req.Name,
		Subtype:     req.Subtype,
		ParentID:    req.ParentID,
		ClearParent: req.ClearParent,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(a))
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	force := r.URL.Query().Get("force") == "true"

	if err := h.svc.Deactivate(r.Context(), id, force); err != nil {
		writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"message": "account deactivated"})
}
