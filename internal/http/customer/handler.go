package customer

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agilebooks/agilebooks/internal/auth"
	"github.com/agilebooks/agilebooks/internal/customer"
	"github.com/agilebooks/agilebooks/internal/http/middleware"
	"github.com/agilebooks/agilebooks/internal/http/respond"
)

type Handler struct {
	svc *customer.Service
}

func NewHandler(svc *customer.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)

	r.With(middleware.RequireRoles(auth.RoleAdmin, auth.RoleAccountant)).Group(func(r chi.Router) {
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.deactivate)
	})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, customer.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "customer not found")
	default:
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}

type addressRequest struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
	Country string `json:"country,omitempty"`
}

func (a addressRequest) toAddress() customer.Address {
	return customer.Address{
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		ZipCode: a.ZipCode,
		Country: a.Country,
	}
}

type createCustomerRequest struct {
	Name         string                `json:"name"`
	Email        string                `json:"email,omitempty"`
	Phone        string                `json:"phone,omitempty"`
	Address      addressRequest        `json:"address"`
	CreditLimit  decimal.Decimal       `json:"credit_limit"`
	PaymentTerms customer.PaymentTerms `json:"payment_terms,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.svc.Create(r.Context(), customer.CreateParams{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address.toAddress(),
		CreditLimit:  req.CreditLimit,
		PaymentTerms: req.PaymentTerms,
	})
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			writeError(w, err)
			return
		}

		respond.Error(w, http.StatusBadRequest, err.Error())

		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := customer.ListFilter{
		Search: r.URL.Query().Get("search"),
	}

	if s := r.URL.Query().Get("active"); s != "" {
		active := s == "true"
		filter.Active = &active
	}

	customers, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(customers))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}

type updateCustomerRequest struct {
	Name         *string                `json:"name,omitempty"`
	Email        *string                `json:"email,omitempty"`
	Phone        *string                `json:"phone,omitempty"`
	Address      *addressRequest        `json:"address,omitempty"`
	CreditLimit  *decimal.Decimal       `json:"credit_limit,omitempty"`
	PaymentTerms *customer.PaymentTerms `json:"payment_terms,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	params := customer.UpdateParams{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		CreditLimit:  req.CreditLimit,
		PaymentTerms: req.PaymentTerms,
	}
	if req.Address != nil {
		addr := req.Address.toAddress()
		params.Address = &addr
	}

	c, err := h.svc.Update(r.Context(), id, params)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			writeError(w, err)
			return
		}

		respond.Error(w, http.StatusBadRequest, err.Error())

		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.Deactivate(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
