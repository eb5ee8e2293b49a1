package invoice

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agilebooks/agilebooks/internal/auth"
	"github.com/agilebooks/agilebooks/internal/customer"
	"github.com/agilebooks/agilebooks/internal/http/middleware"
	"github.com/agilebooks/agilebooks/internal/http/respond"
	"github.com/agilebooks/agilebooks/internal/invoice"
)

type Handler struct {
	svc *invoice.Service
}

func NewHandler(svc *invoice.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)

	r.With(middleware.RequireRoles(auth.RoleAdmin, auth.RoleAccountant)).Group(func(r chi.Router) {
		r.Post("/", h.create)
		r.Patch("/{id}/status", h.transition)
	})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, invoice.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "invoice not found")
	case errors.Is(err, customer.ErrNotFound):
		respond.Error(w, http.StatusBadRequest, "customer not found")
	case errors.Is(err, invoice.ErrCustomerNotActive),
		errors.Is(err, invoice.ErrBadTransition):
		respond.Error(w, http.StatusBadRequest, err.Error())
	default:
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}

type itemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type createInvoiceRequest struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Date       time.Time       `json:"date,omitempty"`
	DueDate    time.Time       `json:"due_date,omitempty"`
	Items      []itemRequest   `json:"items"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
	Notes      string          `json:"notes,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	items := make([]invoice.ItemParams, len(req.Items))
	for i, it := range req.Items {
		items[i] = invoice.ItemParams{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}

	inv, err := h.svc.Create(r.Context(), identity.UserID, invoice.CreateParams{
		CustomerID: req.CustomerID,
		Date:       req.Date,
		DueDate:    req.DueDate,
		Items:      items,
		TaxRate:    req.TaxRate,
		Notes:      req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, customer.ErrNotFound),
			errors.Is(err, invoice.ErrCustomerNotActive):
			writeError(w, err)
		default:
			respond.Error(w, http.StatusBadRequest, err.Error())
		}

		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(inv))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := invoice.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := invoice.Status(s)
		filter.Status = &status
	}

	if s := r.URL.Query().Get("customer_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			filter.CustomerID = &id
		}
	}

	invoices, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(invoices))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}

type transitionRequest struct {
	Status invoice.Status `json:"status"`
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	inv, err := h.svc.Transition(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}
