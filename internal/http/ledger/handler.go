package ledger

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agilebooks/agilebooks/internal/auth"
	"github.com/agilebooks/agilebooks/internal/http/middleware"
	"github.com/agilebooks/agilebooks/internal/http/respond"
	"github.com/agilebooks/agilebooks/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)

	r.With(middleware.RequireRoles(auth.RoleAdmin, auth.RoleAccountant)).Group(func(r chi.Router) {
		r.Post("/", h.create)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Patch("/{id}/post", h.post)
	})
}

func writeError(w http.ResponseWriter, err error) {
	var (
		verrs      ledger.ValidationErrors
		unknownErr *ledger.UnknownAccountError
	)

	switch {
	case errors.Is(err, ledger.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "transaction not found")
	case errors.Is(err, ledger.ErrNotDraft):
		respond.Error(w, http.StatusBadRequest, "Only draft transactions can be posted")
	case errors.Is(err, ledger.ErrImmutable):
		respond.Error(w, http.StatusBadRequest, "Only draft transactions can be modified")
	case errors.As(err, &verrs):
		respond.Error(w, http.StatusBadRequest, verrs.Error())
	case errors.As(err, &unknownErr):
		respond.Error(w, http.StatusBadRequest, unknownErr.Error())
	default:
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}

type entryRequest struct {
	AccountID   uuid.UUID       `json:"account_id"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

func toEntryParams(entries []entryRequest) []ledger.EntryParams {
	params := make([]ledger.EntryParams, len(entries))
	for i, e := range entries {
		params[i] = ledger.EntryParams{
			AccountID:   e.AccountID,
			Debit:       e.Debit,
			Credit:      e.Credit,
			Description: e.Description,
		}
	}

	return params
}

type createTransactionRequest struct {
	Date        time.Time      `json:"date"`
	Description string         `json:"description"`
	Reference   string         `json:"reference,omitempty"`
	Entries     []entryRequest `json:"entries"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.svc.Create(r.Context(), identity.UserID, ledger.CreateParams{
		Date:        req.Date,
		Description: req.Description,
		Reference:   req.Reference,
		Entries:     toEntryParams(req.Entries),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := ledger.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := ledger.Status(s)
		filter.Status = &status
	}

	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "start_date must be formatted as YYYY-MM-DD")
			return
		}

		filter.StartDate = &t
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "end_date must be formatted as YYYY-MM-DD")
			return
		}

		filter.EndDate = &t
	}

	if s := r.URL.Query().Get("page"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			filter.Page = n
		}
	}

	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			filter.Limit = n
		}
	}

	txs, total, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toListResponse(txs, filter, total))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
}

type updateTransactionRequest struct {
	Date        *time.Time     `json:"date,omitempty"`
	Description *string        `json:"description,omitempty"`
	Reference   *string        `json:"reference,omitempty"`
	Entries     []entryRequest `json:"entries,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	params := ledger.UpdateParams{
		Date:        req.Date,
		Description: req.Description,
		Reference:   req.Reference,
	}
	if req.Entries != nil {
		params.Entries = toEntryParams(req.Entries)
	}

	tx, err := h.svc.Update(r.Context(), id, params)
	if err != nil {
		writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	tx, err := h.svc.Post(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
}
