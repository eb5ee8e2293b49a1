package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	accounthttp "github.com/agilebooks/agilebooks/internal/http/account"
	authhttp "github.com/agilebooks/agilebooks/internal/http/auth"
	customerhttp "github.com/agilebooks/agilebooks/internal/http/customer"
	invoicehttp "github.com/agilebooks/agilebooks/internal/http/invoice"
	ledgerhttp "github.com/agilebooks/agilebooks/internal/http/ledger"
	"github.com/agilebooks/agilebooks/internal/http/middleware"
	reporthttp "github.com/agilebooks/agilebooks/internal/http/report"
)

func New(
	verifier middleware.Verifier,
	allowedOrigins []string,
	authV1 *authhttp.Handler,
	accountsV1 *accounthttp.Handler,
	transactionsV1 *ledgerhttp.Handler,
	customersV1 *customerhttp.Handler,
	invoicesV1 *invoicehttp.Handler,
	reportsV1 *reporthttp.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.AllowContentType("application/json"))

		r.Route("/auth", func(r chi.Router) {
			authV1.PublicRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(verifier))
				authV1.Routes(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(verifier))

			r.Route("/accounts", accountsV1.Routes)
			r.Route("/transactions", transactionsV1.Routes)
			r.Route("/customers", customersV1.Routes)
			r.Route("/invoices", invoicesV1.Routes)
			r.Route("/reports", reportsV1.Routes)
		})
	})

	return router
}
