package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/agilebooks/agilebooks/internal/account"
	accountStore "github.com/agilebooks/agilebooks/internal/account/store"
	"github.com/agilebooks/agilebooks/internal/auth"
	authStore "github.com/agilebooks/agilebooks/internal/auth/store"
	"github.com/agilebooks/agilebooks/internal/config"
	"github.com/agilebooks/agilebooks/internal/customer"
	customerStore "github.com/agilebooks/agilebooks/internal/customer/store"
	booksHttp "github.com/agilebooks/agilebooks/internal/http"
	accountHandler "github.com/agilebooks/agilebooks/internal/http/account"
	authHandler "github.com/agilebooks/agilebooks/internal/http/auth"
	customerHandler "github.com/agilebooks/agilebooks/internal/http/customer"
	invoiceHandler "github.com/agilebooks/agilebooks/internal/http/invoice"
	ledgerHandler "github.com/agilebooks/agilebooks/internal/http/ledger"
	reportHandler "github.com/agilebooks/agilebooks/internal/http/report"
	"github.com/agilebooks/agilebooks/internal/database"
	"github.com/agilebooks/agilebooks/internal/invoice"
	invoiceStore "github.com/agilebooks/agilebooks/internal/invoice/store"
	"github.com/agilebooks/agilebooks/internal/ledger"
	ledgerStore "github.com/agilebooks/agilebooks/internal/ledger/store"
	"github.com/agilebooks/agilebooks/internal/report"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	var (
		accountService  = account.NewService(accountStore.New(db))
		ledgerService   = ledger.NewService(ledgerStore.New(db), accountService)
		customerService = customer.NewService(customerStore.New(db))
		invoiceService  = invoice.NewService(invoiceStore.New(db), customerService)
		authService     = auth.NewService(authStore.New(db), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		reportService   = report.NewService(accountService, ledgerService)
	)

	var (
		authH     = authHandler.NewHandler(authService)
		accountH  = accountHandler.NewHandler(accountService)
		ledgerH   = ledgerHandler.NewHandler(ledgerService)
		customerH = customerHandler.NewHandler(customerService)
		invoiceH  = invoiceHandler.NewHandler(invoiceService)
		reportH   = reportHandler.NewHandler(reportService)
	)

	router := booksHttp.New(authService, cfg.CORS.AllowedOrigins,
		authH, accountH, ledgerH, customerH, invoiceH, reportH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
