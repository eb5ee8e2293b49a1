package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agilebooks/agilebooks/internal/account"
	accountStore "github.com/agilebooks/agilebooks/internal/account/store"
	"github.com/agilebooks/agilebooks/internal/auth"
	authStore "github.com/agilebooks/agilebooks/internal/auth/store"
	"github.com/agilebooks/agilebooks/internal/config"
	"github.com/agilebooks/agilebooks/internal/database"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "adminctl",
		Short: "Administrative tasks for the agilebooks server",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(bootstrapCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func bootstrapCmd() *cobra.Command {
	var (
		username string
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the admin user and seed the default chart of accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := database.New(cfg.ConnectionString())
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			if err := database.Migrate(ctx, db); err != nil {
				return err
			}

			if err := createAdmin(ctx, cfg, db, username, email, password); err != nil {
				return err
			}

			return seedChart(ctx, cmd, db)
		},
	}

	cmd.Flags().StringVar(&username, "username", "admin", "admin username")
	cmd.Flags().StringVar(&email, "email", "", "admin email (required)")
	cmd.Flags().StringVar(&password, "password", "", "admin password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func createAdmin(ctx context.Context, cfg *config.Config, db *sql.DB, username, email, password string) error {
	svc := auth.NewService(authStore.New(db), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	_, err := svc.Register(ctx, auth.RegisterParams{
		Username: username,
		Email:    email,
		Password: password,
		Role:     auth.RoleAdmin,
	})
	if errors.Is(err, auth.ErrUserExists) {
		fmt.Println("admin user already exists, skipping")
		return nil
	}

	return err
}

func seedChart(ctx context.Context, cmd *cobra.Command, db *sql.DB) error {
	svc := account.NewService(accountStore.New(db))

	for _, params := range account.DefaultChart() {
		_, err := svc.Create(ctx, params)
		if errors.Is(err, account.ErrCodeExists) {
			continue
		}

		if err != nil {
			return fmt.Errorf("seeding account %s: %w", params.Code, err)
		}

		cmd.Printf("created account %s %s\n", params.Code, params.Name)
	}

	return nil
}
