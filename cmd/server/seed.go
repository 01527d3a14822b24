package main

import (
	"fmt"
	"log/slog"

	"github.com/clientdesk/backend/internal/config"
	"github.com/clientdesk/backend/internal/database"
	"github.com/clientdesk/backend/internal/logging"
	"github.com/clientdesk/backend/internal/repository"
	"github.com/clientdesk/backend/internal/security"
	"github.com/spf13/cobra"
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the admin account if it does not exist",
	Long: `Creates the administrator from ADMIN_EMAIL, ADMIN_NAME and ADMIN_PASSWORD.
Running it again is a no-op once a user with that email exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logging.Setup(cfg.LogLevel)

		db, err := database.Connect(cfg)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		created, err := database.EnsureAdmin(cmd.Context(),
			repository.NewGormUserRepository(db),
			security.NewBcryptHasher(cfg.BcryptCost),
			database.AdminSeed{Email: cfg.AdminEmail, Name: cfg.AdminName, Password: cfg.AdminPassword},
		)
		if err != nil {
			return err
		}

		if created {
			slog.Info("admin user created", "email", cfg.AdminEmail)
		} else {
			slog.Info("admin user already exists", "email", cfg.AdminEmail)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedAdminCmd)
}
