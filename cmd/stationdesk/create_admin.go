package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/stationdesk/stationdesk/internal/audit"
	"github.com/stationdesk/stationdesk/internal/auth"
	"github.com/stationdesk/stationdesk/internal/config"
	"github.com/stationdesk/stationdesk/internal/db"
	"github.com/stationdesk/stationdesk/internal/logger"
	"github.com/stationdesk/stationdesk/internal/models"
	"github.com/stationdesk/stationdesk/internal/rbac"
)

var (
	adminUsername string
	adminPassword string
	adminEmail    string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin user",
	Long: `Create a staff account with the admin role, without going through
the API. Useful for bootstrapping a fresh installation.`,
	Run: runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVarP(&adminUsername, "username", "u", "", "Username for the admin account")
	createAdminCmd.Flags().StringVarP(&adminPassword, "password", "P", "", "Password for the admin account")
	createAdminCmd.Flags().StringVarP(&adminEmail, "email", "e", "", "Email for the admin account")
	createAdminCmd.MarkFlagRequired("username")
	createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command, args []string) {
	if err := createAdmin(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Admin user %q created\n", adminUsername)
}

func createAdmin() error {
	appCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(appCfg.Log.Format, appCfg.Log.Level)

	database, err := db.New(appCfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := rbac.InitEnforcer(database, slog.Default()); err != nil {
		return fmt.Errorf("failed to initialize RBAC enforcer: %w", err)
	}

	email := adminEmail
	if email == "" {
		email = fmt.Sprintf("%s@stationdesk.local", adminUsername)
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:     adminUsername,
		Email:        email,
		PasswordHash: hash,
		Active:       true,
	}
	if err := database.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	if err := rbac.MakeAdmin(user.ID); err != nil {
		return fmt.Errorf("failed to grant admin role: %w", err)
	}

	// No HTTP request to intercept here, so the write goes through the
	// synchronous recorder path.
	recorder := audit.NewRecorder(audit.NewStore(database), audit.DefaultQueueSize, audit.DefaultWorkers)
	recorder.Record(context.Background(), user.ID, audit.ActionUserCreated, audit.TargetUser, user.ID.String(), "127.0.0.1")

	return nil
}
