package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/stationdesk/stationdesk/internal/audit"
	"github.com/stationdesk/stationdesk/internal/auth"
	"github.com/stationdesk/stationdesk/internal/models"
	"github.com/stationdesk/stationdesk/internal/rbac"
	"gorm.io/gorm"
)

// CreateDefaultAdmin creates a default admin user if ADMIN_USERNAME and
// ADMIN_PASSWORD are set and no users exist in the database. The creation
// is audited through the explicit recorder path: there is no HTTP request
// to intercept here, so every parameter is known up front.
func CreateDefaultAdmin(db *gorm.DB, recorder *audit.Recorder) error {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	email := os.Getenv("ADMIN_EMAIL")

	if username == "" || password == "" {
		slog.Info("No ADMIN_USERNAME or ADMIN_PASSWORD set, skipping default admin creation")
		return nil
	}

	if email == "" {
		email = fmt.Sprintf("%s@stationdesk.local", username)
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}

	if count > 0 {
		slog.Info("Users already exist, skipping default admin creation")
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Active:       true,
	}

	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	if err := rbac.MakeAdmin(user.ID); err != nil {
		return fmt.Errorf("failed to grant admin role: %w", err)
	}

	if recorder != nil {
		recorder.Record(context.Background(), user.ID, audit.ActionUserCreated, audit.TargetUser, user.ID.String(), "127.0.0.1")
	}

	slog.Info("Default admin user created", "username", username, "email", email)
	return nil
}
