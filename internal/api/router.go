package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/stationdesk/stationdesk/internal/api/handlers"
	"github.com/stationdesk/stationdesk/internal/api/middleware"
	"github.com/stationdesk/stationdesk/internal/audit"
	"github.com/stationdesk/stationdesk/internal/auth"
	"github.com/stationdesk/stationdesk/internal/config"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, db *gorm.DB, auditor *audit.Auditor) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(loggingMiddleware())
	router.Use(corsMiddleware())

	authenticator := auth.NewBasicAuthenticator(db, cfg.Auth.JWTSecret)

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", handlers.HealthCheck)
		public.POST("/auth/login", handlers.Login(authenticator))
	}

	stationHandler := handlers.NewStationHandler(db)
	userHandler := handlers.NewUserHandler(db)
	profileHandler := handlers.NewProfileHandler(db)
	backupHandler := handlers.NewBackupHandler(db)
	reminderHandler := handlers.NewReminderHandler(db)
	roleHandler := handlers.NewRoleHandler(db)
	auditHandler := handlers.NewAuditHandler(audit.NewEngine(audit.NewStore(db)), cfg.Audit.StatsWindowDays)

	// Protected routes (require authentication). Every mutating route is
	// wrapped with audit interception, named by its (action, target) pair.
	protected := router.Group("/api/v1")
	protected.Use(authenticator.Middleware())
	{
		protected.GET("/auth/me", handlers.GetCurrentUser(authenticator))

		// Station endpoints
		protected.GET("/stations", stationHandler.ListStations)
		protected.GET("/stations/:id", stationHandler.GetStation)
		protected.POST("/stations",
			auditor.Intercept(audit.ActionStationCreated, audit.TargetStation),
			stationHandler.CreateStation)
		protected.PUT("/stations/:id",
			auditor.Intercept(audit.ActionStationUpdated, audit.TargetStation),
			stationHandler.UpdateStation)
		protected.DELETE("/stations/:id",
			auditor.Intercept(audit.ActionStationDeleted, audit.TargetStation),
			stationHandler.DeleteStation)
		protected.POST("/stations/:id/heartbeat",
			auditor.Intercept(audit.ActionStationUpdated, audit.TargetStation),
			stationHandler.Heartbeat)

		// Backup profile endpoints
		protected.GET("/stations/:id/profile", profileHandler.GetProfile)
		protected.POST("/profiles",
			auditor.Intercept(audit.ActionProfileCreated, audit.TargetProfile),
			profileHandler.CreateProfile)
		protected.PUT("/profiles/:id",
			auditor.Intercept(audit.ActionProfileUpdated, audit.TargetProfile),
			profileHandler.UpdateProfile)
		protected.DELETE("/profiles/:id",
			auditor.Intercept(audit.ActionProfileDeleted, audit.TargetProfile),
			profileHandler.DeleteProfile)

		// Backup run endpoints
		protected.GET("/backups", backupHandler.ListBackups)
		protected.GET("/backups/:id", backupHandler.GetBackup)
		protected.POST("/backups",
			auditor.Intercept(audit.ActionBackupCreated, audit.TargetBackup),
			backupHandler.CreateBackup)
		protected.PUT("/backups/:id/status",
			auditor.Intercept(audit.ActionBackupStatusChanged, audit.TargetBackup),
			backupHandler.UpdateBackupStatus)
		protected.DELETE("/backups/:id",
			auditor.Intercept(audit.ActionBackupDeleted, audit.TargetBackup),
			backupHandler.DeleteBackup)

		// Reminder endpoints
		protected.GET("/reminders", reminderHandler.ListReminders)
		protected.GET("/reminders/:id", reminderHandler.GetReminder)
		protected.POST("/reminders",
			auditor.Intercept(audit.ActionReminderCreated, audit.TargetReminder),
			reminderHandler.CreateReminder)
		protected.PUT("/reminders/:id",
			auditor.Intercept(audit.ActionReminderUpdated, audit.TargetReminder),
			reminderHandler.UpdateReminder)
		protected.DELETE("/reminders/:id",
			auditor.Intercept(audit.ActionReminderDeleted, audit.TargetReminder),
			reminderHandler.DeleteReminder)

		// Admin endpoints
		admin := protected.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			// Staff accounts
			admin.GET("/users", userHandler.ListUsers)
			admin.GET("/users/:id", userHandler.GetUser)
			admin.POST("/users",
				auditor.Intercept(audit.ActionUserCreated, audit.TargetUser),
				userHandler.CreateUser)
			admin.PUT("/users/:id",
				auditor.Intercept(audit.ActionUserUpdated, audit.TargetUser),
				userHandler.UpdateUser)
			admin.DELETE("/users/:id",
				auditor.Intercept(audit.ActionUserDeleted, audit.TargetUser),
				userHandler.DeleteUser)
			admin.POST("/users/:id/activate",
				auditor.Intercept(audit.ActionUserActivated, audit.TargetUser),
				userHandler.ActivateUser)
			admin.POST("/users/:id/deactivate",
				auditor.Intercept(audit.ActionUserDeactivated, audit.TargetUser),
				userHandler.DeactivateUser)

			// Roles
			admin.GET("/roles", roleHandler.ListRoles)
			admin.GET("/roles/:id", roleHandler.GetRole)
			admin.POST("/roles",
				auditor.Intercept(audit.ActionRoleCreated, audit.TargetRole),
				roleHandler.CreateRole)
			admin.PUT("/roles/:id",
				auditor.Intercept(audit.ActionRoleUpdated, audit.TargetRole),
				roleHandler.UpdateRole)
			admin.DELETE("/roles/:id",
				auditor.Intercept(audit.ActionRoleDeleted, audit.TargetRole),
				roleHandler.DeleteRole)
			admin.POST("/roles/:id/assignments",
				auditor.Intercept(audit.ActionRoleAssigned, audit.TargetRole),
				roleHandler.AssignRole)
			admin.DELETE("/roles/:id/assignments/:userId",
				auditor.Intercept(audit.ActionRoleRevoked, audit.TargetRole),
				roleHandler.UnassignRole)

			// Activity log (read only)
			admin.GET("/audit-events", auditHandler.ListEvents)
			admin.GET("/audit-events/stats", auditHandler.GetStatistics)
			admin.GET("/audit-events/actors/:userId", auditHandler.ListUserEvents)
			admin.GET("/audit-events/:id", auditHandler.GetEvent)
		}
	}

	// Swagger documentation
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	slog.Info("API router initialized", "mode", cfg.Server.Mode)
	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		slog.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"ip", c.ClientIP(),
		)
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
