package main

import (
	"github.com/gamepool/backend/internal/config"
	"github.com/gamepool/backend/internal/handlers"
	"github.com/gamepool/backend/internal/models"
	"github.com/gamepool/backend/internal/services"
	"github.com/gamepool/backend/internal/utils"
	"github.com/gamepool/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	auditService *services.AuditService
	authHandler  *handlers.AuthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize audit logger
	services.InitAuditLogger(models.GetDB())

	// Start audit log cleanup scheduler
	auditService := services.NewAuditService(models.GetDB())
	auditService.StartCleanupScheduler(cfg.Log.AuditRetentionDays)

	// Create default admin account
	authHandler := handlers.NewAuthHandler(models.GetDB(), cfg)
	if err := authHandler.CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin account")
	}

	return &appServices{
		auditService: auditService,
		authHandler:  authHandler,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.auditService.StopCleanupScheduler()
	logger.Info().Msg("All schedulers stopped")
}
