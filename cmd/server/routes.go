package main

import (
	"github.com/gamepool/backend/internal/config"
	"github.com/gamepool/backend/internal/handlers"
	"github.com/gamepool/backend/internal/middleware"
	"github.com/gamepool/backend/internal/models"
	"github.com/gamepool/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for credential endpoints
	authLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "gamepool"})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/register", svc.authHandler.Register)
			auth.POST("/login", svc.authHandler.Login)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentMember)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Members and balances
			memberHandler := handlers.NewMemberHandler(models.GetDB())
			protected.GET("/members", memberHandler.List)
			protected.GET("/members/balances", memberHandler.Balances)

			// Deposits (own balance visible to everyone)
			depositHandler := handlers.NewDepositHandler(models.GetDB())
			protected.GET("/balance/:id", depositHandler.Balance)
			protected.GET("/deposits/member/:id", depositHandler.ListByMember)

			// Proposals and votes
			proposalHandler := handlers.NewProposalHandler(models.GetDB())
			protected.POST("/proposals", proposalHandler.Create)
			protected.GET("/proposals", proposalHandler.List)
			protected.GET("/proposals/my-vote", proposalHandler.MyVote)
			protected.DELETE("/proposals/my-vote", proposalHandler.RemoveVote)
			protected.GET("/proposals/:id", proposalHandler.Get)
			protected.POST("/proposals/:id/vote", proposalHandler.Vote)

			// Purchases
			purchaseHandler := handlers.NewPurchaseHandler(models.GetDB(), cfg.Group.Size)
			protected.GET("/purchases", purchaseHandler.List)
			protected.GET("/purchases/my-shares/pending", purchaseHandler.MyPendingShares)
			protected.GET("/purchases/:id", purchaseHandler.Get)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			// Member administration
			memberHandler := handlers.NewMemberHandler(models.GetDB())
			admin.PUT("/members/:id/active", memberHandler.SetActive)

			// Deposits (recording and group-wide listing)
			depositHandler := handlers.NewDepositHandler(models.GetDB())
			admin.POST("/deposits", depositHandler.Create)
			admin.GET("/deposits", depositHandler.List)

			// Proposal administration
			proposalHandler := handlers.NewProposalHandler(models.GetDB())
			admin.POST("/proposals/:id/select-winner", proposalHandler.SelectWinner)
			admin.DELETE("/proposals/:id", proposalHandler.Delete)

			// Settlement
			purchaseHandler := handlers.NewPurchaseHandler(models.GetDB(), cfg.Group.Size)
			admin.POST("/purchases/from-proposal/:id", purchaseHandler.SettleFromProposal)
			admin.POST("/purchases", purchaseHandler.SettleManual)

			// Audit Logs
			auditHandler := handlers.NewAuditHandler(models.GetDB())
			admin.GET("/audit-logs", auditHandler.List)
		}
	}
}
