package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/causafund/backend/internal/handlers"
	"github.com/causafund/backend/internal/middleware"
	"github.com/causafund/backend/internal/models"
	"github.com/causafund/backend/internal/queue"
	"github.com/causafund/backend/internal/services/campaign"
	"github.com/causafund/backend/internal/services/donation"
	"github.com/causafund/backend/internal/services/email"
	"github.com/causafund/backend/internal/services/exchange"
	"github.com/causafund/backend/internal/services/kyc"
	"github.com/causafund/backend/internal/services/withdrawal"
)

// RegisterRoutes configures all API routes
func RegisterRoutes(router *gin.Engine, db *gorm.DB, jobQueue *queue.Client, rates *exchange.Service) {
	// 60 requests/second per IP with small bursts, 10 auth attempts/minute
	rateLimiter := middleware.NewRateLimiter(60, 10, 20, 5)
	router.Use(rateLimiter.IPRateLimiterMiddleware())

	campaignService := campaign.NewService(db)
	donationService := donation.NewService(db, rates)
	kycService := kyc.NewService(db)
	withdrawalService := withdrawal.NewService(db)
	mailer := email.NewService()

	authHandler := handlers.NewAuthHandler(db)
	profileHandler := handlers.NewProfileHandler(db)
	kycHandler := handlers.NewKYCHandler(kycService, mailer, "uploads/kyc")
	campaignHandler := handlers.NewCampaignHandler(campaignService, donationService)
	donationHandler := handlers.NewDonationHandler(donationService)
	adminHandler := handlers.NewAdminHandler(db, donationService, mailer)
	withdrawalHandler := handlers.NewWithdrawalHandler(withdrawalService)
	exchangeHandler := handlers.NewExchangeHandler(rates)
	webhookHandler := handlers.NewWebhookHandler(jobQueue)

	// Auth
	authGroup := router.Group("/api/auth")
	authGroup.Use(rateLimiter.AuthRateLimiterMiddleware())
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.RefreshToken)
		authGroup.POST("/google", authHandler.GoogleAuth)
	}

	// Public
	public := router.Group("/api")
	{
		public.GET("/campaigns", campaignHandler.List)
		public.GET("/campaigns/:slug", campaignHandler.GetBySlug)
		public.GET("/campaigns/:slug/donations", campaignHandler.ListDonations)
		public.GET("/campaigns/:slug/updates", campaignHandler.ListUpdates)
		public.GET("/exchange-rate", exchangeHandler.CurrentRate)
	}

	// Donations: checkout works for guests, so auth is optional and only
	// used to attach the donor when a token is present
	router.POST("/api/donations", optionalAuth(db), donationHandler.Create)

	// Authenticated user routes
	userGroup := router.Group("/api")
	userGroup.Use(middleware.AuthMiddleware(db))
	{
		userGroup.GET("/profile", profileHandler.GetProfile)
		userGroup.PATCH("/profile", profileHandler.UpdateProfile)
		userGroup.POST("/profile/become-creator", profileHandler.BecomeCreator)

		userGroup.POST("/kyc/submit", kycHandler.Submit)
		userGroup.POST("/kyc/documents", kycHandler.UploadDocument)
		userGroup.GET("/kyc/status", kycHandler.Status)

		userGroup.GET("/donations/mine", donationHandler.Mine)

		userGroup.GET("/withdrawal-accounts", withdrawalHandler.List)
		userGroup.POST("/withdrawal-accounts", withdrawalHandler.Create)
		userGroup.PUT("/withdrawal-accounts/:id/primary", withdrawalHandler.SetPrimary)
		userGroup.DELETE("/withdrawal-accounts/:id", withdrawalHandler.Delete)
	}

	// Creator routes
	creatorGroup := router.Group("/api/creator")
	creatorGroup.Use(middleware.AuthMiddleware(db), middleware.RequireRoles(models.RoleCreator, models.RoleAdmin))
	{
		creatorGroup.POST("/campaigns", campaignHandler.Create)
		creatorGroup.GET("/campaigns", campaignHandler.Mine)
		creatorGroup.POST("/campaigns/:id/submit", campaignHandler.SubmitForReview)
		creatorGroup.POST("/campaigns/:id/updates", campaignHandler.CreateUpdate)
	}

	// Admin routes
	adminGroup := router.Group("/api/admin")
	adminGroup.Use(middleware.AuthMiddleware(db), middleware.RequireAdmin())
	{
		adminGroup.GET("/dashboard", adminHandler.Dashboard)

		adminGroup.GET("/campaigns", campaignHandler.AdminList)
		adminGroup.POST("/campaigns/:id/approve", campaignHandler.Approve)
		adminGroup.POST("/campaigns/:id/reject", campaignHandler.Reject)
		adminGroup.POST("/campaigns/:id/pause", campaignHandler.Pause)
		adminGroup.POST("/campaigns/:id/resume", campaignHandler.Resume)
		adminGroup.POST("/campaigns/:id/close", campaignHandler.Close)

		adminGroup.GET("/kyc/pending", kycHandler.ListPending)
		adminGroup.POST("/kyc/:id/approve", kycHandler.Approve)
		adminGroup.POST("/kyc/:id/reject", kycHandler.Reject)
		adminGroup.GET("/kyc/:id/history", kycHandler.History)

		adminGroup.GET("/manual-payments", adminHandler.ListManualPayments)
		adminGroup.POST("/manual-payments/:id/approve", adminHandler.ApproveManualPayment)
		adminGroup.POST("/manual-payments/:id/reject", adminHandler.RejectManualPayment)

		adminGroup.POST("/2fa/setup", adminHandler.SetupTOTP)
		adminGroup.POST("/2fa/enable", adminHandler.EnableTOTP)
	}

	// Provider webhooks are server-to-server and bypass user auth
	router.POST("/webhooks/payments/:provider", webhookHandler.PaymentWebhook)

	// Page navigation gate used by the frontend to resolve redirects
	accessHandler := handlers.NewAccessHandler(db)
	router.GET("/api/access/*path", accessHandler.Check)
}

// optionalAuth loads the user when a valid token is present and stays
// silent otherwise
func optionalAuth(db *gorm.DB) gin.HandlerFunc {
	authRequired := middleware.AuthMiddleware(db)
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		authRequired(c)
	}
}
