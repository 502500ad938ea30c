package api

import (
	"net/http"

	"mailminder-backend/internal/auth/delivery"
	authUsecase "mailminder-backend/internal/auth/usecase"
	ledgerDelivery "mailminder-backend/internal/ledger/delivery"
	monitorDelivery "mailminder-backend/internal/monitor/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUc authUsecase.AuthUsecase, authHandler *delivery.AuthHandler, monitorHandler *monitorDelivery.MonitorHandler, ledgerHandler *ledgerDelivery.LedgerHandler) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/google", authHandler.GoogleSignIn)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", delivery.AuthMiddleware(authUc), authHandler.Me)
		}

		// Mailbox account routes (protected)
		accounts := api.Group("/accounts")
		accounts.Use(delivery.AuthMiddleware(authUc))
		{
			accounts.GET("", authHandler.ListAccounts)
			accounts.POST("", authHandler.LinkAccount)
			accounts.DELETE("/:label", authHandler.UnlinkAccount)
		}

		// Monitor routes (protected)
		monitors := api.Group("/monitors")
		monitors.Use(delivery.AuthMiddleware(authUc))
		{
			monitors.GET("", monitorHandler.GetMonitors)
			monitors.POST("", monitorHandler.CreateMonitor)
			monitors.POST("/estimate", monitorHandler.Estimate)
			monitors.GET("/:id", monitorHandler.GetMonitor)
			monitors.PUT("/:id", monitorHandler.UpdateMonitor)
			monitors.DELETE("/:id", monitorHandler.DeleteMonitor)
			monitors.PATCH("/:id/active", monitorHandler.SetActive)
		}

		// Settings routes (protected)
		settings := api.Group("/settings")
		settings.Use(delivery.AuthMiddleware(authUc))
		{
			settings.GET("", monitorHandler.GetSettings)
			settings.PUT("", monitorHandler.UpdateSettings)
		}

		// Activity and counter routes (protected)
		activity := api.Group("/activity")
		activity.Use(delivery.AuthMiddleware(authUc))
		{
			activity.GET("", ledgerHandler.GetActivity)
		}

		counters := api.Group("/counters")
		counters.Use(delivery.AuthMiddleware(authUc))
		{
			counters.GET("", ledgerHandler.GetCounters)
			counters.POST("/reset", ledgerHandler.ResetCounters)
		}
	}
}
