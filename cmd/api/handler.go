package api

import (
	"mailminder-backend/internal/auth/delivery"
	authUsecase "mailminder-backend/internal/auth/usecase"
	ledgerDelivery "mailminder-backend/internal/ledger/delivery"
	ledgerRepo "mailminder-backend/internal/ledger/repository"
	monitorDelivery "mailminder-backend/internal/monitor/delivery"
	monitorUsecase "mailminder-backend/internal/monitor/usecase"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase    authUsecase.AuthUsecase
	authHandler    *delivery.AuthHandler
	monitorHandler *monitorDelivery.MonitorHandler
	ledgerHandler  *ledgerDelivery.LedgerHandler
}

func NewHandler(authUc authUsecase.AuthUsecase, monitorUc monitorUsecase.MonitorUsecase, counterRepo ledgerRepo.CheckCounterRepository, activityRepo ledgerRepo.ActivityLogRepository) *Handler {
	return &Handler{
		authUsecase:    authUc,
		authHandler:    delivery.NewAuthHandler(authUc),
		monitorHandler: monitorDelivery.NewMonitorHandler(monitorUc),
		ledgerHandler:  ledgerDelivery.NewLedgerHandler(counterRepo, activityRepo),
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.authHandler, h.monitorHandler, h.ledgerHandler)

	return r.Run(addr)
}
