package api

import (
	"net/http"

	"lifehub-backend/internal/auth/delivery"
	authUsecase "lifehub-backend/internal/auth/usecase"
	recordDelivery "lifehub-backend/internal/record/delivery"
	syncDelivery "lifehub-backend/internal/sync/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUc authUsecase.AuthUsecase, authHandler *delivery.AuthHandler, recordHandler *recordDelivery.RecordHandler, syncHandler *syncDelivery.SyncHandler) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", delivery.AuthMiddleware(authUc), authHandler.Me)
		}

		// Record routes (protected)
		records := api.Group("/records")
		records.Use(delivery.AuthMiddleware(authUc))
		{
			records.GET("/:collection", recordHandler.GetRecords)
			records.POST("/:collection", recordHandler.CreateRecord)
			records.GET("/:collection/:id", recordHandler.GetRecordByID)
			records.PUT("/:collection/:id", recordHandler.UpdateRecord)
			records.DELETE("/:collection/:id", recordHandler.DeleteRecord)
		}

		// Sync routes (protected) - Notion workspace reconciliation
		sync := api.Group("/sync")
		sync.Use(delivery.AuthMiddleware(authUc))
		{
			sync.POST("/connect", syncHandler.Connect)
			sync.POST("/oauth", syncHandler.OAuthExchange)
			sync.GET("/collections", syncHandler.GetCollections)
			sync.POST("/collections/:collection/link", syncHandler.LinkCollection)
			sync.GET("/status/:collection", syncHandler.GetStatuses)
			sync.POST("/recover", syncHandler.RecoverAll)
			sync.POST("/recover/:collection", syncHandler.StartRecovery)
			sync.POST("/resolutions/:collection", syncHandler.SubmitResolutions)
		}
	}
}
