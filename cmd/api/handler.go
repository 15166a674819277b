package api

import (
	authDelivery "lifehub-backend/internal/auth/delivery"
	authUsecasePkg "lifehub-backend/internal/auth/usecase"
	recordDelivery "lifehub-backend/internal/record/delivery"
	recordUsecasePkg "lifehub-backend/internal/record/usecase"
	syncDelivery "lifehub-backend/internal/sync/delivery"
	syncUsecasePkg "lifehub-backend/internal/sync/usecase"
	"lifehub-backend/pkg/config"
	"lifehub-backend/pkg/notion"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase   authUsecasePkg.AuthUsecase
	authHandler   *authDelivery.AuthHandler
	recordHandler *recordDelivery.RecordHandler
	syncHandler   *syncDelivery.SyncHandler
}

func NewHandler(authUc authUsecasePkg.AuthUsecase, recordUc recordUsecasePkg.RecordUsecase, syncUc syncUsecasePkg.SyncUsecase, cfg *config.Config) *Handler {
	oauthConfig := notion.OAuthConfig(cfg.NotionClientID, cfg.NotionClientSecret, cfg.NotionRedirectURI)

	// Deleting a record must drop its sync ledger entries as well
	recordUc.SetStatusCleaner(syncUc)

	return &Handler{
		authUsecase:   authUc,
		authHandler:   authDelivery.NewAuthHandler(authUc),
		recordHandler: recordDelivery.NewRecordHandler(recordUc),
		syncHandler:   syncDelivery.NewSyncHandler(syncUc, oauthConfig),
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

	SetupRoutes(r, h.authUsecase, h.authHandler, h.recordHandler, h.syncHandler)

	return r.Run(addr)
}
