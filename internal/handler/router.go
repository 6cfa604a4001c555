package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/tgo/embedhub/internal/config"
	"github.com/tgo/embedhub/internal/middleware"
	"github.com/tgo/embedhub/internal/model"
	"github.com/tgo/embedhub/internal/pkg/jwt"
	"github.com/tgo/embedhub/internal/pkg/redis"
	"github.com/tgo/embedhub/internal/repository"
	"github.com/tgo/embedhub/internal/service"
)

const Version = "1.0.0"

// SetupRouter wires every route. redisClient may be nil; events are then
// stored in the database only.
func SetupRouter(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *gin.Engine {
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.RequestID())

	// Initialize JWT manager
	jwtManager := jwt.NewManager(cfg.JWTSecret, cfg.AccessTokenExpireMin, cfg.RefreshTokenExpireDays)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	apiKeyRepo := repository.NewAPIKeyRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)
	embedRepo := repository.NewEmbedConfigRepository(db)
	embedChatRepo := repository.NewEmbedChatRepository(db)
	eventLogRepo := repository.NewEventLogRepository(db)

	var publisher service.EventPublisher
	if redisClient != nil {
		publisher = redisClient
		logrus.Infof("Publishing events to redis stream %s", cfg.EventStream)
	}

	// Initialize services
	authSvc := service.NewAuthService(userRepo, apiKeyRepo, jwtManager)
	eventLogSvc := service.NewEventLogService(eventLogRepo, publisher, cfg.EventStream)
	workspaceSvc := service.NewWorkspaceService(workspaceRepo)
	embedSvc := service.NewEmbedService(embedRepo, eventLogSvc)
	embedChatSvc := service.NewEmbedChatService(embedChatRepo)
	uploadSvc := service.NewUploadService(embedSvc, cfg.StoragePath, cfg.MaxUploadSize)

	// Initialize handlers
	authHandler := NewAuthHandler(authSvc)
	workspaceHandler := NewWorkspaceHandler(workspaceSvc)
	embedHandler := NewEmbedHandler(embedSvc)
	embedChatHandler := NewEmbedChatHandler(embedChatSvc)
	embedUploadHandler := NewEmbedUploadHandler(uploadSvc)
	embedAPIHandler := NewEmbedAPIHandler(embedSvc, embedChatSvc)
	systemHandler := NewSystemHandler(db, Version)

	authMw := middleware.NewAuthMiddleware(authSvc)
	adminOnly := []gin.HandlerFunc{authMw.JWTAuth(), middleware.RoleRequired(model.RoleAdmin)}
	validEmbed := middleware.ValidEmbedConfigID(embedSvc)
	chatHistory := middleware.ChatHistoryViewable(cfg.DisableViewChatHistory)

	r.GET("/health", systemHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static("/assets", cfg.StoragePath)

	// Session auth
	r.POST("/request-token", authHandler.RequestToken)
	r.POST("/request-token/refresh", authHandler.RefreshToken)
	r.GET("/me", authMw.JWTAuth(), authHandler.CurrentUser)

	// Management (admin session)
	admin := r.Group("", adminOnly...)
	{
		admin.GET("/workspaces", workspaceHandler.List)
		admin.POST("/workspaces/new", workspaceHandler.Create)
		admin.GET("/workspace/:workspaceId", workspaceHandler.Get)

		admin.GET("/embeds", embedHandler.List)
		admin.POST("/embeds/new", embedHandler.Create)
		admin.POST("/embed/update/:embedId", validEmbed, embedHandler.Update)
		admin.DELETE("/embed/:embedId", validEmbed, embedHandler.Delete)
		admin.POST("/embed/:embedId/upload-assistantIcon", validEmbed, embedUploadHandler.Upload("assistantIcon"))
		admin.POST("/embed/:embedId/upload-brandImageUrl", validEmbed, embedUploadHandler.Upload("brandImageUrl"))

		admin.POST("/embed/chats", chatHistory, embedChatHandler.List)
		admin.DELETE("/embed/chats/:chatId", chatHistory, embedChatHandler.Delete)
	}

	// Public API (API key)
	v1 := r.Group("/v1", authMw.APIKeyAuth())
	{
		v1.GET("/embed", embedAPIHandler.List)
		v1.GET("/embed/:uuid", embedAPIHandler.Get)
		v1.GET("/embed/:uuid/chats", embedAPIHandler.Chats)
		v1.GET("/embed/:uuid/chats/:sessionUuid", embedAPIHandler.SessionChats)
	}

	return r
}
