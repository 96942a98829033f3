package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/insider_go_server/config"
	"github.com/qs3c/insider_go_server/internal/api/handler"
	"github.com/qs3c/insider_go_server/internal/api/middleware"
)

type Router struct {
	authHandler         *handler.AuthHandler
	tradeHandler        *handler.TradeHandler
	subscriptionHandler *handler.SubscriptionHandler
	adminHandler        *handler.AdminHandler
	websocketHandler    *handler.WebSocketHandler
	cfg                 *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	tradeHandler *handler.TradeHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	adminHandler *handler.AdminHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:         authHandler,
		tradeHandler:        tradeHandler,
		subscriptionHandler: subscriptionHandler,
		adminHandler:        adminHandler,
		websocketHandler:    websocketHandler,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
		}

		// 申报列表：可匿名访问，权限决定延迟
		trades := api.Group("/trades")
		trades.Use(middleware.OptionalAuth(r.cfg.JWT.Secret))
		{
			trades.GET("", r.tradeHandler.List)
		}

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			authenticated.GET("/user/profile", r.authHandler.GetProfile)

			subscription := authenticated.Group("/subscription")
			{
				subscription.GET("/status", r.subscriptionHandler.Status)
				subscription.POST("/trial", r.subscriptionHandler.ActivateTrial)
				subscription.POST("/upgrade", r.subscriptionHandler.Upgrade)
				subscription.POST("/cancel", r.subscriptionHandler.Cancel)
			}
		}

		// 管理接口
		admin := api.Group("/admin")
		admin.Use(middleware.Auth(r.cfg.JWT.Secret), middleware.Admin(r.cfg.Admin))
		{
			admin.POST("/collect", r.adminHandler.TriggerCollection)
			admin.POST("/collect/bulk", r.adminHandler.BulkImport)
			admin.GET("/collect/stats", r.adminHandler.Stats)
		}
	}

	return engine
}
