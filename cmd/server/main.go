package main

import (
	"context"
	"fmt"
	"log"

	"github.com/qs3c/insider_go_server/config"
	"github.com/qs3c/insider_go_server/internal/api"
	"github.com/qs3c/insider_go_server/internal/api/handler"
	"github.com/qs3c/insider_go_server/internal/database"
	"github.com/qs3c/insider_go_server/internal/pkg/cron"
	"github.com/qs3c/insider_go_server/internal/pkg/edgar"
	"github.com/qs3c/insider_go_server/internal/pkg/email"
	"github.com/qs3c/insider_go_server/internal/pkg/oss"
	"github.com/qs3c/insider_go_server/internal/pkg/pubsub"
	"github.com/qs3c/insider_go_server/internal/pkg/queue"
	"github.com/qs3c/insider_go_server/internal/pkg/ws"
	"github.com/qs3c/insider_go_server/internal/repository"
	"github.com/qs3c/insider_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 EDGAR 客户端
	edgarClient, err := edgar.NewClient(&cfg.Edgar)
	if err != nil {
		log.Fatalf("Failed to init edgar client: %v", err)
	}

	// 初始化 OSS（可选）
	var ossClient *oss.Client
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Printf("Warning: Failed to init OSS client: %v", err)
		} else {
			log.Println("OSS client initialized")
		}
	}

	// 初始化 Queue 和 Pub/Sub
	jobQueue := queue.NewQueue(rdb, cfg.Queue.CollectionQueue)
	publisher := pubsub.NewPublisher(rdb)
	subscriber := pubsub.NewSubscriber(rdb)

	// 初始化 WebSocket Hub，桥接采集进度
	wsHub := ws.NewHub()
	go func() {
		err := subscriber.Subscribe(context.Background(), func(msg *pubsub.ProgressMessage) {
			wsHub.Broadcast(&ws.Message{Type: msg.Type, Data: msg})
		})
		if err != nil && err != context.Canceled {
			log.Printf("Progress subscriber stopped: %v", err)
		}
	}()
	log.Println("WebSocket hub started")

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	runRepo := repository.NewRunRepository(db)

	// 初始化 Service
	accessService := service.NewAccessService(userRepo)
	authService := service.NewAuthService(userRepo, accessService, cfg)
	trialService := service.NewTrialService(userRepo, cfg)
	tradeService := service.NewTradeService(tradeRepo, accessService, cfg)
	collectorService := service.NewCollectorService(edgarClient, tradeRepo, runRepo, ossClient, publisher, cfg)

	// 初始化邮件服务（可选）
	var emailService *email.Service
	if cfg.Email.SMTPHost != "" {
		emailService = email.NewService(&cfg.Email)
	}

	// 启动定时任务
	cronService := cron.NewService(trialService, tradeService, emailService)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	tradeHandler := handler.NewTradeHandler(tradeService)
	subscriptionHandler := handler.NewSubscriptionHandler(trialService, accessService)
	adminHandler := handler.NewAdminHandler(collectorService, jobQueue)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		tradeHandler,
		subscriptionHandler,
		adminHandler,
		websocketHandler,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
