package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qs3c/insider_go_server/config"
	"github.com/qs3c/insider_go_server/internal/database"
	"github.com/qs3c/insider_go_server/internal/pkg/edgar"
	"github.com/qs3c/insider_go_server/internal/pkg/oss"
	"github.com/qs3c/insider_go_server/internal/pkg/pubsub"
	"github.com/qs3c/insider_go_server/internal/pkg/queue"
	"github.com/qs3c/insider_go_server/internal/repository"
	"github.com/qs3c/insider_go_server/internal/service"
	"github.com/qs3c/insider_go_server/internal/worker"
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

	// 初始化 Repository 和采集服务
	tradeRepo := repository.NewTradeRepository(db)
	runRepo := repository.NewRunRepository(db)
	collectorService := service.NewCollectorService(edgarClient, tradeRepo, runRepo, ossClient, publisher, cfg)

	processor := worker.NewProcessor(collectorService)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	log.Printf("Worker started, max workers: %d", cfg.Queue.MaxWorkers)

	// 启动 worker 循环。采集任务本身串行限速，这里的并发
	// 只是为了多个独立任务可以同时跑。
	for i := 0; i < cfg.Queue.MaxWorkers; i++ {
		go func(workerID int) {
			for {
				select {
				case <-ctx.Done():
					log.Printf("Worker %d shutting down", workerID)
					return
				default:
					job, err := jobQueue.Pop(ctx, 5*time.Second)
					if err != nil {
						if ctx.Err() != nil {
							return
						}
						log.Printf("Worker %d: failed to pop job: %v", workerID, err)
						continue
					}

					if job == nil {
						continue // 超时，继续等待
					}

					log.Printf("Worker %d: processing run %d", workerID, job.RunID)
					if err := processor.Process(ctx, job); err != nil {
						log.Printf("Worker %d: run %d failed: %v", workerID, job.RunID, err)
					}
				}
			}
		}(i)
	}

	// 等待 context 取消
	<-ctx.Done()
	log.Println("Worker shutdown complete")
}
