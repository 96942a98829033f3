package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/qs3c/insider_go_server/config"
	"github.com/qs3c/insider_go_server/internal/database"
	"github.com/qs3c/insider_go_server/internal/pkg/edgar"
	"github.com/qs3c/insider_go_server/internal/repository"
	"github.com/qs3c/insider_go_server/internal/service"
)

var (
	ciks         = flag.String("ciks", "", "Comma separated issuer CIKs; empty runs the global feed")
	maxPerIssuer = flag.Int("max-per-issuer", 0, "Max filings per issuer (0 = config default)")
	hygiene      = flag.Bool("hygiene", false, "Run the trader title hygiene pass after collecting")
	dryRun       = flag.Bool("dry-run", false, "Fetch and extract one feed page, print instead of storing")
)

func main() {
	flag.Parse()

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	edgarClient, err := edgar.NewClient(&cfg.Edgar)
	if err != nil {
		log.Fatalf("Failed to init edgar client: %v", err)
	}

	// dry-run 不碰数据库
	if *dryRun {
		runDryRun(edgarClient, cfg.Edgar.PageSize)
		return
	}

	// 连接数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	tradeRepo := repository.NewTradeRepository(db)
	runRepo := repository.NewRunRepository(db)
	userRepo := repository.NewUserRepository(db)
	accessService := service.NewAccessService(userRepo)
	tradeService := service.NewTradeService(tradeRepo, accessService, cfg)
	collector := service.NewCollectorService(edgarClient, tradeRepo, runRepo, nil, nil, cfg)

	// 登记并执行一次采集
	var runID int64
	if *ciks != "" {
		run, err := collector.StartIssuerRun(strings.Split(*ciks, ","), *maxPerIssuer)
		if err != nil {
			log.Fatalf("Failed to create run: %v", err)
		}
		runID = run.ID
	} else {
		run, err := collector.StartFeedRun()
		if err != nil {
			log.Fatalf("Failed to create run: %v", err)
		}
		runID = run.ID
	}

	result, err := collector.ExecuteRun(context.Background(), runID)
	if err != nil {
		log.Printf("Run %d finished with error: %v", runID, err)
		// run 行都没加载到时连部分结果都没有
		if result == nil {
			os.Exit(1)
		}
	}
	log.Printf("Run %d: saved=%d duplicate=%d errors=%d pages=%d",
		runID, result.Saved, result.Duplicate, result.Errors, result.Pages)

	if *hygiene {
		n, err := tradeService.NormalizeTraderTitles()
		if err != nil {
			log.Fatalf("Hygiene pass failed: %v", err)
		}
		log.Printf("Hygiene pass rewrote %d titles", n)
	}

	if err != nil {
		os.Exit(1)
	}
}

// runDryRun 抓取第一页 feed，打印提取结果，不入库
func runDryRun(client *edgar.Client, pageSize int) {
	data, err := client.Fetch(context.Background(), client.FeedURL(0, pageSize))
	if err != nil {
		log.Fatalf("Fetch failed: %v", err)
	}

	feed, err := edgar.ParseFeed(data)
	if err != nil {
		log.Fatalf("Parse failed: %v", err)
	}

	entries := feed.Form4Entries()
	log.Printf("Page 0: %d entries, %d Form 4", len(feed.Entries), len(entries))

	for _, entry := range entries {
		filing, err := edgar.ExtractFiling(entry)
		if err != nil {
			log.Printf("  SKIP %q: %v", entry.Title, err)
			continue
		}
		log.Printf("  %s  %-6s %s (filed %s)",
			filing.AccessionNumber, filing.Ticker, filing.CompanyName,
			filing.FiledDate.Format("2006-01-02"))
	}
}
