package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/insider_go_server/config"
	"github.com/qs3c/insider_go_server/internal/model"
	"github.com/qs3c/insider_go_server/internal/model/dto"
	"github.com/qs3c/insider_go_server/internal/pkg/edgar"
	"github.com/qs3c/insider_go_server/internal/pkg/oss"
	"github.com/qs3c/insider_go_server/internal/pkg/pubsub"
	"github.com/qs3c/insider_go_server/internal/repository"
)

var ErrRunNotFound = errors.New("采集任务不存在")

// CollectionResult 单次采集的结果计数，取代任何全局状态
type CollectionResult struct {
	Saved     int `json:"saved"`
	Duplicate int `json:"duplicate"`
	Errors    int `json:"errors"`
	Pages     int `json:"pages"`
}

// CollectorService 申报采集流水线：翻页抓取 → 提取 → 入库去重。
// 单次调用内严格串行，靠 accession_number 唯一索引保证并发调用安全。
type CollectorService struct {
	client    *edgar.Client
	tradeRepo *repository.TradeRepository
	runRepo   *repository.RunRepository
	ossClient *oss.Client       // 可选，原始页归档
	publisher *pubsub.Publisher // 可选，进度推送
	cfg       *config.Config
}

func NewCollectorService(
	client *edgar.Client,
	tradeRepo *repository.TradeRepository,
	runRepo *repository.RunRepository,
	ossClient *oss.Client,
	publisher *pubsub.Publisher,
	cfg *config.Config,
) *CollectorService {
	return &CollectorService{
		client:    client,
		tradeRepo: tradeRepo,
		runRepo:   runRepo,
		ossClient: ossClient,
		publisher: publisher,
		cfg:       cfg,
	}
}

// StartFeedRun 登记一次全量 feed 采集任务
func (s *CollectorService) StartFeedRun() (*model.CollectionRun, error) {
	run := &model.CollectionRun{
		Mode:   "feed",
		Status: "queued",
	}
	if err := s.runRepo.Create(run); err != nil {
		return nil, err
	}
	return run, nil
}

// StartIssuerRun 登记一次按公司列表的采集任务
func (s *CollectorService) StartIssuerRun(ciks []string, maxPerIssuer int) (*model.CollectionRun, error) {
	run := &model.CollectionRun{
		Mode:         "issuers",
		Status:       "queued",
		IssuerCIKs:   strings.Join(ciks, ","),
		MaxPerIssuer: maxPerIssuer,
	}
	if err := s.runRepo.Create(run); err != nil {
		return nil, err
	}
	return run, nil
}

// ExecuteRun 执行一次已登记的采集。失败时已入库的记录保留，不回滚。
func (s *CollectorService) ExecuteRun(ctx context.Context, runID int64) (*CollectionResult, error) {
	run, err := s.runRepo.GetByID(runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	now := time.Now()
	run.Status = "running"
	run.StartedAt = &now
	s.runRepo.Update(run)

	var result *CollectionResult
	var runErr error

	switch run.Mode {
	case "issuers":
		var ciks []string
		if run.IssuerCIKs != "" {
			ciks = strings.Split(run.IssuerCIKs, ",")
		}
		maxPerIssuer := run.MaxPerIssuer
		if maxPerIssuer <= 0 {
			maxPerIssuer = s.cfg.Edgar.MaxPerIssuer
		}
		result, runErr = s.collectIssuers(ctx, run.ID, ciks, maxPerIssuer)
	default:
		result, runErr = s.collectFeed(ctx, run.ID)
	}

	completedAt := time.Now()
	run.CompletedAt = &completedAt
	run.Saved = result.Saved
	run.Duplicate = result.Duplicate
	run.Errors = result.Errors
	run.Pages = result.Pages
	if runErr != nil {
		run.Status = "failed"
		run.ErrorMessage = runErr.Error()
		s.publishProgress(ctx, run.ID, pubsub.StepDone, "failed", result, runErr.Error())
	} else {
		run.Status = "completed"
		s.publishProgress(ctx, run.ID, pubsub.StepDone, "completed", result, "")
	}
	s.runRepo.Update(run)

	log.Printf("Run %d finished: saved=%d duplicate=%d errors=%d pages=%d",
		run.ID, result.Saved, result.Duplicate, result.Errors, result.Pages)

	return result, runErr
}

// collectFeed 翻页走全量 feed。三个停止条件：达到目标条数、
// 某页没有 Form 4、翻页数触到安全上限（上游异常时保证有限时间结束）。
func (s *CollectorService) collectFeed(ctx context.Context, runID int64) (*CollectionResult, error) {
	result := &CollectionResult{}
	pageSize := s.cfg.Edgar.PageSize
	processed := 0

	for page := 0; page < s.cfg.Edgar.MaxPages; page++ {
		s.publishProgress(ctx, runID, pubsub.StepFetching, "running", result, "")

		data, err := s.client.Fetch(ctx, s.client.FeedURL(page*pageSize, pageSize))
		if err != nil {
			// 网络失败不在本次循环内重试，留给下一次调度
			return result, fmt.Errorf("fetch page %d: %w", page, err)
		}
		result.Pages++
		s.archivePage(runID, page, data)

		feed, err := edgar.ParseFeed(data)
		if err != nil {
			return result, fmt.Errorf("parse page %d: %w", page, err)
		}

		entries := feed.Form4Entries()
		if len(entries) == 0 {
			break
		}

		s.publishProgress(ctx, runID, pubsub.StepExtracting, "running", result, "")
		s.publishProgress(ctx, runID, pubsub.StepSaving, "running", result, "")
		for _, entry := range entries {
			s.ingestEntry(entry, result)
			processed++
			if processed >= s.cfg.Edgar.TargetCount {
				return result, nil
			}
		}
	}

	return result, nil
}

// collectIssuers 按公司逐家抓取申报索引，每家最多取 maxPerIssuer 条
func (s *CollectorService) collectIssuers(ctx context.Context, runID int64, ciks []string, maxPerIssuer int) (*CollectionResult, error) {
	result := &CollectionResult{}

	for _, cik := range ciks {
		cik = strings.TrimSpace(cik)
		if cik == "" {
			continue
		}

		s.publishProgress(ctx, runID, pubsub.StepFetching, "running", result, "")

		data, err := s.client.Fetch(ctx, s.client.IssuerFeedURL(cik, maxPerIssuer))
		if err != nil {
			log.Printf("Run %d: fetch issuer %s failed: %v", runID, cik, err)
			result.Errors++
			continue
		}
		result.Pages++
		s.archivePage(runID, result.Pages, data)

		feed, err := edgar.ParseFeed(data)
		if err != nil {
			log.Printf("Run %d: parse issuer %s failed: %v", runID, cik, err)
			result.Errors++
			continue
		}

		entries := feed.Form4Entries()
		if len(entries) > maxPerIssuer {
			entries = entries[:maxPerIssuer]
		}

		s.publishProgress(ctx, runID, pubsub.StepSaving, "running", result, "")
		for _, entry := range entries {
			s.ingestEntry(entry, result)
		}
	}

	return result, nil
}

// ingestEntry 提取并入库一条 entry。任何失败只影响这一条：
// 唯一索引冲突计 duplicate，其余计 error，循环总是继续。
func (s *CollectorService) ingestEntry(entry edgar.Entry, result *CollectionResult) {
	filing, err := edgar.ExtractFiling(entry)
	if err != nil {
		result.Errors++
		return
	}
	if filing.Synthetic {
		log.Printf("Synthetic accession %s for entry %q", filing.AccessionNumber, entry.Title)
	}

	record := &model.TradeRecord{
		Ticker:          filing.Ticker,
		CompanyName:     filing.CompanyName,
		TraderName:      "Unknown Insider", // 等完整文档解析器上线前的占位值
		TraderTitle:     model.PlaceholderTraderTitle,
		FiledDate:       filing.FiledDate,
		TradeType:       model.TradeTypeOther,
		AccessionNumber: filing.AccessionNumber,
		SECFilingURL:    filing.FilingURL,
	}

	switch err := s.tradeRepo.Create(record); {
	case err == nil:
		result.Saved++
	case errors.Is(err, repository.ErrDuplicateRecord):
		result.Duplicate++
	default:
		log.Printf("Failed to save %s: %v", filing.AccessionNumber, err)
		result.Errors++
	}
}

// Stats 汇总历史采集统计
func (s *CollectorService) Stats() (*dto.CollectionStats, error) {
	totals, err := s.runRepo.Totals()
	if err != nil {
		return nil, err
	}

	runs, err := s.runRepo.ListRecent(10)
	if err != nil {
		return nil, err
	}

	stats := &dto.CollectionStats{
		TotalSaved:     totals.Saved,
		TotalDuplicate: totals.Duplicate,
		TotalErrors:    totals.Errors,
	}
	for _, run := range runs {
		view := &dto.CollectionRun{
			ID:        run.ID,
			Mode:      run.Mode,
			Status:    run.Status,
			Saved:     run.Saved,
			Duplicate: run.Duplicate,
			Errors:    run.Errors,
			Pages:     run.Pages,
			CreatedAt: run.CreatedAt.Format(time.RFC3339),
		}
		if run.CompletedAt != nil {
			view.CompletedAt = run.CompletedAt.Format(time.RFC3339)
		}
		stats.RecentRuns = append(stats.RecentRuns, view)
	}

	return stats, nil
}

func (s *CollectorService) archivePage(runID int64, page int, data []byte) {
	if s.ossClient == nil {
		return
	}
	if _, err := s.ossClient.ArchiveFeedPage(runID, page, data); err != nil {
		log.Printf("Run %d: failed to archive page %d: %v", runID, page, err)
	}
}

func (s *CollectorService) publishProgress(ctx context.Context, runID int64, step, status string, result *CollectionResult, errMsg string) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishProgress(ctx, &pubsub.ProgressMessage{
		RunID:     runID,
		Step:      step,
		Status:    status,
		Saved:     result.Saved,
		Duplicate: result.Duplicate,
		Errors:    result.Errors,
		Error:     errMsg,
	})
}
