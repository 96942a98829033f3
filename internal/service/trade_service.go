package service

import (
	"log"
	"time"

	"github.com/qs3c/insider_go_server/config"
	"github.com/qs3c/insider_go_server/internal/model"
	"github.com/qs3c/insider_go_server/internal/model/dto"
	"github.com/qs3c/insider_go_server/internal/repository"
)

type TradeService struct {
	tradeRepo     *repository.TradeRepository
	accessService *AccessService
	cfg           *config.Config
}

func NewTradeService(tradeRepo *repository.TradeRepository, accessService *AccessService, cfg *config.Config) *TradeService {
	return &TradeService{
		tradeRepo:     tradeRepo,
		accessService: accessService,
		cfg:           cfg,
	}
}

// List 按权限返回申报列表。有实时权限看全量，
// 否则只看延迟窗口之前的数据。userID 为 0 表示未登录。
func (s *TradeService) List(userID int64, limit int) ([]*model.TradeRecord, *dto.AccessLevel, error) {
	var access *dto.AccessLevel
	if userID > 0 {
		var err error
		access, err = s.accessService.ResolveByID(userID)
		if err != nil {
			return nil, nil, err
		}
	} else {
		access = s.accessService.Resolve(nil, time.Now())
	}

	if access.CanAccessRealtime {
		records, err := s.tradeRepo.List(limit)
		return records, access, err
	}

	cutoff := time.Now().Add(-time.Duration(s.cfg.Subscription.FreeDelayMinutes) * time.Minute)
	records, err := s.tradeRepo.ListFiledBefore(cutoff, limit)
	return records, access, err
}

// NormalizeTraderTitles 数据清洗：把历史采集留下的纯数字头衔
// 改写为占位值。幂等，定时任务重复跑是安全的。
func (s *TradeService) NormalizeTraderTitles() (int64, error) {
	n, err := s.tradeRepo.NormalizeNumericTitles(model.PlaceholderTraderTitle)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("Normalized %d degenerate trader titles", n)
	}
	return n, nil
}
