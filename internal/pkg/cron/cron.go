package cron

import (
	"log"
	"time"

	"github.com/qs3c/insider_go_server/internal/pkg/email"
	"github.com/qs3c/insider_go_server/internal/service"
)

// Service 进程内定时任务：试用到期扫描 + 数据清洗
type Service struct {
	trialService *service.TrialService
	tradeService *service.TradeService
	emailService *email.Service
	stopChan     chan struct{}
}

func NewService(
	trialService *service.TrialService,
	tradeService *service.TradeService,
	emailService *email.Service,
) *Service {
	return &Service{
		trialService: trialService,
		tradeService: tradeService,
		emailService: emailService,
		stopChan:     make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runTrialScan()
	go s.runDataHygiene()
	log.Println("Cron service started (trial scan + data hygiene)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runTrialScan 每小时扫一次到期试用
func (s *Service) runTrialScan() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.notifyExpiredTrials()
		}
	}
}

// notifyExpiredTrials 给到期未提醒的用户发邮件并打标记
func (s *Service) notifyExpiredTrials() {
	users, err := s.trialService.CheckExpiredTrials()
	if err != nil {
		log.Printf("Trial scan failed: %v", err)
		return
	}
	if len(users) == 0 {
		return
	}

	notified := 0
	for _, user := range users {
		if s.emailService != nil && user.Email != nil {
			if err := s.emailService.SendTrialExpired(*user.Email, user.Username); err != nil {
				log.Printf("Failed to send trial expiry mail to user %d: %v", user.ID, err)
				continue
			}
		}
		if err := s.trialService.MarkNotificationSent(user.ID); err != nil {
			log.Printf("Failed to mark notification for user %d: %v", user.ID, err)
			continue
		}
		notified++
	}
	log.Printf("Trial scan: %d expired, %d notified", len(users), notified)
}

// runDataHygiene 每天清洗一次异常字段
func (s *Service) runDataHygiene() {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			if _, err := s.tradeService.NormalizeTraderTitles(); err != nil {
				log.Printf("Data hygiene failed: %v", err)
			}
		}
	}
}

// RunTrialScanNow 立即执行一次试用扫描（测试或手动触发）
func (s *Service) RunTrialScanNow() {
	s.notifyExpiredTrials()
}
