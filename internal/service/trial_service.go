package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/insider_go_server/config"
	"github.com/qs3c/insider_go_server/internal/model"
	"github.com/qs3c/insider_go_server/internal/model/dto"
	"github.com/qs3c/insider_go_server/internal/repository"
)

var (
	ErrTrialAlreadyUsed  = errors.New("试用资格已经使用过")
	ErrAlreadySubscribed = errors.New("已是 Insider Pro 订阅用户")
)

// TrialService 试用与订阅状态机。每个用户的状态独立，
// 所有变更都是单行更新，不需要跨行事务。
type TrialService struct {
	userRepo *repository.UserRepository
	cfg      *config.Config
}

func NewTrialService(userRepo *repository.UserRepository, cfg *config.Config) *TrialService {
	return &TrialService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// ActivateTrial 开通一次性试用。HasUsedTrial 是单向闸门：
// 成功一次之后的重试一律拒绝，不会重新计时。
func (s *TrialService) ActivateTrial(userID int64) (*dto.ActivateTrialResponse, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.HasUsedTrial {
		return nil, ErrTrialAlreadyUsed
	}
	if user.SubscriptionStatus == model.StatusActive && user.SubscriptionTier == model.TierInsiderPro {
		return nil, ErrAlreadySubscribed
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(s.cfg.Subscription.TrialHours) * time.Hour)

	err = s.userRepo.UpdateFields(userID, map[string]interface{}{
		"trial_activated_at":  now,
		"trial_expires_at":    expiresAt,
		"has_used_trial":      true,
		"subscription_status": model.StatusTrialing,
	})
	if err != nil {
		return nil, err
	}

	return &dto.ActivateTrialResponse{TrialExpiresAt: expiresAt}, nil
}

// CheckExpiredTrials 找出试用已到期、需要提醒的用户。
// 冷却期内不重复提醒，过了冷却期会再次出现在结果里。
func (s *TrialService) CheckExpiredTrials() ([]*model.User, error) {
	cooldown := time.Duration(s.cfg.Subscription.NotifyCooldownH) * time.Hour
	return s.userRepo.FindExpiredTrialUsers(time.Now(), cooldown)
}

// MarkNotificationSent 记录提醒时间并把状态降回 inactive
func (s *TrialService) MarkNotificationSent(userID int64) error {
	return s.userRepo.UpdateFields(userID, map[string]interface{}{
		"last_trial_notification_sent": time.Now(),
		"subscription_status":          model.StatusInactive,
	})
}

// UpgradeToInsiderPro 升级为付费订阅，支付平台标识原样落库
func (s *TrialService) UpgradeToInsiderPro(userID int64, req *dto.UpgradeRequest) error {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	now := time.Now()
	endDate := now.Add(time.Duration(s.cfg.Subscription.ProDays) * 24 * time.Hour)

	return s.userRepo.UpdateFields(userID, map[string]interface{}{
		"subscription_tier":       model.TierInsiderPro,
		"subscription_status":     model.StatusActive,
		"subscription_start_date": now,
		"subscription_end_date":   endDate,
		"payment_customer_id":     req.PaymentCustomerID,
		"payment_subscription_id": req.PaymentSubscriptionID,
	})
}

// CancelSubscription 取消订阅，立即生效
func (s *TrialService) CancelSubscription(userID int64) error {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return s.userRepo.UpdateFields(userID, map[string]interface{}{
		"subscription_status":   model.StatusCanceled,
		"subscription_end_date": time.Now(),
	})
}
