package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/insider_go_server/internal/model"
	"github.com/qs3c/insider_go_server/internal/model/dto"
	"github.com/qs3c/insider_go_server/internal/repository"
)

// AccessService 根据用户行和当前时间推导访问权限。
// 这是实时/延迟判定的唯一出处，展示层只消费它的结果。
type AccessService struct {
	userRepo *repository.UserRepository
}

func NewAccessService(userRepo *repository.UserRepository) *AccessService {
	return &AccessService{userRepo: userRepo}
}

// Resolve 纯函数：同样的 (user, now) 必然得到同样的结果。
// user 为 nil 时返回零权限默认值。
func (s *AccessService) Resolve(user *model.User, now time.Time) *dto.AccessLevel {
	if user == nil {
		return &dto.AccessLevel{
			CanAccessRealtime: false,
			Tier:              model.TierFree,
			Status:            model.StatusInactive,
		}
	}

	isTrialActive := user.TrialActivatedAt != nil &&
		user.TrialExpiresAt != nil &&
		now.Before(*user.TrialExpiresAt)

	isSubscriptionActive := user.SubscriptionStatus == model.StatusActive &&
		user.SubscriptionTier == model.TierInsiderPro &&
		(user.SubscriptionEndDate == nil || now.Before(*user.SubscriptionEndDate))

	level := &dto.AccessLevel{
		CanAccessRealtime: isTrialActive || isSubscriptionActive,
		Tier:              user.SubscriptionTier,
		Status:            user.SubscriptionStatus,
		IsTrialing:        isTrialActive,
	}

	if isTrialActive {
		level.TrialExpiresAt = user.TrialExpiresAt
	}

	if user.SubscriptionEndDate != nil {
		days := daysUntil(*user.SubscriptionEndDate, now)
		level.DaysUntilExpiry = &days
	}

	return level
}

// ResolveByID 查库后推导，用户不存在按零权限处理
func (s *AccessService) ResolveByID(userID int64) (*dto.AccessLevel, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.Resolve(nil, time.Now()), nil
		}
		return nil, err
	}

	return s.Resolve(user, time.Now()), nil
}

// daysUntil 到期天数，向上取整
func daysUntil(end, now time.Time) int {
	remaining := end.Sub(now)
	if remaining <= 0 {
		return 0
	}
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) > 0 {
		days++
	}
	return days
}
