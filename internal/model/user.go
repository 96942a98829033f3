package model

import (
	"time"
)

// 订阅等级
const (
	TierFree       = "free"
	TierInsiderPro = "insider_pro"
)

// 订阅状态
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusTrialing = "trialing"
	StatusCanceled = "canceled"
)

type User struct {
	ID           int64   `gorm:"primaryKey" json:"id"`
	Username     string  `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        *string `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	PasswordHash *string `gorm:"size:255" json:"-"`

	SubscriptionTier   string `gorm:"size:20;default:free" json:"subscription_tier"`
	SubscriptionStatus string `gorm:"size:20;default:inactive;index" json:"subscription_status"`

	// 试用只允许一次，HasUsedTrial 置位后永不复位
	TrialActivatedAt *time.Time `json:"trial_activated_at,omitempty"`
	TrialExpiresAt   *time.Time `gorm:"index" json:"trial_expires_at,omitempty"`
	HasUsedTrial     bool       `gorm:"default:false" json:"has_used_trial"`

	SubscriptionStartDate     *time.Time `json:"subscription_start_date,omitempty"`
	SubscriptionEndDate       *time.Time `json:"subscription_end_date,omitempty"`
	LastTrialNotificationSent *time.Time `json:"-"`

	// 支付平台标识，原样存储
	PaymentCustomerID     string `gorm:"size:100" json:"-"`
	PaymentSubscriptionID string `gorm:"size:100" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
