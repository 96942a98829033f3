package dto

import "time"

// AccessLevel 当前访问权限，由用户行和当前时间实时推导，不落库不缓存
type AccessLevel struct {
	CanAccessRealtime bool       `json:"can_access_realtime"`
	Tier              string     `json:"tier"`
	Status            string     `json:"status"`
	IsTrialing        bool       `json:"is_trialing"`
	TrialExpiresAt    *time.Time `json:"trial_expires_at,omitempty"`
	DaysUntilExpiry   *int       `json:"days_until_expiry,omitempty"`
}

// ActivateTrialResponse 试用开通响应
type ActivateTrialResponse struct {
	TrialExpiresAt time.Time `json:"trial_expires_at"`
}

// UpgradeRequest 升级为 Pro 请求，支付平台回传的标识原样透传
type UpgradeRequest struct {
	PaymentCustomerID     string `json:"payment_customer_id" binding:"required"`
	PaymentSubscriptionID string `json:"payment_subscription_id" binding:"required"`
}
