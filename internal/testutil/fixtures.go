package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/insider_go_server/internal/model"
)

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	email := fmt.Sprintf("test_%d@example.com", time.Now().UnixNano())
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:           fmt.Sprintf("testuser_%d", time.Now().UnixNano()%1000000),
		Email:              &email,
		PasswordHash:       &passwordHash,
		SubscriptionTier:   model.TierFree,
		SubscriptionStatus: model.StatusInactive,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithTier 设置订阅档位和状态
func WithTier(tier, status string) func(*model.User) {
	return func(u *model.User) {
		u.SubscriptionTier = tier
		u.SubscriptionStatus = status
	}
}

// WithActivePro 设置为生效中的 Pro 订阅
func WithActivePro(endDate time.Time) func(*model.User) {
	return func(u *model.User) {
		u.SubscriptionTier = model.TierInsiderPro
		u.SubscriptionStatus = model.StatusActive
		start := endDate.Add(-30 * 24 * time.Hour)
		u.SubscriptionStartDate = &start
		u.SubscriptionEndDate = &endDate
	}
}

// WithTrial 设置试用窗口
func WithTrial(activatedAt, expiresAt time.Time) func(*model.User) {
	return func(u *model.User) {
		u.TrialActivatedAt = &activatedAt
		u.TrialExpiresAt = &expiresAt
		u.HasUsedTrial = true
		u.SubscriptionStatus = model.StatusTrialing
	}
}

// WithTrialNotifiedAt 设置上次试用提醒时间
func WithTrialNotifiedAt(at time.Time) func(*model.User) {
	return func(u *model.User) {
		u.LastTrialNotificationSent = &at
	}
}

// TestTrade 创建测试申报记录
func TestTrade(t *testing.T, db *gorm.DB, opts ...func(*model.TradeRecord)) *model.TradeRecord {
	t.Helper()

	record := &model.TradeRecord{
		Ticker:          "AAPL",
		CompanyName:     "Apple Inc",
		TraderName:      "Unknown Insider",
		TraderTitle:     model.PlaceholderTraderTitle,
		FiledDate:       time.Now().Add(-48 * time.Hour),
		TradeType:       model.TradeTypeOther,
		AccessionNumber: fmt.Sprintf("0000320193-24-%06d", time.Now().UnixNano()%1000000),
		SECFilingURL:    "https://www.sec.gov/Archives/edgar/data/320193/example.html",
	}

	for _, opt := range opts {
		opt(record)
	}

	if err := db.Create(record).Error; err != nil {
		t.Fatalf("Failed to create test trade: %v", err)
	}

	return record
}

// WithAccession 设置 accession number
func WithAccession(accession string) func(*model.TradeRecord) {
	return func(r *model.TradeRecord) {
		r.AccessionNumber = accession
	}
}

// WithFiledDate 设置申报时间
func WithFiledDate(filed time.Time) func(*model.TradeRecord) {
	return func(r *model.TradeRecord) {
		r.FiledDate = filed
	}
}

// WithTraderTitle 设置头衔
func WithTraderTitle(title string) func(*model.TradeRecord) {
	return func(r *model.TradeRecord) {
		r.TraderTitle = title
	}
}

// TestRun 创建测试采集记录
func TestRun(t *testing.T, db *gorm.DB, mode string, saved, duplicate, errs int) *model.CollectionRun {
	t.Helper()

	run := &model.CollectionRun{
		Mode:      mode,
		Status:    "completed",
		Saved:     saved,
		Duplicate: duplicate,
		Errors:    errs,
	}

	if err := db.Create(run).Error; err != nil {
		t.Fatalf("Failed to create test run: %v", err)
	}

	return run
}
