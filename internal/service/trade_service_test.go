package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/insider_go_server/config"
	"github.com/qs3c/insider_go_server/internal/model"
	"github.com/qs3c/insider_go_server/internal/repository"
	"github.com/qs3c/insider_go_server/internal/testutil"
)

func newTradeService(db *gorm.DB) *TradeService {
	userRepo := repository.NewUserRepository(db)
	cfg := &config.Config{
		Subscription: config.SubscriptionConfig{
			FreeDelayMinutes: 24 * 60,
		},
	}
	return NewTradeService(repository.NewTradeRepository(db), NewAccessService(userRepo), cfg)
}

func seedTrades(t *testing.T, db *gorm.DB) {
	t.Helper()
	now := time.Now()
	testutil.TestTrade(t, db, testutil.WithAccession("fresh-1"), testutil.WithFiledDate(now.Add(-1*time.Hour)))
	testutil.TestTrade(t, db, testutil.WithAccession("fresh-2"), testutil.WithFiledDate(now.Add(-23*time.Hour)))
	testutil.TestTrade(t, db, testutil.WithAccession("old-1"), testutil.WithFiledDate(now.Add(-25*time.Hour)))
}

func TestTradeList_Anonymous(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newTradeService(db)
	seedTrades(t, db)

	// 未登录只能看延迟窗口之前的数据
	records, access, err := svc.List(0, 50)
	require.NoError(t, err)
	assert.False(t, access.CanAccessRealtime)
	require.Len(t, records, 1)
	assert.Equal(t, "old-1", records[0].AccessionNumber)
}

func TestTradeList_FreeUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newTradeService(db)
	seedTrades(t, db)

	user := testutil.TestUser(t, db)

	records, access, err := svc.List(user.ID, 50)
	require.NoError(t, err)
	assert.False(t, access.CanAccessRealtime)
	require.Len(t, records, 1)
}

func TestTradeList_TrialUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newTradeService(db)
	seedTrades(t, db)

	now := time.Now()
	user := testutil.TestUser(t, db, testutil.WithTrial(now, now.Add(24*time.Hour)))

	// 试用期内看全量
	records, access, err := svc.List(user.ID, 50)
	require.NoError(t, err)
	assert.True(t, access.CanAccessRealtime)
	assert.Len(t, records, 3)
}

func TestTradeList_ProUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newTradeService(db)
	seedTrades(t, db)

	user := testutil.TestUser(t, db, testutil.WithActivePro(time.Now().Add(15*24*time.Hour)))

	records, access, err := svc.List(user.ID, 50)
	require.NoError(t, err)
	assert.True(t, access.CanAccessRealtime)
	assert.Len(t, records, 3)
}

func TestTradeList_ExpiredTrialFallsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newTradeService(db)
	seedTrades(t, db)

	now := time.Now()
	user := testutil.TestUser(t, db,
		testutil.WithTrial(now.Add(-48*time.Hour), now.Add(-24*time.Hour)))

	// 试用到期后回到延迟视图
	records, access, err := svc.List(user.ID, 50)
	require.NoError(t, err)
	assert.False(t, access.CanAccessRealtime)
	require.Len(t, records, 1)
	assert.Equal(t, "old-1", records[0].AccessionNumber)
}

func TestNormalizeTraderTitles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := newTradeService(db)

	testutil.TestTrade(t, db, testutil.WithAccession("h-1"), testutil.WithTraderTitle("8839"))
	testutil.TestTrade(t, db, testutil.WithAccession("h-2"), testutil.WithTraderTitle("Director"))

	n, err := svc.NormalizeTraderTitles()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	record, err := repository.NewTradeRepository(db).GetByAccession("h-1")
	require.NoError(t, err)
	assert.Equal(t, model.PlaceholderTraderTitle, record.TraderTitle)
}
