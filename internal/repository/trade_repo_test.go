package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/insider_go_server/internal/model"
	"github.com/qs3c/insider_go_server/internal/testutil"
)

func TestTradeRepository_Create_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewTradeRepository(db)

	testutil.TestTrade(t, db, testutil.WithAccession("0000320193-24-000012"))

	dup := &model.TradeRecord{
		Ticker:          "AAPL",
		CompanyName:     "Apple Inc",
		TraderName:      "Unknown Insider",
		TraderTitle:     model.PlaceholderTraderTitle,
		FiledDate:       time.Now(),
		TradeType:       model.TradeTypeOther,
		AccessionNumber: "0000320193-24-000012",
	}
	err := repo.Create(dup)
	assert.ErrorIs(t, err, ErrDuplicateRecord)

	// 重复写入不影响已有记录数
	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTradeRepository_List_Order(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewTradeRepository(db)

	now := time.Now()
	testutil.TestTrade(t, db, testutil.WithAccession("a-1"), testutil.WithFiledDate(now.Add(-3*time.Hour)))
	testutil.TestTrade(t, db, testutil.WithAccession("a-2"), testutil.WithFiledDate(now.Add(-1*time.Hour)))
	testutil.TestTrade(t, db, testutil.WithAccession("a-3"), testutil.WithFiledDate(now.Add(-2*time.Hour)))

	records, err := repo.List(10)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// 按申报时间倒序
	assert.Equal(t, "a-2", records[0].AccessionNumber)
	assert.Equal(t, "a-3", records[1].AccessionNumber)
	assert.Equal(t, "a-1", records[2].AccessionNumber)
}

func TestTradeRepository_ListFiledBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewTradeRepository(db)

	now := time.Now()
	testutil.TestTrade(t, db, testutil.WithAccession("old-1"), testutil.WithFiledDate(now.Add(-48*time.Hour)))
	testutil.TestTrade(t, db, testutil.WithAccession("fresh-1"), testutil.WithFiledDate(now.Add(-1*time.Hour)))

	cutoff := now.Add(-24 * time.Hour)
	records, err := repo.ListFiledBefore(cutoff, 10)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "old-1", records[0].AccessionNumber)
}

func TestTradeRepository_GetByAccession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewTradeRepository(db)

	testutil.TestTrade(t, db, testutil.WithAccession("0001045810-24-000123"))

	record, err := repo.GetByAccession("0001045810-24-000123")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", record.Ticker)

	_, err = repo.GetByAccession("no-such-accession")
	assert.Error(t, err)
}

func TestTradeRepository_NormalizeNumericTitles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewTradeRepository(db)

	testutil.TestTrade(t, db, testutil.WithAccession("n-1"), testutil.WithTraderTitle("12345"))
	testutil.TestTrade(t, db, testutil.WithAccession("n-2"), testutil.WithTraderTitle("CEO"))
	testutil.TestTrade(t, db, testutil.WithAccession("n-3"), testutil.WithTraderTitle("10% Owner"))

	affected, err := repo.NormalizeNumericTitles(model.PlaceholderTraderTitle)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	record, err := repo.GetByAccession("n-1")
	require.NoError(t, err)
	assert.Equal(t, model.PlaceholderTraderTitle, record.TraderTitle)

	// 非纯数字的头衔保持不变
	record, err = repo.GetByAccession("n-3")
	require.NoError(t, err)
	assert.Equal(t, "10% Owner", record.TraderTitle)

	// 幂等：再跑一遍没有新的改写
	affected, err = repo.NormalizeNumericTitles(model.PlaceholderTraderTitle)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}
