package model

import (
	"time"
)

// 交易类型
const (
	TradeTypeBuy   = "BUY"
	TradeTypeSell  = "SELL"
	TradeTypeOther = "OTHER"
)

// PlaceholderTraderTitle 启发式采集阶段填充的占位头衔
const PlaceholderTraderTitle = "Officer"

// TradeRecord 一条 Form 4 申报记录。AccessionNumber 是 SEC 的全局唯一编号，
// 入库去重完全依赖该列的唯一索引。
type TradeRecord struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	Ticker          string    `gorm:"size:10;index" json:"ticker"`
	CompanyName     string    `gorm:"size:200;not null" json:"company_name"`
	TraderName      string    `gorm:"size:100" json:"trader_name"`
	TraderTitle     string    `gorm:"size:100" json:"trader_title"`
	FiledDate       time.Time `gorm:"index" json:"filed_date"`
	TradeType       string    `gorm:"size:10;default:OTHER" json:"trade_type"`
	PricePerShare   float64   `gorm:"type:decimal(12,4)" json:"price_per_share"`
	Shares          int64     `json:"shares"`
	TotalValue      float64   `gorm:"type:decimal(16,2)" json:"total_value"`
	AccessionNumber string    `gorm:"size:64;uniqueIndex;not null" json:"accession_number"`
	SECFilingURL    string    `gorm:"size:500" json:"sec_filing_url"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}

func (TradeRecord) TableName() string {
	return "trade_records"
}
