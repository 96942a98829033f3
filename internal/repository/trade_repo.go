package repository

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/insider_go_server/internal/model"
)

// ErrDuplicateRecord accession_number 唯一索引冲突。采集流程把它当作正常去重，
// 不算失败。
var ErrDuplicateRecord = errors.New("duplicate trade record")

type TradeRepository struct {
	db *gorm.DB
}

func NewTradeRepository(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// Create 写入一条申报记录，唯一索引冲突返回 ErrDuplicateRecord
func (r *TradeRepository) Create(record *model.TradeRecord) error {
	err := r.db.Create(record).Error
	if err == nil {
		return nil
	}
	if isDuplicateErr(err) {
		return ErrDuplicateRecord
	}
	return err
}

// isDuplicateErr 识别唯一索引冲突。MySQL 经 gorm TranslateError 映射为
// ErrDuplicatedKey；测试用的 sqlite 驱动部分版本只给原始错误文本。
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}

// List 按申报时间倒序返回记录
func (r *TradeRepository) List(limit int) ([]*model.TradeRecord, error) {
	var records []*model.TradeRecord
	err := r.db.Order("filed_date DESC, id DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListFiledBefore 只返回申报时间早于 cutoff 的记录（免费用户延迟可见）
func (r *TradeRepository) ListFiledBefore(cutoff time.Time, limit int) ([]*model.TradeRecord, error) {
	var records []*model.TradeRecord
	err := r.db.Where("filed_date < ?", cutoff).
		Order("filed_date DESC, id DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *TradeRepository) GetByAccession(accession string) (*model.TradeRecord, error) {
	var record model.TradeRecord
	err := r.db.Where("accession_number = ?", accession).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *TradeRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.TradeRecord{}).Count(&count).Error
	return count, err
}

// NormalizeNumericTitles 把纯数字的 trader_title 改写为占位头衔。
// 幂等，可重复执行。
func (r *TradeRepository) NormalizeNumericTitles(placeholder string) (int64, error) {
	result := r.db.Model(&model.TradeRecord{}).
		Where("trader_title REGEXP ?", "^[0-9]+$").
		Update("trader_title", placeholder)
	if result.Error != nil {
		// sqlite 没有 REGEXP，退化为 GLOB 匹配
		fallback := r.db.Model(&model.TradeRecord{}).
			Where("trader_title GLOB ?", "[0-9]*").
			Where("trader_title NOT GLOB ?", "*[^0-9]*").
			Update("trader_title", placeholder)
		return fallback.RowsAffected, fallback.Error
	}
	return result.RowsAffected, nil
}
