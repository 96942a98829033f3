package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/insider_go_server/internal/model"
)

type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Create(run *model.CollectionRun) error {
	return r.db.Create(run).Error
}

func (r *RunRepository) GetByID(id int64) (*model.CollectionRun, error) {
	var run model.CollectionRun
	err := r.db.Where("id = ?", id).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *RunRepository) Update(run *model.CollectionRun) error {
	return r.db.Save(run).Error
}

// ListRecent 最近的采集记录，按创建时间倒序
func (r *RunRepository) ListRecent(limit int) ([]*model.CollectionRun, error) {
	var runs []*model.CollectionRun
	err := r.db.Order("created_at DESC, id DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// RunTotals 采集总量汇总
type RunTotals struct {
	Saved     int64
	Duplicate int64
	Errors    int64
}

// Totals 汇总历史采集的 saved/duplicate/error 总数
func (r *RunRepository) Totals() (*RunTotals, error) {
	var totals RunTotals
	err := r.db.Model(&model.CollectionRun{}).
		Select("COALESCE(SUM(saved),0) AS saved, COALESCE(SUM(duplicate),0) AS duplicate, COALESCE(SUM(errors),0) AS errors").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}
