package model

import (
	"time"
)

// CollectionRun 一次采集任务的执行记录
type CollectionRun struct {
	ID           int64      `gorm:"primaryKey" json:"id"`
	Mode         string     `gorm:"size:20;not null" json:"mode"` // feed, issuers
	Status       string     `gorm:"size:20;default:queued;index" json:"status"` // queued, running, completed, failed
	Saved        int        `gorm:"default:0" json:"saved"`
	Duplicate    int        `gorm:"default:0" json:"duplicate"`
	Errors       int        `gorm:"default:0" json:"errors"`
	Pages        int        `gorm:"default:0" json:"pages"`
	IssuerCIKs   string     `gorm:"type:text" json:"issuer_ciks,omitempty"` // issuers 模式下的 CIK 列表，逗号分隔
	MaxPerIssuer int        `gorm:"default:0" json:"max_per_issuer,omitempty"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func (CollectionRun) TableName() string {
	return "collection_runs"
}
