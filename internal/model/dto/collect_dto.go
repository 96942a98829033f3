package dto

// BulkImportRequest 按公司批量采集请求
type BulkImportRequest struct {
	CIKs         []string `json:"ciks" binding:"required,min=1"`
	MaxPerIssuer int      `json:"max_per_issuer,omitempty"`
}

// CollectionStats 采集统计汇总
type CollectionStats struct {
	TotalSaved     int64            `json:"total_saved"`
	TotalDuplicate int64            `json:"total_duplicate"`
	TotalErrors    int64            `json:"total_errors"`
	RecentRuns     []*CollectionRun `json:"recent_runs"`
}

// CollectionRun 单次采集记录（对外视图）
type CollectionRun struct {
	ID          int64  `json:"id"`
	Mode        string `json:"mode"`
	Status      string `json:"status"`
	Saved       int    `json:"saved"`
	Duplicate   int    `json:"duplicate"`
	Errors      int    `json:"errors"`
	Pages       int    `json:"pages"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at,omitempty"`
}
