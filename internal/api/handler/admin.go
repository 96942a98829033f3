package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/insider_go_server/internal/api/middleware"
	"github.com/qs3c/insider_go_server/internal/model/dto"
	"github.com/qs3c/insider_go_server/internal/pkg/queue"
	"github.com/qs3c/insider_go_server/internal/pkg/response"
	"github.com/qs3c/insider_go_server/internal/service"
)

type AdminHandler struct {
	collector *service.CollectorService
	jobQueue  *queue.Queue
}

func NewAdminHandler(collector *service.CollectorService, jobQueue *queue.Queue) *AdminHandler {
	return &AdminHandler{
		collector: collector,
		jobQueue:  jobQueue,
	}
}

// TriggerCollection 触发一次全量 feed 采集
// POST /api/v1/admin/collect
func (h *AdminHandler) TriggerCollection(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	run, err := h.collector.StartFeedRun()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	job := &queue.CollectionJob{
		RunID:       run.ID,
		Mode:        queue.ModeFeed,
		TriggeredBy: userID,
	}
	if err := h.jobQueue.Push(c.Request.Context(), job); err != nil {
		response.ServerError(c, "任务入队失败")
		return
	}

	response.SuccessWithMessage(c, "采集任务已入队", gin.H{"run_id": run.ID})
}

// BulkImport 按公司列表批量采集
// POST /api/v1/admin/collect/bulk
func (h *AdminHandler) BulkImport(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req dto.BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	run, err := h.collector.StartIssuerRun(req.CIKs, req.MaxPerIssuer)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	job := &queue.CollectionJob{
		RunID:        run.ID,
		Mode:         queue.ModeIssuers,
		CIKs:         req.CIKs,
		MaxPerIssuer: req.MaxPerIssuer,
		TriggeredBy:  userID,
	}
	if err := h.jobQueue.Push(c.Request.Context(), job); err != nil {
		response.ServerError(c, "任务入队失败")
		return
	}

	response.SuccessWithMessage(c, "批量采集已入队", gin.H{"run_id": run.ID})
}

// Stats 采集统计汇总
// GET /api/v1/admin/collect/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.collector.Stats()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, stats)
}
