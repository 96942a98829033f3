package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/insider_go_server/internal/api/middleware"
	"github.com/qs3c/insider_go_server/internal/pkg/response"
	"github.com/qs3c/insider_go_server/internal/service"
)

type TradeHandler struct {
	tradeService *service.TradeService
}

func NewTradeHandler(tradeService *service.TradeService) *TradeHandler {
	return &TradeHandler{
		tradeService: tradeService,
	}
}

// List 申报列表，未登录或无实时权限的请求只能看到延迟数据
// GET /api/v1/trades
func (h *TradeHandler) List(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	records, access, err := h.tradeService.List(userID, limit)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{
		"trades": records,
		"access": access,
	})
}
