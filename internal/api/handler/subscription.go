package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/insider_go_server/internal/api/middleware"
	"github.com/qs3c/insider_go_server/internal/model/dto"
	"github.com/qs3c/insider_go_server/internal/pkg/response"
	"github.com/qs3c/insider_go_server/internal/service"
)

type SubscriptionHandler struct {
	trialService  *service.TrialService
	accessService *service.AccessService
}

func NewSubscriptionHandler(trialService *service.TrialService, accessService *service.AccessService) *SubscriptionHandler {
	return &SubscriptionHandler{
		trialService:  trialService,
		accessService: accessService,
	}
}

// Status 当前订阅状态
// GET /api/v1/subscription/status
func (h *SubscriptionHandler) Status(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	access, err := h.accessService.ResolveByID(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, access)
}

// ActivateTrial 开通一次性试用
// POST /api/v1/subscription/trial
func (h *SubscriptionHandler) ActivateTrial(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	resp, err := h.trialService.ActivateTrial(userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTrialAlreadyUsed):
			response.PolicyError(c, err.Error())
		case errors.Is(err, service.ErrAlreadySubscribed):
			response.PolicyError(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "试用已开通", resp)
}

// Upgrade 升级为 Insider Pro（支付回调已在外部完成校验）
// POST /api/v1/subscription/upgrade
func (h *SubscriptionHandler) Upgrade(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.UpgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.trialService.UpgradeToInsiderPro(userID, &req); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	access, err := h.accessService.ResolveByID(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "升级成功", access)
}

// Cancel 取消订阅，立即生效
// POST /api/v1/subscription/cancel
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	if err := h.trialService.CancelSubscription(userID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "订阅已取消", nil)
}
