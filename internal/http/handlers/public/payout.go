package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/upline-next/internal/http/response"
	"github.com/upline-next/internal/models"
	"github.com/upline-next/internal/repository"
	"github.com/upline-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// GetMyWithdrawable 获取当前会员可提现概览
func (h *Handler) GetMyWithdrawable(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	summary, err := h.PayoutService.Withdrawable(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.wallet_query_failed", err)
		return
	}
	response.Success(c, summary)
}

// PayoutRequestRequest 提现申请请求
type PayoutRequestRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// RequestPayout 提交提现申请
func (h *Handler) RequestPayout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req PayoutRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.wallet_amount_invalid", nil)
		return
	}

	payout, err := h.PayoutService.RequestPayout(service.PayoutRequestInput{
		UserID: uid,
		Amount: models.NewMoneyFromDecimal(amount),
	})
	if err != nil {
		respondPayoutRequestError(c, err)
		return
	}
	response.Success(c, payout)
}

// GetMyPayouts 获取当前会员提现记录
func (h *Handler) GetMyPayouts(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	payouts, total, err := h.PayoutService.ListPayouts(repository.PayoutListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, payouts, pagination)
}

// GetMyPayout 获取当前会员提现单详情
func (h *Handler) GetMyPayout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	payout, err := h.PayoutService.GetPayout(uid, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrPayoutNotFound) {
			respondError(c, response.CodeNotFound, "error.payout_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, payout)
}
