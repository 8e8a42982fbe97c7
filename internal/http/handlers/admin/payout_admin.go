package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/upline-next/internal/constants"
	"github.com/upline-next/internal/http/response"
	"github.com/upline-next/internal/repository"
	"github.com/upline-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminPayouts 获取提现单列表 (Admin)
func (h *Handler) GetAdminPayouts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)

	payouts, total, err := h.PayoutService.ListPayouts(repository.PayoutListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uint(userID),
		Status:   c.Query("status"),
		PayoutNo: c.Query("payout_no"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, payouts, pagination)
}

// GetAdminPayout 获取提现单详情 (Admin)
func (h *Handler) GetAdminPayout(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	payout, err := h.PayoutService.GetPayout(0, uint(id))
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

// AdminPayoutReviewRequest 提现审核请求
type AdminPayoutReviewRequest struct {
	Action string `json:"action" binding:"required"` // approve / reject / revert
	Remark string `json:"remark"`
}

// ReviewAdminPayout 审核提现单 (Admin)。
// approve 扣减钱包并记录两桶拆分；reject 仅翻转状态；revert 按记录的拆分回补。
func (h *Handler) ReviewAdminPayout(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req AdminPayoutReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	input := service.PayoutReviewInput{
		PayoutID: uint(id),
		AdminID:  adminID,
		Remark:   req.Remark,
	}
	action := strings.ToLower(strings.TrimSpace(req.Action))
	var payout interface{}
	switch action {
	case constants.PayoutActionApprove:
		payout, err = h.PayoutService.Approve(input)
	case constants.PayoutActionReject:
		payout, err = h.PayoutService.Reject(input)
	case constants.PayoutActionRevert:
		payout, err = h.PayoutService.Revert(input)
	default:
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPayoutNotFound):
			respondError(c, response.CodeNotFound, "error.payout_not_found", nil)
		case errors.Is(err, service.ErrPayoutStatusInvalid):
			respondError(c, response.CodeBadRequest, "error.payout_status_invalid", nil)
		case errors.Is(err, service.ErrPayoutExceedsWithdrawable):
			respondError(c, response.CodeBadRequest, "error.payout_exceeds_withdrawable", nil)
		case errors.Is(err, service.ErrWalletInsufficientBalance):
			respondError(c, response.CodeBadRequest, "error.wallet_insufficient_balance", nil)
		case errors.Is(err, service.ErrWalletAccountNotFound):
			respondError(c, response.CodeNotFound, "error.wallet_account_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.payout_review_failed", err)
		}
		return
	}

	requestLog(c).Infow("admin_payout_reviewed",
		"payout_id", id,
		"action", action,
		"admin_id", adminID,
	)
	response.Success(c, payout)
}
