package admin

import (
	"strconv"
	"strings"

	"github.com/upline-next/internal/constants"
	"github.com/upline-next/internal/http/response"
	"github.com/upline-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAdminUsers 获取会员列表 (Admin)
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	sponsorID, _ := strconv.ParseUint(c.Query("sponsor_id"), 10, 64)

	users, total, err := h.UserRepo.List(repository.UserListFilter{
		Page:      page,
		PageSize:  pageSize,
		Keyword:   c.Query("search"),
		Status:    c.Query("status"),
		SponsorID: uint(sponsorID),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, users, pagination)
}

// GetAdminUser 获取会员详情 (Admin)，附带直推统计与钱包账户
func (h *Handler) GetAdminUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	user, err := h.UserRepo.GetByID(uint(id))
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if user == nil {
		respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		return
	}

	stats, err := h.GenealogyService.DirectStats(user.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.network_query_failed", err)
		return
	}
	account, err := h.WalletService.GetAccount(user.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.wallet_query_failed", err)
		return
	}

	response.Success(c, gin.H{
		"user":           user,
		"direct_stats":   stats,
		"wallet_account": account,
	})
}

// AdminUserStatusRequest 批量更新会员状态请求
type AdminUserStatusRequest struct {
	IDs    []uint `json:"ids" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// BatchUpdateUserStatus 批量封禁/解封会员 (Admin)
// 封禁会同时提升 token 版本，使既有登录凭证全部失效。
func (h *Handler) BatchUpdateUserStatus(c *gin.Context) {
	var req AdminUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	switch status {
	case constants.UserStatusFree, constants.UserStatusActive, constants.UserStatusBlocked:
	default:
		respondError(c, response.CodeBadRequest, "error.user_status_invalid", nil)
		return
	}

	if err := h.UserRepo.BatchUpdateStatus(req.IDs, status); err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	requestLog(c).Infow("admin_user_status_updated", "ids", req.IDs, "status", status)
	response.Success(c, gin.H{"updated": len(req.IDs)})
}

// GetAdminUserNetwork 查看指定会员的推荐网络 (Admin)
func (h *Handler) GetAdminUserNetwork(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	depth, _ := strconv.Atoi(c.DefaultQuery("depth", "3"))

	result, err := h.GenealogyService.DescendantsOf(uint(id), depth, 0)
	if err != nil {
		respondError(c, response.CodeInternal, "error.network_query_failed", err)
		return
	}
	response.Success(c, result)
}

// GetAdminUserUpline 查看指定会员的推荐链 (Admin)
func (h *Handler) GetAdminUserUpline(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	ancestors, err := h.GenealogyService.AncestorsOf(uint(id))
	if err != nil {
		respondError(c, response.CodeInternal, "error.network_query_failed", err)
		return
	}
	response.Success(c, gin.H{
		"ancestors": ancestors,
		"depth":     len(ancestors),
	})
}
