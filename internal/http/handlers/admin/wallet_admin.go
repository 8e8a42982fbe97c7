package admin

import (
	"strconv"

	"github.com/upline-next/internal/http/response"
	"github.com/upline-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAdminWalletAccounts 获取钱包账户列表 (Admin)
func (h *Handler) GetAdminWalletAccounts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)

	accounts, total, err := h.WalletService.ListAccounts(repository.WalletAccountListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uint(userID),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.wallet_query_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, accounts, pagination)
}

// GetAdminWalletTransactions 获取钱包流水列表 (Admin)
func (h *Handler) GetAdminWalletTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	purchaseID, _ := strconv.ParseUint(c.Query("purchase_id"), 10, 64)
	payoutID, _ := strconv.ParseUint(c.Query("payout_id"), 10, 64)

	transactions, total, err := h.WalletService.ListTransactions(repository.WalletTransactionListFilter{
		Page:       page,
		PageSize:   pageSize,
		UserID:     uint(userID),
		PurchaseID: uint(purchaseID),
		PayoutID:   uint(payoutID),
		Type:       c.Query("type"),
		Direction:  c.Query("direction"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.wallet_query_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, transactions, pagination)
}
