package public

import (
	"strconv"

	"github.com/upline-next/internal/http/response"
	"github.com/upline-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetMyWallet 获取当前会员钱包账户
func (h *Handler) GetMyWallet(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	account, err := h.WalletService.GetAccount(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.wallet_query_failed", err)
		return
	}
	response.Success(c, account)
}

// GetMyWalletTransactions 获取当前会员钱包流水
func (h *Handler) GetMyWalletTransactions(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	transactions, total, err := h.WalletService.ListTransactions(repository.WalletTransactionListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Type:     c.Query("type"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.wallet_query_failed", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, transactions, pagination)
}
