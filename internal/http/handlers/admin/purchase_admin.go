package admin

import (
	"errors"
	"strconv"

	"github.com/upline-next/internal/http/response"
	"github.com/upline-next/internal/repository"
	"github.com/upline-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminPurchases 获取购买单列表 (Admin)
func (h *Handler) GetAdminPurchases(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	packageID, _ := strconv.ParseUint(c.Query("package_id"), 10, 64)

	purchases, total, err := h.PurchaseService.ListPurchases(repository.PurchaseListFilter{
		Page:       page,
		PageSize:   pageSize,
		UserID:     uint(userID),
		PackageID:  uint(packageID),
		Status:     c.Query("status"),
		PurchaseNo: c.Query("purchase_no"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, purchases, pagination)
}

// GetAdminPurchase 获取购买单详情 (Admin)，含全部分配明细
func (h *Handler) GetAdminPurchase(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	purchase, err := h.PurchaseService.GetPurchase(0, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrPurchaseNotFound) {
			respondError(c, response.CodeNotFound, "error.purchase_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, purchase)
}
