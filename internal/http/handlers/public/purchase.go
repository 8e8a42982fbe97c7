package public

import (
	"errors"
	"strconv"

	"github.com/upline-next/internal/http/response"
	"github.com/upline-next/internal/repository"
	"github.com/upline-next/internal/service"

	"github.com/gin-gonic/gin"
)

// PurchaseCreateRequest 购买套餐请求
type PurchaseCreateRequest struct {
	PackageID     uint   `json:"package_id" binding:"required"`
	PaymentMethod string `json:"payment_method"`
}

// CreatePurchase 购买套餐并触发整条佣金分配
func (h *Handler) CreatePurchase(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req PurchaseCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	purchase, err := h.PurchaseService.CreatePurchase(service.PurchaseInput{
		UserID:        uid,
		PackageID:     req.PackageID,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		respondPurchaseCreateError(c, err)
		return
	}
	response.Success(c, purchase)
}

// GetMyPurchases 获取当前会员购买记录
func (h *Handler) GetMyPurchases(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	purchases, total, err := h.PurchaseService.ListPurchases(repository.PurchaseListFilter{
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
	response.SuccessWithPage(c, purchases, pagination)
}

// GetMyPurchase 获取当前会员购买单详情（含分配明细）
func (h *Handler) GetMyPurchase(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	purchase, err := h.PurchaseService.GetPurchase(uid, uint(id))
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
