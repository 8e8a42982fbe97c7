package admin

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

// AdminPackageRequest 套餐创建/更新请求
type AdminPackageRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	Price       string `json:"price" binding:"required"`
	Status      string `json:"status"`
	SortOrder   int    `json:"sort_order"`
}

// AdminTierRequest 单层佣金配置
type AdminTierRequest struct {
	Level      int    `json:"level" binding:"required"`
	Percentage string `json:"percentage"`
	Amount     string `json:"amount" binding:"required"`
}

// AdminReplaceTiersRequest 全量替换佣金层级请求
type AdminReplaceTiersRequest struct {
	Tiers []AdminTierRequest `json:"tiers" binding:"required"`
}

// GetAdminPackages 获取套餐列表 (Admin)
func (h *Handler) GetAdminPackages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	packages, total, err := h.PackageService.ListPackages(repository.PackageListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, packages, pagination)
}

// GetAdminPackage 获取套餐详情 (Admin)
func (h *Handler) GetAdminPackage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	pkg, err := h.PackageService.GetPackage(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrPackageNotFound) {
			respondError(c, response.CodeNotFound, "error.package_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, pkg)
}

// CreateAdminPackage 创建套餐 (Admin)
func (h *Handler) CreateAdminPackage(c *gin.Context) {
	var req AdminPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil || price.LessThanOrEqual(decimal.Zero) {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	pkg, err := h.PackageService.CreatePackage(service.PackageInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       models.NewMoneyFromDecimal(price),
		Status:      req.Status,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		if errors.Is(err, service.ErrPackageSlugExists) {
			respondError(c, response.CodeBadRequest, "error.package_slug_exists", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.package_save_failed", err)
		return
	}
	response.Success(c, pkg)
}

// UpdateAdminPackage 更新套餐 (Admin)
func (h *Handler) UpdateAdminPackage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req AdminPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil || price.LessThanOrEqual(decimal.Zero) {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	pkg, err := h.PackageService.UpdatePackage(uint(id), service.PackageInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       models.NewMoneyFromDecimal(price),
		Status:      req.Status,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPackageNotFound):
			respondError(c, response.CodeNotFound, "error.package_not_found", nil)
		case errors.Is(err, service.ErrPackageSlugExists):
			respondError(c, response.CodeBadRequest, "error.package_slug_exists", nil)
		default:
			respondError(c, response.CodeInternal, "error.package_save_failed", err)
		}
		return
	}
	response.Success(c, pkg)
}

// ReplaceAdminPackageTiers 全量替换套餐佣金层级表 (Admin)
func (h *Handler) ReplaceAdminPackageTiers(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req AdminReplaceTiersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	tiers := make([]models.CommissionTier, 0, len(req.Tiers))
	for _, tier := range req.Tiers {
		amount, err := decimal.NewFromString(strings.TrimSpace(tier.Amount))
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.tier_amount_invalid", nil)
			return
		}
		percentage := decimal.Zero
		if raw := strings.TrimSpace(tier.Percentage); raw != "" {
			percentage, err = decimal.NewFromString(raw)
			if err != nil {
				respondError(c, response.CodeBadRequest, "error.bad_request", nil)
				return
			}
		}
		tiers = append(tiers, models.CommissionTier{
			Level:      tier.Level,
			Percentage: models.NewMoneyFromDecimal(percentage),
			Amount:     models.NewMoneyFromDecimal(amount),
		})
	}

	if err := h.PackageService.ReplaceTiers(uint(id), tiers); err != nil {
		switch {
		case errors.Is(err, service.ErrPackageNotFound):
			respondError(c, response.CodeNotFound, "error.package_not_found", nil)
		case errors.Is(err, service.ErrTierLevelInvalid):
			respondError(c, response.CodeBadRequest, "error.tier_level_invalid", nil)
		case errors.Is(err, service.ErrTierLevelDuplicated):
			respondError(c, response.CodeBadRequest, "error.tier_level_duplicated", nil)
		case errors.Is(err, service.ErrTierAmountInvalid):
			respondError(c, response.CodeBadRequest, "error.tier_amount_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.tier_save_failed", err)
		}
		return
	}
	response.Success(c, gin.H{"replaced": len(tiers)})
}

// SeedAdminPackageTiers 把内置默认佣金表固化到套餐 (Admin)
func (h *Handler) SeedAdminPackageTiers(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.PackageService.SeedDefaultTiers(uint(id)); err != nil {
		if errors.Is(err, service.ErrPackageNotFound) {
			respondError(c, response.CodeNotFound, "error.package_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.tier_save_failed", err)
		return
	}
	response.Success(c, gin.H{"seeded": true})
}
