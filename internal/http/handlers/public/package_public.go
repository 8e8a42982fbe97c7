package public

import (
	"errors"
	"strconv"

	"github.com/upline-next/internal/constants"
	"github.com/upline-next/internal/http/response"
	"github.com/upline-next/internal/repository"
	"github.com/upline-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetPackages 获取在售套餐列表
func (h *Handler) GetPackages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	packages, total, err := h.PackageService.ListPackages(repository.PackageListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   constants.PackageStatusActive,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, packages, pagination)
}

// GetPackage 获取套餐详情（含佣金层级表）
func (h *Handler) GetPackage(c *gin.Context) {
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
	if pkg.Status != constants.PackageStatusActive {
		respondError(c, response.CodeNotFound, "error.package_not_found", nil)
		return
	}
	response.Success(c, pkg)
}
