package service

import (
	"strings"
	"time"

	"github.com/upline-next/internal/constants"
	"github.com/upline-next/internal/models"
	"github.com/upline-next/internal/repository"

	"github.com/shopspring/decimal"
)

// PackageService 套餐目录管理服务
type PackageService struct {
	packageRepo   repository.PackageRepository
	commissionSvc *CommissionService
}

// NewPackageService 创建套餐服务
func NewPackageService(packageRepo repository.PackageRepository, commissionSvc *CommissionService) *PackageService {
	return &PackageService{
		packageRepo:   packageRepo,
		commissionSvc: commissionSvc,
	}
}

// PackageInput 创建/更新套餐输入
type PackageInput struct {
	Name        string
	Slug        string
	Description string
	Price       models.Money
	Status      string
	SortOrder   int
}

// GetPackage 获取套餐详情（含佣金层级，无持久化层级时回退到内置默认表）
func (s *PackageService) GetPackage(id uint) (*models.MemberPackage, error) {
	pkg, err := s.packageRepo.GetByIDWithTiers(id)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}
	if len(pkg.Tiers) == 0 {
		pkg.Tiers = DefaultTableFor(pkg.Price.Decimal)
	}
	return pkg, nil
}

// GetPackageBySlug 按唯一标识获取套餐
func (s *PackageService) GetPackageBySlug(slug string) (*models.MemberPackage, error) {
	pkg, err := s.packageRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}
	return pkg, nil
}

// ListPackages 分页查询套餐
func (s *PackageService) ListPackages(filter repository.PackageListFilter) ([]models.MemberPackage, int64, error) {
	return s.packageRepo.List(filter)
}

// CreatePackage 创建套餐
func (s *PackageService) CreatePackage(input PackageInput) (*models.MemberPackage, error) {
	slug := strings.TrimSpace(strings.ToLower(input.Slug))
	if slug == "" {
		return nil, ErrPackageNotFound
	}
	exists, err := s.packageRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if exists != nil {
		return nil, ErrPackageSlugExists
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = constants.PackageStatusActive
	}
	now := time.Now()
	pkg := &models.MemberPackage{
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		Price:       models.NewMoneyFromDecimal(input.Price.Decimal.Round(2)),
		Status:      status,
		SortOrder:   input.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.packageRepo.Create(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// UpdatePackage 更新套餐基础信息
func (s *PackageService) UpdatePackage(id uint, input PackageInput) (*models.MemberPackage, error) {
	pkg, err := s.packageRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}

	slug := strings.TrimSpace(strings.ToLower(input.Slug))
	if slug != "" && slug != pkg.Slug {
		exists, err := s.packageRepo.GetBySlug(slug)
		if err != nil {
			return nil, err
		}
		if exists != nil && exists.ID != pkg.ID {
			return nil, ErrPackageSlugExists
		}
		pkg.Slug = slug
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		pkg.Name = name
	}
	pkg.Description = strings.TrimSpace(input.Description)
	if input.Price.Decimal.GreaterThan(decimal.Zero) {
		pkg.Price = models.NewMoneyFromDecimal(input.Price.Decimal.Round(2))
	}
	if status := strings.TrimSpace(input.Status); status != "" {
		pkg.Status = status
	}
	pkg.SortOrder = input.SortOrder
	pkg.UpdatedAt = time.Now()
	if err := s.packageRepo.Update(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// SetPackageStatus 上下架套餐
func (s *PackageService) SetPackageStatus(id uint, status string) (*models.MemberPackage, error) {
	pkg, err := s.packageRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}
	pkg.Status = status
	pkg.UpdatedAt = time.Now()
	if err := s.packageRepo.Update(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// ReplaceTiers 全量替换套餐佣金层级表。
// 先校验层级表合法性，再在事务内整表替换。
func (s *PackageService) ReplaceTiers(packageID uint, tiers []models.CommissionTier) error {
	pkg, err := s.packageRepo.GetByID(packageID)
	if err != nil {
		return err
	}
	if pkg == nil {
		return ErrPackageNotFound
	}
	if err := s.commissionSvc.ValidateTiers(tiers); err != nil {
		return err
	}
	now := time.Now()
	for i := range tiers {
		tiers[i].ID = 0
		tiers[i].PackageID = packageID
		tiers[i].CreatedAt = now
		tiers[i].UpdatedAt = now
	}
	return s.packageRepo.ReplaceTiers(packageID, tiers)
}

// SeedDefaultTiers 把内置默认佣金表固化为套餐的持久化层级。
// 套餐价位没有对应默认表时不做任何事。
func (s *PackageService) SeedDefaultTiers(packageID uint) error {
	pkg, err := s.packageRepo.GetByID(packageID)
	if err != nil {
		return err
	}
	if pkg == nil {
		return ErrPackageNotFound
	}
	tiers := DefaultTableFor(pkg.Price.Decimal)
	if len(tiers) == 0 {
		return nil
	}
	return s.ReplaceTiers(packageID, tiers)
}
