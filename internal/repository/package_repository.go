package repository

import (
	"errors"
	"strings"

	"github.com/upline-next/internal/models"

	"gorm.io/gorm"
)

// PackageRepository 套餐数据访问接口
type PackageRepository interface {
	GetByID(id uint) (*models.MemberPackage, error)
	GetByIDWithTiers(id uint) (*models.MemberPackage, error)
	GetBySlug(slug string) (*models.MemberPackage, error)
	List(filter PackageListFilter) ([]models.MemberPackage, int64, error)
	Create(pkg *models.MemberPackage) error
	Update(pkg *models.MemberPackage) error
	Delete(id uint) error
	GetTiers(packageID uint) ([]models.CommissionTier, error)
	ReplaceTiers(packageID uint, tiers []models.CommissionTier) error
	WithTx(tx *gorm.DB) *GormPackageRepository
}

// GormPackageRepository GORM 实现
type GormPackageRepository struct {
	db *gorm.DB
}

// NewPackageRepository 创建套餐仓库
func NewPackageRepository(db *gorm.DB) *GormPackageRepository {
	return &GormPackageRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPackageRepository) WithTx(tx *gorm.DB) *GormPackageRepository {
	if tx == nil {
		return r
	}
	return &GormPackageRepository{db: tx}
}

// GetByID 根据 ID 获取套餐
func (r *GormPackageRepository) GetByID(id uint) (*models.MemberPackage, error) {
	if id == 0 {
		return nil, nil
	}
	var pkg models.MemberPackage
	if err := r.db.First(&pkg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}

// GetByIDWithTiers 根据 ID 获取套餐及其佣金层级表
func (r *GormPackageRepository) GetByIDWithTiers(id uint) (*models.MemberPackage, error) {
	if id == 0 {
		return nil, nil
	}
	var pkg models.MemberPackage
	if err := r.db.Preload("Tiers", func(db *gorm.DB) *gorm.DB {
		return db.Order("level ASC")
	}).First(&pkg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}

// GetBySlug 根据唯一标识获取套餐
func (r *GormPackageRepository) GetBySlug(slug string) (*models.MemberPackage, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	var pkg models.MemberPackage
	if err := r.db.Where("slug = ?", slug).First(&pkg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}

// List 分页查询套餐
func (r *GormPackageRepository) List(filter PackageListFilter) ([]models.MemberPackage, int64, error) {
	query := r.db.Model(&models.MemberPackage{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		op := likeOperator(r.db)
		query = query.Where("name "+op+" ? OR slug "+op+" ?", like, like)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OnlyActive {
		query = query.Where("status = ?", "active")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if filter.WithTiers {
		query = query.Preload("Tiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("level ASC")
		})
	}

	var pkgs []models.MemberPackage
	if err := query.Order("sort_order ASC, id ASC").Find(&pkgs).Error; err != nil {
		return nil, 0, err
	}
	return pkgs, total, nil
}

// Create 创建套餐
func (r *GormPackageRepository) Create(pkg *models.MemberPackage) error {
	return r.db.Create(pkg).Error
}

// Update 更新套餐
func (r *GormPackageRepository) Update(pkg *models.MemberPackage) error {
	return r.db.Save(pkg).Error
}

// Delete 删除套餐（软删除）
func (r *GormPackageRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.MemberPackage{}, id).Error
}

// GetTiers 获取套餐佣金层级表（按层级升序）
func (r *GormPackageRepository) GetTiers(packageID uint) ([]models.CommissionTier, error) {
	if packageID == 0 {
		return []models.CommissionTier{}, nil
	}
	var tiers []models.CommissionTier
	if err := r.db.Where("package_id = ?", packageID).Order("level ASC").Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

// ReplaceTiers 整表替换套餐佣金层级
func (r *GormPackageRepository) ReplaceTiers(packageID uint, tiers []models.CommissionTier) error {
	if packageID == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("package_id = ?", packageID).Delete(&models.CommissionTier{}).Error; err != nil {
			return err
		}
		if len(tiers) == 0 {
			return nil
		}
		for i := range tiers {
			tiers[i].ID = 0
			tiers[i].PackageID = packageID
		}
		return tx.Create(&tiers).Error
	})
}
