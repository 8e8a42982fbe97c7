package repository

import (
	"errors"
	"strings"

	"github.com/upline-next/internal/constants"
	"github.com/upline-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PurchaseRepository 购买单数据访问接口
type PurchaseRepository interface {
	Create(purchase *models.Purchase) error
	Update(purchase *models.Purchase) error
	GetByID(id uint) (*models.Purchase, error)
	GetByIDWithDistributions(id uint) (*models.Purchase, error)
	GetByPurchaseNo(userID uint, purchaseNo string) (*models.Purchase, error)
	GetByIDForUpdate(id uint) (*models.Purchase, error)
	List(filter PurchaseListFilter) ([]models.Purchase, int64, error)
	HasCompletedPurchase(userID, packageID uint) (bool, error)
	CreateDistributions(distributions []models.CommissionDistribution) error
	UpdateDistribution(distribution *models.CommissionDistribution) error
	ListDistributionsByPurchaseID(purchaseID uint) ([]models.CommissionDistribution, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormPurchaseRepository
}

// GormPurchaseRepository GORM 实现
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository 创建购买单仓库
func NewPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// Transaction 在数据库事务内执行回调
func (r *GormPurchaseRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormPurchaseRepository) WithTx(tx *gorm.DB) *GormPurchaseRepository {
	if tx == nil {
		return r
	}
	return &GormPurchaseRepository{db: tx}
}

// Create 创建购买单
func (r *GormPurchaseRepository) Create(purchase *models.Purchase) error {
	return r.db.Create(purchase).Error
}

// Update 更新购买单
func (r *GormPurchaseRepository) Update(purchase *models.Purchase) error {
	return r.db.Save(purchase).Error
}

// GetByID 根据 ID 获取购买单
func (r *GormPurchaseRepository) GetByID(id uint) (*models.Purchase, error) {
	if id == 0 {
		return nil, nil
	}
	var purchase models.Purchase
	if err := r.db.First(&purchase, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &purchase, nil
}

// GetByIDWithDistributions 根据 ID 获取购买单及分配明细
func (r *GormPurchaseRepository) GetByIDWithDistributions(id uint) (*models.Purchase, error) {
	if id == 0 {
		return nil, nil
	}
	var purchase models.Purchase
	if err := r.db.Preload("Distributions", func(db *gorm.DB) *gorm.DB {
		return db.Order("level ASC")
	}).First(&purchase, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &purchase, nil
}

// GetByPurchaseNo 按购买单编号查询
func (r *GormPurchaseRepository) GetByPurchaseNo(userID uint, purchaseNo string) (*models.Purchase, error) {
	purchaseNo = strings.TrimSpace(purchaseNo)
	if purchaseNo == "" {
		return nil, nil
	}
	query := r.db.Where("purchase_no = ?", purchaseNo)
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}
	var purchase models.Purchase
	if err := query.First(&purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &purchase, nil
}

// GetByIDForUpdate 按 ID 加锁获取购买单
func (r *GormPurchaseRepository) GetByIDForUpdate(id uint) (*models.Purchase, error) {
	if id == 0 {
		return nil, nil
	}
	var purchase models.Purchase
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&purchase, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &purchase, nil
}

// List 分页查询购买单
func (r *GormPurchaseRepository) List(filter PurchaseListFilter) ([]models.Purchase, int64, error) {
	query := r.db.Model(&models.Purchase{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.PackageID != 0 {
		query = query.Where("package_id = ?", filter.PackageID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PurchaseNo != "" {
		query = query.Where("purchase_no LIKE ?", "%"+filter.PurchaseNo+"%")
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if filter.WithDistributions {
		query = query.Preload("Distributions", func(db *gorm.DB) *gorm.DB {
			return db.Order("level ASC")
		})
	}

	var purchases []models.Purchase
	if err := query.Order("id DESC").Find(&purchases).Error; err != nil {
		return nil, 0, err
	}
	return purchases, total, nil
}

// HasCompletedPurchase 判断会员是否已有该套餐的生效购买单
func (r *GormPurchaseRepository) HasCompletedPurchase(userID, packageID uint) (bool, error) {
	if userID == 0 || packageID == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.Model(&models.Purchase{}).
		Where("user_id = ? AND package_id = ? AND status = ?", userID, packageID, constants.PurchaseStatusCompleted).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateDistributions 批量创建佣金分配明细
func (r *GormPurchaseRepository) CreateDistributions(distributions []models.CommissionDistribution) error {
	if len(distributions) == 0 {
		return nil
	}
	return r.db.Create(&distributions).Error
}

// UpdateDistribution 更新佣金分配明细
func (r *GormPurchaseRepository) UpdateDistribution(distribution *models.CommissionDistribution) error {
	return r.db.Save(distribution).Error
}

// ListDistributionsByPurchaseID 按购买单查询分配明细
func (r *GormPurchaseRepository) ListDistributionsByPurchaseID(purchaseID uint) ([]models.CommissionDistribution, error) {
	if purchaseID == 0 {
		return []models.CommissionDistribution{}, nil
	}
	var distributions []models.CommissionDistribution
	if err := r.db.Where("purchase_id = ?", purchaseID).Order("level ASC").Find(&distributions).Error; err != nil {
		return nil, err
	}
	return distributions, nil
}
