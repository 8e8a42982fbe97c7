package repository

import (
	"errors"
	"strings"

	"github.com/upline-next/internal/constants"
	"github.com/upline-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PayoutRepository 提现单数据访问接口
type PayoutRepository interface {
	Create(payout *models.PayoutRequest) error
	Update(payout *models.PayoutRequest) error
	GetByID(id uint) (*models.PayoutRequest, error)
	GetByIDForUpdate(id uint) (*models.PayoutRequest, error)
	GetByPayoutNo(payoutNo string) (*models.PayoutRequest, error)
	GetPendingByUserID(userID uint) (*models.PayoutRequest, error)
	List(filter PayoutListFilter) ([]models.PayoutRequest, int64, error)
	CountAll() (int64, error)
	CountByStatus(status string) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormPayoutRepository
}

// GormPayoutRepository GORM 实现
type GormPayoutRepository struct {
	db *gorm.DB
}

// NewPayoutRepository 创建提现单仓库
func NewPayoutRepository(db *gorm.DB) *GormPayoutRepository {
	return &GormPayoutRepository{db: db}
}

// Transaction 在数据库事务内执行回调
func (r *GormPayoutRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormPayoutRepository) WithTx(tx *gorm.DB) *GormPayoutRepository {
	if tx == nil {
		return r
	}
	return &GormPayoutRepository{db: tx}
}

// Create 创建提现单
func (r *GormPayoutRepository) Create(payout *models.PayoutRequest) error {
	return r.db.Create(payout).Error
}

// Update 更新提现单
func (r *GormPayoutRepository) Update(payout *models.PayoutRequest) error {
	return r.db.Save(payout).Error
}

// GetByID 根据 ID 获取提现单
func (r *GormPayoutRepository) GetByID(id uint) (*models.PayoutRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var payout models.PayoutRequest
	if err := r.db.First(&payout, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

// GetByIDForUpdate 按 ID 加锁获取提现单
func (r *GormPayoutRepository) GetByIDForUpdate(id uint) (*models.PayoutRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var payout models.PayoutRequest
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&payout, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

// GetByPayoutNo 按提现单编号获取提现单
func (r *GormPayoutRepository) GetByPayoutNo(payoutNo string) (*models.PayoutRequest, error) {
	payoutNo = strings.TrimSpace(payoutNo)
	if payoutNo == "" {
		return nil, nil
	}
	var payout models.PayoutRequest
	if err := r.db.Where("payout_no = ?", payoutNo).First(&payout).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

// GetPendingByUserID 获取会员待审核的提现单
func (r *GormPayoutRepository) GetPendingByUserID(userID uint) (*models.PayoutRequest, error) {
	if userID == 0 {
		return nil, nil
	}
	var payout models.PayoutRequest
	if err := r.db.Where("user_id = ? AND status = ?", userID, constants.PayoutStatusPending).
		First(&payout).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

// List 分页查询提现单
func (r *GormPayoutRepository) List(filter PayoutListFilter) ([]models.PayoutRequest, int64, error) {
	query := r.db.Model(&models.PayoutRequest{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PayoutNo != "" {
		query = query.Where("payout_no LIKE ?", "%"+filter.PayoutNo+"%")
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

	var payouts []models.PayoutRequest
	if err := query.Order("id DESC").Find(&payouts).Error; err != nil {
		return nil, 0, err
	}
	return payouts, total, nil
}

// CountAll 统计全部提现单数量（管理端只读指标）
func (r *GormPayoutRepository) CountAll() (int64, error) {
	var count int64
	if err := r.db.Model(&models.PayoutRequest{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus 按状态统计提现单数量
func (r *GormPayoutRepository) CountByStatus(status string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.PayoutRequest{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
