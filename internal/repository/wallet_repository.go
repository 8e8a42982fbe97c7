package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/upline-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletBalanceDelta 钱包账户各字段的增量（负数表示扣减）
type WalletBalanceDelta struct {
	Balance        decimal.Decimal
	ActiveIncome   decimal.Decimal
	PassiveIncome  decimal.Decimal
	TotalEarned    decimal.Decimal
	TotalWithdrawn decimal.Decimal
}

// WalletRepository 钱包数据访问接口
type WalletRepository interface {
	GetAccountByUserID(userID uint) (*models.WalletAccount, error)
	GetAccountByUserIDForUpdate(userID uint) (*models.WalletAccount, error)
	GetAccountsByUserIDs(userIDs []uint) ([]models.WalletAccount, error)
	CreateAccount(account *models.WalletAccount) error
	ApplyBalanceDelta(accountID uint, delta WalletBalanceDelta) error
	ListAccounts(filter WalletAccountListFilter) ([]models.WalletAccount, int64, error)
	CreateTransaction(txn *models.WalletTransaction) error
	GetTransactionByReference(reference string) (*models.WalletTransaction, error)
	DeleteTransactionByReference(reference string) error
	ListTransactions(filter WalletTransactionListFilter) ([]models.WalletTransaction, int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormWalletRepository
}

// GormWalletRepository GORM 钱包仓储实现
type GormWalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository 创建钱包仓储
func NewWalletRepository(db *gorm.DB) *GormWalletRepository {
	return &GormWalletRepository{db: db}
}

// Transaction 在数据库事务内执行回调
func (r *GormWalletRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormWalletRepository) WithTx(tx *gorm.DB) *GormWalletRepository {
	if tx == nil {
		return r
	}
	return &GormWalletRepository{db: tx}
}

// GetAccountByUserID 按会员ID获取钱包账户
func (r *GormWalletRepository) GetAccountByUserID(userID uint) (*models.WalletAccount, error) {
	if userID == 0 {
		return nil, nil
	}
	var account models.WalletAccount
	if err := r.db.Where("user_id = ?", userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetAccountByUserIDForUpdate 按会员ID加锁获取钱包账户
func (r *GormWalletRepository) GetAccountByUserIDForUpdate(userID uint) (*models.WalletAccount, error) {
	if userID == 0 {
		return nil, nil
	}
	var account models.WalletAccount
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetAccountsByUserIDs 批量获取钱包账户
func (r *GormWalletRepository) GetAccountsByUserIDs(userIDs []uint) ([]models.WalletAccount, error) {
	if len(userIDs) == 0 {
		return []models.WalletAccount{}, nil
	}
	var accounts []models.WalletAccount
	if err := r.db.Where("user_id IN ?", userIDs).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// CreateAccount 创建钱包账户
func (r *GormWalletRepository) CreateAccount(account *models.WalletAccount) error {
	return r.db.Create(account).Error
}

// ApplyBalanceDelta 对账户余额字段做原子增量更新，避免整行覆盖丢失并发写入
func (r *GormWalletRepository) ApplyBalanceDelta(accountID uint, delta WalletBalanceDelta) error {
	if accountID == 0 {
		return nil
	}
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if !delta.Balance.IsZero() {
		updates["balance"] = gorm.Expr("balance + ?", delta.Balance)
	}
	if !delta.ActiveIncome.IsZero() {
		updates["active_income"] = gorm.Expr("active_income + ?", delta.ActiveIncome)
	}
	if !delta.PassiveIncome.IsZero() {
		updates["passive_income"] = gorm.Expr("passive_income + ?", delta.PassiveIncome)
	}
	if !delta.TotalEarned.IsZero() {
		updates["total_earned"] = gorm.Expr("total_earned + ?", delta.TotalEarned)
	}
	if !delta.TotalWithdrawn.IsZero() {
		updates["total_withdrawn"] = gorm.Expr("total_withdrawn + ?", delta.TotalWithdrawn)
	}
	if len(updates) == 1 {
		return nil
	}
	return r.db.Model(&models.WalletAccount{}).
		Where("id = ?", accountID).
		Updates(updates).Error
}

// ListAccounts 分页查询钱包账户
func (r *GormWalletRepository) ListAccounts(filter WalletAccountListFilter) ([]models.WalletAccount, int64, error) {
	query := r.db.Model(&models.WalletAccount{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var accounts []models.WalletAccount
	if err := query.Order("id desc").Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// CreateTransaction 创建钱包流水
func (r *GormWalletRepository) CreateTransaction(txn *models.WalletTransaction) error {
	return r.db.Create(txn).Error
}

// GetTransactionByReference 按参考号获取流水
func (r *GormWalletRepository) GetTransactionByReference(reference string) (*models.WalletTransaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	var txn models.WalletTransaction
	if err := r.db.Where("reference = ?", reference).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// DeleteTransactionByReference 按参考号删除流水（提现撤销时移除到账记录）
func (r *GormWalletRepository) DeleteTransactionByReference(reference string) error {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil
	}
	return r.db.Where("reference = ?", reference).Delete(&models.WalletTransaction{}).Error
}

// ListTransactions 分页查询钱包流水
func (r *GormWalletRepository) ListTransactions(filter WalletTransactionListFilter) ([]models.WalletTransaction, int64, error) {
	query := r.db.Model(&models.WalletTransaction{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.PurchaseID != 0 {
		query = query.Where("purchase_id = ?", filter.PurchaseID)
	}
	if filter.PayoutID != 0 {
		query = query.Where("payout_id = ?", filter.PayoutID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Direction != "" {
		query = query.Where("direction = ?", filter.Direction)
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

	var txns []models.WalletTransaction
	if err := query.Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
