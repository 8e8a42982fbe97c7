package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/upline-next/internal/constants"
	"github.com/upline-next/internal/models"
	"github.com/upline-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	walletDefaultCurrency = "INR"
)

// WalletService 钱包服务
type WalletService struct {
	walletRepo repository.WalletRepository
	userRepo   repository.UserRepository
}

// NewWalletService 创建钱包服务
func NewWalletService(walletRepo repository.WalletRepository, userRepo repository.UserRepository) *WalletService {
	return &WalletService{
		walletRepo: walletRepo,
		userRepo:   userRepo,
	}
}

// WalletCommissionCreditInput 事务内佣金入账输入
type WalletCommissionCreditInput struct {
	UserID       uint
	Amount       models.Money
	Level        int
	PurchaseID   uint
	SourceUserID uint
	Currency     string
	Reference    string
	Remark       string
}

// GetAccount 获取钱包账户（不存在时自动创建）
func (s *WalletService) GetAccount(userID uint) (*models.WalletAccount, error) {
	if userID == 0 {
		return nil, ErrWalletAccountNotFound
	}
	return s.getOrCreateAccount(userID)
}

// ListTransactions 查询钱包流水
func (s *WalletService) ListTransactions(filter repository.WalletTransactionListFilter) ([]models.WalletTransaction, int64, error) {
	return s.walletRepo.ListTransactions(filter)
}

// ListAccounts 管理端分页查询钱包账户
func (s *WalletService) ListAccounts(filter repository.WalletAccountListFilter) ([]models.WalletAccount, int64, error) {
	return s.walletRepo.ListAccounts(filter)
}

// GetBalancesByUserIDs 批量查询会员余额
func (s *WalletService) GetBalancesByUserIDs(userIDs []uint) (map[uint]models.Money, error) {
	result := make(map[uint]models.Money, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}
	accounts, err := s.walletRepo.GetAccountsByUserIDs(userIDs)
	if err != nil {
		return nil, err
	}
	for _, account := range accounts {
		result[account.UserID] = account.Balance
	}
	return result, nil
}

// CreditCommissionInTx 在事务内为受益人入账一笔佣金。
// 余额与累计收益同步增加；第 1 层计入主动收益，其余层级计入被动收益。
// 参考号唯一，重复入账直接返回既有流水。
func (s *WalletService) CreditCommissionInTx(tx *gorm.DB, input WalletCommissionCreditInput) (*models.WalletTransaction, error) {
	if tx == nil {
		return nil, ErrWalletAccountUpdateFailed
	}
	if input.UserID == 0 {
		return nil, ErrWalletAccountNotFound
	}
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrWalletInvalidAmount
	}
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, ErrWalletTransactionCreateFailed
	}

	repo := s.walletRepo.WithTx(tx)
	exists, err := repo.GetTransactionByReference(reference)
	if err != nil {
		return nil, err
	}
	if exists != nil {
		return exists, nil
	}

	now := time.Now()
	account, err := s.ensureAccountForUpdate(repo, input.UserID, now)
	if err != nil {
		return nil, err
	}

	delta := repository.WalletBalanceDelta{
		Balance:     amount,
		TotalEarned: amount,
	}
	if input.Level == constants.DirectReferralLevel {
		delta.ActiveIncome = amount
	} else {
		delta.PassiveIncome = amount
	}
	before := account.Balance.Decimal.Round(2)
	after := before.Add(amount).Round(2)
	if err := repo.ApplyBalanceDelta(account.ID, delta); err != nil {
		return nil, ErrWalletAccountUpdateFailed
	}

	txn := &models.WalletTransaction{
		UserID:        input.UserID,
		AccountID:     account.ID,
		Type:          constants.WalletTxnTypeCommission,
		Direction:     constants.WalletTxnDirectionIn,
		Amount:        models.NewMoneyFromDecimal(amount),
		BalanceBefore: models.NewMoneyFromDecimal(before),
		BalanceAfter:  models.NewMoneyFromDecimal(after),
		Currency:      normalizeWalletCurrency(input.Currency),
		Reference:     reference,
		PurchaseID:    input.PurchaseID,
		SourceUserID:  input.SourceUserID,
		Level:         input.Level,
		Remark:        cleanWalletRemark(input.Remark, "推荐佣金入账"),
		CreatedAt:     now,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, ErrWalletTransactionCreateFailed
	}
	return txn, nil
}

// CreditPassiveOnlyInTx 在事务内为兜底账户入账未分配佣金。
// 只增加被动收益与累计收益，不进入可提现余额；层级固定记为兜底层级。
func (s *WalletService) CreditPassiveOnlyInTx(tx *gorm.DB, input WalletCommissionCreditInput) (*models.WalletTransaction, error) {
	if tx == nil {
		return nil, ErrWalletAccountUpdateFailed
	}
	if input.UserID == 0 {
		return nil, ErrWalletAccountNotFound
	}
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrWalletInvalidAmount
	}
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, ErrWalletTransactionCreateFailed
	}

	repo := s.walletRepo.WithTx(tx)
	exists, err := repo.GetTransactionByReference(reference)
	if err != nil {
		return nil, err
	}
	if exists != nil {
		return exists, nil
	}

	now := time.Now()
	account, err := s.ensureAccountForUpdate(repo, input.UserID, now)
	if err != nil {
		return nil, err
	}

	if err := repo.ApplyBalanceDelta(account.ID, repository.WalletBalanceDelta{
		PassiveIncome: amount,
		TotalEarned:   amount,
	}); err != nil {
		return nil, ErrWalletAccountUpdateFailed
	}

	// 余额不变，流水前后余额相同
	balance := account.Balance.Decimal.Round(2)
	txn := &models.WalletTransaction{
		UserID:        input.UserID,
		AccountID:     account.ID,
		Type:          constants.WalletTxnTypeCommission,
		Direction:     constants.WalletTxnDirectionIn,
		Amount:        models.NewMoneyFromDecimal(amount),
		BalanceBefore: models.NewMoneyFromDecimal(balance),
		BalanceAfter:  models.NewMoneyFromDecimal(balance),
		Currency:      normalizeWalletCurrency(input.Currency),
		Reference:     reference,
		PurchaseID:    input.PurchaseID,
		SourceUserID:  input.SourceUserID,
		Level:         constants.FallbackLevel,
		Remark:        cleanWalletRemark(input.Remark, "未分配佣金入账"),
		CreatedAt:     now,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, ErrWalletTransactionCreateFailed
	}
	return txn, nil
}

func (s *WalletService) getOrCreateAccount(userID uint) (*models.WalletAccount, error) {
	account, err := s.walletRepo.GetAccountByUserID(userID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	now := time.Now()
	account = &models.WalletAccount{
		UserID:    userID,
		Currency:  walletDefaultCurrency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.walletRepo.CreateAccount(account); err != nil {
		created, queryErr := s.walletRepo.GetAccountByUserID(userID)
		if queryErr == nil && created != nil {
			return created, nil
		}
		return nil, ErrWalletAccountCreateFailed
	}
	return account, nil
}

func (s *WalletService) ensureAccountForUpdate(repo *repository.GormWalletRepository, userID uint, now time.Time) (*models.WalletAccount, error) {
	account, err := repo.GetAccountByUserIDForUpdate(userID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	account = &models.WalletAccount{
		UserID:    userID,
		Currency:  walletDefaultCurrency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.CreateAccount(account); err != nil {
		created, queryErr := repo.GetAccountByUserIDForUpdate(userID)
		if queryErr == nil && created != nil {
			return created, nil
		}
		return nil, ErrWalletAccountCreateFailed
	}
	return account, nil
}

func normalizeWalletCurrency(currency string) string {
	normalized := strings.ToUpper(strings.TrimSpace(currency))
	if normalized == "" {
		return walletDefaultCurrency
	}
	return normalized
}

func cleanWalletRemark(raw string, fallback string) string {
	remark := strings.TrimSpace(raw)
	if remark == "" {
		return fallback
	}
	return remark
}

func buildPurchaseWalletReference(purchaseID uint, level int) string {
	return fmt.Sprintf("purchase:%d:level:%d", purchaseID, level)
}

func buildPurchaseUnassignedReference(purchaseID uint) string {
	return fmt.Sprintf("purchase:%d:unassigned", purchaseID)
}

func buildPayoutWalletReference(payoutID uint, action string) string {
	action = strings.TrimSpace(action)
	if action == "" {
		action = "wallet"
	}
	return fmt.Sprintf("payout:%d:%s", payoutID, action)
}
