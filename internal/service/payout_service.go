package service

import (
	"strings"
	"time"

	"github.com/upline-next/internal/config"
	"github.com/upline-next/internal/constants"
	"github.com/upline-next/internal/logger"
	"github.com/upline-next/internal/models"
	"github.com/upline-next/internal/queue"
	"github.com/upline-next/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PayoutService 提现服务：资格判定、申请、审核与撤销
type PayoutService struct {
	payoutRepo   repository.PayoutRepository
	walletRepo   repository.WalletRepository
	walletSvc    *WalletService
	genealogySvc *GenealogyService
	queueClient  *queue.Client

	minAmount          decimal.Decimal
	adminChargePct     decimal.Decimal
	tdsPct             decimal.Decimal
	directThreshold    int64
	purchasedThreshold int64
}

// NewPayoutService 创建提现服务
func NewPayoutService(
	payoutRepo repository.PayoutRepository,
	walletRepo repository.WalletRepository,
	walletSvc *WalletService,
	genealogySvc *GenealogyService,
	queueClient *queue.Client,
	cfg config.PayoutConfig,
) *PayoutService {
	svc := &PayoutService{
		payoutRepo:         payoutRepo,
		walletRepo:         walletRepo,
		walletSvc:          walletSvc,
		genealogySvc:       genealogySvc,
		queueClient:        queueClient,
		minAmount:          parseConfigDecimal(cfg.MinAmount, "500"),
		adminChargePct:     parseConfigDecimal(cfg.AdminChargePercent, "10"),
		tdsPct:             parseConfigDecimal(cfg.TDSPercent, "5"),
		directThreshold:    int64(cfg.DirectReferralThreshold),
		purchasedThreshold: int64(cfg.PurchasedReferralThreshold),
	}
	if svc.directThreshold <= 0 {
		svc.directThreshold = constants.PassiveUnlockDirectReferrals
	}
	if svc.purchasedThreshold <= 0 {
		svc.purchasedThreshold = constants.PassiveUnlockPurchasedReferrals
	}
	return svc
}

// WithdrawableSummary 可提现概览
type WithdrawableSummary struct {
	Balance        models.Money `json:"balance"`
	ActiveIncome   models.Money `json:"active_income"`
	PassiveIncome  models.Money `json:"passive_income"`
	PassiveUnlocked bool        `json:"passive_unlocked"`
	Withdrawable   models.Money `json:"withdrawable"`
}

// Withdrawable 计算可提现金额。
// 主动收益始终可提；被动收益需直推达标后解锁（直推人数与已购买人数双门槛）。
func (s *PayoutService) Withdrawable(userID uint) (*WithdrawableSummary, error) {
	account, err := s.walletSvc.GetAccount(userID)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.passiveUnlocked(userID)
	if err != nil {
		return nil, err
	}

	withdrawable := account.ActiveIncome.Decimal
	if unlocked {
		withdrawable = withdrawable.Add(account.PassiveIncome.Decimal)
	}
	// 兜底账户等场景下收益桶可能大于可提现余额，以余额封顶
	if withdrawable.GreaterThan(account.Balance.Decimal) {
		withdrawable = account.Balance.Decimal
	}
	if withdrawable.IsNegative() {
		withdrawable = decimal.Zero
	}
	return &WithdrawableSummary{
		Balance:         account.Balance,
		ActiveIncome:    account.ActiveIncome,
		PassiveIncome:   account.PassiveIncome,
		PassiveUnlocked: unlocked,
		Withdrawable:    models.NewMoneyFromDecimal(withdrawable),
	}, nil
}

// PayoutRequestInput 提现申请输入
type PayoutRequestInput struct {
	UserID uint
	Amount models.Money
}

// RequestPayout 创建提现申请。
// 申请时只做额度校验，真正的扣减发生在审核通过时；每人同时只允许一笔待审申请。
func (s *PayoutService) RequestPayout(input PayoutRequestInput) (*models.PayoutRequest, error) {
	if input.UserID == 0 {
		return nil, ErrUserNotFound
	}
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrWalletInvalidAmount
	}
	if amount.LessThan(s.minAmount) {
		return nil, ErrPayoutBelowMinimum
	}

	pending, err := s.payoutRepo.GetPendingByUserID(input.UserID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, ErrPayoutPendingExists
	}

	summary, err := s.Withdrawable(input.UserID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(summary.Withdrawable.Decimal) {
		return nil, ErrPayoutExceedsWithdrawable
	}

	adminCharge := amount.Mul(s.adminChargePct).Div(decimal.NewFromInt(100)).Round(2)
	tdsCharge := amount.Mul(s.tdsPct).Div(decimal.NewFromInt(100)).Round(2)
	net := amount.Sub(adminCharge).Sub(tdsCharge).Round(2)

	now := time.Now()
	payout := &models.PayoutRequest{
		PayoutNo:    buildPayoutNo(),
		UserID:      input.UserID,
		Amount:      models.NewMoneyFromDecimal(amount),
		AdminCharge: models.NewMoneyFromDecimal(adminCharge),
		TDSCharge:   models.NewMoneyFromDecimal(tdsCharge),
		NetAmount:   models.NewMoneyFromDecimal(net),
		Status:      constants.PayoutStatusPending,
		Currency:    walletDefaultCurrency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.payoutRepo.Create(payout); err != nil {
		return nil, err
	}
	return payout, nil
}

// PayoutReviewInput 提现审核输入
type PayoutReviewInput struct {
	PayoutID uint
	AdminID  uint
	Remark   string
}

// Approve 审核通过：按毛额扣减钱包，主动收益优先消耗，并记录两桶各自的扣减额。
func (s *PayoutService) Approve(input PayoutReviewInput) (*models.PayoutRequest, error) {
	var result *models.PayoutRequest
	err := s.payoutRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.payoutRepo.WithTx(tx)
		payout, err := repo.GetByIDForUpdate(input.PayoutID)
		if err != nil {
			return err
		}
		if payout == nil {
			return ErrPayoutNotFound
		}
		if payout.Status != constants.PayoutStatusPending {
			return ErrPayoutStatusInvalid
		}

		gross := payout.Amount.Decimal.Round(2)
		walletRepo := s.walletRepo.WithTx(tx)
		account, err := walletRepo.GetAccountByUserIDForUpdate(payout.UserID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrWalletAccountNotFound
		}
		if account.Balance.Decimal.LessThan(gross) {
			return ErrWalletInsufficientBalance
		}

		// 主动收益优先消耗，剩余部分落到被动收益
		activeDebit := account.ActiveIncome.Decimal.Round(2)
		if activeDebit.GreaterThan(gross) {
			activeDebit = gross
		}
		if activeDebit.IsNegative() {
			activeDebit = decimal.Zero
		}
		passiveDebit := gross.Sub(activeDebit).Round(2)
		if passiveDebit.GreaterThan(decimal.Zero) {
			unlocked, err := s.passiveUnlocked(payout.UserID)
			if err != nil {
				return err
			}
			if !unlocked {
				return ErrPayoutExceedsWithdrawable
			}
			if passiveDebit.GreaterThan(account.PassiveIncome.Decimal) {
				return ErrPayoutExceedsWithdrawable
			}
		}

		if err := walletRepo.ApplyBalanceDelta(account.ID, repository.WalletBalanceDelta{
			Balance:        gross.Neg(),
			ActiveIncome:   activeDebit.Neg(),
			PassiveIncome:  passiveDebit.Neg(),
			TotalWithdrawn: gross,
		}); err != nil {
			return ErrWalletAccountUpdateFailed
		}

		before := account.Balance.Decimal.Round(2)
		after := before.Sub(gross).Round(2)
		now := time.Now()
		debitTxn := &models.WalletTransaction{
			UserID:        payout.UserID,
			AccountID:     account.ID,
			Type:          constants.WalletTxnTypePayout,
			Direction:     constants.WalletTxnDirectionOut,
			Amount:        models.NewMoneyFromDecimal(gross),
			BalanceBefore: models.NewMoneyFromDecimal(before),
			BalanceAfter:  models.NewMoneyFromDecimal(after),
			Currency:      normalizeWalletCurrency(payout.Currency),
			Reference:     buildPayoutWalletReference(payout.ID, "debit"),
			PayoutID:      payout.ID,
			Remark:        cleanWalletRemark(input.Remark, "提现审核扣款"),
			CreatedAt:     now,
		}
		if err := walletRepo.CreateTransaction(debitTxn); err != nil {
			return ErrWalletTransactionCreateFailed
		}
		receivedTxn := &models.WalletTransaction{
			UserID:        payout.UserID,
			AccountID:     account.ID,
			Type:          constants.WalletTxnTypePayoutReceived,
			Direction:     constants.WalletTxnDirectionOut,
			Amount:        payout.NetAmount,
			BalanceBefore: models.NewMoneyFromDecimal(after),
			BalanceAfter:  models.NewMoneyFromDecimal(after),
			Currency:      normalizeWalletCurrency(payout.Currency),
			Reference:     buildPayoutWalletReference(payout.ID, "received"),
			PayoutID:      payout.ID,
			Remark:        "提现到账（扣除管理费与 TDS）",
			CreatedAt:     now,
		}
		if err := walletRepo.CreateTransaction(receivedTxn); err != nil {
			return ErrWalletTransactionCreateFailed
		}

		payout.Status = constants.PayoutStatusApproved
		payout.ActiveDebited = models.NewMoneyFromDecimal(activeDebit)
		payout.PassiveDebited = models.NewMoneyFromDecimal(passiveDebit)
		payout.ReviewedBy = &input.AdminID
		payout.ReviewedAt = &now
		payout.Remark = strings.TrimSpace(input.Remark)
		payout.UpdatedAt = now
		if err := repo.Update(payout); err != nil {
			return err
		}
		result = payout
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifyPayoutStatus(result)
	return result, nil
}

// Reject 审核拒绝：不动钱包，仅翻转状态。
func (s *PayoutService) Reject(input PayoutReviewInput) (*models.PayoutRequest, error) {
	var result *models.PayoutRequest
	err := s.payoutRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.payoutRepo.WithTx(tx)
		payout, err := repo.GetByIDForUpdate(input.PayoutID)
		if err != nil {
			return err
		}
		if payout == nil {
			return ErrPayoutNotFound
		}
		if payout.Status != constants.PayoutStatusPending {
			return ErrPayoutStatusInvalid
		}
		now := time.Now()
		payout.Status = constants.PayoutStatusRejected
		payout.ReviewedBy = &input.AdminID
		payout.ReviewedAt = &now
		payout.Remark = strings.TrimSpace(input.Remark)
		payout.UpdatedAt = now
		if err := repo.Update(payout); err != nil {
			return err
		}
		result = payout
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifyPayoutStatus(result)
	return result, nil
}

// Revert 撤销已通过的提现：按审批时记录的两桶扣减额精确回补。
// 老数据缺失扣减记录时退化为按当前两桶比例近似拆分，并记录告警日志。
// 撤销同时移除"提现到账"流水，并追加退款流水。
func (s *PayoutService) Revert(input PayoutReviewInput) (*models.PayoutRequest, error) {
	var result *models.PayoutRequest
	err := s.payoutRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.payoutRepo.WithTx(tx)
		payout, err := repo.GetByIDForUpdate(input.PayoutID)
		if err != nil {
			return err
		}
		if payout == nil {
			return ErrPayoutNotFound
		}
		if payout.Status != constants.PayoutStatusApproved {
			return ErrPayoutStatusInvalid
		}

		gross := payout.Amount.Decimal.Round(2)
		walletRepo := s.walletRepo.WithTx(tx)
		account, err := walletRepo.GetAccountByUserIDForUpdate(payout.UserID)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrWalletAccountNotFound
		}

		activeRefund, passiveRefund := s.splitRefund(payout, account, gross)
		if err := walletRepo.ApplyBalanceDelta(account.ID, repository.WalletBalanceDelta{
			Balance:        gross,
			ActiveIncome:   activeRefund,
			PassiveIncome:  passiveRefund,
			TotalWithdrawn: gross.Neg(),
		}); err != nil {
			return ErrWalletAccountUpdateFailed
		}

		if err := walletRepo.DeleteTransactionByReference(buildPayoutWalletReference(payout.ID, "received")); err != nil {
			return ErrWalletTransactionCreateFailed
		}

		before := account.Balance.Decimal.Round(2)
		after := before.Add(gross).Round(2)
		now := time.Now()
		refundTxn := &models.WalletTransaction{
			UserID:        payout.UserID,
			AccountID:     account.ID,
			Type:          constants.WalletTxnTypePayoutRefund,
			Direction:     constants.WalletTxnDirectionIn,
			Amount:        models.NewMoneyFromDecimal(gross),
			BalanceBefore: models.NewMoneyFromDecimal(before),
			BalanceAfter:  models.NewMoneyFromDecimal(after),
			Currency:      normalizeWalletCurrency(payout.Currency),
			Reference:     buildPayoutWalletReference(payout.ID, "refund"),
			PayoutID:      payout.ID,
			Remark:        cleanWalletRemark(input.Remark, "提现撤销退回"),
			CreatedAt:     now,
		}
		if err := walletRepo.CreateTransaction(refundTxn); err != nil {
			return ErrWalletTransactionCreateFailed
		}

		payout.Status = constants.PayoutStatusReverted
		payout.ReviewedBy = &input.AdminID
		payout.RevertedAt = &now
		payout.Remark = strings.TrimSpace(input.Remark)
		payout.UpdatedAt = now
		if err := repo.Update(payout); err != nil {
			return err
		}
		result = payout
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifyPayoutStatus(result)
	return result, nil
}

// GetPayout 查询提现单（可选校验归属）
func (s *PayoutService) GetPayout(userID, payoutID uint) (*models.PayoutRequest, error) {
	payout, err := s.payoutRepo.GetByID(payoutID)
	if err != nil {
		return nil, err
	}
	if payout == nil {
		return nil, ErrPayoutNotFound
	}
	if userID != 0 && payout.UserID != userID {
		return nil, ErrPayoutNotFound
	}
	return payout, nil
}

// ListPayouts 分页查询提现单
func (s *PayoutService) ListPayouts(filter repository.PayoutListFilter) ([]models.PayoutRequest, int64, error) {
	return s.payoutRepo.List(filter)
}

// TotalRequestCount 全量提现申请数（管理端只读指标，不参与资格判定）
func (s *PayoutService) TotalRequestCount() (int64, error) {
	return s.payoutRepo.CountAll()
}

// passiveUnlocked 被动收益提现资格：直推达标且其中足量已购买套餐
func (s *PayoutService) passiveUnlocked(userID uint) (bool, error) {
	stats, err := s.genealogySvc.DirectStats(userID)
	if err != nil {
		return false, err
	}
	return stats.Total >= s.directThreshold && stats.Activated >= s.purchasedThreshold, nil
}

// splitRefund 计算撤销时两桶各自的回补金额
func (s *PayoutService) splitRefund(payout *models.PayoutRequest, account *models.WalletAccount, gross decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	recorded := payout.ActiveDebited.Decimal.Add(payout.PassiveDebited.Decimal).Round(2)
	if recorded.Equal(gross) && gross.GreaterThan(decimal.Zero) {
		return payout.ActiveDebited.Decimal.Round(2), payout.PassiveDebited.Decimal.Round(2)
	}

	// 扣减记录缺失，按当前两桶比例近似拆分
	total := account.ActiveIncome.Decimal.Add(account.PassiveIncome.Decimal)
	var activeRefund decimal.Decimal
	if total.GreaterThan(decimal.Zero) {
		activeRefund = gross.Mul(account.ActiveIncome.Decimal).Div(total).Round(2)
	} else {
		activeRefund = gross
	}
	passiveRefund := gross.Sub(activeRefund).Round(2)
	logger.Warnw("payout_reversal_ratio_approximation",
		"payout_id", payout.ID,
		"user_id", payout.UserID,
		"gross", gross.StringFixed(2),
		"active_refund", activeRefund.StringFixed(2),
		"passive_refund", passiveRefund.StringFixed(2),
	)
	return activeRefund, passiveRefund
}

func (s *PayoutService) notifyPayoutStatus(payout *models.PayoutRequest) {
	if s.queueClient == nil || payout == nil {
		return
	}
	err := s.queueClient.EnqueueNotifyPayoutStatus(queue.NotifyPayoutStatusPayload{
		UserID:   payout.UserID,
		PayoutID: payout.ID,
		Status:   payout.Status,
	})
	if err != nil {
		logger.Warnw("payout_status_notify_enqueue_failed",
			"payout_id", payout.ID,
			"status", payout.Status,
			"error", err,
		)
	}
}

func parseConfigDecimal(raw, fallback string) decimal.Decimal {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		value, _ = decimal.NewFromString(fallback)
	}
	return value
}

func buildPayoutNo() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "W" + time.Now().Format("20060102") + raw[:12]
}
