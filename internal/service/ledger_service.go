package service

import (
	"time"

	"github.com/upline-next/internal/constants"
	"github.com/upline-next/internal/logger"
	"github.com/upline-next/internal/models"
	"github.com/upline-next/internal/queue"
	"github.com/upline-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerService 佣金入账服务。
// 负责把计算出的分配明细逐行落到钱包，并把未分配部分路由到兜底账户。
type LedgerService struct {
	walletSvc    *WalletService
	purchaseRepo repository.PurchaseRepository
	settingRepo  repository.SettingRepository
	queueClient  *queue.Client
	fallbackUserID uint
}

// NewLedgerService 创建佣金入账服务
func NewLedgerService(
	walletSvc *WalletService,
	purchaseRepo repository.PurchaseRepository,
	settingRepo repository.SettingRepository,
	queueClient *queue.Client,
	fallbackUserID uint,
) *LedgerService {
	return &LedgerService{
		walletSvc:      walletSvc,
		purchaseRepo:   purchaseRepo,
		settingRepo:    settingRepo,
		queueClient:    queueClient,
		fallbackUserID: fallbackUserID,
	}
}

// ApplyResult 逐行入账结果
type ApplyResult struct {
	Distributed decimal.Decimal // 成功入账的佣金合计
	FailedCount int             // 入账失败的行数
}

// ApplyDistributions 逐行执行佣金入账。
// 每行使用独立事务：单行失败只标记该行 failed，不影响其余行。
// 入账成功后尽力推送佣金通知，通知失败不影响入账结果。
func (s *LedgerService) ApplyDistributions(purchase *models.Purchase, distributions []models.CommissionDistribution) (*ApplyResult, error) {
	if purchase == nil {
		return nil, ErrPurchaseNotFound
	}
	result := &ApplyResult{Distributed: decimal.Zero}
	for i := range distributions {
		line := &distributions[i]
		if line.Status != constants.DistributionStatusPending {
			if line.Status == constants.DistributionStatusDistributed {
				result.Distributed = result.Distributed.Add(line.Amount.Decimal)
			}
			continue
		}
		if err := s.applyLine(purchase, line); err != nil {
			result.FailedCount++
			line.Status = constants.DistributionStatusFailed
			line.FailReason = err.Error()
			line.UpdatedAt = time.Now()
			if updateErr := s.purchaseRepo.UpdateDistribution(line); updateErr != nil {
				logger.Errorw("ledger_distribution_mark_failed_error",
					"purchase_id", purchase.ID,
					"level", line.Level,
					"error", updateErr,
				)
			}
			logger.Warnw("ledger_distribution_failed",
				"purchase_id", purchase.ID,
				"level", line.Level,
				"beneficiary_id", line.BeneficiaryID,
				"amount", line.Amount.String(),
				"error", err,
			)
			continue
		}
		result.Distributed = result.Distributed.Add(line.Amount.Decimal)
		s.notifyCommission(purchase, line)
	}
	result.Distributed = result.Distributed.Round(2)
	return result, nil
}

// applyLine 单行入账：钱包贷记与状态翻转在同一事务内完成
func (s *LedgerService) applyLine(purchase *models.Purchase, line *models.CommissionDistribution) error {
	return s.purchaseRepo.Transaction(func(tx *gorm.DB) error {
		_, err := s.walletSvc.CreditCommissionInTx(tx, WalletCommissionCreditInput{
			UserID:       line.BeneficiaryID,
			Amount:       line.Amount,
			Level:        line.Level,
			PurchaseID:   purchase.ID,
			SourceUserID: purchase.UserID,
			Currency:     purchase.Currency,
			Reference:    buildPurchaseWalletReference(purchase.ID, line.Level),
		})
		if err != nil {
			return err
		}
		line.Status = constants.DistributionStatusDistributed
		line.FailReason = ""
		line.UpdatedAt = time.Now()
		return s.purchaseRepo.WithTx(tx).UpdateDistribution(line)
	})
}

// RouteUnassigned 把未分配佣金路由到兜底账户。
// 兜底账户只进被动收益与累计收益，不进可提现余额，层级固定记为 120。
// 未配置兜底账户时记录日志后静默丢弃，返回路由金额 0。
func (s *LedgerService) RouteUnassigned(purchase *models.Purchase, amount decimal.Decimal) (decimal.Decimal, error) {
	if purchase == nil {
		return decimal.Zero, ErrPurchaseNotFound
	}
	amount = amount.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, nil
	}
	fallbackID := s.FallbackUserID()
	if fallbackID == 0 {
		logger.Warnw("ledger_unassigned_dropped_no_fallback",
			"purchase_id", purchase.ID,
			"amount", amount.StringFixed(2),
		)
		return decimal.Zero, nil
	}

	err := s.purchaseRepo.Transaction(func(tx *gorm.DB) error {
		_, err := s.walletSvc.CreditPassiveOnlyInTx(tx, WalletCommissionCreditInput{
			UserID:       fallbackID,
			Amount:       models.NewMoneyFromDecimal(amount),
			PurchaseID:   purchase.ID,
			SourceUserID: purchase.UserID,
			Currency:     purchase.Currency,
			Reference:    buildPurchaseUnassignedReference(purchase.ID),
		})
		if err != nil {
			return err
		}
		now := time.Now()
		routed := models.CommissionDistribution{
			PurchaseID:    purchase.ID,
			Level:         constants.FallbackLevel,
			BeneficiaryID: fallbackID,
			Amount:        models.NewMoneyFromDecimal(amount),
			Status:        constants.DistributionStatusRouted,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		return s.purchaseRepo.WithTx(tx).CreateDistributions([]models.CommissionDistribution{routed})
	})
	if err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// FallbackUserID 解析兜底账户：优先取后台设置，其次取配置文件
func (s *LedgerService) FallbackUserID() uint {
	if s.settingRepo != nil {
		setting, err := s.settingRepo.GetByKey(constants.SettingKeyCommissionConfig)
		if err != nil {
			logger.Warnw("ledger_fallback_setting_read_failed", "error", err)
		} else if setting != nil {
			if raw, ok := setting.ValueJSON["fallback_user_id"]; ok {
				if id, ok := raw.(float64); ok && id > 0 {
					return uint(id)
				}
			}
		}
	}
	return s.fallbackUserID
}

func (s *LedgerService) notifyCommission(purchase *models.Purchase, line *models.CommissionDistribution) {
	if s.queueClient == nil {
		return
	}
	err := s.queueClient.EnqueueNotifyCommission(queue.NotifyCommissionPayload{
		UserID:       line.BeneficiaryID,
		SourceUserID: purchase.UserID,
		PurchaseID:   purchase.ID,
		Level:        line.Level,
		Amount:       line.Amount.String(),
	})
	if err != nil {
		logger.Warnw("ledger_commission_notify_enqueue_failed",
			"purchase_id", purchase.ID,
			"beneficiary_id", line.BeneficiaryID,
			"level", line.Level,
			"error", err,
		)
	}
}
