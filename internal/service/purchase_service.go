package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/upline-next/internal/constants"
	"github.com/upline-next/internal/logger"
	"github.com/upline-next/internal/models"
	"github.com/upline-next/internal/queue"
	"github.com/upline-next/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseService 套餐购买编排服务
type PurchaseService struct {
	purchaseRepo  repository.PurchaseRepository
	packageRepo   repository.PackageRepository
	userRepo      repository.UserRepository
	genealogySvc  *GenealogyService
	commissionSvc *CommissionService
	ledgerSvc     *LedgerService
	queueClient   *queue.Client
}

// NewPurchaseService 创建购买编排服务
func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	packageRepo repository.PackageRepository,
	userRepo repository.UserRepository,
	genealogySvc *GenealogyService,
	commissionSvc *CommissionService,
	ledgerSvc *LedgerService,
	queueClient *queue.Client,
) *PurchaseService {
	return &PurchaseService{
		purchaseRepo:  purchaseRepo,
		packageRepo:   packageRepo,
		userRepo:      userRepo,
		genealogySvc:  genealogySvc,
		commissionSvc: commissionSvc,
		ledgerSvc:     ledgerSvc,
		queueClient:   queueClient,
	}
}

// PurchaseInput 创建购买单输入
type PurchaseInput struct {
	UserID        uint
	PackageID     uint
	PaymentMethod string
}

// CreatePurchase 购买套餐并完成整条佣金分配链路：
// 校验 -> 回溯推荐链 -> 解析佣金表 -> 计算分配 -> 逐行入账 -> 兜底路由 -> 首购激活。
// 入账阶段单行失败不会中断整单，失败行保留 failed 状态供人工对账。
func (s *PurchaseService) CreatePurchase(input PurchaseInput) (*models.Purchase, error) {
	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Status == constants.UserStatusBlocked {
		return nil, ErrUserBlocked
	}

	pkg, err := s.packageRepo.GetByID(input.PackageID)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, ErrPackageNotFound
	}
	if pkg.Status != constants.PackageStatusActive {
		return nil, ErrPackageInactive
	}

	duplicated, err := s.purchaseRepo.HasCompletedPurchase(user.ID, pkg.ID)
	if err != nil {
		return nil, err
	}
	if duplicated {
		return nil, ErrPurchaseDuplicated
	}

	tiers, err := s.commissionSvc.ResolveTable(pkg)
	if err != nil {
		return nil, err
	}
	ancestors, err := s.genealogySvc.AncestorsOf(user.ID)
	if err != nil {
		return nil, err
	}
	calc := s.commissionSvc.Calculate(tiers, ancestors)

	now := time.Now()
	purchase := &models.Purchase{
		PurchaseNo:       buildPurchaseNo(),
		UserID:           user.ID,
		PackageID:        pkg.ID,
		PackageName:      pkg.Name,
		Price:            pkg.Price,
		PaymentMethod:    strings.TrimSpace(input.PaymentMethod),
		Status:           constants.PurchaseStatusPending,
		Currency:         walletDefaultCurrency,
		PoolTotal:        models.NewMoneyFromDecimal(calc.PoolTotal),
		UnassignedAmount: models.NewMoneyFromDecimal(calc.Unassigned),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// 购买单与分配明细快照先行落库，入账失败时明细仍可追溯
	if err := s.purchaseRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.purchaseRepo.WithTx(tx)
		if err := repo.Create(purchase); err != nil {
			return ErrPurchaseCreateFailed
		}
		if len(calc.Lines) == 0 {
			return nil
		}
		distributions := make([]models.CommissionDistribution, 0, len(calc.Lines))
		for _, line := range calc.Lines {
			distributions = append(distributions, models.CommissionDistribution{
				PurchaseID:    purchase.ID,
				Level:         line.Level,
				BeneficiaryID: line.BeneficiaryID,
				Percentage:    models.NewMoneyFromDecimal(line.Percentage),
				Amount:        models.NewMoneyFromDecimal(line.Amount),
				Status:        constants.DistributionStatusPending,
				CreatedAt:     now,
				UpdatedAt:     now,
			})
		}
		return repo.CreateDistributions(distributions)
	}); err != nil {
		return nil, err
	}

	distributions, err := s.purchaseRepo.ListDistributionsByPurchaseID(purchase.ID)
	if err != nil {
		return nil, err
	}
	applied, err := s.ledgerSvc.ApplyDistributions(purchase, distributions)
	if err != nil {
		return nil, err
	}
	routed, err := s.ledgerSvc.RouteUnassigned(purchase, calc.Unassigned)
	if err != nil {
		logger.Warnw("purchase_route_unassigned_failed",
			"purchase_id", purchase.ID,
			"amount", calc.Unassigned.StringFixed(2),
			"error", err,
		)
	}

	completedAt := time.Now()
	purchase.Status = constants.PurchaseStatusCompleted
	purchase.TotalDistributed = models.NewMoneyFromDecimal(applied.Distributed.Add(routed))
	purchase.CompletedAt = &completedAt
	purchase.UpdatedAt = completedAt
	if err := s.purchaseRepo.Update(purchase); err != nil {
		return nil, ErrPurchaseUpdateFailed
	}

	s.activateOnFirstPurchase(user, completedAt)

	return s.purchaseRepo.GetByIDWithDistributions(purchase.ID)
}

// GetPurchase 查询购买单（校验归属）
func (s *PurchaseService) GetPurchase(userID, purchaseID uint) (*models.Purchase, error) {
	purchase, err := s.purchaseRepo.GetByIDWithDistributions(purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, ErrPurchaseNotFound
	}
	if userID != 0 && purchase.UserID != userID {
		return nil, ErrPurchaseNotFound
	}
	return purchase, nil
}

// ListPurchases 分页查询购买单
func (s *PurchaseService) ListPurchases(filter repository.PurchaseListFilter) ([]models.Purchase, int64, error) {
	return s.purchaseRepo.List(filter)
}

// activateOnFirstPurchase 首次购买激活会员，并尽力推送激活通知
func (s *PurchaseService) activateOnFirstPurchase(user *models.User, at time.Time) {
	if user == nil || user.ActivatedAt != nil {
		return
	}
	if err := s.userRepo.MarkActivated(user.ID, at); err != nil {
		logger.Errorw("purchase_activate_user_failed", "user_id", user.ID, "error", err)
		return
	}
	user.Status = constants.UserStatusActive
	user.ActivatedAt = &at
	if s.queueClient == nil {
		return
	}
	if err := s.queueClient.EnqueueNotifyActivation(queue.NotifyActivationPayload{
		UserID: user.ID,
	}); err != nil {
		logger.Warnw("purchase_activation_notify_enqueue_failed", "user_id", user.ID, "error", err)
	}
}

func buildPurchaseNo() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return fmt.Sprintf("P%s%s", time.Now().Format("20060102"), raw[:12])
}
