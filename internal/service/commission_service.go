package service

import (
	"sort"

	"github.com/upline-next/internal/constants"
	"github.com/upline-next/internal/models"
	"github.com/upline-next/internal/repository"

	"github.com/shopspring/decimal"
)

// CommissionService 佣金表解析与分配计算服务
type CommissionService struct {
	packageRepo repository.PackageRepository
	maxLevel    int
}

// NewCommissionService 创建佣金服务
func NewCommissionService(packageRepo repository.PackageRepository, maxLevel int) *CommissionService {
	if maxLevel <= 0 {
		maxLevel = constants.MaxCommissionLevel
	}
	return &CommissionService{
		packageRepo: packageRepo,
		maxLevel:    maxLevel,
	}
}

// ResolveTable 解析套餐的佣金层级表。
// 优先使用持久化层级；没有时回退到已知价位的内置默认表。金额为权威值。
func (s *CommissionService) ResolveTable(pkg *models.MemberPackage) ([]models.CommissionTier, error) {
	if pkg == nil {
		return nil, ErrPackageNotFound
	}
	tiers, err := s.packageRepo.GetTiers(pkg.ID)
	if err != nil {
		return nil, err
	}
	if len(tiers) == 0 {
		tiers = DefaultTableFor(pkg.Price.Decimal)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Level < tiers[j].Level })
	return tiers, nil
}

// PoolTotal 佣金池总额为各层金额之和
func (s *CommissionService) PoolTotal(tiers []models.CommissionTier) decimal.Decimal {
	total := decimal.Zero
	for _, tier := range tiers {
		total = total.Add(tier.Amount.Decimal)
	}
	return total.Round(2)
}

// ValidateTiers 校验层级表：层级唯一且在 1..maxLevel 内，金额非负
func (s *CommissionService) ValidateTiers(tiers []models.CommissionTier) error {
	seen := make(map[int]bool, len(tiers))
	for _, tier := range tiers {
		if tier.Level < 1 || tier.Level > s.maxLevel {
			return ErrTierLevelInvalid
		}
		if seen[tier.Level] {
			return ErrTierLevelDuplicated
		}
		seen[tier.Level] = true
		if tier.Amount.Decimal.IsNegative() {
			return ErrTierAmountInvalid
		}
	}
	return nil
}

// DistributionLine 计算出的单层分配
type DistributionLine struct {
	Level         int
	BeneficiaryID uint
	Percentage    decimal.Decimal
	Amount        decimal.Decimal
}

// CalculationResult 佣金分配计算结果。
// Unassigned 恒等于 PoolTotal 减去各行金额之和。
type CalculationResult struct {
	Lines      []DistributionLine
	PoolTotal  decimal.Decimal
	Unassigned decimal.Decimal
}

// Calculate 纯计算：对每个既有存活上级、金额又非零的层级产出一行分配。
// 不触达存储，同样输入必得同样输出。
func (s *CommissionService) Calculate(tiers []models.CommissionTier, ancestors []Ancestor) CalculationResult {
	byLevel := make(map[int]*models.User, len(ancestors))
	for _, ancestor := range ancestors {
		if ancestor.User != nil && ancestor.User.ID != 0 {
			byLevel[ancestor.Level] = ancestor.User
		}
	}

	result := CalculationResult{
		Lines:     make([]DistributionLine, 0, len(tiers)),
		PoolTotal: s.PoolTotal(tiers),
	}
	emitted := decimal.Zero
	for _, tier := range tiers {
		amount := tier.Amount.Decimal.Round(2)
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		beneficiary, ok := byLevel[tier.Level]
		if !ok {
			continue
		}
		result.Lines = append(result.Lines, DistributionLine{
			Level:         tier.Level,
			BeneficiaryID: beneficiary.ID,
			Percentage:    tier.Percentage.Decimal,
			Amount:        amount,
		})
		emitted = emitted.Add(amount)
	}
	result.Unassigned = result.PoolTotal.Sub(emitted).Round(2)
	return result
}

// DefaultTableFor 返回已知价位的内置默认佣金表，未知价位返回空表。
func DefaultTableFor(price decimal.Decimal) []models.CommissionTier {
	builder, ok := defaultTableBuilders[price.Round(2).StringFixed(2)]
	if !ok {
		return nil
	}
	return builder()
}

// 内置默认佣金表，按套餐价格索引
var defaultTableBuilders = map[string]func() []models.CommissionTier{
	"500.00": buildPrimeTable,
}

// buildPrimeTable 500 价位默认表：
// 第 1-5 层 250/100/50/10/10，第 6-20 层各 5，第 21-120 层各 0.05，合计 500。
func buildPrimeTable() []models.CommissionTier {
	tiers := make([]models.CommissionTier, 0, 120)
	head := []struct {
		amount     string
		percentage string
	}{
		{"250", "50"},
		{"100", "20"},
		{"50", "10"},
		{"10", "2"},
		{"10", "2"},
	}
	for i, h := range head {
		tiers = append(tiers, newDefaultTier(i+1, h.amount, h.percentage))
	}
	for level := 6; level <= 20; level++ {
		tiers = append(tiers, newDefaultTier(level, "5", "1"))
	}
	for level := 21; level <= 120; level++ {
		tiers = append(tiers, newDefaultTier(level, "0.05", "0.01"))
	}
	return tiers
}

func newDefaultTier(level int, amount, percentage string) models.CommissionTier {
	amt, _ := decimal.NewFromString(amount)
	pct, _ := decimal.NewFromString(percentage)
	return models.CommissionTier{
		Level:      level,
		Amount:     models.NewMoneyFromDecimal(amt),
		Percentage: models.NewMoneyFromDecimal(pct),
	}
}
