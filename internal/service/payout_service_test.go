package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/upline-next/internal/config"
	"github.com/upline-next/internal/constants"
	"github.com/upline-next/internal/models"
	"github.com/upline-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPayoutServiceTest(t *testing.T) (*PayoutService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:payout_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.WalletAccount{},
		&models.WalletTransaction{},
		&models.PayoutRequest{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	svc := NewPayoutService(
		repository.NewPayoutRepository(db),
		walletRepo,
		NewWalletService(walletRepo, userRepo),
		NewGenealogyService(userRepo, 0),
		nil,
		config.PayoutConfig{
			MinAmount:          "500",
			AdminChargePercent: "10",
			TDSPercent:         "5",
		},
	)
	return svc, db
}

func createPayoutUser(t *testing.T, db *gorm.DB, id uint, sponsorID *uint) *models.User {
	t.Helper()
	user := &models.User{
		ID:           id,
		Email:        fmt.Sprintf("payout_user_%d@example.com", id),
		PasswordHash: "hash",
		ReferralCode: fmt.Sprintf("PYCODE%04d", id),
		SponsorID:    sponsorID,
		Status:       constants.UserStatusActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createPayoutWallet(t *testing.T, db *gorm.DB, userID uint, balance, active, passive float64) *models.WalletAccount {
	t.Helper()
	account := &models.WalletAccount{
		UserID:        userID,
		Balance:       models.NewMoneyFromDecimal(decimal.NewFromFloat(balance)),
		ActiveIncome:  models.NewMoneyFromDecimal(decimal.NewFromFloat(active)),
		PassiveIncome: models.NewMoneyFromDecimal(decimal.NewFromFloat(passive)),
		TotalEarned:   models.NewMoneyFromDecimal(decimal.NewFromFloat(active + passive)),
		Currency:      "INR",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("create wallet failed: %v", err)
	}
	return account
}

// unlockPassive 构造足量直推（含已购买）让被动收益解锁
func unlockPassive(t *testing.T, db *gorm.DB, sponsorID uint) {
	t.Helper()
	now := time.Now()
	base := sponsorID*1000 + 1
	for i := uint(0); i < 10; i++ {
		user := createPayoutUser(t, db, base+i, &sponsorID)
		if i < 7 {
			if err := db.Model(user).Update("activated_at", now).Error; err != nil {
				t.Fatalf("activate referral failed: %v", err)
			}
		}
	}
}

func TestWithdrawableLockedPassive(t *testing.T) {
	svc, db := setupPayoutServiceTest(t)
	createPayoutUser(t, db, 1, nil)
	createPayoutWallet(t, db, 1, 1000, 600, 400)

	summary, err := svc.Withdrawable(1)
	if err != nil {
		t.Fatalf("withdrawable failed: %v", err)
	}
	if summary.PassiveUnlocked {
		t.Fatalf("passive should be locked without referrals")
	}
	if !summary.Withdrawable.Decimal.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("withdrawable want 600 got %s", summary.Withdrawable.String())
	}
}

func TestWithdrawableUnlockedPassive(t *testing.T) {
	svc, db := setupPayoutServiceTest(t)
	createPayoutUser(t, db, 1, nil)
	createPayoutWallet(t, db, 1, 1000, 600, 400)
	unlockPassive(t, db, 1)

	summary, err := svc.Withdrawable(1)
	if err != nil {
		t.Fatalf("withdrawable failed: %v", err)
	}
	if !summary.PassiveUnlocked {
		t.Fatalf("passive should be unlocked")
	}
	if !summary.Withdrawable.Decimal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("withdrawable want 1000 got %s", summary.Withdrawable.String())
	}
}

func TestWithdrawableCappedByBalance(t *testing.T) {
	svc, db := setupPayoutServiceTest(t)
	createPayoutUser(t, db, 1, nil)
	// 兜底账户形态：收益桶大于余额时以余额封顶
	createPayoutWallet(t, db, 1, 100, 600, 0)

	summary, err := svc.Withdrawable(1)
	if err != nil {
		t.Fatalf("withdrawable failed: %v", err)
	}
	if !summary.Withdrawable.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("withdrawable want 100 got %s", summary.Withdrawable.String())
	}
}

func TestRequestPayoutValidations(t *testing.T) {
	svc, db := setupPayoutServiceTest(t)
	createPayoutUser(t, db, 1, nil)
	createPayoutWallet(t, db, 1, 2000, 2000, 0)

	if _, err := svc.RequestPayout(PayoutRequestInput{UserID: 1, Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(-5))}); !errors.Is(err, ErrWalletInvalidAmount) {
		t.Fatalf("negative amount want ErrWalletInvalidAmount got %v", err)
	}
	if _, err := svc.RequestPayout(PayoutRequestInput{UserID: 1, Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(499))}); !errors.Is(err, ErrPayoutBelowMinimum) {
		t.Fatalf("below minimum want ErrPayoutBelowMinimum got %v", err)
	}
	if _, err := svc.RequestPayout(PayoutRequestInput{UserID: 1, Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(3000))}); !errors.Is(err, ErrPayoutExceedsWithdrawable) {
		t.Fatalf("exceeding amount want ErrPayoutExceedsWithdrawable got %v", err)
	}

	payout, err := svc.RequestPayout(PayoutRequestInput{UserID: 1, Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(1000))})
	if err != nil {
		t.Fatalf("request payout failed: %v", err)
	}
	if payout.Status != constants.PayoutStatusPending {
		t.Fatalf("status want pending got %s", payout.Status)
	}
	if !payout.AdminCharge.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("admin charge want 100 got %s", payout.AdminCharge.String())
	}
	if !payout.TDSCharge.Decimal.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("tds charge want 50 got %s", payout.TDSCharge.String())
	}
	if !payout.NetAmount.Decimal.Equal(decimal.NewFromInt(850)) {
		t.Fatalf("net amount want 850 got %s", payout.NetAmount.String())
	}

	// 同一用户同时只允许一笔待审申请
	if _, err := svc.RequestPayout(PayoutRequestInput{UserID: 1, Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(500))}); !errors.Is(err, ErrPayoutPendingExists) {
		t.Fatalf("second pending want ErrPayoutPendingExists got %v", err)
	}
}

func TestApproveDrainsActiveFirst(t *testing.T) {
	svc, db := setupPayoutServiceTest(t)
	createPayoutUser(t, db, 1, nil)
	createPayoutWallet(t, db, 1, 1000, 600, 400)
	unlockPassive(t, db, 1)

	payout, err := svc.RequestPayout(PayoutRequestInput{UserID: 1, Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(1000))})
	if err != nil {
		t.Fatalf("request payout failed: %v", err)
	}

	approved, err := svc.Approve(PayoutReviewInput{PayoutID: payout.ID, AdminID: 7, Remark: "审核通过"})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.PayoutStatusApproved {
		t.Fatalf("status want approved got %s", approved.Status)
	}
	// 主动收益优先消耗：600 主动 + 400 被动
	if !approved.ActiveDebited.Decimal.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("active debited want 600 got %s", approved.ActiveDebited.String())
	}
	if !approved.PassiveDebited.Decimal.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("passive debited want 400 got %s", approved.PassiveDebited.String())
	}

	account := loadWalletAccount(t, db, 1)
	if !account.Balance.Decimal.IsZero() {
		t.Fatalf("balance want 0 got %s", account.Balance.String())
	}
	if !account.ActiveIncome.Decimal.IsZero() || !account.PassiveIncome.Decimal.IsZero() {
		t.Fatalf("income buckets should be drained, got active=%s passive=%s", account.ActiveIncome.String(), account.PassiveIncome.String())
	}
	if !account.TotalWithdrawn.Decimal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("total withdrawn want 1000 got %s", account.TotalWithdrawn.String())
	}

	// 扣款与到账两笔流水
	var txns []models.WalletTransaction
	if err := db.Where("payout_id = ?", payout.ID).Order("id ASC").Find(&txns).Error; err != nil {
		t.Fatalf("load transactions failed: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("transactions want 2 got %d", len(txns))
	}
	if txns[0].Type != constants.WalletTxnTypePayout || txns[1].Type != constants.WalletTxnTypePayoutReceived {
		t.Fatalf("transaction types unexpected: %s,%s", txns[0].Type, txns[1].Type)
	}
	if !txns[1].Amount.Decimal.Equal(decimal.NewFromInt(850)) {
		t.Fatalf("received amount want net 850 got %s", txns[1].Amount.String())
	}
}

func TestApproveRejectsLockedPassivePortion(t *testing.T) {
	svc, db := setupPayoutServiceTest(t)
	createPayoutUser(t, db, 1, nil)
	createPayoutWallet(t, db, 1, 1000, 600, 400)
	unlockPassive(t, db, 1)

	payout, err := svc.RequestPayout(PayoutRequestInput{UserID: 1, Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(1000))})
	if err != nil {
		t.Fatalf("request payout failed: %v", err)
	}
	// 审批前直推关系被清空，被动部分重新锁定
	if err := db.Model(&models.User{}).Where("sponsor_id = ?", 1).Update("sponsor_id", nil).Error; err != nil {
		t.Fatalf("clear referrals failed: %v", err)
	}

	if _, err := svc.Approve(PayoutReviewInput{PayoutID: payout.ID, AdminID: 7}); !errors.Is(err, ErrPayoutExceedsWithdrawable) {
		t.Fatalf("want ErrPayoutExceedsWithdrawable got %v", err)
	}

	var reloaded models.PayoutRequest
	if err := db.First(&reloaded, payout.ID).Error; err != nil {
		t.Fatalf("reload payout failed: %v", err)
	}
	if reloaded.Status != constants.PayoutStatusPending {
		t.Fatalf("status should stay pending, got %s", reloaded.Status)
	}
	account := loadWalletAccount(t, db, 1)
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance should be untouched, got %s", account.Balance.String())
	}
}

func TestRejectOnlyFlipsStatus(t *testing.T) {
	svc, db := setupPayoutServiceTest(t)
	createPayoutUser(t, db, 1, nil)
	createPayoutWallet(t, db, 1, 1000, 1000, 0)

	payout, err := svc.RequestPayout(PayoutRequestInput{UserID: 1, Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(600))})
	if err != nil {
		t.Fatalf("request payout failed: %v", err)
	}
	rejected, err := svc.Reject(PayoutReviewInput{PayoutID: payout.ID, AdminID: 7, Remark: "资料不全"})
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.PayoutStatusRejected {
		t.Fatalf("status want rejected got %s", rejected.Status)
	}
	account := loadWalletAccount(t, db, 1)
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance should be untouched, got %s", account.Balance.String())
	}
	// 拒绝后可以重新申请
	if _, err := svc.RequestPayout(PayoutRequestInput{UserID: 1, Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(600))}); err != nil {
		t.Fatalf("request after reject failed: %v", err)
	}
}

func TestRevertRestoresExactSplit(t *testing.T) {
	svc, db := setupPayoutServiceTest(t)
	createPayoutUser(t, db, 1, nil)
	createPayoutWallet(t, db, 1, 1000, 600, 400)
	unlockPassive(t, db, 1)

	payout, err := svc.RequestPayout(PayoutRequestInput{UserID: 1, Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(1000))})
	if err != nil {
		t.Fatalf("request payout failed: %v", err)
	}
	if _, err := svc.Approve(PayoutReviewInput{PayoutID: payout.ID, AdminID: 7}); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	reverted, err := svc.Revert(PayoutReviewInput{PayoutID: payout.ID, AdminID: 7, Remark: "打款失败"})
	if err != nil {
		t.Fatalf("revert failed: %v", err)
	}
	if reverted.Status != constants.PayoutStatusReverted {
		t.Fatalf("status want reverted got %s", reverted.Status)
	}
	if reverted.RevertedAt == nil {
		t.Fatalf("reverted_at should be set")
	}

	// 按记录的拆分精确回补
	account := loadWalletAccount(t, db, 1)
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance want 1000 got %s", account.Balance.String())
	}
	if !account.ActiveIncome.Decimal.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("active income want 600 got %s", account.ActiveIncome.String())
	}
	if !account.PassiveIncome.Decimal.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("passive income want 400 got %s", account.PassiveIncome.String())
	}
	if !account.TotalWithdrawn.Decimal.IsZero() {
		t.Fatalf("total withdrawn want 0 got %s", account.TotalWithdrawn.String())
	}

	// 到账流水被移除，退款流水追加
	var received int64
	db.Model(&models.WalletTransaction{}).Where("reference = ?", fmt.Sprintf("payout:%d:received", payout.ID)).Count(&received)
	if received != 0 {
		t.Fatalf("payout_received txn should be removed")
	}
	var refund models.WalletTransaction
	if err := db.Where("reference = ?", fmt.Sprintf("payout:%d:refund", payout.ID)).First(&refund).Error; err != nil {
		t.Fatalf("load refund txn failed: %v", err)
	}
	if refund.Type != constants.WalletTxnTypePayoutRefund {
		t.Fatalf("refund txn type want payout_refund got %s", refund.Type)
	}

	// 已撤销的单不能再撤销
	if _, err := svc.Revert(PayoutReviewInput{PayoutID: payout.ID, AdminID: 7}); !errors.Is(err, ErrPayoutStatusInvalid) {
		t.Fatalf("double revert want ErrPayoutStatusInvalid got %v", err)
	}
}

func TestRevertFallsBackToRatioApproximation(t *testing.T) {
	svc, db := setupPayoutServiceTest(t)
	createPayoutUser(t, db, 1, nil)
	createPayoutWallet(t, db, 1, 1000, 1000, 0)

	payout, err := svc.RequestPayout(PayoutRequestInput{UserID: 1, Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(600))})
	if err != nil {
		t.Fatalf("request payout failed: %v", err)
	}
	if _, err := svc.Approve(PayoutReviewInput{PayoutID: payout.ID, AdminID: 7}); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	// 模拟老数据：扣减记录缺失
	if err := db.Model(&models.PayoutRequest{}).Where("id = ?", payout.ID).Updates(map[string]interface{}{
		"active_debited":  decimal.Zero,
		"passive_debited": decimal.Zero,
	}).Error; err != nil {
		t.Fatalf("clear recorded split failed: %v", err)
	}
	// 审批后账上剩 400 主动 / 0 被动，比例近似应全部回补到主动收益
	if _, err := svc.Revert(PayoutReviewInput{PayoutID: payout.ID, AdminID: 7}); err != nil {
		t.Fatalf("revert failed: %v", err)
	}

	account := loadWalletAccount(t, db, 1)
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance want 1000 got %s", account.Balance.String())
	}
	if !account.ActiveIncome.Decimal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("active income want 1000 got %s", account.ActiveIncome.String())
	}
	if !account.PassiveIncome.Decimal.IsZero() {
		t.Fatalf("passive income want 0 got %s", account.PassiveIncome.String())
	}
}

func TestGetPayoutOwnership(t *testing.T) {
	svc, db := setupPayoutServiceTest(t)
	createPayoutUser(t, db, 1, nil)
	createPayoutUser(t, db, 2, nil)
	createPayoutWallet(t, db, 1, 1000, 1000, 0)

	payout, err := svc.RequestPayout(PayoutRequestInput{UserID: 1, Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(600))})
	if err != nil {
		t.Fatalf("request payout failed: %v", err)
	}
	if _, err := svc.GetPayout(2, payout.ID); !errors.Is(err, ErrPayoutNotFound) {
		t.Fatalf("other user's query want ErrPayoutNotFound got %v", err)
	}
	if _, err := svc.GetPayout(0, payout.ID); err != nil {
		t.Fatalf("admin query failed: %v", err)
	}
}
