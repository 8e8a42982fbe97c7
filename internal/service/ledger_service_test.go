package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/upline-next/internal/constants"
	"github.com/upline-next/internal/models"
	"github.com/upline-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupLedgerServiceTest(t *testing.T, fallbackUserID uint) (*LedgerService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:ledger_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Purchase{},
		&models.CommissionDistribution{},
		&models.WalletAccount{},
		&models.WalletTransaction{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	walletSvc := NewWalletService(repository.NewWalletRepository(db), repository.NewUserRepository(db))
	svc := NewLedgerService(walletSvc, repository.NewPurchaseRepository(db), repository.NewSettingRepository(db), nil, fallbackUserID)
	return svc, db
}

func createLedgerUser(t *testing.T, db *gorm.DB, id uint) {
	t.Helper()
	user := models.User{
		ID:           id,
		Email:        fmt.Sprintf("ledger_user_%d@example.com", id),
		PasswordHash: "hash",
		ReferralCode: fmt.Sprintf("LGCODE%04d", id),
		Status:       constants.UserStatusActive,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
}

func createLedgerPurchase(t *testing.T, db *gorm.DB, buyerID uint) *models.Purchase {
	t.Helper()
	now := time.Now()
	purchase := &models.Purchase{
		PurchaseNo: fmt.Sprintf("P%d", time.Now().UnixNano()),
		UserID:     buyerID,
		PackageID:  1,
		PackageName: "Prime Package",
		Price:      models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
		Status:     constants.PurchaseStatusPending,
		Currency:   "INR",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.Create(purchase).Error; err != nil {
		t.Fatalf("create purchase failed: %v", err)
	}
	return purchase
}

func pendingDistribution(purchaseID uint, level int, beneficiaryID uint, amount int64) models.CommissionDistribution {
	now := time.Now()
	return models.CommissionDistribution{
		PurchaseID:    purchaseID,
		Level:         level,
		BeneficiaryID: beneficiaryID,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(amount)),
		Status:        constants.DistributionStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func loadWalletAccount(t *testing.T, db *gorm.DB, userID uint) *models.WalletAccount {
	t.Helper()
	var account models.WalletAccount
	if err := db.Where("user_id = ?", userID).First(&account).Error; err != nil {
		t.Fatalf("load wallet account failed: %v", err)
	}
	return &account
}

func TestApplyDistributionsBucketsByLevel(t *testing.T) {
	svc, db := setupLedgerServiceTest(t, 0)
	createLedgerUser(t, db, 1)
	createLedgerUser(t, db, 2)
	createLedgerUser(t, db, 3)
	purchase := createLedgerPurchase(t, db, 3)

	distributions := []models.CommissionDistribution{
		pendingDistribution(purchase.ID, 1, 2, 250),
		pendingDistribution(purchase.ID, 2, 1, 100),
	}
	if err := db.Create(&distributions).Error; err != nil {
		t.Fatalf("create distributions failed: %v", err)
	}

	result, err := svc.ApplyDistributions(purchase, distributions)
	if err != nil {
		t.Fatalf("apply distributions failed: %v", err)
	}
	if result.FailedCount != 0 {
		t.Fatalf("failed count want 0 got %d", result.FailedCount)
	}
	if !result.Distributed.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("distributed want 350 got %s", result.Distributed.String())
	}

	// 第 1 层入主动收益，第 2 层入被动收益，余额都同步增加
	direct := loadWalletAccount(t, db, 2)
	if !direct.Balance.Decimal.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("direct balance want 250 got %s", direct.Balance.String())
	}
	if !direct.ActiveIncome.Decimal.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("direct active income want 250 got %s", direct.ActiveIncome.String())
	}
	if !direct.PassiveIncome.Decimal.IsZero() {
		t.Fatalf("direct passive income want 0 got %s", direct.PassiveIncome.String())
	}

	upper := loadWalletAccount(t, db, 1)
	if !upper.Balance.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("upper balance want 100 got %s", upper.Balance.String())
	}
	if !upper.PassiveIncome.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("upper passive income want 100 got %s", upper.PassiveIncome.String())
	}
	if !upper.ActiveIncome.Decimal.IsZero() {
		t.Fatalf("upper active income want 0 got %s", upper.ActiveIncome.String())
	}

	var txnCount int64
	db.Model(&models.WalletTransaction{}).Where("purchase_id = ?", purchase.ID).Count(&txnCount)
	if txnCount != 2 {
		t.Fatalf("transaction count want 2 got %d", txnCount)
	}
}

func TestApplyDistributionsFailureIsolation(t *testing.T) {
	svc, db := setupLedgerServiceTest(t, 0)
	createLedgerUser(t, db, 1)
	createLedgerUser(t, db, 3)
	purchase := createLedgerPurchase(t, db, 3)

	distributions := []models.CommissionDistribution{
		pendingDistribution(purchase.ID, 1, 0, 250), // 受益人非法，单行失败
		pendingDistribution(purchase.ID, 2, 1, 100),
	}
	if err := db.Create(&distributions).Error; err != nil {
		t.Fatalf("create distributions failed: %v", err)
	}

	result, err := svc.ApplyDistributions(purchase, distributions)
	if err != nil {
		t.Fatalf("apply distributions failed: %v", err)
	}
	if result.FailedCount != 1 {
		t.Fatalf("failed count want 1 got %d", result.FailedCount)
	}
	if !result.Distributed.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("distributed want 100 got %s", result.Distributed.String())
	}

	var failed models.CommissionDistribution
	if err := db.Where("purchase_id = ? AND level = ?", purchase.ID, 1).First(&failed).Error; err != nil {
		t.Fatalf("load failed line failed: %v", err)
	}
	if failed.Status != constants.DistributionStatusFailed {
		t.Fatalf("failed line status want failed got %s", failed.Status)
	}
	if failed.FailReason == "" {
		t.Fatalf("failed line should record reason")
	}

	var distributed models.CommissionDistribution
	if err := db.Where("purchase_id = ? AND level = ?", purchase.ID, 2).First(&distributed).Error; err != nil {
		t.Fatalf("load distributed line failed: %v", err)
	}
	if distributed.Status != constants.DistributionStatusDistributed {
		t.Fatalf("distributed line status want distributed got %s", distributed.Status)
	}
}

func TestApplyDistributionsIdempotentByReference(t *testing.T) {
	svc, db := setupLedgerServiceTest(t, 0)
	createLedgerUser(t, db, 1)
	createLedgerUser(t, db, 3)
	purchase := createLedgerPurchase(t, db, 3)

	distributions := []models.CommissionDistribution{
		pendingDistribution(purchase.ID, 1, 1, 250),
	}
	if err := db.Create(&distributions).Error; err != nil {
		t.Fatalf("create distributions failed: %v", err)
	}

	if _, err := svc.ApplyDistributions(purchase, distributions); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	// 状态重置后重放同一行，参考号去重保证不会二次入账
	distributions[0].Status = constants.DistributionStatusPending
	if _, err := svc.ApplyDistributions(purchase, distributions); err != nil {
		t.Fatalf("second apply failed: %v", err)
	}

	account := loadWalletAccount(t, db, 1)
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("balance want 250 got %s", account.Balance.String())
	}
	var txnCount int64
	db.Model(&models.WalletTransaction{}).Where("purchase_id = ?", purchase.ID).Count(&txnCount)
	if txnCount != 1 {
		t.Fatalf("transaction count want 1 got %d", txnCount)
	}
}

func TestRouteUnassignedCreditsPassiveOnly(t *testing.T) {
	svc, db := setupLedgerServiceTest(t, 9)
	createLedgerUser(t, db, 9)
	createLedgerUser(t, db, 3)
	purchase := createLedgerPurchase(t, db, 3)

	routed, err := svc.RouteUnassigned(purchase, decimal.NewFromFloat(149.85))
	if err != nil {
		t.Fatalf("route unassigned failed: %v", err)
	}
	if !routed.Equal(decimal.NewFromFloat(149.85)) {
		t.Fatalf("routed want 149.85 got %s", routed.String())
	}

	// 兜底账户只进被动收益与累计收益，不动可提现余额
	account := loadWalletAccount(t, db, 9)
	if !account.Balance.Decimal.IsZero() {
		t.Fatalf("fallback balance want 0 got %s", account.Balance.String())
	}
	if !account.PassiveIncome.Decimal.Equal(decimal.NewFromFloat(149.85)) {
		t.Fatalf("fallback passive income want 149.85 got %s", account.PassiveIncome.String())
	}
	if !account.TotalEarned.Decimal.Equal(decimal.NewFromFloat(149.85)) {
		t.Fatalf("fallback total earned want 149.85 got %s", account.TotalEarned.String())
	}

	var routedLine models.CommissionDistribution
	if err := db.Where("purchase_id = ? AND status = ?", purchase.ID, constants.DistributionStatusRouted).First(&routedLine).Error; err != nil {
		t.Fatalf("load routed line failed: %v", err)
	}
	if routedLine.Level != constants.FallbackLevel {
		t.Fatalf("routed level want %d got %d", constants.FallbackLevel, routedLine.Level)
	}
	if routedLine.BeneficiaryID != 9 {
		t.Fatalf("routed beneficiary want 9 got %d", routedLine.BeneficiaryID)
	}
}

func TestRouteUnassignedDropsWithoutFallback(t *testing.T) {
	svc, db := setupLedgerServiceTest(t, 0)
	createLedgerUser(t, db, 3)
	purchase := createLedgerPurchase(t, db, 3)

	routed, err := svc.RouteUnassigned(purchase, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("route unassigned failed: %v", err)
	}
	if !routed.IsZero() {
		t.Fatalf("routed want 0 got %s", routed.String())
	}
	var count int64
	db.Model(&models.CommissionDistribution{}).Where("purchase_id = ?", purchase.ID).Count(&count)
	if count != 0 {
		t.Fatalf("no routed line expected, got %d", count)
	}
}

func TestFallbackUserIDPrefersSetting(t *testing.T) {
	svc, db := setupLedgerServiceTest(t, 5)
	if svc.FallbackUserID() != 5 {
		t.Fatalf("fallback want config value 5 got %d", svc.FallbackUserID())
	}

	setting := models.Setting{
		Key: constants.SettingKeyCommissionConfig,
		ValueJSON: models.JSON(map[string]interface{}{
			"fallback_user_id": float64(77),
		}),
	}
	if err := db.Create(&setting).Error; err != nil {
		t.Fatalf("create setting failed: %v", err)
	}
	if svc.FallbackUserID() != 77 {
		t.Fatalf("fallback want setting value 77 got %d", svc.FallbackUserID())
	}
}
