package service

import (
	"errors"
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

func setupPurchaseServiceTest(t *testing.T, fallbackUserID uint) (*PurchaseService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:purchase_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.MemberPackage{},
		&models.CommissionTier{},
		&models.Purchase{},
		&models.CommissionDistribution{},
		&models.WalletAccount{},
		&models.WalletTransaction{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	userRepo := repository.NewUserRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	walletSvc := NewWalletService(repository.NewWalletRepository(db), userRepo)
	genealogySvc := NewGenealogyService(userRepo, 0)
	commissionSvc := NewCommissionService(packageRepo, 0)
	ledgerSvc := NewLedgerService(walletSvc, purchaseRepo, repository.NewSettingRepository(db), nil, fallbackUserID)
	svc := NewPurchaseService(purchaseRepo, packageRepo, userRepo, genealogySvc, commissionSvc, ledgerSvc, nil)
	return svc, db
}

func createPurchaseUser(t *testing.T, db *gorm.DB, id uint, sponsorID *uint) *models.User {
	t.Helper()
	user := &models.User{
		ID:           id,
		Email:        fmt.Sprintf("purchase_user_%d@example.com", id),
		PasswordHash: "hash",
		ReferralCode: fmt.Sprintf("PCCODE%04d", id),
		SponsorID:    sponsorID,
		Status:       constants.UserStatusFree,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createPrimePackage(t *testing.T, db *gorm.DB) *models.MemberPackage {
	t.Helper()
	pkg := &models.MemberPackage{
		Name:   "Prime Package",
		Slug:   "prime-500",
		Price:  models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
		Status: constants.PackageStatusActive,
	}
	if err := db.Create(pkg).Error; err != nil {
		t.Fatalf("create package failed: %v", err)
	}
	return pkg
}

func TestCreatePurchaseDistributesAlongChain(t *testing.T) {
	svc, db := setupPurchaseServiceTest(t, 9)
	createPurchaseUser(t, db, 9, nil) // 兜底账户
	createPurchaseUser(t, db, 1, nil)
	createPurchaseUser(t, db, 2, uintPtr(1))
	buyer := createPurchaseUser(t, db, 3, uintPtr(2))
	pkg := createPrimePackage(t, db)

	purchase, err := svc.CreatePurchase(PurchaseInput{UserID: buyer.ID, PackageID: pkg.ID, PaymentMethod: "bank_transfer"})
	if err != nil {
		t.Fatalf("create purchase failed: %v", err)
	}
	if purchase.Status != constants.PurchaseStatusCompleted {
		t.Fatalf("status want completed got %s", purchase.Status)
	}
	if !purchase.PoolTotal.Decimal.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("pool total want 500 got %s", purchase.PoolTotal.String())
	}
	// 只有 2 个存活上级：第 1 层 250 + 第 2 层 100，剩余 150 走兜底
	if !purchase.UnassignedAmount.Decimal.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("unassigned want 150 got %s", purchase.UnassignedAmount.String())
	}
	if !purchase.TotalDistributed.Decimal.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("total distributed want 500 got %s", purchase.TotalDistributed.String())
	}

	// 直推拿主动收益
	var direct models.WalletAccount
	if err := db.Where("user_id = ?", 2).First(&direct).Error; err != nil {
		t.Fatalf("load direct wallet failed: %v", err)
	}
	if !direct.ActiveIncome.Decimal.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("direct active income want 250 got %s", direct.ActiveIncome.String())
	}

	// 兜底账户收走未分配部分，且不进余额
	var fallback models.WalletAccount
	if err := db.Where("user_id = ?", 9).First(&fallback).Error; err != nil {
		t.Fatalf("load fallback wallet failed: %v", err)
	}
	if !fallback.PassiveIncome.Decimal.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("fallback passive income want 150 got %s", fallback.PassiveIncome.String())
	}
	if !fallback.Balance.Decimal.IsZero() {
		t.Fatalf("fallback balance want 0 got %s", fallback.Balance.String())
	}

	// 分配明细：2 行 distributed + 1 行 routed
	var lines []models.CommissionDistribution
	if err := db.Where("purchase_id = ?", purchase.ID).Order("level ASC").Find(&lines).Error; err != nil {
		t.Fatalf("load distributions failed: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("distribution lines want 3 got %d", len(lines))
	}
}

func TestCreatePurchaseActivatesOnFirstPurchase(t *testing.T) {
	svc, db := setupPurchaseServiceTest(t, 0)
	buyer := createPurchaseUser(t, db, 1, nil)
	pkg := createPrimePackage(t, db)

	if _, err := svc.CreatePurchase(PurchaseInput{UserID: buyer.ID, PackageID: pkg.ID}); err != nil {
		t.Fatalf("create purchase failed: %v", err)
	}

	var reloaded models.User
	if err := db.First(&reloaded, buyer.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if reloaded.Status != constants.UserStatusActive {
		t.Fatalf("status want active got %s", reloaded.Status)
	}
	if reloaded.ActivatedAt == nil {
		t.Fatalf("activated_at should be set")
	}
}

func TestCreatePurchaseDuplicateGuard(t *testing.T) {
	svc, db := setupPurchaseServiceTest(t, 0)
	buyer := createPurchaseUser(t, db, 1, nil)
	pkg := createPrimePackage(t, db)

	if _, err := svc.CreatePurchase(PurchaseInput{UserID: buyer.ID, PackageID: pkg.ID}); err != nil {
		t.Fatalf("first purchase failed: %v", err)
	}
	if _, err := svc.CreatePurchase(PurchaseInput{UserID: buyer.ID, PackageID: pkg.ID}); !errors.Is(err, ErrPurchaseDuplicated) {
		t.Fatalf("second purchase want ErrPurchaseDuplicated got %v", err)
	}
}

func TestCreatePurchaseRejectsInactivePackage(t *testing.T) {
	svc, db := setupPurchaseServiceTest(t, 0)
	buyer := createPurchaseUser(t, db, 1, nil)
	pkg := createPrimePackage(t, db)
	if err := db.Model(pkg).Update("status", constants.PackageStatusInactive).Error; err != nil {
		t.Fatalf("deactivate package failed: %v", err)
	}

	if _, err := svc.CreatePurchase(PurchaseInput{UserID: buyer.ID, PackageID: pkg.ID}); !errors.Is(err, ErrPackageInactive) {
		t.Fatalf("want ErrPackageInactive got %v", err)
	}
}

func TestCreatePurchaseRejectsBlockedUser(t *testing.T) {
	svc, db := setupPurchaseServiceTest(t, 0)
	buyer := createPurchaseUser(t, db, 1, nil)
	if err := db.Model(buyer).Update("status", constants.UserStatusBlocked).Error; err != nil {
		t.Fatalf("block user failed: %v", err)
	}
	pkg := createPrimePackage(t, db)

	if _, err := svc.CreatePurchase(PurchaseInput{UserID: buyer.ID, PackageID: pkg.ID}); !errors.Is(err, ErrUserBlocked) {
		t.Fatalf("want ErrUserBlocked got %v", err)
	}
}

func TestGetPurchaseOwnership(t *testing.T) {
	svc, db := setupPurchaseServiceTest(t, 0)
	buyer := createPurchaseUser(t, db, 1, nil)
	createPurchaseUser(t, db, 2, nil)
	pkg := createPrimePackage(t, db)

	purchase, err := svc.CreatePurchase(PurchaseInput{UserID: buyer.ID, PackageID: pkg.ID})
	if err != nil {
		t.Fatalf("create purchase failed: %v", err)
	}

	if _, err := svc.GetPurchase(2, purchase.ID); !errors.Is(err, ErrPurchaseNotFound) {
		t.Fatalf("other user's query want ErrPurchaseNotFound got %v", err)
	}
	got, err := svc.GetPurchase(buyer.ID, purchase.ID)
	if err != nil {
		t.Fatalf("owner query failed: %v", err)
	}
	if got.ID != purchase.ID {
		t.Fatalf("purchase id mismatch")
	}
	// userID 为 0 表示管理端查询，跳过归属校验
	if _, err := svc.GetPurchase(0, purchase.ID); err != nil {
		t.Fatalf("admin query failed: %v", err)
	}
}
