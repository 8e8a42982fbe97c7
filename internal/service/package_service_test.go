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

func setupPackageServiceTest(t *testing.T) (*PackageService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:package_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.MemberPackage{}, &models.CommissionTier{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	packageRepo := repository.NewPackageRepository(db)
	return NewPackageService(packageRepo, NewCommissionService(packageRepo, 0)), db
}

func TestCreatePackageNormalizesSlug(t *testing.T) {
	svc, _ := setupPackageServiceTest(t)
	pkg, err := svc.CreatePackage(PackageInput{
		Name:  "Prime Package",
		Slug:  "  Prime-500  ",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
	})
	if err != nil {
		t.Fatalf("create package failed: %v", err)
	}
	if pkg.Slug != "prime-500" {
		t.Fatalf("slug want prime-500 got %s", pkg.Slug)
	}
	if pkg.Status != constants.PackageStatusActive {
		t.Fatalf("default status want active got %s", pkg.Status)
	}

	if _, err := svc.CreatePackage(PackageInput{
		Name:  "Another",
		Slug:  "PRIME-500",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(300)),
	}); !errors.Is(err, ErrPackageSlugExists) {
		t.Fatalf("duplicate slug want ErrPackageSlugExists got %v", err)
	}
}

func TestGetPackageFallsBackToDefaultTiers(t *testing.T) {
	svc, _ := setupPackageServiceTest(t)
	created, err := svc.CreatePackage(PackageInput{
		Name:  "Prime Package",
		Slug:  "prime-500",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
	})
	if err != nil {
		t.Fatalf("create package failed: %v", err)
	}

	pkg, err := svc.GetPackage(created.ID)
	if err != nil {
		t.Fatalf("get package failed: %v", err)
	}
	if len(pkg.Tiers) != 120 {
		t.Fatalf("default tiers want 120 got %d", len(pkg.Tiers))
	}
}

func TestReplaceTiersValidatesAndPersists(t *testing.T) {
	svc, db := setupPackageServiceTest(t)
	created, err := svc.CreatePackage(PackageInput{
		Name:  "Prime Package",
		Slug:  "prime-500",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
	})
	if err != nil {
		t.Fatalf("create package failed: %v", err)
	}

	bad := []models.CommissionTier{{Level: 0, Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(10))}}
	if err := svc.ReplaceTiers(created.ID, bad); !errors.Is(err, ErrTierLevelInvalid) {
		t.Fatalf("invalid level want ErrTierLevelInvalid got %v", err)
	}

	tiers := []models.CommissionTier{
		{Level: 1, Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(300))},
		{Level: 2, Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(200))},
	}
	if err := svc.ReplaceTiers(created.ID, tiers); err != nil {
		t.Fatalf("replace tiers failed: %v", err)
	}

	var count int64
	db.Model(&models.CommissionTier{}).Where("package_id = ?", created.ID).Count(&count)
	if count != 2 {
		t.Fatalf("tier count want 2 got %d", count)
	}

	// 再次替换为单层，旧层级应被清空
	if err := svc.ReplaceTiers(created.ID, []models.CommissionTier{
		{Level: 1, Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(500))},
	}); err != nil {
		t.Fatalf("second replace failed: %v", err)
	}
	db.Model(&models.CommissionTier{}).Where("package_id = ?", created.ID).Count(&count)
	if count != 1 {
		t.Fatalf("tier count after replace want 1 got %d", count)
	}
}

func TestSeedDefaultTiers(t *testing.T) {
	svc, db := setupPackageServiceTest(t)
	prime, err := svc.CreatePackage(PackageInput{
		Name:  "Prime Package",
		Slug:  "prime-500",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
	})
	if err != nil {
		t.Fatalf("create package failed: %v", err)
	}
	if err := svc.SeedDefaultTiers(prime.ID); err != nil {
		t.Fatalf("seed default tiers failed: %v", err)
	}
	var count int64
	db.Model(&models.CommissionTier{}).Where("package_id = ?", prime.ID).Count(&count)
	if count != 120 {
		t.Fatalf("tier count want 120 got %d", count)
	}

	// 未知价位没有默认表，固化是空操作
	other, err := svc.CreatePackage(PackageInput{
		Name:  "Starter",
		Slug:  "starter-300",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(300)),
	})
	if err != nil {
		t.Fatalf("create package failed: %v", err)
	}
	if err := svc.SeedDefaultTiers(other.ID); err != nil {
		t.Fatalf("seed for unknown price failed: %v", err)
	}
	db.Model(&models.CommissionTier{}).Where("package_id = ?", other.ID).Count(&count)
	if count != 0 {
		t.Fatalf("unknown price tier count want 0 got %d", count)
	}
}

func TestUpdatePackageSlugConflict(t *testing.T) {
	svc, _ := setupPackageServiceTest(t)
	first, err := svc.CreatePackage(PackageInput{
		Name:  "Prime Package",
		Slug:  "prime-500",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(500)),
	})
	if err != nil {
		t.Fatalf("create first package failed: %v", err)
	}
	second, err := svc.CreatePackage(PackageInput{
		Name:  "Starter",
		Slug:  "starter-300",
		Price: models.NewMoneyFromDecimal(decimal.NewFromInt(300)),
	})
	if err != nil {
		t.Fatalf("create second package failed: %v", err)
	}

	if _, err := svc.UpdatePackage(second.ID, PackageInput{Slug: first.Slug}); !errors.Is(err, ErrPackageSlugExists) {
		t.Fatalf("slug conflict want ErrPackageSlugExists got %v", err)
	}
}
