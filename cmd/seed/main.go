package main

import (
	"time"

	"github.com/upline-next/internal/config"
	"github.com/upline-next/internal/constants"
	"github.com/upline-next/internal/logger"
	"github.com/upline-next/internal/models"
	"github.com/upline-next/internal/service"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// 演示数据：一条 5 层推荐链 + 一个 500 价位套餐（含内置默认佣金表）。
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认管理员
	if err := models.InitDefaultAdmin("admin", "admin123"); err != nil {
		stdLog.Fatalf("Failed to init default admin: %v", err)
	}

	// 套餐：Prime Package 500，固化内置默认佣金表
	pkg := seedPrimePackage(stdLog)

	// 兜底账户 + 演示推荐链
	fallback := seedUser(stdLog, "fallback@upline.local", "公司兜底账户", "UNFALLBK", nil)
	seedCommissionFallback(stdLog, fallback.ID)

	chainEmails := []struct {
		email string
		name  string
		code  string
	}{
		{"alice@upline.local", "Alice", "UNDEMO01"},
		{"bob@upline.local", "Bob", "UNDEMO02"},
		{"carol@upline.local", "Carol", "UNDEMO03"},
		{"dave@upline.local", "Dave", "UNDEMO04"},
		{"erin@upline.local", "Erin", "UNDEMO05"},
	}
	var sponsorID *uint
	for _, item := range chainEmails {
		user := seedUser(stdLog, item.email, item.name, item.code, sponsorID)
		id := user.ID
		sponsorID = &id
	}

	stdLog.Printf("Seed finished: package=%s(id=%d) fallback_user=%d chain_depth=%d",
		pkg.Slug, pkg.ID, fallback.ID, len(chainEmails))
}

func seedPrimePackage(stdLog interface{ Printf(string, ...interface{}) }) *models.MemberPackage {
	price := decimal.NewFromInt(500)
	var pkg models.MemberPackage
	if err := models.DB.Where("slug = ?", "prime-500").First(&pkg).Error; err != nil {
		pkg = models.MemberPackage{
			Name:        "Prime Package",
			Slug:        "prime-500",
			Description: "入门会员套餐，价格 500，按 120 层默认佣金表分配",
			Price:       models.NewMoneyFromDecimal(price),
			Status:      constants.PackageStatusActive,
			SortOrder:   100,
		}
		if err := models.DB.Create(&pkg).Error; err != nil {
			stdLog.Printf("Failed to create package prime-500: %v", err)
			return &pkg
		}
		stdLog.Printf("Created package: prime-500")
	}

	var tierCount int64
	models.DB.Model(&models.CommissionTier{}).Where("package_id = ?", pkg.ID).Count(&tierCount)
	if tierCount > 0 {
		return &pkg
	}
	tiers := service.DefaultTableFor(price)
	for i := range tiers {
		tiers[i].PackageID = pkg.ID
	}
	if err := models.DB.Create(&tiers).Error; err != nil {
		stdLog.Printf("Failed to seed tiers for prime-500: %v", err)
	} else {
		stdLog.Printf("Seeded %d commission tiers for prime-500", len(tiers))
	}
	return &pkg
}

func seedUser(stdLog interface{ Printf(string, ...interface{}) }, email, name, code string, sponsorID *uint) *models.User {
	var user models.User
	if err := models.DB.Where("email = ?", email).First(&user).Error; err == nil {
		return &user
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("demo123456"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Printf("Failed to hash password for %s: %v", email, err)
		return &user
	}
	now := time.Now()
	user = models.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  name,
		ReferralCode: code,
		SponsorID:    sponsorID,
		Locale:       constants.LocaleZhCN,
		Status:       constants.UserStatusFree,
		LastLoginAt:  &now,
	}
	if err := models.DB.Create(&user).Error; err != nil {
		stdLog.Printf("Failed to create user %s: %v", email, err)
		return &user
	}
	// 同步开钱包，避免首笔佣金入账时再建
	account := models.WalletAccount{UserID: user.ID, Currency: constants.SiteCurrencyDefault}
	if err := models.DB.Create(&account).Error; err != nil {
		stdLog.Printf("Failed to create wallet for %s: %v", email, err)
	}
	stdLog.Printf("Created user: %s (referral_code=%s)", email, code)
	return &user
}

func seedCommissionFallback(stdLog interface{ Printf(string, ...interface{}) }, fallbackUserID uint) {
	var setting models.Setting
	if err := models.DB.Where("key = ?", constants.SettingKeyCommissionConfig).First(&setting).Error; err == nil {
		return
	}
	setting = models.Setting{
		Key: constants.SettingKeyCommissionConfig,
		ValueJSON: models.JSON(map[string]interface{}{
			"fallback_user_id": float64(fallbackUserID),
		}),
	}
	if err := models.DB.Create(&setting).Error; err != nil {
		stdLog.Printf("Failed to seed commission config: %v", err)
		return
	}
	stdLog.Printf("Seeded commission fallback account: user_id=%d", fallbackUserID)
}
