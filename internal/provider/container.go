package provider

import (
	"github.com/upline-next/internal/authz"
	"github.com/upline-next/internal/cache"
	"github.com/upline-next/internal/config"
	"github.com/upline-next/internal/logger"
	"github.com/upline-next/internal/models"
	"github.com/upline-next/internal/queue"
	"github.com/upline-next/internal/repository"
	"github.com/upline-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo    repository.AdminRepository
	UserRepo     repository.UserRepository
	PackageRepo  repository.PackageRepository
	PurchaseRepo repository.PurchaseRepository
	WalletRepo   repository.WalletRepository
	PayoutRepo   repository.PayoutRepository
	SettingRepo  repository.SettingRepository

	// Services
	AuthzService      *authz.Service
	AuthService       *service.AuthService
	UserAuthService   *service.UserAuthService
	GenealogyService  *service.GenealogyService
	CommissionService *service.CommissionService
	WalletService     *service.WalletService
	LedgerService     *service.LedgerService
	PurchaseService   *service.PurchaseService
	PayoutService     *service.PayoutService
	PackageService    *service.PackageService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.PackageRepo = repository.NewPackageRepository(db)
	c.PurchaseRepo = repository.NewPurchaseRepository(db)
	c.WalletRepo = repository.NewWalletRepository(db)
	c.PayoutRepo = repository.NewPayoutRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.GenealogyService = service.NewGenealogyService(c.UserRepo, c.Config.Commission.MaxLevel)
	c.CommissionService = service.NewCommissionService(c.PackageRepo, c.Config.Commission.MaxLevel)
	c.WalletService = service.NewWalletService(c.WalletRepo, c.UserRepo)
	c.LedgerService = service.NewLedgerService(c.WalletService, c.PurchaseRepo, c.SettingRepo, c.QueueClient, c.Config.Commission.FallbackUserID)
	c.PurchaseService = service.NewPurchaseService(c.PurchaseRepo, c.PackageRepo, c.UserRepo, c.GenealogyService, c.CommissionService, c.LedgerService, c.QueueClient)
	c.PayoutService = service.NewPayoutService(c.PayoutRepo, c.WalletRepo, c.WalletService, c.GenealogyService, c.QueueClient, c.Config.Payout)
	c.PackageService = service.NewPackageService(c.PackageRepo, c.CommissionService)
}
