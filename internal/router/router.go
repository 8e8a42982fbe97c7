package router

import (
	"fmt"
	"strings"

	"github.com/upline-next/internal/cache"
	"github.com/upline-next/internal/config"
	adminhandlers "github.com/upline-next/internal/http/handlers/admin"
	publichandlers "github.com/upline-next/internal/http/handlers/public"
	"github.com/upline-next/internal/logger"
	"github.com/upline-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "un"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/packages", publicHandler.GetPackages)
			public.GET("/packages/:id", publicHandler.GetPackage)
		}

		// 会员认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 会员接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetMyProfile)
			user.PUT("/me/profile", publicHandler.UpdateMyProfile)
			user.PUT("/me/password", publicHandler.ChangeMyPassword)

			user.GET("/network/stats", publicHandler.GetMyNetworkStats)
			user.GET("/network", publicHandler.GetMyNetwork)

			user.POST("/purchases", publicHandler.CreatePurchase)
			user.GET("/purchases", publicHandler.GetMyPurchases)
			user.GET("/purchases/:id", publicHandler.GetMyPurchase)

			user.GET("/wallet", publicHandler.GetMyWallet)
			user.GET("/wallet/transactions", publicHandler.GetMyWalletTransactions)

			user.GET("/payouts/withdrawable", publicHandler.GetMyWithdrawable)
			user.POST("/payouts", publicHandler.RequestPayout)
			user.GET("/payouts", publicHandler.GetMyPayouts)
			user.GET("/payouts/:id", publicHandler.GetMyPayout)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/profile", adminHandler.GetAdminProfile)
				authorized.PUT("/password", adminHandler.AdminChangePassword)

				// 会员管理
				authorized.GET("/users", adminHandler.GetAdminUsers)
				authorized.PUT("/users/batch-status", adminHandler.BatchUpdateUserStatus)
				authorized.GET("/users/:id", adminHandler.GetAdminUser)
				authorized.GET("/users/:id/network", adminHandler.GetAdminUserNetwork)
				authorized.GET("/users/:id/upline", adminHandler.GetAdminUserUpline)

				// 套餐与佣金表管理
				authorized.GET("/packages", adminHandler.GetAdminPackages)
				authorized.GET("/packages/:id", adminHandler.GetAdminPackage)
				authorized.POST("/packages", adminHandler.CreateAdminPackage)
				authorized.PUT("/packages/:id", adminHandler.UpdateAdminPackage)
				authorized.PUT("/packages/:id/tiers", adminHandler.ReplaceAdminPackageTiers)
				authorized.POST("/packages/:id/tiers/seed", adminHandler.SeedAdminPackageTiers)

				// 购买单管理
				authorized.GET("/purchases", adminHandler.GetAdminPurchases)
				authorized.GET("/purchases/:id", adminHandler.GetAdminPurchase)

				// 提现管理
				authorized.GET("/payouts", adminHandler.GetAdminPayouts)
				authorized.GET("/payouts/:id", adminHandler.GetAdminPayout)
				authorized.POST("/payouts/:id/review", adminHandler.ReviewAdminPayout)

				// 钱包管理
				authorized.GET("/wallets", adminHandler.GetAdminWalletAccounts)
				authorized.GET("/wallets/transactions", adminHandler.GetAdminWalletTransactions)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
