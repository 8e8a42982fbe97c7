package service

import "errors"

// 认证相关错误
var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrUserBlocked        = errors.New("账号已被封禁")
	ErrWeakPassword       = errors.New("密码强度不足")
	ErrInvalidPassword    = errors.New("原密码错误")
	ErrInvalidEmail       = errors.New("邮箱格式不正确")
	ErrNotFound           = errors.New("资源不存在")
)

// 推荐关系相关错误
var (
	ErrSponsorNotFound     = errors.New("推荐码无效")
	ErrSponsorSelfReferral = errors.New("不能使用自己的推荐码")
	ErrSponsorCycle        = errors.New("推荐关系不能构成环")
)

// 套餐相关错误
var (
	ErrPackageNotFound     = errors.New("套餐不存在")
	ErrPackageInactive     = errors.New("套餐已下架")
	ErrPackageSlugExists   = errors.New("套餐标识已存在")
	ErrTierLevelInvalid    = errors.New("佣金层级非法")
	ErrTierLevelDuplicated = errors.New("佣金层级重复")
	ErrTierAmountInvalid   = errors.New("佣金金额非法")
)

// 购买相关错误
var (
	ErrPurchaseNotFound    = errors.New("购买单不存在")
	ErrPurchaseDuplicated  = errors.New("已购买过该套餐")
	ErrPurchaseCreateFailed = errors.New("购买单创建失败")
	ErrPurchaseUpdateFailed = errors.New("购买单更新失败")
)

// 钱包相关错误
var (
	ErrWalletAccountNotFound         = errors.New("钱包账户不存在")
	ErrWalletAccountCreateFailed     = errors.New("钱包账户创建失败")
	ErrWalletAccountUpdateFailed     = errors.New("钱包账户更新失败")
	ErrWalletTransactionCreateFailed = errors.New("钱包流水创建失败")
	ErrWalletInvalidAmount           = errors.New("金额非法")
	ErrWalletInsufficientBalance     = errors.New("余额不足")
)

// 提现相关错误
var (
	ErrPayoutNotFound           = errors.New("提现单不存在")
	ErrPayoutPendingExists      = errors.New("已有待审核的提现申请")
	ErrPayoutBelowMinimum       = errors.New("低于最低提现金额")
	ErrPayoutExceedsWithdrawable = errors.New("超出可提现金额")
	ErrPayoutStatusInvalid      = errors.New("提现单状态不允许该操作")
)
