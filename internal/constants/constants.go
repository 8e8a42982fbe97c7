package constants

// 会员状态常量
const (
	UserStatusFree    = "free"
	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"
)

// 套餐状态常量
const (
	PackageStatusActive   = "active"
	PackageStatusInactive = "inactive"
)

// 购买单状态常量
const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusCompleted = "completed"
	PurchaseStatusFailed    = "failed"
)

// 佣金分配状态常量
const (
	DistributionStatusPending     = "pending"
	DistributionStatusDistributed = "distributed"
	DistributionStatusFailed      = "failed"
	DistributionStatusRouted      = "routed"
)

// 佣金层级常量
const (
	MaxCommissionLevel = 120 // 推荐链最大回溯层数
	FallbackLevel      = 120 // 兜底账户入账时固定记录的层级
	DirectReferralLevel = 1  // 直推层级（主动收益）
)

// 族谱下钻遍历限制常量
const (
	DescendantMaxDepth = 10   // 下钻展示的最大深度
	DescendantMaxNodes = 5000 // 单次下钻遍历的节点上限
)

// 钱包交易类型常量
const (
	WalletTxnTypeCommission     = "commission"
	WalletTxnTypePayout         = "payout"
	WalletTxnTypePayoutReceived = "payout_received"
	WalletTxnTypePayoutRefund   = "payout_refund"
	WalletTxnTypeAdminAdjust    = "admin_adjust"
)

// 钱包交易方向常量
const (
	WalletTxnDirectionIn  = "in"
	WalletTxnDirectionOut = "out"
)

// 收益类别常量
const (
	IncomeKindActive  = "active"
	IncomeKindPassive = "passive"
)

// 提现状态常量
const (
	PayoutStatusPending  = "pending"
	PayoutStatusApproved = "approved"
	PayoutStatusRejected = "rejected"
	PayoutStatusReverted = "reverted"
)

// 提现审核动作常量
const (
	PayoutActionApprove = "approve"
	PayoutActionReject  = "reject"
	PayoutActionRevert  = "revert"
)

// 被动收益解锁条件常量
const (
	PassiveUnlockDirectReferrals    = 10 // 直推人数下限
	PassiveUnlockPurchasedReferrals = 7  // 其中已购买套餐的人数下限
)

// 队列常量
const (
	QueueDefault             = "default"
	TaskNotifyCommission     = "notify:commission"
	TaskNotifyActivation     = "notify:activation"
	TaskNotifyPayoutStatus   = "notify:payout_status"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "un"
)

// 设置键常量
const (
	SettingKeySiteConfig       = "site_config"
	SettingKeyCommissionConfig = "commission_config"
	SettingKeyPayoutConfig     = "payout_config"
	SettingFieldSiteCurrency   = "currency"
)

// 币种常量
const (
	SiteCurrencyDefault = "INR"
)

// 站点语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleZhTW = "zh-TW"
	LocaleEnUS = "en-US"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleZhCN, LocaleZhTW, LocaleEnUS}

// 登录日志状态常量
const (
	LoginLogStatusSuccess = "success"
	LoginLogStatusFailed  = "failed"
)
