package i18n

// catalog 文案目录。繁体未单独翻译的条目回退到简体。
var catalog = map[string]map[string]string{
	LocaleZH: zhCN,
	LocaleTW: zhTW,
	LocaleEN: enUS,
}

var zhCN = map[string]string{
	"error.bad_request":       "请求参数错误",
	"error.unauthorized":      "请先登录",
	"error.forbidden":         "没有权限执行该操作",
	"error.not_found":         "资源不存在",
	"error.internal":          "服务器内部错误",
	"error.too_many_requests": "请求过于频繁",
	"error.rate_limited":      "操作过于频繁，请 %d 秒后再试",
	"error.rate_limit_unavailable": "限流服务不可用",

	"error.jwt_secret_missing":  "服务端未配置签名密钥",
	"error.auth_header_missing": "缺少认证信息",
	"error.auth_header_invalid": "认证信息格式错误",
	"error.token_invalid":       "登录凭证无效",
	"error.token_revoked":       "登录凭证已失效，请重新登录",
	"error.login_invalid":       "邮箱或密码错误",
	"error.login_failed":        "登录失败",
	"error.register_failed":     "注册失败",
	"error.email_invalid":       "邮箱格式不正确",
	"error.email_exists":        "邮箱已被注册",
	"error.user_not_found":      "会员不存在",
	"error.user_blocked":        "账号已被封禁",
	"error.old_password_invalid": "原密码错误",
	"error.password_weak":           "密码强度不足",
	"error.password_min_length":     "密码长度不能少于 %d 位",
	"error.password_require_upper":  "密码需要包含大写字母",
	"error.password_require_lower":  "密码需要包含小写字母",
	"error.password_require_number": "密码需要包含数字",
	"error.password_require_special": "密码需要包含特殊字符",
	"error.user_id_invalid":       "用户标识非法",
	"error.user_id_type_invalid":  "用户标识类型错误",
	"error.admin_id_invalid":      "管理员标识非法",
	"error.admin_id_type_invalid": "管理员标识类型错误",
	"error.profile_update_failed": "资料更新失败",

	"error.sponsor_not_found":     "推荐码无效",
	"error.sponsor_self_referral": "不能使用自己的推荐码",

	"error.package_not_found":     "套餐不存在",
	"error.package_inactive":      "套餐已下架",
	"error.package_slug_exists":   "套餐标识已存在",
	"error.package_save_failed":   "套餐保存失败",
	"error.tier_level_invalid":    "佣金层级非法",
	"error.tier_level_duplicated": "佣金层级重复",
	"error.tier_amount_invalid":   "佣金金额非法",
	"error.tier_save_failed":      "佣金层级保存失败",

	"error.purchase_not_found":     "购买单不存在",
	"error.purchase_duplicated":    "已购买过该套餐，不能重复购买",
	"error.purchase_create_failed": "购买失败",

	"error.network_query_failed": "推荐网络查询失败",

	"error.wallet_account_not_found":     "钱包账户不存在",
	"error.wallet_amount_invalid":        "金额非法",
	"error.wallet_insufficient_balance":  "余额不足",
	"error.wallet_query_failed":          "钱包查询失败",

	"error.payout_not_found":            "提现单不存在",
	"error.payout_pending_exists":       "已有待审核的提现申请",
	"error.payout_below_minimum":        "低于最低提现金额",
	"error.payout_exceeds_withdrawable": "超出可提现金额",
	"error.payout_status_invalid":       "提现单状态不允许该操作",
	"error.payout_request_failed":       "提现申请失败",
	"error.payout_review_failed":        "提现审核失败",

	"error.setting_save_failed": "设置保存失败",
	"error.user_status_invalid": "会员状态非法",
}

var zhTW = map[string]string{
	"error.bad_request":       "請求參數錯誤",
	"error.unauthorized":      "請先登入",
	"error.forbidden":         "沒有權限執行該操作",
	"error.not_found":         "資源不存在",
	"error.internal":          "伺服器內部錯誤",
	"error.too_many_requests": "請求過於頻繁",
	"error.rate_limited":      "操作過於頻繁，請 %d 秒後再試",

	"error.token_invalid":  "登入憑證無效",
	"error.token_revoked":  "登入憑證已失效，請重新登入",
	"error.login_invalid":  "信箱或密碼錯誤",
	"error.email_invalid":  "信箱格式不正確",
	"error.email_exists":   "信箱已被註冊",
	"error.user_blocked":   "帳號已被封禁",

	"error.sponsor_not_found":     "推薦碼無效",
	"error.sponsor_self_referral": "不能使用自己的推薦碼",

	"error.package_not_found":  "套餐不存在",
	"error.package_inactive":   "套餐已下架",
	"error.purchase_duplicated": "已購買過該套餐，不能重複購買",

	"error.payout_below_minimum":        "低於最低提現金額",
	"error.payout_exceeds_withdrawable": "超出可提現金額",
	"error.payout_pending_exists":       "已有待審核的提現申請",
}

var enUS = map[string]string{
	"error.bad_request":       "Invalid request parameters",
	"error.unauthorized":      "Please sign in first",
	"error.forbidden":         "You are not allowed to perform this action",
	"error.not_found":         "Resource not found",
	"error.internal":          "Internal server error",
	"error.too_many_requests": "Too many requests",
	"error.rate_limited":      "Too many attempts, please retry in %d seconds",
	"error.rate_limit_unavailable": "Rate limit service unavailable",

	"error.jwt_secret_missing":  "Signing secret not configured",
	"error.auth_header_missing": "Missing authorization header",
	"error.auth_header_invalid": "Malformed authorization header",
	"error.token_invalid":       "Invalid token",
	"error.token_revoked":       "Token revoked, please sign in again",
	"error.login_invalid":       "Incorrect email or password",
	"error.login_failed":        "Login failed",
	"error.register_failed":     "Registration failed",
	"error.email_invalid":       "Invalid email address",
	"error.email_exists":        "Email already registered",
	"error.user_not_found":      "Member not found",
	"error.user_blocked":        "Account has been blocked",
	"error.old_password_invalid": "Incorrect current password",
	"error.password_weak":           "Password is too weak",
	"error.password_min_length":     "Password must be at least %d characters",
	"error.password_require_upper":  "Password must contain an uppercase letter",
	"error.password_require_lower":  "Password must contain a lowercase letter",
	"error.password_require_number": "Password must contain a digit",
	"error.password_require_special": "Password must contain a special character",
	"error.user_id_invalid":       "Invalid user id",
	"error.user_id_type_invalid":  "Invalid user id type",
	"error.admin_id_invalid":      "Invalid admin id",
	"error.admin_id_type_invalid": "Invalid admin id type",
	"error.profile_update_failed": "Failed to update profile",

	"error.sponsor_not_found":     "Invalid referral code",
	"error.sponsor_self_referral": "You cannot use your own referral code",

	"error.package_not_found":     "Package not found",
	"error.package_inactive":      "Package is not available",
	"error.package_slug_exists":   "Package slug already exists",
	"error.package_save_failed":   "Failed to save package",
	"error.tier_level_invalid":    "Invalid commission level",
	"error.tier_level_duplicated": "Duplicated commission level",
	"error.tier_amount_invalid":   "Invalid commission amount",
	"error.tier_save_failed":      "Failed to save commission tiers",

	"error.purchase_not_found":     "Purchase not found",
	"error.purchase_duplicated":    "You have already purchased this package",
	"error.purchase_create_failed": "Purchase failed",

	"error.network_query_failed": "Failed to query referral network",

	"error.wallet_account_not_found":    "Wallet account not found",
	"error.wallet_amount_invalid":       "Invalid amount",
	"error.wallet_insufficient_balance": "Insufficient balance",
	"error.wallet_query_failed":         "Failed to query wallet",

	"error.payout_not_found":            "Payout request not found",
	"error.payout_pending_exists":       "A pending payout request already exists",
	"error.payout_below_minimum":        "Amount is below the minimum payout",
	"error.payout_exceeds_withdrawable": "Amount exceeds the withdrawable balance",
	"error.payout_status_invalid":       "Payout status does not allow this action",
	"error.payout_request_failed":       "Failed to request payout",
	"error.payout_review_failed":        "Failed to review payout",

	"error.setting_save_failed": "Failed to save settings",
	"error.user_status_invalid": "Invalid member status",
}
