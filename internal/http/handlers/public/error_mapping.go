package public

import (
	"errors"

	"github.com/upline-next/internal/http/response"
	"github.com/upline-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var purchaseCreateErrorRules = []mappedHandlerError{
	{target: service.ErrUserNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	{target: service.ErrUserBlocked, code: response.CodeForbidden, key: "error.user_blocked"},
	{target: service.ErrPackageNotFound, code: response.CodeNotFound, key: "error.package_not_found"},
	{target: service.ErrPackageInactive, code: response.CodeBadRequest, key: "error.package_inactive"},
	{target: service.ErrPurchaseDuplicated, code: response.CodeBadRequest, key: "error.purchase_duplicated"},
}

var payoutRequestErrorRules = []mappedHandlerError{
	{target: service.ErrWalletInvalidAmount, code: response.CodeBadRequest, key: "error.wallet_amount_invalid"},
	{target: service.ErrPayoutBelowMinimum, code: response.CodeBadRequest, key: "error.payout_below_minimum"},
	{target: service.ErrPayoutPendingExists, code: response.CodeBadRequest, key: "error.payout_pending_exists"},
	{target: service.ErrPayoutExceedsWithdrawable, code: response.CodeBadRequest, key: "error.payout_exceeds_withdrawable"},
	{target: service.ErrWalletAccountNotFound, code: response.CodeNotFound, key: "error.wallet_account_not_found"},
}

func respondPurchaseCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, purchaseCreateErrorRules, response.CodeInternal, "error.purchase_create_failed")
}

func respondPayoutRequestError(c *gin.Context, err error) {
	respondWithMappedError(c, err, payoutRequestErrorRules, response.CodeInternal, "error.payout_request_failed")
}
