package queue

import (
	"encoding/json"

	"github.com/upline-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskNotifyCommission 佣金入账通知任务
	TaskNotifyCommission = constants.TaskNotifyCommission
	// TaskNotifyActivation 会员激活通知任务
	TaskNotifyActivation = constants.TaskNotifyActivation
	// TaskNotifyPayoutStatus 提现状态通知任务
	TaskNotifyPayoutStatus = constants.TaskNotifyPayoutStatus
)

// NotifyCommissionPayload 佣金入账通知载荷
type NotifyCommissionPayload struct {
	UserID       uint   `json:"user_id"`
	SourceUserID uint   `json:"source_user_id"`
	PurchaseID   uint   `json:"purchase_id"`
	Level        int    `json:"level"`
	Amount       string `json:"amount"`
}

// NotifyActivationPayload 会员激活通知载荷
type NotifyActivationPayload struct {
	UserID uint `json:"user_id"`
}

// NotifyPayoutStatusPayload 提现状态通知载荷
type NotifyPayoutStatusPayload struct {
	UserID   uint   `json:"user_id"`
	PayoutID uint   `json:"payout_id"`
	Status   string `json:"status"`
}

// NewNotifyCommissionTask 创建佣金入账通知任务
func NewNotifyCommissionTask(payload NotifyCommissionPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotifyCommission, body), nil
}

// NewNotifyActivationTask 创建会员激活通知任务
func NewNotifyActivationTask(payload NotifyActivationPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotifyActivation, body), nil
}

// NewNotifyPayoutStatusTask 创建提现状态通知任务
func NewNotifyPayoutStatusTask(payload NotifyPayoutStatusPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotifyPayoutStatus, body), nil
}
