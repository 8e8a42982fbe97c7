package worker

import (
	"context"
	"encoding/json"

	"github.com/upline-next/internal/logger"
	"github.com/upline-next/internal/provider"
	"github.com/upline-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskNotifyCommission, c.handleNotifyCommission)
	mux.HandleFunc(queue.TaskNotifyActivation, c.handleNotifyActivation)
	mux.HandleFunc(queue.TaskNotifyPayoutStatus, c.handleNotifyPayoutStatus)
}

// handleNotifyCommission 佣金入账通知。
// 通知属尽力而为的旁路动作，收款人缺失时直接跳过不重试。
func (c *Consumer) handleNotifyCommission(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_notify_commission_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NotifyCommissionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notify_commission_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 {
		logger.Debugw("worker_notify_commission_skip_invalid_payload", "user_id", payload.UserID)
		return nil
	}
	user, err := c.UserRepo.GetByID(payload.UserID)
	if err != nil {
		logger.Warnw("worker_notify_commission_fetch_user_failed", "user_id", payload.UserID, "error", err)
		return err
	}
	if user == nil {
		logger.Debugw("worker_notify_commission_skip_user_not_found", "user_id", payload.UserID)
		return nil
	}
	logger.Infow("commission_notification_delivered",
		"user_id", user.ID,
		"email", user.Email,
		"source_user_id", payload.SourceUserID,
		"purchase_id", payload.PurchaseID,
		"level", payload.Level,
		"amount", payload.Amount,
	)
	return nil
}

// handleNotifyActivation 会员激活通知
func (c *Consumer) handleNotifyActivation(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_notify_activation_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NotifyActivationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notify_activation_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 {
		logger.Debugw("worker_notify_activation_skip_invalid_payload", "user_id", payload.UserID)
		return nil
	}
	user, err := c.UserRepo.GetByID(payload.UserID)
	if err != nil {
		logger.Warnw("worker_notify_activation_fetch_user_failed", "user_id", payload.UserID, "error", err)
		return err
	}
	if user == nil {
		logger.Debugw("worker_notify_activation_skip_user_not_found", "user_id", payload.UserID)
		return nil
	}
	logger.Infow("activation_notification_delivered",
		"user_id", user.ID,
		"email", user.Email,
		"status", user.Status,
	)
	return nil
}

// handleNotifyPayoutStatus 提现状态通知
func (c *Consumer) handleNotifyPayoutStatus(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_notify_payout_status_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NotifyPayoutStatusPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notify_payout_status_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 || payload.PayoutID == 0 {
		logger.Debugw("worker_notify_payout_status_skip_invalid_payload",
			"user_id", payload.UserID,
			"payout_id", payload.PayoutID,
		)
		return nil
	}
	user, err := c.UserRepo.GetByID(payload.UserID)
	if err != nil {
		logger.Warnw("worker_notify_payout_status_fetch_user_failed", "user_id", payload.UserID, "error", err)
		return err
	}
	if user == nil {
		logger.Debugw("worker_notify_payout_status_skip_user_not_found", "user_id", payload.UserID)
		return nil
	}
	logger.Infow("payout_status_notification_delivered",
		"user_id", user.ID,
		"email", user.Email,
		"payout_id", payload.PayoutID,
		"status", payload.Status,
	)
	return nil
}
