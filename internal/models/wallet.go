package models

import (
	"time"

	"gorm.io/gorm"
)

// WalletAccount 钱包账户表（每个会员一条）
type WalletAccount struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                          // 主键
	UserID         uint           `gorm:"uniqueIndex;not null" json:"user_id"`                           // 会员ID
	Balance        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`          // 可提现余额
	ActiveIncome   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"active_income"`    // 主动收益（直推佣金）
	PassiveIncome  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"passive_income"`   // 被动收益（2 层及以上佣金）
	TotalEarned    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_earned"`     // 历史累计收益
	TotalWithdrawn Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_withdrawn"`  // 历史累计提现
	Currency       string         `gorm:"not null" json:"currency"`                                      // 币种
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间
}

// TableName 指定表名
func (WalletAccount) TableName() string {
	return "wallet_accounts"
}

// WalletTransaction 钱包流水表（只追加，不回改）
type WalletTransaction struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                        // 主键
	UserID        uint      `gorm:"index;not null" json:"user_id"`                               // 会员ID
	AccountID     uint      `gorm:"index;not null" json:"account_id"`                            // 钱包账户ID
	Type          string    `gorm:"index;not null" json:"type"`                                  // 交易类型
	Direction     string    `gorm:"index;not null" json:"direction"`                             // 交易方向（in/out）
	Amount        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`         // 交易金额
	BalanceBefore Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance_before"` // 交易前余额
	BalanceAfter  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance_after"`  // 交易后余额
	Currency      string    `gorm:"not null" json:"currency"`                                    // 币种
	Reference     string    `gorm:"uniqueIndex;not null" json:"reference"`                       // 参考号（幂等去重）
	PurchaseID    uint      `gorm:"index" json:"purchase_id,omitempty"`                          // 关联购买单ID
	PayoutID      uint      `gorm:"index" json:"payout_id,omitempty"`                            // 关联提现单ID
	SourceUserID  uint      `gorm:"index" json:"source_user_id,omitempty"`                       // 佣金来源会员ID（买家）
	Level         int       `gorm:"default:0" json:"level,omitempty"`                            // 佣金来源层级
	Remark        string    `gorm:"type:varchar(500)" json:"remark,omitempty"`                   // 备注
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                                     // 创建时间
}

// TableName 指定表名
func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
