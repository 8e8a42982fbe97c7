package models

import (
	"time"

	"gorm.io/gorm"
)

// PayoutRequest 提现申请表
type PayoutRequest struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                        // 主键
	PayoutNo      string         `gorm:"uniqueIndex;not null" json:"payout_no"`                       // 提现单编号
	UserID        uint           `gorm:"index;not null" json:"user_id"`                               // 申请人ID
	Amount        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`         // 申请金额（毛额）
	AdminCharge   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"admin_charge"`   // 管理费
	TDSCharge     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tds_charge"`     // TDS 扣税
	NetAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"net_amount"`     // 实际到账金额
	Status        string         `gorm:"index;not null" json:"status"`                                // 提现状态
	ActiveDebited Money          `gorm:"type:decimal(20,2);not null;default:0" json:"active_debited"` // 审批时从主动收益扣减的金额
	PassiveDebited Money         `gorm:"type:decimal(20,2);not null;default:0" json:"passive_debited"` // 审批时从被动收益扣减的金额
	Currency      string         `gorm:"not null" json:"currency"`                                    // 币种
	Remark        string         `gorm:"type:varchar(500)" json:"remark,omitempty"`                   // 审核备注
	ReviewedBy    *uint          `gorm:"index" json:"reviewed_by,omitempty"`                          // 审核管理员ID
	ReviewedAt    *time.Time     `json:"reviewed_at"`                                                 // 审核时间
	RevertedAt    *time.Time     `json:"reverted_at"`                                                 // 撤销时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                     // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间
}

// TableName 指定表名
func (PayoutRequest) TableName() string {
	return "payout_requests"
}
