package models

import (
	"time"

	"gorm.io/gorm"
)

// Purchase 套餐购买单表
type Purchase struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                            // 主键
	PurchaseNo       string         `gorm:"uniqueIndex;not null" json:"purchase_no"`                         // 购买单编号
	UserID           uint           `gorm:"index;not null" json:"user_id"`                                   // 购买人ID
	PackageID        uint           `gorm:"index;not null" json:"package_id"`                                // 套餐ID
	PackageName      string         `gorm:"not null" json:"package_name"`                                    // 套餐名称快照
	Price            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`              // 成交价格快照
	PaymentMethod    string         `gorm:"type:varchar(50)" json:"payment_method"`                          // 支付方式（人工核验凭证）
	Status           string         `gorm:"index;not null" json:"status"`                                    // 购买单状态
	Currency         string         `gorm:"not null" json:"currency"`                                        // 币种
	PoolTotal        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"pool_total"`         // 佣金池总额（各层金额之和）
	TotalDistributed Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_distributed"`  // 已分配佣金（含兜底路由）
	UnassignedAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unassigned_amount"`  // 未分配佣金
	CompletedAt      *time.Time     `gorm:"index" json:"completed_at"`                                       // 完成时间
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                         // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                                  // 软删除时间

	Distributions []CommissionDistribution `gorm:"foreignKey:PurchaseID" json:"distributions,omitempty"` // 佣金分配明细
}

// TableName 指定表名
func (Purchase) TableName() string {
	return "purchases"
}

// CommissionDistribution 佣金分配明细表（每层一条）
type CommissionDistribution struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                    // 主键
	PurchaseID    uint      `gorm:"index;not null" json:"purchase_id"`                       // 购买单ID
	Level         int       `gorm:"not null" json:"level"`                                   // 推荐链层级
	BeneficiaryID uint      `gorm:"index;not null" json:"beneficiary_id"`                    // 受益人ID
	Percentage    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"percentage"` // 层级百分比快照
	Amount        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`     // 该层佣金金额
	Status        string    `gorm:"index;not null" json:"status"`                            // 分配状态（pending/distributed/failed/routed）
	FailReason    string    `gorm:"type:varchar(500)" json:"fail_reason,omitempty"`          // 失败原因
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt     time.Time `json:"updated_at"`                                              // 更新时间
}

// TableName 指定表名
func (CommissionDistribution) TableName() string {
	return "commission_distributions"
}
