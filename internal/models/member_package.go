package models

import (
	"time"

	"gorm.io/gorm"
)

// MemberPackage 会员套餐表
type MemberPackage struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                // 主键
	Name        string         `gorm:"not null" json:"name"`                                // 套餐名称
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`                    // 唯一标识
	Description string         `gorm:"type:text" json:"description"`                        // 套餐说明
	Price       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`  // 套餐价格
	Status      string         `gorm:"default:'active';index" json:"status"`                // 套餐状态（active/inactive）
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`                   // 排序权重
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                             // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                      // 软删除时间

	Tiers []CommissionTier `gorm:"foreignKey:PackageID" json:"tiers,omitempty"` // 佣金层级表
}

// TableName 指定表名
func (MemberPackage) TableName() string {
	return "member_packages"
}

// CommissionTier 套餐佣金层级表（每层一条，金额为准）
type CommissionTier struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                          // 主键
	PackageID  uint      `gorm:"index:idx_tier_package_level,unique;not null" json:"package_id"` // 套餐ID
	Level      int       `gorm:"index:idx_tier_package_level,unique;not null" json:"level"`      // 推荐链层级（1 起）
	Percentage Money     `gorm:"type:decimal(20,2);not null;default:0" json:"percentage"`        // 展示用百分比
	Amount     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`            // 该层佣金金额（权威值）
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt  time.Time `json:"updated_at"`                                                     // 更新时间
}

// TableName 指定表名
func (CommissionTier) TableName() string {
	return "commission_tiers"
}
