package repository

import "time"

// UserListFilter 查询会员列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	SponsorID   uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PackageListFilter 查询套餐列表的过滤条件
type PackageListFilter struct {
	Page       int
	PageSize   int
	Search     string
	Status     string
	OnlyActive bool
	WithTiers  bool
}

// PurchaseListFilter 查询购买单列表的过滤条件
type PurchaseListFilter struct {
	Page              int
	PageSize          int
	UserID            uint
	PackageID         uint
	Status            string
	PurchaseNo        string
	WithDistributions bool
	CreatedFrom       *time.Time
	CreatedTo         *time.Time
}

// WalletAccountListFilter 查询钱包账户列表的过滤条件
type WalletAccountListFilter struct {
	Page     int
	PageSize int
	UserID   uint
}

// WalletTransactionListFilter 查询钱包流水列表的过滤条件
type WalletTransactionListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	PurchaseID  uint
	PayoutID    uint
	Type        string
	Direction   string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PayoutListFilter 查询提现单列表的过滤条件
type PayoutListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	PayoutNo    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
