package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BulkDeal and BlockDeal share a shape but live in physically separate tables;
// the deal kind is encoded by the table, not a column.

type BulkDeal struct {
	ID         uint64           `gorm:"primaryKey;autoIncrement"`
	InvestorID uint64           `gorm:"not null;uniqueIndex:uq_bulk_deal,priority:1"`
	StockID    uint64           `gorm:"not null;uniqueIndex:uq_bulk_deal,priority:2"`
	DealDate   time.Time        `gorm:"type:date;not null;uniqueIndex:uq_bulk_deal,priority:3"`
	Quantity   *int64           `gorm:"type:bigint"`
	Price      *decimal.Decimal `gorm:"type:numeric(16,4)"`
	CreatedAt  time.Time        `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"type:timestamptz;autoUpdateTime"`

	Investor Investor `gorm:"constraint:OnDelete:CASCADE"`
	Stock    Stock    `gorm:"constraint:OnDelete:CASCADE"`
}

func (BulkDeal) TableName() string {
	return "bulk_deals"
}

type BlockDeal struct {
	ID         uint64           `gorm:"primaryKey;autoIncrement"`
	InvestorID uint64           `gorm:"not null;uniqueIndex:uq_block_deal,priority:1"`
	StockID    uint64           `gorm:"not null;uniqueIndex:uq_block_deal,priority:2"`
	DealDate   time.Time        `gorm:"type:date;not null;uniqueIndex:uq_block_deal,priority:3"`
	Quantity   *int64           `gorm:"type:bigint"`
	Price      *decimal.Decimal `gorm:"type:numeric(16,4)"`
	CreatedAt  time.Time        `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"type:timestamptz;autoUpdateTime"`

	Investor Investor `gorm:"constraint:OnDelete:CASCADE"`
	Stock    Stock    `gorm:"constraint:OnDelete:CASCADE"`
}

func (BlockDeal) TableName() string {
	return "block_deals"
}
