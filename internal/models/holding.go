package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Holding struct {
	ID             uint64           `gorm:"primaryKey;autoIncrement"`
	InvestorID     uint64           `gorm:"not null;uniqueIndex:uq_holdings_investor_stock,priority:1"`
	StockID        uint64           `gorm:"not null;uniqueIndex:uq_holdings_investor_stock,priority:2"`
	PercentHolding *decimal.Decimal `gorm:"type:numeric(10,4)"`
	Shares         *int64           `gorm:"type:bigint"`
	ReportedDate   *time.Time       `gorm:"type:date"`
	CreatedAt      time.Time        `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"type:timestamptz;autoUpdateTime"`

	Investor Investor `gorm:"constraint:OnDelete:CASCADE"`
	Stock    Stock    `gorm:"constraint:OnDelete:CASCADE"`
}

func (Holding) TableName() string {
	return "holdings"
}
