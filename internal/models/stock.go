package models

// Stock rows are lookup-or-insert only; tickers never change once seen.
type Stock struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	Ticker string `gorm:"type:varchar(64);not null;uniqueIndex"`
}

func (Stock) TableName() string {
	return "stocks"
}
