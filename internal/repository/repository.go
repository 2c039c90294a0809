package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"investorwatch/internal/models"
)

// Repository is the persistence surface of the reconcile engine, the schedule
// controller, and the read API. The *Tx methods run inside the transaction
// handed out by InTx so a whole reconcile call commits or rolls back as one.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Identity resolution.
	UpsertInvestorTx(ctx context.Context, tx *gorm.DB, name, sourceURL string) (uint64, error)
	EnsureStockTx(ctx context.Context, tx *gorm.DB, ticker string) (uint64, error)

	// Holdings.
	UpsertHoldingTx(ctx context.Context, tx *gorm.DB, item *models.Holding) error
	ListHoldingKeysTx(ctx context.Context, tx *gorm.DB) ([]HoldingKey, error)
	DeleteHoldingsTx(ctx context.Context, tx *gorm.DB, ids []uint64) error

	// Deals, one trio per kind-table.
	UpsertBulkDealTx(ctx context.Context, tx *gorm.DB, item *models.BulkDeal) error
	ListBulkDealKeysTx(ctx context.Context, tx *gorm.DB) ([]DealKey, error)
	DeleteBulkDealsTx(ctx context.Context, tx *gorm.DB, ids []uint64) error
	UpsertBlockDealTx(ctx context.Context, tx *gorm.DB, item *models.BlockDeal) error
	ListBlockDealKeysTx(ctx context.Context, tx *gorm.DB) ([]DealKey, error)
	DeleteBlockDealsTx(ctx context.Context, tx *gorm.DB, ids []uint64) error

	// Run bookkeeping.
	SaveSyncState(ctx context.Context, state *models.SyncState) error
	ListSyncStates(ctx context.Context) ([]models.SyncState, error)

	// Schedule singleton.
	GetSchedule(ctx context.Context) (*models.IngestSchedule, error)
	InsertScheduleIfAbsent(ctx context.Context, item *models.IngestSchedule) error
	SaveSchedule(ctx context.Context, item *models.IngestSchedule) error

	// Presentation reads.
	ListHoldingsView(ctx context.Context) ([]HoldingView, error)
	ListBulkDealsView(ctx context.Context) ([]DealView, error)
	ListBlockDealsView(ctx context.Context) ([]DealView, error)
}

type HoldingKey struct {
	ID         uint64
	InvestorID uint64
	StockID    uint64
}

type DealKey struct {
	ID         uint64
	InvestorID uint64
	StockID    uint64
	DealDate   time.Time
}

type HoldingView struct {
	Ticker         string           `json:"ticker"`
	Investor       string           `json:"investor"`
	PercentHolding *decimal.Decimal `json:"percent_holding"`
	Shares         *int64           `json:"shares"`
	ReportedDate   *time.Time       `json:"reported_date"`
}

type DealView struct {
	Ticker   string           `json:"ticker"`
	Investor string           `json:"investor"`
	DealDate time.Time        `json:"deal_date"`
	Quantity *int64           `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
}
