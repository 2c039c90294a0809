package source

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type DealKind string

const (
	DealKindBulk  DealKind = "bulk"
	DealKindBlock DealKind = "block"
)

type DealSide string

const (
	SideBuy  DealSide = "buy"
	SideSell DealSide = "sell"
)

// Holding is one investor position as scraped from a page.
type Holding struct {
	Investor       string
	Ticker         string
	SourceURL      string
	PercentHolding *decimal.Decimal
	Shares         *int64
	ReportedDate   *time.Time
}

// Deal is one bulk or block transaction as scraped from a page. DealDate and
// Side are always set; rows where either could not be reconstructed are
// dropped by the adapter.
type Deal struct {
	Investor  string
	Ticker    string
	SourceURL string
	DealDate  time.Time
	Quantity  *int64
	Price     *decimal.Decimal
	Kind      DealKind
	Side      DealSide
}

// Source turns one external page family into normalized records. Adapters
// share no implementation, only this contract; new page families implement
// it without touching existing adapters or the reconcile engine.
type Source interface {
	FetchHoldings(ctx context.Context) ([]Holding, error)
	FetchDeals(ctx context.Context) ([]Deal, error)
}
