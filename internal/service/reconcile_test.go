package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"investorwatch/internal/source"
)

func decPtr(s string) *decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return &d
}

func int64Ptr(n int64) *int64 { return &n }

func timePtr(t time.Time) *time.Time { return &t }

func mkHolding(investor, ticker, percent string, shares int64) source.Holding {
	return source.Holding{
		Investor:       investor,
		Ticker:         ticker,
		SourceURL:      "https://example.invalid/" + investor,
		PercentHolding: decPtr(percent),
		Shares:         int64Ptr(shares),
		ReportedDate:   timePtr(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)),
	}
}

func TestReconcileHoldingsMirrorsBatch(t *testing.T) {
	store := newStubStore()
	svc := &ReconcileService{Store: store, Logger: zap.NewNop()}

	first := []source.Holding{
		mkHolding("A", "TCS", "1.25", 100),
		mkHolding("A", "INFY", "0.80", 50),
		mkHolding("B", "TCS", "2.00", 200),
	}
	result, err := svc.ReconcileHoldings(context.Background(), first)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.Upserted != 3 || result.Deleted != 0 {
		t.Fatalf("result=%+v", result)
	}
	if len(store.holdings) != 3 {
		t.Fatalf("holdings=%d want=3", len(store.holdings))
	}

	// second batch drops A/INFY and changes A/TCS
	second := []source.Holding{
		mkHolding("A", "TCS", "1.50", 120),
		mkHolding("B", "TCS", "2.00", 200),
	}
	result, err = svc.ReconcileHoldings(context.Background(), second)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.Upserted != 2 || result.Deleted != 1 {
		t.Fatalf("result=%+v", result)
	}
	if len(store.holdings) != 2 {
		t.Fatalf("holdings=%d want=2", len(store.holdings))
	}
	invA := store.investors["A"]
	stkTCS := store.stocks["TCS"]
	for _, item := range store.holdings {
		if item.InvestorID == invA && item.StockID == stkTCS {
			if item.PercentHolding.String() != "1.5" || *item.Shares != 120 {
				t.Fatalf("row not updated: %+v", item)
			}
		}
	}
}

func TestReconcileHoldingsIdempotent(t *testing.T) {
	store := newStubStore()
	svc := &ReconcileService{Store: store, Logger: zap.NewNop()}
	batch := []source.Holding{mkHolding("A", "TCS", "1.25", 100)}

	if _, err := svc.ReconcileHoldings(context.Background(), batch); err != nil {
		t.Fatalf("err=%v", err)
	}
	var firstID uint64
	for id := range store.holdings {
		firstID = id
	}

	result, err := svc.ReconcileHoldings(context.Background(), batch)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.Deleted != 0 {
		t.Fatalf("deleted=%d want=0", result.Deleted)
	}
	if len(store.holdings) != 1 {
		t.Fatalf("holdings=%d want=1", len(store.holdings))
	}
	if _, ok := store.holdings[firstID]; !ok {
		t.Fatalf("row id changed on idempotent rerun")
	}
}

func TestReconcileHoldingsLastWriteWins(t *testing.T) {
	store := newStubStore()
	svc := &ReconcileService{Store: store, Logger: zap.NewNop()}

	batch := []source.Holding{
		mkHolding("A", "TCS", "1.00", 100),
		mkHolding("A", "TCS", "3.00", 300),
	}
	result, err := svc.ReconcileHoldings(context.Background(), batch)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.Upserted != 1 {
		t.Fatalf("upserted=%d want=1", result.Upserted)
	}
	for _, item := range store.holdings {
		if item.PercentHolding.String() != "3" {
			t.Fatalf("expected later record to win, got %+v", item)
		}
	}
}

func TestReconcileHoldingsEmptyBatchWipes(t *testing.T) {
	store := newStubStore()
	svc := &ReconcileService{Store: store, Logger: zap.NewNop()}

	if _, err := svc.ReconcileHoldings(context.Background(), []source.Holding{mkHolding("A", "TCS", "1.25", 100)}); err != nil {
		t.Fatalf("err=%v", err)
	}
	result, err := svc.ReconcileHoldings(context.Background(), nil)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.Upserted != 0 || result.Deleted != 1 {
		t.Fatalf("result=%+v", result)
	}
	if len(store.holdings) != 0 {
		t.Fatalf("holdings=%d want=0", len(store.holdings))
	}
}

func mkDeal(investor, ticker string, day int, kind source.DealKind, side source.DealSide) source.Deal {
	return source.Deal{
		Investor:  investor,
		Ticker:    ticker,
		SourceURL: "https://example.invalid/" + investor,
		DealDate:  time.Date(2024, 2, day, 0, 0, 0, 0, time.UTC),
		Quantity:  int64Ptr(1000),
		Price:     decPtr("99.5"),
		Kind:      kind,
		Side:      side,
	}
}

func TestReconcileDealsFiltersSideAndKind(t *testing.T) {
	store := newStubStore()
	svc := &ReconcileService{Store: store, Logger: zap.NewNop()}

	records := []source.Deal{
		mkDeal("A", "TCS", 1, source.DealKindBulk, source.SideBuy),
		mkDeal("A", "INFY", 2, source.DealKindBulk, source.SideSell),
		mkDeal("A", "WIPRO", 3, source.DealKindBlock, source.SideBuy),
	}

	result, err := svc.ReconcileDeals(context.Background(), records, source.DealKindBulk)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.Upserted != 1 {
		t.Fatalf("upserted=%d want=1", result.Upserted)
	}
	if len(store.bulkDeals) != 1 {
		t.Fatalf("bulk deals=%d want=1", len(store.bulkDeals))
	}

	result, err = svc.ReconcileDeals(context.Background(), records, source.DealKindBlock)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.Upserted != 1 {
		t.Fatalf("upserted=%d want=1", result.Upserted)
	}
	if len(store.blockDeals) != 1 {
		t.Fatalf("block deals=%d want=1", len(store.blockDeals))
	}
}

func TestReconcileDealsSameStockDifferentDates(t *testing.T) {
	store := newStubStore()
	svc := &ReconcileService{Store: store, Logger: zap.NewNop()}

	records := []source.Deal{
		mkDeal("A", "TCS", 1, source.DealKindBulk, source.SideBuy),
		mkDeal("A", "TCS", 2, source.DealKindBulk, source.SideBuy),
	}
	result, err := svc.ReconcileDeals(context.Background(), records, source.DealKindBulk)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.Upserted != 2 {
		t.Fatalf("upserted=%d want=2", result.Upserted)
	}
}

func TestReconcileDealsDiffDelete(t *testing.T) {
	store := newStubStore()
	svc := &ReconcileService{Store: store, Logger: zap.NewNop()}

	first := []source.Deal{
		mkDeal("A", "TCS", 1, source.DealKindBulk, source.SideBuy),
		mkDeal("A", "INFY", 2, source.DealKindBulk, source.SideBuy),
	}
	if _, err := svc.ReconcileDeals(context.Background(), first, source.DealKindBulk); err != nil {
		t.Fatalf("err=%v", err)
	}

	second := []source.Deal{
		mkDeal("A", "TCS", 1, source.DealKindBulk, source.SideBuy),
	}
	result, err := svc.ReconcileDeals(context.Background(), second, source.DealKindBulk)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.Upserted != 1 || result.Deleted != 1 {
		t.Fatalf("result=%+v", result)
	}
	if len(store.bulkDeals) != 1 {
		t.Fatalf("bulk deals=%d want=1", len(store.bulkDeals))
	}
}
