package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"investorwatch/internal/models"
	"investorwatch/internal/repository"
	"investorwatch/internal/source"
)

// ReconcileService makes a persisted table mirror the latest scraped batch:
// resolve identities, upsert every desired row, then delete every persisted
// row whose key the batch no longer contains. All four steps run inside a
// single transaction per record family, so a failed run leaves the previous
// snapshot intact.
type ReconcileService struct {
	Store  repository.Repository
	Logger *zap.Logger
}

type ReconcileResult struct {
	Scope    string `json:"scope"`
	Upserted int    `json:"upserted"`
	Deleted  int    `json:"deleted"`
}

type holdingKey struct {
	investorID uint64
	stockID    uint64
}

type dealKey struct {
	investorID uint64
	stockID    uint64
	dealDate   string
}

func (s *ReconcileService) ReconcileHoldings(ctx context.Context, records []source.Holding) (ReconcileResult, error) {
	result := ReconcileResult{Scope: models.ScopeHoldings}

	err := s.Store.InTx(ctx, func(tx *gorm.DB) error {
		// Later records for the same (investor, stock) overwrite earlier
		// ones; last write wins within a run.
		desired := make(map[holdingKey]models.Holding, len(records))
		for _, rec := range records {
			investorID, err := s.Store.UpsertInvestorTx(ctx, tx, rec.Investor, rec.SourceURL)
			if err != nil {
				return fmt.Errorf("resolving investor %q: %w", rec.Investor, err)
			}
			stockID, err := s.Store.EnsureStockTx(ctx, tx, rec.Ticker)
			if err != nil {
				return fmt.Errorf("resolving stock %q: %w", rec.Ticker, err)
			}
			desired[holdingKey{investorID, stockID}] = models.Holding{
				InvestorID:     investorID,
				StockID:        stockID,
				PercentHolding: rec.PercentHolding,
				Shares:         rec.Shares,
				ReportedDate:   rec.ReportedDate,
			}
		}

		for key, item := range desired {
			if err := s.Store.UpsertHoldingTx(ctx, tx, &item); err != nil {
				return fmt.Errorf("upserting holding (%d,%d): %w", key.investorID, key.stockID, err)
			}
		}

		existing, err := s.Store.ListHoldingKeysTx(ctx, tx)
		if err != nil {
			return fmt.Errorf("listing holding keys: %w", err)
		}
		var stale []uint64
		for _, row := range existing {
			if _, ok := desired[holdingKey{row.InvestorID, row.StockID}]; !ok {
				stale = append(stale, row.ID)
			}
		}
		if err := s.Store.DeleteHoldingsTx(ctx, tx, stale); err != nil {
			return fmt.Errorf("deleting stale holdings: %w", err)
		}

		result.Upserted = len(desired)
		result.Deleted = len(stale)
		return nil
	})
	if err != nil {
		return result, err
	}

	if s.Logger != nil {
		s.Logger.Info("holdings reconciled",
			zap.Int("upserted", result.Upserted),
			zap.Int("deleted", result.Deleted),
		)
	}
	return result, nil
}

// ReconcileDeals mirrors one kind-table from the full deal stream. Only
// buy-side records of the requested kind participate; everything else in the
// stream is ignored here.
func (s *ReconcileService) ReconcileDeals(ctx context.Context, records []source.Deal, kind source.DealKind) (ReconcileResult, error) {
	table, err := s.dealTable(kind)
	if err != nil {
		return ReconcileResult{}, err
	}
	result := ReconcileResult{Scope: table.scope}

	err = s.Store.InTx(ctx, func(tx *gorm.DB) error {
		desired := make(map[dealKey]models.BulkDeal)
		for _, rec := range records {
			if rec.Kind != kind || rec.Side != source.SideBuy {
				continue
			}
			investorID, err := s.Store.UpsertInvestorTx(ctx, tx, rec.Investor, rec.SourceURL)
			if err != nil {
				return fmt.Errorf("resolving investor %q: %w", rec.Investor, err)
			}
			stockID, err := s.Store.EnsureStockTx(ctx, tx, rec.Ticker)
			if err != nil {
				return fmt.Errorf("resolving stock %q: %w", rec.Ticker, err)
			}
			desired[dealKey{investorID, stockID, dayKey(rec.DealDate)}] = models.BulkDeal{
				InvestorID: investorID,
				StockID:    stockID,
				DealDate:   rec.DealDate,
				Quantity:   rec.Quantity,
				Price:      rec.Price,
			}
		}

		for key, item := range desired {
			if err := table.upsert(ctx, tx, item); err != nil {
				return fmt.Errorf("upserting %s (%d,%d,%s): %w", table.scope, key.investorID, key.stockID, key.dealDate, err)
			}
		}

		existing, err := table.listKeys(ctx, tx)
		if err != nil {
			return fmt.Errorf("listing %s keys: %w", table.scope, err)
		}
		var stale []uint64
		for _, row := range existing {
			if _, ok := desired[dealKey{row.InvestorID, row.StockID, dayKey(row.DealDate)}]; !ok {
				stale = append(stale, row.ID)
			}
		}
		if err := table.delete(ctx, tx, stale); err != nil {
			return fmt.Errorf("deleting stale %s: %w", table.scope, err)
		}

		result.Upserted = len(desired)
		result.Deleted = len(stale)
		return nil
	})
	if err != nil {
		return result, err
	}

	if s.Logger != nil {
		s.Logger.Info("deals reconciled",
			zap.String("scope", result.Scope),
			zap.Int("upserted", result.Upserted),
			zap.Int("deleted", result.Deleted),
		)
	}
	return result, nil
}

// dealTableOps binds the kind-generic algorithm to one physical table.
type dealTableOps struct {
	scope    string
	upsert   func(ctx context.Context, tx *gorm.DB, item models.BulkDeal) error
	listKeys func(ctx context.Context, tx *gorm.DB) ([]repository.DealKey, error)
	delete   func(ctx context.Context, tx *gorm.DB, ids []uint64) error
}

func (s *ReconcileService) dealTable(kind source.DealKind) (dealTableOps, error) {
	switch kind {
	case source.DealKindBulk:
		return dealTableOps{
			scope: models.ScopeBulkDeals,
			upsert: func(ctx context.Context, tx *gorm.DB, item models.BulkDeal) error {
				return s.Store.UpsertBulkDealTx(ctx, tx, &item)
			},
			listKeys: s.Store.ListBulkDealKeysTx,
			delete:   s.Store.DeleteBulkDealsTx,
		}, nil
	case source.DealKindBlock:
		return dealTableOps{
			scope: models.ScopeBlockDeals,
			upsert: func(ctx context.Context, tx *gorm.DB, item models.BulkDeal) error {
				block := models.BlockDeal{
					InvestorID: item.InvestorID,
					StockID:    item.StockID,
					DealDate:   item.DealDate,
					Quantity:   item.Quantity,
					Price:      item.Price,
				}
				return s.Store.UpsertBlockDealTx(ctx, tx, &block)
			},
			listKeys: s.Store.ListBlockDealKeysTx,
			delete:   s.Store.DeleteBlockDealsTx,
		}, nil
	}
	return dealTableOps{}, fmt.Errorf("unsupported deal kind: %s", kind)
}

// dayKey normalizes a deal date to its calendar day so batch keys compare
// equal to keys read back from a date column.
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
