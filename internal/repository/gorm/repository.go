package gormrepository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"investorwatch/internal/models"
	"investorwatch/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- identity resolution ----------------------------------------------------

func (s *Store) UpsertInvestorTx(ctx context.Context, tx *gorm.DB, name, sourceURL string) (uint64, error) {
	item := models.Investor{Name: strings.TrimSpace(name), SourceURL: sourceURL}
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"source_url", "updated_at"}),
	}).Create(&item).Error
	if err != nil {
		return 0, err
	}
	return item.ID, nil
}

// EnsureStockTx inserts the ticker if unseen; on conflict the existing row
// wins and its id is looked up (first-writer-wins).
func (s *Store) EnsureStockTx(ctx context.Context, tx *gorm.DB, ticker string) (uint64, error) {
	item := models.Stock{Ticker: strings.TrimSpace(ticker)}
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}},
		DoNothing: true,
	}).Create(&item).Error
	if err != nil {
		return 0, err
	}
	if item.ID != 0 {
		return item.ID, nil
	}
	var existing models.Stock
	if err := tx.WithContext(ctx).Where("ticker = ?", item.Ticker).First(&existing).Error; err != nil {
		return 0, err
	}
	return existing.ID, nil
}

// --- holdings ----------------------------------------------------------------

func (s *Store) UpsertHoldingTx(ctx context.Context, tx *gorm.DB, item *models.Holding) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "investor_id"}, {Name: "stock_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"percent_holding", "shares", "reported_date", "updated_at"}),
	}).Create(item).Error
}

func (s *Store) ListHoldingKeysTx(ctx context.Context, tx *gorm.DB) ([]repository.HoldingKey, error) {
	var keys []repository.HoldingKey
	err := tx.WithContext(ctx).Model(&models.Holding{}).
		Select("id", "investor_id", "stock_id").
		Find(&keys).Error
	return keys, err
}

func (s *Store) DeleteHoldingsTx(ctx context.Context, tx *gorm.DB, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Holding{}).Error
}

// --- deals -------------------------------------------------------------------

func (s *Store) UpsertBulkDealTx(ctx context.Context, tx *gorm.DB, item *models.BulkDeal) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "investor_id"}, {Name: "stock_id"}, {Name: "deal_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "price", "updated_at"}),
	}).Create(item).Error
}

func (s *Store) ListBulkDealKeysTx(ctx context.Context, tx *gorm.DB) ([]repository.DealKey, error) {
	var keys []repository.DealKey
	err := tx.WithContext(ctx).Model(&models.BulkDeal{}).
		Select("id", "investor_id", "stock_id", "deal_date").
		Find(&keys).Error
	return keys, err
}

func (s *Store) DeleteBulkDealsTx(ctx context.Context, tx *gorm.DB, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Where("id IN ?", ids).Delete(&models.BulkDeal{}).Error
}

func (s *Store) UpsertBlockDealTx(ctx context.Context, tx *gorm.DB, item *models.BlockDeal) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "investor_id"}, {Name: "stock_id"}, {Name: "deal_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "price", "updated_at"}),
	}).Create(item).Error
}

func (s *Store) ListBlockDealKeysTx(ctx context.Context, tx *gorm.DB) ([]repository.DealKey, error) {
	var keys []repository.DealKey
	err := tx.WithContext(ctx).Model(&models.BlockDeal{}).
		Select("id", "investor_id", "stock_id", "deal_date").
		Find(&keys).Error
	return keys, err
}

func (s *Store) DeleteBlockDealsTx(ctx context.Context, tx *gorm.DB, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Where("id IN ?", ids).Delete(&models.BlockDeal{}).Error
}

// --- run bookkeeping ---------------------------------------------------------

// SaveSyncState upserts one scope's bookkeeping row. last_success_at and
// stats_json survive a failed attempt: a nil incoming value keeps the stored
// one, so the row always shows the most recent successful run alongside the
// most recent error.
func (s *Store) SaveSyncState(ctx context.Context, state *models.SyncState) error {
	if s == nil || s.db == nil || state == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "scope"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_attempt_at": gorm.Expr("excluded.last_attempt_at"),
			"last_success_at": gorm.Expr("COALESCE(excluded.last_success_at, sync_state.last_success_at)"),
			"last_error":      gorm.Expr("excluded.last_error"),
			"stats_json":      gorm.Expr("COALESCE(excluded.stats_json, sync_state.stats_json)"),
		}),
	}).Create(state).Error
}

func (s *Store) ListSyncStates(ctx context.Context) ([]models.SyncState, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.SyncState
	if err := s.db.WithContext(ctx).Order("scope asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- schedule ----------------------------------------------------------------

func (s *Store) GetSchedule(ctx context.Context) (*models.IngestSchedule, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.IngestSchedule
	err := s.db.WithContext(ctx).First(&item, "id = ?", models.ScheduleSingletonID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) InsertScheduleIfAbsent(ctx context.Context, item *models.IngestSchedule) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(item).Error
}

func (s *Store) SaveSchedule(ctx context.Context, item *models.IngestSchedule) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"hour", "minute", "timezone", "updated_at"}),
	}).Create(item).Error
}

// --- presentation reads ------------------------------------------------------

func (s *Store) ListHoldingsView(ctx context.Context) ([]repository.HoldingView, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var rows []repository.HoldingView
	err := s.db.WithContext(ctx).Table("holdings").
		Select("stocks.ticker AS ticker, investors.name AS investor, holdings.percent_holding, holdings.shares, holdings.reported_date").
		Joins("JOIN investors ON investors.id = holdings.investor_id").
		Joins("JOIN stocks ON stocks.id = holdings.stock_id").
		Order("stocks.ticker, investors.name").
		Find(&rows).Error
	return rows, err
}

func (s *Store) ListBulkDealsView(ctx context.Context) ([]repository.DealView, error) {
	return s.listDealsView(ctx, "bulk_deals")
}

func (s *Store) ListBlockDealsView(ctx context.Context) ([]repository.DealView, error) {
	return s.listDealsView(ctx, "block_deals")
}

func (s *Store) listDealsView(ctx context.Context, table string) ([]repository.DealView, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var rows []repository.DealView
	err := s.db.WithContext(ctx).Table(table).
		Select("stocks.ticker AS ticker, investors.name AS investor, "+table+".deal_date, "+table+".quantity, "+table+".price").
		Joins("JOIN investors ON investors.id = "+table+".investor_id").
		Joins("JOIN stocks ON stocks.id = "+table+".stock_id").
		Order(table + ".deal_date DESC, stocks.ticker, investors.name").
		Find(&rows).Error
	return rows, err
}
