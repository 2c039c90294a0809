package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"investorwatch/internal/models"
	"investorwatch/internal/repository"
)

// stubStore is a test-only in-memory implementation of repository.Repository.
// Identity tables and snapshot tables behave like their SQL counterparts,
// including conflict-key upserts; views are left empty because service tests
// never read them.
type stubStore struct {
	nextID       uint64
	investors    map[string]uint64
	investorURLs map[uint64]string
	stocks       map[string]uint64
	holdings     map[uint64]models.Holding
	bulkDeals    map[uint64]models.BulkDeal
	blockDeals   map[uint64]models.BlockDeal
	syncStates   map[string]models.SyncState
	schedule     *models.IngestSchedule

	failTx bool
}

func newStubStore() *stubStore {
	return &stubStore{
		investors:    map[string]uint64{},
		investorURLs: map[uint64]string{},
		stocks:       map[string]uint64{},
		holdings:     map[uint64]models.Holding{},
		bulkDeals:    map[uint64]models.BulkDeal{},
		blockDeals:   map[uint64]models.BlockDeal{},
		syncStates:   map[string]models.SyncState{},
	}
}

func (s *stubStore) newID() uint64 {
	s.nextID++
	return s.nextID
}

func (s *stubStore) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.failTx {
		return errors.New("tx failed")
	}
	return fn(nil)
}

func (s *stubStore) UpsertInvestorTx(ctx context.Context, tx *gorm.DB, name, sourceURL string) (uint64, error) {
	if id, ok := s.investors[name]; ok {
		s.investorURLs[id] = sourceURL
		return id, nil
	}
	id := s.newID()
	s.investors[name] = id
	s.investorURLs[id] = sourceURL
	return id, nil
}

func (s *stubStore) EnsureStockTx(ctx context.Context, tx *gorm.DB, ticker string) (uint64, error) {
	if id, ok := s.stocks[ticker]; ok {
		return id, nil
	}
	id := s.newID()
	s.stocks[ticker] = id
	return id, nil
}

func (s *stubStore) UpsertHoldingTx(ctx context.Context, tx *gorm.DB, item *models.Holding) error {
	for id, existing := range s.holdings {
		if existing.InvestorID == item.InvestorID && existing.StockID == item.StockID {
			item.ID = id
			s.holdings[id] = *item
			return nil
		}
	}
	item.ID = s.newID()
	s.holdings[item.ID] = *item
	return nil
}

func (s *stubStore) ListHoldingKeysTx(ctx context.Context, tx *gorm.DB) ([]repository.HoldingKey, error) {
	out := make([]repository.HoldingKey, 0, len(s.holdings))
	for id, item := range s.holdings {
		out = append(out, repository.HoldingKey{ID: id, InvestorID: item.InvestorID, StockID: item.StockID})
	}
	return out, nil
}

func (s *stubStore) DeleteHoldingsTx(ctx context.Context, tx *gorm.DB, ids []uint64) error {
	for _, id := range ids {
		delete(s.holdings, id)
	}
	return nil
}

func (s *stubStore) UpsertBulkDealTx(ctx context.Context, tx *gorm.DB, item *models.BulkDeal) error {
	for id, existing := range s.bulkDeals {
		if existing.InvestorID == item.InvestorID && existing.StockID == item.StockID && existing.DealDate.Equal(item.DealDate) {
			item.ID = id
			s.bulkDeals[id] = *item
			return nil
		}
	}
	item.ID = s.newID()
	s.bulkDeals[item.ID] = *item
	return nil
}

func (s *stubStore) ListBulkDealKeysTx(ctx context.Context, tx *gorm.DB) ([]repository.DealKey, error) {
	out := make([]repository.DealKey, 0, len(s.bulkDeals))
	for id, item := range s.bulkDeals {
		out = append(out, repository.DealKey{ID: id, InvestorID: item.InvestorID, StockID: item.StockID, DealDate: item.DealDate})
	}
	return out, nil
}

func (s *stubStore) DeleteBulkDealsTx(ctx context.Context, tx *gorm.DB, ids []uint64) error {
	for _, id := range ids {
		delete(s.bulkDeals, id)
	}
	return nil
}

func (s *stubStore) UpsertBlockDealTx(ctx context.Context, tx *gorm.DB, item *models.BlockDeal) error {
	for id, existing := range s.blockDeals {
		if existing.InvestorID == item.InvestorID && existing.StockID == item.StockID && existing.DealDate.Equal(item.DealDate) {
			item.ID = id
			s.blockDeals[id] = *item
			return nil
		}
	}
	item.ID = s.newID()
	s.blockDeals[item.ID] = *item
	return nil
}

func (s *stubStore) ListBlockDealKeysTx(ctx context.Context, tx *gorm.DB) ([]repository.DealKey, error) {
	out := make([]repository.DealKey, 0, len(s.blockDeals))
	for id, item := range s.blockDeals {
		out = append(out, repository.DealKey{ID: id, InvestorID: item.InvestorID, StockID: item.StockID, DealDate: item.DealDate})
	}
	return out, nil
}

func (s *stubStore) DeleteBlockDealsTx(ctx context.Context, tx *gorm.DB, ids []uint64) error {
	for _, id := range ids {
		delete(s.blockDeals, id)
	}
	return nil
}

// SaveSyncState mirrors the gorm store's conflict assignments: the attempt
// timestamp and error always overwrite, success timestamp and stats coalesce
// with the stored value.
func (s *stubStore) SaveSyncState(ctx context.Context, state *models.SyncState) error {
	existing, ok := s.syncStates[state.Scope]
	if ok {
		existing.LastAttemptAt = state.LastAttemptAt
		if state.LastSuccessAt != nil {
			existing.LastSuccessAt = state.LastSuccessAt
		}
		existing.LastError = state.LastError
		if len(state.StatsJSON) > 0 {
			existing.StatsJSON = state.StatsJSON
		}
		s.syncStates[state.Scope] = existing
		return nil
	}
	s.syncStates[state.Scope] = *state
	return nil
}

func (s *stubStore) ListSyncStates(ctx context.Context) ([]models.SyncState, error) {
	out := make([]models.SyncState, 0, len(s.syncStates))
	for _, state := range s.syncStates {
		out = append(out, state)
	}
	return out, nil
}

func (s *stubStore) GetSchedule(ctx context.Context) (*models.IngestSchedule, error) {
	if s.schedule == nil {
		return nil, nil
	}
	copied := *s.schedule
	return &copied, nil
}

func (s *stubStore) InsertScheduleIfAbsent(ctx context.Context, item *models.IngestSchedule) error {
	if s.schedule == nil {
		copied := *item
		s.schedule = &copied
	}
	return nil
}

func (s *stubStore) SaveSchedule(ctx context.Context, item *models.IngestSchedule) error {
	copied := *item
	s.schedule = &copied
	return nil
}

func (s *stubStore) ListHoldingsView(ctx context.Context) ([]repository.HoldingView, error) {
	return nil, nil
}

func (s *stubStore) ListBulkDealsView(ctx context.Context) ([]repository.DealView, error) {
	return nil, nil
}

func (s *stubStore) ListBlockDealsView(ctx context.Context) ([]repository.DealView, error) {
	return nil, nil
}
