package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"investorwatch/internal/config"
	"investorwatch/internal/models"
	"investorwatch/internal/repository"
	"investorwatch/internal/source"
)

// ErrRunInProgress is returned when a run is requested while one is already
// executing. Callers treat it as a skip, not a failure.
var ErrRunInProgress = errors.New("ingest run already in progress")

type namedSource struct {
	investor string
	src      source.Source
}

// IngestService drives one full refresh cycle: fetch every configured
// investor page, then reconcile holdings, bulk deals and block deals from
// the gathered records. At most one run executes at a time.
type IngestService struct {
	Reconcile   *ReconcileService
	Store       repository.Repository
	Logger      *zap.Logger
	Concurrency int

	sources []namedSource
	mu      sync.Mutex
}

type RunResult struct {
	Holdings        ReconcileResult `json:"holdings"`
	BulkDeals       ReconcileResult `json:"bulk_deals"`
	BlockDeals      ReconcileResult `json:"block_deals"`
	FailedInvestors []string        `json:"failed_investors,omitempty"`
	StartedAt       time.Time       `json:"started_at"`
	FinishedAt      time.Time       `json:"finished_at"`
}

// NewIngestService builds a source for every configured investor up front, so
// an unsupported URL fails service start instead of a scheduled run.
func NewIngestService(cfg config.IngestConfig, investors map[string]string, fetcher source.Fetcher, reconcile *ReconcileService, store repository.Repository, logger *zap.Logger) (*IngestService, error) {
	s := &IngestService{
		Reconcile:   reconcile,
		Store:       store,
		Logger:      logger,
		Concurrency: cfg.Concurrency,
	}
	if s.Concurrency <= 0 {
		s.Concurrency = 1
	}

	names := make([]string, 0, len(investors))
	for name := range investors {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		src, err := source.New(name, investors[name], fetcher)
		if err != nil {
			return nil, fmt.Errorf("configuring source for %q: %w", name, err)
		}
		s.sources = append(s.sources, namedSource{investor: name, src: src})
	}
	return s, nil
}

// Run executes one refresh cycle. A failed fetch for an investor is logged
// and recorded; the run continues with the remaining investors, and the
// failed investor contributes no records, so its persisted rows are removed
// during reconciliation.
func (s *IngestService) Run(ctx context.Context) (RunResult, error) {
	if !s.mu.TryLock() {
		return RunResult{}, ErrRunInProgress
	}
	defer s.mu.Unlock()

	result := RunResult{StartedAt: time.Now().UTC()}
	s.Logger.Info("ingest run started", zap.Int("investors", len(s.sources)))

	holdings, deals, failed := s.gather(ctx)
	result.FailedInvestors = failed

	var err error
	result.Holdings, err = s.reconcileScope(ctx, models.ScopeHoldings, func() (ReconcileResult, error) {
		return s.Reconcile.ReconcileHoldings(ctx, holdings)
	})
	if err != nil {
		return result, fmt.Errorf("reconciling holdings: %w", err)
	}

	result.BulkDeals, err = s.reconcileScope(ctx, models.ScopeBulkDeals, func() (ReconcileResult, error) {
		return s.Reconcile.ReconcileDeals(ctx, deals, source.DealKindBulk)
	})
	if err != nil {
		return result, fmt.Errorf("reconciling bulk deals: %w", err)
	}

	result.BlockDeals, err = s.reconcileScope(ctx, models.ScopeBlockDeals, func() (ReconcileResult, error) {
		return s.Reconcile.ReconcileDeals(ctx, deals, source.DealKindBlock)
	})
	if err != nil {
		return result, fmt.Errorf("reconciling block deals: %w", err)
	}

	result.FinishedAt = time.Now().UTC()
	s.Logger.Info("ingest run finished",
		zap.Duration("elapsed", result.FinishedAt.Sub(result.StartedAt)),
		zap.Strings("failed_investors", failed),
	)
	return result, nil
}

// gather fetches all investor pages with bounded concurrency. Holdings are
// fetched before deals per investor; a holdings failure skips the deals
// fetch, while a deals failure keeps the already fetched holdings.
func (s *IngestService) gather(ctx context.Context) ([]source.Holding, []source.Deal, []string) {
	var (
		mu       sync.Mutex
		holdings []source.Holding
		deals    []source.Deal
		failed   []string
		wg       sync.WaitGroup
	)
	sem := make(chan struct{}, s.Concurrency)

	for _, ns := range s.sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			// A holdings failure drops the investor's whole contribution;
			// deals are not fetched. A deals failure after a successful
			// holdings fetch still keeps the holdings.
			h, err := ns.src.FetchHoldings(ctx)
			if err != nil {
				s.Logger.Error("holdings fetch failed",
					zap.String("investor", ns.investor),
					zap.Error(err),
				)
				mu.Lock()
				failed = append(failed, ns.investor)
				mu.Unlock()
				return
			}

			d, err := ns.src.FetchDeals(ctx)
			if err != nil {
				s.Logger.Error("deals fetch failed",
					zap.String("investor", ns.investor),
					zap.Error(err),
				)
				mu.Lock()
				holdings = append(holdings, h...)
				failed = append(failed, ns.investor)
				mu.Unlock()
				return
			}

			mu.Lock()
			holdings = append(holdings, h...)
			deals = append(deals, d...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Strings(failed)
	return holdings, deals, failed
}

// reconcileScope runs one reconcile step and records its outcome in
// sync_state. A bookkeeping write failure is logged but does not fail the
// run; a reconcile failure does.
func (s *IngestService) reconcileScope(ctx context.Context, scope string, fn func() (ReconcileResult, error)) (ReconcileResult, error) {
	now := time.Now().UTC()
	state := models.SyncState{Scope: scope, LastAttemptAt: &now}

	result, err := fn()
	if err != nil {
		msg := err.Error()
		state.LastError = &msg
		if saveErr := s.Store.SaveSyncState(ctx, &state); saveErr != nil {
			s.Logger.Error("saving sync state failed", zap.String("scope", scope), zap.Error(saveErr))
		}
		return result, err
	}

	done := time.Now().UTC()
	state.LastSuccessAt = &done
	stats, marshalErr := json.Marshal(map[string]int{
		"upserted": result.Upserted,
		"deleted":  result.Deleted,
	})
	if marshalErr == nil {
		state.StatsJSON = datatypes.JSON(stats)
	}
	if saveErr := s.Store.SaveSyncState(ctx, &state); saveErr != nil {
		s.Logger.Error("saving sync state failed", zap.String("scope", scope), zap.Error(saveErr))
	}
	return result, nil
}
