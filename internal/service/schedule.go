package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"investorwatch/internal/models"
	"investorwatch/internal/repository"
)

// ErrInvalidSchedule is returned by Update for out-of-range fields or an
// unknown timezone. Validation runs before any write, so a rejected update
// leaves both the stored row and the active trigger untouched.
var ErrInvalidSchedule = errors.New("invalid schedule")

// Trigger is the slice of the cron runner the schedule controller needs.
type Trigger interface {
	Add(spec string, job func(ctx context.Context)) (cron.EntryID, error)
	Remove(id cron.EntryID)
}

// ScheduleService owns the single persisted schedule row and keeps exactly
// one cron trigger registered for it.
type ScheduleService struct {
	Store   repository.Repository
	Trigger Trigger
	Logger  *zap.Logger
	Job     func(ctx context.Context)

	mu      sync.Mutex
	entryID cron.EntryID
	active  bool
}

// GetOrCreate returns the stored schedule, seeding the default daily run at
// 02:00 UTC on first use.
func (s *ScheduleService) GetOrCreate(ctx context.Context) (*models.IngestSchedule, error) {
	item, err := s.Store.GetSchedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading schedule: %w", err)
	}
	if item != nil {
		return item, nil
	}

	seed := models.IngestSchedule{
		ID:       models.ScheduleSingletonID,
		Hour:     models.DefaultScheduleHour,
		Minute:   models.DefaultScheduleMinute,
		Timezone: models.DefaultScheduleTimezone,
	}
	if err := s.Store.InsertScheduleIfAbsent(ctx, &seed); err != nil {
		return nil, fmt.Errorf("seeding schedule: %w", err)
	}
	// Re-read so a concurrent seeder's row wins over ours.
	item, err = s.Store.GetSchedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading schedule: %w", err)
	}
	return item, nil
}

// Update validates and persists a new schedule, then replaces the active
// trigger. An empty timezone keeps the current one.
func (s *ScheduleService) Update(ctx context.Context, hour, minute int, timezone string) (*models.IngestSchedule, error) {
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("%w: hour %d out of range", ErrInvalidSchedule, hour)
	}
	if minute < 0 || minute > 59 {
		return nil, fmt.Errorf("%w: minute %d out of range", ErrInvalidSchedule, minute)
	}

	current, err := s.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	if timezone == "" {
		timezone = current.Timezone
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidSchedule, timezone)
	}

	current.Hour = hour
	current.Minute = minute
	current.Timezone = timezone
	if err := s.Store.SaveSchedule(ctx, current); err != nil {
		return nil, fmt.Errorf("saving schedule: %w", err)
	}

	if err := s.Configure(current); err != nil {
		return nil, err
	}
	return current, nil
}

// Configure points the single cron trigger at the given schedule, removing
// the previous trigger first.
func (s *ScheduleService) Configure(item *models.IngestSchedule) error {
	spec := fmt.Sprintf("CRON_TZ=%s 0 %d %d * * *", item.Timezone, item.Minute, item.Hour)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		s.Trigger.Remove(s.entryID)
		s.active = false
	}
	id, err := s.Trigger.Add(spec, s.Job)
	if err != nil {
		return fmt.Errorf("registering schedule trigger: %w", err)
	}
	s.entryID = id
	s.active = true

	s.Logger.Info("ingest schedule configured",
		zap.Int("hour", item.Hour),
		zap.Int("minute", item.Minute),
		zap.String("timezone", item.Timezone),
	)
	return nil
}
