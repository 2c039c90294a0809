package service

import (
	"context"
	"errors"
	"testing"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"investorwatch/internal/models"
)

// stubTrigger records registered cron specs and removals.
type stubTrigger struct {
	nextID  cron.EntryID
	specs   map[cron.EntryID]string
	removed []cron.EntryID
	addErr  error
}

func newStubTrigger() *stubTrigger {
	return &stubTrigger{specs: map[cron.EntryID]string{}}
}

func (t *stubTrigger) Add(spec string, job func(ctx context.Context)) (cron.EntryID, error) {
	if t.addErr != nil {
		return 0, t.addErr
	}
	t.nextID++
	t.specs[t.nextID] = spec
	return t.nextID, nil
}

func (t *stubTrigger) Remove(id cron.EntryID) {
	delete(t.specs, id)
	t.removed = append(t.removed, id)
}

func newTestSchedule(store *stubStore, trigger *stubTrigger) *ScheduleService {
	return &ScheduleService{
		Store:   store,
		Trigger: trigger,
		Logger:  zap.NewNop(),
		Job:     func(ctx context.Context) {},
	}
}

func TestScheduleGetOrCreateSeedsDefault(t *testing.T) {
	store := newStubStore()
	svc := newTestSchedule(store, newStubTrigger())

	item, err := svc.GetOrCreate(context.Background())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if item.ID != models.ScheduleSingletonID {
		t.Fatalf("id=%d", item.ID)
	}
	if item.Hour != 2 || item.Minute != 0 || item.Timezone != "UTC" {
		t.Fatalf("schedule=%+v", item)
	}

	// second call returns the stored row, not a fresh seed
	item.Hour = 9
	if err := store.SaveSchedule(context.Background(), item); err != nil {
		t.Fatalf("err=%v", err)
	}
	again, err := svc.GetOrCreate(context.Background())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if again.Hour != 9 {
		t.Fatalf("hour=%d want=9", again.Hour)
	}
}

func TestScheduleUpdate(t *testing.T) {
	store := newStubStore()
	trigger := newStubTrigger()
	svc := newTestSchedule(store, trigger)

	item, err := svc.Update(context.Background(), 9, 30, "Asia/Kolkata")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if item.Hour != 9 || item.Minute != 30 || item.Timezone != "Asia/Kolkata" {
		t.Fatalf("schedule=%+v", item)
	}
	if store.schedule.Hour != 9 {
		t.Fatalf("stored=%+v", store.schedule)
	}
	if len(trigger.specs) != 1 {
		t.Fatalf("specs=%v want one active trigger", trigger.specs)
	}
	for _, spec := range trigger.specs {
		if spec != "CRON_TZ=Asia/Kolkata 0 30 9 * * *" {
			t.Fatalf("spec=%q", spec)
		}
	}
}

func TestScheduleUpdateEmptyTimezoneKeepsCurrent(t *testing.T) {
	store := newStubStore()
	svc := newTestSchedule(store, newStubTrigger())

	if _, err := svc.Update(context.Background(), 9, 30, "Asia/Kolkata"); err != nil {
		t.Fatalf("err=%v", err)
	}
	item, err := svc.Update(context.Background(), 10, 0, "")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if item.Timezone != "Asia/Kolkata" {
		t.Fatalf("timezone=%q", item.Timezone)
	}
}

func TestScheduleUpdateRejectsInvalid(t *testing.T) {
	store := newStubStore()
	trigger := newStubTrigger()
	svc := newTestSchedule(store, trigger)

	cases := []struct {
		hour, minute int
		timezone     string
	}{
		{24, 0, "UTC"},
		{-1, 0, "UTC"},
		{5, 60, "UTC"},
		{5, -1, "UTC"},
		{5, 0, "Mars/Olympus"},
	}
	for _, tc := range cases {
		_, err := svc.Update(context.Background(), tc.hour, tc.minute, tc.timezone)
		if !errors.Is(err, ErrInvalidSchedule) {
			t.Fatalf("Update(%d,%d,%q) err=%v want ErrInvalidSchedule", tc.hour, tc.minute, tc.timezone, err)
		}
	}

	// the hour/minute rejections happen before any read or write
	if store.schedule != nil && store.schedule.Hour != models.DefaultScheduleHour {
		t.Fatalf("stored schedule mutated: %+v", store.schedule)
	}
	if len(trigger.specs) != 0 {
		t.Fatalf("trigger registered despite invalid update: %v", trigger.specs)
	}
}

func TestScheduleConfigureReplacesTrigger(t *testing.T) {
	store := newStubStore()
	trigger := newStubTrigger()
	svc := newTestSchedule(store, trigger)

	item := &models.IngestSchedule{ID: 1, Hour: 2, Minute: 0, Timezone: "UTC"}
	if err := svc.Configure(item); err != nil {
		t.Fatalf("err=%v", err)
	}
	item.Hour = 6
	if err := svc.Configure(item); err != nil {
		t.Fatalf("err=%v", err)
	}

	if len(trigger.specs) != 1 {
		t.Fatalf("specs=%v want exactly one active trigger", trigger.specs)
	}
	if len(trigger.removed) != 1 {
		t.Fatalf("removed=%v want one removal", trigger.removed)
	}
	for _, spec := range trigger.specs {
		if spec != "CRON_TZ=UTC 0 0 6 * * *" {
			t.Fatalf("spec=%q", spec)
		}
	}
}
