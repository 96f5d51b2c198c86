package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/pawdue/pawdue/internal/alarm"
	"github.com/pawdue/pawdue/internal/config"
	"github.com/pawdue/pawdue/internal/domain/dogs"
	"github.com/pawdue/pawdue/internal/logger"
	"github.com/pawdue/pawdue/internal/presentation"
	"github.com/pawdue/pawdue/internal/review"
	"github.com/pawdue/pawdue/internal/runloop"
	"github.com/pawdue/pawdue/internal/scheduler"
	"github.com/pawdue/pawdue/internal/store"
	"github.com/pawdue/pawdue/internal/ui"
)

// Options configures an agent run.
type Options struct {
	// ConfigPath is the settings file path, empty for the default.
	ConfigPath string
	// Seed populates an empty store with a demo dog.
	Seed bool
}

// collectionSink rebuilds scheduler clocks after collection mutations. The
// coordinator already applied the mutation; only the clock set is stale.
type collectionSink struct {
	manager *dogs.Manager
	sched   *scheduler.Scheduler
}

func (s *collectionSink) ReminderUpdated(_ string, _ *dogs.Reminder) {
	s.sched.Reinitialize(s.manager)
}

func (s *collectionSink) ReminderRemoved(_, _ string) {
	s.sched.Reinitialize(s.manager)
}

func (s *collectionSink) LogAdded(_ string, _ *dogs.Log) {}

func (s *collectionSink) LogRemoved(_, _ string) {}

// Run wires the runtime together and blocks until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	st, err := store.NewSQLiteStore(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Store close failed", "error", closeErr)
		}
	}()

	if opts.Seed {
		if err = seedDemoDog(ctx, st); err != nil {
			return err
		}
	}

	manager, err := st.FetchDogs(ctx)
	if err != nil {
		return fmt.Errorf("fetch collection: %w", err)
	}

	loop := runloop.New()
	queue := presentation.NewQueue(ctx, loop, cfg.HostPollInterval)
	gate := review.New(ctx, queue, cfg.ReviewPromptSpacing, cfg.ReviewMinCompleted)
	sink := &collectionSink{manager: manager}

	coordinator := alarm.New(ctx, alarm.Deps{
		Loop:      loop,
		Store:     st,
		Manager:   manager,
		Queue:     queue,
		Sink:      sink,
		Lifecycle: ui.ForegroundLifecycle{},
		Review:    gate,
	}, alarm.Config{
		SnoozeLength:       cfg.SnoozeLength,
		ReplayStagger:      cfg.ReplayStagger,
		UnskipLogTolerance: cfg.UnskipLogTolerance,
	})

	sched := scheduler.New(ctx, loop, coordinator)
	sink.sched = sched

	surface := ui.NewConsoleSurface(ctx, loop, queue, os.Stdin, os.Stdout)

	loop.Post(func() {
		queue.SetHost(surface)
		sched.Initialize(manager)
	})

	logger.InfoKV(ctx, "Agent started",
		"store", cfg.StorePath,
		"dogs", len(manager.Dogs))

	loop.Run(ctx)
	sched.InvalidateAll()

	logger.Info(ctx, "Agent stopped")

	return nil
}

// loadConfig reads the settings file, falling back to defaults when it does
// not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg = new(config.Config)
	if err = config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// seedDemoDog inserts a sample dog when the store is empty.
func seedDemoDog(ctx context.Context, st *store.SQLiteStore) error {
	manager, err := st.FetchDogs(ctx)
	if err != nil {
		return fmt.Errorf("fetch collection: %w", err)
	}

	if len(manager.Dogs) > 0 {
		return nil
	}

	now := time.Now()
	dogID := uuid.NewString()

	demo := &dogs.Dog{
		ID:   dogID,
		Name: "Biscuit",
		Reminders: []*dogs.Reminder{
			{
				ID:             uuid.NewString(),
				DogID:          dogID,
				Action:         dogs.Action{Kind: dogs.ActionFeed},
				Kind:           dogs.KindCountdown,
				IsEnabled:      true,
				ExecutionBasis: now,
				Countdown:      dogs.CountdownComponents{Interval: 8 * time.Hour},
			},
			{
				ID:             uuid.NewString(),
				DogID:          dogID,
				Action:         dogs.Action{Kind: dogs.ActionToilet},
				Kind:           dogs.KindWeekly,
				IsEnabled:      true,
				ExecutionBasis: now,
				Weekly: dogs.WeeklyComponents{
					Weekdays: []time.Weekday{
						time.Monday, time.Wednesday, time.Friday,
					},
					Hour:   8,
					Minute: 0,
				},
			},
			{
				ID:             uuid.NewString(),
				DogID:          dogID,
				Action:         dogs.Action{Kind: dogs.ActionMedicine},
				Kind:           dogs.KindOneTime,
				IsEnabled:      true,
				ExecutionBasis: now,
				OneTime:        dogs.OneTimeComponents{Date: now.Add(time.Minute)},
			},
		},
	}

	if err = st.UpsertDog(ctx, demo); err != nil {
		return fmt.Errorf("seed demo dog: %w", err)
	}

	logger.InfoKV(ctx, "Seeded demo dog", "dog_id", dogID)

	return nil
}
