// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"educa/logger"
	courseModels "educa/models/course"
)

// DanglingStore finds and removes content associations whose item is gone.
type DanglingStore interface {
	FindDangling(ctx context.Context) ([]courseModels.Content, error)
	Prune(ctx context.Context, dangling []courseModels.Content) (int64, error)
}

type Sweeper struct {
	store DanglingStore
	prune bool
	log   *logger.Logger
	cron  *cron.Cron
}

func NewSweeper(store DanglingStore, prune bool, log *logger.Logger) *Sweeper {
	if log == nil {
		log = logger.Nop()
	}
	return &Sweeper{store: store, prune: prune, log: log.With("job", "DanglingContentSweep")}
}

// Start schedules the sweep. An empty schedule disables it.
func (s *Sweeper) Start(schedule string) error {
	if schedule == "" {
		s.log.Info("dangling content sweep disabled")
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.Run(ctx); err != nil {
			s.log.Error("dangling content sweep failed", "error", err)
		}
	}); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	s.log.Info("dangling content sweep scheduled", "schedule", schedule, "prune", s.prune)
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// Run performs one sweep and returns the number of dangling associations
// found.
func (s *Sweeper) Run(ctx context.Context) (int, error) {
	dangling, err := s.store.FindDangling(ctx)
	if err != nil {
		return 0, err
	}
	for _, c := range dangling {
		s.log.Warn("dangling content reference", "content_id", c.ID, "module_id", c.ModuleID, "kind", c.ItemType, "item_id", c.ItemID)
	}
	if s.prune && len(dangling) > 0 {
		if _, err := s.store.Prune(ctx, dangling); err != nil {
			return len(dangling), err
		}
	}
	return len(dangling), nil
}
