package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/sotfinder-backend/internal/clients/langfeed"
	"github.com/yungbote/sotfinder-backend/internal/services"
)

const (
	TaskCurriculumSweep = "curriculum_sweep"
	TaskFeedRefresh     = "language_feed_refresh"

	DefaultLoaderSpec = "0 0 3 * * *"
)

type CurriculumJobsConfig struct {
	LoaderSpec   string
	RunOnStart   bool
	FeedInterval time.Duration
}

// RegisterCurriculumJobs schedules the daily curriculum sweep and, when an
// interval is set, periodic feed refreshes. With RunOnStart the sweep also
// runs once immediately in the background.
func RegisterCurriculumJobs(s *Scheduler, loader services.CurriculumLoader, feed langfeed.Feed, cfg CurriculumJobsConfig) error {
	if loader == nil {
		return fmt.Errorf("curriculum loader required")
	}
	spec := strings.TrimSpace(cfg.LoaderSpec)
	if spec == "" {
		spec = DefaultLoaderSpec
	}

	sweep := SweepTask(loader)
	if err := s.AddCronTask(TaskCurriculumSweep, spec, sweep); err != nil {
		return err
	}

	if feed != nil && cfg.FeedInterval > 0 {
		if err := s.AddIntervalTask(TaskFeedRefresh, cfg.FeedInterval, feed.Refresh); err != nil {
			return err
		}
	}

	if cfg.RunOnStart {
		s.RunNow(TaskCurriculumSweep, sweep)
	}
	return nil
}

// SweepTask adapts a loader run to a TaskFunc. Per-language failures are
// part of the report, not an error.
func SweepTask(loader services.CurriculumLoader) TaskFunc {
	return func(ctx context.Context) error {
		_, err := loader.RunOnce(ctx)
		return err
	}
}
