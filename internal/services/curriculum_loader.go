package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yungbote/sotfinder-backend/internal/clients/langfeed"
	types "github.com/yungbote/sotfinder-backend/internal/domain/curriculum"
	"github.com/yungbote/sotfinder-backend/internal/observability"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

const (
	loaderGenerated = "generated"
	loaderSkipped   = "skipped"
	loaderFailed    = "failed"
)

type LoaderReport struct {
	Generated []string      `json:"generated"`
	Skipped   []string      `json:"skipped"`
	Failed    []string      `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

type CurriculumLoader interface {
	// RunOnce sweeps every feed language in sorted order. Failures are
	// reported per language; only a feed that cannot list languages at all
	// fails the run.
	RunOnce(ctx context.Context) (LoaderReport, error)
	// Prune deletes stored curricula for languages the feed no longer
	// lists and returns the removed languages.
	Prune(ctx context.Context) ([]string, error)
}

type curriculumLoader struct {
	log      *logger.Logger
	store    CurriculumStore
	pipeline curriculumPipeline
	metrics  *observability.Metrics
}

func NewCurriculumLoader(
	baseLog *logger.Logger,
	store CurriculumStore,
	feed langfeed.Feed,
	merger SourceMerger,
	generator CurriculumGenerator,
	metrics *observability.Metrics,
) CurriculumLoader {
	return &curriculumLoader{
		log:   baseLog.With("service", "CurriculumLoader"),
		store: store,
		pipeline: curriculumPipeline{
			feed:      feed,
			merger:    merger,
			generator: generator,
		},
		metrics: metrics,
	}
}

func (l *curriculumLoader) RunOnce(ctx context.Context) (LoaderReport, error) {
	start := time.Now()
	report := LoaderReport{Generated: []string{}, Skipped: []string{}, Failed: []string{}}
	defer func() {
		report.Duration = time.Since(start)
		l.metrics.ObserveLoaderRun(report.Duration)
	}()

	languages, err := l.pipeline.feed.ListLanguages(ctx)
	if err != nil {
		return report, fmt.Errorf("list languages: %w", err)
	}

	l.log.Info("curriculum sweep started", "languages", len(languages))
	for _, language := range languages {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		outcome, err := l.loadLanguage(ctx, language)
		if err != nil {
			l.log.Warn("curriculum sweep: language failed", "language", language, "error", err)
		}
		l.metrics.IncLoaderLanguage(outcome)
		switch outcome {
		case loaderGenerated:
			report.Generated = append(report.Generated, language)
		case loaderSkipped:
			report.Skipped = append(report.Skipped, language)
		default:
			report.Failed = append(report.Failed, language)
		}
	}

	l.log.Info("curriculum sweep finished",
		"generated", len(report.Generated),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

func (l *curriculumLoader) Prune(ctx context.Context) ([]string, error) {
	languages, err := l.pipeline.feed.ListLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	// an empty feed is more likely an outage than a real removal
	if len(languages) == 0 {
		return nil, errors.New("feed lists no languages; refusing to prune")
	}
	listed := make(map[string]bool, len(languages))
	for _, lang := range languages {
		listed[types.Key(lang)] = true
	}

	stored, err := l.store.StoredLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stored languages: %w", err)
	}
	removed := []string{}
	for _, lang := range stored {
		if listed[types.Key(lang)] {
			continue
		}
		if err := l.store.Delete(ctx, lang); err != nil {
			return removed, err
		}
		l.log.Info("pruned curriculum no longer in feed", "language", lang)
		removed = append(removed, lang)
	}
	return removed, nil
}

func (l *curriculumLoader) loadLanguage(ctx context.Context, language string) (outcome string, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = loaderFailed
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	key := types.Key(language)
	in, err := l.pipeline.load(ctx, key)
	if err != nil {
		return loaderFailed, err
	}

	stored, exists, err := l.store.StoredHash(ctx, key)
	if err != nil {
		return loaderFailed, fmt.Errorf("read stored hash: %w", err)
	}
	if exists && stored != "" && stored == in.hash {
		l.log.Debug("topics unchanged; skipping", "language", key, "hash", in.hash)
		return loaderSkipped, nil
	}

	c := l.pipeline.build(ctx, key, in)
	if c.IsFallback() {
		// keep a previously generated curriculum rather than overwrite it
		// with the stub; seed the stub only when nothing is stored yet
		if exists {
			return loaderFailed, errors.New("generation fell back; kept stored curriculum")
		}
		if err := l.store.Put(ctx, c); err != nil {
			return loaderFailed, err
		}
		return loaderFailed, errors.New("generation fell back; stored fallback stub")
	}

	if err := l.store.Put(ctx, c); err != nil {
		return loaderFailed, err
	}
	l.log.Info("curriculum regenerated",
		"language", key,
		"previous_hash", stored,
		"hash", in.hash,
		"model_version", c.ModelVersion,
	)
	return loaderGenerated, nil
}
