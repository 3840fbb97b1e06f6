package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yungbote/sotfinder-backend/internal/clients/langfeed"
	types "github.com/yungbote/sotfinder-backend/internal/domain/curriculum"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

type LanguageOverview struct {
	Sources    []types.CanonicalSource `json:"sources"`
	Curriculum *types.Curriculum       `json:"curriculum"`
}

type LanguageSummary struct {
	Slug          string       `json:"slug"`
	Name          string       `json:"name"`
	HasCurriculum bool         `json:"has_curriculum"`
	Status        types.Status `json:"status,omitempty"`
}

type CurriculumService interface {
	// GetCurriculum never triggers generation; a language the loader has
	// not produced yet is ErrDataNotFound.
	GetCurriculum(ctx context.Context, language string) (*types.Curriculum, error)
	GetCanonicalSources(ctx context.Context, language string) ([]types.CanonicalSource, error)
	GetLanguageOverview(ctx context.Context, language string) (*LanguageOverview, error)
	// GetSourceBreakdown returns ErrSourceNotFound for an id the curriculum
	// does not list. A listed but uncited source yields empty topics.
	GetSourceBreakdown(ctx context.Context, language, sourceID string) (*types.SourceBreakdown, error)
	// RefreshCurriculum evicts and regenerates regardless of the stored
	// hash. Concurrent refreshes of one language share a single run.
	RefreshCurriculum(ctx context.Context, language string) (*types.Curriculum, error)
	ListLanguages(ctx context.Context) ([]LanguageSummary, error)
}

type curriculumService struct {
	log      *logger.Logger
	store    CurriculumStore
	pipeline curriculumPipeline
	refresh  singleflight.Group
	// bounds a refresh that outlives its caller
	refreshTimeout time.Duration
}

func NewCurriculumService(
	baseLog *logger.Logger,
	store CurriculumStore,
	feed langfeed.Feed,
	merger SourceMerger,
	generator CurriculumGenerator,
	refreshTimeout time.Duration,
) CurriculumService {
	if refreshTimeout <= 0 {
		refreshTimeout = 10 * time.Minute
	}
	return &curriculumService{
		log:   baseLog.With("service", "CurriculumService"),
		store: store,
		pipeline: curriculumPipeline{
			feed:      feed,
			merger:    merger,
			generator: generator,
		},
		refreshTimeout: refreshTimeout,
	}
}

func (s *curriculumService) GetCurriculum(ctx context.Context, language string) (*types.Curriculum, error) {
	return s.store.Get(ctx, language)
}

func (s *curriculumService) GetCanonicalSources(ctx context.Context, language string) ([]types.CanonicalSource, error) {
	c, err := s.store.Get(ctx, language)
	if err != nil {
		return nil, err
	}
	return c.CanonicalSources, nil
}

func (s *curriculumService) GetLanguageOverview(ctx context.Context, language string) (*LanguageOverview, error) {
	c, err := s.store.Get(ctx, language)
	if err != nil {
		return nil, err
	}
	return &LanguageOverview{Sources: c.CanonicalSources, Curriculum: c}, nil
}

func (s *curriculumService) GetSourceBreakdown(ctx context.Context, language, sourceID string) (*types.SourceBreakdown, error) {
	c, err := s.store.Get(ctx, language)
	if err != nil {
		return nil, err
	}
	src, ok := c.FindSource(sourceID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, sourceID)
	}
	b := c.Breakdown(src)
	return &b, nil
}

func (s *curriculumService) RefreshCurriculum(ctx context.Context, language string) (*types.Curriculum, error) {
	key := types.Key(language)
	if key == "" {
		return nil, fmt.Errorf("%w: empty language", ErrLanguageUnknown)
	}

	ch := s.refresh.DoChan(key, func() (any, error) {
		// detached so one caller hanging up does not cancel the others
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refreshTimeout)
		defer cancel()
		return s.regenerate(rctx, key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*types.Curriculum), nil
	}
}

func (s *curriculumService) regenerate(ctx context.Context, key string) (*types.Curriculum, error) {
	in, err := s.pipeline.load(ctx, key)
	if err != nil {
		return nil, err
	}

	s.store.Invalidate(ctx, key)

	start := time.Now()
	c := s.pipeline.build(ctx, key, in)
	if err := s.store.Put(ctx, c); err != nil {
		s.log.Error("refresh persistence failed", "language", key, "error", err)
		return nil, err
	}
	s.log.Info("curriculum refreshed",
		"language", key,
		"status", c.Status,
		"model_version", c.ModelVersion,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return c, nil
}

func (s *curriculumService) ListLanguages(ctx context.Context) ([]LanguageSummary, error) {
	slugs, err := s.pipeline.feed.ListLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	storedList, err := s.store.StoredLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stored languages: %w", err)
	}
	stored := make(map[string]bool, len(storedList))
	for _, lang := range storedList {
		stored[types.Key(lang)] = true
	}

	out := make([]LanguageSummary, 0, len(slugs))
	for _, slug := range slugs {
		item := LanguageSummary{Slug: slug, Name: slug}
		if cfg, err := s.pipeline.feed.FetchLanguageConfig(ctx, slug); err == nil && cfg.Name != "" {
			item.Name = cfg.Name
		}
		if stored[types.Key(slug)] {
			c, err := s.store.Get(ctx, slug)
			switch {
			case err == nil:
				item.HasCurriculum = true
				item.Status = c.Status
			case errors.Is(err, ErrDataNotFound):
			default:
				return nil, err
			}
		}
		out = append(out, item)
	}
	return out, nil
}
