package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/sotfinder-backend/internal/clients/langfeed"
	types "github.com/yungbote/sotfinder-backend/internal/domain/curriculum"
)

// curriculumPipeline is the feed → merge → generate chain shared by the
// refresh endpoint and the scheduled loader.
type curriculumPipeline struct {
	feed      langfeed.Feed
	merger    SourceMerger
	generator CurriculumGenerator
}

type languageInput struct {
	config *langfeed.LanguageConfig
	hash   string
}

// load fetches the language configuration and hashes its topics. An
// unknown language maps to ErrLanguageUnknown.
func (p curriculumPipeline) load(ctx context.Context, language string) (languageInput, error) {
	cfg, err := p.feed.FetchLanguageConfig(ctx, language)
	if errors.Is(err, langfeed.ErrLanguageNotFound) {
		return languageInput{}, fmt.Errorf("%w: %s", ErrLanguageUnknown, language)
	}
	if err != nil {
		return languageInput{}, fmt.Errorf("fetch language config: %w", err)
	}
	hash, err := TopicsHash(cfg.Topics)
	if err != nil {
		return languageInput{}, err
	}
	return languageInput{config: cfg, hash: hash}, nil
}

// build always yields a curriculum. Generated curricula carry the topics
// hash; fallback stubs carry none so the next sweep retries them.
func (p curriculumPipeline) build(ctx context.Context, language string, in languageInput) *types.Curriculum {
	candidates := p.merger.MergeSources(ctx, language)
	c := p.generator.Generate(ctx, GenerateInput{
		Language:      language,
		Candidates:    candidates,
		TopicsConfig:  in.config.Topics,
		TrustProfiles: in.config.TrustProfiles,
	})
	if c.IsFallback() {
		c.ConfigTopicsHash = ""
	} else {
		c.ConfigTopicsHash = in.hash
	}
	return c
}
