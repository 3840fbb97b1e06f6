package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/sotfinder-backend/internal/clients/openai"
	types "github.com/yungbote/sotfinder-backend/internal/domain/curriculum"
	"github.com/yungbote/sotfinder-backend/internal/learning/prompts"
	"github.com/yungbote/sotfinder-backend/internal/observability"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

type GenerateInput struct {
	Language      string
	Candidates    []types.CanonicalSource
	TopicsConfig  any
	TrustProfiles any
}

type CurriculumGenerator interface {
	// Generate never fails: any call, parse or validation problem yields the
	// fallback curriculum (Status == fallback).
	Generate(ctx context.Context, in GenerateInput) *types.Curriculum
}

type GeneratorConfig struct {
	EnrichLearningResources bool
	// per LLM call; 0 leaves the client's own timeout in charge
	CallTimeout time.Duration
}

type curriculumGenerator struct {
	log       *logger.Logger
	llm       openai.Client
	resources LearningResourceGenerator
	metrics   *observability.Metrics
	cfg       GeneratorConfig
	now       func() time.Time
}

func NewCurriculumGenerator(
	baseLog *logger.Logger,
	llm openai.Client,
	resources LearningResourceGenerator,
	metrics *observability.Metrics,
	cfg GeneratorConfig,
) CurriculumGenerator {
	return &curriculumGenerator{
		log:       baseLog.With("service", "CurriculumGenerator"),
		llm:       llm,
		resources: resources,
		metrics:   metrics,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (g *curriculumGenerator) Generate(ctx context.Context, in GenerateInput) *types.Curriculum {
	ctx, span := otel.Tracer("sotfinder/services").Start(ctx, "CurriculumGenerator.Generate")
	defer span.End()
	language := types.Key(in.Language)
	span.SetAttributes(attribute.String("language", language), attribute.Int("candidates", len(in.Candidates)))

	c, err := g.generate(ctx, language, in)
	if err != nil {
		g.log.Warn("curriculum generation degraded to fallback",
			"language", language,
			"error", err,
		)
		span.RecordError(err)
		g.metrics.IncGeneration(string(types.StatusFallback))
		return types.Fallback(language, g.now())
	}

	if g.cfg.EnrichLearningResources && g.resources != nil {
		c = g.enrich(ctx, c, in.TrustProfiles)
	}
	g.metrics.IncGeneration(string(c.Status))
	return c
}

func (g *curriculumGenerator) generate(ctx context.Context, language string, in GenerateInput) (*types.Curriculum, error) {
	candidates := in.Candidates
	if candidates == nil {
		candidates = []types.CanonicalSource{}
	}
	candidatesJSON, err := json.Marshal(candidates)
	if err != nil {
		return nil, fmt.Errorf("encode candidates: %w", err)
	}
	topicsJSON := ""
	if in.TopicsConfig != nil {
		raw, err := json.Marshal(in.TopicsConfig)
		if err != nil {
			return nil, fmt.Errorf("encode topics: %w", err)
		}
		topicsJSON = string(raw)
	}

	p, err := prompts.Build(prompts.PromptCurriculumGenerate, prompts.Input{
		Language:       language,
		CandidatesJSON: string(candidatesJSON),
		TopicsJSON:     topicsJSON,
		Timestamp:      g.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	text, err := g.complete(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMCall, err)
	}

	c, err := parseCurriculum(text)
	if err != nil {
		return nil, err
	}

	c.Language = language
	c.GeneratedAt = g.now().UTC()
	if strings.TrimSpace(c.ModelVersion) == "" && g.llm != nil {
		c.ModelVersion = g.llm.Model()
	}
	c.Status = types.StatusGenerated
	c.Normalize()

	if err := c.ValidatePrerequisites(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return c, nil
}

func (g *curriculumGenerator) complete(ctx context.Context, p prompts.Prompt) (string, error) {
	if g.llm == nil {
		return "", errors.New("no llm client configured")
	}
	if g.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.CallTimeout)
		defer cancel()
	}
	g.log.Debug("calling llm", "prompt", p.Name, "fingerprint", p.Fingerprint())
	return g.llm.GenerateText(ctx, p.System, p.User)
}

// parseCurriculum decodes and validates model output. Both the two-part
// envelope and a bare curriculum object are accepted.
func parseCurriculum(text string) (*types.Curriculum, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var env llmEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMParse, err)
	}

	var (
		overview *llmCurriculum
		language *string
		headline *string
		sources  []llmSource
	)
	if env.CurriculumOverview != nil || env.ConsolidatedSources != nil {
		if env.ConsolidatedSources == nil {
			return nil, fmt.Errorf("%w: missing consolidated_sources", ErrValidation)
		}
		if env.CurriculumOverview == nil {
			return nil, fmt.Errorf("%w: missing curriculum_overview", ErrValidation)
		}
		overview = env.CurriculumOverview
		language = env.ConsolidatedSources.Language
		headline = env.ConsolidatedSources.Headline
		sources = env.ConsolidatedSources.Sources
		if overview.Language == nil {
			return nil, fmt.Errorf("%w: curriculum language missing", ErrValidation)
		}
	} else {
		var bare llmCurriculum
		if err := json.Unmarshal(raw, &bare); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLLMParse, err)
		}
		overview = &bare
		language = bare.Language
		headline = bare.Headline
		sources = bare.CanonicalSources
	}

	if language == nil || strings.TrimSpace(*language) == "" {
		return nil, fmt.Errorf("%w: language missing", ErrValidation)
	}
	if headline != nil && strings.TrimSpace(*headline) == "" {
		return nil, fmt.Errorf("%w: headline empty", ErrValidation)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no sources", ErrValidation)
	}
	if len(overview.OverallLearningPath) == 0 {
		return nil, fmt.Errorf("%w: no learning levels", ErrValidation)
	}

	c := &types.Curriculum{
		Language:     *language,
		ModelVersion: overview.ModelVersion,
		Explanation:  overview.Explanation,
	}
	if headline != nil {
		c.Headline = strings.TrimSpace(*headline)
	}
	for _, s := range sources {
		c.CanonicalSources = append(c.CanonicalSources, s.toDomain())
	}
	for _, l := range overview.OverallLearningPath {
		c.OverallLearningPath = append(c.OverallLearningPath, l.toDomain())
	}
	if rec := overview.Recommendations; rec != nil {
		c.CoreSources = rec.CoreSources
		c.SupplementalSources = rec.SupplementalSources
		for _, p := range rec.PracticeProjects {
			c.PracticeProjects = append(c.PracticeProjects, p.toDomain())
		}
	}
	return c, nil
}

// enrich returns a copy of c whose topics (at every depth) carry generated
// learning resources. c itself is left untouched. A failed lookup for one
// topic keeps whatever resources that topic already had.
func (g *curriculumGenerator) enrich(ctx context.Context, c *types.Curriculum, trustProfiles any) *types.Curriculum {
	out := *c
	out.OverallLearningPath = make([]types.LearningLevel, len(c.OverallLearningPath))
	for i, lvl := range c.OverallLearningPath {
		lvl.Topics = types.MapTopics(lvl.Topics, func(t types.Topic) types.Topic {
			if ctx.Err() != nil || strings.TrimSpace(t.Title) == "" {
				return t
			}
			res, err := g.resources.Generate(ctx, c.Language, t.Title, trustProfiles)
			if err != nil {
				g.log.Warn("learning resource generation failed",
					"language", c.Language,
					"topic", t.ID,
					"error", err,
				)
				return t
			}
			t.LearningResources = res
			return t
		})
		out.OverallLearningPath[i] = lvl
	}
	return &out
}
