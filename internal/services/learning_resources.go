package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/sotfinder-backend/internal/clients/openai"
	types "github.com/yungbote/sotfinder-backend/internal/domain/curriculum"
	"github.com/yungbote/sotfinder-backend/internal/learning/prompts"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

type LearningResourceGenerator interface {
	Generate(ctx context.Context, language, topicTitle string, trustProfiles any) ([]types.LearningResource, error)
}

type learningResourceGenerator struct {
	log *logger.Logger
	llm openai.Client
}

func NewLearningResourceGenerator(baseLog *logger.Logger, llm openai.Client) LearningResourceGenerator {
	return &learningResourceGenerator{
		log: baseLog.With("service", "LearningResourceGenerator"),
		llm: llm,
	}
}

func (g *learningResourceGenerator) Generate(ctx context.Context, language, topicTitle string, trustProfiles any) ([]types.LearningResource, error) {
	if g.llm == nil {
		return nil, fmt.Errorf("%w: no llm client configured", ErrLLMCall)
	}

	trustJSON := ""
	if trustProfiles != nil {
		raw, err := json.Marshal(trustProfiles)
		if err != nil {
			return nil, fmt.Errorf("encode trust profiles: %w", err)
		}
		trustJSON = string(raw)
	}

	p, err := prompts.Build(prompts.PromptLearningResources, prompts.Input{
		Language:          language,
		TopicTitle:        topicTitle,
		TrustProfilesJSON: trustJSON,
	})
	if err != nil {
		return nil, err
	}

	text, err := g.llm.GenerateText(ctx, p.System, p.User)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMCall, err)
	}

	var raw []llmResource
	if err := decodeLLMJSON(text, &raw); err != nil {
		// some models wrap the list: {"resources": [...]}
		var wrapped struct {
			Resources []llmResource `json:"resources"`
		}
		if werr := decodeLLMJSON(text, &wrapped); werr != nil || wrapped.Resources == nil {
			return nil, err
		}
		raw = wrapped.Resources
	}

	out := make([]types.LearningResource, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Title) == "" && strings.TrimSpace(r.URL) == "" {
			continue
		}
		out = append(out, r.toDomain())
	}
	if len(out) == 0 && len(raw) > 0 {
		return nil, errors.Join(ErrValidation, fmt.Errorf("no usable resources for %q", topicTitle))
	}
	return out, nil
}
