package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/sotfinder-backend/internal/clients/openai"
	"github.com/yungbote/sotfinder-backend/internal/learning/prompts"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

type SearchMetadata struct {
	Type        string `json:"type"`
	SpecVersion string `json:"spec_version"`
	Notes       string `json:"notes"`
}

type SearchResult struct {
	Title      string         `json:"title"`
	URL        string         `json:"url"`
	IsOfficial bool           `json:"is_official"`
	Confidence float64        `json:"confidence"`
	Reasoning  string         `json:"reasoning"`
	Metadata   SearchMetadata `json:"metadata"`
}

type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

type SourceSearchService interface {
	// Search only fails on an empty query. Call or parse problems come back
	// as an empty result list.
	Search(ctx context.Context, query string) (*SearchResponse, error)
}

type sourceSearchService struct {
	log *logger.Logger
	llm openai.Client
}

func NewSourceSearchService(baseLog *logger.Logger, llm openai.Client) SourceSearchService {
	return &sourceSearchService{
		log: baseLog.With("service", "SourceSearchService"),
		llm: llm,
	}
}

func (s *sourceSearchService) Search(ctx context.Context, query string) (*SearchResponse, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("%w: query required", ErrValidation)
	}
	out := &SearchResponse{Query: q, Results: []SearchResult{}}

	p, err := prompts.Build(prompts.PromptSourceSearch, prompts.Input{Query: q})
	if err != nil {
		return nil, err
	}
	if s.llm == nil {
		s.log.Warn("source search without llm client", "query", q)
		return out, nil
	}

	text, err := s.llm.GenerateText(ctx, p.System, p.User)
	if err != nil {
		s.log.Warn("source search llm call failed", "query", q, "error", err)
		return out, nil
	}

	var results []SearchResult
	if err := decodeLLMJSON(text, &results); err != nil {
		s.log.Warn("source search response unparseable", "query", q, "error", err)
		return out, nil
	}

	for _, r := range results {
		if strings.TrimSpace(r.URL) == "" {
			continue
		}
		r.Confidence = unit(r.Confidence)
		out.Results = append(out.Results, r)
	}
	sort.SliceStable(out.Results, func(i, j int) bool {
		return out.Results[i].Confidence > out.Results[j].Confidence
	})
	return out, nil
}
