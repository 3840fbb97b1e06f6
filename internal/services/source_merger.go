package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/yungbote/sotfinder-backend/internal/clients/langfeed"
	types "github.com/yungbote/sotfinder-backend/internal/domain/curriculum"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

// SourceProvider yields raw candidate URLs for a language.
type SourceProvider interface {
	Name() string
	RawURLs(ctx context.Context, language string) ([]string, error)
}

type SourceMerger interface {
	// MergeSources returns deduplicated canonical sources in first-seen
	// order across providers, in the order the providers were given.
	MergeSources(ctx context.Context, language string) []types.CanonicalSource
}

type sourceMerger struct {
	log       *logger.Logger
	providers []SourceProvider
}

func NewSourceMerger(baseLog *logger.Logger, providers ...SourceProvider) SourceMerger {
	return &sourceMerger{
		log:       baseLog.With("service", "SourceMerger"),
		providers: providers,
	}
}

func (m *sourceMerger) MergeSources(ctx context.Context, language string) []types.CanonicalSource {
	out := []types.CanonicalSource{}
	seen := map[string]bool{}

	for _, p := range m.providers {
		raw, err := p.RawURLs(ctx, language)
		if err != nil {
			m.log.Warn("source provider failed; contributing no sources",
				"provider", p.Name(),
				"language", language,
				"error", err,
			)
			continue
		}
		for _, rawURL := range raw {
			src, key, err := canonicalize(rawURL)
			if err != nil {
				m.log.Warn("skipping source url", "provider", p.Name(), "url", rawURL, "error", err)
				continue
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, src)
		}
	}
	return out
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// SourceID derives the stable id for host+path: lowercase, every run of
// non-alphanumerics collapsed to '-', "root" standing in for an empty path.
func SourceID(host, path string) string {
	h := strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(host), "-"), "-")
	p := strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(path), "-"), "-")
	if p == "" {
		p = "root"
	}
	return h + "-" + p
}

func canonicalize(rawURL string) (types.CanonicalSource, string, error) {
	trimmed := strings.TrimSpace(rawURL)
	u, err := url.Parse(trimmed)
	if err != nil {
		return types.CanonicalSource{}, "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return types.CanonicalSource{}, "", fmt.Errorf("%w: missing scheme or host in %q", ErrInvalidURL, trimmed)
	}

	host := strings.ToLower(u.Hostname())
	key := host + u.Path
	title, steward, sourceType := describeHost(host, u.Path)

	return types.CanonicalSource{
		ID:           SourceID(host, u.Path),
		Title:        title,
		URL:          trimmed,
		Steward:      steward,
		Type:         sourceType,
		Confidence:   0,
		ShortSummary: "",
	}, key, nil
}

// FeedSourceProvider exposes the "sources" list of a language feed entry.
type FeedSourceProvider struct {
	feed langfeed.Feed
}

func NewFeedSourceProvider(feed langfeed.Feed) *FeedSourceProvider {
	return &FeedSourceProvider{feed: feed}
}

func (p *FeedSourceProvider) Name() string { return "language_feed" }

func (p *FeedSourceProvider) RawURLs(ctx context.Context, language string) ([]string, error) {
	cfg, err := p.feed.FetchLanguageConfig(ctx, language)
	if errors.Is(err, langfeed.ErrLanguageNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cfg.Sources, nil
}
