package langfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

// HTTPFeed reads a JSON array of language nodes from a URL.
type HTTPFeed struct {
	log        *logger.Logger
	url        string
	httpClient *http.Client
	snap       snapshot
}

func NewHTTPFeed(log *logger.Logger, url string, timeout time.Duration) *HTTPFeed {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFeed{
		log:        log.With("client", "HTTPLanguageFeed"),
		url:        strings.TrimSpace(url),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (f *HTTPFeed) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.log.Warn("language feed fetch failed", "url", f.url, "error", err)
		return fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read feed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		f.log.Warn("language feed returned non-200", "url", f.url, "status", resp.StatusCode)
		return fmt.Errorf("feed status %d", resp.StatusCode)
	}

	var nodes []feedNode
	if err := json.Unmarshal(raw, &nodes); err != nil {
		f.log.Warn("language feed is not a JSON array", "url", f.url, "error", err)
		return fmt.Errorf("decode feed: %w", err)
	}
	n := f.snap.replace(nodes)
	f.log.Info("language feed refreshed", "url", f.url, "languages", n)
	return nil
}

func (f *HTTPFeed) ensureLoaded(ctx context.Context) error {
	if f.snap.loaded() {
		return nil
	}
	return f.Refresh(ctx)
}

func (f *HTTPFeed) ListLanguages(ctx context.Context) ([]string, error) {
	if err := f.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return f.snap.languages(), nil
}

func (f *HTTPFeed) FetchLanguageConfig(ctx context.Context, language string) (*LanguageConfig, error) {
	if err := f.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return f.snap.lookup(language)
}
