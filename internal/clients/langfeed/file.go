package langfeed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

// FileFeed reads the same document as HTTPFeed from a local YAML or JSON
// file.
type FileFeed struct {
	log  *logger.Logger
	path string
	snap snapshot
}

func NewFileFeed(log *logger.Logger, path string) *FileFeed {
	return &FileFeed{log: log.With("client", "FileLanguageFeed"), path: path}
}

func (f *FileFeed) Refresh(ctx context.Context) error {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("read feed file: %w", err)
	}
	var nodes []feedNode
	if err := yaml.Unmarshal(raw, &nodes); err != nil {
		f.log.Warn("language feed file invalid", "path", f.path, "error", err)
		return fmt.Errorf("decode feed file: %w", err)
	}
	for i := range nodes {
		nodes[i].Topics = normalizeYAML(nodes[i].Topics)
		nodes[i].TrustProfiles = normalizeYAML(nodes[i].TrustProfiles)
	}
	n := f.snap.replace(nodes)
	f.log.Info("language feed file loaded", "path", f.path, "languages", n)
	return nil
}

// normalizeYAML converts map[any]any nodes (non-string keys) into
// map[string]any so the value can be JSON encoded.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			t[k] = normalizeYAML(inner)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[fmt.Sprint(k)] = normalizeYAML(inner)
		}
		return out
	case []any:
		for i := range t {
			t[i] = normalizeYAML(t[i])
		}
		return t
	default:
		return v
	}
}

func (f *FileFeed) ensureLoaded(ctx context.Context) error {
	if f.snap.loaded() {
		return nil
	}
	return f.Refresh(ctx)
}

func (f *FileFeed) ListLanguages(ctx context.Context) ([]string, error) {
	if err := f.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return f.snap.languages(), nil
}

func (f *FileFeed) FetchLanguageConfig(ctx context.Context, language string) (*LanguageConfig, error) {
	if err := f.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return f.snap.lookup(language)
}
