package langfeed

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

var ErrLanguageNotFound = errors.New("language not found in feed")

// LanguageConfig is one entry of the language source feed. Topics and
// TrustProfiles keep the decoded JSON shape so they can be hashed and
// forwarded to prompts unchanged.
type LanguageConfig struct {
	Name          string
	Slug          string
	Topics        any
	TrustProfiles any
	Sources       []string
}

type Feed interface {
	ListLanguages(ctx context.Context) ([]string, error)
	FetchLanguageConfig(ctx context.Context, language string) (*LanguageConfig, error)
	// Refresh reloads the backing document. A failed refresh keeps the
	// previous snapshot.
	Refresh(ctx context.Context) error
}

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9+]+`)
	slugSuffixes = []string{" developer path", " basics", " frontend", " backend", " learning path"}
)

// Slug turns a feed display name ("Java Developer Path") into its lookup
// key ("java"). '+' survives so "C++" stays distinct from "C".
func Slug(name string) string {
	s := strings.ToLower(name)
	for _, suffix := range slugSuffixes {
		s = strings.ReplaceAll(s, suffix, "")
	}
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

type feedNode struct {
	Name          string   `json:"name" yaml:"name"`
	Topics        any      `json:"topics" yaml:"topics"`
	TrustProfiles any      `json:"trustProfiles" yaml:"trustProfiles"`
	Sources       []string `json:"sources" yaml:"sources"`
}

func (n feedNode) toConfig() *LanguageConfig {
	return &LanguageConfig{
		Name:          n.Name,
		Slug:          Slug(n.Name),
		Topics:        n.Topics,
		TrustProfiles: unwrapTrustProfiles(n.TrustProfiles),
		Sources:       n.Sources,
	}
}

// unwrapTrustProfiles accepts both {"trustProfiles": [...]} and a bare list.
func unwrapTrustProfiles(v any) any {
	switch m := v.(type) {
	case map[string]any:
		if inner, ok := m["trustProfiles"]; ok {
			return inner
		}
	}
	return v
}

// snapshot is the read side shared by every feed implementation.
type snapshot struct {
	mu        sync.RWMutex
	byKey     map[string]*LanguageConfig
	loadedAt  time.Time
	hasLoaded bool
}

func (s *snapshot) replace(nodes []feedNode) int {
	next := make(map[string]*LanguageConfig, len(nodes))
	for _, n := range nodes {
		if strings.TrimSpace(n.Name) == "" {
			continue
		}
		cfg := n.toConfig()
		if cfg.Slug == "" {
			continue
		}
		next[cfg.Slug] = cfg
	}
	s.mu.Lock()
	s.byKey = next
	s.loadedAt = time.Now().UTC()
	s.hasLoaded = true
	s.mu.Unlock()
	return len(next)
}

func (s *snapshot) loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasLoaded
}

func (s *snapshot) languages() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.byKey))
	for k := range s.byKey {
		out = append(out, k)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (s *snapshot) lookup(language string) (*LanguageConfig, error) {
	key := strings.ToLower(strings.TrimSpace(language))
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cfg, ok := s.byKey[key]; ok {
		return cfg, nil
	}
	if cfg, ok := s.byKey[Slug(key)]; ok {
		return cfg, nil
	}
	return nil, ErrLanguageNotFound
}
