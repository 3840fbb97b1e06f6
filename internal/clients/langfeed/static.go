package langfeed

import "context"

// StaticFeed serves a fixed set of languages. Used when no feed URL or file
// is configured, and in tests.
type StaticFeed struct {
	snap snapshot
}

func NewStaticFeed(configs ...LanguageConfig) *StaticFeed {
	nodes := make([]feedNode, 0, len(configs))
	for _, c := range configs {
		nodes = append(nodes, feedNode{
			Name:          c.Name,
			Topics:        c.Topics,
			TrustProfiles: c.TrustProfiles,
			Sources:       c.Sources,
		})
	}
	f := &StaticFeed{}
	f.snap.replace(nodes)
	return f
}

func (f *StaticFeed) ListLanguages(ctx context.Context) ([]string, error) {
	return f.snap.languages(), nil
}

func (f *StaticFeed) FetchLanguageConfig(ctx context.Context, language string) (*LanguageConfig, error) {
	return f.snap.lookup(language)
}

func (f *StaticFeed) Refresh(ctx context.Context) error { return nil }
