package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/sotfinder-backend/internal/clients/langfeed"
	"github.com/yungbote/sotfinder-backend/internal/data/repos/testutil"
	"github.com/yungbote/sotfinder-backend/internal/observability"
)

func TestLoader_UnchangedTopicsSkipGeneration(t *testing.T) {
	ctx := context.Background()
	llm := newFakeLLM(fakeReply{text: validEnvelope})
	h := newHarness(t, javaFeed(javaTopicsV1), llm)

	first, err := h.loader.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"java"}, first.Generated)
	require.Equal(t, 1, llm.Calls())

	before, err := h.service.GetCurriculum(ctx, "java")
	require.NoError(t, err)

	second, err := h.loader.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"java"}, second.Skipped)
	require.Empty(t, second.Generated)
	require.Equal(t, 1, llm.Calls(), "unchanged topics must not reach the llm")

	h.cache.Invalidate("java")
	after, err := h.service.GetCurriculum(ctx, "java")
	require.NoError(t, err)
	require.True(t, before.GeneratedAt.Equal(after.GeneratedAt))
	require.Equal(t, before.ModelVersion, after.ModelVersion)
}

func TestLoader_HashIgnoresLayout(t *testing.T) {
	ctx := context.Background()
	llm := newFakeLLM(fakeReply{text: validEnvelope})
	h := newHarness(t, javaFeed(javaTopicsV1), llm)
	_, err := h.loader.RunOnce(ctx)
	require.NoError(t, err)

	// same content, different key order and spacing
	h.loader = NewCurriculumLoader(testutil.Logger(t), h.store,
		javaFeed(`{ "topics" : [ {"title":"Basics"}, {"title":"OOP"} ] }`),
		NewSourceMerger(testutil.Logger(t)), h.generator, nil)
	report, err := h.loader.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"java"}, report.Skipped)
	require.Equal(t, 1, llm.Calls())
}

func TestLoader_ChangedTopicsRegenerateInPlace(t *testing.T) {
	ctx := context.Background()
	llm := newFakeLLM(fakeReply{text: validEnvelope})
	h := newHarness(t, javaFeed(javaTopicsV1), llm)

	_, err := h.loader.RunOnce(ctx)
	require.NoError(t, err)
	oldHash, _, err := h.store.StoredHash(ctx, "java")
	require.NoError(t, err)

	changed := javaFeed(`{"topics":[{"title":"Basics"},{"title":"OOP"},{"title":"Streams"}]}`)
	loader := NewCurriculumLoader(testutil.Logger(t), h.store, changed, NewSourceMerger(testutil.Logger(t)), h.generator, observability.NewMetrics())
	report, err := loader.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"java"}, report.Generated)
	require.Equal(t, 2, llm.Calls())

	newHash, ok, err := h.store.StoredHash(ctx, "java")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEqual(t, oldHash, newHash)

	langs, err := h.store.StoredLanguages(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"java"}, langs, "replacement must not add a second row")
}

func TestLoader_PerLanguageFailuresDoNotAbortSweep(t *testing.T) {
	ctx := context.Background()
	base := langfeed.NewStaticFeed(
		langfeed.LanguageConfig{Name: "Go", Topics: decodeAny(`["tour"]`)},
		langfeed.LanguageConfig{Name: "Java", Topics: decodeAny(javaTopicsV1)},
		langfeed.LanguageConfig{Name: "Rust", Topics: decodeAny(`["ownership"]`)},
	)
	feed := failingFeed{Feed: base, failFor: "go"}
	llm := newFakeLLM(
		fakeReply{text: validEnvelope},
		fakeReply{err: errors.New("llm down")},
	)
	h := newHarness(t, feed, llm)

	report, err := h.loader.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"java"}, report.Generated)
	require.ElementsMatch(t, []string{"go", "rust"}, report.Failed)

	// rust had nothing stored, so its stub is served and retried next sweep
	rust, err := h.service.GetCurriculum(ctx, "rust")
	require.NoError(t, err)
	require.True(t, rust.IsFallback())
	hash, ok, err := h.store.StoredHash(ctx, "rust")
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, hash)

	_, err = h.service.GetCurriculum(ctx, "go")
	require.ErrorIs(t, err, ErrDataNotFound)
}

func TestLoader_FallbackKeepsStoredCurriculum(t *testing.T) {
	ctx := context.Background()
	llm := newFakeLLM(
		fakeReply{text: validEnvelope},
		fakeReply{text: "not json"},
	)
	h := newHarness(t, javaFeed(javaTopicsV1), llm)
	_, err := h.loader.RunOnce(ctx)
	require.NoError(t, err)

	changed := javaFeed(`{"topics":[{"title":"Generics"}]}`)
	loader := NewCurriculumLoader(testutil.Logger(t), h.store, changed, NewSourceMerger(testutil.Logger(t)), h.generator, nil)
	report, err := loader.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"java"}, report.Failed)

	c, err := h.service.GetCurriculum(ctx, "java")
	require.NoError(t, err)
	require.False(t, c.IsFallback(), "a failed regeneration must not replace a good curriculum")
}

type listErrFeed struct{ langfeed.Feed }

func (listErrFeed) ListLanguages(ctx context.Context) ([]string, error) {
	return nil, errors.New("feed offline")
}

func TestLoader_FeedListFailure(t *testing.T) {
	h := newHarness(t, listErrFeed{Feed: javaFeed(javaTopicsV1)}, newFakeLLM(fakeReply{text: validEnvelope}))
	_, err := h.loader.RunOnce(context.Background())
	require.Error(t, err)
	require.Equal(t, 0, h.llm.Calls())
}

func TestLoader_PruneDeletesLanguagesDroppedFromFeed(t *testing.T) {
	ctx := context.Background()
	both := langfeed.NewStaticFeed(
		langfeed.LanguageConfig{Name: "Java", Topics: decodeAny(javaTopicsV1)},
		langfeed.LanguageConfig{Name: "Rust", Topics: decodeAny(`["ownership"]`)},
	)
	h := newHarness(t, both, newFakeLLM(fakeReply{text: validEnvelope}, fakeReply{text: validEnvelope}))
	_, err := h.loader.RunOnce(ctx)
	require.NoError(t, err)
	_, err = h.service.GetCurriculum(ctx, "rust")
	require.NoError(t, err, "warms the memory tier")

	loader := NewCurriculumLoader(testutil.Logger(t), h.store, javaFeed(javaTopicsV1), NewSourceMerger(testutil.Logger(t)), h.generator, nil)
	removed, err := loader.Prune(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"rust"}, removed)

	langs, err := h.store.StoredLanguages(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"java"}, langs)
	_, ok := h.cache.Get("rust")
	require.False(t, ok, "prune must evict the cached copy")
	_, err = h.store.Get(ctx, "rust")
	require.ErrorIs(t, err, ErrDataNotFound)
}

func TestLoader_PruneRefusesEmptyFeed(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, javaFeed(javaTopicsV1), newFakeLLM(fakeReply{text: validEnvelope}))
	_, err := h.loader.RunOnce(ctx)
	require.NoError(t, err)

	loader := NewCurriculumLoader(testutil.Logger(t), h.store, langfeed.NewStaticFeed(), NewSourceMerger(testutil.Logger(t)), h.generator, nil)
	_, err = loader.Prune(ctx)
	require.Error(t, err)
	langs, err := h.store.StoredLanguages(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"java"}, langs)
}
