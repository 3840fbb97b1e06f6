package services

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/sotfinder-backend/internal/data/repos/testutil"
	types "github.com/yungbote/sotfinder-backend/internal/domain/curriculum"
)

func TestGetCurriculum_NotFoundDoesNotGenerate(t *testing.T) {
	llm := newFakeLLM(fakeReply{text: validEnvelope})
	h := newHarness(t, javaFeed(javaTopicsV1), llm)

	if _, err := h.service.GetCurriculum(context.Background(), "java"); !errors.Is(err, ErrDataNotFound) {
		t.Fatalf("expected ErrDataNotFound, got %v", err)
	}
	if llm.Calls() != 0 {
		t.Fatalf("a read must not trigger generation")
	}
}

func TestGetCurriculum_IdempotentRead(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, javaFeed(javaTopicsV1), newFakeLLM(fakeReply{text: validEnvelope}))
	if err := h.store.Put(ctx, testutil.SampleCurriculum("java")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// cold cache: first read comes from the db
	h.cache.Invalidate("java")

	first, err := h.service.GetCurriculum(ctx, "java")
	if err != nil {
		t.Fatalf("GetCurriculum: %v", err)
	}
	second, err := h.service.GetCurriculum(ctx, "java")
	if err != nil {
		t.Fatalf("GetCurriculum: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated reads differ")
	}

	sources, err := h.service.GetCanonicalSources(ctx, "java")
	if err != nil || len(sources) != 3 {
		t.Fatalf("GetCanonicalSources = %d, %v", len(sources), err)
	}
	overview, err := h.service.GetLanguageOverview(ctx, "java")
	if err != nil || overview.Curriculum == nil || len(overview.Sources) != 3 {
		t.Fatalf("GetLanguageOverview = %+v, %v", overview, err)
	}
}

func TestGetSourceBreakdown(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, javaFeed(javaTopicsV1), newFakeLLM(fakeReply{text: validEnvelope}))
	if err := h.store.Put(ctx, testutil.SampleCurriculum("java")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	t.Run("cited source", func(t *testing.T) {
		b, err := h.service.GetSourceBreakdown(ctx, "java", "docs-oracle-com-javase-tutorial")
		if err != nil {
			t.Fatalf("GetSourceBreakdown: %v", err)
		}
		if len(b.ExtractedTopics) != 2 {
			t.Fatalf("expected topics from both levels, got %d", len(b.ExtractedTopics))
		}
		if len(b.References) != 2 {
			t.Fatalf("expected 2 references, got %d", len(b.References))
		}
		syntax := b.ExtractedTopics[0]
		if len(syntax.Subtopics) != 2 {
			t.Fatalf("matched topic should keep its subtree")
		}
		if len(syntax.Prerequisites) != 0 || len(syntax.Subtopics[0].Prerequisites) != 0 {
			t.Fatalf("breakdown should strip prerequisites")
		}
		if b.Title != "Oracle Documentation" || b.Summary != "Official tutorials" {
			t.Fatalf("unexpected header %+v", b)
		}
	})

	t.Run("listed but unreferenced", func(t *testing.T) {
		b, err := h.service.GetSourceBreakdown(ctx, "java", "openjdk-org-jeps")
		if err != nil {
			t.Fatalf("GetSourceBreakdown: %v", err)
		}
		if b.ExtractedTopics == nil || len(b.ExtractedTopics) != 0 {
			t.Fatalf("expected empty non-nil topics, got %#v", b.ExtractedTopics)
		}
	})

	t.Run("unknown source", func(t *testing.T) {
		if _, err := h.service.GetSourceBreakdown(ctx, "java", "nonexistent-id"); !errors.Is(err, ErrSourceNotFound) {
			t.Fatalf("expected ErrSourceNotFound, got %v", err)
		}
	})

	t.Run("unknown language", func(t *testing.T) {
		if _, err := h.service.GetSourceBreakdown(ctx, "cobol", "x"); !errors.Is(err, ErrDataNotFound) {
			t.Fatalf("expected ErrDataNotFound, got %v", err)
		}
	})

	// breakdown must not disturb the cached curriculum
	c, _ := h.service.GetCurriculum(ctx, "java")
	if len(c.OverallLearningPath[0].Topics[0].Subtopics[0].Prerequisites) != 1 {
		t.Fatalf("cached curriculum lost prerequisites")
	}
}

func TestRefreshCurriculum_ReplacesCachedValue(t *testing.T) {
	ctx := context.Background()
	llm := newFakeLLM(fakeReply{text: validEnvelope})
	h := newHarness(t, javaFeed(javaTopicsV1), llm)

	old := testutil.SampleCurriculum("java")
	if err := h.store.Put(ctx, old); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := h.service.GetCurriculum(ctx, "java"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	refreshed, err := h.service.RefreshCurriculum(ctx, "Java")
	if err != nil {
		t.Fatalf("RefreshCurriculum: %v", err)
	}
	if refreshed.ModelVersion != "gpt-test-2" || refreshed.ConfigTopicsHash == "" {
		t.Fatalf("unexpected refreshed curriculum %+v", refreshed)
	}

	got, err := h.service.GetCurriculum(ctx, "java")
	if err != nil {
		t.Fatalf("GetCurriculum: %v", err)
	}
	if got.ModelVersion == old.ModelVersion || got.Headline == old.Headline {
		t.Fatalf("read after refresh returned the pre-refresh value")
	}

	// the db agrees with the cache
	h.cache.Invalidate("java")
	fromDB, err := h.service.GetCurriculum(ctx, "java")
	if err != nil || fromDB.ModelVersion != "gpt-test-2" {
		t.Fatalf("db not updated: %+v, %v", fromDB, err)
	}
}

func TestRefreshCurriculum_FallbackIsPersistedAndFlagged(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, javaFeed(javaTopicsV1), newFakeLLM(fakeReply{text: "no json here"}))

	c, err := h.service.RefreshCurriculum(ctx, "java")
	if err != nil {
		t.Fatalf("RefreshCurriculum: %v", err)
	}
	if !c.IsFallback() || c.ConfigTopicsHash != "" {
		t.Fatalf("expected unhashed fallback, got %+v", c)
	}
	got, err := h.service.GetCurriculum(ctx, "java")
	if err != nil || got.Status != types.StatusFallback {
		t.Fatalf("expected stored fallback, got %+v, %v", got, err)
	}
}

func TestRefreshCurriculum_UnknownLanguage(t *testing.T) {
	h := newHarness(t, javaFeed(javaTopicsV1), newFakeLLM(fakeReply{text: validEnvelope}))
	if _, err := h.service.RefreshCurriculum(context.Background(), "cobol"); !errors.Is(err, ErrLanguageUnknown) {
		t.Fatalf("expected ErrLanguageUnknown, got %v", err)
	}
	if h.llm.Calls() != 0 {
		t.Fatalf("unknown language must not reach the llm")
	}
}

// blockingLLM parks every call until released.
type blockingLLM struct {
	release chan struct{}
	mu      sync.Mutex
	calls   int
}

func (b *blockingLLM) GenerateText(ctx context.Context, system, user string) (string, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	<-b.release
	return validEnvelope, nil
}

func (b *blockingLLM) Model() string { return "blocking" }

func TestRefreshCurriculum_ConcurrentCallsShareOneRun(t *testing.T) {
	ctx := context.Background()
	log := testutil.Logger(t)
	llm := &blockingLLM{release: make(chan struct{})}
	feed := javaFeed(javaTopicsV1)

	h := newHarness(t, feed, newFakeLLM(fakeReply{text: validEnvelope}))
	gen := NewCurriculumGenerator(log, llm, nil, nil, GeneratorConfig{})
	svc := NewCurriculumService(log, h.store, feed, NewSourceMerger(log), gen, 0)

	const callers = 5
	var wg sync.WaitGroup
	results := make(chan *types.Curriculum, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := svc.RefreshCurriculum(ctx, "java")
			if err != nil {
				t.Errorf("RefreshCurriculum: %v", err)
				return
			}
			results <- c
		}()
	}

	// wait for the leader to reach the llm before releasing it
	for {
		llm.mu.Lock()
		n := llm.calls
		llm.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	// let the followers join the in-flight run
	time.Sleep(100 * time.Millisecond)
	close(llm.release)
	wg.Wait()
	close(results)

	if llm.calls != 1 {
		t.Fatalf("expected a single llm call, got %d", llm.calls)
	}
	for c := range results {
		if c.Status != types.StatusGenerated {
			t.Fatalf("expected generated curriculum")
		}
	}
}

func TestListLanguages(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, javaFeed(javaTopicsV1), newFakeLLM(fakeReply{text: validEnvelope}))

	got, err := h.service.ListLanguages(ctx)
	if err != nil {
		t.Fatalf("ListLanguages: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "java" || got[0].Name != "Java Developer Path" || got[0].HasCurriculum {
		t.Fatalf("unexpected %+v", got)
	}

	if err := h.store.Put(ctx, testutil.SampleCurriculum("java")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, _ = h.service.ListLanguages(ctx)
	if !got[0].HasCurriculum || got[0].Status != types.StatusGenerated {
		t.Fatalf("expected curriculum flag, got %+v", got[0])
	}

	if err := h.store.Delete(ctx, "java"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ = h.service.ListLanguages(ctx)
	if got[0].HasCurriculum || got[0].Status != "" {
		t.Fatalf("expected flag cleared after delete, got %+v", got[0])
	}
}
