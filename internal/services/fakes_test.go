package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/yungbote/sotfinder-backend/internal/clients/langfeed"
	repos "github.com/yungbote/sotfinder-backend/internal/data/repos/curriculum"
	"github.com/yungbote/sotfinder-backend/internal/data/repos/testutil"
	"github.com/yungbote/sotfinder-backend/internal/observability"
)

// fakeLLM answers from a queue of scripted replies; once the queue is
// drained the last reply repeats.
type fakeLLM struct {
	mu      sync.Mutex
	replies []fakeReply
	calls   int
	users   []string
	model   string
}

type fakeReply struct {
	text string
	err  error
}

func newFakeLLM(replies ...fakeReply) *fakeLLM {
	return &fakeLLM{replies: replies, model: "fake-model-1"}
}

func (f *fakeLLM) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.users = append(f.users, user)
	if len(f.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	r := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return r.text, r.err
}

func (f *fakeLLM) Model() string { return f.model }

func (f *fakeLLM) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type failingFeed struct {
	langfeed.Feed
	failFor string
}

func (f failingFeed) FetchLanguageConfig(ctx context.Context, language string) (*langfeed.LanguageConfig, error) {
	if language == f.failFor {
		return nil, errors.New("feed unavailable")
	}
	return f.Feed.FetchLanguageConfig(ctx, language)
}

const validEnvelope = `Here is the curriculum:
` + "```json" + `
{
  "consolidated_sources": {
    "language": "java",
    "headline": "Learn Java from the source",
    "sources": [
      {"id": "oracle-java-tutorial", "title": "Oracle Java Tutorial", "url": "https://docs.oracle.com/javase/tutorial/", "steward": "Oracle", "type": "Official Tutorial", "confidence": 0.95, "short_summary": "Official tutorial"},
      {"id": "baeldung-java", "title": "Baeldung", "url": "https://www.baeldung.com/java-basics", "steward": "Baeldung", "type": "Community Tutorial", "confidence": 1.7, "short_summary": ""}
    ]
  },
  "curriculum_overview": {
    "language": "java",
    "model_version": "gpt-test-2",
    "overall_learning_path": [
      {
        "level": "Beginner",
        "estimated_hours": 20,
        "topics": [
          {
            "id": "java-basics",
            "title": "Java Basics",
            "description": "Syntax and tooling",
            "order": 1,
            "estimated_hours": 6.4,
            "prerequisites": [],
            "outcomes": ["compile a program"],
            "helpful_references": [{"sourceId": "baeldung-java", "url": "https://www.baeldung.com/java-basics", "snippet": "", "short_evidence": "intro"}],
            "subtopics": [
              {"id": "java-variables", "title": "Variables", "order": 1, "prerequisites": ["java-basics"]}
            ]
          },
          {
            "id": "java-oop",
            "title": "Object Oriented Java",
            "order": 2,
            "prerequisites": ["java-basics"],
            "helpful_references": [{"source_id": "baeldung-java", "shortEvidence": "classes"}]
          }
        ]
      }
    ],
    "recommendations": {
      "coreSources": ["oracle-java-tutorial"],
      "supplementalSources": ["baeldung-java"],
      "practiceProjects": [{"title": "CLI todo app", "difficulty": "Beginner", "estimated_hours": 8, "outcomes": ["file io"]}]
    },
    "explanation": "Basics before objects."
  }
}
` + "```"

const cyclicEnvelope = `{
  "consolidated_sources": {"language": "java", "sources": [{"id": "a", "url": "https://a.example/"}]},
  "curriculum_overview": {
    "language": "java",
    "overall_learning_path": [{"level": "Beginner", "topics": [
      {"id": "x", "title": "X", "prerequisites": ["y"]},
      {"id": "y", "title": "Y", "prerequisites": ["x"]}
    ]}]
  }
}`

const javaTopicsV1 = `{"topics":[{"title":"Basics"},{"title":"OOP"}]}`

type harness struct {
	llm       *fakeLLM
	feed      langfeed.Feed
	repo      repos.CurriculumRepo
	cache     CurriculumCache
	store     CurriculumStore
	generator CurriculumGenerator
	service   CurriculumService
	loader    CurriculumLoader
}

func newHarness(t *testing.T, feed langfeed.Feed, llm *fakeLLM) *harness {
	t.Helper()
	log := testutil.Logger(t)
	metrics := observability.NewMetrics()

	h := &harness{llm: llm, feed: feed}
	h.repo = repos.NewCurriculumRepo(testutil.DB(t), log)
	h.cache = NewCurriculumCache()
	h.store = NewCurriculumStore(log, h.repo, h.cache, nil, nil, metrics)
	merger := NewSourceMerger(log, NewFeedSourceProvider(feed), NewStaticCatalogProvider())
	h.generator = NewCurriculumGenerator(log, llm, nil, metrics, GeneratorConfig{})
	h.service = NewCurriculumService(log, h.store, feed, merger, h.generator, 0)
	h.loader = NewCurriculumLoader(log, h.store, feed, merger, h.generator, metrics)
	return h
}

func javaFeed(topics string) *langfeed.StaticFeed {
	return langfeed.NewStaticFeed(langfeed.LanguageConfig{
		Name:    "Java Developer Path",
		Topics:  decodeAny(topics),
		Sources: []string{"https://docs.oracle.com/javase/tutorial/"},
	})
}
