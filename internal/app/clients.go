package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/sotfinder-backend/internal/clients/langfeed"
	"github.com/yungbote/sotfinder-backend/internal/clients/openai"
	rediscache "github.com/yungbote/sotfinder-backend/internal/clients/redis"
	"github.com/yungbote/sotfinder-backend/internal/observability"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

type Clients struct {
	OpenAI openai.Client
	Feed   langfeed.Feed

	// nil when REDIS_ADDR is unset or unreachable
	Redis           *goredis.Client
	CurriculumCache rediscache.CurriculumCache
	Invalidation    rediscache.InvalidationBus
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	// Openai
	llm, err := openai.NewClient(log, openai.Config{
		APIKey:            cfg.OpenAI.APIKey,
		BaseURL:           cfg.OpenAI.BaseURL,
		Model:             cfg.OpenAI.Model,
		Timeout:           time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second,
		MaxRetries:        cfg.OpenAI.MaxRetries,
		RequestsPerSecond: cfg.OpenAI.RPS,
		Burst:             cfg.OpenAI.Burst,
		BreakerFailures:   cfg.OpenAI.BreakerFailures,
		BreakerCooldown:   cfg.OpenAI.BreakerCooldown,
	}, metrics)
	switch {
	case errors.Is(err, openai.ErrMissingAPIKey):
		// generation degrades to fallback curricula and empty search results
		log.Warn("OPENAI_API_KEY unset; llm features disabled")
		llm = nil
	case err != nil:
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	out := Clients{
		OpenAI: llm,
		Feed:   wireFeed(log, cfg.Feed),
	}

	// Redis
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		log.Info("REDIS_ADDR unset; running with the in-process cache only")
		return out, nil
	}
	rdb, err := rediscache.Dial(ctx, rediscache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("redis unavailable; running with the in-process cache only", "error", err)
		return out, nil
	}
	cache, err := rediscache.NewCurriculumCache(log, rdb, cfg.Redis.CacheTTL)
	if err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("init redis curriculum cache: %w", err)
	}
	bus, err := rediscache.NewInvalidationBus(log, rdb, cfg.Redis.InvalidationChannel, instanceID())
	if err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("init redis invalidation bus: %w", err)
	}
	out.Redis = rdb
	out.CurriculumCache = cache
	out.Invalidation = bus
	return out, nil
}

// wireFeed picks the language feed: remote URL, then local file, then an
// empty static feed.
func wireFeed(log *logger.Logger, cfg FeedConfig) langfeed.Feed {
	switch {
	case strings.TrimSpace(cfg.URL) != "":
		log.Info("using remote language feed", "url", cfg.URL)
		return langfeed.NewHTTPFeed(log, cfg.URL, cfg.Timeout)
	case strings.TrimSpace(cfg.File) != "":
		log.Info("using file language feed", "path", cfg.File)
		return langfeed.NewFileFeed(log, cfg.File)
	default:
		log.Warn("no CURRICULUM_DATA_URL or CURRICULUM_DATA_FILE; language feed is empty")
		return langfeed.NewStaticFeed()
	}
}

func instanceID() string {
	host, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
