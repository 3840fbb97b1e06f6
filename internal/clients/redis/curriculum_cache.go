package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/sotfinder-backend/internal/domain/curriculum"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

const keyPrefix = "sotfinder:curriculum:"

// CurriculumCache is the shared tier between the in-process map and the
// database. Get returns nil, nil on a miss.
type CurriculumCache interface {
	Get(ctx context.Context, language string) (*types.Curriculum, error)
	Set(ctx context.Context, language string, c *types.Curriculum) error
	Delete(ctx context.Context, language string) error
}

type curriculumCache struct {
	log *logger.Logger
	rdb goredis.UniversalClient
	ttl time.Duration
}

func NewCurriculumCache(log *logger.Logger, rdb goredis.UniversalClient, ttl time.Duration) (CurriculumCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &curriculumCache{
		log: log.With("client", "RedisCurriculumCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func cacheKey(language string) string {
	return keyPrefix + types.Key(language)
}

func (c *curriculumCache) Get(ctx context.Context, language string) (*types.Curriculum, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(language)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out types.Curriculum
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.Warn("bad cached curriculum payload; evicting", "language", types.Key(language), "error", err)
		_ = c.rdb.Del(ctx, cacheKey(language)).Err()
		return nil, nil
	}
	return &out, nil
}

func (c *curriculumCache) Set(ctx context.Context, language string, cur *types.Curriculum) error {
	if cur == nil {
		return nil
	}
	raw, err := json.Marshal(cur)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKey(language), raw, c.ttl).Err()
}

func (c *curriculumCache) Delete(ctx context.Context, language string) error {
	return c.rdb.Del(ctx, cacheKey(language)).Err()
}
