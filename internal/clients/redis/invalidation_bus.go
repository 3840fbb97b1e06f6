package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

// InvalidationMessage tells peer instances to drop a language from their
// in-process cache.
type InvalidationMessage struct {
	Language string    `json:"language"`
	Origin   string    `json:"origin"`
	At       time.Time `json:"at"`
}

type InvalidationBus interface {
	Publish(ctx context.Context, language string) error
	StartForwarder(ctx context.Context, onMsg func(m InvalidationMessage)) error
}

type invalidationBus struct {
	log     *logger.Logger
	rdb     goredis.UniversalClient
	channel string
	origin  string
}

func NewInvalidationBus(log *logger.Logger, rdb goredis.UniversalClient, channel, origin string) (InvalidationBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = "sotfinder:curriculum:invalidate"
	}
	return &invalidationBus{
		log:     log.With("client", "RedisInvalidationBus"),
		rdb:     rdb,
		channel: channel,
		origin:  origin,
	}, nil
}

func (b *invalidationBus) Publish(ctx context.Context, language string) error {
	raw, err := json.Marshal(InvalidationMessage{Language: language, Origin: b.origin, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// StartForwarder subscribes and calls onMsg for every message published by
// another instance. It returns once the subscription is confirmed.
func (b *invalidationBus) StartForwarder(ctx context.Context, onMsg func(m InvalidationMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var msg InvalidationMessage
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					b.log.Warn("bad invalidation payload", "error", err)
					continue
				}
				if msg.Origin != "" && msg.Origin == b.origin {
					continue
				}
				onMsg(msg)
			}
		}
	}()

	return nil
}
