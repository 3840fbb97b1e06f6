package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/sotfinder-backend/internal/domain/curriculum"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

func testRedisAddr(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis integration tests")
	}
	return addr
}

func TestCurriculumCacheRoundTrip(t *testing.T) {
	addr := testRedisAddr(t)
	ctx := context.Background()
	rdb, err := Dial(ctx, Config{Addr: addr})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer rdb.Close()

	cache, err := NewCurriculumCache(logger.Nop(), rdb, time.Minute)
	if err != nil {
		t.Fatalf("NewCurriculumCache: %v", err)
	}
	lang := "lang-" + uuid.NewString()
	defer func() { _ = cache.Delete(ctx, lang) }()

	if got, err := cache.Get(ctx, lang); err != nil || got != nil {
		t.Fatalf("miss: got=%v err=%v", got, err)
	}
	in := types.Fallback(lang, time.Now())
	if err := cache.Set(ctx, lang, in); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := cache.Get(ctx, lang)
	if err != nil || got == nil || got.Status != types.StatusFallback {
		t.Fatalf("hit: got=%+v err=%v", got, err)
	}
	if err := cache.Delete(ctx, lang); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := cache.Get(ctx, lang); got != nil {
		t.Fatalf("value survived delete")
	}
}

func TestInvalidationBusSkipsOwnMessages(t *testing.T) {
	addr := testRedisAddr(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rdb, err := Dial(ctx, Config{Addr: addr})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer rdb.Close()

	channel := "test:" + uuid.NewString()
	self, _ := NewInvalidationBus(logger.Nop(), rdb, channel, "a")
	peer, _ := NewInvalidationBus(logger.Nop(), rdb, channel, "b")

	got := make(chan InvalidationMessage, 4)
	if err := self.StartForwarder(ctx, func(m InvalidationMessage) { got <- m }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	_ = self.Publish(ctx, "ignored")
	_ = peer.Publish(ctx, "java")

	select {
	case m := <-got:
		if m.Language != "java" || m.Origin != "b" {
			t.Fatalf("unexpected message: %+v", m)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no invalidation received")
	}
}

func TestDialRequiresAddr(t *testing.T) {
	if _, err := Dial(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error without addr")
	}
}
