package bttnotice

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(rdb)
	ctx := context.Background()

	if _, err := s.Get(ctx, "k"); err != ErrCacheMiss {
		t.Fatalf("Expected ErrCacheMiss, got %v", err)
	}

	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, err := s.Get(ctx, "k")
	if err != nil || string(v) != "v" {
		t.Fatalf("Expected v, got %q (%v)", v, err)
	}
	if ttl := mr.TTL("k"); ttl != time.Minute {
		t.Errorf("Expected ttl 1m, got %v", ttl)
	}

	// 过期
	mr.FastForward(time.Minute)
	if _, err := s.Get(ctx, "k"); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after ttl, got %v", err)
	}

	// ttl 为 0 不过期
	if err := s.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if ttl := mr.TTL("forever"); ttl != 0 {
		t.Errorf("Expected no ttl, got %v", ttl)
	}

	if err := s.Delete(ctx, "forever"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, "forever"); err != nil {
		t.Fatalf("Delete of missing key failed: %v", err)
	}
	if mr.Exists("forever") {
		t.Errorf("Expected key to be deleted")
	}
}

func TestIntegration(t *testing.T) {
	// 1. 初始化 Miniredis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	old := prefix
	SetPrefix("testapp")
	defer func() { prefix = old }()

	srv := newTestServer(t, http.StatusOK, sampleDoc)
	ctx := context.Background()

	// 2. 两个实例共用同一份 Redis 缓存
	n1 := newTestNotice(srv, "1.4.0", WithStore(NewRedisStore(rdb)))
	n2 := newTestNotice(srv, "1.4.0", WithStore(NewRedisStore(rdb)))

	msg, ok := n1.Resolve(ctx, "2.0.0")
	if !ok || msg != "Upgrading to 2.0 changes X" {
		t.Fatalf("Unexpected message %q (%v)", msg, ok)
	}
	if !mr.Exists(n1.CacheKey()) {
		t.Fatalf("Expected cache key %s", n1.CacheKey())
	}
	if ttl := mr.TTL(n1.CacheKey()); ttl != DefaultCacheTTL {
		t.Errorf("Expected ttl %v, got %v", DefaultCacheTTL, ttl)
	}

	// 3. 第二个实例命中缓存
	msg2, ok := n2.Resolve(ctx, "2.0.0")
	if !ok || msg2 != msg {
		t.Fatalf("Expected cached message, got %q (%v)", msg2, ok)
	}
	if hits := srv.hits.Load(); hits != 1 {
		t.Errorf("Expected 1 fetch, got %d", hits)
	}

	// 4. 过期后重新获取
	mr.FastForward(DefaultCacheTTL)
	if _, ok := n2.Resolve(ctx, "2.0.0"); !ok {
		t.Fatalf("Resolve after expiry failed")
	}
	if hits := srv.hits.Load(); hits != 2 {
		t.Errorf("Expected 2 fetches, got %d", hits)
	}

	// 5. 清除缓存
	if err := n1.ClearCache(ctx); err != nil {
		t.Fatalf("ClearCache failed: %v", err)
	}
	if mr.Exists(n1.CacheKey()) {
		t.Errorf("Expected cache key removed")
	}
	if _, ok := n2.Resolve(ctx, "2.0.0"); !ok {
		t.Fatalf("Resolve after clear failed")
	}
	if hits := srv.hits.Load(); hits != 3 {
		t.Errorf("Expected 3 fetches, got %d", hits)
	}

	// 6. Redis 不可用时仍然可以直接获取
	mr.Close()
	if _, ok := n1.Resolve(ctx, "2.0.0"); !ok {
		t.Errorf("Expected fallback to remote when redis is down")
	}
}
