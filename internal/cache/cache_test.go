package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client, time.Hour), mr
}

type page struct {
	IDs []int `json:"ids"`
}

func TestSetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "user:1:appointments:1", page{IDs: []int{1, 2}}, 0); err != nil {
		t.Fatal(err)
	}

	var got page
	hit, err := c.Get(ctx, "user:1:appointments:1", &got)
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if len(got.IDs) != 2 || got.IDs[0] != 1 {
		t.Fatalf("got %+v", got)
	}
}

func TestGetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var got page
	hit, err := c.Get(context.Background(), "missing", &got)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Fatal("expected miss")
	}
}

func TestKeysArePrefixed(t *testing.T) {
	c, mr := newTestCache(t)

	if err := c.Set(context.Background(), "user:2:appointments:1", page{}, 0); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("cache:user:2:appointments:1") {
		t.Fatalf("expected cache: prefix, keys: %v", mr.Keys())
	}
}

func TestSetHonorsTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "ephemeral", page{}, time.Minute); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(2 * time.Minute)

	var got page
	hit, err := c.Get(ctx, "ephemeral", &got)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Fatal("expected entry to expire")
	}
}

func TestInvalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "a", page{}, 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Invalidate(ctx, "a"); err != nil {
		t.Fatal(err)
	}

	var got page
	if hit, _ := c.Get(ctx, "a", &got); hit {
		t.Fatal("expected key to be gone")
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	for _, key := range []string{"user:1:appointments:1", "user:1:appointments:2", "user:2:appointments:1"} {
		if err := c.Set(ctx, key, page{}, 0); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.InvalidatePrefix(ctx, "user:1:appointments"); err != nil {
		t.Fatal(err)
	}

	var got page
	if hit, _ := c.Get(ctx, "user:1:appointments:2", &got); hit {
		t.Fatal("expected user 1 pages to be invalidated")
	}
	if hit, _ := c.Get(ctx, "user:2:appointments:1", &got); !hit {
		t.Fatal("expected user 2 pages to survive")
	}
}
