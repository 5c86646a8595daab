package idempotency

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestCache(ttl time.Duration) (*Cache, *time.Time) {
	c := NewCache(ttl)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &now
	c.nowFunc = func() time.Time { return *clock }
	return c, clock
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(24 * time.Hour)

	entry := Entry{
		StatusCode:  201,
		ContentType: "application/json",
		Body:        []byte(`{"id":"pay-1"}`),
		Location:    "/payments/pay-1",
	}
	c.Set("idempotency:anonymous:k1", entry)

	got, ok := c.Get("idempotency:anonymous:k1")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if got.StatusCode != 201 || got.Location != "/payments/pay-1" {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if !bytes.Equal(got.Body, entry.Body) {
		t.Fatalf("body mismatch: %s", got.Body)
	}

	if _, ok := c.Get("idempotency:anonymous:other"); ok {
		t.Fatalf("expected miss for unknown key")
	}
}

func TestCache_Expiry(t *testing.T) {
	c, clock := newTestCache(24 * time.Hour)
	c.Set("k1", Entry{StatusCode: 200})

	*clock = clock.Add(23 * time.Hour)
	if _, ok := c.Get("k1"); !ok {
		t.Fatalf("entry expired too early")
	}

	*clock = clock.Add(2 * time.Hour)
	if _, ok := c.Get("k1"); ok {
		t.Fatalf("expected entry to expire after the TTL window")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should have been dropped on read")
	}
}

func TestCache_Sweep(t *testing.T) {
	c, clock := newTestCache(time.Hour)
	c.Set("old", Entry{StatusCode: 200})
	*clock = clock.Add(30 * time.Minute)
	c.Set("fresh", Entry{StatusCode: 200})
	*clock = clock.Add(45 * time.Minute)

	c.Sweep()
	if c.Len() != 1 {
		t.Fatalf("expected sweep to keep 1 entry, have %d", c.Len())
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Fatalf("sweep dropped a live entry")
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c, _ := newTestCache(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			c.Set(key, Entry{StatusCode: 200, Body: []byte(key)})
			if e, ok := c.Get(key); ok && e.StatusCode != 200 {
				t.Errorf("torn entry: %+v", e)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() != 4 {
		t.Fatalf("expected 4 keys, have %d", c.Len())
	}
}
