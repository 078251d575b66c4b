package cache

import (
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func TestResultCacheHitWithinTTL(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	c := NewResultCache(WithClock(clk), WithTTL(10*time.Minute))

	c.Set("k", 42)
	clk.Advance(9 * time.Minute)

	v, ok := c.Get("k")
	if !ok || v.(int) != 42 {
		t.Fatalf("expected hit within TTL, got %v %v", v, ok)
	}
}

func TestResultCacheExpiry(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	c := NewResultCache(WithClock(clk), WithTTL(10*time.Minute))

	c.Set("k", "v")
	clk.Advance(10*time.Minute + time.Second)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after TTL expiry")
	}
	// lazy expiry also removed the entry
	if c.Len() != 0 {
		t.Fatalf("expired entry not deleted, len=%d", c.Len())
	}
}

func TestResultCacheSweep(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	c := NewResultCache(WithClock(clk), WithTTL(time.Minute))

	c.Set("a", 1)
	c.Set("b", 2)
	clk.Advance(30 * time.Second)
	c.Set("c", 3)
	clk.Advance(45 * time.Second)

	if dropped := c.Sweep(); dropped != 2 {
		t.Fatalf("sweep dropped %d, want 2", dropped)
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("live entry swept")
	}
}

func TestResultCacheMiss(t *testing.T) {
	c := NewResultCache()
	if _, ok := c.Get("absent"); ok {
		t.Fatal("expected miss for absent key")
	}
}

// hookClock fires a one-shot callback on the next Now call, letting a test
// interleave work inside a cache operation.
type hookClock struct {
	now   time.Time
	onNow func()
}

func (h *hookClock) Now() time.Time {
	if h.onNow != nil {
		fn := h.onNow
		h.onNow = nil
		fn()
	}
	return h.now
}

func TestResultCacheGetKeepsConcurrentlyRefreshedEntry(t *testing.T) {
	clk := &hookClock{now: time.Unix(1700000000, 0)}
	c := NewResultCache(WithClock(clk), WithTTL(time.Minute))

	c.Set("k", "stale")
	clk.now = clk.now.Add(2 * time.Minute)
	// refresh the key between Get's expiry check and its delete
	clk.onNow = func() { c.Set("k", "fresh") }

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss on the expired read")
	}
	v, ok := c.Get("k")
	if !ok || v.(string) != "fresh" {
		t.Fatalf("refreshed entry dropped, got %v %v", v, ok)
	}
}

func TestResultCacheStopIdempotent(t *testing.T) {
	c := NewResultCache(WithSweepInterval(time.Millisecond))
	c.Start()
	c.Stop()
	c.Stop()
}

func TestKeyDependsOnData(t *testing.T) {
	from := time.Unix(1000, 0)
	to := time.Unix(2000, 0)

	a := Key("metric:revenue", []float64{1, 2, 3}, from, to, "SIMPLE")
	b := Key("metric:revenue", []float64{1, 2, 4}, from, to, "SIMPLE")
	if a == b {
		t.Fatal("keys must differ for different data of equal length")
	}

	c := Key("metric:revenue", []float64{1, 2, 3}, from, to, "SIMPLE")
	if a != c {
		t.Fatal("keys must be deterministic")
	}

	d := Key("metric:revenue", []float64{1, 2, 3}, from, to, "WEIGHTED")
	if a == d {
		t.Fatal("keys must differ for different options")
	}
}
