package sequence

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Ahmed-Ibrahim-0/switches-controller/lifecycle"
	"github.com/Ahmed-Ibrahim-0/switches-controller/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisAllocatorConcurrent(t *testing.T) {
	_, rdb := newRedis(t)
	alloc := NewRedisAllocator(rdb, "switches")

	const n = 200
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		keys []int64
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k, err := alloc.Next(context.Background())
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			keys = append(keys, k)
			mu.Unlock()
		}()
	}
	wg.Wait()
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	if len(keys) != n {
		t.Fatalf("got %d keys", len(keys))
	}
	for i, k := range keys {
		if k != int64(i+1) {
			t.Fatalf("keys[%d] = %d", i, k)
		}
	}
}

func TestRedisAllocatorResetAndSeed(t *testing.T) {
	_, rdb := newRedis(t)
	alloc := NewRedisAllocator(rdb, "switches")
	ctx := context.Background()

	alloc.Next(ctx)
	alloc.Next(ctx)
	if err := alloc.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if k, _ := alloc.Next(ctx); k != 1 {
		t.Fatalf("after reset = %d", k)
	}

	if err := alloc.Seed(ctx, 40); err != nil {
		t.Fatal(err)
	}
	if err := alloc.Seed(ctx, 10); err != nil {
		t.Fatal(err)
	}
	if k, _ := alloc.Next(ctx); k != 41 {
		t.Fatalf("after seed = %d", k)
	}
}

func TestStatsCache(t *testing.T) {
	mr, rdb := newRedis(t)
	cache := NewStatsCache(rdb, time.Minute)
	ctx := context.Background()

	st, gen, err := cache.Get(ctx)
	if err != nil || st != nil || gen != 0 {
		t.Fatalf("empty cache: %v %d %v", st, gen, err)
	}
	in := &lifecycle.Stats{
		Total:     3,
		Breakdown: []lifecycle.StatusCount{{Status: models.StatusFixed, Count: 3}},
	}
	if err := cache.Set(ctx, gen, in); err != nil {
		t.Fatal(err)
	}
	out, _, err := cache.Get(ctx)
	if err != nil || out.Total != 3 || out.Breakdown[0].Status != models.StatusFixed {
		t.Fatalf("round trip: %+v %v", out, err)
	}

	mr.FastForward(2 * time.Minute)
	if st, _, _ := cache.Get(ctx); st != nil {
		t.Fatal("entry outlived its ttl")
	}

	cache.Set(ctx, 0, in)
	if err := cache.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	st, gen, _ = cache.Get(ctx)
	if st != nil {
		t.Fatal("entry survived invalidate")
	}
	if gen != 1 {
		t.Fatalf("generation after invalidate = %d", gen)
	}

	// a snapshot taken under generation 0 must not land after the bump
	if err := cache.Set(ctx, 0, in); err != nil {
		t.Fatal(err)
	}
	if st, _, _ := cache.Get(ctx); st != nil {
		t.Fatal("stale generation was stored")
	}
	if err := cache.Set(ctx, 1, in); err != nil {
		t.Fatal(err)
	}
	if st, _, _ := cache.Get(ctx); st == nil {
		t.Fatal("current generation was not stored")
	}
}

type writeDuringStats struct {
	*lifecycle.MemoryStore
	onStats func()
}

func (w *writeDuringStats) Stats(ctx context.Context) (*lifecycle.Stats, error) {
	st, err := w.MemoryStore.Stats(ctx)
	if hook := w.onStats; hook != nil {
		w.onStats = nil
		hook()
	}
	return st, err
}

func TestServiceStatsWithRedisIgnoresOverlappingWrite(t *testing.T) {
	_, rdb := newRedis(t)
	store := &writeDuringStats{MemoryStore: lifecycle.NewMemoryStore()}
	svc := lifecycle.NewService(store, NewRedisAllocator(rdb, "switches"),
		lifecycle.WithStatsCache(NewStatsCache(rdb, time.Minute)))
	ctx := context.Background()

	store.onStats = func() {
		if _, err := svc.Create(ctx, lifecycle.Fields{SerialNumber: "late"}); err != nil {
			t.Error(err)
		}
	}
	if st, err := svc.Stats(ctx); err != nil || st.Total != 0 {
		t.Fatalf("first stats: %+v %v", st, err)
	}
	st, err := svc.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Total != 1 {
		t.Fatalf("cached total = %d, store holds 1", st.Total)
	}
}

func TestServiceWithRedis(t *testing.T) {
	_, rdb := newRedis(t)
	svc := lifecycle.NewService(
		lifecycle.NewMemoryStore(),
		NewRedisAllocator(rdb, "switches"),
		lifecycle.WithStatsCache(NewStatsCache(rdb, time.Minute)),
	)
	ctx := context.Background()

	if _, err := svc.Create(ctx, lifecycle.Fields{SerialNumber: "r1"}); err != nil {
		t.Fatal(err)
	}
	st, _ := svc.Stats(ctx)
	if st.Total != 1 {
		t.Fatalf("total = %d", st.Total)
	}
	sw, err := svc.Create(ctx, lifecycle.Fields{SerialNumber: "r2"})
	if err != nil {
		t.Fatal(err)
	}
	if sw.UniqueKey != 2 {
		t.Fatalf("key = %d", sw.UniqueKey)
	}
	st, _ = svc.Stats(ctx)
	if st.Total != 2 {
		t.Fatalf("cached stats not invalidated: %d", st.Total)
	}
}
