package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/EvertonDSS/corrida-app11/internal/settlement"
	"github.com/google/uuid"
)

// memCache is a goroutine-safe BalanceCache backed by a map. Like the Redis
// cache it refuses writes computed under a stale generation.
type memCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]settlement.ChampionshipBalance
	gens    map[uuid.UUID]int64
	sets    int64
}

func newMemCache() *memCache {
	return &memCache{
		entries: map[uuid.UUID]settlement.ChampionshipBalance{},
		gens:    map[uuid.UUID]int64{},
	}
}

func (c *memCache) Generation(_ context.Context, id uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[id], nil
}

func (c *memCache) GetBalance(_ context.Context, id uuid.UUID, _ settlement.RoundingPolicy) (*settlement.ChampionshipBalance, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[id]
	if !ok {
		return nil, false, nil
	}
	return &b, true, nil
}

func (c *memCache) SetBalance(_ context.Context, _ settlement.RoundingPolicy, gen int64, b *settlement.ChampionshipBalance) error {
	atomic.AddInt64(&c.sets, 1)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[b.ChampionshipID] != gen {
		return nil
	}
	c.entries[b.ChampionshipID] = *b
	return nil
}

func (c *memCache) Invalidate(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[id]++
	delete(c.entries, id)
	return nil
}

// racingLoader serves the snapshot it holds, then, before returning, swaps
// in next and invalidates the cache the way a write committing mid-load
// would.
type racingLoader struct {
	fakeLoader
	cache *memCache
	next  *settlement.Snapshot
	once  sync.Once
}

func (r *racingLoader) LoadSnapshots(ctx context.Context, ids []uuid.UUID) ([]*settlement.Snapshot, error) {
	out, err := r.fakeLoader.LoadSnapshots(ctx, ids)
	r.once.Do(func() {
		r.mu.Lock()
		r.snaps[r.next.Championship.ID] = r.next
		r.mu.Unlock()
		_ = r.cache.Invalidate(ctx, r.next.Championship.ID)
	})
	return out, err
}

// TestInvalidationDuringLoadIsNotOverwritten: a balance computed from data
// that was invalidated while it loaded must not be cached.
func TestInvalidationDuringLoadIsNotOverwritten(t *testing.T) {
	stale := referenceSnapshot("Copa")
	id := stale.Championship.ID
	fresh := *stale
	fresh.Winners = nil

	cache := newMemCache()
	loader := &racingLoader{
		fakeLoader: fakeLoader{snaps: map[uuid.UUID]*settlement.Snapshot{id: stale}},
		cache:      cache,
		next:       &fresh,
	}
	svc := newSettlementService(t, loader, cache)

	first, err := svc.SettleChampionship(context.Background(), id, settlement.FilterAll)
	if err != nil {
		t.Fatalf("first settle: %v", err)
	}
	if got := party(t, first.Bettors, "Ana").TotalPremiosVencidos; got != 540 {
		t.Fatalf("first settle should see the loaded data, Ana won %d", got)
	}

	second, err := svc.SettleChampionship(context.Background(), id, settlement.FilterAll)
	if err != nil {
		t.Fatalf("second settle: %v", err)
	}
	if got := party(t, second.Bettors, "Ana").TotalPremiosVencidos; got != 0 {
		t.Errorf("expected the invalidated balance to be recomputed, Ana won %d", got)
	}
	if len(loader.calls) != 2 {
		t.Errorf("expected 2 loads, got %d", len(loader.calls))
	}
}

// TestConcurrentSettlementIsConsistent runs 50 goroutines settling the same
// championship through a shared cache. Every caller must see the same
// balance whether it computed it or read it back from the cache.
func TestConcurrentSettlementIsConsistent(t *testing.T) {
	const workers = 50

	snap := referenceSnapshot("Copa")
	id := snap.Championship.ID
	loader := &fakeLoader{snaps: map[uuid.UUID]*settlement.Snapshot{id: snap}}
	cache := newMemCache()
	svc := newSettlementService(t, loader, cache)

	var (
		mismatches int64
		failures   int64
		wg         sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			res, err := svc.SettleChampionship(context.Background(), id, settlement.FilterAll)
			if err != nil {
				atomic.AddInt64(&failures, 1)
				return
			}
			for _, p := range res.Bettors {
				if p.Nome == "Ana" && p.SaldoFinal != -60 {
					atomic.AddInt64(&mismatches, 1)
				}
			}
		}()
	}
	wg.Wait()

	if failures > 0 {
		t.Errorf("expected 0 failed settlements, got %d", failures)
	}
	if mismatches > 0 {
		t.Errorf("expected every caller to see Ana at -60, %d did not", mismatches)
	}
	// Every load either populated the cache or was served from it.
	if int64(len(loader.calls)) != cache.sets {
		t.Errorf("loads (%d) and cache writes (%d) should match", len(loader.calls), cache.sets)
	}
}

// TestConcurrentInvalidationRecomputes interleaves invalidations with reads:
// a read after the last invalidation must recompute from the loader.
func TestConcurrentInvalidationRecomputes(t *testing.T) {
	const workers = 20

	snap := referenceSnapshot("Copa")
	id := snap.Championship.ID
	loader := &fakeLoader{snaps: map[uuid.UUID]*settlement.Snapshot{id: snap}}
	cache := newMemCache()
	svc := newSettlementService(t, loader, cache)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.SettleChampionship(context.Background(), id, settlement.FilterAll)
		}()
		go func() {
			defer wg.Done()
			_ = cache.Invalidate(context.Background(), id)
		}()
	}
	wg.Wait()

	_ = cache.Invalidate(context.Background(), id)
	before := len(loader.calls)
	if _, err := svc.SettleChampionship(context.Background(), id, settlement.FilterAll); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if len(loader.calls) != before+1 {
		t.Errorf("expected a fresh load after invalidation, loads went %d -> %d", before, len(loader.calls))
	}
}
