package pricing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	mu      sync.Mutex
	entries map[string]PriceTable
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]PriceTable{}}
}

func (c *mapCache) Get(key string) (PriceTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	table, ok := c.entries[key]
	return table, ok
}

func (c *mapCache) Put(key string, table PriceTable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = table
}

type fakeSource struct {
	queries  atomic.Int64
	inflight atomic.Int64
	maxSeen  atomic.Int64
	delay    time.Duration

	mu     sync.Mutex
	offers map[string]Offer // "seller/language/name" -> offer
	errs   map[string]error
}

func (s *fakeSource) set(seller, language, name, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.offers == nil {
		s.offers = map[string]Offer{}
	}
	s.offers[seller+"/"+language+"/"+name] = Offer{
		Price:   decimal.RequireFromString(price),
		Locator: "https://example.com/" + seller,
		Found:   true,
	}
}

func (s *fakeSource) fail(seller, language, name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errs == nil {
		s.errs = map[string]error{}
	}
	s.errs[seller+"/"+language+"/"+name] = err
}

func (s *fakeSource) Query(ctx context.Context, seller, language, name string) (Offer, error) {
	s.queries.Add(1)
	n := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	for {
		max := s.maxSeen.Load()
		if n <= max || s.maxSeen.CompareAndSwap(max, n) {
			break
		}
	}

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Offer{}, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.errs[seller+"/"+language+"/"+name]; ok {
		return Offer{}, err
	}
	return s.offers[seller+"/"+language+"/"+name], nil
}

func newResolver(source *fakeSource, cache Cache, workers int) *Resolver {
	return &Resolver{
		Source:       source,
		Cache:        cache,
		Workers:      workers,
		QueryTimeout: time.Second,
	}
}

func TestResolveReducesAcrossLanguages(t *testing.T) {
	source := &fakeSource{}
	source.set("A", "en", "Brainstorm", "2.00")
	source.set("A", "es", "Brainstorm", "1.40")
	source.set("B", "en", "Brainstorm", "3.00")

	r := newResolver(source, newMapCache(), 2)
	table := r.Resolve(context.Background(), "Brainstorm", []string{"en", "es"}, []string{"A", "B", "C"})

	require.Len(t, table, 3, "every configured seller gets an entry")
	require.True(t, table["A"].Found)
	require.True(t, table["A"].Price.Equal(decimal.RequireFromString("1.40")))
	require.True(t, table["B"].Found)
	require.False(t, table["C"].Found)
}

func TestResolveSecondCallHitsCache(t *testing.T) {
	source := &fakeSource{}
	source.set("A", "en", "Brainstorm", "1.50")

	r := newResolver(source, newMapCache(), 2)
	ctx := context.Background()

	first := r.Resolve(ctx, "Brainstorm", []string{"en"}, []string{"A"})
	queriesAfterFirst := source.queries.Load()
	second := r.Resolve(ctx, "Brainstorm", []string{"en"}, []string{"A"})

	require.Equal(t, queriesAfterFirst, source.queries.Load(), "cache hit must not query the source")
	require.Equal(t, first, second)
}

func TestResolveFailureDegradesToNotFound(t *testing.T) {
	source := &fakeSource{}
	source.set("A", "en", "Brainstorm", "1.50")
	source.fail("B", "en", "Brainstorm", errors.New("timeout waiting for table"))

	r := newResolver(source, newMapCache(), 2)
	table := r.Resolve(context.Background(), "Brainstorm", []string{"en"}, []string{"A", "B"})

	require.True(t, table["A"].Found)
	require.False(t, table["B"].Found)
}

func TestResolveCachesEmptyTables(t *testing.T) {
	source := &fakeSource{}
	cache := newMapCache()

	r := newResolver(source, cache, 2)
	ctx := context.Background()

	r.Resolve(ctx, "Obscure Card", []string{"en"}, []string{"A"})
	queriesAfterFirst := source.queries.Load()
	table := r.Resolve(ctx, "Obscure Card", []string{"en"}, []string{"A"})

	require.Equal(t, queriesAfterFirst, source.queries.Load(), "misses are memoized, not retried")
	require.False(t, table["A"].Found)
}

func TestResolveBoundsConcurrency(t *testing.T) {
	source := &fakeSource{delay: 20 * time.Millisecond}
	sellers := []string{"A", "B", "C", "D", "E"}
	for _, s := range sellers {
		source.set(s, "en", "Brainstorm", "1.00")
		source.set(s, "es", "Brainstorm", "1.00")
	}

	const workers = 2
	r := newResolver(source, newMapCache(), workers)
	r.Resolve(context.Background(), "Brainstorm", []string{"en", "es"}, sellers)

	require.EqualValues(t, len(sellers)*2, source.queries.Load())
	require.LessOrEqual(t, source.maxSeen.Load(), int64(workers))
}

func TestResolveCanceledRunIsNotMemoized(t *testing.T) {
	source := &fakeSource{delay: 10 * time.Millisecond}
	source.set("A", "en", "Brainstorm", "1.50")
	cache := newMapCache()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newResolver(source, cache, 2)
	r.Resolve(ctx, "Brainstorm", []string{"en"}, []string{"A"})

	require.Empty(t, cache.entries, "a canceled fan-out must not poison the cache")
}

func TestCacheKeyIgnoresSetOrder(t *testing.T) {
	a := CacheKey("Brainstorm", []string{"en", "es"}, []string{"A", "B"})
	b := CacheKey("Brainstorm", []string{"es", "en"}, []string{"B", "A"})
	require.Equal(t, a, b)

	require.NotEqual(t, a, CacheKey("Brainstorm", []string{"en"}, []string{"A", "B"}))
	require.NotEqual(t, a, CacheKey("Ponder", []string{"en", "es"}, []string{"A", "B"}))
}

func TestRunnerBatch(t *testing.T) {
	source := &fakeSource{}
	source.set("A", "en", "Brainstorm", "1.50")
	source.set("B", "en", "Brainstorm", "1.20")

	runner := &Runner{
		Resolver:           newResolver(source, newMapCache(), 2),
		Languages:          []string{"en"},
		Sellers:            []string{"A", "B"},
		PreferredSeller:    "A",
		PreferredTolerance: decimal.RequireFromString("0.50"),
		LowThreshold:       decimal.RequireFromString("2.00"),
		HighThreshold:      decimal.RequireFromString("10.00"),
	}

	records, totals := runner.Run(context.Background(), []string{"Brainstorm", "Brainstorm", "Nonexistent"})

	require.Len(t, records, 3)

	require.Equal(t, 1, records[0].Index)
	require.Equal(t, ClassDecklist, records[0].Class)
	require.Equal(t, "A", records[0].Best.Seller, "override fires within tolerance")
	require.Equal(t, records[0].Best, records[1].Best, "duplicate resolves identically via cache")

	require.Equal(t, ClassNotFound, records[2].Class, "unknown card must not inherit another card's offers")
	require.Equal(t, ReasonNoResults, records[2].Reason)
	require.False(t, records[2].Best.Found)

	require.Equal(t, 2, totals.DecklistCount)
	require.Equal(t, 1, totals.NotFoundCount)
	require.True(t, totals.Grand().Equal(decimal.RequireFromString("3.00")))
}
