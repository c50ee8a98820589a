package trending

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/Jayesh25-trade/CineVibe/internal/domain/movie"
	"github.com/Jayesh25-trade/CineVibe/pkg/logger"
	"github.com/Jayesh25-trade/CineVibe/pkg/metrics"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

type stubSource struct {
	trendingFn  func(ctx context.Context) ([]movie.Record, error)
	detailsFn   func(ctx context.Context, id string) (movie.Record, error)
	listCalls   atomic.Int32
	detailCalls atomic.Int32
}

func (s *stubSource) TrendingMovies(ctx context.Context) ([]movie.Record, error) {
	s.listCalls.Add(1)
	return s.trendingFn(ctx)
}

func (s *stubSource) MovieDetails(ctx context.Context, id string, opts movie.DetailOptions) (movie.Record, error) {
	s.detailCalls.Add(1)
	if opts.IncludeVideos {
		return movie.Record{}, errors.New("trending enrichment must skip videos")
	}
	if s.detailsFn != nil {
		return s.detailsFn(ctx, id)
	}
	return movie.Record{ID: id, Title: "Detailed " + id, Rating: 7}, nil
}

func listOf(n int, rating float64) []movie.Record {
	out := make([]movie.Record, n)
	for i := range out {
		out[i] = movie.Record{ID: strconv.Itoa(i + 1), Rating: rating}
	}
	return out
}

func counterValue(t *testing.T, result string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.TrendingCache.WithLabelValues(result).Write(&m))
	return m.GetCounter().GetValue()
}

func newCacheUnderTest(src Source, clock *fakeClock) *Cache {
	c := NewCache(DefaultConfig(), src, logger.Discard())
	c.now = clock.Now
	return c
}

func TestTrendingFetchesOncePerTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	src := &stubSource{trendingFn: func(context.Context) ([]movie.Record, error) {
		return listOf(3, 7.5), nil
	}}
	cache := newCacheUnderTest(src, clock)

	require.False(t, cache.Fresh())
	first := cache.Trending(context.Background())
	require.Len(t, first, 3)
	require.EqualValues(t, 1, src.listCalls.Load())
	require.True(t, cache.Fresh())

	clock.Advance(59 * time.Minute)
	second := cache.Trending(context.Background())
	require.EqualValues(t, 1, src.listCalls.Load())
	require.Equal(t, first, second)

	clock.Advance(2 * time.Minute)
	require.False(t, cache.Fresh())
	cache.Trending(context.Background())
	require.EqualValues(t, 2, src.listCalls.Load())
	require.True(t, cache.Fresh())
}

func TestTrendingServesStaleDataWhenRefreshFails(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	var fail atomic.Bool
	src := &stubSource{trendingFn: func(context.Context) ([]movie.Record, error) {
		if fail.Load() {
			return nil, errors.New("tmdb down")
		}
		return listOf(2, 8), nil
	}}
	cache := newCacheUnderTest(src, clock)

	original := cache.Trending(context.Background())
	require.Len(t, original, 2)

	fail.Store(true)
	clock.Advance(2 * time.Hour)
	staleBefore := counterValue(t, "stale")
	stale := cache.Trending(context.Background())
	require.Equal(t, original, stale)
	require.False(t, cache.Fresh())
	require.Equal(t, staleBefore+1, counterValue(t, "stale"))

	// timestamp was not reset, so the next read tries again
	cache.Trending(context.Background())
	require.EqualValues(t, 3, src.listCalls.Load())
}

func TestTrendingEmptyWhenFirstRefreshFails(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	src := &stubSource{trendingFn: func(context.Context) ([]movie.Record, error) {
		return nil, errors.New("unreachable")
	}}
	cache := newCacheUnderTest(src, clock)

	got := cache.Trending(context.Background())
	require.NotNil(t, got)
	require.Empty(t, got)
	require.False(t, cache.Fresh())
}

func TestTrendingFiltersLimitsAndDropsFailedEnrichment(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	list := []movie.Record{
		{ID: "low", Rating: 5.9},
		{ID: "edge", Rating: 6.0},
	}
	list = append(list, listOf(25, 6.1)...)
	src := &stubSource{
		trendingFn: func(context.Context) ([]movie.Record, error) { return list, nil },
		detailsFn: func(_ context.Context, id string) (movie.Record, error) {
			if id == "5" {
				return movie.Record{}, fmt.Errorf("details %s: %w", id, movie.ErrNotFound)
			}
			return movie.Record{ID: id, Rating: 7}, nil
		},
	}
	cache := newCacheUnderTest(src, clock)

	got := cache.Trending(context.Background())
	require.EqualValues(t, 20, src.detailCalls.Load())
	require.Len(t, got, 19)
	require.Equal(t, "1", got[0].ID)
	for _, m := range got {
		require.NotEqual(t, "low", m.ID)
		require.NotEqual(t, "edge", m.ID)
		require.NotEqual(t, "5", m.ID)
	}
}

func TestTrendingBoundsDetailConcurrency(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	var running, peak atomic.Int32
	src := &stubSource{
		trendingFn: func(context.Context) ([]movie.Record, error) { return listOf(12, 7), nil },
		detailsFn: func(_ context.Context, id string) (movie.Record, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return movie.Record{ID: id, Rating: 7}, nil
		},
	}
	cache := newCacheUnderTest(src, clock)

	got := cache.Trending(context.Background())
	require.Len(t, got, 12)
	require.LessOrEqual(t, peak.Load(), int32(4))
	for i, m := range got {
		require.Equal(t, strconv.Itoa(i+1), m.ID)
	}
}

func TestTrendingCollapsesConcurrentRefreshes(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	gate := make(chan struct{})
	src := &stubSource{trendingFn: func(context.Context) ([]movie.Record, error) {
		<-gate
		return listOf(1, 9), nil
	}}
	cache := newCacheUnderTest(src, clock)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.Len(t, cache.Trending(context.Background()), 1)
		}()
	}
	require.Eventually(t, func() bool { return src.listCalls.Load() == 1 }, time.Second, time.Millisecond)
	close(gate)
	wg.Wait()
	require.EqualValues(t, 1, src.listCalls.Load())
}
