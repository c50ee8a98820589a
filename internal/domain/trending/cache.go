// Package trending keeps a time-bounded snapshot of the week's trending
// movies, enriched with full details.
package trending

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Jayesh25-trade/CineVibe/internal/domain/movie"
	"github.com/Jayesh25-trade/CineVibe/pkg/limiter"
	"github.com/Jayesh25-trade/CineVibe/pkg/metrics"
)

// Source is the metadata provider surface the cache needs.
type Source interface {
	TrendingMovies(ctx context.Context) ([]movie.Record, error)
	MovieDetails(ctx context.Context, id string, opts movie.DetailOptions) (movie.Record, error)
}

// Config tunes refresh behaviour.
type Config struct {
	TTL         time.Duration
	MinRating   float64
	Limit       int
	Concurrency int
}

// DefaultConfig returns a one hour TTL, a 6.0 rating floor, the top 20
// titles and at most 4 concurrent detail lookups.
func DefaultConfig() Config {
	return Config{TTL: time.Hour, MinRating: 6.0, Limit: 20, Concurrency: 4}
}

type snapshot struct {
	data      []movie.Record
	timestamp time.Time
}

// Cache serves the trending list. A failed refresh keeps serving the
// previous snapshot and leaves its timestamp untouched, so the next read
// tries again.
type Cache struct {
	cfg     Config
	source  Source
	limiter *limiter.Limiter
	snap    atomic.Pointer[snapshot]
	group   singleflight.Group
	now     func() time.Time
	logger  *slog.Logger
}

// NewCache builds an empty cache.
func NewCache(cfg Config, source Source, logger *slog.Logger) *Cache {
	def := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	return &Cache{
		cfg:     cfg,
		source:  source,
		limiter: limiter.New(cfg.Concurrency),
		now:     time.Now,
		logger:  logger.With("component", "trending.cache"),
	}
}

// Trending returns the cached list, refreshing it when missing or expired.
// It never fails; with no data at all it returns an empty slice.
func (c *Cache) Trending(ctx context.Context) []movie.Record {
	if s := c.snap.Load(); s != nil && c.isFresh(s) {
		metrics.TrendingCache.WithLabelValues("hit").Inc()
		return s.data
	}
	// the refresh outlives a caller that goes away
	refreshCtx := context.WithoutCancel(ctx)
	v, _, _ := c.group.Do("trending", func() (any, error) {
		if s := c.snap.Load(); s != nil && c.isFresh(s) {
			return s.data, nil
		}
		metrics.TrendingCache.WithLabelValues("miss").Inc()
		started := c.now()
		data, err := c.refresh(refreshCtx)
		if err != nil {
			metrics.TrendingCache.WithLabelValues("refresh_failed").Inc()
			if s := c.snap.Load(); s != nil {
				metrics.TrendingCache.WithLabelValues("stale").Inc()
				c.logger.Warn("trending refresh failed, serving stale data", "error", err, "age", c.now().Sub(s.timestamp).String())
				return s.data, nil
			}
			c.logger.Warn("trending refresh failed with no cached data", "error", err)
			return []movie.Record{}, nil
		}
		c.snap.Store(&snapshot{data: data, timestamp: started})
		c.logger.Info("trending cache refreshed", "count", len(data))
		return data, nil
	})
	return v.([]movie.Record)
}

// Fresh reports whether a snapshot exists and is within its TTL.
func (c *Cache) Fresh() bool {
	s := c.snap.Load()
	return s != nil && c.isFresh(s)
}

// Warm populates the cache ahead of the first request.
func (c *Cache) Warm(ctx context.Context) {
	c.Trending(ctx)
}

func (c *Cache) isFresh(s *snapshot) bool {
	return c.now().Sub(s.timestamp) < c.cfg.TTL
}

func (c *Cache) refresh(ctx context.Context) ([]movie.Record, error) {
	list, err := c.source.TrendingMovies(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, c.cfg.Limit)
	for _, m := range list {
		if m.Rating <= c.cfg.MinRating {
			continue
		}
		ids = append(ids, m.ID)
		if len(ids) == c.cfg.Limit {
			break
		}
	}

	futures := make([]*limiter.Future[movie.Record], len(ids))
	for i, id := range ids {
		futures[i] = limiter.Schedule(c.limiter, func() (movie.Record, error) {
			return c.source.MovieDetails(ctx, id, movie.DetailOptions{})
		})
	}

	out := make([]movie.Record, 0, len(ids))
	for i, f := range futures {
		rec, err := f.Result()
		if err != nil {
			c.logger.Debug("trending enrichment failed", "id", ids[i], "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
