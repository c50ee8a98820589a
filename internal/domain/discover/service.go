// Package discover serves the browse surfaces: regional rows, details and
// "more like this" listings.
package discover

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/sourcegraph/conc/iter"
	"github.com/sourcegraph/conc/pool"

	"github.com/Jayesh25-trade/CineVibe/internal/domain/movie"
	apperrors "github.com/Jayesh25-trade/CineVibe/pkg/errors"
	"github.com/Jayesh25-trade/CineVibe/pkg/util"
)

// Service exposes browse operations.
type Service interface {
	TrendingAll(ctx context.Context) (Rows, error)
	NowPlaying(ctx context.Context) (Regional, error)
	Upcoming(ctx context.Context) (Rows, error)
	Details(ctx context.Context, id string) (movie.Record, error)
	MovieByTitle(ctx context.Context, title string) (movie.Record, error)
	Similar(ctx context.Context, id string) ([]movie.Record, error)
}

// Catalog is the metadata provider surface; *tmdb.Client satisfies it.
type Catalog interface {
	TrendingMovies(ctx context.Context) ([]movie.Record, error)
	NowPlaying(ctx context.Context, region string) ([]movie.Record, error)
	Upcoming(ctx context.Context, region string) ([]movie.Record, error)
	Discover(ctx context.Context, kind movie.Kind, params url.Values) ([]movie.Record, error)
	MovieDetails(ctx context.Context, id string, opts movie.DetailOptions) (movie.Record, error)
	TVDetails(ctx context.Context, id string, opts movie.DetailOptions) (movie.Record, error)
	FindMovie(ctx context.Context, title string, opts movie.DetailOptions) (movie.Record, error)
	Related(ctx context.Context, kind movie.Kind, id string, rel movie.Relation) ([]movie.Record, error)
}

type service struct {
	cfg     Config
	catalog Catalog
	logger  *slog.Logger
	now     func() time.Time
}

// NewService is a wire provider for the discover domain.
func NewService(cfg Config, catalog Catalog, logger *slog.Logger) Service {
	if cfg.SimilarCap <= 0 {
		cfg.SimilarCap = DefaultConfig().SimilarCap
	}
	return &service{
		cfg:     cfg,
		catalog: catalog,
		logger:  logger.With("component", "discover.service"),
		now:     time.Now,
	}
}

func (s *service) TrendingAll(ctx context.Context) (Rows, error) {
	var rows Rows
	p := pool.New().WithErrors()
	p.Go(func() (err error) {
		rows.Hollywood, err = s.catalog.TrendingMovies(ctx)
		return err
	})
	p.Go(func() (err error) {
		rows.Bollywood, err = s.catalog.Discover(ctx, movie.KindMovie, url.Values{
			"with_original_language": {"hi"},
			"sort_by":                {"popularity.desc"},
			"vote_count.gte":         {"50"},
			"page":                   {"1"},
		})
		return err
	})
	p.Go(func() error {
		rows.Anime = s.firstNonEmpty(ctx, "anime trending", s.animeTrendingSteps())
		return nil
	})
	if err := p.Wait(); err != nil {
		return Rows{}, apperrors.Wrap(apperrors.CodeMetadata, "Failed to fetch trending", err)
	}
	return rows, nil
}

func (s *service) NowPlaying(ctx context.Context) (Regional, error) {
	var out Regional
	p := pool.New().WithErrors()
	p.Go(func() (err error) {
		out.US, err = s.catalog.NowPlaying(ctx, "US")
		return err
	})
	p.Go(func() (err error) {
		out.IN, err = s.catalog.NowPlaying(ctx, "IN")
		return err
	})
	if err := p.Wait(); err != nil {
		return Regional{}, apperrors.Wrap(apperrors.CodeMetadata, "Failed to fetch now playing", err)
	}
	return out, nil
}

func (s *service) Upcoming(ctx context.Context) (Rows, error) {
	today := util.Today(s.now)
	var (
		rows       Rows
		inUpcoming []movie.Record
		hiDiscover []movie.Record
	)
	p := pool.New().WithErrors()
	p.Go(func() (err error) {
		rows.Hollywood, err = s.catalog.Upcoming(ctx, "US")
		return err
	})
	p.Go(func() (err error) {
		inUpcoming, err = s.catalog.Upcoming(ctx, "IN")
		return err
	})
	p.Go(func() (err error) {
		hiDiscover, err = s.catalog.Discover(ctx, movie.KindMovie, url.Values{
			"with_original_language":   {"hi"},
			"sort_by":                  {"primary_release_date.asc"},
			"primary_release_date.gte": {today},
			"page":                     {"1"},
		})
		return err
	})
	p.Go(func() error {
		rows.Anime = s.firstNonEmpty(ctx, "anime upcoming", s.animeUpcomingSteps(today))
		return nil
	})
	if err := p.Wait(); err != nil {
		return Rows{}, apperrors.Wrap(apperrors.CodeMetadata, "Failed to fetch upcoming", err)
	}
	rows.Bollywood = mergeByID(inUpcoming, hiDiscover)
	return rows, nil
}

func (s *service) Details(ctx context.Context, id string) (movie.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return movie.Record{}, apperrors.Wrap(apperrors.CodeInvalidInput, "ID is required", nil)
	}
	rec, err := s.catalog.MovieDetails(ctx, id, movie.DetailOptions{})
	if err == nil {
		return rec, nil
	}
	s.logger.Debug("movie details unavailable, trying tv", "id", id, "error", err)

	rec, err = s.catalog.TVDetails(ctx, id, movie.DetailOptions{})
	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, movie.ErrNotFound):
		return movie.Record{}, apperrors.Wrap(apperrors.CodeNotFound, "Movie/TV not found", err)
	default:
		return movie.Record{}, apperrors.Wrap(apperrors.CodeInternal, "Failed to fetch details", err)
	}
}

func (s *service) MovieByTitle(ctx context.Context, title string) (movie.Record, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return movie.Record{}, apperrors.Wrap(apperrors.CodeInvalidInput, "Movie title is required", nil)
	}
	rec, err := s.catalog.FindMovie(ctx, title, movie.DetailOptions{IncludeVideos: true})
	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, movie.ErrNotFound):
		return movie.Record{}, apperrors.Wrap(apperrors.CodeNotFound, "Movie not found", err)
	default:
		return movie.Record{}, apperrors.Wrap(apperrors.CodeInternal, "Failed to search for movie", err)
	}
}

type relatedSource struct {
	kind movie.Kind
	rel  movie.Relation
}

var relatedSources = []relatedSource{
	{movie.KindMovie, movie.Recommendations},
	{movie.KindMovie, movie.Similar},
	{movie.KindTV, movie.Recommendations},
	{movie.KindTV, movie.Similar},
}

// Similar merges movie and TV recommendations and similar titles. The id
// may name either catalogue, so every source is asked and failures are
// ignored.
func (s *service) Similar(ctx context.Context, id string) ([]movie.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "ID is required", nil)
	}
	mapper := iter.Mapper[relatedSource, []movie.Record]{MaxGoroutines: len(relatedSources)}
	lists := mapper.Map(relatedSources, func(src *relatedSource) []movie.Record {
		recs, err := s.catalog.Related(ctx, src.kind, id, src.rel)
		if err != nil {
			s.logger.Debug("related listing failed", "id", id, "kind", src.kind, "relation", src.rel, "error", err)
			return nil
		}
		return recs
	})
	merged := movie.FilterRating(mergeByID(lists...), s.cfg.MinRating)
	if len(merged) > s.cfg.SimilarCap {
		merged = merged[:s.cfg.SimilarCap]
	}
	return merged, nil
}

type step func(ctx context.Context) ([]movie.Record, error)

// firstNonEmpty runs steps in order and returns the first non-empty result.
// Step errors are logged and skipped.
func (s *service) firstNonEmpty(ctx context.Context, chain string, steps []step) []movie.Record {
	for i, run := range steps {
		recs, err := run(ctx)
		if err != nil {
			s.logger.Debug("fallback step failed", "chain", chain, "step", i+1, "error", err)
			continue
		}
		if len(recs) > 0 {
			return recs
		}
	}
	return []movie.Record{}
}

func (s *service) animeTrendingSteps() []step {
	discover := func(kind movie.Kind, params url.Values) step {
		return func(ctx context.Context) ([]movie.Record, error) {
			return s.catalog.Discover(ctx, kind, params)
		}
	}
	return []step{
		discover(movie.KindMovie, url.Values{
			"with_original_language": {"ja"},
			"with_genres":            {"16"},
			"sort_by":                {"popularity.desc"},
			"vote_count.gte":         {"20"},
			"page":                   {"1"},
		}),
		discover(movie.KindMovie, url.Values{
			"with_genres":    {"16"},
			"sort_by":        {"popularity.desc"},
			"vote_count.gte": {"20"},
			"page":           {"1"},
		}),
		discover(movie.KindTV, url.Values{
			"with_genres":    {"16"},
			"sort_by":        {"popularity.desc"},
			"vote_count.gte": {"20"},
			"page":           {"1"},
		}),
	}
}

func (s *service) animeUpcomingSteps(today string) []step {
	discover := func(kind movie.Kind, params url.Values) step {
		return func(ctx context.Context) ([]movie.Record, error) {
			return s.catalog.Discover(ctx, kind, params)
		}
	}
	return []step{
		discover(movie.KindMovie, url.Values{
			"with_original_language":   {"ja"},
			"with_genres":              {"16"},
			"sort_by":                  {"primary_release_date.asc"},
			"primary_release_date.gte": {today},
			"page":                     {"1"},
		}),
		func(ctx context.Context) ([]movie.Record, error) {
			return s.catalog.Upcoming(ctx, "JP")
		},
		discover(movie.KindMovie, url.Values{
			"with_genres":              {"16"},
			"sort_by":                  {"primary_release_date.asc"},
			"primary_release_date.gte": {today},
			"page":                     {"1"},
		}),
		discover(movie.KindTV, url.Values{
			"with_genres":        {"16"},
			"sort_by":            {"first_air_date.asc"},
			"first_air_date.gte": {today},
			"page":               {"1"},
		}),
	}
}

// mergeByID concatenates lists keyed by id. A later duplicate replaces the
// earlier value but keeps its position.
func mergeByID(lists ...[]movie.Record) []movie.Record {
	index := make(map[string]int)
	out := make([]movie.Record, 0)
	for _, list := range lists {
		for _, rec := range list {
			if i, ok := index[rec.ID]; ok {
				out[i] = rec
				continue
			}
			index[rec.ID] = len(out)
			out = append(out, rec)
		}
	}
	return out
}
