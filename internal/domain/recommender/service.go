// Package recommender turns a free-text mood into a list of enriched movies.
package recommender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sourcegraph/conc/iter"

	"github.com/Jayesh25-trade/CineVibe/internal/domain/movie"
	"github.com/Jayesh25-trade/CineVibe/internal/infra/llm/chatgpt"
	apperrors "github.com/Jayesh25-trade/CineVibe/pkg/errors"
	"github.com/Jayesh25-trade/CineVibe/pkg/metrics"
)

// Service exposes mood based recommendations.
type Service interface {
	Recommend(ctx context.Context, req Request) (Response, error)
}

// ChatClient is the LLM surface the service needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// MovieFinder resolves a title to a detailed record.
type MovieFinder interface {
	FindMovie(ctx context.Context, title string, opts movie.DetailOptions) (movie.Record, error)
}

// TrendingSource supplies fallback titles.
type TrendingSource interface {
	Trending(ctx context.Context) []movie.Record
}

type service struct {
	cfg      Config
	client   ChatClient
	finder   MovieFinder
	trending TrendingSource
	logger   *slog.Logger
	now      func() time.Time
}

// NewService is a wire provider for the recommender domain.
func NewService(cfg Config, client ChatClient, finder MovieFinder, trending TrendingSource, logger *slog.Logger) Service {
	def := DefaultConfig()
	if cfg.TitleCount <= 0 {
		cfg.TitleCount = def.TitleCount
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = def.MaxCandidates
	}
	if cfg.MaxMoodLength <= 0 {
		cfg.MaxMoodLength = def.MaxMoodLength
	}
	if cfg.Target <= 0 {
		cfg.Target = def.Target
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	return &service{
		cfg:      cfg,
		client:   client,
		finder:   finder,
		trending: trending,
		logger:   logger.With("component", "recommender.service"),
		now:      time.Now,
	}
}

// lookup is the outcome of resolving one candidate title.
type lookup struct {
	title  string
	record movie.Record
	err    error
}

func (s *service) Recommend(ctx context.Context, req Request) (Response, error) {
	start := s.now()
	mood := strings.TrimSpace(req.Mood)
	if mood == "" {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "Mood is required and must be non-empty", nil)
	}
	if utf8.RuneCountInString(mood) > s.cfg.MaxMoodLength {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("Mood too long (max %d chars)", s.cfg.MaxMoodLength), nil)
	}

	titles, err := s.candidates(ctx, mood)
	if err != nil {
		return Response{}, err
	}

	lookups := s.enrich(ctx, titles)
	enriched := make([]movie.Record, 0, len(lookups))
	failed := 0
	for _, l := range lookups {
		switch {
		case l.err == nil:
			enriched = append(enriched, l.record)
		case errors.Is(l.err, movie.ErrNotFound):
			s.logger.Debug("title not found", "title", l.title)
		default:
			failed++
			s.logger.Debug("title lookup failed", "title", l.title, "error", l.err)
		}
	}

	// two titles can resolve to the same film
	movies := movie.FilterRating(movie.Dedupe(enriched), s.cfg.MinRating)
	fromLookups := len(movies)
	if len(movies) < s.cfg.Floor {
		movies = s.supplement(ctx, movies)
	}
	if len(movies) == 0 && failed > 0 && failed == len(lookups) {
		return Response{}, apperrors.Wrap(apperrors.CodeMetadata, "Movie data service temporarily unavailable", errors.New("every title lookup failed"))
	}

	elapsed := s.now().Sub(start)
	metrics.RecommendDuration.Observe(elapsed.Seconds())
	metrics.RecommendMovies.WithLabelValues("enriched").Add(float64(fromLookups))
	metrics.RecommendMovies.WithLabelValues("supplemented").Add(float64(len(movies) - fromLookups))
	s.logger.Info("recommendation served",
		"candidates", len(titles),
		"enriched", fromLookups,
		"supplemented", len(movies)-fromLookups,
		"failed_lookups", failed,
		"duration_ms", elapsed.Milliseconds(),
	)

	return Response{
		Mood:           mood,
		Count:          len(movies),
		Movies:         movies,
		ProcessingTime: elapsed.Milliseconds(),
	}, nil
}

func (s *service) candidates(ctx context.Context, mood string) ([]string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    s.buildMessages(mood),
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeLLM, "AI service temporarily unavailable", err)
	}
	content := resp.Content()
	s.logger.Debug("chatgpt response received", "content", content)

	titles := ParseTitles(content, s.cfg.MaxCandidates)
	if len(titles) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeLLM, "AI service temporarily unavailable", errors.New("no titles in model response"))
	}
	return titles, nil
}

// enrich looks every title up concurrently, keeping candidate order.
func (s *service) enrich(ctx context.Context, titles []string) []lookup {
	workers := s.cfg.Concurrency
	if workers <= 0 {
		workers = len(titles)
	}
	mapper := iter.Mapper[string, lookup]{MaxGoroutines: workers}
	return mapper.Map(titles, func(title *string) lookup {
		rec, err := s.finder.FindMovie(ctx, *title, movie.DetailOptions{IncludeVideos: true})
		return lookup{title: *title, record: rec, err: err}
	})
}

// supplement appends trending titles with unseen ids until Target is reached.
func (s *service) supplement(ctx context.Context, movies []movie.Record) []movie.Record {
	if s.trending == nil {
		return movies
	}
	seen := make(map[string]struct{}, len(movies))
	for _, m := range movies {
		seen[m.ID] = struct{}{}
	}
	for _, m := range s.trending.Trending(ctx) {
		if len(movies) >= s.cfg.Target {
			break
		}
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		movies = append(movies, m)
	}
	return movies
}
