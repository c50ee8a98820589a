// Package tmdb talks to The Movie Database and normalises its payloads into
// movie.Record values.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/Jayesh25-trade/CineVibe/internal/domain/movie"
	"github.com/Jayesh25-trade/CineVibe/internal/infra/httpx"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

// Getter is the transport the client needs; *httpx.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, rawURL string, query url.Values, header http.Header) ([]byte, error)
}

// Config holds credentials and locale. V4Token takes precedence over APIKey.
type Config struct {
	BaseURL  string
	APIKey   string
	V4Token  string
	Language string
	// Region selects the watch-provider block, e.g. "US".
	Region string
}

// Client performs metadata lookups.
type Client struct {
	cfg    Config
	http   Getter
	logger *slog.Logger
}

// NewClient validates credentials and builds the client.
func NewClient(cfg Config, getter Getter, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" && strings.TrimSpace(cfg.V4Token) == "" {
		return nil, errors.New("tmdb api key or v4 token is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	if cfg.Region == "" {
		cfg.Region = "US"
	}
	return &Client{cfg: cfg, http: getter, logger: logger.With("component", "tmdb.client")}, nil
}

var yearSuffix = regexp.MustCompile(`^(.*\S)\s*\((\d{4})\)$`)

// SplitTitleYear separates a trailing "(YYYY)" from a title.
func SplitTitleYear(title string) (string, string) {
	title = strings.TrimSpace(title)
	if m := yearSuffix.FindStringSubmatch(title); m != nil {
		return m[1], m[2]
	}
	return title, ""
}

// SearchMovies runs a title search and returns list summaries.
func (c *Client) SearchMovies(ctx context.Context, title string) ([]movie.Record, error) {
	query, year := SplitTitleYear(title)
	params := url.Values{"query": {query}}
	if year != "" {
		params.Set("year", year)
	}
	var page rawPage
	if err := c.get(ctx, "/search/movie", params, &page); err != nil {
		return nil, err
	}
	return normalizePage(page), nil
}

// FindMovie resolves a free-text title to full details: search, take the
// first hit, fetch its details. No hit yields movie.ErrNotFound.
func (c *Client) FindMovie(ctx context.Context, title string, opts movie.DetailOptions) (movie.Record, error) {
	results, err := c.SearchMovies(ctx, title)
	if err != nil {
		return movie.Record{}, err
	}
	if len(results) == 0 {
		c.logger.Debug("title search returned no results", "title", title)
		return movie.Record{}, fmt.Errorf("search %q: %w", title, movie.ErrNotFound)
	}
	return c.MovieDetails(ctx, results[0].ID, opts)
}

// MovieDetails fetches a movie with credits, watch providers and optionally videos.
func (c *Client) MovieDetails(ctx context.Context, id string, opts movie.DetailOptions) (movie.Record, error) {
	var raw rawMovieDetail
	if err := c.get(ctx, "/movie/"+url.PathEscape(id), appendParams(opts), &raw); err != nil {
		return movie.Record{}, err
	}
	return normalizeMovie(raw, c.cfg.Region), nil
}

// TVDetails fetches a TV show with credits, watch providers and optionally videos.
func (c *Client) TVDetails(ctx context.Context, id string, opts movie.DetailOptions) (movie.Record, error) {
	var raw rawTVDetail
	if err := c.get(ctx, "/tv/"+url.PathEscape(id), appendParams(opts), &raw); err != nil {
		return movie.Record{}, err
	}
	return normalizeTV(raw, c.cfg.Region), nil
}

// TrendingMovies returns this week's trending movies.
func (c *Client) TrendingMovies(ctx context.Context) ([]movie.Record, error) {
	return c.list(ctx, "/trending/movie/week", nil)
}

// NowPlaying returns movies in theatres for region.
func (c *Client) NowPlaying(ctx context.Context, region string) ([]movie.Record, error) {
	return c.list(ctx, "/movie/now_playing", url.Values{"region": {region}, "page": {"1"}})
}

// Upcoming returns announced releases for region.
func (c *Client) Upcoming(ctx context.Context, region string) ([]movie.Record, error) {
	return c.list(ctx, "/movie/upcoming", url.Values{"region": {region}, "page": {"1"}})
}

// Discover runs a filtered discover query against the movie or TV catalogue.
func (c *Client) Discover(ctx context.Context, kind movie.Kind, params url.Values) ([]movie.Record, error) {
	return c.list(ctx, "/discover/"+string(kind), params)
}

// Related lists recommendations or similar titles for id.
func (c *Client) Related(ctx context.Context, kind movie.Kind, id string, rel movie.Relation) ([]movie.Record, error) {
	return c.list(ctx, fmt.Sprintf("/%s/%s/%s", kind, url.PathEscape(id), rel), nil)
}

func (c *Client) list(ctx context.Context, path string, params url.Values) ([]movie.Record, error) {
	var page rawPage
	if err := c.get(ctx, path, params, &page); err != nil {
		return nil, err
	}
	return normalizePage(page), nil
}

func appendParams(opts movie.DetailOptions) url.Values {
	appendTo := "credits,watch/providers"
	if opts.IncludeVideos {
		appendTo = "videos," + appendTo
	}
	return url.Values{"append_to_response": {appendTo}}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	query := url.Values{"language": {c.cfg.Language}}
	var header http.Header
	if c.cfg.V4Token != "" {
		header = http.Header{"Authorization": {"Bearer " + c.cfg.V4Token}}
	} else {
		query.Set("api_key", c.cfg.APIKey)
	}
	for k, vs := range params {
		query[k] = append([]string(nil), vs...)
	}

	body, err := c.http.Get(ctx, c.cfg.BaseURL+path, query, header)
	if err != nil {
		if httpx.StatusCode(err) == http.StatusNotFound {
			return fmt.Errorf("tmdb %s: %w", path, movie.ErrNotFound)
		}
		return fmt.Errorf("tmdb %s: %w", path, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode tmdb %s: %w", path, err)
	}
	return nil
}
