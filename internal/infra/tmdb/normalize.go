package tmdb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Jayesh25-trade/CineVibe/internal/domain/movie"
)

const (
	imageBaseURL   = "https://image.tmdb.org/t/p/"
	trailerURLFmt  = "https://www.youtube.com/embed/%s?autoplay=1&mute=1"
	maxCastMembers = 10
)

func normalizeMovie(raw rawMovieDetail, region string) movie.Record {
	rec := movie.Record{
		ID:           formatID(raw.ID),
		Title:        firstNonEmpty(raw.Title, raw.OriginalTitle),
		Overview:     raw.Overview,
		ReleaseDate:  movie.StringPtr(raw.ReleaseDate),
		Rating:       raw.VoteAverage,
		VoteCount:    intPtr(raw.VoteCount),
		Poster:       imageURL("w500", raw.PosterPath),
		Backdrop:     imageURL("w1280", raw.BackdropPath),
		Genres:       genreNames(raw.Genres),
		Director:     director(raw.Credits),
		Cast:         castNames(raw.Credits),
		TrailerURL:   trailerURL(raw.Videos),
		OTTPlatforms: NormalizeProviders(raw.WatchProviders.Results[region]),
		Popularity:   raw.Popularity,
	}
	if raw.Runtime > 0 {
		rec.Runtime = intPtr(raw.Runtime)
	}
	return rec
}

func normalizeTV(raw rawTVDetail, region string) movie.Record {
	rec := movie.Record{
		ID:           formatID(raw.ID),
		Title:        firstNonEmpty(raw.Name, raw.OriginalName),
		Overview:     raw.Overview,
		ReleaseDate:  movie.StringPtr(raw.FirstAirDate),
		Rating:       raw.VoteAverage,
		VoteCount:    intPtr(raw.VoteCount),
		Poster:       imageURL("w500", raw.PosterPath),
		Backdrop:     imageURL("w1280", raw.BackdropPath),
		Genres:       genreNames(raw.Genres),
		Cast:         castNames(raw.Credits),
		TrailerURL:   trailerURL(raw.Videos),
		OTTPlatforms: NormalizeProviders(raw.WatchProviders.Results[region]),
		Popularity:   raw.Popularity,
	}
	if len(raw.EpisodeRunTime) > 0 {
		rec.Runtime = intPtr(int(raw.EpisodeRunTime[0]))
	}
	return rec
}

func normalizeListItem(raw rawListItem) movie.Record {
	return movie.Record{
		ID:           formatID(raw.ID),
		Title:        firstNonEmpty(raw.Title, raw.Name, raw.OriginalTitle, raw.OriginalName),
		Overview:     raw.Overview,
		ReleaseDate:  movie.StringPtr(firstNonEmpty(raw.ReleaseDate, raw.FirstAirDate)),
		Rating:       raw.VoteAverage,
		Poster:       imageURL("w500", raw.PosterPath),
		Backdrop:     imageURL("w780", raw.BackdropPath),
		Genres:       []string{},
		Cast:         []string{},
		OTTPlatforms: []movie.ProviderAvailability{},
		Popularity:   raw.Popularity,
	}
}

func normalizePage(page rawPage) []movie.Record {
	out := make([]movie.Record, 0, len(page.Results))
	for _, item := range page.Results {
		out = append(out, normalizeListItem(item))
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func intPtr(v int) *int {
	return &v
}

func imageURL(size, path string) *string {
	if path == "" {
		return nil
	}
	u := imageBaseURL + size + path
	return &u
}

func genreNames(genres []rawGenre) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		if g.Name != "" {
			out = append(out, g.Name)
		}
	}
	return out
}

func castNames(credits rawCredits) []string {
	out := make([]string, 0, maxCastMembers)
	for _, c := range credits.Cast {
		if len(out) == maxCastMembers {
			break
		}
		out = append(out, c.Name)
	}
	return out
}

func director(credits rawCredits) *string {
	for _, c := range credits.Crew {
		if c.Job == "Director" {
			return movie.StringPtr(c.Name)
		}
	}
	return nil
}

func trailerURL(videos rawVideos) *string {
	for _, v := range videos.Results {
		if v.Site == "YouTube" && (v.Type == "Trailer" || v.Type == "Teaser") && v.Key != "" {
			u := fmt.Sprintf(trailerURLFmt, v.Key)
			return &u
		}
	}
	return nil
}
