package discover

import "github.com/Jayesh25-trade/CineVibe/internal/domain/movie"

// Rows groups listings by catalogue.
type Rows struct {
	Hollywood []movie.Record `json:"hollywood"`
	Bollywood []movie.Record `json:"bollywood"`
	Anime     []movie.Record `json:"anime"`
}

// Regional groups now-playing listings by release region.
type Regional struct {
	US []movie.Record `json:"us"`
	IN []movie.Record `json:"in"`
}

// Config tunes the "more like this" listing.
type Config struct {
	MinRating  float64
	SimilarCap int
}

// DefaultConfig keeps titles rated above 5.0, at most 18 of them.
func DefaultConfig() Config {
	return Config{MinRating: 5.0, SimilarCap: 18}
}
