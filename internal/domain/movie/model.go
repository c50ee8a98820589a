// Package movie holds the canonical record every provider payload is
// normalised into.
package movie

import "errors"

// ErrNotFound signals that the provider has no entity for the lookup.
var ErrNotFound = errors.New("movie not found")

// AvailabilityType is a watch-provider bucket.
type AvailabilityType string

const (
	Flatrate AvailabilityType = "flatrate"
	Rent     AvailabilityType = "rent"
	Buy      AvailabilityType = "buy"
)

// Buckets lists the availability buckets in the order they are walked.
var Buckets = []AvailabilityType{Flatrate, Rent, Buy}

// ProviderAvailability is one streaming platform offering a title.
type ProviderAvailability struct {
	Name      string             `json:"name"`
	Logo      *string            `json:"logo"`
	Available bool               `json:"available"`
	URL       *string            `json:"url"`
	Types     []AvailabilityType `json:"types"`
}

// Record is the uniform movie/TV shape returned by the API. Records are
// built once per request and never mutated afterwards.
type Record struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title"`
	Overview     string                 `json:"overview"`
	ReleaseDate  *string                `json:"releaseDate"`
	Rating       float64                `json:"rating"`
	VoteCount    *int                   `json:"voteCount"`
	Poster       *string                `json:"poster"`
	Backdrop     *string                `json:"backdrop"`
	Genres       []string               `json:"genres"`
	Director     *string                `json:"director"`
	Cast         []string               `json:"cast"`
	Runtime      *int                   `json:"runtime"`
	TrailerURL   *string                `json:"trailerUrl"`
	OTTPlatforms []ProviderAvailability `json:"ottPlatforms"`
	Popularity   float64                `json:"popularity"`
}

// Kind distinguishes the provider's movie and TV catalogues.
type Kind string

const (
	KindMovie Kind = "movie"
	KindTV    Kind = "tv"
)

// Relation selects a "more like this" listing.
type Relation string

const (
	Recommendations Relation = "recommendations"
	Similar         Relation = "similar"
)

// DetailOptions tunes detail lookups.
type DetailOptions struct {
	// IncludeVideos appends the trailer lookup to the request.
	IncludeVideos bool
}

// Dedupe keeps the first occurrence of every id.
func Dedupe(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

// FilterRating keeps records rated strictly above threshold.
func FilterRating(records []Record, threshold float64) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Rating > threshold {
			out = append(out, r)
		}
	}
	return out
}

// StringPtr returns nil for empty strings.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
