package recommender

import "github.com/Jayesh25-trade/CineVibe/internal/domain/movie"

// DefaultSystemPrompt asks for a fixed number of exact, searchable titles.
const DefaultSystemPrompt = "You are a Gen Z movie curator. Return EXACTLY 15 movie titles (one per line, no numbering). " +
	"Include a mix of recent (2020+), modern classics (2010-2019), older favorites (pre-2010), and some international/indie. " +
	"Titles must be exact and searchable."

// Config configures prompting, filtering and supplementing.
type Config struct {
	Model        string
	Temperature  float32
	MaxTokens    int
	SystemPrompt string
	// TitleCount is the number of titles requested from the model.
	TitleCount    int
	MaxCandidates int
	MaxMoodLength int
	// MinRating drops enriched records rated at or below it.
	MinRating float64
	// Below Floor surviving records the list is topped up from trending to Target.
	Floor  int
	Target int
	// Concurrency bounds title lookups; zero runs one goroutine per title.
	Concurrency int
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		Model:         "gpt-4o-mini",
		Temperature:   0.8,
		MaxTokens:     600,
		SystemPrompt:  DefaultSystemPrompt,
		TitleCount:    15,
		MaxCandidates: 30,
		MaxMoodLength: 500,
		MinRating:     5.0,
		Floor:         8,
		Target:        15,
	}
}

// Request is the recommend payload.
type Request struct {
	Mood string `json:"mood"`
}

// Response carries the final list. ProcessingTime is in milliseconds.
type Response struct {
	Mood           string         `json:"mood"`
	Count          int            `json:"count"`
	Movies         []movie.Record `json:"movies"`
	ProcessingTime int64          `json:"processingTime"`
}
