package tmdb

// Raw provider payloads. Movies, TV shows and list entries use different
// field names for the same logical values, so each shape gets its own type
// and its own normalisation function.

type rawGenre struct {
	Name string `json:"name"`
}

type rawCredits struct {
	Cast []struct {
		Name string `json:"name"`
	} `json:"cast"`
	Crew []struct {
		Name string `json:"name"`
		Job  string `json:"job"`
	} `json:"crew"`
}

type rawVideo struct {
	Key  string `json:"key"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type rawVideos struct {
	Results []rawVideo `json:"results"`
}

type rawProvider struct {
	ProviderName string `json:"provider_name"`
}

// rawProviderBlock is one region of the watch/providers payload.
type rawProviderBlock struct {
	Link     string        `json:"link"`
	Flatrate []rawProvider `json:"flatrate"`
	Rent     []rawProvider `json:"rent"`
	Buy      []rawProvider `json:"buy"`
}

type rawWatchProviders struct {
	Results map[string]*rawProviderBlock `json:"results"`
}

type rawMovieDetail struct {
	ID             int64             `json:"id"`
	Title          string            `json:"title"`
	OriginalTitle  string            `json:"original_title"`
	Overview       string            `json:"overview"`
	ReleaseDate    string            `json:"release_date"`
	VoteAverage    float64           `json:"vote_average"`
	VoteCount      int               `json:"vote_count"`
	Popularity     float64           `json:"popularity"`
	Runtime        int               `json:"runtime"`
	PosterPath     string            `json:"poster_path"`
	BackdropPath   string            `json:"backdrop_path"`
	Genres         []rawGenre        `json:"genres"`
	Credits        rawCredits        `json:"credits"`
	Videos         rawVideos         `json:"videos"`
	WatchProviders rawWatchProviders `json:"watch/providers"`
}

type rawTVDetail struct {
	ID             int64             `json:"id"`
	Name           string            `json:"name"`
	OriginalName   string            `json:"original_name"`
	Overview       string            `json:"overview"`
	FirstAirDate   string            `json:"first_air_date"`
	VoteAverage    float64           `json:"vote_average"`
	VoteCount      int               `json:"vote_count"`
	Popularity     float64           `json:"popularity"`
	EpisodeRunTime []float64         `json:"episode_run_time"`
	PosterPath     string            `json:"poster_path"`
	BackdropPath   string            `json:"backdrop_path"`
	Genres         []rawGenre        `json:"genres"`
	Credits        rawCredits        `json:"credits"`
	Videos         rawVideos         `json:"videos"`
	WatchProviders rawWatchProviders `json:"watch/providers"`
}

// rawListItem is an entry of search, trending, discover and similar pages,
// which mix movie and TV field names.
type rawListItem struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Name          string  `json:"name"`
	OriginalTitle string  `json:"original_title"`
	OriginalName  string  `json:"original_name"`
	Overview      string  `json:"overview"`
	ReleaseDate   string  `json:"release_date"`
	FirstAirDate  string  `json:"first_air_date"`
	VoteAverage   float64 `json:"vote_average"`
	Popularity    float64 `json:"popularity"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
}

type rawPage struct {
	Page    int           `json:"page"`
	Results []rawListItem `json:"results"`
}
