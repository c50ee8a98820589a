package tmdb

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Jayesh25-trade/CineVibe/internal/domain/movie"
)

func TestNormalizeProvidersMergesCaseInsensitiveNames(t *testing.T) {
	block := &rawProviderBlock{
		Flatrate: []rawProvider{{ProviderName: "Netflix"}},
		Buy:      []rawProvider{{ProviderName: "netflix"}},
	}

	got := NormalizeProviders(block)
	require.Len(t, got, 1)
	require.Equal(t, "Netflix", got[0].Name)
	require.True(t, got[0].Available)
	require.Equal(t, []movie.AvailabilityType{movie.Flatrate, movie.Buy}, got[0].Types)
	require.NotNil(t, got[0].Logo)
	require.Equal(t, "/logos/netflix.png", *got[0].Logo)
}

func TestNormalizeProvidersKeepsFirstObservationOrder(t *testing.T) {
	block := &rawProviderBlock{
		Link:     "https://www.themoviedb.org/movie/1/watch?locale=US",
		Flatrate: []rawProvider{{ProviderName: "Hulu"}},
		Rent:     []rawProvider{{ProviderName: "Google Play Movies"}, {ProviderName: "Amazon Prime Video"}},
		Buy:      []rawProvider{{ProviderName: "Google Play Movies"}, {ProviderName: ""}},
	}

	got := NormalizeProviders(block)
	require.Len(t, got, 3)

	require.Equal(t, "Hulu", got[0].Name)
	require.Equal(t, []movie.AvailabilityType{movie.Flatrate}, got[0].Types)

	require.Equal(t, "Google Play Movies", got[1].Name)
	require.Nil(t, got[1].Logo)
	require.Equal(t, []movie.AvailabilityType{movie.Rent, movie.Buy}, got[1].Types)

	require.Equal(t, "Prime Video", got[2].Name)
	require.Equal(t, []movie.AvailabilityType{movie.Rent}, got[2].Types)

	for _, p := range got {
		require.NotNil(t, p.URL)
		require.Equal(t, block.Link, *p.URL)
	}
}

func TestNormalizeProvidersCollapsesVariantsOfOnePlatform(t *testing.T) {
	block := &rawProviderBlock{
		Flatrate: []rawProvider{{ProviderName: "Netflix basic with Ads"}},
		Rent:     []rawProvider{{ProviderName: "Netflix"}},
	}

	got := NormalizeProviders(block)
	require.Len(t, got, 1)
	require.Equal(t, "Netflix", got[0].Name)
	require.Equal(t, []movie.AvailabilityType{movie.Flatrate, movie.Rent}, got[0].Types)
}

func TestNormalizeProvidersNilBlock(t *testing.T) {
	got := NormalizeProviders(nil)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestMatchPlatformRules(t *testing.T) {
	cases := map[string]string{
		"disney+":            "Disney+",
		"Amazon Prime Video": "Prime Video",
		"Paramount":          "Paramount+",
		"Peacock Premium":    "Peacock",
	}
	for observed, want := range cases {
		p, ok := MatchPlatform(observed)
		require.True(t, ok, observed)
		require.Equal(t, want, p.Name, observed)
	}

	_, ok := MatchPlatform("Mubi")
	require.False(t, ok)
	_, ok = MatchPlatform("  ")
	require.False(t, ok)
}
