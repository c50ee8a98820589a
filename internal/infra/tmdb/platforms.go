package tmdb

import (
	"sort"
	"strings"

	"github.com/Jayesh25-trade/CineVibe/internal/domain/movie"
)

// Platform is a streaming service the frontend has branding for.
type Platform struct {
	Name    string
	Logo    string
	BaseURL string
}

// Catalog lists the known platforms. Observed provider names are resolved
// against it so variants like "Netflix basic with Ads" collapse to Netflix.
var Catalog = []Platform{
	{Name: "Netflix", Logo: "/logos/netflix.png", BaseURL: "https://netflix.com"},
	{Name: "Prime Video", Logo: "/logos/prime.png", BaseURL: "https://primevideo.com"},
	{Name: "Disney+", Logo: "/logos/disney.png", BaseURL: "https://disneyplus.com"},
	{Name: "Hulu", Logo: "/logos/hulu.png", BaseURL: "https://hulu.com"},
	{Name: "Max", Logo: "/logos/hbo.png", BaseURL: "https://max.com"},
	{Name: "Apple TV+", Logo: "/logos/apple.png", BaseURL: "https://tv.apple.com"},
	{Name: "Paramount+", Logo: "/logos/paramount.png", BaseURL: "https://paramountplus.com"},
	{Name: "Peacock", Logo: "/logos/peacock.png", BaseURL: "https://peacocktv.com"},
	{Name: "YouTube", Logo: "/logos/youtube.png", BaseURL: "https://youtube.com"},
	{Name: "Tubi", Logo: "/logos/tubi.png", BaseURL: "https://tubi.tv"},
}

// MatchPlatform resolves an observed provider name. Rules are tried in
// order across the whole catalog: exact (case-insensitive), catalog name
// contained in the observed name, observed name contained in a catalog name.
func MatchPlatform(observed string) (Platform, bool) {
	name := strings.ToLower(strings.TrimSpace(observed))
	if name == "" {
		return Platform{}, false
	}
	rules := []func(known string) bool{
		func(known string) bool { return known == name },
		func(known string) bool { return strings.Contains(name, known) },
		func(known string) bool { return strings.Contains(known, name) },
	}
	for _, rule := range rules {
		for _, p := range Catalog {
			if rule(strings.ToLower(p.Name)) {
				return p, true
			}
		}
	}
	return Platform{}, false
}

type observedPlatform struct {
	name  string
	types []movie.AvailabilityType
}

// NormalizeProviders flattens a region's watch/providers block into one
// entry per platform, in order of first observation.
func NormalizeProviders(block *rawProviderBlock) []movie.ProviderAvailability {
	out := []movie.ProviderAvailability{}
	if block == nil {
		return out
	}

	var observed []*observedPlatform
	byKey := make(map[string]*observedPlatform)
	for _, bucket := range movie.Buckets {
		for _, p := range block.bucket(bucket) {
			name := strings.TrimSpace(p.ProviderName)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			entry, ok := byKey[key]
			if !ok {
				entry = &observedPlatform{name: name}
				byKey[key] = entry
				observed = append(observed, entry)
			}
			entry.types = addType(entry.types, bucket)
		}
	}

	// distinct observed names can resolve to the same catalog platform
	index := make(map[string]int)
	for _, entry := range observed {
		resolved := movie.ProviderAvailability{
			Name:      entry.name,
			Available: true,
			URL:       movie.StringPtr(block.Link),
		}
		if p, ok := MatchPlatform(entry.name); ok {
			resolved.Name = p.Name
			resolved.Logo = movie.StringPtr(p.Logo)
		}
		key := strings.ToLower(resolved.Name)
		if i, ok := index[key]; ok {
			for _, t := range entry.types {
				out[i].Types = addType(out[i].Types, t)
			}
			continue
		}
		resolved.Types = append([]movie.AvailabilityType(nil), entry.types...)
		index[key] = len(out)
		out = append(out, resolved)
	}
	for i := range out {
		sortTypes(out[i].Types)
	}
	return out
}

func (b *rawProviderBlock) bucket(t movie.AvailabilityType) []rawProvider {
	switch t {
	case movie.Flatrate:
		return b.Flatrate
	case movie.Rent:
		return b.Rent
	case movie.Buy:
		return b.Buy
	}
	return nil
}

func addType(types []movie.AvailabilityType, t movie.AvailabilityType) []movie.AvailabilityType {
	for _, existing := range types {
		if existing == t {
			return types
		}
	}
	return append(types, t)
}

func sortTypes(types []movie.AvailabilityType) {
	rank := func(t movie.AvailabilityType) int {
		for i, b := range movie.Buckets {
			if b == t {
				return i
			}
		}
		return len(movie.Buckets)
	}
	sort.SliceStable(types, func(i, j int) bool { return rank(types[i]) < rank(types[j]) })
}
