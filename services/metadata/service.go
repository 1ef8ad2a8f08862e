package metadata

import (
	"context"
	"net/http"
	"strings"

	"watchlog/models"
)

// Config carries the provider credentials. Every field is optional; an
// empty credential deterministically disables the provider that needs it.
type Config struct {
	TMDBAPIKey       string
	OMDBAPIKey       string
	IGDBClientID     string
	IGDBClientSecret string
}

// Service resolves free-text titles against the external catalogs and
// serves the quick-search dispatch. All lookups are best-effort: provider
// failures surface as empty results, never as errors.
type Service struct {
	tmdb    *tmdbClient
	omdb    *omdbClient
	anilist *anilistClient
	igdb    *igdbClient

	// resolveOrder is the fixed priority chain for detail resolution.
	resolveOrder []detailProvider
	// movieSearchOrder is the fixed priority chain for movie/tv search.
	movieSearchOrder []searchProvider
}

// NewService builds the provider set. httpc may be nil, in which case each
// client gets the default client with the standard provider timeout.
func NewService(cfg Config, httpc *http.Client) *Service {
	s := &Service{
		tmdb:    newTMDBClient(cfg.TMDBAPIKey, httpc),
		omdb:    newOMDBClient(cfg.OMDBAPIKey, httpc),
		anilist: newAniListClient(httpc),
		igdb:    newIGDBClient(cfg.IGDBClientID, cfg.IGDBClientSecret, httpc),
	}
	s.resolveOrder = []detailProvider{s.tmdb, s.omdb}
	s.movieSearchOrder = []searchProvider{s.tmdb, s.omdb}
	return s
}

// HasPrimary reports whether the primary movie/TV catalog is configured.
// The recommendation builder keys its strategy off this.
func (s *Service) HasPrimary() bool { return s.tmdb.configured() }

// Resolve returns one normalized metadata record for the title, trying the
// configured detail providers in priority order, or nil when none yields a
// record. Anime and game kinds are intentionally not resolved here; they
// are only reachable through QuickSearch (the movie/TV catalogs are still
// consulted for games as a heuristic, see tmdbQueryType).
func (s *Service) Resolve(ctx context.Context, title string, media models.ItemType) *models.Metadata {
	for _, provider := range s.resolveOrder {
		if !provider.configured() {
			continue
		}
		if meta := provider.lookupDetails(ctx, title, media); meta != nil {
			return meta
		}
	}
	return nil
}

// SimilarSeed identifies the title a similar-titles lookup starts from.
// TMDBID may be zero, in which case one search call resolves it.
type SimilarSeed struct {
	Title  string
	Type   models.ItemType
	TMDBID int64
}

// Similar returns up to maxSimilarTitles candidates related to the seed,
// in the provider's relevance order. Only the primary catalog supports a
// similar-titles query; without its credential the result is empty.
func (s *Service) Similar(ctx context.Context, seed SimilarSeed) []models.SimilarTitle {
	if !s.tmdb.configured() {
		return nil
	}

	id := seed.TMDBID
	if id == 0 {
		id = s.tmdb.firstID(ctx, seed.Title, seed.Type)
	}
	if id == 0 {
		return nil
	}

	titles := s.tmdb.lookupSimilar(ctx, id, seed.Type)
	if len(titles) > maxSimilarTitles {
		titles = titles[:maxSimilarTitles]
	}
	return titles
}

// QuickSearch dispatches an autocomplete query to the catalog(s) matching
// the requested kind and returns at most maxSearchResults hits. Unknown
// kinds are treated as movie.
func (s *Service) QuickSearch(ctx context.Context, query string, media models.ItemType) []models.SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	var results []models.SearchResult
	switch media {
	case models.TypeAnime:
		results = s.anilist.search(ctx, query, media)
	case models.TypeGame:
		results = s.igdb.search(ctx, query, media)
	default:
		if media != models.TypeTV {
			media = models.TypeMovie
		}
		for _, provider := range s.movieSearchOrder {
			if !provider.configured() {
				continue
			}
			results = provider.search(ctx, query, media)
			if len(results) > 0 {
				break
			}
		}
	}

	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}
	return results
}
