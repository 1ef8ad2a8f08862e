package models

// Provider identifiers recorded as metadata provenance.
const (
	SourceTMDB    = "tmdb"
	SourceOMDB    = "omdb"
	SourceAniList = "anilist"
	SourceIGDB    = "igdb"
)

// Metadata is a normalized record produced by one metadata provider.
// Absent fields stay nil/empty and are never written through to storage,
// so an enrichment miss can never clobber known data.
type Metadata struct {
	PosterURL      string   `json:"posterUrl,omitempty"`
	ReleaseYear    *int     `json:"releaseYear,omitempty"`
	RuntimeMinutes *int     `json:"runtimeMinutes,omitempty"`
	Synopsis       string   `json:"synopsis,omitempty"`
	Cast           []string `json:"cast,omitempty"`
	Genres         []string `json:"genres,omitempty"`
	Studios        []string `json:"studios,omitempty"`
	IMDBID         string   `json:"imdbId,omitempty"`
	TMDBID         int64    `json:"tmdbId,omitempty"`
	// Source names the provider that produced this record (tmdb|omdb).
	Source string `json:"source"`
}

// SearchResult is a lightweight hit returned by the quick-search endpoint
// for the add-item autocomplete.
type SearchResult struct {
	Title     string   `json:"title"`
	Type      ItemType `json:"type"`
	Year      *int     `json:"year,omitempty"`
	PosterURL string   `json:"posterUrl,omitempty"`
}

// SimilarTitle is one candidate from a provider's similar-titles listing.
type SimilarTitle struct {
	Title     string `json:"title"`
	Overview  string `json:"overview,omitempty"`
	PosterURL string `json:"posterUrl,omitempty"`
	Year      *int   `json:"year,omitempty"`
	TMDBID    int64  `json:"tmdbId,omitempty"`
}

// Recommendation is one suggested title with a human-readable reason.
type Recommendation struct {
	Title     string `json:"title"`
	Overview  string `json:"overview,omitempty"`
	PosterURL string `json:"posterUrl,omitempty"`
	Year      *int   `json:"year,omitempty"`
	TMDBID    int64  `json:"tmdbId,omitempty"`
	Reason    string `json:"reason"`
}
