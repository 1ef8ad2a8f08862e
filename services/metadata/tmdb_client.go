package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"watchlog/models"
)

// Minimal TMDB v3 client (search, detail and similar endpoints we need).
// TMDB is the primary movie/TV catalog; every method degrades to empty
// output on failure.

const (
	tmdbPosterSearchSize = "w185"
	tmdbPosterDetailSize = "w500"
	tmdbCastLimit        = 6
)

type tmdbClient struct {
	apiKey    string
	httpc     *http.Client
	baseURL   string
	imageBase string
}

func newTMDBClient(apiKey string, httpc *http.Client) *tmdbClient {
	return &tmdbClient{
		apiKey:    apiKey,
		httpc:     defaultHTTPClient(httpc),
		baseURL:   "https://api.themoviedb.org/3",
		imageBase: "https://image.tmdb.org/t/p/",
	}
}

func (c *tmdbClient) name() string { return models.SourceTMDB }

func (c *tmdbClient) configured() bool { return strings.TrimSpace(c.apiKey) != "" }

// tmdbQueryType maps our media kinds onto TMDB's two search namespaces.
// Games deliberately search the movie namespace: TMDB has negligible game
// coverage and the movie endpoint is the closest heuristic.
func tmdbQueryType(media models.ItemType) string {
	switch media {
	case models.TypeMovie, models.TypeGame:
		return "movie"
	default:
		return "tv"
	}
}

func tmdbImageURL(imageBase, size, path string) string {
	if path == "" {
		return ""
	}
	return imageBase + size + path
}

type tmdbListEntry struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
	GenreIDs     []int  `json:"genre_ids"`
}

func (e tmdbListEntry) title() string {
	if e.Title != "" {
		return e.Title
	}
	return e.Name
}

func (e tmdbListEntry) date() string {
	if e.ReleaseDate != "" {
		return e.ReleaseDate
	}
	return e.FirstAirDate
}

type tmdbSearchResponse struct {
	Results []tmdbListEntry `json:"results"`
}

type tmdbDetails struct {
	tmdbListEntry
	Runtime        *int  `json:"runtime"`
	EpisodeRunTime []int `json:"episode_run_time"`
	LastEpisode    *struct {
		Runtime *int `json:"runtime"`
	} `json:"last_episode_to_air"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
	ProductionCompanies []struct {
		Name string `json:"name"`
	} `json:"production_companies"`
	Networks []struct {
		Name string `json:"name"`
	} `json:"networks"`
	Credits struct {
		Cast []struct {
			Name string `json:"name"`
		} `json:"cast"`
	} `json:"credits"`
	ExternalIDs struct {
		IMDBID string `json:"imdb_id"`
	} `json:"external_ids"`
	IMDBID string `json:"imdb_id"`
}

func (c *tmdbClient) doGET(ctx context.Context, path string, q url.Values, v any) error {
	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", c.apiKey)
	q.Set("language", "en-US")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("tmdb get %s failed: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *tmdbClient) searchEntries(ctx context.Context, query string, media models.ItemType) ([]tmdbListEntry, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("include_adult", "false")
	var resp tmdbSearchResponse
	if err := c.doGET(ctx, "/search/"+tmdbQueryType(media), q, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *tmdbClient) search(ctx context.Context, query string, media models.ItemType) []models.SearchResult {
	entries, err := c.searchEntries(ctx, query, media)
	if err != nil {
		log.Printf("[tmdb] search %q failed: %v", query, err)
		return nil
	}

	hitType := models.TypeMovie
	if tmdbQueryType(media) == "tv" {
		hitType = models.TypeTV
	}

	results := make([]models.SearchResult, 0, maxSearchResults)
	for _, entry := range entries {
		if entry.title() == "" {
			continue
		}
		results = append(results, models.SearchResult{
			Title:     entry.title(),
			Type:      hitType,
			Year:      parseYear(entry.date()),
			PosterURL: tmdbImageURL(c.imageBase, tmdbPosterSearchSize, entry.PosterPath),
		})
		if len(results) >= maxSearchResults {
			break
		}
	}
	return results
}

// firstID resolves a title to its first TMDB search hit's id, or 0.
func (c *tmdbClient) firstID(ctx context.Context, title string, media models.ItemType) int64 {
	entries, err := c.searchEntries(ctx, title, media)
	if err != nil {
		log.Printf("[tmdb] id lookup for %q failed: %v", title, err)
		return 0
	}
	if len(entries) == 0 {
		return 0
	}
	return entries[0].ID
}

func (c *tmdbClient) lookupDetails(ctx context.Context, title string, media models.ItemType) *models.Metadata {
	entries, err := c.searchEntries(ctx, title, media)
	if err != nil {
		log.Printf("[tmdb] detail search for %q failed: %v", title, err)
		return nil
	}
	if len(entries) == 0 {
		return nil
	}
	first := entries[0]

	q := url.Values{}
	q.Set("append_to_response", "credits,external_ids")
	var details tmdbDetails
	path := fmt.Sprintf("/%s/%d", tmdbQueryType(media), first.ID)
	if err := c.doGET(ctx, path, q, &details); err != nil {
		log.Printf("[tmdb] detail fetch for %q failed: %v", title, err)
		return nil
	}

	cast := make([]string, 0, tmdbCastLimit)
	for _, member := range details.Credits.Cast {
		if member.Name == "" {
			continue
		}
		cast = append(cast, member.Name)
		if len(cast) >= tmdbCastLimit {
			break
		}
	}

	genres := make([]string, 0, len(details.Genres))
	for _, g := range details.Genres {
		if g.Name != "" {
			genres = append(genres, g.Name)
		}
	}
	if len(genres) == 0 {
		// Detail responses occasionally omit genres; fall back to the
		// search hit's numeric genre ids so the field is not lost entirely.
		for _, id := range first.GenreIDs {
			genres = append(genres, strconv.Itoa(id))
		}
	}

	studios := make([]string, 0, len(details.ProductionCompanies))
	for _, s := range details.ProductionCompanies {
		if s.Name != "" {
			studios = append(studios, s.Name)
		}
	}
	if len(studios) == 0 {
		for _, n := range details.Networks {
			if n.Name != "" {
				studios = append(studios, n.Name)
			}
		}
	}

	imdbID := details.ExternalIDs.IMDBID
	if imdbID == "" {
		imdbID = details.IMDBID
	}

	return &models.Metadata{
		Source:         models.SourceTMDB,
		TMDBID:         details.ID,
		IMDBID:         imdbID,
		PosterURL:      tmdbImageURL(c.imageBase, tmdbPosterDetailSize, details.PosterPath),
		ReleaseYear:    parseYear(details.date()),
		RuntimeMinutes: tmdbRuntime(details),
		Synopsis:       details.Overview,
		Cast:           cast,
		Genres:         genres,
		Studios:        studios,
	}
}

// tmdbRuntime picks the most specific runtime TMDB offers: the movie
// runtime, then the first episode runtime, then the last aired episode's.
func tmdbRuntime(details tmdbDetails) *int {
	if details.Runtime != nil {
		return details.Runtime
	}
	if len(details.EpisodeRunTime) > 0 {
		rt := details.EpisodeRunTime[0]
		return &rt
	}
	if details.LastEpisode != nil && details.LastEpisode.Runtime != nil {
		return details.LastEpisode.Runtime
	}
	return nil
}

func (c *tmdbClient) lookupSimilar(ctx context.Context, id int64, media models.ItemType) []models.SimilarTitle {
	q := url.Values{}
	q.Set("page", "1")
	var resp tmdbSearchResponse
	path := fmt.Sprintf("/%s/%d/similar", tmdbQueryType(media), id)
	if err := c.doGET(ctx, path, q, &resp); err != nil {
		log.Printf("[tmdb] similar fetch for %d failed: %v", id, err)
		return nil
	}

	titles := make([]models.SimilarTitle, 0, len(resp.Results))
	for _, entry := range resp.Results {
		if entry.title() == "" {
			continue
		}
		titles = append(titles, models.SimilarTitle{
			Title:     entry.title(),
			Overview:  entry.Overview,
			PosterURL: tmdbImageURL(c.imageBase, tmdbPosterDetailSize, entry.PosterPath),
			Year:      parseYear(entry.date()),
			TMDBID:    entry.ID,
		})
	}
	return titles
}
