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

// OMDb is the fallback movie/TV catalog. It signals "no data" two ways:
// a top-level Response:"False" and the literal string "N/A" in otherwise
// populated fields. Both are normalized to absent here, never surfaced.

const omdbAbsentSentinel = "N/A"

type omdbClient struct {
	apiKey  string
	httpc   *http.Client
	baseURL string
}

func newOMDBClient(apiKey string, httpc *http.Client) *omdbClient {
	return &omdbClient{
		apiKey:  apiKey,
		httpc:   defaultHTTPClient(httpc),
		baseURL: "https://www.omdbapi.com/",
	}
}

func (c *omdbClient) name() string { return models.SourceOMDB }

func (c *omdbClient) configured() bool { return strings.TrimSpace(c.apiKey) != "" }

// omdbQueryType maps our media kinds onto OMDb's type filter. An empty
// return means "no filter".
func omdbQueryType(media models.ItemType) string {
	switch media {
	case models.TypeMovie:
		return "movie"
	case models.TypeTV, models.TypeAnime:
		return "series"
	case models.TypeGame:
		return "game"
	default:
		return ""
	}
}

// omdbField returns the value unless it is the "N/A" sentinel.
func omdbField(value string) string {
	if value == omdbAbsentSentinel {
		return ""
	}
	return value
}

type omdbSearchEntry struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	Poster string `json:"Poster"`
}

type omdbSearchResponse struct {
	Response string            `json:"Response"`
	Search   []omdbSearchEntry `json:"Search"`
}

type omdbTitleResponse struct {
	Response   string `json:"Response"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Runtime    string `json:"Runtime"`
	Plot       string `json:"Plot"`
	Poster     string `json:"Poster"`
	Actors     string `json:"Actors"`
	Genre      string `json:"Genre"`
	Production string `json:"Production"`
	IMDBID     string `json:"imdbID"`
}

func (c *omdbClient) doGET(ctx context.Context, q url.Values, v any) error {
	q.Set("apikey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
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
		return fmt.Errorf("omdb request failed: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *omdbClient) search(ctx context.Context, query string, media models.ItemType) []models.SearchResult {
	q := url.Values{}
	q.Set("s", query)
	if t := omdbQueryType(media); t != "" {
		q.Set("type", t)
	}
	var resp omdbSearchResponse
	if err := c.doGET(ctx, q, &resp); err != nil {
		log.Printf("[omdb] search %q failed: %v", query, err)
		return nil
	}
	if resp.Response == "False" {
		return nil
	}

	hitType := models.TypeMovie
	if media == models.TypeTV {
		hitType = models.TypeTV
	}

	results := make([]models.SearchResult, 0, maxSearchResults)
	for _, entry := range resp.Search {
		if entry.Title == "" {
			continue
		}
		results = append(results, models.SearchResult{
			Title:     entry.Title,
			Type:      hitType,
			Year:      parseYear(entry.Year),
			PosterURL: omdbField(entry.Poster),
		})
		if len(results) >= maxSearchResults {
			break
		}
	}
	return results
}

func (c *omdbClient) lookupDetails(ctx context.Context, title string, media models.ItemType) *models.Metadata {
	q := url.Values{}
	q.Set("t", title)
	if t := omdbQueryType(media); t != "" {
		q.Set("type", t)
	}
	var resp omdbTitleResponse
	if err := c.doGET(ctx, q, &resp); err != nil {
		log.Printf("[omdb] lookup %q failed: %v", title, err)
		return nil
	}
	if resp.Response == "False" {
		return nil
	}

	return &models.Metadata{
		Source:         models.SourceOMDB,
		IMDBID:         omdbField(resp.IMDBID),
		PosterURL:      omdbField(resp.Poster),
		ReleaseYear:    parseYear(resp.Year),
		RuntimeMinutes: parseOMDBRuntime(resp.Runtime),
		Synopsis:       omdbField(resp.Plot),
		Cast:           splitList(omdbField(resp.Actors)),
		Genres:         splitList(omdbField(resp.Genre)),
		Studios:        splitList(omdbField(resp.Production)),
	}
}

// parseOMDBRuntime parses the leading integer out of strings like "148 min".
func parseOMDBRuntime(raw string) *int {
	fields := strings.Fields(omdbField(raw))
	if len(fields) == 0 {
		return nil
	}
	minutes, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil
	}
	return &minutes
}
