package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"watchlog/models"
)

// AniList exposes a single public GraphQL endpoint and needs no credential,
// so this client is always configured.

const anilistSearchQuery = `
query ($search: String) {
  Page(page: 1, perPage: 8) {
    media(search: $search, type: ANIME) {
      id
      title { romaji english }
      startDate { year }
      coverImage { large }
    }
  }
}`

type anilistClient struct {
	httpc    *http.Client
	endpoint string
}

func newAniListClient(httpc *http.Client) *anilistClient {
	return &anilistClient{
		httpc:    defaultHTTPClient(httpc),
		endpoint: "https://graphql.anilist.co",
	}
}

func (c *anilistClient) name() string { return models.SourceAniList }

func (c *anilistClient) configured() bool { return true }

type anilistMedia struct {
	ID    int64 `json:"id"`
	Title struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
	} `json:"title"`
	StartDate struct {
		Year *int `json:"year"`
	} `json:"startDate"`
	CoverImage struct {
		Large string `json:"large"`
	} `json:"coverImage"`
}

type anilistResponse struct {
	Data struct {
		Page struct {
			Media []anilistMedia `json:"media"`
		} `json:"Page"`
	} `json:"data"`
}

func (c *anilistClient) query(ctx context.Context, search string) ([]anilistMedia, error) {
	body, err := json.Marshal(map[string]any{
		"query":     anilistSearchQuery,
		"variables": map[string]string{"search": search},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("anilist request failed: %s", resp.Status)
	}

	var parsed anilistResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	return parsed.Data.Page.Media, nil
}

func (c *anilistClient) search(ctx context.Context, query string, _ models.ItemType) []models.SearchResult {
	media, err := c.query(ctx, query)
	if err != nil {
		log.Printf("[anilist] search %q failed: %v", query, err)
		return nil
	}

	results := make([]models.SearchResult, 0, maxSearchResults)
	for _, m := range media {
		// English title preferred; entries with neither title are dropped.
		title := m.Title.English
		if title == "" {
			title = m.Title.Romaji
		}
		if title == "" {
			continue
		}
		results = append(results, models.SearchResult{
			Title:     title,
			Type:      models.TypeAnime,
			Year:      m.StartDate.Year,
			PosterURL: m.CoverImage.Large,
		})
		if len(results) >= maxSearchResults {
			break
		}
	}
	return results
}
