package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"watchlog/models"
)

// IGDB needs a short-lived bearer token obtained through a Twitch
// client-credentials exchange before every search cycle. The token is not
// cached: exchange failure (or a missing credential) fails closed to
// "no results", so game search can never block or break anything else.

type igdbClient struct {
	clientID     string
	clientSecret string
	httpc        *http.Client
	gamesURL     string
	tokenURL     string
}

func newIGDBClient(clientID, clientSecret string, httpc *http.Client) *igdbClient {
	return &igdbClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpc:        defaultHTTPClient(httpc),
		gamesURL:     "https://api.igdb.com/v4/games",
		tokenURL:     "https://id.twitch.tv/oauth2/token",
	}
}

func (c *igdbClient) name() string { return models.SourceIGDB }

func (c *igdbClient) configured() bool {
	return strings.TrimSpace(c.clientID) != "" && strings.TrimSpace(c.clientSecret) != ""
}

func (c *igdbClient) fetchToken(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("client_secret", c.clientSecret)
	q.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("igdb token exchange failed: %s", resp.Status)
	}

	var data struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", err
	}
	if data.AccessToken == "" {
		return "", fmt.Errorf("igdb token exchange returned no token")
	}
	return data.AccessToken, nil
}

type igdbGame struct {
	Name  string `json:"name"`
	Cover struct {
		URL string `json:"url"`
	} `json:"cover"`
	FirstReleaseDate int64 `json:"first_release_date"`
}

func (c *igdbClient) queryGames(ctx context.Context, query string) ([]igdbGame, error) {
	token, err := c.fetchToken(ctx)
	if err != nil {
		return nil, err
	}

	// IGDB takes its own query language as the POST body. Double quotes
	// would terminate the search literal, so they are stripped.
	sanitized := strings.ReplaceAll(query, `"`, "")
	body := fmt.Sprintf(`search "%s"; fields name,cover.url,first_release_date; limit %d; where cover != null;`,
		sanitized, maxSearchResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gamesURL, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("igdb query failed: %s", resp.Status)
	}

	var games []igdbGame
	if err := json.NewDecoder(resp.Body).Decode(&games); err != nil {
		return nil, err
	}
	return games, nil
}

func (c *igdbClient) search(ctx context.Context, query string, _ models.ItemType) []models.SearchResult {
	if !c.configured() {
		return nil
	}
	games, err := c.queryGames(ctx, query)
	if err != nil {
		log.Printf("[igdb] search %q failed: %v", query, err)
		return nil
	}

	results := make([]models.SearchResult, 0, maxSearchResults)
	for _, game := range games {
		if game.Name == "" {
			continue
		}
		var year *int
		if game.FirstReleaseDate > 0 {
			y := time.Unix(game.FirstReleaseDate, 0).UTC().Year()
			year = &y
		}
		results = append(results, models.SearchResult{
			Title:     game.Name,
			Type:      models.TypeGame,
			Year:      year,
			PosterURL: normalizeIGDBCover(game.Cover.URL),
		})
		if len(results) >= maxSearchResults {
			break
		}
	}
	return results
}

// normalizeIGDBCover upgrades IGDB's protocol-relative thumbnail URLs to
// https high-resolution cover URLs.
func normalizeIGDBCover(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	return strings.Replace(raw, "t_thumb", "t_cover_big", 1)
}
