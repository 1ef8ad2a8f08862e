package metadata

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"watchlog/models"
)

// Every external catalog sits behind the same capability surface: all of
// them can search, only some can look up details or similar titles. The
// resolvers iterate configured providers in a fixed order instead of
// branching on media-type strings.

type searchProvider interface {
	name() string
	configured() bool
	// search returns at most maxSearchResults hits. Provider failures are
	// swallowed inside the client and surface as an empty slice.
	search(ctx context.Context, query string, media models.ItemType) []models.SearchResult
}

type detailProvider interface {
	name() string
	configured() bool
	// lookupDetails returns nil both for "no match" and for any provider
	// failure. Metadata enrichment must never block the CRUD flow.
	lookupDetails(ctx context.Context, title string, media models.ItemType) *models.Metadata
}

const (
	// maxSearchResults bounds every provider's search response.
	maxSearchResults = 8
	// maxSimilarTitles bounds the similar-titles resolver output.
	maxSimilarTitles = 12

	// defaultProviderTimeout bounds each outbound catalog call. A timeout is
	// treated like any other transient failure: empty results.
	defaultProviderTimeout = 8 * time.Second
)

func defaultHTTPClient(httpc *http.Client) *http.Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: defaultProviderTimeout}
	}
	return httpc
}

var yearPattern = regexp.MustCompile(`\d{4}`)

// parseYear extracts the first run of four digits anywhere in a date-like
// string ("2024-05-01", "2019–2021", "May 2003"). Returns nil when the
// input has no such run, so callers keep "unknown year" distinct from 0.
func parseYear(input string) *int {
	match := yearPattern.FindString(input)
	if match == "" {
		return nil
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &year
}

// splitList turns a provider's comma-separated field into trimmed entries.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
