package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"watchlog/models"
	"watchlog/services/metadata"
)

// minQueryLength is enforced before any provider is contacted.
const minQueryLength = 2

type searchService interface {
	QuickSearch(ctx context.Context, query string, media models.ItemType) []models.SearchResult
}

var _ searchService = (*metadata.Service)(nil)

// SearchHandler serves the add-item autocomplete endpoint.
type SearchHandler struct {
	metadata searchService
}

func NewSearchHandler(metadataSvc searchService) *SearchHandler {
	return &SearchHandler{metadata: metadataSvc}
}

// SearchResponse is the quick-search envelope.
type SearchResponse struct {
	OK      bool                  `json:"ok"`
	Error   string                `json:"error,omitempty"`
	Results []models.SearchResult `json:"results,omitempty"`
}

// Search handles GET /api/search?q=...&type=...
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < minQueryLength {
		writeSearchError(w, http.StatusBadRequest, "Query too short")
		return
	}

	media := models.ItemType(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type"))))
	if !media.Valid() {
		media = models.TypeMovie
	}

	results := h.metadata.QuickSearch(r.Context(), query, media)
	if len(results) == 0 {
		writeSearchError(w, http.StatusNotFound, "No matches found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SearchResponse{OK: true, Results: results})
}

func writeSearchError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(SearchResponse{OK: false, Error: message})
}
