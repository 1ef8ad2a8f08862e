package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"watchlog/api"
	"watchlog/models"
	"watchlog/services/recommend"
)

type itemLister interface {
	ListByUser(userID string) ([]models.Item, error)
}

type recommendationBuilder interface {
	Build(ctx context.Context, items []models.Item) []models.Recommendation
}

var _ recommendationBuilder = (*recommend.Service)(nil)

// RecommendationsHandler serves the per-user suggestions endpoint.
type RecommendationsHandler struct {
	items     itemLister
	recommend recommendationBuilder
}

func NewRecommendationsHandler(items itemLister, recommendSvc recommendationBuilder) *RecommendationsHandler {
	return &RecommendationsHandler{items: items, recommend: recommendSvc}
}

// List handles GET /api/users/{userID}/recommendations
func (h *RecommendationsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := api.GetAccountID(r)

	items, err := h.items.ListByUser(userID)
	if err != nil {
		log.Printf("[recommendations] list items for %s: %v", userID, err)
		http.Error(w, `{"error": "failed to load library"}`, http.StatusInternalServerError)
		return
	}

	recommendations := h.recommend.Build(r.Context(), items)
	if recommendations == nil {
		recommendations = []models.Recommendation{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"recommendations": recommendations})
}
