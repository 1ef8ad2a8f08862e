package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"watchlog/api"
	"watchlog/internal/database"
	"watchlog/models"
	"watchlog/services/analytics"
	"watchlog/services/metadata"
)

// maxTitleLength bounds user-supplied titles.
const maxTitleLength = 256

type itemStore interface {
	Create(item *models.Item) error
	ListByUser(userID string) ([]models.Item, error)
	Get(userID string, id int64) (*models.Item, error)
	Update(userID string, id int64, input models.ItemUpsert) (*models.Item, error)
	Delete(userID string, id int64) (bool, error)
	ApplyMetadata(userID string, id int64, meta *models.Metadata) error
}

var _ itemStore = (*database.ItemRepository)(nil)

type metadataResolver interface {
	Resolve(ctx context.Context, title string, media models.ItemType) *models.Metadata
}

var _ metadataResolver = (*metadata.Service)(nil)

// ItemsHandler serves the per-user watchlist CRUD endpoints.
type ItemsHandler struct {
	items     itemStore
	metadata  metadataResolver
	analytics analytics.Tracker
}

func NewItemsHandler(items itemStore, metadataSvc metadataResolver, tracker analytics.Tracker) *ItemsHandler {
	if tracker == nil {
		tracker = analytics.NopTracker{}
	}
	return &ItemsHandler{items: items, metadata: metadataSvc, analytics: tracker}
}

// List handles GET /api/users/{userID}/items
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := api.GetAccountID(r)

	items, err := h.items.ListByUser(userID)
	if err != nil {
		log.Printf("[items] list for %s: %v", userID, err)
		http.Error(w, `{"error": "failed to list items"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"items": items})
}

// Create handles POST /api/users/{userID}/items. Unless enrich=false is
// passed, the new item is enriched from the metadata resolvers before the
// response is written; resolver misses leave the item as submitted.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := api.GetAccountID(r)

	input, ok := decodeItemUpsert(w, r)
	if !ok {
		return
	}

	item := models.Item{
		UserID: userID,
		Title:  input.Title,
		Type:   input.Type,
		Status: input.Status,
		Rating: input.Rating,
		Tags:   input.Tags,
		Notes:  input.Notes,
	}
	if err := h.items.Create(&item); err != nil {
		log.Printf("[items] create for %s: %v", userID, err)
		http.Error(w, `{"error": "failed to create item"}`, http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("enrich") != "false" {
		if meta := h.metadata.Resolve(r.Context(), item.Title, item.Type); meta != nil {
			if err := h.items.ApplyMetadata(userID, item.ID, meta); err != nil {
				log.Printf("[items] apply metadata to %d: %v", item.ID, err)
			} else if enriched, err := h.items.Get(userID, item.ID); err == nil && enriched != nil {
				item = *enriched
			}
		}
	}

	h.analytics.Track("item_created", map[string]any{
		"userId":    userID,
		"userAgent": r.Header.Get("User-Agent"),
		"type":      string(item.Type),
		"status":    string(item.Status),
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

// Get handles GET /api/users/{userID}/items/{id}
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := api.GetAccountID(r)
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}

	item, err := h.items.Get(userID, id)
	if err != nil {
		log.Printf("[items] get %d for %s: %v", id, userID, err)
		http.Error(w, `{"error": "failed to load item"}`, http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, `{"error": "item not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

// Update handles PUT /api/users/{userID}/items/{id}
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := api.GetAccountID(r)
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}

	input, ok := decodeItemUpsert(w, r)
	if !ok {
		return
	}

	item, err := h.items.Update(userID, id, input)
	if errors.Is(err, database.ErrItemNotFound) {
		http.Error(w, `{"error": "item not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[items] update %d for %s: %v", id, userID, err)
		http.Error(w, `{"error": "failed to update item"}`, http.StatusInternalServerError)
		return
	}

	h.analytics.Track("item_updated", map[string]any{
		"userId":    userID,
		"userAgent": r.Header.Get("User-Agent"),
		"status":    string(input.Status),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

// Delete handles DELETE /api/users/{userID}/items/{id}
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := api.GetAccountID(r)
	id, ok := parseItemID(w, r)
	if !ok {
		return
	}

	deleted, err := h.items.Delete(userID, id)
	if err != nil {
		log.Printf("[items] delete %d for %s: %v", id, userID, err)
		http.Error(w, `{"error": "failed to delete item"}`, http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, `{"error": "item not found"}`, http.StatusNotFound)
		return
	}

	h.analytics.Track("item_deleted", map[string]any{
		"userId":    userID,
		"userAgent": r.Header.Get("User-Agent"),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
}

// decodeItemUpsert reads and validates the create/update payload, writing
// the error response itself on failure.
func decodeItemUpsert(w http.ResponseWriter, r *http.Request) (models.ItemUpsert, bool) {
	var input models.ItemUpsert
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return input, false
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		http.Error(w, `{"error": "title is required"}`, http.StatusBadRequest)
		return input, false
	}
	if len(input.Title) > maxTitleLength {
		http.Error(w, `{"error": "title is too long"}`, http.StatusBadRequest)
		return input, false
	}
	if !input.Type.Valid() {
		input.Type = models.TypeMovie
	}
	if !input.Status.Valid() {
		input.Status = models.StatusPlanned
	}
	if input.Rating != nil && (*input.Rating < 0 || *input.Rating > 10) {
		http.Error(w, `{"error": "rating must be between 0 and 10"}`, http.StatusBadRequest)
		return input, false
	}

	return input, true
}

func parseItemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, `{"error": "invalid item id"}`, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
